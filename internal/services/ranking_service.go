// internal/services/ranking_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
)

type RankingService struct {
	store store.Store
}

// RealtorPerformance is the input of a ranking.
type RealtorPerformance struct {
	RealtorID uuid.UUID
	Name      string
	Lifecycle models.Lifecycle
	Stats     models.StatusCounts
}

type RankedRealtor struct {
	Position  int                 `json:"position"`
	RealtorID uuid.UUID           `json:"realtor_id"`
	Name      string              `json:"name"`
	Stats     models.StatusCounts `json:"stats"`
}

func NewRankingService(st store.Store) *RankingService {
	return &RankingService{store: st}
}

// Rank orders active realtors by properties sold, then by name and id so
// equal sales always rank the same way. Positions start at 1.
func Rank(performances []RealtorPerformance) []RankedRealtor {
	eligible := make([]RealtorPerformance, 0, len(performances))
	for _, performance := range performances {
		if performance.Lifecycle == models.LifecycleActive {
			eligible = append(eligible, performance)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Stats.Sold != b.Stats.Sold {
			return a.Stats.Sold > b.Stats.Sold
		}
		if nameA, nameB := strings.ToLower(a.Name), strings.ToLower(b.Name); nameA != nameB {
			return nameA < nameB
		}
		return a.RealtorID.String() < b.RealtorID.String()
	})

	ranked := make([]RankedRealtor, len(eligible))
	for i, performance := range eligible {
		ranked[i] = RankedRealtor{
			Position:  i + 1,
			RealtorID: performance.RealtorID,
			Name:      performance.Name,
			Stats:     performance.Stats,
		}
	}
	return ranked
}

// Ranking ranks every active realtor. A positive limit keeps the top
// entries only.
func (s *RankingService) Ranking(ctx context.Context, limit int) ([]RankedRealtor, error) {
	active := models.LifecycleActive
	realtors, _, err := s.store.ListRealtors(ctx, store.RealtorQuery{Lifecycle: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to list realtors: %w", err)
	}

	views, err := attachStats(ctx, s.store, realtors)
	if err != nil {
		return nil, err
	}

	performances := make([]RealtorPerformance, len(views))
	for i, view := range views {
		performances[i] = RealtorPerformance{
			RealtorID: view.ID,
			Name:      view.Name,
			Lifecycle: view.Lifecycle,
			Stats:     view.Stats,
		}
	}

	ranked := Rank(performances)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
