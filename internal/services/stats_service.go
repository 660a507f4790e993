// internal/services/stats_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/metrics"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
)

type StatsService struct {
	store    store.Store
	location *time.Location
}

// DashboardStats covers non-deleted properties of active realtors only.
// The monthly counters key on the property's creation time, not on when
// its status last changed.
type DashboardStats struct {
	models.StatusCounts
	NegotiatingThisMonth int64 `json:"negotiating_this_month"`
	SoldThisMonth        int64 `json:"sold_this_month"`
	RealtorCount         int64 `json:"realtor_count"`
}

func NewStatsService(st store.Store, location *time.Location) *StatsService {
	if location == nil {
		location = time.UTC
	}
	return &StatsService{
		store:    st,
		location: location,
	}
}

// CountByStatus derives the status counters of a set of properties.
func CountByStatus(properties []models.Property) models.StatusCounts {
	var counts models.StatusCounts
	for _, property := range properties {
		counts = counts.Add(property.Status, 1)
	}
	return counts
}

// MonthStart returns the first instant of now's calendar month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

func (s *StatsService) PerRealtorStats(ctx context.Context, realtorID uuid.UUID) (models.StatusCounts, error) {
	if _, err := loadRealtor(ctx, s.store, realtorID); err != nil {
		return models.StatusCounts{}, err
	}

	row, err := s.store.GetRealtorStats(ctx, realtorID)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("failed to load realtor counters: %w", err)
	}
	return row.Counts(), nil
}

func (s *StatsService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	realtors, err := s.activeRealtors(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(realtors))
	for i, realtor := range realtors {
		ids[i] = realtor.ID
	}

	rows, err := s.store.ListRealtorStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load realtor counters: %w", err)
	}

	stats := &DashboardStats{RealtorCount: int64(len(realtors))}
	for _, row := range rows {
		stats.StatusCounts = stats.StatusCounts.Plus(row.Counts())
	}

	monthStart := MonthStart(time.Now(), s.location)
	if stats.NegotiatingThisMonth, err = s.countSince(ctx, models.PropertyStatusNegotiating, monthStart); err != nil {
		return nil, err
	}
	if stats.SoldThisMonth, err = s.countSince(ctx, models.PropertyStatusSold, monthStart); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *StatsService) countSince(ctx context.Context, status models.PropertyStatus, since time.Time) (int64, error) {
	count, err := s.store.CountProperties(ctx, store.PropertyQuery{
		Status:             &status,
		CreatedSince:       &since,
		ActiveRealtorsOnly: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s properties: %w", status, err)
	}
	return count, nil
}

// RealtorCount counts realtors whose lifecycle is active.
func (s *StatsService) RealtorCount(ctx context.Context) (int64, error) {
	realtors, err := s.activeRealtors(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(realtors)), nil
}

func (s *StatsService) activeRealtors(ctx context.Context) ([]models.User, error) {
	active := models.LifecycleActive
	realtors, _, err := s.store.ListRealtors(ctx, store.RealtorQuery{Lifecycle: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to list active realtors: %w", err)
	}
	return realtors, nil
}

// RebuildCounters recomputes every realtor's counters from a full scan of
// the live properties and returns the number of counter rows written.
func (s *StatsService) RebuildCounters(ctx context.Context) (int, error) {
	defer metrics.TrackCounterRebuild()(time.Now())

	var written int
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		properties, err := tx.ListProperties(ctx, store.PropertyQuery{})
		if err != nil {
			return fmt.Errorf("failed to scan properties: %w", err)
		}

		byRealtor := make(map[uuid.UUID][]models.Property)
		var order []uuid.UUID
		for _, property := range properties {
			if _, seen := byRealtor[property.RealtorID]; !seen {
				order = append(order, property.RealtorID)
			}
			byRealtor[property.RealtorID] = append(byRealtor[property.RealtorID], property)
		}

		rows := make([]models.RealtorStats, 0, len(order))
		for _, realtorID := range order {
			counts := CountByStatus(byRealtor[realtorID])
			rows = append(rows, models.RealtorStats{
				RealtorID:   realtorID,
				Available:   counts.Available,
				Negotiating: counts.Negotiating,
				Sold:        counts.Sold,
			})
		}

		if err := tx.ReplaceRealtorStats(ctx, rows); err != nil {
			return fmt.Errorf("failed to store counters: %w", err)
		}
		written = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logrus.WithField("rows", written).Info("Realtor counters rebuilt")
	return written, nil
}
