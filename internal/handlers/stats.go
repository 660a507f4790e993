// internal/handlers/stats.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/utils"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 100
)

type StatsHandler struct {
	statsService         *services.StatsService
	rankingService       *services.RankingService
	authorizationService *services.AuthorizationService
}

func NewStatsHandler(
	statsService *services.StatsService,
	rankingService *services.RankingService,
	authorizationService *services.AuthorizationService,
) *StatsHandler {
	return &StatsHandler{
		statsService:         statsService,
		rankingService:       rankingService,
		authorizationService: authorizationService,
	}
}

// GET /realtors/ranking
func (h *StatsHandler) GetRanking(c *gin.Context) {
	ranking, err := h.rankingService.Ranking(c.Request.Context(), queryLimit(c, defaultRankingLimit))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ranking": ranking,
	})
}

// GET /realtors/:id/stats
// Realtors see their own counters, admins anyone's.
func (h *StatsHandler) GetRealtorStats(c *gin.Context) {
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.authorizationService.AuthorizeRealtorStats(p, id); err != nil {
		utils.ForbiddenResponse(c, "")
		return
	}

	stats, err := h.statsService.PerRealtorStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"realtor_id": id,
		"stats":      stats,
	})
}

func queryLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > maxRankingLimit {
		return maxRankingLimit
	}
	return limit
}
