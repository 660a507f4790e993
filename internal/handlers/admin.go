// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/utils"
)

type AdminHandler struct {
	statsService   *services.StatsService
	rankingService *services.RankingService
}

func NewAdminHandler(statsService *services.StatsService, rankingService *services.RankingService) *AdminHandler {
	return &AdminHandler{
		statsService:   statsService,
		rankingService: rankingService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.statsService.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/rankings
// Full ranking unless ?limit is given.
func (h *AdminHandler) GetRankings(c *gin.Context) {
	ranking, err := h.rankingService.Ranking(c.Request.Context(), queryLimit(c, 0))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ranking": ranking,
	})
}

// POST /admin/stats/rebuild
func (h *AdminHandler) RebuildStats(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	written, err := h.statsService.RebuildCounters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyStatsRebuilt),
		"realtors": written,
	})
}
