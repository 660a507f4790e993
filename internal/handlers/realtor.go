// internal/handlers/realtor.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/store"
	"github.com/casaprime/realty-backend/internal/utils"
)

// RealtorHandler is the admin roster: CRUD and lifecycle of realtors.
type RealtorHandler struct {
	realtorService *services.RealtorService
}

func NewRealtorHandler(realtorService *services.RealtorService) *RealtorHandler {
	return &RealtorHandler{
		realtorService: realtorService,
	}
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"omitempty,strong_password"`
}

// GET /admin/realtors
func (h *RealtorHandler) ListRealtors(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	query := store.RealtorQuery{PaginationParams: params}
	if raw := c.Query("lifecycle"); raw != "" {
		lifecycle := models.Lifecycle(raw)
		if !lifecycle.IsValid() {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "lifecycle"), nil)
			return
		}
		query.Lifecycle = &lifecycle
	}

	realtors, total, err := h.realtorService.ListRealtors(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(realtors, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/realtors
func (h *RealtorHandler) CreateRealtor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	p, ok := principal(c)
	if !ok {
		return
	}

	var req services.CreateRealtorRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.realtorService.CreateRealtor(c.Request.Context(), req, actor(c, p))
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"message": i18n.T(lang, i18n.KeyRealtorCreated),
		"realtor": result.Realtor,
	}
	if result.TemporaryPassword != "" {
		response["temporary_password"] = result.TemporaryPassword
	}
	utils.CreatedResponse(c, response)
}

// GET /admin/realtors/:id
func (h *RealtorHandler) GetRealtor(c *gin.Context) {
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}

	realtor, err := h.realtorService.GetRealtor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"realtor": realtor,
	})
}

// PUT /admin/realtors/:id
func (h *RealtorHandler) UpdateRealtor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	var req services.UpdateRealtorRequest
	if !bindAndValidate(c, &req) {
		return
	}

	realtor, err := h.realtorService.UpdateRealtor(c.Request.Context(), id, req, actor(c, p))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRealtorUpdated),
		"realtor": realtor,
	})
}

// DELETE /admin/realtors/:id
func (h *RealtorHandler) DeleteRealtor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.realtorService.DeleteRealtor(c.Request.Context(), id, actor(c, p)); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRealtorDeleted),
	})
}

type lifecycleAction func(ctx context.Context, id uuid.UUID, actor services.Actor) (*services.RealtorView, error)

// PUT /admin/realtors/:id/block
func (h *RealtorHandler) BlockRealtor(c *gin.Context) {
	h.lifecycle(c, h.realtorService.BlockRealtor, i18n.KeyRealtorBlocked)
}

// PUT /admin/realtors/:id/unblock
func (h *RealtorHandler) UnblockRealtor(c *gin.Context) {
	h.lifecycle(c, h.realtorService.UnblockRealtor, i18n.KeyRealtorUnblocked)
}

// PUT /admin/realtors/:id/deactivate
func (h *RealtorHandler) DeactivateRealtor(c *gin.Context) {
	h.lifecycle(c, h.realtorService.DeactivateRealtor, i18n.KeyRealtorDeactivated)
}

// PUT /admin/realtors/:id/reactivate
func (h *RealtorHandler) ReactivateRealtor(c *gin.Context) {
	h.lifecycle(c, h.realtorService.ReactivateRealtor, i18n.KeyRealtorReactivated)
}

func (h *RealtorHandler) lifecycle(c *gin.Context, action lifecycleAction, messageKey string) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	realtor, err := action(c.Request.Context(), id, actor(c, p))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"realtor": realtor,
	})
}

// PUT /admin/realtors/:id/password
// An empty body generates a temporary password and returns it once.
func (h *RealtorHandler) ResetPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyRealtorNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}

	generated, err := h.realtorService.ResetPassword(c.Request.Context(), id, req.Password, actor(c, p))
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"message": i18n.T(lang, i18n.KeyRealtorPasswordReset),
	}
	if generated != "" {
		response["temporary_password"] = generated
	}
	utils.SuccessResponse(c, response)
}
