// internal/handlers/property.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/utils"
)

const maxImagesPerUpload = 20

type PropertyHandler struct {
	propertyService      *services.PropertyService
	statusService        *services.StatusService
	authorizationService *services.AuthorizationService
	storageService       *services.StorageService
}

func NewPropertyHandler(
	propertyService *services.PropertyService,
	statusService *services.StatusService,
	authorizationService *services.AuthorizationService,
	storageService *services.StorageService,
) *PropertyHandler {
	return &PropertyHandler{
		propertyService:      propertyService,
		statusService:        statusService,
		authorizationService: authorizationService,
		storageService:       storageService,
	}
}

type changeStatusRequest struct {
	Status models.PropertyStatus `json:"status" validate:"required"`
	Notes  string                `json:"notes" validate:"max=1000"`
}

// POST /properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	p, ok := principal(c)
	if !ok {
		return
	}

	var req services.CreatePropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	realtorID, err := h.authorizationService.ResolveOwner(p, req.RealtorID)
	if err != nil {
		respondError(c, err)
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), realtorID, req, actor(c, p))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPropertyCreated),
		"property": property,
	})
}

// GET /properties/:id
// Internal notes are only shown to the owning realtor and admins.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}

	property, err := h.propertyService.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	view := property.PublicView()
	if _, signedIn := utils.GetUserIDFromContext(c); signedIn {
		if p, ok := principal(c); ok && (p.IsAdmin() || p.ID == property.RealtorID) {
			view = *property
		}
	}

	utils.SuccessResponse(c, gin.H{
		"property": view,
	})
}

// PUT /properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	var req services.UpdatePropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.authorizationService.AuthorizeProperty(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorizationService.AuthorizeReassign(p, req.RealtorID); err != nil {
		respondError(c, err)
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPropertyUpdated),
		"property": property,
	})
}

// DELETE /properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if _, err := h.authorizationService.AuthorizeProperty(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}

	if err := h.propertyService.DeleteProperty(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPropertyDeleted),
	})
}

// PUT /properties/:id/status
func (h *PropertyHandler) ChangeStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	var req changeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.authorizationService.AuthorizeProperty(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}

	changedBy := p.Name
	if changedBy == "" {
		changedBy = p.ID.String()
	}

	property, err := h.statusService.ChangeStatus(c.Request.Context(), services.ChangeStatusInput{
		PropertyID: id,
		Status:     req.Status,
		ChangedBy:  changedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyStatusChanged),
		"property": property,
	})
}

// GET /properties/:id/history
// Newest first unless ?order=asc.
func (h *PropertyHandler) GetStatusHistory(c *gin.Context) {
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if _, err := h.authorizationService.AuthorizeProperty(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}

	history, err := h.statusService.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("order") != "asc" {
		for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
	}

	utils.SuccessResponse(c, gin.H{
		"history": history,
	})
}

// POST /properties/:id/images
// Multipart form with one or more "images" files.
func (h *PropertyHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, i18n.KeyPropertyNotFound)
	if !ok {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if _, err := h.authorizationService.AuthorizeProperty(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "images"), nil)
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "images"), nil)
		return
	}
	if len(files) > maxImagesPerUpload {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "images"), gin.H{"max_files": maxImagesPerUpload})
		return
	}

	ctx := c.Request.Context()
	var (
		urls []string
		keys []string
	)
	rollback := func() {
		for _, key := range keys {
			if err := h.storageService.DeleteFile(ctx, key); err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Failed to remove orphaned upload")
			}
		}
	}

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			rollback()
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), nil)
			return
		}

		result, err := h.storageService.UploadPropertyImage(ctx, id, file, fileHeader.Filename)
		file.Close()
		if err != nil {
			rollback()
			respondError(c, err)
			return
		}

		urls = append(urls, result.URL)
		keys = append(keys, result.Key)
	}

	property, err := h.propertyService.AddImages(ctx, id, urls)
	if err != nil {
		rollback()
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPropertyImagesAdded),
		"images":   urls,
		"property": property,
	})
}
