// internal/handlers/listing.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casaprime/realty-backend/internal/filter"
	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/utils"
)

// ListingHandler serves the public site. Each surface reads its own subset
// of filter parameters and shares the same matching rules.
type ListingHandler struct {
	propertyService *services.PropertyService
}

func NewListingHandler(propertyService *services.PropertyService) *ListingHandler {
	return &ListingHandler{
		propertyService: propertyService,
	}
}

// GET /listings/home
func (h *ListingHandler) Home(c *gin.Context) {
	h.list(c, filter.HomeFields)
}

// GET /listings/properties
func (h *ListingHandler) Properties(c *gin.Context) {
	h.list(c, filter.GridFields)
}

// GET /listings/search
func (h *ListingHandler) Search(c *gin.Context) {
	h.list(c, filter.AdvancedFields)
}

func (h *ListingHandler) list(c *gin.Context, fields []filter.Field) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)
	criteria := filter.FromValues(c.Request.URL.Query(), fields)

	properties, err := h.propertyService.Search(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, err)
		return
	}

	start, end := utils.PageBounds(len(properties), params)
	page := make([]models.Property, 0, end-start)
	for _, property := range properties[start:end] {
		page = append(page, property.PublicView())
	}

	result := utils.CreatePaginationResult(page, int64(len(properties)), params)
	utils.SetPaginationHeaders(c, result)

	meta := gin.H{
		"pagination": utils.PaginationMeta(result),
		"filters":    criteria,
	}
	if len(properties) == 0 {
		meta["message"] = i18n.T(lang, i18n.KeySearchNoResults)
	}

	utils.SuccessResponseWithMeta(c, page, meta)
}
