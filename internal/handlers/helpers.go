// internal/handlers/helpers.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/utils"
)

// principal reads the authenticated staff member set by the auth middleware.
// It writes the 401 response itself when the context carries no usable id.
func principal(c *gin.Context) (services.Principal, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return services.Principal{}, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
		return services.Principal{}, false
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	return services.Principal{
		ID:   userID,
		Name: utils.GetUserNameFromContext(c),
		Type: models.UserType(userType),
	}, true
}

func actor(c *gin.Context, p services.Principal) services.Actor {
	return p.Actor(c.ClientIP(), c.Request.UserAgent())
}

// pathID parses the :id parameter; an unparseable id is reported as the
// resource being absent.
func pathID(c *gin.Context, notFoundKey string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, notFoundKey)
		return uuid.Nil, false
	}
	return id, true
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		utils.NotFoundResponse(c, i18n.KeyPropertyNotFound)
	case errors.Is(err, services.ErrRealtorNotFound):
		utils.NotFoundResponse(c, i18n.KeyRealtorNotFound)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyPropertyNotOwned))
	case errors.Is(err, services.ErrDuplicateEmail):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyRealtorDuplicateEmail))
	case errors.Is(err, services.ErrDuplicatePhone):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyRealtorDuplicatePhone))
	case errors.Is(err, services.ErrRealtorHasProperties):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyRealtorHasProperties))
	case errors.Is(err, services.ErrConcurrentModification):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyConcurrentChange))
	case errors.Is(err, services.ErrTransitionNotAllowed):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyStatusNotAllowed))
	case errors.Is(err, services.ErrRealtorNotActive):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyRealtorNotActive))
	case errors.Is(err, services.ErrRealtorDeactivated):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyRealtorIsDeactivated))
	case errors.Is(err, services.ErrInvalidStatus):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyStatusInvalid), nil)
	case errors.Is(err, services.ErrRealtorRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "realtor_id"), nil)
	case errors.Is(err, services.ErrFileTooLarge):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge), nil)
	case errors.Is(err, services.ErrFileTypeInvalid):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), nil)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}
