// internal/handlers/helpers_test.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/casaprime/realty-backend/internal/services"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{services.ErrPropertyNotFound, http.StatusNotFound},
		{services.ErrRealtorNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrDuplicateEmail, http.StatusConflict},
		{services.ErrDuplicatePhone, http.StatusConflict},
		{services.ErrRealtorHasProperties, http.StatusConflict},
		{fmt.Errorf("status change: %w", services.ErrConcurrentModification), http.StatusConflict},
		{services.ErrTransitionNotAllowed, http.StatusUnprocessableEntity},
		{services.ErrRealtorNotActive, http.StatusUnprocessableEntity},
		{services.ErrRealtorDeactivated, http.StatusUnprocessableEntity},
		{services.ErrInvalidStatus, http.StatusBadRequest},
		{services.ErrRealtorRequired, http.StatusBadRequest},
		{fmt.Errorf("%w: text/plain", services.ErrFileTypeInvalid), http.StatusBadRequest},
		{services.ErrFileTooLarge, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestQueryLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limit := func(raw string) int {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?limit="+raw, nil)
		return queryLimit(c, defaultRankingLimit)
	}

	assert.Equal(t, 5, limit("5"))
	assert.Equal(t, defaultRankingLimit, limit(""))
	assert.Equal(t, defaultRankingLimit, limit("-1"))
	assert.Equal(t, defaultRankingLimit, limit("abc"))
	assert.Equal(t, maxRankingLimit, limit("1000"))
}
