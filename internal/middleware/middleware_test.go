// internal/middleware/middleware_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"

	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/utils"
)

type MiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *MiddlewareTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.router = gin.New()
	suite.router.Use(I18nMiddleware("pt_BR"))

	whoami := func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		userType, _ := utils.GetUserTypeFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":   userID,
			"user_name": utils.GetUserNameFromContext(c),
			"user_type": userType,
			"lang":      utils.GetLangFromContext(c),
		})
	}

	suite.router.GET("/open", OptionalAuth(), whoami)
	suite.router.GET("/staff", AuthRequired(), StaffRequired(), whoami)
	suite.router.GET("/admin", AuthRequired(), AdminRequired(), whoami)
}

func (suite *MiddlewareTestSuite) token(userType models.UserType) (uuid.UUID, string) {
	id := uuid.New()
	token, err := utils.GenerateJWT(id, "Ana Souza", string(userType), 1)
	require.NoError(suite.T(), err)
	return id, token
}

func (suite *MiddlewareTestSuite) get(path, token string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func (suite *MiddlewareTestSuite) TestAuthRequiredRejectsMissingAndInvalidTokens() {
	w, body := suite.get("/staff", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.False(suite.T(), body["success"].(bool))
	assert.Equal(suite.T(), "UNAUTHORIZED", body["error"].(map[string]interface{})["code"])

	w, _ = suite.get("/staff", "not-a-jwt", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *MiddlewareTestSuite) TestStaffAndAdminGates() {
	realtorID, realtorToken := suite.token(models.UserTypeRealtor)
	_, adminToken := suite.token(models.UserTypeAdmin)
	_, strangerToken := suite.token("visitor")

	w, body := suite.get("/staff", realtorToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), realtorID.String(), body["user_id"])
	assert.Equal(suite.T(), "Ana Souza", body["user_name"])
	assert.Equal(suite.T(), "realtor", body["user_type"])

	w, _ = suite.get("/staff", strangerToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, _ = suite.get("/admin", realtorToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, _ = suite.get("/admin", adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *MiddlewareTestSuite) TestOptionalAuthIgnoresBadTokens() {
	w, body := suite.get("/open", "garbage", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "", body["user_id"])

	id, token := suite.token(models.UserTypeRealtor)
	_, body = suite.get("/open", token, nil)
	assert.Equal(suite.T(), id.String(), body["user_id"])
}

func (suite *MiddlewareTestSuite) TestLanguageResolution() {
	_, body := suite.get("/open", "", nil)
	assert.Equal(suite.T(), "pt_BR", body["lang"])

	_, body = suite.get("/open", "", map[string]string{"Accept-Language": "en-US,en;q=0.9"})
	assert.Equal(suite.T(), "en", body["lang"])

	_, body = suite.get("/open", "", map[string]string{"Accept-Language": "pt-BR,pt;q=0.9"})
	assert.Equal(suite.T(), "pt_BR", body["lang"])

	_, body = suite.get("/open", "", map[string]string{"Accept-Language": "fr-FR"})
	assert.Equal(suite.T(), "pt_BR", body["lang"])
}

func (suite *MiddlewareTestSuite) TestRateLimiterRejectsBurstOverflow() {
	limiter := NewRateLimiter(rate.Every(time.Minute), 2)
	defer limiter.Stop()

	router := gin.New()
	router.GET("/limited", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(suite.T(), []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/limited", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, other)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)
}

func (suite *MiddlewareTestSuite) TestResourceExtraction() {
	id := uuid.New().String()
	assert.Equal(suite.T(), "properties", extractResourceType("/v1/properties/"+id+"/status"))
	assert.Equal(suite.T(), "realtors", extractResourceType("/v1/admin/realtors/"+id))
	assert.Equal(suite.T(), "health", extractResourceType("/health"))
	assert.Equal(suite.T(), id, extractResourceID("/v1/properties/"+id+"/status"))
	assert.Equal(suite.T(), "", extractResourceID("/v1/listings/home"))
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
