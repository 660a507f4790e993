// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/config"
	"github.com/casaprime/realty-backend/internal/database"
	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/router"
	"github.com/casaprime/realty-backend/internal/utils"
)

type APITestSuite struct {
	suite.Suite
	db         *gorm.DB
	router     *router.Router
	adminToken string
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "localhost", Port: "8080"},
		JWT:         config.JWTConfig{SecretKey: "api-test-secret"},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			UploadsPerMinute:  100,
		},
		I18n:     config.I18nConfig{DefaultLocale: "en"},
		Workflow: config.WorkflowConfig{StatusWorkflow: "free"},
		Stats:    config.StatsConfig{Timezone: "UTC"},
	}
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize("", "en"))
}

func (suite *APITestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	require.NoError(suite.T(), err)
	suite.db = db

	require.NoError(suite.T(), database.SeedAdmin(db, "Admin", "admin@example.com", "11900000000", "Admin12345"))
	var admin models.User
	require.NoError(suite.T(), db.Where("type = ?", models.UserTypeAdmin).First(&admin).Error)

	r, err := router.Initialize(db, testConfig())
	require.NoError(suite.T(), err)
	suite.router = r

	suite.adminToken = suite.token(admin.ID, "Admin", models.UserTypeAdmin)
}

func (suite *APITestSuite) TearDownTest() {
	suite.router.Close()
	database.Close(suite.db)
}

func (suite *APITestSuite) token(id uuid.UUID, name string, userType models.UserType) string {
	token, err := utils.GenerateJWT(id, name, string(userType), 1)
	require.NoError(suite.T(), err)
	return token
}

func (suite *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.Engine.ServeHTTP(w, req)

	var response map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func data(response map[string]interface{}) map[string]interface{} {
	return response["data"].(map[string]interface{})
}

func errorCode(response map[string]interface{}) string {
	return response["error"].(map[string]interface{})["code"].(string)
}

// createRealtor registers a realtor through the admin API and returns its id
// and a bearer token for it.
func (suite *APITestSuite) createRealtor(name, email, phone string) (uuid.UUID, string) {
	w, response := suite.do(http.MethodPost, "/v1/admin/realtors", suite.adminToken, map[string]interface{}{
		"name":  name,
		"email": email,
		"phone": phone,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	realtor := data(response)["realtor"].(map[string]interface{})
	id := uuid.MustParse(realtor["id"].(string))
	return id, suite.token(id, name, models.UserTypeRealtor)
}

func (suite *APITestSuite) createProperty(token string, body map[string]interface{}) string {
	payload := map[string]interface{}{
		"title":    "Apartamento Moema",
		"price":    450000,
		"category": "apartment",
		"location": "Moema, São Paulo",
		"state":    "SP",
		"features": map[string]interface{}{"bedrooms": 3, "bathrooms": 2, "area": 90},
	}
	for k, v := range body {
		payload[k] = v
	}

	w, response := suite.do(http.MethodPost, "/v1/properties", token, payload)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return data(response)["property"].(map[string]interface{})["id"].(string)
}

func (suite *APITestSuite) TestHealthAndMetrics() {
	w, response := suite.do(http.MethodGet, "/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "healthy", response["status"])
	assert.Equal(suite.T(), "free", response["status_workflow"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	suite.router.Engine.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "realty_http_requests_total")
}

func (suite *APITestSuite) TestAdminRoutesRequireAdmin() {
	w, response := suite.do(http.MethodGet, "/v1/admin/dashboard/stats", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "UNAUTHORIZED", errorCode(response))

	_, realtorToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	w, response = suite.do(http.MethodGet, "/v1/admin/dashboard/stats", realtorToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "FORBIDDEN", errorCode(response))
}

func (suite *APITestSuite) TestRealtorRegistration() {
	w, response := suite.do(http.MethodPost, "/v1/admin/realtors", suite.adminToken, map[string]interface{}{
		"name":  "Ana Souza",
		"email": "Ana@Example.com",
		"phone": "(11) 98888-7777",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	assert.True(suite.T(), response["success"].(bool))
	assert.NotEmpty(suite.T(), data(response)["temporary_password"])

	realtor := data(response)["realtor"].(map[string]interface{})
	assert.Equal(suite.T(), "ana@example.com", realtor["email"])
	assert.Equal(suite.T(), true, realtor["is_active"])
	assert.Equal(suite.T(), "active", realtor["lifecycle"])

	w, response = suite.do(http.MethodPost, "/v1/admin/realtors", suite.adminToken, map[string]interface{}{
		"name":  "Another Ana",
		"email": "ana@example.com",
		"phone": "11977776666",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", errorCode(response))

	w, response = suite.do(http.MethodPost, "/v1/admin/realtors", suite.adminToken, map[string]interface{}{
		"name":  "Bruno",
		"email": "not-an-email",
		"phone": "123",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errorCode(response))

	w, response = suite.do(http.MethodGet, "/v1/admin/realtors?search=ana", suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response["data"].([]interface{}), 1)
	assert.Equal(suite.T(), "1", w.Header().Get("X-Total-Count"))
}

func (suite *APITestSuite) TestPropertyStatusFlow() {
	anaID, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	_, brunoToken := suite.createRealtor("Bruno Lima", "bruno@example.com", "11977776666")

	propertyID := suite.createProperty(anaToken, map[string]interface{}{"internal_notes": "key at the front desk"})

	w, response := suite.do(http.MethodPut, "/v1/properties/"+propertyID+"/status", anaToken, map[string]interface{}{
		"status": "negotiating",
		"notes":  "offer received",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "negotiating", data(response)["property"].(map[string]interface{})["status"])

	w, response = suite.do(http.MethodPut, "/v1/properties/"+propertyID+"/status", anaToken, map[string]interface{}{
		"status": "rented",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPut, "/v1/properties/"+propertyID+"/status", brunoToken, map[string]interface{}{
		"status": "sold",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, response = suite.do(http.MethodGet, "/v1/properties/"+propertyID+"/history", anaToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	history := data(response)["history"].([]interface{})
	require.Len(suite.T(), history, 2)
	assert.Equal(suite.T(), "negotiating", history[0].(map[string]interface{})["status"])
	assert.Equal(suite.T(), "Ana Souza", history[0].(map[string]interface{})["changed_by"])
	assert.Equal(suite.T(), "available", history[1].(map[string]interface{})["status"])

	_, response = suite.do(http.MethodGet, "/v1/properties/"+propertyID+"/history?order=asc", anaToken, nil)
	history = data(response)["history"].([]interface{})
	assert.Equal(suite.T(), "available", history[0].(map[string]interface{})["status"])

	w, response = suite.do(http.MethodGet, "/v1/realtors/"+anaID.String()+"/stats", anaToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	stats := data(response)["stats"].(map[string]interface{})
	assert.Equal(suite.T(), float64(0), stats["available"])
	assert.Equal(suite.T(), float64(1), stats["negotiating"])
	assert.Equal(suite.T(), float64(1), stats["total"])

	w, _ = suite.do(http.MethodGet, "/v1/realtors/"+anaID.String()+"/stats", brunoToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestInternalNotesVisibility() {
	_, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	propertyID := suite.createProperty(anaToken, map[string]interface{}{"internal_notes": "owner accepts 420k"})

	_, response := suite.do(http.MethodGet, "/v1/properties/"+propertyID, "", nil)
	_, hasNotes := data(response)["property"].(map[string]interface{})["internal_notes"]
	assert.False(suite.T(), hasNotes)

	_, response = suite.do(http.MethodGet, "/v1/properties/"+propertyID, anaToken, nil)
	assert.Equal(suite.T(), "owner accepts 420k", data(response)["property"].(map[string]interface{})["internal_notes"])

	w, _ := suite.do(http.MethodGet, "/v1/properties/"+uuid.NewString(), "", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestAdminCreatesPropertyForRealtor() {
	anaID, _ := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")

	w, response := suite.do(http.MethodPost, "/v1/properties", suite.adminToken, map[string]interface{}{
		"title": "Casa Pinheiros", "price": 900000, "category": "house",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_REQUEST", errorCode(response))

	propertyID := suite.createProperty(suite.adminToken, map[string]interface{}{"realtor_id": anaID.String()})
	_, response = suite.do(http.MethodGet, "/v1/properties/"+propertyID, "", nil)
	assert.Equal(suite.T(), anaID.String(), data(response)["property"].(map[string]interface{})["realtor_id"])
}

func (suite *APITestSuite) TestListingSurfaces() {
	_, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	suite.createProperty(anaToken, nil)
	suite.createProperty(anaToken, map[string]interface{}{
		"title": "Casa Savassi", "price": 1200000, "category": "house",
		"location": "Savassi, Belo Horizonte", "state": "MG",
	})

	w, response := suite.do(http.MethodGet, "/v1/listings/search?price_max=450000", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	results := response["data"].([]interface{})
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), "Apartamento Moema", results[0].(map[string]interface{})["title"])

	_, response = suite.do(http.MethodGet, "/v1/listings/home?price_max=450000", "", nil)
	assert.Len(suite.T(), response["data"].([]interface{}), 2)

	_, response = suite.do(http.MethodGet, "/v1/listings/properties?location=sao%20paulo", "", nil)
	assert.Len(suite.T(), response["data"].([]interface{}), 1)

	_, response = suite.do(http.MethodGet, "/v1/listings/search?bedrooms=4%2B", "", nil)
	assert.Empty(suite.T(), response["data"].([]interface{}))
	assert.NotEmpty(suite.T(), response["meta"].(map[string]interface{})["message"])

	_, response = suite.do(http.MethodGet, "/v1/listings/properties?limit=1&page=2", "", nil)
	assert.Len(suite.T(), response["data"].([]interface{}), 1)
	pagination := response["meta"].(map[string]interface{})["pagination"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), pagination["total"])
	assert.Equal(suite.T(), float64(2), pagination["total_pages"])
}

func (suite *APITestSuite) TestBlockingRemovesRealtorFromDashboardAndRanking() {
	anaID, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	_, brunoToken := suite.createRealtor("Bruno Lima", "bruno@example.com", "11977776666")

	soldID := suite.createProperty(anaToken, nil)
	suite.do(http.MethodPut, "/v1/properties/"+soldID+"/status", anaToken, map[string]interface{}{"status": "sold"})
	suite.createProperty(brunoToken, nil)

	_, response := suite.do(http.MethodGet, "/v1/admin/dashboard/stats", suite.adminToken, nil)
	stats := data(response)["stats"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), stats["realtor_count"])
	assert.Equal(suite.T(), float64(2), stats["total"])
	assert.Equal(suite.T(), float64(1), stats["sold"])

	_, response = suite.do(http.MethodGet, "/v1/realtors/ranking", "", nil)
	ranking := data(response)["ranking"].([]interface{})
	require.Len(suite.T(), ranking, 2)
	assert.Equal(suite.T(), "Ana Souza", ranking[0].(map[string]interface{})["name"])

	w, response := suite.do(http.MethodPut, "/v1/admin/realtors/"+anaID.String()+"/block", suite.adminToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	realtor := data(response)["realtor"].(map[string]interface{})
	assert.Equal(suite.T(), "blocked", realtor["lifecycle"])
	assert.NotNil(suite.T(), realtor["blocked_at"])

	_, response = suite.do(http.MethodGet, "/v1/admin/dashboard/stats", suite.adminToken, nil)
	stats = data(response)["stats"].(map[string]interface{})
	assert.Equal(suite.T(), float64(1), stats["realtor_count"])
	assert.Equal(suite.T(), float64(1), stats["total"])
	assert.Equal(suite.T(), float64(0), stats["sold"])

	_, response = suite.do(http.MethodGet, "/v1/realtors/ranking", "", nil)
	ranking = data(response)["ranking"].([]interface{})
	require.Len(suite.T(), ranking, 1)
	assert.Equal(suite.T(), "Bruno Lima", ranking[0].(map[string]interface{})["name"])

	// The blocked realtor's listing is kept untouched.
	w, response = suite.do(http.MethodGet, "/v1/properties/"+soldID, "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	property := data(response)["property"].(map[string]interface{})
	assert.Equal(suite.T(), "sold", property["status"])
	assert.Equal(suite.T(), anaID.String(), property["realtor_id"])

	w, _ = suite.do(http.MethodPost, "/v1/properties", anaToken, map[string]interface{}{
		"title": "Studio Vila Madalena", "price": 300000, "category": "apartment",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w, _ = suite.do(http.MethodPut, "/v1/admin/realtors/"+anaID.String()+"/unblock", suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestDeleteRealtorRequiresNoProperties() {
	anaID, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	propertyID := suite.createProperty(anaToken, nil)

	w, response := suite.do(http.MethodDelete, "/v1/admin/realtors/"+anaID.String(), suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", errorCode(response))

	w, _ = suite.do(http.MethodDelete, "/v1/properties/"+propertyID, anaToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodDelete, "/v1/admin/realtors/"+anaID.String(), suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/v1/admin/realtors/"+anaID.String(), suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestResetPasswordAndRebuild() {
	anaID, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	suite.createProperty(anaToken, nil)

	w, response := suite.do(http.MethodPut, "/v1/admin/realtors/"+anaID.String()+"/password", suite.adminToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(suite.T(), data(response)["temporary_password"])

	w, response = suite.do(http.MethodPut, "/v1/admin/realtors/"+anaID.String()+"/password", suite.adminToken, map[string]interface{}{
		"password": "weak",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errorCode(response))

	w, response = suite.do(http.MethodPost, "/v1/admin/stats/rebuild", suite.adminToken, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(1), data(response)["realtors"])
}

func (suite *APITestSuite) TestUploadImages() {
	_, anaToken := suite.createRealtor("Ana Souza", "ana@example.com", "11988887777")
	propertyID := suite.createProperty(anaToken, nil)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("images", "sala.png")
		require.NoError(suite.T(), err)
		_, err = part.Write(content)
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/properties/"+propertyID+"/images", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+anaToken)
		w := httptest.NewRecorder()
		suite.router.Engine.ServeHTTP(w, req)
		return w
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	w := upload(png)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	images := data(response)["images"].([]interface{})
	require.Len(suite.T(), images, 1)
	assert.True(suite.T(), strings.HasPrefix(images[0].(string), "http://localhost:8080/uploads/properties/"+propertyID+"/"))

	w = upload([]byte("plain text is not an image"))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
