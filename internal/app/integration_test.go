package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jpark/addressbook-backend/internal/app/controller"
	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/internal/app/service"
	"github.com/jpark/addressbook-backend/internal/db"
	"github.com/jpark/addressbook-backend/internal/middleware"
	"github.com/jpark/addressbook-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	addressService := service.NewAddressService(addressRepo)
	exportService := service.NewExportService(addressRepo, nil)

	authController := controller.NewAuthController(authService)
	addressController := controller.NewAddressController(addressService, nil)
	exportController := controller.NewExportController(exportService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.Me)
	}

	addresses := router.Group("/api/v1/addresses")
	{
		addresses.GET("", addressController.ListAddresses)
		addresses.POST("/search", addressController.SearchByDistance)
		addresses.GET("/export",
			authMiddleware.Authenticate(),
			authMiddleware.RequireRole(string(model.RoleAdmin)),
			exportController.ExportAddresses,
		)
		addresses.GET("/:id", addressController.GetAddress)
		addresses.POST("", authMiddleware.Authenticate(), addressController.CreateAddress)
		addresses.PUT("/:id", authMiddleware.Authenticate(), addressController.UpdateAddress)
		addresses.DELETE("/:id", authMiddleware.Authenticate(), addressController.DeleteAddress)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
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
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) registerUser(t *testing.T, email string) *util.TokenPair {
	t.Helper()

	w := ts.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "password123",
		"name":     "Integration User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Tokens util.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp.Tokens
}

func (ts *TestServer) adminToken(t *testing.T) string {
	t.Helper()

	hash, err := util.HashPassword("admin-password")
	require.NoError(t, err)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, ts.DB.Create(admin).Error)

	tokens, err := util.GenerateTokenPair(admin.ID, admin.Email, string(admin.Role), "test-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestIntegration_AddressLifecycle(t *testing.T) {
	ts := setupIntegrationTest(t)
	tokens := ts.registerUser(t, "lifecycle@example.com")

	// Create
	w := ts.request(t, http.MethodPost, "/api/v1/addresses", tokens.AccessToken, map[string]interface{}{
		"street":    "10 Downing Street",
		"city":      "London",
		"state":     "Greater London",
		"zip_code":  "SW1A 2AA",
		"latitude":  51.5034,
		"longitude": -0.1276,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Address model.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Address.ID
	require.NotZero(t, id)

	// Read without auth
	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/v1/addresses/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Update
	w = ts.request(t, http.MethodPut, fmt.Sprintf("/api/v1/addresses/%d", id), tokens.AccessToken, map[string]interface{}{
		"zip_code": "SW1A 2AB",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Address model.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "SW1A 2AB", updated.Address.ZipCode)
	assert.Equal(t, "10 Downing Street", updated.Address.Street)

	// Delete
	w = ts.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/addresses/%d", id), tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/v1/addresses/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_MutationsRequireAuth(t *testing.T) {
	ts := setupIntegrationTest(t)

	body := map[string]interface{}{
		"street":    "1 Secure Way",
		"city":      "Lockdown",
		"state":     "LS",
		"zip_code":  "00001",
		"latitude":  1.0,
		"longitude": 1.0,
	}

	w := ts.request(t, http.MethodPost, "/api/v1/addresses", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/addresses/1", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/v1/addresses/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntegration_DistanceSearchFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	tokens := ts.registerUser(t, "searcher@example.com")

	locations := []map[string]interface{}{
		{"street": "Westminster", "city": "London", "state": "GL", "zip_code": "SW1", "latitude": 51.4995, "longitude": -0.1248},
		{"street": "Tour Eiffel", "city": "Paris", "state": "IDF", "zip_code": "75007", "latitude": 48.8584, "longitude": 2.2945},
		{"street": "Brandenburger Tor", "city": "Berlin", "state": "BE", "zip_code": "10117", "latitude": 52.5163, "longitude": 13.3777},
	}
	for _, loc := range locations {
		w := ts.request(t, http.MethodPost, "/api/v1/addresses", tokens.AccessToken, loc)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// 400 km around London reaches Paris but not Berlin
	w := ts.request(t, http.MethodPost, "/api/v1/addresses/search", "", map[string]interface{}{
		"latitude":    51.5074,
		"longitude":   -0.1278,
		"distance_km": 400.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Addresses []model.Address `json:"addresses"`
		Count     int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "London", resp.Addresses[0].City)
	assert.Equal(t, "Paris", resp.Addresses[1].City)
}

func TestIntegration_ExportRequiresAdmin(t *testing.T) {
	ts := setupIntegrationTest(t)
	userTokens := ts.registerUser(t, "regular@example.com")

	// Regular users are rejected
	w := ts.request(t, http.MethodGet, "/api/v1/addresses/export", userTokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anonymous requests are rejected
	w = ts.request(t, http.MethodGet, "/api/v1/addresses/export", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Admins get a workbook
	adminToken := ts.adminToken(t)
	w = ts.request(t, http.MethodGet, "/api/v1/addresses/export", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"),
	)
	assert.NotZero(t, w.Body.Len())
}
