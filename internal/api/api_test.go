package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvaldivia/repuestos-analytics/internal/auth"
	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/loader"
	"github.com/hvaldivia/repuestos-analytics/internal/service"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	sales := []domain.SaleRecord{
		{ReceiptID: "R1", StoreID: 1, PartID: "A100", Quantity: 5, SaleDate: day("2025-01-10")},
		{ReceiptID: "R2", StoreID: 1, PartID: "A100", Quantity: 7, SaleDate: day("2025-02-10")},
		{ReceiptID: "R3", StoreID: 1, PartID: "B200", Quantity: 2, SaleDate: day("2025-02-11")},
	}
	stock := []domain.StockRecord{
		{StoreID: 1, PartID: "A100", StockQuantity: 3},
		{StoreID: 1, PartID: "B200", StockQuantity: 8},
	}
	catalog := []domain.BrandCatalogEntry{{LetterPrefix: "A", BrandName: "Acme"}}

	hash, err := auth.HashPassword("clave123")
	require.NoError(t, err)
	users := loader.NewUserStore([]domain.User{{Username: "ana", PasswordHash: hash}})

	authService, err := auth.NewService(users, config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 30})
	require.NoError(t, err)

	analyticsService := service.NewAnalyticsService(
		loader.NewSource(sales, stock, catalog),
		nil,
		config.ForecastConfig{UseLagFeatures: true},
	)

	return NewRouter(&Services{Analytics: analyticsService, Auth: authService}, nil)
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "clave123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func authedGet(router *gin.Engine, token, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := testRouter(t)

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyticsRequiresToken(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/analytics/sales?store_id=1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/analytics/sales?store_id=1", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoresEndpointReportsDateBounds(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/stores")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stores    []int64 `json:"stores"`
		DateStart *string `json:"date_start"`
		DateEnd   *string `json:"date_end"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{1}, resp.Stores)
	require.NotNil(t, resp.DateStart)
	require.NotNil(t, resp.DateEnd)
	assert.Equal(t, "2025-01-10", *resp.DateStart)
	assert.Equal(t, "2025-02-11", *resp.DateEnd)
}

func TestSalesEndpoint(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/sales?store_id=1&date_start=2025-02-01")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sales []domain.SaleRecord `json:"sales"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestTopProductsEndpoint(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/top_products?store_id=1&limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []domain.PartSales `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "A100", resp.Products[0].PartID)
}

func TestRecommendationsEndpoint(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/recommendations?store_id=1")
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.RecommendationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	total := len(report.Keep) + len(report.NoSales) + len(report.LowRotation) + len(report.Unclassified)
	assert.Equal(t, 2, total)
}

func TestForecastEndpoint(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/forecast?store_id=1")
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ForecastResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 202503, result.TargetMonth)
	assert.NotEmpty(t, result.Predictions)
}

func TestForecastEmptyWindowIs422(t *testing.T) {
	router := testRouter(t)
	token := loginToken(t, router)

	w := authedGet(router, token, "/api/v1/analytics/forecast?store_id=42")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
