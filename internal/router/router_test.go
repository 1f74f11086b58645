// internal/router/router_test.go
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/services"
)

func setupRouterTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:router_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{},
		&models.PriceGroup{}, &models.PriceGroupPrice{},
		&models.Product{}, &models.ProductImage{},
		&models.Order{}, &models.OrderItem{},
	))

	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"UYU":40}}`))
	}))
	t.Cleanup(rateSrv.Close)

	cfg := &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "router-test-secret", SessionTTL: 1},
		Exchange:    config.ExchangeConfig{APIURL: rateSrv.URL},
		Checkout: config.CheckoutConfig{
			ShippingFlatFee:       350,
			FreeShippingThreshold: 15000,
		},
	}

	exchangeService := services.NewExchangeService(&cfg.Exchange)
	return Initialize(db, cfg, exchangeService), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupRouterTest(t)
	rec := doJSON(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductPriceEndpoint(t *testing.T) {
	r, db := setupRouterTest(t)

	product := models.Product{Name: "Bolsa de portland", ProductType: models.ProductTypeStandard, Price: 10}
	require.NoError(t, db.Create(&product).Error)

	rec := doJSON(t, r, http.MethodGet, "/api/products/"+product.ID.String()+"/price", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			PriceAvailable bool    `json:"price_available"`
			Price          float64 `json:"price"`
			Currency       string  `json:"currency"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.PriceAvailable)
	assert.Equal(t, 488.0, resp.Data.Price) // 10 USD, taxed, at 40 UYU/USD
	assert.Equal(t, "UYU", resp.Data.Currency)
}

func TestProductPriceConsultarPrecio(t *testing.T) {
	r, db := setupRouterTest(t)

	product := models.Product{Name: "Perfil sin datos", ProductType: models.ProductTypePerfiles}
	require.NoError(t, db.Create(&product).Error)

	rec := doJSON(t, r, http.MethodGet, "/api/products/"+product.ID.String()+"/price", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			PriceAvailable bool `json:"price_available"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.PriceAvailable)
}

func TestAdminListingRoutes(t *testing.T) {
	r, db := setupRouterTest(t)

	require.NoError(t, db.Create(&models.Product{Name: "Bolsa de portland", ProductType: models.ProductTypeStandard, Price: 10}).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Accesorios", Slug: "accesorios"}).Error)
	require.NoError(t, db.Create(&models.PriceGroup{Name: "Perfiles C"}).Error)

	admin := models.User{Email: "admin@construmax.com.uy", Role: models.UserRoleAdmin}
	require.NoError(t, admin.SetPassword("secreto123"))
	require.NoError(t, db.Create(&admin).Error)

	rec := doJSON(t, r, http.MethodPost, "/api/admin/login",
		`{"email":"admin@construmax.com.uy","password":"secreto123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	for _, path := range []string{
		"/api/admin/products",
		"/api/admin/price-groups",
		"/api/admin/categories",
	} {
		rec = doJSON(t, r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = doJSON(t, r, http.MethodGet, path, "", login.Data.Token)
		assert.Equal(t, http.StatusOK, rec.Code, path+": "+rec.Body.String())
	}
}

func TestCheckoutAndAdminStatusFlow(t *testing.T) {
	r, db := setupRouterTest(t)

	product := models.Product{Name: "Bolsa de portland", ProductType: models.ProductTypeStandard, Price: 10, Stock: 50}
	require.NoError(t, db.Create(&product).Error)

	admin := models.User{Email: "admin@construmax.com.uy", Role: models.UserRoleAdmin}
	require.NoError(t, admin.SetPassword("secreto123"))
	require.NoError(t, db.Create(&admin).Error)

	// Anonymous checkout.
	checkout := `{
		"customer_name": "Ana Rodríguez",
		"customer_email": "ana@example.com",
		"customer_phone": "099123456",
		"delivery_method": "pickup",
		"payment_method": "cash",
		"items": [{"product_id": "` + product.ID.String() + `", "quantity": 2}]
	}`
	rec := doJSON(t, r, http.MethodPost, "/api/orders", checkout, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			Order struct {
				ID          string  `json:"id"`
				OrderNumber string  `json:"order_number"`
				Total       float64 `json:"total"`
			} `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Data.Order.OrderNumber, "CM-"))
	assert.Equal(t, 976.0, created.Data.Order.Total)

	// Admin endpoints reject anonymous callers.
	rec = doJSON(t, r, http.MethodGet, "/api/admin/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Login and move the order forward.
	rec = doJSON(t, r, http.MethodPost, "/api/admin/login",
		`{"email":"admin@construmax.com.uy","password":"secreto123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	rec = doJSON(t, r, http.MethodPatch,
		"/api/admin/orders/"+created.Data.Order.ID+"/status",
		`{"status":"confirmed"}`, login.Data.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A skip-ahead transition is rejected.
	rec = doJSON(t, r, http.MethodPatch,
		"/api/admin/orders/"+created.Data.Order.ID+"/status",
		`{"status":"delivered"}`, login.Data.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
