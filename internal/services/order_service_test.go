// internal/services/order_service_test.go
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
)

func fixedRateService(usdToUYU float64) *ExchangeService {
	return &ExchangeService{
		cached: &ExchangeRate{
			USDToUYU:  usdToUYU,
			Source:    "test",
			FetchedAt: time.Now(),
		},
	}
}

func checkoutConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{
			ShippingFlatFee:       350,
			FreeShippingThreshold: 15000,
		},
	}
}

func seedStandardProduct(t *testing.T, db *gorm.DB, name string, priceUSD float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		ProductType: models.ProductTypeStandard,
		Price:       priceUSD,
		Stock:       50,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func checkoutRequest(items []CheckoutItem) *CheckoutRequest {
	return &CheckoutRequest{
		CustomerName:    "Ana Rodríguez",
		CustomerEmail:   "ana@example.com",
		CustomerPhone:   "099123456",
		DeliveryMethod:  "delivery",
		DeliveryAddress: "Av. Italia 1234",
		DeliveryCity:    "Montevideo",
		PaymentMethod:   "cash",
		Items:           items,
	}
}

func TestAssembleComputesTotalsWithShipping(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	// 10 USD -> 12.20 with tax -> 488 UYU per unit.
	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	order, err := svc.Assemble(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 2},
	}))
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 488.0, order.Items[0].UnitPrice)
	assert.Equal(t, 976.0, order.Items[0].LineTotal)
	assert.Equal(t, 976.0, order.Subtotal)
	assert.Equal(t, 350.0, order.Shipping)
	assert.Equal(t, 1326.0, order.Total)
	assert.Equal(t, "UYU", order.Currency)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestAssembleFreeShippingAboveThreshold(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	// 488 UYU per unit; 31 units clears the 15000 threshold.
	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	order, err := svc.Assemble(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 31},
	}))
	require.NoError(t, err)

	assert.Equal(t, 15128.0, order.Subtotal)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, 15128.0, order.Total)
}

func TestAssemblePickupSkipsShipping(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	req := checkoutRequest([]CheckoutItem{{ProductID: product.ID, Quantity: 1}})
	req.DeliveryMethod = "pickup"
	req.DeliveryAddress = ""

	order, err := svc.Assemble(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, order.Subtotal, order.Total)
}

func TestAssembleRequiresAddressForDelivery(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	req := checkoutRequest([]CheckoutItem{{ProductID: product.ID, Quantity: 1}})
	req.DeliveryAddress = ""

	_, err := svc.Assemble(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery_address")
}

func TestAssembleRejectsEmptyCart(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	_, err := svc.Assemble(context.Background(), checkoutRequest(nil))
	assert.Error(t, err)
}

func TestAssembleFailsWithoutExchangeRate(t *testing.T) {
	db := setupServiceDB(t)
	bad := &ExchangeService{
		config: &config.ExchangeConfig{APIURL: "http://127.0.0.1:0/nope"},
		client: &http.Client{Timeout: time.Second},
	}
	svc := NewOrderService(db, checkoutConfig(), bad, nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	_, err := svc.Assemble(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 1},
	}))
	assert.True(t, errors.Is(err, ErrRateUnavailable))
}

func TestCreateOrderPersistsHeaderAndItems(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)

	order, err := svc.CreateOrder(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 2},
	}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "CM-"))

	got, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Bolsa de portland", got.Items[0].ProductName)
	assert.Equal(t, 1326.0, got.Total)
}

func TestUpdateOrderStatusFollowsLinearFlow(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)
	order, err := svc.CreateOrder(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 1},
	}))
	require.NoError(t, err)

	// Skipping ahead is rejected.
	_, err = svc.UpdateOrderStatus(order.ID, &UpdateOrderStatusRequest{Status: "ready"})
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	for _, status := range []string{"confirmed", "preparing", "ready", "delivered"} {
		updated, err := svc.UpdateOrderStatus(order.ID, &UpdateOrderStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(status), updated.Status)
	}

	// Delivered is terminal.
	_, err = svc.UpdateOrderStatus(order.ID, &UpdateOrderStatusRequest{Status: "cancelled"})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestUpdateOrderStatusAllowsCancellation(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewOrderService(db, checkoutConfig(), fixedRateService(40), nil)

	product := seedStandardProduct(t, db, "Bolsa de portland", 10)
	order, err := svc.CreateOrder(context.Background(), checkoutRequest([]CheckoutItem{
		{ProductID: product.ID, Quantity: 1},
	}))
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(order.ID, &UpdateOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	_, err = svc.UpdateOrderStatus(order.ID, &UpdateOrderStatusRequest{Status: "confirmed"})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}
