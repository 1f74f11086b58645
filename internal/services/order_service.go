// internal/services/order_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/cart"
	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/pricing"
	"github.com/construmax/construmax-backend/internal/utils"
)

// ErrInvalidTransition rejects order status changes outside the linear
// pending -> confirmed -> preparing -> ready -> delivered flow (with the
// side exit to cancelled).
var ErrInvalidTransition = errors.New("invalid order status transition")

type OrderService struct {
	db           *gorm.DB
	config       *config.Config
	exchange     *ExchangeService
	notification *NotificationService
}

type CheckoutItem struct {
	ProductID          uuid.UUID                `json:"product_id" validate:"required"`
	Quantity           float64                  `json:"quantity" validate:"required,gt=0"`
	CalculationDetails []cart.CalculationDetail `json:"calculation_details,omitempty"`
}

type CheckoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=255"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"required,min=6,max=50"`

	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	DeliveryAddress string `json:"delivery_address,omitempty" validate:"omitempty,max=512"`
	DeliveryCity    string `json:"delivery_city,omitempty" validate:"omitempty,max=100"`
	DeliveryNotes   string `json:"delivery_notes,omitempty"`

	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash transfer gateway"`

	Items []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed preparing ready delivered cancelled"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status *models.OrderStatus `json:"status,omitempty"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, exchange *ExchangeService, notification *NotificationService) *OrderService {
	return &OrderService{
		db:           db,
		config:       cfg,
		exchange:     exchange,
		notification: notification,
	}
}

// ComputeShipping is the flat-fee-below-threshold rule; the threshold and
// fee come from configuration.
func (s *OrderService) ComputeShipping(subtotal float64) float64 {
	if subtotal >= s.config.Checkout.FreeShippingThreshold {
		return 0
	}
	return s.config.Checkout.ShippingFlatFee
}

// Assemble validates the checkout payload and shapes the order that will
// be persisted: line items priced in tax-inclusive UYU, subtotal, shipping
// by threshold (zero for pickup), total. Nothing is written.
func (s *OrderService) Assemble(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if models.DeliveryMethod(req.DeliveryMethod) == models.DeliveryMethodDelivery && req.DeliveryAddress == "" {
		return nil, errors.New("validation failed: delivery_address is required for delivery orders")
	}

	rate, err := s.exchange.GetRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot price order: %w", err)
	}

	order := &models.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryMethod:  models.DeliveryMethod(req.DeliveryMethod),
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryNotes:   req.DeliveryNotes,
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		Currency:        "UYU",
		Status:          models.OrderStatusPending,
	}

	var subtotal float64
	for _, item := range req.Items {
		var product models.Product
		if err := s.db.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %s not found", item.ProductID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}

		unitPrice, err := pricing.DisplayPrice(&product, rate.USDToUYU)
		if err != nil {
			return nil, fmt.Errorf("product %q has incomplete pricing data", product.Name)
		}

		lineTotal := pricing.Round2(unitPrice * item.Quantity)
		subtotal += lineTotal

		orderItem := models.OrderItem{
			ProductID:   &product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		}

		if len(item.CalculationDetails) > 0 {
			encoded, err := json.Marshal(item.CalculationDetails)
			if err != nil {
				logrus.WithError(err).WithField("product_id", product.ID).
					Warn("Failed to encode calculation details, order item stored without them")
			} else {
				orderItem.CalculationDetails = string(encoded)
			}
		}

		order.Items = append(order.Items, orderItem)
	}

	order.Subtotal = pricing.Round2(subtotal)
	if order.DeliveryMethod == models.DeliveryMethodDelivery {
		order.Shipping = s.ComputeShipping(order.Subtotal)
	}
	order.Total = pricing.Round2(order.Subtotal + order.Shipping)

	return order, nil
}

// CreateOrder assembles and persists the order. The header and its items
// go in a single create; there is no payment state machine and no retry.
func (s *OrderService) CreateOrder(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	order, err := s.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	// The random suffix can collide within a day; regenerate and retry on
	// the unique constraint.
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		orderNumber, err := utils.GenerateOrderNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order number: %w", err)
		}
		order.OrderNumber = orderNumber

		createErr = s.db.Create(order).Error
		if createErr == nil {
			break
		}
		if !isUniqueViolation(createErr) {
			return nil, fmt.Errorf("failed to create order: %w", createErr)
		}
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create order: %w", createErr)
	}

	// Confirmation emails are fire-and-forget; a send failure never fails
	// the checkout.
	if s.notification != nil {
		go s.notification.SendOrderConfirmation(order)
	}

	return order, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func (s *OrderService) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *OrderService) SearchOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(customer_name) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total", "status", "order_number"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderStatus moves the order along the linear status flow. Items
// are never touched.
func (s *OrderService) UpdateOrderStatus(id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	newStatus := models.OrderStatus(req.Status)
	if !models.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	if err := s.db.Model(order).Update("status", newStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = newStatus

	if s.notification != nil {
		go s.notification.SendOrderStatusUpdate(order)
	}

	return order, nil
}
