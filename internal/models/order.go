// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order is created once at checkout and afterwards mutated only through
// its status field by the admin. Items are inserted with the header and
// never change.
type Order struct {
	BaseModel
	OrderNumber string `json:"order_number" gorm:"size:30;not null;uniqueIndex"`

	CustomerName  string `json:"customer_name" gorm:"size:255;not null"`
	CustomerEmail string `json:"customer_email" gorm:"size:255;not null;index"`
	CustomerPhone string `json:"customer_phone" gorm:"size:50;not null"`

	DeliveryMethod  DeliveryMethod `json:"delivery_method" gorm:"type:varchar(20);not null"`
	DeliveryAddress string         `json:"delivery_address" gorm:"size:512"`
	DeliveryCity    string         `json:"delivery_city" gorm:"size:100"`
	DeliveryNotes   string         `json:"delivery_notes" gorm:"type:text"`

	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`

	Subtotal float64 `json:"subtotal" gorm:"type:decimal(14,2);not null"`
	Shipping float64 `json:"shipping" gorm:"type:decimal(14,2);not null"`
	Total    float64 `json:"total" gorm:"type:decimal(14,2);not null"`
	Currency string  `json:"currency" gorm:"size:10;default:'UYU'"`

	Status OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `json:"product_id,omitempty" gorm:"type:uuid;index"`
	ProductName string     `json:"product_name" gorm:"size:255;not null"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64    `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	LineTotal   float64    `json:"line_total" gorm:"type:decimal(14,2);not null"`

	// Cutting-list sub-calculations (length x count) preserved for display
	// on sheet-metal line items, serialized as JSON.
	CalculationDetails string `json:"calculation_details,omitempty" gorm:"type:text"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
