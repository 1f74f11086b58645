// internal/cart/cart.go
package cart

import (
	"math"

	"github.com/google/uuid"

	"github.com/construmax/construmax-backend/internal/models"
)

// AvailabilityMax caps the quantity of availability-tracked (made to
// order) products, which carry no numeric stock.
const AvailabilityMax = 10.0

// CalculationDetail is one length-by-count sub-computation of a
// sheet-metal cutting list, kept on the line item for display.
type CalculationDetail struct {
	Length float64 `json:"length"`
	Count  int     `json:"count"`
}

// LineItem pairs a product with the chosen quantity. UnitPrice is fixed
// when the item enters the cart.
type LineItem struct {
	Product            models.Product      `json:"product"`
	Quantity           float64             `json:"quantity"`
	UnitPrice          float64             `json:"unit_price"`
	CalculationDetails []CalculationDetail `json:"calculation_details,omitempty"`
}

// LineTotal is unit price times quantity, rounded to cents.
func (li *LineItem) LineTotal() float64 {
	return math.Round(li.UnitPrice*li.Quantity*100) / 100
}

// Cart aggregates line items client-side until checkout. All mutations
// happen in event-handler order; no locking is needed or provided.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// MinQuantity is the smallest valid quantity for the product type:
// 0.1 fractional meters for conformed sheet goods, 1 whole unit otherwise.
func MinQuantity(p *models.Product) float64 {
	if p.ProductType == models.ProductTypeChapasConformadas {
		return 0.1
	}
	return 1
}

// QuantityStep mirrors MinQuantity: 0.1 for linear-meter goods, 1 otherwise.
func QuantityStep(p *models.Product) float64 {
	return MinQuantity(p)
}

// MaxQuantity is the stock count for quantity-tracked products and a fixed
// small ceiling for availability-tracked ones.
func MaxQuantity(p *models.Product) float64 {
	if p.StockType == models.StockTypeAvailability {
		return AvailabilityMax
	}
	return float64(p.Stock)
}

func clampQuantity(p *models.Product, qty float64) float64 {
	min, max := MinQuantity(p), MaxQuantity(p)
	if max < min {
		max = min
	}
	qty = math.Max(min, math.Min(max, qty))
	// Snap to the step so 2.34 meters becomes 2.3, not a dangling fraction.
	step := QuantityStep(p)
	return math.Round(qty/step) * step
}

// AddItem merges by product: an existing line gains quantity and has its
// calculation details replaced by the latest value; a new product gets a
// new line.
func (c *Cart) AddItem(p models.Product, unitPrice, qty float64, details []CalculationDetail) {
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity = clampQuantity(&p, c.items[i].Quantity+qty)
			if details != nil {
				c.items[i].CalculationDetails = details
			}
			return
		}
	}
	c.items = append(c.items, LineItem{
		Product:            p,
		Quantity:           clampQuantity(&p, qty),
		UnitPrice:          unitPrice,
		CalculationDetails: details,
	})
}

// UpdateQuantity clamps the new quantity into [minimum, availableMax].
func (c *Cart) UpdateQuantity(productID uuid.UUID, qty float64) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = clampQuantity(&c.items[i].Product, qty)
			return
		}
	}
}

func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// GetItemQuantity returns 0 for absent products.
func (c *Cart) GetItemQuantity(productID uuid.UUID) float64 {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return c.items[i].Quantity
		}
	}
	return 0
}

func (c *Cart) Items() []LineItem {
	return c.items
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Total is recomputed from scratch on every call; nothing is cached.
func (c *Cart) Total() float64 {
	var total float64
	for i := range c.items {
		total += c.items[i].LineTotal()
	}
	return math.Round(total*100) / 100
}
