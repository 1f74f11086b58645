// internal/cart/cart_test.go
package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construmax/construmax-backend/internal/models"
)

func stdProduct(stock int) models.Product {
	return models.Product{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		Name:        "Hierro 8mm",
		ProductType: models.ProductTypeStandard,
		StockType:   models.StockTypeQuantity,
		Stock:       stock,
	}
}

func chapaProduct() models.Product {
	return models.Product{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		Name:        "Chapa trapezoidal",
		ProductType: models.ProductTypeChapasConformadas,
		StockType:   models.StockTypeAvailability,
		IsAvailable: true,
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	c := New()
	p := stdProduct(50)

	c.AddItem(p, 100, 2, nil)
	c.AddItem(p, 100, 3, nil)

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 5.0, c.GetItemQuantity(p.ID))
}

func TestAddItemReplacesCalculationDetails(t *testing.T) {
	c := New()
	p := chapaProduct()

	c.AddItem(p, 200, 2.5, []CalculationDetail{{Length: 2.5, Count: 1}})
	c.AddItem(p, 200, 1.5, []CalculationDetail{{Length: 1.5, Count: 1}, {Length: 2.5, Count: 1}})

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 4.0, c.Items()[0].Quantity)
	assert.Len(t, c.Items()[0].CalculationDetails, 2)
	assert.Equal(t, 1.5, c.Items()[0].CalculationDetails[0].Length)
}

func TestUpdateQuantityClampsToMinimum(t *testing.T) {
	c := New()
	std := stdProduct(50)
	chapa := chapaProduct()

	c.AddItem(std, 100, 3, nil)
	c.AddItem(chapa, 200, 2, nil)

	c.UpdateQuantity(std.ID, -5)
	c.UpdateQuantity(chapa.ID, -5)

	assert.Equal(t, 1.0, c.GetItemQuantity(std.ID))
	assert.Equal(t, 0.1, c.GetItemQuantity(chapa.ID))
}

func TestUpdateQuantityClampsToAvailableMax(t *testing.T) {
	c := New()
	std := stdProduct(7)
	chapa := chapaProduct()

	c.AddItem(std, 100, 1, nil)
	c.AddItem(chapa, 200, 1, nil)

	c.UpdateQuantity(std.ID, 99)
	c.UpdateQuantity(chapa.ID, 99)

	assert.Equal(t, 7.0, c.GetItemQuantity(std.ID))
	assert.Equal(t, AvailabilityMax, c.GetItemQuantity(chapa.ID))
}

func TestFractionalQuantitySnapsToStep(t *testing.T) {
	c := New()
	chapa := chapaProduct()

	c.AddItem(chapa, 200, 2.34, nil)
	assert.InDelta(t, 2.3, c.GetItemQuantity(chapa.ID), 1e-9)
}

func TestTotalRecomputedOnMutation(t *testing.T) {
	c := New()
	a := stdProduct(50)
	b := chapaProduct()

	c.AddItem(a, 100, 2, nil)
	c.AddItem(b, 48.8, 2.5, nil)
	assert.Equal(t, 322.0, c.Total()) // 200 + 122

	c.RemoveItem(a.ID)
	assert.Equal(t, 122.0, c.Total())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0.0, c.Total())
}

func TestGetItemQuantityAbsent(t *testing.T) {
	c := New()
	assert.Equal(t, 0.0, c.GetItemQuantity(uuid.New()))
}
