// internal/pricing/calculator_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/construmax/construmax-backend/internal/models"
)

func TestComputeUnitPriceStandard(t *testing.T) {
	p := &models.Product{ProductType: models.ProductTypeStandard, Price: 149.90}

	got, err := ComputeUnitPrice(p)
	assert.NoError(t, err)
	assert.Equal(t, 149.90, got)
}

func TestComputeUnitPricePerfiles(t *testing.T) {
	p := &models.Product{
		ProductType:   models.ProductTypePerfiles,
		WeightPerUnit: 2.5,
		PricePerKg:    4.00,
	}

	got, err := ComputeUnitPrice(p)
	assert.NoError(t, err)
	assert.Equal(t, 10.00, got)
}

func TestComputeUnitPriceChapas(t *testing.T) {
	p := &models.Product{
		ProductType: models.ProductTypeChapasConformadas,
		KgPerMeter:  3.171,
		PricePerKg:  1.85,
	}

	got, err := ComputeUnitPrice(p)
	assert.NoError(t, err)
	assert.Equal(t, 5.87, got) // 3.171 * 1.85 = 5.86635, rounded to cents
}

func TestComputeUnitPriceIncompleteData(t *testing.T) {
	cases := []models.Product{
		{ProductType: models.ProductTypePerfiles, WeightPerUnit: 0, PricePerKg: 4},
		{ProductType: models.ProductTypePerfiles, WeightPerUnit: 2.5, PricePerKg: 0},
		{ProductType: models.ProductTypePerfiles, WeightPerUnit: -1, PricePerKg: 4},
		{ProductType: models.ProductTypeChapasConformadas, KgPerMeter: 0, PricePerKg: 2},
	}

	for _, p := range cases {
		_, err := ComputeUnitPrice(&p)
		assert.ErrorIs(t, err, ErrIncompletePricing)
	}
}

func TestApplyTax(t *testing.T) {
	assert.Equal(t, 12.20, ApplyTax(10.00))
	assert.Equal(t, 122.00, ApplyTax(100.00))
}

func TestConvert(t *testing.T) {
	assert.Equal(t, 488.00, Convert(12.20, 40))
	assert.Equal(t, 40.60, Convert(1.015, 40))
}

// Full round-trip from the derived unit price to the displayed UYU amount.
func TestDisplayPriceRoundTrip(t *testing.T) {
	p := &models.Product{
		ProductType:   models.ProductTypePerfiles,
		WeightPerUnit: 2.5,
		PricePerKg:    4.00,
	}

	got, err := DisplayPrice(p, 40)
	assert.NoError(t, err)
	assert.Equal(t, 488.00, got)
}

func TestDisplayPriceIncomplete(t *testing.T) {
	p := &models.Product{ProductType: models.ProductTypeChapasConformadas}

	_, err := DisplayPrice(p, 40)
	assert.ErrorIs(t, err, ErrIncompletePricing)
}
