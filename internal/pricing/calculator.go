// internal/pricing/calculator.go
package pricing

import (
	"errors"
	"math"

	"github.com/construmax/construmax-backend/internal/models"
)

// VATRate is the fixed 22% IVA applied to displayed prices.
const VATRate = 1.22

// ErrIncompletePricing signals that a derived-price product is missing its
// per-kg rate or dimension factor. Callers render "consultar precio"
// instead of a number.
var ErrIncompletePricing = errors.New("pricing: incomplete pricing data")

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeUnitPrice returns the product's unit price in USD.
//
// Standard products carry a flat price which is returned unchanged.
// Derived products (perfiles, chapas_conformadas) multiply their dimension
// factor by the per-kg rate; a missing or non-positive component is an
// ErrIncompletePricing, never a silent zero.
func ComputeUnitPrice(p *models.Product) (float64, error) {
	if !p.IsDerived() {
		return p.Price, nil
	}

	factor := p.DimensionFactor()
	if factor <= 0 || p.PricePerKg <= 0 {
		return 0, ErrIncompletePricing
	}

	return Round2(factor * p.PricePerKg), nil
}

// ApplyTax adds the fixed 22% VAT.
func ApplyTax(amount float64) float64 {
	return Round2(amount * VATRate)
}

// Convert applies a USD to local-currency exchange rate, rounded to the
// display currency's minor unit.
func Convert(amountUSD, rate float64) float64 {
	return Round2(amountUSD * rate)
}

// DisplayPrice is the full storefront derivation: unit price, taxed, then
// converted to local currency.
func DisplayPrice(p *models.Product, rate float64) (float64, error) {
	unit, err := ComputeUnitPrice(p)
	if err != nil {
		return 0, err
	}
	return Convert(ApplyTax(unit), rate), nil
}
