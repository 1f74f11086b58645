// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name        string      `json:"name" gorm:"size:255;not null"`
	Description string      `json:"description" gorm:"type:text"`
	SKU         string      `json:"sku" gorm:"size:100;index"`
	Brand       string      `json:"brand" gorm:"size:100"`
	Category    string      `json:"category" gorm:"size:100;index"`
	Unit        string      `json:"unit" gorm:"size:50"`
	ProductType ProductType `json:"product_type" gorm:"type:varchar(30);default:'standard';index"`

	// Pricing. Price is always present; for perfiles it is derived as
	// weight_per_unit * price_per_kg, for chapas_conformadas as
	// kg_per_meter * price_per_kg. The derivation is refreshed by the
	// price-group recompute operation, never implicitly.
	Price         float64 `json:"price" gorm:"type:decimal(12,2);not null"`
	WeightPerUnit float64 `json:"weight_per_unit,omitempty" gorm:"type:decimal(10,3)"`
	KgPerMeter    float64 `json:"kg_per_meter,omitempty" gorm:"type:decimal(10,3)"`
	PricePerKg    float64 `json:"price_per_kg,omitempty" gorm:"type:decimal(12,4)"`

	StockType   StockType `json:"stock_type" gorm:"type:varchar(20);default:'quantity'"`
	Stock       int       `json:"stock" gorm:"default:0"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`

	// Dimension tags distinguishing variants within a price-group family.
	Thickness string `json:"thickness,omitempty" gorm:"size:50"`
	Size      string `json:"size,omitempty" gorm:"size:50"`

	PriceGroupID *uuid.UUID     `json:"price_group_id,omitempty" gorm:"type:uuid;index"`
	Featured     bool           `json:"featured" gorm:"default:false;index"`
	PrimaryImage string         `json:"primary_image" gorm:"size:512"`
	Tags         pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`

	// Relationships
	PriceGroup *PriceGroup    `json:"price_group,omitempty" gorm:"foreignKey:PriceGroupID"`
	Images     []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

// IsDerived reports whether the product's unit price comes from a per-kg
// rate rather than a flat price.
func (p *Product) IsDerived() bool {
	return p.ProductType == ProductTypePerfiles || p.ProductType == ProductTypeChapasConformadas
}

// DimensionFactor is the physical quantity multiplied by the per-kg rate:
// weight per unit for perfiles, kilograms per linear meter for chapas.
func (p *Product) DimensionFactor() float64 {
	switch p.ProductType {
	case ProductTypePerfiles:
		return p.WeightPerUnit
	case ProductTypeChapasConformadas:
		return p.KgPerMeter
	default:
		return 0
	}
}

// InStock reports purchasability under either stock model.
func (p *Product) InStock() bool {
	if p.StockType == StockTypeAvailability {
		return p.IsAvailable
	}
	return p.Stock > 0
}
