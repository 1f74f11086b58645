// internal/models/price_group.go
package models

import (
	"github.com/google/uuid"
)

// PriceGroup is a named bucket of products sharing a per-kilogram price.
// Its Thickness/Size flags declare which dimensions member products vary
// along. A group must keep at least one active price at all times.
type PriceGroup struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"size:100;index"`
	Thickness   bool   `json:"thickness" gorm:"default:false"`
	Size        bool   `json:"size" gorm:"default:false"`

	// Relationships
	Prices   []PriceGroupPrice `json:"prices,omitempty" gorm:"foreignKey:PriceGroupID"`
	Products []Product         `json:"products,omitempty" gorm:"foreignKey:PriceGroupID"`
}

type PriceGroupPrice struct {
	BaseModel
	PriceGroupID uuid.UUID `json:"price_group_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	PricePerKg   float64   `json:"price_per_kg" gorm:"type:decimal(12,4);not null"`
	Currency     string    `json:"currency" gorm:"size:10;default:'USD'"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
}

// ActivePricePerKg returns the group's current active per-kg rate, or 0 if
// no active price exists (a data state the business rules try to prevent).
func (g *PriceGroup) ActivePricePerKg() float64 {
	for _, p := range g.Prices {
		if p.IsActive {
			return p.PricePerKg
		}
	}
	return 0
}
