// internal/database/legacy.go
package database

import (
	"encoding/json"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/models"
)

// LegacyMetadata is the JSON blob older catalog rows smuggled inside the
// description field before product_type became a real column.
type LegacyMetadata struct {
	ProductType   string  `json:"productType"`
	WeightPerUnit float64 `json:"weightPerUnit"`
	KgPerMeter    float64 `json:"kgPerMeter"`
	PricePerKg    float64 `json:"pricePerKg"`
	StockType     string  `json:"stockType"`
	IsAvailable   *bool   `json:"isAvailable"`
}

// ParseLegacyDescription splits a legacy description into its human text
// and the trailing metadata blob. Unparseable or absent JSON degrades to
// standard-product semantics: the whole text is returned as-is with no
// metadata.
func ParseLegacyDescription(description string) (text string, meta *LegacyMetadata) {
	idx := strings.Index(description, "{")
	if idx < 0 {
		return description, nil
	}

	var parsed LegacyMetadata
	if err := json.Unmarshal([]byte(description[idx:]), &parsed); err != nil {
		return description, nil
	}
	if parsed.ProductType == "" {
		return description, nil
	}

	return strings.TrimSpace(description[:idx]), &parsed
}

// ImportLegacyMetadata is a one-shot migration: rows still carrying a
// metadata blob in their description get their typed columns populated and
// the blob stripped. Safe to re-run; already-migrated rows have nothing to
// parse. Steady-state code never reads the blob.
func ImportLegacyMetadata(db *gorm.DB) error {
	var products []models.Product
	if err := db.Where("description LIKE ?", "%{%").Find(&products).Error; err != nil {
		return err
	}

	migrated := 0
	for i := range products {
		p := &products[i]
		text, meta := ParseLegacyDescription(p.Description)
		if meta == nil {
			continue
		}

		p.Description = text
		switch models.ProductType(meta.ProductType) {
		case models.ProductTypePerfiles:
			p.ProductType = models.ProductTypePerfiles
			p.WeightPerUnit = meta.WeightPerUnit
		case models.ProductTypeChapasConformadas:
			p.ProductType = models.ProductTypeChapasConformadas
			p.KgPerMeter = meta.KgPerMeter
		default:
			p.ProductType = models.ProductTypeStandard
		}
		if meta.PricePerKg > 0 {
			p.PricePerKg = meta.PricePerKg
		}
		if p.IsDerived() {
			// Derived types are always availability-stocked.
			p.StockType = models.StockTypeAvailability
			if meta.IsAvailable != nil {
				p.IsAvailable = *meta.IsAvailable
			}
		} else if meta.StockType != "" {
			p.StockType = models.StockType(meta.StockType)
		}

		if err := db.Save(p).Error; err != nil {
			log.Printf("Warning: failed to migrate legacy product %s: %v", p.ID, err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("Migrated legacy metadata for %d products", migrated)
	}
	return nil
}
