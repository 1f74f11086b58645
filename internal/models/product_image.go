// internal/models/product_image.go
package models

import (
	"github.com/google/uuid"
)

// ProductImage references an externally hosted image by URL.
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string    `json:"url" gorm:"size:512;not null"`
	Key       string    `json:"key" gorm:"size:512"`
	Alt       string    `json:"alt" gorm:"size:255"`
	Position  int       `json:"position" gorm:"default:0"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
}
