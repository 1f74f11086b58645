// internal/services/pricegroup_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/pricing"
	"github.com/construmax/construmax-backend/internal/utils"
)

// ErrLastActivePrice rejects deactivating or deleting a group's only
// remaining active price.
var ErrLastActivePrice = errors.New("price group must keep at least one active price")

type PriceGroupService struct {
	db *gorm.DB
}

type PriceGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=100"`
	Thickness   bool   `json:"thickness"`
	Size        bool   `json:"size"`
}

type GroupPriceRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	PricePerKg float64 `json:"price_per_kg" validate:"required,gt=0"`
	Currency   string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func NewPriceGroupService(db *gorm.DB) *PriceGroupService {
	return &PriceGroupService{db: db}
}

func (s *PriceGroupService) ListGroups(category string) ([]models.PriceGroup, error) {
	query := s.db.Preload("Prices").Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("products.created_at ASC")
	})

	if category != "" {
		query = query.Where("category = ?", category)
	}

	var groups []models.PriceGroup
	if err := query.Order("name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price groups: %w", err)
	}
	return groups, nil
}

func (s *PriceGroupService) GetGroup(id uuid.UUID) (*models.PriceGroup, error) {
	var group models.PriceGroup
	if err := s.db.Preload("Prices").Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("products.created_at ASC")
	}).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("price group not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &group, nil
}

// CreateGroup creates the group together with its first price so the
// at-least-one-active-price invariant holds from birth.
func (s *PriceGroupService) CreateGroup(req *PriceGroupRequest, initialPrice *GroupPriceRequest) (*models.PriceGroup, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if initialPrice == nil {
		return nil, errors.New("a price group requires an initial price")
	}
	if err := utils.ValidateStruct(initialPrice); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.PriceGroup{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	group := &models.PriceGroup{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Thickness:   req.Thickness,
		Size:        req.Size,
		Prices: []models.PriceGroupPrice{{
			Name:       initialPrice.Name,
			PricePerKg: initialPrice.PricePerKg,
			Currency:   currencyOrDefault(initialPrice.Currency),
			IsActive:   true,
		}},
	}

	if err := s.db.Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create price group: %w", err)
	}

	return group, nil
}

func (s *PriceGroupService) UpdateGroup(id uuid.UUID, req *PriceGroupRequest) (*models.PriceGroup, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	group, err := s.GetGroup(id)
	if err != nil {
		return nil, err
	}

	if req.Name != group.Name {
		var count int64
		if err := s.db.Model(&models.PriceGroup{}).
			Where("name = ? AND id <> ?", req.Name, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return nil, ErrDuplicateName
		}
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"thickness":   req.Thickness,
		"size":        req.Size,
	}

	if err := s.db.Model(group).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update price group: %w", err)
	}

	return s.GetGroup(id)
}

// DeleteGroup refuses while member products exist unless force is set,
// which detaches them (nulls the foreign key) instead of blocking forever.
func (s *PriceGroupService) DeleteGroup(id uuid.UUID, force bool) error {
	group, err := s.GetGroup(id)
	if err != nil {
		return err
	}

	if len(group.Products) > 0 {
		if !force {
			return fmt.Errorf("%w: %d products belong to group %q (retry with force=true to detach them)",
				ErrHasDependents, len(group.Products), group.Name)
		}
		if err := s.db.Model(&models.Product{}).
			Where("price_group_id = ?", id).
			Update("price_group_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
	}

	if err := s.db.Where("price_group_id = ?", id).Delete(&models.PriceGroupPrice{}).Error; err != nil {
		return fmt.Errorf("failed to delete group prices: %w", err)
	}

	if err := s.db.Delete(&models.PriceGroup{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete price group: %w", err)
	}

	return nil
}

func (s *PriceGroupService) AddPrice(groupID uuid.UUID, req *GroupPriceRequest) (*models.PriceGroupPrice, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	price := &models.PriceGroupPrice{
		PriceGroupID: groupID,
		Name:         req.Name,
		PricePerKg:   req.PricePerKg,
		Currency:     currencyOrDefault(req.Currency),
		IsActive:     active,
	}

	if err := s.db.Create(price).Error; err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	return price, nil
}

// UpdatePrice edits a price record. Deactivating the sole remaining active
// price is rejected; the check-then-act read is best effort, acceptable
// for a low-contention admin operation.
func (s *PriceGroupService) UpdatePrice(groupID, priceID uuid.UUID, req *GroupPriceRequest) (*models.PriceGroupPrice, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var price models.PriceGroupPrice
	if err := s.db.Where("id = ? AND price_group_id = ?", priceID, groupID).
		First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("price not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.IsActive != nil && !*req.IsActive && price.IsActive {
		count, err := s.activePriceCount(groupID)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, ErrLastActivePrice
		}
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"price_per_kg": req.PricePerKg,
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&price).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update price: %w", err)
	}

	return &price, nil
}

func (s *PriceGroupService) DeletePrice(groupID, priceID uuid.UUID) error {
	var price models.PriceGroupPrice
	if err := s.db.Where("id = ? AND price_group_id = ?", priceID, groupID).
		First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("price not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if price.IsActive {
		count, err := s.activePriceCount(groupID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastActivePrice
		}
	}

	if err := s.db.Delete(&price).Error; err != nil {
		return fmt.Errorf("failed to delete price: %w", err)
	}

	return nil
}

// RecomputeGroupPrices re-derives the stored price of every member product
// from the group's current active per-kg rate. Idempotent; safe to re-run
// after any price change. Member updates are best effort per product, as
// in the original admin flow.
func (s *PriceGroupService) RecomputeGroupPrices(groupID uuid.UUID) (int, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return 0, err
	}

	ratePerKg := group.ActivePricePerKg()
	if ratePerKg <= 0 {
		return 0, ErrLastActivePrice
	}

	updated := 0
	for i := range group.Products {
		p := &group.Products[i]
		if !p.IsDerived() {
			continue
		}

		p.PricePerKg = ratePerKg
		newPrice, err := pricing.ComputeUnitPrice(p)
		if err != nil {
			// Incomplete dimension data; leave the product for the admin.
			continue
		}

		if err := s.db.Model(p).Updates(map[string]interface{}{
			"price_per_kg": ratePerKg,
			"price":        newPrice,
		}).Error; err != nil {
			return updated, fmt.Errorf("failed to update product %s: %w", p.ID, err)
		}
		updated++
	}

	return updated, nil
}

func (s *PriceGroupService) activePriceCount(groupID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.PriceGroupPrice{}).
		Where("price_group_id = ? AND is_active = ?", groupID, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
