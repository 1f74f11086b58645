// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/utils"
)

// ErrHasDependents marks business-rule rejections that offer a force
// escape hatch (deleting a category or group still referenced by products).
var ErrHasDependents = errors.New("entity has dependent products")

// ErrDuplicateName marks unique-name violations surfaced as 409.
var ErrDuplicateName = errors.New("name already in use")

type CategoryService struct {
	db *gorm.DB
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=100"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty" validate:"omitempty,max=100"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if taken, err := s.nameOrSlugTaken(req.Name, slug, nil); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if taken, err := s.nameOrSlugTaken(req.Name, slug, &id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"slug":        slug,
		"description": req.Description,
		"icon":        req.Icon,
	}

	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &category, nil
}

// DeleteCategory refuses when products still reference the category unless
// force is set, in which case the product references are nulled rather
// than the products removed.
func (s *CategoryService) DeleteCategory(id uuid.UUID, force bool) error {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("category not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var dependents int64
	if err := s.db.Model(&models.Product{}).
		Where("category = ?", category.Slug).
		Count(&dependents).Error; err != nil {
		return fmt.Errorf("failed to count dependent products: %w", err)
	}

	if dependents > 0 {
		if !force {
			return fmt.Errorf("%w: %d products use category %q (retry with force=true to detach them)",
				ErrHasDependents, dependents, category.Name)
		}
		if err := s.db.Model(&models.Product{}).
			Where("category = ?", category.Slug).
			Update("category", "").Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (s *CategoryService) nameOrSlugTaken(name, slug string, excludeID *uuid.UUID) (bool, error) {
	query := s.db.Model(&models.Category{}).Where("name = ? OR slug = ?", name, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases, strips accents common in Spanish names and squashes
// everything else to single hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u")
	s = replacer.Replace(s)
	s = slugCleaner.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
