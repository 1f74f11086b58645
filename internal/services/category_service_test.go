// internal/services/category_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construmax/construmax-backend/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hierros", "hierros"},
		{"Chapas Conformadas", "chapas-conformadas"},
		{"Perfilería y Accesorios", "perfileria-y-accesorios"},
		{"  Mallas  ", "mallas"},
		{"Caños Ø 50", "canos-50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCreateCategoryGeneratesSlug(t *testing.T) {
	svc := NewCategoryService(setupServiceDB(t))

	category, err := svc.CreateCategory(&CategoryRequest{Name: "Chapas Conformadas"})
	require.NoError(t, err)
	assert.Equal(t, "chapas-conformadas", category.Slug)
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	svc := NewCategoryService(setupServiceDB(t))

	_, err := svc.CreateCategory(&CategoryRequest{Name: "Hierros"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(&CategoryRequest{Name: "Hierros"})
	assert.True(t, errors.Is(err, ErrDuplicateName))

	// A different name colliding on slug is also a duplicate.
	_, err = svc.CreateCategory(&CategoryRequest{Name: "Otra", Slug: "hierros"})
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

func TestDeleteCategoryDetachesProductsWithForce(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCategoryService(db)

	category, err := svc.CreateCategory(&CategoryRequest{Name: "Hierros"})
	require.NoError(t, err)

	product := models.Product{Name: "Hierro 8mm", Category: category.Slug, Price: 1}
	require.NoError(t, db.Create(&product).Error)

	err = svc.DeleteCategory(category.ID, false)
	assert.True(t, errors.Is(err, ErrHasDependents))

	require.NoError(t, svc.DeleteCategory(category.ID, true))

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Empty(t, got.Category)
}
