// internal/services/pricegroup_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/construmax/construmax-backend/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Category{},
		&models.PriceGroup{}, &models.PriceGroupPrice{},
		&models.Product{}, &models.ProductImage{},
		&models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createGroup(t *testing.T, svc *PriceGroupService, name string, pricePerKg float64) *models.PriceGroup {
	t.Helper()
	group, err := svc.CreateGroup(
		&PriceGroupRequest{Name: name, Category: "Perfiles", Thickness: true, Size: true},
		&GroupPriceRequest{Name: "Lista base", PricePerKg: pricePerKg},
	)
	require.NoError(t, err)
	return group
}

func TestCreateGroupCarriesInitialPrice(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))

	group := createGroup(t, svc, "Perfiles C", 2.5)

	require.Len(t, group.Prices, 1)
	assert.True(t, group.Prices[0].IsActive)
	assert.Equal(t, 2.5, group.Prices[0].PricePerKg)
	assert.Equal(t, "USD", group.Prices[0].Currency)
	assert.Equal(t, 2.5, group.ActivePricePerKg())
}

func TestCreateGroupRejectsDuplicateName(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))

	createGroup(t, svc, "Perfiles C", 2.5)
	_, err := svc.CreateGroup(
		&PriceGroupRequest{Name: "Perfiles C"},
		&GroupPriceRequest{Name: "Otra lista", PricePerKg: 3},
	)
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

func TestUpdateGroupRejectsRenameToExistingName(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))

	createGroup(t, svc, "Perfiles C", 2.5)
	group := createGroup(t, svc, "Chapas", 1.85)

	_, err := svc.UpdateGroup(group.ID, &PriceGroupRequest{Name: "Perfiles C"})
	assert.True(t, errors.Is(err, ErrDuplicateName))

	// Keeping its own name is not a conflict.
	updated, err := svc.UpdateGroup(group.ID, &PriceGroupRequest{
		Name: "Chapas", Category: "Chapas",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chapas", updated.Category)
}

func TestCreateGroupRequiresInitialPrice(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))

	_, err := svc.CreateGroup(&PriceGroupRequest{Name: "Sin precio"}, nil)
	assert.Error(t, err)
}

func TestUpdatePriceKeepsLastActive(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))
	group := createGroup(t, svc, "Chapas", 1.85)

	inactive := false
	_, err := svc.UpdatePrice(group.ID, group.Prices[0].ID, &GroupPriceRequest{
		Name:       "Lista base",
		PricePerKg: 1.85,
		IsActive:   &inactive,
	})
	assert.True(t, errors.Is(err, ErrLastActivePrice))
}

func TestUpdatePriceDeactivatesWhenAnotherActiveExists(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))
	group := createGroup(t, svc, "Chapas", 1.85)

	_, err := svc.AddPrice(group.ID, &GroupPriceRequest{Name: "Lista nueva", PricePerKg: 2.1})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdatePrice(group.ID, group.Prices[0].ID, &GroupPriceRequest{
		Name:       "Lista base",
		PricePerKg: 1.85,
		IsActive:   &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDeletePriceKeepsLastActive(t *testing.T) {
	svc := NewPriceGroupService(setupServiceDB(t))
	group := createGroup(t, svc, "Mallas", 3)

	err := svc.DeletePrice(group.ID, group.Prices[0].ID)
	assert.True(t, errors.Is(err, ErrLastActivePrice))

	// An inactive extra price can always go.
	inactive := false
	extra, err := svc.AddPrice(group.ID, &GroupPriceRequest{
		Name: "Lista vieja", PricePerKg: 2.8, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.NoError(t, svc.DeletePrice(group.ID, extra.ID))
}

func TestRecomputeGroupPricesUpdatesDerivedMembers(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPriceGroupService(db)
	group := createGroup(t, svc, "Perfiles C", 2.0)

	perfil := models.Product{
		Name:          "Perfil C 80x40",
		ProductType:   models.ProductTypePerfiles,
		WeightPerUnit: 2.5,
		PricePerKg:    2.0,
		Price:         5.0,
		PriceGroupID:  &group.ID,
	}
	standard := models.Product{
		Name:         "Tornillo autoperforante",
		ProductType:  models.ProductTypeStandard,
		Price:        0.10,
		PriceGroupID: &group.ID,
	}
	incomplete := models.Product{
		Name:         "Perfil sin peso",
		ProductType:  models.ProductTypePerfiles,
		PriceGroupID: &group.ID,
	}
	require.NoError(t, db.Create(&perfil).Error)
	require.NoError(t, db.Create(&standard).Error)
	require.NoError(t, db.Create(&incomplete).Error)

	_, err := svc.AddPrice(group.ID, &GroupPriceRequest{Name: "Lista 2026", PricePerKg: 4.0})
	require.NoError(t, err)
	inactive := false
	_, err = svc.UpdatePrice(group.ID, group.Prices[0].ID, &GroupPriceRequest{
		Name: "Lista base", PricePerKg: 2.0, IsActive: &inactive,
	})
	require.NoError(t, err)

	updated, err := svc.RecomputeGroupPrices(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var got models.Product
	require.NoError(t, db.First(&got, perfil.ID).Error)
	assert.Equal(t, 4.0, got.PricePerKg)
	assert.Equal(t, 10.0, got.Price)

	// Running it again changes nothing.
	updated, err = svc.RecomputeGroupPrices(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.NoError(t, db.First(&got, perfil.ID).Error)
	assert.Equal(t, 10.0, got.Price)

	// The standard member keeps its flat price. Reusing got here would
	// fold the perfil's primary key into the query conditions.
	var flat models.Product
	require.NoError(t, db.First(&flat, standard.ID).Error)
	assert.Equal(t, 0.10, flat.Price)
}

func TestDeleteGroupDetachesProductsWithForce(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPriceGroupService(db)
	group := createGroup(t, svc, "Hierros", 1.2)

	product := models.Product{
		Name:         "Hierro 8mm",
		ProductType:  models.ProductTypePerfiles,
		PriceGroupID: &group.ID,
	}
	require.NoError(t, db.Create(&product).Error)

	err := svc.DeleteGroup(group.ID, false)
	assert.True(t, errors.Is(err, ErrHasDependents))

	require.NoError(t, svc.DeleteGroup(group.ID, true))

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Nil(t, got.PriceGroupID)

	_, err = svc.GetGroup(group.ID)
	assert.Error(t, err)
}
