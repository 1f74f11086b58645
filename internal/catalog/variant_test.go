// internal/catalog/variant_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construmax/construmax-backend/internal/models"
)

func family() []models.Product {
	return []models.Product{
		{Name: "Caño 2mm 20x50", Thickness: "2mm", Size: "20x50"},
		{Name: "Caño 3mm 20x50", Thickness: "3mm", Size: "20x50"},
		{Name: "Caño 3mm 40x80", Thickness: "3mm", Size: "40x80"},
	}
}

func TestResolveNoDimensions(t *testing.T) {
	fam := []models.Product{{Name: "Malla estándar"}, {Name: "Malla duplicada"}}

	got := Resolve(fam, GroupFlags{}, Selection{})
	require.NotNil(t, got)
	assert.Equal(t, "Malla estándar", got.Name)
}

func TestResolveBothDimensions(t *testing.T) {
	flags := GroupFlags{Thickness: true, Size: true}

	got := Resolve(family(), flags, Selection{Thickness: "2mm", Size: "20x50"})
	require.NotNil(t, got)
	assert.Equal(t, "Caño 2mm 20x50", got.Name)

	// Size unset while the group declares it: prompt, don't guess.
	assert.Nil(t, Resolve(family(), flags, Selection{Thickness: "2mm"}))
}

func TestResolveThicknessOnly(t *testing.T) {
	fam := []models.Product{
		{Name: "Chapa ⅜", Thickness: "⅜"},
		{Name: "Chapa ½", Thickness: "½"},
	}
	flags := GroupFlags{Thickness: true}

	got := Resolve(fam, flags, Selection{Thickness: "½"})
	require.NotNil(t, got)
	assert.Equal(t, "Chapa ½", got.Name)

	assert.Nil(t, Resolve(fam, flags, Selection{Thickness: "5mm"}))
	assert.Nil(t, Resolve(fam, flags, Selection{}))
}

func TestResolveAmbiguousTakesFirst(t *testing.T) {
	fam := []models.Product{
		{Name: "primero", Thickness: "2mm"},
		{Name: "segundo", Thickness: "2mm"},
	}

	got := Resolve(fam, GroupFlags{Thickness: true}, Selection{Thickness: "2mm"})
	require.NotNil(t, got)
	assert.Equal(t, "primero", got.Name)
}

func TestResolveEmptyFamily(t *testing.T) {
	assert.Nil(t, Resolve(nil, GroupFlags{}, Selection{}))
}

func TestResolveLooseSubstring(t *testing.T) {
	fam := []models.Product{{Name: "Caño 2 mm", Thickness: "2 mm"}}
	flags := GroupFlags{Thickness: true}

	// Exact contract misses the inconsistently formatted value.
	assert.Nil(t, Resolve(fam, flags, Selection{Thickness: "2 m"}))

	got := ResolveLoose(fam, flags, Selection{Thickness: "2 m"})
	require.NotNil(t, got)
	assert.Equal(t, "Caño 2 mm", got.Name)
}

func TestRevalidateClearsStaleSize(t *testing.T) {
	flags := GroupFlags{Thickness: true, Size: true}

	// 40x80 exists only in 3mm; switching to 2mm must clear it.
	sel := Selection{Thickness: "2mm", Size: "40x80"}
	got := Revalidate(family(), flags, sel)
	assert.Equal(t, "", got.Size)
	assert.Equal(t, "2mm", got.Thickness)

	// A still-valid combination is untouched.
	sel = Selection{Thickness: "3mm", Size: "40x80"}
	assert.Equal(t, sel, Revalidate(family(), flags, sel))
}

func TestAvailableOptions(t *testing.T) {
	assert.Equal(t, []string{"2mm", "3mm"}, AvailableThicknesses(family()))
	assert.Equal(t, []string{"20x50", "40x80"}, AvailableSizes(family(), Selection{}))
	assert.Equal(t, []string{"20x50"}, AvailableSizes(family(), Selection{Thickness: "2mm"}))
}
