// internal/catalog/variant.go
package catalog

import (
	"strings"

	"github.com/construmax/construmax-backend/internal/models"
)

// GroupFlags declares which dimensions a price group's family varies along.
type GroupFlags struct {
	Thickness bool `json:"thickness"`
	Size      bool `json:"size"`
}

// Selection holds the user's dimension choices. Empty string means unset.
type Selection struct {
	Thickness string `json:"thickness,omitempty"`
	Size      string `json:"size,omitempty"`
}

// Resolve narrows a price group's product family to the one concrete
// product matching the selection.
//
// With no declared dimensions the family's single representative is
// returned (first element if duplicates exist). With declared dimensions
// every declared one must be selected; a missing selection or zero matches
// yields nil so the UI can prompt. Multiple matches degrade to the first
// by insertion order.
func Resolve(family []models.Product, flags GroupFlags, sel Selection) *models.Product {
	if len(family) == 0 {
		return nil
	}

	if !flags.Thickness && !flags.Size {
		return &family[0]
	}

	if flags.Thickness && sel.Thickness == "" {
		return nil
	}
	if flags.Size && sel.Size == "" {
		return nil
	}

	for i := range family {
		if flags.Thickness && family[i].Thickness != sel.Thickness {
			continue
		}
		if flags.Size && family[i].Size != sel.Size {
			continue
		}
		return &family[i]
	}
	return nil
}

// ResolveLoose is a convenience fallback that matches dimensions by
// substring containment, tolerating inconsistently formatted data
// ("2mm" vs "2 mm"). Exact matching via Resolve is the contract; callers
// opt into this explicitly.
func ResolveLoose(family []models.Product, flags GroupFlags, sel Selection) *models.Product {
	if p := Resolve(family, flags, sel); p != nil {
		return p
	}

	if flags.Thickness && sel.Thickness == "" || flags.Size && sel.Size == "" {
		return nil
	}

	for i := range family {
		if flags.Thickness && !looseMatch(family[i].Thickness, sel.Thickness) {
			continue
		}
		if flags.Size && !looseMatch(family[i].Size, sel.Size) {
			continue
		}
		return &family[i]
	}
	return nil
}

func looseMatch(have, want string) bool {
	have = strings.ToLower(strings.TrimSpace(have))
	want = strings.ToLower(strings.TrimSpace(want))
	return have == want || strings.Contains(have, want) || strings.Contains(want, have)
}

// AvailableThicknesses lists the distinct thickness options in a family,
// sorted for display.
func AvailableThicknesses(family []models.Product) []string {
	return distinctSorted(family, func(p *models.Product) string { return p.Thickness })
}

// AvailableSizes lists the distinct size options compatible with the
// current thickness selection (pass an empty selection for all sizes).
func AvailableSizes(family []models.Product, sel Selection) []string {
	filtered := family
	if sel.Thickness != "" {
		filtered = nil
		for i := range family {
			if family[i].Thickness == sel.Thickness {
				filtered = append(filtered, family[i])
			}
		}
	}
	return distinctSorted(filtered, func(p *models.Product) string { return p.Size })
}

// Revalidate clears the size selection when it is no longer among the
// sizes available for the (possibly just changed) thickness. An invalid
// combination must never stay selected.
func Revalidate(family []models.Product, flags GroupFlags, sel Selection) Selection {
	if !flags.Size || sel.Size == "" {
		return sel
	}
	for _, size := range AvailableSizes(family, sel) {
		if size == sel.Size {
			return sel
		}
	}
	sel.Size = ""
	return sel
}

func distinctSorted(family []models.Product, get func(*models.Product) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range family {
		v := get(&family[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	SortDimensionValues(out)
	return out
}
