// internal/filter/categories.go
package filter

import (
	"strings"

	"github.com/casaprime/realty-backend/internal/models"
)

// categoryLabels maps the labels used on the listing pages onto the
// canonical category. Keys are folded (lower case, no accents).
var categoryLabels = map[string]models.PropertyCategory{
	"pronto":             models.CategoryReady,
	"prontos":            models.CategoryReady,
	"pronto para morar":  models.CategoryReady,
	"na planta":          models.CategoryOffPlan,
	"lancamento":         models.CategoryOffPlan,
	"lancamentos":        models.CategoryOffPlan,
	"apartamento":        models.CategoryApartment,
	"apartamentos":       models.CategoryApartment,
	"apto":               models.CategoryApartment,
	"casa":               models.CategoryHouse,
	"casas":              models.CategoryHouse,
	"cobertura":          models.CategoryPenthouse,
	"coberturas":         models.CategoryPenthouse,
	"comercial":          models.CategoryCommercial,
	"sala comercial":     models.CategoryCommercial,
	"condominio":         models.CategoryCondominium,
	"casa em condominio": models.CategoryCondominium,
	"terreno":            models.CategoryLot,
	"terrenos":           models.CategoryLot,
	"lote":               models.CategoryLot,
}

// allCategories are labels that select every category.
var allCategories = map[string]bool{
	"all":   true,
	"todos": true,
	"todas": true,
}

// NormalizeCategory resolves a page label or an enum value to a category.
// ok is false for labels it does not know.
func NormalizeCategory(label string) (category models.PropertyCategory, ok bool) {
	folded := fold(label)
	if category, ok := categoryLabels[folded]; ok {
		return category, true
	}

	candidate := models.PropertyCategory(strings.ReplaceAll(folded, "_", "-"))
	if candidate.IsValid() {
		return candidate, true
	}
	return "", false
}
