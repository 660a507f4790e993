// internal/filter/filter.go
package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/casaprime/realty-backend/internal/models"
)

// Criteria is a conjunction of property predicates. Zero-valued fields do
// not narrow the result.
type Criteria struct {
	Search       string                `json:"search,omitempty"`
	Category     string                `json:"category,omitempty"`
	PriceMin     *float64              `json:"price_min,omitempty"`
	PriceMax     *float64              `json:"price_max,omitempty"`
	MinBedrooms  int                   `json:"bedrooms,omitempty"`
	MinBathrooms int                   `json:"bathrooms,omitempty"`
	MinArea      int                   `json:"area,omitempty"`
	Location     string                `json:"location,omitempty"`
	Status       models.PropertyStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the criteria match every property.
func (c Criteria) IsEmpty() bool {
	return len(c.predicates()) == 0
}

type predicate func(p *models.Property) bool

// Apply returns the properties matching every non-empty criterion, in input
// order. The input slice is not modified.
func Apply(properties []models.Property, criteria Criteria) []models.Property {
	predicates := criteria.predicates()

	result := make([]models.Property, 0, len(properties))
	for i := range properties {
		if matchesAll(&properties[i], predicates) {
			result = append(result, properties[i])
		}
	}
	return result
}

func matchesAll(property *models.Property, predicates []predicate) bool {
	for _, match := range predicates {
		if !match(property) {
			return false
		}
	}
	return true
}

func (c Criteria) predicates() []predicate {
	var predicates []predicate

	if search := fold(c.Search); search != "" {
		predicates = append(predicates, func(p *models.Property) bool {
			return containsFolded(p.Title, search) ||
				containsFolded(p.Description, search) ||
				containsFolded(p.ID.String(), search) ||
				containsFolded(p.Location, search)
		})
	}

	if label := strings.TrimSpace(c.Category); label != "" && !allCategories[fold(label)] {
		category, ok := NormalizeCategory(label)
		predicates = append(predicates, func(p *models.Property) bool {
			return ok && p.Category == category
		})
	}

	if c.PriceMin != nil {
		lower := *c.PriceMin
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Price >= lower
		})
	}

	if c.PriceMax != nil {
		upper := *c.PriceMax
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Price <= upper
		})
	}

	if c.MinBedrooms > 0 {
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Features.Bedrooms >= c.MinBedrooms
		})
	}

	if c.MinBathrooms > 0 {
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Features.Bathrooms >= c.MinBathrooms
		})
	}

	if c.MinArea > 0 {
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Features.Area >= c.MinArea
		})
	}

	if location := strings.TrimSpace(c.Location); location != "" {
		folded := fold(location)
		predicates = append(predicates, func(p *models.Property) bool {
			return matchesLocation(p, location, folded)
		})
	}

	if c.Status != "" {
		predicates = append(predicates, func(p *models.Property) bool {
			return p.Status == c.Status
		})
	}

	return predicates
}

// matchesLocation accepts an exact state code or a substring of any of the
// free-text location fields.
func matchesLocation(p *models.Property, raw, folded string) bool {
	for _, state := range []string{p.State, p.Address.State} {
		if state != "" && strings.EqualFold(state, raw) {
			return true
		}
	}

	return containsFolded(p.Location, folded) ||
		containsFolded(p.Address.City, folded) ||
		containsFolded(p.Address.Neighborhood, folded) ||
		containsFolded(p.State, folded)
}

func containsFolded(value, foldedNeedle string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(fold(value), foldedNeedle)
}

// fold lower-cases s and strips diacritics so "São" matches "sao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
