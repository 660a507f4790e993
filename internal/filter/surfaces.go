// internal/filter/surfaces.go
package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/casaprime/realty-backend/internal/models"
)

// Field names a criterion as it appears in a listing URL.
type Field string

const (
	FieldSearch    Field = "search"
	FieldCategory  Field = "category"
	FieldPriceMin  Field = "price_min"
	FieldPriceMax  Field = "price_max"
	FieldBedrooms  Field = "bedrooms"
	FieldBathrooms Field = "bathrooms"
	FieldArea      Field = "area"
	FieldLocation  Field = "location"
	FieldStatus    Field = "status"
)

// Field sets of the listing surfaces. A surface ignores every query
// parameter outside its set.
var (
	HomeFields = []Field{FieldCategory, FieldStatus}

	GridFields = []Field{FieldSearch, FieldCategory, FieldPriceMin, FieldPriceMax, FieldLocation, FieldStatus}

	AdvancedFields = []Field{
		FieldSearch,
		FieldCategory,
		FieldPriceMin,
		FieldPriceMax,
		FieldBedrooms,
		FieldBathrooms,
		FieldArea,
		FieldLocation,
		FieldStatus,
	}
)

// FromValues builds criteria from query values, reading only fields.
// Values that do not parse are ignored.
func FromValues(values url.Values, fields []Field) Criteria {
	var criteria Criteria

	for _, field := range fields {
		raw := strings.TrimSpace(values.Get(string(field)))
		if raw == "" {
			continue
		}

		switch field {
		case FieldSearch:
			criteria.Search = raw
		case FieldCategory:
			criteria.Category = raw
		case FieldPriceMin:
			criteria.PriceMin = parsePrice(raw)
		case FieldPriceMax:
			criteria.PriceMax = parsePrice(raw)
		case FieldBedrooms:
			criteria.MinBedrooms = parseCount(raw)
		case FieldBathrooms:
			criteria.MinBathrooms = parseCount(raw)
		case FieldArea:
			criteria.MinArea = parseCount(raw)
		case FieldLocation:
			criteria.Location = raw
		case FieldStatus:
			if status := models.PropertyStatus(strings.ToLower(raw)); status.IsValid() {
				criteria.Status = status
			}
		}
	}

	return criteria
}

func parsePrice(raw string) *float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// parseCount accepts "3" and the "3+" form used by the search page.
func parseCount(raw string) int {
	value, err := strconv.Atoi(strings.TrimSuffix(raw, "+"))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
