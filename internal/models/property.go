// internal/models/property.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/utils"
)

type Address struct {
	Street       string `json:"street" gorm:"size:255"`
	Neighborhood string `json:"neighborhood" gorm:"size:120"`
	City         string `json:"city" gorm:"size:120;index"`
	State        string `json:"state" gorm:"size:2" validate:"omitempty,len=2"`
	PostalCode   string `json:"postal_code" gorm:"size:9" validate:"omitempty,max=9"`
}

type Features struct {
	Bedrooms  int `json:"bedrooms" gorm:"default:0" validate:"gte=0"`
	Bathrooms int `json:"bathrooms" gorm:"default:0" validate:"gte=0"`
	Area      int `json:"area" gorm:"default:0" validate:"gte=0"`
	Parking   int `json:"parking" gorm:"default:0" validate:"gte=0"`
}

type Property struct {
	BaseModel
	RealtorID        uuid.UUID        `json:"realtor_id" gorm:"type:uuid;not null;index"`
	Title            string           `json:"title" gorm:"size:255;not null"`
	Description      string           `json:"description" gorm:"type:text"`
	Price            float64          `json:"price" gorm:"type:decimal(15,2);not null;index"`
	PriceFormatted   string           `json:"price_formatted" gorm:"size:40"`
	Location         string           `json:"location" gorm:"size:255"`
	State            string           `json:"state" gorm:"size:2;index"`
	Images           ImageList        `json:"images"`
	Category         PropertyCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	Status           PropertyStatus   `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	Address          Address          `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Features         Features         `json:"features" gorm:"embedded"`
	InternalNotes    string           `json:"internal_notes,omitempty" gorm:"type:text"`
	RegistrationDate time.Time        `json:"registration_date" gorm:"type:date"`
	Version          int64            `json:"version" gorm:"not null;default:1"`
}

// BeforeSave keeps the display price in step with the numeric one.
func (p *Property) BeforeSave(tx *gorm.DB) error {
	p.PriceFormatted = utils.FormatPrice(p.Price)
	return nil
}

// PublicView returns a copy without staff-only fields.
func (p Property) PublicView() Property {
	p.InternalNotes = ""
	return p
}

type StatusHistoryEntry struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	PropertyID uuid.UUID      `json:"property_id" gorm:"type:uuid;not null;uniqueIndex:idx_status_history_property_seq"`
	Sequence   int64          `json:"sequence" gorm:"not null;uniqueIndex:idx_status_history_property_seq"`
	Status     PropertyStatus `json:"status" gorm:"type:varchar(20);not null"`
	ChangedBy  string         `json:"changed_by" gorm:"size:255;not null"`
	ChangedAt  time.Time      `json:"changed_at" gorm:"not null;index"`
	Notes      string         `json:"notes,omitempty" gorm:"type:text"`
}

func (StatusHistoryEntry) TableName() string {
	return "property_status_history"
}

func (e *StatusHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// RealtorStats holds the per-realtor status counters maintained alongside
// every status or ownership change.
type RealtorStats struct {
	RealtorID   uuid.UUID `json:"realtor_id" gorm:"type:uuid;primary_key"`
	Available   int64     `json:"available" gorm:"not null;default:0"`
	Negotiating int64     `json:"negotiating" gorm:"not null;default:0"`
	Sold        int64     `json:"sold" gorm:"not null;default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s RealtorStats) Counts() StatusCounts {
	return NewStatusCounts(s.Available, s.Negotiating, s.Sold)
}

// StatusCounts is the derived view of a set of properties. Total is always
// the sum of the three buckets.
type StatusCounts struct {
	Available   int64 `json:"available"`
	Negotiating int64 `json:"negotiating"`
	Sold        int64 `json:"sold"`
	Total       int64 `json:"total"`
}

func NewStatusCounts(available, negotiating, sold int64) StatusCounts {
	return StatusCounts{
		Available:   available,
		Negotiating: negotiating,
		Sold:        sold,
		Total:       available + negotiating + sold,
	}
}

// Add returns the counts with delta applied to the given status bucket.
func (c StatusCounts) Add(status PropertyStatus, delta int64) StatusCounts {
	switch status {
	case PropertyStatusAvailable:
		c.Available += delta
	case PropertyStatusNegotiating:
		c.Negotiating += delta
	case PropertyStatusSold:
		c.Sold += delta
	}
	return NewStatusCounts(c.Available, c.Negotiating, c.Sold)
}

func (c StatusCounts) Plus(other StatusCounts) StatusCounts {
	return NewStatusCounts(c.Available+other.Available, c.Negotiating+other.Negotiating, c.Sold+other.Sold)
}
