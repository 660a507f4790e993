// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the id client-side so the same models run on
// postgres and sqlite.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

func (JSONB) GormDataType() string {
	return "json"
}

func (JSONB) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

// ImageList is an ordered list of image URIs stored as a text[] column.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *ImageList) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*l = ImageList(arr)
	return nil
}

func (ImageList) GormDataType() string {
	return "text"
}

func (ImageList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Enums
type UserType string

const (
	UserTypeRealtor UserType = "realtor"
	UserTypeAdmin   UserType = "admin"
)

// Lifecycle is the single source of truth for a user's standing. It replaces
// the old is_active flag plus blocked_at pair.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleBlocked Lifecycle = "blocked"
	// LifecycleDeleted marks a realtor retired from the roster whose row is
	// kept because listings still reference it.
	LifecycleDeleted Lifecycle = "deleted"
)

func (l Lifecycle) IsValid() bool {
	switch l {
	case LifecycleActive, LifecycleBlocked, LifecycleDeleted:
		return true
	}
	return false
}

type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusNegotiating PropertyStatus = "negotiating"
	PropertyStatusSold        PropertyStatus = "sold"
)

// PropertyStatuses lists every status in display order.
var PropertyStatuses = []PropertyStatus{
	PropertyStatusAvailable,
	PropertyStatusNegotiating,
	PropertyStatusSold,
}

func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusAvailable, PropertyStatusNegotiating, PropertyStatusSold:
		return true
	}
	return false
}

type PropertyCategory string

const (
	CategoryReady       PropertyCategory = "ready"
	CategoryOffPlan     PropertyCategory = "off-plan"
	CategoryApartment   PropertyCategory = "apartment"
	CategoryHouse       PropertyCategory = "house"
	CategoryPenthouse   PropertyCategory = "penthouse"
	CategoryCommercial  PropertyCategory = "commercial"
	CategoryCondominium PropertyCategory = "condominium"
	CategoryLot         PropertyCategory = "lot"
)

var PropertyCategories = []PropertyCategory{
	CategoryReady,
	CategoryOffPlan,
	CategoryApartment,
	CategoryHouse,
	CategoryPenthouse,
	CategoryCommercial,
	CategoryCondominium,
	CategoryLot,
}

func (c PropertyCategory) IsValid() bool {
	for _, category := range PropertyCategories {
		if c == category {
			return true
		}
	}
	return false
}
