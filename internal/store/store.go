// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/utils"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// PropertyQuery narrows property reads. Zero values are no-ops.
type PropertyQuery struct {
	RealtorIDs   []uuid.UUID
	Status       *models.PropertyStatus
	CreatedSince *time.Time
	// ActiveRealtorsOnly keeps properties whose realtor lifecycle is active.
	ActiveRealtorsOnly bool
}

type RealtorQuery struct {
	utils.PaginationParams
	Lifecycle *models.Lifecycle
}

// Store defines the persistence operations of the property and realtor
// back office.
type Store interface {
	// WithTx runs fn inside one transaction. Every write made through the
	// Store handed to fn commits or rolls back together.
	WithTx(ctx context.Context, fn func(Store) error) error

	// CreateProperty inserts a property row
	CreateProperty(ctx context.Context, property *models.Property) error
	// GetProperty retrieves a non-deleted property by id
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	// ListProperties returns non-deleted properties, newest first
	ListProperties(ctx context.Context, query PropertyQuery) ([]models.Property, error)
	// CountProperties counts non-deleted properties
	CountProperties(ctx context.Context, query PropertyQuery) (int64, error)
	// UpdatePropertyFields applies fields when the row still carries version,
	// bumping the version. Returns ErrVersionConflict otherwise.
	UpdatePropertyFields(ctx context.Context, id uuid.UUID, version int64, fields map[string]interface{}) error
	// SoftDeleteProperty flags a property deleted when the row still carries
	// version; its history is kept. Returns ErrVersionConflict otherwise.
	SoftDeleteProperty(ctx context.Context, id uuid.UUID, version int64) error

	// AppendStatusHistory inserts a history entry. A second entry with the
	// same (property, sequence) returns ErrDuplicate.
	AppendStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error
	// ListStatusHistory returns a property's history, oldest first
	ListStatusHistory(ctx context.Context, propertyID uuid.UUID) ([]models.StatusHistoryEntry, error)
	// LastStatusHistory returns the newest history entry of a property
	LastStatusHistory(ctx context.Context, propertyID uuid.UUID) (*models.StatusHistoryEntry, error)

	CreateRealtor(ctx context.Context, realtor *models.User) error
	GetRealtor(ctx context.Context, id uuid.UUID) (*models.User, error)
	// LockRealtor reads a realtor and holds its row until the transaction
	// ends. Row locks are a no-op on sqlite, where writers are serialised.
	LockRealtor(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListRealtors(ctx context.Context, query RealtorQuery) ([]models.User, int64, error)
	SaveRealtor(ctx context.Context, realtor *models.User) error
	// DeleteRealtor removes the user row permanently
	DeleteRealtor(ctx context.Context, id uuid.UUID) error
	// EmailTaken reports whether another user (not exclude) owns email
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	// PhoneTaken reports whether another user (not exclude) owns phone
	PhoneTaken(ctx context.Context, phone string, exclude uuid.UUID) (bool, error)

	// AdjustRealtorStats adds delta to a realtor's counters, creating the row
	// on first use
	AdjustRealtorStats(ctx context.Context, realtorID uuid.UUID, delta models.StatusCounts) error
	// GetRealtorStats returns zero counters when the realtor has no row
	GetRealtorStats(ctx context.Context, realtorID uuid.UUID) (models.RealtorStats, error)
	ListRealtorStats(ctx context.Context, realtorIDs []uuid.UUID) (map[uuid.UUID]models.RealtorStats, error)
	// ReplaceRealtorStats swaps every counter row for rows
	ReplaceRealtorStats(ctx context.Context, rows []models.RealtorStats) error
	DeleteRealtorStats(ctx context.Context, realtorID uuid.UUID) error

	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}
