// internal/services/property_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/filter"
	"github.com/casaprime/realty-backend/internal/metrics"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
	"github.com/casaprime/realty-backend/internal/utils"
)

const registrationDateLayout = "2006-01-02"

type PropertyService struct {
	store store.Store
}

type CreatePropertyRequest struct {
	RealtorID        string                  `json:"realtor_id" validate:"omitempty,uuid"`
	Title            string                  `json:"title" validate:"required,min=3,max=255"`
	Description      string                  `json:"description" validate:"max=5000"`
	Price            float64                 `json:"price" validate:"required,gt=0"`
	Location         string                  `json:"location" validate:"max=255"`
	State            string                  `json:"state" validate:"omitempty,len=2"`
	Images           []string                `json:"images" validate:"omitempty,dive,url"`
	Category         models.PropertyCategory `json:"category" validate:"required,enum"`
	Status           models.PropertyStatus   `json:"status" validate:"omitempty,enum"`
	Address          models.Address          `json:"address"`
	Features         models.Features         `json:"features"`
	InternalNotes    string                  `json:"internal_notes" validate:"max=5000"`
	RegistrationDate string                  `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdatePropertyRequest carries general edits. Status is deliberately
// absent: it only changes through the status endpoint.
type UpdatePropertyRequest struct {
	RealtorID        *string                  `json:"realtor_id" validate:"omitempty,uuid"`
	Title            *string                  `json:"title" validate:"omitempty,min=3,max=255"`
	Description      *string                  `json:"description" validate:"omitempty,max=5000"`
	Price            *float64                 `json:"price" validate:"omitempty,gt=0"`
	Location         *string                  `json:"location" validate:"omitempty,max=255"`
	State            *string                  `json:"state" validate:"omitempty,len=2"`
	Category         *models.PropertyCategory `json:"category" validate:"omitempty,enum"`
	Address          *models.Address          `json:"address"`
	Features         *models.Features         `json:"features"`
	InternalNotes    *string                  `json:"internal_notes" validate:"omitempty,max=5000"`
	RegistrationDate *string                  `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
}

func NewPropertyService(st store.Store) *PropertyService {
	return &PropertyService{store: st}
}

// CreateProperty stores a listing for an active realtor together with its
// first history entry and the realtor's counter increment.
func (s *PropertyService) CreateProperty(ctx context.Context, realtorID uuid.UUID, req CreatePropertyRequest, actor Actor) (*models.Property, error) {
	status := req.Status
	if status == "" {
		status = models.PropertyStatusAvailable
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	registrationDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.RegistrationDate != "" {
		date, err := time.Parse(registrationDateLayout, req.RegistrationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid registration date %q: %w", req.RegistrationDate, err)
		}
		registrationDate = date
	}

	property := &models.Property{
		RealtorID:        realtorID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Price:            req.Price,
		Location:         strings.TrimSpace(req.Location),
		State:            strings.ToUpper(req.State),
		Images:           models.ImageList(req.Images),
		Category:         req.Category,
		Status:           status,
		Address:          req.Address,
		Features:         req.Features,
		InternalNotes:    req.InternalNotes,
		RegistrationDate: registrationDate,
		Version:          1,
	}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := requireActiveRealtor(ctx, tx, realtorID); err != nil {
			return err
		}
		if err := tx.CreateProperty(ctx, property); err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}
		if _, err := appendHistory(ctx, tx, property.ID, status, actor.Name, "created"); err != nil {
			return err
		}
		return tx.AdjustRealtorStats(ctx, realtorID, models.StatusCounts{}.Add(status, 1))
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPropertyOperation("create")
	logrus.WithFields(logrus.Fields{
		"property_id": property.ID,
		"realtor_id":  realtorID,
		"status":      status,
	}).Info("Property created")

	return property, nil
}

// UpdateProperty applies general edits. Moving a listing to another realtor
// moves its counter contribution in the same transaction.
func (s *PropertyService) UpdateProperty(ctx context.Context, id uuid.UUID, req UpdatePropertyRequest) (*models.Property, error) {
	var updated *models.Property
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		property, err := loadProperty(ctx, tx, id)
		if err != nil {
			return err
		}

		fields, newRealtor, err := updateFields(req)
		if err != nil {
			return err
		}

		if newRealtor != nil && *newRealtor != property.RealtorID {
			if err := requireActiveRealtor(ctx, tx, *newRealtor); err != nil {
				return err
			}
			fields["realtor_id"] = *newRealtor
			if err := tx.AdjustRealtorStats(ctx, property.RealtorID, models.StatusCounts{}.Add(property.Status, -1)); err != nil {
				return fmt.Errorf("failed to move realtor counters: %w", err)
			}
			if err := tx.AdjustRealtorStats(ctx, *newRealtor, models.StatusCounts{}.Add(property.Status, 1)); err != nil {
				return fmt.Errorf("failed to move realtor counters: %w", err)
			}
		}

		if len(fields) > 0 {
			if err := tx.UpdatePropertyFields(ctx, property.ID, property.Version, fields); err != nil {
				if errors.Is(err, store.ErrVersionConflict) {
					return ErrConcurrentModification
				}
				return fmt.Errorf("failed to update property: %w", err)
			}
		}

		updated, err = loadProperty(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPropertyOperation("update")
	logrus.WithField("property_id", id).Info("Property updated")
	return updated, nil
}

func updateFields(req UpdatePropertyRequest) (map[string]interface{}, *uuid.UUID, error) {
	fields := make(map[string]interface{})

	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
		fields["price_formatted"] = utils.FormatPrice(*req.Price)
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if req.State != nil {
		fields["state"] = strings.ToUpper(*req.State)
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Address != nil {
		fields["address_street"] = req.Address.Street
		fields["address_neighborhood"] = req.Address.Neighborhood
		fields["address_city"] = req.Address.City
		fields["address_state"] = req.Address.State
		fields["address_postal_code"] = req.Address.PostalCode
	}
	if req.Features != nil {
		fields["bedrooms"] = req.Features.Bedrooms
		fields["bathrooms"] = req.Features.Bathrooms
		fields["area"] = req.Features.Area
		fields["parking"] = req.Features.Parking
	}
	if req.InternalNotes != nil {
		fields["internal_notes"] = *req.InternalNotes
	}
	if req.RegistrationDate != nil {
		date, err := time.Parse(registrationDateLayout, *req.RegistrationDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid registration date %q: %w", *req.RegistrationDate, err)
		}
		fields["registration_date"] = date
	}

	var realtorID *uuid.UUID
	if req.RealtorID != nil {
		id, err := uuid.Parse(*req.RealtorID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid realtor id: %w", err)
		}
		realtorID = &id
	}

	return fields, realtorID, nil
}

// DeleteProperty soft deletes a listing. Its history stays.
func (s *PropertyService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		property, err := loadProperty(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.SoftDeleteProperty(ctx, property.ID, property.Version); err != nil {
			switch {
			case errors.Is(err, store.ErrVersionConflict):
				return ErrConcurrentModification
			case errors.Is(err, store.ErrNotFound):
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return tx.AdjustRealtorStats(ctx, property.RealtorID, models.StatusCounts{}.Add(property.Status, -1))
	})
	if err != nil {
		return err
	}

	metrics.RecordPropertyOperation("delete")
	logrus.WithField("property_id", id).Info("Property deleted")
	return nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return loadProperty(ctx, s.store, id)
}

func (s *PropertyService) ListProperties(ctx context.Context, query store.PropertyQuery) ([]models.Property, error) {
	properties, err := s.store.ListProperties(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// Search narrows the live catalogue with criteria, newest first.
func (s *PropertyService) Search(ctx context.Context, criteria filter.Criteria) ([]models.Property, error) {
	properties, err := s.ListProperties(ctx, store.PropertyQuery{})
	if err != nil {
		return nil, err
	}
	if criteria.IsEmpty() {
		return properties, nil
	}
	return filter.Apply(properties, criteria), nil
}

// AddImages appends image URLs to a property, keeping their order.
func (s *PropertyService) AddImages(ctx context.Context, id uuid.UUID, urls []string) (*models.Property, error) {
	var updated *models.Property
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		property, err := loadProperty(ctx, tx, id)
		if err != nil {
			return err
		}

		images := append(models.ImageList{}, property.Images...)
		images = append(images, urls...)

		err = tx.UpdatePropertyFields(ctx, property.ID, property.Version, map[string]interface{}{
			"images": images,
		})
		if err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				return ErrConcurrentModification
			}
			return fmt.Errorf("failed to add images: %w", err)
		}

		property.Images = images
		property.Version++
		updated = property
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPropertyOperation("add_images")
	return updated, nil
}

func loadProperty(ctx context.Context, st store.Store, id uuid.UUID) (*models.Property, error) {
	property, err := st.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return property, nil
}

// requireActiveRealtor runs inside the write transaction so a concurrent
// DeleteRealtor cannot remove the realtor before the property lands.
func requireActiveRealtor(ctx context.Context, tx store.Store, realtorID uuid.UUID) error {
	realtor, err := lockRealtor(ctx, tx, realtorID)
	if err != nil {
		return err
	}
	if realtor.Lifecycle != models.LifecycleActive {
		return ErrRealtorNotActive
	}
	return nil
}
