// internal/services/status_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/metrics"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
)

const systemActor = "system"

type StatusService struct {
	store    store.Store
	workflow *Workflow
}

type ChangeStatusInput struct {
	PropertyID uuid.UUID
	Status     models.PropertyStatus
	ChangedBy  string
	Notes      string
}

func NewStatusService(st store.Store, workflow *Workflow) *StatusService {
	return &StatusService{
		store:    st,
		workflow: workflow,
	}
}

func (s *StatusService) Workflow() *Workflow {
	return s.workflow
}

// ChangeStatus is the only path that rewrites a property's status after
// creation. The status update, the history entry and the counter move
// commit together or not at all.
func (s *StatusService) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Property, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	var (
		updated *models.Property
		from    models.PropertyStatus
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		property, err := tx.GetProperty(ctx, input.PropertyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to load property: %w", err)
		}

		from = property.Status
		if !s.workflow.Allows(from, input.Status) {
			return ErrTransitionNotAllowed
		}

		err = tx.UpdatePropertyFields(ctx, property.ID, property.Version, map[string]interface{}{
			"status": input.Status,
		})
		if err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				return ErrConcurrentModification
			}
			return fmt.Errorf("failed to update status: %w", err)
		}

		if _, err := appendHistory(ctx, tx, property.ID, input.Status, input.ChangedBy, input.Notes); err != nil {
			return err
		}

		if from != input.Status {
			delta := models.StatusCounts{}.Add(from, -1).Add(input.Status, 1)
			if err := tx.AdjustRealtorStats(ctx, property.RealtorID, delta); err != nil {
				return fmt.Errorf("failed to move realtor counters: %w", err)
			}
		}

		property.Status = input.Status
		property.Version++
		updated = property
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			metrics.RecordStatusConflict()
		}
		return nil, err
	}

	metrics.RecordStatusTransition(string(from), string(input.Status))
	logrus.WithFields(logrus.Fields{
		"property_id": updated.ID,
		"from":        from,
		"to":          updated.Status,
		"changed_by":  input.ChangedBy,
	}).Info("Property status changed")

	return updated, nil
}

// GetHistory returns the status history of a property, oldest first.
func (s *StatusService) GetHistory(ctx context.Context, propertyID uuid.UUID) ([]models.StatusHistoryEntry, error) {
	if _, err := s.store.GetProperty(ctx, propertyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	entries, err := s.store.ListStatusHistory(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	return entries, nil
}

// appendHistory writes the next entry of a property's history. Sequence and
// timestamp never move backwards.
func appendHistory(ctx context.Context, tx store.Store, propertyID uuid.UUID, status models.PropertyStatus, changedBy, notes string) (*models.StatusHistoryEntry, error) {
	changedBy = strings.TrimSpace(changedBy)
	if changedBy == "" {
		changedBy = systemActor
	}

	entry := &models.StatusHistoryEntry{
		PropertyID: propertyID,
		Sequence:   1,
		Status:     status,
		ChangedBy:  changedBy,
		ChangedAt:  time.Now().UTC(),
		Notes:      strings.TrimSpace(notes),
	}

	last, err := tx.LastStatusHistory(ctx, propertyID)
	switch {
	case err == nil:
		entry.Sequence = last.Sequence + 1
		if entry.ChangedAt.Before(last.ChangedAt) {
			entry.ChangedAt = last.ChangedAt
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}

	if err := tx.AppendStatusHistory(ctx, entry); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to append status history: %w", err)
	}
	return entry, nil
}
