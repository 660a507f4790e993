// internal/services/realtor_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/metrics"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
	"github.com/casaprime/realty-backend/internal/utils"
)

const birthDateLayout = "2006-01-02"

// Actor identifies who performs a back-office action.
type Actor struct {
	ID        uuid.UUID
	Name      string
	IPAddress string
	UserAgent string
}

type RealtorService struct {
	store store.Store
}

type CreateRealtorRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" validate:"omitempty,strong_password"`
}

type UpdateRealtorRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// RealtorView is a realtor with its derived counters attached.
type RealtorView struct {
	models.User
	Stats models.StatusCounts `json:"stats"`
}

func (v RealtorView) MarshalJSON() ([]byte, error) {
	type alias models.User
	return json.Marshal(struct {
		alias
		IsActive bool                `json:"is_active"`
		Stats    models.StatusCounts `json:"stats"`
	}{
		alias:    alias(v.User),
		IsActive: v.User.IsActive(),
		Stats:    v.Stats,
	})
}

type CreateRealtorResult struct {
	Realtor           RealtorView `json:"realtor"`
	TemporaryPassword string      `json:"temporary_password,omitempty"`
}

func NewRealtorService(st store.Store) *RealtorService {
	return &RealtorService{store: st}
}

func (s *RealtorService) CreateRealtor(ctx context.Context, req CreateRealtorRequest, actor Actor) (*CreateRealtorResult, error) {
	email := normalizeEmail(req.Email)
	phone := utils.NormalizePhone(req.Phone)

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	password := req.Password
	generated := false
	if password == "" {
		if password, err = utils.GenerateTemporaryPassword(); err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		generated = true
	}

	realtor := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     phone,
		BirthDate: birthDate,
		Type:      models.UserTypeRealtor,
		Lifecycle: models.LifecycleActive,
	}
	if err := realtor.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := checkContactAvailable(ctx, tx, email, phone, uuid.Nil); err != nil {
			return err
		}
		if err := tx.CreateRealtor(ctx, realtor); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to create realtor: %w", err)
		}
		return writeAudit(ctx, tx, actor, "create_realtor", realtor.ID, nil, realtorSnapshot(realtor))
	})
	if err != nil {
		return nil, err
	}

	s.logLifecycle("create", realtor, actor)

	result := &CreateRealtorResult{Realtor: RealtorView{User: *realtor, Stats: models.NewStatusCounts(0, 0, 0)}}
	if generated {
		result.TemporaryPassword = password
	}
	return result, nil
}

func (s *RealtorService) UpdateRealtor(ctx context.Context, id uuid.UUID, req UpdateRealtorRequest, actor Actor) (*RealtorView, error) {
	var updated *models.User
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		realtor, err := loadRealtor(ctx, tx, id)
		if err != nil {
			return err
		}
		before := realtorSnapshot(realtor)

		email, phone := realtor.Email, realtor.Phone
		if req.Email != nil {
			email = normalizeEmail(*req.Email)
		}
		if req.Phone != nil {
			phone = utils.NormalizePhone(*req.Phone)
		}
		if err := checkContactAvailable(ctx, tx, email, phone, realtor.ID); err != nil {
			return err
		}

		realtor.Email, realtor.Phone = email, phone
		if req.Name != nil {
			realtor.Name = strings.TrimSpace(*req.Name)
		}
		if req.BirthDate != nil {
			if realtor.BirthDate, err = parseBirthDate(*req.BirthDate); err != nil {
				return err
			}
		}

		if err := tx.SaveRealtor(ctx, realtor); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to update realtor: %w", err)
		}
		updated = realtor
		return writeAudit(ctx, tx, actor, "update_realtor", realtor.ID, before, realtorSnapshot(realtor))
	})
	if err != nil {
		return nil, err
	}

	s.logLifecycle("update", updated, actor)
	return s.view(ctx, updated)
}

// BlockRealtor hides a realtor from rankings and dashboard totals. Its
// properties are left untouched.
func (s *RealtorService) BlockRealtor(ctx context.Context, id uuid.UUID, actor Actor) (*RealtorView, error) {
	return s.transition(ctx, id, actor, "block", func(realtor *models.User) (bool, error) {
		switch realtor.Lifecycle {
		case models.LifecycleDeleted:
			return false, ErrRealtorDeactivated
		case models.LifecycleBlocked:
			return false, nil
		}
		now := time.Now().UTC()
		realtor.Lifecycle = models.LifecycleBlocked
		realtor.BlockedAt = &now
		return true, nil
	})
}

func (s *RealtorService) UnblockRealtor(ctx context.Context, id uuid.UUID, actor Actor) (*RealtorView, error) {
	return s.transition(ctx, id, actor, "unblock", func(realtor *models.User) (bool, error) {
		switch realtor.Lifecycle {
		case models.LifecycleDeleted:
			return false, ErrRealtorDeactivated
		case models.LifecycleActive:
			return false, nil
		}
		realtor.Lifecycle = models.LifecycleActive
		realtor.BlockedAt = nil
		return true, nil
	})
}

// DeactivateRealtor retires a realtor from the roster while its row stays
// referenced by listings.
func (s *RealtorService) DeactivateRealtor(ctx context.Context, id uuid.UUID, actor Actor) (*RealtorView, error) {
	return s.transition(ctx, id, actor, "deactivate", func(realtor *models.User) (bool, error) {
		if realtor.Lifecycle == models.LifecycleDeleted {
			return false, nil
		}
		realtor.Lifecycle = models.LifecycleDeleted
		realtor.BlockedAt = nil
		return true, nil
	})
}

func (s *RealtorService) ReactivateRealtor(ctx context.Context, id uuid.UUID, actor Actor) (*RealtorView, error) {
	return s.transition(ctx, id, actor, "reactivate", func(realtor *models.User) (bool, error) {
		if realtor.Lifecycle != models.LifecycleDeleted {
			return false, nil
		}
		realtor.Lifecycle = models.LifecycleActive
		return true, nil
	})
}

// transition applies a lifecycle change. mutate reports whether anything
// changed; repeated requests for the current state write nothing.
func (s *RealtorService) transition(ctx context.Context, id uuid.UUID, actor Actor, action string, mutate func(*models.User) (bool, error)) (*RealtorView, error) {
	var (
		result  *models.User
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		realtor, err := loadRealtor(ctx, tx, id)
		if err != nil {
			return err
		}
		before := realtorSnapshot(realtor)

		if changed, err = mutate(realtor); err != nil {
			return err
		}
		result = realtor
		if !changed {
			return nil
		}

		if err := tx.SaveRealtor(ctx, realtor); err != nil {
			return fmt.Errorf("failed to %s realtor: %w", action, err)
		}
		return writeAudit(ctx, tx, actor, action+"_realtor", realtor.ID, before, realtorSnapshot(realtor))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logLifecycle(action, result, actor)
	}
	return s.view(ctx, result)
}

// DeleteRealtor permanently removes a realtor that no live property
// references.
func (s *RealtorService) DeleteRealtor(ctx context.Context, id uuid.UUID, actor Actor) error {
	var deleted *models.User
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		realtor, err := lockRealtor(ctx, tx, id)
		if err != nil {
			return err
		}

		linked, err := tx.CountProperties(ctx, store.PropertyQuery{RealtorIDs: []uuid.UUID{realtor.ID}})
		if err != nil {
			return fmt.Errorf("failed to count linked properties: %w", err)
		}
		if linked > 0 {
			return ErrRealtorHasProperties
		}

		if err := tx.DeleteRealtor(ctx, realtor.ID); err != nil {
			return fmt.Errorf("failed to delete realtor: %w", err)
		}
		if err := tx.DeleteRealtorStats(ctx, realtor.ID); err != nil {
			return fmt.Errorf("failed to delete realtor counters: %w", err)
		}
		deleted = realtor
		return writeAudit(ctx, tx, actor, "delete_realtor", realtor.ID, realtorSnapshot(realtor), nil)
	})
	if err != nil {
		return err
	}

	s.logLifecycle("delete", deleted, actor)
	return nil
}

// ResetPassword replaces the realtor's credential. An empty password is
// replaced by a generated one, which is returned.
func (s *RealtorService) ResetPassword(ctx context.Context, id uuid.UUID, password string, actor Actor) (string, error) {
	generated := ""
	if password == "" {
		var err error
		if password, err = utils.GenerateTemporaryPassword(); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		generated = password
	}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		realtor, err := loadRealtor(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := realtor.SetPassword(password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := tx.SaveRealtor(ctx, realtor); err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}
		return writeAudit(ctx, tx, actor, "reset_password", realtor.ID, nil, nil)
	})
	if err != nil {
		return "", err
	}

	metrics.RecordRealtorLifecycle("reset_password")
	logrus.WithFields(logrus.Fields{
		"realtor_id": id,
		"actor_id":   actor.ID,
	}).Info("Realtor password reset")
	return generated, nil
}

func (s *RealtorService) GetRealtor(ctx context.Context, id uuid.UUID) (*RealtorView, error) {
	realtor, err := loadRealtor(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, realtor)
}

func (s *RealtorService) ListRealtors(ctx context.Context, query store.RealtorQuery) ([]RealtorView, int64, error) {
	realtors, total, err := s.store.ListRealtors(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list realtors: %w", err)
	}

	views, err := attachStats(ctx, s.store, realtors)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RealtorService) view(ctx context.Context, realtor *models.User) (*RealtorView, error) {
	row, err := s.store.GetRealtorStats(ctx, realtor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load realtor counters: %w", err)
	}
	return &RealtorView{User: *realtor, Stats: row.Counts()}, nil
}

func (s *RealtorService) logLifecycle(action string, realtor *models.User, actor Actor) {
	metrics.RecordRealtorLifecycle(action)
	logrus.WithFields(logrus.Fields{
		"realtor_id": realtor.ID,
		"lifecycle":  realtor.Lifecycle,
		"actor_id":   actor.ID,
		"action":     action,
	}).Info("Realtor lifecycle updated")
}

func attachStats(ctx context.Context, st store.Store, realtors []models.User) ([]RealtorView, error) {
	ids := make([]uuid.UUID, len(realtors))
	for i, realtor := range realtors {
		ids[i] = realtor.ID
	}

	rows, err := st.ListRealtorStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load realtor counters: %w", err)
	}

	views := make([]RealtorView, len(realtors))
	for i, realtor := range realtors {
		views[i] = RealtorView{User: realtor, Stats: rows[realtor.ID].Counts()}
	}
	return views, nil
}

func loadRealtor(ctx context.Context, st store.Store, id uuid.UUID) (*models.User, error) {
	realtor, err := st.GetRealtor(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRealtorNotFound
		}
		return nil, fmt.Errorf("failed to load realtor: %w", err)
	}
	return realtor, nil
}

// lockRealtor is loadRealtor holding the row for the rest of the transaction.
func lockRealtor(ctx context.Context, tx store.Store, id uuid.UUID) (*models.User, error) {
	realtor, err := tx.LockRealtor(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRealtorNotFound
		}
		return nil, fmt.Errorf("failed to lock realtor: %w", err)
	}
	return realtor, nil
}

func checkContactAvailable(ctx context.Context, st store.Store, email, phone string, exclude uuid.UUID) error {
	taken, err := st.EmailTaken(ctx, email, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}

	taken, err = st.PhoneTaken(ctx, phone, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicatePhone
	}
	return nil
}

func writeAudit(ctx context.Context, tx store.Store, actor Actor, action string, resourceID uuid.UUID, oldValues, newValues models.JSONB) error {
	entry := &models.AuditLog{
		Action:       action,
		ResourceType: "realtor",
		ResourceID:   &resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		entry.UserID = &actorID
	}

	if err := tx.CreateAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func realtorSnapshot(realtor *models.User) models.JSONB {
	return models.JSONB{
		"name":       realtor.Name,
		"email":      realtor.Email,
		"phone":      realtor.Phone,
		"lifecycle":  realtor.Lifecycle,
		"blocked_at": realtor.BlockedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseBirthDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid birth date %q: %w", value, err)
	}
	return &date, nil
}
