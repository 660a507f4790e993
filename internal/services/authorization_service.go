// internal/services/authorization_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
)

var (
	ErrForbidden       = errors.New("operation not permitted for this user")
	ErrRealtorRequired = errors.New("realtor_id is required")
)

// Principal is the authenticated staff member behind a request.
type Principal struct {
	ID   uuid.UUID
	Name string
	Type models.UserType
}

func (p Principal) IsAdmin() bool {
	return p.Type == models.UserTypeAdmin
}

// Actor converts the principal into the audit identity of a request.
func (p Principal) Actor(ipAddress, userAgent string) Actor {
	return Actor{
		ID:        p.ID,
		Name:      p.Name,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// AuthorizationService decides what a staff member may touch. Admins manage
// everything, realtors only their own listings.
type AuthorizationService struct {
	store store.Store
}

func NewAuthorizationService(st store.Store) *AuthorizationService {
	return &AuthorizationService{store: st}
}

// AuthorizeProperty returns the property when the principal may mutate it.
func (s *AuthorizationService) AuthorizeProperty(ctx context.Context, p Principal, propertyID uuid.UUID) (*models.Property, error) {
	property, err := loadProperty(ctx, s.store, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && property.RealtorID != p.ID {
		return nil, ErrForbidden
	}
	return property, nil
}

// ResolveOwner picks the realtor a new listing belongs to. Realtors always
// list for themselves; admins must name the realtor.
func (s *AuthorizationService) ResolveOwner(p Principal, requested string) (uuid.UUID, error) {
	if !p.IsAdmin() {
		if requested != "" && requested != p.ID.String() {
			return uuid.Nil, ErrForbidden
		}
		return p.ID, nil
	}

	if requested == "" {
		return uuid.Nil, ErrRealtorRequired
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return uuid.Nil, ErrRealtorNotFound
	}
	return id, nil
}

// AuthorizeReassign rejects realtors handing a listing to someone else.
func (s *AuthorizationService) AuthorizeReassign(p Principal, requested *string) error {
	if requested == nil || p.IsAdmin() {
		return nil
	}
	if *requested != p.ID.String() {
		return ErrForbidden
	}
	return nil
}

func (s *AuthorizationService) AuthorizeRealtorStats(p Principal, realtorID uuid.UUID) error {
	if p.IsAdmin() || p.ID == realtorID {
		return nil
	}
	return ErrForbidden
}
