// internal/services/errors.go
package services

import "errors"

var (
	ErrPropertyNotFound       = errors.New("property not found")
	ErrRealtorNotFound        = errors.New("realtor not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicatePhone         = errors.New("phone already registered")
	ErrRealtorHasProperties   = errors.New("realtor still has linked properties")
	ErrInvalidStatus          = errors.New("invalid property status")
	ErrTransitionNotAllowed   = errors.New("status transition not allowed")
	ErrConcurrentModification = errors.New("property was modified by another request")
	ErrRealtorNotActive       = errors.New("realtor is not active")
	ErrRealtorDeactivated     = errors.New("realtor is deactivated")
)
