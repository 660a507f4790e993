// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthStaffOnly    = "auth.staff_only"

	// Properties
	KeyPropertyCreated     = "property.created"
	KeyPropertyUpdated     = "property.updated"
	KeyPropertyDeleted     = "property.deleted"
	KeyPropertyNotFound    = "property.not_found"
	KeyPropertyNotOwned    = "property.not_owned"
	KeyPropertyImagesAdded = "property.images_added"
	KeyStatusChanged       = "property.status_changed"
	KeyStatusInvalid       = "property.status_invalid"
	KeyStatusNotAllowed    = "property.status_not_allowed"
	KeyConcurrentChange    = "property.concurrent_change"
	KeyRealtorNotActive    = "property.realtor_not_active"

	// Realtors
	KeyRealtorCreated        = "realtor.created"
	KeyRealtorUpdated        = "realtor.updated"
	KeyRealtorNotFound       = "realtor.not_found"
	KeyRealtorBlocked        = "realtor.blocked"
	KeyRealtorUnblocked      = "realtor.unblocked"
	KeyRealtorDeactivated    = "realtor.deactivated"
	KeyRealtorReactivated    = "realtor.reactivated"
	KeyRealtorDeleted        = "realtor.deleted"
	KeyRealtorHasProperties  = "realtor.has_properties"
	KeyRealtorDuplicateEmail = "realtor.duplicate_email"
	KeyRealtorDuplicatePhone = "realtor.duplicate_phone"
	KeyRealtorPasswordReset  = "realtor.password_reset"
	KeyRealtorIsDeactivated  = "realtor.is_deactivated"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyStatsRebuilt      = "admin.stats_rebuilt"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"

	// Search
	KeySearchNoResults = "search.no_results"
)
