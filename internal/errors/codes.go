package errors

// Error codes returned in the "code" field of every error response.
// Format: CATEGORY_DETAIL. Clients map these to their own copy.

const (
	// Authentication
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"

	// Authorization / plan
	AuthzForbidden       = "AUTHZ_FORBIDDEN"
	AuthzUpgradeRequired = "AUTHZ_UPGRADE_REQUIRED"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Invoices
	InvoiceNumberExists = "INVOICE_NUMBER_EXISTS"

	// Payments / subscriptions
	PaymentInvalidPlan      = "PAYMENT_INVALID_PLAN"
	PaymentSignatureInvalid = "PAYMENT_SIGNATURE_INVALID"
	PaymentGatewayFailed    = "PAYMENT_GATEWAY_FAILED"

	// Email
	EmailRetryLimitReached = "EMAIL_RETRY_LIMIT_REACHED"
	EmailSendFailed        = "EMAIL_SEND_FAILED"

	// Server
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
)
