package domain

import "errors"

// Sentinel errors shared across services. Handlers never branch on error text;
// internal/http/response maps these to HTTP statuses in one place.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// BusinessError is a business-rule failure carried as a value, not a fault:
// invalid discount code, referral already redeemed, guest cap exceeded. It is
// translated to a 4xx response with its code and message.
type BusinessError struct {
	Code    string
	Message string
	Status  int
}

func (e *BusinessError) Error() string { return e.Message }

func NewBusinessError(status int, code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message, Status: status}
}

// ValidationError wraps a field-level validation failure so it maps to 400.
func ValidationError(message string) error {
	return &BusinessError{Code: "INVALID_INPUT", Message: message, Status: 400}
}

// ErrInvalidCredentials is the single message returned for both unknown email
// and wrong password, so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = &BusinessError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", Status: 401}
