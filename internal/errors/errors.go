package errors

import (
	"errors"
	"net/http"

	"cuprewards/internal/crypto"
)

var (
	// ErrUserAlreadyExists is returned when signup hits an active user with the same email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrSignupConflict is returned when a concurrent signup won the pending-signup row.
	ErrSignupConflict = errors.New("signup already in progress")
	// ErrPendingNotFound is returned when no pending signup matches the capability token.
	ErrPendingNotFound = errors.New("no signup request found")
	// ErrOTPExpired is returned when the one-time code is past its expiry.
	ErrOTPExpired = errors.New("code expired")
	// ErrInvalidOTP is returned when the submitted one-time code does not match.
	ErrInvalidOTP = errors.New("invalid code")
	// ErrWeakPassword is returned when a password is shorter than the minimum.
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned when a disabled account attempts to log in.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTokenRevoked is returned when a token's version no longer matches the user.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrInviteInvalid is returned when a staff set-password token is unknown or expired.
	ErrInviteInvalid = errors.New("invalid or expired invitation link")
	// ErrAlreadyOnboarded is returned when re-inviting staff who already set a password.
	ErrAlreadyOnboarded = errors.New("staff already onboarded")
	// ErrCustomerNotFound is returned when a customer profile is absent.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrStaffNotFound is returned when a staff profile is absent.
	ErrStaffNotFound = errors.New("staff not found")
	// ErrSiteNotFound is returned when a referenced site is absent.
	ErrSiteNotFound = errors.New("site not found")
	// ErrNotStaff is returned when a non-staff user calls a staff operation.
	ErrNotStaff = errors.New("not a staff user")
	// ErrSiteForbidden is returned when staff act on a site they are not assigned to.
	ErrSiteForbidden = errors.New("not assigned to this site")
	// ErrAlreadyAssigned is returned on duplicate staff-site assignments.
	ErrAlreadyAssigned = errors.New("staff already assigned to this site")
	// ErrAssignmentNotFound is returned when removing an absent staff-site assignment.
	ErrAssignmentNotFound = errors.New("staff is not assigned to this site")
	// ErrQRInvalid is returned when a QR token is unknown or past its expiry.
	ErrQRInvalid = errors.New("invalid or expired QR code")
	// ErrInvalidCupCount is returned when a cup delta is negative.
	ErrInvalidCupCount = errors.New("cup counts must not be negative")
	// ErrInsufficientBalance is returned when a redemption exceeds the entitlement.
	ErrInsufficientBalance = errors.New("not enough free cups available")
	// ErrInvariantViolation is returned when the ledger balance is observed negative.
	// It indicates a concurrency bug and is surfaced as an internal error.
	ErrInvariantViolation = errors.New("reward balance invariant violated")
)

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError pairs a status code with a client-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors are
// collapsed to an opaque 500 so internals never leak to the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrSignupConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "SIGNUP_CONFLICT")
	case errors.Is(err, ErrPendingNotFound):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PENDING_NOT_FOUND")
	case errors.Is(err, ErrOTPExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OTP_EXPIRED")
	case errors.Is(err, ErrInvalidOTP):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OTP_INVALID")
	case errors.Is(err, ErrWeakPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WEAK_PASSWORD")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountDisabled):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_DISABLED")
	case errors.Is(err, ErrTokenRevoked):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_REVOKED")
	case errors.Is(err, ErrInviteInvalid):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVITE_INVALID")
	case errors.Is(err, ErrAlreadyOnboarded):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_ONBOARDED")
	case errors.Is(err, ErrCustomerNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CUSTOMER_NOT_FOUND")
	case errors.Is(err, ErrStaffNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "STAFF_NOT_FOUND")
	case errors.Is(err, ErrSiteNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "SITE_NOT_FOUND")
	case errors.Is(err, ErrNotStaff):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_STAFF")
	case errors.Is(err, ErrSiteForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "SITE_FORBIDDEN")
	case errors.Is(err, ErrAlreadyAssigned):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_ASSIGNED")
	case errors.Is(err, ErrAssignmentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ASSIGNMENT_NOT_FOUND")
	case errors.Is(err, ErrQRInvalid):
		return NewHTTPError(http.StatusNotFound, err.Error(), "QR_INVALID")
	case errors.Is(err, ErrInvalidCupCount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CUP_COUNT")
	case errors.Is(err, ErrInsufficientBalance):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_BALANCE")
	case errors.Is(err, ErrInvariantViolation):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "INVARIANT_VIOLATION")
	case errors.Is(err, crypto.ErrIntegrity), errors.Is(err, crypto.ErrMalformedEnvelope):
		// Tampered or corrupted PII at rest is fatal data corruption.
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "DATA_CORRUPTION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
