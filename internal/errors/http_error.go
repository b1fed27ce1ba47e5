package errors

import "net/http"

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

var statusByKind = map[Kind]int{
	KindValidation:           http.StatusBadRequest,
	KindPromoCode:            http.StatusUnprocessableEntity,
	KindMaintenanceConflict:  http.StatusConflict,
	KindCapacity:             http.StatusConflict,
	KindConflict:             http.StatusConflict,
	KindInvalidTransition:    http.StatusConflict,
	KindNotFound:             http.StatusNotFound,
	KindForbidden:            http.StatusForbidden,
	KindIdentityCollision:    http.StatusInternalServerError,
	KindPricingConfiguration: http.StatusInternalServerError,
}

// ToHTTP maps an engine error to its transport form. Pricing configuration
// and unclassified failures never expose their message.
func ToHTTP(err error) *HTTPError {
	kind := KindOf(err)
	code, ok := statusByKind[kind]
	if !ok || code == http.StatusInternalServerError {
		return &HTTPError{Code: http.StatusInternalServerError, Kind: kind, Message: "internal error"}
	}
	return &HTTPError{Code: code, Kind: kind, Message: err.Error()}
}
