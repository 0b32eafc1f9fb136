package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service. It carries the HTTP status
// and the error message from the response envelope.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gatekey: %s (HTTP %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is an APIError with status 401. This
// covers bad credentials, expired or revoked tokens, and refresh token reuse.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is an APIError with status 409, returned
// when registering an email that is already taken.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsForbidden reports whether err is an APIError with status 403.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == status
}

// parseErrorResponse turns a non-2xx response body into an *APIError. Falls
// back to the HTTP status text when the body is not the error envelope.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
