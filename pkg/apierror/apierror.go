package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation reports malformed input with field-level detail.
func Validation(message string, details string) *APIError {
	return New("VALIDATION_ERROR", message, details, http.StatusBadRequest)
}

// InvalidCredentials is deliberately generic: the same body is returned for an
// unknown email and a wrong password so the endpoint cannot be used to
// enumerate accounts.
func InvalidCredentials() *APIError {
	return New("UNAUTHORIZED", "Invalid credentials", "", http.StatusUnauthorized)
}

// LockoutError carries the remaining lockout window so handlers can echo it
// back as a structured field rather than forcing clients to parse the message.
type LockoutError struct {
	*APIError
	MinutesRemaining int
}

func (e *LockoutError) Unwrap() error { return e.APIError }

// Lockout reports a temporarily locked account with the remaining minutes.
func Lockout(minutesRemaining int) *LockoutError {
	return &LockoutError{
		APIError: New("ACCOUNT_LOCKED",
			fmt.Sprintf("Account locked. Try again in %d minutes", minutesRemaining),
			"", http.StatusLocked),
		MinutesRemaining: minutesRemaining,
	}
}

// InvalidToken covers expired, forged, and wrong-kind tokens with one message;
// the distinction is never surfaced to the client.
func InvalidToken() *APIError {
	return New("UNAUTHORIZED", "Invalid or expired token", "", http.StatusUnauthorized)
}

// SessionNotFound rejects a refresh token that verifies cryptographically but
// no longer matches a session row (already rotated or revoked).
func SessionNotFound() *APIError {
	return New("FORBIDDEN", "Session not found or revoked", "", http.StatusForbidden)
}

func NotFound(message string, details string) *APIError {
	return New("NOT_FOUND", message, details, http.StatusNotFound)
}

// Configuration reports a missing signing secret or similar wiring fault.
// Fatal at startup; surfaced per call from the token issuer in tests.
func Configuration(details string) *APIError {
	return New("CONFIGURATION_ERROR", "Service is misconfigured", details, http.StatusInternalServerError)
}
