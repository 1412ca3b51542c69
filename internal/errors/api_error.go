package errors

import "net/http"

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

// Unauthenticated is used when no playback credential has been obtained yet.
func Unauthenticated(message string) *APIError {
	if message == "" {
		message = "not authenticated with the playback service"
	}
	return New(http.StatusUnauthorized, "unauthenticated", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Unavailable(code, message string) *APIError {
	return New(http.StatusServiceUnavailable, code, message)
}

// PlaybackFailed reports a call the playback service rejected or never answered.
func PlaybackFailed(message string, details interface{}) *APIError {
	err := New(http.StatusBadGateway, "playback_failed", message)
	err.Details = details
	return err
}
