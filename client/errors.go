package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("timewise: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("timewise: %d %s", e.StatusCode, e.Message)
}

// errorBody covers both the transport error shape and failed entry results.
type errorBody struct {
	Message string `json:"message"`
}

func statusIs(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsValidation reports whether err is a 400 from the service.
func IsValidation(err error) bool { return statusIs(err, http.StatusBadRequest) }
