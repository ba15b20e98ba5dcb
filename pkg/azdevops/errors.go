package azdevops

import (
	"errors"
	"net/http"
)

// ErrMissingToken is returned when a client is constructed without an access
// token. The check runs before any network activity.
var ErrMissingToken = errors.New("azure devops access token is required (set " + TokenEnv + ")")

// APIError represents a non-2xx response from the Azure DevOps REST API.
// The response body is carried verbatim; no local interpretation happens.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error returns the status line and raw response body.
func (e *APIError) Error() string {
	if e.Body != "" {
		return "azure devops API error: " + e.Status + ": " + e.Body
	}
	return "azure devops API error: " + e.Status
}

// IsNotFoundError returns true if err is an APIError with status 404.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsAuthenticationError returns true for 401/403 responses. Azure DevOps also
// answers some bad-credential requests with a 203 HTML sign-in page, which the
// non-2xx check upstream does not catch; those surface as decode failures.
func IsAuthenticationError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
