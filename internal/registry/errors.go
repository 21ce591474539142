package registry

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPackageNotFound is returned when the registry has no such package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrMalformedResponse is returned when the response body is not JSON.
	ErrMalformedResponse = errors.New("malformed registry response")
	// ErrMissingVersion is returned when the document has no string "version" field.
	ErrMissingVersion = errors.New("registry response has no version field")
	// ErrInvalidVersion is returned when "version" is not a semantic version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidName is returned for names that cannot be npm package names.
	ErrInvalidName = errors.New("invalid package name")
)

// StatusError reports a non-2xx registry response.
type StatusError struct {
	Package    string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Unwrap maps 404 to ErrPackageNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrPackageNotFound
	}
	return nil
}
