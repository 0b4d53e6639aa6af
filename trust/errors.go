package trust

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is returned when a request is attached to a session without credential.
	ErrUnauthenticated = errors.New("session has no credential")

	// ErrNoCredential is returned when a login succeeded but the response did not set a cookie.
	ErrNoCredential = errors.New("login response carries no credential")

	// ErrNotFound is returned by MustSee if the record does not exist.
	ErrNotFound = errors.New("record not found")

	ErrNoTokenMinter = errors.New("no token minter configured")
)

// EncodingError means that a request could not be assembled.
type EncodingError struct {
	Field  string // empty if the error is not about a specific field
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return "encoding error: " + e.Reason
	}
	return fmt.Sprintf("encoding error: field %s: %s", e.Field, e.Reason)
}

// DispatchError means that a request could not be handed to the router.
type DispatchError struct {
	Method string
	Path   string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatching %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// AuthError means that the login was rejected.
type AuthError struct {
	Username string
	Status   int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login of %q rejected with status %d", e.Username, e.Status)
}

// ValidationError lists every mismatch of a verification, in the order of the checks.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation error: %d incorrect", len(e.Report))
	for _, m := range e.Report {
		b.WriteString("\n\t")
		b.WriteString(m.String())
	}
	return b.String()
}

// CollaboratorError wraps an error of a repository.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
