package backend

import (
	"errors"
	"net/http"

	"github.com/wansing/nexo/core"
)

// httpError makes the middleware answer with a specific status code.
type httpError struct {
	status int
	err    error
}

func (e httpError) Error() string {
	return e.err.Error()
}

func (e httpError) Unwrap() error {
	return e.err
}

func badRequest(err error) error {
	return httpError{http.StatusBadRequest, err}
}

func notFound(err error) error {
	return httpError{http.StatusNotFound, err}
}

func statusOf(err error) int {
	var he httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmptyPassword), errors.Is(err, core.ErrShortPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
