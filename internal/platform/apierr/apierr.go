package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a core error onto an HTTP status and stable code.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := cytometry.CodeOf(err)
	return New(StatusFor(code), string(code), err)
}

func StatusFor(code cytometry.ErrorCode) int {
	switch code {
	case cytometry.CodeNotFound:
		return http.StatusNotFound
	case cytometry.CodeValidation:
		return http.StatusBadRequest
	case cytometry.CodeIngest:
		return http.StatusUnprocessableEntity
	case cytometry.CodeReferentialIntegrity, cytometry.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
