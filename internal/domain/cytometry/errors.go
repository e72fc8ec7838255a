package cytometry

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorCode classifies failures surfaced by ingestion, creation and resolution.
type ErrorCode string

const (
	CodeNotFound             ErrorCode = "not_found"
	CodeValidation           ErrorCode = "validation"
	CodeIngest               ErrorCode = "ingest"
	CodeReferentialIntegrity ErrorCode = "referential_integrity"
	CodeConflict             ErrorCode = "conflict"
	CodeInternal             ErrorCode = "internal"
)

// Error is the canonical error wrapper returned across the core.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

// Sentinels for errors.Is. They carry only a code.
var (
	ErrNotFound             = &Error{Code: CodeNotFound}
	ErrValidation           = &Error{Code: CodeValidation}
	ErrIngest               = &Error{Code: CodeIngest}
	ErrReferentialIntegrity = &Error{Code: CodeReferentialIntegrity}
	ErrConflict             = &Error{Code: CodeConflict}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinel errors by code. A referential-integrity failure and an
// ingest failure caused by a missing source also match ErrNotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e == nil {
		return false
	}
	if t.Op != "" || t.Message != "" || t.Cause != nil {
		return e == t
	}
	if e.Code == t.Code {
		return true
	}
	if t.Code == CodeNotFound {
		switch e.Code {
		case CodeReferentialIntegrity:
			return true
		case CodeIngest:
			return errors.Is(e.Cause, fs.ErrNotExist)
		}
	}
	return false
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func NotFound(op, entity string, id any) error {
	return NewError(CodeNotFound, op, fmt.Sprintf("%s %v not found", entity, id), nil)
}

func Validation(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

func Validationf(op, format string, args ...any) error {
	return NewError(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

func ReferentialIntegrity(op, message string) error {
	return NewError(CodeReferentialIntegrity, op, message, nil)
}

func Conflict(op, message string) error {
	return NewError(CodeConflict, op, message, nil)
}

// Wrap annotates err with a code unless it already carries one.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return NewError(code, op, err.Error(), err)
}

// CodeOf extracts the error code, CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if !errors.As(err, &e) {
		return CodeInternal
	}
	return e.Code
}

// IngestError describes a malformed source row or an unreadable source.
type IngestError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *IngestError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("row %d, column %q (value %q): %v", e.Row, e.Column, e.Value, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *IngestError) Unwrap() error { return e.Err }

// Ingest wraps a row-level problem into an ingest-coded Error.
func Ingest(op string, row int, column, value string, cause error) error {
	ie := &IngestError{Row: row, Column: column, Value: value, Err: cause}
	return NewError(CodeIngest, op, ie.Error(), ie)
}

// IsCode checks whether err (or a wrapped err) carries code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
