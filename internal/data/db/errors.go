package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

// MapError maps store failures into cytometry error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *cytometry.Error
	if errors.As(err, &existing) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return cytometry.NewError(cytometry.CodeNotFound, op, err.Error(), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return cytometry.NewError(cytometry.CodeInternal, op, err.Error(), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return cytometry.NewError(cytometry.CodeConflict, op, err.Error(), err) // unique_violation
		case "23503":
			return cytometry.NewError(cytometry.CodeValidation, op, err.Error(), err) // foreign_key_violation
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key constraint"):
		return cytometry.NewError(cytometry.CodeValidation, op, err.Error(), err)
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return cytometry.NewError(cytometry.CodeConflict, op, err.Error(), err)
	default:
		return cytometry.NewError(cytometry.CodeInternal, op, err.Error(), err)
	}
}
