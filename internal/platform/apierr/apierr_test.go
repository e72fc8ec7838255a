package apierr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{cytometry.NotFound("GetCohort", "cohort", 1), http.StatusNotFound, "not_found"},
		{cytometry.Validation("AddSubject", "bad sex"), http.StatusBadRequest, "validation"},
		{cytometry.Ingest("Parse", 2, "age", "x", errors.New("bad")), http.StatusUnprocessableEntity, "ingest"},
		{cytometry.NewError(cytometry.CodeIngest, "Open", "missing", &cytometry.IngestError{Err: fs.ErrNotExist}), http.StatusUnprocessableEntity, "ingest"},
		{cytometry.ReferentialIntegrity("ResolveDataset", "cohort gone"), http.StatusConflict, "referential_integrity"},
		{cytometry.Conflict("AddSample", "ingestion running"), http.StatusConflict, "conflict"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		got := FromError(fmt.Errorf("wrapped: %w", tc.err))
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%v: want=%d/%s got=%d/%s", tc.err, tc.status, tc.code, got.Status, got.Code)
		}
	}

	explicit := New(http.StatusTeapot, "teapot", nil)
	if got := FromError(explicit); got != explicit {
		t.Fatalf("explicit api error should pass through")
	}
	if FromError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
