// Package ingestion resolves ingestion sources and runs imports.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/gcp"
)

// Opener resolves a source name to a reader. Local paths are opened from
// disk; gs://bucket/object names are read from Cloud Storage.
type Opener struct {
	objects gcp.ObjectReader
}

func NewOpener(objects gcp.ObjectReader) *Opener {
	return &Opener{objects: objects}
}

func (o *Opener) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	const op = "ingestion.Open"
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, cytometry.NewError(cytometry.CodeIngest, op, "source is required", &cytometry.IngestError{Err: fs.ErrNotExist})
	}

	if bucket, object, ok := gcp.ParseGSURI(source); ok {
		if o == nil || o.objects == nil {
			return nil, cytometry.NewError(cytometry.CodeIngest, op, "object storage is not configured", &cytometry.IngestError{Err: errors.New(source)})
		}
		rc, err := o.objects.Open(ctx, bucket, object)
		if err != nil {
			return nil, cytometry.NewError(cytometry.CodeIngest, op, err.Error(), &cytometry.IngestError{Err: err})
		}
		return rc, nil
	}

	f, err := os.Open(source)
	if err != nil {
		msg := fmt.Sprintf("open %s", source)
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("source %s not found", source)
		}
		return nil, cytometry.NewError(cytometry.CodeIngest, op, msg, &cytometry.IngestError{Err: err})
	}
	return f, nil
}
