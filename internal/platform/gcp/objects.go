package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// ObjectReader opens objects stored in Cloud Storage.
type ObjectReader interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	Close() error
}

type objectReader struct {
	log    *logger.Logger
	client *storage.Client
}

// NewObjectReader builds a read-only storage client. STORAGE_EMULATOR_HOST
// switches to an unauthenticated emulator endpoint.
func NewObjectReader(ctx context.Context, log *logger.Logger) (ObjectReader, error) {
	serviceLog := log.With("service", "ObjectReader")

	env := storageEnvFromOS()
	client, err := storage.NewClient(ctx, env.readOnlyOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog.Debug("Object storage reader initialized", "emulator_host", env.EmulatorHost)
	return &objectReader{log: serviceLog, client: client}, nil
}

func (r *objectReader) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	rc, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	return rc, nil
}

func (r *objectReader) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// ParseGSURI splits gs://bucket/path/to/object.
func ParseGSURI(raw string) (bucket, object string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "gs" || u.Host == "" {
		return "", "", false
	}
	object = strings.TrimPrefix(u.Path, "/")
	if object == "" {
		return "", "", false
	}
	return u.Host, object, true
}
