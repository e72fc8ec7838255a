package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/adknaupp/cytometry-manager/internal/clients/redis"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

// IngestLock gives ingestion exclusive access to the entity store.
type IngestLock interface {
	Acquire(ctx context.Context, owner string) (func(context.Context) error, error)
	Held(ctx context.Context) (bool, error)
}

type localIngestLock struct {
	mu   sync.Mutex
	held atomic.Bool
}

// NewLocalIngestLock is an in-process lock for single-instance deployments.
func NewLocalIngestLock() IngestLock {
	return &localIngestLock{}
}

func (l *localIngestLock) Acquire(ctx context.Context, owner string) (func(context.Context) error, error) {
	if !l.mu.TryLock() {
		return nil, redis.ErrLockHeld
	}
	l.held.Store(true)
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.held.Store(false)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

func (l *localIngestLock) Held(ctx context.Context) (bool, error) {
	return l.held.Load(), nil
}

// guardWrites rejects store writes that would race a running ingestion.
func guardWrites(ctx context.Context, lock IngestLock, op string) error {
	if lock == nil {
		return nil
	}
	held, err := lock.Held(ctx)
	if err != nil {
		return cytometry.NewError(cytometry.CodeInternal, op, err.Error(), err)
	}
	if held {
		return cytometry.Conflict(op, "an ingestion is running; retry when it completes")
	}
	return nil
}

func lockErr(op string, err error) error {
	if errors.Is(err, redis.ErrLockHeld) {
		return cytometry.Conflict(op, "another ingestion is already running")
	}
	return cytometry.NewError(cytometry.CodeInternal, op, err.Error(), err)
}
