package db

import (
	"context"
	"database/sql"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner provides the transaction boundaries used by the core.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
	InReadTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db      *gorm.DB
	readOpt *sql.TxOptions
}

// NewGormTxRunner returns a runner backed by gorm transactions. Read
// transactions are snapshot-consistent on PostgreSQL.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	r := &gormTxRunner{db: db}
	if db != nil && db.Dialector != nil && db.Dialector.Name() == DriverPostgres {
		r.readOpt = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.run(ctx, fn)
}

func (r *gormTxRunner) InReadTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r != nil && r.readOpt != nil {
		return r.run(ctx, fn, r.readOpt)
	}
	return r.run(ctx, fn)
}

func (r *gormTxRunner) run(ctx context.Context, fn func(dbc dbctx.Context) error, opts ...*sql.TxOptions) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return cytometry.NewError(cytometry.CodeInternal, "db.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, opts...)
}
