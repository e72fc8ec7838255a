package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a Context with no transaction bound.
func Background() Context {
	return Context{Ctx: context.Background()}
}

// WithTx returns a copy of dbc bound to tx.
func (dbc Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: dbc.Ctx, Tx: tx}
}

// Context returns the request context, falling back to context.Background.
func (dbc Context) Context() context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return dbc.Ctx
}
