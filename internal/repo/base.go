// Package repo holds the gorm plumbing shared by repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base binds a gorm connection, or an open transaction, to request contexts.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a Base that issues its queries on tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

func (b Base) where(ctx context.Context, model any, query string, args []any) *gorm.DB {
	q := b.DB(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	return q
}

// Count returns the number of model rows matching query. An empty query
// counts the whole table.
func (b Base) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	err := b.where(ctx, model, query, args).Count(&n).Error
	return n, err
}

// Exists reports whether at least one model row matches query.
func (b Base) Exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var found int
	err := b.where(ctx, model, query, args).Select("1").Limit(1).Scan(&found).Error
	return found == 1, err
}
