package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides database access methods. A Repository is either bound to
// the connection pool or to a single transaction; the entity repositories built
// on top of it inherit that binding.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn with a repository bound to one database transaction.
// Returning an error from fn rolls everything back.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Gorm exposes the underlying handle for ad-hoc queries
func (r *Repository) Gorm() *gorm.DB {
	return r.db
}

// counterColumns whitelists the columns adjustCounter may touch
var counterColumns = map[string]bool{
	"likes_count":    true,
	"comments_count": true,
	"shares_count":   true,
	"connections":    true,
	"profile_views":  true,
}

// adjustCounter atomically adds delta to column on the rows matched by where.
// Decrements are floored at zero inside the UPDATE itself so concurrent
// callers never read-modify-write.
func adjustCounter(ctx context.Context, db *gorm.DB, model interface{}, column string, delta int64, where string, args ...interface{}) (int64, error) {
	if !counterColumns[column] {
		return 0, fmt.Errorf("column %q is not a counter", column)
	}
	var expr clause.Expr
	if delta >= 0 {
		expr = gorm.Expr(column+" + ?", delta)
	} else {
		expr = gorm.Expr("CASE WHEN "+column+" + ? > 0 THEN "+column+" + ? ELSE 0 END", delta, delta)
	}
	res := db.WithContext(ctx).Model(model).Where(where, args...).UpdateColumn(column, expr)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to adjust %s: %w", column, res.Error)
	}
	return res.RowsAffected, nil
}
