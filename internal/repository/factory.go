package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxFactory opens a unit of work for one request. Services hold a factory
// rather than the database handle so every write path gets the same clock and
// commit notifier.
type TxFactory func(ctx context.Context) (*UnitOfWork, error)

func NewTxFactory(db *gorm.DB, opts ...Option) TxFactory {
	return func(ctx context.Context) (*UnitOfWork, error) {
		return Begin(ctx, db, opts...)
	}
}
