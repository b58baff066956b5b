package repository

import (
	"context"
	"reflect"
	"sort"

	"gorm.io/gorm"

	"github.com/mlavigne/client-management/internal"
)

// Notifier receives the set of code-set groups touched by a committed unit of
// work, for cache invalidation. Called only after a successful commit.
type Notifier interface {
	CodeSetGroupsChanged(ctx context.Context, typeCodes []string)
}

// UnitOfWork scopes one database transaction. Repositories vended through Of
// share the transaction, so writes are visible to later reads within the
// scope; nothing is durable until Commit. A UnitOfWork belongs to exactly one
// request and must not be shared across goroutines.
type UnitOfWork struct {
	tx       *gorm.DB
	clock    Clock
	notifier Notifier
	repos    map[reflect.Type]any
	touched  map[string]struct{}
	affected int64
	done     bool
}

// Begin opens a transaction bound to ctx. Callers must defer Close.
func Begin(ctx context.Context, db *gorm.DB, opts ...Option) (*UnitOfWork, error) {
	o := newOptions(opts)
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, internal.NewPersistenceError("failed to begin transaction", tx.Error)
	}
	return &UnitOfWork{
		tx:       tx,
		clock:    o.clock,
		notifier: o.notifier,
		repos:    make(map[reflect.Type]any),
		touched:  make(map[string]struct{}),
	}, nil
}

// Of vends the unit of work's repository for one entity shape. Repeated calls
// for the same shape return the same instance.
func Of[T any, PT EntityPtr[T]](u *UnitOfWork) *Repository[T, PT] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if r, ok := u.repos[key]; ok {
		return r.(*Repository[T, PT])
	}
	r := &Repository[T, PT]{db: u.tx, clock: u.clock, onWrite: u.recordWrite}
	u.repos[key] = r
	return r
}

func (u *UnitOfWork) recordWrite(entity Entity, rows int64) {
	u.affected += rows
	if g, ok := entity.(CacheGrouped); ok {
		u.touched[g.CacheGroup()] = struct{}{}
	}
}

// Commit makes every pending write durable as a single atomic operation and
// returns the number of affected rows. On success the notifier learns which
// code-set groups the transaction touched.
func (u *UnitOfWork) Commit(ctx context.Context) (int64, error) {
	if u.done {
		return 0, internal.NewPersistenceError("transaction already closed", nil)
	}
	u.done = true
	if err := u.tx.Commit().Error; err != nil {
		return 0, translate(err)
	}

	if u.notifier != nil && len(u.touched) > 0 {
		groups := make([]string, 0, len(u.touched))
		for g := range u.touched {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		u.notifier.CodeSetGroupsChanged(ctx, groups)
	}
	return u.affected, nil
}

// Close releases the transaction, rolling back anything uncommitted. Safe to
// call after Commit and safe to call twice.
func (u *UnitOfWork) Close() {
	if u.done {
		return
	}
	u.done = true
	u.tx.Rollback()
}
