package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/core/datamodel"
)

// Key identifies one row. Composite keys use one entry per key column.
type Key = map[string]any

// Entity is the contract every persisted type implements: access to its
// embedded audit fields and its (possibly composite) primary key.
type Entity interface {
	Audit() *datamodel.AuditFields
	PrimaryKey() Key
}

// EntityPtr constrains PT to *T and requires the Entity contract on it.
type EntityPtr[T any] interface {
	*T
	Entity
}

// UniqueKeyed is implemented by entities with a uniqueness constraint beyond
// the primary key. Add and Reactivate reject a second active row holding the
// same unique key.
type UniqueKeyed interface {
	UniqueKey() Key
}

// CacheGrouped is implemented by entities whose writes must invalidate a
// cached code-set group.
type CacheGrouped interface {
	CacheGroup() string
}

// Clock supplies the audit timestamp. Injectable for tests.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now().UTC() }

type options struct {
	clock    Clock
	notifier Notifier
}

type Option func(*options)

func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func newOptions(opts []Option) *options {
	o := &options{clock: defaultClock}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Repository is a generic audited store over one entity shape. Reads filter
// out inactive rows unless includeInactive is set; writes stamp audit fields
// from the actor carried in the request context. Rows are only ever
// deactivated, never deleted.
//
// A Repository is safe for concurrent use when built over a *gorm.DB pool;
// instances vended by a UnitOfWork share its transaction and are not.
type Repository[T any, PT EntityPtr[T]] struct {
	db      *gorm.DB
	clock   Clock
	onWrite func(entity Entity, rows int64)
}

func New[T any, PT EntityPtr[T]](db *gorm.DB, opts ...Option) *Repository[T, PT] {
	o := newOptions(opts)
	return &Repository[T, PT]{db: db, clock: o.clock}
}

// Scope narrows or orders a List query.
type Scope = func(*gorm.DB) *gorm.DB

func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func OrderBy(expr string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(expr) }
}

func Limit(n int) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Limit(n) }
}

func Offset(n int) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Offset(n) }
}

// Get returns the row with the given key, or a NOT_FOUND error. Inactive rows
// are invisible unless includeInactive is set (administrative recovery).
func (r *Repository[T, PT]) Get(ctx context.Context, key Key, includeInactive bool) (PT, error) {
	var entity T
	q := r.db.WithContext(ctx).Where(key)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.First(&entity).Error; err != nil {
		if isNotFound(err) {
			return nil, internal.NewNotFoundError("record not found", internal.ErrCodeRecordNotFound)
		}
		return nil, translate(err)
	}
	return PT(&entity), nil
}

func (r *Repository[T, PT]) List(ctx context.Context, includeInactive bool, scopes ...Scope) ([]PT, error) {
	q := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var items []PT
	if err := q.Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// ListInBatches streams rows in fixed-size batches instead of loading the
// whole table. fn receives each batch in order; a non-nil return aborts.
func (r *Repository[T, PT]) ListInBatches(ctx context.Context, includeInactive bool, batchSize int, fn func(batch []PT) error, scopes ...Scope) error {
	q := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var batch []PT
	res := q.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	return translate(res.Error)
}

// Add inserts a new row. The key must not exist (active or not); for
// UniqueKeyed entities no other active row may hold the same unique key.
func (r *Repository[T, PT]) Add(ctx context.Context, entity PT) error {
	actor := internal.UserIDFromContext(ctx)
	if actor == "" {
		return internal.ErrMissingActor
	}

	exists, err := r.exists(ctx, entity.PrimaryKey(), false, nil)
	if err != nil {
		return err
	}
	if exists {
		return internal.NewValidationError("key already exists", internal.ErrCodeDuplicateKey)
	}
	if uk, ok := any(entity).(UniqueKeyed); ok {
		dup, err := r.exists(ctx, uk.UniqueKey(), true, entity.PrimaryKey())
		if err != nil {
			return err
		}
		if dup {
			return internal.NewValidationError("an active record already holds this key", internal.ErrCodeDuplicateKey)
		}
	}

	now := r.clock()
	f := entity.Audit()
	f.CreatedAt = now
	f.CreatedBy = actor
	f.UpdatedAt = now
	f.UpdatedBy = actor
	f.IsActive = true
	f.RowVersion = 1

	res := r.db.WithContext(ctx).Create(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	r.wrote(entity, res.RowsAffected)
	return nil
}

// Update rewrites the row identified by the entity's key. CreatedAt/CreatedBy
// and the active flag are preserved from the stored row regardless of what the
// caller passed in; the caller's RowVersion must match the stored token.
func (r *Repository[T, PT]) Update(ctx context.Context, entity PT) error {
	actor := internal.UserIDFromContext(ctx)
	if actor == "" {
		return internal.ErrMissingActor
	}

	current, err := r.load(ctx, entity.PrimaryKey())
	if err != nil {
		return err
	}
	cf := current.Audit()

	f := entity.Audit()
	if f.RowVersion != cf.RowVersion {
		return internal.NewConflictError("record was modified by another user", internal.ErrCodeConcurrencyConflict)
	}
	f.CreatedAt = cf.CreatedAt
	f.CreatedBy = cf.CreatedBy
	f.IsActive = cf.IsActive
	f.UpdatedAt = r.clock()
	f.UpdatedBy = actor
	f.RowVersion = cf.RowVersion + 1

	res := r.db.WithContext(ctx).
		Model(entity).
		Where(entity.PrimaryKey()).
		Where("row_version = ?", cf.RowVersion).
		Select("*").
		Updates(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// a concurrent writer bumped the token between our read and write
		return internal.NewConflictError("record was modified by another user", internal.ErrCodeConcurrencyConflict)
	}
	r.wrote(entity, res.RowsAffected)
	return nil
}

// Deactivate soft-deletes the row. Deactivating an already-inactive row is a
// no-op and does not re-stamp the modification fields.
func (r *Repository[T, PT]) Deactivate(ctx context.Context, key Key) error {
	return r.setActive(ctx, key, false)
}

// Reactivate restores a soft-deleted row. Fails when another active row now
// holds the entity's unique key.
func (r *Repository[T, PT]) Reactivate(ctx context.Context, key Key) error {
	return r.setActive(ctx, key, true)
}

func (r *Repository[T, PT]) setActive(ctx context.Context, key Key, active bool) error {
	actor := internal.UserIDFromContext(ctx)
	if actor == "" {
		return internal.ErrMissingActor
	}

	current, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	cf := current.Audit()
	if cf.IsActive == active {
		return nil
	}

	if active {
		if uk, ok := any(current).(UniqueKeyed); ok {
			dup, err := r.exists(ctx, uk.UniqueKey(), true, current.PrimaryKey())
			if err != nil {
				return err
			}
			if dup {
				return internal.NewValidationError("an active record already holds this key", internal.ErrCodeDuplicateKey)
			}
		}
	}

	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where(key).
		Where("row_version = ?", cf.RowVersion).
		Updates(map[string]any{
			"is_active":   active,
			"updated_at":  r.clock(),
			"updated_by":  actor,
			"row_version": cf.RowVersion + 1,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.NewConflictError("record was modified by another user", internal.ErrCodeConcurrencyConflict)
	}
	r.wrote(current, res.RowsAffected)
	return nil
}

// load fetches the stored row by key, inactive rows included.
func (r *Repository[T, PT]) load(ctx context.Context, key Key) (PT, error) {
	var current T
	if err := r.db.WithContext(ctx).Where(key).First(&current).Error; err != nil {
		if isNotFound(err) {
			return nil, internal.NewNotFoundError("record not found", internal.ErrCodeRecordNotFound)
		}
		return nil, translate(err)
	}
	return PT(&current), nil
}

func (r *Repository[T, PT]) exists(ctx context.Context, key Key, onlyActive bool, exclude Key) (bool, error) {
	q := r.db.WithContext(ctx).Model(new(T)).Where(key)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	if exclude != nil {
		q = q.Not(exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *Repository[T, PT]) wrote(entity Entity, rows int64) {
	if r.onWrite != nil {
		r.onWrite(entity, rows)
	}
}
