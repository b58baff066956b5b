package codeset

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mlavigne/client-management/internal"
	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/core/events"
)

// Loader fetches the active rows of one group from storage, ordered for
// display. One call per cache miss.
type Loader interface {
	LoadGroup(ctx context.Context, typeCode string) ([]*codesetDatamodel.CodeSet, error)
}

type entry struct {
	code    string
	labelFr string
	labelEn string
}

// Cache holds bilingual code-set groups, keyed by type code. It is shared
// process-wide: reads take a shared lock and groups are swapped whole, so a
// concurrent Invalidate never exposes a partially built group. Population is
// deduplicated across concurrent callers with singleflight.
type Cache struct {
	loader Loader
	logger *slog.Logger

	mu     sync.RWMutex
	groups map[string][]entry
	gen    map[string]uint64
	sf     singleflight.Group
}

func NewCache(loader Loader, logger *slog.Logger) *Cache {
	return &Cache{
		loader: loader,
		logger: logger,
		groups: make(map[string][]entry),
		gen:    make(map[string]uint64),
	}
}

// GetGroup returns the group's active options in display order, labeled for
// the requested culture. A population failure surfaces as a persistence
// error; an empty dropdown must never stand in for unreachable storage.
func (c *Cache) GetGroup(ctx context.Context, typeCode string, culture Culture) ([]Option, error) {
	entries, err := c.group(ctx, typeCode)
	if err != nil {
		return nil, err
	}
	options := make([]Option, len(entries))
	for i, e := range entries {
		options[i] = Option{Code: e.code, Label: labelFor(e, culture)}
	}
	return options, nil
}

// GetLabel resolves one code to its localized label.
func (c *Cache) GetLabel(ctx context.Context, typeCode, code string, culture Culture) (string, error) {
	entries, err := c.group(ctx, typeCode)
	if err != nil {
		return "", err
	}
	code = codesetDatamodel.NormalizeCode(code)
	for _, e := range entries {
		if e.code == code {
			return labelFor(e, culture), nil
		}
	}
	return "", internal.NewNotFoundError("unknown code "+code+" in group "+codesetDatamodel.NormalizeCode(typeCode), internal.ErrCodeCodeSetNotFound)
}

// Invalidate drops the cached group; the next lookup repopulates from storage.
// The generation bump marks any population already reading storage as stale,
// so its snapshot is never stored over this invalidation.
func (c *Cache) Invalidate(typeCode string) {
	tc := codesetDatamodel.NormalizeCode(typeCode)
	c.mu.Lock()
	delete(c.groups, tc)
	c.gen[tc]++
	c.mu.Unlock()
	c.logger.Debug("code-set group invalidated", "type_code", tc)
}

// CodeSetGroupsChanged lets the cache act directly as a commit notifier.
func (c *Cache) CodeSetGroupsChanged(_ context.Context, typeCodes []string) {
	for _, tc := range typeCodes {
		c.Invalidate(tc)
	}
}

// SubscribeInvalidation wires the cache to codeset.changed events on the bus.
func (c *Cache) SubscribeInvalidation(bus *events.EventBus) {
	bus.Subscribe(events.TypeCodeSetChanged, func(ctx context.Context, e events.Event) error {
		c.CodeSetGroupsChanged(ctx, events.CodeSetGroups(e))
		return nil
	})
}

func (c *Cache) group(ctx context.Context, typeCode string) ([]entry, error) {
	tc := codesetDatamodel.NormalizeCode(typeCode)

	c.mu.RLock()
	g, ok := c.groups[tc]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	v, err, _ := c.sf.Do(tc, func() (interface{}, error) {
		// another flight may have repopulated while we waited for the lock
		c.mu.RLock()
		g, ok := c.groups[tc]
		startGen := c.gen[tc]
		c.mu.RUnlock()
		if ok {
			return g, nil
		}

		// every waiter in the flight shares this result, so the read must
		// outlive the first caller's cancellation
		rows, err := c.loader.LoadGroup(context.WithoutCancel(ctx), tc)
		if err != nil {
			return nil, err
		}
		entries := make([]entry, len(rows))
		for i, row := range rows {
			entries[i] = entry{
				code:    codesetDatamodel.NormalizeCode(row.Code),
				labelFr: row.DescriptionFr,
				labelEn: row.DescriptionEn,
			}
		}

		c.mu.Lock()
		// store only when no invalidation landed while we were reading;
		// a snapshot that predates one is served to this flight but never kept
		if c.gen[tc] == startGen {
			c.groups[tc] = entries
		}
		c.mu.Unlock()

		c.logger.Debug("code-set group loaded", "type_code", tc, "count", len(entries))
		return entries, nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewPersistenceError("failed to load code-set group "+tc, err)
	}
	return v.([]entry), nil
}

func labelFor(e entry, culture Culture) string {
	if culture == CultureEn && e.labelEn != "" {
		return e.labelEn
	}
	return e.labelFr
}
