// Package directory maintains the cached list of OpenWebUI workspace agents
// this server is willing to expose.
//
// The cache trades freshness for availability: a refresh that fails leaves
// the previous snapshot in place, so a transient upstream outage never
// breaks agent listing once the cache has been warm. Callers therefore get
// no error path at all; the worst case is an empty list on a cold cache.
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/soyeahso/mcp-openwebui/internal/logging"
	"github.com/soyeahso/mcp-openwebui/internal/openwebui"
)

// Lister fetches raw model descriptors. *openwebui.Client satisfies this;
// tests substitute fakes.
type Lister interface {
	ListModels(ctx context.Context) ([]openwebui.Model, error)
}

// Cache is the agent directory: a time-bounded snapshot of the filtered
// upstream model list. Refresh is lazy and synchronous with the caller; the
// mutex doubles as a single-flight guard, so overlapping callers on a stale
// cache trigger one upstream fetch, not several.
type Cache struct {
	lister   Lister
	rules    Rules
	duration time.Duration
	log      *logging.Logger
	now      func() time.Time

	mu        sync.Mutex
	models    []openwebui.Model // filtered snapshot, replaced wholesale
	fetchedAt time.Time         // zero until first successful refresh
}

// New creates an empty cache. duration bounds how long a snapshot is served
// without refetching.
func New(lister Lister, duration time.Duration, rules Rules, log *logging.Logger) *Cache {
	return &Cache{
		lister:   lister,
		rules:    rules,
		duration: duration,
		log:      log.Sub("directory"),
		now:      time.Now,
	}
}

// Agents returns the current filtered agent list, refreshing first when the
// snapshot is stale or has never been populated. The returned slice and its
// entries are copies; mutating them does not touch the cache.
func (c *Cache) Agents(ctx context.Context) []openwebui.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshLocked(ctx)

	out := make([]openwebui.Model, len(c.models))
	for i, m := range c.models {
		out[i] = m.Clone()
	}
	return out
}

// IDs returns the ids of the available agents, in directory order.
func (c *Cache) IDs(ctx context.Context) []string {
	agents := c.Agents(ctx)
	ids := make([]string, 0, len(agents))
	for _, a := range agents {
		if id := a.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Available reports whether the given agent id is currently listed.
func (c *Cache) Available(ctx context.Context, id string) bool {
	for _, have := range c.IDs(ctx) {
		if have == id {
			return true
		}
	}
	return false
}

// refreshLocked refetches the model list when the snapshot is empty or older
// than the cache duration. On fetch failure the old snapshot and timestamp
// are kept, so the next call tries again.
func (c *Cache) refreshLocked(ctx context.Context) {
	if len(c.models) > 0 && c.now().Sub(c.fetchedAt) <= c.duration {
		c.log.Debug().Msg("using cached model list")
		return
	}

	c.log.Info().Msg("cache expired or empty, fetching models from OpenWebUI")
	raw, err := c.lister.ListModels(ctx)
	if err != nil {
		c.log.Warn().Err(err).Int("stale", len(c.models)).
			Msg("model fetch failed, serving last known snapshot")
		return
	}

	c.models = c.rules.Apply(filterWorkspace(raw))
	c.fetchedAt = c.now()
	c.log.Info().Int("count", len(c.models)).Msg("cached available agents")
}
