package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/mcp-openwebui/internal/logging"
	"github.com/soyeahso/mcp-openwebui/internal/openwebui"
)

// fakeLister returns canned results and counts calls.
type fakeLister struct {
	models []openwebui.Model
	err    error
	calls  int
}

func (f *fakeLister) ListModels(ctx context.Context) ([]openwebui.Model, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func workspaceModel(id string, extra map[string]any) openwebui.Model {
	m := openwebui.Model{"id": id, "info": map[string]any{}}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func newTestCache(lister Lister, duration time.Duration, rules Rules) *Cache {
	return New(lister, duration, rules, logging.Nop())
}

// --- Rules tests ---

func TestRulesNoRestriction(t *testing.T) {
	r := NewRules(nil, nil)
	assert.True(t, r.Allows("anything"))
	assert.False(t, r.Allows(""))
}

func TestRulesEmptyWhitelistMeansNoWhitelist(t *testing.T) {
	// A configured-but-empty whitelist is the "blank env var" boundary:
	// all non-blacklisted ids pass.
	r := NewRules([]string{}, []string{"banned"})
	assert.True(t, r.Allows("anything"))
	assert.False(t, r.Allows("banned"))
}

func TestRulesWhitelistExclusive(t *testing.T) {
	r := NewRules([]string{"a", "b"}, nil)
	assert.True(t, r.Allows("a"))
	assert.True(t, r.Allows("b"))
	assert.False(t, r.Allows("c"))
}

func TestRulesBlacklistPrecedence(t *testing.T) {
	// An id in both lists is always excluded.
	r := NewRules([]string{"a"}, []string{"a"})
	assert.False(t, r.Allows("a"))
}

func TestApplyPreservesOrder(t *testing.T) {
	r := NewRules(nil, []string{"drop"})
	in := []openwebui.Model{
		workspaceModel("z", nil),
		workspaceModel("drop", nil),
		workspaceModel("a", nil),
		workspaceModel("m", nil),
	}
	out := r.Apply(in)
	require.Len(t, out, 3)
	assert.Equal(t, "z", out[0].ID())
	assert.Equal(t, "a", out[1].ID())
	assert.Equal(t, "m", out[2].ID())
}

func TestApplyIdempotent(t *testing.T) {
	r := NewRules([]string{"a", "c"}, []string{"c"})
	in := []openwebui.Model{
		workspaceModel("a", nil),
		workspaceModel("b", nil),
		workspaceModel("c", nil),
		{"name": "no id", "info": map[string]any{}},
	}
	once := r.Apply(filterWorkspace(in))
	twice := r.Apply(filterWorkspace(once))
	assert.Equal(t, once, twice)
	require.Len(t, once, 1)
	assert.Equal(t, "a", once[0].ID())
}

// --- Cache tests ---

func TestAgentsFiltersScenario(t *testing.T) {
	// Upstream returns a, b (no info), c; blacklist drops a, b lacks the
	// workspace marker, so only c survives.
	lister := &fakeLister{models: []openwebui.Model{
		{"id": "a", "info": map[string]any{}},
		{"id": "b"},
		{"id": "c", "info": map[string]any{}, "name": "C"},
	}}
	cache := newTestCache(lister, time.Minute, NewRules(nil, []string{"a"}))

	agents := cache.Agents(context.Background())
	require.Len(t, agents, 1)
	assert.Equal(t, "c", agents[0].ID())
	assert.Equal(t, "C", agents[0].DisplayName())
	assert.Equal(t, []string{"c"}, cache.IDs(context.Background()))
}

func TestAgentsCachesWithinDuration(t *testing.T) {
	lister := &fakeLister{models: []openwebui.Model{workspaceModel("a", nil)}}
	cache := newTestCache(lister, 10*time.Minute, NewRules(nil, nil))

	base := time.Now()
	cache.now = func() time.Time { return base }
	cache.Agents(context.Background())
	assert.Equal(t, 1, lister.calls)

	// Just inside the window: no refetch.
	cache.now = func() time.Time { return base.Add(10*time.Minute - time.Second) }
	cache.Agents(context.Background())
	assert.Equal(t, 1, lister.calls)

	// Just past the window: one refetch.
	cache.now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	cache.Agents(context.Background())
	assert.Equal(t, 2, lister.calls)
}

func TestAgentsServesStaleOnFetchFailure(t *testing.T) {
	lister := &fakeLister{models: []openwebui.Model{workspaceModel("a", nil)}}
	cache := newTestCache(lister, time.Minute, NewRules(nil, nil))

	base := time.Now()
	cache.now = func() time.Time { return base }
	first := cache.Agents(context.Background())
	require.Len(t, first, 1)

	// Upstream goes down after the window expires.
	lister.err = errors.New("connection refused")
	cache.now = func() time.Time { return base.Add(2 * time.Minute) }

	got := cache.Agents(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID())
	assert.Equal(t, 2, lister.calls)

	// Still stale, so the next call tries upstream again.
	cache.Agents(context.Background())
	assert.Equal(t, 3, lister.calls)
}

func TestAgentsColdStartFailureReturnsEmpty(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}
	cache := newTestCache(lister, time.Minute, NewRules(nil, nil))

	agents := cache.Agents(context.Background())
	assert.NotNil(t, agents)
	assert.Empty(t, agents)
	assert.Empty(t, cache.IDs(context.Background()))
}

func TestAgentsEmptySnapshotRefetches(t *testing.T) {
	// A successful fetch that yields zero agents does not pin an empty
	// snapshot; the next call asks upstream again.
	lister := &fakeLister{}
	cache := newTestCache(lister, time.Hour, NewRules(nil, nil))

	cache.Agents(context.Background())
	cache.Agents(context.Background())
	assert.Equal(t, 2, lister.calls)
}

func TestAgentsReturnsCopies(t *testing.T) {
	lister := &fakeLister{models: []openwebui.Model{workspaceModel("a", map[string]any{"name": "A"})}}
	cache := newTestCache(lister, time.Hour, NewRules(nil, nil))

	got := cache.Agents(context.Background())
	require.Len(t, got, 1)
	got[0]["name"] = "mutated"

	again := cache.Agents(context.Background())
	assert.Equal(t, "A", again[0].DisplayName())
	assert.Equal(t, 1, lister.calls, "second read must come from cache")
}

func TestAvailable(t *testing.T) {
	lister := &fakeLister{models: []openwebui.Model{
		workspaceModel("a", nil),
		workspaceModel("b", nil),
	}}
	cache := newTestCache(lister, time.Hour, NewRules(nil, nil))

	ctx := context.Background()
	assert.True(t, cache.Available(ctx, "a"))
	assert.True(t, cache.Available(ctx, "b"))
	assert.False(t, cache.Available(ctx, "ghost"))
}

func TestConcurrentReadersSingleFetch(t *testing.T) {
	lister := &fakeLister{models: []openwebui.Model{workspaceModel("a", nil)}}
	cache := newTestCache(lister, time.Hour, NewRules(nil, nil))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			agents := cache.Agents(context.Background())
			assert.Len(t, agents, 1)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	// The mutex serializes the stale window, so only the first caller fetches.
	assert.Equal(t, 1, lister.calls)
}
