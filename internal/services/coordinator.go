// Package services holds the optimistic cache, the mutation coordinator and
// the typed sheet facades built on top of it.
package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tsink/internal/cache"
	"tsink/internal/tabular"
)

const (
	// SnapshotTTL is the staleness bound: a cached snapshot older than this is
	// re-fetched on the next read.
	SnapshotTTL = 5 * time.Minute

	maxSnapshots = 64
)

// Coordinator owns the last-known row snapshot per (document, sheet) key. All
// reads and mutations on a key pass through it; no other component touches
// snapshots directly.
//
// Mutations apply optimistically: the published snapshot changes before the
// remote call resolves, rolls back byte-for-byte on remote failure, and is
// reconciled by a forced re-read after a successful settlement.
type Coordinator struct {
	store tabular.Store
	snaps *cache.LRU[[][]string]
	sf    singleflight.Group

	mu   sync.Mutex // guards gens
	gens map[tabular.Key]uint64
}

func NewCoordinator(store tabular.Store) *Coordinator {
	return NewCoordinatorTTL(store, SnapshotTTL)
}

// NewCoordinatorTTL overrides the staleness bound, mainly for tests.
func NewCoordinatorTTL(store tabular.Store, ttl time.Duration) *Coordinator {
	return &Coordinator{
		store: store,
		snaps: cache.New[[][]string](maxSnapshots, ttl),
		gens:  map[tabular.Key]uint64{},
	}
}

// Read returns the decoded-ready snapshot for key, serving from cache while
// fresh and fetching through the store otherwise. Concurrent reads of the
// same key collapse into one remote call. A fetch that settles after the key
// was invalidated in the meantime is discarded, never merged.
func (c *Coordinator) Read(ctx context.Context, key tabular.Key) ([][]string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rows, ok := c.snaps.Get(key.String()); ok {
			return cloneRows(rows), nil
		}

		// The flight is scoped to the generation, so a read started after an
		// invalidation never joins a fetch issued before it.
		gen := c.generation(key)
		v, err, _ := c.sf.Do(flightKey(key, gen), func() (any, error) {
			return c.store.ReadRange(ctx, key.Doc, key.Sheet)
		})
		if err != nil {
			// A failed read leaves the cache in its prior state.
			return nil, err
		}
		rows := v.([][]string)

		c.mu.Lock()
		current := c.gens[key]
		if current == gen {
			c.snaps.Set(key.String(), cloneRows(rows))
			c.mu.Unlock()
			return cloneRows(rows), nil
		}
		c.mu.Unlock()
		// Superseded while in flight: drop the result and fetch against the
		// newer generation.
		slog.DebugContext(ctx, "discarding superseded read", "key", key.String(), "gen", gen, "current", current)
	}
}

// Mutate runs one optimistic mutation on key:
//
//  1. capture the current snapshot (or note its absence),
//  2. publish the optimistically mutated clone,
//  3. issue the remote operation,
//  4. on success, invalidate and immediately re-read so the next read serves
//     a reconciled snapshot,
//  5. on failure, restore the captured snapshot and surface the error.
//
// On a cold key, steps 1, 2 and 5 degenerate to no-ops: with no snapshot to
// mutate, publishing the optimistic result alone would hide the server rows
// it was derived without, so concurrent readers keep fetching until the
// reconciling read installs the settled state.
//
// Between 2 and 4/5 the published snapshot is tentative. Mutate imposes no
// mutual exclusion between concurrent mutations on the same key: two
// mutations issued before either settles race on the captured baseline, and
// the last remote settlement wins.
func (c *Coordinator) Mutate(ctx context.Context, key tabular.Key, optimistic func(rows [][]string) [][]string, remote func(ctx context.Context) error) error {
	prev, had := c.snaps.Get(key.String())
	if had {
		prev = cloneRows(prev)
		c.snaps.Set(key.String(), optimistic(cloneRows(prev)))
	}

	if err := remote(ctx); err != nil {
		if had {
			c.snaps.Set(key.String(), prev)
		}
		return err
	}

	// Settled: reconcile against the server to correct any position drift
	// from concurrent external edits.
	c.Invalidate(key)
	if _, err := c.Read(ctx, key); err != nil {
		slog.WarnContext(ctx, "reconciling read failed; snapshot stays invalidated", "key", key.String(), "error", err)
	}
	return nil
}

// Invalidate bumps the key's request generation and drops its snapshot, so
// in-flight fetches against the old generation are discarded on completion
// and the next read fetches under the new one.
func (c *Coordinator) Invalidate(key tabular.Key) {
	c.mu.Lock()
	c.gens[key]++
	c.mu.Unlock()
	c.snaps.Delete(key.String())
}

func (c *Coordinator) generation(key tabular.Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

func flightKey(key tabular.Key, gen uint64) string {
	return key.String() + "@" + strconv.FormatUint(gen, 10)
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
