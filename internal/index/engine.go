// Package index implements the similarity index: an in-process ranking
// engine over write-through persisted (id, vector, metadata) entries.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
)

// StoredEntry is an entry together with its insertion sequence number.
type StoredEntry struct {
	Entry domidx.Entry
	Seq   int64
}

// Repository is the persistence contract for the engine. Entries are
// written through on every mutation; LoadAll returns them ordered by Seq.
type Repository interface {
	LoadMeta(ctx context.Context, name string) (domidx.Meta, bool, error)
	SaveMeta(ctx context.Context, meta domidx.Meta) error
	SaveEntry(ctx context.Context, collection string, e StoredEntry) error
	DeleteEntry(ctx context.Context, collection, id string) error
	LoadAll(ctx context.Context, collection string) ([]StoredEntry, error)
}

// Engine answers nearest-neighbor queries over one collection with a fixed
// dimension and metric. All ranking happens in memory under a single-writer,
// multiple-reader lock; every mutation is persisted before it becomes
// visible to readers, so no reader can observe a half-written entry.
type Engine struct {
	mu      sync.RWMutex
	meta    domidx.Meta
	repo    Repository
	entries []domidx.Entry // insertion order
	pos     map[string]int
	nextSeq int64
	logger  *zap.Logger
}

// Open loads or creates the collection. When the collection already exists,
// its persisted dimension and metric must match the requested ones exactly.
// A fresh collection is created with the requested configuration.
func Open(
	ctx context.Context, repo Repository,
	name string, dimension int, metric domidx.Metric,
	logger *zap.Logger,
) (*Engine, error) {
	meta, found, err := repo.LoadMeta(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load collection meta: %w", err)
	}

	if found {
		if meta.Dimension() != dimension {
			return nil, fmt.Errorf(
				"collection %q was created with dimension %d, config says %d: %w",
				name, meta.Dimension(), dimension, domain.ErrValidation,
			)
		}
		if meta.Metric() != metric {
			return nil, fmt.Errorf(
				"collection %q was created with metric %q, config says %q: %w",
				name, meta.Metric(), metric, domain.ErrValidation,
			)
		}
	} else {
		meta, err = domidx.NewMeta(name, dimension, metric)
		if err != nil {
			return nil, fmt.Errorf("new collection meta: %w", err)
		}
		if err := repo.SaveMeta(ctx, meta); err != nil {
			return nil, fmt.Errorf("save collection meta: %w", err)
		}
	}

	stored, err := repo.LoadAll(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	e := &Engine{
		meta:    meta,
		repo:    repo,
		entries: make([]domidx.Entry, 0, len(stored)),
		pos:     make(map[string]int, len(stored)),
		logger:  logger,
	}
	for _, s := range stored {
		// A corrupt store must fail loudly here, not during a search.
		if got := len(s.Entry.Vector()); got != dimension {
			return nil, fmt.Errorf(
				"entry %q: stored vector has %d dimensions, collection has %d: %w",
				s.Entry.ID(), got, dimension, domain.ErrPersistence,
			)
		}
		e.pos[s.Entry.ID()] = len(e.entries)
		e.entries = append(e.entries, s.Entry)
		if s.Seq >= e.nextSeq {
			e.nextSeq = s.Seq + 1
		}
	}

	logger.Info("Collection opened",
		zap.String("collection", name),
		zap.Int("dimension", dimension),
		zap.String("metric", string(metric)),
		zap.Int("entries", len(e.entries)),
	)
	return e, nil
}

// Meta returns the collection descriptor.
func (e *Engine) Meta() domidx.Meta {
	return e.meta
}

// Add inserts an entry. The vector must match the collection dimension
// exactly; an existing id is rejected, never overwritten. The entry is
// persisted before it becomes searchable.
func (e *Engine) Add(ctx context.Context, entry domidx.Entry) error {
	if len(entry.Vector()) != e.meta.Dimension() {
		return fmt.Errorf(
			"entry %s: got %d dimensions, collection has %d: %w",
			entry.ID(), len(entry.Vector()), e.meta.Dimension(), domain.ErrDimensionMismatch,
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.pos[entry.ID()]; exists {
		return fmt.Errorf("entry %s: %w", entry.ID(), domain.ErrAlreadyExists)
	}

	seq := e.nextSeq
	if err := e.repo.SaveEntry(ctx, e.meta.Name(), StoredEntry{Entry: entry, Seq: seq}); err != nil {
		return fmt.Errorf("save entry %s: %w", entry.ID(), err)
	}

	e.nextSeq = seq + 1
	e.pos[entry.ID()] = len(e.entries)
	e.entries = append(e.entries, entry)
	return nil
}

// Get returns the stored entry for a known id.
func (e *Engine) Get(_ context.Context, id string) (domidx.Entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i, ok := e.pos[id]
	if !ok {
		return domidx.Entry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return e.entries[i], nil
}

// List returns all entries in insertion order.
func (e *Engine) List(_ context.Context) []domidx.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domidx.Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Delete removes an entry from storage and memory. Returns false for an
// unknown id; a repeat delete is a non-fatal negative, not an error.
func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.pos[id]
	if !ok {
		return false, nil
	}

	if err := e.repo.DeleteEntry(ctx, e.meta.Name(), id); err != nil {
		return false, fmt.Errorf("delete entry %s: %w", id, err)
	}

	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	delete(e.pos, id)
	for j := i; j < len(e.entries); j++ {
		e.pos[e.entries[j].ID()] = j
	}
	return true, nil
}

// Count returns the current entry count.
func (e *Engine) Count(_ context.Context) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Search returns up to k entries ranked by similarity under the collection
// metric. Ties are broken by insertion order (earliest first), so repeated
// identical queries are deterministic. The optional filter narrows the
// candidate set before ranking. Fewer than k stored entries returns all of
// them. Concurrent searches do not block each other.
func (e *Engine) Search(
	_ context.Context, vector []float32, k int, f search.Filter,
) ([]search.Hit, error) {
	if len(vector) != e.meta.Dimension() {
		return nil, fmt.Errorf(
			"query vector: got %d dimensions, collection has %d: %w",
			len(vector), e.meta.Dimension(), domain.ErrDimensionMismatch,
		)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %w", domain.ErrValidation)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	hits := make([]search.Hit, 0, len(e.entries))
	for i := range e.entries {
		entry := &e.entries[i]
		if !f.IsEmpty() && !f.Matches(entry.Fields()) {
			continue
		}
		hits = append(hits, search.NewHit(entry.ID(), e.score(vector, entry.Vector()), entry.Fields()))
	}

	// Stable sort + insertion-order candidates = deterministic tie order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score() > hits[j].Score()
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (e *Engine) score(q, v []float32) float64 {
	switch e.meta.Metric() {
	case domidx.MetricDot:
		return dot(q, v)
	case domidx.MetricL2:
		return -l2(q, v)
	default: // cosine: 1 - cosine distance, in [-1, 1]
		return cosine(q, v)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32) float64 {
	var dotSum, normA, normB float64
	for i := range a {
		dotSum += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotSum / (math.Sqrt(normA) * math.Sqrt(normB))
}
