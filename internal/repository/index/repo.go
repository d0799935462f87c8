// Package index persists collection metadata and index entries as Redis
// hashes. Entries carry a sequence number so the in-memory engine can
// rebuild its insertion order on restart.
package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/paperdex/internal/domain"
	domidx "github.com/kailas-cloud/paperdex/internal/domain/index"
	idx "github.com/kailas-cloud/paperdex/internal/index"
)

// store is the consumer interface for index persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements index.Repository over hash storage.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

var _ idx.Repository = (*Repo)(nil)

// LoadMeta returns the persisted collection descriptor, if any.
func (r *Repo) LoadMeta(ctx context.Context, name string) (domidx.Meta, bool, error) {
	key := metaKey(name)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domidx.Meta{}, false, fmt.Errorf("hgetall %s: %w: %w", key, domain.ErrPersistence, err)
	}
	if len(m) == 0 {
		return domidx.Meta{}, false, nil
	}

	meta, err := parseMetaFields(name, m)
	if err != nil {
		return domidx.Meta{}, false, fmt.Errorf("collection %s: %w", name, err)
	}
	return meta, true, nil
}

// SaveMeta persists the collection descriptor.
func (r *Repo) SaveMeta(ctx context.Context, meta domidx.Meta) error {
	key := metaKey(meta.Name())
	if err := r.store.HSet(ctx, key, buildMetaFields(meta)); err != nil {
		return fmt.Errorf("hset %s: %w: %w", key, domain.ErrPersistence, err)
	}
	return nil
}

// SaveEntry writes one entry hash: vector, sequence number and flat fields.
func (r *Repo) SaveEntry(ctx context.Context, collection string, e idx.StoredEntry) error {
	key := entryKey(collection, e.Entry.ID())
	if err := r.store.HSet(ctx, key, buildEntryFields(e)); err != nil {
		return fmt.Errorf("hset %s: %w: %w", key, domain.ErrPersistence, err)
	}
	return nil
}

// DeleteEntry removes an entry hash.
func (r *Repo) DeleteEntry(ctx context.Context, collection, id string) error {
	key := entryKey(collection, id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w: %w", key, domain.ErrPersistence, err)
	}
	return nil
}

// LoadAll returns every entry of the collection ordered by sequence number.
func (r *Repo) LoadAll(ctx context.Context, collection string) ([]idx.StoredEntry, error) {
	pattern := entryKey(collection, "*")
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w: %w", pattern, domain.ErrPersistence, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w: %w", domain.ErrPersistence, err)
	}

	entries := make([]idx.StoredEntry, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			// Ключ удалён между SCAN и HGETALL.
			continue
		}
		e, err := parseEntryFields(entryID(keys[i], collection), m)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", keys[i], err)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

// Meta and entry hashes live in disjoint namespaces, so no collection
// name can make an entry SCAN sweep up meta keys (or vice versa).
func metaKey(name string) string {
	return fmt.Sprintf("%smeta:%s", domain.KeyPrefix, name)
}

func entryKey(collection, id string) string {
	return fmt.Sprintf("%sentry:%s:%s", domain.KeyPrefix, collection, id)
}

func entryID(key, collection string) string {
	prefix := fmt.Sprintf("%sentry:%s:", domain.KeyPrefix, collection)
	return key[len(prefix):]
}

func parseMetaFields(name string, m map[string]string) (domidx.Meta, error) {
	dim, err := strconv.Atoi(m[fieldDimension])
	if err != nil {
		return domidx.Meta{}, fmt.Errorf("bad dimension %q: %w", m[fieldDimension], err)
	}
	metric, err := domidx.ParseMetric(m[fieldMetric])
	if err != nil {
		return domidx.Meta{}, err
	}
	createdAt, _ := strconv.ParseInt(m[fieldCreatedAt], 10, 64)
	return domidx.ReconstructMeta(name, dim, metric, createdAt), nil
}
