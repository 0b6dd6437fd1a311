package loaders

import (
	"context"
	"sync"
)

// BatchFunc fetches every key in one round trip. Keys absent from the returned map are
// remembered as missing.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Loader caches batch lookups for the lifetime of one HTTP request.
type Loader[K comparable, V any] struct {
	fetch   BatchFunc[K, V]
	mu      sync.Mutex
	cache   map[K]V
	missing map[K]struct{}
	batches int
}

func NewLoader[K comparable, V any](fetch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		fetch:   fetch,
		cache:   make(map[K]V),
		missing: make(map[K]struct{}),
	}
}

// LoadMany resolves keys, fetching only the ones not seen before. Duplicates are
// collapsed and the result holds only keys that exist.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := make([]K, 0, len(keys))
	seen := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := l.cache[k]; ok {
			continue
		}
		if _, ok := l.missing[k]; ok {
			continue
		}
		pending = append(pending, k)
	}

	if len(pending) > 0 {
		l.batches++
		found, err := l.fetch(ctx, pending)
		if err != nil {
			return nil, err
		}
		for _, k := range pending {
			if v, ok := found[k]; ok {
				l.cache[k] = v
			} else {
				l.missing[k] = struct{}{}
			}
		}
	}

	out := make(map[K]V, len(seen))
	for k := range seen {
		if v, ok := l.cache[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, bool, error) {
	found, err := l.LoadMany(ctx, []K{key})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := found[key]
	return v, ok, nil
}

// Batches reports how many fetches went to the store.
func (l *Loader[K, V]) Batches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batches
}
