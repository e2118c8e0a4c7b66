// Package kvtest provides an in-memory kv.Store test double so
// higher-level packages can exercise storage behavior without paying
// for a real bbolt file per test case.
package kvtest

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dubhe-sub002/rollup-state/pkg/kv"
)

// MemStore is a goroutine-safe, sorted, in-memory implementation of
// kv.Store backed by plain maps. It is not persisted and exists only
// for tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[kv.ColumnFamily]map[string][]byte
}

// NewMemStore creates a MemStore with one empty column family per name
// in cfs.
func NewMemStore(cfs []string) *MemStore {
	m := &MemStore{data: make(map[kv.ColumnFamily]map[string][]byte)}
	for _, cf := range cfs {
		m.data[kv.ColumnFamily(cf)] = make(map[string][]byte)
	}
	return m
}

func (m *MemStore) bucket(cf kv.ColumnFamily) (map[string][]byte, error) {
	b, ok := m.data[cf]
	if !ok {
		return nil, fmt.Errorf("kvtest: unknown column family %q", cf)
	}
	return b, nil
}

func (m *MemStore) Get(_ context.Context, cf kv.ColumnFamily, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.bucket(cf)
	if err != nil {
		return nil, err
	}
	v, ok := b[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemStore) WriteBatch(_ context.Context, writes []kv.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		b, err := m.bucket(w.CF)
		if err != nil {
			return err
		}
		if w.Value == nil {
			delete(b, string(w.Key))
			continue
		}
		b[string(w.Key)] = append([]byte(nil), w.Value...)
	}
	return nil
}

func (m *MemStore) Scan(_ context.Context, cf kv.ColumnFamily, start, end []byte, fn func(kv.Entry) (bool, error)) error {
	m.mu.RLock()
	b, err := m.bucket(cf)
	if err != nil {
		m.mu.RUnlock()
		return err
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	type kvPair struct{ k, v []byte }
	pairs := make([]kvPair, 0, len(keys))
	for _, k := range keys {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		pairs = append(pairs, kvPair{k: kb, v: b[k]})
	}
	m.mu.RUnlock()

	for _, p := range pairs {
		cont, err := fn(kv.Entry{Key: p.k, Value: p.v})
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}

func (m *MemStore) SeekPrev(_ context.Context, cf kv.ColumnFamily, probe []byte) (kv.Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.bucket(cf)
	if err != nil {
		return kv.Entry{}, false, err
	}
	var best []byte
	var bestVal []byte
	found := false
	for k, v := range b {
		kb := []byte(k)
		if bytes.Compare(kb, probe) > 0 {
			continue
		}
		if !found || bytes.Compare(kb, best) > 0 {
			best, bestVal, found = kb, v, true
		}
	}
	if !found {
		return kv.Entry{}, false, nil
	}
	return kv.Entry{Key: best, Value: append([]byte(nil), bestVal...)}, true, nil
}

func (m *MemStore) Close() error { return nil }
