// Package cache implements the layered, transaction-scoped read/write
// cache hierarchy: Delta (base, witness-capturing) -> TxScratchpad
// (per-transaction) -> WorkingSet (gas-metered) -> PreExecWorkingSet
// (sequencer-stake-metered).
package cache

import "github.com/elliotchance/orderedmap"

// entry is one cached key's state: the last known value (if any) and
// whether this cache itself wrote it (as opposed to having merely
// memoized a read from below).
type entry struct {
	value []byte
	found bool
	dirty bool
}

// nsCache is one namespace's slice of a cache layer: an insertion-
// ordered key -> entry map. Insertion order matters twice over: it is
// what makes the witness's read log deterministic (§4.6), and it is
// what makes a dirty-write replay deterministic when a scratchpad
// commits into its parent (§4.2's "insertion order used during
// execution").
type nsCache struct {
	entries *orderedmap.OrderedMap
}

func newNSCache() *nsCache {
	return &nsCache{entries: orderedmap.NewOrderedMap()}
}

func (c *nsCache) peek(key []byte) (*entry, bool) {
	v, ok := c.entries.Get(string(key))
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// upsert sets key's entry. elliotchance/orderedmap keeps an existing
// key's position on update, so overwriting a memoized read with a
// dirty write does not disturb first-access order.
func (c *nsCache) upsert(key []byte, e *entry) {
	c.entries.Set(string(key), e)
}

// memoize records a read observed from the layer beneath, without
// marking it dirty: a later commit must not re-write a value that was
// only ever read, not written, at this layer.
func (c *nsCache) memoize(key []byte, value []byte, found bool) {
	if _, existed := c.peek(key); existed {
		return
	}
	c.upsert(key, &entry{value: value, found: found})
}

func (c *nsCache) set(key []byte, value []byte) {
	c.upsert(key, &entry{value: value, found: true, dirty: true})
}

func (c *nsCache) delete(key []byte) {
	c.upsert(key, &entry{found: false, dirty: true})
}

// dirtyInOrder returns every dirty entry's key and entry, in the order
// the keys were first touched within this cache.
func (c *nsCache) dirtyInOrder() []keyedEntry {
	var out []keyedEntry
	for el := c.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if e.dirty {
			out = append(out, keyedEntry{key: []byte(el.Key.(string)), entry: e})
		}
	}
	return out
}

type keyedEntry struct {
	key   []byte
	entry *entry
}

// Key returns the entry's key.
func (k keyedEntry) Key() []byte { return k.key }

// Value returns the entry's buffered value, or nil if it was deleted.
func (k keyedEntry) Value() []byte {
	if !k.entry.found {
		return nil
	}
	return k.entry.value
}

// Found reports whether the buffered write was a set (true) or a
// delete (false).
func (k keyedEntry) Found() bool { return k.entry.found }
