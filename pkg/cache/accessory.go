package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/kv"
)

// AccessoryStore is the non-authenticated, versioned key-value store
// behind the Accessory namespace. Every write is appended under
// rawKey ‖ bigEndian(version) rather than overwriting in place, so a
// read at any past version can recover the value visible at that
// version via the substrate's range-prev primitive (§6): seek for the
// greatest key <= rawKey ‖ bigEndian(version), then check the found
// key actually has rawKey as its prefix.
type AccessoryStore struct {
	backend kv.Store
	cf      kv.ColumnFamily
}

// NewAccessoryStore binds an AccessoryStore to one column family.
func NewAccessoryStore(backend kv.Store, cf kv.ColumnFamily) *AccessoryStore {
	return &AccessoryStore{backend: backend, cf: cf}
}

func versionedKey(rawKey []byte, version uint64) []byte {
	out := make([]byte, len(rawKey)+8)
	copy(out, rawKey)
	binary.BigEndian.PutUint64(out[len(rawKey):], version)
	return out
}

// Get returns the value visible for rawKey as of version, i.e. the
// value written by the greatest version <= the requested one.
//
// version numbers are assigned from one global monotone counter shared
// by every in-flight fork (see StorageManager.nextVersion), not scoped
// to a block's own ancestry. A sibling fork's accessory writes, once
// flushed via SaveChangeSet, are therefore visible to SeekPrev from any
// later version, including one on a competing branch that never
// descends from the block that wrote them. This cannot affect a JMT
// root (Accessory never contributes to one, per §3) and a losing
// fork's entries are simply orphaned and unreachable once pruned, but
// it does mean the isolation guarantee for accessory reads is "no
// earlier value is overwritten," not "no value outside my ancestry is
// ever visible."
func (s *AccessoryStore) Get(ctx context.Context, rawKey []byte, version uint64) ([]byte, bool, error) {
	probe := versionedKey(rawKey, version)
	entry, found, err := s.backend.SeekPrev(ctx, s.cf, probe)
	if err != nil {
		return nil, false, fmt.Errorf("cache: accessory read of %x at version %d: %w", rawKey, version, err)
	}
	if !found || len(entry.Key) < len(rawKey) || !bytes.Equal(entry.Key[:len(rawKey)], rawKey) {
		return nil, false, nil
	}
	if len(entry.Value) == 0 || entry.Value[0] == tombstoneTag {
		return nil, false, nil
	}
	return entry.Value[1:], true, nil
}

// present/tombstone tag bytes distinguish "written as empty" from
// "deleted" without relying on a nil vs. empty slice, since the
// underlying kv.Store already uses a nil Write.Value to mean delete
// the row outright — accessory state needs to keep the tombstone row
// around so range-prev still finds it at later versions.
const (
	tombstoneTag byte = 0x00
	presentTag   byte = 0x01
)

// Put writes value for rawKey at version. A nil value records a
// tombstone so later reads at or after version observe the deletion.
func (s *AccessoryStore) Put(ctx context.Context, rawKey []byte, version uint64, value []byte) error {
	w := kv.Write{CF: s.cf, Key: versionedKey(rawKey, version)}
	if value != nil {
		w.Value = append([]byte{presentTag}, value...)
	} else {
		w.Value = []byte{tombstoneTag}
	}
	if err := s.backend.WriteBatch(ctx, []kv.Write{w}); err != nil {
		return fmt.Errorf("cache: accessory write of %x at version %d: %w", rawKey, version, err)
	}
	return nil
}
