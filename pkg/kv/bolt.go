package kv

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/dubhe-sub002/rollup-state/pkg/log"
)

// BoltStore implements Store on top of go.etcd.io/bbolt: one file, one
// top-level bucket per column family, ACID transactions courtesy of
// bbolt's single-writer/many-readers B+tree.
type BoltStore struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) a bbolt database at path and
// ensures every column family in cfs exists as a bucket.
func Open(path string, cfs []ColumnFamily) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, cf := range cfs {
			if _, err := tx.CreateBucketIfNotExists([]byte(cf)); err != nil {
				return fmt.Errorf("kv: creating bucket %q: %w", cf, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, log: log.WithComponent("kv")}, nil
}

func (s *BoltStore) Get(_ context.Context, cf ColumnFamily, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("unknown column family")
		}
		v := b.Get(key)
		if v != nil {
			out = append([]byte(nil), v...) // bbolt's slice is only valid inside the tx
		}
		return nil
	})
	if err != nil {
		return nil, &OpError{Op: "get", CF: cf, Key: key, Err: err}
	}
	return out, nil
}

func (s *BoltStore) WriteBatch(_ context.Context, writes []Write) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, w := range writes {
			b := tx.Bucket([]byte(w.CF))
			if b == nil {
				return fmt.Errorf("unknown column family %q", w.CF)
			}
			if w.Value == nil {
				if err := b.Delete(w.Key); err != nil {
					return fmt.Errorf("deleting key %x from %q: %w", w.Key, w.CF, err)
				}
				continue
			}
			if err := b.Put(w.Key, w.Value); err != nil {
				return fmt.Errorf("putting key %x into %q: %w", w.Key, w.CF, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("writes", len(writes)).Msg("batch write failed")
		return &OpError{Op: "write_batch", Err: err}
	}
	return nil
}

func (s *BoltStore) Scan(_ context.Context, cf ColumnFamily, start, end []byte, fn func(Entry) (bool, error)) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("unknown column family")
		}
		c := b.Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			cont, err := fn(Entry{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)})
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return nil
	})
	if err != nil {
		return &OpError{Op: "scan", CF: cf, Err: err}
	}
	return nil
}

func (s *BoltStore) SeekPrev(_ context.Context, cf ColumnFamily, probe []byte) (Entry, bool, error) {
	var (
		result Entry
		found  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("unknown column family")
		}
		c := b.Cursor()
		k, v := c.Seek(probe)
		if k == nil || !bytes.Equal(k, probe) {
			k, v = c.Prev()
		}
		if k == nil {
			return nil
		}
		result = Entry{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}
		found = true
		return nil
	})
	if err != nil {
		return Entry{}, false, &OpError{Op: "seek_prev", CF: cf, Key: probe, Err: err}
	}
	return result, found, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
