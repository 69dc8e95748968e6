// Package store keeps game records in a key-value store: a bolt database in production and an
// in-memory store in tests.
package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/boltdb/bolt"
	"golang.org/x/exp/slices"
)

type Store interface {
	Update(fn func(Tx) error) error
	View(fn func(Tx) error) error
	Close() error
}

// Tx is valid only inside the function passed to Update or View. Values returned by Get and by
// cursors must be copied to outlive it.
type Tx interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() Cursor
}

type Cursor interface {
	Seek(prefix []byte) ([]byte, []byte)
	First() ([]byte, []byte)
	Next() ([]byte, []byte)
}

var bucket = []byte("games")

// BoltDB implementation

var _ Store = boltStore{}
var _ Tx = boltTx{}
var _ Cursor = boltCursor{}

type boltStore struct {
	db *bolt.DB
}

type boltTx struct {
	tx *bolt.Tx
}

type boltCursor struct {
	c *bolt.Cursor
}

// Open opens or creates the bolt database at path.
func Open(path string) (Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database %s: %w", path, err)
	}
	return boltStore{db}, nil
}

func (bs boltStore) Update(fn func(Tx) error) error {
	return bs.db.Update(func(tx *bolt.Tx) error {
		return fn(boltTx{tx})
	})
}

func (bs boltStore) View(fn func(Tx) error) error {
	return bs.db.View(func(tx *bolt.Tx) error {
		return fn(boltTx{tx})
	})
}

func (bs boltStore) Close() error {
	return bs.db.Close()
}

func (bt boltTx) bucket() *bolt.Bucket {
	return bt.tx.Bucket(bucket)
}

func (bt boltTx) Get(key []byte) []byte {
	return bt.bucket().Get(key)
}

func (bt boltTx) Put(key, value []byte) error {
	return bt.bucket().Put(key, value)
}

func (bt boltTx) Delete(key []byte) error {
	return bt.bucket().Delete(key)
}

func (bt boltTx) Cursor() Cursor {
	return boltCursor{bt.bucket().Cursor()}
}

func (bc boltCursor) Seek(prefix []byte) ([]byte, []byte) {
	return bc.c.Seek(prefix)
}

func (bc boltCursor) First() ([]byte, []byte) {
	return bc.c.First()
}

func (bc boltCursor) Next() ([]byte, []byte) {
	return bc.c.Next()
}

// In-memory implementation

type memEntry struct {
	k []byte
	v []byte
}

// MemStore keeps entries sorted by key, like bolt does. Transactions are serialized by a lock
// and are not rolled back on error.
type MemStore struct {
	mu      sync.Mutex
	entries []memEntry
}

type memTx struct {
	ms *MemStore
}

type memCursor struct {
	i  int
	ms *MemStore
}

var _ Store = &MemStore{}
var _ Tx = memTx{}
var _ Cursor = &memCursor{}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (ms *MemStore) Update(fn func(Tx) error) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return fn(memTx{ms})
}

func (ms *MemStore) View(fn func(Tx) error) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return fn(memTx{ms})
}

func (ms *MemStore) Close() error {
	return nil
}

func (ms *MemStore) index(key []byte) (int, bool) {
	return slices.BinarySearchFunc(ms.entries, key, func(e memEntry, k []byte) int {
		return bytes.Compare(e.k, k)
	})
}

func (mt memTx) Get(key []byte) []byte {
	if i, ok := mt.ms.index(key); ok {
		return mt.ms.entries[i].v
	}
	return nil
}

func (mt memTx) Put(key, value []byte) error {
	i, ok := mt.ms.index(key)
	if ok {
		mt.ms.entries[i].v = slices.Clone(value)
		return nil
	}
	mt.ms.entries = slices.Insert(mt.ms.entries, i, memEntry{slices.Clone(key), slices.Clone(value)})
	return nil
}

func (mt memTx) Delete(key []byte) error {
	if i, ok := mt.ms.index(key); ok {
		mt.ms.entries = slices.Delete(mt.ms.entries, i, i+1)
	}
	return nil
}

func (mt memTx) Cursor() Cursor {
	return &memCursor{0, mt.ms}
}

func (mc *memCursor) at(i int) ([]byte, []byte) {
	if i >= len(mc.ms.entries) {
		return nil, nil
	}
	e := mc.ms.entries[i]
	mc.i = i + 1
	return e.k, e.v
}

func (mc *memCursor) Seek(prefix []byte) ([]byte, []byte) {
	i, _ := mc.ms.index(prefix)
	return mc.at(i)
}

func (mc *memCursor) First() ([]byte, []byte) {
	return mc.at(0)
}

func (mc *memCursor) Next() ([]byte, []byte) {
	return mc.at(mc.i)
}
