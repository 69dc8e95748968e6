package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"gamesearch/game"
)

var ErrNotFound = errors.New("record not found")

type Entry struct {
	ID     uuid.UUID   `json:"id"`
	Saved  time.Time   `json:"saved"`
	Record game.Record `json:"record"`
}

// recordPrefix escapes name so that no game's prefix is a prefix of another's.
func recordPrefix(name string) []byte {
	return []byte("record/" + url.PathEscape(name) + "/")
}

func recordKey(name string, id uuid.UUID) []byte {
	return append(recordPrefix(name), id[:]...)
}

func loadValue(tx Tx, key []byte, v any) (bool, error) {
	data := tx.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func storeValue(tx Tx, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Put(key, data)
}

// SaveRecord stores record under id, replacing a previous record with the same id.
func SaveRecord(db Store, id uuid.UUID, record game.Record) error {
	entry := Entry{ID: id, Saved: time.Now().UTC(), Record: record}
	err := db.Update(func(tx Tx) error {
		return storeValue(tx, recordKey(record.Game, id), entry)
	})
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", id, err)
	}
	return nil
}

func LoadRecord(db Store, name string, id uuid.UUID) (Entry, error) {
	var entry Entry
	var found bool
	err := db.View(func(tx Tx) error {
		var err error
		found, err = loadValue(tx, recordKey(name, id), &entry)
		return err
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	if !found {
		return Entry{}, fmt.Errorf("%w: %s %s", ErrNotFound, name, id)
	}
	return entry, nil
}

func DeleteRecord(db Store, name string, id uuid.UUID) error {
	return db.Update(func(tx Tx) error {
		return tx.Delete(recordKey(name, id))
	})
}

// ListRecords returns the ids of the records of one game in key order.
func ListRecords(db Store, name string) ([]uuid.UUID, error) {
	prefix := recordPrefix(name)
	ids := []uuid.UUID{}
	err := db.View(func(tx Tx) error {
		c := tx.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			id, err := uuid.FromBytes(k[len(prefix):])
			if err != nil {
				return fmt.Errorf("malformed record key %q: %w", k, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
