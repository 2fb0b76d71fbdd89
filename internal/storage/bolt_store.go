package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const toolBucket = "tools"

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(toolBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// HasTool checks if a record with the given slug has been written.
func (b *boltStore) HasTool(slug string) (bool, error) {
	if err := validateSlug(slug); err != nil {
		return false, err
	}

	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(toolBucket))
		if bucket == nil {
			return fmt.Errorf("tool bucket missing")
		}
		exists = bucket.Get([]byte(slug)) != nil
		return nil
	})
	return exists, err
}

// SaveTool writes the record in a single transaction unless its slug exists.
func (b *boltStore) SaveTool(rec domain.ToolRecord) (bool, error) {
	if err := validateSlug(rec.Slug); err != nil {
		return false, err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal tool record: %w", err)
	}

	created := false
	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(toolBucket))
		if bucket == nil {
			return fmt.Errorf("tool bucket missing")
		}
		key := []byte(rec.Slug)
		if bucket.Get(key) != nil {
			return nil
		}
		created = true
		return bucket.Put(key, payload)
	})
	return created, err
}
