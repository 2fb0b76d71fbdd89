package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

// fileStore keeps one JSON document per slug under a directory. The file's
// existence doubles as the resume/skip signal.
type fileStore struct {
	dir string
}

// openFileStore initializes a directory-backed Store.
func openFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tools directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (f *fileStore) Close() error { return nil }

func (f *fileStore) path(slug string) string {
	return filepath.Join(f.dir, slug+".json")
}

// HasTool checks for an existing record file.
func (f *fileStore) HasTool(slug string) (bool, error) {
	if err := validateSlug(slug); err != nil {
		return false, err
	}
	_, err := os.Stat(f.path(slug))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat tool record: %w", err)
}

// SaveTool writes the record unless its slug already exists. The write goes
// through a temp file and rename so a crash never leaves a partial record
// that a later run would mistake for a completed one.
func (f *fileStore) SaveTool(rec domain.ToolRecord) (bool, error) {
	if err := validateSlug(rec.Slug); err != nil {
		return false, err
	}

	exists, err := f.HasTool(rec.Slug)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal tool record: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, rec.Slug+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp record file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, fmt.Errorf("write tool record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("close tool record: %w", err)
	}
	if err := os.Rename(tmpName, f.path(rec.Slug)); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("rename tool record: %w", err)
	}
	return true, nil
}
