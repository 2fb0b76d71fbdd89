package storage

import (
	"fmt"
	"strings"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

// Package storage provides the durable tool-record store. Writes are
// create-if-absent by slug: a record is never mutated after a successful
// write, which is what makes resumed runs idempotent.

// Store persists tool records keyed by slug.
type Store interface {
	Close() error
	// HasTool reports whether a record for slug already exists.
	HasTool(slug string) (bool, error)
	// SaveTool writes rec if no record with its slug exists yet; created is
	// false when the slug was already present.
	SaveTool(rec domain.ToolRecord) (created bool, err error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "file":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("file storage requires a directory path")
		}
		return openFileStore(path)
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// validateSlug rejects slugs that cannot serve as storage keys.
func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("tool record slug is empty")
	}
	if strings.ContainsAny(slug, "/\\") || slug == "." || slug == ".." {
		return fmt.Errorf("tool record slug %q is not a valid key", slug)
	}
	return nil
}

type noopStore struct{}

func (noopStore) Close() error                             { return nil }
func (noopStore) HasTool(string) (bool, error)             { return false, nil }
func (noopStore) SaveTool(domain.ToolRecord) (bool, error) { return true, nil }
