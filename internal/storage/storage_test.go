package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

func sampleRecord(slug string) domain.ToolRecord {
	return domain.ToolRecord{
		Slug:                  slug,
		ImageURL:              "https://cdn.test/" + slug + ".png",
		RedirectURL:           "https://" + slug + ".test",
		TechnicalRequirements: domain.DefaultTechnicalRequirements,
		SearchIndex:           map[string]string{"en": slug + " tool"},
		Translations: map[string]domain.Translation{
			"en": {Title: slug, Category: "cat", AppType: "other", Tags: "a, b"},
			"es": {Title: "[TRANSLATE-es] " + slug},
		},
	}
}

func TestNewStoreTypes(t *testing.T) {
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatalf("expected error for unknown storage type")
	}
	if _, err := NewStore("file", ""); err == nil {
		t.Fatalf("file store requires a path")
	}
	store, err := NewStore("none", "")
	if err != nil {
		t.Fatalf("NewStore(none): %v", err)
	}
	created, err := store.SaveTool(sampleRecord("x"))
	if err != nil || !created {
		t.Fatalf("noop store should always report created: %v %v", created, err)
	}
}

func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	exists, err := store.HasTool("acme")
	if err != nil {
		t.Fatalf("HasTool: %v", err)
	}
	if exists {
		t.Fatalf("fresh store should not contain acme")
	}

	created, err := store.SaveTool(sampleRecord("acme"))
	if err != nil {
		t.Fatalf("SaveTool: %v", err)
	}
	if !created {
		t.Fatalf("first write should create")
	}

	exists, err = store.HasTool("acme")
	if err != nil || !exists {
		t.Fatalf("HasTool after write = %v, %v", exists, err)
	}

	// Idempotent create-if-absent: second write is a no-op.
	created, err = store.SaveTool(sampleRecord("acme"))
	if err != nil {
		t.Fatalf("second SaveTool: %v", err)
	}
	if created {
		t.Fatalf("second write must not create")
	}

	if _, err := store.SaveTool(domain.ToolRecord{Slug: "../escape"}); err == nil {
		t.Fatalf("expected error for unsafe slug")
	}
	if _, err := store.SaveTool(domain.ToolRecord{}); err == nil {
		t.Fatalf("expected error for empty slug")
	}
}

func TestFileStoreContract(t *testing.T) {
	store, err := NewStore("file", filepath.Join(t.TempDir(), "tools"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestBoltStoreContract(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "tools.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tools")
	store, err := NewStore("file", dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveTool(sampleRecord("acme")); err != nil {
		t.Fatalf("SaveTool: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "acme.json" {
		t.Fatalf("unexpected dir contents %v", entries)
	}
}

func TestWriteCategoryCSV(t *testing.T) {
	dir := t.TempDir()
	records := []domain.ToolRecord{sampleRecord("acme"), sampleRecord("beta")}

	if err := WriteCategoryCSV(dir, "personal-assistant", []string{"en", "es"}, records); err != nil {
		t.Fatalf("WriteCategoryCSV: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "personal-assistant_tools.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "slug" || rows[1][0] != "acme" || rows[2][0] != "beta" {
		t.Fatalf("unexpected rows %v", rows)
	}
	// Locale columns: title_en/short_description_en/search_index_en then _es.
	if got := len(rows[0]); got != 7+3*2 {
		t.Fatalf("header columns = %d, want 13", got)
	}
}

func TestWriteCategoryCSVSkipsEmptyRecordSet(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCategoryCSV(dir, "empty", []string{"en"}, nil); err != nil {
		t.Fatalf("WriteCategoryCSV: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("no file should be written for an empty category")
	}
}
