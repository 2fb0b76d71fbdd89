package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

// WriteCategoryCSV writes the per-category aggregate artifact: one row per
// tool record, with per-locale title/description/search-index columns for
// the given locale order.
func WriteCategoryCSV(dir, categoryName string, locales []string, records []domain.ToolRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dir, categoryName+"_tools.csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create category csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := []string{"slug", "category", "app_type", "pricing_info", "tags", "image_url", "redirect_url"}
	for _, loc := range locales {
		header = append(header,
			"title_"+loc,
			"short_description_"+loc,
			"search_index_"+loc,
		)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		base := rec.Translations["en"]
		row := []string{
			rec.Slug,
			base.Category,
			base.AppType,
			base.PricingInfo,
			base.Tags,
			rec.ImageURL,
			rec.RedirectURL,
		}
		for _, loc := range locales {
			tr := rec.Translations[loc]
			row = append(row, tr.Title, tr.ShortDescription, rec.SearchIndex[loc])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", rec.Slug, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush category csv: %w", err)
	}
	return nil
}
