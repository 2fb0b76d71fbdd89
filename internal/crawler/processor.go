package crawler

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

// DetailSource resolves a tool summary into its detail-page fields.
type DetailSource interface {
	ToolDetail(ctx context.Context, tool domain.ToolSummary) (domain.RawToolFields, error)
}

// Translator renders a source translation into each target locale.
type Translator interface {
	TranslateBatch(ctx context.Context, source domain.Translation, locales []string) map[string]domain.Translation
}

const maxShortDescriptionLen = 160

// Processor turns one tool summary into a complete tool record: detail fetch,
// field normalization, per-locale translation and search-index assembly.
type Processor struct {
	source  DetailSource
	trans   Translator
	locales []string
}

// NewProcessor builds a tool processor targeting the given locales. English
// is always produced and need not be listed.
func NewProcessor(source DetailSource, trans Translator, locales []string) *Processor {
	targets := make([]string, 0, len(locales))
	for _, loc := range locales {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc == "" || loc == "en" {
			continue
		}
		targets = append(targets, loc)
	}
	return &Processor{source: source, trans: trans, locales: targets}
}

// Process assembles the durable record for one tool. Errors are always
// *ToolProcessingError; a failed tool never takes down its category.
func (p *Processor) Process(ctx context.Context, tool domain.ToolSummary) (domain.ToolRecord, error) {
	if strings.TrimSpace(tool.Slug) == "" {
		return domain.ToolRecord{}, &ToolProcessingError{
			Slug:  tool.Slug,
			Stage: "identity",
			Err:   errors.New("tool summary has no slug"),
		}
	}

	fields, err := p.source.ToolDetail(ctx, tool)
	if err != nil {
		return domain.ToolRecord{}, &ToolProcessingError{Slug: tool.Slug, Stage: "fetch_detail", Err: err}
	}

	if strings.TrimSpace(fields.Title) == "" {
		fields.Title = tool.Name
	}
	if strings.TrimSpace(fields.Title) == "" {
		return domain.ToolRecord{}, &ToolProcessingError{
			Slug:  tool.Slug,
			Stage: "identity",
			Err:   errors.New("detail page yielded no title"),
		}
	}
	if fields.ImageURL == "" {
		fields.ImageURL = tool.ImageURL
	}

	source := sourceTranslation(tool, fields)

	translations := make(map[string]domain.Translation, len(p.locales)+1)
	translations["en"] = source
	if p.trans != nil && len(p.locales) > 0 {
		for locale, tr := range p.trans.TranslateBatch(ctx, source, p.locales) {
			translations[locale] = tr
		}
	}

	searchIndex := make(map[string]string, len(translations))
	for locale, tr := range translations {
		searchIndex[locale] = domain.SearchIndexFor(tr)
	}

	return domain.ToolRecord{
		Slug:                  tool.Slug,
		ImageURL:              fields.ImageURL,
		RedirectURL:           fields.RedirectURL,
		DemoURL:               fields.DemoURL,
		TechnicalRequirements: domain.DefaultTechnicalRequirements,
		SearchIndex:           searchIndex,
		Translations:          translations,
	}, nil
}

// sourceTranslation builds the English translation all other locales derive from.
func sourceTranslation(tool domain.ToolSummary, fields domain.RawToolFields) domain.Translation {
	short := strings.TrimSpace(tool.ShortDescription)
	if short == "" {
		short = truncate(fields.Description, maxShortDescriptionLen)
	}

	pricing := fields.Pricing
	if pricing == "" {
		pricing = "Visit website for pricing"
	}

	return domain.Translation{
		Title:            strings.TrimSpace(fields.Title),
		ShortDescription: short,
		LongDescription:  strings.TrimSpace(fields.Description),
		Tags:             strings.Join(fields.Tags, ", "),
		PricingInfo:      pricing,
		Category:         tool.Category,
		AppType:          domain.DeriveAppType(fields.Title, fields.Description, fields.Tags),
	}
}

// truncate shortens s to at most max bytes without splitting a rune,
// preferring to cut at the last word boundary.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
