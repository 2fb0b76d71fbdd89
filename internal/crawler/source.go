package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/categories"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/extract"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/parser"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
)

// Fetcher retrieves a page body with retry and identity rotation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (httpclient.Response, error)
}

// Extractor is the structured-extraction surface of the extraction API client.
type Extractor interface {
	Enabled() bool
	ExtractListing(ctx context.Context, url string) (*extract.ListingResult, error)
	ExtractDetail(ctx context.Context, url string) (*extract.DetailResult, error)
}

// Source resolves listing pages and tool detail pages into normalized fields.
// Structured extraction is attempted first when available; raw markup parsing
// is the fallback, so a missing or failing extraction API degrades the run
// instead of stopping it.
type Source struct {
	fetch        Fetcher
	extractor    Extractor
	baseURL      string
	pageSizeHint int
	log          logger.Logger
}

// NewSource wires a page source from its fetch and extraction dependencies.
// extractor may be nil.
func NewSource(fetch Fetcher, extractor Extractor, baseURL string, pageSizeHint int, log logger.Logger) *Source {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Source{
		fetch:        fetch,
		extractor:    extractor,
		baseURL:      baseURL,
		pageSizeHint: pageSizeHint,
		log:          log,
	}
}

// ListPage returns the tool summaries on one listing page and whether a
// successor page may exist.
func (s *Source) ListPage(ctx context.Context, cat categories.Category, page int) ([]domain.ToolSummary, bool, error) {
	url := PageURL(cat.SourceURL, page)

	if s.extractor != nil && s.extractor.Enabled() {
		res, err := s.extractor.ExtractListing(ctx, url)
		if err != nil {
			s.log.WarnObj("structured listing extraction failed, falling back to markup", "listing_extract_error", map[string]any{
				"category": cat.Name,
				"page":     page,
				"error":    err.Error(),
			})
		} else if tools := parser.ListingFromExtract(res, s.baseURL, cat.Name); len(tools) > 0 {
			// The extracted rel=next link is the primary signal; the page-full
			// heuristic only widens it. A false "no" here would drop every
			// remaining page of the category.
			hasNext := strings.TrimSpace(res.Next) != "" ||
				(s.pageSizeHint > 0 && len(tools) >= s.pageSizeHint)
			return tools, hasNext, nil
		}
	}

	resp, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("fetch listing page %d: %w", page, err)
	}

	listing := parser.ParseListingHTML(resp.Body(), s.baseURL, cat.Name, s.pageSizeHint)
	return listing.Tools, listing.HasNext, nil
}

// ToolDetail returns the raw fields of one tool's detail page.
func (s *Source) ToolDetail(ctx context.Context, tool domain.ToolSummary) (domain.RawToolFields, error) {
	if s.extractor != nil && s.extractor.Enabled() {
		res, err := s.extractor.ExtractDetail(ctx, tool.DetailURL)
		if err != nil {
			s.log.WarnObj("structured detail extraction failed, falling back to markup", "detail_extract_error", map[string]any{
				"slug":  tool.Slug,
				"error": err.Error(),
			})
		} else if res != nil {
			fields := parser.DetailFromExtract(res)
			if fields.Title != "" {
				return fields, nil
			}
		}
	}

	resp, err := s.fetch.Fetch(ctx, tool.DetailURL)
	if err != nil {
		return domain.RawToolFields{}, fmt.Errorf("fetch detail page: %w", err)
	}

	return parser.ParseDetailHTML(resp.Body(), tool.DetailURL), nil
}

// PageURL derives the URL of the n-th listing page. Page 1 is the source URL
// itself; later pages carry an explicit page parameter.
func PageURL(sourceURL string, page int) string {
	if page <= 1 {
		return sourceURL
	}
	sep := "?"
	if strings.Contains(sourceURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", sourceURL, sep, page)
}
