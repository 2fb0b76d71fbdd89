// Package parser turns listing and detail pages into normalized tool fields.
// It has two modes: structured (pre-extracted fields from the extraction API)
// and fallback (raw markup via goquery). Neither mode returns errors for
// malformed input; the caller gets the best-effort partial result.
package parser

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/extract"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

var nextTextRe = regexp.MustCompile(`(?i)next`)

// Listing is a parsed listing page.
type Listing struct {
	Tools   []domain.ToolSummary
	HasNext bool
}

// listingHeuristics are tried in order; the first yielding at least one tool
// wins, tolerating markup drift.
var listingHeuristics = []string{
	"a[href*='/tool/']",
	"div[class*='tool-card'] a[href]",
	"article a[href]",
}

// ParseListingHTML extracts tool summaries from raw listing markup (fallback
// mode). pageSizeHint drives the page-full heuristic: a page with at least
// that many entries may have a successor even without an explicit next link.
func ParseListingHTML(body []byte, baseURL, categoryName string, pageSizeHint int) Listing {
	doc, err := newDocument(body)
	if err != nil {
		return Listing{}
	}

	var tools []domain.ToolSummary
	for _, sel := range listingHeuristics {
		tools = parseCards(doc, sel, baseURL, categoryName)
		if len(tools) > 0 {
			break
		}
	}
	tools = dedupeBySlug(tools)

	hasNext := hasNextPage(doc)
	if !hasNext && pageSizeHint > 0 && len(tools) >= pageSizeHint {
		// Page looks full; assume a successor may exist. An incorrect yes
		// costs one wasted fetch, bounded by the orchestrator's page ceiling.
		hasNext = true
	}

	return Listing{Tools: tools, HasNext: hasNext}
}

// ListingFromExtract maps a structured extraction result to tool summaries
// with defensive defaulting: missing fields become empty values, entries
// without a usable href are dropped.
func ListingFromExtract(res *extract.ListingResult, baseURL, categoryName string) []domain.ToolSummary {
	if res == nil || len(res.Cards) == 0 {
		return nil
	}

	tools := make([]domain.ToolSummary, 0, len(res.Cards))
	for _, card := range res.Cards {
		href := strings.TrimSpace(card.Href)
		if href == "" {
			continue
		}
		detailURL := absoluteURL(baseURL, href)
		slug := SlugFromURL(detailURL)
		if slug == "" {
			continue
		}
		name := strings.TrimSpace(card.Name)
		if name == "" {
			name = slug
		}
		tools = append(tools, domain.ToolSummary{
			Slug:             slug,
			Name:             name,
			DetailURL:        detailURL,
			ImageURL:         absoluteURLIfRelative(baseURL, strings.TrimSpace(card.Image)),
			ShortDescription: strings.TrimSpace(card.Description),
			Category:         categoryName,
		})
	}
	return dedupeBySlug(tools)
}

// ParseDetailHTML extracts raw tool fields from detail-page markup (fallback
// mode). Missing fields default to empty values.
func ParseDetailHTML(body []byte, pageURL string) domain.RawToolFields {
	doc, err := newDocument(body)
	if err != nil {
		return domain.RawToolFields{}
	}

	fields := domain.RawToolFields{}

	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		fields.Title = strings.TrimSpace(h1.Text())
	} else if title := doc.Find("title").First(); title.Length() > 0 {
		fields.Title = strings.TrimSpace(title.Text())
	}
	if fields.Title == "" {
		fields.Title = SlugFromURL(pageURL)
	}

	for _, sel := range []string{"meta[name='description']", "meta[property='og:description']"} {
		if v := metaContent(doc, sel); v != "" {
			fields.Description = v
			break
		}
	}
	if fields.Description == "" {
		for _, sel := range []string{".description", ".summary", "p"} {
			if node := doc.Find(sel).First(); node.Length() > 0 {
				if v := strings.TrimSpace(node.Text()); v != "" {
					fields.Description = v
					break
				}
			}
		}
	}

	fields.ImageURL = metaContent(doc, "meta[property='og:image']")

	for _, sel := range []string{"a[href*='redirect']", "a[class*='visit']", "a[class*='website']"} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if href, ok := node.Attr("href"); ok && strings.TrimSpace(href) != "" {
				fields.RedirectURL = DecodeRedirect(strings.TrimSpace(href))
				break
			}
		}
	}

	for _, sel := range []string{".pricing", ".price", "[class*='pricing']", "[class*='price']"} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if v := strings.TrimSpace(node.Text()); v != "" {
				fields.Pricing = v
				break
			}
		}
	}

	seen := make(map[string]bool)
	for _, sel := range []string{".tag", ".category", "[class*='tag']", "[class*='category']"} {
		doc.Find(sel).Each(func(_ int, node *goquery.Selection) {
			tag := strings.ToLower(strings.TrimSpace(node.Text()))
			if tag != "" && !seen[tag] {
				seen[tag] = true
				fields.Tags = append(fields.Tags, tag)
			}
		})
	}

	return fields
}

// DetailFromExtract maps a structured detail result to raw tool fields.
func DetailFromExtract(res *extract.DetailResult) domain.RawToolFields {
	if res == nil {
		return domain.RawToolFields{}
	}

	desc := strings.TrimSpace(res.MetaDescription)
	if desc == "" {
		desc = strings.TrimSpace(res.OGDescription)
	}

	tags := make([]string, 0, len(res.Tags))
	seen := make(map[string]bool, len(res.Tags))
	for _, raw := range res.Tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return domain.RawToolFields{
		Title:       strings.TrimSpace(res.Title),
		Description: desc,
		ImageURL:    strings.TrimSpace(res.OGImage),
		RedirectURL: DecodeRedirect(strings.TrimSpace(res.VisitHref)),
		Pricing:     strings.TrimSpace(res.Pricing),
		Tags:        tags,
	}
}

// newDocument builds a goquery document, capping oversized bodies.
func newDocument(body []byte) (*goquery.Document, error) {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// parseCards extracts tool summaries using one anchor selector heuristic.
func parseCards(doc *goquery.Document, anchorSel, baseURL, categoryName string) []domain.ToolSummary {
	var tools []domain.ToolSummary

	doc.Find(anchorSel).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		detailURL := absoluteURL(baseURL, strings.TrimSpace(href))
		slug := SlugFromURL(detailURL)
		if slug == "" {
			return
		}

		name := ""
		if heading := a.Find("h2, h3, h4").First(); heading.Length() > 0 {
			name = strings.TrimSpace(heading.Text())
		}
		if name == "" {
			name = truncateRunes(strings.TrimSpace(a.Text()), 80)
		}
		if name == "" {
			name = slug
		}

		imageURL := ""
		if img := a.Find("img").First(); img.Length() > 0 {
			if src, ok := img.Attr("src"); ok {
				imageURL = absoluteURLIfRelative(baseURL, strings.TrimSpace(src))
			}
		}

		desc := ""
		if p := a.Find("p").First(); p.Length() > 0 {
			desc = strings.TrimSpace(p.Text())
		}

		tools = append(tools, domain.ToolSummary{
			Slug:             slug,
			Name:             name,
			DetailURL:        detailURL,
			ImageURL:         imageURL,
			ShortDescription: desc,
			Category:         categoryName,
		})
	})

	return tools
}

// hasNextPage checks the explicit pagination affordances in markup.
func hasNextPage(doc *goquery.Document) bool {
	if doc.Find("link[rel='next']").Length() > 0 {
		return true
	}

	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if nextTextRe.MatchString(strings.TrimSpace(a.Text())) {
			found = true
			return false
		}
		if label, ok := a.Attr("aria-label"); ok && nextTextRe.MatchString(label) {
			found = true
			return false
		}
		return true
	})
	return found
}

// metaContent returns the trimmed content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, sel string) string {
	if node := doc.Find(sel).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// SlugFromURL returns the last path segment of a URL.
func SlugFromURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		trimmed = strings.TrimRight(parsed.Path, "/")
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}

// DecodeRedirect unwraps /redirect?to=<url> style links to the target URL.
func DecodeRedirect(href string) string {
	if href == "" || !strings.Contains(href, "redirect") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if to := parsed.Query().Get("to"); to != "" {
		return to
	}
	return href
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func absoluteURLIfRelative(baseURL, href string) string {
	if href == "" {
		return ""
	}
	return absoluteURL(baseURL, href)
}

// truncateRunes caps s at max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// dedupeBySlug keeps the first summary per slug, preserving order.
func dedupeBySlug(tools []domain.ToolSummary) []domain.ToolSummary {
	if len(tools) < 2 {
		return tools
	}
	seen := make(map[string]bool, len(tools))
	out := tools[:0]
	for _, t := range tools {
		if seen[t.Slug] {
			continue
		}
		seen[t.Slug] = true
		out = append(out, t)
	}
	return out
}
