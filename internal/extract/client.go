// Package extract calls a selector-extraction API that returns pre-extracted
// named fields for a page, avoiding local HTML parsing. Without an API key the
// client is disabled and callers fall back to fetching raw markup.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
)

// ListingCard is one pre-extracted listing entry.
type ListingCard struct {
	Href        string `json:"href"`
	Name        string `json:"name"`
	Image       string `json:"img"`
	Description string `json:"desc"`
}

// ListingResult is the structured extraction of a listing page. Next carries
// the href of the page's rel=next link, empty when the page has none.
type ListingResult struct {
	Cards []ListingCard `json:"cards"`
	Next  string        `json:"next"`
}

// DetailResult is the structured extraction of a tool detail page.
type DetailResult struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_desc"`
	OGDescription   string   `json:"og_desc"`
	OGImage         string   `json:"og_img"`
	VisitHref       string   `json:"visit"`
	Pricing         string   `json:"pricing"`
	Tags            []string `json:"tags"`
}

// Client talks to the extraction API.
type Client struct {
	http   httpclient.Client
	apiURL string
	apiKey string
	policy httpclient.RetryPolicy
}

// New builds an extraction client. An empty apiKey yields a disabled client.
func New(http httpclient.Client, apiURL, apiKey string, policy httpclient.RetryPolicy) *Client {
	return &Client{http: http, apiURL: apiURL, apiKey: strings.TrimSpace(apiKey), policy: policy}
}

// Enabled reports whether structured extraction can be attempted.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != "" && c.http != nil
}

// selector describes one field to extract; the shape mirrors the API contract.
type selector struct {
	Selector  string              `json:"selector"`
	Type      string              `json:"type"`
	Attribute string              `json:"attribute,omitempty"`
	Multiple  bool                `json:"multiple,omitempty"`
	Output    map[string]selector `json:"output,omitempty"`
}

func listingSelectors() map[string]selector {
	return map[string]selector{
		"cards": {
			Selector: "a[href*='/tool/']",
			Type:     "multiple",
			Output: map[string]selector{
				"href": {Selector: "", Type: "attribute", Attribute: "href"},
				"name": {Selector: "h2, h3, h4", Type: "text"},
				"img":  {Selector: "img", Type: "attribute", Attribute: "src"},
				"desc": {Selector: "p", Type: "text"},
			},
		},
		"next": {Selector: "link[rel='next']", Type: "attribute", Attribute: "href"},
	}
}

func detailSelectors() map[string]selector {
	return map[string]selector{
		"title":     {Selector: "h1", Type: "text"},
		"meta_desc": {Selector: "meta[name='description']", Type: "attribute", Attribute: "content"},
		"og_desc":   {Selector: "meta[property='og:description']", Type: "attribute", Attribute: "content"},
		"og_img":    {Selector: "meta[property='og:image']", Type: "attribute", Attribute: "content"},
		"visit":     {Selector: "a[href*='redirect'], a[class*='visit'], a[class*='website']", Type: "attribute", Attribute: "href"},
		"pricing":   {Selector: ".pricing, .price, [class*='pricing'], [class*='price']", Type: "text"},
		"tags":      {Selector: ".tag, .category, [class*='tag'], [class*='category']", Type: "text", Multiple: true},
	}
}

// ExtractListing requests structured listing fields for url. A disabled
// client returns (nil, nil) so callers fall through to markup parsing.
func (c *Client) ExtractListing(ctx context.Context, url string) (*ListingResult, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var out ListingResult
	if err := c.post(ctx, url, listingSelectors(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractDetail requests structured detail fields for url.
func (c *Client) ExtractDetail(ctx context.Context, url string) (*DetailResult, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var out DetailResult
	if err := c.post(ctx, url, detailSelectors(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, url string, selectors map[string]selector, out any) error {
	payload := map[string]any{
		"url":       url,
		"selectors": selectors,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var body []byte
	err := c.policy.Do(ctx, func() error {
		resp, err := c.http.PostJSON(ctx, c.apiURL, headers, payload)
		if err != nil {
			return &httpclient.FetchError{URL: c.apiURL, Retryable: true, Err: err}
		}
		if resp.StatusCode() != http.StatusOK {
			retryable := resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
			return &httpclient.FetchError{URL: c.apiURL, StatusCode: resp.StatusCode(), Retryable: retryable}
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return fmt.Errorf("extract api: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode extract api response: %w", err)
	}
	return nil
}
