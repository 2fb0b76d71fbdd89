package httpclient

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
)

// userAgents rotates per request to reduce fingerprinting-based blocking.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
}

// FetchError classifies an HTTP fetch failure. Timeouts, 429 and 5xx are
// retryable; other 4xx statuses are terminal.
type FetchError struct {
	URL        string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// FetchClient issues GET requests with retry/backoff and rotating identity
// headers. It performs no caching.
type FetchClient struct {
	client Client
	policy RetryPolicy

	// pickUA is injectable for tests; nil means random selection.
	pickUA func() string
}

// NewFetchClient wraps client with the given retry policy.
func NewFetchClient(client Client, policy RetryPolicy) *FetchClient {
	return &FetchClient{client: client, policy: policy}
}

// Fetch GETs url, retrying per the policy. A non-nil Response is only
// returned for 2xx statuses.
func (f *FetchClient) Fetch(ctx context.Context, url string) (Response, error) {
	var out Response
	err := f.policy.Do(ctx, func() error {
		resp, err := f.client.Get(ctx, url, f.requestHeaders())
		if err != nil {
			return &FetchError{URL: url, Retryable: true, Err: err}
		}
		if ferr := classifyStatus(url, resp); ferr != nil {
			return ferr
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// requestHeaders builds the rotating browserish header set.
func (f *FetchClient) requestHeaders() map[string]string {
	ua := ""
	if f.pickUA != nil {
		ua = f.pickUA()
	} else {
		ua = userAgents[rand.Intn(len(userAgents))]
	}
	return map[string]string{
		"User-Agent":      ua,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.7",
		"Connection":      "keep-alive",
	}
}

// classifyStatus maps a response status to nil (success) or a FetchError.
func classifyStatus(url string, resp Response) *FetchError {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return &FetchError{URL: url, StatusCode: code, Retryable: true}
	default:
		return &FetchError{URL: url, StatusCode: code, Retryable: false}
	}
}

// BodySnippet trims a response body for error messages.
func BodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
