package extract

import (
	"context"
	"testing"
	"time"

	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
)

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

type stubClient struct {
	resp    httpclient.Response
	err     error
	calls   int
	lastURL string
	headers map[string]string
}

func (s *stubClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	s.calls++
	s.lastURL = url
	s.headers = headers
	return s.resp, s.err
}

func (s *stubClient) PostJSON(ctx context.Context, url string, headers map[string]string, _ any) (httpclient.Response, error) {
	return s.Get(ctx, url, headers)
}

func testPolicy() httpclient.RetryPolicy {
	return httpclient.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func TestDisabledClientReturnsNil(t *testing.T) {
	c := New(&stubClient{}, "https://api.test", "", testPolicy())
	if c.Enabled() {
		t.Fatalf("client without key should be disabled")
	}
	res, err := c.ExtractListing(context.Background(), "https://example.test")
	if err != nil || res != nil {
		t.Fatalf("disabled client: res=%v err=%v, want nil/nil", res, err)
	}
}

func TestExtractListingDecodesCards(t *testing.T) {
	stub := &stubClient{resp: stubResponse{
		statusCode: 200,
		body:       []byte(`{"cards":[{"href":"/tool/acme","name":"Acme","img":"/i.png","desc":"does things"}]}`),
	}}
	c := New(stub, "https://api.test", "key", testPolicy())

	res, err := c.ExtractListing(context.Background(), "https://example.test/cat")
	if err != nil {
		t.Fatalf("ExtractListing: %v", err)
	}
	if len(res.Cards) != 1 || res.Cards[0].Href != "/tool/acme" || res.Cards[0].Name != "Acme" {
		t.Fatalf("unexpected cards %+v", res.Cards)
	}
	if stub.headers["Authorization"] != "Bearer key" {
		t.Fatalf("Authorization = %q", stub.headers["Authorization"])
	}
}

func TestExtractDetailErrorsOnBadStatus(t *testing.T) {
	stub := &stubClient{resp: stubResponse{statusCode: 403}}
	c := New(stub, "https://api.test", "key", testPolicy())

	if _, err := c.ExtractDetail(context.Background(), "https://example.test/tool/x"); err == nil {
		t.Fatalf("expected error on 403")
	}
	if stub.calls != 1 {
		t.Fatalf("calls = %d, want 1 (4xx is terminal)", stub.calls)
	}
}

func TestExtractRetriesServerErrors(t *testing.T) {
	stub := &stubClient{resp: stubResponse{statusCode: 500}}
	c := New(stub, "https://api.test", "key", testPolicy())

	if _, err := c.ExtractDetail(context.Background(), "https://example.test/tool/x"); err == nil {
		t.Fatalf("expected error after retries")
	}
	if stub.calls != 2 {
		t.Fatalf("calls = %d, want 2", stub.calls)
	}
}
