package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
)

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

// localeClient answers per-locale by inspecting the request payload.
type localeClient struct {
	failLocales map[string]bool
	calls       int
}

func (c *localeClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, fmt.Errorf("unexpected GET")
}

func (c *localeClient) PostJSON(_ context.Context, _ string, _ map[string]string, body any) (httpclient.Response, error) {
	c.calls++
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	locale := ""
	for _, cand := range []string{"es", "pt", "fr", "de"} {
		if strings.Contains(string(raw), "English to "+cand) {
			locale = cand
			break
		}
	}
	if c.failLocales[locale] {
		return stubResponse{statusCode: 500}, nil
	}

	fields := map[string]string{
		"title":            "título " + locale,
		"shortDescription": "corto " + locale,
		"longDescription":  "largo " + locale,
		"tags":             "tags " + locale,
		"pricingInfo":      "precio " + locale,
		"category":         "categoria " + locale,
		"appType":          "assistant",
	}
	content, _ := json.Marshal(fields)
	reply, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": string(content)}},
		},
	})
	return stubResponse{statusCode: 200, body: reply}, nil
}

func testPolicy() httpclient.RetryPolicy {
	return httpclient.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func sourceFields() domain.Translation {
	return domain.Translation{
		Title:            "Acme Chat",
		ShortDescription: "short",
		LongDescription:  "long",
		Tags:             "chat, support",
		PricingInfo:      "Freemium",
		Category:         "misc-tools",
		AppType:          "assistant",
	}
}

func TestTranslateBatchCoversAllLocales(t *testing.T) {
	c := New(&localeClient{}, "https://llm.test", "key", "test-model", testPolicy(), nil)

	out := c.TranslateBatch(context.Background(), sourceFields(), []string{"es", "pt"})
	if len(out) != 2 {
		t.Fatalf("locales = %d, want 2", len(out))
	}
	if out["es"].Title != "título es" || out["pt"].Title != "título pt" {
		t.Fatalf("unexpected titles %+v", out)
	}
}

func TestTranslateBatchPlaceholderOnlyForFailingLocale(t *testing.T) {
	client := &localeClient{failLocales: map[string]bool{"fr": true}}
	c := New(client, "https://llm.test", "key", "test-model", testPolicy(), nil)

	out := c.TranslateBatch(context.Background(), sourceFields(), []string{"es", "fr", "de"})

	if !strings.HasPrefix(out["fr"].Title, "[TRANSLATE-fr] ") {
		t.Fatalf("fr should be a placeholder, got %q", out["fr"].Title)
	}
	if strings.HasPrefix(out["es"].Title, "[TRANSLATE-") || strings.HasPrefix(out["de"].Title, "[TRANSLATE-") {
		t.Fatalf("es/de should be real translations: %q / %q", out["es"].Title, out["de"].Title)
	}
}

func TestTranslateBatchWithoutAPIKeyYieldsPlaceholders(t *testing.T) {
	c := New(&localeClient{}, "https://llm.test", "", "test-model", testPolicy(), nil)

	out := c.TranslateBatch(context.Background(), sourceFields(), []string{"es"})
	if got := out["es"].Title; got != "[TRANSLATE-es] Acme Chat" {
		t.Fatalf("Title = %q", got)
	}
	// Every field carries content even in degraded mode.
	if out["es"].PricingInfo == "" || out["es"].Category == "" {
		t.Fatalf("placeholder left empty fields: %+v", out["es"])
	}
}

func TestTranslateBatchAppliesCategoryDictionary(t *testing.T) {
	src := sourceFields()
	src.Category = "code-assistant"
	c := New(&localeClient{}, "https://llm.test", "key", "test-model", testPolicy(), nil)

	out := c.TranslateBatch(context.Background(), src, []string{"es"})
	if out["es"].Category != "asistente-codigo" {
		t.Fatalf("Category = %q, want dictionary translation", out["es"].Category)
	}
}

func TestTranslateRetriesServerErrorsWithLowCeiling(t *testing.T) {
	client := &localeClient{failLocales: map[string]bool{"es": true}}
	c := New(client, "https://llm.test", "key", "test-model", testPolicy(), nil)

	c.TranslateBatch(context.Background(), sourceFields(), []string{"es"})
	if client.calls != 2 {
		t.Fatalf("calls = %d, want 2 (low retry ceiling)", client.calls)
	}
}

func TestParseReplyStripsCodeFence(t *testing.T) {
	content := "```json\n{\"title\":\"t\",\"shortDescription\":\"s\",\"longDescription\":\"l\",\"tags\":\"g\",\"pricingInfo\":\"p\",\"category\":\"c\",\"appType\":\"a\"}\n```"
	reply, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"content": content}}},
	})

	got, err := parseReply(reply, sourceFields(), "es")
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if got.Title != "t" || got.Category != "c" {
		t.Fatalf("unexpected translation %+v", got)
	}
}

func TestParseReplyFillsMissingFieldsWithPlaceholders(t *testing.T) {
	content := `{"title":"solo título"}`
	reply, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"content": content}}},
	})

	got, err := parseReply(reply, sourceFields(), "es")
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if got.Title != "solo título" {
		t.Fatalf("Title = %q", got.Title)
	}
	if !strings.HasPrefix(got.LongDescription, "[TRANSLATE-es] ") {
		t.Fatalf("missing field should be a placeholder, got %q", got.LongDescription)
	}
}
