// Package translate batches a tool's text fields into per-locale translation
// requests against a chat-completions API. Failures never propagate: a locale
// that cannot be translated gets a clearly-marked placeholder so the record
// schema stays complete.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
)

const systemPrompt = "You are a professional technical translator. " +
	"Return ONLY strict JSON, utf-8, with the SAME KEYS as input. " +
	"No commentary, no markdown, no trailing commas. Keep meaning precise. " +
	"Keep technical and product terminology untranslated."

// translation failures degrade to placeholders, so the retry ceiling stays low.
const maxTranslateAttempts = 2

// Client translates tool fields through a chat-completions endpoint.
type Client struct {
	http   httpclient.Client
	apiURL string
	apiKey string
	model  string
	policy httpclient.RetryPolicy
	log    logger.Logger
}

// New builds a translation client. An empty apiKey means every locale gets
// placeholders, keeping the pipeline intact without credentials.
func New(http httpclient.Client, apiURL, apiKey, model string, policy httpclient.RetryPolicy, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		http:   http,
		apiURL: apiURL,
		apiKey: strings.TrimSpace(apiKey),
		model:  model,
		policy: policy.WithMaxAttempts(maxTranslateAttempts),
		log:    log,
	}
}

// TranslateBatch translates source into every target locale, one request per
// locale carrying all fields. Failed locales get placeholders; the result
// always contains exactly the requested locales.
func (c *Client) TranslateBatch(ctx context.Context, source domain.Translation, locales []string) map[string]domain.Translation {
	out := make(map[string]domain.Translation, len(locales))
	for _, locale := range locales {
		translated, err := c.translateOne(ctx, source, locale)
		if err != nil {
			c.log.WarnObj("translation degraded to placeholder", "translate_error", map[string]any{
				"locale": locale,
				"error":  err.Error(),
			})
			translated = Placeholder(source, locale)
		}
		if mapped, ok := CategoryTranslation(source.Category, locale); ok {
			translated.Category = mapped
		}
		out[locale] = translated
	}
	return out
}

func (c *Client) translateOne(ctx context.Context, source domain.Translation, locale string) (domain.Translation, error) {
	if c == nil || c.http == nil || c.apiKey == "" {
		return domain.Translation{}, fmt.Errorf("translator has no api key")
	}

	userPayload := map[string]any{
		"instruction": fmt.Sprintf(
			"Translate each value from English to %s. Keep style concise, natural and domain-correct. Return JSON only.",
			locale,
		),
		"input": source,
	}
	userJSON, err := json.Marshal(userPayload)
	if err != nil {
		return domain.Translation{}, fmt.Errorf("marshal translate payload: %w", err)
	}

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userJSON)},
		},
		"temperature": 0.2,
		"max_tokens":  1200,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var raw []byte
	err = c.policy.Do(ctx, func() error {
		resp, err := c.http.PostJSON(ctx, c.apiURL, headers, body)
		if err != nil {
			return &httpclient.FetchError{URL: c.apiURL, Retryable: true, Err: err}
		}
		if resp.StatusCode() != http.StatusOK {
			retryable := resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
			return &httpclient.FetchError{URL: c.apiURL, StatusCode: resp.StatusCode(), Retryable: retryable}
		}
		raw = resp.Body()
		return nil
	})
	if err != nil {
		return domain.Translation{}, err
	}

	return parseReply(raw, source, locale)
}

// chatReply is the subset of the completions response we consume.
type chatReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// parseReply extracts the translated fields from a completions response.
// Fields the model omitted fall back to placeholder values so the shape is
// always complete.
func parseReply(raw []byte, source domain.Translation, locale string) (domain.Translation, error) {
	var reply chatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return domain.Translation{}, fmt.Errorf("decode completions response: %w", err)
	}
	if len(reply.Choices) == 0 {
		return domain.Translation{}, fmt.Errorf("completions response has no choices")
	}

	content := stripCodeFence(reply.Choices[0].Message.Content)

	var fields map[string]string
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return domain.Translation{}, fmt.Errorf("decode translated fields: %w", err)
	}

	fallback := Placeholder(source, locale)
	pick := func(key, fb string) string {
		if v := strings.TrimSpace(fields[key]); v != "" {
			return v
		}
		return fb
	}

	return domain.Translation{
		Title:            pick("title", fallback.Title),
		ShortDescription: pick("shortDescription", fallback.ShortDescription),
		LongDescription:  pick("longDescription", fallback.LongDescription),
		Tags:             pick("tags", fallback.Tags),
		PricingInfo:      pick("pricingInfo", fallback.PricingInfo),
		Category:         pick("category", fallback.Category),
		AppType:          pick("appType", source.AppType),
	}, nil
}

// stripCodeFence removes ```json ... ``` wrappers some models emit.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "json") {
		s = strings.TrimSpace(s[4:])
	}
	return s
}

// Placeholder builds the marked stand-in translation for a locale.
func Placeholder(source domain.Translation, locale string) domain.Translation {
	mark := func(v string) string {
		return fmt.Sprintf("[TRANSLATE-%s] %s", locale, v)
	}
	return domain.Translation{
		Title:            mark(source.Title),
		ShortDescription: mark(source.ShortDescription),
		LongDescription:  mark(source.LongDescription),
		Tags:             mark(source.Tags),
		PricingInfo:      mark(source.PricingInfo),
		Category:         mark(source.Category),
		AppType:          source.AppType,
	}
}
