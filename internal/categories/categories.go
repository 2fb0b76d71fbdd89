package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package categories loads the ordered category list driving a harvest run.

// Category is one listing source to harvest. RequestDelayMs optionally
// overrides the global inter-page delay for slow or rate-limited categories.
type Category struct {
	Name           string `json:"name" yaml:"name"`
	SourceURL      string `json:"source_url" yaml:"source_url"`
	RequestDelayMs int    `json:"request_delay_ms" yaml:"request_delay_ms"`
}

type registryFile struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Registry holds the loaded, validated category list in file order.
type Registry struct {
	categories []Category
	idx        map[string]Category
}

// LoadRegistry loads the category registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("categories file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open categories file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Categories) == 0 {
		return nil, errors.New("categories file contains no categories entries")
	}

	out := &Registry{
		categories: make([]Category, len(reg.Categories)),
		idx:        make(map[string]Category, len(reg.Categories)),
	}
	for i := range reg.Categories {
		c := sanitizeCategory(reg.Categories[i])
		if c.Name == "" {
			return nil, fmt.Errorf("category[%d]: name is required", i)
		}
		if _, exists := out.idx[c.Name]; exists {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		out.categories[i] = c
		out.idx[c.Name] = c
	}

	return out, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("categories file format not recognized (expected YAML or JSON)")
}

func sanitizeCategory(c Category) Category {
	c.Name = Slugify(c.Name)
	c.SourceURL = strings.TrimSpace(c.SourceURL)
	if c.RequestDelayMs < 0 {
		c.RequestDelayMs = 0
	}
	return c
}

// All returns the categories in file order.
func (r *Registry) All() []Category {
	if r == nil {
		return nil
	}
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// ByName returns the category entry for the given (slugified) name.
func (r *Registry) ByName(name string) (Category, bool) {
	if r == nil {
		return Category{}, false
	}
	c, ok := r.idx[Slugify(name)]
	return c, ok
}

// Slugify normalizes a human category name to its URL slug: lowercased,
// spaces to dashes, everything but letters, digits and dashes dropped.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")

	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// Resolve turns a category input (full URL, registered name, or bare name)
// into a runnable Category. Bare names get a listing URL derived from baseURL.
func Resolve(input, baseURL string, reg *Registry) (Category, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Category{}, errors.New("category input is empty")
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		parsed, err := url.Parse(input)
		if err != nil {
			return Category{}, fmt.Errorf("parse category url: %w", err)
		}
		name := Slugify(lastPathSegment(parsed.Path))
		if name == "" {
			return Category{}, fmt.Errorf("category url %q has no name segment", input)
		}
		return Category{Name: name, SourceURL: input}, nil
	}

	if c, ok := reg.ByName(input); ok {
		return Fill(c, baseURL), nil
	}

	slug := Slugify(input)
	if slug == "" {
		return Category{}, fmt.Errorf("category name %q is empty after slugify", input)
	}
	return Category{Name: slug, SourceURL: ListingURL(baseURL, slug)}, nil
}

// Fill derives the source URL for registry entries that only carry a name.
func Fill(c Category, baseURL string) Category {
	if c.SourceURL == "" {
		c.SourceURL = ListingURL(baseURL, c.Name)
	}
	return c
}

// ListingURL builds the listing URL for a category slug.
func ListingURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/ai-tools/" + slug
}

func lastPathSegment(path string) string {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
