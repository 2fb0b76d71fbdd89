package domain

import "strings"

// appTypeRules maps keyword sets to app types; first match wins.
var appTypeRules = []struct {
	appType  string
	keywords []string
}{
	{"assistant", []string{"assistant", "chatbot", "chat"}},
	{"generator", []string{"generator", "create", "generate"}},
	{"research", []string{"research", "search", "find"}},
	{"writing", []string{"write", "writing", "text"}},
	{"image", []string{"image", "photo", "picture"}},
	{"video", []string{"video", "movie"}},
	{"audio", []string{"audio", "music", "sound"}},
	{"code", []string{"code", "programming", "development"}},
}

// DeriveAppType classifies a tool from its title, description and tags.
func DeriveAppType(title, description string, tags []string) string {
	text := strings.ToLower(title + " " + description + " " + strings.Join(tags, " "))
	for _, rule := range appTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.appType
			}
		}
	}
	return "other"
}

// SearchIndexFor builds the lowercased search-index string for one locale's
// translation: title, long description and tags concatenated.
func SearchIndexFor(tr Translation) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{tr.Title, tr.LongDescription, tr.Tags} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, strings.ToLower(trimmed))
		}
	}
	return strings.Join(parts, " ")
}
