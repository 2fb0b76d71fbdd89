package domain

// Domain contains core models shared across the harvester.

// DefaultTechnicalRequirements is the boilerplate requirement line attached to
// every tool record; the directory does not expose real system requirements.
const DefaultTechnicalRequirements = "Modern web browser, stable internet connection"

// ToolSummary is one listing-page entry: just enough to locate the tool's
// detail page. It is ephemeral and consumed immediately by the processor.
type ToolSummary struct {
	Slug             string
	Name             string
	DetailURL        string
	ImageURL         string
	ShortDescription string
	Category         string
}

// RawToolFields holds the fields extracted from a tool's detail page before
// translation and assembly. Missing optional fields stay empty.
type RawToolFields struct {
	Title       string
	Description string
	ImageURL    string
	RedirectURL string
	DemoURL     string
	Pricing     string
	Tags        []string
}

// Translation is one locale's rendering of a tool's text fields.
type Translation struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
	Tags             string `json:"tags"`
	PricingInfo      string `json:"pricingInfo"`
	Category         string `json:"category"`
	AppType          string `json:"appType"`
}

// ToolRecord is the durable entity written once per unique tool, keyed by
// slug. Records are never mutated after a successful write; a re-run skips
// slugs that already exist in storage.
type ToolRecord struct {
	Slug                  string                 `json:"slug"`
	ImageURL              string                 `json:"image_url"`
	RedirectURL           string                 `json:"redirect_url"`
	DemoURL               string                 `json:"demo_url"`
	TechnicalRequirements string                 `json:"technical_requirements"`
	SearchIndex           map[string]string      `json:"search_index"`
	Translations          map[string]Translation `json:"translations"`
}

// ToolFailure records one tool that could not be processed.
type ToolFailure struct {
	Slug   string `json:"slug"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// CategoryRun aggregates the outcome of processing one category from its
// first listing page to pagination termination.
type CategoryRun struct {
	CategoryName   string        `json:"category_name"`
	SourceURL      string        `json:"source_url"`
	PagesFetched   int           `json:"pages_fetched"`
	ToolsFound     int           `json:"tools_found"`
	ToolsProcessed int           `json:"tools_processed"`
	ToolsSkipped   int           `json:"tools_skipped"`
	Failures       []ToolFailure `json:"failures,omitempty"`
}

// CategoryFailure records a category whose run could not complete at all.
type CategoryFailure struct {
	CategoryName string `json:"category_name"`
	Reason       string `json:"reason"`
}

// RunSummary aggregates totals across all categories of one run.
type RunSummary struct {
	Categories       []CategoryRun     `json:"categories"`
	CategoryFailures []CategoryFailure `json:"category_failures,omitempty"`
	ToolsFound       int               `json:"tools_found"`
	ToolsProcessed   int               `json:"tools_processed"`
	ToolsSkipped     int               `json:"tools_skipped"`
	ToolsFailed      int               `json:"tools_failed"`
}

// Add folds one category run into the summary totals.
func (s *RunSummary) Add(run CategoryRun) {
	s.Categories = append(s.Categories, run)
	s.ToolsFound += run.ToolsFound
	s.ToolsProcessed += run.ToolsProcessed
	s.ToolsSkipped += run.ToolsSkipped
	s.ToolsFailed += len(run.Failures)
}
