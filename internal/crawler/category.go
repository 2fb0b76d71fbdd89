package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/categories"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/storage"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/sinks"
)

// ListingSource enumerates the tools on a category's listing pages.
type ListingSource interface {
	ListPage(ctx context.Context, cat categories.Category, page int) ([]domain.ToolSummary, bool, error)
}

// ToolProcessor turns a tool summary into a complete record.
type ToolProcessor interface {
	Process(ctx context.Context, tool domain.ToolSummary) (domain.ToolRecord, error)
}

// Orchestrator walks one category end to end: paginate the listing, dedupe
// discovered tools, skip already-persisted slugs, process the rest through a
// bounded worker pool and persist the results.
type Orchestrator struct {
	source    ListingSource
	processor ToolProcessor
	store     storage.Store
	fanout    *sinks.Fanout
	workers   int
	maxPages  int
	pageDelay time.Duration
	dataDir   string
	locales   []string
	log       logger.Logger
}

// OrchestratorOptions carries the tunables of a category run.
type OrchestratorOptions struct {
	Workers   int
	MaxPages  int
	PageDelay time.Duration
	// DataDir enables the per-category CSV artifact when non-empty.
	DataDir string
	// Locales orders the CSV translation columns; "en" first by convention.
	Locales []string
}

// NewOrchestrator wires a category orchestrator. fanout may be nil.
func NewOrchestrator(source ListingSource, processor ToolProcessor, store storage.Store, fanout *sinks.Fanout, opts OrchestratorOptions, log logger.Logger) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Orchestrator{
		source:    source,
		processor: processor,
		store:     store,
		fanout:    fanout,
		workers:   opts.Workers,
		maxPages:  opts.MaxPages,
		pageDelay: opts.PageDelay,
		dataDir:   opts.DataDir,
		locales:   opts.Locales,
		log:       log,
	}
}

// Run processes one category until pagination terminates or the page ceiling
// is reached. A first-page listing failure is fatal for the category; later
// page failures end pagination with the results gathered so far.
func (o *Orchestrator) Run(ctx context.Context, cat categories.Category) (domain.CategoryRun, error) {
	run := domain.CategoryRun{CategoryName: cat.Name, SourceURL: cat.SourceURL}
	seen := make(map[string]bool)
	var records []domain.ToolRecord

	pageDelay := o.pageDelay
	if cat.RequestDelayMs > 0 {
		pageDelay = time.Duration(cat.RequestDelayMs) * time.Millisecond
	}

	for page := 1; page <= o.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		tools, hasNext, err := o.source.ListPage(ctx, cat, page)
		if err != nil {
			if page == 1 {
				return run, &CategoryFatalError{Category: cat.Name, Err: err}
			}
			o.log.WarnObj("listing page failed, ending pagination", "listing_page_error", map[string]any{
				"category": cat.Name,
				"page":     page,
				"error":    err.Error(),
			})
			break
		}
		run.PagesFetched++

		fresh := make([]domain.ToolSummary, 0, len(tools))
		for _, tool := range tools {
			if tool.Slug == "" || seen[tool.Slug] {
				continue
			}
			seen[tool.Slug] = true
			fresh = append(fresh, tool)
		}
		run.ToolsFound += len(fresh)

		// A page of entirely known tools means the walk has looped or the
		// listing repeats itself; stop rather than refetch forever.
		if len(fresh) == 0 {
			break
		}

		pending := fresh[:0]
		for _, tool := range fresh {
			exists, err := o.store.HasTool(tool.Slug)
			if err != nil {
				o.log.WarnObj("storage lookup failed, processing anyway", "storage_lookup_error", map[string]any{
					"slug":  tool.Slug,
					"error": err.Error(),
				})
			}
			if exists {
				run.ToolsSkipped++
				continue
			}
			pending = append(pending, tool)
		}

		processed, failures := o.processBatch(ctx, pending)
		run.Failures = append(run.Failures, failures...)

		for _, rec := range processed {
			created, err := o.store.SaveTool(rec)
			if err != nil {
				run.Failures = append(run.Failures, domain.ToolFailure{
					Slug: rec.Slug, Stage: "persist", Reason: err.Error(),
				})
				continue
			}
			if !created {
				run.ToolsSkipped++
				continue
			}
			run.ToolsProcessed++
			records = append(records, rec)
			o.publish(ctx, cat.Name, rec)
		}

		if !hasNext {
			break
		}
		if page < o.maxPages && pageDelay > 0 {
			if err := sleep(ctx, pageDelay); err != nil {
				return run, err
			}
		}
	}

	if o.dataDir != "" && len(records) > 0 {
		if err := storage.WriteCategoryCSV(o.dataDir, cat.Name, o.locales, records); err != nil {
			o.log.WarnObj("category csv write failed", "csv_error", map[string]any{
				"category": cat.Name,
				"error":    err.Error(),
			})
		}
	}

	return run, nil
}

// processBatch runs the pending tools through the bounded worker pool.
// Worker errors are collected as failures, never propagated, so one broken
// tool cannot cancel its siblings.
func (o *Orchestrator) processBatch(ctx context.Context, pending []domain.ToolSummary) ([]domain.ToolRecord, []domain.ToolFailure) {
	if len(pending) == 0 {
		return nil, nil
	}

	var (
		mu        sync.Mutex
		processed []domain.ToolRecord
		failures  []domain.ToolFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, tool := range pending {
		tool := tool
		g.Go(func() error {
			rec, err := o.processor.Process(gctx, tool)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, toolFailure(tool.Slug, err))
				return nil
			}
			processed = append(processed, rec)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	return processed, failures
}

func (o *Orchestrator) publish(ctx context.Context, categoryName string, rec domain.ToolRecord) {
	if o.fanout == nil || o.fanout.Size() == 0 {
		return
	}
	if _, err := o.fanout.Publish(ctx, sinks.NewEvent(categoryName, rec)); err != nil {
		o.log.WarnObj("sink publish failed", "sink_publish_error", map[string]any{
			"slug":  rec.Slug,
			"error": err.Error(),
		})
	}
}

func toolFailure(slug string, err error) domain.ToolFailure {
	if perr, ok := err.(*ToolProcessingError); ok {
		return domain.ToolFailure{Slug: perr.Slug, Stage: perr.Stage, Reason: perr.Error()}
	}
	return domain.ToolFailure{Slug: slug, Stage: "process", Reason: err.Error()}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
