package app

import (
	"context"
	"fmt"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/categories"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/config"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/crawler"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/extract"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/storage"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/translate"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/httpclient"
	"github.com/toolpedia-hq/toolpedia-harvester/pkg/sinks"
)

// Harvester is the assembled runtime: category registry, page source,
// processor pipeline, storage and downstream sinks.
type Harvester struct {
	cfg         *config.Config
	categoryReg *categories.Registry
	service     *crawler.Service
	orch        *crawler.Orchestrator
	fanout      *sinks.Fanout
	store       storage.Store
	log         logger.Logger
}

// NewHarvester builds a harvester runtime from config files.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	categoryReg, err := categories.LoadRegistry(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories registry: %w", err)
	}
	names := make([]string, 0, len(categoryReg.All()))
	for _, c := range categoryReg.All() {
		names = append(names, c.Name)
	}
	log.InfoObj("categories registry loaded", "categories_meta", map[string]any{
		"count": len(names),
		"names": names,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, storagePath(cfg))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": storagePath(cfg),
	})

	policy := httpclient.DefaultRetryPolicy(cfg.MaxRetries)

	fetchHTTP := httpclient.NewRestyClient(cfg.RequestTimeout)
	fetcher := httpclient.NewFetchClient(fetchHTTP, policy)

	extractor := extract.New(fetchHTTP, cfg.ExtractAPIURL, cfg.ExtractAPIKey, policy)

	translateHTTP := httpclient.NewRestyClient(cfg.TranslateTimeout)
	translator := translate.New(translateHTTP, cfg.TranslateAPIURL, cfg.TranslateAPIKey, cfg.TranslateModel, policy, log)

	source := crawler.NewSource(fetcher, extractor, cfg.BaseURL, cfg.ItemsPerPageHint, log)
	processor := crawler.NewProcessor(source, translator, cfg.TargetLocales)

	orch := crawler.NewOrchestrator(source, processor, store, fanout, crawler.OrchestratorOptions{
		Workers:   cfg.Workers,
		MaxPages:  cfg.MaxPagesPerCategory,
		PageDelay: cfg.RequestDelay,
		DataDir:   cfg.DataDir,
		Locales:   csvLocales(cfg.TargetLocales),
	}, log)

	return &Harvester{
		cfg:         cfg,
		categoryReg: categoryReg,
		service:     crawler.NewService(orch, log),
		orch:        orch,
		fanout:      fanout,
		store:       store,
		log:         log,
	}, nil
}

// RunAll harvests every registered category.
func (h *Harvester) RunAll(ctx context.Context) (domain.RunSummary, error) {
	if h == nil || h.service == nil {
		return domain.RunSummary{}, fmt.Errorf("harvester is not initialized")
	}

	cats := make([]categories.Category, 0, len(h.categoryReg.All()))
	for _, c := range h.categoryReg.All() {
		cats = append(cats, categories.Fill(c, h.cfg.BaseURL))
	}
	if len(cats) == 0 {
		return domain.RunSummary{}, fmt.Errorf("no categories configured")
	}

	summary := h.service.RunAll(ctx, cats)
	h.log.InfoObj("run finished", "run_summary", summary)
	return summary, nil
}

// RunCategory harvests a single category given by name or full listing URL.
func (h *Harvester) RunCategory(ctx context.Context, input string) (domain.CategoryRun, error) {
	if h == nil || h.orch == nil {
		return domain.CategoryRun{}, fmt.Errorf("harvester is not initialized")
	}

	cat, err := categories.Resolve(input, h.cfg.BaseURL, h.categoryReg)
	if err != nil {
		return domain.CategoryRun{}, err
	}

	run, err := h.orch.Run(ctx, cat)
	if err != nil {
		return run, err
	}
	h.log.InfoObj("category finished", "category_run", run)
	return run, nil
}

// Close releases the storage backend.
func (h *Harvester) Close() error {
	if h == nil || h.store == nil {
		return nil
	}
	return h.store.Close()
}

// buildFanout assembles the sink fanout; no sinks file means no fanout.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	if cfg.SinksFile == "" {
		return nil, nil
	}

	sinkReg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}

	enabled := sinkReg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("sinks file has no enabled sinks", "sinks_file", cfg.SinksFile)
		return nil, nil
	}

	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sc := range enabled {
		summaries = append(summaries, map[string]string{"id": sc.ID, "type": sc.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})

	return sinks.NewFanout(built), nil
}

// storagePath picks the backend path matching the configured storage type.
func storagePath(cfg *config.Config) string {
	if cfg.StorageType == "bbolt" {
		return cfg.BBoltPath
	}
	return cfg.ToolsDir
}

// csvLocales orders the CSV translation columns, english first.
func csvLocales(targets []string) []string {
	out := make([]string, 0, len(targets)+1)
	out = append(out, "en")
	for _, loc := range targets {
		if loc == "en" {
			continue
		}
		out = append(out, loc)
	}
	return out
}
