package crawler

import (
	"context"
	"fmt"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/categories"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/logger"
)

// CategoryRunner runs a single category end to end.
type CategoryRunner interface {
	Run(ctx context.Context, cat categories.Category) (domain.CategoryRun, error)
}

// Service coordinates a full run across categories. Categories run in
// sequence and are isolated from each other: one failing category is recorded
// and the rest continue.
type Service struct {
	runner CategoryRunner
	log    logger.Logger
}

// NewService builds the run coordinator.
func NewService(runner CategoryRunner, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{runner: runner, log: log}
}

// RunAll processes every category and aggregates the per-category outcomes.
// Only context cancellation stops the loop early.
func (s *Service) RunAll(ctx context.Context, cats []categories.Category) domain.RunSummary {
	var summary domain.RunSummary

	for _, cat := range cats {
		if ctx.Err() != nil {
			break
		}

		s.log.InfoObj("category run starting", "category_start", map[string]any{
			"category": cat.Name,
			"url":      cat.SourceURL,
		})

		run, err := s.runOne(ctx, cat)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation is a run-level stop, not a category failure.
				summary.Add(run)
				break
			}
			s.log.ErrorObj("category run failed", "category_error", map[string]any{
				"category": cat.Name,
				"error":    err.Error(),
			})
			summary.CategoryFailures = append(summary.CategoryFailures, domain.CategoryFailure{
				CategoryName: cat.Name,
				Reason:       err.Error(),
			})
			continue
		}

		summary.Add(run)
		s.log.InfoObj("category run finished", "category_done", map[string]any{
			"category":  cat.Name,
			"pages":     run.PagesFetched,
			"found":     run.ToolsFound,
			"processed": run.ToolsProcessed,
			"skipped":   run.ToolsSkipped,
			"failed":    len(run.Failures),
		})
	}

	return summary
}

// runOne contains a category run, converting panics into category failures so
// one misbehaving category cannot take down the whole run.
func (s *Service) runOne(ctx context.Context, cat categories.Category) (run domain.CategoryRun, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CategoryFatalError{Category: cat.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.runner.Run(ctx, cat)
}
