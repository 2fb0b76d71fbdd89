package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/categories"
	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

type fakeRunner struct {
	runs map[string]domain.CategoryRun
	errs map[string]error
	seen []string
}

func (f *fakeRunner) Run(_ context.Context, cat categories.Category) (domain.CategoryRun, error) {
	f.seen = append(f.seen, cat.Name)
	if err := f.errs[cat.Name]; err != nil {
		return domain.CategoryRun{CategoryName: cat.Name}, err
	}
	return f.runs[cat.Name], nil
}

func TestServiceRunAllAggregates(t *testing.T) {
	runner := &fakeRunner{runs: map[string]domain.CategoryRun{
		"chat":  {CategoryName: "chat", ToolsFound: 4, ToolsProcessed: 3, ToolsSkipped: 1},
		"image": {CategoryName: "image", ToolsFound: 2, ToolsProcessed: 2},
	}}
	svc := NewService(runner, nil)

	summary := svc.RunAll(context.Background(), []categories.Category{
		{Name: "chat"}, {Name: "image"},
	})

	if len(summary.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(summary.Categories))
	}
	if summary.ToolsFound != 6 || summary.ToolsProcessed != 5 || summary.ToolsSkipped != 1 {
		t.Fatalf("unexpected totals %+v", summary)
	}
}

func TestServiceCategoryIsolation(t *testing.T) {
	runner := &fakeRunner{
		runs: map[string]domain.CategoryRun{
			"image": {CategoryName: "image", ToolsFound: 1, ToolsProcessed: 1},
		},
		errs: map[string]error{
			"chat": &CategoryFatalError{Category: "chat", Err: errors.New("status 503")},
		},
	}
	svc := NewService(runner, nil)

	summary := svc.RunAll(context.Background(), []categories.Category{
		{Name: "chat"}, {Name: "image"},
	})

	if len(runner.seen) != 2 {
		t.Fatalf("a failed category must not stop the run, seen %v", runner.seen)
	}
	if len(summary.CategoryFailures) != 1 || summary.CategoryFailures[0].CategoryName != "chat" {
		t.Fatalf("unexpected failures %v", summary.CategoryFailures)
	}
	if summary.ToolsProcessed != 1 {
		t.Fatalf("surviving category should be counted, got %d", summary.ToolsProcessed)
	}
}

type panickyRunner struct{}

func (panickyRunner) Run(context.Context, categories.Category) (domain.CategoryRun, error) {
	panic("listing parser exploded")
}

func TestServiceContainsPanics(t *testing.T) {
	svc := NewService(panickyRunner{}, nil)

	summary := svc.RunAll(context.Background(), []categories.Category{{Name: "chat"}})

	if len(summary.CategoryFailures) != 1 {
		t.Fatalf("panic should become a category failure, got %+v", summary)
	}
	if summary.CategoryFailures[0].CategoryName != "chat" {
		t.Fatalf("unexpected failure %+v", summary.CategoryFailures[0])
	}
}

func TestServiceStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	svc := NewService(runner, nil)
	svc.RunAll(ctx, []categories.Category{{Name: "chat"}, {Name: "image"}})

	if len(runner.seen) != 0 {
		t.Fatalf("cancelled run should not start categories, seen %v", runner.seen)
	}
}
