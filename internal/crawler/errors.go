package crawler

import "fmt"

// ToolProcessingError marks a single tool that failed mid-pipeline. It never
// aborts the surrounding category run.
type ToolProcessingError struct {
	Slug  string
	Stage string
	Err   error
}

func (e *ToolProcessingError) Error() string {
	return fmt.Sprintf("process tool %s at %s: %v", e.Slug, e.Stage, e.Err)
}

func (e *ToolProcessingError) Unwrap() error { return e.Err }

// CategoryFatalError marks a category whose run could not start at all, such
// as when the first listing page is unreachable. Other categories continue.
type CategoryFatalError struct {
	Category string
	Err      error
}

func (e *CategoryFatalError) Error() string {
	return fmt.Sprintf("category %s failed: %v", e.Category, e.Err)
}

func (e *CategoryFatalError) Unwrap() error { return e.Err }
