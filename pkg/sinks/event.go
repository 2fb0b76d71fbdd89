package sinks

import (
	"time"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/domain"
)

// Event represents the payload published downstream after a tool is persisted.
type Event struct {
	CategoryName string            `json:"category_name"`
	Tool         domain.ToolRecord `json:"tool"`
	CollectedAt  time.Time         `json:"collected_at"`
}

// NewEvent constructs an Event for the given category + tool record.
func NewEvent(categoryName string, tool domain.ToolRecord) Event {
	return Event{
		CategoryName: categoryName,
		Tool:         tool,
		CollectedAt:  time.Now().UTC(),
	}
}
