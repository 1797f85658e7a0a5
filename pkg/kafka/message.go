package kafka

import (
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	EventToolCreated = "tool.created"
	EventToolUpdated = "tool.updated"
	EventToolDeleted = "tool.deleted"
)

// ToolEvent is a lifecycle event of one catalog tool
type ToolEvent struct {
	EventID       string       `json:"event_id"`
	Type          string       `json:"type"`
	ToolID        int          `json:"tool_id"`
	Tool          *models.Tool `json:"tool,omitempty"`
	ChangedFields []string     `json:"changed_fields,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}
