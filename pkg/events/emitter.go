// Package events handles event emission for tool lifecycle changes
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ToolEmitter announces committed catalog changes. Emission never fails the caller; publish
// errors are logged and counted.
type ToolEmitter interface {
	ToolCreated(ctx context.Context, tool *models.Tool)
	ToolUpdated(ctx context.Context, toolID int, changedFields []string)
	ToolDeleted(ctx context.Context, toolID int)
}

// Publisher sends a tool event to the broker
type Publisher interface {
	PublishToolEvent(ctx context.Context, event *kafka.ToolEvent) error
}

// Emitter publishes tool events through a Publisher
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

func (e *Emitter) ToolCreated(ctx context.Context, tool *models.Tool) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ToolCreated")
	defer span.End()

	e.emit(ctx, &kafka.ToolEvent{
		Type:   kafka.EventToolCreated,
		ToolID: tool.ID,
		Tool:   tool,
	})
}

func (e *Emitter) ToolUpdated(ctx context.Context, toolID int, changedFields []string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ToolUpdated")
	defer span.End()

	e.emit(ctx, &kafka.ToolEvent{
		Type:          kafka.EventToolUpdated,
		ToolID:        toolID,
		ChangedFields: changedFields,
	})
}

func (e *Emitter) ToolDeleted(ctx context.Context, toolID int) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ToolDeleted")
	defer span.End()

	e.emit(ctx, &kafka.ToolEvent{
		Type:   kafka.EventToolDeleted,
		ToolID: toolID,
	})
}

func (e *Emitter) emit(ctx context.Context, event *kafka.ToolEvent) {
	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	err := e.publisher.PublishToolEvent(ctx, event)
	metrics.EventsPublishedTotal.WithLabelValues(event.Type, metrics.Outcome(err)).Inc()
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.Type,
			"tool_id":    event.ToolID,
		}).Warnf("Failed to emit %s event", event.Type)
	}
}

// NoopEmitter drops every event. It is used when Kafka is disabled.
type NoopEmitter struct{}

func (NoopEmitter) ToolCreated(context.Context, *models.Tool)   {}
func (NoopEmitter) ToolUpdated(context.Context, int, []string) {}
func (NoopEmitter) ToolDeleted(context.Context, int)           {}
