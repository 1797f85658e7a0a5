package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

const defaultBatchTimeout = 10 * time.Millisecond

var errNilEvent = errors.New("tool event is nil")

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// ParseBrokers turns "host:port, host:port" into a broker list, skipping blanks.
func ParseBrokers(brokers string) []string {
	var list []string
	for _, broker := range strings.Split(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			list = append(list, broker)
		}
	}
	return list
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes tool lifecycle events to one topic. Messages are keyed by tool id so the
// events of a tool keep their order.
type Producer struct {
	writer messageWriter
	topic  string
	logger ectologger.Logger
}

func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}

	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, cfg.Topic, logger)
}

func newProducer(writer messageWriter, topic string, logger ectologger.Logger) *Producer {
	return &Producer{writer: writer, topic: topic, logger: logger}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) PublishToolEvent(ctx context.Context, event *ToolEvent) error {
	if event == nil {
		return errNilEvent
	}

	ctx, span := tracing.StartSpan(ctx, "kafka.PublishToolEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("fern.event_type", event.Type),
		attribute.Int("fern.tool_id", event.ToolID),
	)

	msg, err := toMessage(ctx, event)
	if err != nil {
		tracing.Fail(span, err, "encode tool event")
		return err
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":      p.topic,
		"event_type": event.Type,
		"event_id":   event.EventID,
		"tool_id":    event.ToolID,
	})
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		tracing.Fail(span, err, "publish tool event")
		log.WithError(err).Error("Failed to publish tool event")
		return err
	}

	log.Debug("Published tool event")
	return nil
}

// toMessage encodes event as JSON and carries the active trace in its headers.
func toMessage(ctx context.Context, event *ToolEvent) (kafka.Message, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(event.Type)},
		{Key: "event_id", Value: []byte(event.EventID)},
	}
	for key, v := range tracing.PropagationHeaders(ctx) {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	return kafka.Message{
		Key:     []byte(strconv.Itoa(event.ToolID)),
		Value:   value,
		Headers: headers,
	}, nil
}
