// Package kafka publishes session interaction events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/memory-map/internal/app"
	"github.com/couchcryptid/memory-map/internal/observability"
)

const (
	defaultBuffer  = 256
	maxAttempts    = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// TelemetryWriter is an app.EventSink backed by a Kafka producer. Emit
// queues the event; Run publishes queued events until its context ends.
type TelemetryWriter struct {
	writer  messageWriter
	events  chan app.Event
	logger  *slog.Logger
	metrics *observability.Metrics

	backoff time.Duration
}

// NewTelemetryWriter creates a producer for the telemetry topic.
func NewTelemetryWriter(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *TelemetryWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newTelemetryWriter(w, defaultBuffer, logger, metrics)
}

func newTelemetryWriter(w messageWriter, buffer int, logger *slog.Logger, metrics *observability.Metrics) *TelemetryWriter {
	return &TelemetryWriter{
		writer:  w,
		events:  make(chan app.Event, buffer),
		logger:  logger,
		metrics: metrics,
		backoff: initialBackoff,
	}
}

// Emit queues e without blocking. The event is dropped when the queue is full.
func (t *TelemetryWriter) Emit(e app.Event) {
	select {
	case t.events <- e:
	default:
		t.metrics.TelemetryErrors.Inc()
		t.logger.Warn("telemetry queue full, event dropped", "kind", e.Kind)
	}
}

// Run publishes queued events until ctx is cancelled.
func (t *TelemetryWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := len(t.events); n > 0 {
				t.logger.Info("telemetry stopped with queued events", "pending", n)
			}
			return nil
		case e := <-t.events:
			t.publish(ctx, e)
		}
	}
}

// publish writes one event, retrying with exponential backoff.
func (t *TelemetryWriter) publish(ctx context.Context, e app.Event) {
	msg, err := serializeEvent(e)
	if err != nil {
		t.metrics.TelemetryErrors.Inc()
		t.logger.Error("telemetry event dropped", "kind", e.Kind, "error", err)
		return
	}

	backoff := t.backoff
	for attempt := 1; ; attempt++ {
		err = t.writer.WriteMessages(ctx, msg)
		if err == nil {
			return
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		t.logger.Warn("telemetry write failed, retrying",
			"kind", e.Kind,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
	t.metrics.TelemetryErrors.Inc()
	t.logger.Error("telemetry event dropped", "kind", e.Kind, "error", err)
}

// Close flushes and closes the producer.
func (t *TelemetryWriter) Close() error {
	return t.writer.Close()
}

// serializeEvent marshals an Event into a Kafka message keyed by session,
// so one session's events stay ordered on a partition.
func serializeEvent(e app.Event) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize telemetry event: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "kind", Value: []byte(e.Kind)},
		{Key: "emitted_at", Value: []byte(e.At.Format(time.RFC3339))},
	}
	if e.RecordID != 0 {
		headers = append(headers, kafkago.Header{Key: "record_id", Value: []byte(strconv.Itoa(e.RecordID))})
	}
	return kafkago.Message{
		Key:     []byte(e.SessionID),
		Value:   data,
		Headers: headers,
	}, nil
}
