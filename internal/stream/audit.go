// Package stream publishes alert decisions to Kafka for downstream
// analytics. The publisher is fire-and-forget: a broker outage never blocks
// or fails a notification run.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

// AuditEvent is one published alert decision.
type AuditEvent struct {
	UserID       string    `json:"user_id"`
	EarthquakeID string    `json:"earthquake_id"`
	Magnitude    float64   `json:"magnitude"`
	Location     string    `json:"location"`
	SentAt       time.Time `json:"sent_at"`
}

// Auditor writes alert decisions to the audit topic. A nil Auditor is a
// no-op so deployments without Kafka skip wiring entirely.
type Auditor struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewAuditor creates a producer for the audit topic. Returns nil when no
// brokers are configured.
func NewAuditor(brokers []string, topic string, logger *slog.Logger) *Auditor {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return &Auditor{writer: w, clock: clockwork.NewRealClock(), logger: logger}
}

// AlertSent publishes one delivered-alert record. Errors are logged, never
// returned; the alert itself already went out.
func (a *Auditor) AlertSent(ctx context.Context, userID string, eq quake.Event) {
	if a == nil {
		return
	}
	msg, err := serializeAuditEvent(AuditEvent{
		UserID:       userID,
		EarthquakeID: eq.ID,
		Magnitude:    eq.Magnitude,
		Location:     eq.Location,
		SentAt:       a.clock.Now().UTC(),
	})
	if err != nil {
		a.logger.Warn("serialize audit event failed", "error", err)
		return
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		a.logger.Warn("publish audit event failed", "error", err)
	}
}

// Close flushes and closes the underlying producer.
func (a *Auditor) Close() error {
	if a == nil {
		return nil
	}
	return a.writer.Close()
}

// serializeAuditEvent marshals an AuditEvent into a Kafka message keyed by
// earthquake id so one event's decisions land in one partition.
func serializeAuditEvent(ev AuditEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.EarthquakeID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sent_at", Value: []byte(ev.SentAt.Format(time.RFC3339))},
		},
	}, nil
}
