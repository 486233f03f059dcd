package goFieldOps

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AuditEvent is one session lifecycle event delivered to an AuditSink.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	Method    string            `json:"method,omitempty"`
	Path      string            `json:"path,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives session events. Implementations must be safe for
// concurrent use; the dispatcher calls Emit from its own goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink exposes events as a channel for subscribers that prefer
// receiving over being called.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON document per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// LogSink forwards events to a logrus logger at info level, failures at warn.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Emit(_ context.Context, event AuditEvent) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithFields(logrus.Fields{
		"event":      event.EventType,
		"request_id": event.RequestID,
		"success":    event.Success,
	})
	for k, v := range event.Metadata {
		entry = entry.WithField(k, v)
	}
	if event.Error != "" {
		entry.WithField("error", event.Error).Warn("session event")
		return
	}
	entry.Info("session event")
}

// FanOutSink delivers every event to each of its sinks in order.
type FanOutSink []AuditSink

func (f FanOutSink) Emit(ctx context.Context, event AuditEvent) {
	for _, sink := range f {
		if sink != nil {
			sink.Emit(ctx, event)
		}
	}
}
