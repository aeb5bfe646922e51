package event

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Priority orders events for downstream consumers. Failed authentication
// attempts are emitted high, routine transitions normal.
type Priority uint8

const (
	// PriorityLow marks diagnostic chatter.
	PriorityLow Priority = iota + 1
	// PriorityNormal marks routine session transitions.
	PriorityNormal
	// PriorityHigh marks failures worth surfacing.
	PriorityHigh
	// PriorityCritical marks state divergence that needs operator attention.
	PriorityCritical
)

// Event type names emitted by the session store.
const (
	TypeLoginSuccess     = "auth.login.success"
	TypeLoginFailed      = "auth.login.failed"
	TypeRegisterSuccess  = "auth.register.success"
	TypeRegisterFailed   = "auth.register.failed"
	TypeLogout           = "auth.logout"
	TypeSessionHydrated  = "session.hydrated"
	TypeSessionDiscarded = "session.discarded"
	TypePersistFailed    = "session.persist_failed"
)

// Event is the canonical session event model used by internal dispatching
// and root APIs.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Source    string            `json:"source,omitempty"`
	Username  string            `json:"username,omitempty"`
	Priority  Priority          `json:"priority"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

// Emit discards the event.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit enqueues the event, giving up when ctx is done.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON-encoded event per line to an io.Writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit marshals and writes the event. Encoding or write failures are
// swallowed; the sink must never disturb the auth path.
func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
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
