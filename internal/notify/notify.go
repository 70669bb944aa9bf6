package notify

import (
	"context"
	"sync"
	"time"
)

// Event describes one finished pipeline stage.
type Event struct {
	Stage     string
	Source    string
	Output    string
	Argv      []string
	ExitCode  int
	Succeeded bool
	Duration  time.Duration
}

// Payload renders the event as the JSON-friendly map sent over the wire.
func (e Event) Payload() map[string]any {
	return map[string]any{
		"stage":       e.Stage,
		"source":      e.Source,
		"output":      e.Output,
		"argv":        e.Argv,
		"exit_code":   e.ExitCode,
		"succeeded":   e.Succeeded,
		"duration_ms": e.Duration.Milliseconds(),
	}
}

// Notifier publishes stage events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }

// Recorder keeps every event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Close implements Notifier.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
