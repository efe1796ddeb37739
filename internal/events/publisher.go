package events

import (
	"context"
	"sync"
)

// Publisher delivers record events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e *RecordEvent) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *RecordEvent) error { return nil }
func (Nop) Close() error                                { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*RecordEvent
}

func (r *Recorder) Publish(_ context.Context, e *RecordEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns the events published so far.
func (r *Recorder) Events() []*RecordEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordEvent(nil), r.events...)
}
