// Package events publishes one notification per tagged content file.
package events

import (
	"context"
	"time"
)

// TagEvent describes the tags written to one file.
type TagEvent struct {
	RunID     string    `json:"run_id"`
	Path      string    `json:"path"`
	Status    string    `json:"status"`
	Outcome   string    `json:"outcome"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers tag events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event TagEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TagEvent) error { return nil }
func (NoopPublisher) Close() error                            { return nil }
