package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/logfields"
)

// NATSConfig configures NATSPublisher.
type NATSConfig struct {
	URL     string
	Subject string
	// JetStream publishes with acknowledgement; the subject must be bound
	// to a stream.
	JetStream bool
	Timeout   time.Duration
}

// NATSPublisher publishes JSON encoded TagEvents to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	timeout time.Duration
}

// NewNATSPublisher connects to cfg.URL.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.Subject == "" {
		return nil, ferrors.ConfigError("events subject is empty").Build()
	}
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, nats.Name("autotag"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}

	p := &NATSPublisher{conn: conn, subject: cfg.Subject, timeout: cfg.Timeout}
	if p.timeout <= 0 {
		p.timeout = 5 * time.Second
	}
	if cfg.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to create JetStream context").Build()
		}
		p.js = js
	}

	slog.Info("NATS event publisher connected",
		slog.String("url", url),
		slog.String("subject", cfg.Subject),
		slog.Bool("jetstream", cfg.JetStream))
	return p, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event TagEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if p.js != nil {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to publish event").Build()
		}
	} else if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to publish event").Build()
	}

	slog.Debug("Published tag event", logfields.Path(event.Path), logfields.Status(event.Status))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()
	}
	return err
}
