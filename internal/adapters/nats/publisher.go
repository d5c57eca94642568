package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream. Review
// events are durable; session view updates are fire-and-forget broadcasts
// consumed by the WebSocket relay.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	cfg := nats.StreamConfig{
		Name:      "VENUE_REVIEWS",
		Subjects:  []string{"venues.review.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishReviewCreated emits a durable review-created event keyed by venue.
func (p *Publisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data, err := json.Marshal(review)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("venues.review."+review.VenueID, data)
	return err
}

// PublishSessionUpdate broadcasts a session's view state to its relay
// subscribers. Plain NATS, no persistence: a missed frame is replaced by
// the next snapshot anyway.
func (p *Publisher) PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error {
	return p.conn.Publish("sessions.update."+sessionID, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
