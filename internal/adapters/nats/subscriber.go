package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// Subscriber consumes durable review events, e.g. to invalidate cached
// reference data or feed moderation tooling.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeReviewCreated delivers review-created events to the handler with
// at-least-once semantics.
func (s *Subscriber) SubscribeReviewCreated(ctx context.Context, handler func(ctx context.Context, review *domain.Review) error) error {
	sub, err := s.js.Subscribe("venues.review.>", func(msg *nats.Msg) {
		var review domain.Review
		if err := json.Unmarshal(msg.Data, &review); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &review); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("review-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
