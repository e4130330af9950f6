package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeTrackRequests runs handler once for every user name received on
// the track request subject. Every message is delivered at most once to the
// handler: failures and blank names are terminated, not redelivered.
func (s *Subscriber) SubscribeTrackRequests(ctx context.Context, handler func(ctx context.Context, userName string) error) error {
	sub, err := s.js.Subscribe(SubjectTrackRequest, func(msg *nats.Msg) {
		if handleTrackRequest(ctx, msg.Data, handler) {
			_ = msg.Ack()
			return
		}
		_ = msg.Term()
	},
		nats.Durable("track-request-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(1),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// handleTrackRequest reports whether the request was handled successfully.
func handleTrackRequest(ctx context.Context, data []byte, handler func(ctx context.Context, userName string) error) bool {
	name := strings.TrimSpace(string(data))
	if name == "" {
		return false
	}
	if err := handler(ctx, name); err != nil {
		slog.WarnContext(ctx, "track request failed", "user", name, "error", err)
		return false
	}
	return true
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
