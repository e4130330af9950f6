package natsadapter

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

const (
	SubjectLocationPrefix = "tourguide.location."
	SubjectRewardPrefix   = "tourguide.reward."
	SubjectTrackRequest   = "tourguide.track.request"
	// SubjectAll matches every tourguide subject, for relays.
	SubjectAll = "tourguide.>"
)

// Streams returns the JetStream streams the service relies on.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "TOURGUIDE_LOCATIONS",
			Subjects:  []string{SubjectLocationPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "TOURGUIDE_REWARDS",
			Subjects:  []string{SubjectRewardPrefix + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "TOURGUIDE_TRACK_REQUESTS",
			Subjects:  []string{SubjectTrackRequest},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the streams.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		if _, err := js.AddStream(&cfg); err != nil {
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishLocationTracked(ctx context.Context, event domain.LocationTracked) error {
	return p.publish(ctx, LocationSubject(event.UserID), event)
}

func (p *Publisher) PublishRewardEarned(ctx context.Context, event domain.RewardEarned) error {
	return p.publish(ctx, RewardSubject(event.UserID), event)
}

// RequestTracking enqueues a remote tracking request for userName.
func (p *Publisher) RequestTracking(ctx context.Context, userName string) error {
	_, err := p.js.Publish(SubjectTrackRequest, []byte(userName), nats.Context(ctx))
	return err
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// LocationSubject is the subject location events for userID are published on.
func LocationSubject(userID string) string { return SubjectLocationPrefix + subjectToken(userID) }

// RewardSubject is the subject reward events for userID are published on.
func RewardSubject(userID string) string { return SubjectRewardPrefix + subjectToken(userID) }

// subjectToken makes id safe as a single subject token.
func subjectToken(id string) string {
	if id == "" {
		return "_"
	}
	b := []byte(id)
	for i, c := range b {
		switch c {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			b[i] = '_'
		}
	}
	return string(b)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection (e.g. for the WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("tourguide"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
