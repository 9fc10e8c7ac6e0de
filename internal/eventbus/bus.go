// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

// Package eventbus publishes verdict events on an in-process Watermill
// pub/sub and raises alerts for high-risk verdicts.
//
// Every analysis produces a verdict.created message. A router handler reads
// them and, for alto verdicts at or above the alert threshold, emits a
// risk.alert message and bumps the alert counter. Other components can
// subscribe to either topic.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// Config holds event bus settings.
type Config struct {
	// AlertThreshold is the minimum score of an alto verdict that raises
	// an alert.
	AlertThreshold int

	// BufferSize is the per-subscriber output buffer.
	BufferSize int64

	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration for the alert handler
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		AlertThreshold:       70,
		BufferSize:           256,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
	}
}

// Bus owns the pub/sub and the router.
type Bus struct {
	cfg    Config
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// New creates a bus with the alert handler registered. Call Run to start
// processing.
func New(cfg Config) (*Bus, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger("eventbus"))

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Recoverer: Convert panics to errors
	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	b := &Bus{
		cfg:    cfg,
		pubsub: pubsub,
		router: router,
		logger: logger,
	}

	router.AddHandler(
		"risk-alerts",
		TopicVerdictCreated,
		pubsub,
		TopicRiskAlert,
		pubsub,
		b.handleVerdict,
	)

	return b, nil
}

// PublishVerdict publishes the verdict event for rec.
func (b *Bus) PublishVerdict(ctx context.Context, rec *models.CaptureRecord) error {
	ev, err := NewVerdictEvent(rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serialize verdict event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("risk_level", string(ev.RiskLevel))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	return b.publish(TopicVerdictCreated, msg)
}

func (b *Bus) publish(topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		metrics.RecordEventPublish(topic, ErrClosed)
		return ErrClosed
	}

	err := b.pubsub.Publish(topic, msg)
	metrics.RecordEventPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// handleVerdict turns qualifying verdicts into alert messages.
func (b *Bus) handleVerdict(msg *message.Message) ([]*message.Message, error) {
	ev, err := decodeVerdict(msg.Payload)
	if err != nil {
		// A payload that does not decode will not decode on retry either.
		logging.Error().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable verdict event")
		return nil, nil
	}

	if !b.shouldAlert(ev) {
		return nil, nil
	}

	alert := AlertEvent{
		AlertID:   uuid.New().String(),
		RaisedAt:  time.Now().UTC(),
		Threshold: b.cfg.AlertThreshold,
		Verdict:   ev,
	}
	data, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("serialize alert: %w", err)
	}

	metrics.RiskAlerts.Inc()
	logging.Warn().
		Str("session_id", logging.MaskSessionID(ev.SessionID)).
		Int("risk_score", ev.RiskScore).
		Int("threshold", b.cfg.AlertThreshold).
		Msg("High risk session")

	out := message.NewMessage(alert.AlertID, data)
	out.Metadata.Set("session_id", ev.SessionID)
	return []*message.Message{out}, nil
}

func (b *Bus) shouldAlert(ev VerdictEvent) bool {
	return ev.RiskLevel == models.RiskHigh && ev.RiskScore >= b.cfg.AlertThreshold
}

// Subscribe returns a channel of messages on topic. Messages must be acked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Run starts the router and blocks until ctx is done or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running returns a channel that closes once the router is running.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops the router and the pub/sub. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if err := b.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := b.pubsub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	return errors.Join(errs...)
}
