// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/geoscope/internal/config"
	"github.com/tomtom215/geoscope/internal/logging"
	"github.com/tomtom215/geoscope/internal/metrics"
	"github.com/tomtom215/geoscope/internal/models"
)

const redisBreakerName = "redis-store"

// RedisStore implements Store on Redis. Every call runs through a circuit
// breaker; while the breaker is open calls fail with ErrUnavailable without
// touching the network.
type RedisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store for cfg.RedisAddr. The connection is lazy;
// no round trip happens until the first call.
func NewRedisStore(cfg config.StoreConfig) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return newRedisStore(client, cfg), nil
}

func newRedisStore(client *redis.Client, cfg config.StoreConfig) *RedisStore {
	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(redisBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        redisBreakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A miss or a cancelled caller says nothing about Redis health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &RedisStore{
		client: client,
		cb:     cb,
		prefix: cfg.RedisKeyPrefix,
		ttl:    cfg.TTL,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save stores rec with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, rec *models.CaptureRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal capture record: %w", err)
	}

	_, err = s.cb.Execute(func() ([]byte, error) {
		return nil, s.client.Set(ctx, s.key(rec.Capture.SessionID), data, s.ttl).Err()
	})
	if err != nil {
		return s.wrap("save", err)
	}
	return nil
}

// Get returns the record for sessionID or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.CaptureRecord, error) {
	data, err := s.cb.Execute(func() ([]byte, error) {
		return s.client.Get(ctx, s.key(sessionID)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.wrap("get", err)
	}

	var rec models.CaptureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal capture record: %w", err)
	}
	return &rec, nil
}

// Ping checks connectivity, bypassing the breaker.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// State returns the breaker state.
func (s *RedisStore) State() gobreaker.State {
	return s.cb.State()
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("redis %s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
