// Package state persists panel configurations between requests. Live
// sessions keep their current Config here, encoded with MessagePack.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

// Common store errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrStoreClosed = errors.New("store is closed")
	ErrInvalidData = errors.New("invalid data format")
)

// Store is the interface for state storage backends.
type Store interface {
	// Get retrieves a value by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A ttl of zero never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close closes the store.
	Close() error
}

// Sessions stores one panel Config per session id.
type Sessions struct {
	store     Store
	codec     *ConfigCodec
	keyPrefix string
	ttl       time.Duration
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) SessionsOption {
	return func(s *Sessions) {
		s.keyPrefix = prefix
	}
}

// WithTTL sets how long an untouched session is kept.
func WithTTL(ttl time.Duration) SessionsOption {
	return func(s *Sessions) {
		s.ttl = ttl
	}
}

// NewSessions creates a session registry over store.
func NewSessions(store Store, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:     store,
		codec:     NewConfigCodec(),
		keyPrefix: "tabkit:panel:",
		ttl:       24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores cfg under a new random session id and returns the id.
func (s *Sessions) Create(ctx context.Context, cfg tabbable.Config) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, id, cfg); err != nil {
		return "", err
	}
	return id, nil
}

// Save stores cfg under id and refreshes its ttl.
func (s *Sessions) Save(ctx context.Context, id string, cfg tabbable.Config) error {
	data, err := s.codec.Encode(cfg)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return s.store.Set(ctx, s.keyPrefix+id, data, s.ttl)
}

// Load returns the Config stored under id.
func (s *Sessions) Load(ctx context.Context, id string) (tabbable.Config, error) {
	data, err := s.store.Get(ctx, s.keyPrefix+id)
	if err != nil {
		return tabbable.Config{}, err
	}
	cfg, err := s.codec.Decode(data)
	if err != nil {
		return tabbable.Config{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return cfg, nil
}

// Delete removes the session.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.keyPrefix+id)
}
