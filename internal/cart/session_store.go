package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionCartKey(sessionID string) string
}

// SessionStore round-trips the ephemeral cart through the session's redis
// entry. A missing entry is not an error; the cart is created lazily on first
// access and destroyed when the session key expires.
type SessionStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewSessionStore builds a session cart store with the provided TTL.
func NewSessionStore(kv kvStore, ttl time.Duration) (*SessionStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session cart ttl must be positive")
	}
	return &SessionStore{kv: kv, ttl: ttl}, nil
}

// Load returns the session's cart, or an empty cart when none is stored yet.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*SessionCart, error) {
	payload, err := s.kv.Get(ctx, s.kv.SessionCartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &SessionCart{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
	}
	var cart SessionCart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode session cart")
	}
	return &cart, nil
}

// Save writes the cart back under the session key, refreshing the TTL. An
// emptied cart drops the entry instead so cleared sessions leave no residue
// in redis.
func (s *SessionStore) Save(ctx context.Context, sessionID string, cart *SessionCart) error {
	if cart == nil || len(cart.Lines) == 0 {
		return s.Drop(ctx, sessionID)
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session cart")
	}
	if err := s.kv.Set(ctx, s.kv.SessionCartKey(sessionID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session cart")
	}
	return nil
}

// Drop removes the session's cart entry.
func (s *SessionStore) Drop(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.SessionCartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop session cart")
	}
	return nil
}
