package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: not found")

// SessionTTL is how long a session survives without being saved again.
const SessionTTL = time.Hour

// CachedSession is a short-lived session record. Timestamps are epoch
// milliseconds.
type CachedSession struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Data           string `json:"data"`
	CreatedAt      int64  `json:"createdAt"`
	LastAccessedAt int64  `json:"lastAccessedAt"`
}

// SessionStore persists sessions with SessionTTL and a secondary index on
// user id. Implementations must remain stateless.
type SessionStore interface {
	// Save writes s and (re)arms its TTL.
	Save(ctx context.Context, s CachedSession) error
	FindByID(ctx context.Context, id string) (*CachedSession, error)
	FindByUserID(ctx context.Context, userID string) ([]CachedSession, error)
	FindAll(ctx context.Context) ([]CachedSession, error)
	// Delete succeeds when the session does not exist.
	Delete(ctx context.Context, id string) error
}

// ValueStore holds opaque JSON values with a per-entry expiration. An expired
// value is indistinguishable from one that was never set.
type ValueStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
