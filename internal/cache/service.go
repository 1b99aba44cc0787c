package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
)

// DefaultValueTTL applies when CacheValue is called without a ttl.
const DefaultValueTTL = 3600 * time.Second

var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// Service manages sessions and ad-hoc cached values.
type Service struct {
	sessions SessionStore
	values   ValueStore
	now      func() time.Time
	newID    func() string
}

func NewService(sessions SessionStore, values ValueStore) *Service {
	return &Service{
		sessions: sessions,
		values:   values,
		now:      time.Now,
		newID:    NewSessionID,
	}
}

func (s *Service) CreateSession(ctx context.Context, userID, username, data string) (*CachedSession, error) {
	logger.Info("creating session", map[string]any{"userId": userID})

	now := s.now().UnixMilli()
	session := CachedSession{
		ID:             s.newID(),
		UserID:         userID,
		Username:       username,
		Data:           data,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession returns the session and records the access. Saving again
// restarts the session's TTL.
func (s *Service) GetSession(ctx context.Context, id string) (*CachedSession, error) {
	logger.Debug("getting session", map[string]any{"sessionId": id})

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	session.LastAccessedAt = s.now().UnixMilli()
	if err := s.sessions.Save(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) GetSessionsByUserID(ctx context.Context, userID string) ([]CachedSession, error) {
	logger.Debug("getting sessions by user", map[string]any{"userId": userID})
	return s.sessions.FindByUserID(ctx, userID)
}

func (s *Service) GetAllSessions(ctx context.Context) ([]CachedSession, error) {
	logger.Debug("getting all sessions", nil)
	return s.sessions.FindAll(ctx)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	logger.Info("deleting session", map[string]any{"sessionId": id})
	return s.sessions.Delete(ctx, id)
}

// CacheValue stores value as JSON under key. A nil ttlSeconds means
// DefaultValueTTL.
func (s *Service) CacheValue(ctx context.Context, key string, value any, ttlSeconds *int64) error {
	ttl := DefaultValueTTL
	if ttlSeconds != nil {
		if *ttlSeconds <= 0 {
			return ErrInvalidTTL
		}
		ttl = time.Duration(*ttlSeconds) * time.Second
	}

	logger.Debug("caching value", map[string]any{"key": key, "ttlSeconds": int64(ttl / time.Second)})

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value: %w", err)
	}
	return s.values.Set(ctx, key, data, ttl)
}

// GetCachedValue returns the stored JSON, or ErrNotFound when the key was
// never set or has expired.
func (s *Service) GetCachedValue(ctx context.Context, key string) (json.RawMessage, error) {
	logger.Debug("getting cached value", map[string]any{"key": key})

	data, err := s.values.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (s *Service) DeleteCachedValue(ctx context.Context, key string) error {
	logger.Debug("deleting cached value", map[string]any{"key": key})
	return s.values.Delete(ctx, key)
}
