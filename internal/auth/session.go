package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// SessionStore tracks live login sessions. A token whose session is gone is
// rejected even when its signature and expiry are still valid.
type SessionStore interface {
	Create(ctx context.Context, userID int) (string, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, userID int) error
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID int) string {
	return userSessionKeyPrefix + strconv.Itoa(userID)
}

func (s *redisSessionStore) Create(ctx context.Context, userID int) (string, error) {
	id := uuid.NewString()

	if err := s.rdb.Set(ctx, sessionKey(id), userID, RefreshTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.rdb.SAdd(ctx, userSessionsKey(userID), id).Err(); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}
	if err := s.rdb.Expire(ctx, userSessionsKey(userID), RefreshTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("expire session index: %w", err)
	}

	return id, nil
}

func (s *redisSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func (s *redisSessionStore) RevokeAll(ctx context.Context, userID int) error {
	ids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))

	return s.rdb.Del(ctx, keys...).Err()
}
