package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	VerificationCodeTTL   = 15 * time.Minute
	verificationKeyPrefix = "verify:"
)

var errCodeNotFound = errors.New("verification code not found")

// VerificationStore keeps the pending e-mail verification code per user.
type VerificationStore interface {
	Save(ctx context.Context, userID int, code string, ttl time.Duration) error
	Get(ctx context.Context, userID int) (string, error)
	Delete(ctx context.Context, userID int) error
}

type redisVerificationStore struct {
	rdb *redis.Client
}

func NewRedisVerificationStore(rdb *redis.Client) VerificationStore {
	return &redisVerificationStore{rdb: rdb}
}

func verificationKey(userID int) string {
	return verificationKeyPrefix + strconv.Itoa(userID)
}

func (s *redisVerificationStore) Save(ctx context.Context, userID int, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, verificationKey(userID), code, ttl).Err()
}

func (s *redisVerificationStore) Get(ctx context.Context, userID int) (string, error) {
	code, err := s.rdb.Get(ctx, verificationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCodeNotFound
	}
	return code, err
}

func (s *redisVerificationStore) Delete(ctx context.Context, userID int) error {
	return s.rdb.Del(ctx, verificationKey(userID)).Err()
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
