package websetting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

var (
	ErrFAQNotFound    = errors.New("faq not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
)

const (
	settingCacheKey = "websetting"
	settingCacheTTL = 10 * time.Minute
)

type Service interface {
	GetSetting(ctx context.Context) (*Setting, error)
	UpdateSetting(ctx context.Context, req SettingRequest) (*Setting, error)

	ListFAQs(ctx context.Context) ([]FAQ, error)
	CreateFAQ(ctx context.Context, req FAQRequest) (*FAQ, error)
	UpdateFAQ(ctx context.Context, id int, req FAQRequest) (*FAQ, error)
	DeleteFAQ(ctx context.Context, id int) error

	CreateReview(ctx context.Context, userID int, req ReviewRequest) (*Review, error)
	ListReviews(ctx context.Context, visibleOnly bool, limit, offset int) ([]Review, error)
	SetReviewVisibility(ctx context.Context, id int, visible bool) (*Review, error)
	DeleteReview(ctx context.Context, id int) error
}

type service struct {
	repo Repository
	rdb  *redis.Client
}

// NewService builds the content service. rdb may be nil, in which case the
// settings are read from the database every time.
func NewService(repo Repository, rdb *redis.Client) Service {
	return &service{repo: repo, rdb: rdb}
}

// GetSetting is read on every public page, so it is served from Redis when
// possible. A cache failure falls back to the database.
func (s *service) GetSetting(ctx context.Context) (*Setting, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, settingCacheKey).Bytes()
		if err == nil {
			var cached Setting
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Warn("web settings cache read failed", "error", err)
		}
	}

	setting, err := s.repo.GetSetting(ctx)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, setting)
	return setting, nil
}

func (s *service) UpdateSetting(ctx context.Context, req SettingRequest) (*Setting, error) {
	setting, err := s.repo.UpdateSetting(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, setting)
	return setting, nil
}

func (s *service) cache(ctx context.Context, setting *Setting) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(setting)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, settingCacheKey, raw, settingCacheTTL).Err(); err != nil {
		logger.Warn("web settings cache write failed", "error", err)
	}
}

func (s *service) ListFAQs(ctx context.Context) ([]FAQ, error) {
	return s.repo.FindAllFAQs(ctx)
}

func (s *service) CreateFAQ(ctx context.Context, req FAQRequest) (*FAQ, error) {
	return s.repo.CreateFAQ(ctx, req)
}

func (s *service) UpdateFAQ(ctx context.Context, id int, req FAQRequest) (*FAQ, error) {
	return s.repo.UpdateFAQ(ctx, id, req)
}

func (s *service) DeleteFAQ(ctx context.Context, id int) error {
	return s.repo.DeleteFAQ(ctx, id)
}

// CreateReview stores a member review hidden until an admin publishes it.
func (s *service) CreateReview(ctx context.Context, userID int, req ReviewRequest) (*Review, error) {
	rv, err := s.repo.CreateReview(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	logger.Info("review submitted", "review_id", rv.ID, "user_id", userID, "rating", rv.Rating)
	return rv, nil
}

func (s *service) ListReviews(ctx context.Context, visibleOnly bool, limit, offset int) ([]Review, error) {
	return s.repo.FindReviews(ctx, visibleOnly, limit, offset)
}

func (s *service) SetReviewVisibility(ctx context.Context, id int, visible bool) (*Review, error) {
	return s.repo.SetReviewVisibility(ctx, id, visible)
}

func (s *service) DeleteReview(ctx context.Context, id int) error {
	return s.repo.DeleteReview(ctx, id)
}
