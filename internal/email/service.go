package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
	popTimeout     = 2 * time.Second
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender delivers a single message.
type Sender interface {
	Send(job Job) error
}

// Service queues outgoing mail in Redis and delivers it from a background
// worker so request handlers never block on SMTP.
type Service struct {
	redis      *redis.Client
	sender     Sender
	loc        *time.Location
	appURL     string
	retryDelay time.Duration
}

func New(rdb *redis.Client, sender Sender, loc *time.Location, appURL string) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		redis:      rdb,
		sender:     sender,
		loc:        loc,
		appURL:     appURL,
		retryDelay: 5 * time.Second,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to queue email", "to", job.To, "type", job.Type, "error", err)
		return err
	}

	logger.Info("email queued", "to", job.To, "type", job.Type)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := s.sender.Send(job); err != nil {
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)
		metrics.RecordEmail(job.Type, "failed")

		if job.Tries < maxTries {
			s.wait(ctx)
			data, _ := json.Marshal(job)
			if err := s.redis.LPush(context.Background(), queueKey, string(data)).Err(); err != nil {
				logger.Error("failed to requeue email", "to", job.To, "error", err)
			}
			return
		}

		s.saveFailed(job, err)
		return
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Info("email sent", "to", job.To, "type", job.Type)
}

func (s *Service) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}
}

func (s *Service) saveFailed(job Job, cause error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	if err := s.redis.LPush(context.Background(), failedQueueKey, string(data)).Err(); err != nil {
		logger.Error("failed to store dead email", "to", job.To, "error", err)
		return
	}
	logger.Error("email moved to failed queue", "to", job.To, "tries", job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}
