package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

// Trigger calls the API's daily job endpoint with the shared cron secret.
type Trigger struct {
	url    string
	secret string
	client *http.Client
}

func NewTrigger(url, secret string) *Trigger {
	return &Trigger{url: url, secret: secret, client: &http.Client{Timeout: 2 * time.Minute}}
}

func (t *Trigger) Fire(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, nil)
	if err != nil {
		return fmt.Errorf("build cron request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.secret)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", t.url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daily job returned %d: %s", resp.StatusCode, body)
	}
	logger.Info("daily job triggered", "url", t.url, "response", string(body))
	return nil
}

// Schedule registers the trigger on the cron expression expr in loc and returns the scheduler
// unstarted. A failed run is logged and retried on the next tick.
func Schedule(expr string, loc *time.Location, t *Trigger) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := t.Fire(ctx); err != nil {
			logger.Error("daily job failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_SCHEDULE %q: %w", expr, err)
	}
	return c, nil
}
