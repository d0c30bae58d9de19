package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drithh/setalip-mono-sub003/internal/agenda"
	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

type Generator interface {
	GenerateAhead(ctx context.Context, weeks int) (*agenda.GenerateResult, error)
}

type Expirer interface {
	ExpireUserPackages(ctx context.Context) (*credit.ExpireResult, error)
}

// DailyResult reports what one run of the daily job did.
type DailyResult struct {
	Generated *agenda.GenerateResult `json:"generated"`
	Expired   *credit.ExpireResult   `json:"expired"`
}

// DailyHandler runs the once-a-day housekeeping triggered by the cron binary.
type DailyHandler struct {
	generator Generator
	expirer   Expirer
	weeks     int
}

func NewDailyHandler(generator Generator, expirer Expirer, weeks int) *DailyHandler {
	return &DailyHandler{generator: generator, expirer: expirer, weeks: weeks}
}

// Run godoc
// @Summary      Daily housekeeping
// @Description  Generates agendas from recurrences and expires lapsed packages. Called by the cron worker.
// @Tags         system
// @Security     CronAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=DailyResult}
// @Failure      401  {object}  api.ErrorResponse
// @Router       /cron/daily [post]
func (h *DailyHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	generated, err := h.generator.GenerateAhead(ctx, h.weeks)
	if err != nil {
		api.Internal(c, err)
		return
	}

	expired, err := h.expirer.ExpireUserPackages(ctx)
	if err != nil {
		api.Internal(c, err)
		return
	}

	logger.Info("daily job finished",
		"agendas_created", generated.Created,
		"packages_expired", expired.Packages,
		"credits_expired", expired.Credits,
	)
	api.OK(c, http.StatusOK, DailyResult{Generated: generated, Expired: expired})
}

// CronAuth accepts only requests carrying the shared cron secret as a bearer token.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			api.Fail(c, http.StatusUnauthorized, "invalid cron secret")
			return
		}
		c.Next()
	}
}
