package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drithh/setalip-mono-sub003/internal/agenda"
	"github.com/drithh/setalip-mono-sub003/internal/config"
	"github.com/drithh/setalip-mono-sub003/internal/credit"
)

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCorsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodOptions, "/test", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(0.001, 2))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/test", "").Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	now := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, rl.Sweep())
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestCronAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/cron", CronAuth("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/cron", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/cron", "wrong").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/cron", "s3cret").Code)
}

func TestCronAuth_EmptySecretRejectsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/cron", CronAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/cron", "").Code)
}

type fakeGenerator struct {
	weeks int
	err   error
}

func (f *fakeGenerator) GenerateAhead(ctx context.Context, weeks int) (*agenda.GenerateResult, error) {
	f.weeks = weeks
	if f.err != nil {
		return nil, f.err
	}
	return &agenda.GenerateResult{From: "2026-03-16", To: "2026-04-13", Created: 12}, nil
}

type fakeExpirer struct{ called bool }

func (f *fakeExpirer) ExpireUserPackages(ctx context.Context) (*credit.ExpireResult, error) {
	f.called = true
	return &credit.ExpireResult{Packages: 2, Credits: 7}, nil
}

func TestDailyHandler_Run(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen, exp := &fakeGenerator{}, &fakeExpirer{}
	router := gin.New()
	router.POST("/cron/daily", NewDailyHandler(gen, exp, 4).Run)

	w := serve(router, http.MethodPost, "/cron/daily", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, gen.weeks)
	assert.True(t, exp.called)

	var resp struct {
		Result DailyResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Result.Generated.Created)
	assert.Equal(t, 7, resp.Result.Expired.Credits)
}

func TestDailyHandler_GenerationFailureStopsRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen, exp := &fakeGenerator{err: errors.New("db down")}, &fakeExpirer{}
	router := gin.New()
	router.POST("/cron/daily", NewDailyHandler(gen, exp, 4).Run)

	w := serve(router, http.MethodPost, "/cron/daily", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, exp.called)
}

func TestRouter_Gates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Port: "0", JWTSecret: "test-secret", CronSecret: "cron", UploadDir: t.TempDir(), RateLimitRPS: 10, RateLimitBurst: 10}
	router := New(cfg, Handlers{}, Gates{}).Router()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/cron/daily", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/api/agendas/1/book", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/admin/users", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nowhere", "").Code)
}
