package server

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/drithh/setalip-mono-sub003/internal/config"
)

var ginParam = regexp.MustCompile(`:(\w+)`)

func TestSwagger_DocumentsEveryRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Port: "0", JWTSecret: "test-secret", CronSecret: "cron", UploadDir: t.TempDir(), RateLimitRPS: 10, RateLimitBurst: 10}
	router := New(cfg, Handlers{}, Gates{}).Router()

	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Contains(t, doc.Definitions, "api.ErrorResponse")

	documented := 0
	for _, r := range router.Routes() {
		if strings.HasPrefix(r.Path, "/swagger/") || strings.HasPrefix(r.Path, "/uploads/") || r.Method == "HEAD" {
			continue
		}
		path := ginParam.ReplaceAllString(r.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "undocumented path %s", path) {
			assert.Contains(t, ops, strings.ToLower(r.Method), "undocumented %s %s", r.Method, path)
			documented++
		}
	}
	assert.Equal(t, 98, documented)
}
