package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerBody struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func setupRouter(writes *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", func(c *gin.Context) {
		var req registerBody
		if !Bind(c, &req) {
			return
		}
		*writes++
		OK(c, http.StatusCreated, req)
	})
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}
		limit, offset := Page(c)
		OK(c, http.StatusOK, gin.H{"id": id, "limit": limit, "offset": offset})
	})
	return r
}

func TestBind_ValidationErrorsKeyedByJSONName(t *testing.T) {
	writes := 0
	r := setupRouter(&writes)

	body := []byte(`{"name":"A","email":"not-an-email"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, writes)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error.Message)
	assert.Len(t, resp.Error.Fields, 3)
	assert.Equal(t, "must be at least 2 characters", resp.Error.Fields["name"])
	assert.Equal(t, "must be a valid email address", resp.Error.Fields["email"])
	assert.Equal(t, "is required", resp.Error.Fields["password"])
}

func TestBind_MalformedJSON(t *testing.T) {
	writes := 0
	r := setupRouter(&writes)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, writes)
}

func TestBind_Success(t *testing.T) {
	writes := 0
	r := setupRouter(&writes)

	body := []byte(`{"name":"Ana","email":"ana@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, writes)
	assert.Contains(t, w.Body.String(), `"result"`)
}

func TestParamIDAndPage(t *testing.T) {
	r := setupRouter(new(int))

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("limit clamped", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/3?limit=1000&offset=-4", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Result struct {
				ID     int `json:"id"`
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Result.ID)
		assert.Equal(t, 100, resp.Result.Limit)
		assert.Equal(t, 0, resp.Result.Offset)
	})
}
