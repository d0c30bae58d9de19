package upload

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	store, err := NewStore(dir, "http://localhost:8080/")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/uploads", NewHandler(store).Upload)
	return r, dir
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestUpload_StoresImage(t *testing.T) {
	r, dir := setupRouter(t)
	body, ct := multipartBody(t, "file", "photo.png", pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Result Response `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Result.URL, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(resp.Result.URL, ".png"))

	_, err := os.Stat(filepath.Join(dir, filepath.Base(resp.Result.URL)))
	assert.NoError(t, err)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	r, dir := setupRouter(t)
	body, ct := multipartBody(t, "file", "notes.png", []byte("just some text pretending to be a picture"))

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestUpload_MissingFile(t *testing.T) {
	r, _ := setupRouter(t)
	body, ct := multipartBody(t, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStore_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	big := append(pngBytes(t), bytes.Repeat([]byte{0}, MaxSize)...)
	_, err = store.Save(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
