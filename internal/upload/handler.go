package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type Response struct {
	URL string `json:"url" example:"http://localhost:8080/uploads/0b8e6f1c-3c1e-4f4e-9d0a-6b0b5c7c2f11.png"`
}

// Upload godoc
// @Summary      Upload an image
// @Description  Accepts jpeg, png or webp up to 5 MiB and returns its public URL.
// @Tags         uploads
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image"
// @Success      201   {object}  api.Response{result=Response}
// @Failure      422   {object}  api.ErrorResponse
// @Failure      413   {object}  api.ErrorResponse
// @Router       /api/uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSize+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		api.FailFields(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"file": "file is required"})
		return
	}
	if fh.Size > MaxSize {
		api.Fail(c, http.StatusRequestEntityTooLarge, ErrTooLarge.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		api.Internal(c, err)
		return
	}
	defer f.Close()

	url, err := h.store.Save(f)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		api.FailFields(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"file": err.Error()})
		return
	case errors.Is(err, ErrTooLarge):
		api.Fail(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		api.Internal(c, err)
		return
	}

	logger.Info("file uploaded", "url", url, "size", fh.Size)
	api.OK(c, http.StatusCreated, Response{URL: url})
}
