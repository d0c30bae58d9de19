package websetting

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFAQNotFound), errors.Is(err, ErrReviewNotFound), errors.Is(err, ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	default:
		api.Internal(c, err)
	}
}

// GetSetting godoc
// @Summary      Studio contact details and about text
// @Tags         content
// @Produce      json
// @Success      200  {object}  api.Response{result=Setting}
// @Router       /api/settings [get]
func (h *Handler) GetSetting(c *gin.Context) {
	s, err := h.service.GetSetting(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, s)
}

// UpdateSetting godoc
// @Summary      Update studio settings
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SettingRequest  true  "Settings"
// @Success      200      {object}  api.Response{result=Setting}
// @Router       /admin/settings [put]
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req SettingRequest
	if !api.Bind(c, &req) {
		return
	}
	s, err := h.service.UpdateSetting(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, s)
}

// ListFAQs godoc
// @Summary      Frequently asked questions
// @Tags         content
// @Produce      json
// @Success      200  {object}  api.Response{result=[]FAQ}
// @Router       /api/faqs [get]
func (h *Handler) ListFAQs(c *gin.Context) {
	faqs, err := h.service.ListFAQs(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, faqs)
}

// CreateFAQ godoc
// @Summary      Add a FAQ entry
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      FAQRequest  true  "FAQ"
// @Success      201      {object}  api.Response{result=FAQ}
// @Router       /admin/faqs [post]
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req FAQRequest
	if !api.Bind(c, &req) {
		return
	}
	f, err := h.service.CreateFAQ(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, f)
}

// UpdateFAQ godoc
// @Summary      Update a FAQ entry
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int         true  "FAQ ID"
// @Param        request  body      FAQRequest  true  "FAQ"
// @Success      200      {object}  api.Response{result=FAQ}
// @Router       /admin/faqs/{id} [put]
func (h *Handler) UpdateFAQ(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req FAQRequest
	if !api.Bind(c, &req) {
		return
	}
	f, err := h.service.UpdateFAQ(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, f)
}

// DeleteFAQ godoc
// @Summary      Delete a FAQ entry
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "FAQ ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/faqs/{id} [delete]
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteFAQ(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "faq deleted")
}

// ListReviews godoc
// @Summary      Published reviews
// @Tags         content
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Review}
// @Router       /api/reviews [get]
func (h *Handler) ListReviews(c *gin.Context) {
	h.listReviews(c, true)
}

// AdminListReviews godoc
// @Summary      All reviews, hidden included
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Review}
// @Router       /admin/reviews [get]
func (h *Handler) AdminListReviews(c *gin.Context) {
	h.listReviews(c, false)
}

func (h *Handler) listReviews(c *gin.Context, visibleOnly bool) {
	limit, offset := api.Page(c)
	reviews, err := h.service.ListReviews(c.Request.Context(), visibleOnly, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, reviews)
}

// CreateReview godoc
// @Summary      Write a review
// @Description  Reviews stay hidden until an admin publishes them.
// @Tags         content
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ReviewRequest  true  "Review"
// @Success      201      {object}  api.Response{result=Review}
// @Router       /api/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req ReviewRequest
	if !api.Bind(c, &req) {
		return
	}
	rv, err := h.service.CreateReview(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, rv)
}

// SetReviewVisibility godoc
// @Summary      Publish or hide a review
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "Review ID"
// @Param        request  body      VisibilityRequest  true  "Visibility"
// @Success      200      {object}  api.Response{result=Review}
// @Router       /admin/reviews/{id}/visibility [put]
func (h *Handler) SetReviewVisibility(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req VisibilityRequest
	if !api.Bind(c, &req) {
		return
	}
	rv, err := h.service.SetReviewVisibility(c.Request.Context(), id, req.IsVisible)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rv)
}

// DeleteReview godoc
// @Summary      Delete a review
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Review ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/reviews/{id} [delete]
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteReview(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "review deleted")
}
