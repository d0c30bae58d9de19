package credit

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
	case errors.Is(err, ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientCredit):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		api.Internal(c, err)
	}
}

// MyBalances godoc
// @Summary      Credit balance per class type
// @Tags         credits
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Balance}
// @Router       /api/credits [get]
func (h *Handler) MyBalances(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	balances, err := h.service.Balances(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, balances)
}

// MyHistory godoc
// @Summary      Credit ledger entries, newest first
// @Tags         credits
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Transaction}
// @Router       /api/credits/history [get]
func (h *Handler) MyHistory(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := api.Page(c)
	txs, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, txs)
}

// UserBalances godoc
// @Summary      A member's credit balances
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  api.Response{result=[]Balance}
// @Router       /admin/users/{id}/credits [get]
func (h *Handler) UserBalances(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	balances, err := h.service.Balances(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, balances)
}

// UserHistory godoc
// @Summary      A member's credit ledger
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      int  true   "User ID"
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Transaction}
// @Router       /admin/users/{id}/credits/history [get]
func (h *Handler) UserHistory(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	limit, offset := api.Page(c)
	txs, err := h.service.History(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, txs)
}

// Adjust godoc
// @Summary      Manual credit correction
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      AdjustRequest  true  "Adjustment"
// @Success      201      {object}  api.Response{result=[]Transaction}
// @Failure      422      {object}  api.ErrorResponse
// @Router       /admin/credits/adjust [post]
func (h *Handler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if !api.Bind(c, &req) {
		return
	}
	txs, err := h.service.Adjust(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, txs)
}
