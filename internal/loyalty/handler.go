package loyalty

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
	case errors.Is(err, ErrRewardNotFound), errors.Is(err, ErrShopItemNotFound), errors.Is(err, ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRewardExists):
		api.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientPoints):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		api.Internal(c, err)
	}
}

func currentUser(c *gin.Context) (int, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// MyBalance godoc
// @Summary      Loyalty point balance
// @Tags         loyalty
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=BalanceResponse}
// @Router       /api/loyalty [get]
func (h *Handler) MyBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, BalanceResponse{Balance: balance})
}

// MyHistory godoc
// @Summary      Loyalty ledger, newest first
// @Tags         loyalty
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Transaction}
// @Router       /api/loyalty/history [get]
func (h *Handler) MyHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
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

// ListShop godoc
// @Summary      Items redeemable with points
// @Tags         loyalty
// @Produce      json
// @Success      200  {object}  api.Response{result=[]ShopItem}
// @Router       /api/loyalty/shop [get]
func (h *Handler) ListShop(c *gin.Context) {
	items, err := h.service.ListShopItems(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, items)
}

// Redeem godoc
// @Summary      Redeem points for a shop item
// @Tags         loyalty
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Shop item ID"
// @Success      201  {object}  api.Response{result=Transaction}
// @Failure      422  {object}  api.ErrorResponse
// @Router       /api/loyalty/shop/{id}/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	tx, err := h.service.Redeem(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, tx)
}

// Adjust godoc
// @Summary      Manual loyalty correction
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      AdjustRequest  true  "Adjustment"
// @Success      201      {object}  api.Response{result=Transaction}
// @Router       /admin/loyalty/adjust [post]
func (h *Handler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if !api.Bind(c, &req) {
		return
	}
	tx, err := h.service.Adjust(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, tx)
}

// ListRewards godoc
// @Summary      Point-earning rules
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Reward}
// @Router       /admin/loyalty/rewards [get]
func (h *Handler) ListRewards(c *gin.Context) {
	rewards, err := h.service.ListRewards(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rewards)
}

// CreateReward godoc
// @Summary      Create a point-earning rule
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RewardRequest  true  "Reward"
// @Success      201      {object}  api.Response{result=Reward}
// @Router       /admin/loyalty/rewards [post]
func (h *Handler) CreateReward(c *gin.Context) {
	var req RewardRequest
	if !api.Bind(c, &req) {
		return
	}
	rw, err := h.service.CreateReward(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, rw)
}

// UpdateReward godoc
// @Summary      Update a point-earning rule
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Reward ID"
// @Param        request  body      RewardRequest  true  "Reward"
// @Success      200      {object}  api.Response{result=Reward}
// @Router       /admin/loyalty/rewards/{id} [put]
func (h *Handler) UpdateReward(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req RewardRequest
	if !api.Bind(c, &req) {
		return
	}
	rw, err := h.service.UpdateReward(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rw)
}

// DeleteReward godoc
// @Summary      Soft-delete a point-earning rule
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Reward ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/loyalty/rewards/{id} [delete]
func (h *Handler) DeleteReward(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteReward(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "reward deleted")
}

// CreateShopItem godoc
// @Summary      Add a shop item
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ShopItemRequest  true  "Item"
// @Success      201      {object}  api.Response{result=ShopItem}
// @Router       /admin/loyalty/shop [post]
func (h *Handler) CreateShopItem(c *gin.Context) {
	var req ShopItemRequest
	if !api.Bind(c, &req) {
		return
	}
	it, err := h.service.CreateShopItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, it)
}

// UpdateShopItem godoc
// @Summary      Update a shop item
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Item ID"
// @Param        request  body      ShopItemRequest  true  "Item"
// @Success      200      {object}  api.Response{result=ShopItem}
// @Router       /admin/loyalty/shop/{id} [put]
func (h *Handler) UpdateShopItem(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ShopItemRequest
	if !api.Bind(c, &req) {
		return
	}
	it, err := h.service.UpdateShopItem(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, it)
}

// DeleteShopItem godoc
// @Summary      Soft-delete a shop item
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/loyalty/shop/{id} [delete]
func (h *Handler) DeleteShopItem(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteShopItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "shop item deleted")
}
