package packages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/auth"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrTransactionNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyPurchased), errors.Is(err, ErrNotPending):
		api.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrPackageUnavailable), errors.Is(err, loyalty.ErrInsufficientPoints):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidPrice):
		api.FailFields(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"price": err.Error()})
	case errors.Is(err, ErrInvalidReference):
		api.FailFields(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"class_type_id": err.Error()})
	default:
		api.Internal(c, err)
	}
}

// List godoc
// @Summary      Packages on sale
// @Tags         packages
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Package}
// @Router       /api/packages [get]
func (h *Handler) List(c *gin.Context) {
	pkgs, err := h.service.List(c.Request.Context(), true)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, pkgs)
}

// AdminList godoc
// @Summary      All packages, inactive included
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Package}
// @Router       /admin/packages [get]
func (h *Handler) AdminList(c *gin.Context) {
	pkgs, err := h.service.List(c.Request.Context(), false)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, pkgs)
}

// Get godoc
// @Summary      Package by ID
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Package ID"
// @Success      200  {object}  api.Response{result=Package}
// @Router       /admin/packages/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	pkg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, pkg)
}

// Create godoc
// @Summary      Create a package
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      PackageRequest  true  "Package"
// @Success      201      {object}  api.Response{result=Package}
// @Router       /admin/packages [post]
func (h *Handler) Create(c *gin.Context) {
	var req PackageRequest
	if !api.Bind(c, &req) {
		return
	}
	pkg, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, pkg)
}

// Update godoc
// @Summary      Update a package
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Package ID"
// @Param        request  body      PackageRequest  true  "Package"
// @Success      200      {object}  api.Response{result=Package}
// @Router       /admin/packages/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req PackageRequest
	if !api.Bind(c, &req) {
		return
	}
	pkg, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, pkg)
}

// Delete godoc
// @Summary      Soft-delete a package
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Package ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/packages/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "package deleted")
}

// Purchase godoc
// @Summary      Buy a package
// @Description  Creates a pending transaction, optionally paying part of it with loyalty points.
// @Tags         packages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true   "Package ID"
// @Param        request  body      PurchaseRequest  false  "Points to redeem"
// @Success      201      {object}  api.Response{result=Transaction}
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /api/packages/{id}/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req PurchaseRequest
	if c.Request.ContentLength > 0 && !api.Bind(c, &req) {
		return
	}

	tx, err := h.service.Purchase(c.Request.Context(), userID, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, tx)
}

// MyTransactions godoc
// @Summary      My package purchases
// @Tags         packages
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]TransactionDetail}
// @Router       /api/package-transactions [get]
func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := api.Page(c)

	txs, err := h.service.ListMyTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, txs)
}

// UploadProof godoc
// @Summary      Attach a payment proof
// @Tags         packages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int           true  "Transaction ID"
// @Param        request  body      ProofRequest  true  "Uploaded image URL"
// @Success      200      {object}  api.Response{result=Transaction}
// @Router       /api/package-transactions/{id}/proof [put]
func (h *Handler) UploadProof(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ProofRequest
	if !api.Bind(c, &req) {
		return
	}

	tx, err := h.service.UploadProof(c.Request.Context(), userID, id, req.ImageURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, tx)
}

// ListTransactions godoc
// @Summary      Package transactions
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, completed or failed"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  api.Response{result=[]TransactionDetail}
// @Router       /admin/package-transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	var f TransactionFilter
	if !api.BindQuery(c, &f) {
		return
	}
	f.Limit, f.Offset = api.Page(c)

	txs, err := h.service.ListTransactions(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, txs)
}

// Approve godoc
// @Summary      Approve a purchase
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  api.Response{result=Transaction}
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/package-transactions/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	tx, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, tx)
}

// Reject godoc
// @Summary      Reject a purchase
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  api.Response{result=Transaction}
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/package-transactions/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	tx, err := h.service.Reject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, tx)
}
