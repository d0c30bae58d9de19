package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidRange) {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	api.Internal(c, err)
}

// Bookings godoc
// @Summary      Booking statistics
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from      query     string  false  "First day (YYYY-MM-DD)"
// @Param        to        query     string  false  "Last day (YYYY-MM-DD)"
// @Param        group_by  query     string  false  "day or location"
// @Success      200       {object}  api.Response{result=BookingReport}
// @Router       /admin/reports/bookings [get]
func (h *Handler) Bookings(c *gin.Context) {
	var f Filter
	if !api.BindQuery(c, &f) {
		return
	}
	rep, err := h.service.Bookings(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rep)
}

// Credits godoc
// @Summary      Credit ledger totals per type
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "First day (YYYY-MM-DD)"
// @Param        to    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200   {object}  api.Response{result=CreditReport}
// @Router       /admin/reports/credits [get]
func (h *Handler) Credits(c *gin.Context) {
	var f Filter
	if !api.BindQuery(c, &f) {
		return
	}
	rep, err := h.service.Credits(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rep)
}

// Sales godoc
// @Summary      Package sales
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "First day (YYYY-MM-DD)"
// @Param        to    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200   {object}  api.Response{result=SalesReport}
// @Router       /admin/reports/sales [get]
func (h *Handler) Sales(c *gin.Context) {
	var f Filter
	if !api.BindQuery(c, &f) {
		return
	}
	rep, err := h.service.Sales(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rep)
}
