package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/auth"
	"github.com/drithh/setalip-mono-sub003/internal/credit"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAgendaNotFound), errors.Is(err, ErrBookingNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyBooked), errors.Is(err, ErrClassFull),
		errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrNotBooked):
		api.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAgendaStarted), errors.Is(err, ErrCancelWindowPassed),
		errors.Is(err, credit.ErrInsufficientCredit):
		api.Fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		api.Internal(c, err)
	}
}

// Book godoc
// @Summary      Book an agenda
// @Description  Reserves a seat and debits one credit of the class type.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Agenda ID"
// @Success      201  {object}  api.Response{result=Detail}
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse
// @Router       /api/agendas/{id}/book [post]
func (h *Handler) Book(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	agendaID, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Book(c.Request.Context(), userID, agendaID)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, detail)
}

// ListMine godoc
// @Summary      My bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  api.Response{result=[]Detail}
// @Router       /api/bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := api.Page(c)

	bookings, err := h.service.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, bookings)
}

// Cancel godoc
// @Summary      Cancel my booking
// @Description  Refunds the credit when cancelled before the notice window.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  api.Response{result=Booking}
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse
// @Router       /api/bookings/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.CancelByUser(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, b)
}

// AdminCancel godoc
// @Summary      Cancel a booking
// @Description  Cancels with or without refunding the credit.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Booking ID"
// @Param        request  body      CancelRequest  true  "Refund mode"
// @Success      200      {object}  api.Response{result=Booking}
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/bookings/{id}/cancel [post]
func (h *Handler) AdminCancel(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if !api.Bind(c, &req) {
		return
	}

	b, err := h.service.CancelByAdmin(c.Request.Context(), id, req.Refund)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, b)
}

// CheckIn godoc
// @Summary      Check a member in
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  api.Response{result=Booking}
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/bookings/{id}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, b)
}

// ListByAgenda godoc
// @Summary      Attendees of an agenda
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Agenda ID"
// @Success      200  {object}  api.Response{result=[]Detail}
// @Router       /admin/agendas/{id}/bookings [get]
func (h *Handler) ListByAgenda(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	bookings, err := h.service.ListByAgenda(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, bookings)
}
