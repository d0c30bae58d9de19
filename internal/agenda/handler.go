package agenda

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
)

type Handler struct {
	service      Service
	defaultWeeks int
}

func NewHandler(service Service, defaultWeeks int) *Handler {
	return &Handler{service: service, defaultWeeks: defaultWeeks}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAgendaNotFound), errors.Is(err, ErrRecurrenceNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidRecurrence), errors.Is(err, ErrInvalidReference), errors.Is(err, ErrInvalidRange):
		api.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAgendaHasBookings):
		api.Fail(c, http.StatusConflict, err.Error())
	default:
		api.Internal(c, err)
	}
}

// List godoc
// @Summary      Class schedule with availability
// @Description  Dates are studio-local and inclusive; defaults to the coming seven days.
// @Tags         agendas
// @Produce      json
// @Param        from           query     string  false  "YYYY-MM-DD"
// @Param        to             query     string  false  "YYYY-MM-DD"
// @Param        location_id    query     int     false  "Location"
// @Param        class_type_id  query     int     false  "Class type"
// @Param        coach_id       query     int     false  "Coach"
// @Success      200            {object}  api.Response{result=[]Schedule}
// @Failure      422            {object}  api.ErrorResponse
// @Router       /api/agendas [get]
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if !api.BindQuery(c, &f) {
		return
	}
	schedules, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, schedules)
}

// Get godoc
// @Summary      Agenda details
// @Tags         agendas
// @Produce      json
// @Param        id   path      int  true  "Agenda ID"
// @Success      200  {object}  api.Response{result=Schedule}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/agendas/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	s, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, s)
}

// Create godoc
// @Summary      Schedule a one-off class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      AgendaRequest  true  "Agenda"
// @Success      201      {object}  api.Response{result=Agenda}
// @Router       /admin/agendas [post]
func (h *Handler) Create(c *gin.Context) {
	var req AgendaRequest
	if !api.Bind(c, &req) {
		return
	}
	a, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, a)
}

// Update godoc
// @Summary      Reschedule a class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Agenda ID"
// @Param        request  body      AgendaRequest  true  "Agenda"
// @Success      200      {object}  api.Response{result=Agenda}
// @Router       /admin/agendas/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req AgendaRequest
	if !api.Bind(c, &req) {
		return
	}
	a, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, a)
}

// Delete godoc
// @Summary      Soft-delete an agenda without active bookings
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Agenda ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/agendas/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "agenda deleted")
}

// Generate godoc
// @Summary      Materialize recurring classes
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        weeks  query     int  false  "Weeks ahead"
// @Success      200    {object}  api.Response{result=GenerateResult}
// @Router       /admin/agendas/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if !api.BindQuery(c, &req) {
		return
	}
	if req.Weeks == 0 {
		req.Weeks = h.defaultWeeks
	}
	res, err := h.service.GenerateAhead(c.Request.Context(), req.Weeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, res)
}

// ListRecurrences godoc
// @Summary      List active recurrence rules
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Recurrence}
// @Router       /admin/recurrences [get]
func (h *Handler) ListRecurrences(c *gin.Context) {
	recs, err := h.service.ListRecurrences(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, recs)
}

// GetRecurrence godoc
// @Summary      Recurrence rule
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Recurrence ID"
// @Success      200  {object}  api.Response{result=Recurrence}
// @Router       /admin/recurrences/{id} [get]
func (h *Handler) GetRecurrence(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	rec, err := h.service.GetRecurrence(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rec)
}

// CreateRecurrence godoc
// @Summary      Create a weekly recurrence rule
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RecurrenceRequest  true  "Rule"
// @Success      201      {object}  api.Response{result=Recurrence}
// @Failure      422      {object}  api.ErrorResponse
// @Router       /admin/recurrences [post]
func (h *Handler) CreateRecurrence(c *gin.Context) {
	var req RecurrenceRequest
	if !api.Bind(c, &req) {
		return
	}
	rec, err := h.service.CreateRecurrence(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, rec)
}

// UpdateRecurrence godoc
// @Summary      Update a recurrence rule
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "Recurrence ID"
// @Param        request  body      RecurrenceRequest  true  "Rule"
// @Success      200      {object}  api.Response{result=Recurrence}
// @Router       /admin/recurrences/{id} [put]
func (h *Handler) UpdateRecurrence(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req RecurrenceRequest
	if !api.Bind(c, &req) {
		return
	}
	rec, err := h.service.UpdateRecurrence(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, rec)
}

// DeleteRecurrence godoc
// @Summary      Soft-delete a recurrence rule
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id             path      int   true   "Recurrence ID"
// @Param        remove_future  query     bool  false  "Also remove future instances without bookings"
// @Success      200            {object}  api.Response{result=map[string]int64}
// @Router       /admin/recurrences/{id} [delete]
func (h *Handler) DeleteRecurrence(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	removeFuture := c.Query("remove_future") == "true"

	n, err := h.service.DeleteRecurrence(c.Request.Context(), id, removeFuture)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"removed_instances": n})
}
