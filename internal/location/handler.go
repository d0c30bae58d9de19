package location

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
	switch {
	case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrFacilityNotFound), errors.Is(err, ErrAssetNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	default:
		api.Internal(c, err)
	}
}

// List godoc
// @Summary      List studio locations
// @Tags         locations
// @Produce      json
// @Success      200  {object}  api.Response{result=[]Location}
// @Router       /api/locations [get]
func (h *Handler) List(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, locations)
}

// Get godoc
// @Summary      Location with facilities and gallery
// @Tags         locations
// @Produce      json
// @Param        id   path      int  true  "Location ID"
// @Success      200  {object}  api.Response{result=LocationDetail}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, detail)
}

// Create godoc
// @Summary      Create a location
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      LocationRequest  true  "Location"
// @Success      201      {object}  api.Response{result=Location}
// @Failure      422      {object}  api.ErrorResponse
// @Router       /admin/locations [post]
func (h *Handler) Create(c *gin.Context) {
	var req LocationRequest
	if !api.Bind(c, &req) {
		return
	}

	l, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, l)
}

// Update godoc
// @Summary      Update a location
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Location ID"
// @Param        request  body      LocationRequest  true  "Location"
// @Success      200      {object}  api.Response{result=Location}
// @Router       /admin/locations/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req LocationRequest
	if !api.Bind(c, &req) {
		return
	}

	l, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, l)
}

// Delete godoc
// @Summary      Soft-delete a location
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Location ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/locations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "location deleted")
}

// AddFacility godoc
// @Summary      Add a facility to a location
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Location ID"
// @Param        request  body      FacilityRequest  true  "Facility"
// @Success      201      {object}  api.Response{result=Facility}
// @Router       /admin/locations/{id}/facilities [post]
func (h *Handler) AddFacility(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req FacilityRequest
	if !api.Bind(c, &req) {
		return
	}

	f, err := h.service.AddFacility(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, f)
}

// UpdateFacility godoc
// @Summary      Update a facility
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Facility ID"
// @Param        request  body      FacilityRequest  true  "Facility"
// @Success      200      {object}  api.Response{result=Facility}
// @Router       /admin/facilities/{id} [put]
func (h *Handler) UpdateFacility(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req FacilityRequest
	if !api.Bind(c, &req) {
		return
	}

	f, err := h.service.UpdateFacility(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, f)
}

// DeleteFacility godoc
// @Summary      Soft-delete a facility
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Facility ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/facilities/{id} [delete]
func (h *Handler) DeleteFacility(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteFacility(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "facility deleted")
}

// AddAsset godoc
// @Summary      Add a gallery image to a location
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int           true  "Location ID"
// @Param        request  body      AssetRequest  true  "Asset"
// @Success      201      {object}  api.Response{result=Asset}
// @Router       /admin/locations/{id}/assets [post]
func (h *Handler) AddAsset(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req AssetRequest
	if !api.Bind(c, &req) {
		return
	}

	a, err := h.service.AddAsset(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, a)
}

// DeleteAsset godoc
// @Summary      Remove a gallery image
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Asset ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/assets/{id} [delete]
func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAsset(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "asset deleted")
}
