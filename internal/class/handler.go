package class

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
	case errors.Is(err, ErrClassTypeNotFound), errors.Is(err, ErrClassNotFound), errors.Is(err, ErrAssetNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidReference):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		api.Internal(c, err)
	}
}

// ListTypes godoc
// @Summary      List class types
// @Tags         classes
// @Produce      json
// @Success      200  {object}  api.Response{result=[]ClassType}
// @Router       /api/class-types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.service.ListTypes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, types)
}

// CreateType godoc
// @Summary      Create a class type
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ClassTypeRequest  true  "Class type"
// @Success      201      {object}  api.Response{result=ClassType}
// @Router       /admin/class-types [post]
func (h *Handler) CreateType(c *gin.Context) {
	var req ClassTypeRequest
	if !api.Bind(c, &req) {
		return
	}
	ct, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, ct)
}

// UpdateType godoc
// @Summary      Rename a class type
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int               true  "Class type ID"
// @Param        request  body      ClassTypeRequest  true  "Class type"
// @Success      200      {object}  api.Response{result=ClassType}
// @Router       /admin/class-types/{id} [put]
func (h *Handler) UpdateType(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ClassTypeRequest
	if !api.Bind(c, &req) {
		return
	}
	ct, err := h.service.UpdateType(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, ct)
}

// DeleteType godoc
// @Summary      Soft-delete a class type
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Class type ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/class-types/{id} [delete]
func (h *Handler) DeleteType(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteType(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "class type deleted")
}

// List godoc
// @Summary      List classes
// @Tags         classes
// @Produce      json
// @Param        class_type_id  query     int  false  "Filter by class type"
// @Success      200            {object}  api.Response{result=[]Class}
// @Router       /api/classes [get]
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if !api.BindQuery(c, &f) {
		return
	}
	classes, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, classes)
}

// Get godoc
// @Summary      Class with type and gallery
// @Tags         classes
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  api.Response{result=ClassDetail}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/classes/{id} [get]
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
// @Summary      Create a class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ClassRequest  true  "Class"
// @Success      201      {object}  api.Response{result=Class}
// @Failure      422      {object}  api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) Create(c *gin.Context) {
	var req ClassRequest
	if !api.Bind(c, &req) {
		return
	}
	cl, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, cl)
}

// Update godoc
// @Summary      Update a class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int           true  "Class ID"
// @Param        request  body      ClassRequest  true  "Class"
// @Success      200      {object}  api.Response{result=Class}
// @Router       /admin/classes/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ClassRequest
	if !api.Bind(c, &req) {
		return
	}
	cl, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, cl)
}

// Delete godoc
// @Summary      Soft-delete a class
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/classes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "class deleted")
}

// AddAsset godoc
// @Summary      Add a gallery image to a class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int           true  "Class ID"
// @Param        request  body      AssetRequest  true  "Asset"
// @Success      201      {object}  api.Response{result=ClassAsset}
// @Router       /admin/classes/{id}/assets [post]
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
// @Summary      Remove a class gallery image
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Asset ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/class-assets/{id} [delete]
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
