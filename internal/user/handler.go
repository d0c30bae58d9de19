package user

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
	case errors.Is(err, ErrEmailExists):
		api.Fail(c, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		api.Fail(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrInvalidRefreshToken):
		api.Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCode):
		api.FailFields(c, http.StatusBadRequest, err.Error(), map[string]string{"code": "is invalid or expired"})
	case errors.Is(err, ErrAlreadyVerified):
		api.Fail(c, http.StatusConflict, err.Error())
	default:
		api.Internal(c, err)
	}
}

// Register godoc
// @Summary      Register a member
// @Description  Creates an unverified member account, e-mails a verification code and returns tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  api.Response{result=AuthResponse}
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.Bind(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  api.Response{result=AuthResponse}
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.Bind(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, resp)
}

// Refresh godoc
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  api.Response{result=AuthResponse}
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !api.Bind(c, &req) {
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Log out and revoke the current session
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), auth.GetSessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	api.Message(c, "logged out")
}

// Me godoc
// @Summary      Current user profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=User}
// @Router       /api/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}

// UpdateMe godoc
// @Summary      Update the current user profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateProfileRequest  true  "Profile"
// @Success      200      {object}  api.Response{result=User}
// @Failure      422      {object}  api.ErrorResponse
// @Router       /api/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !api.Bind(c, &req) {
		return
	}
	userID, _ := auth.GetUserID(c)

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}

// RequestVerification godoc
// @Summary      Send a new verification code
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Failure      409  {object}  api.ErrorResponse
// @Router       /auth/verify/request [post]
func (h *Handler) RequestVerification(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	if err := h.service.RequestVerification(c.Request.Context(), userID); err != nil {
		h.fail(c, err)
		return
	}

	api.Message(c, "verification code sent")
}

// Verify godoc
// @Summary      Verify the account with the e-mailed code
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyRequest  true  "Code"
// @Success      200      {object}  api.Response{result=User}
// @Failure      400      {object}  api.ErrorResponse
// @Router       /auth/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !api.Bind(c, &req) {
		return
	}
	userID, _ := auth.GetUserID(c)

	u, err := h.service.Verify(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}

// List godoc
// @Summary      List users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        role    query     string  false  "member, coach or admin"
// @Param        q       query     string  false  "name or e-mail search"
// @Param        limit   query     int     false  "page size"
// @Param        offset  query     int     false  "offset"
// @Success      200     {object}  api.Response{result=[]User}
// @Router       /admin/users [get]
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if !api.BindQuery(c, &f) {
		return
	}
	f.Limit, f.Offset = api.Page(c)

	users, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, users)
}

// Create godoc
// @Summary      Create a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateUserRequest  true  "User"
// @Success      201      {object}  api.Response{result=User}
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/users [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !api.Bind(c, &req) {
		return
	}

	u, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, u)
}

// SetRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "User ID"
// @Param        request  body      UpdateRoleRequest  true  "Role"
// @Success      200      {object}  api.Response{result=User}
// @Router       /admin/users/{id}/role [put]
func (h *Handler) SetRole(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !api.Bind(c, &req) {
		return
	}

	u, err := h.service.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}

// MarkVerified godoc
// @Summary      Verify a user manually
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  api.Response{result=User}
// @Router       /admin/users/{id}/verify [post]
func (h *Handler) MarkVerified(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.MarkVerified(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, u)
}

// Delete godoc
// @Summary      Soft-delete a user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  api.Response{result=api.MessageResponse}
// @Router       /admin/users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	api.Message(c, "user deleted")
}
