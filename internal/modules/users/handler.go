package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/middleware"
	"filesmanager/internal/pkg/response"
)

// CredentialClearer removes the session credential from the client.
type CredentialClearer interface {
	Clear(c *gin.Context)
}

type Handler struct {
	service   *Service
	transport CredentialClearer
}

func NewHandler(service *Service, transport CredentialClearer) *Handler {
	return &Handler{service: service, transport: transport}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/register", h.Register)
	r.GET("/myProfile", h.Me)
	r.PUT("/myProfile", h.UpdateProfile)
	r.PUT("/myPassword", h.ChangePassword)
	r.DELETE("/deleteMyAccount", h.DeleteMyAccount)

	r.GET("/allusers", h.List)
	r.GET("/users/:id", h.Get)
	r.PUT("/users/:id/role", h.UpdateRole)
	r.DELETE("/deleteUser/:id", h.DeleteUser)
	r.DELETE("/deleteAllUsers", h.DeleteAllUsers)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "failed to register")
		return
	}
	response.Success(c, http.StatusCreated, "user registered", ToUserResponse(user))
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, "your profile", ToUserResponse(user))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email is required")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		response.FromError(c, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, "profile updated", ToUserResponse(user))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "current_password and new_password are required")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.SessionID(c), req); err != nil {
		response.FromError(c, err, "failed to change password")
		return
	}
	response.Success(c, http.StatusOK, "password changed", nil)
}

func (h *Handler) DeleteMyAccount(c *gin.Context) {
	if err := h.service.DeleteMyAccount(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.FromError(c, err, "failed to delete account")
		return
	}

	h.transport.Clear(c)
	response.Success(c, http.StatusOK, "account deleted", nil)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to list users")
		return
	}
	response.List(c, "all users", ToUserResponses(list), len(list))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), middleware.SessionID(c), id)
	if err != nil {
		response.FromError(c, err, "failed to load user")
		return
	}
	response.Success(c, http.StatusOK, "user", ToUserResponse(user))
}

func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "role is required")
		return
	}

	user, err := h.service.UpdateRole(c.Request.Context(), middleware.SessionID(c), id, req.Role)
	if err != nil {
		response.FromError(c, err, "failed to update role")
		return
	}
	response.Success(c, http.StatusOK, "role updated", ToUserResponse(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), middleware.SessionID(c), id); err != nil {
		response.FromError(c, err, "failed to delete user")
		return
	}
	response.Success(c, http.StatusOK, "user deleted", nil)
}

func (h *Handler) DeleteAllUsers(c *gin.Context) {
	n, err := h.service.DeleteAllUsers(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to delete users")
		return
	}
	response.Success(c, http.StatusOK, "users deleted", gin.H{"deleted": n})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return 0, false
	}
	return id, true
}
