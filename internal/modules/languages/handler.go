package languages

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/middleware"
	"filesmanager/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/languages")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", h.Create)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to list languages")
		return
	}
	response.List(c, "languages", list, len(list))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load language")
		return
	}
	response.Success(c, http.StatusOK, "language", l)
}

func (h *Handler) Create(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and display_name are required")
		return
	}

	l, err := h.service.Create(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		response.FromError(c, err, "failed to create language")
		return
	}
	response.Success(c, http.StatusCreated, "language created", l)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and display_name are required")
		return
	}

	l, err := h.service.Update(c.Request.Context(), middleware.SessionID(c), id, req)
	if err != nil {
		response.FromError(c, err, "failed to update language")
		return
	}
	response.Success(c, http.StatusOK, "language updated", l)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.SessionID(c), id); err != nil {
		response.FromError(c, err, "failed to delete language")
		return
	}
	response.Success(c, http.StatusOK, "language deleted", nil)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid language id")
		return 0, false
	}
	return id, true
}
