package sessions

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/domain"
	"filesmanager/internal/middleware"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/getAllSessions", h.ListAll)
	r.GET("/getSessionByUserId/:id", h.ListByUser)
	r.DELETE("/sessions/:id", h.Revoke)
}

func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to list sessions")
		return
	}
	response.List(c, "all sessions", toResponses(list), len(list))
}

func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), middleware.SessionID(c), userID)
	if err != nil {
		response.FromError(c, err, "failed to list sessions")
		return
	}
	response.List(c, "user sessions", toResponses(list), len(list))
}

func (h *Handler) Revoke(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), middleware.SessionID(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to revoke session")
		return
	}
	response.Success(c, http.StatusOK, "session revoked", nil)
}

func toResponses(list []domain.Session) []auth.SessionResponse {
	out := make([]auth.SessionResponse, 0, len(list))
	for i := range list {
		out = append(out, auth.ToSessionResponse(&list[i]))
	}
	return out
}
