package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/domain"
	"filesmanager/internal/middleware"
	"filesmanager/internal/pkg/response"
)

// CredentialTransport writes and clears the session credential on the client.
type CredentialTransport interface {
	Issue(c *gin.Context, sess *domain.Session) (string, error)
	Clear(c *gin.Context)
	Meta() domain.CookieMeta
}

type Handler struct {
	authenticator *Authenticator
	authorizer    *Authorizer
	transport     CredentialTransport
}

func NewHandler(authenticator *Authenticator, authorizer *Authorizer, transport CredentialTransport) *Handler {
	return &Handler{
		authenticator: authenticator,
		authorizer:    authorizer,
		transport:     transport,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/getsession", h.GetSession)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	sess, user, err := h.authenticator.Authenticate(c.Request.Context(), middleware.SessionID(c), LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		Cookie:    h.transport.Meta(),
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	})
	if err != nil {
		response.FromError(c, err, "failed to log in")
		return
	}

	token, err := h.transport.Issue(c, sess)
	if err != nil {
		response.FromError(c, err, "failed to log in")
		return
	}

	response.Success(c, http.StatusOK, "logged in", LoginResponse{
		User:    ToUserPublic(user),
		Session: ToSessionResponse(sess),
		Token:   token,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.authenticator.Terminate(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.FromError(c, err, "failed to log out")
		return
	}

	h.transport.Clear(c)
	response.Success(c, http.StatusOK, "logged out", nil)
}

func (h *Handler) GetSession(c *gin.Context) {
	p, err := h.authorizer.Resolve(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to load session")
		return
	}

	response.Success(c, http.StatusOK, "current session", gin.H{
		"session": ToSessionResponse(p.Session),
		"user":    ToUserPublic(p.User),
	})
}
