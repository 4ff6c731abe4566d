package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/domain"
	"filesmanager/internal/pkg/jwt"
)

const sessionIDKey = "session_id"

// SessionTransport carries session ids between the client and the server as
// a signed token, either in a cookie or in a Bearer header.
type SessionTransport struct {
	jwt      *jwt.Service
	name     string
	meta     domain.CookieMeta
	sameSite http.SameSite
}

func NewSessionTransport(j *jwt.Service, cookieName string, meta domain.CookieMeta, sameSite http.SameSite) *SessionTransport {
	return &SessionTransport{
		jwt:      j,
		name:     cookieName,
		meta:     meta,
		sameSite: sameSite,
	}
}

// Meta is the cookie configuration recorded on new sessions.
func (t *SessionTransport) Meta() domain.CookieMeta {
	return t.meta
}

// Middleware extracts the session id from the request. It never rejects a
// request: whether a session is required is decided by the authorizer.
func (t *SessionTransport) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := t.token(c)
		if token != "" {
			if claims, err := t.jwt.ValidateToken(token); err == nil {
				SetSessionID(c, claims.SessionID)
			}
		}
		c.Next()
	}
}

func (t *SessionTransport) token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(t.name); err == nil {
		return cookie
	}
	return ""
}

// Issue signs a token for sess and sets it as the session cookie.
func (t *SessionTransport) Issue(c *gin.Context, sess *domain.Session) (string, error) {
	token, err := t.jwt.GenerateToken(sess.ID, sess.UserID, sess.ExpiresAt)
	if err != nil {
		return "", err
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	c.SetSameSite(t.sameSite)
	c.SetCookie(t.name, token, maxAge, t.meta.Path, "", t.meta.Secure, t.meta.HTTPOnly)
	return token, nil
}

// Clear expires the session cookie on the client.
func (t *SessionTransport) Clear(c *gin.Context) {
	c.SetSameSite(t.sameSite)
	c.SetCookie(t.name, "", -1, t.meta.Path, "", t.meta.Secure, t.meta.HTTPOnly)
}

// SetSessionID attaches a verified session id to the request.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
}

// SessionID returns the session id attached by Middleware, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
