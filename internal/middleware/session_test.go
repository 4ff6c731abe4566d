package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/domain"
	"filesmanager/internal/pkg/jwt"
)

func newTestTransport(secret string) *SessionTransport {
	return NewSessionTransport(jwt.New(secret), "sid", domain.CookieMeta{
		Path:     "/",
		MaxAge:   time.Hour,
		HTTPOnly: true,
		SameSite: "Lax",
	}, http.SameSiteLaxMode)
}

func newEchoRouter(tr *SessionTransport) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(tr.Middleware())
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return router
}

func TestSessionTransport_BearerToken(t *testing.T) {
	tr := newTestTransport("test-secret-123")
	token, err := tr.jwt.GenerateToken("sess-42", 42, time.Now().Add(time.Hour))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newEchoRouter(tr).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-42", w.Body.String())
}

func TestSessionTransport_Cookie(t *testing.T) {
	tr := newTestTransport("test-secret-123")
	token, err := tr.jwt.GenerateToken("sess-7", 7, time.Now().Add(time.Hour))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	newEchoRouter(tr).ServeHTTP(w, req)

	assert.Equal(t, "sess-7", w.Body.String())
}

func TestSessionTransport_InvalidTokenIsAnonymous(t *testing.T) {
	signer := newTestTransport("other-secret")
	token, err := signer.jwt.GenerateToken("sess-1", 1, time.Now().Add(time.Hour))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newEchoRouter(newTestTransport("test-secret-123")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSessionTransport_NoToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	newEchoRouter(newTestTransport("secret")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSessionTransport_WrongFormat(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	newEchoRouter(newTestTransport("secret")).ServeHTTP(w, req)

	assert.Empty(t, w.Body.String())
}

func TestSessionTransport_IssueAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := newTestTransport("secret")
	sess := &domain.Session{ID: "sess-9", UserID: 9, ExpiresAt: time.Now().Add(time.Hour)}

	router := gin.New()
	router.POST("/login", func(c *gin.Context) {
		token, err := tr.Issue(c, sess)
		require.NoError(t, err)
		c.String(http.StatusOK, token)
	})
	router.POST("/logout", func(c *gin.Context) {
		tr.Clear(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, w.Body.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	claims, err := tr.jwt.ValidateToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "sess-9", claims.SessionID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}
