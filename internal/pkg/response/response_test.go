package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"filesmanager/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", domain.ErrNotAuthenticated), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrNotAuthorized), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("x: %w: boom", domain.ErrStore), http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := Classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestFromError_HidesStoreText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	FromError(c, fmt.Errorf("get file: %w: pq: relation files does not exist", domain.ErrStore), "Error getting files")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "Error getting files")
}
