package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/domain"
)

const TotalCountHeader = "X-Total-Count"

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(statusCode, body)
}

// List writes a listing with its X-Total-Count header.
func List(c *gin.Context, message string, items interface{}, total int) {
	c.Header(TotalCountHeader, strconv.Itoa(total))
	Success(c, http.StatusOK, message, items)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Details is implemented by errors that carry per-field information.
type Details interface {
	Details() map[string]string
}

// FromError maps an error kind to a status and writes a message that never
// contains store error text.
func FromError(c *gin.Context, err error, message string) {
	status, code := Classify(err)

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		Error(c, status, code, message)
		return
	}

	msg := err.Error()
	var d Details
	if errors.As(err, &d) {
		ErrorWithDetails(c, status, code, msg, d.Details())
		return
	}
	Error(c, status, code, msg)
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrStore):
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "NOT_AUTHENTICATED"
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, "NOT_AUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, "CONFLICT"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
