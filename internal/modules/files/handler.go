package files

import (
	"fmt"
	"net/http"
	"net/url"
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
	r.POST("/upload", h.Upload)
	r.GET("/myfiles", h.ListOwned)
	r.GET("/allFiles", h.ListAll)
	r.GET("/userFiles/:id", h.ListOwnedBy)
	r.GET("/files/:id", h.Get)
	r.PUT("/updateFile/:id", h.Rename)
	r.DELETE("/deleteFile/:id", h.Delete)
	r.DELETE("/deleteAllMyFiles", h.DeleteAllMine)
	r.DELETE("/deleteAllFiles", h.DeleteAll)
	r.DELETE("/deleteAllFiles/:userId", h.DeleteAllOwnedBy)
	r.GET("/download/:id", h.Download)
}

func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.FromError(c, ErrNoFile, "failed to upload file")
		return
	}

	src, err := header.Open()
	if err != nil {
		response.FromError(c, ErrNoFile, "failed to upload file")
		return
	}
	defer src.Close()

	view, err := h.service.Upload(c.Request.Context(), middleware.SessionID(c), UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  src,
	})
	if err != nil {
		response.FromError(c, err, "failed to upload file")
		return
	}

	response.Success(c, http.StatusCreated, "file uploaded", view)
}

func (h *Handler) ListOwned(c *gin.Context) {
	views, err := h.service.ListOwned(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to list files")
		return
	}
	response.List(c, "your files", views, len(views))
}

func (h *Handler) ListAll(c *gin.Context) {
	views, err := h.service.ListAll(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to list files")
		return
	}
	response.List(c, "all files", views, len(views))
}

func (h *Handler) ListOwnedBy(c *gin.Context) {
	userID, ok := parseUserID(c, "id")
	if !ok {
		return
	}

	views, err := h.service.ListOwnedBy(c.Request.Context(), middleware.SessionID(c), userID)
	if err != nil {
		response.FromError(c, err, "failed to list files")
		return
	}
	response.List(c, "user files", views, len(views))
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to load file")
		return
	}
	response.Success(c, http.StatusOK, "file", view)
}

func (h *Handler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "filename is required")
		return
	}

	view, err := h.service.Rename(c.Request.Context(), middleware.SessionID(c), c.Param("id"), req.Filename)
	if err != nil {
		response.FromError(c, err, "failed to rename file")
		return
	}
	response.Success(c, http.StatusOK, "file renamed", view)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.SessionID(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to delete file")
		return
	}
	response.Success(c, http.StatusOK, "file deleted", nil)
}

func (h *Handler) DeleteAllMine(c *gin.Context) {
	n, err := h.service.DeleteAllMine(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to delete files")
		return
	}
	response.Success(c, http.StatusOK, "files deleted", gin.H{"deleted": n})
}

func (h *Handler) DeleteAll(c *gin.Context) {
	n, err := h.service.DeleteAll(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.FromError(c, err, "failed to delete files")
		return
	}
	response.Success(c, http.StatusOK, "all files deleted", gin.H{"deleted": n})
}

func (h *Handler) DeleteAllOwnedBy(c *gin.Context) {
	userID, ok := parseUserID(c, "userId")
	if !ok {
		return
	}

	n, err := h.service.DeleteAllOwnedBy(c.Request.Context(), middleware.SessionID(c), userID)
	if err != nil {
		response.FromError(c, err, "failed to delete files")
		return
	}
	response.Success(c, http.StatusOK, "user files deleted", gin.H{"deleted": n})
}

func (h *Handler) Download(c *gin.Context) {
	dl, err := h.service.Download(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to download file")
		return
	}
	defer dl.Body.Close()

	disposition := fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiName(dl.File.Filename), url.PathEscape(dl.File.Filename))
	c.DataFromReader(http.StatusOK, dl.File.Size, dl.File.ContentType, dl.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func parseUserID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return 0, false
	}
	return id, true
}

func asciiName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}
