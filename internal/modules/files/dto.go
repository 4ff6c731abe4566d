package files

import (
	"io"
	"time"

	"filesmanager/internal/domain"
)

type RenameRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// UploadInput is one file received from the client.
type UploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileView is a file as returned to clients. The storage key never leaves
// the server and OwnerID is only shown to the owner and to admins.
type FileView struct {
	ID            string            `json:"id"`
	Filename      string            `json:"filename"`
	ContentType   string            `json:"content_type"`
	Size          int64             `json:"size"`
	OwnerID       *int64            `json:"owner_id,omitempty"`
	Status        domain.FileStatus `json:"status"`
	DownloadCount int               `json:"download_count"`
	UploadDate    time.Time         `json:"upload_date"`
	LastAccessed  time.Time         `json:"last_accessed"`
	LastModified  time.Time         `json:"last_modified"`
}

func NewView(f *domain.File, viewer *domain.User) FileView {
	v := FileView{
		ID:            f.ID,
		Filename:      f.Filename,
		ContentType:   f.ContentType,
		Size:          f.Size,
		Status:        f.Status,
		DownloadCount: f.DownloadCount,
		UploadDate:    f.UploadedAt,
		LastAccessed:  f.LastAccessed,
		LastModified:  f.LastModified,
	}
	if viewer != nil && (viewer.ID == f.OwnerID || viewer.IsAdmin()) {
		owner := f.OwnerID
		v.OwnerID = &owner
	}
	return v
}

func NewViews(files []domain.File, viewer *domain.User) []FileView {
	views := make([]FileView, 0, len(files))
	for i := range files {
		views = append(views, NewView(&files[i], viewer))
	}
	return views
}

// Download is an open file ready to stream.
type Download struct {
	File FileView
	Body io.ReadCloser
}
