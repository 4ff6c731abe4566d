package domain

import "time"

type FileStatus string

const (
	FileStatusActive FileStatus = "active"
)

// File is the metadata of a stored blob. Filename is unique across the
// whole system; OwnerID always references an existing user.
type File struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Filename    string     `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	ContentType string     `gorm:"size:128;not null" json:"content_type"`
	Size        int64      `gorm:"not null" json:"size"`
	OwnerID     int64      `gorm:"index;not null" json:"owner_id"`
	StorageKey  string     `gorm:"size:255;not null" json:"-"`
	Status      FileStatus `gorm:"size:32;not null;default:active" json:"status"`

	// NameCounter remembers the highest "(n)" suffix issued for this name.
	NameCounter int `gorm:"not null;default:0" json:"-"`

	DownloadCount int       `gorm:"not null;default:0" json:"download_count"`
	UploadedAt    time.Time `gorm:"not null" json:"upload_date"`
	LastAccessed  time.Time `gorm:"not null" json:"last_accessed"`
	LastModified  time.Time `gorm:"not null" json:"last_modified"`
}

func (File) TableName() string { return "files" }
