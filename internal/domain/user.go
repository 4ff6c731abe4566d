package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account that owns files. Username and email are globally unique.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Files is the owner's file list, loaded from user_files on demand.
	Files []string `json:"files" gorm:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserFile is one entry of a user's file list. The authoritative owner of a
// file is File.OwnerID; this table is the enumerable view of that relation.
type UserFile struct {
	UserID  int64     `gorm:"primaryKey;autoIncrement:false"`
	FileID  string    `gorm:"primaryKey;size:36"`
	AddedAt time.Time `gorm:"not null;index"`
}

func (UserFile) TableName() string { return "user_files" }
