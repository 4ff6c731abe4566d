package domain

import "time"

// Session links a transport credential to an authenticated user.
//
// UserID is a lookup reference only: a session whose user no longer exists
// is treated as unauthenticated.
type Session struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	UserID int64  `json:"user_id" gorm:"index;not null"`

	CookiePath     string `json:"cookie_path"`
	OriginalMaxAge int64  `json:"original_max_age"` // milliseconds, as set on the cookie
	HTTPOnly       bool   `json:"http_only"`
	Secure         bool   `json:"secure"`
	SameSite       string `json:"same_site"`

	UserAgent string `json:"user_agent,omitempty"`
	IP        string `json:"ip,omitempty"`

	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CookieMeta is the cookie configuration copied onto a session at login.
type CookieMeta struct {
	Path     string
	MaxAge   time.Duration
	HTTPOnly bool
	Secure   bool
	SameSite string
}
