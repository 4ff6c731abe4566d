package auth

import (
	"time"

	"filesmanager/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginInput is everything the authenticator needs to open a session.
type LoginInput struct {
	Username  string
	Password  string
	Cookie    domain.CookieMeta
	UserAgent string
	IP        string
}

type UserPublic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type SessionResponse struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	Cookie    CookieView `json:"cookie"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CookieView struct {
	Path           string `json:"path"`
	OriginalMaxAge int64  `json:"originalMaxAge"`
	HTTPOnly       bool   `json:"httpOnly"`
	Secure         bool   `json:"secure"`
	SameSite       string `json:"sameSite"`
}

type LoginResponse struct {
	User    UserPublic      `json:"user"`
	Session SessionResponse `json:"session"`
	Token   string          `json:"token"`
}

func ToUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

func ToSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		ID:     s.ID,
		UserID: s.UserID,
		Cookie: CookieView{
			Path:           s.CookiePath,
			OriginalMaxAge: s.OriginalMaxAge,
			HTTPOnly:       s.HTTPOnly,
			Secure:         s.Secure,
			SameSite:       s.SameSite,
		},
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
