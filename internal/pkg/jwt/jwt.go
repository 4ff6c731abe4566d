package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies session tokens. A token only proves that the
// session id was issued by this server; the session row stays authoritative.
type Service struct {
	secret []byte
}

type Claims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	jwtlib.RegisteredClaims
}

func New(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

func (s *Service) GenerateToken(sessionID string, userID int64, expiresAt time.Time) (string, error) {
	claims := Claims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
