package repository

import (
	"context"
	"time"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
)

// SessionRepository is the SQL-backed session store.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	return translate(r.db.WithContext(ctx).Create(s).Error, "create session")
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err, "get session")
	}
	return &s, nil
}

// Delete removes the session and reports whether it existed.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{})
	if res.Error != nil {
		return false, translate(res.Error, "delete session")
	}
	return res.RowsAffected > 0, nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete user sessions")
	}
	return res.RowsAffected, nil
}

func (r *SessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	sessions := []domain.Session{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, translate(err, "list sessions")
	}
	return sessions, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	sessions := []domain.Session{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, translate(err, "list user sessions")
	}
	return sessions, nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete expired sessions")
	}
	return res.RowsAffected, nil
}
