// Package testutil builds in-memory databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"filesmanager/internal/database"
	"filesmanager/internal/domain"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string, role domain.UserRole) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateSession inserts a live session for userID.
func CreateSession(t *testing.T, db *gorm.DB, userID int64) *domain.Session {
	t.Helper()

	s := &domain.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		CookiePath:     "/",
		OriginalMaxAge: time.Hour.Milliseconds(),
		HTTPOnly:       true,
		SameSite:       "Lax",
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateFile inserts a file row and its owner-list entry.
func CreateFile(t *testing.T, db *gorm.DB, ownerID int64, name string) *domain.File {
	t.Helper()

	now := time.Now()
	f := &domain.File{
		ID:           uuid.NewString(),
		Filename:     name,
		ContentType:  "application/pdf",
		Size:         4,
		OwnerID:      ownerID,
		StorageKey:   uuid.NewString(),
		Status:       domain.FileStatusActive,
		UploadedAt:   now,
		LastAccessed: now,
		LastModified: now,
	}
	require.NoError(t, db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserFile{UserID: ownerID, FileID: f.ID, AddedAt: now}).Error
	}))
	return f
}
