package repository

import (
	"context"
	"time"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
)

// UserFileRepository maintains each user's file list.
type UserFileRepository struct {
	db *gorm.DB
}

func NewUserFileRepository(db *gorm.DB) *UserFileRepository {
	return &UserFileRepository{db: db}
}

func (r *UserFileRepository) WithTx(tx *gorm.DB) *UserFileRepository {
	return &UserFileRepository{db: tx}
}

func (r *UserFileRepository) Append(ctx context.Context, userID int64, fileID string) error {
	entry := &domain.UserFile{UserID: userID, FileID: fileID, AddedAt: time.Now().UTC()}
	return translate(r.db.WithContext(ctx).Create(entry).Error, "append user file")
}

func (r *UserFileRepository) Remove(ctx context.Context, userID int64, fileID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Delete(&domain.UserFile{}).Error
	return translate(err, "remove user file")
}

// RemoveFile drops fileID from whichever list holds it.
func (r *UserFileRepository) RemoveFile(ctx context.Context, fileID string) error {
	return translate(r.db.WithContext(ctx).Where("file_id = ?", fileID).Delete(&domain.UserFile{}).Error, "remove file entries")
}

// RemoveFiles drops every entry naming one of ids.
func (r *UserFileRepository) RemoveFiles(ctx context.Context, ids []string) error {
	for _, batch := range batches(ids) {
		if err := r.db.WithContext(ctx).Where("file_id IN ?", batch).Delete(&domain.UserFile{}).Error; err != nil {
			return translate(err, "remove file entries")
		}
	}
	return nil
}

// ListFileIDs returns the user's list in insertion order.
func (r *UserFileRepository) ListFileIDs(ctx context.Context, userID int64) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&domain.UserFile{}).
		Where("user_id = ?", userID).
		Order("added_at ASC, file_id ASC").
		Pluck("file_id", &ids).Error
	if err != nil {
		return nil, translate(err, "list user files")
	}
	return ids, nil
}

// DeleteDangling removes entries whose file is gone or owned by someone else.
func (r *UserFileRepository) DeleteDangling(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM files WHERE files.id = user_files.file_id AND files.owner_id = user_files.user_id)").
		Delete(&domain.UserFile{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete dangling user files")
	}
	return res.RowsAffected, nil
}

// DeleteDanglingOf is DeleteDangling limited to one user's list.
func (r *UserFileRepository) DeleteDanglingOf(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM files WHERE files.id = user_files.file_id AND files.owner_id = user_files.user_id)").
		Delete(&domain.UserFile{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete dangling user files")
	}
	return res.RowsAffected, nil
}

// InsertMissing adds an entry for every file whose owner's list lacks it.
func (r *UserFileRepository) InsertMissing(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO user_files (user_id, file_id, added_at)
		SELECT f.owner_id, f.id, f.uploaded_at FROM files f
		WHERE EXISTS (SELECT 1 FROM users u WHERE u.id = f.owner_id)
		  AND NOT EXISTS (SELECT 1 FROM user_files uf WHERE uf.user_id = f.owner_id AND uf.file_id = f.id)
	`)
	if res.Error != nil {
		return 0, translate(res.Error, "insert missing user files")
	}
	return res.RowsAffected, nil
}
