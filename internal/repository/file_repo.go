package repository

import (
	"context"
	"time"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) WithTx(tx *gorm.DB) *FileRepository {
	return &FileRepository{db: tx}
}

func (r *FileRepository) DB() *gorm.DB { return r.db }

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	return translate(r.db.WithContext(ctx).Create(f).Error, "create file")
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	var f domain.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, translate(err, "get file")
	}
	return &f, nil
}

func (r *FileRepository) GetByName(ctx context.Context, name string) (*domain.File, error) {
	var f domain.File
	if err := r.db.WithContext(ctx).Where("filename = ?", name).First(&f).Error; err != nil {
		return nil, translate(err, "get file by name")
	}
	return &f, nil
}

func (r *FileRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.File{}).Where("filename = ?", name).Count(&n).Error; err != nil {
		return false, translate(err, "count files by name")
	}
	return n > 0, nil
}

func (r *FileRepository) ListAll(ctx context.Context) ([]domain.File, error) {
	files := []domain.File{}
	if err := r.db.WithContext(ctx).Order("uploaded_at ASC, id ASC").Find(&files).Error; err != nil {
		return nil, translate(err, "list files")
	}
	return files, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.File, error) {
	files := []domain.File{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at ASC, id ASC").
		Find(&files).Error
	if err != nil {
		return nil, translate(err, "list files by owner")
	}
	return files, nil
}

// ListOrphaned returns files whose owner no longer exists.
func (r *FileRepository) ListOrphaned(ctx context.Context) ([]domain.File, error) {
	files := []domain.File{}
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM users WHERE users.id = files.owner_id)").
		Find(&files).Error
	if err != nil {
		return nil, translate(err, "list orphaned files")
	}
	return files, nil
}

func (r *FileRepository) Rename(ctx context.Context, id, name string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.File{}).Where("id = ?", id).Updates(map[string]any{
		"filename":      name,
		"last_modified": now,
	})
	if res.Error != nil {
		return translate(res.Error, "rename file")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "rename file")
	}
	return nil
}

// TouchAccessed sets last_accessed on the given files.
func (r *FileRepository) TouchAccessed(ctx context.Context, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.File{}).Where("id IN ?", ids).Update("last_accessed", now).Error
	return translate(err, "touch files")
}

func (r *FileRepository) RecordDownload(ctx context.Context, id string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.File{}).Where("id = ?", id).Updates(map[string]any{
		"download_count": gorm.Expr("download_count + 1"),
		"last_accessed":  now,
	}).Error
	return translate(err, "record download")
}

// BumpNameCounter raises the suffix hint stored on the file named name.
func (r *FileRepository) BumpNameCounter(ctx context.Context, name string, counter int) error {
	err := r.db.WithContext(ctx).Model(&domain.File{}).
		Where("filename = ? AND name_counter < ?", name, counter).
		Update("name_counter", counter).Error
	return translate(err, "bump name counter")
}

// Delete removes a file row and reports whether it existed.
func (r *FileRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.File{})
	if res.Error != nil {
		return false, translate(res.Error, "delete file")
	}
	return res.RowsAffected > 0, nil
}

// DeleteByIDs removes the given file rows in batches and returns how many
// existed.
func (r *FileRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	for _, batch := range batches(ids) {
		res := r.db.WithContext(ctx).Where("id IN ?", batch).Delete(&domain.File{})
		if res.Error != nil {
			return n, translate(res.Error, "delete files")
		}
		n += res.RowsAffected
	}
	return n, nil
}
