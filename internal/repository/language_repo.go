package repository

import (
	"context"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
)

type LanguageRepository struct {
	db *gorm.DB
}

func NewLanguageRepository(db *gorm.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

func (r *LanguageRepository) Create(ctx context.Context, l *domain.Language) error {
	return translate(r.db.WithContext(ctx).Create(l).Error, "create language")
}

func (r *LanguageRepository) GetByID(ctx context.Context, id int64) (*domain.Language, error) {
	var l domain.Language
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err, "get language")
	}
	return &l, nil
}

func (r *LanguageRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Language{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, translate(err, "count languages")
	}
	return n > 0, nil
}

func (r *LanguageRepository) List(ctx context.Context) ([]domain.Language, error) {
	langs := []domain.Language{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&langs).Error; err != nil {
		return nil, translate(err, "list languages")
	}
	return langs, nil
}

func (r *LanguageRepository) Update(ctx context.Context, l *domain.Language) error {
	return translate(r.db.WithContext(ctx).Save(l).Error, "update language")
}

func (r *LanguageRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Language{}, id)
	if res.Error != nil {
		return false, translate(res.Error, "delete language")
	}
	return res.RowsAffected > 0, nil
}
