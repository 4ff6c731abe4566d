package repository

import (
	"context"
	"strings"
	"time"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) DB() *gorm.DB { return r.db }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return translate(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "get user by username")
	}
	return &u, nil
}

// FindConflicts returns which of username/email are already taken.
func (r *UserRepository) FindConflicts(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var users []domain.User
	err = r.db.WithContext(ctx).
		Select("id", "username", "email").
		Where("username = ? OR email = ?", strings.TrimSpace(username), normalizeEmail(email)).
		Find(&users).Error
	if err != nil {
		return false, false, translate(err, "find user conflicts")
	}
	for _, u := range users {
		if u.Username == strings.TrimSpace(username) {
			usernameTaken = true
		}
		if u.Email == normalizeEmail(email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, "list user ids")
	}
	return ids, nil
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	return r.updates(ctx, id, map[string]any{"email": normalizeEmail(email)}, "update email")
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.updates(ctx, id, map[string]any{"password_hash": hash}, "update password")
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) error {
	return r.updates(ctx, id, map[string]any{"role": role}, "update role")
}

func (r *UserRepository) updates(ctx context.Context, id int64, fields map[string]any, what string) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, what)
	}
	return nil
}

// LockExisting confirms the user row exists inside the current transaction.
// On PostgreSQL the row is held with FOR SHARE until the transaction ends,
// so a concurrent delete waits for it. SQLite serialises writers already.
func (r *UserRepository) LockExisting(ctx context.Context, id int64) error {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Select("id").Where("id = ?", id)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}

	var ids []int64
	if err := q.Find(&ids).Error; err != nil {
		return translate(err, "lock user")
	}
	if len(ids) == 0 {
		return translate(gorm.ErrRecordNotFound, "lock user")
	}
	return nil
}

// Delete removes the user row. Deleting an absent user is not an error.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error, "delete user")
}
