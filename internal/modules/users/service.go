package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/pkg/validator"
	"filesmanager/internal/repository"
)

const minPasswordLength = 6

type Service struct {
	authorizer Authorizer
	users      *repository.UserRepository
	lists      FileLists
	cascade    Cascade
}

func NewService(authorizer Authorizer, users *repository.UserRepository, lists FileLists, cascade Cascade) *Service {
	return &Service{
		authorizer: authorizer,
		users:      users,
		lists:      lists,
		cascade:    cascade,
	}
}

// Register creates a user with role "user".
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if fields := validator.Validate(req); fields != nil {
		return nil, &FieldError{Message: "invalid registration data", Fields: fields}
	}

	usernameTaken, emailTaken, err := s.users.FindConflicts(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if usernameTaken || emailTaken {
		return nil, duplicateError(usernameTaken, emailTaken)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent registration
			usernameTaken, emailTaken, findErr := s.users.FindConflicts(ctx, req.Username, req.Email)
			if findErr == nil && (usernameTaken || emailTaken) {
				return nil, duplicateError(usernameTaken, emailTaken)
			}
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	user.Files = []string{}
	return user, nil
}

// Get returns any user with their file list.
func (s *Service) Get(ctx context.Context, sessionID string, id int64) (*domain.User, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, sessionID string) ([]domain.User, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return nil, err
	}

	list, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Files, err = s.lists.ListFileIDs(ctx, list[i].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Me returns the caller's own profile.
func (s *Service) Me(ctx context.Context, sessionID string) (*domain.User, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, err
	}
	return s.load(ctx, user.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, sessionID string, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.Email(email) {
		return nil, ErrInvalidEmail
	}

	if email != user.Email {
		_, emailTaken, err := s.users.FindConflicts(ctx, "", email)
		if err != nil {
			return nil, err
		}
		if emailTaken {
			return nil, duplicateError(false, true)
		}

		if err := s.users.UpdateEmail(ctx, user.ID, email); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, duplicateError(false, true)
			}
			return nil, s.notFound(err)
		}
	}
	return s.load(ctx, user.ID)
}

func (s *Service) ChangePassword(ctx context.Context, sessionID string, req ChangePasswordRequest) error {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.notFound(s.users.UpdatePasswordHash(ctx, user.ID, hash))
}

func (s *Service) UpdateRole(ctx context.Context, sessionID string, id int64, role string) (*domain.User, error) {
	admin, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin())
	if err != nil {
		return nil, err
	}

	r := domain.UserRole(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, ErrInvalidRole
	}
	if admin.ID == id {
		return nil, ErrOwnRole
	}

	if err := s.users.UpdateRole(ctx, id, r); err != nil {
		return nil, s.notFound(err)
	}
	slog.Info("user role changed", "user_id", id, "role", r, "by", admin.ID)
	return s.load(ctx, id)
}

// DeleteMyAccount removes the caller together with their files and sessions.
func (s *Service) DeleteMyAccount(ctx context.Context, sessionID string) error {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return err
	}
	return s.cascade.DeleteUser(ctx, user.ID)
}

func (s *Service) DeleteUser(ctx context.Context, sessionID string, id int64) error {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		return s.notFound(err)
	}
	return s.cascade.DeleteUser(ctx, id)
}

// DeleteAllUsers removes every user except the calling admin.
func (s *Service) DeleteAllUsers(ctx context.Context, sessionID string) (int64, error) {
	admin, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin())
	if err != nil {
		return 0, err
	}
	return s.cascade.DeleteUsersExcept(ctx, admin.ID)
}

func (s *Service) load(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	if user.Files, err = s.lists.ListFileIDs(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
