package languages

import (
	"context"
	"errors"
	"strings"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/repository"
)

var (
	ErrLanguageNotFound = domain.NewError(domain.ErrNotFound, "language not found")
	ErrDuplicateName    = domain.NewError(domain.ErrValidation, "a language with this name already exists")
	ErrInvalidLanguage  = domain.NewError(domain.ErrValidation, "name and display_name are required")
)

type Authorizer interface {
	Authorize(ctx context.Context, sessionID string, req auth.Requirement) (*domain.User, error)
}

type LanguageRequest struct {
	Name        string `json:"name" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

type Service struct {
	authorizer Authorizer
	repo       *repository.LanguageRepository
}

func NewService(authorizer Authorizer, repo *repository.LanguageRepository) *Service {
	return &Service{authorizer: authorizer, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Language, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Language, error) {
	l, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrLanguageNotFound
	}
	return l, err
}

// Create adds a language tagged with the caller's username.
func (s *Service) Create(ctx context.Context, sessionID string, req LanguageRequest) (*domain.Language, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, err
	}

	name, display, err := clean(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	l := &domain.Language{Name: name, DisplayName: display, CreatedBy: user.Username}
	if err := s.repo.Create(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, sessionID string, id int64, req LanguageRequest) (*domain.Language, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return nil, err
	}

	name, display, err := clean(req)
	if err != nil {
		return nil, err
	}

	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != l.Name {
		exists, err := s.repo.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateName
		}
	}

	l.Name = name
	l.DisplayName = display
	if err := s.repo.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, sessionID string, id int64) error {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLanguageNotFound
	}
	return nil
}

func clean(req LanguageRequest) (string, string, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	display := strings.TrimSpace(req.DisplayName)
	if name == "" || display == "" {
		return "", "", ErrInvalidLanguage
	}
	return name, display, nil
}
