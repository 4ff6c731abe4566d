// Package sessionstore holds the session store contract and its badger
// implementation. The SQL implementation is repository.SessionRepository.
package sessionstore

import (
	"context"
	"fmt"
	"time"

	"filesmanager/internal/domain"
	"filesmanager/internal/repository"

	"gorm.io/gorm"
)

// Store persists sessions. Get returns an error wrapping domain.ErrNotFound
// for unknown ids; Delete and DeleteByUser are idempotent.
type Store interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context) ([]domain.Session, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

const (
	BackendSQL    = "sql"
	BackendBadger = "badger"
)

// Open returns the store for backend. The returned close func releases
// backend resources and is never nil.
func Open(backend string, db *gorm.DB, badgerDir string) (Store, func() error, error) {
	switch backend {
	case "", BackendSQL:
		return repository.NewSessionRepository(db), func() error { return nil }, nil
	case BackendBadger:
		s, err := OpenBadger(badgerDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
