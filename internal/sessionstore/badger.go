package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"filesmanager/internal/domain"
)

const (
	prefixSession     = "session/"
	prefixUserSession = "user/"
)

// BadgerStore keeps sessions in badger. Entries carry a TTL matching the
// session expiry so the engine drops them on its own.
type BadgerStore struct {
	db *badgerdb.DB
}

// OpenBadger opens a store under dir; an empty dir keeps everything in memory.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger session store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func sessionKey(id string) []byte {
	return []byte(prefixSession + id)
}

func userPrefix(userID int64) []byte {
	return []byte(prefixUserSession + strconv.FormatInt(userID, 10) + "/")
}

func userSessionKey(userID int64, id string) []byte {
	return append(userPrefix(userID), id...)
}

func (s *BadgerStore) Create(_ context.Context, sess *domain.Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		primary := badgerdb.NewEntry(sessionKey(sess.ID), val)
		index := badgerdb.NewEntry(userSessionKey(sess.UserID, sess.ID), []byte(sess.ID))
		if ttl := time.Until(sess.ExpiresAt); ttl > 0 {
			primary = primary.WithTTL(ttl)
			index = index.WithTTL(ttl)
		}
		if err := txn.SetEntry(primary); err != nil {
			return err
		}
		return txn.SetEntry(index)
	})
	if err != nil {
		return fmt.Errorf("create session: %w: %v", domain.ErrStore, err)
	}
	return nil
}

func (s *BadgerStore) Get(_ context.Context, id string) (*domain.Session, error) {
	var sess *domain.Session
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		sess, err = getTx(txn, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "get session")
	}
	return sess, nil
}

func getTx(txn *badgerdb.Txn, id string) (*domain.Session, error) {
	item, err := txn.Get(sessionKey(id))
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &sess)
	}); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *BadgerStore) Delete(_ context.Context, id string) (bool, error) {
	deleted := false
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		sess, err := getTx(txn, id)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted = true
		return deleteTx(txn, sess.UserID, id)
	})
	if err != nil {
		return false, translate(err, "delete session")
	}
	return deleted, nil
}

func deleteTx(txn *badgerdb.Txn, userID int64, id string) error {
	if err := txn.Delete(sessionKey(id)); err != nil {
		return err
	}
	return txn.Delete(userSessionKey(userID, id))
}

func (s *BadgerStore) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		ids, err := userSessionIDsTx(txn, userID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := deleteTx(txn, userID, id); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, translate(err, "delete user sessions")
	}
	return n, nil
}

func userSessionIDsTx(txn *badgerdb.Txn, userID int64) ([]string, error) {
	prefix := userPrefix(userID)
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *BadgerStore) List(_ context.Context) ([]domain.Session, error) {
	sessions := []domain.Session{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		prefix := []byte(prefixSession)
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sess domain.Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sess)
			}); err != nil {
				return err
			}
			sessions = append(sessions, sess)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "list sessions")
	}
	sortByCreated(sessions)
	return sessions, nil
}

func (s *BadgerStore) ListByUser(_ context.Context, userID int64) ([]domain.Session, error) {
	sessions := []domain.Session{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		ids, err := userSessionIDsTx(txn, userID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			sess, err := getTx(txn, id)
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			sessions = append(sessions, *sess)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "list user sessions")
	}
	sortByCreated(sessions)
	return sessions, nil
}

// DeleteExpired removes sessions whose expiry has passed but whose TTL has
// not been collected yet.
func (s *BadgerStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		for i := range all {
			if !all[i].IsExpired(now) {
				continue
			}
			if err := deleteTx(txn, all[i].UserID, all[i].ID); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, translate(err, "delete expired sessions")
	}
	return n, nil
}

func sortByCreated(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}

func translate(err error, what string) error {
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", what, domain.ErrStore, err)
}
