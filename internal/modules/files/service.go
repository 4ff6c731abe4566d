package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/repository"
	"filesmanager/internal/storage"
)

const (
	maxCreateAttempts = 5
	maxNameLength     = 255
)

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Service is the file registry. Every operation authorizes the caller's
// session first.
type Service struct {
	authorizer Authorizer
	files      *repository.FileRepository
	lists      *repository.UserFileRepository
	users      *repository.UserRepository
	namer      *Namer
	blobs      storage.BlobStore
	cascade    Cascade
	metrics    *metrics.Metrics
	maxSize    int64
	now        func() time.Time
}

func NewService(
	authorizer Authorizer,
	files *repository.FileRepository,
	lists *repository.UserFileRepository,
	users *repository.UserRepository,
	blobs storage.BlobStore,
	cascade Cascade,
	m *metrics.Metrics,
	maxSize int64,
) *Service {
	return &Service{
		authorizer: authorizer,
		files:      files,
		lists:      lists,
		users:      users,
		namer:      NewNamer(files, m),
		blobs:      blobs,
		cascade:    cascade,
		metrics:    m,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// MaxSize is the upload ceiling in bytes.
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Upload stores the content and registers it under a collision-free name.
// The file row and the owner-list entry are written in one transaction.
func (s *Service) Upload(ctx context.Context, sessionID string, in UploadInput) (*FileView, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, err
	}

	candidate, err := cleanName(in.Filename)
	if err != nil {
		s.metrics.Upload("rejected")
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Content, s.maxSize+1))
	if err != nil {
		return nil, domain.NewError(domain.ErrValidation, "failed to read upload")
	}
	if len(data) == 0 {
		s.metrics.Upload("rejected")
		return nil, ErrEmptyFile
	}

	contentType := sniffContentType(data)
	if !allowedContentTypes[contentType] {
		s.metrics.Upload("rejected")
		return nil, ErrUnsupportedType
	}
	if int64(len(data)) > s.maxSize {
		s.metrics.Upload("rejected")
		return nil, ErrTooLarge
	}

	key := uuid.NewString()
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.metrics.Upload("failed")
		return nil, err
	}

	f, err := s.register(ctx, user.ID, candidate, key, contentType, int64(len(data)))
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			slog.Warn("failed to remove blob of failed upload", "key", key, "error", delErr)
		}
		s.metrics.Upload("failed")
		return nil, err
	}

	s.metrics.Upload("created")
	slog.Info("file uploaded", "file_id", f.ID, "owner_id", user.ID, "filename", f.Filename, "size", f.Size)

	view := NewView(f, user)
	return &view, nil
}

// register creates the file row while holding the owner's row, retrying
// with a fresh name when a concurrent upload claimed the resolved one first.
// An owner deleted since authorization fails the upload.
func (s *Service) register(ctx context.Context, ownerID int64, candidate, key, contentType string, size int64) (*domain.File, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name, counter, err := s.namer.Resolve(ctx, candidate)
		if err != nil {
			return nil, err
		}

		now := s.now()
		f := &domain.File{
			ID:           uuid.NewString(),
			Filename:     name,
			ContentType:  contentType,
			Size:         size,
			OwnerID:      ownerID,
			StorageKey:   key,
			Status:       domain.FileStatusActive,
			UploadedAt:   now,
			LastAccessed: now,
			LastModified: now,
		}

		err = s.files.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.users.WithTx(tx).LockExisting(ctx, ownerID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return auth.ErrNotAuthenticated
				}
				return err
			}
			if err := s.files.WithTx(tx).Create(ctx, f); err != nil {
				return err
			}
			return s.lists.WithTx(tx).Append(ctx, ownerID, f.ID)
		})
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.Upload("retried")
			slog.Debug("upload name taken concurrently, retrying", "name", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		if counter > 0 {
			if err := s.files.BumpNameCounter(ctx, candidate, counter); err != nil {
				slog.Warn("failed to update name counter", "name", candidate, "error", err)
			}
		}
		return f, nil
	}
	return nil, ErrNameConflict
}

// Get returns one file to its owner or an admin.
func (s *Service) Get(ctx context.Context, sessionID, id string) (*FileView, error) {
	user, f, err := s.load(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	view := NewView(f, user)
	return &view, nil
}

// ListOwned returns the caller's files in the order of their file list.
// Files missing from the list are appended and list entries without a
// file are skipped: ownership is decided by files.owner_id alone.
func (s *Service) ListOwned(ctx context.Context, sessionID string) ([]FileView, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, err
	}

	owned, err := s.files.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids, err := s.lists.ListFileIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	ordered := orderByList(owned, ids)
	if len(ordered) != len(ids) {
		slog.Warn("file list out of sync", "user_id", user.ID, "files", len(owned), "entries", len(ids))
	}
	return NewViews(ordered, user), nil
}

func orderByList(owned []domain.File, ids []string) []domain.File {
	byID := make(map[string]int, len(owned))
	for i := range owned {
		byID[owned[i].ID] = i
	}

	out := make([]domain.File, 0, len(owned))
	used := make(map[string]bool, len(owned))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		out = append(out, owned[i])
		used[id] = true
	}
	for i := range owned {
		if !used[owned[i].ID] {
			out = append(out, owned[i])
		}
	}
	return out
}

// ListAll returns every file. The listed files are marked accessed.
func (s *Service) ListAll(ctx context.Context, sessionID string) ([]FileView, error) {
	admin, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin())
	if err != nil {
		return nil, err
	}

	all, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, all); err != nil {
		return nil, err
	}
	return NewViews(all, admin), nil
}

// ListOwnedBy returns the files of another user. The listed files are
// marked accessed.
func (s *Service) ListOwnedBy(ctx context.Context, sessionID string, userID int64) ([]FileView, error) {
	admin, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin())
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	owned, err := s.files.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, owned); err != nil {
		return nil, err
	}
	return NewViews(owned, admin), nil
}

func (s *Service) touch(ctx context.Context, files []domain.File) error {
	if len(files) == 0 {
		return nil
	}

	now := s.now()
	ids := make([]string, len(files))
	for i := range files {
		ids[i] = files[i].ID
		files[i].LastAccessed = now
	}
	return s.files.TouchAccessed(ctx, ids, now)
}

// Rename gives a file a new name. Names are unique across all users;
// renaming a file to its current name changes nothing.
func (s *Service) Rename(ctx context.Context, sessionID, id, newName string) (*FileView, error) {
	user, f, err := s.load(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}

	name, err := cleanName(newName)
	if err != nil {
		return nil, err
	}
	if name == f.Filename {
		view := NewView(f, user)
		return &view, nil
	}

	taken, err := s.files.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameConflict
	}

	now := s.now()
	if err := s.files.Rename(ctx, f.ID, name, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrNameConflict
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	f.Filename = name
	f.LastModified = now
	view := NewView(f, user)
	return &view, nil
}

// Delete removes one file and its owner-list entry.
func (s *Service) Delete(ctx context.Context, sessionID, id string) error {
	_, f, err := s.load(ctx, sessionID, id)
	if err != nil {
		return err
	}
	return s.cascade.DeleteFile(ctx, f)
}

// DeleteAllMine removes all of the caller's files.
func (s *Service) DeleteAllMine(ctx context.Context, sessionID string) (int64, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return 0, err
	}
	return s.cascade.DeleteFilesOwnedBy(ctx, user.ID)
}

// DeleteAll removes every file of every user.
func (s *Service) DeleteAll(ctx context.Context, sessionID string) (int64, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return 0, err
	}
	return s.cascade.DeleteAllFiles(ctx)
}

func (s *Service) DeleteAllOwnedBy(ctx context.Context, sessionID string, userID int64) (int64, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return 0, err
	}
	return s.cascade.DeleteFilesOwnedBy(ctx, userID)
}

// Download opens the file content for its owner or an admin. The caller
// must close Body.
func (s *Service) Download(ctx context.Context, sessionID, id string) (*Download, error) {
	user, f, err := s.load(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}

	body, err := s.blobs.Open(ctx, f.StorageKey)
	if errors.Is(err, storage.ErrBlobNotFound) {
		slog.Error("file content missing", "file_id", f.ID, "key", f.StorageKey)
		return nil, ErrContentMissing
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.files.RecordDownload(ctx, f.ID, now); err != nil {
		slog.Warn("failed to record download", "file_id", f.ID, "error", err)
	} else {
		f.DownloadCount++
		f.LastAccessed = now
	}

	return &Download{File: NewView(f, user), Body: body}, nil
}

// load authenticates the caller, fetches the file and checks ownership.
func (s *Service) load(ctx context.Context, sessionID, id string) (*domain.User, *domain.File, error) {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return nil, nil, err
	}

	f, err := s.files.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.authorizer.Check(user, auth.MustOwn(f.OwnerID)); err != nil {
		return nil, nil, err
	}
	return user, f, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || len(name) > maxNameLength {
		return "", ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	return filepath.Clean(name), nil
}

func sniffContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
