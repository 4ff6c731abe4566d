// Package cascade keeps ownership consistent: every file belongs to an
// existing user, and every user's file list names only files they own.
package cascade

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
	"filesmanager/internal/repository"
	"filesmanager/internal/storage"
)

// Coordinator propagates deletions. Every step is idempotent, so a cascade
// interrupted half way can simply be run again.
type Coordinator struct {
	users    *repository.UserRepository
	files    *repository.FileRepository
	lists    *repository.UserFileRepository
	sessions SessionStore
	blobs    storage.BlobStore
	metrics  *metrics.Metrics
}

func NewCoordinator(
	users *repository.UserRepository,
	files *repository.FileRepository,
	lists *repository.UserFileRepository,
	sessions SessionStore,
	blobs storage.BlobStore,
	m *metrics.Metrics,
) *Coordinator {
	return &Coordinator{
		users:    users,
		files:    files,
		lists:    lists,
		sessions: sessions,
		blobs:    blobs,
		metrics:  m,
	}
}

// DeleteFile removes the file row and its owner-list entry together.
// The blob is removed after commit.
func (c *Coordinator) DeleteFile(ctx context.Context, f *domain.File) error {
	ctx = context.WithoutCancel(ctx)

	var deleted bool
	err := c.files.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if deleted, err = c.files.WithTx(tx).Delete(ctx, f.ID); err != nil {
			return err
		}
		return c.lists.WithTx(tx).RemoveFile(ctx, f.ID)
	})
	if err != nil {
		return err
	}

	c.removeBlobs(ctx, []domain.File{*f})
	if deleted {
		c.metrics.CascadeDeleted("file", 1)
	}
	return nil
}

// DeleteFilesOwnedBy removes all of userID's files and clears their list.
// Rows are deleted by the ids read in the same transaction, so every
// removed row has its blob removed too.
func (c *Coordinator) DeleteFilesOwnedBy(ctx context.Context, userID int64) (int64, error) {
	ctx = context.WithoutCancel(ctx)

	var owned []domain.File
	err := c.files.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		owned, err = c.deleteOwnedTx(ctx, tx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	c.removeBlobs(ctx, owned)
	n := int64(len(owned))
	c.metrics.CascadeDeleted("file", n)
	return n, nil
}

func (c *Coordinator) deleteOwnedTx(ctx context.Context, tx *gorm.DB, userID int64) ([]domain.File, error) {
	files, lists := c.files.WithTx(tx), c.lists.WithTx(tx)

	owned, err := files.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := fileIDs(owned)
	if _, err := files.DeleteByIDs(ctx, ids); err != nil {
		return nil, err
	}
	if err := lists.RemoveFiles(ctx, ids); err != nil {
		return nil, err
	}
	if _, err := lists.DeleteDanglingOf(ctx, userID); err != nil {
		return nil, err
	}
	return owned, nil
}

// DeleteAllFiles removes every file and clears every user's list.
func (c *Coordinator) DeleteAllFiles(ctx context.Context) (int64, error) {
	ctx = context.WithoutCancel(ctx)

	var all []domain.File
	err := c.files.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		files, lists := c.files.WithTx(tx), c.lists.WithTx(tx)

		var err error
		if all, err = files.ListAll(ctx); err != nil {
			return err
		}
		ids := fileIDs(all)
		if _, err := files.DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		if err := lists.RemoveFiles(ctx, ids); err != nil {
			return err
		}
		_, err = lists.DeleteDangling(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	c.removeBlobs(ctx, all)
	n := int64(len(all))
	c.metrics.CascadeDeleted("file", n)
	return n, nil
}

// DeleteUser removes the user's files, then their sessions, then the user.
// The last step deletes the user row and any file committed for them in
// the meantime in one transaction, so no file outlives its owner.
func (c *Coordinator) DeleteUser(ctx context.Context, userID int64) error {
	ctx = context.WithoutCancel(ctx)

	if _, err := c.DeleteFilesOwnedBy(ctx, userID); err != nil {
		return fmt.Errorf("delete files of user %d: %w", userID, err)
	}

	n, err := c.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete sessions of user %d: %w", userID, err)
	}
	c.metrics.CascadeDeleted("session", n)

	var late []domain.File
	err = c.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := c.users.WithTx(tx).Delete(ctx, userID); err != nil {
			return err
		}
		var err error
		late, err = c.deleteOwnedTx(ctx, tx, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	if len(late) > 0 {
		c.removeBlobs(ctx, late)
		c.metrics.CascadeDeleted("file", int64(len(late)))
	}
	c.metrics.CascadeDeleted("user", 1)

	slog.Info("user deleted", "user_id", userID, "sessions", n)
	return nil
}

// DeleteUsersExcept cascades every user but keepID and returns how many
// were removed.
func (c *Coordinator) DeleteUsersExcept(ctx context.Context, keepID int64) (int64, error) {
	ids, err := c.users.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, id := range ids {
		if id == keepID {
			continue
		}
		if err := c.DeleteUser(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (c *Coordinator) removeBlobs(ctx context.Context, files []domain.File) {
	for _, f := range files {
		if f.StorageKey == "" {
			continue
		}
		if err := c.blobs.Delete(ctx, f.StorageKey); err != nil {
			slog.Warn("failed to delete blob", "file_id", f.ID, "key", f.StorageKey, "error", err)
		}
	}
}

func fileIDs(files []domain.File) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}
