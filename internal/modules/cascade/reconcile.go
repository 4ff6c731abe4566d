package cascade

import (
	"context"
	"errors"
	"log/slog"

	"filesmanager/internal/domain"
)

// Report counts what a reconciliation pass repaired.
type Report struct {
	OrphanedFiles    int64 `json:"orphaned_files"`
	DanglingEntries  int64 `json:"dangling_entries"`
	MissingEntries   int64 `json:"missing_entries"`
	OrphanedSessions int64 `json:"orphaned_sessions"`
}

// Reconcile repairs what interrupted cascades can leave behind: files of
// deleted users, list entries for missing or foreign files, files absent
// from their owner's list and sessions of deleted users.
func (c *Coordinator) Reconcile(ctx context.Context) (Report, error) {
	ctx = context.WithoutCancel(ctx)
	var r Report

	orphaned, err := c.files.ListOrphaned(ctx)
	if err != nil {
		return r, err
	}
	for i := range orphaned {
		if err := c.DeleteFile(ctx, &orphaned[i]); err != nil {
			return r, err
		}
		r.OrphanedFiles++
	}

	if r.DanglingEntries, err = c.lists.DeleteDangling(ctx); err != nil {
		return r, err
	}
	if r.MissingEntries, err = c.lists.InsertMissing(ctx); err != nil {
		return r, err
	}
	if r.OrphanedSessions, err = c.deleteOrphanedSessions(ctx); err != nil {
		return r, err
	}

	c.metrics.Repaired("orphaned_file", r.OrphanedFiles)
	c.metrics.Repaired("dangling_entry", r.DanglingEntries)
	c.metrics.Repaired("missing_entry", r.MissingEntries)
	c.metrics.Repaired("orphaned_session", r.OrphanedSessions)

	slog.Info("reconcile finished",
		"orphaned_files", r.OrphanedFiles,
		"dangling_entries", r.DanglingEntries,
		"missing_entries", r.MissingEntries,
		"orphaned_sessions", r.OrphanedSessions,
	)
	return r, nil
}

func (c *Coordinator) deleteOrphanedSessions(ctx context.Context) (int64, error) {
	sessions, err := c.sessions.List(ctx)
	if err != nil {
		return 0, err
	}

	exists := map[int64]bool{}
	var n int64
	for _, s := range sessions {
		alive, seen := exists[s.UserID]
		if !seen {
			_, err := c.users.GetByID(ctx, s.UserID)
			switch {
			case err == nil:
				alive = true
			case errors.Is(err, domain.ErrNotFound):
				alive = false
			default:
				return n, err
			}
			exists[s.UserID] = alive
		}
		if alive {
			continue
		}
		deleted, err := c.sessions.Delete(ctx, s.ID)
		if err != nil {
			return n, err
		}
		if deleted {
			n++
		}
	}
	return n, nil
}
