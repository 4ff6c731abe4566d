package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"filesmanager/internal/domain"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and clean up sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := appFrom(cmd).Sessions.List(cmd.Context())
			if err != nil {
				return err
			}
			writeSessions(cmd.OutOrStdout(), list, time.Now())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := appFrom(cmd).Reaper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired sessions\n", n)
			return nil
		},
	})
	return cmd
}

func writeSessions(w io.Writer, sessions []domain.Session, now time.Time) {
	table := newTable(w, "ID", "User", "Expires", "Expired", "User agent")
	for _, s := range sessions {
		table.Append([]string{
			s.ID,
			strconv.FormatInt(s.UserID, 10),
			s.ExpiresAt.Format(time.RFC3339),
			strconv.FormatBool(s.IsExpired(now)),
			s.UserAgent,
		})
	}
	table.Render()
}
