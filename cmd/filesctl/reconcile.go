package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair orphaned files, file lists and sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := appFrom(cmd).Cascade.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "orphaned files removed:     %d\n", r.OrphanedFiles)
			fmt.Fprintf(out, "dangling entries removed:   %d\n", r.DanglingEntries)
			fmt.Fprintf(out, "missing entries restored:   %d\n", r.MissingEntries)
			fmt.Fprintf(out, "orphaned sessions removed:  %d\n", r.OrphanedSessions)
			return nil
		},
	}
}
