package main

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"filesmanager/internal/domain"
	"filesmanager/internal/repository"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all users with their file counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			list, err := repository.NewUserRepository(a.DB).List(cmd.Context())
			if err != nil {
				return err
			}

			lists := repository.NewUserFileRepository(a.DB)
			counts := make(map[int64]int, len(list))
			for _, u := range list {
				ids, err := lists.ListFileIDs(cmd.Context(), u.ID)
				if err != nil {
					return err
				}
				counts[u.ID] = len(ids)
			}
			writeUsers(cmd.OutOrStdout(), list, counts)
			return nil
		},
	})
	return cmd
}

func writeUsers(w io.Writer, users []domain.User, fileCounts map[int64]int) {
	table := newTable(w, "ID", "Username", "Email", "Role", "Files", "Created")
	for _, u := range users {
		table.Append([]string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Email,
			string(u.Role),
			strconv.Itoa(fileCounts[u.ID]),
			u.CreatedAt.Format(time.RFC3339),
		})
	}
	table.Render()
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}
