package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"filesmanager/internal/app"
	"filesmanager/internal/config"
	"filesmanager/internal/logger"
)

type appKey struct{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "filesctl",
		Short:        "Administration commands for the files service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return appFrom(cmd).Close()
		},
	}

	root.AddCommand(newSeedAdminCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newSessionsCmd())
	root.AddCommand(newReconcileCmd())
	return root
}

func appFrom(cmd *cobra.Command) *app.App {
	return cmd.Context().Value(appKey{}).(*app.App)
}
