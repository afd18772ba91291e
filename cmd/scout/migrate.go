package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfuentes/insider-scout/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			slog.Info(cli.FormatSuccess("Database is up to date"))
			return nil
		},
	}
}
