package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-member-search-go/migrations"
)

// NewMigrateCommand creates the migrate command with its up, down and version subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the member and team schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrationDB(cmd.Context(), rootOpts.Config.DB)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			version, err := migrations.Up(cmd.Context(), db, rootOpts.Config.DB.Dialect())
			if err != nil {
				return err
			}

			rootOpts.Logger.Info("migrations applied", "version", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrationDB(cmd.Context(), rootOpts.Config.DB)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := migrations.Down(cmd.Context(), db, rootOpts.Config.DB.Dialect()); err != nil {
				return err
			}

			rootOpts.Logger.Info("migrations rolled back")

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrationDB(cmd.Context(), rootOpts.Config.DB)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			version, err := migrations.Version(cmd.Context(), db, rootOpts.Config.DB.Dialect())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)

			return nil
		},
	})

	return cmd
}
