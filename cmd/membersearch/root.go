package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
)

// RootOptions holds state shared by all subcommands.
type RootOptions struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the membersearch root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "membersearch",
		Short:         "Dynamic member search over a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			opts.Config = cfg
			opts.Logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

			return nil
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}
