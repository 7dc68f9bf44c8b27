// Package cli is the ottobrew command tree.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	DB         string // overrides database.path and selects sqlite
}

// NewRootCommand creates the root command for the ottobrew CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ottobrew",
		Short: "ottobrew - a pour-over brewing companion",
		Long: "Keep roasters, grinders and pour-over recipes, run timed brews stage by stage, " +
			"log how each cup tasted and chart your brews over time.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose && opts.Quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./ottobrew.yaml or the user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "disable all logging")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path")

	// Add subcommands
	cmd.AddCommand(NewRecipesCommand(opts))
	cmd.AddCommand(NewRoastersCommand(opts))
	cmd.AddCommand(NewGrindersCommand(opts))
	cmd.AddCommand(NewBrewsCommand(opts))
	cmd.AddCommand(NewBrewCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewChartsCommand(opts))
	cmd.AddCommand(NewAxesCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// run opens the app for the duration of one command.
func run(opts *RootOptions, fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", cerr)
			}
		}()
		return fn(ctx, a, cmd, args)
	}
}
