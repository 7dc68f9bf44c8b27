package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/transfer"
)

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the whole catalog and brew history as JSON (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			doc, err := a.transfer.Export(ctx)
			if err != nil {
				return err
			}

			if args[0] == "-" {
				return transfer.Encode(cmd.OutOrStdout(), doc)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := transfer.Encode(f, doc); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}
			a.out.PrintHint(fmt.Sprintf("Exported %d recipes, %d brews, %d roasters, %d grinders, %d charts to %s",
				len(doc.Data.Recipes), len(doc.Data.Brews), len(doc.Data.Roasters), len(doc.Data.Grinders), len(doc.Data.Charts), args[0]))
			return nil
		}),
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an export document (- for stdin); existing ids are left alone",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			doc, err := transfer.Decode(r)
			if err != nil {
				return err
			}
			rep, err := a.transfer.Import(ctx, doc)
			if err != nil {
				return err
			}

			row := func(kind string, c transfer.Counts) {
				a.out.PrintInstruction(fmt.Sprintf("%-9s %3d imported  %3d ignored", kind, c.Imported, c.Ignored))
			}
			a.out.PrintHeader("Import")
			row("roasters", rep.Roasters)
			row("grinders", rep.Grinders)
			row("recipes", rep.Recipes)
			row("brews", rep.Brews)
			row("charts", rep.Charts)
			a.out.PrintHint(fmt.Sprintf("%d imported, %d ignored", rep.Imported(), rep.Ignored()))
			return nil
		}),
	}
}
