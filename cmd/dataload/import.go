package main

import (
	"fmt"
	"io"
	"os"

	"innercircle/internal/config"
	"innercircle/internal/database"
	"innercircle/internal/dataload"
	"innercircle/internal/middleware"

	"github.com/spf13/cobra"
)

func readExport(path string) (*dataload.File, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // G304: intentional CLI file read
		if err != nil {
			return nil, fmt.Errorf("open export: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return dataload.Decode(r)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an export for unknown users and bad dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readExport(args[0])
			if err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d users, %d posts\n", len(f.Users), len(f.Posts))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var opts dataload.Options

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load an export into the database",
		Long: `Load an export into the database in one transaction.

The scraper is the account that produced the export. It receives the given
email, so it can sign in, and joins every circle it does not own.

The import refuses to run against a database that already holds users or
posts unless --reset is given, which deletes the existing sharing graph first.

Examples:
  dataload import export.json --scraper-name "Sam Scraper" --scraper-email sam@example.com
  dataload import export.yml --scraper-name "Sam Scraper" --scraper-email sam@example.com --reset
  cat export.json | dataload import - --scraper-name "Sam Scraper" --scraper-email sam@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readExport(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer database.Close()

			loader := dataload.NewLoader(db, middleware.Logger)
			report, err := loader.Load(cmd.Context(), f, opts)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"imported %d users, %d posts, %d comments, %d images, %d videos, %d circles\n",
				report.Users, report.Posts, report.Comments, report.Images, report.Videos, report.Circles)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ScraperName, "scraper-name", "", "display name of the account that produced the export")
	cmd.Flags().StringVar(&opts.ScraperEmail, "scraper-email", "", "email to assign to the scraper account")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "delete the existing sharing graph before importing")
	_ = cmd.MarkFlagRequired("scraper-name")
	_ = cmd.MarkFlagRequired("scraper-email")

	return cmd
}
