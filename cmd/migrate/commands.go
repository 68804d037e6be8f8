package main

import (
	"fmt"
	"strconv"

	"innercircle/internal/database"

	"github.com/spf13/cobra"
)

func newUpCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := open()
			if err != nil {
				return err
			}
			migrator, err := database.NewEmbeddedMigrator(db)
			if err != nil {
				return err
			}
			applied, err := migrator.Up(cmd.Context())
			for _, m := range applied {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", m)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			}
			return nil
		},
	}
}

func newAutoCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Create or update tables from the GORM models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := open()
			if err != nil {
				return err
			}
			cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "models migrated")
			return nil
		},
	}
}

func newStatusCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and each migration's state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := open()
			if err != nil {
				return err
			}
			status, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "mode=%s env=%s sql=%t auto=%t pending=%d\n",
				status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate, len(status.Pending()))
			for _, m := range status.Migrations {
				if m.Applied {
					_, _ = fmt.Fprintf(out, "applied  %s  %s\n", m.Migration, m.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
				} else {
					_, _ = fmt.Fprintf(out, "pending  %s\n", m.Migration)
				}
			}
			return nil
		},
	}
}

func newDownCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one applied migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version <= 0 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			db, _, err := open()
			if err != nil {
				return err
			}
			migrator, err := database.NewEmbeddedMigrator(db)
			if err != nil {
				return err
			}
			if err := migrator.Down(cmd.Context(), version); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rolled back %06d\n", version)
			return nil
		},
	}
}
