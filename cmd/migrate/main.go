// Command migrate applies, inspects and rolls back the innercircle schema.
package main

import (
	"context"
	"fmt"
	"os"

	"innercircle/internal/config"
	"innercircle/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connectFunc opens the database the commands operate on.
type connectFunc func() (*gorm.DB, *config.Config, error)

func connect() (*gorm.DB, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, cfg, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd(connect).ExecuteContext(context.Background())
}

func newRootCmd(open connectFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sharing graph schema",
		Long: `migrate applies the SQL migrations embedded in this binary to the
database configured by config.yml and the environment.

Commands:
  migrate up               Apply pending SQL migrations
  migrate auto             Run GORM AutoMigrate (refused in production)
  migrate status           Show the schema policy and each migration's state
  migrate down <version>   Roll back one applied migration`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newUpCmd(open))
	rootCmd.AddCommand(newAutoCmd(open))
	rootCmd.AddCommand(newStatusCmd(open))
	rootCmd.AddCommand(newDownCmd(open))
	return rootCmd
}
