// Command dataload imports an exported sharing graph into the database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "dataload",
		Short: "Import exported posts, users and sharing into innercircle",
		Long: `dataload reads an export of posts and users (JSON or YAML) and loads
it into the database configured by config.yml and the environment.

Commands:
  dataload validate <file>    Check an export without touching the database
  dataload import <file>      Load an export in a single transaction`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd.ExecuteContext(context.Background())
}
