package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/api-sage/bank-viewer/src/internal/buildinfo"
	"github.com/api-sage/bank-viewer/src/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bank-viewer",
		Short:   "View your bank accounts and transactions through the provider's OAuth2 API",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	serveCmd := newServeCommand()
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newAuditCommand())

	return rootCmd
}

var (
	loadConfig         = config.Load
	loadDatabaseConfig = config.LoadDatabase
)
