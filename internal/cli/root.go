// Package cli is the terminal front end: one cobra command per Record Store
// operation, an interactive shell that mirrors the web pages, and the serve
// command that starts the web server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/library-manager/internal/config"
	"github.com/mrlokans/library-manager/internal/entrypoint"
	"github.com/mrlokans/library-manager/internal/library"
)

// app carries what the commands share: configuration and how to open the library.
type app struct {
	version    string
	loadConfig func() *config.Config
	cfg        *config.Config

	// flag overrides, applied over the environment
	databasePath string
	coversDir    string
}

// NewRootCommand builds the library-manager command tree. Running it without
// a subcommand starts the web server.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&app{version: version, loadConfig: config.NewConfig})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "library-manager",
		Short:         "Catalogue your personal book collection",
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
	}

	root.PersistentFlags().StringVar(&a.databasePath, "database", "", "SQLite database file (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&a.coversDir, "covers-dir", "", "cover image directory (overrides COVERS_DIR)")

	root.AddCommand(
		newServeCommand(a),
		newAddCommand(a),
		newListCommand(a),
		newSearchCommand(a),
		newStatsCommand(a),
		newRemoveCommand(a),
		newShellCommand(a),
	)
	return root
}

func (a *app) prepare() error {
	a.cfg = a.loadConfig()
	if a.databasePath != "" {
		a.cfg.Database.Path = a.databasePath
	}
	if a.coversDir != "" {
		a.cfg.Storage.CoversDir = a.coversDir
	}
	return a.cfg.Resolve()
}

func (a *app) openLibrary() (*library.Library, error) {
	return library.Open(a.cfg)
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
	}
}
