// Package cli wires the labeldb commands together with cobra.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ironsheep/labeldb/internal/config"
	"github.com/ironsheep/labeldb/internal/logger"
)

// BuildInfo is set from main's ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// App carries state shared by every command.
type App struct {
	fs     afero.Fs
	stderr io.Writer
	build  BuildInfo

	configPath string
	logLevel   string

	settings *config.Settings
	log      *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithFs sets the filesystem for the dataset, config and images, and for
// chart and showcase output. It does not cover the database, which is always
// opened on the OS filesystem at Paths.database_path.
func WithFs(fs afero.Fs) Option {
	return func(a *App) { a.fs = fs }
}

// WithStderr sends log output to w.
func WithStderr(w io.Writer) Option {
	return func(a *App) { a.stderr = w }
}

// RootCommand creates and returns the root command
func RootCommand(build BuildInfo, opts ...Option) *cobra.Command {
	app := &App{
		fs:     afero.NewOsFs(),
		stderr: os.Stderr,
		build:  build,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(app)
	}

	rootCmd := &cobra.Command{
		Use:           "labeldb",
		Short:         "Load, clean, and visualize YOLO-format annotation datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides Logging.level)")

	// Commands that do not need a dataset skip configuration loading.
	standalone := map[string]bool{}
	for _, cmd := range []*cobra.Command{greetCommand(), versionCommand(app)} {
		standalone[cmd.Name()] = true
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(
		ingestCommand(app),
		cleanCommand(app),
		processCommand(app),
		chartCommand(app),
		showcaseCommand(app),
		statsCommand(app),
		serveCommand(app),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if standalone[cmd.Name()] {
			return nil
		}
		return app.initialize()
	}

	return rootCmd
}

// initialize loads settings and builds the logger.
func (a *App) initialize() error {
	settings, err := config.Load(a.fs, a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	level := settings.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(a.stderr, level)
	a.log.Debug("configuration loaded", "path", a.configPath, "dataset_root", settings.Paths.DatasetRoot)
	return nil
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, build BuildInfo, args []string, opts ...Option) int {
	root := RootCommand(build, opts...)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
