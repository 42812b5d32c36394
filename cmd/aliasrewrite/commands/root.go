// Package commands implements the aliasrewrite subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/config"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/observability"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/version"
)

// Sentinel errors returned by the commands.
var (
	// ErrWouldChange is returned by check when at least one file would be rewritten.
	ErrWouldChange = errors.New("files would be rewritten")
	// ErrFilesFailed is returned when some files could not be processed.
	ErrFilesFailed = errors.New("some files failed")
	// ErrNoAliases is returned when neither flags nor the config file name an alias.
	ErrNoAliases = errors.New("no aliases configured: pass --alias or add aliases to the config file")
)

// GlobalOptions holds the persistent flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	LogJSON    bool
}

// NewRootCommand builds the aliasrewrite command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "aliasrewrite",
		Short: "Rewrite module specifiers in TypeScript and JavaScript sources",
		Long: `aliasrewrite rewrites the module specifiers of TypeScript and JavaScript
files through an ordered list of regular-expression aliases.

Commands:
  rewrite   Rewrite files in place or into an output directory
  check     Report files that would change, exit 1 if any
  sites     List the module specifiers of a file
  mcp       Serve the rewrite tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file (default: .aliasrewrite.yaml in the working or home directory)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "Only log errors")
	pf.BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")

	root.AddCommand(
		NewRewriteCommand(opts),
		NewCheckCommand(opts),
		NewSitesCommand(opts),
		NewMCPCommand(opts),
		NewVersionCommand(),
	)

	return root
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}

// session is the configuration and telemetry of one command invocation.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

func (s *session) logger() *slog.Logger {
	return s.providers.Logger
}

func (s *session) close() {
	if err := s.providers.Shutdown(context.Background()); err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// open loads the configuration and starts telemetry. tune adjusts the
// observability settings before they are applied.
func (g *GlobalOptions) open(cmd *cobra.Command, mode observability.AppMode, tune ...func(*observability.Config)) (*session, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.Mode = mode
	obs.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obs.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obs.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obs.LogLevel = level
	obs.LogJSON = g.LogJSON || cfg.Log.JSON
	obs.LogOutput = cmd.ErrOrStderr()

	for _, fn := range tune {
		fn(&obs)
	}

	providers, err := observability.Init(obs)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	if cfg.File != "" {
		providers.Logger.Debug("loaded config", "file", cfg.File, "aliases", len(cfg.Aliases))
	}

	return &session{cfg: cfg, providers: providers}, nil
}
