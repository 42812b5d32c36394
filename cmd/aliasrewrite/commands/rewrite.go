package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/observability"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/report"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/alias"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/rewrite"
)

// RewriteOptions holds the flags of rewrite and check.
type RewriteOptions struct {
	Aliases []string
	OutDir  string
	DryRun  bool
	Format  string
	Workers int
	NoColor bool
}

func (ro *RewriteOptions) register(flags *pflag.FlagSet, withOutput bool) {
	flags.StringArrayVarP(&ro.Aliases, "alias", "a", nil,
		"Alias rule as pattern=replacement, applied after the config file's (repeatable)")
	flags.StringVar(&ro.Format, "format", ro.Format, "Output format: table, json, diff")
	flags.IntVar(&ro.Workers, "workers", 0, "Number of parallel workers (0 = config value, then CPU count)")
	flags.BoolVar(&ro.NoColor, "no-color", false, "Disable colored output")

	if withOutput {
		flags.StringVar(&ro.OutDir, "out-dir", "", "Write every processed file below this directory instead of rewriting in place")
		flags.BoolVar(&ro.DryRun, "dry-run", false, "Report what would change without writing")
	}
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(g *GlobalOptions) *cobra.Command {
	ro := &RewriteOptions{Format: string(report.FormatTable)}

	cmd := &cobra.Command{
		Use:   "rewrite [paths...]",
		Short: "Rewrite module specifiers in files and directories",
		Long: `Rewrite the module specifiers of every TypeScript and JavaScript file under the
given paths (default: the working directory). Only files that change are written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := executeRewrite(cmd, g, ro, args, ro.DryRun)

			return err
		},
	}

	ro.register(cmd.Flags(), true)

	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(g *GlobalOptions) *cobra.Command {
	ro := &RewriteOptions{Format: string(report.FormatDiff)}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Exit non-zero if any file would be rewritten",
		Long: `Run the rewrite without writing and print the diff of every file that would
change. The exit code is 1 when at least one file would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := executeRewrite(cmd, g, ro, args, true)
			if err != nil {
				return err
			}

			if n := rep.ChangedFiles(); n > 0 {
				return fmt.Errorf("%w: %d of %d", ErrWouldChange, n, len(rep.Files))
			}

			return nil
		},
	}

	ro.register(cmd.Flags(), false)

	return cmd
}

func executeRewrite(cmd *cobra.Command, g *GlobalOptions, ro *RewriteOptions, args []string, dryRun bool) (*runner.Report, error) {
	format, err := report.ParseFormat(ro.Format)
	if err != nil {
		return nil, err
	}

	extra, err := parseAliasFlags(ro.Aliases)
	if err != nil {
		return nil, err
	}

	sess, err := g.open(cmd, observability.ModeCLI)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	mapping, err := sess.cfg.Mapping(extra...)
	if err != nil {
		return nil, err
	}

	if mapping.Len() == 0 {
		return nil, ErrNoAliases
	}

	opts, err := runnerOptions(sess, ro, dryRun)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewRewriteMetrics(sess.providers.Meter)
	if err != nil {
		return nil, err
	}

	logger := sess.logger()

	host := compiler.NewHost(parse.NewParser(), compiler.WithLogger(logger))
	host.Attach(rewrite.New(mapping).Hooks())

	r := runner.New(host, opts,
		runner.WithLogger(logger),
		runner.WithTracer(sess.providers.Tracer),
		runner.WithMetrics(metrics),
	)

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	rep, err := r.Run(cmd.Context(), paths)
	if err != nil {
		return nil, err
	}

	if err := report.Write(cmd.OutOrStdout(), rep, format, report.Options{Color: !ro.NoColor && !color.NoColor}); err != nil {
		return nil, err
	}

	logger.Info("run complete",
		"files", len(rep.Files),
		"changed", rep.ChangedFiles(),
		"errors", rep.Errors(),
		"dry_run", dryRun,
		"duration", rep.Duration.Round(time.Millisecond),
	)

	if n := rep.Errors(); n > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrFilesFailed, n, len(rep.Files))
	}

	return rep, nil
}

func parseAliasFlags(raw []string) ([]alias.Entry, error) {
	entries := make([]alias.Entry, 0, len(raw))

	for _, r := range raw {
		e, err := alias.ParseEntry(r)
		if err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, nil
}

func runnerOptions(sess *session, ro *RewriteOptions, dryRun bool) (runner.Options, error) {
	maxSize, err := sess.cfg.MaxFileSizeBytes()
	if err != nil {
		return runner.Options{}, err
	}

	opts := runner.Options{
		Include:     sess.cfg.Include,
		Exclude:     sess.cfg.Exclude,
		SkipVendor:  sess.cfg.SkipVendor,
		Workers:     sess.cfg.Workers,
		MaxFileSize: maxSize,
		OutDir:      sess.cfg.OutDir,
		DryRun:      dryRun,
	}

	if ro.Workers > 0 {
		opts.Workers = ro.Workers
	}

	if ro.OutDir != "" {
		opts.OutDir = ro.OutDir
	}

	return opts, nil
}
