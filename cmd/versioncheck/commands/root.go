// Package commands implements the CLI commands for versioncheck.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/git-pkgs/versioncheck/all"
	"github.com/git-pkgs/versioncheck/client"
	"github.com/git-pkgs/versioncheck/internal/audit"
	"github.com/git-pkgs/versioncheck/internal/config"
	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/manifest"
	"github.com/git-pkgs/versioncheck/internal/report"
)

var (
	// ErrInconsistent is returned when at least one consistency group has
	// mismatched versions. The report has already been written.
	ErrInconsistent = zerr.New("version mismatches detected")
	// ErrReported is returned for failures already explained on stderr.
	ErrReported = zerr.New("error already reported")
)

type options struct {
	consistencyOnly bool
	dir             string
	manifest        string
	config          string
	source          string
	registry        string
	timeout         time.Duration
	concurrency     int
	json            bool
	noColor         bool
	verbose         bool
}

// CLI represents the command line interface for versioncheck.
type CLI struct {
	rootCmd *cobra.Command
	stdout  io.Writer
	stderr  io.Writer
	opts    options
}

// New creates a new CLI writing reports to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer) *CLI {
	c := &CLI{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "versioncheck",
		Short: "Audit package.json dependencies for upgrades and version drift",
		Long: `versioncheck compares the tracked packages of a project with the npm
registry, flags prerelease dependencies that have a stable release, and checks
that families of related packages are declared on the same version.

It exits with status 1 when a consistency group has mismatched versions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAudit(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	defaults := config.Default()
	flags := rootCmd.Flags()
	flags.BoolVar(&c.opts.consistencyOnly, "consistency-only", false, "Only check version consistency (no network)")
	flags.StringVar(&c.opts.dir, "dir", ".", "Project directory")
	flags.StringVar(&c.opts.manifest, "manifest", "", "Path to package.json (default: <dir>/package.json)")
	flags.StringVar(&c.opts.config, "config", "", "Path to config file (default: <dir>/"+config.FileName+")")
	flags.StringVar(&c.opts.source, "source", defaults.Source, "Version source: pnpm or npm")
	flags.StringVar(&c.opts.registry, "registry", "", "Registry URL")
	flags.DurationVar(&c.opts.timeout, "timeout", defaults.Timeout, "Timeout for each lookup")
	flags.IntVar(&c.opts.concurrency, "concurrency", defaults.Concurrency, "Maximum concurrent lookups")
	flags.BoolVar(&c.opts.json, "json", false, "Write the report as JSON")
	flags.BoolVar(&c.opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&c.opts.verbose, "verbose", "v", false, "Log lookup failures")

	rootCmd.AddCommand(c.newCompareCmd())

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) runAudit(cmd *cobra.Command) error {
	logger := c.newLogger()
	defer func() { _ = logger.Sync() }()

	manifestPath := c.opts.manifest
	if manifestPath == "" {
		manifestPath = filepath.Join(c.opts.dir, manifest.FileName)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		fmt.Fprintf(c.stderr, "❌ Failed to load package.json: %v\n", err)
		return ErrReported
	}

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	mode := report.Full
	if c.opts.consistencyOnly {
		mode = report.Fast
	}

	profile := report.ColorProfile()
	if c.opts.noColor || c.opts.json {
		profile = termenv.Ascii
	}
	renderer := report.NewRenderer(c.stdout, profile)

	var src core.Source
	if mode == report.Full {
		httpClient := client.NewClient(client.WithTimeout(cfg.Timeout))
		defer httpClient.Close()

		src, err = core.New(cfg.Source, core.Options{
			Dir:         c.opts.dir,
			RegistryURL: cfg.Registry,
			Client:      httpClient,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		if !c.opts.json {
			if err := renderer.Progress(); err != nil {
				return err
			}
		}
	}

	logger.Debug("starting audit",
		zap.String("manifest", m.Path),
		zap.Stringer("mode", mode),
		zap.String("source", cfg.Source))

	rep := audit.New(src, cfg, audit.WithLogger(logger)).Run(cmd.Context(), m, mode)

	if c.opts.json {
		err = report.WriteJSON(c.stdout, rep)
	} else {
		err = renderer.Render(rep)
	}
	if err != nil {
		return zerr.Wrap(err, "failed to write report")
	}

	if rep.ExitCode() != 0 {
		return ErrInconsistent
	}
	return nil
}

// loadConfig reads the config file and applies flags given on the command
// line on top of it.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.opts.config != "" {
		cfg, err = config.Load(c.opts.config)
	} else {
		cfg, err = config.LoadDir(c.opts.dir)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = c.opts.source
	}
	if flags.Changed("registry") {
		cfg.Registry = c.opts.registry
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.opts.timeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = c.opts.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr with a console encoder. Only warnings are shown
// unless --verbose is set.
func (c *CLI) newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if c.opts.verbose {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(c.stderr), level))
}
