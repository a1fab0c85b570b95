// Package cli is the hbprof command line.  Each command runs either against
// a profiling service built in-process from configuration or, with --server,
// against a running API server.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/application/profiling"
	"github.com/turtacn/hbond-profiler/internal/bootstrap"
	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/client"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// Set with -ldflags at release build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions are the persistent flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	ServerAddr   string
}

// CLIContext is what every subcommand receives.  Client is nil unless
// --server was given.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Client       *client.Client
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration

	infra *bootstrap.Infrastructure
}

func (c *CLIContext) Remote() bool { return c.Client != nil }

// Service opens the configured infrastructure on first call and returns
// its profiling service.
func (c *CLIContext) Service(ctx context.Context) (profiling.Service, error) {
	if c.infra != nil {
		return c.infra.Service, nil
	}
	infra, err := bootstrap.New(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	c.infra = infra
	return infra.Service, nil
}

func (c *CLIContext) Close() {
	if c.infra != nil {
		c.infra.Close()
		c.infra = nil
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

var outputFormats = map[string]bool{"text": true, "json": true, "table": true}

// NewRootCommand builds the hbprof command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	root := &cobra.Command{
		Use:   "hbprof",
		Short: "hbprof finds hydrogen bonds in molecular frames and profiles them across frames",
		Long: strings.Join([]string{
			"hbprof classifies donor/acceptor feature pairs as hydrogen bonds by distance and",
			"angle cutoffs, profiles the bonds found in every frame of a trajectory, and",
			"aggregates per-bond statistics across frames.",
		}, "\n"),
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (searched in ./hbprof.yaml, ~/.hbprof, /etc/hbprof when empty)")
	f.StringVar(&opts.LogLevel, "log-level", logging.LevelWarn, "log level: debug, info, warn or error")
	f.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format: text, json or table")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output, implies --log-level=debug")
	f.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	f.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "timeout of the whole command")
	f.StringVar(&opts.ServerAddr, "server", "", "API server base URL; empty runs in-process")

	root.AddCommand(newCheckCmd(), newProfileCmd(), newStatsCmd(), newRunsCmd(),
		newMigrateCmd(), newTailCmd(), newVersionCmd())
	return root
}

// setup validates the persistent flags and stores a CLIContext on cmd.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	format := strings.ToLower(o.OutputFormat)
	if !outputFormats[format] {
		return errors.InvalidParam(fmt.Sprintf("unknown output format %q; expected text, json or table", o.OutputFormat))
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := o.logger()
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		Verbose:      o.Verbose,
		NoColor:      o.NoColor,
		Timeout:      o.Timeout,
	}
	if o.ServerAddr != "" {
		cliCtx.Client, err = client.NewClient(o.ServerAddr,
			client.WithTimeout(o.Timeout),
			client.WithUserAgent("hbprof-cli/"+Version))
		if err != nil {
			return fmt.Errorf("client initialization failed: %w", err)
		}
	}
	if o.NoColor {
		color.NoColor = true
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, cliContextKey{}, cliCtx))
	return nil
}

// loadConfig reads --config, or the first default location that exists.
// Metrics are always off for the CLI.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadOrDefault(defaultConfigFile())
	}
	if err != nil {
		return nil, err
	}
	cfg.Metrics.Enabled = false
	return cfg, nil
}

func defaultConfigFile() string {
	candidates := []string{"./hbprof.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".hbprof", "config.yaml"))
	}
	candidates = append(candidates, "/etc/hbprof/config.yaml")
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// logger writes console-formatted entries to stderr so stdout stays
// parseable.
func (o *RootOptions) logger() (logging.Logger, error) {
	level := strings.ToLower(o.LogLevel)
	if o.Verbose {
		level = logging.LevelDebug
	}
	switch level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelError:
	default:
		level = logging.LevelWarn
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext returns the CLIContext stored by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command has no context")
	}
	if cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok && cliCtx != nil {
		return cliCtx, nil
	}
	return nil, errors.Internal("CLIContext not found in command context")
}

// runE adapts fn to cobra's RunE and closes the CLIContext afterwards.
func runE(fn func(cmd *cobra.Command, cliCtx *CLIContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cliCtx.Close()
		return fn(cmd, cliCtx, args)
	}
}

// commandContext bounds the command by --timeout; zero means no bound.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute runs hbprof with os.Args and prints any error to stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	PrintError(root, err)
	return err
}

//Personal.AI order the ending
