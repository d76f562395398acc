package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cddiagram/pkg/buildinfo"
	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/config"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cddiagram"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// errOut receives progress output such as the render spinner.
	errOut io.Writer

	// configPath is the --config flag; empty means the default location.
	configPath string

	// cfg is loaded by the root command's PersistentPreRunE.
	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		errOut: w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// Running the root command without a subcommand renders the diagram with the
// configured defaults, like `cddiagram render`.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cddiagram draws the GitHub to EC2 deployment pipeline",
		Long: `cddiagram renders an architecture diagram of a CI/CD deployment pipeline:
a push to the main branch fires a webhook, which passes the EC2 security
group, runs redeploy.sh and restarts the Docker runtime serving web users.

Layout is done by Graphviz, either the 'dot' binary or an embedded engine.`,
		Version:       buildinfo.Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Checked here so that conflicts report INVALID_INPUT like
			// other flag errors.
			if err := cmd.ValidateFlagGroups(); err != nil {
				return flagError(cmd, err)
			}
			if err := c.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), c.cfg)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(flagError)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cddiagram/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.describeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and, in verbose mode, registers logging hooks.
func (c *CLI) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.Logger.GetLevel() <= LogDebug {
		registerLogHooks(c.Logger)
	}
	c.Logger.Debug("loaded config",
		"path", c.configPath,
		"format", cfg.Format,
		"engine", cfg.Engine,
		"cache", cfg.Cache.Enabled)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache that cannot be
// opened is reported and replaced by the null cache.
func (c *CLI) newRunner(ctx context.Context, cc config.CacheConfig) *pipeline.Runner {
	ch, err := newCache(ctx, cc)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "error", err)
		ch = cache.NewNullCache()
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(ch, keyer, c.Logger)
}

// newCache opens the configured cache backend. Caching is opt-in so that a
// missing layout engine is always reported rather than masked by a stale hit.
func newCache(ctx context.Context, cc config.CacheConfig) (cache.Cache, error) {
	if !cc.Enabled {
		return cache.NewNullCache(), nil
	}
	if cc.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cc.URL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cc.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cddiagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Error Reporting
// =============================================================================

// noArgs rejects positional arguments as invalid input.
var noArgs = invalidArgs(cobra.NoArgs)

// invalidArgs makes argument validation failures INVALID_INPUT errors, so
// that they exit with the invalid-arguments status.
func invalidArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err)
		}
		return nil
	}
}

// flagError marks unknown flags, malformed values and conflicting flags as
// INVALID_INPUT. Subcommands inherit it from the root command.
func flagError(_ *cobra.Command, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err)
}

// ReportError prints err to w in the error style, without the code prefix.
func ReportError(w io.Writer, err error) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+styleErrorText.Render(userMessage(err)))
}
