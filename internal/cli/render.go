package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/cddiagram/pkg/config"
	"github.com/matzehuels/cddiagram/pkg/render"
)

// renderFlags holds the command-line flags for the render command.
// A flag only overrides the config file when it was set explicitly.
type renderFlags struct {
	title     string        // diagram caption and output file name
	direction string        // LR, RL, TB or BT
	output    string        // output file or directory
	format    string        // png, svg, pdf, jpg, dot or json
	engine    string        // dot or embedded
	timeout   time.Duration // layout engine deadline
	open      bool          // show the result in the default viewer
	noOpen    bool          // inverse of open
	cache     bool          // enable the artifact cache
	cacheURL  string        // redis:// URL for a shared cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the CI/CD pipeline diagram to an image",
		Long: `Render the CI/CD pipeline diagram to an image.

The output file is named after the normalized title, for example
cicd_deployment_pipeline_-_github_to_ec2.png, and is written atomically:
a failed run never leaves a partial file behind.

Flags override the config file, which overrides the built-in defaults.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			flags.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags.register(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("open", "no-open")

	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(formatList()))
	_ = cmd.RegisterFlagCompletionFunc("direction", fixedCompletion("LR, RL, TB, BT"))
	_ = cmd.RegisterFlagCompletionFunc("engine", fixedCompletion("dot, embedded"))

	return cmd
}

// register defines the render flags on fs, with the built-in defaults.
func (f *renderFlags) register(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringVarP(&f.title, "title", "t", d.Title, "diagram title")
	fs.StringVarP(&f.direction, "direction", "d", d.Direction, "layout direction: LR, RL, TB, BT")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (default <title>.<format>)")
	fs.StringVarP(&f.format, "format", "f", d.Format, "output format: "+formatList())
	fs.StringVar(&f.engine, "engine", d.Engine, "layout engine: dot, embedded")
	fs.DurationVar(&f.timeout, "timeout", d.Timeout, "layout engine timeout (0 disables)")
	fs.BoolVar(&f.open, "open", d.Open, "open the result in the default viewer")
	fs.BoolVar(&f.noOpen, "no-open", false, "do not open the result")
	fs.BoolVar(&f.cache, "cache", false, "reuse previously rendered artifacts")
	fs.StringVar(&f.cacheURL, "cache-url", "", "redis URL for a shared cache (implies --cache)")
}

// apply copies explicitly set flags over cfg.
func (f *renderFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("title") {
		cfg.Title = f.title
	}
	if fs.Changed("direction") {
		cfg.Direction = f.direction
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("format") {
		cfg.Format = f.format
	}
	if fs.Changed("engine") {
		cfg.Engine = f.engine
	}
	if fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if fs.Changed("open") {
		cfg.Open = f.open
	}
	if fs.Changed("no-open") && f.noOpen {
		cfg.Open = false
	}
	if fs.Changed("cache") {
		cfg.Cache.Enabled = f.cache
	}
	if fs.Changed("cache-url") {
		cfg.Cache.URL = f.cacheURL
		cfg.Cache.Enabled = f.cacheURL != ""
	}
}

// runRender builds, renders and writes the diagram, then opens it.
func (c *CLI) runRender(ctx context.Context, out io.Writer, cfg config.Config) error {
	runner := c.newRunner(ctx, cfg.Cache)
	defer runner.Close()

	opts := cfg.PipelineOptions()
	opts.Logger = loggerFromContext(ctx)

	spinner := renderSpinner(ctx, c.errOut, opts.Format, opts.Engine)
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess("Rendered %s", StyleHighlight.Render(res.Diagram.Title()))
	printStats(out, res.Stats, res.CacheHit)
	printFile(out, res.Path)

	if cfg.Open && opts.RenderFormat().NeedsEngine() {
		if err := render.Open(res.Path); err != nil {
			printWarning(c.errOut, "Could not open viewer: %s", userMessage(err))
		}
	}
	return nil
}

// formatList returns the supported formats for help text.
func formatList() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// fixedCompletion completes a flag from a comma-separated list.
func fixedCompletion(list string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	values := strings.Split(list, ", ")
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
