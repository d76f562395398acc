package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cddiagram/pkg/pipeline"
)

// describeCommand creates the describe command, which prints the graph
// description without running a layout engine.
func (c *CLI) describeCommand() *cobra.Command {
	var (
		flags    renderFlags
		asJSON   bool
		onlyStat bool
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the diagram's Graphviz description",
		Long: `Print the diagram's Graphviz (DOT) description to stdout.

The output can be piped into any Graphviz tool, for example:

  cddiagram describe | dot -Tsvg > pipeline.svg

With --json the graph model (nodes, clusters, edges) is printed instead.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			flags.apply(cmd.Flags(), &cfg)

			opts := cfg.PipelineOptions()
			opts.Format = "dot"
			if asJSON {
				opts.Format = "json"
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runDescribe(cmd, opts, onlyStat, cfg.Format)
		},
	}

	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "diagram title")
	cmd.Flags().StringVarP(&flags.direction, "direction", "d", "", "layout direction: LR, RL, TB, BT")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the graph model as JSON")
	cmd.Flags().BoolVar(&onlyStat, "stats", false, "print node, edge and cluster counts only")
	_ = cmd.RegisterFlagCompletionFunc("direction", fixedCompletion("LR, RL, TB, BT"))

	return cmd
}

func (c *CLI) runDescribe(cmd *cobra.Command, opts pipeline.Options, onlyStat bool, imageFormat string) error {
	ctx := cmd.Context()
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))

	d, err := runner.Build(ctx, opts)
	if err != nil {
		return err
	}

	if onlyStat {
		s := d.Stats()
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, StyleTitle.Render(d.Title()))
		printKeyValue(w, "Direction", string(d.Direction()))
		printKeyValue(w, "Nodes", fmt.Sprint(s.Nodes))
		printKeyValue(w, "Edges", fmt.Sprint(s.Edges))
		printKeyValue(w, "Clusters", fmt.Sprint(s.Clusters))
		printKeyValue(w, "File", d.Filename()+"."+imageFormat)
		return nil
	}

	data, err := runner.Render(ctx, d, opts)
	if err != nil {
		return err
	}
	return writeOut(cmd.OutOrStdout(), data)
}

func writeOut(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
