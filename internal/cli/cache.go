package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var cacheURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		Long: `Remove all cached artifacts.

Clears the local cache directory, or the cddiagram keys of the Redis server
given by --cache-url or the config file.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.cfg.Cache
			cc.Enabled = true
			if cmd.Flags().Changed("cache-url") {
				cc.URL = cacheURL
			}

			ctx := cmd.Context()
			ch, err := newCache(ctx, cc)
			if err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "open cache: %v", err)
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "this cache backend cannot be cleared")
			}
			if err := clearer.Clear(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "clear cache: %v", err)
			}

			printSuccess(cmd.OutOrStdout(), "Cache cleared")
			printDetail(cmd.OutOrStdout(), "%s", cacheLocation(ch))
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheURL, "cache-url", "", "redis URL of a shared cache")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Cache.Dir
			if dir == "" {
				d, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheLocation describes where ch keeps its entries.
func cacheLocation(ch cache.Cache) string {
	switch ch := ch.(type) {
	case *cache.FileCache:
		return "Directory: " + ch.Dir()
	case *cache.RedisCache:
		return "Redis"
	default:
		return "Disabled"
	}
}
