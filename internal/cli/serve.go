package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cddiagram/pkg/config"
	"github.com/matzehuels/cddiagram/pkg/errors"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// serveCommand creates the serve command, a read-only HTTP preview of the
// diagram.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		flags renderFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram over HTTP",
		Long: `Serve the diagram over HTTP for previewing in a browser.

Endpoints:
  GET /healthz                    build information
  GET /diagram.{png,svg,pdf,jpg}  rendered image
  GET /diagram.{dot,json}         graph description

The title and direction query parameters override the configured values,
for example /diagram.svg?direction=TB.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			flags.apply(cmd.Flags(), &cfg)
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "layout engine: dot, embedded")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "layout engine timeout per request (0 disables)")
	cmd.Flags().BoolVar(&flags.cache, "cache", false, "reuse previously rendered artifacts")
	cmd.Flags().StringVar(&flags.cacheURL, "cache-url", "", "redis URL for a shared cache (implies --cache)")
	_ = cmd.RegisterFlagCompletionFunc("engine", fixedCompletion("dot, embedded"))

	return cmd
}

// runServe listens on cfg.Serve.Addr until ctx is cancelled, then shuts the
// server down gracefully.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	runner := c.newRunner(ctx, cfg.Cache)
	defer runner.Close()

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "cannot listen on %s", cfg.Serve.Addr)
	}

	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Handler:           newServer(runner, cfg.PipelineOptions(), logger).routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	printInfo(c.errOut, "Serving %s", StyleLink.Render("http://"+ln.Addr().String()+"/diagram.svg"))
	logger.Info("preview server started", "addr", ln.Addr().String(), "engine", cfg.Engine)
	uptime := newProgress(logger)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		uptime.done("Preview server stopped", "addr", ln.Addr().String())
		return nil
	}
}
