package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	content "wedding-site/api"
	"wedding-site/pkg/database"
	"wedding-site/pkg/logger"
	"wedding-site/pkg/site"
	web "wedding-site/web"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one of the HTTP services",
}

var serveContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Run the content service (guests, pages, header, locales)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg, "content")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := database.GetDatabase(ctx, content.DatabaseConfig(cfg))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.CleanupIdleConnections(0)

		srv := newHTTPServer(":"+cfg.Port, content.NewRouter(cfg, db, log))
		return runServer(ctx, srv, log, nil)
	},
}

var serveWebCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the presentation service (pages, RSVP relay, contact, admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg, "web")
		if !cfg.MailEnabled() {
			log.Warn().Msg("RESEND_API_KEY not set, emails are logged only")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := site.NewDeps(cfg, log)
		srv := newHTTPServer(":"+cfg.WebPort, web.NewRouter(deps))

		sweepLog := logger.Component(log, "ratelimit")
		background := func(ctx context.Context, g *errgroup.Group) {
			g.Go(func() error {
				deps.Limiter.Run(ctx, cfg.ContactSweepInterval, sweepLog)
				return nil
			})
			g.Go(func() error {
				deps.LoginLimiter.Run(ctx, cfg.ContactSweepInterval, sweepLog)
				return nil
			})
		}

		err = runServer(ctx, srv, log, background)

		// drain queued notifications after the listener stops
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := deps.Dispatcher.Close(drainCtx); cerr != nil {
			log.Warn().Err(cerr).Msg("notification queue not fully drained")
		}
		return err
	},
}

func init() {
	serveCmd.AddCommand(serveContentCmd)
	serveCmd.AddCommand(serveWebCmd)
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
// background tasks share the group context and stop with the server.
func runServer(ctx context.Context, srv *http.Server, log zerolog.Logger, background func(context.Context, *errgroup.Group)) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if background != nil {
		background(gctx, g)
	}
	return g.Wait()
}
