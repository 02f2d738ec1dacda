package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"security-assistant/config"
	"security-assistant/feed"
	"security-assistant/logging"
	"security-assistant/mail"
	"security-assistant/metrics"
	"security-assistant/monitor"
	"security-assistant/server"
	"security-assistant/vetting"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

			ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "security-assistant listening on %s\n", ln.Addr())
			return serve(ctx, cfg, ln, logger)
		},
	}
}

// serve wires every component and blocks until ctx is cancelled or a
// termination signal arrives.
func serve(ctx context.Context, cfg config.Config, ln net.Listener, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lexicon, err := newLexicon(cfg)
	if err != nil {
		return err
	}
	hist, err := openHistory(cfg.History, logger)
	if err != nil {
		return err
	}
	defer hist.Close()

	m := metrics.New()
	blocklist := feed.NewStore(cfg.Blocklist.Domains...)
	m.SetBlocklistSize(blocklist.Size())
	syncer := feed.NewSyncer(blocklist, cfg.Blocklist, logger.With("component", "feed"), feed.WithObserver(m))

	ev := monitor.NewEvaluator(newProvider(cfg.Signals), blocklist, logger.With("component", "monitor"),
		monitor.WithScorer(newScorer(cfg)),
		monitor.WithRecorder(hist),
		monitor.WithNotifier(vetting.NewLogNotifier(logger.With("component", "notify"))),
		monitor.WithObserver(m),
	)
	mailMon := mail.NewMonitor(lexicon, logger.With("component", "mail"),
		mail.WithRecorder(hist),
		mail.WithObserver(m),
	)

	if len(cfg.Blocklist.Feeds) > 0 || len(cfg.Blocklist.LocalLists) > 0 {
		go syncer.Run(ctx)
	}
	if cfg.Blocklist.WatchLocal && len(cfg.Blocklist.LocalLists) > 0 {
		w := feed.NewWatcher(syncer, cfg.Blocklist.LocalLists, 0, logger.With("component", "watcher"))
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("blocklist watcher stopped", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Handler:           server.New(ev, mailMon, hist, m, logger.With("component", "http")).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("server started", "addr", ln.Addr().String(), "blocklist_domains", blocklist.Size())

	select {
	case <-ctx.Done():
		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
}
