package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syncwatch/internal/config"
	"syncwatch/internal/daemon"
	"syncwatch/internal/dispatch"
	"syncwatch/internal/logger"
	"syncwatch/internal/poller"
	"syncwatch/internal/repository"
	"syncwatch/internal/watcher"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the event stream and run matching watcher commands",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	watchers := watcher.Load(cfg.Watchers)
	if len(watchers) == 0 {
		return errors.New("no watchers configured, add some under 'watchers' in the config file")
	}

	p, err := poller.New(poller.Config{
		BaseURL:               cfg.BaseURL,
		APIKey:                cfg.APIKey,
		EventTypes:            watcher.EventTypes(watchers),
		MaxRetries:            cfg.MaxRetries,
		RetryDelay:            cfg.RetryDelay(),
		MaxConnectionFailures: cfg.MaxConnectionFailures,
		StaleWindow:           cfg.StaleWindow(),
		RequestTimeout:        cfg.RequestTimeout(),
	})
	if err != nil {
		return err
	}

	histRepo := repository.NewHistoryRepository()
	loop := daemon.NewLoop(p, watchers, dispatch.NewRunner(cfg.Shell), histRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DaemonPort > 0 {
		srv := daemon.NewServer(loop, p, histRepo, cfg.DaemonPort)
		srv.Start()

		go func() {
			select {
			case <-srv.StopCh():
				logger.Log.Info("stop requested via API")
				stop()
			case <-ctx.Done():
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	config.Watch()

	if cfg.APIKey == "" {
		logger.Log.Warn("no API key configured, requests are sent unauthenticated")
	}

	logger.Log.Info("syncwatch started",
		zap.String("base_url", cfg.BaseURL),
		zap.Int("watchers", len(watchers)),
		zap.Strings("events", watcher.EventTypes(watchers)))

	if err := loop.Run(ctx); err != nil {
		reportFatal(err)
		return err
	}

	logger.Log.Info("shutting down")
	return nil
}

func reportFatal(err error) {
	switch {
	case errors.Is(err, poller.ErrUnauthorized):
		logger.Log.Error("the events API rejected our credentials, set SYNCWATCH_API_KEY (or SYNCTHING_API_KEY) to the Syncthing API key and retry",
			zap.Error(err))
	case errors.Is(err, poller.ErrMaxConnectionFailures):
		logger.Log.Error("the connection to the events API keeps dropping, check the network path and retry",
			zap.String("base_url", cfg.BaseURL),
			zap.Error(err))
	case errors.Is(err, poller.ErrMaxRetriesExceeded):
		logger.Log.Error(fmt.Sprintf("the events API is unreachable after %d attempts, check that Syncthing is running", cfg.MaxRetries),
			zap.String("base_url", cfg.BaseURL),
			zap.Error(err))
	default:
		logger.Log.Error("watch stopped", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
