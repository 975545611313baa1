package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cursorwatch/cursorwatch/pkg/api"
	"github.com/cursorwatch/cursorwatch/pkg/config"
	"github.com/cursorwatch/cursorwatch/pkg/poller"
	"github.com/cursorwatch/cursorwatch/pkg/store"
	redisstore "github.com/cursorwatch/cursorwatch/pkg/store/redis"
	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "cursorwatch-d").Logger()

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init store")
	}
	logger.Info().Str("path", cfg.DBPath).Msg("store initialized")

	if pruned, err := st.PruneFetches(context.Background(), cfg.Retention); err != nil {
		logger.Error().Err(err).Msg("history prune failed")
	} else if pruned > 0 {
		logger.Info().Int64("rows", pruned).Msg("pruned old fetch history")
	}

	var credentials config.Provider
	if cfg.ConfigPath != "" {
		credentials = config.FileProvider{Path: cfg.ConfigPath}
		logger.Info().Str("path", cfg.ConfigPath).Msg("reading credentials from file")
	} else {
		credentials = config.EnvProvider{}
		logger.Info().Msg("reading credentials from environment")
	}

	svc := usage.NewService(credentials,
		usage.WithLogger(logger),
		usage.WithNotifier(func(msg string) {
			logger.Warn().Str("notice", msg).Msg("usage fetch degraded")
		}),
	)

	var mirror poller.Mirror
	if cfg.RedisAddr != "" {
		rc := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		mirror = redisstore.NewSummaryMirror(rc)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("summary mirror enabled")
	}

	p := poller.New(svc, st, mirror, cfg.PollInterval, logger)
	srv := api.NewServer(svc, st, cfg.Addr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Start(ctx)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("api server failed")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Info().Str("signal", sig.String()).Msg("shutdown initiated")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api server shutdown failed")
	}
	if err := st.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close store")
	}

	logger.Info().Msg("shutdown complete")
}
