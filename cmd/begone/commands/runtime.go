package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/begone/internal/blocklist"
	"github.com/benvon/begone/internal/cache"
	"github.com/benvon/begone/internal/config"
	logpkg "github.com/benvon/begone/internal/logger"
	"github.com/benvon/begone/internal/registry"
	"github.com/benvon/begone/internal/telemetry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds flushing traces and closing connections on exit
const shutdownTimeout = 5 * time.Second

// globalOptions are the flags shared by every command
type globalOptions struct {
	configPath string
	debug      bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "enable debug logging")
}

// runtime holds what a command needs once configuration is resolved
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	fetcher blocklist.RangeFetcher
	closers []func(context.Context) error
}

// newRuntime loads configuration, applies flag overrides and builds the
// logger, tracing and range fetcher. apply may adjust the config before it is
// validated.
func newRuntime(ctx context.Context, opts *globalOptions, apply func(*config.Config)) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.debug {
		cfg.Log.Debug = true
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zapLogger, err := logpkg.New(cfg.Log.Format, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zapLogger = zapLogger.With(zap.String("run_id", uuid.NewString()))
	rt := &runtime{cfg: cfg, logger: zapLogger}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	rt.closers = append(rt.closers, func(ctx context.Context) error { return shutdown(ctx) })

	rt.fetcher = registry.NewClient(registry.Options{
		BaseURL:           cfg.Registry.BaseURL,
		ResourceID:        cfg.Registry.ResourceID,
		MnemonicField:     cfg.Registry.MnemonicField,
		Timeout:           cfg.Registry.Timeout,
		RequestsPerSecond: cfg.Registry.RequestsPerSecond,
	}, zapLogger)

	if cfg.Cache.RedisURL != "" {
		store, err := cache.NewRedisRangeCache(cfg.Cache.RedisURL,
			cache.Scope(cfg.Registry.BaseURL, cfg.Registry.ResourceID, cfg.Registry.MnemonicField),
			cfg.Cache.TTL)
		if err != nil {
			zapLogger.Warn("range_cache_unavailable",
				zap.String("redis_url", logpkg.SanitizeURL(cfg.Cache.RedisURL)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
		} else {
			rt.fetcher = cache.NewFetcher(rt.fetcher, store, zapLogger)
			rt.closers = append(rt.closers, func(context.Context) error { return store.Close() })
		}
	}

	zapLogger.Debug("configuration_loaded",
		zap.String("registry_base_url", logpkg.SanitizeURL(cfg.Registry.BaseURL)),
		zap.Bool("cache_enabled", cfg.Cache.RedisURL != ""),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
	)
	return rt, nil
}

// close releases resources in reverse order and flushes the logger
func (r *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			r.logger.Warn("shutdown_failed", zap.String("error", logpkg.SanitizeError(err)))
		}
	}
	_ = logpkg.Sync(r.logger)
}
