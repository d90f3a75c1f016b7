package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hindsightlabs/hindsight/internal/archive"
	"github.com/hindsightlabs/hindsight/internal/config"
	"github.com/hindsightlabs/hindsight/internal/httpserver"
	"github.com/hindsightlabs/hindsight/internal/httpserver/deps"
	"github.com/hindsightlabs/hindsight/internal/inference"
	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/redis"
	"github.com/hindsightlabs/hindsight/internal/retry"
	"github.com/hindsightlabs/hindsight/internal/rules"
	"github.com/hindsightlabs/hindsight/internal/scheduler"
	redisstore "github.com/hindsightlabs/hindsight/internal/store/redis"
	"github.com/hindsightlabs/hindsight/internal/temporal"
	"github.com/hindsightlabs/hindsight/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.RulesReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	var redisClient *goredis.Client
	var memo *redisstore.Store
	if cfg.CacheEnabled {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		memo = redisstore.NewStore(client)
	} else {
		loggerClient.Info("memoization disabled, every lookup will hit upstream")
	}

	retryPolicy := retry.DefaultPolicy()
	retryPolicy.MaxAttempts = cfg.RetryMaxAttempts
	retryPolicy.InitialInterval = cfg.RetryInitialDelay
	retryPolicy.MaxInterval = cfg.RetryMaxDelay

	// Inference fallback for queries no deterministic rule matches
	var inferrer temporal.Inferencer
	if cfg.InferenceEndpoint != "" {
		loggerClient.Info("inference fallback enabled",
			logger.String("model", cfg.InferenceModel))
		inferrer = inference.WithRetry(inference.New(inference.Options{
			Endpoint: cfg.InferenceEndpoint,
			APIKey:   cfg.InferenceAPIKey,
			Model:    cfg.InferenceModel,
			Timeout:  cfg.InferenceTimeout,
		}), retryPolicy)
	} else {
		loggerClient.Info("inference fallback not configured, unmatched queries use the one-year-ago default")
	}

	// Rules holder starts on built-in defaults; the reloader installs the
	// file-based ruleset before the server takes traffic.
	holder := rules.NewHolder(inferrer, loggerClient)

	var locator archive.Finder = archive.NewLocator(archive.Options{
		CDXBaseURL:     cfg.CDXBaseURL,
		WaybackBaseURL: cfg.WaybackBaseURL,
		UserAgent:      cfg.UserAgent,
		RequestDelay:   cfg.ArchiveDelay,
		RequestTimeout: cfg.ArchiveTimeout,
		Retry:          retryPolicy,
		Validation:     holder.Validation,
	}, loggerClient)
	if memo != nil {
		locator = archive.NewCachedLocator(locator, memo, cfg.SnapshotTTL, loggerClient)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewRulesReloader(
		rules.NewLoader(cfg.RulesFile),
		holder,
		loggerClient,
		cfg.RulesReloadInterval,
		reloadTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		TrustProxy:    cfg.TrustProxy,
		RedisClient:   redisClient,
		Memo:          memo,
		ResolutionTTL: cfg.ResolutionTTL,
		Rules:         holder,
		RulesFile:     cfg.RulesFile,
		Locator:       locator,
		MaxOffsetDays: cfg.MaxOffsetDays,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Hindsight v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Hindsight %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start rules reloader (installs the ruleset and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rules reloader: %w", err)
	}
	a.logger.Info("rules reloader started",
		logger.Duration("interval", a.cfg.RulesReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Hindsight stopped cleanly")
	return nil
}
