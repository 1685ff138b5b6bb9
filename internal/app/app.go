package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ceacwatch/ceacwatch/internal/browser"
	"github.com/ceacwatch/ceacwatch/internal/config"
	"github.com/ceacwatch/ceacwatch/internal/httpserver"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/orchestrator"
	"github.com/ceacwatch/ceacwatch/internal/redis"
	"github.com/ceacwatch/ceacwatch/internal/scheduler"
	"github.com/ceacwatch/ceacwatch/internal/session"
	"github.com/ceacwatch/ceacwatch/internal/solver"
	"github.com/ceacwatch/ceacwatch/internal/sources/locations"
	redisstore "github.com/ceacwatch/ceacwatch/internal/store/redis"
	"github.com/ceacwatch/ceacwatch/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	chrome      *browser.Chrome
	store       *session.Store
	reaper      *scheduler.Reaper
	reloader    *scheduler.LocationsReloader
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional. Without it the service still checks statuses; only
	// the history archive and usage counters are disabled.
	var redisClient *goredis.Client
	var archive *redisstore.Store
	if cfg.RedisAddr != "" {
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
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
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		archive = redisstore.NewStore(client)
	} else {
		loggerClient.Info("redis not configured, history archive disabled")
	}

	chrome := browser.NewChrome(browser.Config{
		StatusURL:     cfg.StatusURL,
		Headless:      cfg.Headless,
		NavTimeout:    cfg.NavTimeout,
		SubmitTimeout: cfg.SubmitTimeout,
	}, loggerClient)

	var slv solver.Solver
	if cfg.SolverEndpoint != "" {
		slv = solver.NewHTTPSolver(cfg.SolverEndpoint, cfg.SolverTimeout)
		loggerClient.Info("captcha solver configured",
			logger.String("endpoint", cfg.SolverEndpoint))
	} else {
		loggerClient.Info("no captcha solver configured, automatic checks disabled")
	}

	store := session.NewStore(loggerClient)

	var orch *orchestrator.Orchestrator
	if archive != nil {
		orch = orchestrator.New(store, chrome, slv, archive, loggerClient)
	} else {
		orch = orchestrator.New(store, chrome, slv, nil, loggerClient)
	}

	reaper := scheduler.NewReaper(store, loggerClient, cfg.SweepInterval, cfg.SessionTimeout)

	locIndex := locations.NewIndex()
	var reloader *scheduler.LocationsReloader
	var reloadTrigger chan struct{}
	if cfg.LocationsFile != "" {
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewLocationsReloader(
			cfg.LocationsFile,
			locIndex,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("locations file not configured, location validation disabled")
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		Orchestrator:  orch,
		Archive:       archive,
		Locations:     locIndex,
		ReloadTrigger: reloadTrigger,

		DefaultMaxRetries: cfg.MaxRetries,

		TrustProxy:     cfg.TrustProxy,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		chrome:      chrome,
		store:       store,
		reaper:      reaper,
		reloader:    reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("starting visa-status-checker %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.SweepInterval),
		logger.Duration("timeout", a.cfg.SessionTimeout))

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start locations reloader: %w", err)
		}
		a.logger.Info("locations reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reaper.Stop()
	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Active sessions hold Chrome tabs; close them before the allocator.
	a.store.Shutdown()
	if err := a.chrome.Close(); err != nil {
		a.logger.Warnf("failed to close chrome: %v", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("visa-status-checker stopped cleanly")
	return nil
}
