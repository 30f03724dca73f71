package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/auth"
	"github.com/nextstepz/community/internal/cache"
	"github.com/nextstepz/community/internal/config"
	httpcontroller "github.com/nextstepz/community/internal/controller/http"
	"github.com/nextstepz/community/internal/database"
	commentdao "github.com/nextstepz/community/internal/domain/comment/dao"
	commentpolicy "github.com/nextstepz/community/internal/domain/comment/policy"
	commentservice "github.com/nextstepz/community/internal/domain/comment/service"
	companydao "github.com/nextstepz/community/internal/domain/company/dao"
	companyservice "github.com/nextstepz/community/internal/domain/company/service"
	leaderboarddao "github.com/nextstepz/community/internal/domain/leaderboard/dao"
	"github.com/nextstepz/community/internal/domain/leaderboard/scheduler"
	leaderboardservice "github.com/nextstepz/community/internal/domain/leaderboard/service"
	postdao "github.com/nextstepz/community/internal/domain/post/dao"
	postservice "github.com/nextstepz/community/internal/domain/post/service"
	questiondao "github.com/nextstepz/community/internal/domain/question/dao"
	questionservice "github.com/nextstepz/community/internal/domain/question/service"
	userdao "github.com/nextstepz/community/internal/domain/user/dao"
	userservice "github.com/nextstepz/community/internal/domain/user/service"
	httpmiddleware "github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/metrics"
	"github.com/nextstepz/community/internal/storage"
)

// APIPrefix is where the community API is mounted
const APIPrefix = "/api/v1/community"

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	// Infrastructure
	pool    *pgxpool.Pool
	redis   *redis.Client
	cache   *cache.Cache
	metrics *metrics.Metrics
	tokens  *auth.Tokens
	images  *storage.S3Storage

	// Domain services and policies (interfaces for HTTP handlers)
	users         *userservice.Service
	posts         *postservice.Service
	questions     *questionservice.Service
	commentPolicy *commentpolicy.Policy
	leaderboard   *leaderboardservice.Service
	companies     *companyservice.Service

	// Scheduler for recomputing the leaderboard
	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	app.initDomains()

	// Register routes
	if err := app.registerRoutes(); err != nil {
		app.close()
		return nil, fmt.Errorf("registering routes: %w", err)
	}

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Initialize scheduler
	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.leaderboard, scheduler.Config{
			Interval:     cfg.Scheduler.Interval,
			InitialDelay: cfg.Scheduler.InitialDelay,
		}, logger).WithRecorder(app.metrics)
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components (DB, Redis, S3)
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database.PostgresDSN, database.PoolOptions{
		MaxConns:     a.cfg.Database.MaxOpenConns,
		MinConns:     a.cfg.Database.MaxIdleConns,
		ConnLifetime: a.cfg.Database.ConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pool = pool

	if a.cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		a.logger.Info("database schema applied")
	}

	rdb, err := cache.NewClient(ctx, cache.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	if rdb == nil {
		a.logger.Warn("redis address not set, caching disabled")
	}
	a.redis = rdb
	a.cache = cache.New(rdb, a.cfg.Redis.Prefix)

	images, err := storage.NewS3Storage(storage.S3Config{
		Endpoint:        a.cfg.S3.Endpoint,
		AccessKeyID:     a.cfg.S3.AccessKeyID,
		SecretAccessKey: a.cfg.S3.SecretAccessKey,
		Bucket:          a.cfg.S3.Bucket,
		Region:          a.cfg.S3.Region,
		PublicURL:       a.cfg.S3.PublicURL,
		MaxSize:         a.cfg.S3.MaxUploadSize,
	})
	if err != nil {
		return fmt.Errorf("creating s3 storage: %w", err)
	}
	a.images = images

	a.metrics = metrics.New()
	a.tokens = auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer, a.cfg.Auth.TokenTTL)
	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains() {
	a.users = userservice.New(userdao.NewUserPostgres(a.pool), a.tokens)

	a.posts = postservice.New(postdao.NewPostPostgres(a.pool)).
		WithImageStore(a.images, a.logger)

	a.questions = questionservice.New(questiondao.NewQuestionPostgres(a.pool))

	comments := commentservice.New(commentdao.NewCommentPostgres(a.pool))
	a.commentPolicy = commentpolicy.New(comments, a.posts, a.questions).
		WithRecorder(a.metrics)

	a.leaderboard = leaderboardservice.New(leaderboarddao.NewLeaderboardPostgres(a.pool), a.cache, a.cfg.Redis.TTL)
	a.companies = companyservice.New(companydao.NewCompanyPostgres(a.pool), a.cache, a.cfg.Redis.TTL)
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() error {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Handle("/metrics", a.metrics.Handler())

	// Swagger UI documentation
	swaggerHandler, err := httpcontroller.NewSwaggerHandler("NextStepZ Community API", "", OpenAPISpec)
	if err != nil {
		return err
	}
	swaggerHandler.RegisterRoutes(a.router)

	a.router.Route(APIPrefix, func(r chi.Router) {
		r.Use(a.metrics.Middleware)
		if a.cfg.RateLimit.Enabled {
			r.Use(httpmiddleware.NewRateLimiter(a.cfg.RateLimit.PerMinute, a.cfg.RateLimit.Burst).Handler)
		}
		r.Use(httpmiddleware.Authenticate(a.tokens))

		httpcontroller.NewAuthHandler(a.users).RegisterRoutes(r)
		httpcontroller.NewUserHandler(a.users).RegisterRoutes(r)
		httpcontroller.NewPostHandler(a.posts).WithRecorder(a.metrics).RegisterRoutes(r)
		httpcontroller.NewCommentHandler(a.commentPolicy).RegisterRoutes(r)
		httpcontroller.NewQuestionHandler(a.questions).WithRecorder(a.metrics).RegisterRoutes(r)
		httpcontroller.NewLeaderboardHandler(a.leaderboard).RegisterRoutes(r)
		httpcontroller.NewCompanyHandler(a.companies).RegisterRoutes(r)
		httpcontroller.NewUploadHandler(a.images, a.logger).RegisterRoutes(r)
	})
	return nil
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler reports whether Postgres and, when configured, Redis answer
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"postgres": "ok"}
	status := http.StatusOK
	if err := a.pool.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(checks)
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start scheduler if enabled
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address(), "prefix", APIPrefix)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Stop scheduler
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	a.close()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
