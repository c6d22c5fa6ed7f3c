package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/duragraph/duragraph/cmd/server/config"
	"github.com/duragraph/duragraph/internal/application/service"
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/infrastructure/auth"
	"github.com/duragraph/duragraph/internal/infrastructure/bricks"
	"github.com/duragraph/duragraph/internal/infrastructure/cache"
	"github.com/duragraph/duragraph/internal/infrastructure/http/handlers"
	"github.com/duragraph/duragraph/internal/infrastructure/http/middleware"
	"github.com/duragraph/duragraph/internal/infrastructure/maintenance"
	"github.com/duragraph/duragraph/internal/infrastructure/messaging"
	"github.com/duragraph/duragraph/internal/infrastructure/messaging/nats"
	"github.com/duragraph/duragraph/internal/infrastructure/monitoring"
	"github.com/duragraph/duragraph/internal/infrastructure/persistence/postgres"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := monitoring.InitTracer(ctx, monitoring.TracingConfig{
		ServiceName: "duragraph-server",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracer shutdown failed: %v", err)
		}
	}()

	dbConfig := postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	if err := postgres.Migrate(dbConfig.DSN(), cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbConfig)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer postgres.Close(pool)

	eventStore := postgres.NewEventStore(pool)
	outbox := postgres.NewOutbox(pool)

	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := nats.NewPublisher(cfg.NATS.URL, wmLogger)
	if err != nil {
		log.Fatalf("connect to NATS: %v", err)
	}
	defer publisher.Close()

	subscriber, err := nats.NewSubscriber(cfg.NATS.URL, "duragraph-server", wmLogger)
	if err != nil {
		log.Fatalf("connect to NATS subscriber: %v", err)
	}
	defer subscriber.Close()

	relay := messaging.NewOutboxRelay(outbox, publisher, time.Second, 100)
	go func() {
		if err := relay.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("outbox relay stopped: %v", err)
		}
	}()
	defer relay.Stop()

	scheduler := maintenance.NewScheduler()
	if err := scheduler.RegisterOutboxCleanup(outbox, "0 3 * * *", 7); err != nil {
		log.Fatalf("register outbox cleanup job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	registry := brick.NewRegistry()
	if err := bricks.RegisterAll(registry, bricks.LLMConfig{
		OpenAIKey:    cfg.LLM.OpenAIKey,
		AnthropicKey: cfg.LLM.AnthropicKey,
	}); err != nil {
		log.Fatalf("register bricks: %v", err)
	}

	var graphRepo graph.Repository = postgres.NewGraphRepository(pool, eventStore)
	runRepo := postgres.NewRunRepository(pool, eventStore)

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("connect to redis: %v", err)
		}
		defer redisCache.Close()
		graphRepo = cache.NewCachedGraphRepository(graphRepo, redisCache, registry, 5*time.Minute)
	}

	graphService := service.NewGraphService(graphRepo, registry)
	runService := service.NewRunService(runRepo, graphRepo, registry)

	metrics := monitoring.NewMetrics("duragraph")

	graphHandler := handlers.NewGraphHandler(graphService, runService)
	runHandler := handlers.NewRunHandler(runService)
	brickHandler := handlers.NewBrickHandler(registry)
	streamHandler := handlers.NewStreamHandler(subscriber)
	systemHandler := handlers.NewSystemHandler(GetVersion().Version)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler()
	e.Use(middleware.Logger())
	e.Use(middleware.Metrics(metrics))
	e.Use(otelecho.Middleware("duragraph-server"))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	if cfg.AuthEnabled {
		e.Use(middleware.OptionalAuth(cfg.JWTSecret))
	}

	if redisCache != nil {
		e.Use(middleware.RedisRateLimit(redisCache.Client(), 120, time.Minute))
	} else {
		e.Use(middleware.SimpleRateLimit(5, 20))
	}

	e.GET("/health", systemHandler.Ok)
	e.GET("/ok", systemHandler.Ok)
	e.GET("/info", systemHandler.Info)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/graphs", graphHandler.Create)
	e.GET("/graphs", graphHandler.List)
	e.POST("/graphs/validate", graphHandler.Validate)
	e.GET("/graphs/:id", graphHandler.Get)
	e.PUT("/graphs/:id", graphHandler.Update)
	e.DELETE("/graphs/:id", graphHandler.Delete)

	e.POST("/graphs/:graph_id/runs", runHandler.Create)
	e.GET("/graphs/:graph_id/runs", runHandler.List)
	e.GET("/runs/:id", runHandler.Get)
	e.POST("/runs/:id/step", runHandler.Step)
	e.POST("/runs/:id/cancel", runHandler.Cancel)
	e.GET("/runs/:run_id/stream", streamHandler.StreamRun)

	e.GET("/bricks", brickHandler.List)
	e.GET("/bricks/:id", brickHandler.Get)

	if cfg.OAuth.GoogleClientID != "" || cfg.OAuth.GitHubClientID != "" {
		if redisCache == nil {
			log.Fatal("OAuth provider configured but REDIS_ADDR is unset — state tokens need a store")
		}
		oauthManager := auth.NewOAuthManager(auth.OAuthConfig{
			GoogleClientID:     cfg.OAuth.GoogleClientID,
			GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
			GitHubClientID:     cfg.OAuth.GitHubClientID,
			GitHubClientSecret: cfg.OAuth.GitHubClientSecret,
			RedirectURL:        cfg.OAuth.RedirectURL,
			JWTSecret:          cfg.JWTSecret,
			StateStore:         cache.NewRedisStateStore(redisCache),
		})
		e.GET("/auth/google/login", oauthManager.LoginHandler(auth.ProviderGoogle))
		e.GET("/auth/google/callback", oauthManager.CallbackHandler(auth.ProviderGoogle))
		e.GET("/auth/github/login", oauthManager.LoginHandler(auth.ProviderGitHub))
		e.GET("/auth/github/callback", oauthManager.CallbackHandler(auth.ProviderGitHub))
	}

	e.Any("/webhooks/*", func(c echo.Context) error {
		return dispatchWebhook(c, runService)
	})

	go func() {
		addr := cfg.ServerAddr()
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// dispatchWebhook matches an inbound request against every active
// http_webhook emission context across all running runs and forwards
// it to the first one whose path and method agree. Routes can't be
// registered statically because a webhook's path is only known once a
// graph is bound and its run is active.
func dispatchWebhook(c echo.Context, runs *service.RunService) error {
	path := c.Request().URL.Path
	method := c.Request().Method

	for _, hc := range runs.WebhookContexts() {
		if hc.Path() == path && hc.Method() == method {
			hc.Handler()(c.Response(), c.Request())
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "no active webhook registered for this path")
}
