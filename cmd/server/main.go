package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/wallbox/relay/api/handler"
	"github.com/wallbox/relay/internal/config"
	redisInfra "github.com/wallbox/relay/internal/infrastructure/redis"
	"github.com/wallbox/relay/internal/middleware"
	"github.com/wallbox/relay/internal/odoo"
	"github.com/wallbox/relay/internal/router"
	"github.com/wallbox/relay/internal/services"
	"github.com/wallbox/relay/internal/services/lifecycle"
	"github.com/wallbox/relay/pkg/httpcontext"
	"github.com/wallbox/relay/pkg/logger"
	"github.com/wallbox/relay/repository"
	memoryRepo "github.com/wallbox/relay/repository/memory"
	redisRepo "github.com/wallbox/relay/repository/redis"
	odooUC "github.com/wallbox/relay/usecase/odoo"
	relayUC "github.com/wallbox/relay/usecase/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var sessionStore repository.SessionStore
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		sessionStore = redisRepo.NewSessionStore(redisClient, cfg.Session.Timeout)
		zapLogger.Info("using redis session store")
	default:
		sessionStore = memoryRepo.NewSessionStore(cfg.Session.Timeout)
		zapLogger.Info("using in-memory session store")
	}

	sweeper := services.NewSweeper(sessionStore, cfg.Session.SweepInterval, zapLogger)
	sweeper.Start()
	manager.Register("sweeper", func(ctx context.Context) error {
		sweeper.Stop()
		return nil
	})

	odooClient := odoo.NewClient(cfg.Upstream.Timeout, zapLogger)
	relayUseCase := relayUC.New(sessionStore, odooClient, zapLogger)
	odooUseCase := odooUC.New(odooClient, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Proxy:     apiHandler.NewProxyHandler(relayUseCase, ctxAdapter, zapLogger),
		Auth:      apiHandler.NewAuthHandler(odooUseCase, ctxAdapter, zapLogger, cfg.Upstream.DefaultURL, cfg.Upstream.DefaultDatabase),
		Call:      apiHandler.NewCallHandler(odooUseCase, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(odooUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(cfg.AppName, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      middleware.CORS(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("relay started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
