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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	coreauth "devhub/internal/core/auth"
	"devhub/internal/core/cache"
	"devhub/internal/core/config"
	"devhub/internal/core/database"
	"devhub/internal/core/logger"
	"devhub/internal/core/server"
	"devhub/internal/domain"
	"devhub/internal/identity"
	"devhub/internal/identity/clerk"
	"devhub/internal/reconcile"
	"devhub/internal/repo"
	"devhub/internal/transport/http/handler"
	mdw "devhub/internal/transport/http/middleware"
	"devhub/internal/transport/http/router"
	"devhub/internal/webhook"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &coreauth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// Identity provider client, with a redis-backed profile cache when
	// redis is configured.
	clerkClient := clerk.New(cfg.Clerk.SecretKey, cfg.Clerk.PublishableKey,
		cfg.Clerk.APIBase, time.Duration(cfg.Clerk.TimeoutSec)*time.Second)
	var provider identity.Provider = clerkClient
	if cfg.Redis.Addr != "" && cfg.Clerk.ProfileCacheSec > 0 {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		provider = identity.NewCached(provider, rc,
			time.Duration(cfg.Clerk.ProfileCacheSec)*time.Second)
		log.Info("identity profile cache enabled", zap.String("redis", cfg.Redis.Addr))
	}

	var verifier webhook.Verifier
	if cfg.Clerk.WebhookSecret != "" {
		v, err := webhook.NewSvixVerifier(cfg.Clerk.WebhookSecret)
		if err != nil {
			log.Fatal("webhook secret invalid", zap.Error(err))
		}
		verifier = v
	} else {
		log.Warn("webhook secret not configured, deliveries will be rejected")
	}

	users := repo.NewUserRepo(db)
	svc := reconcile.NewService(users, log)

	router.Register(handler.NewWebhookHandler(
		cfg.Clerk.WebhookSecret, verifier, clerkClient.Configured(), svc, log))
	router.Register(handler.NewSyncHandler(
		provider, svc, users, mdw.SessionJWT(jwter), log))

	r := router.NewAPIEngine(log)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("webhook", baseURL+"/api/v1/webhooks/clerk"),
		zap.String("sync", baseURL+"/api/v1/sync-user"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.Filename != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
			cfg.Log.Filename, cfg.Log.MaxSize, cfg.Log.Backups, cfg.Log.MaxAge)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
