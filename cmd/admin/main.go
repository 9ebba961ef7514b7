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
	"devhub/internal/core/config"
	"devhub/internal/core/database"
	"devhub/internal/core/logger"
	"devhub/internal/core/server"
	"devhub/internal/domain"
	"devhub/internal/repo"
	"devhub/internal/transport/http/handler"
	"devhub/internal/transport/http/router"
	"devhub/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.AdminAccount{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
	}

	jwter := &coreauth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	users := repo.NewUserRepo(db)
	admins := repo.NewAdminRepo(db)
	bootstrapAdmin(cfg, admins, log)

	adminH := handler.NewAdminHandler(users, admins, jwter, log)
	router.Register(adminH)

	r := router.NewAdminEngine(log, adminH, jwter)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

// bootstrapAdmin seeds the first back-office account from config so a fresh
// deployment is reachable. Does nothing once any account exists.
func bootstrapAdmin(cfg *config.Config, admins domain.AdminRepository, log *zap.Logger) {
	if cfg.Bootstrap.Email == "" || cfg.Bootstrap.Password == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := admins.Count(ctx)
	if err != nil {
		log.Fatal("admin bootstrap count failed", zap.Error(err))
	}
	if n > 0 {
		return
	}
	acct := &domain.AdminAccount{
		ID:           utils.NewID(),
		Email:        cfg.Bootstrap.Email,
		PasswordHash: utils.HashPassword(cfg.Bootstrap.Password),
		DisplayName:  "Administrator",
		Role:         domain.AdminRoleAdmin,
	}
	if err := admins.Create(ctx, acct); err != nil {
		log.Fatal("admin bootstrap failed", zap.Error(err))
	}
	log.Info("admin account bootstrapped", zap.String("email", acct.Email))
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
