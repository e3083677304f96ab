package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/KurtDeGreeff/habitat/cfg"
	"github.com/KurtDeGreeff/habitat/internal/account"
	"github.com/KurtDeGreeff/habitat/internal/authapi"
	"github.com/KurtDeGreeff/habitat/internal/session"
	"github.com/KurtDeGreeff/habitat/internal/telemetry"
	"github.com/KurtDeGreeff/habitat/pkg/cache"
	"github.com/KurtDeGreeff/habitat/pkg/db"
	"github.com/KurtDeGreeff/habitat/pkg/githubauth"
	"github.com/KurtDeGreeff/habitat/pkg/idgen"
	"github.com/KurtDeGreeff/habitat/pkg/logger"
	"github.com/KurtDeGreeff/habitat/pkg/sysinfo"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	zlog := logger.NewZeroLog(config.AppEnv)

	if ip, err := sysinfo.IP(); err == nil {
		zlog.Info("starting sessionsrv", logger.F("ip", ip))
	} else {
		zlog.Warn("could not determine local ip", logger.F("err", err))
	}

	// ============
	// telemetry
	// ============
	shutdownOtel, err := telemetry.Init(context.Background(), &config.Observability)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(ctx); err != nil {
			zlog.Error("failed to shutdown telemetry", logger.F("err", err))
		}
	}()

	// ============
	// storage
	// ============
	if err := db.Migrate("file://migrations", config.Database.URL); err != nil {
		log.Fatal(err)
	}
	sqlClient, err := db.NewPostgresClient(config.Database.URL)
	if err != nil {
		log.Fatal(err)
	}

	generator, err := idgen.NewSnowflakeGenerator(config.IDGenNode)
	if err != nil {
		log.Fatal(err)
	}
	accounts := account.NewRepo(sqlClient, generator)

	redisCache := cache.NewRedisCache(config.Redis.Host+":"+config.Redis.Port, config.Redis.Password)
	sessionTTL := time.Duration(config.SessionTTLMinutes) * time.Minute
	sessions := session.NewStore(redisCache, sessionTTL)

	// ============
	// github + HTTP
	// ============
	github := githubauth.NewClient(config.GitHub.URL, config.GitHub.ClientID, config.GitHub.ClientSecret)
	service := authapi.NewService(github, accounts, sessions, zlog)
	handler := authapi.NewHandler(service, config.SessionTTLMinutes*60)

	router := gin.Default()
	router.Use(otelgin.Middleware(config.Observability.ServiceName))
	handler.RegisterRoutes(router)

	if err := router.Run(config.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
