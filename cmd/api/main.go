package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/autotls"
	log "github.com/sirupsen/logrus"

	"yatube/internal/config"
	"yatube/internal/pkg"
	"yatube/internal/repository/cache"
	"yatube/internal/repository/database"
	"yatube/internal/repository/memory"
	"yatube/internal/repository/redis"
	"yatube/internal/router"
	"yatube/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	logLevel := flag.String("log", "", "log level, overrides logLevel from the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[server] load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	log.SetLevel(level)
	log.Debugf("[server] config: %s", cfg)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	// 自动建表
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[server] migrate: %v", err)
	}

	// 连接redis，未配置时使用进程内缓存
	var store cache.Store
	if cfg.Redis.Addr != "" {
		rs, err := redis.Init(cfg.Redis)
		if err != nil {
			log.Fatalf("[server] %v", err)
		}
		defer rs.Close()
		store = rs
	} else {
		log.Warn("[server] redis not configured, using in-process cache")
		store = memory.New()
	}

	media, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("[server] storage: %v", err)
	}

	r := router.InitRouter(router.Deps{
		Config: cfg,
		DB:     db,
		Store:  store,
		Media:  media,
		Mailer: pkg.NewMailer(cfg.SMTP),
	})

	if len(cfg.Server.TLSDomains) > 0 {
		log.Infof("[server] starting with TLS for %v", cfg.Server.TLSDomains)
		if err := autotls.Run(r, cfg.Server.TLSDomains...); err != nil {
			log.Errorf("[server] autotls: %v", err)
		}
		return
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("[server] starting on %v", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
