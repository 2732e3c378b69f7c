package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalogconsole/internal/api"
	"catalogconsole/internal/auth"
	"catalogconsole/internal/catalog"
	"catalogconsole/internal/config"
	mydb "catalogconsole/internal/db"
	"catalogconsole/internal/logger"
	"catalogconsole/internal/web"
	"catalogconsole/internal/workspace"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		log.Fatal("failed to init logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := api.New(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout, zl.Named("api"))

	// snapshot mirror is optional; without DB_DSN the console only keeps data in memory
	var mirror catalog.Mirror
	if cfg.DBDSN != "" {
		db, err := mydb.Open(cfg.DBDSN)
		if err != nil {
			zl.Warn("catalog snapshot disabled", zap.Error(err))
		} else {
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			mirror = mydb.NewSnapshotRepository(db)
		}
	}

	registry := workspace.NewRegistry(client, mirror, zl.Named("workspace"))
	server := web.NewServer(registry, auth.NewAuthenticator(client, zl.Named("auth")), zl)

	store, err := auth.NewCookieStore(cfg.SessionSecret)
	if err != nil {
		zl.Fatal("cookie store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, time.Minute, cfg.WorkspaceIdle)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("console listening", zap.String("addr", srv.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
