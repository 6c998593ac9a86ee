// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaysongor/ducklens-backend/internal/api"
	"github.com/jaysongor/ducklens-backend/internal/cache"
	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/pipeline"
	"github.com/jaysongor/ducklens-backend/internal/service"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
	"github.com/jaysongor/ducklens-backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(os.Getenv("LOG_LEVEL"))
	log := logger.Log

	db, err := warehouse.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	wh := warehouse.New(db)
	ctx := context.Background()
	if err := wh.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	var summaryCache cache.SummaryCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, serving without cache")
			summaryCache = cache.NewNoop()
		} else {
			summaryCache = redisCache
			log.Info().Msg("summary cache enabled")
		}
	} else {
		summaryCache = cache.NewNoop()
	}

	insights := service.NewInsights(wh, summaryCache)
	runner := pipeline.NewRunner(wh, cfg.Analytics)
	refresh := service.NewRefresh(runner, insights)

	router := api.NewRouter(cfg, insights, refresh)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("insights API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
