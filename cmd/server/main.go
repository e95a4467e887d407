package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftline/forecast-backend/internal/api"
	"github.com/craftline/forecast-backend/internal/cache"
	"github.com/craftline/forecast-backend/internal/config"
	"github.com/craftline/forecast-backend/internal/forecast"
	"github.com/craftline/forecast-backend/internal/repository/postgres"
	"github.com/craftline/forecast-backend/internal/scheduler"
	"github.com/craftline/forecast-backend/internal/service"
	"github.com/craftline/forecast-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
		logger.SetLevel("debug")
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.SetLevel("info")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	materials := postgres.NewMaterialRepository(db)
	products := postgres.NewProductRepository(db)
	bom := postgres.NewBOMRepository(db)
	consumption := postgres.NewConsumptionRepository(db)
	orders := postgres.NewOrderRepository(db)
	snapshots := postgres.NewSnapshotRepository(db)
	runs := postgres.NewRunRepository(db)

	engine := forecast.NewEngine(materials, products, bom, consumption, orders, snapshots, runs, forecast.Config{
		HorizonDays:       cfg.Forecast.HorizonDays,
		HistoryWindowDays: cfg.Forecast.HistoryWindowDays,
		DefaultDailyUsage: cfg.Forecast.DefaultDailyUsage,
		WorkerCount:       cfg.Forecast.WorkerCount,
	})

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	forecastService := service.NewForecastService(engine, materials, snapshots, runs, forecastCache)

	sched, err := scheduler.New(forecastService, cfg.Forecast.ScheduleCron)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("scheduler setup failed")
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Log.Warn().Err(err).Msg("Scheduler shutdown failed")
		}
	}()

	router := api.NewRouter(&api.Services{ForecastService: forecastService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
