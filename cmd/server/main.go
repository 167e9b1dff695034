package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notedrop/notes-api/internal/api"
	"github.com/notedrop/notes-api/internal/core/ports"
	"github.com/notedrop/notes-api/internal/core/service"
	"github.com/notedrop/notes-api/internal/infrastructure/config"
	mongodb "github.com/notedrop/notes-api/internal/infrastructure/db/mongo"
	redisdb "github.com/notedrop/notes-api/internal/infrastructure/db/redis"
	"github.com/notedrop/notes-api/internal/infrastructure/reaper"
	"github.com/notedrop/notes-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Notes API
// @version      1.0
// @description  Note sharing service with short-lived share codes.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	noteRepo := mongodb.NewNoteRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("note index creation failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	var rdb *redis.Client
	var cache ports.NoteCache
	if cfg.Redis.Addr != "" {
		c, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer c.Close()
		rdb = c
		cache = redisdb.NewNoteCache(c)
	} else {
		log.Info().Msg("retrieve cache disabled, REDIS_ADDR not set")
	}

	notes := service.NewNoteService(noteRepo, cache, service.NewShareCodeGenerator(nil), log)
	auth := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	if cfg.ReapInterval > 0 {
		reaper.New(notes, cfg.ReapInterval, log).Start(ctx)
	}

	e := api.NewRouter(api.RouterConfig{
		Notes:     notes,
		Auth:      auth,
		DB:        db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}
}
