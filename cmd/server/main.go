package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/config"
	httpserver "github.com/Clark-Hu/movie-score-api/internal/http"
	"github.com/Clark-Hu/movie-score-api/internal/logger"
	"github.com/Clark-Hu/movie-score-api/internal/repository"
	"github.com/Clark-Hu/movie-score-api/internal/service"
	"github.com/Clark-Hu/movie-score-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "error", "text").Error("config error", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cfg.MigrateOnStart {
		if err := store.Migrate(dbCtx, cfg.DBURL, log); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
	}

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 log,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	if err != nil {
		log.Error("init token service", "error", err)
		os.Exit(1)
	}

	repo := repository.New(st)
	users := service.NewUserService(repo.Users, auth.NewBcryptHasher(), tokens, st, log)
	server := httpserver.New(cfg, httpserver.Deps{
		Health: st,
		Movies: service.NewMovieService(repo.Movies, st, log),
		Scores: service.NewScoreService(repo.Movies, repo.Scores, users, st, log),
		Users:  users,
		Tokens: tokens,
	}, log)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("graceful shutdown error", "error", err)
	}
	stats := st.Stats()
	log.Info("server stopped",
		"db_total_conns", stats.TotalConns,
		"db_idle_conns", stats.IdleConns,
		"db_acquired_conns", stats.AcquiredConns)
}
