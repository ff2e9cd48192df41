package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance-scale/internal/config"
	"balance-scale/internal/db"
	"balance-scale/internal/logging"
	"balance-scale/internal/server"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	conn := openArchive(cfg)
	srv := server.New(conn, cfg)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Bool("archive", conn != nil).Msg("balance-scale server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("archive writes did not finish")
	}
}

// openArchive connects the optional match archive. It returns nil when
// DATABASE_URL is unset.
func openArchive(cfg config.Config) *gorm.DB {
	conn, err := db.Open()
	if errors.Is(err, db.ErrNoDatabase) {
		log.Info().Msg("DATABASE_URL not set, match archive disabled")
		return nil
	}
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	pool := db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
	}
	if err := db.Configure(conn, pool); err != nil {
		log.Fatal().Err(err).Msg("database pool setup failed")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	return conn
}
