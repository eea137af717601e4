// Command presence-server serves the presence analyzer HTTP API.
//
// Configuration comes from the environment (optionally a .env file). Sending
// SIGHUP purges the source cache so the next request re-reads both files.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-presence-analyzer/internal/cache"
	"github.com/tbourn/go-presence-analyzer/internal/config"
	httpapi "github.com/tbourn/go-presence-analyzer/internal/http"
	"github.com/tbourn/go-presence-analyzer/internal/observability"
	"github.com/tbourn/go-presence-analyzer/internal/services"
	"github.com/tbourn/go-presence-analyzer/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, "presence-server")
	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}

	c := cache.New()
	svc := services.NewPresenceService(c, cfg.DataCSV, cfg.DataXML)
	svc.AttendanceTTL = cfg.AttendanceTTL
	svc.DirectoryTTL = cfg.DirectoryTTL
	svc.NameLocale = cfg.NameLocale
	svc.Log = logger

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				c.Purge()
				logger.Info().Msg("source cache purged")
			}
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("version", ver).
		Str("data_csv", cfg.DataCSV).
		Str("data_xml", cfg.DataXML).
		Msg("presence-server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	logger.Info().Msg("presence-server stopped cleanly")
}
