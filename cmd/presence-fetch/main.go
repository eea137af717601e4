// Command presence-fetch downloads the user directory from DIRECTORY_URL and
// atomically replaces DATA_XML with it. With FETCH_INTERVAL unset it runs
// once and exits non-zero on failure; otherwise it keeps refreshing until
// interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tbourn/go-presence-analyzer/internal/config"
	"github.com/tbourn/go-presence-analyzer/internal/fetch"
	"github.com/tbourn/go-presence-analyzer/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, "presence-fetch")
	if cfg.Fetch.URL == "" {
		logger.Fatal().Msg("DIRECTORY_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := fetch.New(cfg.Fetch.URL, cfg.DataXML, cfg.Fetch.Timeout)
	f.Log = logger
	if err := f.Run(ctx, cfg.Fetch.Interval); err != nil {
		logger.Error().Err(err).Str("url", cfg.Fetch.URL).Msg("directory fetch failed")
		stop()
		os.Exit(1)
	}
}
