package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ivugurura/iplens/config"
	"github.com/ivugurura/iplens/internal/api"
	"github.com/ivugurura/iplens/internal/geo"
	"github.com/ivugurura/iplens/internal/logging"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(config.LoadConfig()))
}

func run(cfg *config.Config) int {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	geoResolver := geo.NewResolver(cfg.GeoIPDBPath, cfg.EnableGeoIP, logger)
	defer geoResolver.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.NewRouter(api.Options{Logger: logger, Geo: geoResolver}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	base := fmt.Sprintf("http://localhost:%d", cfg.Port)
	logger.Info("server is running", "url", base, "geoip", geoResolver.Enabled())
	logger.Info("api endpoint", "url", base+"/api/ip-info")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
			return 1
		}
	}
	return 0
}
