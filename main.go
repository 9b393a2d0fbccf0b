// Package main implements the EPG API server.
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

	"github.com/avkb/epg-api/config"
	"github.com/avkb/epg-api/handlers"
	"github.com/avkb/epg-api/internal/epg"
	"github.com/avkb/epg-api/internal/feed"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logrus
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg, err := config.New()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse log level")
	}
	logrus.SetLevel(level)

	logger := logrus.StandardLogger()

	loader := feed.NewLoader(cfg, logger)
	resolver := epg.NewResolver(cfg.Location, logger)

	mux := http.NewServeMux()
	setupRoutes(mux, loader, resolver, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handlers.LoggingMiddleware(logger)(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigChan
		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to gracefully shutdown")
		}
		close(done)
	}()

	logger.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"feed":     cfg.FeedURL,
		"timezone": cfg.Timezone,
	}).Info("Starting EPG API server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Failed to start server")
	}

	<-done
	logger.Info("Server stopped")
}

func setupRoutes(mux *http.ServeMux, loader *feed.Loader, resolver *epg.Resolver, cfg *config.Config, logger *logrus.Logger) {
	epgHandler := handlers.NewEPGHandler(loader, resolver, cfg, logger)

	mux.Handle("/api/epg", handlers.CORSMiddleware(epgHandler))
	mux.Handle("/", handlers.NewDocsHandler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
