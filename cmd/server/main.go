package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scaredginger/secret-hitler/internal/config"
	"github.com/scaredginger/secret-hitler/internal/httpapi"
	"github.com/scaredginger/secret-hitler/internal/logger"
	"github.com/scaredginger/secret-hitler/internal/middleware"
	"github.com/scaredginger/secret-hitler/internal/registry"
	"github.com/scaredginger/secret-hitler/internal/transport"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Msg("config loaded")

	rooms := &registry.SlotMap{}
	ws := transport.NewHandler(logger.Get())
	api := httpapi.NewServer(rooms, ws, logger.Get())

	root := middleware.Chain(api.Routes(), middleware.Logger, middleware.CORS("*"))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: root,
		// No ReadTimeout/WriteTimeout: a joined connection is long-lived and
		// is hijacked out from under net/http entirely once upgraded, so
		// these only bound the handshake request itself.
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
