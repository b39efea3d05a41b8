package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/config"
	"github.com/dealinefunnel/countdown-service/internal/logger"
)

const VERSION = "1.0.0"

func init() {
	config.LoadConfigs()
}

func main() {
	log := logger.New(logger.Config{
		Service: "countdown-service",
		Version: VERSION,
	})

	handler, cleanup, err := Routes(log)
	if err != nil {
		log.Log("msg", "failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfigInstance.GeneralConfig.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Log("msg", "starting server", "port", config.AppConfigInstance.GeneralConfig.Port)
		errs <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		log.Log("msg", "server stopped", "error", err)
	case sig := <-quit:
		log.Log("msg", "shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Log("msg", "graceful shutdown failed", "error", err)
		}
	}
}
