package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"upstox-mcp/internal/logger"
	"upstox-mcp/internal/server"
	"upstox-mcp/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	toolset, err := initializeTools(ctx, cfg)
	must(err)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(toolset).Handler(),
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "Tool server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Server failed", err)
			cancel()
		}
	}()

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Server shutdown failed", err)
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "Tracer shutdown failed", "error", err)
	}
}
