package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"upstox-mcp/internal/auth"
	"upstox-mcp/internal/catalog"
	"upstox-mcp/internal/creds"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/logger"
	"upstox-mcp/internal/store"
	"upstox-mcp/internal/tools"
	"upstox-mcp/internal/tools/toolsobs"
	"upstox-mcp/internal/trace"
	"upstox-mcp/internal/upstox"
)

// initializeSystem initializes logger and tracer
func initializeSystem() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeTools wires the session manager, instrument index, and market
// client into the tool façade, wrapped with observability middleware.
func initializeTools(ctx context.Context, cfg *store.Config) (interfaces.Tools, error) {
	credStore := creds.NewFileStore(cfg.Upstox.TokenFile)
	session := auth.NewSession(credStore)

	index, err := catalog.Load(cfg.Catalog.Path, cfg.PreferredExchanges)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load instrument catalog", err, "path", cfg.Catalog.Path)
		return nil, err
	}
	logger.Info(ctx, "Instrument catalog loaded", "path", cfg.Catalog.Path, "instruments", index.Len())

	client := upstox.NewClient(upstox.Params{
		BaseURL:      cfg.Upstox.BaseURL,
		Timeout:      time.Duration(cfg.Upstox.TimeoutSeconds) * time.Second,
		RateLimitRPS: cfg.Upstox.RateLimitRPS,
	})

	if _, ok, _ := credStore.Load(); !ok {
		logger.Warn(ctx, "No credential on file - tool calls will fail until the authenticate command is run")
	}

	return toolsobs.Wrap(tools.New(session, client, index)), nil
}
