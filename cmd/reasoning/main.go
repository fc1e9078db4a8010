// Reasoning agent server: executes the conversational agent graph and
// streams per-node results to callers over SSE, with task status and
// cancellation flags kept in redis.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/8090-inc/xrx-sample-apps/pkg/agent"
	"github.com/8090-inc/xrx-sample-apps/pkg/api"
	"github.com/8090-inc/xrx-sample-apps/pkg/config"
	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/shopify"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
	"github.com/8090-inc/xrx-sample-apps/pkg/version"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	// 1. Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting reasoning agent",
		"version", version.Full(),
		"http_port", cfg.HTTPPort,
		"toolset", cfg.Toolset,
		"model", cfg.LLM.ModelID)

	if cfg.ObservabilityLibrary != "" && cfg.ObservabilityLibrary != "none" {
		slog.Info("LLM observability library requested but not wired in this build",
			"library", cfg.ObservabilityLibrary)
	}

	ctx := context.Background()

	// 2. Connect to redis (task status and cancellation flags)
	store, err := kv.NewRedisStore(ctx, cfg.RedisHost)
	if err != nil {
		slog.Error("Failed to connect to redis", "host", cfg.RedisHost, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing redis store", "error", err)
		}
	}()
	slog.Info("Connected to redis", "host", cfg.RedisHost)

	// 3. Create LLM client
	llmClient, err := llm.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.ModelID)
	if err != nil {
		slog.Error("Failed to initialize LLM client", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM client initialized", "model", cfg.LLM.ModelID, "base_url", cfg.LLM.BaseURL)

	// 4. Build the toolset
	var (
		registry *tools.Registry
		images   agent.WidgetImagePopulator
	)
	switch cfg.Toolset {
	case config.ToolsetShopify:
		if !cfg.Shopify.Configured() {
			slog.Warn("Shopify credentials missing; store tools will fail until SHOPIFY_SHOP and SHOPIFY_API_TOKEN are set")
		}
		storeClient := shopify.NewClient(shopify.Config{
			Shop:    cfg.Shopify.Shop,
			Token:   cfg.Shopify.Token,
			ShopGID: cfg.Shopify.ShopGID,
		})
		registry = tools.NewRegistry(shopify.StoreTools(storeClient)...)
		images = shopify.NewImageCache(storeClient, store)
	case config.ToolsetGeneric:
		registry = tools.NewRegistry(tools.GenericTools()...)
	}
	slog.Info("Toolset initialized", "toolset", cfg.Toolset, "tools", registry.Len())

	// 5. Create the agent runner
	runner := agent.NewRunner(agent.RunnerConfig{
		LLM:         llmClient,
		Tools:       registry,
		Store:       store,
		StoreInfo:   cfg.Shopify.StoreInfo,
		ServiceTask: cfg.Shopify.ServiceTask,
		Images:      images,
		ShopGID:     cfg.Shopify.ShopGID,
	})

	// 6. Create and start the HTTP server (non-blocking)
	httpServer := api.NewServer(runner, store)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 7. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 8. Graceful shutdown; in-flight result streams get a short drain window
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
