package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartinez/sharepoint-mcp-go/internal/auth"
	"github.com/amartinez/sharepoint-mcp-go/internal/config"
	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
	"github.com/amartinez/sharepoint-mcp-go/internal/middleware"
	"github.com/amartinez/sharepoint-mcp-go/internal/registry"
	"github.com/amartinez/sharepoint-mcp-go/internal/session"
)

func main() {
	// Structured logging to stderr (stdout is reserved for MCP stdio transport)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx, logger); err != nil {
		cancel()
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
	cancel()
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set log level from config
	switch cfg.LogLevel {
	case "debug":
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	case "warn":
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		slog.SetDefault(logger)
	case "error":
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		slog.SetDefault(logger)
	}

	// Initialize the token cache
	store, err := auth.NewFileStore(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("initializing token cache: %w", err)
	}

	// Create the account manager for device-code sign-in
	mgr, err := auth.NewManager(cfg.Graph.ClientID, cfg.Graph.TenantID, cfg.Graph.Scopes, store, logger)
	if err != nil {
		return fmt.Errorf("initializing auth manager: %w", err)
	}

	// Graph client and per-process session state
	client := graph.NewClient(cfg.Graph.BaseURL, nil, mgr, logger)
	sess := session.New()

	// Pre-select the configured drive. A bad ID is a warning, not a fatal
	// error: the operator can still pick a drive with set_active_drive.
	if cfg.Graph.DefaultDriveID != "" {
		if _, err := client.GetDrive(ctx, cfg.Graph.DefaultDriveID); err != nil {
			slog.Warn("default drive not selected", "driveID", cfg.Graph.DefaultDriveID, "error", err)
		} else {
			sess.SetActiveDrive(cfg.Graph.DefaultDriveID)
			slog.Info("default drive selected", "driveID", cfg.Graph.DefaultDriveID)
		}
	}

	// Load tier config — try absolute path (container) then relative (local dev)
	tierConfigPath := "/configs/tool_tiers.yaml"
	if _, statErr := os.Stat(tierConfigPath); statErr != nil {
		tierConfigPath = filepath.Join("configs", "tool_tiers.yaml")
	}
	tierMap, err := config.LoadTiers(tierConfigPath)
	if err != nil {
		slog.Warn("could not load tier config — all tools will be registered unfiltered",
			"path", tierConfigPath,
			"error", err,
		)
		tierMap = make(map[string]config.ToolInfo)
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: "1.0.0",
	}, &mcp.ServerOptions{
		Instructions: cfg.Server.Instructions,
	})

	// Wire SDK middleware
	server.AddReceivingMiddleware(
		middleware.LoggingMiddleware(logger),
		middleware.AuthEnhancerMiddleware(),
	)

	// Register all tools through the registry
	registry.RegisterAll(server, cfg, tierMap, mgr, client, sess)

	slog.Info("starting SharePoint MCP server",
		"transport", cfg.Server.Transport,
		"tier", cfg.ToolTier,
		"readOnly", cfg.ReadOnly,
	)

	// Start server on selected transport
	switch cfg.Server.Transport {
	case "stdio":
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}

	case "streamable-http":
		mcpHandler := mcp.NewStreamableHTTPHandler(
			func(r *http.Request) *mcp.Server { return server },
			nil,
		)

		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpHandler)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			slog.Info("shutting down HTTP server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
		}()

		slog.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}

	default:
		return fmt.Errorf("unknown transport %q — use 'stdio' or 'streamable-http'", cfg.Server.Transport)
	}

	return nil
}
