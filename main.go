package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gstbrowser/connector/filesystemserver"
	"github.com/gstbrowser/connector/internal/config"
	"github.com/gstbrowser/connector/internal/logging"
)

func main() {
	configPath := flag.String("config", envOr("CONNECTOR_CONFIG", "connector.yaml"), "path to the settings file")
	addr := flag.String("addr", "", "listen address (overrides the settings file)")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(filesystemserver.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the MCP protocol in stdio mode.
	output := "stdout"
	if *mcpMode {
		output = "stderr"
	}
	if err := logging.Init(logging.Config{
		Level:      cfg.Server.LogLevel,
		Format:     cfg.Server.LogFormat,
		OutputPath: output,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if *mcpMode {
		mcpServer, err := filesystemserver.NewMCPServer(cfg.Profiles)
		if err != nil {
			logging.Fatal("Failed to create server", zap.Error(err))
		}
		if err := server.ServeStdio(mcpServer); err != nil {
			logging.Fatal("Server error", zap.Error(err))
		}
		return
	}

	listenAddr := cfg.Server.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	h := filesystemserver.NewHTTPHandler(cfg.Profiles, filesystemserver.HTTPOptions{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Metrics:       cfg.Server.MetricsEnabled(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("starting connector",
		zap.String("version", filesystemserver.Version),
		zap.Int("profiles", len(cfg.Profiles)),
	)
	if err := filesystemserver.ListenAndServe(ctx, listenAddr, h); err != nil {
		logging.Fatal("Server error", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
