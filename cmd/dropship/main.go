package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/dropship-mcp/internal/bootstrap"
	"github.com/dshills/dropship-mcp/internal/config"
	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/logging"
	"github.com/dshills/dropship-mcp/internal/mcp"
	"github.com/dshills/dropship-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Dropship MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dropship: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	// stdout is reserved for the MCP protocol; the logger writes to stderr
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting dropship MCP server",
		zap.String("version", version),
		zap.String("build_mode", storage.BuildMode),
		zap.String("driver", storage.DriverName))

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed {
		res, err := bootstrap.Seed(ctx, store, bootstrap.Options{Password: cfg.SeedPassword}, logger)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to seed: %w", err)
		}
		logger.Info("seed complete",
			zap.Int("categories", res.Categories),
			zap.Int("users", res.Users),
			zap.Int("suppliers", res.Suppliers))
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		publisher, err = events.Dial(events.DialConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			Attempts:   5,
			RetryDelay: 2 * time.Second,
		}, logger)
		if err != nil {
			_ = store.Close()
			return err
		}
	}

	server, err := mcp.NewServer(store, publisher, logger)
	if err != nil {
		_ = publisher.Close()
		_ = store.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("MCP server ready, listening on stdio")
		return server.Serve(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
