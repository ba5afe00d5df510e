// setlog-mcp serves the workout history over MCP on stdio, for use as a
// local MCP server in AI assistants.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/config"
	"github.com/claude/setlog/internal/dateutil"
	setlogmcp "github.com/claude/setlog/internal/mcp"
	"github.com/claude/setlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Error("failed to resolve timezone", "error", err)
		os.Exit(1)
	}
	norm := dateutil.NewNormalizer(loc)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Error("failed to load exercise catalog", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var ds setlogmcp.DataSource
	switch cfg.Database.Driver {
	case "postgres":
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
	default:
		log.Error("unknown database driver", "driver", cfg.Database.Driver)
		os.Exit(1)
	}

	s := setlogmcp.New(ds, cat, norm, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
