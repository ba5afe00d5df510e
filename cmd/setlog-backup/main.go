// setlog-backup exports the full workout history as a JSON snapshot and
// uploads it to S3-compatible storage.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/claude/setlog/internal/backup"
	"github.com/claude/setlog/internal/config"
	"github.com/claude/setlog/internal/models"
	"github.com/claude/setlog/internal/storage"
)

// userID for the single-user deployment model.
const userID = 1

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var workouts []models.Workout

	// Everything strictly before tomorrow is the full history.
	cutoff := time.Now().AddDate(0, 0, 1)

	switch cfg.Database.Driver {
	case "postgres":
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		workouts, err = db.FetchWorkoutsBefore(ctx, cutoff, userID)
		if err != nil {
			log.Error("failed to read workouts", "error", err)
			os.Exit(1)
		}
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		workouts, err = db.FetchWorkoutsBefore(ctx, cutoff, userID)
		if err != nil {
			log.Error("failed to read workouts", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unknown database driver", "driver", cfg.Database.Driver)
		os.Exit(1)
	}

	uploader, err := backup.NewUploader(ctx, cfg.Backup)
	if err != nil {
		log.Error("failed to create uploader", "error", err)
		os.Exit(1)
	}

	snap := &backup.Snapshot{ExportedAt: time.Now().UTC(), Workouts: workouts}
	key, err := uploader.Upload(ctx, snap)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("backup uploaded", "bucket", cfg.Backup.Bucket, "key", key, "workouts", len(workouts))
}
