package mcp

import (
	"context"
	"time"

	"github.com/claude/setlog/internal/models"
	"github.com/claude/setlog/internal/storage"
)

// DataSource abstracts the workout store for MCP tools. Both *storage.DB
// (PostgreSQL) and *storage.SQLite satisfy this interface.
type DataSource interface {
	FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error)
	FetchWorkoutsBefore(ctx context.Context, cutoff time.Time, userID int) ([]models.Workout, error)
	FetchWorkoutsInRange(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
}

var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*storage.SQLite)(nil)
)
