package draft

import (
	"context"
	"time"

	"github.com/claude/setlog/internal/models"
	"github.com/claude/setlog/internal/storage"
	"github.com/google/uuid"
)

// Store is the slice of the persistent store the draft engine needs. Both
// *storage.DB (PostgreSQL) and *storage.SQLite satisfy it.
type Store interface {
	FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error)
	InsertWorkout(ctx context.Context, w *models.Workout) error
	UpdateWorkout(ctx context.Context, id uuid.UUID, note string, sets []models.ExerciseSet) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.SQLite)(nil)
)
