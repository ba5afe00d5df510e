package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is the single-file workout store used when no PostgreSQL server is
// configured. Schema setup is inline; there is no separate migration step.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the workout database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS workouts (
			id           TEXT PRIMARY KEY,
			user_id      INTEGER NOT NULL,
			workout_date TIMESTAMP NOT NULL,
			note         TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_user_date ON workouts (user_id, workout_date)`,
		`CREATE TABLE IF NOT EXISTS workout_sets (
			id            TEXT PRIMARY KEY,
			workout_id    TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
			exercise_id   TEXT NOT NULL,
			exercise_name TEXT NOT NULL,
			weight_kg     REAL NOT NULL,
			reps          INTEGER NOT NULL,
			position      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workout_sets_workout ON workout_sets (workout_id)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// FetchWorkout retrieves the workout on the given normalized date, with sets
// in position order. Returns nil (no error) when absent.
func (s *SQLite) FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date = ? AND user_id = ?`,
		date, userID)

	var w models.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	sets, err := s.fetchSets(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Sets = sets
	return &w, nil
}

// FetchWorkoutsBefore retrieves all workouts strictly before the cutoff,
// newest first, with sets attached.
func (s *SQLite) FetchWorkoutsBefore(ctx context.Context, cutoff time.Time, userID int) ([]models.Workout, error) {
	return s.fetchWorkouts(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date < ? AND user_id = ?
		 ORDER BY workout_date DESC`,
		cutoff, userID)
}

// FetchWorkoutsInRange retrieves workouts in [start, end), oldest first,
// with sets attached.
func (s *SQLite) FetchWorkoutsInRange(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	return s.fetchWorkouts(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date >= ? AND workout_date < ? AND user_id = ?
		 ORDER BY workout_date ASC`,
		start, end, userID)
}

func (s *SQLite) fetchWorkouts(ctx context.Context, query string, args ...any) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Note); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		sets, err := s.fetchSets(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Sets = sets
	}
	return result, nil
}

func (s *SQLite) fetchSets(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, exercise_name, weight_kg, reps, position
		 FROM workout_sets
		 WHERE workout_id = ?
		 ORDER BY position ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseSet
	for rows.Next() {
		var set models.ExerciseSet
		if err := rows.Scan(&set.ID, &set.WorkoutID, &set.ExerciseID, &set.ExerciseName, &set.WeightKg, &set.Reps, &set.Position); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, set)
	}
	return result, rows.Err()
}

// InsertWorkout inserts a workout and its sets in one transaction.
func (s *SQLite) InsertWorkout(ctx context.Context, w *models.Workout) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, workout_date, note) VALUES (?,?,?,?)`,
		w.ID, w.UserID, w.Date, w.Note)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	if err := insertSetsSQLiteTx(ctx, tx, w.ID, w.Sets); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout: %w", err)
	}
	return nil
}

// UpdateWorkout replaces a workout's note and its entire set list in one
// transaction.
func (s *SQLite) UpdateWorkout(ctx context.Context, id uuid.UUID, note string, sets []models.ExerciseSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE workouts SET note = ? WHERE id = ?`, note, id)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM workout_sets WHERE workout_id = ?`, id)
	if err != nil {
		return fmt.Errorf("clearing workout sets: %w", err)
	}
	if err := insertSetsSQLiteTx(ctx, tx, id, sets); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout update: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout; its sets cascade.
func (s *SQLite) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

func insertSetsSQLiteTx(ctx context.Context, tx *sql.Tx, workoutID uuid.UUID, sets []models.ExerciseSet) error {
	for _, set := range sets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workout_sets (id, workout_id, exercise_id, exercise_name, weight_kg, reps, position)
			 VALUES (?,?,?,?,?,?,?)`,
			set.ID, workoutID, set.ExerciseID, set.ExerciseName, set.WeightKg, set.Reps, set.Position)
		if err != nil {
			return fmt.Errorf("inserting workout set: %w", err)
		}
	}
	return nil
}
