package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FetchWorkout retrieves the workout logged on the given normalized date,
// with its sets in position order. Returns nil (no error) when no workout
// exists for that date.
func (db *DB) FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date = $1 AND user_id = $2`,
		date, userID)

	var w models.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	sets, err := db.fetchSets(ctx, []uuid.UUID{w.ID})
	if err != nil {
		return nil, err
	}
	w.Sets = sets[w.ID]
	return &w, nil
}

// FetchWorkoutsBefore retrieves all workouts strictly before the cutoff,
// newest first, with sets attached.
func (db *DB) FetchWorkoutsBefore(ctx context.Context, cutoff time.Time, userID int) ([]models.Workout, error) {
	return db.fetchWorkouts(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date < $1 AND user_id = $2
		 ORDER BY workout_date DESC`,
		cutoff, userID)
}

// FetchWorkoutsInRange retrieves workouts in [start, end), oldest first,
// with sets attached.
func (db *DB) FetchWorkoutsInRange(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	return db.fetchWorkouts(ctx,
		`SELECT id, user_id, workout_date, note
		 FROM workouts
		 WHERE workout_date >= $1 AND workout_date < $2 AND user_id = $3
		 ORDER BY workout_date ASC`,
		start, end, userID)
}

func (db *DB) fetchWorkouts(ctx context.Context, query string, args ...any) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	var ids []uuid.UUID
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Note); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	sets, err := db.fetchSets(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Sets = sets[result[i].ID]
	}
	return result, nil
}

func (db *DB) fetchSets(ctx context.Context, workoutIDs []uuid.UUID) (map[uuid.UUID][]models.ExerciseSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, exercise_id, exercise_name, weight_kg, reps, position
		 FROM workout_sets
		 WHERE workout_id = ANY($1)
		 ORDER BY position ASC`,
		workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.ExerciseSet)
	for rows.Next() {
		var s models.ExerciseSet
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.ExerciseName, &s.WeightKg, &s.Reps, &s.Position); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result[s.WorkoutID] = append(result[s.WorkoutID], s)
	}
	return result, rows.Err()
}

// InsertWorkout inserts a workout and its sets in one transaction.
func (db *DB) InsertWorkout(ctx context.Context, w *models.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, workout_date, note) VALUES ($1,$2,$3,$4)`,
		w.ID, w.UserID, w.Date, w.Note)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	if err := insertSetsTx(ctx, tx, w.ID, w.Sets); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout: %w", err)
	}
	return nil
}

// UpdateWorkout replaces a workout's note and its entire set list in one
// transaction.
func (db *DB) UpdateWorkout(ctx context.Context, id uuid.UUID, note string, sets []models.ExerciseSet) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE workouts SET note = $1 WHERE id = $2`, note, id)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	_, err = tx.Exec(ctx, `DELETE FROM workout_sets WHERE workout_id = $1`, id)
	if err != nil {
		return fmt.Errorf("clearing workout sets: %w", err)
	}
	if err := insertSetsTx(ctx, tx, id, sets); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout update: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout; its sets cascade.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

func insertSetsTx(ctx context.Context, tx pgx.Tx, workoutID uuid.UUID, sets []models.ExerciseSet) error {
	for _, s := range sets {
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_sets (id, workout_id, exercise_id, exercise_name, weight_kg, reps, position)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, workoutID, s.ExerciseID, s.ExerciseName, s.WeightKg, s.Reps, s.Position)
		if err != nil {
			return fmt.Errorf("inserting workout set: %w", err)
		}
	}
	return nil
}
