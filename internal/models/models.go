package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout is one logged training day. A user has at most one workout per
// normalized calendar date; Date is always start-of-day in the configured
// time zone.
type Workout struct {
	ID     uuid.UUID     `json:"id"`
	UserID int           `json:"user_id"`
	Date   time.Time     `json:"date"`
	Note   string        `json:"note"`
	Sets   []ExerciseSet `json:"sets"`
}

// ExerciseSet is a single persisted set within a workout. ExerciseName is a
// denormalized copy of the catalog name at the time the set was logged.
type ExerciseSet struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	Position     int       `json:"position"`
}

// Volume is the training volume of the set in kg-reps.
func (s ExerciseSet) Volume() float64 {
	return s.WeightKg * float64(s.Reps)
}
