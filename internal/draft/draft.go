// Package draft owns the in-memory editable workout state. Edits accumulate
// here per calendar date and are written to storage only on an explicit
// save; a per-date cache keeps unsaved edits alive while the user navigates
// between dates within a session.
package draft

import (
	"math"
	"sort"
	"strconv"

	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
)

// SetRow is one editable set. Weight and reps are raw text exactly as
// typed; a row is valid only when both fields parse as integers.
type SetRow struct {
	ID         uuid.UUID `json:"id"`
	WeightText string    `json:"weight"`
	RepsText   string    `json:"reps"`
}

// Valid reports whether the row can be converted to a persisted set.
func (r *SetRow) Valid() bool {
	weight, err := strconv.Atoi(r.WeightText)
	if err != nil || weight < 0 {
		return false
	}
	reps, err := strconv.Atoi(r.RepsText)
	if err != nil || reps <= 0 {
		return false
	}
	return true
}

// Entry is one exercise in the draft with its ordered set rows. The ID is
// an opaque instance id, never persisted.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	ExerciseName string    `json:"exercise_name"`
	Rows         []*SetRow `json:"sets"`
}

func newEntry(name string, rowCount int) *Entry {
	rows := make([]*SetRow, rowCount)
	for i := range rows {
		rows[i] = &SetRow{ID: uuid.New()}
	}
	return &Entry{ID: uuid.New(), ExerciseName: name, Rows: rows}
}

func (e *Entry) clone() Entry {
	out := Entry{ID: e.ID, ExerciseName: e.ExerciseName, Rows: make([]*SetRow, len(e.Rows))}
	for i, r := range e.Rows {
		row := *r
		out.Rows[i] = &row
	}
	return out
}

// weightText renders a stored weight as editable text, rounding to the
// nearest integer with ties away from zero. Lossy for fractional weights.
func weightText(kg float64) string {
	return strconv.Itoa(int(math.Round(kg)))
}

// entriesFromWorkout rebuilds draft entries from a persisted workout: sets
// grouped by exercise name (in stored position order within each group),
// entries sorted by name ascending.
func entriesFromWorkout(w *models.Workout) []*Entry {
	byName := make(map[string]*Entry)
	var order []string
	for _, set := range w.Sets {
		entry, ok := byName[set.ExerciseName]
		if !ok {
			entry = &Entry{ID: uuid.New(), ExerciseName: set.ExerciseName}
			byName[set.ExerciseName] = entry
			order = append(order, set.ExerciseName)
		}
		entry.Rows = append(entry.Rows, &SetRow{
			ID:         uuid.New(),
			WeightText: weightText(set.WeightKg),
			RepsText:   strconv.Itoa(set.Reps),
		})
	}

	sort.Strings(order)
	entries := make([]*Entry, 0, len(order))
	for _, name := range order {
		entries = append(entries, byName[name])
	}
	return entries
}
