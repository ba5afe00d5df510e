package metrics

import (
	"testing"
	"time"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func workout(date time.Time, sets ...models.ExerciseSet) models.Workout {
	return models.Workout{ID: uuid.New(), UserID: 1, Date: date, Sets: sets}
}

func set(exerciseID, name string, weight float64, reps int) models.ExerciseSet {
	return models.ExerciseSet{
		ID: uuid.New(), ExerciseID: exerciseID, ExerciseName: name,
		WeightKg: weight, Reps: reps,
	}
}

func TestDailyExerciseCountsDistinct(t *testing.T) {
	norm := dateutil.NewNormalizer(time.UTC)
	workouts := []models.Workout{
		workout(day(2026, time.May, 10),
			set("bench-press", "Bench Press", 80, 10),
			set("bench-press", "Bench Press", 85, 8),
			set("squat", "Squat", 100, 5),
		),
	}
	counts := DailyExerciseCounts(workouts, day(2026, time.May, 1), day(2026, time.June, 1), norm)
	if len(counts) != 1 {
		t.Fatalf("len = %d, want 1", len(counts))
	}
	// Three sets but only two distinct exercises.
	if counts[0].Count != 2 {
		t.Errorf("count = %d, want 2", counts[0].Count)
	}
	if !counts[0].Date.Equal(day(2026, time.May, 10)) {
		t.Errorf("date = %v", counts[0].Date)
	}
}

func TestDailyExerciseCountsWindow(t *testing.T) {
	norm := dateutil.NewNormalizer(time.UTC)
	workouts := []models.Workout{
		workout(day(2026, time.April, 30), set("squat", "Squat", 100, 5)),
		workout(day(2026, time.May, 1), set("squat", "Squat", 100, 5)),
		workout(day(2026, time.May, 31), set("squat", "Squat", 100, 5)),
		workout(day(2026, time.June, 1), set("squat", "Squat", 100, 5)),
	}
	counts := DailyExerciseCounts(workouts, day(2026, time.May, 1), day(2026, time.June, 1), norm)
	if len(counts) != 2 {
		t.Fatalf("len = %d, want 2 (half-open window)", len(counts))
	}
	if !counts[0].Date.Equal(day(2026, time.May, 1)) || !counts[1].Date.Equal(day(2026, time.May, 31)) {
		t.Errorf("dates = %v, %v", counts[0].Date, counts[1].Date)
	}
}

func TestDailyExerciseCountsEmpty(t *testing.T) {
	norm := dateutil.NewNormalizer(time.UTC)
	counts := DailyExerciseCounts(nil, day(2026, time.May, 1), day(2026, time.June, 1), norm)
	if len(counts) != 0 {
		t.Errorf("len = %d, want 0", len(counts))
	}
}

func TestPreviousVolumes(t *testing.T) {
	// Five past sessions, one with zero volume for the exercise.
	workouts := []models.Workout{
		workout(day(2026, time.May, 2), set("bench-press", "Bench Press", 100, 10)), // 1000
		workout(day(2026, time.May, 5), set("squat", "Squat", 120, 5)),              // 0 for bench
		workout(day(2026, time.May, 8), set("bench-press", "Bench Press", 120, 10)), // 1200
		workout(day(2026, time.May, 11), set("bench-press", "Bench Press", 110, 10)), // 1100
		workout(day(2026, time.May, 20), set("bench-press", "Bench Press", 130, 10)), // not before cutoff
	}
	points := PreviousVolumes(workouts, "Bench Press", day(2026, time.May, 15), 4)
	if len(points) != 3 {
		t.Fatalf("len = %d, want 3 (zero-volume session skipped, cutoff enforced)", len(points))
	}
	wantVols := []float64{1000, 1200, 1100}
	for i, want := range wantVols {
		if points[i].Volume != want {
			t.Errorf("points[%d].Volume = %v, want %v", i, points[i].Volume, want)
		}
	}
	// Chronological order.
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Errorf("points not chronological at %d: %v >= %v", i, points[i-1].Date, points[i].Date)
		}
	}
}

func TestPreviousVolumesLimit(t *testing.T) {
	var workouts []models.Workout
	for i := 1; i <= 8; i++ {
		workouts = append(workouts, workout(day(2026, time.May, i),
			set("squat", "Squat", float64(100+i), 5)))
	}
	points := PreviousVolumes(workouts, "Squat", day(2026, time.June, 1), 0)
	if len(points) != defaultVolumeWindow {
		t.Fatalf("len = %d, want default window %d", len(points), defaultVolumeWindow)
	}
	// The most recent four sessions, oldest first.
	if !points[0].Date.Equal(day(2026, time.May, 5)) {
		t.Errorf("points[0].Date = %v, want May 5", points[0].Date)
	}
	if !points[3].Date.Equal(day(2026, time.May, 8)) {
		t.Errorf("points[3].Date = %v, want May 8", points[3].Date)
	}
}

func TestPreviousVolumesSumsMatchingSets(t *testing.T) {
	workouts := []models.Workout{
		workout(day(2026, time.May, 2),
			set("bench-press", "Bench Press", 80, 10), // 800
			set("bench-press", "Bench Press", 85, 8),  // 680
			set("squat", "Squat", 100, 5),
		),
	}
	points := PreviousVolumes(workouts, "Bench Press", day(2026, time.May, 10), 4)
	if len(points) != 1 {
		t.Fatalf("len = %d, want 1", len(points))
	}
	if points[0].Volume != 1480 {
		t.Errorf("volume = %v, want 1480", points[0].Volume)
	}
}

func TestMuscleGroupShare(t *testing.T) {
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatal(err)
	}
	norm := dateutil.NewNormalizer(time.UTC)
	workouts := []models.Workout{
		workout(day(2026, time.May, 2),
			set("bench-press", "Bench Press", 80, 10),
			set("bench-press", "Bench Press", 85, 8), // same id, counted once
			set("squat", "Squat", 100, 5),
		),
		workout(day(2026, time.May, 9),
			set("squat", "Squat", 105, 5),
			set("mystery-lift", "Mystery Lift", 50, 10),
		),
		// Outside the month.
		workout(day(2026, time.June, 1), set("deadlift", "Deadlift", 140, 5)),
	}
	shares := MuscleGroupShare(workouts, cat, day(2026, time.May, 15), norm)
	want := []GroupShare{
		{Group: "legs", Count: 2},
		{Group: "chest", Count: 1},
		{Group: OtherGroup, Count: 1},
	}
	if len(shares) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(shares), len(want), shares)
	}
	for i := range want {
		if shares[i] != want[i] {
			t.Errorf("shares[%d] = %+v, want %+v", i, shares[i], want[i])
		}
	}
}

func TestYearHeatmapAndLevels(t *testing.T) {
	norm := dateutil.NewNormalizer(time.UTC)
	workouts := []models.Workout{
		workout(day(2026, time.January, 5), set("squat", "Squat", 100, 5)),
		workout(day(2025, time.December, 31), set("squat", "Squat", 100, 5)),
	}
	counts := YearHeatmap(workouts, 2026, norm)
	if len(counts) != 1 {
		t.Fatalf("len = %d, want 1 (prior year excluded)", len(counts))
	}

	levels := []struct {
		count, want int
	}{
		{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {9, 3},
	}
	for _, tt := range levels {
		if got := HeatLevel(tt.count); got != tt.want {
			t.Errorf("HeatLevel(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
