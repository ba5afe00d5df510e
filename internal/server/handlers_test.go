package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/claude/setlog/internal/draft"
	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
)

const testAPIKey = "test-key"

// fakeStore backs both the read handlers and the draft session in tests.
type fakeStore struct {
	byDate map[time.Time]*models.Workout
}

func newFakeStore() *fakeStore {
	return &fakeStore{byDate: make(map[time.Time]*models.Workout)}
}

func (f *fakeStore) FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error) {
	w, ok := f.byDate[date]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (f *fakeStore) FetchWorkoutsBefore(ctx context.Context, cutoff time.Time, userID int) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range f.byDate {
		if w.Date.Before(cutoff) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) FetchWorkoutsInRange(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range f.byDate {
		if !w.Date.Before(start) && w.Date.Before(end) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertWorkout(ctx context.Context, w *models.Workout) error {
	cp := *w
	f.byDate[w.Date] = &cp
	return nil
}

func (f *fakeStore) UpdateWorkout(ctx context.Context, id uuid.UUID, note string, sets []models.ExerciseSet) error {
	for _, w := range f.byDate {
		if w.ID == id {
			w.Note = note
			w.Sets = sets
			return nil
		}
	}
	return nil
}

func (f *fakeStore) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	for date, w := range f.byDate {
		if w.ID == id {
			delete(f.byDate, date)
			return nil
		}
	}
	return nil
}

func testServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatal(err)
	}
	norm := dateutil.NewNormalizer(time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := draft.NewSession(store, cat, norm, defaultUserID, log)
	return New(store, session, cat, norm, testAPIKey, log), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if auth {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeDraft(t *testing.T, rec *httptest.ResponseRecorder) draftState {
	t.Helper()
	var state draftState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding draft state: %v\nbody: %s", err, rec.Body.String())
	}
	return state
}

func TestDraftRequiresAPIKey(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/draft", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMetricsDoNotRequireAPIKey(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/catalog", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetDraftEmpty(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/draft", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	state := decodeDraft(t, rec)
	if len(state.Exercises) != 0 {
		t.Errorf("exercises = %d, want 0", len(state.Exercises))
	}
	if state.HasValidSets {
		t.Error("empty draft reports valid sets")
	}
}

func TestAppendExerciseAndUpdateSet(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/exercises",
		map[string]any{"name": "Bench Press", "set_count": 2}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("append status = %d: %s", rec.Code, rec.Body.String())
	}
	var appendResp struct {
		ID    uuid.UUID  `json:"id"`
		Draft draftState `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &appendResp); err != nil {
		t.Fatal(err)
	}
	if len(appendResp.Draft.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(appendResp.Draft.Exercises))
	}
	ex := appendResp.Draft.Exercises[0]
	if len(ex.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(ex.Rows))
	}

	rec = doJSON(t, srv, http.MethodPut,
		"/api/v1/draft/exercises/"+ex.ID.String()+"/sets/"+ex.Rows[0].ID.String(),
		map[string]string{"weight": "80", "reps": "10"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeDraft(t, rec)
	if !state.HasValidSets {
		t.Error("valid set not reflected in draft state")
	}
	if state.Exercises[0].Rows[0].WeightText != "80" {
		t.Errorf("weight = %q", state.Exercises[0].Rows[0].WeightText)
	}
}

func TestUpdateSetRowUnknown(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodPut,
		"/api/v1/draft/exercises/"+uuid.NewString()+"/sets/"+uuid.NewString(),
		map[string]string{"weight": "80", "reps": "10"}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRemoveExerciseInvalidID(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/draft/exercises/not-a-uuid", nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRemoveExercisesAtOffsets(t *testing.T) {
	srv, _ := testServer(t)
	for _, name := range []string{"Squat", "Bench Press", "Deadlift"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/exercises",
			map[string]any{"name": name, "set_count": 1}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("append %s status = %d", name, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/exercises/remove",
		map[string]any{"offsets": []int{0, 2, 99}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeDraft(t, rec)
	if len(state.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(state.Exercises))
	}
	if state.Exercises[0].ExerciseName != "Bench Press" {
		t.Errorf("remaining = %q, want Bench Press", state.Exercises[0].ExerciseName)
	}
}

func TestSwitchDateInvalid(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/date",
		map[string]string{"date": "10.05.2026"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSaveRoundTripThroughAPI(t *testing.T) {
	srv, store := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/date",
		map[string]string{"date": "2026-05-10"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/draft/exercises",
		map[string]any{"name": "Squat", "set_count": 1}, true)
	var appendResp struct {
		ID    uuid.UUID  `json:"id"`
		Draft draftState `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &appendResp); err != nil {
		t.Fatal(err)
	}
	ex := appendResp.Draft.Exercises[0]
	doJSON(t, srv, http.MethodPut,
		"/api/v1/draft/exercises/"+ex.ID.String()+"/sets/"+ex.Rows[0].ID.String(),
		map[string]string{"weight": "100", "reps": "5"}, true)
	doJSON(t, srv, http.MethodPost, "/api/v1/draft/note",
		map[string]string{"note": "leg day"}, true)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/draft/save", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}

	date := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)
	w := store.byDate[date]
	if w == nil {
		t.Fatal("workout not persisted")
	}
	if w.Note != "leg day" {
		t.Errorf("note = %q", w.Note)
	}
	if len(w.Sets) != 1 || w.Sets[0].ExerciseID != "squat" {
		t.Errorf("sets = %+v", w.Sets)
	}
}

func TestVolumeHistoryRequiresExercise(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/metrics/volume-history", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVolumeHistoryAppendsDraft(t *testing.T) {
	srv, store := testServer(t)
	norm := dateutil.NewNormalizer(time.UTC)
	past := norm.Day(time.Now().AddDate(0, 0, -10))
	wid := uuid.New()
	store.byDate[past] = &models.Workout{
		ID: wid, UserID: defaultUserID, Date: past,
		Sets: []models.ExerciseSet{{
			ID: uuid.New(), WorkoutID: wid, ExerciseID: "bench-press",
			ExerciseName: "Bench Press", WeightKg: 100, Reps: 10,
		}},
	}

	// Put an unsaved bench press set in the draft.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/draft/exercises",
		map[string]any{"name": "Bench Press", "set_count": 1}, true)
	var appendResp struct {
		ID    uuid.UUID  `json:"id"`
		Draft draftState `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &appendResp); err != nil {
		t.Fatal(err)
	}
	ex := appendResp.Draft.Exercises[0]
	doJSON(t, srv, http.MethodPut,
		"/api/v1/draft/exercises/"+ex.ID.String()+"/sets/"+ex.Rows[0].ID.String(),
		map[string]string{"weight": "80", "reps": "10"}, true)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/metrics/volume-history?exercise=Bench+Press", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var points []struct {
		Volume float64 `json:"volume"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2 (persisted + live draft)", len(points))
	}
	if points[0].Volume != 1000 || points[1].Volume != 800 {
		t.Errorf("volumes = %v, %v; want 1000, 800", points[0].Volume, points[1].Volume)
	}
}

func TestMuscleGroupsForMonth(t *testing.T) {
	srv, store := testServer(t)
	date := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)
	wid := uuid.New()
	store.byDate[date] = &models.Workout{
		ID: wid, UserID: defaultUserID, Date: date,
		Sets: []models.ExerciseSet{{
			ID: uuid.New(), WorkoutID: wid, ExerciseID: "squat",
			ExerciseName: "Squat", WeightKg: 100, Reps: 5,
		}},
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/metrics/muscle-groups?month=2026-05", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var shares []struct {
		Group string `json:"group"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &shares); err != nil {
		t.Fatal(err)
	}
	if len(shares) != 1 || shares[0].Group != "legs" || shares[0].Count != 1 {
		t.Errorf("shares = %+v", shares)
	}
}

func TestMuscleGroupsInvalidMonth(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/metrics/muscle-groups?month=May", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHeatmap(t *testing.T) {
	srv, store := testServer(t)
	date := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	wid := uuid.New()
	store.byDate[date] = &models.Workout{
		ID: wid, UserID: defaultUserID, Date: date,
		Sets: []models.ExerciseSet{{
			ID: uuid.New(), WorkoutID: wid, ExerciseID: "squat",
			ExerciseName: "Squat", WeightKg: 100, Reps: 5,
		}},
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/metrics/heatmap?year=2026", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cells []heatCell
	if err := json.Unmarshal(rec.Body.Bytes(), &cells); err != nil {
		t.Fatal(err)
	}
	if len(cells) != 1 {
		t.Fatalf("cells = %d, want 1", len(cells))
	}
	if cells[0].Date != "2026-01-05" || cells[0].Count != 1 || cells[0].Level != 1 {
		t.Errorf("cell = %+v", cells[0])
	}
}

func TestHeatmapInvalidYear(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/metrics/heatmap?year=abc", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCatalogList(t *testing.T) {
	srv, _ := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/catalog", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []catalog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Error("catalog is empty")
	}
}
