package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/setlog/internal/draft"
	"github.com/claude/setlog/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// draftState is the full draft view returned after every mutation, so the
// UI can re-render from one payload.
type draftState struct {
	Date         string        `json:"date"`
	Note         string        `json:"note"`
	HasValidSets bool          `json:"has_valid_sets"`
	Exercises    []draft.Entry `json:"exercises"`
}

func (s *Server) currentDraft() draftState {
	entries := s.session.Entries()
	if entries == nil {
		entries = []draft.Entry{}
	}
	return draftState{
		Date:         s.session.SelectedDate().Format("2006-01-02"),
		Note:         s.session.Note(),
		HasValidSets: s.session.HasValidSets(),
		Exercises:    entries,
	}
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleNewWorkout(w http.ResponseWriter, r *http.Request) {
	s.session.StartNewWorkout()
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleSwitchDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	date, err := time.ParseInLocation("2006-01-02", body.Date, s.norm.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	if err := s.session.SwitchDate(r.Context(), date); err != nil {
		s.log.Error("date switch failed", "date", body.Date, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.session.SetNote(body.Note)
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleAppendExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		SetCount int    `json:"set_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	id := s.session.AppendExercise(body.Name, body.SetCount)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "draft": s.currentDraft()})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	s.session.RemoveExercise(id)
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleRemoveExercisesAt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Offsets []int `json:"offsets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.session.RemoveExercisesAt(body.Offsets)
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.session.MoveExercise(body.From, body.To)
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleAddSetRow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, added := s.session.AddSetRow(id)
	if !added {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"set_id": setID, "draft": s.currentDraft()})
}

func (s *Server) handleUpdateSetRow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	var body struct {
		Weight string `json:"weight"`
		Reps   string `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !s.session.UpdateSetRow(id, setID, body.Weight, body.Reps) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleRemoveSetRow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	s.session.RemoveSetRow(id, setID)
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Save(r.Context()); err != nil {
		s.log.Error("save failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.currentDraft())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Entries())
}

func (s *Server) handleDailyCounts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, s.norm.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.store.FetchWorkoutsInRange(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	counts := metrics.DailyExerciseCounts(workouts, start, end, s.norm)
	if counts == nil {
		counts = []metrics.DayCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleVolumeHistory(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	before := s.session.SelectedDate()
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, s.norm.Location())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "before must be YYYY-MM-DD"})
			return
		}
		before = s.norm.Day(t)
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	workouts, err := s.store.FetchWorkoutsBefore(r.Context(), before, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	points := metrics.PreviousVolumes(workouts, exercise, before, limit)
	if points == nil {
		points = []metrics.VolumePoint{}
	}

	// Append the unsaved draft's volume so the chart shows a live trend.
	if vol := s.session.CurrentVolume(exercise); vol > 0 {
		points = append(points, metrics.VolumePoint{Date: s.session.SelectedDate(), Volume: vol})
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	month := time.Now().In(s.norm.Location())
	if v := r.URL.Query().Get("month"); v != "" {
		t, err := time.ParseInLocation("2006-01", v, s.norm.Location())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = t
	}

	start, end := s.norm.MonthRange(month)
	workouts, err := s.store.FetchWorkoutsInRange(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	shares := metrics.MuscleGroupShare(workouts, s.catalog, month, s.norm)
	if shares == nil {
		shares = []metrics.GroupShare{}
	}
	writeJSON(w, http.StatusOK, shares)
}

// heatCell is one day of the year heatmap with its severity tier.
type heatCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	year := time.Now().In(s.norm.Location()).Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year must be an integer"})
			return
		}
		year = parsed
	}

	start, end := s.norm.YearRange(year)
	workouts, err := s.store.FetchWorkoutsInRange(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	counts := metrics.YearHeatmap(workouts, year, s.norm)
	cells := make([]heatCell, 0, len(counts))
	for _, c := range counts {
		cells = append(cells, heatCell{
			Date:  c.Date.Format("2006-01-02"),
			Count: c.Count,
			Level: metrics.HeatLevel(c.Count),
		})
	}
	writeJSON(w, http.StatusOK, cells)
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.UUID{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDateRange reads start/end query params (YYYY-MM-DD), defaulting to
// the last 30 days.
func parseDateRange(r *http.Request, loc *time.Location) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now().In(loc)
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}

	if startStr == "" {
		start = end.AddDate(0, 0, -30)
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
