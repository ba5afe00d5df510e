package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/claude/setlog/internal/models"
	"github.com/google/uuid"
)

// defaultSetRows is the number of empty rows a freshly added exercise gets.
const defaultSetRows = 5

// Session is the draft cache and sync engine for one app session. It holds
// the live draft for the selected date plus a per-date cache of drafts the
// user edited but has not saved. The cache is session-scoped and never
// persisted.
//
// All operations serialize on one mutex; overlapping SwitchDate calls are
// coalesced (the second is a no-op), never queued or interleaved.
type Session struct {
	mu      sync.Mutex
	store   Store
	catalog *catalog.Catalog
	norm    *dateutil.Normalizer
	log     *slog.Logger
	userID  int

	selectedDate time.Time
	entries      []*Entry
	note         string
	cache        map[time.Time]cachedDraft
	lastSynced   time.Time
	hasSynced    bool
	syncing      bool
}

// cachedDraft is one date's parked draft: the entry list together with the
// note, so unsaved note edits survive navigation the same way rows do.
type cachedDraft struct {
	entries []*Entry
	note    string
}

// NewSession creates a Session selecting today's date. No storage read
// happens until the first SwitchDate.
func NewSession(store Store, cat *catalog.Catalog, norm *dateutil.Normalizer, userID int, log *slog.Logger) *Session {
	return &Session{
		store:        store,
		catalog:      cat,
		norm:         norm,
		log:          log,
		userID:       userID,
		selectedDate: norm.Day(time.Now()),
		cache:        make(map[time.Time]cachedDraft),
	}
}

// StartNewWorkout clears the live draft for the selected date. Neither the
// cache nor the persistent store is touched.
func (s *Session) StartNewWorkout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDate = s.norm.Day(s.selectedDate)
	s.entries = nil
	s.note = ""
}

// SwitchDate flushes the live draft (entries and note) into the cache
// under the previously synced date, then loads the draft for the new date:
// from the cache when present (unsaved edits win over storage), otherwise
// from the store. A call arriving while another switch is in flight is a
// no-op. When the store fetch fails, the selected date and the live draft
// are left unchanged, so a later save still targets the old date.
func (s *Session) SwitchDate(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil
	}
	s.syncing = true

	if s.hasSynced {
		s.cache[s.lastSynced] = cachedDraft{entries: s.entries, note: s.note}
	}

	day := s.norm.Day(t)

	if cached, ok := s.cache[day]; ok {
		s.entries = cached.entries
		s.note = cached.note
		s.selectedDate = day
		s.lastSynced, s.hasSynced = day, true
		s.syncing = false
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	// Cache miss: consult the store without holding the lock so that
	// concurrent switches stay cheap no-ops.
	w, err := s.store.FetchWorkout(ctx, day, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	if err != nil {
		return fmt.Errorf("loading workout: %w", err)
	}
	if w != nil {
		s.entries = entriesFromWorkout(w)
		s.note = w.Note
	} else {
		s.entries = nil
		s.note = ""
	}
	s.selectedDate = day
	s.lastSynced, s.hasSynced = day, true
	return nil
}

// AppendExercise adds a new draft entry with setCount empty rows (the
// default 5 when setCount <= 0) and returns its id.
func (s *Session) AppendExercise(name string, setCount int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if setCount <= 0 {
		setCount = defaultSetRows
	}
	entry := newEntry(name, setCount)
	s.entries = append(s.entries, entry)
	return entry.ID
}

// AddSetRow appends an empty row to the matching entry. Returns the new
// row's id, or false when the entry is unknown.
func (s *Session) AddSetRow(exerciseID uuid.UUID) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.find(exerciseID)
	if entry == nil {
		return uuid.UUID{}, false
	}
	row := &SetRow{ID: uuid.New()}
	entry.Rows = append(entry.Rows, row)
	return row.ID, true
}

// RemoveSetRow deletes a row from the matching entry. Unknown ids are a
// no-op.
func (s *Session) RemoveSetRow(exerciseID, setID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.find(exerciseID)
	if entry == nil {
		return
	}
	for i, r := range entry.Rows {
		if r.ID == setID {
			entry.Rows = append(entry.Rows[:i], entry.Rows[i+1:]...)
			return
		}
	}
}

// UpdateSetRow replaces both text fields of a row atomically, so one field
// is never stale relative to the other. Returns false when the row is
// unknown.
func (s *Session) UpdateSetRow(exerciseID, setID uuid.UUID, weightText, repsText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.find(exerciseID)
	if entry == nil {
		return false
	}
	for _, r := range entry.Rows {
		if r.ID == setID {
			r.WeightText = weightText
			r.RepsText = repsText
			return true
		}
	}
	return false
}

// RemoveExercise deletes the entry with the given id. Unknown ids are a
// no-op.
func (s *Session) RemoveExercise(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// RemoveExercisesAt deletes entries at the given offsets. Out-of-range
// offsets are ignored.
func (s *Session) RemoveExercisesAt(offsets []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		if o >= 0 && o < len(s.entries) {
			drop[o] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := s.entries[:0]
	for i, e := range s.entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// MoveExercise moves the entry at from to position to, preserving row
// contents. Out-of-range indices are a no-op.
func (s *Session) MoveExercise(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.entries) || to < 0 || to >= len(s.entries) || from == to {
		return
	}
	e := s.entries[from]
	rest := append(s.entries[:from], s.entries[from+1:]...)
	s.entries = append(rest[:to], append([]*Entry{e}, rest[to:]...)...)
}

// SetNote replaces the draft's free-text note.
func (s *Session) SetNote(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = text
}

// Note returns the draft's free-text note.
func (s *Session) Note() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

// HasValidSets reports whether at least one row across all entries is
// convertible to a persisted set.
func (s *Session) HasValidSets() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		for _, r := range e.Rows {
			if r.Valid() {
				return true
			}
		}
	}
	return false
}

// Save reconciles the draft against the persistent store: every valid row
// becomes a persisted set (invalid rows are silently dropped). An empty
// result deletes any existing workout for the date; a non-empty result
// replaces the existing workout's sets or inserts a new workout. On a
// storage error the draft and cache are left exactly as before.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := s.buildSets()

	existing, err := s.store.FetchWorkout(ctx, s.selectedDate, s.userID)
	if err != nil {
		return fmt.Errorf("checking existing workout: %w", err)
	}

	switch {
	case len(sets) == 0 && existing == nil:
		// Nothing persisted, nothing to persist.
	case len(sets) == 0:
		if err := s.store.DeleteWorkout(ctx, existing.ID); err != nil {
			return fmt.Errorf("deleting workout: %w", err)
		}
		s.log.Info("workout deleted", "date", s.selectedDate.Format("2006-01-02"))
	case existing != nil:
		stampWorkoutID(sets, existing.ID)
		if err := s.store.UpdateWorkout(ctx, existing.ID, s.note, sets); err != nil {
			return fmt.Errorf("updating workout: %w", err)
		}
		s.log.Info("workout updated", "date", s.selectedDate.Format("2006-01-02"), "sets", len(sets))
	default:
		w := &models.Workout{
			ID:     uuid.New(),
			UserID: s.userID,
			Date:   s.selectedDate,
			Note:   s.note,
			Sets:   sets,
		}
		stampWorkoutID(sets, w.ID)
		if err := s.store.InsertWorkout(ctx, w); err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		s.log.Info("workout saved", "date", s.selectedDate.Format("2006-01-02"), "sets", len(sets))
	}

	s.cache[s.selectedDate] = cachedDraft{entries: s.entries, note: s.note}
	s.lastSynced, s.hasSynced = s.selectedDate, true
	return nil
}

// buildSets converts every valid row into a persisted set. Caller holds the
// lock. The exercise id is resolved through the catalog; a name the catalog
// does not know keeps the name itself as its id.
func (s *Session) buildSets() []models.ExerciseSet {
	var sets []models.ExerciseSet
	pos := 0
	for _, e := range s.entries {
		exerciseID, ok := s.catalog.IDByName(e.ExerciseName)
		if !ok {
			exerciseID = e.ExerciseName
		}
		for _, r := range e.Rows {
			if !r.Valid() {
				continue
			}
			weight, _ := strconv.Atoi(r.WeightText)
			reps, _ := strconv.Atoi(r.RepsText)
			sets = append(sets, models.ExerciseSet{
				ID:           uuid.New(),
				ExerciseID:   exerciseID,
				ExerciseName: e.ExerciseName,
				WeightKg:     float64(weight),
				Reps:         reps,
				Position:     pos,
			})
			pos++
		}
	}
	return sets
}

func stampWorkoutID(sets []models.ExerciseSet, id uuid.UUID) {
	for i := range sets {
		sets[i].WorkoutID = id
	}
}

// SelectedDate returns the normalized date the draft is editing.
func (s *Session) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDate
}

// Entries returns a deep-copy snapshot of the live draft.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Entry returns a deep copy of the entry with the given id.
func (s *Session) Entry(id uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.find(id); e != nil {
		return e.clone(), true
	}
	return Entry{}, false
}

// WeightText returns the raw weight text of a row.
func (s *Session) WeightText(exerciseID, setID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findRow(exerciseID, setID); r != nil {
		return r.WeightText, true
	}
	return "", false
}

// RepsText returns the raw reps text of a row.
func (s *Session) RepsText(exerciseID, setID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findRow(exerciseID, setID); r != nil {
		return r.RepsText, true
	}
	return "", false
}

// ExerciseName resolves a catalog id to its display name.
func (s *Session) ExerciseName(catalogID string) (string, bool) {
	return s.catalog.Name(catalogID)
}

// CurrentVolume sums the volume of the live draft's valid rows for the
// given exercise name. Chart callers append it to the persisted trend to
// show the unsaved day.
func (s *Session) CurrentVolume(exerciseName string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var vol float64
	for _, e := range s.entries {
		if e.ExerciseName != exerciseName {
			continue
		}
		for _, r := range e.Rows {
			if !r.Valid() {
				continue
			}
			weight, _ := strconv.Atoi(r.WeightText)
			reps, _ := strconv.Atoi(r.RepsText)
			vol += float64(weight) * float64(reps)
		}
	}
	return vol
}

// ExerciseNames returns the distinct exercise names in the live draft, in
// draft order.
func (s *Session) ExerciseNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.entries))
	var names []string
	for _, e := range s.entries {
		if !seen[e.ExerciseName] {
			seen[e.ExerciseName] = true
			names = append(names, e.ExerciseName)
		}
	}
	return names
}

func (s *Session) find(id uuid.UUID) *Entry {
	for _, e := range s.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Session) findRow(exerciseID, setID uuid.UUID) *SetRow {
	entry := s.find(exerciseID)
	if entry == nil {
		return nil
	}
	for _, r := range entry.Rows {
		if r.ID == setID {
			return r
		}
	}
	return nil
}
