package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/claude/setlog/internal/draft"
	"github.com/claude/setlog/internal/models"
	"github.com/claude/setlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// defaultUserID scopes all queries in single-user deployments.
const defaultUserID = 1

// Store is the read side of the persistent store the HTTP handlers need.
// Mutations go through the draft session. Both *storage.DB and
// *storage.SQLite satisfy it.
type Store interface {
	FetchWorkout(ctx context.Context, date time.Time, userID int) (*models.Workout, error)
	FetchWorkoutsBefore(ctx context.Context, cutoff time.Time, userID int) ([]models.Workout, error)
	FetchWorkoutsInRange(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.SQLite)(nil)
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	session *draft.Session
	catalog *catalog.Catalog
	norm    *dateutil.Normalizer
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, session *draft.Session, cat *catalog.Catalog, norm *dateutil.Normalizer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		session: session,
		catalog: cat,
		norm:    norm,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Draft editing (API key required)
	s.router.Route("/api/v1/draft", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Get("/", s.handleGetDraft)
		r.Post("/new", s.handleNewWorkout)
		r.Post("/date", s.handleSwitchDate)
		r.Post("/note", s.handleSetNote)
		r.Post("/save", s.handleSave)
		r.Post("/move", s.handleMoveExercise)
		r.Post("/exercises", s.handleAppendExercise)
		r.Post("/exercises/remove", s.handleRemoveExercisesAt)
		r.Delete("/exercises/{id}", s.handleRemoveExercise)
		r.Post("/exercises/{id}/sets", s.handleAddSetRow)
		r.Put("/exercises/{id}/sets/{setID}", s.handleUpdateSetRow)
		r.Delete("/exercises/{id}/sets/{setID}", s.handleRemoveSetRow)
	})

	// Charting and catalog (read-only)
	s.router.Get("/api/v1/catalog", s.handleCatalog)
	s.router.Get("/api/v1/metrics/daily-counts", s.handleDailyCounts)
	s.router.Get("/api/v1/metrics/volume-history", s.handleVolumeHistory)
	s.router.Get("/api/v1/metrics/muscle-groups", s.handleMuscleGroups)
	s.router.Get("/api/v1/metrics/heatmap", s.handleHeatmap)
}
