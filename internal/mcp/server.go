package mcp

import (
	"log/slog"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultUserID scopes all queries in single-user deployments.
const defaultUserID = 1

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, cat *catalog.Catalog, norm *dateutil.Normalizer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SetLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SetLog workout history server. Query logged workouts, per-exercise volume trends, muscle-group distribution, and training-frequency heatmaps."),
	)

	h := &handlers{ds: ds, cat: cat, norm: norm, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolQueryWorkouts, Handler: h.queryWorkouts},
		server.ServerTool{Tool: toolGetVolumeHistory, Handler: h.getVolumeHistory},
		server.ServerTool{Tool: toolGetMuscleGroupShare, Handler: h.getMuscleGroupShare},
		server.ServerTool{Tool: toolGetTrainingHeatmap, Handler: h.getTrainingHeatmap},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds   DataSource
	cat  *catalog.Catalog
	norm *dateutil.Normalizer
	log  *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"setlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days with all logged sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"setlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with muscle group, equipment, and movement pattern"),
	mcp.WithMIMEType("application/json"),
)
