package mcp

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/claude/setlog/internal/metrics"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultRange returns start/end defaulting to the last 30 days.
func (h *handlers) defaultRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = h.parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now().In(h.norm.Location())
	}

	if startStr != "" {
		start, err = h.parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func (h *handlers) parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation("2006-01-02", s, h.norm.Location())
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolQueryWorkouts = mcp.NewTool("query_workouts",
	mcp.WithDescription("Query logged workouts in a date range. Each workout includes its note and every set (exercise, weight in kg, reps)."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetVolumeHistory = mcp.NewTool("get_volume_history",
	mcp.WithDescription("Trailing per-workout volume (weight x reps summed) for one exercise, chronological, ending just before the cutoff. Sessions with zero volume for the exercise are skipped."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise display name (e.g. 'Bench Press')")),
	mcp.WithString("before", mcp.Description("Cutoff date (exclusive). Defaults to now.")),
	mcp.WithString("limit", mcp.Description("Number of sessions to return. Defaults to 4.")),
)

var toolGetMuscleGroupShare = mcp.NewTool("get_muscle_group_share",
	mcp.WithDescription("How often each muscle group was trained in a calendar month. Counts distinct exercises per workout, mapped to catalog muscle groups."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

var toolGetTrainingHeatmap = mcp.NewTool("get_training_heatmap",
	mcp.WithDescription("Daily distinct-exercise counts for a full year with heatmap severity levels (0, 1-2, 3-4, 5+)."),
	mcp.WithString("year", mcp.Description("Four-digit year. Defaults to the current year.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises with muscle group, equipment, and movement pattern."),
	mcp.WithString("muscle_group", mcp.Description("Filter by muscle-group key (e.g. chest, back, legs, shoulders, arms, core)")),
)

// --- Tool handlers ---

func (h *handlers) queryWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := h.defaultRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.FetchWorkoutsInRange(ctx, start, end, defaultUserID)
	if err != nil {
		h.log.Error("mcp query_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	before := time.Now().In(h.norm.Location())
	if v := req.GetString("before", ""); v != "" {
		before, err = h.parseFlexTime(v)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	limit := 0
	if v := req.GetString("limit", ""); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return mcp.NewToolResultError("limit must be an integer"), nil
		}
	}

	workouts, err := h.ds.FetchWorkoutsBefore(ctx, before, defaultUserID)
	if err != nil {
		h.log.Error("mcp get_volume_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	points := metrics.PreviousVolumes(workouts, exercise, before, limit)
	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleGroupShare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month := time.Now().In(h.norm.Location())
	if v := req.GetString("month", ""); v != "" {
		parsed, err := time.ParseInLocation("2006-01", v, h.norm.Location())
		if err != nil {
			return mcp.NewToolResultError("month must be YYYY-MM"), nil
		}
		month = parsed
	}

	start, end := h.norm.MonthRange(month)
	workouts, err := h.ds.FetchWorkoutsInRange(ctx, start, end, defaultUserID)
	if err != nil {
		h.log.Error("mcp get_muscle_group_share", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	shares := metrics.MuscleGroupShare(workouts, h.cat, month, h.norm)
	result, err := mcp.NewToolResultJSON(shares)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingHeatmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year := time.Now().In(h.norm.Location()).Year()
	if v := req.GetString("year", ""); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return mcp.NewToolResultError("year must be an integer"), nil
		}
		year = parsed
	}

	start, end := h.norm.YearRange(year)
	workouts, err := h.ds.FetchWorkoutsInRange(ctx, start, end, defaultUserID)
	if err != nil {
		h.log.Error("mcp get_training_heatmap", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	counts := metrics.YearHeatmap(workouts, year, h.norm)
	type cell struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
		Level int    `json:"level"`
	}
	cells := make([]cell, 0, len(counts))
	for _, c := range counts {
		cells = append(cells, cell{
			Date:  c.Date.Format("2006-01-02"),
			Count: c.Count,
			Level: metrics.HeatLevel(c.Count),
		})
	}

	result, err := mcp.NewToolResultJSON(cells)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := h.cat.Entries()
	if group := req.GetString("muscle_group", ""); group != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.EqualFold(e.MuscleGroup, group) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
