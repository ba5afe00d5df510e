// Package metrics derives chart and heatmap series from persisted workout
// history. Every function is pure: it reads the supplied workout slice,
// never mutates it, and returns empty results on empty input.
package metrics

import (
	"sort"
	"time"

	"github.com/claude/setlog/internal/catalog"
	"github.com/claude/setlog/internal/dateutil"
	"github.com/claude/setlog/internal/models"
)

// defaultVolumeWindow is how many past sessions PreviousVolumes returns
// when the caller passes a non-positive limit.
const defaultVolumeWindow = 4

// DayCount is the number of distinct exercises logged on one day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// VolumePoint is one workout's total volume for a single exercise.
type VolumePoint struct {
	Date   time.Time `json:"date"`
	Volume float64   `json:"volume"`
}

// GroupShare is how often a muscle group was trained in a period.
type GroupShare struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// OtherGroup buckets exercise ids the catalog does not know.
const OtherGroup = "other"

// DailyExerciseCounts buckets workouts in [start, end) by normalized day
// and counts the distinct exercise ids logged each day. Repeated sets of
// the same exercise count once.
func DailyExerciseCounts(workouts []models.Workout, start, end time.Time, norm *dateutil.Normalizer) []DayCount {
	perDay := make(map[time.Time]map[string]struct{})
	for _, w := range workouts {
		if w.Date.Before(start) || !w.Date.Before(end) {
			continue
		}
		day := norm.Day(w.Date)
		ids, ok := perDay[day]
		if !ok {
			ids = make(map[string]struct{})
			perDay[day] = ids
		}
		for _, set := range w.Sets {
			ids[set.ExerciseID] = struct{}{}
		}
	}

	result := make([]DayCount, 0, len(perDay))
	for day, ids := range perDay {
		result = append(result, DayCount{Date: day, Count: len(ids)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

// PreviousVolumes returns the trailing volume window for one exercise:
// workouts strictly before the cutoff, each reduced to the summed volume of
// its sets matching the exercise name, zero-volume workouts skipped, the
// most recent limit entries kept, in chronological order. The live draft's
// volume for the current day is appended separately by the caller.
func PreviousVolumes(workouts []models.Workout, exerciseName string, before time.Time, limit int) []VolumePoint {
	if limit <= 0 {
		limit = defaultVolumeWindow
	}

	past := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Date.Before(before) {
			past = append(past, w)
		}
	}
	sort.Slice(past, func(i, j int) bool { return past[i].Date.After(past[j].Date) })

	var recent []VolumePoint
	for _, w := range past {
		var vol float64
		for _, set := range w.Sets {
			if set.ExerciseName == exerciseName {
				vol += set.Volume()
			}
		}
		if vol <= 0 {
			continue
		}
		recent = append(recent, VolumePoint{Date: w.Date, Volume: vol})
		if len(recent) == limit {
			break
		}
	}

	// Newest-first to chronological.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent
}

// MuscleGroupShare counts, per muscle group, how many workouts in the month
// containing t trained that group. Each workout contributes once per
// distinct exercise id; ids unknown to the catalog fall into OtherGroup.
// Sorted by count descending, ties by group label ascending.
func MuscleGroupShare(workouts []models.Workout, cat *catalog.Catalog, t time.Time, norm *dateutil.Normalizer) []GroupShare {
	start, end := norm.MonthRange(t)

	counts := make(map[string]int)
	for _, w := range workouts {
		if w.Date.Before(start) || !w.Date.Before(end) {
			continue
		}
		ids := make(map[string]struct{})
		for _, set := range w.Sets {
			ids[set.ExerciseID] = struct{}{}
		}
		for id := range ids {
			group, ok := cat.MuscleGroup(id)
			if !ok || group == "" {
				group = OtherGroup
			}
			counts[group]++
		}
	}

	result := make([]GroupShare, 0, len(counts))
	for group, count := range counts {
		result = append(result, GroupShare{Group: group, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Group < result[j].Group
	})
	return result
}

// YearHeatmap returns daily distinct-exercise counts across the full given
// year, for the calendar heatmap.
func YearHeatmap(workouts []models.Workout, year int, norm *dateutil.Normalizer) []DayCount {
	start, end := norm.YearRange(year)
	return DailyExerciseCounts(workouts, start, end, norm)
}

// HeatLevel buckets a daily count into the heatmap's fixed severity tiers:
// 0, 1-2, 3-4, 5+.
func HeatLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	default:
		return 3
	}
}
