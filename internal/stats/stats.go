// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/titanium/internal/model"
)

const sparkChars = " .:-=+*#%@"

// HistorySummary totals a set of workout logs.
type HistorySummary struct {
	TotalWorkouts    int
	TotalTimeSeconds int64
	TotalVolume      float64
}

// Hours returns the total training time in hours.
func (s HistorySummary) Hours() float64 {
	return float64(s.TotalTimeSeconds) / 3600.0
}

// Tonnes returns the total volume in metric tonnes.
func (s HistorySummary) Tonnes() float64 {
	return s.TotalVolume / 1000.0
}

// Summarize totals workouts, time and volume across logs.
func Summarize(logs []model.WorkoutLog) HistorySummary {
	summary := HistorySummary{TotalWorkouts: len(logs)}
	for _, l := range logs {
		summary.TotalTimeSeconds += l.DurationSeconds
		summary.TotalVolume += l.TotalVolume
	}
	return summary
}

// FirstNumberIn returns the leading integer of a rep specification, reading
// only the part before the first '-'. "10-12" gives 10; unparsable gives 0.
func FirstNumberIn(reps string) int {
	head, _, _ := strings.Cut(reps, "-")
	head = strings.TrimSpace(head)
	head = strings.TrimPrefix(head, "+")
	n := 0
	for _, r := range head {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > math.MaxInt32 {
			return 0
		}
	}
	return n
}

// ExerciseVolume approximates the work of one exercise as weight * sets * leading reps.
func ExerciseVolume(e model.Exercise) float64 {
	return e.Weight * float64(e.Sets) * float64(FirstNumberIn(e.Reps))
}

// RoutineVolume sums ExerciseVolume over every exercise of the routine,
// whether or not it was performed.
func RoutineVolume(r model.Routine) float64 {
	total := 0.0
	for _, e := range r.Exercises {
		total += ExerciseVolume(e)
	}
	return total
}

// SortLogsDesc returns a copy of logs ordered newest first.
func SortLogsDesc(logs []model.WorkoutLog) []model.WorkoutLog {
	out := make([]model.WorkoutLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// LatestBodyStat returns the last reading of an ascending series.
func LatestBodyStat(stats []model.BodyStat) (model.BodyStat, bool) {
	if len(stats) == 0 {
		return model.BodyStat{}, false
	}
	return stats[len(stats)-1], true
}

// WeightTrend extracts the body weight series from ascending readings.
func WeightTrend(stats []model.BodyStat) []float64 {
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = s.Weight
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
