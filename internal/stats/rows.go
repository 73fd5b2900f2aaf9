package stats

import (
	"github.com/verte-zerg/titanium/internal/export"
	"github.com/verte-zerg/titanium/internal/model"
)

const (
	historyDateLayout = "02/01/2006 15:04"
	bodyDateLayout    = "02/01/2006"
)

// HistoryRows flattens logs into export rows, preserving their order.
func HistoryRows(logs []model.WorkoutLog) []export.Row {
	rows := make([]export.Row, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, export.Row{
			{Label: "Date", Value: l.Date.Local().Format(historyDateLayout)},
			{Label: "Routine", Value: l.RoutineName},
			{Label: "Duration (min)", Value: l.DurationSeconds / 60},
			{Label: "Exercises", Value: l.ExercisesCompleted},
			{Label: "Total Volume (kg)", Value: l.TotalVolume},
		})
	}
	return rows
}

// BodyRows flattens body readings into export rows, preserving their order.
func BodyRows(stats []model.BodyStat) []export.Row {
	rows := make([]export.Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, export.Row{
			{Label: "Date", Value: s.Date.Local().Format(bodyDateLayout)},
			{Label: "Weight (kg)", Value: s.Weight},
			{Label: "Muscle Mass (kg)", Value: s.MuscleMass},
			{Label: "Fat Mass (kg)", Value: s.FatMass},
			{Label: "Body Fat (%)", Value: s.BodyFatPercentage},
		})
	}
	return rows
}
