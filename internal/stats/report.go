package stats

import (
	"context"

	"github.com/verte-zerg/titanium/internal/model"
)

// RecordSource is the read side of the store the report needs.
type RecordSource interface {
	ListLogs(ctx context.Context) []model.WorkoutLog
	ListBodyStats(ctx context.Context) []model.BodyStat
}

// Report contains precomputed data for history and body rendering.
type Report struct {
	Logs      []model.WorkoutLog // newest first
	Summary   HistorySummary
	BodyStats []model.BodyStat // oldest first
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src RecordSource) Report {
	logs := src.ListLogs(ctx)
	return Report{
		Logs:      SortLogsDesc(logs),
		Summary:   Summarize(logs),
		BodyStats: src.ListBodyStats(ctx),
	}
}

// LatestBody returns the most recent body reading, if any.
func (r Report) LatestBody() (model.BodyStat, bool) {
	return LatestBodyStat(r.BodyStats)
}
