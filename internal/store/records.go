package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/titanium/internal/model"
)

// Collection keys. Each holds a JSON list of records.
const (
	KeyRoutines  = "routines"
	KeyLogs      = "logs"
	KeyBodyStats = "body_stats"
)

// Records exposes the routine, log and body-stat collections over a KV.
//
// Records never fails: an unavailable KV (nil), a read error or malformed
// stored content yields an empty collection, and a failed write is dropped.
// A write whose read of the current collection fails is skipped, so an
// unreadable collection is never overwritten. Failures are logged.
type Records struct {
	kv KV
}

// NewRecords wraps kv. A nil kv behaves as unavailable storage.
func NewRecords(kv KV) *Records {
	return &Records{kv: kv}
}

// Available reports whether a backing KV is configured.
func (r *Records) Available() bool {
	return r != nil && r.kv != nil
}

// ListRoutines returns stored routines in storage order.
func (r *Records) ListRoutines(ctx context.Context) []model.Routine {
	var routines []model.Routine
	r.load(ctx, KeyRoutines, &routines)
	return routines
}

func (r *Records) loadRoutines(ctx context.Context) ([]model.Routine, bool) {
	var routines []model.Routine
	ok := r.load(ctx, KeyRoutines, &routines)
	return routines, ok
}

// GetRoutine returns the routine with the given id.
func (r *Records) GetRoutine(ctx context.Context, id string) (model.Routine, bool) {
	for _, routine := range r.ListRoutines(ctx) {
		if routine.ID == id {
			return routine, true
		}
	}
	return model.Routine{}, false
}

// UpsertRoutine replaces the routine with a matching id in place or appends it.
func (r *Records) UpsertRoutine(ctx context.Context, routine model.Routine) {
	if !r.Available() {
		return
	}
	routines, ok := r.loadRoutines(ctx)
	if !ok {
		logrus.WithField("routine", routine.ID).Error("routine not saved: current routines unreadable")
		return
	}
	replaced := false
	for i := range routines {
		if routines[i].ID == routine.ID {
			routines[i] = routine
			replaced = true
			break
		}
	}
	if !replaced {
		routines = append(routines, routine)
	}
	r.save(ctx, KeyRoutines, routines)
}

// DeleteRoutine removes the routine with the given id. Unknown ids are ignored.
func (r *Records) DeleteRoutine(ctx context.Context, id string) {
	if !r.Available() {
		return
	}
	routines, ok := r.loadRoutines(ctx)
	if !ok {
		logrus.WithField("routine", id).Error("routine not deleted: current routines unreadable")
		return
	}
	kept := routines[:0]
	for _, routine := range routines {
		if routine.ID != id {
			kept = append(kept, routine)
		}
	}
	if len(kept) == len(routines) {
		return
	}
	if len(kept) == 0 {
		// A missing key reads as an empty collection.
		if err := r.kv.Delete(ctx, KeyRoutines); err != nil {
			logrus.WithError(err).WithField("key", KeyRoutines).Error("failed to delete collection")
		}
		return
	}
	r.save(ctx, KeyRoutines, kept)
}

// ListLogs returns workout logs in insertion order.
func (r *Records) ListLogs(ctx context.Context) []model.WorkoutLog {
	var logs []model.WorkoutLog
	r.load(ctx, KeyLogs, &logs)
	return logs
}

// AppendLog adds a workout log.
func (r *Records) AppendLog(ctx context.Context, log model.WorkoutLog) {
	if !r.Available() {
		return
	}
	var logs []model.WorkoutLog
	if !r.load(ctx, KeyLogs, &logs) {
		logrus.WithField("log", log.ID).Error("workout log not saved: current logs unreadable")
		return
	}
	logs = append(logs, log)
	r.save(ctx, KeyLogs, logs)
}

// ListBodyStats returns body readings sorted ascending by date.
func (r *Records) ListBodyStats(ctx context.Context) []model.BodyStat {
	var stats []model.BodyStat
	r.load(ctx, KeyBodyStats, &stats)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Date.Before(stats[j].Date)
	})
	return stats
}

// AppendBodyStat adds a body reading.
func (r *Records) AppendBodyStat(ctx context.Context, stat model.BodyStat) {
	if !r.Available() {
		return
	}
	var stats []model.BodyStat
	if !r.load(ctx, KeyBodyStats, &stats) {
		logrus.WithField("reading", stat.ID).Error("body reading not saved: current readings unreadable")
		return
	}
	stats = append(stats, stat)
	r.save(ctx, KeyBodyStats, stats)
}

// load decodes the collection at key into dst. It reports false only when the
// KV read failed; a missing key or malformed content leaves dst empty.
func (r *Records) load(ctx context.Context, key string, dst any) bool {
	if !r.Available() {
		return false
	}
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to read collection; treating as empty")
		return false
	}
	if !ok || raw == "" {
		return true
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("malformed collection; treating as empty")
		// Unmarshal may have partially filled dst.
		resetSlice(dst)
	}
	return true
}

func (r *Records) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("failed to encode collection")
		return
	}
	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		logrus.WithError(err).WithField("key", key).Error("failed to write collection")
	}
}

func resetSlice(dst any) {
	switch v := dst.(type) {
	case *[]model.Routine:
		*v = nil
	case *[]model.WorkoutLog:
		*v = nil
	case *[]model.BodyStat:
		*v = nil
	}
}
