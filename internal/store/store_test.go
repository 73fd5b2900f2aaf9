package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/titanium/internal/model"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "titanium.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func routine(id, name string) model.Routine {
	return model.Routine{
		ID:   id,
		Name: name,
		Exercises: []model.Exercise{
			{ID: id + "-e1", Name: "Squat", Sets: 3, Reps: "10-12", Weight: 20, RestTime: 60},
		},
	}
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	_, ok, err := st.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, "k", "v1"))
	require.NoError(t, st.Set(ctx, "k", "v2"))
	v, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Delete(ctx, "k"))
	_, ok, err = st.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "titanium.db")

	st, err := Open(path)
	require.NoError(t, err)
	NewRecords(st).UpsertRoutine(ctx, routine("r1", "Push"))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	routines := NewRecords(st).ListRoutines(ctx)
	require.Len(t, routines, 1)
	assert.Equal(t, "Push", routines[0].Name)
}

func TestRecordsUpsertRoutine(t *testing.T) {
	ctx := context.Background()
	for name, kv := range map[string]KV{"sqlite": openTestDB(t), "memory": NewMemory()} {
		t.Run(name, func(t *testing.T) {
			recs := NewRecords(kv)
			assert.Empty(t, recs.ListRoutines(ctx))

			recs.UpsertRoutine(ctx, routine("a", "A"))
			recs.UpsertRoutine(ctx, routine("b", "B"))
			recs.UpsertRoutine(ctx, routine("c", "C"))
			recs.UpsertRoutine(ctx, routine("b", "B2"))

			routines := recs.ListRoutines(ctx)
			require.Len(t, routines, 3)
			assert.Equal(t, []string{"A", "B2", "C"}, []string{routines[0].Name, routines[1].Name, routines[2].Name})

			got, ok := recs.GetRoutine(ctx, "b")
			require.True(t, ok)
			assert.Equal(t, "B2", got.Name)
			_, ok = recs.GetRoutine(ctx, "zzz")
			assert.False(t, ok)
		})
	}
}

func TestRecordsDeleteRoutine(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(NewMemory())
	recs.UpsertRoutine(ctx, routine("a", "A"))
	recs.UpsertRoutine(ctx, routine("b", "B"))

	recs.DeleteRoutine(ctx, "does-not-exist")
	assert.Len(t, recs.ListRoutines(ctx), 2)

	recs.DeleteRoutine(ctx, "a")
	routines := recs.ListRoutines(ctx)
	require.Len(t, routines, 1)
	assert.Equal(t, "b", routines[0].ID)
}

func TestRecordsDeleteLastRoutineDropsKey(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	recs := NewRecords(kv)
	recs.UpsertRoutine(ctx, routine("a", "A"))

	recs.DeleteRoutine(ctx, "a")
	_, ok, err := kv.Get(ctx, KeyRoutines)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, recs.ListRoutines(ctx))

	recs.UpsertRoutine(ctx, routine("b", "B"))
	assert.Len(t, recs.ListRoutines(ctx), 1)
}

func TestRecordsLogsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(openTestDB(t))
	recs.AppendLog(ctx, model.WorkoutLog{ID: "2", Date: day("2024-02-01")})
	recs.AppendLog(ctx, model.WorkoutLog{ID: "1", Date: day("2024-01-01")})

	logs := recs.ListLogs(ctx)
	require.Len(t, logs, 2)
	assert.Equal(t, "2", logs[0].ID)
	assert.Equal(t, "1", logs[1].ID)
	assert.True(t, logs[0].Date.Equal(day("2024-02-01")))
}

func TestRecordsBodyStatsSortedAscending(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(NewMemory())
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "mar", Date: day("2024-03-01"), Weight: 80})
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "jan", Date: day("2024-01-01"), Weight: 82})
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "feb", Date: day("2024-02-01"), Weight: 81, MuscleMass: model.Float(35)})

	stats := recs.ListBodyStats(ctx)
	require.Len(t, stats, 3)
	assert.Equal(t, []string{"jan", "feb", "mar"}, []string{stats[0].ID, stats[1].ID, stats[2].ID})
	require.NotNil(t, stats[1].MuscleMass)
	assert.Equal(t, 35.0, *stats[1].MuscleMass)
	assert.Nil(t, stats[0].MuscleMass)
}

func TestRecordsMalformedContentIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyRoutines, "{not json"))
	require.NoError(t, kv.Set(ctx, KeyLogs, `[{"id":"x","durationSeconds":"oops"}]`))
	require.NoError(t, kv.Set(ctx, KeyBodyStats, `42`))

	recs := NewRecords(kv)
	assert.Empty(t, recs.ListRoutines(ctx))
	assert.Empty(t, recs.ListLogs(ctx))
	assert.Empty(t, recs.ListBodyStats(ctx))

	// Writing over a corrupt collection starts it fresh.
	recs.UpsertRoutine(ctx, routine("a", "A"))
	assert.Len(t, recs.ListRoutines(ctx), 1)
}

func TestRecordsUnavailableIsNoop(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(nil)
	assert.False(t, recs.Available())

	recs.UpsertRoutine(ctx, routine("a", "A"))
	recs.DeleteRoutine(ctx, "a")
	recs.AppendLog(ctx, model.WorkoutLog{ID: "l"})
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "b", Weight: 80})

	assert.Empty(t, recs.ListRoutines(ctx))
	assert.Empty(t, recs.ListLogs(ctx))
	assert.Empty(t, recs.ListBodyStats(ctx))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (failingKV) Delete(context.Context, string) error      { return errors.New("disk on fire") }

func TestRecordsBackendErrorsDegrade(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(failingKV{})
	assert.NotPanics(t, func() {
		recs.UpsertRoutine(ctx, routine("a", "A"))
		recs.AppendLog(ctx, model.WorkoutLog{ID: "l"})
	})
	assert.Empty(t, recs.ListRoutines(ctx))
	assert.Empty(t, recs.ListLogs(ctx))
}

// flakyKV wraps a Memory whose reads can be switched to fail.
type flakyKV struct {
	*Memory
	failReads bool
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failReads {
		return "", false, errors.New("database is locked")
	}
	return f.Memory.Get(ctx, key)
}

func TestRecordsUnreadableCollectionIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: NewMemory()}
	recs := NewRecords(kv)

	for _, id := range []string{"l1", "l2", "l3", "l4", "l5"} {
		recs.AppendLog(ctx, model.WorkoutLog{ID: id})
	}
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "b1", Date: day("2024-01-01"), Weight: 80})
	recs.UpsertRoutine(ctx, routine("a", "A"))
	recs.UpsertRoutine(ctx, routine("b", "B"))

	kv.failReads = true
	recs.AppendLog(ctx, model.WorkoutLog{ID: "l6"})
	recs.AppendBodyStat(ctx, model.BodyStat{ID: "b2", Date: day("2024-02-01"), Weight: 79})
	recs.UpsertRoutine(ctx, routine("c", "C"))
	recs.DeleteRoutine(ctx, "a")
	assert.Empty(t, recs.ListLogs(ctx))
	kv.failReads = false

	logs := recs.ListLogs(ctx)
	require.Len(t, logs, 5)
	assert.Equal(t, "l1", logs[0].ID)
	assert.Len(t, recs.ListBodyStats(ctx), 1)
	routines := recs.ListRoutines(ctx)
	require.Len(t, routines, 2)
	assert.Equal(t, "a", routines[0].ID)

	recs.AppendLog(ctx, model.WorkoutLog{ID: "l6"})
	assert.Len(t, recs.ListLogs(ctx), 6)
}

func TestRecordsRandomReadingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	recs := NewRecords(openTestDB(t))
	faker := gofakeit.New(42)

	start := day("2023-01-01")
	want := map[string]float64{}
	for i := 0; i < 25; i++ {
		stat := model.BodyStat{
			ID:     faker.UUID(),
			Date:   faker.DateRange(start, start.AddDate(1, 0, 0)).UTC(),
			Weight: faker.Float64Range(50, 120),
		}
		if faker.Bool() {
			stat.MuscleMass = model.Float(faker.Float64Range(25, 45))
		}
		want[stat.ID] = stat.Weight
		recs.AppendBodyStat(ctx, stat)
	}

	got := recs.ListBodyStats(ctx)
	require.Len(t, got, len(want))
	for i, s := range got {
		assert.Equal(t, want[s.ID], s.Weight)
		if i > 0 {
			assert.False(t, s.Date.Before(got[i-1].Date), "readings ascending")
		}
	}

	names := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		name := faker.Word()
		names = append(names, name)
		recs.AppendLog(ctx, model.WorkoutLog{
			ID:              faker.UUID(),
			RoutineName:     name,
			Date:            faker.DateRange(start, start.AddDate(1, 0, 0)).UTC(),
			DurationSeconds: int64(faker.Number(60, 7200)),
		})
	}
	logs := recs.ListLogs(ctx)
	require.Len(t, logs, len(names))
	for i, l := range logs {
		assert.Equal(t, names[i], l.RoutineName, "logs keep append order")
	}
}
