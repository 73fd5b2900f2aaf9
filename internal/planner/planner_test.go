package planner

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/store"
)

func validRoutine() model.Routine {
	r := NewRoutine()
	r.Name = "Push A"
	e := NewExercise()
	e.Name = "Bench Press"
	return AddExercise(r, e)
}

func TestNewDefaults(t *testing.T) {
	r := NewRoutine()
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, DefaultRoutineName, r.Name)
	assert.Empty(t, r.Exercises)

	e := NewExercise()
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 3, e.Sets)
	assert.Equal(t, "12", e.Reps)
	assert.Equal(t, 60, e.RestTime)
	assert.Equal(t, 0.0, e.Weight)
	assert.NotEqual(t, e.ID, NewExercise().ID)
}

func TestValidateRoutine(t *testing.T) {
	require.NoError(t, ValidateRoutine(validRoutine()))

	blank := validRoutine()
	blank.Name = "   "
	assert.ErrorIs(t, ValidateRoutine(blank), ErrRoutineNameRequired)

	empty := validRoutine()
	empty.Exercises = nil
	assert.ErrorIs(t, ValidateRoutine(empty), ErrNoExercises)

	badSets := validRoutine()
	badSets.Exercises[0].Sets = 0
	assert.ErrorIs(t, ValidateRoutine(badSets), ErrInvalidExercise)
}

func TestSaveWritesNothingOnValidationError(t *testing.T) {
	ctx := context.Background()
	recs := store.NewRecords(store.NewMemory())

	r := validRoutine()
	r.Exercises = nil
	require.ErrorIs(t, Save(ctx, recs, r), ErrNoExercises)
	assert.Empty(t, recs.ListRoutines(ctx))

	r = validRoutine()
	r.Name = "  Push A  "
	require.NoError(t, Save(ctx, recs, r))
	routines := recs.ListRoutines(ctx)
	require.Len(t, routines, 1)
	assert.Equal(t, "Push A", routines[0].Name)
}

func TestApplyUpdate(t *testing.T) {
	r := validRoutine()

	updated, err := ApplyUpdate(r, 0, SetWeight(42.5))
	require.NoError(t, err)
	assert.Equal(t, 42.5, updated.Exercises[0].Weight)
	assert.Equal(t, 0.0, r.Exercises[0].Weight, "original routine must not change")

	updated, err = ApplyUpdate(updated, 0, SetReps(" 8-10 "))
	require.NoError(t, err)
	assert.Equal(t, "8-10", updated.Exercises[0].Reps)

	updated, err = ApplyUpdate(updated, 0, SetRestTime(0))
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Exercises[0].RestTime)

	updated, err = ApplyUpdate(updated, 0, SetNotes("slow eccentric"))
	require.NoError(t, err)
	assert.Equal(t, "slow eccentric", updated.Exercises[0].Notes)

	_, err = ApplyUpdate(r, 0, SetSets(0))
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ApplyUpdate(r, 0, SetWeight(-1))
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ApplyUpdate(r, 0, SetRestTime(-5))
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ApplyUpdate(r, 0, SetReps(""))
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ApplyUpdate(r, 3, SetName("x"))
	assert.ErrorIs(t, err, ErrExerciseIndex)
}

func TestParseUpdate(t *testing.T) {
	u, err := ParseUpdate("sets=5")
	require.NoError(t, err)
	assert.Equal(t, "sets", u.Field())

	u, err = ParseUpdate("Rest = 90")
	require.NoError(t, err)
	assert.Equal(t, "rest", u.Field())

	_, err = ParseUpdate("sets=many")
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ParseUpdate("color=red")
	assert.Error(t, err)
	_, err = ParseUpdate("no-equals")
	assert.Error(t, err)
}

func TestParseExercise(t *testing.T) {
	e, err := ParseExercise("Bench Press:4:8-10:60:90:pause: 1s at chest")
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", e.Name)
	assert.Equal(t, 4, e.Sets)
	assert.Equal(t, "8-10", e.Reps)
	assert.Equal(t, 60.0, e.Weight)
	assert.Equal(t, 90, e.RestTime)
	assert.Equal(t, "pause: 1s at chest", e.Notes)
	assert.NotEmpty(t, e.ID)

	e, err = ParseExercise("Plank")
	require.NoError(t, err)
	assert.Equal(t, DefaultSets, e.Sets)
	assert.Equal(t, DefaultReps, e.Reps)
	assert.Equal(t, DefaultRestTime, e.RestTime)

	_, err = ParseExercise(":3:10")
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ParseExercise("Row:0")
	assert.ErrorIs(t, err, ErrInvalidExercise)
}

func TestRemoveExercise(t *testing.T) {
	r := AddExercise(validRoutine(), model.Exercise{Name: "Dips", Sets: 3, Reps: "10"})
	require.Len(t, r.Exercises, 2)

	out, err := RemoveExercise(r, 0)
	require.NoError(t, err)
	require.Len(t, out.Exercises, 1)
	assert.Equal(t, "Dips", out.Exercises[0].Name)
	assert.Len(t, r.Exercises, 2)

	_, err = RemoveExercise(r, 5)
	assert.ErrorIs(t, err, ErrExerciseIndex)
}

func TestRecordBodyStat(t *testing.T) {
	ctx := context.Background()
	recs := store.NewRecords(store.NewMemory())
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := RecordBodyStat(ctx, recs, model.BodyStat{}, now)
	assert.ErrorIs(t, err, ErrWeightRequired)
	_, err = RecordBodyStat(ctx, recs, model.BodyStat{Weight: 80, FatMass: model.Float(-2)}, now)
	assert.ErrorIs(t, err, ErrInvalidBodyStat)
	_, err = RecordBodyStat(ctx, recs, model.BodyStat{Weight: 80, BodyFatPercentage: model.Float(120)}, now)
	assert.ErrorIs(t, err, ErrInvalidBodyStat)
	assert.Empty(t, recs.ListBodyStats(ctx))

	saved, err := RecordBodyStat(ctx, recs, model.BodyStat{Weight: 80, MuscleMass: model.Float(36)}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, saved.Date.Equal(now))

	stats := recs.ListBodyStats(ctx)
	require.Len(t, stats, 1)
	assert.Equal(t, saved.ID, stats[0].ID)
}

func TestNonFiniteValuesRejected(t *testing.T) {
	ctx := context.Background()
	recs := store.NewRecords(store.NewMemory())
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := RecordBodyStat(ctx, recs, model.BodyStat{Weight: v}, now)
		assert.ErrorIs(t, err, ErrInvalidBodyStat, "weight %v", v)
		_, err = RecordBodyStat(ctx, recs, model.BodyStat{Weight: 80, MuscleMass: model.Float(v)}, now)
		assert.ErrorIs(t, err, ErrInvalidBodyStat, "muscle %v", v)
		_, err = RecordBodyStat(ctx, recs, model.BodyStat{Weight: 80, VisceralFat: model.Float(v)}, now)
		assert.ErrorIs(t, err, ErrInvalidBodyStat, "visceral %v", v)

		_, err = ApplyUpdate(validRoutine(), 0, SetWeight(v))
		assert.ErrorIs(t, err, ErrInvalidExercise, "exercise weight %v", v)

		r := validRoutine()
		r.Exercises[0].Weight = v
		assert.ErrorIs(t, ValidateRoutine(r), ErrInvalidExercise)
	}
	assert.Empty(t, recs.ListBodyStats(ctx))

	_, err := ParseExercise("Squat:3:5:NaN")
	assert.ErrorIs(t, err, ErrInvalidExercise)
	_, err = ParseExercise("Squat:3:5:Inf")
	assert.ErrorIs(t, err, ErrInvalidExercise)
}
