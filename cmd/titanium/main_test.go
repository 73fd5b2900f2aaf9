package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/planner"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, name := range []string{
		"TITANIUM_DB_PATH", "TITANIUM_API_KEY", "GEMINI_API_KEY", "API_KEY",
		"TITANIUM_COACH_BASE_URL", "TITANIUM_COACH_MODEL", "TITANIUM_COACH_TIMEOUT",
		"TITANIUM_LOG_LEVEL", "TITANIUM_LOG_FILE", "TITANIUM_LOG_JSON",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--db", db))
	err := root.Execute()
	return out.String(), err
}

func TestRoutineLifecycle(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "titanium.db")

	out, err := run(t, db, "routines", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No routines yet.")

	out, err = run(t, db, "routines", "add", "--name", "Push A", "--exercise", "Bench Press:4:8-10:60:90", "--exercise", "Dips:3:12")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved routine Push A")

	out, err = run(t, db, "routines", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Push A")
	assert.Contains(t, out, "1920")

	_, err = run(t, db, "routines", "add", "--name", "Empty")
	assert.ErrorIs(t, err, planner.ErrNoExercises)

	_, err = run(t, db, "routines", "show", "missing")
	assert.Error(t, err)
}

func TestBodyCommands(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "titanium.db")

	_, err := run(t, db, "body", "add", "--weight", "0")
	assert.ErrorIs(t, err, planner.ErrWeightRequired)

	out, err := run(t, db, "body", "add", "--weight", "81.5", "--muscle", "37.9")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 81.5 kg")

	out, err = run(t, db, "body", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "81.5")
	assert.Contains(t, out, "37.9")

	_, err = run(t, db, "body", "analyze")
	assert.ErrorContains(t, err, "coach not configured")

	exportDir := filepath.Join(dir, "exports")
	out, err = run(t, db, "body", "export", "--format", "yaml", "--out", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 rows")
	data, err := os.ReadFile(filepath.Join(exportDir, "body_evolution.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "81.5")
}

func TestHistoryCommand(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "titanium.db")

	out, err := run(t, db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No workouts recorded yet.")

	exportDir := filepath.Join(dir, "exports")
	_, err = run(t, db, "history", "--export", "json", "--out", exportDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(exportDir, "workout_history.json"))
	require.NoError(t, err)

	_, err = run(t, db, "history", "--export", "xml", "--out", exportDir)
	assert.Error(t, err)
}

func TestTipWithoutKey(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, filepath.Join(dir, "titanium.db"), "tip", "Romanian", "Deadlift")
	require.NoError(t, err)
	assert.Contains(t, out, "API key")
}

func TestParseIndexedUpdate(t *testing.T) {
	index, update, err := parseIndexedUpdate("2:weight=62.5")
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.NotNil(t, update)

	for _, spec := range []string{"weight=1", "0:reps=8", "x:reps=8", "1:color=red"} {
		_, _, err := parseIndexedUpdate(spec)
		assert.Error(t, err, spec)
	}
}

func TestRemoveExercises(t *testing.T) {
	r := model.Routine{ID: "r", Name: "R", Exercises: []model.Exercise{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"},
	}}

	got, err := removeExercises(r, []int{1, 3, 3})
	require.NoError(t, err)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "b", got.Exercises[0].ID)
	assert.Len(t, r.Exercises, 3, "input untouched")

	_, err = removeExercises(r, []int{5})
	assert.Error(t, err)
}
