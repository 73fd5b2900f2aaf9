package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/titanium/internal/model"
)

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RenderSummary prints the history totals.
func RenderSummary(w io.Writer, summary HistorySummary) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Workouts: %d\n", summary.TotalWorkouts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Hours: %.1fh\n", summary.Hours()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Volume: %.1ft\n", summary.Tonnes()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// LogTableRows formats logs as table cells, in the given order.
func LogTableRows(logs []model.WorkoutLog) [][]string {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{
			l.Date.Local().Format("Mon 02 Jan 2006"),
			l.Date.Local().Format("15:04"),
			l.RoutineName,
			fmt.Sprintf("%d min", l.DurationSeconds/60),
			fmt.Sprintf("%d ex", l.ExercisesCompleted),
			strconv.FormatFloat(l.TotalVolume, 'f', -1, 64),
		})
	}
	return rows
}

// LogTableHeaders are the column titles matching LogTableRows.
var LogTableHeaders = []string{"Date", "Time", "Routine", "Duration", "Exercises", "Volume (kg)"}

// RenderLogTable prints logs newest first.
func RenderLogTable(w io.Writer, logs []model.WorkoutLog) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No workouts recorded yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	lines := formatTable(LogTableHeaders, LogTableRows(SortLogsDesc(logs)), map[int]bool{3: true, 4: true, 5: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// BodyTableRows formats readings as table cells, in the given order.
func BodyTableRows(stats []model.BodyStat) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Date.Local().Format("2006-01-02"),
			formatMetric(&s.Weight),
			formatMetric(s.BodyFatPercentage),
			formatMetric(s.MuscleMass),
			formatMetric(s.FatMass),
			formatMetric(s.VisceralFat),
		})
	}
	return rows
}

// BodyTableHeaders are the column titles matching BodyTableRows.
var BodyTableHeaders = []string{"Date", "Weight", "Body Fat %", "Muscle", "Fat", "Visceral"}

// RenderBodyTable prints readings oldest first with a weight sparkline.
func RenderBodyTable(w io.Writer, stats []model.BodyStat) error {
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "No body readings recorded yet.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Weight trend: %s\n", Sparkline(WeightTrend(stats))); err != nil {
		return err
	}
	lines := formatTable(BodyTableHeaders, BodyTableRows(stats), map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// RoutineTableHeaders are the column titles matching RenderRoutineTable.
var RoutineTableHeaders = []string{"ID", "Name", "Exercises", "Volume (kg)"}

// RenderRoutineTable prints one line per routine.
func RenderRoutineTable(w io.Writer, routines []model.Routine) error {
	if len(routines) == 0 {
		_, err := fmt.Fprintln(w, "No routines yet.")
		return err
	}
	rows := make([][]string, 0, len(routines))
	for _, r := range routines {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			strconv.Itoa(len(r.Exercises)),
			strconv.FormatFloat(RoutineVolume(r), 'f', -1, 64),
		})
	}
	for _, line := range formatTable(RoutineTableHeaders, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRoutineDetail prints a routine with its numbered exercises.
func RenderRoutineDetail(w io.Writer, r model.Routine) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", r.Name, r.ID); err != nil {
		return err
	}
	headers := []string{"#", "Exercise", "Sets", "Reps", "Weight (kg)", "Rest (s)", "Notes"}
	rows := make([][]string, 0, len(r.Exercises))
	for i, e := range r.Exercises {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			strconv.Itoa(e.Sets),
			e.Reps,
			strconv.FormatFloat(e.Weight, 'f', -1, 64),
			strconv.Itoa(e.RestTime),
			e.Notes,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 2: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
