package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/titanium/internal/config"
	"github.com/verte-zerg/titanium/internal/export"
	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/planner"
	"github.com/verte-zerg/titanium/internal/stats"
)

var (
	bodyWeight   float64
	bodyFat      float64
	bodyMuscle   float64
	bodyFatMass  float64
	bodyVisceral float64

	historyFmt string
	tipNotes   string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show workout history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyFmt, "export", "", "export history as csv, json or yaml")
	cmd.Flags().StringVar(&exportOut, "out", config.DefaultExportDir(), "export directory")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := stats.BuildReport(a.ctx, a.records)
	if cmd.Flags().Changed("export") {
		return exportRows(cmd.OutOrStdout(), historyFmt, "workout_history", stats.HistoryRows(report.Logs))
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderLogTable(out, report.Logs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newBodyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "body",
		Short: "Track body composition",
	}

	addCmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a body reading",
		Example: `  titanium body add --weight 82.4 --body-fat 17.5 --muscle 37.9`,
		Args:    cobra.NoArgs,
		RunE:    runBodyAdd,
	}
	addCmd.Flags().Float64Var(&bodyWeight, "weight", 0, "body weight in kg (required)")
	addCmd.Flags().Float64Var(&bodyFat, "body-fat", 0, "body fat percentage")
	addCmd.Flags().Float64Var(&bodyMuscle, "muscle", 0, "muscle mass in kg")
	addCmd.Flags().Float64Var(&bodyFatMass, "fat", 0, "fat mass in kg")
	addCmd.Flags().Float64Var(&bodyVisceral, "visceral", 0, "visceral fat rating")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List body readings",
		Args:  cobra.NoArgs,
		RunE:  runBodyList,
	}
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Ask the coach about the latest reading",
		Args:  cobra.NoArgs,
		RunE:  runBodyAnalyze,
	}
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export body readings",
		Args:  cobra.NoArgs,
		RunE:  runBodyExport,
	}
	exportCmd.Flags().StringVar(&exportFmt, "format", defaultFormat, "csv, json or yaml")
	exportCmd.Flags().StringVar(&exportOut, "out", config.DefaultExportDir(), "export directory")

	cmd.AddCommand(addCmd, listCmd, analyzeCmd, exportCmd)
	return cmd
}

func runBodyAdd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stat := model.BodyStat{Weight: bodyWeight}
	optional := []struct {
		flag  string
		value float64
		dst   **float64
	}{
		{"body-fat", bodyFat, &stat.BodyFatPercentage},
		{"muscle", bodyMuscle, &stat.MuscleMass},
		{"fat", bodyFatMass, &stat.FatMass},
		{"visceral", bodyVisceral, &stat.VisceralFat},
	}
	for _, o := range optional {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = model.Float(o.value)
		}
	}
	saved, err := planner.RecordBodyStat(a.ctx, a.records, stat, time.Now())
	if err != nil {
		return fmt.Errorf("cannot record reading: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1f kg on %s\n", saved.Weight, saved.Date.Local().Format("2006-01-02"))
	return err
}

func runBodyList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return stats.RenderBodyTable(cmd.OutOrStdout(), a.records.ListBodyStats(a.ctx))
}

func runBodyAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	latest, ok := stats.LatestBodyStat(a.records.ListBodyStats(a.ctx))
	if !ok {
		return fmt.Errorf("no body readings yet; add one with: titanium body add --weight <kg>")
	}
	if !a.coach.Configured() {
		return fmt.Errorf("coach not configured; set TITANIUM_API_KEY or run: titanium config")
	}
	text := a.coach.ProgressAnalysis(a.ctx, latest.Weight, model.ValueOr(latest.MuscleMass, 0), model.ValueOr(latest.FatMass, 0))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func runBodyExport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return exportRows(cmd.OutOrStdout(), exportFmt, "body_evolution", stats.BodyRows(a.records.ListBodyStats(a.ctx)))
}

func exportRows(out io.Writer, format, baseName string, rows []export.Row) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	path, err := export.WriteFile(exportOut, baseName, exporter, rows)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Exported %d rows to %s\n", len(rows), path)
	return err
}

func newTipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tip <exercise>",
		Short:   "Ask the coach for technique tips",
		Example: `  titanium tip "Romanian Deadlift" --notes "lower back rounds"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runTipCmd,
	}
	cmd.Flags().StringVar(&tipNotes, "notes", "", "extra context for the coach")
	return cmd
}

func runTipCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("exercise name is required")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), a.coach.ExerciseTip(a.ctx, name, tipNotes))
	return err
}
