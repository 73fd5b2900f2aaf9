// Package main provides the CLI entrypoint for titanium.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/titanium/internal/coach"
	"github.com/verte-zerg/titanium/internal/config"
	"github.com/verte-zerg/titanium/internal/logging"
	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/session"
	"github.com/verte-zerg/titanium/internal/statsui"
	"github.com/verte-zerg/titanium/internal/store"
	"github.com/verte-zerg/titanium/internal/tui"
)

const (
	defaultLogLevel = "info"
	defaultFormat   = "csv"
)

var (
	dbPath     string
	logLevel   string
	logStderr  bool
	logJSON    bool
	coachModel string
	coachURL   string
	coachTime  time.Duration
	restTick   time.Duration
	exportOut  string
	exportFmt  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "titanium",
		Short:         "Terminal workout tracker with an AI coach",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runWorkoutCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the sqlite database")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&logStderr, "log-stderr", false, "write logs to stderr instead of the log file")
	flags.BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&coachModel, "coach-model", coach.DefaultModel, "coaching model name")
	flags.StringVar(&coachURL, "coach-base-url", coach.DefaultBaseURL, "OpenAI-compatible coaching endpoint")
	flags.DurationVar(&coachTime, "coach-timeout", coach.DefaultTimeout, "coaching request timeout")
	rootCmd.Flags().DurationVar(&restTick, "rest-tick", session.DefaultTickInterval, "rest countdown tick interval")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newRoutinesCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newBodyCmd())
	rootCmd.AddCommand(newTipCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// app holds the collaborators shared by every command.
type app struct {
	ctx     context.Context
	records *store.Records
	coach   *coach.Client
	workout model.WorkoutConfig
	closers []io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	config.LoadDotEnv()
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyBoolConfig(cmd, "log-json", &logJSON, fileCfg.Log.JSON)
	applyStringConfig(cmd, "coach-model", &coachModel, fileCfg.Coach.Model)
	applyStringConfig(cmd, "coach-base-url", &coachURL, fileCfg.Coach.BaseURL)
	applyDurationConfig(cmd, "coach-timeout", &coachTime, fileCfg.Coach.Timeout)
	applyDurationConfig(cmd, "rest-tick", &restTick, fileCfg.Workout.RestTick)

	logFile := config.DefaultLogPath()
	if fileCfg.Log.File != nil {
		logFile = *fileCfg.Log.File
	}

	a := &app{ctx: cmd.Context()}
	if a.ctx == nil {
		a.ctx = context.Background()
	}
	a.closers = append(a.closers, logging.Setup(logging.SetupParams{
		LogFileName:   logFile,
		LogToStderr:   logStderr,
		LogLevel:      logLevel,
		LogFormatJSON: logJSON,
	}))

	db, err := store.Open(dbPath)
	if err != nil {
		logrus.WithError(err).WithField("path", dbPath).Warn("storage unavailable, continuing without persistence")
		logErrf("warning: storage unavailable (%v); nothing will be saved\n", err)
		a.records = store.NewRecords(nil)
	} else {
		a.records = store.NewRecords(db)
		a.closers = append(a.closers, db)
	}

	apiKey := ""
	if fileCfg.Coach.APIKey != nil {
		apiKey = *fileCfg.Coach.APIKey
	}
	a.coach = coach.New(model.CoachConfig{
		APIKey:  apiKey,
		BaseURL: coachURL,
		Model:   coachModel,
		Timeout: coachTime,
	})
	a.workout = model.WorkoutConfig{RestTick: restTick}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
}

func runWorkoutCmd(cmd *cobra.Command, _ []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewModel(a.ctx, a.records, a.coach, a.workout)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Browse workout history and body readings",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	m := statsui.NewModel(a.ctx, a.records, a.coach)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func requireTerminal() error {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return errors.New("an interactive terminal is required; use the routines, history or body subcommands instead")
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# titanium configuration
# Uncomment a value to enable it. CLI flags override config values,
# TITANIUM_* environment variables override the file.

[store]
# path = %q

[coach]
# api-key = ""                 # or TITANIUM_API_KEY / GEMINI_API_KEY / API_KEY, also read from .env
# base-url = %q
# model = %q
# timeout = %q

[log]
# level = %q
# file = %q
# json = false

[workout]
# rest-tick = %q               # rest countdown resolution
`,
		config.DefaultDBPath(),
		coach.DefaultBaseURL,
		coach.DefaultModel,
		coach.DefaultTimeout.String(),
		defaultLogLevel,
		config.DefaultLogPath(),
		session.DefaultTickInterval.String(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
