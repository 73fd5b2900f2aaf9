// Package tui provides the Bubble Tea workout interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/titanium/internal/coach"
	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/session"
	"github.com/verte-zerg/titanium/internal/stats"
)

type screen int

const (
	screenPicker screen = iota
	screenWorkout
	screenConfirmAbort
	screenSummary
)

// RoutineStore is the part of the store the workout screen needs.
type RoutineStore interface {
	ListRoutines(ctx context.Context) []model.Routine
	AppendLog(ctx context.Context, log model.WorkoutLog)
}

type tipMsg struct {
	ticket session.TipTicket
	text   string
}

type clockMsg struct {
	seq int
}

// Model implements the Bubble Tea workout UI.
type Model struct {
	ctx     context.Context
	records RoutineStore
	coach   coach.Coach
	machine *session.Machine
	ticks   *tickScheduler

	width  int
	height int

	screen     screen
	routines   []model.Routine
	pickCursor int
	message    string
	lastLog    model.WorkoutLog
	clockSeq   int

	tipPending map[session.TipTicket]bool
	spinner    spinner.Model
	progress   progress.Model
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tipStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// NewModel constructs the workout TUI model.
func NewModel(ctx context.Context, records RoutineStore, c coach.Coach, cfg model.WorkoutConfig, opts ...session.Option) *Model {
	ticks := newTickScheduler()
	if cfg.RestTick > 0 {
		opts = append([]session.Option{session.WithTickInterval(cfg.RestTick)}, opts...)
	}
	m := &Model{
		ctx:        ctx,
		records:    records,
		coach:      c,
		ticks:      ticks,
		machine:    session.New(records, ticks, opts...),
		tipPending: map[session.TipTicket]bool{},
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.loadRoutines()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(60, msg.Width-4))
		return m, nil
	case restTickMsg:
		cmd = m.ticks.handle(msg)
	case clockMsg:
		if msg.seq == m.clockSeq && m.machine.Active() {
			cmd = m.clockCmd()
		}
	case tipMsg:
		delete(m.tipPending, msg.ticket)
		if !m.machine.ApplyTip(msg.ticket, msg.text) {
			logrus.WithField("exercise", msg.ticket.ExerciseID).Debug("dropped stale tip")
		}
	case spinner.TickMsg:
		if len(m.tipPending) > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.machine.Close()
			return m, tea.Quit
		}
		switch m.screen {
		case screenPicker:
			cmd = m.updatePicker(msg)
		case screenWorkout:
			cmd = m.updateWorkout(msg)
		case screenConfirmAbort:
			m.updateConfirmAbort(msg)
		case screenSummary:
			m.screen = screenPicker
			m.loadRoutines()
		}
	}
	return m, tea.Batch(cmd, m.ticks.drain())
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case "down", "j":
		if m.pickCursor < len(m.routines)-1 {
			m.pickCursor++
		}
	case "r":
		m.loadRoutines()
	case "enter":
		return m.startSelected()
	}
	return nil
}

func (m *Model) startSelected() tea.Cmd {
	if len(m.routines) == 0 {
		return nil
	}
	if err := m.machine.Start(m.routines[m.pickCursor]); err != nil {
		m.message = err.Error()
		return nil
	}
	m.message = ""
	m.tipPending = map[session.TipTicket]bool{}
	m.screen = screenWorkout
	m.clockSeq++
	return m.clockCmd()
}

func (m *Model) updateWorkout(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.machine.SelectExercise(m.machine.Cursor() - 1)
	case "down", "j":
		m.machine.SelectExercise(m.machine.Cursor() + 1)
	case "enter", " ", "x":
		m.machine.CompleteExercise(m.machine.Cursor())
	case "s":
		m.machine.SkipRest()
	case "t":
		return m.requestTip()
	case "f":
		m.finish()
	case "a", "q", "esc":
		m.screen = screenConfirmAbort
	}
	return nil
}

func (m *Model) updateConfirmAbort(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		m.machine.Abort()
		m.tipPending = map[session.TipTicket]bool{}
		m.screen = screenPicker
		m.loadRoutines()
	case "n", "N", "esc":
		m.screen = screenWorkout
	}
}

func (m *Model) finish() {
	log, ok := m.machine.Finish(m.ctx)
	if !ok {
		return
	}
	m.lastLog = log
	m.tipPending = map[session.TipTicket]bool{}
	m.screen = screenSummary
}

func (m *Model) requestTip() tea.Cmd {
	if m.coach == nil {
		return nil
	}
	ticket, exercise, ok := m.machine.RequestTip()
	if !ok || m.tipPending[ticket] {
		return nil
	}
	if _, has := m.machine.Tip(exercise.ID); has {
		return nil
	}
	m.tipPending[ticket] = true
	return tea.Batch(m.fetchTip(ticket, exercise), m.spinner.Tick)
}

func (m *Model) fetchTip(ticket session.TipTicket, exercise model.Exercise) tea.Cmd {
	ctx := m.ctx
	c := m.coach
	return func() tea.Msg {
		return tipMsg{ticket: ticket, text: c.ExerciseTip(ctx, exercise.Name, exercise.Notes)}
	}
}

func (m *Model) clockCmd() tea.Cmd {
	seq := m.clockSeq
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return clockMsg{seq: seq}
	})
}

func (m *Model) loadRoutines() {
	m.routines = m.records.ListRoutines(m.ctx)
	if m.pickCursor >= len(m.routines) {
		m.pickCursor = max(0, len(m.routines)-1)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenWorkout:
		if m.machine.State() == session.Resting {
			content = m.renderRest()
		} else {
			content = m.renderWorkout()
		}
	case screenConfirmAbort:
		content = modalStyle.Render("Abort workout? Progress will not be saved.\n\ny: abort  n: continue")
	case screenSummary:
		content = m.renderSummary()
	default:
		content = m.renderPicker()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPicker() string {
	lines := []string{titleStyle.Render("Start a workout"), ""}
	if len(m.routines) == 0 {
		lines = append(lines, pendingStyle.Render("No routines yet. Add one with `titanium routines add`."))
	}
	for i, r := range m.routines {
		label := fmt.Sprintf("%s (%d exercises)", r.Name, len(r.Exercises))
		if i == m.pickCursor {
			lines = append(lines, currentStyle.Render("› "+label))
		} else {
			lines = append(lines, pendingStyle.Render("  "+label))
		}
	}
	if m.message != "" {
		lines = append(lines, "", errorStyle.Render(m.message))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderWorkout() string {
	routine, ok := m.machine.Routine()
	if !ok {
		return ""
	}
	elapsed := int64(m.machine.Elapsed() / time.Second)
	header := fmt.Sprintf("%s  %s  %d/%d", routine.Name, stats.FormatClock(elapsed), m.machine.CompletedCount(), len(routine.Exercises))
	lines := []string{titleStyle.Render(header), m.progress.ViewAs(m.machine.Progress()), ""}

	for i, e := range routine.Exercises {
		if !m.machine.Visible(i) {
			continue
		}
		lines = append(lines, m.renderExercise(i, e))
	}

	current, _ := m.machine.CurrentExercise()
	if current.Notes != "" {
		lines = append(lines, "", pendingStyle.Render("Notes: "+current.Notes))
	}
	if tip := m.renderTip(current); tip != "" {
		lines = append(lines, "", tip)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderExercise(index int, e model.Exercise) string {
	marker := "  "
	style := pendingStyle
	if m.machine.IsCompleted(index) {
		marker = "✓ "
		style = doneStyle
	}
	if index == m.machine.Cursor() {
		marker = "› "
		style = currentStyle
	}
	detail := fmt.Sprintf("%d x %s", e.Sets, e.Reps)
	if e.Weight > 0 {
		detail += fmt.Sprintf(" @ %gkg", e.Weight)
	}
	if e.RestTime > 0 {
		detail += fmt.Sprintf("  rest %ds", e.RestTime)
	}
	return style.Render(fmt.Sprintf("%s%s  %s", marker, e.Name, detail))
}

func (m *Model) renderTip(e model.Exercise) string {
	ticket, _, ok := m.machine.RequestTip()
	if !ok {
		return ""
	}
	if m.tipPending[ticket] {
		return m.spinner.View() + " asking the coach..."
	}
	text, ok := m.machine.Tip(e.ID)
	if !ok {
		return ""
	}
	width := 60
	if m.width > 0 {
		width = max(10, min(width, m.width-6))
	}
	return tipStyle.Render(wrapText(text, width))
}

func (m *Model) renderRest() string {
	clock := stats.FormatClock(int64(m.machine.RestRemaining()))
	return modalStyle.Render(fmt.Sprintf("%s\n\n%s\n\ns: skip rest", titleStyle.Render("Rest"), currentStyle.Render(clock)))
}

func (m *Model) renderSummary() string {
	lines := []string{
		titleStyle.Render("Workout complete: " + m.lastLog.RoutineName),
		"",
		fmt.Sprintf("Duration: %s", stats.FormatClock(m.lastLog.DurationSeconds)),
		fmt.Sprintf("Exercises completed: %d", m.lastLog.ExercisesCompleted),
		fmt.Sprintf("Volume: %.1f kg", m.lastLog.TotalVolume),
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	var help string
	switch m.screen {
	case screenWorkout:
		if m.machine.State() == session.Resting {
			help = "s: skip rest  f: finish  a: abort"
		} else {
			help = "up/down: move  enter: done  t: tip  f: finish  a: abort"
		}
	case screenConfirmAbort:
		help = "y: abort  n: continue"
	case screenSummary:
		help = "any key: back"
	default:
		help = "up/down: select  enter: start  r: reload  q: quit"
	}
	segments := []string{help}
	if m.screen == screenWorkout {
		segments = append(segments, fmt.Sprintf("Progress %d%%", int(m.machine.Progress()*100)))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
