// Package statsui provides the Bubble Tea history and body interface.
package statsui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/titanium/internal/coach"
	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/planner"
	"github.com/verte-zerg/titanium/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
	tabBody
)

const (
	fieldWeight = iota
	fieldBodyFat
	fieldMuscle
	fieldFat
	fieldVisceral
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	analysisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Italic(true)
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Records is the part of the store the stats UI reads and writes.
type Records interface {
	stats.RecordSource
	planner.BodyStatWriter
}

type analysisMsg struct {
	seq  int
	text string
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	ctx     context.Context
	records Records
	coach   coach.Coach
	now     func() time.Time

	report stats.Report

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	logTable    table.Model
	tableLayout tableLayout

	width  int
	height int

	formMode   bool
	formInputs []textinput.Model
	formIndex  int
	formError  string
	notice     string

	analysis        string
	analysisSeq     int
	analysisPending bool
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a stats UI model.
func NewModel(ctx context.Context, records Records, c coach.Coach) *Model {
	m := &Model{
		ctx:     ctx,
		records: records,
		coach:   c,
		now:     time.Now,
		tabs:    []string{"Overview", "Sessions", "Body"},
	}
	m.initInputs()
	m.logTable = buildLogTable(nil, 0, 1)
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.requestAnalysis()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case analysisMsg:
		if msg.seq != m.analysisSeq {
			return m, nil
		}
		m.analysisPending = false
		m.analysis = msg.text
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.formMode {
			return m.updateForm(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabSessions {
			m.logTable.Focus()
		} else {
			m.logTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "a":
			return m.startForm()
		case "c":
			return m, m.requestAnalysis()
		case "g", "home":
			if m.activeTab == tabSessions {
				m.logTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.logTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabSessions {
				var cmd tea.Cmd
				m.logTable, cmd = m.logTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.formMode {
		return fitLines(m.renderFormModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.formInputs = []textinput.Model{
		newFormInput("Weight (kg): ", "82.5"),
		newFormInput("Body fat (%): ", "optional"),
		newFormInput("Muscle mass (kg): ", "optional"),
		newFormInput("Fat mass (kg): ", "optional"),
		newFormInput("Visceral fat: ", "optional"),
	}
}

func newFormInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 8
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.notice != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
	for i := range m.formInputs {
		promptWidth := lipgloss.Width(m.formInputs[i].Prompt)
		m.formInputs[i].Width = max(10, modalInnerWidth(m.width)-promptWidth)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.logTable.Focus()
	} else {
		m.logTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	s := m.report.Summary
	line := fmt.Sprintf("Workouts: %d  Hours: %.1fh  Volume: %.1ft  Readings: %d", s.TotalWorkouts, s.Hours(), s.Tonnes(), len(m.report.BodyStats))
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(line, m.width)), m.width)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Add reading: a  Coach: c  Quit: q"
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.notice != "" {
		return m.renderHelp() + "\n" + headerStyle.Render(m.notice)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabSessions {
		if len(m.report.Logs) == 0 {
			return fitLines("No workouts recorded yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.logTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	m.report = stats.BuildReport(m.ctx, m.records)
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyLogTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabBody].SetContent(m.renderBodyTab())
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Logs) == 0 && len(report.BodyStats) == 0 {
		return "No workouts recorded yet."
	}
	cards := renderSummaryCards(report, width)
	var buf bytes.Buffer
	recent := report.Logs
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if err := stats.RenderLogTable(&buf, recent); err != nil {
		return fmt.Sprintf("Failed to render sessions: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	s := report.Summary
	weight := "-"
	if latest, ok := report.LatestBody(); ok {
		weight = fmt.Sprintf("%.1f kg", latest.Weight)
	}
	cards := []string{
		metricCard("Workouts", strconv.Itoa(s.TotalWorkouts)),
		metricCard("Hours", fmt.Sprintf("%.1fh", s.Hours())),
		metricCard("Volume", fmt.Sprintf("%.1ft", s.Tonnes())),
		metricCard("Weight", weight),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderBodyTab() string {
	var buf bytes.Buffer
	if err := stats.RenderBodyTable(&buf, m.report.BodyStats); err != nil {
		return fmt.Sprintf("Failed to render body readings: %v", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	switch {
	case m.analysisPending:
		out += "\n\n" + headerStyle.Render("Asking the coach...")
	case m.analysis != "":
		out += "\n\n" + analysisStyle.Render(fmt.Sprintf("Coach: %q", m.analysis))
	}
	return out
}

func buildLogTable(logs []model.WorkoutLog, width, height int) table.Model {
	t := table.New(
		table.WithColumns(logTableColumns()),
		table.WithRows(logTableRows(logs)),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(logTableStyles())
	return t
}

func logTableColumns() []table.Column {
	widths := []int{16, 6, 20, 9, 9, 12}
	cols := make([]table.Column, len(stats.LogTableHeaders))
	for i, title := range stats.LogTableHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func logTableRows(logs []model.WorkoutLog) []table.Row {
	cells := stats.LogTableRows(logs)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}

func (m *Model) applyLogTable(width, height int) {
	rows := logTableRows(m.report.Logs)
	m.logTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.tableLayout.width = 0
	m.setTableSize(width, height)
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := max(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.logTable.SetWidth(width)
	m.logTable.SetHeight(viewportHeight)
}

func logTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) requestAnalysis() tea.Cmd {
	if m.coach == nil {
		return nil
	}
	latest, ok := m.report.LatestBody()
	if !ok {
		return nil
	}
	m.analysisSeq++
	m.analysisPending = true
	m.renderTabContents()
	seq := m.analysisSeq
	ctx := m.ctx
	c := m.coach
	return func() tea.Msg {
		text := c.ProgressAnalysis(ctx, latest.Weight, model.ValueOr(latest.MuscleMass, 0), model.ValueOr(latest.FatMass, 0))
		return analysisMsg{seq: seq, text: text}
	}
}

func (m *Model) startForm() (tea.Model, tea.Cmd) {
	m.formMode = true
	m.formError = ""
	for i := range m.formInputs {
		m.formInputs[i].SetValue("")
	}
	return m, m.setFormIndex(0)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.formMode = false
		m.formError = ""
		return m, nil
	case tea.KeyEnter:
		saved, err := m.submitForm()
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.formMode = false
		m.formError = ""
		m.notice = fmt.Sprintf("Saved reading: %.1f kg", saved.Weight)
		m.refreshReport()
		m.updateLayout()
		return m, m.requestAnalysis()
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFormIndex(m.formIndex - 1)
	}
	var cmd tea.Cmd
	m.formInputs[m.formIndex], cmd = m.formInputs[m.formIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	count := len(m.formInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.formIndex = idx
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formIndex {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) submitForm() (model.BodyStat, error) {
	weight, err := parseOptional(m.formInputs[fieldWeight].Value())
	if err != nil {
		return model.BodyStat{}, fmt.Errorf("invalid weight (use a number like 82.5)")
	}
	if weight == nil {
		return model.BodyStat{}, planner.ErrWeightRequired
	}
	stat := model.BodyStat{Weight: *weight}
	optional := []struct {
		field int
		label string
		dst   **float64
	}{
		{fieldBodyFat, "body fat", &stat.BodyFatPercentage},
		{fieldMuscle, "muscle mass", &stat.MuscleMass},
		{fieldFat, "fat mass", &stat.FatMass},
		{fieldVisceral, "visceral fat", &stat.VisceralFat},
	}
	for _, o := range optional {
		v, err := parseOptional(m.formInputs[o.field].Value())
		if err != nil {
			return model.BodyStat{}, fmt.Errorf("invalid %s (use a number or leave empty)", o.label)
		}
		*o.dst = v
	}
	saved, err := planner.RecordBodyStat(m.ctx, m.records, stat, m.now())
	if err != nil {
		if !errors.Is(err, planner.ErrWeightRequired) {
			logrus.WithError(err).Debug("rejected body reading")
		}
		return model.BodyStat{}, err
	}
	return saved, nil
}

func parseOptional(input string) (*float64, error) {
	input = strings.TrimSpace(strings.ReplaceAll(input, ",", "."))
	if input == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (m *Model) renderFormModal() string {
	body := []string{cardValueStyle.Render("New Body Reading")}
	for _, input := range m.formInputs {
		body = append(body, input.View())
	}
	body = append(body, headerStyle.Render("tab/shift+tab: next field  enter: save  esc: cancel"))
	if m.formError != "" {
		body = append(body, errorStyle.Render(m.formError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
