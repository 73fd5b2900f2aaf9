// Package session runs an in-progress workout: exercise cursor, completion
// tracking, rest countdown and finish/abort.
//
// A Machine is not safe for concurrent use. It is driven from a single event
// loop; rest ticks arrive through the Scheduler on that same loop.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/titanium/internal/model"
	"github.com/verte-zerg/titanium/internal/stats"
)

// DefaultTickInterval is the rest countdown resolution.
const DefaultTickInterval = time.Second

// ErrEmptyRoutine is returned when starting a routine without exercises.
var ErrEmptyRoutine = errors.New("routine has no exercises")

// State is the externally visible state of a Machine.
type State int

// Machine states. Resting is a sub-state of an in-progress session.
const (
	Idle State = iota
	InProgress
	Resting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InProgress:
		return "in-progress"
	case Resting:
		return "resting"
	default:
		return "unknown"
	}
}

// Scheduler runs onTick every interval until the returned cancel is called.
// onTick must be invoked on the goroutine that drives the Machine.
type Scheduler interface {
	ScheduleTick(interval time.Duration, onTick func()) (cancel func())
}

// LogAppender is the store operation used when a workout finishes.
type LogAppender interface {
	AppendLog(ctx context.Context, log model.WorkoutLog)
}

// TipTicket identifies the exercise, within one session, a coaching tip was
// requested for.
type TipTicket struct {
	Session    uint64
	ExerciseID string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides the workout log id generator.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

// WithTickInterval overrides the rest countdown tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// Machine is the workout session state machine.
type Machine struct {
	logs         LogAppender
	scheduler    Scheduler
	now          func() time.Time
	newID        func() string
	tickInterval time.Duration

	routine       *model.Routine
	sessionSeq    uint64
	startedAt     time.Time
	cursor        int
	completed     map[int]struct{}
	resting       bool
	restRemaining int
	cancelTick    func()
	tips          map[string]string
}

// New returns an idle Machine that writes finished workouts to logs.
func New(logs LogAppender, scheduler Scheduler, opts ...Option) *Machine {
	m := &Machine{
		logs:         logs,
		scheduler:    scheduler,
		now:          time.Now,
		newID:        uuid.NewString,
		tickInterval: DefaultTickInterval,
		completed:    map[int]struct{}{},
		tips:         map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	switch {
	case m.routine == nil:
		return Idle
	case m.resting:
		return Resting
	default:
		return InProgress
	}
}

// Active reports whether a routine is in progress.
func (m *Machine) Active() bool {
	return m.routine != nil
}

// Routine returns the active routine.
func (m *Machine) Routine() (model.Routine, bool) {
	if m.routine == nil {
		return model.Routine{}, false
	}
	return *m.routine, true
}

// Start begins a session for routine, replacing any session in progress.
func (m *Machine) Start(routine model.Routine) error {
	if len(routine.Exercises) == 0 {
		return ErrEmptyRoutine
	}
	if m.routine != nil {
		logrus.WithField("routine", m.routine.Name).Info("session replaced before finishing")
	}
	m.reset()
	r := routine.Clone()
	m.routine = &r
	m.sessionSeq++
	m.startedAt = m.now()
	logrus.WithFields(logrus.Fields{"routine": r.Name, "exercises": len(r.Exercises)}).Info("session started")
	return nil
}

// Cursor returns the index of the exercise in focus.
func (m *Machine) Cursor() int {
	return m.cursor
}

// CurrentExercise returns the exercise under the cursor.
func (m *Machine) CurrentExercise() (model.Exercise, bool) {
	if m.routine == nil {
		return model.Exercise{}, false
	}
	return m.routine.Exercises[m.cursor], true
}

// SelectExercise moves the cursor to index. Any valid index is allowed.
func (m *Machine) SelectExercise(index int) bool {
	if !m.validIndex(index) {
		logrus.WithField("index", index).Debug("ignored exercise selection")
		return false
	}
	m.cursor = index
	return true
}

// CompleteExercise marks index as done. The first completion of an exercise
// with a rest time starts the rest countdown; completing it again changes nothing.
func (m *Machine) CompleteExercise(index int) bool {
	if !m.validIndex(index) {
		logrus.WithField("index", index).Debug("ignored exercise completion")
		return false
	}
	if _, done := m.completed[index]; done {
		return false
	}
	m.completed[index] = struct{}{}

	rest := m.routine.Exercises[index].RestTime
	if rest > 0 {
		m.startRest(rest)
	} else {
		m.stopRest()
	}
	return true
}

// IsCompleted reports whether index has been marked done.
func (m *Machine) IsCompleted(index int) bool {
	_, ok := m.completed[index]
	return ok
}

// CompletedCount returns the number of exercises marked done.
func (m *Machine) CompletedCount() int {
	return len(m.completed)
}

// Progress returns the completed fraction of the routine in [0, 1].
func (m *Machine) Progress() float64 {
	if m.routine == nil || len(m.routine.Exercises) == 0 {
		return 0
	}
	return float64(len(m.completed)) / float64(len(m.routine.Exercises))
}

// Visible reports whether index is shown: the current exercise, completed
// ones and the one right after the cursor.
func (m *Machine) Visible(index int) bool {
	if !m.validIndex(index) {
		return false
	}
	return index == m.cursor || index == m.cursor+1 || m.IsCompleted(index)
}

// RestRemaining returns the seconds left on the rest countdown.
func (m *Machine) RestRemaining() int {
	return m.restRemaining
}

// SkipRest ends the rest countdown immediately.
func (m *Machine) SkipRest() bool {
	if !m.resting {
		return false
	}
	m.stopRest()
	logrus.Debug("rest skipped")
	return true
}

// Elapsed returns the time since the session started.
func (m *Machine) Elapsed() time.Duration {
	if m.routine == nil {
		return 0
	}
	d := m.now().Sub(m.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Finish records the session as a workout log and returns to Idle. Without an
// active routine it does nothing and returns false.
func (m *Machine) Finish(ctx context.Context) (model.WorkoutLog, bool) {
	if m.routine == nil {
		logrus.Debug("finish ignored: no active session")
		return model.WorkoutLog{}, false
	}
	now := m.now()
	duration := int64(now.Sub(m.startedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	log := model.WorkoutLog{
		ID:                 m.newID(),
		RoutineID:          m.routine.ID,
		RoutineName:        m.routine.Name,
		Date:               now,
		DurationSeconds:    duration,
		ExercisesCompleted: len(m.completed),
		TotalVolume:        stats.RoutineVolume(*m.routine),
	}
	m.logs.AppendLog(ctx, log)
	logrus.WithFields(logrus.Fields{
		"routine":   log.RoutineName,
		"duration":  log.DurationSeconds,
		"completed": log.ExercisesCompleted,
		"volume":    log.TotalVolume,
	}).Info("session finished")
	m.reset()
	return log, true
}

// Abort discards the session without writing a log.
func (m *Machine) Abort() bool {
	if m.routine == nil {
		return false
	}
	logrus.WithField("routine", m.routine.Name).Info("session aborted")
	m.reset()
	return true
}

// Close cancels any pending tick and discards the session.
func (m *Machine) Close() {
	m.reset()
}

// RequestTip returns a ticket and the exercise under the cursor, for asking
// the coach about it.
func (m *Machine) RequestTip() (TipTicket, model.Exercise, bool) {
	e, ok := m.CurrentExercise()
	if !ok {
		return TipTicket{}, model.Exercise{}, false
	}
	return TipTicket{Session: m.sessionSeq, ExerciseID: e.ID}, e, true
}

// ApplyTip stores text for the ticket's exercise. Tickets from another session
// or for exercises outside the active routine are dropped.
func (m *Machine) ApplyTip(ticket TipTicket, text string) bool {
	if m.routine == nil || ticket.Session != m.sessionSeq {
		return false
	}
	for _, e := range m.routine.Exercises {
		if e.ID == ticket.ExerciseID {
			m.tips[e.ID] = text
			return true
		}
	}
	return false
}

// Tip returns the coaching text stored for an exercise.
func (m *Machine) Tip(exerciseID string) (string, bool) {
	text, ok := m.tips[exerciseID]
	return text, ok
}

func (m *Machine) validIndex(index int) bool {
	return m.routine != nil && index >= 0 && index < len(m.routine.Exercises)
}

func (m *Machine) startRest(seconds int) {
	m.cancelRestTick()
	m.resting = true
	m.restRemaining = seconds
	if m.scheduler == nil {
		return
	}
	seq := m.sessionSeq
	m.cancelTick = m.scheduler.ScheduleTick(m.tickInterval, func() {
		if seq != m.sessionSeq {
			return
		}
		m.tick()
	})
}

func (m *Machine) tick() {
	if !m.resting {
		return
	}
	m.restRemaining--
	if m.restRemaining <= 0 {
		m.stopRest()
		logrus.Debug("rest finished")
	}
}

func (m *Machine) stopRest() {
	m.cancelRestTick()
	m.resting = false
	m.restRemaining = 0
}

func (m *Machine) cancelRestTick() {
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}
}

func (m *Machine) reset() {
	m.stopRest()
	m.routine = nil
	m.cursor = 0
	m.startedAt = time.Time{}
	m.completed = map[int]struct{}{}
	m.tips = map[string]string{}
}
