package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type restTickMsg struct {
	id uint64
}

type tickEntry struct {
	interval time.Duration
	onTick   func()
}

// tickScheduler delivers session ticks as Bubble Tea messages so that every
// callback runs inside Update. Cancelled ids are dropped when their message
// arrives.
type tickScheduler struct {
	next    uint64
	active  map[uint64]tickEntry
	pending []tea.Cmd
}

func newTickScheduler() *tickScheduler {
	return &tickScheduler{active: map[uint64]tickEntry{}}
}

func (s *tickScheduler) ScheduleTick(interval time.Duration, onTick func()) func() {
	s.next++
	id := s.next
	s.active[id] = tickEntry{interval: interval, onTick: onTick}
	s.pending = append(s.pending, tickCmd(id, interval))
	return func() { delete(s.active, id) }
}

func (s *tickScheduler) handle(msg restTickMsg) tea.Cmd {
	entry, ok := s.active[msg.id]
	if !ok {
		return nil
	}
	entry.onTick()
	if _, live := s.active[msg.id]; !live {
		return nil
	}
	return tickCmd(msg.id, entry.interval)
}

// drain returns the commands for ticks scheduled since the last call.
func (s *tickScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func tickCmd(id uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return restTickMsg{id: id}
	})
}
