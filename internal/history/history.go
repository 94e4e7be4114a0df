// Package history provides bounded linear undo and redo over whole-surface
// snapshots.
//
// The manager tracks a baseline, the last committed state of the surface.
// Capturing pushes the baseline onto the undo stack and adopts the current
// content as the new baseline, so one undo always returns to the state before
// the most recent mutation.
package history

import (
	"fmt"
	"log/slog"

	"github.com/example/drawpad/internal/logging"
	"github.com/example/drawpad/internal/surface"
)

// DefaultCapacity is the number of undo steps kept when no capacity is set.
const DefaultCapacity = 40

// Source is the surface the history reads from and restores into.
type Source interface {
	Readback() (*surface.Snapshot, error)
	Write(*surface.Snapshot)
}

// State reports how many steps are available in each direction.
type State struct {
	Undo int
	Redo int
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity bounds the undo stack. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.capacity = n
		}
	}
}

// WithListener registers fn to be called after every change to the stacks.
func WithListener(fn func(State)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// WithLogger sets the logger used for history events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager owns the undo and redo stacks. It is not safe for concurrent use.
type Manager struct {
	src       Source
	capacity  int
	undo      []*surface.Snapshot
	redo      []*surface.Snapshot
	baseline  *surface.Snapshot
	listeners []func(State)
	log       *slog.Logger
}

// New returns a manager over src with empty stacks and no baseline.
func New(src Source, opts ...Option) *Manager {
	m := &Manager{src: src, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) logger() *slog.Logger {
	if m.log != nil {
		return m.log
	}
	return logging.Logger()
}

// Capacity returns the undo stack bound.
func (m *Manager) Capacity() int { return m.capacity }

// State returns the current stack depths.
func (m *Manager) State() State { return State{Undo: len(m.undo), Redo: len(m.redo)} }

// CanUndo reports whether Undo would change the surface.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would change the surface.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// HasBaseline reports whether a committed state has been recorded.
func (m *Manager) HasBaseline() bool { return m.baseline != nil }

// Reset drops both stacks and records the current content as the baseline.
// On error the manager is left empty without a baseline.
func (m *Manager) Reset() error {
	m.undo, m.redo, m.baseline = nil, nil, nil
	snap, err := m.src.Readback()
	if err != nil {
		m.notify()
		return fmt.Errorf("reset history: %w", err)
	}
	m.baseline = snap
	m.logger().Debug("history reset")
	m.notify()
	return nil
}

// Capture commits the current content. The previous baseline becomes the
// newest undo step, the oldest step is evicted past capacity and the redo
// stack is cleared. If the surface cannot be read the history is unchanged.
func (m *Manager) Capture() error {
	snap, err := m.src.Readback()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if m.baseline != nil {
		m.undo = pushBounded(m.undo, m.baseline, m.capacity)
	}
	m.redo = nil
	m.baseline = snap
	m.logger().Debug("history capture", "undo", len(m.undo))
	m.notify()
	return nil
}

// Undo restores the most recent undo step, moving the current content onto
// the redo stack. It reports false when there is nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	cur, err := m.src.Readback()
	if err != nil {
		m.logger().Debug("undo readback failed", "err", err)
		cur = m.baseline
	}
	if cur != nil {
		m.redo = append(m.redo, cur)
	}
	prev := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = nil
	m.undo = m.undo[:len(m.undo)-1]
	m.src.Write(prev)
	m.baseline = prev
	m.logger().Debug("history undo", "undo", len(m.undo), "redo", len(m.redo))
	m.notify()
	return true
}

// Redo reapplies the most recently undone step, moving the current content
// onto the undo stack. It reports false when there is nothing to redo.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	cur, err := m.src.Readback()
	if err != nil {
		m.logger().Debug("redo readback failed", "err", err)
		cur = m.baseline
	}
	if cur != nil {
		m.undo = pushBounded(m.undo, cur, m.capacity)
	}
	next := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = nil
	m.redo = m.redo[:len(m.redo)-1]
	m.src.Write(next)
	m.baseline = next
	m.logger().Debug("history redo", "undo", len(m.undo), "redo", len(m.redo))
	m.notify()
	return true
}

func (m *Manager) notify() {
	st := m.State()
	for _, fn := range m.listeners {
		fn(st)
	}
}

// pushBounded appends s and drops entries from the front until at most
// capacity remain.
func pushBounded(stack []*surface.Snapshot, s *surface.Snapshot, capacity int) []*surface.Snapshot {
	stack = append(stack, s)
	if over := len(stack) - capacity; over > 0 {
		clear(stack[:over])
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}
