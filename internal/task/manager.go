package task

import (
	"fmt"
	"log/slog"
	"strings"
)

// ownedTask is the type-erased view a Manager needs of a *Task[T].
type ownedTask interface {
	Runner
	hasHandles() bool
	attach()
	detach()
}

type managerEntry struct {
	task    ownedTask
	managed bool
}

// Manager resumes a set of tasks once per Update, in the order they were
// added. A Manager is not safe for concurrent use.
type Manager struct {
	name     string
	logger   *slog.Logger
	entries  []managerEntry
	updating bool
	epoch    uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithName sets the manager name used in logs and debug output.
func WithName(name string) Option {
	return func(m *Manager) { m.name = name }
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{name: "tasks", logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run adds t to m and returns a strong handle. The task is resumed by
// Update while any strong handle to it is live; once every handle is
// released it is killed at the next Update without being resumed.
//
// The caller must call Release on the handle (and on any Clone of it).
// Handles are not collected: a handle that is dropped without Release
// keeps its task alive and resumed by m for as long as m is updated.
// Use RunManaged for tasks nobody needs a handle to.
func Run[T any](m *Manager, t *Task[T]) *Handle[T] {
	t.attach()
	h := newHandle(t)
	m.entries = append(m.entries, managerEntry{task: t})
	return h
}

// RunManaged adds t to m, which keeps it alive until it finishes or the
// manager kills it. The returned weak handle does not extend its lifetime.
func RunManaged[T any](m *Manager, t *Task[T]) *WeakHandle[T] {
	t.attach()
	m.entries = append(m.entries, managerEntry{task: t, managed: true})
	return newWeakHandle(t)
}

// Update resumes every task that was present when Update was called, in
// insertion order. Tasks added during Update are first resumed by the next
// call. Finished tasks are removed afterwards.
func (m *Manager) Update() {
	if m.updating {
		panic(fmt.Sprintf("task: manager %q updated re-entrantly", m.name))
	}
	m.updating = true
	defer func() { m.updating = false }()

	epoch := m.epoch
	n := len(m.entries)
	for i := 0; i < n && m.epoch == epoch; i++ {
		e := m.entries[i]
		if !e.managed && !e.task.hasHandles() {
			e.task.Kill()
			continue
		}
		e.task.Resume()
	}
	m.reap()
}

// reap removes finished and abandoned entries, preserving order.
func (m *Manager) reap() {
	kept := m.entries[:0]
	var removed []managerEntry
	for _, e := range m.entries {
		if e.task.Status().IsTerminal() {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(m.entries[len(kept):])
	m.entries = kept
	for _, e := range removed {
		m.logger.Debug("task finished",
			"manager", m.name,
			"task", e.task.Name(),
			"status", e.task.Status().String())
		e.task.detach()
	}
}

// KillAllTasks kills every task in the manager and empties it. Tasks
// started by unwinding bodies are killed as well.
func (m *Manager) KillAllTasks() {
	m.epoch++
	for len(m.entries) > 0 {
		entries := m.entries
		m.entries = nil
		for _, e := range entries {
			e.task.Kill()
		}
		for _, e := range entries {
			e.task.detach()
		}
	}
}

// Len returns the number of tasks in the manager.
func (m *Manager) Len() int { return len(m.entries) }

// Name returns the manager name.
func (m *Manager) Name() string { return m.name }

// DebugString lists every task and what it is awaiting, one per line.
func (m *Manager) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d tasks)", m.name, len(m.entries))
	for _, e := range m.entries {
		b.WriteString("\n  ")
		b.WriteString(e.task.DebugStack())
		if e.managed {
			b.WriteString(" [managed]")
		}
	}
	return b.String()
}
