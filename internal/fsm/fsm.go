// Package fsm builds state machines whose states are tasks.
//
// Each state owns a task constructed when the state is entered and killed
// when it is left. Transitions are declared as links: a link into a target
// state is attached to a source state with StateLinks, and the machine
// picks its first state from EntryLinks. Every tick the active state's task
// is resumed once and then its links are evaluated in declaration order;
// the first satisfied link wins.
package fsm

import (
	"fmt"
	"log/slog"

	"github.com/samdwyer/corun/internal/task"
)

// TransitionDebugData describes one state change.
type TransitionDebugData struct {
	OldStateID   StateID
	OldStateName string
	NewStateID   StateID
	NewStateName string
	// Tick is the FSM tick the transition happened on, starting at 1.
	Tick int
}

// FSM is a graph of task states. It is not safe for concurrent use.
type FSM struct {
	name   string
	logger *slog.Logger

	states        []*stateDef
	entry         []*link
	entryDeclared bool
	started       bool

	active     *stateDef
	activeTask task.Runner
	stalled    bool
	tick       int
}

// Option configures an FSM.
type Option func(*FSM)

// WithLogger sets the logger used for transitions and stall warnings.
func WithLogger(l *slog.Logger) Option {
	return func(f *FSM) { f.logger = l }
}

// New creates an empty FSM.
func New(name string, opts ...Option) *FSM {
	f := &FSM{name: name, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the FSM name.
func (f *FSM) Name() string { return f.name }

// ============================================================================
// Graph construction
// ============================================================================

func (f *FSM) addState(name string, exit bool, build func(any) task.Runner) *stateDef {
	f.mustNotBeStarted("add state " + name)
	s := &stateDef{id: StateID(len(f.states)), name: name, exit: exit, build: build}
	f.states = append(f.states, s)
	return s
}

// State declares a state whose task is built by ctor on every entry.
func (f *FSM) State(name string, ctor func() task.Runner) StateHandle {
	if ctor == nil {
		panic(fmt.Sprintf("fsm: state %q has no constructor", name))
	}
	s := f.addState(name, false, func(any) task.Runner { return ctor() })
	return StateHandle{f: f, s: s}
}

// StateWith declares a state whose task is built from the payload of the
// link that enters it.
func StateWith[P any](f *FSM, name string, ctor func(P) task.Runner) PayloadState[P] {
	if ctor == nil {
		panic(fmt.Sprintf("fsm: state %q has no constructor", name))
	}
	s := f.addState(name, false, func(p any) task.Runner { return ctor(p.(P)) })
	return PayloadState[P]{f: f, s: s}
}

// ExitState declares a state that ends Run when entered. The task returned
// by Run completes with the exit state's ID.
func (f *FSM) ExitState(name string) ExitHandle {
	s := f.addState(name, true, nil)
	return ExitHandle{f: f, s: s}
}

// EntryLinks declares the links evaluated once when Run starts.
func (f *FSM) EntryLinks(links ...LinkHandle) {
	f.mustNotBeStarted("declare entry links")
	if f.entryDeclared {
		panic(fmt.Sprintf("fsm: %q entry links declared twice", f.name))
	}
	f.entry = f.checkLinks(links)
	f.entryDeclared = true
}

// StateLinks declares the outgoing links of from, in evaluation order.
func (f *FSM) StateLinks(from StateRef, links ...LinkHandle) {
	f.mustNotBeStarted("declare state links")
	owner, s := from.ref()
	if owner != f {
		panic(fmt.Sprintf("fsm: state %q does not belong to %q", s.name, f.name))
	}
	if s.exit {
		panic(fmt.Sprintf("fsm: exit state %q cannot have outgoing links", s.name))
	}
	if s.linked {
		panic(fmt.Sprintf("fsm: state %q links declared twice", s.name))
	}
	s.links = f.checkLinks(links)
	s.linked = true
}

func (f *FSM) checkLinks(links []LinkHandle) []*link {
	out := make([]*link, 0, len(links))
	for _, h := range links {
		if h.l == nil {
			panic(fmt.Sprintf("fsm: %q given an empty link", f.name))
		}
		if h.l.fsm != f {
			panic(fmt.Sprintf("fsm: link to %q belongs to another FSM", h.l.target.name))
		}
		out = append(out, h.l)
	}
	return out
}

func (f *FSM) mustNotBeStarted(op string) {
	if f.started {
		panic(fmt.Sprintf("fsm: cannot %s after %q started running", op, f.name))
	}
}

// ============================================================================
// Queries
// ============================================================================

// StateName returns the debug name of id.
func (f *FSM) StateName(id StateID) string {
	if id < 0 || int(id) >= len(f.states) {
		return ""
	}
	return f.states[id].name
}

// ActiveState returns the current state, or NoState before the first tick.
func (f *FSM) ActiveState() (StateID, string) {
	if f.active == nil {
		return NoState, ""
	}
	return f.active.id, f.active.name
}

// ============================================================================
// Running
// ============================================================================

type transition struct {
	target  *stateDef
	payload any
}

// Run returns the task that drives the machine. onTransition, if non-nil,
// is called on every state change including the entry transition.
//
// On its first resume the task evaluates the entry links and constructs
// the first state. On every later resume it resumes the active state's
// task, then evaluates that state's links. A newly entered state is first
// resumed on the following tick. Killing the returned task kills the
// active state's task.
func (f *FSM) Run(onTransition func(TransitionDebugData)) *task.Task[StateID] {
	f.mustNotBeStarted("run")
	if !f.entryDeclared || len(f.entry) == 0 {
		panic(fmt.Sprintf("fsm: %q has no entry links", f.name))
	}
	f.started = true

	return task.New(f.name, func(co *task.Co) StateID {
		defer f.stop(co)

		f.tick = 1
		tr, ok := f.evaluate(f.entry, true)
		if !ok {
			panic(fmt.Sprintf("fsm: %q has no satisfied entry link", f.name))
		}
		for {
			if f.enter(co, tr, onTransition) {
				return tr.target.id
			}
			for {
				co.Suspend()
				f.tick++
				st := f.activeTask.Resume()
				if tr, ok = f.evaluate(f.active.links, st == task.Done); ok {
					break
				}
				if st.IsTerminal() && len(f.active.links) > 0 && !f.stalled {
					f.stalled = true
					f.logger.Warn("fsm: state completed without a satisfied exit link",
						"fsm", f.name,
						"state", f.active.name,
						"status", st.String())
				}
			}
		}
	})
}

// evaluate returns the first satisfied link. On-complete links are
// skipped unless done is set.
func (f *FSM) evaluate(links []*link, done bool) (transition, bool) {
	for _, l := range links {
		if l.onComplete && !done {
			continue
		}
		if payload, ok := l.eval(); ok {
			return transition{target: l.target, payload: payload}, true
		}
	}
	return transition{}, false
}

// enter leaves the active state and enters tr.target. It reports whether
// the target is an exit state.
func (f *FSM) enter(co *task.Co, tr transition, onTransition func(TransitionDebugData)) bool {
	data := TransitionDebugData{
		OldStateID:   NoState,
		NewStateID:   tr.target.id,
		NewStateName: tr.target.name,
		Tick:         f.tick,
	}
	if f.active != nil {
		data.OldStateID = f.active.id
		data.OldStateName = f.active.name
	}

	if f.activeTask != nil {
		old := f.activeTask
		f.activeTask = nil
		co.Driving(nil)
		old.Kill()
	}
	f.active = tr.target
	f.stalled = false

	f.logger.Debug("fsm transition",
		"fsm", f.name,
		"from", data.OldStateName,
		"to", data.NewStateName,
		"tick", data.Tick)
	if onTransition != nil {
		onTransition(data)
	}

	if tr.target.exit {
		return true
	}
	next := tr.target.build(tr.payload)
	if next == nil {
		panic(fmt.Sprintf("fsm: state %q constructor returned nil", tr.target.name))
	}
	f.activeTask = next
	co.Driving(next)
	return false
}

func (f *FSM) stop(co *task.Co) {
	co.Driving(nil)
	if f.activeTask != nil {
		t := f.activeTask
		f.activeTask = nil
		t.Kill()
	}
}
