package fsm

import (
	"fmt"

	"github.com/samdwyer/corun/internal/task"
)

// StateID identifies a state within one FSM.
type StateID int

// NoState is reported as the old state of the entry transition.
const NoState StateID = -1

type stateDef struct {
	id     StateID
	name   string
	exit   bool
	build  func(payload any) task.Runner
	links  []*link
	linked bool
}

type link struct {
	fsm         *FSM
	target      *stateDef
	onComplete  bool
	conditional bool
	eval        func() (any, bool)
}

// StateRef is implemented by StateHandle, PayloadState and ExitHandle.
type StateRef interface {
	ref() (*FSM, *stateDef)
}

// ============================================================================
// Link handles
// ============================================================================

// LinkHandle is a transition edge into a target state. It is attached to a
// source state with StateLinks or to the entry node with EntryLinks.
type LinkHandle struct {
	l *link
}

// IsOnCompleteLink reports whether the link is only eligible once the
// source state's task is Done.
func (h LinkHandle) IsOnCompleteLink() bool { return h.l.onComplete }

// HasCondition reports whether the link has a predicate.
func (h LinkHandle) HasCondition() bool { return h.l.conditional }

// Target returns the state the link leads to.
func (h LinkHandle) Target() StateID { return h.l.target.id }

func newLink(f *FSM, target *stateDef, onComplete bool, pred func() bool) LinkHandle {
	l := &link{fsm: f, target: target, onComplete: onComplete, conditional: pred != nil}
	if pred == nil {
		l.eval = func() (any, bool) { return nil, true }
	} else {
		l.eval = func() (any, bool) { return nil, pred() }
	}
	return LinkHandle{l: l}
}

func newPayloadLink[P any](f *FSM, target *stateDef, onComplete bool, pred func() (P, bool)) LinkHandle {
	if pred == nil {
		panic(fmt.Sprintf("fsm: link to payload state %q needs a predicate", target.name))
	}
	return LinkHandle{l: &link{
		fsm:         f,
		target:      target,
		onComplete:  onComplete,
		conditional: true,
		eval: func() (any, bool) {
			p, ok := pred()
			return p, ok
		},
	}}
}

// ============================================================================
// State handles
// ============================================================================

// StateHandle refers to a state whose task takes no payload.
type StateHandle struct {
	f *FSM
	s *stateDef
}

func (h StateHandle) ref() (*FSM, *stateDef) { return h.f, h.s }

// ID returns the state ID.
func (h StateHandle) ID() StateID { return h.s.id }

// Name returns the state's debug name.
func (h StateHandle) Name() string { return h.s.name }

// Link returns a link into this state that fires when pred returns true.
// A nil pred always fires.
func (h StateHandle) Link(pred func() bool) LinkHandle {
	return newLink(h.f, h.s, false, pred)
}

// OnCompleteLink is like Link but only eligible once the source state's
// task is Done.
func (h StateHandle) OnCompleteLink(pred func() bool) LinkHandle {
	return newLink(h.f, h.s, true, pred)
}

// PayloadState refers to a state whose task is constructed from a P
// produced by the link that enters it.
type PayloadState[P any] struct {
	f *FSM
	s *stateDef
}

func (h PayloadState[P]) ref() (*FSM, *stateDef) { return h.f, h.s }

// ID returns the state ID.
func (h PayloadState[P]) ID() StateID { return h.s.id }

// Name returns the state's debug name.
func (h PayloadState[P]) Name() string { return h.s.name }

// Link returns a link into this state. When pred reports true its value is
// passed to the state's constructor.
func (h PayloadState[P]) Link(pred func() (P, bool)) LinkHandle {
	return newPayloadLink(h.f, h.s, false, pred)
}

// OnCompleteLink is like Link but only eligible once the source state's
// task is Done.
func (h PayloadState[P]) OnCompleteLink(pred func() (P, bool)) LinkHandle {
	return newPayloadLink(h.f, h.s, true, pred)
}

// ExitHandle refers to an exit state. Entering it ends Run.
type ExitHandle struct {
	f *FSM
	s *stateDef
}

func (h ExitHandle) ref() (*FSM, *stateDef) { return h.f, h.s }

// ID returns the state ID.
func (h ExitHandle) ID() StateID { return h.s.id }

// Name returns the state's debug name.
func (h ExitHandle) Name() string { return h.s.name }

// Link returns a link into the exit state. A nil pred always fires.
func (h ExitHandle) Link(pred func() bool) LinkHandle {
	return newLink(h.f, h.s, false, pred)
}

// OnCompleteLink is like Link but only eligible once the source state's
// task is Done.
func (h ExitHandle) OnCompleteLink(pred func() bool) LinkHandle {
	return newLink(h.f, h.s, true, pred)
}
