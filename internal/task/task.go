package task

import "fmt"

// Void is the result type of tasks that produce no value.
type Void = struct{}

// Runner is the type-erased view of a Task. Managers, combinators and FSM
// states hold Runners so tasks with different result types can be mixed.
type Runner interface {
	Resume() Status
	Status() Status
	Kill()
	Name() string
	DebugStack() string
}

// Task is a resumable computation producing a T.
//
// A Task has exactly one driver: a Manager, an awaiting task body, a
// combinator, or the code that created it. Resuming a task that is already
// running panics.
type Task[T any] struct {
	name   string
	status Status
	result T

	// step advances the body to its next suspend point.
	step func() (T, Status)
	// unwind releases whatever a suspended body holds. May be nil.
	unwind func()
	// debug overrides DebugStack for wrapper tasks.
	debug func() string

	resuming      bool
	killRequested bool
	awaiting      Runner

	refs      int
	inManager bool
	destroyed bool
}

func newTask[T any](name string, step func() (T, Status), unwind func()) *Task[T] {
	return &Task[T]{name: name, step: step, unwind: unwind}
}

// Step creates a task from an explicit state machine. step is called once
// per resume and returns the result and true when the task is finished.
// Locals captured by the closure survive between resumes.
func Step[T any](name string, step func() (T, bool)) *Task[T] {
	return newTask(name, func() (T, Status) {
		v, done := step()
		if done {
			return v, Done
		}
		return v, Suspended
	}, nil)
}

// Name returns the debug name of the task.
func (t *Task[T]) Name() string { return t.name }

// Status returns the current status without resuming.
func (t *Task[T]) Status() Status { return t.status }

// IsDone reports whether the body returned.
func (t *Task[T]) IsDone() bool { return t.status == Done }

// IsCancelled reports whether the task was cancelled.
func (t *Task[T]) IsCancelled() bool { return t.status == Cancelled }

// Result returns the value the body returned. ok is false unless the task
// is Done.
func (t *Task[T]) Result() (v T, ok bool) {
	if t.status != Done {
		return v, false
	}
	return t.result, true
}

// Resume runs the body until its next suspend point and returns the new
// status. Resuming a Done or Cancelled task does nothing. A panic in the
// body propagates out of Resume after the task is marked Cancelled.
func (t *Task[T]) Resume() Status {
	if t.status.IsTerminal() {
		return t.status
	}
	if t.resuming {
		panic(fmt.Sprintf("task: %q resumed while it is already running", t.name))
	}
	if t.killRequested {
		t.Kill()
		return t.status
	}

	t.resuming = true
	returned := false
	defer func() {
		t.resuming = false
		if !returned {
			t.finish(Cancelled)
		}
	}()
	v, st := t.step()
	returned = true
	t.resuming = false

	if t.killRequested {
		t.killRequested = false
		unwind := t.unwind
		t.finish(Cancelled)
		if st == Suspended && unwind != nil {
			unwind()
		}
		return t.status
	}

	switch st {
	case Done:
		t.result = v
		t.finish(Done)
	case Cancelled:
		t.finish(Cancelled)
	default:
		t.status = Suspended
	}
	return t.status
}

// Kill cancels the task. A suspended body unwinds before Kill returns, so
// its deferred calls run. Killing a task from inside its own body takes
// effect at the body's next suspend point.
func (t *Task[T]) Kill() {
	if t.status.IsTerminal() {
		return
	}
	if t.resuming {
		t.killRequested = true
		return
	}
	unwind := t.unwind
	t.finish(Cancelled)
	if unwind != nil {
		unwind()
	}
}

// CancelIf wraps the task so that pred is checked before the body on every
// resume. When pred returns true the inner task is killed and the wrapper
// becomes Cancelled in the same resume.
func (t *Task[T]) CancelIf(pred func() bool) *Task[T] {
	inner := t
	w := newTask(inner.name, func() (v T, st Status) {
		if pred() {
			inner.Kill()
			return v, Cancelled
		}
		switch inner.Resume() {
		case Done:
			return inner.result, Done
		case Cancelled:
			return v, Cancelled
		default:
			return v, Suspended
		}
	}, inner.Kill)
	w.debug = inner.DebugStack
	return w
}

// Handle returns a new strong handle to the task.
func (t *Task[T]) Handle() *Handle[T] {
	return newHandle(t)
}

// DebugStack describes the task and the chain of tasks it is awaiting.
func (t *Task[T]) DebugStack() string {
	if t.debug != nil && !t.status.IsTerminal() {
		return t.debug()
	}
	if t.awaiting != nil && !t.status.IsTerminal() {
		return t.name + " -> " + t.awaiting.DebugStack()
	}
	return t.name
}

// String implements fmt.Stringer.
func (t *Task[T]) String() string {
	return fmt.Sprintf("%s(%s)", t.name, t.status)
}

func (t *Task[T]) finish(st Status) {
	t.status = st
	t.step = nil
	t.unwind = nil
	t.debug = nil
	t.awaiting = nil
}

func (t *Task[T]) stopRequested() bool { return t.killRequested }

func (t *Task[T]) setAwaiting(r Runner) { t.awaiting = r }

func (t *Task[T]) hasHandles() bool { return t.refs > 0 }

func (t *Task[T]) attach() {
	if t.inManager {
		panic(fmt.Sprintf("task: %q is already owned by a manager", t.name))
	}
	t.inManager = true
}

func (t *Task[T]) detach() {
	t.inManager = false
	t.releaseIfOrphaned()
}

// releaseIfOrphaned destroys the task once nothing owns it: the body is
// killed and the result dropped so weak handles observe an empty task.
func (t *Task[T]) releaseIfOrphaned() {
	if t.refs > 0 || t.inManager || t.destroyed {
		return
	}
	t.destroyed = true
	t.Kill()
	var zero T
	t.result = zero
}
