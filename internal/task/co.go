package task

import "iter"

// Co is the suspend context handed to a coroutine body created with New.
// It is only valid inside that body.
type Co struct {
	yield func(struct{}) bool
	owner coOwner
}

type coOwner interface {
	Name() string
	stopRequested() bool
	setAwaiting(Runner)
}

// unwindSignal is panicked through a body that is being killed so its
// deferred calls run. The coroutine wrapper recovers it.
type unwindSignal struct{}

// New creates a coroutine task. body runs on the first Resume and each
// co.Suspend hands control back to the driver until the next Resume.
//
// Killing a suspended task unwinds body: deferred calls run and the result
// is discarded. Killing a task that never started does not run body at all.
func New[T any](name string, body func(co *Co) T) *Task[T] {
	var (
		result   T
		returned bool
		next     func() (struct{}, bool)
		stop     func()
	)
	t := &Task[T]{name: name}
	co := &Co{owner: t}

	seq := func(yield func(struct{}) bool) {
		co.yield = yield
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(unwindSignal); !ok {
					panic(r)
				}
			}
		}()
		result = body(co)
		returned = true
	}

	t.step = func() (v T, st Status) {
		if next == nil {
			next, stop = iter.Pull(seq)
		}
		if _, ok := next(); ok {
			return v, Suspended
		}
		if returned {
			return result, Done
		}
		return v, Cancelled
	}
	t.unwind = func() {
		if stop != nil {
			stop()
		}
	}
	return t
}

// Name returns the name of the task running this body.
func (co *Co) Name() string { return co.owner.Name() }

// Suspend yields control to the driver. It returns on the next Resume. If
// the task is killed while suspended, Suspend does not return normally: the
// body unwinds instead.
func (co *Co) Suspend() {
	if co.owner.stopRequested() || !co.yield(struct{}{}) {
		panic(unwindSignal{})
	}
}

// Await drives r to completion from inside the body: r is resumed now and
// then once per resume of the awaiting task. It returns r's terminal
// status. If the awaiting task is killed, r is killed too.
func (co *Co) Await(r Runner) Status {
	co.owner.setAwaiting(r)
	defer func() {
		co.owner.setAwaiting(nil)
		r.Kill()
	}()
	for {
		if st := r.Resume(); st.IsTerminal() {
			return st
		}
		co.Suspend()
	}
}

// AwaitResult awaits t and returns its result.
func AwaitResult[T any](co *Co, t *Task[T]) (T, bool) {
	co.Await(t)
	return t.Result()
}

// Driving records r as the task this body is currently advancing by hand,
// so DebugStack can follow it. Pass nil once r is no longer driven.
func (co *Co) Driving(r Runner) {
	co.owner.setAwaiting(r)
}

// WaitSeconds suspends until seconds have passed on now.
func (co *Co) WaitSeconds(seconds float64, now func() float64) Status {
	return co.Await(WaitSeconds(seconds, now))
}

// WaitUntil suspends until pred returns true. pred is checked immediately.
func (co *Co) WaitUntil(pred func() bool) Status {
	return co.Await(WaitUntil(pred))
}

// WaitWhile suspends while pred returns true.
func (co *Co) WaitWhile(pred func() bool) Status {
	return co.Await(WaitWhile(pred))
}

// WaitForever suspends until the task is killed.
func (co *Co) WaitForever() {
	for {
		co.Suspend()
	}
}
