package task

import "weak"

// ============================================================================
// Strong handles
// ============================================================================

// Handle is a strong, reference-counted reference to a task. While any
// strong handle is live the task stays alive and, if a Manager runs it,
// keeps being resumed. Releasing the last handle of a task that no Manager
// owns kills it. Release is mandatory; a dropped Handle is never released.
//
// A released or nil Handle is empty: it reports Cancelled, IsDone is false
// and Result is empty.
type Handle[T any] struct {
	t *Task[T]
}

func newHandle[T any](t *Task[T]) *Handle[T] {
	t.refs++
	return &Handle[T]{t: t}
}

// Valid reports whether the handle still references a task.
func (h *Handle[T]) Valid() bool { return h != nil && h.t != nil }

// Name returns the task name, or "" for an empty handle.
func (h *Handle[T]) Name() string {
	if !h.Valid() {
		return ""
	}
	return h.t.name
}

// Resume resumes the task directly. Do not resume a task a Manager is
// already running.
func (h *Handle[T]) Resume() Status {
	if !h.Valid() {
		return Cancelled
	}
	return h.t.Resume()
}

// Status returns the task status.
func (h *Handle[T]) Status() Status {
	if !h.Valid() {
		return Cancelled
	}
	return h.t.status
}

// IsDone reports whether the task completed.
func (h *Handle[T]) IsDone() bool { return h.Status() == Done }

// IsCancelled reports whether the task was cancelled or the handle is empty.
func (h *Handle[T]) IsCancelled() bool { return h.Status() == Cancelled }

// Kill cancels the task.
func (h *Handle[T]) Kill() {
	if h.Valid() {
		h.t.Kill()
	}
}

// Result returns the task result once it is Done.
func (h *Handle[T]) Result() (v T, ok bool) {
	if !h.Valid() {
		return v, false
	}
	return h.t.Result()
}

// DebugStack describes the task and what it is awaiting.
func (h *Handle[T]) DebugStack() string {
	if !h.Valid() {
		return "<empty>"
	}
	return h.t.DebugStack()
}

// Clone returns another strong handle to the same task.
func (h *Handle[T]) Clone() *Handle[T] {
	if !h.Valid() {
		return &Handle[T]{}
	}
	return newHandle(h.t)
}

// Weak returns a weak handle to the same task.
func (h *Handle[T]) Weak() *WeakHandle[T] {
	if !h.Valid() {
		return &WeakHandle[T]{}
	}
	return newWeakHandle(h.t)
}

// Release drops this reference. It is safe to call more than once.
func (h *Handle[T]) Release() {
	if !h.Valid() {
		return
	}
	t := h.t
	h.t = nil
	t.refs--
	t.releaseIfOrphaned()
}

// Wait returns a task that completes with the handled task's result, so a
// body can Await a task it does not drive. The waiter holds its own strong
// reference until it finishes.
func (h *Handle[T]) Wait() *Task[T] {
	ref := h.Clone()
	return newTask("Wait("+ref.Name()+")", func() (v T, st Status) {
		switch ref.Status() {
		case Done:
			v, _ = ref.Result()
			ref.Release()
			return v, Done
		case Cancelled:
			ref.Release()
			return v, Cancelled
		default:
			return v, Suspended
		}
	}, ref.Release)
}

// ============================================================================
// Weak handles
// ============================================================================

// WeakHandle observes a task without keeping it alive. Once the task is
// destroyed the handle reports Cancelled, IsDone is false and Result is
// empty.
type WeakHandle[T any] struct {
	p weak.Pointer[Task[T]]
}

func newWeakHandle[T any](t *Task[T]) *WeakHandle[T] {
	return &WeakHandle[T]{p: weak.Make(t)}
}

func (w *WeakHandle[T]) get() *Task[T] {
	if w == nil {
		return nil
	}
	t := w.p.Value()
	if t == nil || t.destroyed {
		return nil
	}
	return t
}

// Expired reports whether the task has been destroyed.
func (w *WeakHandle[T]) Expired() bool { return w.get() == nil }

// Name returns the task name, or "" once expired.
func (w *WeakHandle[T]) Name() string {
	if t := w.get(); t != nil {
		return t.name
	}
	return ""
}

// Status returns the task status.
func (w *WeakHandle[T]) Status() Status {
	if t := w.get(); t != nil {
		return t.status
	}
	return Cancelled
}

// IsDone reports whether the task completed and is still alive.
func (w *WeakHandle[T]) IsDone() bool { return w.Status() == Done }

// IsCancelled reports whether the task was cancelled or destroyed.
func (w *WeakHandle[T]) IsCancelled() bool { return w.Status() == Cancelled }

// Kill cancels the task if it is still alive.
func (w *WeakHandle[T]) Kill() {
	if t := w.get(); t != nil {
		t.Kill()
	}
}

// Result returns the task result if the task is alive and Done.
func (w *WeakHandle[T]) Result() (v T, ok bool) {
	if t := w.get(); t != nil {
		return t.Result()
	}
	return v, false
}

// DebugStack describes the task and what it is awaiting.
func (w *WeakHandle[T]) DebugStack() string {
	if t := w.get(); t != nil {
		return t.DebugStack()
	}
	return "<expired>"
}

// Lock upgrades to a strong handle if the task is still alive.
func (w *WeakHandle[T]) Lock() (*Handle[T], bool) {
	t := w.get()
	if t == nil {
		return nil, false
	}
	return newHandle(t), true
}

// Wait returns a task that completes with the observed task's result. It
// is cancelled if the observed task is cancelled or destroyed.
func (w *WeakHandle[T]) Wait() *Task[T] {
	return Step("Wait("+w.Name()+")", func() (v T, done bool) {
		switch w.Status() {
		case Done:
			v, _ = w.Result()
			return v, true
		default:
			return v, false
		}
	}).CancelIf(w.IsCancelled)
}
