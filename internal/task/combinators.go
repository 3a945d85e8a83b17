package task

import "fmt"

// ============================================================================
// Waits
// ============================================================================

// Suspend returns a task that suspends once and completes on its second
// resume.
func Suspend() *Task[Void] {
	resumed := false
	return Step("Suspend", func() (Void, bool) {
		if resumed {
			return Void{}, true
		}
		resumed = true
		return Void{}, false
	})
}

// WaitSeconds returns a task that completes on the first resume where at
// least seconds have passed on now since the task was created. now reports
// the current time of a clock stream, such as gametime.Clock.TimeFunc.
func WaitSeconds(seconds float64, now func() float64) *Task[Void] {
	start := now()
	return Step(fmt.Sprintf("WaitSeconds(%g)", seconds), func() (Void, bool) {
		return Void{}, now()-start >= seconds
	})
}

// WaitUntil returns a task that completes on the first resume where pred
// returns true.
func WaitUntil(pred func() bool) *Task[Void] {
	return Step("WaitUntil", func() (Void, bool) {
		return Void{}, pred()
	})
}

// WaitWhile returns a task that completes on the first resume where pred
// returns false.
func WaitWhile(pred func() bool) *Task[Void] {
	return Step("WaitWhile", func() (Void, bool) {
		return Void{}, !pred()
	})
}

// WaitForever returns a task that only finishes by being killed.
func WaitForever() *Task[Void] {
	return Step("WaitForever", func() (Void, bool) {
		return Void{}, false
	})
}

// ============================================================================
// Groups
// ============================================================================

// WaitForAll returns a task that resumes every unfinished child once per
// resume and completes when all of them are Done. If any child is
// cancelled the group is cancelled and the remaining children are killed.
func WaitForAll(tasks ...Runner) *Task[Void] {
	if len(tasks) == 0 {
		panic("task: WaitForAll requires at least one task")
	}
	killAll := func() {
		for _, t := range tasks {
			t.Kill()
		}
	}
	return newTask("WaitForAll", func() (Void, Status) {
		all := true
		for _, t := range tasks {
			if t.Status() == Done {
				continue
			}
			switch t.Resume() {
			case Cancelled:
				killAll()
				return Void{}, Cancelled
			case Done:
			default:
				all = false
			}
		}
		if all {
			return Void{}, Done
		}
		return Void{}, Suspended
	}, killAll)
}

// WaitForAny returns a task that resumes every child once per resume and
// completes with the index of the first child, in argument order, found
// Done. The other children are killed. Cancelled children are ignored
// unless all of them are cancelled, which cancels the group.
func WaitForAny(tasks ...Runner) *Task[int] {
	if len(tasks) == 0 {
		panic("task: WaitForAny requires at least one task")
	}
	killAll := func() {
		for _, t := range tasks {
			t.Kill()
		}
	}
	return newTask("WaitForAny", func() (int, Status) {
		winner := -1
		cancelled := 0
		for i, t := range tasks {
			switch t.Resume() {
			case Done:
				if winner < 0 {
					winner = i
				}
			case Cancelled:
				cancelled++
			}
		}
		if winner >= 0 {
			killAll()
			return winner, Done
		}
		if cancelled == len(tasks) {
			return 0, Cancelled
		}
		return 0, Suspended
	}, killAll)
}

// Timeout cancels t on the first resume where at least seconds have passed
// on now since Timeout was called.
func Timeout[T any](t *Task[T], seconds float64, now func() float64) *Task[T] {
	start := now()
	return t.CancelIf(func() bool {
		return now()-start >= seconds
	})
}
