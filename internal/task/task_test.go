package task

import (
	"testing"

	"github.com/samdwyer/corun/internal/token"
)

// afterN returns a task that completes on its nth resume.
func afterN(name string, n int, log *[]string) *Task[Void] {
	count := 0
	return Step(name, func() (Void, bool) {
		count++
		if log != nil {
			*log = append(*log, name)
		}
		return Void{}, count >= n
	})
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		want     string
		terminal bool
	}{
		{NotStarted, "not_started", false},
		{Suspended, "suspended", false},
		{Done, "done", true},
		{Cancelled, "cancelled", true},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestStepResumeAfterTerminalIsNoop(t *testing.T) {
	calls := 0
	tk := Step("count", func() (int, bool) {
		calls++
		return calls * 10, calls == 2
	})

	if got := tk.Status(); got != NotStarted {
		t.Fatalf("Status() = %v, want %v", got, NotStarted)
	}
	if got := tk.Resume(); got != Suspended {
		t.Fatalf("first Resume() = %v, want %v", got, Suspended)
	}
	if _, ok := tk.Result(); ok {
		t.Error("Result() ok = true before completion")
	}
	if got := tk.Resume(); got != Done {
		t.Fatalf("second Resume() = %v, want %v", got, Done)
	}
	for i := 0; i < 3; i++ {
		if got := tk.Resume(); got != Done {
			t.Errorf("Resume() after Done = %v, want %v", got, Done)
		}
	}
	if calls != 2 {
		t.Errorf("body calls = %d, want 2", calls)
	}
	if v, ok := tk.Result(); !ok || v != 20 {
		t.Errorf("Result() = (%d, %v), want (20, true)", v, ok)
	}

	tk.Kill()
	if got := tk.Status(); got != Done {
		t.Errorf("Kill() after Done changed status to %v", got)
	}
}

func TestCoroutineSuspendsBetweenResumes(t *testing.T) {
	var log []int
	tk := New("loop", func(co *Co) int {
		sum := 0
		for i := 1; i <= 3; i++ {
			log = append(log, i)
			sum += i
			co.Suspend()
		}
		return sum
	})

	for i := 1; i <= 3; i++ {
		if got := tk.Resume(); got != Suspended {
			t.Fatalf("Resume() #%d = %v, want %v", i, got, Suspended)
		}
		if len(log) != i {
			t.Fatalf("after Resume() #%d body ran %d steps, want %d", i, len(log), i)
		}
	}
	if got := tk.Resume(); got != Done {
		t.Fatalf("final Resume() = %v, want %v", got, Done)
	}
	if v, ok := tk.Result(); !ok || v != 6 {
		t.Errorf("Result() = (%d, %v), want (6, true)", v, ok)
	}
}

func TestKillUnwindsSuspendedBody(t *testing.T) {
	var flags token.Flags
	deferred := false
	tk := New("holder", func(co *Co) Void {
		tok := flags.TakeFlag("holder")
		defer tok.Release()
		defer func() { deferred = true }()
		co.WaitForever()
		return Void{}
	})

	tk.Resume()
	if !flags.HasTokens() {
		t.Fatal("token not taken after first Resume()")
	}

	tk.Kill()
	if got := tk.Status(); got != Cancelled {
		t.Errorf("Status() = %v, want %v", got, Cancelled)
	}
	if flags.HasTokens() {
		t.Error("token still held after Kill()")
	}
	if !deferred {
		t.Error("deferred call did not run on Kill()")
	}
	if _, ok := tk.Result(); ok {
		t.Error("Result() ok = true for a cancelled task")
	}
}

func TestKillBeforeStartSkipsBody(t *testing.T) {
	ran := false
	tk := New("never", func(co *Co) Void {
		ran = true
		return Void{}
	})
	tk.Kill()
	if got := tk.Resume(); got != Cancelled {
		t.Errorf("Resume() = %v, want %v", got, Cancelled)
	}
	if ran {
		t.Error("body ran after Kill() on a task that never started")
	}
}

func TestSelfKillTakesEffectAtNextSuspend(t *testing.T) {
	var tk *Task[Void]
	reached := false
	cleaned := false
	tk = New("self", func(co *Co) Void {
		defer func() { cleaned = true }()
		tk.Kill()
		co.Suspend()
		reached = true
		return Void{}
	})

	if got := tk.Resume(); got != Cancelled {
		t.Errorf("Resume() = %v, want %v", got, Cancelled)
	}
	if reached {
		t.Error("body continued past Suspend() after killing itself")
	}
	if !cleaned {
		t.Error("deferred call did not run")
	}
}

func TestPanicCancelsAndPropagates(t *testing.T) {
	tk := New("boom", func(co *Co) Void {
		co.Suspend()
		panic("boom")
	})
	tk.Resume()

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		tk.Resume()
	}()

	if got := tk.Status(); got != Cancelled {
		t.Errorf("Status() after panic = %v, want %v", got, Cancelled)
	}
}

func TestReentrantResumePanics(t *testing.T) {
	var tk *Task[Void]
	tk = New("reentrant", func(co *Co) Void {
		tk.Resume()
		return Void{}
	})

	defer func() {
		if recover() == nil {
			t.Error("re-entrant Resume() did not panic")
		}
		if got := tk.Status(); got != Cancelled {
			t.Errorf("Status() = %v, want %v", got, Cancelled)
		}
	}()
	tk.Resume()
}

func TestAwaitDrivesChildAndReportsStack(t *testing.T) {
	release := false
	child := New("Child", func(co *Co) string {
		co.WaitUntil(func() bool { return release })
		return "ok"
	})
	parent := New("Parent", func(co *Co) string {
		v, _ := AwaitResult(co, child)
		return v + "!"
	})

	parent.Resume()
	if got, want := parent.DebugStack(), "Parent -> Child -> WaitUntil"; got != want {
		t.Errorf("DebugStack() = %q, want %q", got, want)
	}

	release = true
	if got := parent.Resume(); got != Done {
		t.Fatalf("Resume() = %v, want %v", got, Done)
	}
	if v, _ := parent.Result(); v != "ok!" {
		t.Errorf("Result() = %q, want %q", v, "ok!")
	}
	if got := parent.DebugStack(); got != "Parent" {
		t.Errorf("DebugStack() after Done = %q, want %q", got, "Parent")
	}
}

func TestKillingParentKillsAwaitedChild(t *testing.T) {
	var flags token.Flags
	child := New("Child", func(co *Co) Void {
		tok := flags.TakeFlag("child")
		defer tok.Release()
		co.WaitForever()
		return Void{}
	})
	parent := New("Parent", func(co *Co) Void {
		co.Await(child)
		return Void{}
	})

	parent.Resume()
	if !flags.HasTokens() {
		t.Fatal("child did not start")
	}
	parent.Kill()
	if got := child.Status(); got != Cancelled {
		t.Errorf("child Status() = %v, want %v", got, Cancelled)
	}
	if flags.HasTokens() {
		t.Error("child token still held after parent Kill()")
	}
}

func TestCancelIf(t *testing.T) {
	tick := 0
	bodyRuns := 0
	inner := Step("inner", func() (Void, bool) {
		bodyRuns++
		return Void{}, false
	})
	tk := inner.CancelIf(func() bool { return tick == 3 })

	for tick = 1; tick <= 5; tick++ {
		st := tk.Resume()
		if tick < 3 && st != Suspended {
			t.Fatalf("tick %d: Resume() = %v, want %v", tick, st, Suspended)
		}
		if tick >= 3 && st != Cancelled {
			t.Fatalf("tick %d: Resume() = %v, want %v", tick, st, Cancelled)
		}
	}
	if bodyRuns != 2 {
		t.Errorf("inner body ran %d times, want 2", bodyRuns)
	}
	if got := inner.Status(); got != Cancelled {
		t.Errorf("inner Status() = %v, want %v", got, Cancelled)
	}
}

func TestCancelIfPassesResultThrough(t *testing.T) {
	tk := Step("value", func() (int, bool) { return 7, true }).
		CancelIf(func() bool { return false })
	if got := tk.Resume(); got != Done {
		t.Fatalf("Resume() = %v, want %v", got, Done)
	}
	if v, ok := tk.Result(); !ok || v != 7 {
		t.Errorf("Result() = (%d, %v), want (7, true)", v, ok)
	}
}
