package task

import "testing"

func TestHandleReleaseKillsUnownedTask(t *testing.T) {
	cleaned := false
	tk := New("owned", func(co *Co) Void {
		defer func() { cleaned = true }()
		co.WaitForever()
		return Void{}
	})
	h := tk.Handle()
	h.Resume()

	other := h.Clone()
	h.Release()
	if tk.Status() != Suspended {
		t.Fatalf("task stopped while a clone is still live: %v", tk.Status())
	}

	other.Release()
	if got := tk.Status(); got != Cancelled {
		t.Errorf("Status() after last Release() = %v, want %v", got, Cancelled)
	}
	if !cleaned {
		t.Error("deferred call did not run on last Release()")
	}

	other.Release()
	if other.Valid() {
		t.Error("released handle still valid")
	}
	if other.IsDone() || !other.IsCancelled() {
		t.Error("empty handle should report cancelled and not done")
	}
}

func TestWeakHandleDegradesAfterDestroy(t *testing.T) {
	tk := Step("answer", func() (int, bool) { return 42, true })
	h := tk.Handle()
	w := h.Weak()

	h.Resume()
	if !w.IsDone() {
		t.Fatal("weak IsDone() = false while a strong handle is live")
	}
	if v, ok := w.Result(); !ok || v != 42 {
		t.Errorf("weak Result() = (%d, %v), want (42, true)", v, ok)
	}

	locked, ok := w.Lock()
	if !ok {
		t.Fatal("Lock() failed on a live task")
	}
	h.Release()
	if !w.IsDone() {
		t.Error("weak IsDone() = false while a locked handle is live")
	}

	locked.Release()
	if w.IsDone() {
		t.Error("weak IsDone() = true after the task was destroyed")
	}
	if _, ok := w.Result(); ok {
		t.Error("weak Result() ok = true after the task was destroyed")
	}
	if !w.Expired() {
		t.Error("Expired() = false after the task was destroyed")
	}
	if _, ok := w.Lock(); ok {
		t.Error("Lock() succeeded after the task was destroyed")
	}
}

func TestHandleWaitAwaitsWithoutDriving(t *testing.T) {
	m := NewManager()
	worker := Run(m, afterN("worker", 3, nil).CancelIf(func() bool { return false }))
	defer worker.Release()

	var got string
	waiter := Run(m, New("waiter", func(co *Co) Void {
		co.Await(worker.Wait())
		got = worker.Name()
		return Void{}
	}))
	defer waiter.Release()

	for i := 0; i < 5 && !waiter.IsDone(); i++ {
		m.Update()
	}
	if !waiter.IsDone() {
		t.Fatal("waiter did not finish")
	}
	if got != "worker" {
		t.Errorf("waiter saw %q, want %q", got, "worker")
	}
}

func TestWeakHandleWaitCancelsOnDestroy(t *testing.T) {
	tk := WaitForever()
	h := tk.Handle()
	wait := h.Weak().Wait()

	if got := wait.Resume(); got != Suspended {
		t.Errorf("Resume() = %v, want %v", got, Suspended)
	}
	h.Release()
	if got := wait.Resume(); got != Cancelled {
		t.Errorf("Resume() after destroy = %v, want %v", got, Cancelled)
	}
}
