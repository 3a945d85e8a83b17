package task

import (
	"reflect"
	"strings"
	"testing"
)

func TestManagerResumesOncePerUpdateInOrder(t *testing.T) {
	m := NewManager(WithName("test"))
	var log []string
	var handles []*Handle[Void]
	for _, name := range []string{"a", "b", "c"} {
		handles = append(handles, Run(m, afterN(name, 100, &log)))
	}

	m.Update()
	m.Update()

	want := []string{"a", "b", "c", "a", "b", "c"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("resume order = %v, want %v", log, want)
	}
	for _, h := range handles {
		h.Release()
	}
}

func TestManagerDefersTasksAddedDuringUpdate(t *testing.T) {
	m := NewManager()
	var log []string
	var child *Handle[Void]
	parent := RunManaged(m, Step("a", func() (Void, bool) {
		log = append(log, "a")
		if child == nil {
			child = Run(m, afterN("b", 100, &log))
		}
		return Void{}, false
	}))

	m.Update()
	if want := []string{"a"}; !reflect.DeepEqual(log, want) {
		t.Errorf("after first Update log = %v, want %v", log, want)
	}
	m.Update()
	if want := []string{"a", "a", "b"}; !reflect.DeepEqual(log, want) {
		t.Errorf("after second Update log = %v, want %v", log, want)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	parent.Kill()
	child.Release()
	m.Update()
	if m.Len() != 0 {
		t.Errorf("Len() after kill and release = %d, want 0", m.Len())
	}
}

func TestManagerReleasedHandleIsNotResumed(t *testing.T) {
	m := NewManager()
	var log []string
	h := Run(m, afterN("dropped", 100, &log))
	h.Release()

	m.Update()
	if len(log) != 0 {
		t.Errorf("released task was resumed: %v", log)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestManagerUnreleasedHandleKeepsTaskRunning(t *testing.T) {
	m := NewManager()
	var log []string
	h := Run(m, afterN("held", 100, &log))

	for range 3 {
		m.Update()
	}
	if len(log) != 3 {
		t.Errorf("resumes while held = %d, want 3", len(log))
	}
	if m.Len() != 1 {
		t.Errorf("Len() while held = %d, want 1", m.Len())
	}

	h.Release()
	m.Update()
	if len(log) != 3 {
		t.Errorf("resumes after Release = %d, want 3", len(log))
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Release = %d, want 0", m.Len())
	}
}

func TestManagerFinishedTaskKeepsResultForHandle(t *testing.T) {
	m := NewManager()
	h := Run(m, Step("answer", func() (int, bool) { return 42, true }))
	w := h.Weak()

	m.Update()
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after the task finished", m.Len())
	}
	if v, ok := h.Result(); !ok || v != 42 {
		t.Errorf("Result() = (%d, %v), want (42, true)", v, ok)
	}

	h.Release()
	if w.IsDone() {
		t.Error("weak IsDone() = true after the last strong handle was released")
	}
}

func TestRunManagedWeakHandleExpiresWhenReaped(t *testing.T) {
	m := NewManager()
	w := RunManaged(m, afterN("managed", 2, nil))

	m.Update()
	if w.Status() != Suspended {
		t.Fatalf("Status() = %v, want %v", w.Status(), Suspended)
	}
	m.Update()
	if w.IsDone() {
		t.Error("weak IsDone() = true after the manager dropped the finished task")
	}
	if !w.Expired() {
		t.Error("Expired() = false after the manager dropped the finished task")
	}
}

func TestKillAllTasks(t *testing.T) {
	m := NewManager()
	unwound := 0
	body := func(co *Co) Void {
		defer func() { unwound++ }()
		co.WaitForever()
		return Void{}
	}
	h := Run(m, New("held", body))
	w := RunManaged(m, New("managed", body))
	m.Update()

	m.KillAllTasks()
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if unwound != 2 {
		t.Errorf("unwound %d bodies, want 2", unwound)
	}
	if !h.IsCancelled() {
		t.Errorf("held Status() = %v, want %v", h.Status(), Cancelled)
	}
	if !w.Expired() {
		t.Error("managed task not destroyed by KillAllTasks()")
	}
	h.Release()
}

func TestKillAllTasksFromInsideUpdate(t *testing.T) {
	m := NewManager()
	var log []string
	RunManaged(m, Step("killer", func() (Void, bool) {
		log = append(log, "killer")
		m.KillAllTasks()
		return Void{}, false
	}))
	RunManaged(m, afterN("victim", 100, &log))

	m.Update()
	if want := []string{"killer"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestManagerReentrantUpdatePanics(t *testing.T) {
	m := NewManager()
	RunManaged(m, Step("nested", func() (Void, bool) {
		m.Update()
		return Void{}, true
	}))

	defer func() {
		if recover() == nil {
			t.Error("re-entrant Update() did not panic")
		}
	}()
	m.Update()
}

func TestRunTwicePanics(t *testing.T) {
	m := NewManager()
	tk := WaitForever()
	RunManaged(m, tk)

	defer func() {
		if recover() == nil {
			t.Error("running a task in two managers did not panic")
		}
	}()
	RunManaged(NewManager(), tk)
}

func TestManagerDebugString(t *testing.T) {
	m := NewManager(WithName("actor"))
	RunManaged(m, New("Outer", func(co *Co) Void {
		co.Await(WaitForever())
		return Void{}
	}))
	m.Update()

	got := m.DebugString()
	for _, want := range []string{"actor (1 tasks)", "Outer -> WaitForever", "[managed]"} {
		if !strings.Contains(got, want) {
			t.Errorf("DebugString() = %q, missing %q", got, want)
		}
	}
}
