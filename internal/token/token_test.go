package token

import "testing"

func TestFlagsHeldWhileAnyTokenLive(t *testing.T) {
	var invincible Flags

	if invincible.HasTokens() {
		t.Fatal("HasTokens() on empty list = true, want false")
	}

	dash := invincible.TakeFlag("Dash")
	hurt := invincible.TakeFlag("Hurt")
	if got := invincible.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}

	dash.Release()
	if !invincible.HasTokens() {
		t.Error("HasTokens() after releasing one of two = false, want true")
	}

	hurt.Release()
	if invincible.HasTokens() {
		t.Error("HasTokens() after releasing all = true, want false")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	var l Flags
	a := l.TakeFlag("a")
	b := l.TakeFlag("b")

	a.Release()
	a.Release()

	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if !a.Released() || b.Released() {
		t.Errorf("Released() = (%v, %v), want (true, false)", a.Released(), b.Released())
	}

	var nilTok *Token[struct{}]
	nilTok.Release()
}

func TestRecencyAndOrdering(t *testing.T) {
	var speeds List[float64]

	if _, ok := speeds.MostRecent(); ok {
		t.Error("MostRecent() on empty list ok = true, want false")
	}

	slow := speeds.Take("mud", 0.5)
	speeds.Take("boost", 2.0)
	speeds.Take("ice", 1.25)

	if got, _ := speeds.LeastRecent(); got != 0.5 {
		t.Errorf("LeastRecent() = %v, want 0.5", got)
	}
	if got, _ := speeds.MostRecent(); got != 1.25 {
		t.Errorf("MostRecent() = %v, want 1.25", got)
	}
	if got, _ := Min(&speeds); got != 0.5 {
		t.Errorf("Min() = %v, want 0.5", got)
	}
	if got, _ := Max(&speeds); got != 2.0 {
		t.Errorf("Max() = %v, want 2.0", got)
	}

	slow.Release()
	if got, _ := Min(&speeds); got != 1.25 {
		t.Errorf("Min() after release = %v, want 1.25", got)
	}
	if got := speeds.Data(); len(got) != 2 || got[0] != 2.0 || got[1] != 1.25 {
		t.Errorf("Data() = %v, want [2 1.25]", got)
	}
}

func TestDebugStringAndClear(t *testing.T) {
	var l Flags
	if got := l.DebugString(); got != "[]" {
		t.Errorf("DebugString() = %q, want %q", got, "[]")
	}

	a := l.TakeFlag("Pause")
	l.TakeFlag("Menu")
	if got := l.DebugString(); got != "[Pause, Menu]" {
		t.Errorf("DebugString() = %q, want %q", got, "[Pause, Menu]")
	}

	l.Clear()
	if l.HasTokens() {
		t.Error("HasTokens() after Clear = true, want false")
	}
	if !a.Released() {
		t.Error("token still live after Clear")
	}
	a.Release()
}
