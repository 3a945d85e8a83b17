// Package input maps terminal key events to game buttons.
//
// Terminals report key presses but not releases, so a button counts as held
// for a short window after its last press. Key repeat keeps held buttons
// alive while a key stays down.
package input

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/corun/internal/world"
)

// Button is a logical game input.
type Button uint8

const (
	Up Button = iota
	Down
	Left
	Right
	Dash
	Attack
	Pause
	Quit
	buttonCount
)

var buttonNames = [...]string{"up", "down", "left", "right", "dash", "attack", "pause", "quit"}

// String returns the button name.
func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// DefaultHold is how long a button stays held after a press, in seconds.
const DefaultHold = 0.2

// Input tracks button state across frames.
type Input struct {
	keys  map[tcell.Key]Button
	runes map[rune]Button
	hold  float64

	now     float64
	last    [buttonCount]float64
	seen    [buttonCount]bool
	pressed [buttonCount]bool
}

// Option configures an Input.
type Option func(*Input)

// WithHold sets how long a press keeps a button held.
func WithHold(seconds float64) Option {
	return func(in *Input) { in.hold = seconds }
}

// New returns an Input with the default bindings: arrows or WASD to move,
// space to dash, f or enter to attack, p to pause, and escape, q or
// ctrl-c to quit.
func New(opts ...Option) *Input {
	in := &Input{
		keys:  make(map[tcell.Key]Button),
		runes: make(map[rune]Button),
		hold:  DefaultHold,
	}
	for _, opt := range opts {
		opt(in)
	}

	in.Bind(tcell.KeyUp, Up)
	in.Bind(tcell.KeyDown, Down)
	in.Bind(tcell.KeyLeft, Left)
	in.Bind(tcell.KeyRight, Right)
	in.Bind(tcell.KeyEnter, Attack)
	in.Bind(tcell.KeyEscape, Quit)
	in.Bind(tcell.KeyCtrlC, Quit)
	for r, b := range map[rune]Button{
		'w': Up, 's': Down, 'a': Left, 'd': Right,
		' ': Dash, 'f': Attack, 'p': Pause, 'q': Quit,
	} {
		in.BindRune(r, b)
	}
	return in
}

// Bind maps a special key to b.
func (in *Input) Bind(k tcell.Key, b Button) { in.keys[k] = b }

// BindRune maps a character key to b. Letters match either case.
func (in *Input) BindRune(r rune, b Button) { in.runes[r] = b }

// BeginFrame starts a new frame at time now. Presses from the previous
// frame stop counting as Pressed.
func (in *Input) BeginFrame(now float64) {
	in.now = now
	in.pressed = [buttonCount]bool{}
}

// HandleEvent applies a terminal event. It reports whether the event was
// a bound key.
func (in *Input) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	b, ok := in.lookup(key)
	if ok {
		in.Press(b)
	}
	return ok
}

func (in *Input) lookup(ev *tcell.EventKey) (Button, bool) {
	if ev.Key() != tcell.KeyRune {
		b, ok := in.keys[ev.Key()]
		return b, ok
	}
	r := ev.Rune()
	if b, ok := in.runes[r]; ok {
		return b, true
	}
	if r >= 'A' && r <= 'Z' {
		b, ok := in.runes[r-'A'+'a']
		return b, ok
	}
	return 0, false
}

// Press records a press of b in the current frame.
func (in *Input) Press(b Button) {
	in.last[b] = in.now
	in.seen[b] = true
	in.pressed[b] = true
}

// Pressed reports whether b was pressed during the current frame.
func (in *Input) Pressed(b Button) bool { return in.pressed[b] }

// Held reports whether b was pressed within the hold window.
func (in *Input) Held(b Button) bool {
	return in.seen[b] && in.now-in.last[b] < in.hold
}

// Direction returns the unit vector of the held movement buttons, or the
// zero vector.
func (in *Input) Direction() world.Vec {
	var d world.Vec
	if in.Held(Up) {
		d.Y--
	}
	if in.Held(Down) {
		d.Y++
	}
	if in.Held(Left) {
		d.X--
	}
	if in.Held(Right) {
		d.X++
	}
	return d.Norm()
}

// Release forgets every held button.
func (in *Input) Release() {
	in.seen = [buttonCount]bool{}
	in.pressed = [buttonCount]bool{}
}
