// Package entity provides the player and the creatures. Each runs its
// behaviour as a task FSM inside its own scene actor.
package entity

import (
	"log/slog"
	"slices"

	"github.com/samdwyer/corun/internal/combat"
	"github.com/samdwyer/corun/internal/fsm"
	"github.com/samdwyer/corun/internal/gametime"
	"github.com/samdwyer/corun/internal/input"
	"github.com/samdwyer/corun/internal/script"
	"github.com/samdwyer/corun/internal/world"
)

// Controls is the player's view of the input.
type Controls interface {
	Direction() world.Vec
	Pressed(b input.Button) bool
}

// Sounds plays audio cues by ID.
type Sounds interface {
	Cue(id string)
}

// Feed receives combat messages for the HUD.
type Feed interface {
	Post(msg string)
}

// Env is the shared game state entities act on. Sounds, Feed, Scripts and
// Transitions are optional.
type Env struct {
	Arena    *world.Arena
	Clock    *gametime.Clock
	Controls Controls
	Resolver *combat.Resolver
	Roster   *Roster
	Sounds   Sounds
	Feed     Feed
	Scripts  *script.Engine
	// DefaultScript is the patrol script for creatures that name none.
	DefaultScript string
	Logger        *slog.Logger
	// Transitions wraps each machine's transition callback, for example
	// with a telemetry recorder.
	Transitions func(owner string, next func(fsm.TransitionDebugData)) func(fsm.TransitionDebugData)
}

func (e *Env) now() float64 { return e.Clock.Time(gametime.Game) }

func (e *Env) dt() float64 { return e.Clock.DT(gametime.Game) }

func (e *Env) cue(id string) {
	if e.Sounds != nil && id != "" {
		e.Sounds.Cue(id)
	}
}

func (e *Env) post(msg string) {
	if e.Feed != nil {
		e.Feed.Post(msg)
	}
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) hook(owner string) func(fsm.TransitionDebugData) {
	if e.Transitions == nil {
		return nil
	}
	return e.Transitions(owner, nil)
}

// Roster tracks the live player and creatures.
type Roster struct {
	Player    *Player
	creatures []*Creature
}

// Add registers c.
func (r *Roster) Add(c *Creature) {
	r.creatures = append(r.creatures, c)
}

// Creatures returns the creatures whose actors are still in the scene,
// including dead ones that have not been cleared yet.
func (r *Roster) Creatures() []*Creature {
	out := r.creatures[:0]
	for _, c := range r.creatures {
		if c.actor == nil || c.actor.IsAlive() {
			out = append(out, c)
		}
	}
	r.creatures = out
	return slices.Clone(out)
}

// Living returns the number of creatures with hit points left.
func (r *Roster) Living() int {
	n := 0
	for _, c := range r.Creatures() {
		if c.IsAlive() {
			n++
		}
	}
	return n
}
