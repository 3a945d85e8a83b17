// Package actor provides scene objects that own a task manager.
//
// Each Actor runs its own task.Manager, started with a managed top-level
// task from its Behaviour. A Scene updates actors once per frame in
// stages, updating an actor's dependencies before the actor itself.
package actor

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/samdwyer/corun/internal/task"
)

// Stage orders actor updates within a frame.
type Stage uint8

const (
	// Initial runs at the start of the frame.
	Initial Stage = iota
	// PrePhysics runs before the physics step.
	PrePhysics
	// PostPhysics runs after the physics step.
	PostPhysics
	// Final runs at the end of the frame, before drawing.
	Final
)

var stageNames = [...]string{"initial", "pre_physics", "post_physics", "final"}

// String returns the stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Behaviour supplies an actor's top-level task.
type Behaviour interface {
	Manage(a *Actor) *task.Task[task.Void]
}

// BehaviourFunc adapts a function to Behaviour.
type BehaviourFunc func(a *Actor) *task.Task[task.Void]

// Manage implements Behaviour.
func (f BehaviourFunc) Manage(a *Actor) *task.Task[task.Void] { return f(a) }

// Actor is a scene object with its own task manager.
type Actor struct {
	id          uuid.UUID
	name        string
	stage       Stage
	whilePaused bool
	tasks       *task.Manager
	deps        []*Actor
	destroyed   bool
	lastUpdate  uint64
	visiting    bool
}

// Option configures an Actor at spawn time.
type Option func(*Actor)

// WithStage sets the update stage. The default is PrePhysics.
func WithStage(s Stage) Option {
	return func(a *Actor) { a.stage = s }
}

// UpdateWhilePaused makes the actor update while the scene is paused.
func UpdateWhilePaused() Option {
	return func(a *Actor) { a.whilePaused = true }
}

// DependsOn adds dependencies that update before the actor.
func DependsOn(deps ...*Actor) Option {
	return func(a *Actor) { a.deps = append(a.deps, deps...) }
}

// ID returns the actor's unique ID.
func (a *Actor) ID() uuid.UUID { return a.id }

// Name returns the actor's debug name.
func (a *Actor) Name() string { return a.name }

// Stage returns the update stage.
func (a *Actor) Stage() Stage { return a.stage }

// Tasks returns the actor's task manager.
func (a *Actor) Tasks() *task.Manager { return a.tasks }

// IsAlive reports whether the actor has not been destroyed.
func (a *Actor) IsAlive() bool { return a != nil && !a.destroyed }

// UpdatesWhilePaused reports whether the actor updates while paused.
func (a *Actor) UpdatesWhilePaused() bool { return a.whilePaused }

// AddDependency makes dep update before a each frame.
func (a *Actor) AddDependency(dep *Actor) {
	a.deps = append(a.deps, dep)
}

// RemoveDependency removes dep from a's dependencies.
func (a *Actor) RemoveDependency(dep *Actor) {
	for i, d := range a.deps {
		if d == dep {
			a.deps = append(a.deps[:i], a.deps[i+1:]...)
			return
		}
	}
}

// HasDependency reports whether dep updates before a.
func (a *Actor) HasDependency(dep *Actor) bool {
	return slices.Contains(a.deps, dep)
}

// Destroy kills every task the actor runs. The scene drops the actor at
// the end of the current stage. Destroying an actor from one of its own
// tasks is allowed.
func (a *Actor) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.tasks.KillAllTasks()
}

func (a *Actor) updateWithID(id uint64) {
	if a.lastUpdate == id || a.destroyed {
		return
	}
	a.lastUpdate = id
	a.tasks.Update()
}
