package actor

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/samdwyer/corun/internal/task"
)

// Scene owns the live actors and updates them each frame.
type Scene struct {
	actors   []*Actor
	updateID uint64
	physics  func()
	logger   *slog.Logger
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithPhysics sets the step run between PrePhysics and PostPhysics.
func WithPhysics(step func()) SceneOption {
	return func(s *Scene) { s.physics = step }
}

// WithLogger sets the scene logger. Actor task managers log through it.
func WithLogger(l *slog.Logger) SceneOption {
	return func(s *Scene) { s.logger = l }
}

// NewScene creates an empty scene.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn creates an actor, adds it to the scene and starts its behaviour
// as a managed task.
func (s *Scene) Spawn(name string, b Behaviour, opts ...Option) *Actor {
	a := &Actor{
		id:    uuid.New(),
		name:  name,
		stage: PrePhysics,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.tasks = task.NewManager(
		task.WithName(name),
		task.WithLogger(s.logger.With("actor", name, "actor_id", a.id.String())),
	)
	s.actors = append(s.actors, a)
	if b != nil {
		task.RunManaged(a.tasks, b.Manage(a))
	}
	s.logger.Debug("actor spawned", "actor", name, "actor_id", a.id.String(), "stage", a.stage.String())
	return a
}

// Update advances every live actor once. Paused scenes only update actors
// that opted in with UpdateWhilePaused.
func (s *Scene) Update(paused bool) {
	s.updateID++
	s.updateStage(Initial, paused)
	s.updateStage(PrePhysics, paused)
	if s.physics != nil {
		s.physics()
	}
	s.updateStage(PostPhysics, paused)
	s.updateStage(Final, paused)
}

func (s *Scene) updateStage(stage Stage, paused bool) {
	// Actors spawned during the stage are picked up by this loop.
	for i := 0; i < len(s.actors); i++ {
		if a := s.actors[i]; a.IsAlive() {
			s.updateActor(a, stage, paused)
		}
	}
	s.actors = slices.DeleteFunc(s.actors, func(a *Actor) bool { return !a.IsAlive() })
}

func (s *Scene) updateActor(a *Actor, stage Stage, paused bool) {
	if a.lastUpdate == s.updateID || a.stage > stage {
		return
	}
	if paused && !a.whilePaused {
		return
	}
	if a.visiting {
		panic(fmt.Sprintf("actor: dependency cycle through %q", a.name))
	}
	a.visiting = true
	defer func() { a.visiting = false }()

	for _, dep := range a.deps {
		if !dep.IsAlive() {
			continue
		}
		if paused && !dep.whilePaused {
			panic(fmt.Sprintf("actor: %q updates while paused but dependency %q does not", a.name, dep.name))
		}
		if dep.stage > a.stage {
			panic(fmt.Sprintf("actor: dependency %q updates in stage %s, after %q in stage %s",
				dep.name, dep.stage, a.name, a.stage))
		}
		s.updateActor(dep, stage, paused)
	}
	a.deps = slices.DeleteFunc(a.deps, func(d *Actor) bool { return !d.IsAlive() })
	a.updateWithID(s.updateID)
}

// Actors returns the live actors in spawn order.
func (s *Scene) Actors() []*Actor {
	out := make([]*Actor, 0, len(s.actors))
	for _, a := range s.actors {
		if a.IsAlive() {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the first live actor named name.
func (s *Scene) Find(name string) (*Actor, bool) {
	for _, a := range s.actors {
		if a.IsAlive() && a.name == name {
			return a, true
		}
	}
	return nil, false
}

// Len returns the number of live actors.
func (s *Scene) Len() int { return len(s.Actors()) }

// TaskCount returns the number of tasks across all live actors.
func (s *Scene) TaskCount() int {
	n := 0
	for _, a := range s.actors {
		if a.IsAlive() {
			n += a.tasks.Len()
		}
	}
	return n
}

// Clear destroys every actor.
func (s *Scene) Clear() {
	for _, a := range s.actors {
		a.Destroy()
	}
	s.actors = nil
}
