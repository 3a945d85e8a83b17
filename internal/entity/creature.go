package entity

import (
	"fmt"

	"github.com/samdwyer/corun/internal/actor"
	"github.com/samdwyer/corun/internal/combat"
	"github.com/samdwyer/corun/internal/fsm"
	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/task"
	"github.com/samdwyer/corun/internal/token"
	"github.com/samdwyer/corun/internal/world"
)

const (
	// corpseTime is how long a dead creature stays on the map.
	corpseTime = 1.0
	// patrolPause is the rest between built-in patrol legs.
	patrolPause = 0.5
	// swingSlack lets an attack land on a player that stepped slightly out
	// of reach during the windup.
	swingSlack = 1.25
	// arriveDist is how close a chase gets to the last known position.
	arriveDist = 0.5
)

// Creature is a hostile actor.
//
// Its machine runs Patrol, Chase (carrying the position the player was
// seen at), Attack and back to Patrol. Any state moves to Dead when the
// creature runs out of hit points. Patrol runs the creature's Lua script
// when it has one.
type Creature struct {
	def *gamedata.CreatureDef
	env *Env
	id  string

	pos world.Vec
	hp  int

	// windup is held while an attack is being telegraphed.
	windup token.Flags

	machine *fsm.FSM
	actor   *actor.Actor
}

// NewCreature creates a creature at pos and registers it with env.Roster.
func NewCreature(env *Env, def *gamedata.CreatureDef, pos world.Vec) *Creature {
	c := &Creature{
		def: def,
		env: env,
		pos: pos,
		hp:  def.HP,
	}
	if env.Roster != nil {
		c.id = fmt.Sprintf("%s-%d", def.ID, len(env.Roster.creatures)+1)
		env.Roster.Add(c)
	} else {
		c.id = def.ID
	}
	c.machine = c.buildMachine()
	return c
}

func (c *Creature) buildMachine() *fsm.FSM {
	f := fsm.New(c.id, fsm.WithLogger(c.env.logger()))

	patrol := f.State("Patrol", c.patrolTask)
	chase := fsm.StateWith(f, "Chase", func(target world.Vec) task.Runner {
		return task.New("Chase", func(co *task.Co) task.Void { return c.chase(co, target) })
	})
	attack := f.State("Attack", func() task.Runner { return task.New("Attack", c.attack) })
	dead := f.State("Dead", func() task.Runner { return task.New("Dead", c.dead) })

	f.EntryLinks(patrol.Link(nil))
	f.StateLinks(patrol,
		dead.Link(c.isDead),
		chase.Link(c.spotPlayer),
	)
	f.StateLinks(chase,
		dead.Link(c.isDead),
		attack.Link(c.inReach),
		patrol.OnCompleteLink(nil),
	)
	f.StateLinks(attack,
		dead.Link(c.isDead),
		patrol.OnCompleteLink(nil),
	)
	return f
}

// Spawn adds the creature to scene. It updates after the player so it
// reacts to where the player is this frame.
func (c *Creature) Spawn(scene *actor.Scene) *actor.Actor {
	var opts []actor.Option
	if p := c.player(); p != nil && p.actor != nil {
		opts = append(opts, actor.DependsOn(p.actor))
	}
	return scene.Spawn(c.id, c, opts...)
}

// Manage implements actor.Behaviour.
func (c *Creature) Manage(a *actor.Actor) *task.Task[task.Void] {
	c.actor = a
	run := c.machine.Run(c.env.hook(c.id))
	return task.New(c.id, func(co *task.Co) task.Void {
		co.Await(run)
		return task.Void{}
	})
}

// =============================================================================
// States
// =============================================================================

// patrolTask returns the creature's Lua behaviour, falling back to the
// built-in patrol when there is none or it cannot be started.
func (c *Creature) patrolTask() task.Runner {
	name := c.def.Script
	if name == "" {
		name = c.env.DefaultScript
	}
	if name != "" && c.env.Scripts != nil {
		b, err := c.env.Scripts.Behaviour(name, scriptHost{c})
		if err == nil {
			return b
		}
		c.env.logger().Warn("creature script unavailable, using built-in patrol",
			"creature", c.id, "script", name, "error", err)
	}
	return task.New("Patrol", c.patrol)
}

func (c *Creature) patrol(co *task.Co) task.Void {
	for {
		target := c.env.Arena.RandomFloor(c.pos, 2)
		for !c.stepToward(target, c.def.PatrolSpeed) {
			co.Suspend()
		}
		co.WaitSeconds(patrolPause, c.env.now)
	}
}

func (c *Creature) chase(co *task.Co, last world.Vec) task.Void {
	for {
		p := c.player()
		if p == nil || !p.IsAlive() {
			return task.Void{}
		}
		visible := c.sees(p)
		if visible {
			last = p.Position()
		}
		arrived := c.pos.Dist(last) <= arriveDist || c.stepToward(last, c.def.Speed)
		if arrived && !visible {
			return task.Void{}
		}
		co.Suspend()
	}
}

func (c *Creature) attack(co *task.Co) task.Void {
	tel := c.windup.TakeFlag("windup")
	defer tel.Release()
	co.WaitSeconds(c.def.Windup, c.env.now)
	tel.Release()

	if p := c.player(); p != nil && p.IsAlive() && c.pos.Dist(p.Position()) <= c.def.Reach*swingSlack {
		hit := c.env.Resolver.Resolve(c.def.Attack, c, p)
		switch {
		case hit.Landed():
			c.env.cue(hit.Attack.Cue)
			c.env.post(hit.Message)
			if st := combat.StatusTask(hit, p, c.env.now); st != nil && p.actor != nil {
				task.RunManaged(p.actor.Tasks(), st)
			}
		case hit.Blocked:
			c.env.post(hit.Message)
		}
	}
	co.WaitSeconds(c.def.Cooldown, c.env.now)
	return task.Void{}
}

func (c *Creature) dead(co *task.Co) task.Void {
	// A corpse no longer reacts to the player.
	if p := c.player(); p != nil && p.actor != nil && c.actor != nil {
		c.actor.RemoveDependency(p.actor)
	}
	c.env.cue("death")
	c.env.post(c.def.Name + " is destroyed.")
	co.WaitSeconds(corpseTime, c.env.now)
	if c.actor != nil {
		c.actor.Destroy()
	}
	co.WaitForever()
	return task.Void{}
}

// =============================================================================
// Link predicates and movement
// =============================================================================

func (c *Creature) player() *Player {
	if c.env.Roster == nil {
		return nil
	}
	return c.env.Roster.Player
}

func (c *Creature) isDead() bool { return !c.IsAlive() }

func (c *Creature) sees(p *Player) bool {
	return c.pos.Dist(p.Position()) <= c.def.Sight && c.env.Arena.LineOfSight(c.pos, p.Position())
}

func (c *Creature) spotPlayer() (world.Vec, bool) {
	p := c.player()
	if p == nil || !p.IsAlive() || !c.sees(p) {
		return world.Vec{}, false
	}
	return p.Position(), true
}

func (c *Creature) inReach() bool {
	p := c.player()
	return p != nil && p.IsAlive() && c.pos.Dist(p.Position()) <= c.def.Reach
}

// stepToward moves one frame toward target at speed cells per second. It
// reports whether the creature arrived or is blocked.
func (c *Creature) stepToward(target world.Vec, speed float64) bool {
	d := target.Sub(c.pos)
	step := speed * c.env.dt()
	if d.Len() <= step {
		c.pos = c.env.Arena.Move(c.pos, d)
		return true
	}
	next := c.env.Arena.Move(c.pos, d.Norm().Scale(step))
	stuck := step > 0 && next == c.pos
	c.pos = next
	return stuck
}

// =============================================================================
// Combatant
// =============================================================================

// Name returns the creature's display name.
func (c *Creature) Name() string { return c.def.Name }

// IsAlive reports whether the creature has hit points left.
func (c *Creature) IsAlive() bool { return c.hp > 0 }

// HP returns the current hit points.
func (c *Creature) HP() int { return c.hp }

// MaxHP returns the starting hit points.
func (c *Creature) MaxHP() int { return c.def.HP }

// Defense returns zero; creatures rely on hit points.
func (c *Creature) Defense() int { return 0 }

// Invincible returns false; creatures cannot dodge.
func (c *Creature) Invincible() bool { return false }

// TakeDamage applies damage and returns the amount taken.
func (c *Creature) TakeDamage(amount int) int {
	if amount <= 0 || !c.IsAlive() {
		return 0
	}
	actual := min(amount, c.hp)
	c.hp -= actual
	return actual
}

// =============================================================================
// Accessors
// =============================================================================

// ID returns the creature's unique debug name.
func (c *Creature) ID() string { return c.id }

// Def returns the creature's definition.
func (c *Creature) Def() *gamedata.CreatureDef { return c.def }

// Position returns the creature's position.
func (c *Creature) Position() world.Vec { return c.pos }

// State returns the name of the active machine state.
func (c *Creature) State() string {
	_, name := c.machine.ActiveState()
	return name
}

// IsWindingUp reports whether an attack is being telegraphed.
func (c *Creature) IsWindingUp() bool { return c.windup.HasTokens() }

// Actor returns the creature's actor, or nil before Spawn.
func (c *Creature) Actor() *actor.Actor { return c.actor }

// scriptHost exposes a creature to its Lua behaviour.
type scriptHost struct{ c *Creature }

func (h scriptHost) Position() (float64, float64) {
	return h.c.pos.X, h.c.pos.Y
}

func (h scriptHost) MoveToward(x, y float64) bool {
	return h.c.stepToward(world.V(x, y), h.c.def.PatrolSpeed)
}

func (h scriptHost) RandomPoint() (float64, float64) {
	p := h.c.env.Arena.RandomFloor(h.c.pos, 2)
	return p.X, p.Y
}

func (h scriptHost) Now() float64 { return h.c.env.now() }

func (h scriptHost) Condition(name string) (func() bool, bool) {
	switch name {
	case "player_visible":
		return func() bool {
			p := h.c.player()
			return p != nil && p.IsAlive() && h.c.sees(p)
		}, true
	case "player_moving":
		return func() bool {
			p := h.c.player()
			return p != nil && p.IsMoving()
		}, true
	case "hurt":
		return func() bool { return h.c.hp < h.c.def.HP }, true
	default:
		return nil, false
	}
}
