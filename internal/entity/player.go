package entity

import (
	"math"

	"github.com/samdwyer/corun/internal/actor"
	"github.com/samdwyer/corun/internal/combat"
	"github.com/samdwyer/corun/internal/fsm"
	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/input"
	"github.com/samdwyer/corun/internal/task"
	"github.com/samdwyer/corun/internal/token"
	"github.com/samdwyer/corun/internal/world"
)

const (
	// attackCooldown is the minimum time between player attacks.
	attackCooldown = 0.25
	// attackReach is how far the player's attack lands, in cells.
	attackReach = 1.5
)

// Player is the controlled character.
//
// Its machine has the states Idle, Move, Dash, Hurt and the exit state
// Dead. Dash carries the dash direction from its link predicate. While
// dashing or hurt the player holds Invincible tokens; they are released by
// the state tasks' defers, so leaving a state early clears them too.
type Player struct {
	def *gamedata.PlayerDef
	env *Env

	pos    world.Vec
	facing world.Vec
	hp     int

	invincible  token.Flags
	dashing     token.Flags
	hurtPending bool
	lastDash    float64
	lastAttack  float64

	machine *fsm.FSM
	actor   *actor.Actor
}

// NewPlayer creates the player at pos and registers it with env.Roster.
// It does nothing until spawned into a scene.
func NewPlayer(env *Env, def *gamedata.PlayerDef, pos world.Vec) *Player {
	p := &Player{
		def:        def,
		env:        env,
		pos:        pos,
		facing:     world.V(1, 0),
		hp:         def.HP,
		lastDash:   math.Inf(-1),
		lastAttack: math.Inf(-1),
	}
	p.machine = p.buildMachine()
	if env.Roster != nil {
		env.Roster.Player = p
	}
	return p
}

func (p *Player) buildMachine() *fsm.FSM {
	f := fsm.New("Player", fsm.WithLogger(p.env.logger()))

	idle := f.State("Idle", func() task.Runner { return task.New("Idle", p.idle) })
	move := f.State("Move", func() task.Runner { return task.New("Move", p.move) })
	dash := fsm.StateWith(f, "Dash", func(dir world.Vec) task.Runner {
		return task.New("Dash", func(co *task.Co) task.Void { return p.dash(co, dir) })
	})
	hurt := f.State("Hurt", func() task.Runner { return task.New("Hurt", p.hurt) })
	dead := f.ExitState("Dead")

	f.EntryLinks(idle.Link(nil))
	f.StateLinks(idle,
		dead.Link(p.isDead),
		hurt.Link(p.takeHurt),
		dash.Link(p.dashRequest),
		move.Link(p.wantsMove),
	)
	f.StateLinks(move,
		dead.Link(p.isDead),
		hurt.Link(p.takeHurt),
		dash.Link(p.dashRequest),
		idle.OnCompleteLink(nil),
	)
	f.StateLinks(dash,
		dead.Link(p.isDead),
		idle.OnCompleteLink(nil),
	)
	f.StateLinks(hurt,
		dead.Link(p.isDead),
		idle.OnCompleteLink(nil),
	)
	return f
}

// Spawn adds the player to scene.
func (p *Player) Spawn(scene *actor.Scene) *actor.Actor {
	return scene.Spawn("player", p)
}

// Manage implements actor.Behaviour. The task runs the machine and ends
// when the player dies.
func (p *Player) Manage(a *actor.Actor) *task.Task[task.Void] {
	p.actor = a
	run := p.machine.Run(p.env.hook(p.machine.Name()))
	return task.New("Player", func(co *task.Co) task.Void {
		co.Await(run)
		p.env.cue("death")
		p.env.post(p.def.Name + " falls.")
		p.env.logger().Info("player died", "state", p.State())
		return task.Void{}
	})
}

// =============================================================================
// States
// =============================================================================

func (p *Player) idle(co *task.Co) task.Void {
	for {
		p.tryAttack()
		co.Suspend()
	}
}

func (p *Player) move(co *task.Co) task.Void {
	for {
		dir := p.env.Controls.Direction()
		if dir.IsZero() {
			return task.Void{}
		}
		p.facing = dir
		p.pos = p.env.Arena.Move(p.pos, dir.Scale(p.def.Speed*p.env.dt()))
		p.tryAttack()
		co.Suspend()
	}
}

func (p *Player) dash(co *task.Co, dir world.Vec) task.Void {
	inv := p.invincible.TakeFlag("dash")
	defer inv.Release()
	d := p.dashing.TakeFlag("dash")
	defer d.Release()
	defer func() { p.lastDash = p.env.now() }()

	p.env.cue("dash")
	p.facing = dir
	start := p.env.now()
	for {
		p.pos = p.env.Arena.Move(p.pos, dir.Scale(p.def.DashSpeed*p.env.dt()))
		if p.env.now()-start >= p.def.DashDuration {
			return task.Void{}
		}
		co.Suspend()
	}
}

func (p *Player) hurt(co *task.Co) task.Void {
	inv := p.invincible.TakeFlag("hurt")
	defer inv.Release()

	p.env.cue("hurt")
	co.WaitSeconds(p.def.HurtDuration, p.env.now)
	if p.def.Grace > 0 && p.actor != nil {
		task.RunManaged(p.actor.Tasks(), p.grace())
	}
	return task.Void{}
}

// grace keeps the player invincible for a while after Hurt ends. It runs
// beside the machine so the player can move during it.
func (p *Player) grace() *task.Task[task.Void] {
	return task.New("Grace", func(co *task.Co) task.Void {
		tok := p.invincible.TakeFlag("grace")
		defer tok.Release()
		co.WaitSeconds(p.def.Grace, p.env.now)
		return task.Void{}
	})
}

// =============================================================================
// Link predicates
// =============================================================================

func (p *Player) isDead() bool { return !p.IsAlive() }

func (p *Player) wantsMove() bool { return !p.env.Controls.Direction().IsZero() }

// takeHurt consumes a pending stagger.
func (p *Player) takeHurt() bool {
	if !p.hurtPending {
		return false
	}
	p.hurtPending = false
	return true
}

func (p *Player) dashRequest() (world.Vec, bool) {
	if !p.env.Controls.Pressed(input.Dash) || p.env.now()-p.lastDash < p.def.DashCooldown {
		return world.Vec{}, false
	}
	dir := p.env.Controls.Direction()
	if dir.IsZero() {
		dir = p.facing
	}
	return dir.Norm(), true
}

func (p *Player) tryAttack() {
	if !p.env.Controls.Pressed(input.Attack) || p.env.now()-p.lastAttack < attackCooldown {
		return
	}
	p.lastAttack = p.env.now()
	if p.env.Roster == nil {
		return
	}
	for _, c := range p.env.Roster.Creatures() {
		if !c.IsAlive() || c.pos.Dist(p.pos) > attackReach {
			continue
		}
		hit := p.env.Resolver.Resolve(p.def.Attack, p, c)
		if !hit.Landed() {
			continue
		}
		p.env.cue(hit.Attack.Cue)
		p.env.post(hit.Message)
		if st := combat.StatusTask(hit, c, p.env.now); st != nil && c.actor != nil {
			task.RunManaged(c.actor.Tasks(), st)
		}
	}
}

// =============================================================================
// Combatant
// =============================================================================

// Name returns the player's display name.
func (p *Player) Name() string { return p.def.Name }

// IsAlive reports whether the player has hit points left.
func (p *Player) IsAlive() bool { return p.hp > 0 }

// HP returns the current hit points.
func (p *Player) HP() int { return p.hp }

// MaxHP returns the starting hit points.
func (p *Player) MaxHP() int { return p.def.HP }

// Defense returns the damage reduction for physical attacks.
func (p *Player) Defense() int { return p.def.Defense }

// Invincible reports whether any invincibility token is held.
func (p *Player) Invincible() bool { return p.invincible.HasTokens() }

// TakeDamage applies damage. A hit taken while vulnerable staggers the
// player into Hurt on the next tick.
func (p *Player) TakeDamage(amount int) int {
	if amount <= 0 || !p.IsAlive() {
		return 0
	}
	actual := min(amount, p.hp)
	p.hp -= actual
	if !p.Invincible() {
		p.hurtPending = true
	}
	return actual
}

// =============================================================================
// Accessors
// =============================================================================

// Position returns the player's position.
func (p *Player) Position() world.Vec { return p.pos }

// Def returns the player's tuning values.
func (p *Player) Def() *gamedata.PlayerDef { return p.def }

// State returns the name of the active machine state.
func (p *Player) State() string {
	_, name := p.machine.ActiveState()
	return name
}

// IsDashing reports whether a dash is in progress.
func (p *Player) IsDashing() bool { return p.dashing.HasTokens() }

// IsMoving reports whether the player is walking or dashing.
func (p *Player) IsMoving() bool {
	s := p.State()
	return s == "Move" || s == "Dash"
}

// InvincibleReasons describes the held invincibility tokens.
func (p *Player) InvincibleReasons() string { return p.invincible.DebugString() }

// Actor returns the player's actor, or nil before Spawn.
func (p *Player) Actor() *actor.Actor { return p.actor }
