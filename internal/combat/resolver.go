// Package combat resolves attacks between combatants and runs status
// effects as tasks.
package combat

import (
	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/task"
)

// Combatant is the interface for any entity that can be hit.
// Both the player and creatures implement this interface.
type Combatant interface {
	// Identity
	Name() string
	IsAlive() bool

	// Stats
	HP() int
	MaxHP() int
	Defense() int

	// Invincible reports whether hits are currently ignored, for example
	// while dashing or during the grace period after being hurt.
	Invincible() bool

	// TakeDamage applies damage and returns the amount actually taken.
	TakeDamage(amount int) int
}

// Hit contains the outcome of resolving an attack.
type Hit struct {
	Attack  *gamedata.AttackDef
	Damage  int
	Blocked bool                      // Target was invincible
	Status  gamedata.StatusEffectType // Status the caller should start
	Message string                    // Human-readable description
}

// Landed reports whether the hit dealt damage or applied a status.
func (h Hit) Landed() bool {
	return h.Attack != nil && !h.Blocked
}

// Resolver looks up attacks by ID and applies them.
type Resolver struct {
	attacks *gamedata.Index[gamedata.AttackDef]
}

// NewResolver creates a resolver over the given attack definitions.
func NewResolver(attacks *gamedata.Index[gamedata.AttackDef]) *Resolver {
	return &Resolver{attacks: attacks}
}

// Resolve applies the attack from user to target and returns the result.
// Dead and invincible targets are not damaged.
func (r *Resolver) Resolve(attackID string, user, target Combatant) Hit {
	def := r.attacks.GetByID(attackID)
	if def == nil {
		return Hit{Message: "Unknown attack " + attackID}
	}
	if !target.IsAlive() {
		return Hit{Attack: def, Blocked: true, Message: target.Name() + " is already down"}
	}
	if target.Invincible() {
		return Hit{Attack: def, Blocked: true, Message: target.Name() + " evades " + def.Name + "!"}
	}

	hit := Hit{
		Attack:  def,
		Damage:  target.TakeDamage(CalculateDamage(def, target)),
		Message: user.Name() + " hits " + target.Name() + " with " + def.Name + "!",
	}
	if def.HasStatus() && target.IsAlive() {
		hit.Status = def.StatusEffect
	}
	return hit
}

// CalculateDamage calculates damage without applying it.
func CalculateDamage(def *gamedata.AttackDef, target Combatant) int {
	if def == nil {
		return 0
	}
	var damage int
	switch def.DamageType {
	case gamedata.DamageTrue:
		// True: basePower (unmitigated)
		damage = def.BasePower
	default:
		// Physical: basePower - target.Defense (min 1)
		damage = def.BasePower - target.Defense()
		if damage < 1 {
			damage = 1
		}
	}
	return damage
}

// Burn returns a task that deals the attack's status power to target every
// status interval. It is cancelled when the status duration runs out or the
// target dies. now is the time source the intervals are measured on.
func Burn(target Combatant, def *gamedata.AttackDef, now func() float64) *task.Task[task.Void] {
	interval := def.StatusInterval
	if interval <= 0 {
		interval = 1
	}
	burn := task.New("Burn", func(co *task.Co) task.Void {
		for {
			co.WaitSeconds(interval, now)
			target.TakeDamage(def.StatusPower)
		}
	}).CancelIf(func() bool { return !target.IsAlive() })
	return task.Timeout(burn, def.StatusDuration, now)
}

// StatusTask returns the task for the status a hit applied, or nil when the
// hit applied none.
func StatusTask(hit Hit, target Combatant, now func() float64) *task.Task[task.Void] {
	switch hit.Status {
	case gamedata.StatusBurn:
		return Burn(target, hit.Attack, now)
	default:
		return nil
	}
}
