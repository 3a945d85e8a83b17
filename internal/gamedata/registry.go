package gamedata

import (
	"errors"
	"math/rand"
)

// CreatureRegistry holds loaded creature definitions and provides spawning utilities.
type CreatureRegistry struct {
	creatures   []CreatureDef
	totalWeight int
}

// NewCreatureRegistry creates a registry from loaded creature definitions.
func NewCreatureRegistry(creatures []CreatureDef) *CreatureRegistry {
	totalWeight := 0
	for _, c := range creatures {
		totalWeight += c.SpawnWeight
	}
	return &CreatureRegistry{
		creatures:   creatures,
		totalWeight: totalWeight,
	}
}

// LoadCreatureRegistry loads and creates a registry from the embedded creatures.json.
func LoadCreatureRegistry() (*CreatureRegistry, error) {
	creatures, err := LoadCreatures()
	if err != nil {
		return nil, err
	}
	if len(creatures) == 0 {
		return nil, errors.New("no creatures loaded from creatures.json")
	}
	return NewCreatureRegistry(creatures), nil
}

// SpawnRandom selects a random creature definition using weighted probability.
// Creatures with higher spawnWeight are more likely to be selected.
func (r *CreatureRegistry) SpawnRandom(rng *rand.Rand) *CreatureDef {
	if r.totalWeight <= 0 || len(r.creatures) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)
	cumulative := 0
	for i := range r.creatures {
		cumulative += r.creatures[i].SpawnWeight
		if roll < cumulative {
			return &r.creatures[i]
		}
	}
	return &r.creatures[0]
}

// GetByID returns the creature definition with the given ID, or nil if not found.
func (r *CreatureRegistry) GetByID(id string) *CreatureDef {
	for i := range r.creatures {
		if r.creatures[i].ID == id {
			return &r.creatures[i]
		}
	}
	return nil
}

// All returns all creature definitions.
func (r *CreatureRegistry) All() []CreatureDef {
	return r.creatures
}

// Count returns the number of creature types in the registry.
func (r *CreatureRegistry) Count() int {
	return len(r.creatures)
}

// =============================================================================
// Index
// =============================================================================

// Index is a by-ID lookup over a slice of definitions.
type Index[T any] struct {
	byID map[string]*T
	all  []T
}

// NewIndex builds an index using id to extract each definition's key.
func NewIndex[T any](defs []T, id func(*T) string) *Index[T] {
	idx := &Index[T]{byID: make(map[string]*T, len(defs)), all: defs}
	for i := range defs {
		idx.byID[id(&defs[i])] = &defs[i]
	}
	return idx
}

// GetByID returns the definition with the given ID, or nil if not found.
func (x *Index[T]) GetByID(id string) *T {
	return x.byID[id]
}

// All returns all definitions.
func (x *Index[T]) All() []T {
	return x.all
}

// Count returns the number of definitions.
func (x *Index[T]) Count() int {
	return len(x.all)
}

// Catalog bundles every definition the game loads at startup.
type Catalog struct {
	Player    PlayerDef
	Creatures *CreatureRegistry
	Attacks   *Index[AttackDef]
	Cues      *Index[CueDef]
}

// LoadCatalog loads all embedded definitions and checks cross references.
func LoadCatalog() (*Catalog, error) {
	player, err := LoadPlayer()
	if err != nil {
		return nil, err
	}
	creatures, err := LoadCreatureRegistry()
	if err != nil {
		return nil, err
	}
	attacks, err := LoadAttacks()
	if err != nil {
		return nil, err
	}
	cues, err := LoadCues()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Player:    player,
		Creatures: creatures,
		Attacks:   NewIndex(attacks, func(a *AttackDef) string { return a.ID }),
		Cues:      NewIndex(cues, func(c *CueDef) string { return c.ID }),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoadCatalog loads the catalog, panicking on error.
func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ErrUnknownRef is matched by every RefError.
var ErrUnknownRef = errors.New("unknown reference")

func (c *Catalog) validate() error {
	var errs []error
	if c.Attacks.GetByID(c.Player.Attack) == nil {
		errs = append(errs, refError("player", "attack", c.Player.Attack))
	}
	for _, def := range c.Creatures.All() {
		if c.Attacks.GetByID(def.Attack) == nil {
			errs = append(errs, refError("creature "+def.ID, "attack", def.Attack))
		}
	}
	for _, a := range c.Attacks.All() {
		if a.Cue != "" && c.Cues.GetByID(a.Cue) == nil {
			errs = append(errs, refError("attack "+a.ID, "cue", a.Cue))
		}
	}
	return errors.Join(errs...)
}

func refError(owner, field, id string) error {
	return &RefError{Owner: owner, Field: field, ID: id}
}

// RefError reports a definition that names a missing ID.
type RefError struct {
	Owner string
	Field string
	ID    string
}

func (e *RefError) Error() string {
	return e.Owner + ": " + e.Field + " " + e.ID + " not found"
}

// Unwrap returns ErrUnknownRef.
func (e *RefError) Unwrap() error { return ErrUnknownRef }
