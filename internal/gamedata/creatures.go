package gamedata

import "github.com/gdamore/tcell/v2"

// CreatureDef defines a creature type loaded from JSON.
type CreatureDef struct {
	ID     string `json:"id"`     // Unique identifier (e.g., "emberling")
	Name   string `json:"name"`   // Display name
	Glyph  string `json:"glyph"`  // Single character for rendering
	Color  string `json:"color"`  // Hex color code
	HP     int    `json:"hp"`     // Base hit points
	Attack string `json:"attack"` // Attack ID from attacks.json
	// Speed is movement in tiles per second while chasing.
	Speed float64 `json:"speed"`
	// PatrolSpeed is movement in tiles per second while patrolling.
	PatrolSpeed float64 `json:"patrolSpeed"`
	// Sight is the distance in tiles at which the player is noticed.
	Sight float64 `json:"sight"`
	// Reach is the distance in tiles at which an attack starts.
	Reach       float64 `json:"reach"`
	Windup      float64 `json:"windup"`   // Seconds between telegraph and hit
	Cooldown    float64 `json:"cooldown"` // Seconds after a hit before patrolling again
	Script      string  `json:"script,omitempty"`
	SpawnWeight int     `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
}

// GlyphRune returns the glyph as a rune for rendering.
func (c *CreatureDef) GlyphRune() rune { return glyphRune(c.Glyph) }

// TCellColor returns the color as a tcell.Color.
func (c *CreatureDef) TCellColor() tcell.Color { return ColorOr(c.Color, tcell.ColorWhite) }

// CreaturesFile represents the structure of creatures.json.
type CreaturesFile struct {
	Creatures []CreatureDef `json:"creatures"`
}

// LoadCreatures loads creature definitions from the embedded creatures.json file.
func LoadCreatures() ([]CreatureDef, error) {
	file, err := Load[CreaturesFile]("creatures.json")
	if err != nil {
		return nil, err
	}
	return file.Creatures, nil
}

// PlayerDef holds the player's tuning values.
type PlayerDef struct {
	Name    string `json:"name"`
	Glyph   string `json:"glyph"`
	Color   string `json:"color"`
	HP      int    `json:"hp"`
	Attack  string `json:"attack"`
	Defense int    `json:"defense"`
	// Speed is movement in tiles per second.
	Speed        float64 `json:"speed"`
	DashSpeed    float64 `json:"dashSpeed"`
	DashDuration float64 `json:"dashDuration"`
	DashCooldown float64 `json:"dashCooldown"`
	HurtDuration float64 `json:"hurtDuration"`
	// Grace is how long the player stays invincible after being hurt.
	Grace float64 `json:"grace"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (p *PlayerDef) GlyphRune() rune { return glyphRune(p.Glyph) }

// TCellColor returns the color as a tcell.Color.
func (p *PlayerDef) TCellColor() tcell.Color { return ColorOr(p.Color, tcell.ColorYellow) }

// LoadPlayer loads the player definition from the embedded player.json file.
func LoadPlayer() (PlayerDef, error) {
	return Load[PlayerDef]("player.json")
}
