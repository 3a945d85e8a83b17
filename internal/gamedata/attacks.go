package gamedata

// DamageType represents how damage is calculated.
type DamageType string

const (
	// DamagePhysical is reduced by the target's defense.
	DamagePhysical DamageType = "physical"
	// DamageTrue cannot be reduced.
	DamageTrue DamageType = "true"
)

// StatusEffectType represents status effects an attack can apply.
type StatusEffectType string

const (
	StatusNone StatusEffectType = ""
	// StatusBurn deals StatusPower damage every StatusInterval seconds.
	StatusBurn StatusEffectType = "burn"
)

// AttackDef defines an attack loaded from JSON.
type AttackDef struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	DamageType DamageType `json:"damageType"`
	BasePower  int        `json:"basePower"`
	// Cue is the audio cue played when the attack lands.
	Cue            string           `json:"cue,omitempty"`
	StatusEffect   StatusEffectType `json:"statusEffect,omitempty"`
	StatusDuration float64          `json:"statusDuration,omitempty"` // Seconds
	StatusInterval float64          `json:"statusInterval,omitempty"` // Seconds between ticks
	StatusPower    int              `json:"statusPower,omitempty"`
}

// HasStatus reports whether the attack applies a status effect.
func (a *AttackDef) HasStatus() bool {
	return a.StatusEffect != StatusNone && a.StatusDuration > 0
}

// AttacksFile represents the structure of attacks.json.
type AttacksFile struct {
	Attacks []AttackDef `json:"attacks"`
}

// LoadAttacks loads attack definitions from the embedded attacks.json file.
func LoadAttacks() ([]AttackDef, error) {
	file, err := Load[AttacksFile]("attacks.json")
	if err != nil {
		return nil, err
	}
	return file.Attacks, nil
}

// NoteDef is one tone of an audio cue.
type NoteDef struct {
	Freq     float64 `json:"freq"`     // Hz; 0 is a rest
	Duration float64 `json:"duration"` // Seconds
}

// CueDef is a short sequence of tones.
type CueDef struct {
	ID     string    `json:"id"`
	Volume float64   `json:"volume"` // 0..1
	Notes  []NoteDef `json:"notes"`
}

// Length returns the total cue duration in seconds.
func (c *CueDef) Length() float64 {
	total := 0.0
	for _, n := range c.Notes {
		total += n.Duration
	}
	return total
}

// CuesFile represents the structure of cues.json.
type CuesFile struct {
	Cues []CueDef `json:"cues"`
}

// LoadCues loads audio cue definitions from the embedded cues.json file.
func LoadCues() ([]CueDef, error) {
	file, err := Load[CuesFile]("cues.json")
	if err != nil {
		return nil, err
	}
	return file.Cues, nil
}
