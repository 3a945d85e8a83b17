// Package game provides the main game loop and state management.
package game

// Phase represents how the current run stands.
type Phase int

const (
	// PhasePlaying is the default while the player and creatures are alive.
	PhasePlaying Phase = iota
	// PhaseWon means every creature has been destroyed.
	PhaseWon
	// PhaseLost means the player has died.
	PhaseLost
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	case PhaseLost:
		return "lost"
	default:
		return "unknown"
	}
}
