// Package world provides the arena the actors move around in.
package world

// Tile represents a single arena cell.
type Tile rune

const (
	// TileWall is the impassable border.
	TileWall Tile = '#'
	// TilePillar is an impassable obstacle inside the arena.
	TilePillar Tile = 'O'
	// TileFloor represents a passable floor tile.
	TileFloor Tile = '.'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileFloor
}

// BlocksSight returns true if creatures cannot see through the tile.
func (t Tile) BlocksSight() bool {
	return t != TileFloor
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
