package world

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/corun/internal/telemetry"
)

const (
	// Default arena dimensions
	DefaultWidth  = 60
	DefaultHeight = 20

	pillarSize  = 2
	pillarGap   = 2 // Free cells kept around every pillar
	safeRadius  = 4 // Cells around the center kept clear for the player
	maxAttempts = 200
)

// Arena is a walled rectangle with scattered pillars.
type Arena struct {
	Width   int
	Height  int
	Tiles   [][]Tile
	Pillars []Rect
	rng     *rand.Rand
}

// NewArena creates an arena with walls on the border and floor inside.
func NewArena(width, height int, rng *rand.Rand) *Arena {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				tiles[y][x] = TileWall
			} else {
				tiles[y][x] = TileFloor
			}
		}
	}

	return &Arena{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		rng:    rng,
	}
}

// Generate scatters up to pillars obstacles, keeping the center clear.
func (a *Arena) Generate(ctx context.Context, pillars int) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "arena.generate")
	defer span.End()

	startTime := time.Now()
	cx, cy := a.Center().Cell()
	safe := Rect{X: cx - safeRadius, Y: cy - safeRadius, Width: 2*safeRadius + 1, Height: 2*safeRadius + 1}

	for attempt := 0; len(a.Pillars) < pillars && attempt < maxAttempts; attempt++ {
		if a.Width-pillarSize-2 <= 0 || a.Height-pillarSize-2 <= 0 {
			break
		}
		p := Rect{
			X:      1 + a.rng.Intn(a.Width-pillarSize-2),
			Y:      1 + a.rng.Intn(a.Height-pillarSize-2),
			Width:  pillarSize,
			Height: pillarSize,
		}
		if p.Intersects(safe) || a.crowded(p) {
			continue
		}
		a.Pillars = append(a.Pillars, p)
		a.fill(p, TilePillar)
	}

	span.SetAttributes(
		attribute.Int("arena.width", a.Width),
		attribute.Int("arena.height", a.Height),
		attribute.Int("arena.pillar_count", len(a.Pillars)),
		attribute.Int64("arena.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

func (a *Arena) crowded(p Rect) bool {
	grown := p.Grow(pillarGap)
	for _, other := range a.Pillars {
		if grown.Intersects(other) {
			return true
		}
	}
	return false
}

func (a *Arena) fill(r Rect, t Tile) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if x > 0 && x < a.Width-1 && y > 0 && y < a.Height-1 {
				a.Tiles[y][x] = t
			}
		}
	}
}

// IsPassable returns true if the given cell can be walked on.
func (a *Arena) IsPassable(x, y int) bool {
	return a.TileAt(x, y).IsPassable()
}

// TileAt returns the tile at the given cell. Cells outside are walls.
func (a *Arena) TileAt(x, y int) Tile {
	if x < 0 || x >= a.Width || y < 0 || y >= a.Height {
		return TileWall
	}
	return a.Tiles[y][x]
}

// Center returns the center of the middle cell.
func (a *Arena) Center() Vec {
	return CellCenter(a.Width/2, a.Height/2)
}

// Move returns pos moved by delta, sliding along walls one axis at a time.
func (a *Arena) Move(pos, delta Vec) Vec {
	next := pos
	if x, y := V(pos.X+delta.X, pos.Y).Cell(); a.IsPassable(x, y) {
		next.X += delta.X
	}
	if x, y := V(next.X, pos.Y+delta.Y).Cell(); a.IsPassable(x, y) {
		next.Y += delta.Y
	}
	return next
}

// LineOfSight reports whether the segment from a to b crosses no
// sight-blocking tile. It samples the segment every quarter cell.
func (a *Arena) LineOfSight(from, to Vec) bool {
	steps := int(math.Ceil(from.Dist(to) * 4))
	for i := 0; i <= steps; i++ {
		p := from
		if steps > 0 {
			p = from.Add(to.Sub(from).Scale(float64(i) / float64(steps)))
		}
		if x, y := p.Cell(); a.TileAt(x, y).BlocksSight() {
			return false
		}
	}
	return true
}

// RandomFloor returns the center of a random floor cell at least minDist
// from avoid. It falls back to the arena center.
func (a *Arena) RandomFloor(avoid Vec, minDist float64) Vec {
	for i := 0; i < maxAttempts; i++ {
		x := 1 + a.rng.Intn(max(a.Width-2, 1))
		y := 1 + a.rng.Intn(max(a.Height-2, 1))
		p := CellCenter(x, y)
		if a.IsPassable(x, y) && p.Dist(avoid) >= minDist {
			return p
		}
	}
	return a.Center()
}
