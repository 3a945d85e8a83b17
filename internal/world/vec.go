package world

import "math"

// Vec is a position or direction in cell units. Cell (x, y) covers
// [x, x+1) by [y, y+1).
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v*s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// IsZero reports whether v is the zero vector.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Norm returns v scaled to length 1, or the zero vector.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Cell returns the cell containing v.
func (v Vec) Cell() (int, int) {
	return int(math.Floor(v.X)), int(math.Floor(v.Y))
}

// CellCenter returns the center of cell (x, y).
func CellCenter(x, y int) Vec {
	return Vec{float64(x) + 0.5, float64(y) + 0.5}
}
