package world

import (
	"context"
	"math/rand"
	"testing"
)

func generated(seed int64) *Arena {
	a := NewArena(DefaultWidth, DefaultHeight, rand.New(rand.NewSource(seed)))
	a.Generate(context.Background(), 6)
	return a
}

func TestArenaReproducibility(t *testing.T) {
	a1, a2 := generated(12345), generated(12345)

	if len(a1.Pillars) != len(a2.Pillars) {
		t.Fatalf("Pillar count mismatch: %d != %d", len(a1.Pillars), len(a2.Pillars))
	}
	for y := 0; y < a1.Height; y++ {
		for x := 0; x < a1.Width; x++ {
			if a1.Tiles[y][x] != a2.Tiles[y][x] {
				t.Errorf("Tile mismatch at (%d,%d): %v != %v", x, y, a1.Tiles[y][x], a2.Tiles[y][x])
			}
		}
	}
}

func TestArenaLayout(t *testing.T) {
	a := generated(7)

	if len(a.Pillars) == 0 {
		t.Fatal("Generate() placed no pillars")
	}
	for x := 0; x < a.Width; x++ {
		if a.IsPassable(x, 0) || a.IsPassable(x, a.Height-1) {
			t.Errorf("border at column %d is passable", x)
		}
	}
	if a.IsPassable(-1, 5) || a.TileAt(a.Width, 0) != TileWall {
		t.Error("cells outside the arena should be walls")
	}
	cx, cy := a.Center().Cell()
	for y := cy - safeRadius; y <= cy+safeRadius; y++ {
		for x := cx - safeRadius; x <= cx+safeRadius; x++ {
			if !a.IsPassable(x, y) {
				t.Errorf("cell (%d,%d) near the center is blocked", x, y)
			}
		}
	}
}

func TestArenaMoveSlidesAlongWalls(t *testing.T) {
	a := NewArena(10, 10, rand.New(rand.NewSource(1)))

	tests := []struct {
		name      string
		pos, move Vec
		want      Vec
	}{
		{"free", V(5.5, 5.5), V(1, 0), V(6.5, 5.5)},
		{"into wall", V(1.5, 5.5), V(-1, 0), V(1.5, 5.5)},
		{"slide", V(1.5, 5.5), V(-1, 1), V(1.5, 6.5)},
		{"corner", V(1.5, 1.5), V(-1, -1), V(1.5, 1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Move(tt.pos, tt.move); got != tt.want {
				t.Errorf("Move(%v, %v) = %v, want %v", tt.pos, tt.move, got, tt.want)
			}
		})
	}
}

func TestArenaLineOfSight(t *testing.T) {
	a := NewArena(12, 7, rand.New(rand.NewSource(1)))
	a.fill(Rect{X: 5, Y: 1, Width: 2, Height: 3}, TilePillar)

	if !a.LineOfSight(V(2.5, 5.5), V(9.5, 5.5)) {
		t.Error("LineOfSight() below the pillar = false, want true")
	}
	if a.LineOfSight(V(2.5, 2.5), V(9.5, 2.5)) {
		t.Error("LineOfSight() through the pillar = true, want false")
	}
	if !a.LineOfSight(V(2.5, 2.5), V(2.5, 2.5)) {
		t.Error("LineOfSight() to self = false, want true")
	}
}

func TestRandomFloor(t *testing.T) {
	a := generated(3)
	center := a.Center()
	for i := 0; i < 20; i++ {
		p := a.RandomFloor(center, 5)
		x, y := p.Cell()
		if !a.IsPassable(x, y) {
			t.Errorf("RandomFloor() = %v is not floor", p)
		}
		if p.Dist(center) < 5 {
			t.Errorf("RandomFloor() = %v is closer than 5 to the center", p)
		}
	}
}

func TestVec(t *testing.T) {
	v := V(3, 4)
	if v.Len() != 5 {
		t.Errorf("Len() = %v, want 5", v.Len())
	}
	if n := v.Norm(); n != V(0.6, 0.8) {
		t.Errorf("Norm() = %v, want {0.6 0.8}", n)
	}
	if !(Vec{}).Norm().IsZero() {
		t.Error("zero Norm() should be zero")
	}
	if x, y := V(-0.5, 2.9).Cell(); x != -1 || y != 2 {
		t.Errorf("Cell() = (%d,%d), want (-1,2)", x, y)
	}
}
