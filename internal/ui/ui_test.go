package ui

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/corun/internal/entity"
	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/world"
)

func row(s *Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _ := s.Content(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func newScene(t *testing.T) (*Screen, *world.Arena, *entity.Roster, *entity.Player, *entity.Creature) {
	t.Helper()
	screen, _, err := NewSimulation(40, 20)
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	t.Cleanup(screen.Close)

	cat := gamedata.MustLoadCatalog()
	arena := world.NewArena(20, 8, rand.New(rand.NewSource(1)))
	env := &entity.Env{Arena: arena, Roster: &entity.Roster{}}
	p := entity.NewPlayer(env, &cat.Player, world.V(5.5, 3.5))
	c := entity.NewCreature(env, cat.Creatures.GetByID("husk"), world.V(12.5, 4.5))
	return screen, arena, env.Roster, p, c
}

func TestRenderDrawsArenaAndEntities(t *testing.T) {
	screen, arena, roster, _, _ := newScene(t)
	r := NewRenderer(screen)
	r.Render(arena, roster, HUD{Frame: 42, Tasks: 7})

	if got := row(screen, 0); got != strings.Repeat("#", 20) {
		t.Errorf("row 0 = %q, want a wall", got)
	}
	if ch, _ := screen.Content(5, 3); ch != '@' {
		t.Errorf("player cell = %q, want @", ch)
	}
	if ch, _ := screen.Content(12, 4); ch != 'h' {
		t.Errorf("creature cell = %q, want h", ch)
	}
	hud := row(screen, arena.Height)
	for _, want := range []string{"HP 10/10", "Wanderer", "tasks 7", "frame 42"} {
		if !strings.Contains(hud, want) {
			t.Errorf("HUD %q does not contain %q", hud, want)
		}
	}
	if got := row(screen, arena.Height+1); !strings.HasPrefix(got, "husk-1") {
		t.Errorf("creature row = %q, want husk-1 first", got)
	}
}

func TestRenderShowsCorpsesAndPause(t *testing.T) {
	screen, arena, roster, _, c := newScene(t)
	c.TakeDamage(100)
	r := NewRenderer(screen)
	r.Render(arena, roster, HUD{Paused: "[menu]", Messages: []string{"one", "two", "three", "four"}})

	ch, style := screen.Content(12, 4)
	if ch != corpseGlyph || style != corpseStyle {
		t.Errorf("corpse cell = %q, want %q in the corpse style", ch, corpseGlyph)
	}
	if got := row(screen, 0); !strings.Contains(got, "PAUSED [menu]") {
		t.Errorf("row 0 = %q, want the pause banner", got)
	}
	// Only the newest messages fit.
	top := arena.Height + hudRows
	if got := row(screen, top); got != "two" {
		t.Errorf("first message row = %q, want two", got)
	}
	if got := row(screen, top+2); got != "four" {
		t.Errorf("last message row = %q, want four", got)
	}
}

func TestTileStyles(t *testing.T) {
	r := &Renderer{}
	if r.getTileStyle(world.TileWall) == r.getTileStyle(world.TileFloor) {
		t.Error("walls and floor share a style")
	}
	if r.getTileStyle(world.Tile(0)) != tcell.StyleDefault {
		t.Error("unknown tile should use the default style")
	}
}

func TestMessageLog(t *testing.T) {
	l := NewMessageLog(2)
	l.Post("a")
	l.Post("a")
	l.Post("")
	l.Post("b")
	l.Post("c")
	if got, want := l.Lines(), []string{"b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
	l.Clear()
	if len(l.Lines()) != 0 {
		t.Errorf("Lines() after Clear = %v, want none", l.Lines())
	}
}

func TestScreenText(t *testing.T) {
	screen, _, err := NewSimulation(10, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer screen.Close()
	if next := screen.Text(2, 1, "abc", hudStyle); next != 5 {
		t.Errorf("Text() = %d, want 5", next)
	}
	if got := row(screen, 1); got != "  abc" {
		t.Errorf("row = %q, want %q", got, "  abc")
	}
}
