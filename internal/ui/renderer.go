package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/corun/internal/entity"
	"github.com/samdwyer/corun/internal/world"
)

// HUD holds the status shown under the arena.
type HUD struct {
	Frame uint64
	// Paused lists the pause reasons, empty while running.
	Paused   string
	Tasks    int
	Messages []string
}

const (
	// hudRows is the number of rows drawn under the arena before messages.
	hudRows      = 2
	messageLimit = 3
	corpseGlyph  = '%'
)

var (
	hudStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dimStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	alertStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	corpseStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	pausedStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the arena, the entities in roster and the HUD.
func (r *Renderer) Render(arena *world.Arena, roster *entity.Roster, hud HUD) {
	r.screen.Clear()

	// Draw arena tiles
	for y := 0; y < arena.Height; y++ {
		for x := 0; x < arena.Width; x++ {
			tile := arena.TileAt(x, y)
			r.screen.SetContent(x, y, tile.Rune(), r.getTileStyle(tile))
		}
	}

	// Corpses first so living creatures and the player draw over them.
	creatures := roster.Creatures()
	for _, c := range creatures {
		if !c.IsAlive() {
			x, y := c.Position().Cell()
			r.screen.SetContent(x, y, corpseGlyph, corpseStyle)
		}
	}
	for _, c := range creatures {
		if c.IsAlive() {
			x, y := c.Position().Cell()
			r.screen.SetContent(x, y, c.Def().GlyphRune(), creatureStyle(c))
		}
	}
	if p := roster.Player; p != nil {
		x, y := p.Position().Cell()
		r.screen.SetContent(x, y, p.Def().GlyphRune(), playerStyle(p))
	}

	r.renderHUD(arena.Height, roster, creatures, hud)
	if hud.Paused != "" {
		label := " PAUSED " + hud.Paused + " "
		r.screen.Text(max(0, (arena.Width-len(label))/2), 0, label, pausedStyle)
	}

	r.screen.Show()
}

func (r *Renderer) renderHUD(top int, roster *entity.Roster, creatures []*entity.Creature, hud HUD) {
	width, _ := r.screen.Size()

	x := 0
	if p := roster.Player; p != nil {
		style := hudStyle
		if p.HP()*4 <= p.MaxHP() {
			style = alertStyle
		}
		x = r.screen.Text(x, top, fmt.Sprintf("HP %d/%d", p.HP(), p.MaxHP()), style)
		x = r.screen.Text(x, top, "  "+p.Name()+": "+p.State(), hudStyle)
		if p.Invincible() {
			x = r.screen.Text(x, top, " "+p.InvincibleReasons(), dimStyle)
		}
	}
	r.screen.Text(x, top, fmt.Sprintf("  tasks %d  frame %d", hud.Tasks, hud.Frame), dimStyle)

	x = 0
	for _, c := range creatures {
		label := fmt.Sprintf("%s %s  ", c.ID(), c.State())
		if x+len(label) > width {
			break
		}
		style := hudStyle
		switch {
		case !c.IsAlive():
			style = corpseStyle
		case c.IsWindingUp():
			style = alertStyle
		}
		x = r.screen.Text(x, top+1, label, style)
	}

	msgs := hud.Messages
	if len(msgs) > messageLimit {
		msgs = msgs[len(msgs)-messageLimit:]
	}
	for i, msg := range msgs {
		r.RenderMessage(msg, top+hudRows+i)
	}
}

// getTileStyle returns the appropriate style for a tile type.
func (r *Renderer) getTileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TilePillar:
		return tcell.StyleDefault.Foreground(tcell.ColorSilver)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return tcell.StyleDefault
	}
}

func playerStyle(p *entity.Player) tcell.Style {
	style := tcell.StyleDefault.Foreground(p.Def().TCellColor()).Bold(true)
	if p.Invincible() {
		style = style.Reverse(true)
	}
	return style
}

// creatureStyle highlights a creature telegraphing an attack.
func creatureStyle(c *entity.Creature) tcell.Style {
	style := tcell.StyleDefault.Foreground(c.Def().TCellColor())
	if c.IsWindingUp() {
		style = style.Background(tcell.ColorDarkRed).Bold(true)
	}
	return style
}

// RenderMessage displays a message on row y.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.screen.Text(0, y, msg, hudStyle)
}
