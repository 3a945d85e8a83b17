package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/corun/data"
	"github.com/samdwyer/corun/internal/actor"
	"github.com/samdwyer/corun/internal/audio"
	"github.com/samdwyer/corun/internal/combat"
	"github.com/samdwyer/corun/internal/config"
	"github.com/samdwyer/corun/internal/entity"
	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/gametime"
	"github.com/samdwyer/corun/internal/input"
	"github.com/samdwyer/corun/internal/logging"
	"github.com/samdwyer/corun/internal/script"
	"github.com/samdwyer/corun/internal/telemetry"
	"github.com/samdwyer/corun/internal/token"
	"github.com/samdwyer/corun/internal/ui"
	"github.com/samdwyer/corun/internal/world"
)

const (
	arenaPillars = 8
	// spawnDistance keeps creatures away from the player's start.
	spawnDistance = 8
	messageLines  = 8
)

// Game holds the entire game state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger
	level  *slog.LevelVar

	screen   *ui.Screen
	renderer *ui.Renderer
	events   <-chan tcell.Event
	pending  []tcell.Event
	reload   <-chan *config.Config

	catalog  *gamedata.Catalog
	scripts  *script.Engine
	rng      *rand.Rand
	clock    *gametime.Clock
	input    *input.Input
	scene    *actor.Scene
	arena    *world.Arena
	roster   *entity.Roster
	audio    *audio.Player
	messages *ui.MessageLog
	sampler  *telemetry.FrameSampler

	pause   *token.Token[struct{}]
	phase   Phase
	ready   bool
	running bool
}

// Option configures a Game.
type Option func(*Game)

// WithScreen draws to screen instead of opening the terminal.
func WithScreen(s *ui.Screen) Option {
	return func(g *Game) { g.screen = s }
}

// WithLogger sets the logger. level, if non-nil, follows log.level on
// config reloads.
func WithLogger(l *slog.Logger, level *slog.LevelVar) Option {
	return func(g *Game) {
		g.logger = l
		g.level = level
	}
}

// WithConfigUpdates applies every config received on ch between frames.
func WithConfigUpdates(ch <-chan *config.Config) Option {
	return func(g *Game) { g.reload = ch }
}

// New creates a new game instance. The terminal is opened unless the
// config is headless or a screen was supplied.
func New(cfg *config.Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		logger:   logging.Discard(),
		clock:    gametime.NewClock(),
		input:    input.New(),
		messages: ui.NewMessageLog(messageLines),
		running:  true,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.clock.SetDilation(cfg.Loop.TimeDilation)

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))
	g.logger.Info("game created", "seed", seed, "headless", cfg.Game.Headless)

	catalog, err := gamedata.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}
	g.catalog = catalog

	g.scripts = script.NewEngine(script.WithLogger(g.logger))
	if err := g.scripts.LoadFS(data.Scripts(), data.ScriptPattern); err != nil {
		return nil, fmt.Errorf("failed to load embedded scripts: %w", err)
	}
	if dir := cfg.Game.ScriptDir; dir != "" {
		if err := g.scripts.LoadFS(os.DirFS(dir), "*.lua"); err != nil {
			return nil, fmt.Errorf("failed to load scripts from %s: %w", dir, err)
		}
	}
	if name := cfg.Game.Script; name != "" && !g.scripts.Has(name) {
		return nil, fmt.Errorf("%w: %s", script.ErrUnknownScript, name)
	}

	if cfg.Audio.Enabled {
		g.audio = audio.NewPlayer(catalog.Cues, cfg.Audio.SampleRate, audio.WithLogger(g.logger))
	}

	if g.screen == nil && !cfg.Game.Headless {
		screen, err := ui.NewScreen()
		if err != nil {
			return nil, err
		}
		g.screen = screen
	}
	if g.screen != nil {
		g.renderer = ui.NewRenderer(g.screen)
	}
	return g, nil
}

// Setup generates the arena and spawns the player and creatures. Run
// calls it when it has not been called yet.
func (g *Game) Setup(ctx context.Context) {
	if g.ready {
		return
	}
	g.ready = true

	tracer := telemetry.Tracer("game")
	ctx, initSpan := tracer.Start(ctx, "game.init")
	defer initSpan.End()

	g.sampler = telemetry.NewFrameSampler(tracer, g.cfg.Telemetry.SampleFrames)
	transitions := telemetry.NewTransitionRecorder(tracer, g.sampler)

	g.arena = world.NewArena(world.DefaultWidth, world.DefaultHeight, g.rng)
	g.arena.Generate(ctx, arenaPillars)
	g.scene = actor.NewScene(actor.WithLogger(g.logger))
	g.roster = &entity.Roster{}

	env := &entity.Env{
		Arena:         g.arena,
		Clock:         g.clock,
		Controls:      g.input,
		Resolver:      combat.NewResolver(g.catalog.Attacks),
		Roster:        g.roster,
		Feed:          g.messages,
		Scripts:       g.scripts,
		DefaultScript: g.cfg.Game.Script,
		Logger:        g.logger,
		Transitions:   transitions.Hook,
	}
	if g.audio != nil {
		env.Sounds = g.audio
	}

	start := g.arena.Center()
	player := entity.NewPlayer(env, &g.catalog.Player, start)
	player.Spawn(g.scene)

	for i := 0; i < g.cfg.Game.CreatureCount; i++ {
		def := g.catalog.Creatures.SpawnRandom(g.rng)
		if def == nil {
			break
		}
		c := entity.NewCreature(env, def, g.arena.RandomFloor(start, spawnDistance))
		c.Spawn(g.scene)
	}

	initSpan.SetAttributes(
		attribute.Int("arena.pillars", len(g.arena.Pillars)),
		attribute.Int("creatures", g.cfg.Game.CreatureCount),
		attribute.Int("actors", g.scene.Len()),
	)
	g.messages.Post(fmt.Sprintf("%d creatures stir in the arena.", g.roster.Living()))
}

// Run executes the main game loop until the player quits, ctx is done or
// max_frames is reached. Headless games also stop once the run is decided.
func (g *Game) Run(ctx context.Context) error {
	g.Setup(ctx)
	defer g.Close()

	if g.cfg.Game.Headless {
		for g.running && ctx.Err() == nil {
			g.Step(ctx)
		}
		return nil
	}

	if g.screen != nil {
		g.events = g.screen.Events()
	}
	dt := g.cfg.FrameDT()
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	last := time.Now()
	var acc float64
	for g.running {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			acc += now.Sub(last).Seconds()
			last = now
			steps := 0
			for acc >= dt && g.running {
				g.Step(ctx)
				acc -= dt
				if steps++; steps == g.cfg.Loop.MaxCatchupFrames {
					// Drop the backlog after a stall.
					acc = 0
				}
			}
		}
	}
	return nil
}

// Step runs one fixed-size frame.
func (g *Game) Step(ctx context.Context) {
	g.Setup(ctx)
	g.applyReloads()

	g.input.BeginFrame(g.clock.Time(gametime.Real))
	g.drainEvents()
	g.handleButtons()

	g.clock.Advance(g.cfg.FrameDT())
	g.sampler.Begin(ctx, g.clock.Frame())

	g.scene.Update(g.clock.IsPaused())
	if g.audio != nil {
		g.audio.Pump(g.clock.DT(gametime.Audio))
	}
	g.checkOutcome()
	g.render()

	g.sampler.End(g.scene.TaskCount())

	if limit := g.cfg.Game.MaxFrames; limit > 0 && g.clock.Frame() >= uint64(limit) {
		g.running = false
	}
}

// HandleEvent queues a terminal event for the next frame.
func (g *Game) HandleEvent(ev tcell.Event) {
	g.pending = append(g.pending, ev)
}

func (g *Game) applyEvent(ev tcell.Event) {
	switch ev.(type) {
	case *tcell.EventResize:
		if g.screen != nil {
			g.screen.Sync()
		}
	default:
		g.input.HandleEvent(ev)
	}
}

func (g *Game) drainEvents() {
	for _, ev := range g.pending {
		g.applyEvent(ev)
	}
	g.pending = g.pending[:0]
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				g.events = nil
				return
			}
			g.applyEvent(ev)
		default:
			return
		}
	}
}

// handleButtons applies the buttons the game itself owns.
func (g *Game) handleButtons() {
	if g.input.Pressed(input.Quit) {
		g.running = false
	}
	if g.input.Pressed(input.Pause) {
		g.TogglePause()
	}
}

// TogglePause pauses or resumes game time.
func (g *Game) TogglePause() {
	if g.pause != nil {
		g.pause.Release()
		g.pause = nil
		g.input.Release()
		return
	}
	g.pause = g.clock.Pause("menu")
}

func (g *Game) applyReloads() {
	for {
		select {
		case cfg, ok := <-g.reload:
			if !ok {
				g.reload = nil
				return
			}
			g.applyConfig(cfg)
		default:
			return
		}
	}
}

// applyConfig takes the settings that can change while running.
func (g *Game) applyConfig(cfg *config.Config) {
	g.clock.SetDilation(cfg.Loop.TimeDilation)
	if g.level != nil {
		if err := logging.Apply(g.level, cfg.Log.Level); err != nil {
			g.logger.Warn("ignoring log level", "error", err)
		}
	}
	g.cfg.Loop.TimeDilation = cfg.Loop.TimeDilation
	g.cfg.Log.Level = cfg.Log.Level
	g.logger.Info("config applied", "time_dilation", cfg.Loop.TimeDilation, "log_level", cfg.Log.Level)
}

func (g *Game) checkOutcome() {
	if g.phase != PhasePlaying {
		return
	}
	switch {
	case g.roster.Player == nil || !g.roster.Player.IsAlive():
		g.phase = PhaseLost
		g.messages.Post("You have fallen. Press q to quit.")
	case g.roster.Living() == 0:
		g.phase = PhaseWon
		g.messages.Post("The arena is clear. Press q to quit.")
	default:
		return
	}
	g.logger.Info("run decided", "phase", g.phase.String(), "frame", g.clock.Frame())
	if g.cfg.Game.Headless {
		g.running = false
	}
}

func (g *Game) render() {
	if g.renderer == nil {
		return
	}
	hud := ui.HUD{
		Frame:    g.clock.Frame(),
		Tasks:    g.scene.TaskCount(),
		Messages: g.messages.Lines(),
	}
	if g.clock.IsPaused() {
		hud.Paused = g.clock.PauseReasons()
	}
	g.renderer.Render(g.arena, g.roster, hud)
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.scene != nil {
		g.scene.Clear()
	}
	if g.audio != nil {
		g.audio.Stop()
	}
	if g.pause != nil {
		g.pause.Release()
		g.pause = nil
	}
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
		g.renderer = nil
	}
}

// Running reports whether the loop should keep going.
func (g *Game) Running() bool { return g.running }

// Phase returns how the run stands.
func (g *Game) Phase() Phase { return g.phase }

// Frame returns the number of frames stepped.
func (g *Game) Frame() uint64 { return g.clock.Frame() }

// Clock returns the game clock.
func (g *Game) Clock() *gametime.Clock { return g.clock }

// Roster returns the live entities. It is nil before Setup.
func (g *Game) Roster() *entity.Roster { return g.roster }

// Scene returns the actor scene. It is nil before Setup.
func (g *Game) Scene() *actor.Scene { return g.scene }

// Messages returns the combat message log.
func (g *Game) Messages() []string { return g.messages.Lines() }
