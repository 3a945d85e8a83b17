// Package audio plays short tone cues as tasks.
//
// The mixer is headless: the game pumps it once per frame with the audio
// time stream's delta, so cues pause with the game and finish in step with
// the frames that started them. Callers that want sound out of a device can
// read the mixed frame with Samples.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/samdwyer/corun/internal/gamedata"
	"github.com/samdwyer/corun/internal/task"
)

// Player mixes cue streamers and runs the tasks that track them.
type Player struct {
	rate   beep.SampleRate
	cues   *gamedata.Index[gamedata.CueDef]
	mixer  *beep.Mixer
	tasks  *task.Manager
	buf    [][2]float64
	peak   float64
	logger *slog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger for unknown cues and the cue task manager.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// NewPlayer creates a player for cues at sampleRate samples per second.
func NewPlayer(cues *gamedata.Index[gamedata.CueDef], sampleRate int, opts ...Option) *Player {
	p := &Player{
		rate:   beep.SampleRate(sampleRate),
		cues:   cues,
		mixer:  &beep.Mixer{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = task.NewManager(task.WithName("audio"), task.WithLogger(p.logger))
	return p
}

// SampleRate returns the mixer sample rate.
func (p *Player) SampleRate() beep.SampleRate { return p.rate }

// Streamer builds the streamer for cue id.
func (p *Player) Streamer(id string) (beep.Streamer, error) {
	def := p.cues.GetByID(id)
	if def == nil {
		return nil, fmt.Errorf("unknown cue %q", id)
	}
	parts := make([]beep.Streamer, 0, len(def.Notes))
	for _, n := range def.Notes {
		samples := p.rate.N(time.Duration(n.Duration * float64(time.Second)))
		if n.Freq <= 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(p.rate, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", id, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return volume(beep.Seq(parts...), def.Volume), nil
}

// volume scales s linearly; 0 is silent.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// Play returns a task that starts cue id on its first resume and completes
// once the cue has been fully mixed. Killing the task cuts the cue off.
// An unknown cue finishes immediately.
func (p *Player) Play(id string) *task.Task[task.Void] {
	return task.New("Cue "+id, func(co *task.Co) task.Void {
		s, err := p.Streamer(id)
		if err != nil {
			p.logger.Warn("audio: cue not played", "cue", id, "error", err)
			return task.Void{}
		}
		finished := false
		ctrl := &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() { finished = true }))}
		p.mixer.Add(ctrl)
		defer func() { ctrl.Streamer = nil }()

		co.WaitUntil(func() bool { return finished })
		return task.Void{}
	})
}

// Cue plays id without tracking it.
func (p *Player) Cue(id string) {
	task.RunManaged(p.tasks, p.Play(id))
}

// Pump mixes dt seconds of audio and then updates the cue tasks. A zero
// dt, as while paused, mixes nothing.
func (p *Player) Pump(dt float64) {
	n := p.rate.N(time.Duration(dt * float64(time.Second)))
	if cap(p.buf) < n {
		p.buf = make([][2]float64, n)
	}
	p.buf = p.buf[:n]
	p.peak = 0
	if n > 0 {
		p.mixer.Stream(p.buf)
		for _, s := range p.buf {
			p.peak = max(p.peak, math.Abs(s[0]), math.Abs(s[1]))
		}
	}
	p.tasks.Update()
}

// Samples returns the frames mixed by the last Pump. The slice is reused.
func (p *Player) Samples() [][2]float64 { return p.buf }

// Peak returns the loudest sample of the last Pump.
func (p *Player) Peak() float64 { return p.peak }

// Playing returns the number of cues still sounding.
func (p *Player) Playing() int { return p.tasks.Len() }

// Stop cuts off every cue.
func (p *Player) Stop() {
	p.tasks.KillAllTasks()
	p.mixer.Clear()
}
