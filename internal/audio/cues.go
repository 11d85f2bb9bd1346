// Package audio plays short synthesized cues for battle events.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue is one synthesized sound.
type Cue int

const (
	CueCannon Cue = iota
	CueSplash
	CueSink
	CueCapture
	CueThunder
	CueWhirl
	CueGhost
)

type cueSpec struct {
	length time.Duration
	gap    int // minimum ticks between two plays
	gen    func(sr beep.SampleRate) beep.Streamer
}

var cueTable = map[Cue]cueSpec{
	CueCannon:  {length: 350 * time.Millisecond, gap: 6, gen: func(sr beep.SampleRate) beep.Streamer { return NewBoomGenerator(sr, 55, 9, 1) }},
	CueSplash:  {length: 250 * time.Millisecond, gap: 6, gen: func(sr beep.SampleRate) beep.Streamer { return NewNoiseGenerator(sr, 14, 0.2, 2) }},
	CueSink:    {length: 900 * time.Millisecond, gap: 30, gen: func(sr beep.SampleRate) beep.Streamer { return NewBoomGenerator(sr, 40, 3, 3) }},
	CueCapture: {length: 700 * time.Millisecond, gap: 30, gen: func(sr beep.SampleRate) beep.Streamer { return NewBellGenerator(sr, 880) }},
	CueThunder: {length: 1200 * time.Millisecond, gap: 60, gen: func(sr beep.SampleRate) beep.Streamer { return NewNoiseGenerator(sr, 2.5, 0.35, 4) }},
	CueWhirl:   {length: 600 * time.Millisecond, gap: 60, gen: func(sr beep.SampleRate) beep.Streamer { return NewSweepGenerator(sr, 600, 120) }},
	CueGhost:   {length: 2 * time.Second, gap: 600, gen: func(sr beep.SampleRate) beep.Streamer { return NewSweepGenerator(sr, 90, 60) }},
}

// CueFor maps an event to its cue.
func CueFor(k game.EventKind) (Cue, bool) {
	switch k {
	case game.EventShot:
		return CueCannon, true
	case game.EventSplash:
		return CueSplash, true
	case game.EventSunk, game.EventDragged:
		return CueSink, true
	case game.EventCaptured:
		return CueCapture, true
	case game.EventLightning:
		return CueThunder, true
	case game.EventTeleport:
		return CueWhirl, true
	case game.EventGhost:
		return CueGhost, true
	}
	return 0, false
}

// Cues is an EventSink that mixes a cue for every audible event. Before
// Initialize, or when it failed, every call is a no-op.
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      *beep.Ctrl
	initialized bool
	muted       bool
	last        map[Cue]int
}

// NewCues creates an idle cue player.
func NewCues() *Cues {
	return &Cues{
		mixer: &beep.Mixer{},
		last:  make(map[Cue]int),
	}
}

// Initialize opens the speaker. Machines without an audio device return
// an error and the game runs silent.
func (c *Cues) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	c.volume = &beep.Ctrl{Streamer: c.mixer}
	speaker.Play(c.volume)
	c.initialized = true
	return nil
}

// ToggleMute pauses or resumes every cue.
func (c *Cues) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	if c.volume != nil {
		speaker.Lock()
		c.volume.Paused = c.muted
		speaker.Unlock()
	}
	return c.muted
}

// Cleanup silences everything.
func (c *Cues) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// OnEvent plays the cue for e unless the same cue played too recently.
func (c *Cues) OnEvent(e game.Event) {
	cue, ok := CueFor(e.Kind)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admit(cue, e.Tick) || !c.initialized || c.muted {
		return
	}
	speaker.Lock()
	c.mixer.Add(Stream(cue))
	speaker.Unlock()
}

// admit records a play of cue at tick and reports whether the gap allows it.
func (c *Cues) admit(cue Cue, tick int) bool {
	if last, seen := c.last[cue]; seen && tick-last < cueTable[cue].gap {
		return false
	}
	c.last[cue] = tick
	return true
}

// Stream returns a finite streamer for cue.
func Stream(cue Cue) beep.Streamer {
	spec := cueTable[cue]
	return beep.Take(sampleRate.N(spec.length), spec.gen(sampleRate))
}

// BoomGenerator is a falling low tone with a burst of noise on top.
type BoomGenerator struct {
	sr    beep.SampleRate
	freq  float64
	decay float64
	pos   int
	seed  int64
}

// NewBoomGenerator creates a boom starting at freq Hz that fades at decay
// per second.
func NewBoomGenerator(sr beep.SampleRate, freq, decay float64, seed int64) *BoomGenerator {
	return &BoomGenerator{sr: sr, freq: freq, decay: decay, seed: seed}
}

func (g *BoomGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := math.Exp(-t * g.decay)
		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		f := g.freq * (1 + math.Exp(-t*20))
		sample := env * (0.45*math.Sin(2*math.Pi*f*t) + 0.2*noise*math.Exp(-t*30))
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BoomGenerator) Err() error { return nil }

// NoiseGenerator is decaying noise run through a one-pole low-pass.
type NoiseGenerator struct {
	sr     beep.SampleRate
	decay  float64
	smooth float64
	prev   float64
	pos    int
	seed   int64
}

// NewNoiseGenerator creates decaying noise. smooth in (0,1] sets the
// low-pass coefficient; smaller is darker.
func NewNoiseGenerator(sr beep.SampleRate, decay, smooth float64, seed int64) *NoiseGenerator {
	return &NoiseGenerator{sr: sr, decay: decay, smooth: smooth, seed: seed}
}

func (g *NoiseGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		g.prev += g.smooth * (noise - g.prev)
		sample := 0.5 * math.Exp(-t*g.decay) * g.prev
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *NoiseGenerator) Err() error { return nil }

// BellGenerator is a ship's bell: a fundamental and two inharmonic partials.
type BellGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBellGenerator creates a bell at freq Hz.
func NewBellGenerator(sr beep.SampleRate, freq float64) *BellGenerator {
	return &BellGenerator{sr: sr, freq: freq}
}

func (g *BellGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		sample := 0.25 * math.Exp(-t*4) * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.12 * math.Exp(-t*6) * math.Sin(2*math.Pi*g.freq*2.76*t)
		sample += 0.06 * math.Exp(-t*9) * math.Sin(2*math.Pi*g.freq*5.4*t)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BellGenerator) Err() error { return nil }

// SweepGenerator glides a sine from one frequency to another over a second.
type SweepGenerator struct {
	sr       beep.SampleRate
	from, to float64
	phase    float64
	pos      int
}

// NewSweepGenerator creates a glide from `from` to `to` Hz.
func NewSweepGenerator(sr beep.SampleRate, from, to float64) *SweepGenerator {
	return &SweepGenerator{sr: sr, from: from, to: to}
}

func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		k := math.Min(t, 1)
		f := g.from + (g.to-g.from)*k
		g.phase += 2 * math.Pi * f / float64(g.sr)
		sample := 0.2 * math.Sin(g.phase) * math.Min(t/0.05, 1) * math.Exp(-t*1.5)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *SweepGenerator) Err() error { return nil }
