package notify

import (
	"encoding/binary"
	"fmt"
	"math"
	gosync "sync"
	"sync/atomic"
	"time"
)

// AudioContext is a reusable audio output. The platform may suspend it;
// it must be resumed before it can play.
type AudioContext interface {
	Suspended() bool
	Suspend() error
	Resume() error
	Play(pcm []byte) error
}

// AudioOpener constructs the audio context for 16-bit mono PCM at
// sampleRate. It is called at most once per process.
type AudioOpener func(sampleRate int) (AudioContext, error)

// ChimeConfig describes the two-tone cue.
type ChimeConfig struct {
	SampleRate int
	BaseHz     float64
	HarmonicHz float64
	Duration   time.Duration
	Attack     time.Duration
	Volume     float64
}

// DefaultChimeConfig returns a short A5/E6 chime.
func DefaultChimeConfig() ChimeConfig {
	return ChimeConfig{
		SampleRate: 44100,
		BaseHz:     880,
		HarmonicHz: 1320,
		Duration:   300 * time.Millisecond,
		Attack:     10 * time.Millisecond,
		Volume:     0.25,
	}
}

// Chime plays the audio cue for new notifications. The audio context is
// opened lazily on first use; if that fails the chime is disabled for the
// rest of the process and Play becomes a no-op.
type Chime struct {
	open AudioOpener
	cfg  ChimeConfig

	// dev serializes opening and every call into the audio context.
	dev gosync.Mutex

	mu      gosync.Mutex
	opened  bool
	ctx     AudioContext
	openErr error
	pcm     []byte

	muted  atomic.Bool
	played atomic.Int64
}

// NewChime creates a chime that will use open to reach the audio device.
func NewChime(open AudioOpener, cfg ChimeConfig) *Chime {
	return &Chime{open: open, cfg: cfg}
}

// EnsureReady opens the audio context on the first call. It reports
// whether the chime can play.
func (c *Chime) EnsureReady() bool {
	c.dev.Lock()
	defer c.dev.Unlock()
	return c.ensureLocked() != nil
}

// ensureLocked opens the context once. c.dev must be held.
func (c *Chime) ensureLocked() AudioContext {
	c.mu.Lock()
	if c.opened {
		ctx := c.ctx
		c.mu.Unlock()
		return ctx
	}
	c.mu.Unlock()

	var (
		ctx AudioContext
		err error
		pcm []byte
	)
	if c.open == nil {
		err = fmt.Errorf("no audio backend")
	} else if ctx, err = c.open(c.cfg.SampleRate); err != nil {
		ctx = nil
		err = fmt.Errorf("opening audio context: %w", err)
	} else {
		pcm = SynthesizeChime(c.cfg)
	}

	c.mu.Lock()
	c.opened = true
	c.ctx = ctx
	c.openErr = err
	c.pcm = pcm
	c.mu.Unlock()
	return ctx
}

// current returns the opened context, or nil if there is none yet.
func (c *Chime) current() AudioContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// Disabled returns the construction failure that disabled the chime,
// or nil.
func (c *Chime) Disabled() error {
	c.EnsureReady()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openErr
}

// SetMuted silences (or re-enables) the chime without touching the
// audio context.
func (c *Chime) SetMuted(muted bool) {
	c.muted.Store(muted)
}

// Muted reports whether the chime is silenced.
func (c *Chime) Muted() bool {
	return c.muted.Load()
}

// Played returns how many cues have been sent to the audio context.
func (c *Chime) Played() int64 {
	return c.played.Load()
}

// Play emits one chime. Each call is independent. A disabled or muted
// chime does nothing.
func (c *Chime) Play() error {
	if c.muted.Load() {
		return nil
	}

	c.dev.Lock()
	defer c.dev.Unlock()
	ctx := c.ensureLocked()
	if ctx == nil {
		return nil
	}

	if ctx.Suspended() {
		if err := ctx.Resume(); err != nil {
			return fmt.Errorf("resuming audio context: %w", err)
		}
	}

	c.mu.Lock()
	pcm := c.pcm
	c.mu.Unlock()
	if err := ctx.Play(pcm); err != nil {
		return fmt.Errorf("playing chime: %w", err)
	}
	c.played.Add(1)
	return nil
}

// Suspend releases the audio device until the next Play. It does not
// open the context if it was never used.
func (c *Chime) Suspend() error {
	c.dev.Lock()
	defer c.dev.Unlock()
	ctx := c.current()
	if ctx == nil || ctx.Suspended() {
		return nil
	}
	if err := ctx.Suspend(); err != nil {
		return fmt.Errorf("suspending audio context: %w", err)
	}
	return nil
}

// Status describes the chime for display. It never waits on the device.
func (c *Chime) Status() string {
	if c.muted.Load() {
		return "muted"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.opened:
		return "idle"
	case c.ctx == nil:
		return "disabled"
	default:
		return "ready"
	}
}

// SynthesizeChime renders the cue as signed 16-bit little-endian mono PCM:
// a base tone and a harmonic mixed through one envelope that ramps up
// over Attack and decays exponentially until Duration.
func SynthesizeChime(cfg ChimeConfig) []byte {
	if cfg.SampleRate <= 0 || cfg.Duration <= 0 {
		return nil
	}

	total := int(float64(cfg.SampleRate) * cfg.Duration.Seconds())
	attack := int(float64(cfg.SampleRate) * cfg.Attack.Seconds())
	if attack >= total {
		attack = total / 10
	}

	const floor = 0.001
	volume := cfg.Volume
	if volume <= 0 {
		volume = 0.25
	}

	pcm := make([]byte, total*2)
	rate := float64(cfg.SampleRate)
	for i := 0; i < total; i++ {
		t := float64(i) / rate

		var gain float64
		if i < attack {
			gain = volume * float64(i) / float64(attack)
		} else {
			progress := float64(i-attack) / float64(total-attack)
			gain = volume * math.Pow(floor/volume, progress)
		}

		sample := math.Sin(2*math.Pi*cfg.BaseHz*t) +
			0.5*math.Sin(2*math.Pi*cfg.HarmonicHz*t)
		sample = sample / 1.5 * gain

		v := int16(math.Max(-1, math.Min(1, sample)) * math.MaxInt16)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}
