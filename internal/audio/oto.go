// Package audio plays raw PCM through the system sound device.
package audio

import (
	"bytes"
	"fmt"
	gosync "sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Context is a mono 16-bit output device. Only one may exist per process.
type Context struct {
	ctx *oto.Context

	mu        gosync.Mutex
	suspended bool
}

// Open creates the output device for signed 16-bit little-endian mono PCM
// at sampleRate and waits until it is ready.
func Open(sampleRate int) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx}, nil
}

// Suspended reports whether the device was suspended.
func (c *Context) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// Suspend pauses the device.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspending oto context: %w", err)
	}
	c.suspended = true
	return nil
}

// Resume restarts a suspended device.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ctx.Resume(); err != nil {
		return fmt.Errorf("resuming oto context: %w", err)
	}
	c.suspended = false
	return nil
}

// Play starts pcm on a fresh player and returns immediately. The player
// is released once playback ends.
func (c *Context) Play(pcm []byte) error {
	if err := c.ctx.Err(); err != nil {
		return fmt.Errorf("audio device failed: %w", err)
	}

	p := c.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()

	go func() {
		for p.IsPlaying() {
			time.Sleep(20 * time.Millisecond)
		}
		_ = p.Close()
	}()
	return nil
}
