package trirast

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	backgroundStep  = 0.001
	AltTogglePeriod = 2 * time.Second
)

// Frame is the per-frame state handed to a renderer.
type Frame struct {
	Index       int
	Background  mgl32.Vec4
	AltPosition bool
}

// FrameClock drives the background fade and the alternate-position flag.
// The zero value is ready to use; the first Next call starts the timer.
type FrameClock struct {
	// AltEnabled gates the alternate-position flag; when false it never rises.
	AltEnabled bool

	start time.Time
	index int
	red   float32
}

// Next returns the state for the frame drawn at now. The background of each
// frame is the one set up by the previous call, matching a clear that happens
// before the clear color is advanced.
func (c *FrameClock) Next(now time.Time) Frame {
	if c.start.IsZero() {
		c.start = now
	}

	f := Frame{
		Index:      c.index,
		Background: mgl32.Vec4{c.red, 0, 0, 1},
	}
	if c.AltEnabled {
		f.AltPosition = (now.Sub(c.start)/AltTogglePeriod)%2 == 1
	}

	if c.red < 1 {
		c.red += backgroundStep
	} else {
		c.red = 0
	}
	c.index++
	return f
}
