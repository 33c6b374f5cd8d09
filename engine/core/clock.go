package core

import "time"

// maxFrame caps one frame to avoid a spiral of catch-up steps
const maxFrame = 250 * time.Millisecond

// FrameClock tracks the game tick used for animation frames and runs a
// fixed-step accumulator for critter movement
type FrameClock struct {
	Step   time.Duration // fixed movement step
	Paused bool

	tick        time.Duration
	dt          time.Duration
	accumulator time.Duration
	lastTime    time.Time
	now         func() time.Time
}

// NewFrameClock creates a clock with the given fixed step in milliseconds
func NewFrameClock(stepMs int) *FrameClock {
	if stepMs <= 0 {
		stepMs = 200
	}
	c := &FrameClock{
		Step: time.Duration(stepMs) * time.Millisecond,
		now:  time.Now,
	}
	c.lastTime = c.now()
	return c
}

// Update should be called every render frame. It returns the number of
// fixed steps to run this frame.
func (c *FrameClock) Update() int {
	now := c.now()
	elapsed := now.Sub(c.lastTime)
	c.lastTime = now
	return c.Advance(elapsed)
}

// Advance moves the clock by elapsed and returns the fixed steps it covers
func (c *FrameClock) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > maxFrame {
		elapsed = maxFrame
	}
	if c.Paused {
		c.dt = 0
		return 0
	}
	c.dt = elapsed
	c.tick += elapsed
	c.accumulator += elapsed

	steps := 0
	for c.accumulator >= c.Step {
		c.accumulator -= c.Step
		steps++
	}
	return steps
}

// TickMs returns the game time in milliseconds
func (c *FrameClock) TickMs() uint64 { return uint64(c.tick / time.Millisecond) }

// Dt returns the last frame duration in seconds
func (c *FrameClock) Dt() float64 { return c.dt.Seconds() }

// Alpha returns how far the clock is into the next fixed step, 0..1
func (c *FrameClock) Alpha() float64 {
	return float64(c.accumulator) / float64(c.Step)
}

// Pause stops the game tick
func (c *FrameClock) Pause() { c.Paused = true }

// Play resumes the game tick without counting the paused time
func (c *FrameClock) Play() {
	c.Paused = false
	c.lastTime = c.now()
}
