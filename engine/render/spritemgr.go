package render

import (
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/logger"
)

// SpriteID identifies one frame image inside a sprite manager
type SpriteID uint32

// SpriteInfo describes a frame. OffsX/OffsY shift the anchor from the
// bottom-center of the image.
type SpriteInfo struct {
	Width, Height int
	OffsX, OffsY  int
}

// DrawOptions are per-blit parameters
type DrawOptions struct {
	Alpha   uint8   // 255 is opaque
	R, G, B uint8   // light tint, 255 leaves the image unchanged
	Zoom    float64 // world pixels per screen pixel
}

// SpriteManager is the graphics backend the engine draws through
type SpriteManager interface {
	SpriteInfo(id SpriteID) (SpriteInfo, bool)
	// DrawSprite blits frame id with its top-left corner at screen (x, y)
	DrawSprite(id SpriteID, x, y float64, opts DrawOptions)
	DrawContour(id SpriteID, x, y float64, zoom float64, color uint32)
	DrawPoints(points []light.PrepPoint, zoom float64)
	// IsPixNoTransp reports whether pixel (ox, oy) of the frame is opaque
	IsPixNoTransp(id SpriteID, ox, oy int) bool
}

// Frames is a loaded animation
type Frames struct {
	Name    string
	TicksMs int        // duration of the whole cycle
	IDs     []SpriteID // one per frame
	Stub    bool       // fallback used for a missing animation
}

// Count returns the number of frames
func (f *Frames) Count() int { return len(f.IDs) }

// Frame picks the frame shown at a game tick in milliseconds
func (f *Frames) Frame(tickMs uint64) SpriteID {
	n := len(f.IDs)
	if n == 0 {
		return 0
	}
	if n == 1 || f.TicksMs <= 0 {
		return f.IDs[0]
	}
	i := int(tickMs%uint64(f.TicksMs)) * n / f.TicksMs
	return f.IDs[i]
}

// AnimResolver loads animations by symbolic name
type AnimResolver interface {
	LoadAnimation(name string) (*Frames, bool)
}

// AnimCache resolves animations once and substitutes a stub for missing ones
type AnimCache struct {
	resolver AnimResolver
	stubName string
	cache    map[string]*Frames
	stub     *Frames
}

// NewAnimCache wraps a resolver. stubName names the fallback animation.
func NewAnimCache(resolver AnimResolver, stubName string) *AnimCache {
	return &AnimCache{
		resolver: resolver,
		stubName: stubName,
		cache:    make(map[string]*Frames),
	}
}

// Get returns the animation for name, or the stub when it cannot be loaded
func (c *AnimCache) Get(name string) *Frames {
	if f, ok := c.cache[name]; ok {
		return f
	}
	f, ok := c.resolver.LoadAnimation(name)
	if !ok || f == nil || f.Count() == 0 {
		logger.Log.WithField("component", "render").WithField("anim", name).Warn("missing animation, using stub")
		f = c.Stub()
	}
	c.cache[name] = f
	return f
}

// Stub returns the fallback animation
func (c *AnimCache) Stub() *Frames {
	if c.stub != nil {
		return c.stub
	}
	if f, ok := c.resolver.LoadAnimation(c.stubName); ok && f != nil && f.Count() > 0 {
		c.stub = &Frames{Name: f.Name, TicksMs: f.TicksMs, IDs: f.IDs, Stub: true}
	} else {
		c.stub = &Frames{Name: c.stubName, IDs: []SpriteID{0}, Stub: true}
	}
	return c.stub
}

// Clear drops every cached animation
func (c *AnimCache) Clear() {
	for k := range c.cache {
		delete(c.cache, k)
	}
	c.stub = nil
}
