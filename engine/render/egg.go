package render

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/proto"
)

// EggType selects when a sprite turns see-through over the chosen critter
type EggType uint8

const (
	EggNone EggType = iota
	EggAlways
	EggX
	EggY
	EggXandY
	EggXorY
)

// EggForCorner maps a wall corner to the egg relation that hides it
func EggForCorner(c proto.CornerType) EggType {
	switch c {
	case proto.CornerSouth:
		return EggXorY
	case proto.CornerNorth:
		return EggXandY
	case proto.CornerEastWest, proto.CornerWest:
		return EggY
	default:
		return EggX
	}
}

// Egg is the see-through ellipse around the chosen critter
type Egg struct {
	Active bool
	Hex    hexgeom.Hex
	// Ellipse center and size in view pixels
	X, Y          int
	Width, Height int
	Alpha         uint8
}

// Set places the egg over a critter standing at h with its sprite center at (x, y)
func (e *Egg) Set(h hexgeom.Hex, x, y int) {
	e.Active = true
	e.Hex = h
	e.X, e.Y = x, y
}

// Reset hides the egg
func (e *Egg) Reset() { e.Active = false }

// Rect returns the egg bounding box
func (e *Egg) Rect() (l, t, r, b int) {
	return e.X - e.Width/2, e.Y - e.Height/2, e.X + e.Width/2, e.Y + e.Height/2
}

// relation reports whether hex h stands in front of the egg for type et
func (e *Egg) relation(et EggType, h hexgeom.Hex) bool {
	switch et {
	case EggAlways:
		return true
	case EggX:
		return h.X >= e.Hex.X
	case EggY:
		return h.Y >= e.Hex.Y
	case EggXandY:
		return h.X >= e.Hex.X && h.Y >= e.Hex.Y
	case EggXorY:
		return h.X >= e.Hex.X || h.Y >= e.Hex.Y
	}
	return false
}

// Applies reports whether a sprite drawn with its top-left at (x, y) and the
// given size must be faded by the egg
func (e *Egg) Applies(s *Sprite, x, y, w, h int) bool {
	if !e.Active || s.Egg == EggNone || s.Hex == e.Hex {
		return false
	}
	l, t, r, b := e.Rect()
	if x >= r || x+w <= l || y >= b || y+h <= t {
		return false
	}
	return e.relation(s.Egg, s.Hex)
}

// FadeAlpha scales alpha by the egg transparency
func (e *Egg) FadeAlpha(alpha uint8) uint8 {
	return uint8(int(alpha) * int(e.Alpha) / 255)
}

// IsEggTransp reports whether the view pixel (px, py) lies inside the egg ellipse
func (e *Egg) IsEggTransp(px, py int) bool {
	if !e.Active || e.Width <= 0 || e.Height <= 0 {
		return false
	}
	dx := float64(px-e.X) / (float64(e.Width) / 2)
	dy := float64(py-e.Y) / (float64(e.Height) / 2)
	return dx*dx+dy*dy <= 1
}
