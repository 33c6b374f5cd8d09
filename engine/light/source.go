package light

import "github.com/1siamBot/hex-engine/engine/hexgeom"

// Flag modifies how a source propagates
type Flag uint8

const (
	// FlagDisableDir0..5 switch off the fan between direction n and n+1
	FlagDisableDir0 Flag = 1 << iota
	FlagDisableDir1
	FlagDisableDir2
	FlagDisableDir3
	FlagDisableDir4
	FlagDisableDir5
	FlagIgnoreObstacles
	FlagInverse // brighter toward the edge
)

// DisableDir returns the flag that disables fan d
func DisableDir(d hexgeom.Dir) Flag { return FlagDisableDir0 << d }

// Source is a point light on a hex
type Source struct {
	ID        uint32 // owner id, used to track follow offsets
	Hex       hexgeom.Hex
	Color     uint32 // 0xRRGGBB, zero means white
	Distance  int    // radius in hexes
	Intensity int    // percent, negative darkens
	Flags     Flag
	// Follow names a sprite owner whose draw offset the glow tracks, 0 for none
	Follow uint32
}

// RGB splits the color into channels
func (s *Source) RGB() (r, g, b int32) {
	c := s.Color
	if c == 0 {
		c = 0xFFFFFF
	}
	return int32(c >> 16 & 0xFF), int32(c >> 8 & 0xFF), int32(c & 0xFF)
}

// Active reports whether the source emits anything
func (s *Source) Active() bool { return s.Intensity != 0 && s.Distance > 0 }

// Reaches reports whether the source radius can touch the box
func (s *Source) Reaches(b Box) bool {
	d := s.Distance
	return s.Hex.X+d >= b.MinX && s.Hex.X-d <= b.MaxX && s.Hex.Y+d >= b.MinY && s.Hex.Y-d <= b.MaxY
}

// Collector returns the current light sources, appending to dst
type Collector interface {
	LightSources(dst []Source) []Source
}

// CollectorFunc adapts a function to Collector
type CollectorFunc func(dst []Source) []Source

func (f CollectorFunc) LightSources(dst []Source) []Source { return f(dst) }

// FollowResolver returns the current draw offset of a followed owner
type FollowResolver interface {
	FollowOffset(owner uint32) (x, y int, ok bool)
}

// Box is an inclusive hex rectangle
type Box struct{ MinX, MinY, MaxX, MaxY int }

// Union grows b to cover o
func (b Box) Union(o Box) Box {
	return Box{min(b.MinX, o.MinX), min(b.MinY, o.MinY), max(b.MaxX, o.MaxX), max(b.MaxY, o.MaxY)}
}

// Clip limits b to a w*h grid
func (b Box) Clip(w, h int) Box {
	return Box{max(b.MinX, 0), max(b.MinY, 0), min(b.MaxX, w-1), min(b.MaxY, h-1)}
}

// Contains reports whether (x, y) lies in b
func (b Box) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Empty reports whether b covers no hex
func (b Box) Empty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

func (b Box) width() int { return b.MaxX - b.MinX + 1 }
