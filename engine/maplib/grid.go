package maplib

import (
	"errors"
	"fmt"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
)

// ErrBadSize is returned for grid dimensions outside the allowed range
var ErrBadSize = errors.New("bad grid size")

// TrackType marks hexes in the debug track overlay
type TrackType uint8

const (
	TrackNone TrackType = iota
	TrackFull
	TrackHalf
)

// FogState represents visibility of a hex
type FogState uint8

const (
	FogShroud   FogState = iota // never seen
	FogExplored                 // seen before but not now
	FogVisible                  // currently visible
)

// Grid owns the per-hex field array and the track and fog buffers
type Grid struct {
	Width, Height int
	Fields        []Field
	Track         []TrackType
	Fog           []FogState
}

// NewGrid allocates a zeroed w*h grid
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, w, h)
	}
	return &Grid{
		Width:  w,
		Height: h,
		Fields: make([]Field, w*h),
		Track:  make([]TrackType, w*h),
		Fog:    make([]FogState, w*h),
	}, nil
}

// Size returns the grid dimensions
func (g *Grid) Size() (int, int) { return g.Width, g.Height }

// Field returns the field at (hx, hy). Coordinates are not checked.
func (g *Grid) Field(hx, hy int) *Field {
	return &g.Fields[hy*g.Width+hx]
}

// FieldAt is Field for a Hex
func (g *Grid) FieldAt(h hexgeom.Hex) *Field {
	return &g.Fields[h.Y*g.Width+h.X]
}

// At returns the field at (x, y) or nil when out of bounds
func (g *Grid) At(x, y int) *Field {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.Fields[y*g.Width+x]
}

// InBounds checks if coordinates are within grid bounds
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Contains is InBounds for a Hex
func (g *Grid) Contains(h hexgeom.Hex) bool { return g.InBounds(h.X, h.Y) }

// Index returns the row-major index of (x, y)
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

// TrackAt returns the track mark of a hex, TrackNone when out of bounds
func (g *Grid) TrackAt(x, y int) TrackType {
	if !g.InBounds(x, y) {
		return TrackNone
	}
	return g.Track[y*g.Width+x]
}

// SetTrack marks a hex in the track overlay
func (g *Grid) SetTrack(x, y int, t TrackType) {
	if g.InBounds(x, y) {
		g.Track[y*g.Width+x] = t
	}
}

// ClearTrack wipes the track overlay
func (g *Grid) ClearTrack() {
	for i := range g.Track {
		g.Track[i] = TrackNone
	}
}

// FogAt returns the fog state of a hex, FogShroud when out of bounds
func (g *Grid) FogAt(x, y int) FogState {
	if !g.InBounds(x, y) {
		return FogShroud
	}
	return g.Fog[y*g.Width+x]
}

// RevealFog marks a hex visible
func (g *Grid) RevealFog(x, y int) {
	if g.InBounds(x, y) {
		g.Fog[y*g.Width+x] = FogVisible
	}
}

// DemoteFog turns every visible hex into explored
func (g *Grid) DemoteFog() {
	for i := range g.Fog {
		if g.Fog[i] == FogVisible {
			g.Fog[i] = FogExplored
		}
	}
}

// ClearFog resets every hex to the given state
func (g *Grid) ClearFog(state FogState) {
	for i := range g.Fog {
		g.Fog[i] = state
	}
}

// Clear resets every field, keeping the allocation
func (g *Grid) Clear() {
	for i := range g.Fields {
		g.Fields[i].Clear()
	}
	g.ClearTrack()
	g.ClearFog(FogShroud)
}
