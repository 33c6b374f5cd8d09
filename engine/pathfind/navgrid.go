package pathfind

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// NavGrid answers footprint-aware passability queries for one mover
type NavGrid struct {
	grid     *maplib.Grid
	self     uint32
	multihex int
	// footprint offsets from the center, rings 0..multihex, indexed by
	// the parity of the center column
	offsets [2][]hexgeom.Hex
}

// NewNavGrid builds a passability view of grid for critter self with the given footprint radius
func NewNavGrid(grid *maplib.Grid, self uint32, multihex int) *NavGrid {
	if multihex < 0 {
		multihex = 0
	}
	ng := &NavGrid{grid: grid, self: self, multihex: multihex}
	for parity := range ng.offsets {
		c := hexgeom.Hex{X: parity}
		for _, h := range Footprint(c, multihex) {
			ng.offsets[parity] = append(ng.offsets[parity], hexgeom.Hex{X: h.X - c.X, Y: h.Y - c.Y})
		}
	}
	return ng
}

// Grid returns the underlying field grid
func (ng *NavGrid) Grid() *maplib.Grid { return ng.grid }

// HexPassable checks a single hex: in bounds, not NotPassed and free of other critters
func (ng *NavGrid) HexPassable(h hexgeom.Hex) bool {
	if !ng.grid.Contains(h) {
		return false
	}
	f := ng.grid.FieldAt(h)
	return !f.IsNotPassed() && !f.OccupiedBy(ng.self)
}

// StaticPassable ignores critters and only checks geometry
func (ng *NavGrid) StaticPassable(h hexgeom.Hex) bool {
	return ng.grid.Contains(h) && !ng.grid.FieldAt(h).IsNotPassed()
}

// Passable checks every hex the mover would cover when centered on h
func (ng *NavGrid) Passable(h hexgeom.Hex) bool {
	if ng.multihex == 0 {
		return ng.HexPassable(h)
	}
	for _, o := range ng.offsets[h.X&1] {
		if !ng.HexPassable(hexgeom.Hex{X: h.X + o.X, Y: h.Y + o.Y}) {
			return false
		}
	}
	return true
}

// Footprint returns the hexes covered by a critter of radius multihex centered on h
func Footprint(h hexgeom.Hex, multihex int) []hexgeom.Hex {
	out := []hexgeom.Hex{h}
	for r := 1; r <= multihex; r++ {
		out = append(out, hexgeom.Ring(h, r)...)
	}
	return out
}
