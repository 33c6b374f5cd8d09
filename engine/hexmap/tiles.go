package hexmap

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// SetTile adds a ground or roof tile to a hex, ordered by layer
func (m *Manager) SetTile(h hexgeom.Hex, t maplib.Tile, roof bool) error {
	if m.grid == nil {
		return ErrMapNotLoaded
	}
	if !m.grid.Contains(h) {
		return ErrBadHex
	}
	f := m.grid.FieldAt(h)
	if roof {
		f.Roofs = insertTile(f.Roofs, t)
		m.MarkRoofNum()
	} else {
		f.Tiles = insertTile(f.Tiles, t)
	}
	m.tilesDirty = true
	return nil
}

// EraseTile removes the index-th tile of a hex
func (m *Manager) EraseTile(h hexgeom.Hex, roof bool, index int) bool {
	if m.grid == nil || !m.grid.Contains(h) {
		return false
	}
	f := m.grid.FieldAt(h)
	tiles := &f.Tiles
	if roof {
		tiles = &f.Roofs
	}
	if index < 0 || index >= len(*tiles) {
		return false
	}
	*tiles = append((*tiles)[:index], (*tiles)[index+1:]...)
	if roof {
		m.MarkRoofNum()
	}
	m.tilesDirty = true
	return true
}

// MarkRoofNum groups connected roof tiles. Roof tiles sit up to two hexes
// apart, so tiles within distance two join one group; each group also
// claims the hexes next to its tiles, which is where critters stand.
func (m *Manager) MarkRoofNum() {
	if m.grid == nil {
		return
	}
	g := m.grid
	for i := range g.Fields {
		g.Fields[i].RoofNum = 0
	}
	var num int16
	var stack []hexgeom.Hex
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			f := g.Field(x, y)
			if len(f.Roofs) == 0 || f.RoofNum > 0 {
				continue
			}
			num++
			f.RoofNum = num
			stack = append(stack[:0], hexgeom.Hex{X: x, Y: y})
			for len(stack) > 0 {
				h := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for r := 1; r <= 2; r++ {
					for _, n := range hexgeom.Ring(h, r) {
						if !g.Contains(n) {
							continue
						}
						nf := g.FieldAt(n)
						if len(nf.Roofs) > 0 && nf.RoofNum != num {
							nf.RoofNum = num
							stack = append(stack, n)
						}
					}
				}
			}
		}
	}
	// claim uncovered neighbors after every group has its tiles
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			f := g.Field(x, y)
			if len(f.Roofs) == 0 {
				continue
			}
			for _, n := range hexgeom.Ring(hexgeom.Hex{X: x, Y: y}, 1) {
				if g.Contains(n) {
					if nf := g.FieldAt(n); nf.RoofNum == 0 {
						nf.RoofNum = f.RoofNum
					}
				}
			}
		}
	}
}

// SetSkipRoof hides the roof group covering h. A hex outside the grid or
// without a roof shows every roof again.
func (m *Manager) SetSkipRoof(h hexgeom.Hex) {
	var num int16
	if m.grid != nil && m.grid.Contains(h) {
		num = m.grid.FieldAt(h).RoofNum
	}
	m.skipRoof = num
}

// SkipRoof returns the hidden roof group, zero when all roofs show
func (m *Manager) SkipRoof() int16 { return m.skipRoof }
