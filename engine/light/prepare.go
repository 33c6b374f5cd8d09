package light

import "github.com/1siamBot/hex-engine/engine/hexgeom"

// HexPoint is a visible hex and the screen position of its center
type HexPoint struct {
	Hex  hexgeom.Hex
	X, Y float32
}

// PrepPoint is a colored point handed to the sprite backend.
// Radius is zero for per-hex points and the glow radius for sources.
type PrepPoint struct {
	X, Y    float32
	R, G, B uint8
	A       uint8
	Radius  float32
}

// PrepareToDraw builds the points for the visible hexes: each hex gets the
// ambient color plus its accumulated light, and every source in view adds a
// glow centered on its hex shifted by the follow offset. The result is cached
// until a render refresh is requested.
func (e *Engine) PrepareToDraw(view []HexPoint, ambient Color, hexW int) []PrepPoint {
	if !e.renderRequested && len(e.points) > 0 {
		return e.points
	}
	e.renderRequested = false
	e.points = e.points[:0]
	if e.grid == nil {
		return e.points
	}

	at := make(map[hexgeom.Hex]int, len(view))
	for i, v := range view {
		if !e.grid.Contains(v.Hex) {
			continue
		}
		at[v.Hex] = i
		r, g, b := e.Light(v.Hex.X, v.Hex.Y)
		e.points = append(e.points, PrepPoint{
			X: v.X, Y: v.Y,
			R: add8(ambient.R, r), G: add8(ambient.G, g), B: add8(ambient.B, b),
			A: 255,
		})
	}

	for i := range e.sources {
		s := &e.sources[i]
		vi, ok := at[s.Hex]
		if !ok || s.Intensity <= 0 {
			continue
		}
		x, y := view[vi].X, view[vi].Y
		if s.Follow != 0 && e.follow != nil {
			if ox, oy, ok := e.follow.FollowOffset(s.Follow); ok {
				x += float32(ox)
				y += float32(oy)
			}
		}
		r, g, b := s.RGB()
		e.points = append(e.points, PrepPoint{
			X: x, Y: y,
			R: uint8(r), G: uint8(g), B: uint8(b),
			A:      clamp8(int32(s.Intensity) * 255 / 100 / 2),
			Radius: float32(s.Distance * hexW / 2),
		})
	}
	return e.points
}

func add8(a, b uint8) uint8 {
	return clamp8(int32(a) + int32(b))
}
