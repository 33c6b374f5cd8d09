package light

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// fanHexes walks fan k of ring r around c. Fan k spans from the corner in
// direction k toward the corner in direction k+1, so the six fans of a ring
// cover it exactly once.
func fanHexes(c hexgeom.Hex, r int, k hexgeom.Dir, fn func(h hexgeom.Hex)) {
	h := c
	for i := 0; i < r; i++ {
		h = h.Step(k)
	}
	side := k.Rotate(2)
	for i := 0; i < r; i++ {
		fn(h)
		h = h.Step(side)
	}
}

// tracer accumulates one source into the box accumulator
type tracer struct {
	grid  *maplib.Grid
	box   Box
	accum []int32

	steps, ends int
}

func (t *tracer) add(h hexgeom.Hex, v [3]int32) {
	if !t.box.Contains(h.X, h.Y) {
		return
	}
	i := ((h.Y-t.box.MinY)*t.box.width() + (h.X - t.box.MinX)) * 3
	t.accum[i] += v[0]
	t.accum[i+1] += v[1]
	t.accum[i+2] += v[2]
}

// value returns the per-channel contribution at distance d
func value(rgb [3]int32, intensity, dist, d int, inverse bool) [3]int32 {
	num := int32(dist + 1 - d)
	if inverse {
		num = int32(d + 1)
	}
	den := int32(100 * (dist + 1))
	var v [3]int32
	for ch := range rgb {
		v[ch] = rgb[ch] * int32(intensity) * num / den
	}
	return v
}

// traceSource propagates one source fan by fan, ring by ring
func (t *tracer) traceSource(s *Source) {
	r, g, b := s.RGB()
	rgb := [3]int32{r, g, b}
	inverse := s.Flags&FlagInverse != 0
	obstacles := s.Flags&FlagIgnoreObstacles == 0
	if !t.grid.Contains(s.Hex) {
		return
	}
	t.add(s.Hex, value(rgb, s.Intensity, s.Distance, 0, inverse))

	for ring := 1; ring <= s.Distance; ring++ {
		v := value(rgb, s.Intensity, s.Distance, ring, inverse)
		for k := hexgeom.Dir(0); k < hexgeom.DirCount; k++ {
			if s.Flags&DisableDir(k) != 0 {
				continue
			}
			fanHexes(s.Hex, ring, k, func(h hexgeom.Hex) {
				if !t.box.Contains(h.X, h.Y) || !t.grid.Contains(h) {
					return
				}
				if !obstacles {
					t.markLightStep(h, v)
					return
				}
				if !t.pathClear(s.Hex, h) {
					return
				}
				if t.grid.FieldAt(h).IsNoLight() {
					t.markLightEnd(h, v)
				} else {
					t.markLightStep(h, v)
				}
			})
		}
	}
}

// pathClear reports whether no light blocker stands strictly between c and h
func (t *tracer) pathClear(c, h hexgeom.Hex) bool {
	line := hexgeom.Line(c, h, 0, 0)
	for _, p := range line[:len(line)-1] {
		if !t.grid.Contains(p) || t.grid.FieldAt(p).IsNoLight() {
			return false
		}
	}
	return true
}

// markLightStep lights an open hex
func (t *tracer) markLightStep(h hexgeom.Hex, v [3]int32) {
	t.steps++
	t.add(h, v)
}

// markLightEnd lights the face of the blocker that ends a ray.
// Hexes behind it are never reached because pathClear fails for them.
func (t *tracer) markLightEnd(h hexgeom.Hex, v [3]int32) {
	t.ends++
	t.add(h, v)
}
