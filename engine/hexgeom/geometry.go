package hexgeom

import "math"

// Hex is a grid coordinate in offset-column layout
type Hex struct{ X, Y int }

// Dir is one of the six hex directions, numbered clockwise from up-right
type Dir uint8

const (
	DirUpRight Dir = iota
	DirRight
	DirDownRight
	DirDownLeft
	DirLeft
	DirUpLeft
	DirCount = 6
)

// DirNone marks an unknown or invalid direction
const DirNone Dir = 0xFF

// Default isometric hex sprite metrics in pixels
const (
	DefaultHexWidth      = 32
	DefaultHexHeight     = 16
	DefaultHexLineHeight = 12
)

// neighbor deltas indexed by [column parity][dir]
var neighbors = [2][DirCount][2]int{
	{{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {0, -1}},
	{{-1, -1}, {-1, 0}, {0, 1}, {1, 0}, {1, -1}, {0, -1}},
}

// axial deltas for each direction, same order as neighbors
var axialDirs = [DirCount][2]int{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 0}, {1, -1}, {0, -1},
}

// Reverse returns the opposite direction
func (d Dir) Reverse() Dir { return (d + 3) % DirCount }

// Rotate turns the direction by n sixths of a circle, clockwise for positive n
func (d Dir) Rotate(n int) Dir {
	r := (int(d) + n) % DirCount
	if r < 0 {
		r += DirCount
	}
	return Dir(r)
}

// Valid reports whether d names one of the six directions
func (d Dir) Valid() bool { return d < DirCount }

// Step returns the neighbor in direction d without bounds checks
func (h Hex) Step(d Dir) Hex {
	n := neighbors[h.X&1][d]
	return Hex{h.X + n[0], h.Y + n[1]}
}

// StepChecked returns the neighbor in direction d if it lies inside a w*h grid
func (h Hex) StepChecked(d Dir, w, hgt int) (Hex, bool) {
	n := h.Step(d)
	if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= hgt {
		return h, false
	}
	return n, true
}

// MoveHexByDir is the unchecked neighbor step
func MoveHexByDir(h Hex, d Dir) Hex { return h.Step(d) }

// MoveHexByDirChecked steps only when the result stays inside the grid
func MoveHexByDirChecked(h Hex, d Dir, w, hgt int) (Hex, bool) { return h.StepChecked(d, w, hgt) }

// Neighbors returns the six neighbors in direction order
func (h Hex) Neighbors() [DirCount]Hex {
	var out [DirCount]Hex
	for d := Dir(0); d < DirCount; d++ {
		out[d] = h.Step(d)
	}
	return out
}

// Axial converts to axial coordinates
func (h Hex) Axial() (q, r int) {
	return h.X, h.Y - ((h.X + 1) >> 1)
}

// FromAxial converts axial coordinates back to offset layout
func FromAxial(q, r int) Hex {
	return Hex{q, r + ((q + 1) >> 1)}
}

// Distance returns the number of steps between two hexes
func Distance(a, b Hex) int {
	aq, ar := a.Axial()
	bq, br := b.Axial()
	dq, dr := aq-bq, ar-br
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

// Direction returns the direction from a that points closest to b.
// Ties resolve to the lower direction index.
func Direction(a, b Hex) Dir {
	if a == b {
		return DirNone
	}
	aq, ar := a.Axial()
	bq, br := b.Axial()
	dx, dy := axialToCart(float64(bq-aq), float64(br-ar))
	best, bestDot := DirNone, math.Inf(-1)
	for d := Dir(0); d < DirCount; d++ {
		ux, uy := axialToCart(float64(axialDirs[d][0]), float64(axialDirs[d][1]))
		dot := dx*ux + dy*uy
		if dot > bestDot+1e-9 {
			best, bestDot = d, dot
		}
	}
	return best
}

// DirOf returns the direction between two neighbors, or DirNone if they are not adjacent
func DirOf(a, b Hex) Dir {
	for d := Dir(0); d < DirCount; d++ {
		if a.Step(d) == b {
			return d
		}
	}
	return DirNone
}

// Pixel returns the screen position of a hex center relative to hex (0,0)
func Pixel(h Hex, hexW, lineH int) (int, int) {
	half := h.X >> 1
	x := h.Y*(hexW/2) - h.X*hexW + (hexW/2)*half
	y := h.Y*lineH + lineH*half
	return x, y
}

// HexOffset returns the screen pixel delta from one hex center to another
func HexOffset(from, to Hex, hexW, lineH int) (int, int) {
	fx, fy := Pixel(from, hexW, lineH)
	tx, ty := Pixel(to, hexW, lineH)
	return tx - fx, ty - fy
}

// ScreenRowCol returns the screen row and half-hex column of a hex.
// Rows grow downward and columns grow to the right.
func ScreenRowCol(h Hex) (row, col int) {
	half := h.X >> 1
	return h.Y + half, h.Y - 2*h.X + half
}

// Ring returns all hexes at exactly distance r from c, starting at the
// corner in direction 4 and walking clockwise
func Ring(c Hex, r int) []Hex {
	if r <= 0 {
		return []Hex{c}
	}
	out := make([]Hex, 0, 6*r)
	h := c
	for i := 0; i < r; i++ {
		h = h.Step(DirLeft)
	}
	for side := Dir(0); side < DirCount; side++ {
		for i := 0; i < r; i++ {
			out = append(out, h)
			h = h.Step(side)
		}
	}
	return out
}

// Line returns the hexes stepped from 'from' toward 'to', excluding 'from'.
// A positive n extends or shortens the line to exactly n steps; angle
// rotates the aim clockwise in degrees.
func Line(from, to Hex, n int, angle float64) []Hex {
	aq, ar := from.Axial()
	bq, br := to.Axial()
	dq, dr := float64(bq-aq), float64(br-ar)
	dist := Distance(from, to)
	if dist == 0 {
		return nil
	}
	if angle != 0 {
		x, y := axialToCart(dq, dr)
		s, c := math.Sincos(-angle * math.Pi / 180)
		x, y = x*c-y*s, x*s+y*c
		dq, dr = cartToAxial(x, y)
	}
	if n <= 0 {
		n = dist
	}
	scale := float64(n) / cubeLen(dq, dr)
	dq *= scale
	dr *= scale

	out := make([]Hex, 0, n)
	q0 := float64(aq) + 1e-6
	r0 := float64(ar) + 2e-6
	prev := from
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		h := cubeRound(q0+dq*t, r0+dr*t)
		if h == prev {
			continue
		}
		out = append(out, h)
		prev = h
	}
	return out
}

func cubeLen(q, r float64) float64 {
	return (math.Abs(q) + math.Abs(r) + math.Abs(q+r)) / 2
}

func cubeRound(q, r float64) Hex {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	eq, er, es := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	if eq > er && eq > es {
		rq = -rr - rs
	} else if er > es {
		rr = -rq - rs
	}
	return FromAxial(int(rq), int(rr))
}

func axialToCart(q, r float64) (float64, float64) {
	return q + r/2, r * math.Sqrt(3) / 2
}

func cartToAxial(x, y float64) (float64, float64) {
	r := y * 2 / math.Sqrt(3)
	return x - r/2, r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
