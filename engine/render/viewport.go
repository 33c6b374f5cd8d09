package render

import (
	"math"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/settings"
)

// ViewField is one cell of the visible hex window
type ViewField struct {
	Hex hexgeom.Hex
	// Hex center relative to the view origin, in unzoomed pixels, without scroll offset
	ScrX, ScrY int
	// Hex center on screen after zoom, without scroll offset
	ScrXf, ScrYf float32
}

// AutoScroll drives a scroll spread over several frames
type AutoScroll struct {
	Active  bool
	CanStop bool // new input cancels the scroll
	// Remaining world pixels to move the view center
	OffsX, OffsY float64
	Speed        float64 // pixels per second

	HardLockedCritter uint32 // view stays centered on this critter
	SoftLockedCritter uint32 // view follows this critter when it changes hex
	CritterLastHex    hexgeom.Hex
}

// ScrollInput is the user scroll intent for one frame
type ScrollInput struct {
	Left, Right, Up, Down bool
}

// Any reports whether any scroll key is held
func (in ScrollInput) Any() bool { return in.Left || in.Right || in.Up || in.Down }

// Viewport maps between hexes and the screen under zoom and scroll
type Viewport struct {
	cfg *settings.HexSettings

	Zoom             float64 // world pixels per screen pixel
	ScreenW, ScreenH int

	Center hexgeom.Hex
	// Scroll offset in world pixels added to every hex position
	ScrOx, ScrOy float64

	AutoScroll AutoScroll

	Fields     []ViewField
	rows, cols int
	originX    int // world pixel of view origin for the current center
	originY    int

	gridW, gridH int
	// scrollable reports whether the view center may rest on a hex
	scrollable func(h hexgeom.Hex) bool
	// critterHex locates a critter for scroll locks
	critterHex func(id uint32) (hexgeom.Hex, bool)
}

// NewViewport creates a viewport sized from settings
func NewViewport(cfg *settings.HexSettings) *Viewport {
	return &Viewport{
		cfg:     cfg,
		Zoom:    1,
		ScreenW: cfg.ScreenWidth,
		ScreenH: cfg.ScreenHeight,
	}
}

// SetGrid sets the grid bounds and the center check used for scroll clamping
func (v *Viewport) SetGrid(w, h int, scrollable func(h hexgeom.Hex) bool) {
	v.gridW, v.gridH = w, h
	v.scrollable = scrollable
}

// SetCritterLocator installs the lookup used by scroll locks
func (v *Viewport) SetCritterLocator(fn func(id uint32) (hexgeom.Hex, bool)) {
	v.critterHex = fn
}

// InitView centers the view on (cx, cy) and builds the view fields
func (v *Viewport) InitView(cx, cy int) {
	v.Center = hexgeom.Hex{X: cx, Y: cy}
	v.ScrOx, v.ScrOy = 0, 0
	v.RebuildView()
}

// ResizeView changes the screen size and rebuilds the view fields
func (v *Viewport) ResizeView(w, h int) {
	v.ScreenW, v.ScreenH = w, h
	v.RebuildView()
}

// RebuildView recomputes the visible window around the current center
func (v *Viewport) RebuildView() {
	hw, lh := v.cfg.HexWidth, v.cfg.HexLineHeight
	half := hw / 2
	cx, cy := hexgeom.Pixel(v.Center, hw, lh)
	viewW := int(math.Ceil(float64(v.ScreenW) * v.Zoom))
	viewH := int(math.Ceil(float64(v.ScreenH) * v.Zoom))
	v.originX = cx - viewW/2
	v.originY = cy - viewH/2

	margin := v.cfg.ViewMargin + 2
	rowMin := floorDiv(v.originY, lh) - margin
	rowMax := floorDiv(v.originY+viewH, lh) + margin + 1
	colMin := floorDiv(v.originX, half) - 2*margin
	colMax := floorDiv(v.originX+viewW, half) + 2*margin

	v.rows = rowMax - rowMin + 1
	v.cols = (colMax - colMin + 2) / 2
	v.Fields = v.Fields[:0]
	for r := rowMin; r <= rowMax; r++ {
		c0 := colMin
		if (r-c0)&1 != 0 {
			c0++
		}
		for c := c0; c <= colMax; c += 2 {
			x := (r - c) / 2
			h := hexgeom.Hex{X: x, Y: r - (x >> 1)}
			sx, sy := c*half-v.originX, r*lh-v.originY
			v.Fields = append(v.Fields, ViewField{
				Hex:   h,
				ScrX:  sx,
				ScrY:  sy,
				ScrXf: float32(float64(sx) / v.Zoom),
				ScrYf: float32(float64(sy) / v.Zoom),
			})
		}
	}
}

// InGrid reports whether h lies inside the map
func (v *Viewport) InGrid(h hexgeom.Hex) bool {
	return h.X >= 0 && h.Y >= 0 && h.X < v.gridW && h.Y < v.gridH
}

// HexViewPos returns the view pixel of a hex center, before scroll and zoom
func (v *Viewport) HexViewPos(h hexgeom.Hex) (int, int) {
	x, y := hexgeom.Pixel(h, v.cfg.HexWidth, v.cfg.HexLineHeight)
	return x - v.originX, y - v.originY
}

// ToScreen converts a view pixel to screen coordinates
func (v *Viewport) ToScreen(x, y float64) (float64, float64) {
	return (x + v.ScrOx) / v.Zoom, (y + v.ScrOy) / v.Zoom
}

// ToView converts a screen pixel to view coordinates
func (v *Viewport) ToView(sx, sy float64) (float64, float64) {
	return sx*v.Zoom - v.ScrOx, sy*v.Zoom - v.ScrOy
}

// GetHexPixel returns the hex under screen pixel (px, py)
func (v *Viewport) GetHexPixel(px, py int) (hexgeom.Hex, bool) {
	vx, vy := v.ToView(float64(px), float64(py))
	h := v.nearestHex(vx+float64(v.originX), vy+float64(v.originY))
	return h, v.InGrid(h)
}

// nearestHex returns the hex whose center is closest to world pixel (wx, wy)
func (v *Viewport) nearestHex(wx, wy float64) hexgeom.Hex {
	half := float64(v.cfg.HexWidth / 2)
	lh := float64(v.cfg.HexLineHeight)
	// scale y so the six lattice neighbors are equidistant
	ys := math.Sqrt(3) / 2 * float64(v.cfg.HexWidth) / lh

	r0 := int(math.Floor(wy / lh))
	c0 := int(math.Floor(wx / half))
	best := hexgeom.Hex{}
	bestD := math.Inf(1)
	for r := r0 - 1; r <= r0+2; r++ {
		for c := c0 - 2; c <= c0+3; c++ {
			if (r-c)&1 != 0 {
				continue
			}
			dx := float64(c)*half - wx
			dy := (float64(r)*lh - wy) * ys
			if d := dx*dx + dy*dy; d < bestD {
				x := (r - c) / 2
				best, bestD = hexgeom.Hex{X: x, Y: r - (x >> 1)}, d
			}
		}
	}
	return best
}

// GetHexesRect returns the in-grid view hexes whose centers fall inside a screen rectangle
func (v *Viewport) GetHexesRect(x1, y1, x2, y2 int) []hexgeom.Hex {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	var out []hexgeom.Hex
	for _, f := range v.Fields {
		if !v.InGrid(f.Hex) {
			continue
		}
		sx, sy := v.ToScreen(float64(f.ScrX), float64(f.ScrY))
		if sx >= float64(x1) && sx <= float64(x2) && sy >= float64(y1) && sy <= float64(y2) {
			out = append(out, f.Hex)
		}
	}
	return out
}

// ChangeZoom steps the zoom: negative zooms in, positive out, zero resets to 1.
// It reports whether the zoom changed.
func (v *Viewport) ChangeZoom(step int) bool {
	old := v.Zoom
	switch {
	case step == 0:
		v.Zoom = 1
	default:
		z := v.Zoom + float64(step)*v.cfg.ZoomStep
		v.Zoom = math.Max(v.cfg.MinZoom, math.Min(v.cfg.MaxZoom, z))
		v.Zoom = math.Round(v.Zoom*1000) / 1000
	}
	if v.Zoom == old {
		return false
	}
	v.RebuildView()
	return true
}

// ScrollToHex starts an auto scroll that brings h to the view center.
// A zero speed jumps immediately.
func (v *Viewport) ScrollToHex(h hexgeom.Hex, speed float64, canStop bool) bool {
	if !v.InGrid(h) {
		return false
	}
	tx, ty := hexgeom.Pixel(h, v.cfg.HexWidth, v.cfg.HexLineHeight)
	cx, cy := v.centerWorld()
	return v.ScrollOffset(float64(tx)-cx, float64(ty)-cy, speed, canStop)
}

// ScrollOffset starts an auto scroll of the view center by (ox, oy) world pixels
func (v *Viewport) ScrollOffset(ox, oy, speed float64, canStop bool) bool {
	if speed <= 0 {
		v.AutoScroll.Active = false
		return v.moveCenter(ox, oy)
	}
	v.AutoScroll.Active = true
	v.AutoScroll.CanStop = canStop
	v.AutoScroll.OffsX = ox
	v.AutoScroll.OffsY = oy
	v.AutoScroll.Speed = speed
	return false
}

// StopScroll cancels any auto scroll
func (v *Viewport) StopScroll() { v.AutoScroll.Active = false }

// LockCritter follows a critter; hard keeps it centered every frame,
// soft scrolls to it whenever it changes hex. Zero clears the lock.
func (v *Viewport) LockCritter(id uint32, hard bool) {
	v.AutoScroll.HardLockedCritter, v.AutoScroll.SoftLockedCritter = 0, 0
	if id == 0 {
		return
	}
	if hard {
		v.AutoScroll.HardLockedCritter = id
	} else {
		v.AutoScroll.SoftLockedCritter = id
	}
	v.AutoScroll.CritterLastHex = hexgeom.Hex{X: -1, Y: -1}
}

// Scroll advances scrolling by dt seconds and reports whether the center hex
// changed, in which case the caller must rebuild the map sprites
func (v *Viewport) Scroll(dt float64, in ScrollInput) bool {
	changed := false
	if lock := v.AutoScroll.HardLockedCritter; lock != 0 && v.critterHex != nil {
		if h, ok := v.critterHex(lock); ok {
			cx, cy := v.centerWorld()
			tx, ty := hexgeom.Pixel(h, v.cfg.HexWidth, v.cfg.HexLineHeight)
			if float64(tx) != cx || float64(ty) != cy {
				changed = v.moveCenter(float64(tx)-cx, float64(ty)-cy) || changed
			}
			return changed
		}
	}
	if lock := v.AutoScroll.SoftLockedCritter; lock != 0 && v.critterHex != nil {
		if h, ok := v.critterHex(lock); ok && h != v.AutoScroll.CritterLastHex {
			v.AutoScroll.CritterLastHex = h
			v.ScrollToHex(h, v.cfg.ScrollSpeed, true)
		}
	}

	if v.AutoScroll.Active {
		if v.AutoScroll.CanStop && in.Any() {
			v.AutoScroll.Active = false
		} else {
			a := &v.AutoScroll
			step := a.Speed * dt
			dist := math.Hypot(a.OffsX, a.OffsY)
			dx, dy := a.OffsX, a.OffsY
			if dist > step && dist > 0 {
				dx, dy = a.OffsX/dist*step, a.OffsY/dist*step
			}
			a.OffsX -= dx
			a.OffsY -= dy
			if math.Abs(a.OffsX) < 0.5 && math.Abs(a.OffsY) < 0.5 {
				a.Active = false
			}
			ok := v.moveCenter(dx, dy)
			return ok || changed
		}
	}

	if !in.Any() {
		return changed
	}
	step := v.cfg.ScrollSpeed * dt * v.Zoom
	var dx, dy float64
	if in.Left {
		dx -= step
	}
	if in.Right {
		dx += step
	}
	if in.Up {
		dy -= step
	}
	if in.Down {
		dy += step
	}
	return v.moveCenter(dx, dy) || changed
}

// FindSetCenter centers the view on (cx, cy), pulling the center inside the
// grid and off scroll-blocked hexes
func (v *Viewport) FindSetCenter(cx, cy int) {
	h := hexgeom.Hex{X: clampInt(cx, 0, v.gridW-1), Y: clampInt(cy, 0, v.gridH-1)}
	if !v.canCenter(h) {
		h = v.nearestScrollable(h)
	}
	v.InitView(h.X, h.Y)
}

func (v *Viewport) nearestScrollable(h hexgeom.Hex) hexgeom.Hex {
	maxR := v.gridW + v.gridH
	for r := 1; r <= maxR; r++ {
		for _, n := range hexgeom.Ring(h, r) {
			if v.canCenter(n) {
				return n
			}
		}
	}
	return h
}

func (v *Viewport) centerWorld() (float64, float64) {
	x, y := hexgeom.Pixel(v.Center, v.cfg.HexWidth, v.cfg.HexLineHeight)
	return float64(x) - v.ScrOx, float64(y) - v.ScrOy
}

func (v *Viewport) canCenter(h hexgeom.Hex) bool {
	if !v.InGrid(h) {
		return false
	}
	if v.cfg.ScrollCheck && v.scrollable != nil && !v.scrollable(h) {
		return false
	}
	return true
}

// moveCenter shifts the view center by world pixels. The center hex is the
// one nearest to the new center point; the rest stays in the scroll offset.
// Moves onto hexes that may not be centered are dropped and stop any auto scroll.
func (v *Viewport) moveCenter(dx, dy float64) bool {
	wx, wy := v.centerWorld()
	wx += dx
	wy += dy
	c := v.nearestHex(wx, wy)
	if c != v.Center && !v.canCenter(c) {
		v.ScrOx, v.ScrOy = 0, 0
		v.AutoScroll.Active = false
		return false
	}
	px, py := hexgeom.Pixel(c, v.cfg.HexWidth, v.cfg.HexLineHeight)
	v.ScrOx, v.ScrOy = float64(px)-wx, float64(py)-wy
	if c == v.Center {
		return false
	}
	v.Center = c
	v.RebuildView()
	return true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
