package light

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/sirupsen/logrus"
)

// Engine keeps the per-hex RGB light buffer of a grid up to date.
//
// Mutations only request work: RebuildLight and RebuildLightAround mark the
// buffer dirty, Process recomputes it at most once per frame. A second flag
// tracks whether the draw-side points need refreshing, which also happens
// when a followed sprite moves without the buffer changing.
type Engine struct {
	grid    *maplib.Grid
	collect Collector
	follow  FollowResolver
	maxDist int

	buf   []uint8 // 3 bytes per hex, row-major
	accum []int32

	rebuildRequested bool
	renderRequested  bool
	fullRebuild      bool
	dirty            Box

	sources  []Source // every active source, for glows and follow tracking
	inBox    []Source // sources touching the box being rebuilt
	lastOffs map[uint32][2]int
	points   []PrepPoint
}

// NewEngine creates a light engine for grid. maxDist bounds the radius of any
// source and sizes partial rebuilds.
func NewEngine(grid *maplib.Grid, collect Collector, maxDist int) *Engine {
	e := &Engine{
		collect:  collect,
		maxDist:  maxDist,
		lastOffs: make(map[uint32][2]int),
	}
	e.Reset(grid)
	return e
}

// SetFollowResolver installs the lookup used for follow handles
func (e *Engine) SetFollowResolver(f FollowResolver) { e.follow = f }

// Reset binds the engine to a new grid, dropping the old buffer
func (e *Engine) Reset(grid *maplib.Grid) {
	e.grid = grid
	e.buf = nil
	e.sources = e.sources[:0]
	e.inBox = e.inBox[:0]
	e.points = e.points[:0]
	for k := range e.lastOffs {
		delete(e.lastOffs, k)
	}
	if grid != nil {
		e.buf = make([]uint8, 3*grid.Width*grid.Height)
		e.RebuildLight()
	}
}

// Buffer returns the raw light buffer. It is replaced on Reset.
func (e *Engine) Buffer() []uint8 { return e.buf }

// Light returns the light at (hx, hy). Coordinates are not checked.
func (e *Engine) Light(hx, hy int) (r, g, b uint8) {
	i := (hy*e.grid.Width + hx) * 3
	return e.buf[i], e.buf[i+1], e.buf[i+2]
}

// RebuildLight requests a full recompute and a render refresh
func (e *Engine) RebuildLight() {
	e.rebuildRequested = true
	e.renderRequested = true
	e.fullRebuild = true
}

// RebuildLightAround requests a recompute of the area a change at h can affect
func (e *Engine) RebuildLightAround(h hexgeom.Hex) {
	r := e.maxDist + 1
	box := Box{h.X - r, h.Y - r, h.X + r, h.Y + r}
	if e.rebuildRequested && !e.fullRebuild {
		e.dirty = e.dirty.Union(box)
	} else if !e.rebuildRequested {
		e.dirty = box
	}
	e.rebuildRequested = true
	e.renderRequested = true
}

// RequestRender asks for the draw points to be rebuilt without touching the buffer
func (e *Engine) RequestRender() { e.renderRequested = true }

// RebuildRequested reports whether a recompute is pending
func (e *Engine) RebuildRequested() bool { return e.rebuildRequested }

// RenderRequested reports whether the draw points are stale
func (e *Engine) RenderRequested() bool { return e.renderRequested }

// Sources returns the sources gathered by the last recompute
func (e *Engine) Sources() []Source { return e.sources }

// Process performs pending work and reports whether the buffer was recomputed
func (e *Engine) Process() bool {
	if e.grid == nil {
		return false
	}
	e.checkFollowers()
	if !e.rebuildRequested {
		return false
	}
	box := Box{0, 0, e.grid.Width - 1, e.grid.Height - 1}
	if !e.fullRebuild {
		box = e.dirty.Clip(e.grid.Width, e.grid.Height)
	}
	e.rebuildRequested = false
	e.fullRebuild = false
	if box.Empty() {
		return false
	}

	e.collectLightSources(box)
	t := e.traceLight(box)

	logger.Log.WithFields(logrus.Fields{
		"component": "light",
		"sources":   len(e.inBox),
		"box":       box,
		"steps":     t.steps,
		"ends":      t.ends,
	}).Debug("light rebuilt")
	return true
}

// collectLightSources gathers the active sources and keeps aside those whose radius touches box
func (e *Engine) collectLightSources(box Box) {
	e.sources = e.sources[:0]
	e.inBox = e.inBox[:0]
	if e.collect == nil {
		return
	}
	e.sources = e.collect.LightSources(e.sources)
	active := e.sources[:0]
	for _, s := range e.sources {
		if s.Distance > e.maxDist {
			s.Distance = e.maxDist
		}
		if !s.Active() {
			continue
		}
		active = append(active, s)
		if s.Reaches(box) {
			e.inBox = append(e.inBox, s)
		}
	}
	e.sources = active
	// a rebuild already refreshes rendering, so start followers from their current offset
	if e.follow != nil {
		for _, s := range e.sources {
			if s.Follow == 0 {
				continue
			}
			if x, y, ok := e.follow.FollowOffset(s.Follow); ok {
				e.lastOffs[s.Follow] = [2]int{x, y}
			}
		}
	}
}

// traceLight sums every collected source over box, then clamps into the buffer
func (e *Engine) traceLight(box Box) *tracer {
	n := box.width() * (box.MaxY - box.MinY + 1) * 3
	if cap(e.accum) < n {
		e.accum = make([]int32, n)
	}
	e.accum = e.accum[:n]
	for i := range e.accum {
		e.accum[i] = 0
	}
	t := &tracer{grid: e.grid, box: box, accum: e.accum}
	for i := range e.inBox {
		t.traceSource(&e.inBox[i])
	}

	w := box.width()
	for y := box.MinY; y <= box.MaxY; y++ {
		for x := box.MinX; x <= box.MaxX; x++ {
			ai := ((y-box.MinY)*w + (x - box.MinX)) * 3
			bi := (y*e.grid.Width + x) * 3
			for ch := 0; ch < 3; ch++ {
				e.buf[bi+ch] = clamp8(e.accum[ai+ch])
			}
		}
	}
	return t
}

// checkFollowers requests a render refresh when a followed sprite moved
func (e *Engine) checkFollowers() {
	if e.follow == nil {
		return
	}
	for i := range e.sources {
		s := &e.sources[i]
		if s.Follow == 0 {
			continue
		}
		x, y, ok := e.follow.FollowOffset(s.Follow)
		if !ok {
			continue
		}
		if last, seen := e.lastOffs[s.Follow]; !seen || last != [2]int{x, y} {
			e.lastOffs[s.Follow] = [2]int{x, y}
			e.renderRequested = true
		}
	}
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
