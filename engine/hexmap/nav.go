package hexmap

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/trace"
)

// fillRequest takes the footprint from the mover when the caller left it out
func (m *Manager) fillRequest(req *pathfind.Request) {
	if req.Critter == 0 || req.Multihex != 0 {
		return
	}
	if c, ok := m.critters[req.Critter]; ok {
		req.Multihex = c.Multihex()
	}
}

// FindPath returns the steps from req.From to req.To
func (m *Manager) FindPath(req pathfind.Request) ([]hexgeom.Dir, bool) {
	if m.grid == nil {
		return nil, false
	}
	m.fillRequest(&req)
	return m.finder.FindPath(req)
}

// CutPath finds a path that stops cut hexes short of req.To
func (m *Manager) CutPath(req pathfind.Request, cut int) (pathfind.Result, bool) {
	if m.grid == nil {
		return pathfind.Result{}, false
	}
	m.fillRequest(&req)
	return m.finder.CutPath(req, cut)
}

// TraceBullet traces a projectile line over the loaded map
func (m *Manager) TraceBullet(req trace.Request) (trace.Result, bool) {
	if m.grid == nil {
		return trace.Result{}, false
	}
	return m.tracer.TraceBullet(req), true
}

// chosenCritter returns the chosen critter when it stands on the map
func (m *Manager) chosenCritter() *Critter {
	if m.chosen == 0 {
		return nil
	}
	c, ok := m.critters[m.chosen]
	if !ok || !c.onMap {
		return nil
	}
	return c
}

// updateFog recomputes what the chosen critter sees. Hexes seen before
// stay explored.
func (m *Manager) updateFog() {
	m.fogDirty = false
	c := m.chosenCritter()
	if m.grid == nil || m.mapper || !m.cfg.ShowFog || c == nil {
		return
	}
	look := m.cfg.CritterLook
	if c.Proto != nil && c.Proto.Look > 0 {
		look = c.Proto.Look
	}
	m.grid.DemoteFog()
	m.grid.RevealFog(c.Hex.X, c.Hex.Y)
	for r := 1; r <= look; r++ {
		for _, h := range hexgeom.Ring(c.Hex, r) {
			if m.grid.Contains(h) && m.tracer.LineOfSight(c.Hex, h) {
				m.grid.RevealFog(h.X, h.Y)
			}
		}
	}
	m.tilesDirty = true
	m.mapDirty = true
	m.light.RequestRender()
}

// SwitchShowFog toggles fog of war and returns the new state
func (m *Manager) SwitchShowFog() bool {
	m.cfg.ShowFog = !m.cfg.ShowFog
	m.fogDirty = true
	m.tilesDirty = true
	m.mapDirty = true
	m.light.RequestRender()
	return m.cfg.ShowFog
}

// GetHexTrack returns the track mark of a hex
func (m *Manager) GetHexTrack(hx, hy int) maplib.TrackType {
	if m.grid == nil || !m.grid.InBounds(hx, hy) {
		return maplib.TrackNone
	}
	return m.grid.TrackAt(hx, hy)
}

// SetHexTrack marks a hex in the track overlay
func (m *Manager) SetHexTrack(hx, hy int, t maplib.TrackType) {
	if m.grid != nil && m.grid.InBounds(hx, hy) {
		m.grid.SetTrack(hx, hy, t)
	}
}

// ClearHexTrack wipes the track overlay
func (m *Manager) ClearHexTrack() {
	if m.grid != nil {
		m.grid.ClearTrack()
	}
}

// SwitchShowTrack toggles the track overlay and reports the new state
func (m *Manager) SwitchShowTrack() bool {
	m.cfg.ShowTrack = !m.cfg.ShowTrack
	return m.cfg.ShowTrack
}

// MarkPassedHexes fills the track overlay with the reach of the chosen
// critter: reachable hexes are full, blocked hexes on the border half.
// It returns the number of reachable hexes.
func (m *Manager) MarkPassedHexes() int {
	c := m.chosenCritter()
	if m.grid == nil || c == nil {
		return 0
	}
	m.grid.ClearTrack()
	ng := pathfind.NewNavGrid(m.grid, c.ID, c.Multihex())
	rf := pathfind.NewReachField(ng, c.Hex, m.cfg.MaxFindPath)
	for y := 0; y < m.grid.Height; y++ {
		for x := 0; x < m.grid.Width; x++ {
			if !rf.Reachable(x, y) {
				continue
			}
			m.grid.SetTrack(x, y, maplib.TrackFull)
			for _, n := range (hexgeom.Hex{X: x, Y: y}).Neighbors() {
				if m.grid.Contains(n) && !rf.Reachable(n.X, n.Y) {
					m.grid.SetTrack(n.X, n.Y, maplib.TrackHalf)
				}
			}
		}
	}
	m.cfg.ShowTrack = true
	return rf.Count()
}

// SetCursorPos moves the hex cursor under screen pixel (px, py). With
// showSteps the path length from the chosen critter is kept, -1 when no
// path exists.
func (m *Manager) SetCursorPos(px, py int, showSteps bool) (hexgeom.Hex, bool) {
	m.cursorOK = false
	m.cursorSteps = 0
	if m.grid == nil {
		return hexgeom.Hex{}, false
	}
	h, ok := m.view.GetHexPixel(px, py)
	if !ok || !m.grid.Contains(h) {
		return hexgeom.Hex{}, false
	}
	m.cursor, m.cursorOK = h, true
	if c := m.chosenCritter(); showSteps && c != nil && !c.Dead {
		steps, found := m.FindPath(pathfind.Request{Critter: c.ID, From: c.Hex, To: h})
		if found {
			m.cursorSteps = len(steps)
		} else {
			m.cursorSteps = -1
		}
	}
	return h, true
}

// Cursor returns the cursor hex and the step count of the last SetCursorPos
func (m *Manager) Cursor() (h hexgeom.Hex, steps int, ok bool) {
	return m.cursor, m.cursorSteps, m.cursorOK
}
