package hexmap

import (
	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/render"
)

// viewChanged rebuilds the trees after the visible window moved
func (m *Manager) viewChanged() {
	m.light.RequestRender()
	if m.grid == nil {
		return
	}
	m.RefreshMap()
	m.emit(core.EvtViewChanged, 0, m.view.Center, m.view.Zoom)
}

// ChangeZoom steps the zoom, see render.Viewport.ChangeZoom
func (m *Manager) ChangeZoom(step int) bool {
	if !m.view.ChangeZoom(step) {
		return false
	}
	m.viewChanged()
	return true
}

// ResizeView changes the screen size
func (m *Manager) ResizeView(w, h int) {
	m.view.ResizeView(w, h)
	m.viewChanged()
}

// FindSetCenter centers the view near (hx, hy)
func (m *Manager) FindSetCenter(hx, hy int) {
	if m.grid == nil {
		return
	}
	m.view.FindSetCenter(hx, hy)
	m.viewChanged()
}

// ScrollToHex scrolls the view onto (hx, hy). A zero speed jumps at once.
func (m *Manager) ScrollToHex(hx, hy int, speed float64, canStop bool) bool {
	if m.grid == nil {
		return false
	}
	moved := m.view.ScrollToHex(hexgeom.Hex{X: hx, Y: hy}, speed, canStop)
	if moved {
		m.viewChanged()
	} else {
		m.light.RequestRender()
	}
	return moved
}

// ScrollOffset moves the view center by (ox, oy) world pixels
func (m *Manager) ScrollOffset(ox, oy, speed float64, canStop bool) bool {
	if m.grid == nil {
		return false
	}
	moved := m.view.ScrollOffset(ox, oy, speed, canStop)
	if moved {
		m.viewChanged()
	} else {
		m.light.RequestRender()
	}
	return moved
}

// Scroll advances keyboard, auto and lock scrolling by dt seconds
func (m *Manager) Scroll(dt float64, in render.ScrollInput) bool {
	if m.grid == nil {
		return false
	}
	ox, oy := m.view.ScrOx, m.view.ScrOy
	if m.view.Scroll(dt, in) {
		m.viewChanged()
		return true
	}
	if ox != m.view.ScrOx || oy != m.view.ScrOy {
		m.light.RequestRender()
	}
	return false
}

// LockScroll keeps the view on a critter, zero unlocks
func (m *Manager) LockScroll(id uint32, hard bool) { m.view.LockCritter(id, hard) }

// GetHexPixel returns the hex under screen pixel (px, py)
func (m *Manager) GetHexPixel(px, py int) (hexgeom.Hex, bool) {
	if m.grid == nil {
		return hexgeom.Hex{}, false
	}
	h, ok := m.view.GetHexPixel(px, py)
	return h, ok && m.grid.Contains(h)
}

// GetHexesRect returns the in-grid hexes whose centers fall in the screen rectangle
func (m *Manager) GetHexesRect(x1, y1, x2, y2 int) []hexgeom.Hex {
	if m.grid == nil {
		return nil
	}
	return m.view.GetHexesRect(x1, y1, x2, y2)
}

// SetChosen makes id the player critter: the egg and fog follow it and its
// roof group is hidden. Zero clears the choice.
func (m *Manager) SetChosen(id uint32) bool {
	if id != 0 {
		if _, ok := m.critters[id]; !ok {
			return false
		}
	}
	m.chosen = id
	m.fogDirty = true
	m.mapDirty = true
	if c := m.chosenCritter(); c != nil {
		m.SetSkipRoof(c.Hex)
	} else {
		m.egg.Reset()
		m.SetSkipRoof(hexgeom.Hex{X: -1, Y: -1})
	}
	return true
}

// Chosen returns the chosen critter id
func (m *Manager) Chosen() uint32 { return m.chosen }
