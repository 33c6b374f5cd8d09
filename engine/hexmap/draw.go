package hexmap

import (
	"math"
	"sort"

	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/1siamBot/hex-engine/engine/render"
)

const (
	contourRed    uint32 = 0xFF0000
	contourYellow uint32 = 0xFFFF00
)

// RefreshMap rebuilds the tile, roof and object trees for the current view.
// Call it after tile or visibility changes.
func (m *Manager) RefreshMap() {
	if m.fogDirty {
		m.updateFog()
	}
	m.RebuildTiles()
	m.RebuildRoof()
	m.RebuildMap()
}

// RebuildTiles rebuilds the ground tile tree
func (m *Manager) RebuildTiles() {
	m.rebuildTileTree(m.tiles, false)
	m.tilesDirty = false
}

// RebuildRoof rebuilds the roof tree
func (m *Manager) RebuildRoof() {
	m.rebuildTileTree(m.roofs, true)
}

func (m *Manager) rebuildTileTree(tree *render.DrawTree, roof bool) {
	tree.Unvalidate()
	if m.grid == nil {
		return
	}
	order, kind := render.DrawOrderTile, render.KindTile
	if roof {
		order, kind = render.DrawOrderRoof, render.KindRoof
	}
	for i := range m.view.Fields {
		vf := &m.view.Fields[i]
		if !m.grid.Contains(vf.Hex) || !m.hexShown(vf.Hex) {
			continue
		}
		f := m.grid.FieldAt(vf.Hex)
		tiles := f.Tiles
		if roof {
			tiles = f.Roofs
		}
		for _, t := range tiles {
			tree.Add(render.Sprite{
				Hex:   vf.Hex,
				ScrX:  vf.ScrX,
				ScrY:  vf.ScrY,
				OffsX: t.OffsX,
				OffsY: t.OffsY,
				SprID: m.anims.Get(t.Name).Frame(0),
				Alpha: 255,
				Order: order,
				Owner: render.EntityRef{Kind: kind},
			}, nil)
		}
	}
}

// RebuildMap rebuilds the object tree: a pass for flat sprites, a pass for
// the rest, then tall sprites inserted where their shifted row puts them
func (m *Manager) RebuildMap() {
	m.main.Unvalidate()
	m.tall = m.tall[:0]
	if m.fogDirty {
		m.updateFog()
	}
	m.mapDirty = false
	if m.grid == nil {
		return
	}
	for _, flat := range [2]bool{true, false} {
		for i := range m.view.Fields {
			vf := &m.view.Fields[i]
			if !m.grid.Contains(vf.Hex) || !m.hexShown(vf.Hex) {
				continue
			}
			m.addHexSprites(vf, flat, false)
		}
	}
	for _, p := range m.tall {
		m.main.Insert(p.s, p.chain)
	}
	m.tall = m.tall[:0]
}

// refreshHex replaces the sprites of one hex in the current frame
func (m *Manager) refreshHex(h hexgeom.Hex) {
	if m.grid == nil || !m.grid.Contains(h) {
		return
	}
	m.main.UnvalidateSpriteChain(&m.grid.FieldAt(h).Chain)
	vf, ok := m.viewField(h)
	if !ok || !m.hexShown(h) {
		return
	}
	m.addHexSprites(vf, true, true)
	m.addHexSprites(vf, false, true)
	for _, p := range m.tall {
		m.main.Insert(p.s, p.chain)
	}
	m.tall = m.tall[:0]
}

// viewField finds the view cell of h from the regular layout of the view
func (m *Manager) viewField(h hexgeom.Hex) (*render.ViewField, bool) {
	fields := m.view.Fields
	if len(fields) == 0 {
		return nil, false
	}
	x, y := m.view.HexViewPos(h)
	i := sort.Search(len(fields), func(i int) bool {
		f := &fields[i]
		return f.ScrY > y || (f.ScrY == y && f.ScrX >= x)
	})
	if i < len(fields) && fields[i].Hex == h {
		return &fields[i], true
	}
	return nil, false
}

// hexShown reports whether fog lets a hex be drawn
func (m *Manager) hexShown(h hexgeom.Hex) bool {
	if m.mapper || !m.cfg.ShowFog || m.chosenCritter() == nil {
		return true
	}
	return m.grid.FogAt(h.X, h.Y) != maplib.FogShroud
}

func (m *Manager) addHexSprites(vf *render.ViewField, flat, insert bool) {
	f := m.grid.FieldAt(vf.Hex)
	var batch [16]render.Sprite
	list := batch[:0]
	base := render.Sprite{Hex: vf.Hex, ScrX: vf.ScrX, ScrY: vf.ScrY, Alpha: 255}

	for _, ref := range f.Items {
		it, ok := m.items[ref.ID]
		if !ok || it.Proto.Flat != flat || m.isIgnored(it.Pid) {
			continue
		}
		s := base
		p := it.Proto
		s.OffsX, s.OffsY = p.OffsetX, p.OffsetY
		s.SprID = it.anim.Frame(0)
		s.Alpha = it.Alpha
		s.Order = itemOrder(p)
		s.RowShift = p.DrawOffsHy
		s.Egg = itemEgg(p)
		s.Owner = render.EntityRef{Kind: render.KindItem, ID: it.ID}
		if s.RowShift > 0 && !flat {
			m.tall = append(m.tall, pendingSprite{s: s, chain: &f.Chain})
			continue
		}
		list = append(list, s)
	}

	crits := f.DeadCrits
	if !flat {
		crits = nil
		if f.Crit != 0 {
			crits = []uint32{f.Crit}
		}
	}
	for _, id := range crits {
		c, ok := m.critters[id]
		if !ok || !m.critterShown(c) {
			continue
		}
		s := base
		s.SprID = c.anim.Frame(0)
		s.Alpha = c.Alpha
		s.Order = render.DrawOrderCritter
		if c.Dead {
			s.Order = render.DrawOrderDeadCritter
		}
		s.Contour, s.ContourColor = c.Contour, c.ContourColor
		s.Owner = render.EntityRef{Kind: render.KindCritter, ID: c.ID}
		list = append(list, s)
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	for _, s := range list {
		if insert {
			m.main.Insert(s, &f.Chain)
		} else {
			m.main.Add(s, &f.Chain)
		}
	}
}

func (m *Manager) critterShown(c *Critter) bool {
	if m.mapper || !m.cfg.ShowFog || c.ID == m.chosen || m.chosenCritter() == nil {
		return true
	}
	return m.grid.FogAt(c.Hex.X, c.Hex.Y) == maplib.FogVisible
}

func itemOrder(p *proto.Item) render.DrawOrder {
	switch {
	case p.Flat && p.IsScenery():
		return render.DrawOrderFlatScenery
	case p.Flat:
		return render.DrawOrderFlatItem
	case p.IsScenery():
		return render.DrawOrderScenery
	}
	return render.DrawOrderItem
}

func itemEgg(p *proto.Item) render.EggType {
	switch {
	case p.Flat || p.DisableEgg:
		return render.EggNone
	case p.IsWall():
		return render.EggForCorner(p.Corner)
	}
	return render.EggAlways
}

// SpriteOwnerState resolves the live frame, offset and alpha of a sprite owner
func (m *Manager) SpriteOwnerState(ref render.EntityRef) (render.OwnerState, bool) {
	tick := m.clock.TickMs()
	switch ref.Kind {
	case render.KindCritter:
		c, ok := m.critters[ref.ID]
		if !ok {
			return render.OwnerState{}, false
		}
		return render.OwnerState{SprID: c.anim.Frame(tick), OffsX: c.OffsX, OffsY: c.OffsY, Alpha: c.Alpha}, true
	case render.KindItem:
		it, ok := m.items[ref.ID]
		if !ok {
			return render.OwnerState{}, false
		}
		return render.OwnerState{SprID: it.anim.Frame(tick), Alpha: it.Alpha}, true
	}
	return render.OwnerState{}, false
}

// spriteRect resolves a sprite to its frame and top-left view pixel
func (m *Manager) spriteRect(s *render.Sprite) (render.OwnerState, render.SpriteInfo, int, int, bool) {
	st := render.OwnerState{SprID: s.SprID, Alpha: s.Alpha}
	if live, ok := m.SpriteOwnerState(s.Owner); ok {
		st = live
	}
	info, ok := m.sprites.SpriteInfo(st.SprID)
	if !ok {
		return st, info, 0, 0, false
	}
	x := s.ScrX + s.OffsX + st.OffsX + info.OffsX - info.Width/2
	y := s.ScrY + s.OffsY + st.OffsY + info.OffsY
	if s.Order == render.DrawOrderTile || s.Order == render.DrawOrderRoof {
		y -= info.Height / 2
	} else {
		y -= info.Height
	}
	return st, info, x, y, true
}

// DrawMap draws one frame: tiles, the light overlay, overlays, objects and roofs
func (m *Manager) DrawMap() {
	if m.grid == nil || m.sprites == nil {
		return
	}
	if m.fogDirty {
		m.updateFog()
	}
	if m.tilesDirty {
		m.RebuildTiles()
		m.RebuildRoof()
	}
	if m.mapDirty {
		m.RebuildMap()
	} else {
		m.main.Compact()
	}
	if m.cfg.LightEnabled && m.light.Process() {
		m.emit(core.EvtLightRebuilt, 0, hexgeom.Hex{}, nil)
	}
	m.updateEgg()

	m.tiles.Each(func(_ int, s *render.Sprite) bool {
		m.drawSprite(s, false)
		return true
	})
	if m.cfg.LightEnabled {
		points := m.light.PrepareToDraw(m.hexPoints(), m.ambient, m.cfg.HexWidth)
		m.sprites.DrawPoints(points, m.view.Zoom)
	}
	m.drawOverlays()
	m.main.Each(func(_ int, s *render.Sprite) bool {
		m.drawSprite(s, m.cfg.LightEnabled)
		return true
	})
	if m.cfg.ShowRoof {
		m.roofs.Each(func(_ int, s *render.Sprite) bool {
			if m.skipRoof == 0 || m.grid.FieldAt(s.Hex).RoofNum != m.skipRoof {
				m.drawSprite(s, false)
			}
			return true
		})
	}
}

func (m *Manager) drawSprite(s *render.Sprite, lit bool) {
	st, info, x, y, ok := m.spriteRect(s)
	if !ok {
		return
	}
	alpha := st.Alpha
	if m.egg.Applies(s, x, y, info.Width, info.Height) {
		alpha = m.egg.FadeAlpha(alpha)
	}
	s.Light = [3]uint8{255, 255, 255}
	if lit {
		r, g, b := m.light.Light(s.Hex.X, s.Hex.Y)
		s.Light = [3]uint8{add8(m.ambient.R, r), add8(m.ambient.G, g), add8(m.ambient.B, b)}
	}
	sx, sy := m.view.ToScreen(float64(x), float64(y))
	if s.Contour != render.ContourNone {
		m.sprites.DrawContour(st.SprID, sx, sy, m.view.Zoom, contourColor(s))
	}
	m.sprites.DrawSprite(st.SprID, sx, sy, render.DrawOptions{
		Alpha: alpha,
		R:     s.Light[0],
		G:     s.Light[1],
		B:     s.Light[2],
		Zoom:  m.view.Zoom,
	})
}

func contourColor(s *render.Sprite) uint32 {
	switch s.Contour {
	case render.ContourRed:
		return contourRed
	case render.ContourYellow:
		return contourYellow
	}
	return s.ContourColor
}

func add8(a, b uint8) uint8 {
	if v := int(a) + int(b); v < 255 {
		return uint8(v)
	}
	return 255
}

// hexPoints lists the visible in-grid hexes at their screen positions
func (m *Manager) hexPoints() []light.HexPoint {
	out := make([]light.HexPoint, 0, len(m.view.Fields))
	for _, vf := range m.view.Fields {
		if !m.grid.Contains(vf.Hex) || !m.hexShown(vf.Hex) {
			continue
		}
		x, y := m.view.ToScreen(float64(vf.ScrX), float64(vf.ScrY))
		out = append(out, light.HexPoint{Hex: vf.Hex, X: float32(x), Y: float32(y)})
	}
	return out
}

// drawOverlays marks track hexes and the cursor with the stub frame
func (m *Manager) drawOverlays() {
	stub := m.anims.Stub().Frame(0)
	if m.cfg.ShowTrack {
		for _, vf := range m.view.Fields {
			if !m.grid.Contains(vf.Hex) {
				continue
			}
			switch m.grid.TrackAt(vf.Hex.X, vf.Hex.Y) {
			case maplib.TrackFull:
				m.drawMarker(stub, vf.Hex, 0, 255, 0)
			case maplib.TrackHalf:
				m.drawMarker(stub, vf.Hex, 255, 255, 0)
			}
		}
	}
	if m.cursorOK {
		if m.cursorSteps < 0 {
			m.drawMarker(stub, m.cursor, 255, 64, 64)
		} else {
			m.drawMarker(stub, m.cursor, 255, 255, 255)
		}
	}
}

func (m *Manager) drawMarker(id render.SpriteID, h hexgeom.Hex, r, g, b uint8) {
	s := render.Sprite{Hex: h, SprID: id, Alpha: 128, Order: render.DrawOrderTile}
	s.ScrX, s.ScrY = m.view.HexViewPos(h)
	st, _, x, y, ok := m.spriteRect(&s)
	if !ok {
		return
	}
	sx, sy := m.view.ToScreen(float64(x), float64(y))
	m.sprites.DrawSprite(st.SprID, sx, sy, render.DrawOptions{Alpha: s.Alpha, R: r, G: g, B: b, Zoom: m.view.Zoom})
}

// updateEgg places the egg over the chosen critter
func (m *Manager) updateEgg() {
	c := m.chosenCritter()
	if m.mapper || c == nil || c.Dead {
		m.egg.Reset()
		return
	}
	x, y := m.view.HexViewPos(c.Hex)
	m.egg.Set(c.Hex, x+c.OffsX, y+c.OffsY-m.egg.Height/2)
}

// Egg returns the current egg state
func (m *Manager) Egg() render.Egg { return m.egg }

// DrawTree returns the object tree of the current frame
func (m *Manager) DrawTree() *render.DrawTree { return m.main }

// GetItemPixel returns the item drawn at screen pixel (px, py)
func (m *Manager) GetItemPixel(px, py int) (*Item, bool) {
	if m.grid == nil {
		return nil, false
	}
	if m.mapper && m.fastPids.Size() > 0 {
		if h, ok := m.view.GetHexPixel(px, py); ok {
			f := m.grid.FieldAt(h)
			for i := len(f.Items) - 1; i >= 0; i-- {
				if it, ok := m.items[f.Items[i].ID]; ok && m.fastPids.Has(it.Pid) && !m.isIgnored(it.Pid) {
					return it, true
				}
			}
		}
	}
	id, ok := m.pickSprite(px, py, render.KindItem, func(id uint32) bool {
		it, ok := m.items[id]
		return ok && (m.mapper || !it.Proto.NoHighlight)
	})
	if !ok {
		return nil, false
	}
	return m.items[id], true
}

// GetCritterPixel returns the critter drawn at screen pixel (px, py).
// Live critters win over corpses under the same pixel.
func (m *Manager) GetCritterPixel(px, py int, ignoreDead bool) (*Critter, bool) {
	if m.grid == nil {
		return nil, false
	}
	for _, wantDead := range [2]bool{false, true} {
		if wantDead && ignoreDead {
			break
		}
		id, ok := m.pickSprite(px, py, render.KindCritter, func(id uint32) bool {
			c, ok := m.critters[id]
			return ok && c.Dead == wantDead
		})
		if ok {
			return m.critters[id], true
		}
	}
	return nil, false
}

// pickSprite walks the tree front to back for the first opaque pixel of an accepted owner
func (m *Manager) pickSprite(px, py int, kind render.EntityKind, accept func(id uint32) bool) (uint32, bool) {
	fx, fy := m.view.ToView(float64(px), float64(py))
	vx, vy := int(math.Floor(fx)), int(math.Floor(fy))
	var found uint32
	m.main.EachReverse(func(_ int, s *render.Sprite) bool {
		if s.Owner.Kind != kind || !accept(s.Owner.ID) {
			return true
		}
		st, info, x, y, ok := m.spriteRect(s)
		if !ok {
			return true
		}
		ix, iy := vx-x, vy-y
		if ix < 0 || iy < 0 || ix >= info.Width || iy >= info.Height {
			return true
		}
		if m.egg.Applies(s, x, y, info.Width, info.Height) && m.egg.IsEggTransp(vx, vy) {
			return true
		}
		if !m.sprites.IsPixNoTransp(st.SprID, ix, iy) {
			return true
		}
		found = s.Owner.ID
		return false
	})
	return found, found != 0
}

// SetCritterContour outlines one critter
func (m *Manager) SetCritterContour(id uint32, contour render.ContourType, color uint32) bool {
	c, ok := m.critters[id]
	if !ok {
		return false
	}
	c.Contour, c.ContourColor = contour, color
	if m.grid != nil && c.onMap {
		ref := render.EntityRef{Kind: render.KindCritter, ID: id}
		for _, idx := range m.main.ChainSprites(&m.grid.FieldAt(c.Hex).Chain) {
			if s := m.main.Sprite(idx); s.Owner == ref {
				s.Contour, s.ContourColor = contour, color
			}
		}
	}
	return true
}

// SetCrittersContour outlines every live critter except the chosen one
func (m *Manager) SetCrittersContour(contour render.ContourType) {
	for _, c := range m.critters {
		if c.ID != m.chosen && !c.Dead {
			m.SetCritterContour(c.ID, contour, c.ContourColor)
		}
	}
}
