package hexmap

import (
	"testing"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/1siamBot/hex-engine/engine/trace"
)

func TestFindPath(t *testing.T) {
	m, _ := loadTestMap(t)
	from, to := hexgeom.Hex{X: 10, Y: 10}, hexgeom.Hex{X: 4, Y: 6}
	steps, ok := m.FindPath(pathfind.Request{Critter: 1, From: from, To: to})
	if !ok {
		t.Fatal("no path")
	}
	for _, h := range pathfind.StepHexes(from, steps) {
		if m.GetField(h.X, h.Y).IsNotPassed() {
			t.Fatalf("path crosses blocked hex %v", h)
		}
	}
	if end := pathfind.ApplySteps(from, steps); end != to {
		t.Errorf("path ends at %v", end)
	}

	if _, ok := m.FindPath(pathfind.Request{Critter: 1, From: from, To: hexgeom.Hex{X: 5, Y: 5}}); ok {
		t.Error("path onto a wall")
	}
	res, ok := m.CutPath(pathfind.Request{Critter: 1, From: from, To: hexgeom.Hex{X: 5, Y: 5}}, 1)
	if !ok || hexgeom.Distance(res.End, hexgeom.Hex{X: 5, Y: 5}) != 1 {
		t.Errorf("cut path ends at %v, ok %v", res.End, ok)
	}

	// the brahmin cannot squeeze next to the human
	near := hexgeom.Hex{X: 10, Y: 10}.Step(hexgeom.DirRight)
	if _, ok := m.FindPath(pathfind.Request{Critter: 2, From: hexgeom.Hex{X: 20, Y: 20}, To: near}); ok {
		t.Error("multihex critter pathed into an occupied footprint")
	}

	empty, _ := newTestManager(t)
	if _, ok := empty.FindPath(pathfind.Request{From: from, To: to}); ok {
		t.Error("path without a map")
	}
}

func TestTraceBullet(t *testing.T) {
	m, _ := loadTestMap(t)
	from := hexgeom.Hex{X: 10, Y: 10}
	first := from.Step(hexgeom.DirRight)
	wall := first.Step(hexgeom.DirRight)
	target := wall.Step(hexgeom.DirRight)
	if _, err := m.AddItem(maplib.ItemEntry{ID: 30, Pid: pidWall, X: wall.X, Y: wall.Y}); err != nil {
		t.Fatal(err)
	}
	res, ok := m.TraceBullet(trace.Request{From: from, To: target, CheckPassed: true})
	if !ok || !res.Blocked || res.Block != wall || res.PreBlock != first {
		t.Errorf("trace %+v", res)
	}
	res, _ = m.TraceBullet(trace.Request{From: from, To: target})
	if res.Blocked || res.Block != target {
		t.Errorf("unchecked trace stopped at %v", res.Block)
	}
}

func TestMarkPassedHexes(t *testing.T) {
	m, _ := loadTestMap(t)
	if m.MarkPassedHexes() != 0 {
		t.Error("marked hexes without a chosen critter")
	}
	m.SetChosen(1)
	m.Settings().ShowTrack = false
	n := m.MarkPassedHexes()
	if n == 0 || !m.Settings().ShowTrack {
		t.Fatalf("marked %d hexes", n)
	}
	if m.GetHexTrack(10, 10) != maplib.TrackFull {
		t.Error("critter hex not reachable")
	}
	if m.GetHexTrack(5, 5) != maplib.TrackHalf {
		t.Error("wall next to the reach not half marked")
	}
	edge := hexgeom.Hex{X: 20, Y: 20}.Step(hexgeom.DirLeft)
	if m.GetHexTrack(edge.X, edge.Y) != maplib.TrackHalf || m.GetHexTrack(20, 20) != maplib.TrackNone {
		t.Error("brahmin footprint should border the reach")
	}
	m.ClearHexTrack()
	m.SetHexTrack(3, 4, maplib.TrackFull)
	if m.GetHexTrack(3, 4) != maplib.TrackFull || m.GetHexTrack(10, 10) != maplib.TrackNone {
		t.Error("track not reset")
	}
	if m.GetHexTrack(-1, 4) != maplib.TrackNone {
		t.Error("out of bounds track")
	}
	if m.SwitchShowTrack() {
		t.Error("track overlay still shown")
	}
}

func TestMoveCritter(t *testing.T) {
	m, _ := loadTestMap(t)
	start := hexgeom.Hex{X: 10, Y: 10}
	mid := start.Step(hexgeom.DirRight)
	end := mid.Step(hexgeom.DirRight)
	if err := m.MoveCritter(1, []hexgeom.Dir{hexgeom.DirRight, hexgeom.DirRight}); err != nil {
		t.Fatal(err)
	}
	c, _ := m.GetCritter(1)

	m.ProcessMoves(0.1) // half of a 200ms step
	if c.Hex != start || c.OffsX != 16 || c.OffsY != 0 {
		t.Fatalf("after 100ms: hex %v offset %d,%d", c.Hex, c.OffsX, c.OffsY)
	}
	m.ProcessMoves(0.2)
	if c.Hex != mid || c.OffsX != 16 {
		t.Fatalf("after 300ms: hex %v offset %d", c.Hex, c.OffsX)
	}
	m.ProcessMoves(1)
	if c.Hex != end || c.Moving() || c.OffsX != 0 {
		t.Fatalf("walk not finished: hex %v moving %v", c.Hex, c.Moving())
	}

	blocker := end.Step(hexgeom.DirRight)
	if _, err := m.AddCritter(maplib.CritterEntry{ID: 3, Pid: pidHuman, X: blocker.X, Y: blocker.Y}); err != nil {
		t.Fatal(err)
	}
	m.MoveCritter(1, []hexgeom.Dir{hexgeom.DirRight})
	m.ProcessMoves(1)
	if c.Hex != end || c.Moving() {
		t.Errorf("walked into a critter: %v", c.Hex)
	}

	if err := m.MoveCritter(99, nil); err == nil {
		t.Error("moving an unknown critter")
	}
	if err := m.MoveCritter(1, []hexgeom.Dir{hexgeom.DirNone}); err == nil {
		t.Error("bad step accepted")
	}
}

func TestRebuildMapOrder(t *testing.T) {
	pm := testMap()
	pm.Items = append(pm.Items, maplib.ItemEntry{ID: 12, Pid: pidRug, X: 10, Y: 10})
	m, _ := newTestManager(t)
	if err := m.LoadMap(pm); err != nil {
		t.Fatal(err)
	}
	var rug, human = -1, -1
	pos := 0
	m.DrawTree().Each(func(_ int, s *render.Sprite) bool {
		switch s.Owner {
		case render.EntityRef{Kind: render.KindItem, ID: 12}:
			rug = pos
		case render.EntityRef{Kind: render.KindCritter, ID: 1}:
			human = pos
		}
		pos++
		return true
	})
	if rug < 0 || human < 0 || rug > human {
		t.Errorf("rug at %d, human at %d", rug, human)
	}

	// a transit rebuilds only the touched hexes
	before := m.DrawTree().Len()
	m.TransitCritter(1, hexgeom.Hex{X: 10, Y: 10}.Step(hexgeom.DirDownLeft))
	found := false
	m.DrawTree().Each(func(_ int, s *render.Sprite) bool {
		if s.Owner.Kind == render.KindCritter && s.Owner.ID == 1 {
			if s.Hex != (hexgeom.Hex{X: 10, Y: 10}.Step(hexgeom.DirDownLeft)) {
				t.Errorf("critter sprite left on %v", s.Hex)
			}
			found = true
		}
		return true
	})
	if !found || !m.DrawTree().Sorted() || m.DrawTree().Len() < before {
		t.Errorf("tree after transit: found %v sorted %v", found, m.DrawTree().Sorted())
	}
}

func TestDrawMap(t *testing.T) {
	m, sprites := loadTestMap(t)
	m.SetCritterContour(1, render.ContourRed, 0)
	m.DrawMap()
	if sprites.sprites == 0 || sprites.points == 0 {
		t.Errorf("drew %d sprites and %d points", sprites.sprites, sprites.points)
	}
	if sprites.contours != 1 {
		t.Errorf("contours %d", sprites.contours)
	}
}

func TestGetCritterPixel(t *testing.T) {
	m, _ := loadTestMap(t)
	v := m.Viewport()
	x, y := v.HexViewPos(hexgeom.Hex{X: 10, Y: 10})
	sx, sy := v.ToScreen(float64(x), float64(y-10))
	c, ok := m.GetCritterPixel(int(sx), int(sy), false)
	if !ok || c.ID != 1 {
		t.Fatalf("picked %v %v", c, ok)
	}
	if _, ok := m.GetCritterPixel(int(sx), int(sy)-40, false); ok {
		t.Error("picked above the sprite")
	}

	m.SetCritterDead(1, true)
	if _, ok := m.GetCritterPixel(int(sx), int(sy), true); ok {
		t.Error("dead critter picked while ignored")
	}
	if c, ok := m.GetCritterPixel(int(sx), int(sy), false); !ok || c.ID != 1 {
		t.Error("dead critter not picked")
	}

	lx, ly := v.HexViewPos(hexgeom.Hex{X: 6, Y: 6})
	sx, sy = v.ToScreen(float64(lx), float64(ly-5))
	if it, ok := m.GetItemPixel(int(sx), int(sy)); !ok || it.ID != 11 {
		t.Errorf("item pick %v %v", it, ok)
	}
}

func TestFogHidesCritters(t *testing.T) {
	m, _ := newTestManager(t)
	m.Settings().ShowFog = true
	pm := testMap()
	pm.Critters = append(pm.Critters, maplib.CritterEntry{ID: 3, Pid: pidHuman, X: 25, Y: 25})
	if err := m.LoadMap(pm); err != nil {
		t.Fatal(err)
	}
	m.SetChosen(1)
	m.RebuildMap()
	if m.Grid().FogAt(10, 10) != maplib.FogVisible || m.Grid().FogAt(25, 25) != maplib.FogShroud {
		t.Fatal("fog not computed from the chosen critter")
	}
	seen := map[uint32]bool{}
	m.DrawTree().Each(func(_ int, s *render.Sprite) bool {
		if s.Owner.Kind == render.KindCritter {
			seen[s.Owner.ID] = true
		}
		return true
	})
	if !seen[1] || seen[3] {
		t.Errorf("drawn critters %v", seen)
	}

	m.TransitCritter(1, hexgeom.Hex{X: 10, Y: 10}.Step(hexgeom.DirDownLeft))
	m.RebuildMap()
	if m.Grid().FogAt(10, 10) != maplib.FogVisible {
		t.Error("old hex should still be in sight")
	}

	if m.SwitchShowFog() || m.Settings().ShowFog {
		t.Fatal("fog should be off after switching")
	}
	m.RebuildMap()
	if !m.hexShown(hexgeom.Hex{X: 25, Y: 25}) {
		t.Error("shrouded hex hidden with fog off")
	}
}

func TestScrollAndCursor(t *testing.T) {
	m, _ := loadTestMap(t)
	m.SetChosen(1)
	center := m.Viewport().Center
	if !m.ScrollToHex(center.X+2, center.Y+2, 0, false) {
		t.Fatal("jump scroll did not move")
	}
	if m.Viewport().Center != (hexgeom.Hex{X: center.X + 2, Y: center.Y + 2}) {
		t.Errorf("center %v", m.Viewport().Center)
	}
	if m.ScrollToHex(100, 100, 0, false) {
		t.Error("scrolled outside the map")
	}
	if !m.ChangeZoom(1) || m.ChangeZoom(0) == false {
		t.Error("zoom did not change")
	}

	v := m.Viewport()
	x, y := v.HexViewPos(hexgeom.Hex{X: 10, Y: 12})
	sx, sy := v.ToScreen(float64(x), float64(y))
	h, ok := m.SetCursorPos(int(sx), int(sy), true)
	if !ok || h != (hexgeom.Hex{X: 10, Y: 12}) {
		t.Fatalf("cursor on %v %v", h, ok)
	}
	if _, steps, _ := m.Cursor(); steps != 2 {
		t.Errorf("cursor steps %d", steps)
	}
	x, y = v.HexViewPos(hexgeom.Hex{X: 5, Y: 5})
	sx, sy = v.ToScreen(float64(x), float64(y))
	m.SetCursorPos(int(sx), int(sy), true)
	if _, steps, _ := m.Cursor(); steps != -1 {
		t.Errorf("cursor on a wall has %d steps", steps)
	}
}

func TestDrawTreeStaysBoundedAcrossMoves(t *testing.T) {
	m, _ := loadTestMap(t)
	m.DrawMap()
	start := m.DrawTree().Len()

	a, b := hexgeom.Hex{X: 11, Y: 10}, hexgeom.Hex{X: 10, Y: 10}
	for i := 0; i < 200; i++ {
		to := a
		if i%2 == 1 {
			to = b
		}
		if !m.TransitCritter(1, to) {
			t.Fatalf("move %d to %v refused", i, to)
		}
		m.DrawMap()
		if n := m.DrawTree().Len(); n > start {
			t.Fatalf("move %d: tree holds %d entries, started with %d", i, n, start)
		}
	}
	if m.DrawTree().Stale() != 0 {
		t.Errorf("%d stale entries after a frame", m.DrawTree().Stale())
	}

	c, _ := m.GetCritter(1)
	chain := &m.GetField(c.Hex.X, c.Hex.Y).Chain
	found := false
	for _, idx := range m.DrawTree().ChainSprites(chain) {
		if m.DrawTree().Sprite(idx).Owner == (render.EntityRef{Kind: render.KindCritter, ID: 1}) {
			found = true
		}
	}
	if !found {
		t.Error("critter sprite missing from its hex chain after compaction")
	}
}
