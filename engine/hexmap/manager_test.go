package hexmap

import (
	"errors"
	"os"
	"testing"

	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/1siamBot/hex-engine/engine/settings"
)

const (
	pidWall uint32 = 100 + iota
	pidLamp
	pidRug
	pidFence
	pidHuman
	pidBrahmin
	pidRailing
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeResolver map[string]*render.Frames

func (r fakeResolver) LoadAnimation(name string) (*render.Frames, bool) {
	f, ok := r[name]
	return f, ok
}

// fakeSprites treats every frame as an opaque 32x32 image
type fakeSprites struct {
	sprites  int
	contours int
	points   int
}

func (f *fakeSprites) SpriteInfo(id render.SpriteID) (render.SpriteInfo, bool) {
	return render.SpriteInfo{Width: 32, Height: 32}, id != 0
}

func (f *fakeSprites) DrawSprite(render.SpriteID, float64, float64, render.DrawOptions) {
	f.sprites++
}

func (f *fakeSprites) DrawContour(render.SpriteID, float64, float64, float64, uint32) {
	f.contours++
}

func (f *fakeSprites) DrawPoints(points []light.PrepPoint, _ float64) { f.points += len(points) }

func (f *fakeSprites) IsPixNoTransp(render.SpriteID, int, int) bool { return true }

func testRegistry() *proto.MemRegistry {
	reg := proto.NewMemRegistry()
	reg.AddItem(&proto.Item{Pid: pidWall, Name: "wall", Type: proto.ItemWall, Anim: "wall"})
	reg.AddItem(&proto.Item{Pid: pidLamp, Name: "lamp", Anim: "lamp", NoBlock: true, ShootThru: true, LightThru: true,
		Light: proto.LightDef{Intensity: 50, Distance: 3}})
	reg.AddItem(&proto.Item{Pid: pidRug, Name: "rug", Anim: "rug", Flat: true, NoBlock: true, ShootThru: true, LightThru: true})
	reg.AddItem(&proto.Item{Pid: pidFence, Name: "fence", Type: proto.ItemScenery, Anim: "fence",
		BlockLines: []uint8{uint8(hexgeom.DirRight), uint8(hexgeom.DirRight)}})
	reg.AddItem(&proto.Item{Pid: pidRailing, Name: "railing", Anim: "rug", NoBlock: true, ShootThru: true, LightThru: true,
		BlockLines: []uint8{uint8(hexgeom.DirDownRight)}})
	reg.AddCritter(&proto.Critter{Pid: pidHuman, Name: "human", Anim: "human", Look: 5})
	reg.AddCritter(&proto.Critter{Pid: pidBrahmin, Name: "brahmin", Anim: "brahmin", Multihex: 1})
	return reg
}

func testResolver() fakeResolver {
	return fakeResolver{
		"default_stub": {Name: "default_stub", IDs: []render.SpriteID{1}},
		"wall":         {Name: "wall", IDs: []render.SpriteID{2}},
		"lamp":         {Name: "lamp", TicksMs: 200, IDs: []render.SpriteID{3, 4}},
		"human":        {Name: "human", IDs: []render.SpriteID{5}},
		"brahmin":      {Name: "brahmin", IDs: []render.SpriteID{6}},
		"rug":          {Name: "rug", IDs: []render.SpriteID{7}},
		"grass":        {Name: "grass", IDs: []render.SpriteID{8}},
		"roof":         {Name: "roof", IDs: []render.SpriteID{9}},
	}
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeSprites) {
	t.Helper()
	cfg := settings.Default()
	cfg.ScreenWidth, cfg.ScreenHeight = 640, 480
	sprites := &fakeSprites{}
	return New(cfg, testRegistry(), sprites, testResolver(), opts...), sprites
}

// testMap is a 30x30 map: a wall at 5,5, a lamp at 6,6, a human (id 1) at
// 10,10 and a brahmin (id 2) at 20,20
func testMap() *maplib.ProtoMap {
	pm := maplib.NewProtoMap("test", 30, 30)
	pm.Pid = 7
	pm.Tiles = []maplib.TileEntry{
		{X: 10, Y: 10, Tile: maplib.Tile{Name: "grass"}},
		{X: 11, Y: 10, Tile: maplib.Tile{Name: "grass"}},
	}
	pm.Items = []maplib.ItemEntry{
		{ID: 10, Pid: pidWall, X: 5, Y: 5},
		{ID: 11, Pid: pidLamp, X: 6, Y: 6},
	}
	pm.Critters = []maplib.CritterEntry{
		{ID: 1, Pid: pidHuman, X: 10, Y: 10, Dir: uint8(hexgeom.DirRight)},
		{ID: 2, Pid: pidBrahmin, X: 20, Y: 20},
	}
	return pm
}

func loadTestMap(t *testing.T, opts ...Option) (*Manager, *fakeSprites) {
	t.Helper()
	m, sprites := newTestManager(t, opts...)
	if err := m.LoadMap(testMap()); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	return m, sprites
}

func TestLoadMapPlacesObjects(t *testing.T) {
	m, _ := newTestManager(t)
	var loaded []core.Event
	m.Events().On(core.EvtMapLoaded, func(e core.Event) { loaded = append(loaded, e) })

	pm := testMap()
	pm.Items = append(pm.Items, maplib.ItemEntry{Pid: pidRug, X: 12, Y: 12})
	if err := m.LoadMap(pm); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if !m.IsMapLoaded() || m.Width() != 30 || m.Height() != 30 {
		t.Fatalf("map not loaded: %dx%d", m.Width(), m.Height())
	}
	if f := m.GetField(5, 5); !f.IsNotPassed() || !f.IsNotRaked() || !f.Has(maplib.FlagIsWall) {
		t.Errorf("wall flags missing: %b", f.Flags)
	}
	if f := m.GetField(6, 6); f.IsNotPassed() {
		t.Error("lamp should not block")
	}
	if m.GetField(10, 10).Crit != 1 || m.GetField(20, 20).Crit != 2 {
		t.Error("critters not placed on their hexes")
	}
	for _, h := range hexgeom.Ring(hexgeom.Hex{X: 20, Y: 20}, 1) {
		f := m.GetField(h.X, h.Y)
		if len(f.MultihexCrits) != 1 || f.MultihexCrits[0] != 2 || !f.Has(maplib.FlagIsMultihex) {
			t.Errorf("hex %v not covered by the brahmin", h)
		}
	}
	if it, ok := m.GetItem(12); !ok || it.Pid != pidRug {
		t.Errorf("zero item id should become 12, items %v", m.Items())
	}
	if len(m.GetField(10, 10).Tiles) != 1 {
		t.Error("tile not loaded")
	}

	m.Events().Dispatch()
	if len(loaded) != 1 || loaded[0].Payload != uint32(7) {
		t.Errorf("map loaded events: %+v", loaded)
	}
	if c := m.Viewport().Center; c != (hexgeom.Hex{X: 15, Y: 15}) {
		t.Errorf("view center %v, want work hex", c)
	}
}

func TestLoadMapFailureKeepsOldMap(t *testing.T) {
	m, _ := loadTestMap(t)

	tests := []struct {
		name string
		edit func(pm *maplib.ProtoMap)
		want error
	}{
		{"unknown item", func(pm *maplib.ProtoMap) {
			pm.Items = append(pm.Items, maplib.ItemEntry{ID: 50, Pid: 9999, X: 1, Y: 1})
		}, ErrUnknownProto},
		{"overlapping critters", func(pm *maplib.ProtoMap) {
			pm.Critters = append(pm.Critters, maplib.CritterEntry{ID: 3, Pid: pidHuman, X: 20, Y: 20})
		}, ErrOccupied},
		{"too small", func(pm *maplib.ProtoMap) {
			pm.Width, pm.Height = 5, 5
			pm.WorkHexX, pm.WorkHexY = 1, 1
			pm.Items, pm.Critters, pm.Tiles = nil, nil, nil
		}, maplib.ErrBadSize},
		{"item outside", func(pm *maplib.ProtoMap) {
			pm.Items[0].X = 40
		}, maplib.ErrBadMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := testMap()
			pm.Name = "broken"
			tt.edit(pm)
			err := m.LoadMap(pm)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if m.Width() != 30 || m.GetField(10, 10).Crit != 1 {
				t.Error("failed load changed the current map")
			}
			if _, ok := m.GetItem(10); !ok {
				t.Error("failed load dropped items")
			}
			got, _ := m.GetProtoMap()
			if got.Name != "test" {
				t.Errorf("header replaced by %q", got.Name)
			}
		})
	}
}

func TestResizeField(t *testing.T) {
	m, _ := loadTestMap(t)
	if err := m.ResizeField(50, 40); err != nil {
		t.Fatalf("ResizeField: %v", err)
	}
	if m.Width() != 50 || m.Height() != 40 {
		t.Fatalf("size %dx%d", m.Width(), m.Height())
	}
	if len(m.Critters()) != 0 || len(m.Items()) != 0 {
		t.Error("objects survived the resize")
	}
	for _, f := range m.Grid().Fields {
		if f.Crit != 0 || len(f.Items) != 0 || f.Flags != 0 {
			t.Fatal("resized field not empty")
		}
	}
	if err := m.ResizeField(5, 40); !errors.Is(err, maplib.ErrBadSize) {
		t.Errorf("small resize: %v", err)
	}
	if m.Width() != 50 {
		t.Error("rejected resize changed the grid")
	}
}

func TestTransitCritter(t *testing.T) {
	m, _ := loadTestMap(t)
	var moved []core.Event
	m.Events().On(core.EvtCritterMoved, func(e core.Event) { moved = append(moved, e) })

	from := hexgeom.Hex{X: 10, Y: 10}
	to := from.Step(hexgeom.DirDownLeft)
	if !m.TransitCritter(1, to) {
		t.Fatal("transit to a free hex failed")
	}
	c, _ := m.GetCritter(1)
	if c.Hex != to || c.Dir != hexgeom.DirDownLeft {
		t.Errorf("critter at %v facing %d", c.Hex, c.Dir)
	}
	if m.GetField(from.X, from.Y).Crit != 0 || m.GetField(to.X, to.Y).Crit != 1 {
		t.Error("fields not updated")
	}
	if m.TransitCritter(1, hexgeom.Hex{X: 5, Y: 5}) {
		t.Error("transit onto a wall succeeded")
	}
	if m.TransitCritter(1, hexgeom.Hex{X: 20, Y: 20}.Step(hexgeom.DirLeft)) {
		t.Error("transit into the brahmin succeeded")
	}
	if m.TransitCritter(1, hexgeom.Hex{X: -1, Y: 3}) {
		t.Error("transit outside the grid succeeded")
	}
	m.Events().Dispatch()
	if len(moved) != 1 || moved[0].ID != 1 || moved[0].Hex != to || moved[0].Payload != from {
		t.Errorf("moved events %+v", moved)
	}
}

func TestMultihexTransit(t *testing.T) {
	m, _ := loadTestMap(t)
	old := pathfind.Footprint(hexgeom.Hex{X: 20, Y: 20}, 1)
	to := hexgeom.Hex{X: 20, Y: 20}.Step(hexgeom.DirUpLeft)
	if !m.TransitCritter(2, to) {
		t.Fatal("brahmin transit failed")
	}
	now := pathfind.Footprint(to, 1)
	covered := make(map[hexgeom.Hex]bool)
	for _, h := range now {
		covered[h] = true
		f := m.GetField(h.X, h.Y)
		if f.Crit != 2 && !containsID(f.MultihexCrits, 2) {
			t.Errorf("new footprint hex %v not covered", h)
		}
	}
	for _, h := range old {
		if covered[h] {
			continue
		}
		f := m.GetField(h.X, h.Y)
		if f.Crit == 2 || containsID(f.MultihexCrits, 2) || f.Has(maplib.FlagIsMultihex) {
			t.Errorf("old footprint hex %v still covered", h)
		}
	}
}

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestCritterLifecycle(t *testing.T) {
	m, _ := loadTestMap(t)
	if !m.SetCritterDead(1, true) {
		t.Fatal("SetCritterDead failed")
	}
	f := m.GetField(10, 10)
	if f.Crit != 0 || !containsID(f.DeadCrits, 1) {
		t.Fatalf("corpse not moved to dead list: crit %d dead %v", f.Crit, f.DeadCrits)
	}
	if _, err := m.AddCritter(maplib.CritterEntry{ID: 3, Pid: pidHuman, X: 10, Y: 10}); err != nil {
		t.Fatalf("live critter on a corpse: %v", err)
	}
	if _, err := m.AddCritter(maplib.CritterEntry{ID: 4, Pid: pidHuman, X: 10, Y: 10}); !errors.Is(err, ErrOccupied) {
		t.Errorf("second live critter: %v", err)
	}
	if _, err := m.AddCritter(maplib.CritterEntry{ID: 3, Pid: pidHuman, X: 3, Y: 3}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id: %v", err)
	}
	if _, err := m.AddCritter(maplib.CritterEntry{ID: 5, Pid: 1, X: 3, Y: 3}); !errors.Is(err, ErrUnknownProto) {
		t.Errorf("unknown pid: %v", err)
	}

	m.SetCritterContour(3, render.ContourCustom, 0x00FF00)
	if !m.RemoveCritter(3) || m.GetField(10, 10).Crit != 0 {
		t.Fatal("RemoveCritter failed")
	}
	c, err := m.AddCritter(maplib.CritterEntry{ID: 3, Pid: pidHuman, X: 12, Y: 12})
	if err != nil {
		t.Fatalf("re-adding a removed critter: %v", err)
	}
	if c.Contour != render.ContourCustom || c.ContourColor != 0x00FF00 {
		t.Error("contour lost across remove and add")
	}
	if !m.DeleteCritter(3) {
		t.Fatal("DeleteCritter failed")
	}
	if _, ok := m.GetCritter(3); ok || m.GetField(12, 12).Crit != 0 {
		t.Error("deleted critter still known")
	}
}

func TestItemsAndBlockLines(t *testing.T) {
	m, _ := loadTestMap(t)
	it, err := m.AddItem(maplib.ItemEntry{ID: 20, Pid: pidFence, X: 15, Y: 5})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	first := hexgeom.Hex{X: 15, Y: 5}.Step(hexgeom.DirRight)
	second := first.Step(hexgeom.DirRight)
	for _, h := range []hexgeom.Hex{first, second} {
		if f := m.GetField(h.X, h.Y); !f.IsNotPassed() || !f.IsNotRaked() {
			t.Errorf("block line hex %v not blocked", h)
		}
	}
	if len(it.lines) != 2 {
		t.Fatalf("lines %v", it.lines)
	}
	if _, err := m.AddItem(maplib.ItemEntry{ID: 20, Pid: pidRug, X: 1, Y: 1}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate item: %v", err)
	}
	if !m.MoveItem(20, hexgeom.Hex{X: 15, Y: 20}) {
		t.Fatal("MoveItem failed")
	}
	if f := m.GetField(first.X, first.Y); f.IsNotPassed() || len(f.LineBlocks) != 0 {
		t.Error("old block line left behind")
	}
	if !m.DeleteItem(20) {
		t.Fatal("DeleteItem failed")
	}
	if f := m.GetField(15, 20); len(f.Items) != 0 || f.Flags != 0 {
		t.Error("deleted item left flags")
	}
}

func TestRemovingBlockLinesRefreshesTheirHexes(t *testing.T) {
	m, _ := loadTestMap(t)
	for _, remove := range []func(id uint32) bool{
		m.DeleteItem,
		func(id uint32) bool { return m.MoveItem(id, hexgeom.Hex{X: 25, Y: 3}) },
	} {
		if _, err := m.AddItem(maplib.ItemEntry{ID: 40, Pid: pidRailing, X: 15, Y: 15}); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		line := hexgeom.Hex{X: 15, Y: 15}.Step(hexgeom.DirDownRight)
		if !m.GetField(line.X, line.Y).IsNotPassed() {
			t.Fatalf("railing line %v not blocked", line)
		}
		m.Light().Process()
		m.fogDirty = false

		if !remove(40) {
			t.Fatal("railing not removed")
		}
		if m.GetField(line.X, line.Y).IsNotPassed() {
			t.Errorf("line %v still blocked", line)
		}
		if !m.Light().RebuildRequested() || !m.fogDirty {
			t.Errorf("line hexes not refreshed: light %v fog %v", m.Light().RebuildRequested(), m.fogDirty)
		}
		m.DeleteItem(40)
	}
}

func TestLightFollowsItems(t *testing.T) {
	m, _ := loadTestMap(t)
	m.Light().Process()
	if r, _, _ := m.Light().Light(6, 6); r == 0 {
		t.Fatal("lamp hex is dark")
	}
	if r, _, _ := m.Light().Light(25, 25); r != 0 {
		t.Error("far hex is lit")
	}
	m.DeleteItem(11)
	if !m.Light().RebuildRequested() {
		t.Fatal("deleting a lamp requested no rebuild")
	}
	m.Light().Process()
	if r, _, _ := m.Light().Light(6, 6); r != 0 {
		t.Errorf("lamp hex still lit: %d", r)
	}
}

func TestGetProtoMapRoundTrip(t *testing.T) {
	m, _ := loadTestMap(t)
	m.SetTile(hexgeom.Hex{X: 3, Y: 3}, maplib.Tile{Name: "roof"}, true)
	pm, err := m.GetProtoMap()
	if err != nil {
		t.Fatal(err)
	}
	if len(pm.Items) != 2 || len(pm.Critters) != 2 || len(pm.Tiles) != 3 {
		t.Fatalf("snapshot has %d items %d critters %d tiles", len(pm.Items), len(pm.Critters), len(pm.Tiles))
	}

	other, _ := newTestManager(t)
	if err := other.SetProtoMap(pm); err != nil {
		t.Fatalf("SetProtoMap: %v", err)
	}
	if !other.MapperMode() {
		t.Error("SetProtoMap should enable mapper mode")
	}
	for _, c := range m.Critters() {
		oc, ok := other.GetCritter(c.ID)
		if !ok || oc.Hex != c.Hex || oc.Dir != c.Dir || oc.Pid != c.Pid {
			t.Errorf("critter %d not restored", c.ID)
		}
	}
	if len(other.GetField(3, 3).Roofs) != 1 {
		t.Error("roof tile not restored")
	}
}

func TestLoadMapFromCache(t *testing.T) {
	s := cache.NewMemStorage()
	if err := cache.SaveMap(s, testMap()); err != nil {
		t.Fatal(err)
	}
	m, _ := newTestManager(t)
	if err := m.LoadMapFromCache(s, 7); err != nil {
		t.Fatalf("LoadMapFromCache: %v", err)
	}
	if m.GetField(10, 10).Crit != 1 {
		t.Error("cached map not loaded")
	}
	if err := m.LoadMapFromCache(s, 8); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("missing pid: %v", err)
	}
	if !m.IsMapLoaded() {
		t.Error("failed cache load unloaded the map")
	}
}

func TestRoofGroups(t *testing.T) {
	pm := testMap()
	pm.Tiles = append(pm.Tiles,
		maplib.TileEntry{X: 3, Y: 3, Roof: true, Tile: maplib.Tile{Name: "roof"}},
		maplib.TileEntry{X: 3, Y: 5, Roof: true, Tile: maplib.Tile{Name: "roof"}},
		maplib.TileEntry{X: 20, Y: 3, Roof: true, Tile: maplib.Tile{Name: "roof"}},
	)
	m, _ := newTestManager(t)
	if err := m.LoadMap(pm); err != nil {
		t.Fatal(err)
	}
	a, b := m.GetField(3, 3).RoofNum, m.GetField(20, 3).RoofNum
	if a == 0 || b == 0 || a == b {
		t.Fatalf("roof groups %d and %d", a, b)
	}
	if m.GetField(3, 5).RoofNum != a {
		t.Error("roofs two hexes apart not grouped")
	}
	n := hexgeom.Hex{X: 20, Y: 3}.Step(hexgeom.DirLeft)
	if m.GetField(n.X, n.Y).RoofNum != b {
		t.Error("neighbor of a roof not claimed")
	}
	if m.GetField(15, 15).RoofNum != 0 {
		t.Error("open hex has a roof group")
	}

	m.SetSkipRoof(hexgeom.Hex{X: 3, Y: 3})
	if m.SkipRoof() != a {
		t.Errorf("skip roof %d, want %d", m.SkipRoof(), a)
	}
	m.SetSkipRoof(hexgeom.Hex{X: -1, Y: 0})
	if m.SkipRoof() != 0 {
		t.Error("skip roof not cleared")
	}

	if !m.EraseTile(hexgeom.Hex{X: 20, Y: 3}, true, 0) {
		t.Fatal("EraseTile failed")
	}
	if m.GetField(20, 3).RoofNum != 0 {
		t.Error("erased roof still grouped")
	}
}

func TestFilters(t *testing.T) {
	m, _ := loadTestMap(t, WithMapperMode(true))
	m.AddFastPid(pidWall)
	m.AddFastPid(pidLamp)
	if !m.IsFastPid(pidWall) || len(m.FastPids()) != 2 || m.FastPids()[0] != pidWall {
		t.Errorf("fast pids %v", m.FastPids())
	}
	m.RemoveFastPid(pidWall)
	if m.IsFastPid(pidWall) {
		t.Error("fast pid not removed")
	}

	if !m.SwitchIgnorePid(pidLamp) || !m.IsIgnorePid(pidLamp) {
		t.Fatal("ignore pid not set")
	}
	m.RebuildMap()
	m.DrawTree().Each(func(_ int, s *render.Sprite) bool {
		if s.Owner == (render.EntityRef{Kind: render.KindItem, ID: 11}) {
			t.Error("ignored item still drawn")
		}
		return true
	})
	if m.SwitchIgnorePid(pidLamp) || len(m.IgnorePids()) != 0 {
		t.Error("ignore pid not toggled off")
	}
	m.ClearFastPids()
	if len(m.FastPids()) != 0 {
		t.Error("fast pids not cleared")
	}
}

func TestSetDayTime(t *testing.T) {
	m, _ := loadTestMap(t)
	m.SetDayTime(720)
	if m.Ambient() != (light.Color{R: 128, G: 128, B: 128}) {
		t.Errorf("ambient %+v", m.Ambient())
	}
}

func TestUnloadMap(t *testing.T) {
	m, _ := loadTestMap(t)
	var unloaded int
	m.Events().On(core.EvtMapUnloaded, func(core.Event) { unloaded++ })
	m.UnloadMap()
	m.Events().Dispatch()
	if m.IsMapLoaded() || len(m.Critters()) != 0 || unloaded != 1 {
		t.Errorf("unload left state: loaded %v critters %d events %d", m.IsMapLoaded(), len(m.Critters()), unloaded)
	}
	if _, err := m.GetProtoMap(); !errors.Is(err, ErrMapNotLoaded) {
		t.Errorf("GetProtoMap after unload: %v", err)
	}
	if _, err := m.AddItem(maplib.ItemEntry{ID: 1, Pid: pidRug}); !errors.Is(err, ErrMapNotLoaded) {
		t.Errorf("AddItem after unload: %v", err)
	}
}
