package light

import (
	"bytes"
	"testing"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/proto"
)

var wallProto = &proto.Item{Pid: 1, Type: proto.ItemWall}

func newGrid(t *testing.T, w, h int) *maplib.Grid {
	t.Helper()
	g, err := maplib.NewGrid(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func staticSources(src ...Source) CollectorFunc {
	return func(dst []Source) []Source { return append(dst, src...) }
}

func rebuild(t *testing.T, g *maplib.Grid, src ...Source) []uint8 {
	t.Helper()
	e := NewEngine(g, staticSources(src...), 30)
	if !e.Process() {
		t.Fatal("Process did not rebuild")
	}
	return append([]uint8(nil), e.Buffer()...)
}

func lit(buf []uint8, g *maplib.Grid, x, y int) bool {
	i := (y*g.Width + x) * 3
	return buf[i] != 0 || buf[i+1] != 0 || buf[i+2] != 0
}

func TestSingleSourceRadius(t *testing.T) {
	g := newGrid(t, 10, 10)
	c := hexgeom.Hex{X: 5, Y: 5}
	buf := rebuild(t, g, Source{Hex: c, Intensity: 100, Distance: 3, Color: 0xFFFFFF})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			d := hexgeom.Distance(c, hexgeom.Hex{X: x, Y: y})
			if d <= 3 && !lit(buf, g, x, y) {
				t.Errorf("hex %d,%d at distance %d is dark", x, y, d)
			}
			if d >= 4 && lit(buf, g, x, y) {
				t.Errorf("hex %d,%d at distance %d is lit", x, y, d)
			}
		}
	}
}

func TestFalloffIsLinear(t *testing.T) {
	g := newGrid(t, 20, 20)
	c := hexgeom.Hex{X: 10, Y: 10}
	e := NewEngine(g, staticSources(Source{Hex: c, Intensity: 100, Distance: 4}), 30)
	e.Process()
	prev := 256
	h := c
	for d := 0; d <= 4; d++ {
		r, _, _ := e.Light(h.X, h.Y)
		if int(r) >= prev {
			t.Fatalf("light at distance %d (%d) not below %d", d, r, prev)
		}
		want := 255 * 100 * (4 + 1 - d) / (100 * 5)
		if int(r) != want {
			t.Errorf("distance %d: %d, want %d", d, r, want)
		}
		prev = int(r)
		h = h.Step(hexgeom.DirRight)
	}
}

func TestAccumulationCommutative(t *testing.T) {
	g := newGrid(t, 16, 16)
	g.Field(8, 6).AddItem(maplib.ItemRef{ID: 1, Proto: wallProto})
	srcs := []Source{
		{Hex: hexgeom.Hex{X: 5, Y: 5}, Intensity: 90, Distance: 5, Color: 0xFF8040},
		{Hex: hexgeom.Hex{X: 7, Y: 6}, Intensity: 100, Distance: 6, Color: 0x40FF80},
		{Hex: hexgeom.Hex{X: 9, Y: 9}, Intensity: -40, Distance: 3, Color: 0xFFFFFF},
		{Hex: hexgeom.Hex{X: 6, Y: 8}, Intensity: 120, Distance: 4, Color: 0x8080FF},
	}
	base := rebuild(t, g, srcs...)
	perms := [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	for _, p := range perms {
		var ordered []Source
		for _, i := range p {
			ordered = append(ordered, srcs[i])
		}
		if got := rebuild(t, g, ordered...); !bytes.Equal(got, base) {
			t.Fatalf("order %v changed the light buffer", p)
		}
	}
}

func TestRebuildIdempotent(t *testing.T) {
	g := newGrid(t, 12, 12)
	e := NewEngine(g, staticSources(
		Source{Hex: hexgeom.Hex{X: 3, Y: 3}, Intensity: 100, Distance: 5},
		Source{Hex: hexgeom.Hex{X: 6, Y: 4}, Intensity: 70, Distance: 4, Color: 0x00FF00},
	), 30)
	e.Process()
	first := append([]uint8(nil), e.Buffer()...)
	e.RebuildLight()
	if !e.Process() {
		t.Fatal("second rebuild skipped")
	}
	if !bytes.Equal(first, e.Buffer()) {
		t.Fatal("two rebuilds differ")
	}
	if e.Process() {
		t.Fatal("Process rebuilt without a request")
	}
}

func TestWallBlocksLight(t *testing.T) {
	g := newGrid(t, 12, 12)
	c := hexgeom.Hex{X: 2, Y: 5}
	wallHex := c.Step(hexgeom.DirRight)
	behind := wallHex.Step(hexgeom.DirRight)
	g.FieldAt(wallHex).AddItem(maplib.ItemRef{ID: 1, Proto: wallProto})

	buf := rebuild(t, g, Source{Hex: c, Intensity: 100, Distance: 4})
	if !lit(buf, g, wallHex.X, wallHex.Y) {
		t.Error("wall face should be lit")
	}
	if lit(buf, g, behind.X, behind.Y) {
		t.Error("hex behind the wall should be dark")
	}

	buf = rebuild(t, g, Source{Hex: c, Intensity: 100, Distance: 4, Flags: FlagIgnoreObstacles})
	if !lit(buf, g, behind.X, behind.Y) {
		t.Error("obstacle-insensitive light should pass the wall")
	}
}

func TestDisableDirSkipsFan(t *testing.T) {
	g := newGrid(t, 12, 12)
	c := hexgeom.Hex{X: 6, Y: 6}
	buf := rebuild(t, g, Source{Hex: c, Intensity: 100, Distance: 3, Flags: DisableDir(hexgeom.DirRight)})
	// the corner in direction 1 starts fan 1
	corner := c.Step(hexgeom.DirRight).Step(hexgeom.DirRight)
	if lit(buf, g, corner.X, corner.Y) {
		t.Error("disabled fan is lit")
	}
	left := c.Step(hexgeom.DirLeft).Step(hexgeom.DirLeft)
	if !lit(buf, g, left.X, left.Y) {
		t.Error("enabled fan is dark")
	}
}

func TestFansCoverRingOnce(t *testing.T) {
	c := hexgeom.Hex{X: 20, Y: 20}
	for r := 1; r <= 6; r++ {
		seen := map[hexgeom.Hex]int{}
		for k := hexgeom.Dir(0); k < hexgeom.DirCount; k++ {
			fanHexes(c, r, k, func(h hexgeom.Hex) { seen[h]++ })
		}
		if len(seen) != 6*r {
			t.Fatalf("ring %d: fans cover %d hexes, want %d", r, len(seen), 6*r)
		}
		for h, n := range seen {
			if n != 1 || hexgeom.Distance(c, h) != r {
				t.Fatalf("ring %d: hex %v covered %d times at distance %d", r, h, n, hexgeom.Distance(c, h))
			}
		}
	}
}

func TestPartialRebuildMatchesFull(t *testing.T) {
	g := newGrid(t, 40, 40)
	srcs := []Source{
		{Hex: hexgeom.Hex{X: 5, Y: 5}, Intensity: 100, Distance: 4},
		{Hex: hexgeom.Hex{X: 30, Y: 30}, Intensity: 100, Distance: 4, Color: 0xFF0000},
	}
	e := NewEngine(g, staticSources(srcs...), 5)
	e.Process()

	wallHex := hexgeom.Hex{X: 6, Y: 5}
	g.FieldAt(wallHex).AddItem(maplib.ItemRef{ID: 1, Proto: wallProto})
	e.RebuildLightAround(wallHex)
	if !e.Process() {
		t.Fatal("partial rebuild skipped")
	}
	partial := append([]uint8(nil), e.Buffer()...)

	full := NewEngine(g, staticSources(srcs...), 5)
	full.Process()
	if !bytes.Equal(partial, full.Buffer()) {
		t.Fatal("partial rebuild differs from full rebuild")
	}
}

func TestInverseAndNegative(t *testing.T) {
	g := newGrid(t, 12, 12)
	c := hexgeom.Hex{X: 6, Y: 6}
	e := NewEngine(g, staticSources(Source{Hex: c, Intensity: 100, Distance: 3, Flags: FlagInverse}), 30)
	e.Process()
	center, _, _ := e.Light(c.X, c.Y)
	edge := c.Step(hexgeom.DirUpLeft).Step(hexgeom.DirUpLeft).Step(hexgeom.DirUpLeft)
	er, _, _ := e.Light(edge.X, edge.Y)
	if er <= center {
		t.Errorf("inverse light: edge %d should exceed center %d", er, center)
	}

	buf := rebuild(t, g,
		Source{Hex: c, Intensity: 50, Distance: 3},
		Source{Hex: c, Intensity: -100, Distance: 3},
	)
	if lit(buf, g, c.X, c.Y) {
		t.Error("darkness should cancel the light and clamp at zero")
	}
}

type offsets map[uint32][2]int

func (o offsets) FollowOffset(id uint32) (int, int, bool) {
	v, ok := o[id]
	return v[0], v[1], ok
}

func TestFollowRequestsRenderOnly(t *testing.T) {
	g := newGrid(t, 10, 10)
	offs := offsets{7: {0, 0}}
	e := NewEngine(g, staticSources(Source{ID: 7, Hex: hexgeom.Hex{X: 4, Y: 4}, Intensity: 100, Distance: 2, Follow: 7}), 30)
	e.SetFollowResolver(offs)
	e.Process()
	view := []HexPoint{{Hex: hexgeom.Hex{X: 4, Y: 4}, X: 100, Y: 100}}
	e.PrepareToDraw(view, Color{}, 32)
	if e.RenderRequested() {
		t.Fatal("render flag still set after prepare")
	}

	e.Process()
	if e.RenderRequested() {
		t.Fatal("unchanged offset requested a render")
	}

	offs[7] = [2]int{5, -3}
	if e.Process() {
		t.Fatal("moving a followed sprite should not rebuild the buffer")
	}
	if !e.RenderRequested() {
		t.Fatal("moving a followed sprite should request a render")
	}
	pts := e.PrepareToDraw(view, Color{}, 32)
	glow := pts[len(pts)-1]
	if glow.Radius == 0 || glow.X != 105 || glow.Y != 97 {
		t.Errorf("glow point %+v not shifted by follow offset", glow)
	}
}

func TestPrepareAddsAmbient(t *testing.T) {
	g := newGrid(t, 10, 10)
	e := NewEngine(g, nil, 30)
	e.Process()
	pts := e.PrepareToDraw([]HexPoint{{Hex: hexgeom.Hex{X: 1, Y: 1}}}, Color{10, 20, 30}, 32)
	if len(pts) != 1 || pts[0].R != 10 || pts[0].G != 20 || pts[0].B != 30 {
		t.Fatalf("points %+v", pts)
	}
}

func TestDayColor(t *testing.T) {
	times := [4]int{300, 600, 1140, 1380}
	var colors [12]uint8
	for i := 0; i < 4; i++ {
		colors[i*3] = uint8(i * 60)
		colors[i*3+1] = uint8(i * 60)
		colors[i*3+2] = uint8(i * 60)
	}
	if c := DayColor(300, times, colors); c.R != 0 {
		t.Errorf("at key 0: %+v", c)
	}
	if c := DayColor(450, times, colors); c.R != 30 {
		t.Errorf("half way to key 1: %+v", c)
	}
	if c := DayColor(1380, times, colors); c.R != 180 {
		t.Errorf("at key 3: %+v", c)
	}
	night := DayColor(0, times, colors)
	if night.R >= 180 || night.R == 0 {
		t.Errorf("midnight should blend key 3 toward key 0: %+v", night)
	}
	if DayColor(1440+450, times, colors) != DayColor(450, times, colors) {
		t.Error("day color not periodic")
	}
}
