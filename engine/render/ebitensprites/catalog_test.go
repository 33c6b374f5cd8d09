package ebitensprites

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int, opaque image.Rectangle) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := opaque.Min.Y; y < opaque.Max.Y; y++ {
		for x := opaque.Min.X; x < opaque.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name+".png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSingleFrame(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "barrel", 20, 30, image.Rect(5, 5, 15, 25))
	if err := os.WriteFile(filepath.Join(dir, "barrel.json"), []byte(`{"offs_x":2,"offs_y":-4}`), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewCatalog(dir, 100, 32, 16)

	id, err := c.Load("barrel")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	again, _ := c.Load("barrel")
	if again != id {
		t.Fatal("second load decoded the file again")
	}
	info, ok := c.SpriteInfo(id)
	if !ok || info.Width != 20 || info.Height != 30 || info.OffsX != 2 || info.OffsY != -4 {
		t.Fatalf("info = %+v", info)
	}
	if !c.IsPixNoTransp(id, 10, 10) {
		t.Error("opaque pixel reported transparent")
	}
	if c.IsPixNoTransp(id, 1, 1) || c.IsPixNoTransp(id, 50, 50) {
		t.Error("transparent or outside pixel reported opaque")
	}
}

func TestLoadMissing(t *testing.T) {
	c := NewCatalog(t.TempDir(), 100, 32, 16)
	if _, err := c.Load("ghost"); err == nil {
		t.Fatal("missing sprite loaded")
	}
	if _, ok := c.LoadAnimation("ghost"); ok {
		t.Fatal("missing animation resolved")
	}
	if _, ok := c.SpriteInfo(0); ok {
		t.Fatal("id 0 is valid")
	}
}

func TestLoadNumberedAnimation(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"door_0", "door_1", "door_2"} {
		writePNG(t, dir, n, 8, 8, image.Rect(0, 0, 8, 8))
	}
	c := NewCatalog(dir, 50, 32, 16)
	f, ok := c.LoadAnimation("door")
	if !ok {
		t.Fatal("animation not found")
	}
	if f.Count() != 3 || f.TicksMs != 150 {
		t.Fatalf("frames = %d ticks = %d", f.Count(), f.TicksMs)
	}
	if f.Frame(0) == f.Frame(60) {
		t.Error("frames do not advance")
	}
}

func TestStubFrame(t *testing.T) {
	c := NewCatalog(t.TempDir(), 100, 32, 16)
	f, ok := c.LoadAnimation(StubName)
	if !ok || !f.Stub {
		t.Fatal("stub animation missing")
	}
	id := f.Frame(0)
	if !c.IsPixNoTransp(id, 16, 8) {
		t.Error("stub center transparent")
	}
	if c.IsPixNoTransp(id, 0, 0) {
		t.Error("stub corner opaque")
	}
}

func TestMaxSizeScalesDown(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "tree", 200, 100, image.Rect(0, 0, 200, 100))
	c := NewCatalog(dir, 100, 32, 16)
	c.SetMaxSize(50, 50)
	id, err := c.Load("tree")
	if err != nil {
		t.Fatal(err)
	}
	info, _ := c.SpriteInfo(id)
	if info.Width != 50 || info.Height != 25 {
		t.Fatalf("scaled to %dx%d, want 50x25", info.Width, info.Height)
	}
}
