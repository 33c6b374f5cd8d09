package ebitensprites

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/render"
)

// ErrNoSprite is returned when no image file exists for a name
var ErrNoSprite = errors.New("ebitensprites: sprite not found")

// StubName is the animation name served by the procedural stub frame
const StubName = "default_stub"

// alphaCutoff is the lowest alpha treated as opaque for hit tests
const alphaCutoff = 16

type frame struct {
	name string
	img  *image.NRGBA
	info render.SpriteInfo
}

// frameMeta is the optional <name>.json sidecar next to the images
type frameMeta struct {
	OffsX   int `json:"offs_x"`
	OffsY   int `json:"offs_y"`
	TicksMs int `json:"ticks_ms"`
}

// Catalog decodes sprite files and keeps their pixels for hit testing.
// Frame ids start at 1; id 0 is never valid.
type Catalog struct {
	dir        string
	frameMs    int
	maxW, maxH int

	frames []frame
	byName map[string]render.SpriteID
	anims  map[string]*render.Frames
	log    *logrus.Entry
}

// NewCatalog reads sprites from dir. An empty dir falls back to the assets
// directory next to the executable or the module root. frameMs is the
// per-frame duration of animations without a sidecar; hexW and hexH size
// the stub frame.
func NewCatalog(dir string, frameMs, hexW, hexH int) *Catalog {
	if dir == "" {
		dir = getAssetsDir()
	}
	if frameMs <= 0 {
		frameMs = 100
	}
	c := &Catalog{
		dir:     dir,
		frameMs: frameMs,
		byName:  make(map[string]render.SpriteID),
		anims:   make(map[string]*render.Frames),
		log:     logger.Component("sprites"),
	}
	stub := c.add(StubName, diamond(hexW, hexH, color.NRGBA{255, 0, 255, 160}), frameMeta{})
	c.anims[StubName] = &render.Frames{Name: StubName, IDs: []render.SpriteID{stub}, Stub: true}
	return c
}

// SetMaxSize makes later loads scale down images larger than w x h
func (c *Catalog) SetMaxSize(w, h int) { c.maxW, c.maxH = w, h }

// Len returns the number of frames, stub included
func (c *Catalog) Len() int { return len(c.frames) }

// Load decodes <name>.png once and returns its frame id
func (c *Catalog) Load(name string) (render.SpriteID, error) {
	if id, ok := c.byName[name]; ok {
		return id, nil
	}
	img, err := loadFromFile(filepath.Join(c.dir, name+".png"))
	if err != nil {
		return 0, err
	}
	return c.add(name, img, c.meta(name)), nil
}

// LoadAnimation resolves name to <name>.png, or to the numbered frames
// <name>_0.png, <name>_1.png and so on.
func (c *Catalog) LoadAnimation(name string) (*render.Frames, bool) {
	if f, ok := c.anims[name]; ok {
		return f, true
	}
	meta := c.meta(name)
	var ids []render.SpriteID
	if id, err := c.Load(name); err == nil {
		ids = append(ids, id)
	} else {
		for i := 0; ; i++ {
			key := name + "_" + strconv.Itoa(i)
			img, err := loadFromFile(filepath.Join(c.dir, key+".png"))
			if err != nil {
				if !errors.Is(err, ErrNoSprite) {
					c.log.WithError(err).WithField("frame", key).Warn("bad animation frame")
				}
				break
			}
			ids = append(ids, c.add(key, img, meta))
		}
	}
	if len(ids) == 0 {
		return nil, false
	}
	ticks := meta.TicksMs
	if ticks <= 0 {
		ticks = c.frameMs * len(ids)
	}
	f := &render.Frames{Name: name, TicksMs: ticks, IDs: ids}
	c.anims[name] = f
	c.log.WithFields(logrus.Fields{"anim": name, "frames": len(ids)}).Debug("animation loaded")
	return f, true
}

// SpriteInfo returns the size and anchor offset of a frame
func (c *Catalog) SpriteInfo(id render.SpriteID) (render.SpriteInfo, bool) {
	f := c.frame(id)
	if f == nil {
		return render.SpriteInfo{}, false
	}
	return f.info, true
}

// IsPixNoTransp reports whether pixel (ox, oy) of frame id is opaque
func (c *Catalog) IsPixNoTransp(id render.SpriteID, ox, oy int) bool {
	f := c.frame(id)
	if f == nil || !image.Pt(ox, oy).In(f.img.Rect) {
		return false
	}
	return f.img.NRGBAAt(ox, oy).A >= alphaCutoff
}

func (c *Catalog) frame(id render.SpriteID) *frame {
	if id == 0 || int(id) > len(c.frames) {
		return nil
	}
	return &c.frames[id-1]
}

func (c *Catalog) add(name string, img *image.NRGBA, meta frameMeta) render.SpriteID {
	if c.maxW > 0 && c.maxH > 0 {
		img = fitImage(img, c.maxW, c.maxH)
	}
	b := img.Bounds()
	c.frames = append(c.frames, frame{
		name: name,
		img:  img,
		info: render.SpriteInfo{Width: b.Dx(), Height: b.Dy(), OffsX: meta.OffsX, OffsY: meta.OffsY},
	})
	id := render.SpriteID(len(c.frames))
	c.byName[name] = id
	return id
}

func (c *Catalog) meta(name string) frameMeta {
	var m frameMeta
	data, err := os.ReadFile(filepath.Join(c.dir, name+".json"))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		c.log.WithError(err).WithField("sprite", name).Warn("bad sprite sidecar")
	}
	return m
}

func getAssetsDir() string {
	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Join(filepath.Dir(exe), "assets")
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(filename), "..", "..", "..", "assets")
	if _, err := os.Stat(dir); err == nil {
		return dir
	}
	return "assets"
}

func loadFromFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSprite, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode sprite %s: %w", path, err)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst, nil
}

// fitImage scales img down to fit w x h keeping its aspect ratio
func fitImage(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	tw := max(1, int(float64(b.Dx())*scale))
	th := max(1, int(float64(b.Dy())*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// diamond renders a flat hex-sized diamond used for missing art
func diamond(w, h int, clr color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	hw, hh := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - hw) / hw
			dy := (float64(y) + 0.5 - hh) / hh
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx+dy <= 1 {
				img.SetNRGBA(x, y, clr)
			}
		}
	}
	return img
}
