package ebitensprites

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/render"
)

// multiply darkens the target by the source color
var multiply = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorZero,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

var (
	_ render.SpriteManager = (*Manager)(nil)
	_ render.AnimResolver  = (*Catalog)(nil)
)

// Manager draws catalog frames onto an ebiten target image
type Manager struct {
	*Catalog

	// Target receives every draw call; set it to the screen each frame
	Target *ebiten.Image

	hexW, hexH int
	images     []*ebiten.Image
	white      *ebiten.Image
}

// New creates a manager reading sprites from dir
func New(dir string, frameMs, hexW, hexH int) *Manager {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Manager{
		Catalog: NewCatalog(dir, frameMs, hexW, hexH),
		hexW:    hexW,
		hexH:    hexH,
		white:   white,
	}
}

// image uploads frames lazily so decoding never waits on the GPU
func (m *Manager) image(id render.SpriteID) *ebiten.Image {
	f := m.frame(id)
	if f == nil {
		return nil
	}
	for len(m.images) < len(m.frames) {
		m.images = append(m.images, nil)
	}
	img := m.images[id-1]
	if img == nil {
		img = ebiten.NewImageFromImage(f.img)
		m.images[id-1] = img
	}
	return img
}

// DrawSprite blits frame id with its top-left corner at screen (x, y)
func (m *Manager) DrawSprite(id render.SpriteID, x, y float64, opts render.DrawOptions) {
	img := m.image(id)
	if img == nil || m.Target == nil || opts.Alpha == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	if opts.Zoom > 0 && opts.Zoom != 1 {
		op.GeoM.Scale(1/opts.Zoom, 1/opts.Zoom)
	}
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(float32(opts.R)/255, float32(opts.G)/255, float32(opts.B)/255, 1)
	op.ColorScale.ScaleAlpha(float32(opts.Alpha) / 255)
	m.Target.DrawImage(img, op)
}

// DrawContour draws the frame silhouette one pixel out in every direction.
// The sprite itself is drawn over it afterwards.
func (m *Manager) DrawContour(id render.SpriteID, x, y float64, zoom float64, clr uint32) {
	img := m.image(id)
	if img == nil || m.Target == nil {
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	r := float64(clr>>16&0xFF) / 255
	g := float64(clr>>8&0xFF) / 255
	b := float64(clr&0xFF) / 255
	var cm colorm.ColorM
	cm.Scale(0, 0, 0, 1)
	cm.Translate(r, g, b, 0)
	for _, d := range [4][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		op := &colorm.DrawImageOptions{}
		op.GeoM.Scale(1/zoom, 1/zoom)
		op.GeoM.Translate(x+d[0], y+d[1])
		colorm.DrawImage(m.Target, img, cm, op)
	}
}

// DrawPoints applies prepared light: per-hex points multiply a hexagon of
// the target, glow points add a circle.
func (m *Manager) DrawPoints(points []light.PrepPoint, zoom float64) {
	if m.Target == nil || len(points) == 0 {
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	var hexVs []ebiten.Vertex
	var hexIs []uint16
	for _, p := range points {
		if p.Radius > 0 {
			m.glow(p, zoom)
			continue
		}
		if len(hexVs)+7 > math.MaxUint16 {
			m.Target.DrawTriangles(hexVs, hexIs, m.white, &ebiten.DrawTrianglesOptions{Blend: multiply})
			hexVs, hexIs = hexVs[:0], hexIs[:0]
		}
		hexVs, hexIs = m.appendHexagon(hexVs, hexIs, p, zoom)
	}
	if len(hexVs) > 0 {
		m.Target.DrawTriangles(hexVs, hexIs, m.white, &ebiten.DrawTrianglesOptions{Blend: multiply})
	}
}

func (m *Manager) appendHexagon(vs []ebiten.Vertex, is []uint16, p light.PrepPoint, zoom float64) ([]ebiten.Vertex, []uint16) {
	hw := float32(float64(m.hexW) / 2 / zoom)
	hh := float32(float64(m.hexH) / 2 / zoom)
	q := hw / 2
	corners := [6][2]float32{{-hw, 0}, {-q, -hh}, {q, -hh}, {hw, 0}, {q, hh}, {-q, hh}}
	base := uint16(len(vs))
	vs = append(vs, pointVertex(p.X, p.Y, p))
	for _, c := range corners {
		vs = append(vs, pointVertex(p.X+c[0], p.Y+c[1], p))
	}
	for i := uint16(0); i < 6; i++ {
		is = append(is, base, base+1+i, base+1+(i+1)%6)
	}
	return vs, is
}

func (m *Manager) glow(p light.PrepPoint, zoom float64) {
	var path vector.Path
	path.Arc(p.X, p.Y, p.Radius/float32(zoom), 0, 2*math.Pi, vector.Clockwise)
	path.Close()
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	a := float32(p.A) / 255
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(p.R) / 255 * a
		vs[i].ColorG = float32(p.G) / 255 * a
		vs[i].ColorB = float32(p.B) / 255 * a
		vs[i].ColorA = a
	}
	m.Target.DrawTriangles(vs, is, m.white, &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter})
}

func pointVertex(x, y float32, p light.PrepPoint) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: x, DstY: y,
		SrcX: 1, SrcY: 1,
		ColorR: float32(p.R) / 255,
		ColorG: float32(p.G) / 255,
		ColorB: float32(p.B) / 255,
		ColorA: 1,
	}
}

// DrawHexOutline strokes the hex at screen center (cx, cy)
func (m *Manager) DrawHexOutline(cx, cy float32, zoom float64, clr color.Color) {
	if m.Target == nil {
		return
	}
	hw := float32(float64(m.hexW) / 2 / zoom)
	hh := float32(float64(m.hexH) / 2 / zoom)
	q := hw / 2
	pts := [6][2]float32{{-hw, 0}, {-q, -hh}, {q, -hh}, {hw, 0}, {q, hh}, {-q, hh}}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%6]
		vector.StrokeLine(m.Target, cx+a[0], cy+a[1], cx+b[0], cy+b[1], 1, clr, false)
	}
}

// DrawSelectionBox draws a selection rectangle on the target
func (m *Manager) DrawSelectionBox(x1, y1, x2, y2 int) {
	if m.Target == nil {
		return
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	selColor := color.RGBA{0, 255, 0, 128}
	fillColor := color.RGBA{0, 255, 0, 30}
	w, h := float32(x2-x1), float32(y2-y1)
	vector.DrawFilledRect(m.Target, float32(x1), float32(y1), w, h, fillColor, false)
	vector.StrokeRect(m.Target, float32(x1), float32(y1), w, h, 1, selColor, false)
}
