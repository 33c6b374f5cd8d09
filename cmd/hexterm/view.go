package main

import (
	"fmt"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/gdamore/tcell/v2"
)

// Overlay selects what the map cells show
type Overlay uint8

const (
	OverlayPass Overlay = iota
	OverlayLight
	OverlayFog
	OverlayRoof
	overlayCount
)

var overlayNames = [...]string{"passability", "light", "fog", "roofs"}

func (o Overlay) String() string {
	if int(o) < len(overlayNames) {
		return overlayNames[o]
	}
	return "unknown"
}

// mark is a transient annotation drawn over a hex
type mark uint8

const (
	markNone mark = iota
	markPath
	markTrace
	markBlock
)

var (
	styleBase    = tcell.StyleDefault
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleItem    = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleCritter = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleChosen  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDead    = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleTrace   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleBlock   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

// cellPos places a hex on the terminal. Each hex row takes two lines and
// odd columns sit half a row higher, matching the neighbor layout.
func cellPos(h hexgeom.Hex, originX, originY int) (col, row int) {
	return (h.X - originX) * 2, (h.Y-originY)*2 + 1 - (h.X & 1)
}

// glyph picks the character and style of a field for the passability view
func glyph(m *hexmap.Manager, f *maplib.Field) (rune, tcell.Style) {
	switch {
	case f.Crit != 0:
		if f.Crit == m.Chosen() {
			return '@', styleChosen
		}
		return 'c', styleCritter
	case len(f.MultihexCrits) > 0:
		return 'o', styleCritter
	case len(f.DeadCrits) > 0:
		return '%', styleDead
	case f.Has(maplib.FlagIsWall):
		return '#', styleWall
	case f.IsNotPassed():
		return 'X', styleWall
	case len(f.Items) > 0:
		return 'i', styleItem
	case f.IsNotRaked():
		return '+', styleWall
	}
	return '.', styleBase
}

// renderMap draws the grid window starting at the origin
func (in *Inspector) renderMap() {
	g := in.hex.Grid()
	w, h := in.screen.Size()
	rows := h - statusLines
	for y := in.originY; y < g.Height; y++ {
		for x := in.originX; x < g.Width; x++ {
			hx := hexgeom.Hex{X: x, Y: y}
			col, row := cellPos(hx, in.originX, in.originY)
			if col >= w {
				break
			}
			if row < 0 || row >= rows {
				continue
			}
			ch, st := in.cell(hx)
			if hx == in.cursor {
				st = st.Reverse(true)
			}
			in.screen.SetContent(col, row, ch, nil, st)
		}
		if (y-in.originY)*2 >= rows {
			break
		}
	}
}

// cell combines the overlay with transient marks
func (in *Inspector) cell(h hexgeom.Hex) (rune, tcell.Style) {
	g := in.hex.Grid()
	f := g.FieldAt(h)
	ch, st := glyph(in.hex, f)

	switch in.overlay {
	case OverlayLight:
		r, gr, b := in.hex.Light().Light(h.X, h.Y)
		st = st.Background(tcell.NewRGBColor(int32(r), int32(gr), int32(b)))
		if ch == '.' {
			ch = ' '
		}
	case OverlayFog:
		switch g.FogAt(h.X, h.Y) {
		case maplib.FogShroud:
			ch, st = ' ', styleBase
		case maplib.FogExplored:
			st = st.Dim(true)
		}
	case OverlayRoof:
		if f.RoofNum > 0 {
			ch, st = rune('0'+f.RoofNum%10), styleItem
		}
	}

	switch g.TrackAt(h.X, h.Y) {
	case maplib.TrackFull:
		st = st.Underline(true)
	case maplib.TrackHalf:
		st = st.Dim(true).Underline(true)
	}

	switch in.marks[h] {
	case markPath:
		ch, st = '*', stylePath
	case markTrace:
		ch, st = '-', styleTrace
	case markBlock:
		ch, st = '!', styleBlock
	}
	return ch, st
}

// hexLine summarises the hex under the cursor
func (in *Inspector) hexLine() string {
	h := in.cursor
	f := in.hex.GetField(h.X, h.Y)
	if f == nil {
		return fmt.Sprintf("%d,%d outside", h.X, h.Y)
	}
	r, g, b := in.hex.Light().Light(h.X, h.Y)
	s := fmt.Sprintf("%d,%d flags %08b light %d/%d/%d tiles %d items %d roof %d",
		h.X, h.Y, f.Flags, r, g, b, len(f.Tiles), len(f.Items), f.RoofNum)
	if f.Crit != 0 {
		s += fmt.Sprintf(" critter %d", f.Crit)
	}
	return s
}

func (in *Inspector) renderStatus() {
	w, h := in.screen.Size()
	lines := [statusLines]string{
		fmt.Sprintf(" %s | %s", in.overlay, in.hexLine()),
		" " + in.status,
		" [arrows] cursor [hjkl] scroll [o] overlay [p] path [t] trace [g] go [r] reach [c] choose [n] hour [w] dump [q] quit",
	}
	for i, line := range lines {
		row := h - statusLines + i
		if row < 0 {
			continue
		}
		for x := 0; x < w; x++ {
			ch := ' '
			if x < len(line) {
				ch = rune(line[x])
			}
			in.screen.SetContent(x, row, ch, nil, styleStatus)
		}
	}
}

func (in *Inspector) draw() {
	in.screen.Clear()
	if in.hex.IsMapLoaded() {
		in.renderMap()
	}
	in.renderStatus()
	in.screen.Show()
}
