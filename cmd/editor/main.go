package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/1siamBot/hex-engine/editor"
	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/demo"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/input"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/1siamBot/hex-engine/engine/render/ebitensprites"
	"github.com/1siamBot/hex-engine/engine/settings"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
)

const sidebarWidth = 200

var tileNames = []string{"grass", "floor", "dirt", "sand", "road", "roof"}

// pidLister is implemented by registries that can enumerate their prototypes
type pidLister interface {
	ItemPids() []uint32
	CritterPids() []uint32
}

type EditorApp struct {
	editor  *editor.Editor
	sprites *ebitensprites.Manager
	input   *input.InputState
	cfg     *settings.HexSettings
	reg     proto.Registry
	storage cache.Storage
	log     *logrus.Entry

	itemPids    []uint32
	critterPids []uint32
	tileIdx     int
	itemIdx     int
	critterIdx  int

	hover     hexgeom.Hex
	hoverOK   bool
	lastPaint hexgeom.Hex
	status    string
}

func NewEditorApp(cfg *settings.HexSettings, src demo.Sources, spriteDir string) (*EditorApp, error) {
	reg, err := src.Registry()
	if err != nil {
		return nil, err
	}
	sprites := ebitensprites.New(spriteDir, cfg.AnimTickMs, cfg.HexWidth, cfg.HexHeight)
	m := hexmap.New(cfg, reg, sprites, sprites, hexmap.WithMapperMode(true))

	a := &EditorApp{
		editor:  editor.NewEditor(m),
		sprites: sprites,
		input:   input.NewInputState(cfg.ScrollEdge),
		cfg:     cfg,
		reg:     reg,
		storage: src.Storage(),
		log:     logger.Component("editor"),
	}
	if l, ok := reg.(pidLister); ok {
		a.itemPids, a.critterPids = l.ItemPids(), l.CritterPids()
	}
	m.Events().On(core.EvtMapLoaded, func(e core.Event) {
		a.status = fmt.Sprintf("map %v loaded", e.Payload)
	})

	switch {
	case src.Map != "":
		err = a.editor.LoadMap(src.Map)
	case a.storage != nil && src.MapPid != 0:
		err = m.LoadMapFromCache(a.storage, src.MapPid)
	default:
		err = m.SetProtoMap(demo.Map(src.Size))
	}
	if err != nil {
		return nil, err
	}
	a.editor.Tile = maplib.Tile{Name: tileNames[0]}
	a.syncPid()
	return a, nil
}

func (a *EditorApp) Update() error {
	m := a.editor.Map
	m.Clock().Update()
	a.input.Update(a.cfg.ScreenWidth, a.cfg.ScreenHeight)

	if step := a.input.ZoomStep(); step != 0 {
		m.ChangeZoom(step)
	}
	if a.input.MiddlePressed {
		z := m.Viewport().Zoom
		m.ScrollOffset(-float64(a.input.MouseDX)*z, -float64(a.input.MouseDY)*z, 0, false)
	}
	if !a.input.Ctrl() {
		m.Scroll(m.Clock().Dt(), a.input.ScrollKeys())
	}

	a.hover, a.hoverOK = m.SetCursorPos(a.input.MouseX, a.input.MouseY, false)
	a.handleKeys()
	if a.input.MouseX < a.cfg.ScreenWidth-sidebarWidth {
		a.handleMouse()
	}
	m.Events().Dispatch()
	return nil
}

func (a *EditorApp) handleKeys() {
	in := a.input
	ed := a.editor

	for i, tool := range []editor.EditorTool{editor.ToolSelect, editor.ToolTile, editor.ToolRoof, editor.ToolItem, editor.ToolCritter, editor.ToolErase} {
		if in.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			ed.Tool = tool
			a.syncPid()
		}
	}
	if in.IsKeyJustPressed(ebiten.KeyTab) {
		a.cycleBrush(1)
	}
	if in.IsKeyJustPressed(ebiten.KeyQ) {
		ed.Dir = (ed.Dir + hexgeom.DirCount - 1) % hexgeom.DirCount
	}
	if in.IsKeyJustPressed(ebiten.KeyE) {
		ed.Dir = (ed.Dir + 1) % hexgeom.DirCount
	}
	if in.IsKeyJustPressed(ebiten.KeyEscape) {
		ed.ClearSelection()
	}
	if in.IsKeyJustPressed(ebiten.KeyR) && !in.Ctrl() {
		a.cfg.ShowRoof = !a.cfg.ShowRoof
	}
	if in.IsKeyJustPressed(ebiten.KeyM) {
		a.status = fmt.Sprintf("%d hexes reachable", ed.Map.MarkPassedHexes())
	}
	if in.IsKeyJustPressed(ebiten.KeyT) {
		ed.Map.SwitchShowTrack()
	}
	if in.IsKeyJustPressed(ebiten.KeyI) && ed.Pid != 0 {
		hidden := ed.Map.SwitchIgnorePid(ed.Pid)
		a.status = fmt.Sprintf("pid %d hidden: %v", ed.Pid, hidden)
	}
	if in.IsKeyJustPressed(ebiten.KeyF) && ed.Pid != 0 {
		if ed.Map.IsFastPid(ed.Pid) {
			ed.Map.RemoveFastPid(ed.Pid)
		} else {
			ed.Map.AddFastPid(ed.Pid)
		}
	}
	if in.IsKeyJustPressed(ebiten.KeyDelete) || in.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.eraseSelection()
	}

	if !in.Ctrl() {
		return
	}
	switch {
	case in.IsKeyJustPressed(ebiten.KeyZ) && in.Shift(), in.IsKeyJustPressed(ebiten.KeyY):
		ed.Redo()
	case in.IsKeyJustPressed(ebiten.KeyZ):
		ed.Undo()
	case in.IsKeyJustPressed(ebiten.KeyS):
		if err := ed.SaveMap(""); err != nil {
			a.log.WithError(err).Error("save failed")
			a.status = "save failed"
		} else {
			a.status = "saved " + ed.FilePath
		}
	case in.IsKeyJustPressed(ebiten.KeyK):
		if a.storage == nil {
			a.status = "no cache directory"
		} else if err := ed.SaveCache(a.storage); err != nil {
			a.log.WithError(err).Error("cache save failed")
		} else {
			a.status = "map cached"
		}
	case in.IsKeyJustPressed(ebiten.KeyC):
		if !a.hoverOK {
			break
		}
		if err := ed.CopyHexReport(a.hover); err != nil {
			a.log.WithError(err).Warn("clipboard unavailable")
			a.status = "clipboard unavailable"
		} else {
			a.status = fmt.Sprintf("hex %d,%d copied", a.hover.X, a.hover.Y)
		}
	}
}

func (a *EditorApp) handleMouse() {
	in := a.input
	ed := a.editor
	if ed.Tool == editor.ToolSelect {
		if in.LeftJustReleased && in.Dragging {
			n := ed.SelectRect(in.DragStartX, in.DragStartY, in.MouseX, in.MouseY, in.Shift())
			a.status = fmt.Sprintf("%d hexes selected", n)
		} else if in.Clicked() && a.hoverOK {
			ed.Select(a.hover, in.Shift())
		}
		return
	}
	if !a.hoverOK {
		return
	}
	// tiles paint while dragging, objects once per click
	drag := ed.Tool == editor.ToolTile || ed.Tool == editor.ToolRoof
	if in.LeftJustPressed || (drag && in.LeftPressed && a.hover != a.lastPaint) {
		a.lastPaint = a.hover
		if err := ed.Paint(a.hover); err != nil {
			a.status = err.Error()
		}
	}
}

func (a *EditorApp) eraseSelection() {
	ed := a.editor
	tool := ed.Tool
	ed.Tool = editor.ToolErase
	for _, h := range ed.Selected() {
		if err := ed.Paint(h); err != nil {
			a.log.WithError(err).WithField("hex", h).Debug("nothing erased")
		}
	}
	ed.Tool = tool
}

// cycleBrush steps the brush of the current tool through its palette
func (a *EditorApp) cycleBrush(step int) {
	switch a.editor.Tool {
	case editor.ToolTile, editor.ToolRoof:
		a.tileIdx = wrap(a.tileIdx+step, len(tileNames))
		a.editor.Tile = maplib.Tile{Name: tileNames[a.tileIdx]}
	case editor.ToolItem:
		a.itemIdx = wrap(a.itemIdx+step, len(a.itemPids))
	case editor.ToolCritter:
		a.critterIdx = wrap(a.critterIdx+step, len(a.critterPids))
	}
	a.syncPid()
}

func (a *EditorApp) syncPid() {
	switch a.editor.Tool {
	case editor.ToolItem:
		if len(a.itemPids) > 0 {
			a.editor.Pid = a.itemPids[a.itemIdx]
		}
	case editor.ToolCritter:
		if len(a.critterPids) > 0 {
			a.editor.Pid = a.critterPids[a.critterIdx]
		}
	}
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (a *EditorApp) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})
	a.sprites.Target = screen
	m := a.editor.Map
	m.DrawMap()

	v := m.Viewport()
	outline := func(h hexgeom.Hex, clr color.Color) {
		x, y := v.HexViewPos(h)
		sx, sy := v.ToScreen(float64(x), float64(y))
		a.sprites.DrawHexOutline(float32(sx), float32(sy), v.Zoom, clr)
	}
	for _, h := range a.editor.Selected() {
		outline(h, color.RGBA{0, 200, 255, 200})
	}
	if a.hoverOK {
		outline(a.hover, color.RGBA{255, 255, 0, 150})
	}
	if x1, y1, x2, y2, active := a.input.DragRect(); active && a.editor.Tool == editor.ToolSelect {
		a.sprites.DrawSelectionBox(x1, y1, x2, y2)
	}

	a.drawSidebar(screen)

	info := fmt.Sprintf("Hex Mapper | Hex %d,%d | Zoom %.2f | Sprites %d | %s",
		a.hover.X, a.hover.Y, v.Zoom, m.DrawTree().Len(), a.status)
	ebitenutil.DebugPrintAt(screen, info, 5, a.cfg.ScreenHeight-20)
}

func (a *EditorApp) drawSidebar(screen *ebiten.Image) {
	sx := float32(a.cfg.ScreenWidth - sidebarWidth)
	vector.DrawFilledRect(screen, sx, 0, sidebarWidth, float32(a.cfg.ScreenHeight), color.RGBA{20, 20, 40, 220}, false)

	ed := a.editor
	y := 10
	ebitenutil.DebugPrintAt(screen, "=== TOOLS ===", int(sx)+10, y)
	y += 20
	for i, tool := range []editor.EditorTool{editor.ToolSelect, editor.ToolTile, editor.ToolRoof, editor.ToolItem, editor.ToolCritter, editor.ToolErase} {
		clr := color.RGBA{50, 50, 80, 255}
		if tool == ed.Tool {
			clr = color.RGBA{100, 100, 200, 255}
		}
		vector.DrawFilledRect(screen, sx+10, float32(y), 180, 20, clr, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[%d] %s", i+1, tool), int(sx)+15, y+3)
		y += 22
	}

	y += 10
	ebitenutil.DebugPrintAt(screen, "=== BRUSH [Tab] ===", int(sx)+10, y)
	y += 20
	switch ed.Tool {
	case editor.ToolTile, editor.ToolRoof:
		ebitenutil.DebugPrintAt(screen, "tile "+ed.Tile.Name, int(sx)+10, y)
	case editor.ToolItem:
		name := "-"
		if it, ok := a.reg.Item(ed.Pid); ok {
			name = it.Name
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("item %d %s", ed.Pid, name), int(sx)+10, y)
	case editor.ToolCritter:
		name := "-"
		if cr, ok := a.reg.Critter(ed.Pid); ok {
			name = cr.Name
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("critter %d %s dir %d", ed.Pid, name, ed.Dir), int(sx)+10, y)
	}
	y += 30

	for _, line := range []string{
		"[Q/E] Dir [Esc] Deselect",
		"[Del] Erase selection",
		"[R] Roof [T] Track [M] Reach",
		"[I] Hide pid [F] Fast pid",
		"[Ctrl+Z/Y] Undo/Redo",
		"[Ctrl+S] Save [Ctrl+K] Cache",
		"[Ctrl+C] Copy hex",
	} {
		ebitenutil.DebugPrintAt(screen, line, int(sx)+10, y)
		y += 18
	}

	if a.hoverOK {
		y += 10
		ebitenutil.DebugPrintAt(screen, ed.HexReport(a.hover), int(sx)+10, y)
	}
	if ed.Modified {
		ebitenutil.DebugPrintAt(screen, "* MODIFIED *", int(sx)+10, a.cfg.ScreenHeight-40)
	}
}

func (a *EditorApp) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.cfg.ScreenWidth || outsideHeight != a.cfg.ScreenHeight {
		a.cfg.ScreenWidth, a.cfg.ScreenHeight = outsideWidth, outsideHeight
		a.editor.Map.ResizeView(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func main() {
	var (
		src        demo.Sources
		configPath string
		spriteDir  string
		mapPid     uint
	)
	flag.StringVar(&configPath, "config", "", "hex settings JSON")
	flag.StringVar(&src.Protos, "protos", "", "prototype registry JSON, demo prototypes when empty")
	flag.StringVar(&src.CacheDir, "cache", "", "map cache directory")
	flag.UintVar(&mapPid, "pid", 0, "map pid to open from the cache")
	flag.IntVar(&src.Size, "size", 64, "demo map size")
	flag.StringVar(&spriteDir, "sprites", "", "sprite directory")
	flag.Parse()
	src.MapPid = uint32(mapPid)
	if flag.NArg() > 0 {
		src.Map = flag.Arg(0)
	}

	logger.Init()
	cfg := settings.Default()
	if configPath != "" {
		var err error
		if cfg, err = settings.Load(configPath); err != nil {
			logger.Log.WithError(err).Fatal("bad settings")
		}
	}
	cfg.MapperMode = true

	app, err := NewEditorApp(cfg, src, spriteDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("start failed")
	}

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Hex Mapper")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(app); err != nil {
		logger.Log.WithError(err).Fatal("editor exited")
	}
}
