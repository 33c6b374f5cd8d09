package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/demo"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/input"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/1siamBot/hex-engine/engine/render/ebitensprites"
	"github.com/1siamBot/hex-engine/engine/settings"
	"github.com/1siamBot/hex-engine/engine/trace"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/sirupsen/logrus"
)

const minutesPerDay = 24 * 60

// Game implements ebiten.Game over a hex manager
type Game struct {
	hex     *hexmap.Manager
	sprites *ebitensprites.Manager
	input   *input.InputState
	cfg     *settings.HexSettings
	storage cache.Storage
	log     *logrus.Entry

	dayTime   int
	contours  bool
	lastTrace string
	lastEvent string
	lights    int
}

func NewGame(cfg *settings.HexSettings, src demo.Sources, spriteDir string) (*Game, error) {
	reg, err := src.Registry()
	if err != nil {
		return nil, err
	}
	sprites := ebitensprites.New(spriteDir, cfg.AnimTickMs, cfg.HexWidth, cfg.HexHeight)
	sprites.SetMaxSize(cfg.HexWidth*4, cfg.HexHeight*8)

	g := &Game{
		sprites: sprites,
		input:   input.NewInputState(cfg.ScrollEdge),
		cfg:     cfg,
		storage: src.Storage(),
		log:     logger.Component("game"),
		dayTime: 12 * 60,
	}
	g.hex = hexmap.New(cfg, reg, sprites, sprites,
		hexmap.WithClock(core.NewFrameClock(cfg.MoveStepMs)),
		hexmap.WithEventBus(core.NewEventBus()),
	)
	g.listen()
	if err := src.Load(g.hex); err != nil {
		return nil, err
	}
	g.hex.SetDayTime(g.dayTime)
	g.choose(demo.PlayerID)
	return g, nil
}

func (g *Game) listen() {
	ev := g.hex.Events()
	ev.On(core.EvtMapLoaded, func(e core.Event) {
		g.log.WithField("pid", e.Payload).Info("map ready")
	})
	ev.On(core.EvtLightRebuilt, func(core.Event) { g.lights++ })
	for _, t := range []core.EventType{core.EvtCritterMoved, core.EvtCritterAdded, core.EvtCritterRemoved, core.EvtItemAdded, core.EvtItemRemoved} {
		ev.On(t, func(e core.Event) {
			g.lastEvent = fmt.Sprintf("%s #%d at %d,%d", e.Type, e.ID, e.Hex.X, e.Hex.Y)
		})
	}
}

// choose makes id the controlled critter and centers the view on it
func (g *Game) choose(id uint32) {
	c, ok := g.hex.GetCritter(id)
	if !ok || !g.hex.SetChosen(id) {
		return
	}
	g.hex.LockScroll(id, false)
	g.hex.FindSetCenter(c.Hex.X, c.Hex.Y)
}

func (g *Game) Update() error {
	clock := g.hex.Clock()
	clock.Update()
	dt := clock.Dt()

	g.input.Update(g.cfg.ScreenWidth, g.cfg.ScreenHeight)
	g.handleCamera(dt)
	g.handleKeys()
	g.handleMouse()

	g.hex.ProcessMoves(dt)
	g.hex.Events().Dispatch()
	return nil
}

func (g *Game) handleCamera(dt float64) {
	if step := g.input.ZoomStep(); step != 0 {
		g.hex.ChangeZoom(step)
	}
	if g.input.MiddlePressed && (g.input.MouseDX != 0 || g.input.MouseDY != 0) {
		z := g.hex.Viewport().Zoom
		g.hex.ScrollOffset(-float64(g.input.MouseDX)*z, -float64(g.input.MouseDY)*z, 0, false)
	}
	g.hex.Scroll(dt, g.input.ScrollKeys())
}

func (g *Game) handleKeys() {
	in := g.input
	switch {
	case in.IsKeyJustPressed(ebiten.KeyR):
		g.cfg.ShowRoof = !g.cfg.ShowRoof
	case in.IsKeyJustPressed(ebiten.KeyF):
		g.hex.SwitchShowFog()
	case in.IsKeyJustPressed(ebiten.KeyT):
		g.hex.SwitchShowTrack()
	case in.IsKeyJustPressed(ebiten.KeyM):
		n := g.hex.MarkPassedHexes()
		g.log.WithField("hexes", n).Debug("reach marked")
	case in.IsKeyJustPressed(ebiten.KeyC):
		g.contours = !g.contours
		if g.contours {
			g.hex.SetCrittersContour(render.ContourRed)
		} else {
			g.hex.SetCrittersContour(render.ContourNone)
		}
	case in.IsKeyJustPressed(ebiten.KeyN):
		g.dayTime = (g.dayTime + 60) % minutesPerDay
		g.hex.SetDayTime(g.dayTime)
	case in.IsKeyJustPressed(ebiten.KeySpace):
		if c, ok := g.hex.GetCritter(g.hex.Chosen()); ok {
			g.hex.ScrollToHex(c.Hex.X, c.Hex.Y, g.cfg.ScrollSpeed, true)
		}
	case in.IsKeyJustPressed(ebiten.Key0):
		g.hex.ChangeZoom(0)
	case in.IsKeyJustPressed(ebiten.KeyF5):
		g.quickSave()
	}
}

func (g *Game) handleMouse() {
	in := g.input
	cursor, onMap := g.hex.SetCursorPos(in.MouseX, in.MouseY, true)

	if in.Clicked() {
		if c, ok := g.hex.GetCritterPixel(in.MouseX, in.MouseY, true); ok && c.ID != g.hex.Chosen() {
			g.choose(c.ID)
			return
		}
		if onMap {
			g.walkTo(cursor)
		}
	}
	if in.RightJustPressed && onMap {
		g.shoot(cursor)
	}
}

// walkTo sends the chosen critter toward h, stopping next to it when h is taken
func (g *Game) walkTo(h hexgeom.Hex) {
	c, ok := g.hex.GetCritter(g.hex.Chosen())
	if !ok {
		return
	}
	req := pathfind.Request{Critter: c.ID, From: c.Hex, To: h}
	steps, found := g.hex.FindPath(req)
	if !found {
		res, cut := g.hex.CutPath(req, 1)
		if !cut {
			return
		}
		steps = res.Steps
	}
	if err := g.hex.MoveCritter(c.ID, steps); err != nil {
		g.log.WithError(err).Warn("move refused")
	}
}

// shoot traces from the chosen critter to h and leaves the line in the track
func (g *Game) shoot(h hexgeom.Hex) {
	c, ok := g.hex.GetCritter(g.hex.Chosen())
	if !ok {
		return
	}
	res, ok := g.hex.TraceBullet(trace.Request{
		From: c.Hex, To: h, CheckPassed: true, CollectSteps: true,
		IsAlly: func(id uint32) bool { return id != c.ID },
		Safe:   true,
	})
	if !ok {
		return
	}
	g.hex.ClearHexTrack()
	for _, s := range res.Steps {
		g.hex.SetHexTrack(s.X, s.Y, maplib.TrackFull)
	}
	g.hex.SetHexTrack(res.Block.X, res.Block.Y, maplib.TrackHalf)
	if !g.cfg.ShowTrack {
		g.hex.SwitchShowTrack()
	}
	switch {
	case res.Blocked:
		g.lastTrace = fmt.Sprintf("blocked at %d,%d", res.Block.X, res.Block.Y)
	case res.Unsafe:
		g.lastTrace = fmt.Sprintf("critter in the way at %d,%d", res.Block.X, res.Block.Y)
	default:
		g.lastTrace = fmt.Sprintf("clear to %d,%d", res.Block.X, res.Block.Y)
	}
}

func (g *Game) quickSave() {
	if g.storage == nil {
		g.log.Warn("no cache directory, quick save skipped")
		return
	}
	pm, err := g.hex.GetProtoMap()
	if err == nil {
		err = cache.SaveMap(g.storage, pm)
	}
	if err != nil {
		g.log.WithError(err).Error("quick save failed")
		return
	}
	g.log.WithField("pid", pm.Pid).Info("map cached")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{12, 12, 18, 255})
	g.sprites.Target = screen
	g.hex.DrawMap()

	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	cur, steps, ok := g.hex.Cursor()
	hexInfo := "-"
	if ok {
		hexInfo = fmt.Sprintf("%d,%d", cur.X, cur.Y)
		if steps >= 0 {
			hexInfo += fmt.Sprintf(" (%d steps)", steps)
		}
		lr, lg, lb := g.hex.Light().Light(cur.X, cur.Y)
		hexInfo += fmt.Sprintf(" light %d/%d/%d", lr, lg, lb)
	}
	info := fmt.Sprintf(
		"Hex Engine | FPS: %.0f | Tick: %d | Time %02d:%02d | Zoom %.2f\n"+
			"Hex: %s | Sprites: %d | Light rebuilds: %d\n"+
			"Trace: %s | Last: %s\n"+
			"[WASD] Scroll [Wheel] Zoom [LClick] Walk/Choose [RClick] Trace\n"+
			"[R] Roof [F] Fog [T] Track [M] Reach [C] Contours [N] Hour [Space] Center [F5] Cache",
		ebiten.ActualFPS(), g.hex.Clock().TickMs(), g.dayTime/60, g.dayTime%60, g.hex.Viewport().Zoom,
		hexInfo, g.hex.DrawTree().Len(), g.lights,
		g.lastTrace, g.lastEvent,
	)
	ebitenutil.DebugPrint(screen, info)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.cfg.ScreenWidth || outsideHeight != g.cfg.ScreenHeight {
		g.cfg.ScreenWidth, g.cfg.ScreenHeight = outsideWidth, outsideHeight
		g.hex.ResizeView(outsideWidth, outsideHeight)
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
	flag.StringVar(&src.Map, "map", "", "map JSON, demo map when empty")
	flag.StringVar(&src.CacheDir, "cache", "", "map cache directory")
	flag.UintVar(&mapPid, "pid", 0, "map pid to load from the cache")
	flag.IntVar(&src.Size, "size", 64, "demo map size")
	flag.StringVar(&spriteDir, "sprites", "", "sprite directory")
	flag.Parse()
	src.MapPid = uint32(mapPid)

	logger.Init()
	cfg := settings.Default()
	if configPath != "" {
		var err error
		if cfg, err = settings.Load(configPath); err != nil {
			logger.Log.WithError(err).Fatal("bad settings")
		}
	}

	game, err := NewGame(cfg, src, spriteDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("start failed")
	}

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Hex Engine")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(game); err != nil {
		logger.Log.WithError(err).Fatal("game exited")
	}
}
