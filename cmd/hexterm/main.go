// Command hexterm inspects a hex map in the terminal: passability, light,
// fog and roof overlays, with path and trace probes from the chosen critter.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1siamBot/hex-engine/engine/demo"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/1siamBot/hex-engine/engine/settings"
	"github.com/1siamBot/hex-engine/engine/trace"
	"github.com/gdamore/tcell/v2"
)

const (
	statusLines = 3
	tickRate    = 50 * time.Millisecond
)

// cellSprites satisfies the sprite interfaces without drawing; the
// terminal reads the grid directly
type cellSprites struct{ hexW, hexH int }

func (s cellSprites) SpriteInfo(render.SpriteID) (render.SpriteInfo, bool) {
	return render.SpriteInfo{Width: s.hexW, Height: s.hexH}, true
}
func (cellSprites) DrawSprite(render.SpriteID, float64, float64, render.DrawOptions) {}
func (cellSprites) DrawContour(render.SpriteID, float64, float64, float64, uint32)   {}
func (cellSprites) DrawPoints([]light.PrepPoint, float64)                            {}
func (cellSprites) IsPixNoTransp(render.SpriteID, int, int) bool                     { return false }
func (cellSprites) LoadAnimation(name string) (*render.Frames, bool) {
	return &render.Frames{Name: name, IDs: []render.SpriteID{1}}, true
}

// Inspector owns the terminal and the hex manager it shows
type Inspector struct {
	screen tcell.Screen
	hex    *hexmap.Manager

	cursor           hexgeom.Hex
	originX, originY int
	overlay          Overlay
	marks            map[hexgeom.Hex]mark
	path             []hexgeom.Dir
	pathFrom         hexgeom.Hex
	dumpPath         string
	dayTime          int
	status           string
	lastTick         time.Time
}

func NewInspector(screen tcell.Screen, m *hexmap.Manager) *Inspector {
	in := &Inspector{
		screen:   screen,
		hex:      m,
		marks:    make(map[hexgeom.Hex]mark),
		dayTime:  12 * 60,
		lastTick: time.Now(),
	}
	if c, ok := m.GetCritter(m.Chosen()); ok {
		in.cursor = c.Hex
		in.center(c.Hex)
	}
	return in
}

// center moves the origin so h is in the middle of the map area
func (in *Inspector) center(h hexgeom.Hex) {
	w, ht := in.screen.Size()
	in.originX = max(0, h.X-w/4)
	in.originY = max(0, h.Y-(ht-statusLines)/4)
}

func (in *Inspector) moveCursor(dx, dy int) {
	n := hexgeom.Hex{X: in.cursor.X + dx, Y: in.cursor.Y + dy}
	if in.hex.IsHexValid(n.X, n.Y) {
		in.cursor = n
	}
	w, h := in.screen.Size()
	col, row := cellPos(in.cursor, in.originX, in.originY)
	if col < 0 || col >= w || row < 0 || row >= h-statusLines {
		in.center(in.cursor)
	}
}

func (in *Inspector) chosen() (*hexmap.Critter, bool) {
	c, ok := in.hex.GetCritter(in.hex.Chosen())
	if !ok {
		in.status = "no chosen critter, press c on one"
	}
	return c, ok
}

// probePath finds a path from the chosen critter to the cursor
func (in *Inspector) probePath() {
	clear(in.marks)
	c, ok := in.chosen()
	if !ok {
		return
	}
	steps, found := in.hex.FindPath(pathfind.Request{Critter: c.ID, From: c.Hex, To: in.cursor})
	if !found {
		in.path = nil
		in.status = fmt.Sprintf("no path to %d,%d", in.cursor.X, in.cursor.Y)
		return
	}
	in.path, in.pathFrom = steps, c.Hex
	for _, h := range pathfind.StepHexes(c.Hex, steps) {
		in.marks[h] = markPath
	}
	in.status = fmt.Sprintf("path of %d steps", len(steps))
}

// probeTrace traces a shot from the chosen critter to the cursor
func (in *Inspector) probeTrace() {
	clear(in.marks)
	c, ok := in.chosen()
	if !ok {
		return
	}
	res, _ := in.hex.TraceBullet(trace.Request{
		From: c.Hex, To: in.cursor, CheckPassed: true, CollectSteps: true,
		FindType: func(id uint32) bool { return id != c.ID },
	})
	for _, h := range res.Steps {
		in.marks[h] = markTrace
	}
	if res.Blocked {
		in.marks[res.Block] = markBlock
		in.status = fmt.Sprintf("blocked at %d,%d", res.Block.X, res.Block.Y)
		return
	}
	in.status = fmt.Sprintf("clear to %d,%d, critters on line %v", res.Block.X, res.Block.Y, res.Critters)
}

func (in *Inspector) walk() {
	c, ok := in.chosen()
	if !ok {
		return
	}
	if len(in.path) == 0 || in.pathFrom != c.Hex {
		in.probePath()
	}
	if err := in.hex.MoveCritter(c.ID, in.path); err != nil {
		in.status = err.Error()
		return
	}
	clear(in.marks)
	in.path = nil
}

func (in *Inspector) choose() {
	f := in.hex.GetField(in.cursor.X, in.cursor.Y)
	if f == nil || f.Crit == 0 {
		in.status = "no critter under the cursor"
		return
	}
	in.hex.SetChosen(f.Crit)
	in.status = fmt.Sprintf("critter %d chosen", f.Crit)
}

// dump writes the current path in the binary step format
func (in *Inspector) dump() {
	if len(in.path) == 0 {
		in.status = "no path to dump"
		return
	}
	f, err := os.Create(in.dumpPath)
	if err == nil {
		err = pathfind.EncodeSteps(f, in.pathFrom, in.path)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		in.status = "dump failed: " + err.Error()
		return
	}
	in.status = fmt.Sprintf("%d steps written to %s", len(in.path), in.dumpPath)
}

// handleKey applies one key and reports whether the inspector keeps running
func (in *Inspector) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		in.moveCursor(0, -1)
	case tcell.KeyDown:
		in.moveCursor(0, 1)
	case tcell.KeyLeft:
		in.moveCursor(-1, 0)
	case tcell.KeyRight:
		in.moveCursor(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			in.originX = max(0, in.originX-4)
		case 'l':
			in.originX += 4
		case 'k':
			in.originY = max(0, in.originY-4)
		case 'j':
			in.originY += 4
		case 'o':
			in.overlay = (in.overlay + 1) % overlayCount
		case 'p':
			in.probePath()
		case 't':
			in.probeTrace()
		case 'g':
			in.walk()
		case 'r':
			in.status = fmt.Sprintf("%d hexes reachable", in.hex.MarkPassedHexes())
		case 'x':
			in.hex.ClearHexTrack()
			clear(in.marks)
		case 'c':
			in.choose()
		case 'f':
			in.status = fmt.Sprintf("fog %v", in.hex.SwitchShowFog())
		case 'n':
			in.dayTime = (in.dayTime + 60) % (24 * 60)
			in.hex.SetDayTime(in.dayTime)
			in.status = fmt.Sprintf("time %02d:00", in.dayTime/60)
		case 'w':
			in.dump()
		}
	}
	return true
}

// tick advances movement and refreshes fog and light
func (in *Inspector) tick(now time.Time) {
	dt := now.Sub(in.lastTick).Seconds()
	in.lastTick = now
	in.hex.Clock().Update()
	in.hex.ProcessMoves(dt)
	in.hex.DrawMap()
	in.hex.Events().Dispatch()
}

func (in *Inspector) run() {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := in.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	in.tick(time.Now())
	in.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !in.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				in.screen.Sync()
			}
			in.draw()
		case now := <-ticker.C:
			in.tick(now)
			in.draw()
		}
	}
}

func main() {
	var (
		src        demo.Sources
		configPath string
		logPath    string
		dumpPath   string
		mapPid     uint
	)
	flag.StringVar(&configPath, "config", "", "hex settings JSON")
	flag.StringVar(&src.Protos, "protos", "", "prototype registry JSON, demo prototypes when empty")
	flag.StringVar(&src.Map, "map", "", "map JSON, demo map when empty")
	flag.StringVar(&src.CacheDir, "cache", "", "map cache directory")
	flag.UintVar(&mapPid, "pid", 0, "map pid to load from the cache")
	flag.IntVar(&src.Size, "size", 64, "demo map size")
	flag.StringVar(&logPath, "log", "", "log file, logs are dropped when empty")
	flag.StringVar(&dumpPath, "dump", "path.steps", "file the w key writes the current path to")
	flag.Parse()
	src.MapPid = uint32(mapPid)

	logger.Init()
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger.SetOutput(logOut)

	cfg := settings.Default()
	if configPath != "" {
		var err error
		if cfg, err = settings.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "bad settings: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.ShowFog = true

	reg, err := src.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	sprites := cellSprites{hexW: cfg.HexWidth, hexH: cfg.HexHeight}
	m := hexmap.New(cfg, reg, sprites, sprites)
	if err := src.Load(m); err != nil {
		fmt.Fprintf(os.Stderr, "load map: %v\n", err)
		os.Exit(1)
	}
	m.SetChosen(demo.PlayerID)

	screen, err := tcell.NewScreen()
	if err == nil {
		err = screen.Init()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	in := NewInspector(screen, m)
	in.dumpPath = dumpPath
	in.hex.SetDayTime(in.dayTime)
	in.run()
}
