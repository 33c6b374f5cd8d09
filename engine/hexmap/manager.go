// Package hexmap owns the hex grid of the loaded map and everything built
// on it: objects, path finding, tracing, lighting, the viewport and the
// draw trees handed to the sprite backend.
package hexmap

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/1siamBot/hex-engine/engine/settings"
	"github.com/1siamBot/hex-engine/engine/trace"
)

var (
	ErrMapNotLoaded = errors.New("hexmap: map not loaded")
	ErrUnknownProto = errors.New("hexmap: unknown prototype")
	ErrBadHex       = errors.New("hexmap: hex outside the grid")
	ErrDuplicateID  = errors.New("hexmap: duplicate object id")
	ErrOccupied     = errors.New("hexmap: hex occupied")
	ErrNotFound     = errors.New("hexmap: object not found")
)

// Option configures a Manager
type Option func(*Manager)

// WithEventBus publishes map events on eb instead of a private bus
func WithEventBus(eb *core.EventBus) Option {
	return func(m *Manager) { m.events = eb }
}

// WithClock drives animation frames and movement from c
func WithClock(c *core.FrameClock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithMapperMode starts the manager in mapper mode: no fog, no egg, and
// the fast/ignore pid sets are honored
func WithMapperMode(on bool) Option {
	return func(m *Manager) { m.mapperOpt, m.mapper = on, on }
}

// Manager is the hex map facade used by the game client and the mapper
type Manager struct {
	cfg      *settings.HexSettings
	registry proto.Registry
	sprites  render.SpriteManager
	anims    *render.AnimCache
	events   *core.EventBus
	clock    *core.FrameClock
	log      *logrus.Entry

	grid   *maplib.Grid
	header maplib.ProtoMap // loaded map header, object lists left empty
	mapper bool
	// mapperOpt keeps mapper mode across game map loads
	mapperOpt bool
	finder    *pathfind.Finder
	tracer    *trace.Tracer
	light     *light.Engine
	view      *render.Viewport
	ambient   light.Color
	critters  map[uint32]*Critter
	items     map[uint32]*Item
	chosen    uint32

	tiles *render.DrawTree
	roofs *render.DrawTree
	main  *render.DrawTree
	// deferred tall sprites inserted after the scan passes
	tall []pendingSprite

	egg         render.Egg
	skipRoof    int16
	tilesDirty  bool
	mapDirty    bool
	fogDirty    bool
	fastPids    mapset.Set[uint32]
	ignorePids  mapset.Set[uint32]
	cursor      hexgeom.Hex
	cursorOK    bool
	cursorSteps int
}

type pendingSprite struct {
	s     render.Sprite
	chain *maplib.SpriteChain
}

// New creates a manager with no map loaded
func New(cfg *settings.HexSettings, registry proto.Registry, sprites render.SpriteManager, resolver render.AnimResolver, opts ...Option) *Manager {
	m := &Manager{
		cfg:        cfg,
		registry:   registry,
		sprites:    sprites,
		anims:      render.NewAnimCache(resolver, cfg.StubAnimName),
		log:        logger.Component("hexmap"),
		view:       render.NewViewport(cfg),
		critters:   make(map[uint32]*Critter),
		items:      make(map[uint32]*Item),
		tiles:      render.NewDrawTree(),
		roofs:      render.NewDrawTree(),
		main:       render.NewDrawTree(),
		fastPids:   mapset.New[uint32](),
		ignorePids: mapset.New[uint32](),
		ambient:    light.Color{R: 128, G: 128, B: 128},
	}
	m.egg = render.Egg{Width: cfg.EggWidth, Height: cfg.EggHeight, Alpha: cfg.EggAlpha}
	for _, opt := range opts {
		opt(m)
	}
	if m.events == nil {
		m.events = core.NewEventBus()
	}
	if m.clock == nil {
		m.clock = core.NewFrameClock(cfg.MoveStepMs)
	}
	m.light = light.NewEngine(nil, light.CollectorFunc(m.lightSources), cfg.MaxLightDistance)
	m.light.SetFollowResolver(followResolver{m})
	m.view.SetCritterLocator(func(id uint32) (hexgeom.Hex, bool) {
		cr, ok := m.critters[id]
		if !ok || !cr.onMap {
			return hexgeom.Hex{}, false
		}
		return cr.Hex, true
	})
	return m
}

// Events returns the bus map events are published on
func (m *Manager) Events() *core.EventBus { return m.events }

// Clock returns the frame clock
func (m *Manager) Clock() *core.FrameClock { return m.clock }

// Settings returns the live settings
func (m *Manager) Settings() *settings.HexSettings { return m.cfg }

// Viewport exposes the view for tools that draw overlays
func (m *Manager) Viewport() *render.Viewport { return m.view }

// Light exposes the light engine
func (m *Manager) Light() *light.Engine { return m.light }

// Grid returns the field grid, nil when no map is loaded
func (m *Manager) Grid() *maplib.Grid { return m.grid }

// IsMapLoaded reports whether a grid is present
func (m *Manager) IsMapLoaded() bool { return m.grid != nil }

// MapperMode reports whether the manager runs for the mapper
func (m *Manager) MapperMode() bool { return m.mapper }

// Width returns the grid width, zero without a map
func (m *Manager) Width() int {
	if m.grid == nil {
		return 0
	}
	return m.grid.Width
}

// Height returns the grid height, zero without a map
func (m *Manager) Height() int {
	if m.grid == nil {
		return 0
	}
	return m.grid.Height
}

// GetField returns the field at (hx, hy). Coordinates are not checked.
func (m *Manager) GetField(hx, hy int) *maplib.Field {
	return m.grid.Field(hx, hy)
}

// IsHexValid checks coordinates from untrusted input
func (m *Manager) IsHexValid(hx, hy int) bool {
	return m.grid != nil && m.grid.InBounds(hx, hy)
}

// ResizeField replaces the grid with an empty w x h one. Objects and draw
// trees are dropped; anything obtained from the old grid is invalid.
func (m *Manager) ResizeField(w, h int) error {
	if !m.cfg.InGridBounds(w, h) {
		return m.sizeError(w, h)
	}
	g, err := maplib.NewGrid(w, h)
	if err != nil {
		return err
	}
	m.install(g)
	m.header.Width, m.header.Height = w, h
	m.view.FindSetCenter(w/2, h/2)
	m.RefreshMap()
	m.log.WithFields(logrus.Fields{"width": w, "height": h}).Info("field resized")
	return nil
}

// install swaps in a grid and rebinds every grid consumer
func (m *Manager) install(g *maplib.Grid) {
	m.grid = g
	m.clearObjects()
	m.finder = pathfind.NewFinder(g, m.cfg.MaxFindPath)
	m.tracer = trace.NewTracer(g)
	m.light.Reset(g)
	m.tiles.Unvalidate()
	m.roofs.Unvalidate()
	m.main.Unvalidate()
	m.skipRoof = 0
	m.cursorOK = false
	m.view.SetGrid(g.Width, g.Height, func(h hexgeom.Hex) bool {
		return !g.FieldAt(h).Has(maplib.FlagScrollBlock)
	})
}

func (m *Manager) clearObjects() {
	for k := range m.critters {
		delete(m.critters, k)
	}
	for k := range m.items {
		delete(m.items, k)
	}
	m.chosen = 0
	m.egg.Reset()
}

// emit queues an event stamped with the current tick
func (m *Manager) emit(t core.EventType, id uint32, h hexgeom.Hex, payload interface{}) {
	m.events.Emit(core.Event{Type: t, Tick: m.clock.TickMs(), ID: id, Hex: h, Payload: payload})
}

// SetDayTime sets the ambient color from the map palette for a minute of the day
func (m *Manager) SetDayTime(minute int) {
	c := light.DayColor(minute, m.header.DayTimes, m.header.DayColors)
	if c != m.ambient {
		m.ambient = c
		m.light.RequestRender()
	}
}

// RebuildLight requests a full light recompute for the next frame
func (m *Manager) RebuildLight() { m.light.RebuildLight() }

// Ambient returns the current ambient light
func (m *Manager) Ambient() light.Color { return m.ambient }
