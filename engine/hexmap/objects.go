package hexmap

import (
	"fmt"
	"sort"

	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/light"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/pathfind"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/1siamBot/hex-engine/engine/render"
)

// Critter is a critter instance on the map
type Critter struct {
	ID    uint32
	Pid   uint32
	Proto *proto.Critter
	Hex   hexgeom.Hex
	Dir   hexgeom.Dir
	Dead  bool

	// Draw offset in view pixels while walking between hexes
	OffsX, OffsY int
	Alpha        uint8
	Contour      render.ContourType
	ContourColor uint32

	anim     *render.Frames
	onMap    bool
	moves    []hexgeom.Dir
	progress float64 // 0..1 through the current step
}

// Multihex returns the footprint radius
func (c *Critter) Multihex() int {
	if c.Proto == nil {
		return 0
	}
	return c.Proto.Multihex
}

// OnMap reports whether the critter currently stands on the grid
func (c *Critter) OnMap() bool { return c.onMap }

// Moving reports whether steps are queued
func (c *Critter) Moving() bool { return len(c.moves) > 0 }

// Item is an item instance on the map
type Item struct {
	ID    uint32
	Pid   uint32
	Proto *proto.Item
	Hex   hexgeom.Hex
	Alpha uint8

	anim  *render.Frames
	lines []hexgeom.Hex // hexes blocked by the item's block lines
}

// GetCritter returns a critter by id
func (m *Manager) GetCritter(id uint32) (*Critter, bool) {
	c, ok := m.critters[id]
	return c, ok
}

// GetItem returns an item by id
func (m *Manager) GetItem(id uint32) (*Item, bool) {
	it, ok := m.items[id]
	return it, ok
}

// Critters returns every known critter ordered by id
func (m *Manager) Critters() []*Critter {
	out := make([]*Critter, 0, len(m.critters))
	for _, c := range m.critters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Items returns every item ordered by id
func (m *Manager) Items() []*Item {
	out := make([]*Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddCritter places a critter. A known critter that was removed from the
// map is placed again; a critter already on the map is a duplicate.
func (m *Manager) AddCritter(e maplib.CritterEntry) (*Critter, error) {
	if m.grid == nil {
		return nil, ErrMapNotLoaded
	}
	c, err := m.newCritter(e)
	if err != nil {
		return nil, err
	}
	if old, ok := m.critters[e.ID]; ok {
		if old.onMap {
			return nil, fmt.Errorf("%w: critter %d", ErrDuplicateID, e.ID)
		}
		c.Contour, c.ContourColor = old.Contour, old.ContourColor
	}
	if err := placeCritter(m.grid, c); err != nil {
		return nil, err
	}
	m.critters[c.ID] = c
	m.critterChanged(c, c.Hex)
	m.emit(core.EvtCritterAdded, c.ID, c.Hex, c.Pid)
	return c, nil
}

func (m *Manager) newCritter(e maplib.CritterEntry) (*Critter, error) {
	p, ok := m.registry.Critter(e.Pid)
	if !ok {
		return nil, fmt.Errorf("%w: critter pid %d", ErrUnknownProto, e.Pid)
	}
	dir := hexgeom.Dir(e.Dir)
	if !dir.Valid() {
		dir = hexgeom.DirDownRight
	}
	return &Critter{
		ID:    e.ID,
		Pid:   e.Pid,
		Proto: p,
		Hex:   hexgeom.Hex{X: e.X, Y: e.Y},
		Dir:   dir,
		Dead:  e.Dead,
		Alpha: 255,
		anim:  m.anims.Get(p.Anim),
	}, nil
}

// placeCritter writes a critter into the fields of g after checking its footprint
func placeCritter(g *maplib.Grid, c *Critter) error {
	if !g.Contains(c.Hex) {
		return fmt.Errorf("%w: critter %d at %d,%d", ErrBadHex, c.ID, c.Hex.X, c.Hex.Y)
	}
	if c.Dead {
		g.FieldAt(c.Hex).AddDead(c.ID)
		c.onMap = true
		return nil
	}
	for _, h := range pathfind.Footprint(c.Hex, c.Multihex()) {
		if !g.Contains(h) || g.FieldAt(h).OccupiedBy(c.ID) {
			return fmt.Errorf("%w: critter %d at %d,%d", ErrOccupied, c.ID, h.X, h.Y)
		}
	}
	setFootprint(g, c, true)
	c.onMap = true
	return nil
}

// setFootprint adds or removes a live critter from the fields it covers
func setFootprint(g *maplib.Grid, c *Critter, add bool) {
	for i, h := range pathfind.Footprint(c.Hex, c.Multihex()) {
		if !g.Contains(h) {
			continue
		}
		f := g.FieldAt(h)
		switch {
		case i == 0 && add:
			f.Crit = c.ID
		case i == 0:
			if f.Crit == c.ID {
				f.Crit = 0
			}
		case add:
			f.AddMultihex(c.ID)
		default:
			f.RemoveMultihex(c.ID)
		}
	}
}

func unplaceCritter(g *maplib.Grid, c *Critter) {
	if !c.onMap {
		return
	}
	if c.Dead {
		g.FieldAt(c.Hex).RemoveDead(c.ID)
	} else {
		setFootprint(g, c, false)
	}
	c.onMap = false
}

// RemoveCritter takes a critter off the grid but keeps its record
func (m *Manager) RemoveCritter(id uint32) bool {
	c, ok := m.critters[id]
	if !ok || !c.onMap || m.grid == nil {
		return false
	}
	unplaceCritter(m.grid, c)
	c.moves = nil
	c.OffsX, c.OffsY = 0, 0
	m.critterChanged(c, c.Hex)
	m.emit(core.EvtCritterRemoved, c.ID, c.Hex, nil)
	return true
}

// DeleteCritter removes a critter and forgets it
func (m *Manager) DeleteCritter(id uint32) bool {
	c, ok := m.critters[id]
	if !ok {
		return false
	}
	if c.onMap {
		m.RemoveCritter(id)
	}
	delete(m.critters, id)
	if m.chosen == id {
		m.chosen = 0
		m.egg.Reset()
	}
	return true
}

// TransitCritter moves a critter to h, failing when its footprint does not fit
func (m *Manager) TransitCritter(id uint32, h hexgeom.Hex) bool {
	c, ok := m.critters[id]
	if !ok || !c.onMap || m.grid == nil || !m.grid.Contains(h) {
		return false
	}
	if c.Hex == h {
		return true
	}
	if !c.Dead {
		ng := pathfind.NewNavGrid(m.grid, c.ID, c.Multihex())
		if !ng.Passable(h) {
			return false
		}
	}
	from := c.Hex
	unplaceCritter(m.grid, c)
	if from != h {
		c.Dir = hexgeom.Direction(from, h)
	}
	c.Hex = h
	if err := placeCritter(m.grid, c); err != nil {
		c.Hex = from
		if rerr := placeCritter(m.grid, c); rerr != nil {
			m.log.WithError(rerr).WithField("critter", c.ID).Error("critter lost on failed transit")
		}
		return false
	}
	m.critterChanged(c, from)
	m.critterChanged(c, h)
	m.emit(core.EvtCritterMoved, c.ID, h, from)
	return true
}

// SetCritterDead switches a critter between its live and dead state
func (m *Manager) SetCritterDead(id uint32, dead bool) bool {
	c, ok := m.critters[id]
	if !ok || c.Dead == dead || m.grid == nil {
		return false
	}
	wasOn := c.onMap
	unplaceCritter(m.grid, c)
	c.Dead = dead
	c.moves = nil
	if wasOn {
		if err := placeCritter(m.grid, c); err != nil {
			c.Dead = !dead
			if rerr := placeCritter(m.grid, c); rerr != nil {
				m.log.WithError(rerr).WithField("critter", c.ID).Error("critter lost on failed state change")
			}
			return false
		}
	}
	m.critterChanged(c, c.Hex)
	return true
}

// critterChanged refreshes sprites and light after a critter change at h
func (m *Manager) critterChanged(c *Critter, h hexgeom.Hex) {
	for _, fh := range pathfind.Footprint(h, c.Multihex()) {
		m.refreshHex(fh)
	}
	if c.Proto != nil && c.Proto.Light.Emits() {
		m.light.RebuildLightAround(h)
	}
	if c.ID == m.chosen {
		m.fogDirty = true
		m.SetSkipRoof(c.Hex)
	}
}

// AddItem creates an item, places it and updates sprites and light
func (m *Manager) AddItem(e maplib.ItemEntry) (*Item, error) {
	if m.grid == nil {
		return nil, ErrMapNotLoaded
	}
	if _, ok := m.items[e.ID]; ok {
		return nil, fmt.Errorf("%w: item %d", ErrDuplicateID, e.ID)
	}
	it, err := m.newItem(e)
	if err != nil {
		return nil, err
	}
	if err := pushItem(m.grid, it); err != nil {
		return nil, err
	}
	m.items[it.ID] = it
	m.itemChanged(it, it.lines)
	m.emit(core.EvtItemAdded, it.ID, it.Hex, it.Pid)
	return it, nil
}

func (m *Manager) newItem(e maplib.ItemEntry) (*Item, error) {
	p, ok := m.registry.Item(e.Pid)
	if !ok {
		return nil, fmt.Errorf("%w: item pid %d", ErrUnknownProto, e.Pid)
	}
	return &Item{
		ID:    e.ID,
		Pid:   e.Pid,
		Proto: p,
		Hex:   hexgeom.Hex{X: e.X, Y: e.Y},
		Alpha: 255,
		anim:  m.anims.Get(p.Anim),
	}, nil
}

// PushItem places an existing item record without touching sprites or
// light; bulk loaders call RefreshMap and RebuildLight afterwards.
func (m *Manager) PushItem(it *Item) error {
	if m.grid == nil {
		return ErrMapNotLoaded
	}
	if _, ok := m.items[it.ID]; ok {
		return fmt.Errorf("%w: item %d", ErrDuplicateID, it.ID)
	}
	if it.Proto == nil {
		p, ok := m.registry.Item(it.Pid)
		if !ok {
			return fmt.Errorf("%w: item pid %d", ErrUnknownProto, it.Pid)
		}
		it.Proto = p
	}
	if it.anim == nil {
		it.anim = m.anims.Get(it.Proto.Anim)
	}
	if err := pushItem(m.grid, it); err != nil {
		return err
	}
	m.items[it.ID] = it
	m.mapDirty = true
	return nil
}

// pushItem writes an item and its block lines into the fields of g
func pushItem(g *maplib.Grid, it *Item) error {
	if !g.Contains(it.Hex) {
		return fmt.Errorf("%w: item %d at %d,%d", ErrBadHex, it.ID, it.Hex.X, it.Hex.Y)
	}
	g.FieldAt(it.Hex).AddItem(maplib.ItemRef{ID: it.ID, Proto: it.Proto})
	it.lines = it.lines[:0]
	h := it.Hex
	for _, d := range it.Proto.BlockLines {
		next, ok := h.StepChecked(hexgeom.Dir(d), g.Width, g.Height)
		if !ok {
			break
		}
		h = next
		g.FieldAt(h).AddLineBlock(maplib.LineBlock{ItemID: it.ID, ShootThru: it.Proto.ShootThru})
		it.lines = append(it.lines, h)
	}
	return nil
}

// popItem takes an item and its block lines off g and returns the line hexes
// it cleared
func popItem(g *maplib.Grid, it *Item) []hexgeom.Hex {
	g.FieldAt(it.Hex).RemoveItem(it.ID)
	lines := it.lines
	for _, h := range lines {
		g.FieldAt(h).RemoveLineBlocks(it.ID)
	}
	it.lines = nil
	return lines
}

// DeleteItem removes an item from the map
func (m *Manager) DeleteItem(id uint32) bool {
	it, ok := m.items[id]
	if !ok || m.grid == nil {
		return false
	}
	lines := popItem(m.grid, it)
	delete(m.items, id)
	m.itemChanged(it, lines)
	m.emit(core.EvtItemRemoved, it.ID, it.Hex, it.Pid)
	return true
}

// MoveItem relocates an item, used by the mapper
func (m *Manager) MoveItem(id uint32, h hexgeom.Hex) bool {
	it, ok := m.items[id]
	if !ok || m.grid == nil || !m.grid.Contains(h) {
		return false
	}
	from := it.Hex
	m.itemChanged(it, popItem(m.grid, it))
	it.Hex = h
	if err := pushItem(m.grid, it); err != nil {
		m.log.WithError(err).WithField("item", it.ID).Warn("item move refused")
		it.Hex = from
		if rerr := pushItem(m.grid, it); rerr != nil {
			m.log.WithError(rerr).WithField("item", it.ID).Error("item lost on failed move")
			delete(m.items, id)
			m.emit(core.EvtItemRemoved, it.ID, from, it.Pid)
			return false
		}
		m.itemChanged(it, it.lines)
		return false
	}
	m.itemChanged(it, it.lines)
	return true
}

// itemChanged refreshes sprites and light after an item change. lines are
// the block line hexes the item covers, or covered before it was removed.
func (m *Manager) itemChanged(it *Item, lines []hexgeom.Hex) {
	m.refreshHex(it.Hex)
	p := it.Proto
	if p.Light.Emits() || (!p.LightThru && p.IsScenery()) {
		m.light.RebuildLightAround(it.Hex)
	}
	for _, h := range lines {
		m.refreshHex(h)
		m.light.RebuildLightAround(h)
	}
	if len(lines) > 0 || !p.ShootThru {
		m.fogDirty = true
	}
}

// lightSources feeds the light engine from item and critter prototypes
func (m *Manager) lightSources(dst []light.Source) []light.Source {
	for _, it := range m.Items() {
		l := it.Proto.Light
		if !l.Emits() {
			continue
		}
		dst = append(dst, light.Source{
			ID:        it.ID,
			Hex:       it.Hex,
			Color:     l.Color,
			Distance:  l.Distance,
			Intensity: l.Intensity,
			Flags:     light.Flag(l.Flags),
		})
	}
	for _, c := range m.Critters() {
		l := c.Proto.Light
		if !c.onMap || !l.Emits() {
			continue
		}
		dst = append(dst, light.Source{
			ID:        c.ID,
			Hex:       c.Hex,
			Color:     l.Color,
			Distance:  l.Distance,
			Intensity: l.Intensity,
			Flags:     light.Flag(l.Flags),
			Follow:    c.ID,
		})
	}
	return dst
}

// followResolver reports walking offsets of critters to the light engine
type followResolver struct{ m *Manager }

func (f followResolver) FollowOffset(owner uint32) (int, int, bool) {
	c, ok := f.m.critters[owner]
	if !ok || !c.onMap {
		return 0, 0, false
	}
	return c.OffsX, c.OffsY, true
}
