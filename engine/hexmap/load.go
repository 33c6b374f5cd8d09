package hexmap

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/core"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

func (m *Manager) sizeError(w, h int) error {
	return fmt.Errorf("%w: %dx%d outside %d..%d x %d..%d", maplib.ErrBadSize,
		w, h, m.cfg.MinHexX, m.cfg.MaxHexX, m.cfg.MinHexY, m.cfg.MaxHexY)
}

// LoadMap replaces the current map with pm. Everything is validated and
// built on a fresh grid first, so a failed load leaves the old map intact.
func (m *Manager) LoadMap(pm *maplib.ProtoMap) error {
	return m.load(pm, false)
}

// SetProtoMap loads pm for editing in the mapper
func (m *Manager) SetProtoMap(pm *maplib.ProtoMap) error {
	return m.load(pm, true)
}

// LoadMapFromCache loads the map stored under pid in s
func (m *Manager) LoadMapFromCache(s cache.Storage, pid uint32) error {
	pm, err := cache.LoadMap(s, pid)
	if err != nil {
		return fmt.Errorf("load map %d from cache: %w", pid, err)
	}
	return m.LoadMap(pm)
}

func (m *Manager) load(pm *maplib.ProtoMap, mapper bool) error {
	if pm == nil {
		return fmt.Errorf("%w: nil map", maplib.ErrBadMap)
	}
	if err := pm.Validate(); err != nil {
		return err
	}
	if !m.cfg.InGridBounds(pm.Width, pm.Height) {
		return m.sizeError(pm.Width, pm.Height)
	}
	g, err := maplib.NewGrid(pm.Width, pm.Height)
	if err != nil {
		return err
	}

	for _, t := range pm.Tiles {
		f := g.Field(t.X, t.Y)
		if t.Roof {
			f.Roofs = insertTile(f.Roofs, t.Tile)
		} else {
			f.Tiles = insertTile(f.Tiles, t.Tile)
		}
	}

	items := make(map[uint32]*Item, len(pm.Items))
	nextItem := maxItemID(pm) + 1
	for _, e := range pm.Items {
		if e.ID == 0 {
			e.ID = nextItem
			nextItem++
		}
		it, err := m.newItem(e)
		if err != nil {
			return err
		}
		if err := pushItem(g, it); err != nil {
			return err
		}
		items[it.ID] = it
	}

	critters := make(map[uint32]*Critter, len(pm.Critters))
	nextCritter := maxCritterID(pm) + 1
	for _, e := range pm.Critters {
		if e.ID == 0 {
			e.ID = nextCritter
			nextCritter++
		}
		c, err := m.newCritter(e)
		if err != nil {
			return err
		}
		if err := placeCritter(g, c); err != nil {
			return err
		}
		critters[c.ID] = c
	}

	if m.grid != nil {
		m.emit(core.EvtMapUnloaded, 0, hexgeom.Hex{}, m.header.Pid)
	}
	m.install(g)
	m.mapper = mapper || m.mapperOpt || m.cfg.MapperMode
	m.header = *pm
	m.header.Tiles, m.header.Items, m.header.Critters = nil, nil, nil
	m.items = items
	m.critters = critters
	m.MarkRoofNum()
	m.view.FindSetCenter(pm.WorkHexX, pm.WorkHexY)
	m.light.RebuildLight()
	m.fogDirty = true
	m.RefreshMap()

	m.log.WithFields(logrus.Fields{
		"pid":      pm.Pid,
		"name":     pm.Name,
		"width":    pm.Width,
		"height":   pm.Height,
		"items":    len(items),
		"critters": len(critters),
		"mapper":   m.mapper,
	}).Info("map loaded")
	m.emit(core.EvtMapLoaded, 0, m.view.Center, pm.Pid)
	return nil
}

// UnloadMap drops the grid and every object
func (m *Manager) UnloadMap() {
	if m.grid == nil {
		return
	}
	pid := m.header.Pid
	m.clearObjects()
	m.grid = nil
	m.finder = nil
	m.tracer = nil
	m.light.Reset(nil)
	m.tiles.Unvalidate()
	m.roofs.Unvalidate()
	m.main.Unvalidate()
	m.view.Fields = m.view.Fields[:0]
	m.header = maplib.ProtoMap{}
	m.cursorOK = false
	m.log.WithField("pid", pid).Info("map unloaded")
	m.emit(core.EvtMapUnloaded, 0, hexgeom.Hex{}, pid)
}

// GetProtoMap snapshots the current map as a description, for saving from the mapper
func (m *Manager) GetProtoMap() (*maplib.ProtoMap, error) {
	if m.grid == nil {
		return nil, ErrMapNotLoaded
	}
	pm := m.header
	pm.Width, pm.Height = m.grid.Width, m.grid.Height
	pm.WorkHexX, pm.WorkHexY = m.view.Center.X, m.view.Center.Y
	pm.Tiles, pm.Items, pm.Critters = nil, nil, nil
	for y := 0; y < m.grid.Height; y++ {
		for x := 0; x < m.grid.Width; x++ {
			f := m.grid.Field(x, y)
			for _, t := range f.Tiles {
				pm.Tiles = append(pm.Tiles, maplib.TileEntry{X: x, Y: y, Tile: t})
			}
			for _, t := range f.Roofs {
				pm.Tiles = append(pm.Tiles, maplib.TileEntry{X: x, Y: y, Roof: true, Tile: t})
			}
		}
	}
	for _, it := range m.Items() {
		pm.Items = append(pm.Items, maplib.ItemEntry{ID: it.ID, Pid: it.Pid, X: it.Hex.X, Y: it.Hex.Y})
	}
	for _, c := range m.Critters() {
		if !c.onMap {
			continue
		}
		pm.Critters = append(pm.Critters, maplib.CritterEntry{
			ID: c.ID, Pid: c.Pid, X: c.Hex.X, Y: c.Hex.Y, Dir: uint8(c.Dir), Dead: c.Dead,
		})
	}
	return &pm, nil
}

// insertTile keeps tiles ordered by layer, stable within a layer
func insertTile(tiles []maplib.Tile, t maplib.Tile) []maplib.Tile {
	i := sort.Search(len(tiles), func(i int) bool { return tiles[i].Layer > t.Layer })
	tiles = append(tiles, maplib.Tile{})
	copy(tiles[i+1:], tiles[i:])
	tiles[i] = t
	return tiles
}

func maxItemID(pm *maplib.ProtoMap) uint32 {
	var n uint32
	for _, e := range pm.Items {
		n = max(n, e.ID)
	}
	return n
}

func maxCritterID(pm *maplib.ProtoMap) uint32 {
	var n uint32
	for _, e := range pm.Critters {
		n = max(n, e.ID)
	}
	return n
}
