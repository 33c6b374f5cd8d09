package proto

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// ItemType classifies static item prototypes
type ItemType uint8

const (
	ItemMisc ItemType = iota
	ItemScenery
	ItemWall
	ItemDoor
	ItemContainer
	ItemGrid
	ItemGeneric
)

// CornerType tells the egg which side of a wall faces the viewer
type CornerType uint8

const (
	CornerNorthSouth CornerType = iota
	CornerWest
	CornerEast
	CornerSouth
	CornerNorth
	CornerEastWest
)

// LightDef describes light emitted by an item or critter
type LightDef struct {
	Intensity int    `json:"intensity"` // percent, negative darkens
	Distance  int    `json:"distance"`  // radius in hexes
	Color     uint32 `json:"color"`     // 0xRRGGBB
	Flags     uint8  `json:"flags"`     // light.Flag bits
}

// Emits reports whether the definition produces any light
func (l LightDef) Emits() bool { return l.Intensity != 0 && l.Distance > 0 }

// Item is a static item definition
type Item struct {
	Pid  uint32   `json:"pid"`
	Name string   `json:"name"`
	Type ItemType `json:"type"`
	Anim string   `json:"anim"`

	NoBlock     bool `json:"no_block"`   // critters may walk through
	ShootThru   bool `json:"shoot_thru"` // does not stop sight or projectiles
	LightThru   bool `json:"light_thru"` // does not stop light
	Flat        bool `json:"flat"`       // drawn under everything else
	NoHighlight bool `json:"no_highlight"`
	DisableEgg  bool `json:"disable_egg"`
	// ScrollBlock keeps the viewport center off the hex
	ScrollBlock bool `json:"scroll_block"`

	Corner     CornerType `json:"corner"`
	OffsetX    int        `json:"offset_x"`
	OffsetY    int        `json:"offset_y"`
	DrawOffsHy int        `json:"draw_offs_hy"` // draw-order row shift for tall sprites
	// BlockLines lists extra blocked hexes as direction steps from the item hex
	BlockLines []uint8 `json:"block_lines,omitempty"`

	Light LightDef `json:"light"`
}

// IsWall reports whether the item is a wall segment
func (it *Item) IsWall() bool { return it.Type == ItemWall }

// IsScenery reports whether the item is static map geometry
func (it *Item) IsScenery() bool {
	return it.Type == ItemScenery || it.Type == ItemWall || it.Type == ItemGrid
}

// Critter is a static critter definition
type Critter struct {
	Pid      uint32   `json:"pid"`
	Name     string   `json:"name"`
	Anim     string   `json:"anim"`
	Multihex int      `json:"multihex"` // footprint radius, 0 for single hex
	Look     int      `json:"look"`     // sight radius for fog
	Light    LightDef `json:"light"`
}

// Registry resolves prototype ids to static definitions
type Registry interface {
	Item(pid uint32) (*Item, bool)
	Critter(pid uint32) (*Critter, bool)
}

// MemRegistry is an in-memory Registry backed by maps
type MemRegistry struct {
	items    map[uint32]*Item
	critters map[uint32]*Critter
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		items:    make(map[uint32]*Item),
		critters: make(map[uint32]*Critter),
	}
}

// AddItem registers or replaces an item prototype
func (r *MemRegistry) AddItem(it *Item) { r.items[it.Pid] = it }

// AddCritter registers or replaces a critter prototype
func (r *MemRegistry) AddCritter(cr *Critter) { r.critters[cr.Pid] = cr }

func (r *MemRegistry) Item(pid uint32) (*Item, bool) {
	it, ok := r.items[pid]
	return it, ok
}

func (r *MemRegistry) Critter(pid uint32) (*Critter, bool) {
	cr, ok := r.critters[pid]
	return cr, ok
}

// ItemPids returns all registered item pids in ascending order
func (r *MemRegistry) ItemPids() []uint32 {
	pids := make([]uint32, 0, len(r.items))
	for pid := range r.items {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// CritterPids returns all registered critter pids in ascending order
func (r *MemRegistry) CritterPids() []uint32 {
	pids := make([]uint32, 0, len(r.critters))
	for pid := range r.critters {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

type registryFile struct {
	Items    []*Item    `json:"items"`
	Critters []*Critter `json:"critters"`
}

// LoadJSON reads prototypes from a JSON file
func LoadJSON(path string) (*MemRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf registryFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse prototypes %s: %w", path, err)
	}
	r := NewMemRegistry()
	for _, it := range rf.Items {
		if _, dup := r.items[it.Pid]; dup {
			return nil, fmt.Errorf("duplicate item pid %d in %s", it.Pid, path)
		}
		r.AddItem(it)
	}
	for _, cr := range rf.Critters {
		if _, dup := r.critters[cr.Pid]; dup {
			return nil, fmt.Errorf("duplicate critter pid %d in %s", cr.Pid, path)
		}
		r.AddCritter(cr)
	}
	return r, nil
}

// SaveJSON writes all prototypes to a JSON file
func (r *MemRegistry) SaveJSON(path string) error {
	var rf registryFile
	for _, pid := range r.ItemPids() {
		rf.Items = append(rf.Items, r.items[pid])
	}
	cpids := make([]uint32, 0, len(r.critters))
	for pid := range r.critters {
		cpids = append(cpids, pid)
	}
	sort.Slice(cpids, func(i, j int) bool { return cpids[i] < cpids[j] })
	for _, pid := range cpids {
		rf.Critters = append(rf.Critters, r.critters[pid])
	}
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
