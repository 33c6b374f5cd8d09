package maplib

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrBadMap is returned when a map description fails validation
var ErrBadMap = errors.New("bad map description")

// TileEntry places a tile on a hex
type TileEntry struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Roof bool `json:"roof,omitempty"`
	Tile
}

// ItemEntry places an item instance on a hex
type ItemEntry struct {
	ID  uint32 `json:"id"`
	Pid uint32 `json:"pid"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

// CritterEntry places a critter on a hex
type CritterEntry struct {
	ID   uint32 `json:"id"`
	Pid  uint32 `json:"pid"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Dir  uint8  `json:"dir"`
	Dead bool   `json:"dead,omitempty"`
}

// ProtoMap is a fully parsed map description ready to be loaded into the grid
type ProtoMap struct {
	Pid    uint32 `json:"pid"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Initial view center
	WorkHexX int `json:"work_hex_x"`
	WorkHexY int `json:"work_hex_y"`

	// Day/night palette: four minute-of-day keys and four RGB triples
	DayTimes  [4]int    `json:"day_times"`
	DayColors [12]uint8 `json:"day_colors"`

	Tiles    []TileEntry    `json:"tiles"`
	Items    []ItemEntry    `json:"items"`
	Critters []CritterEntry `json:"critters"`
}

// NewProtoMap creates an empty map description with a neutral day palette
func NewProtoMap(name string, width, height int) *ProtoMap {
	pm := &ProtoMap{
		Name:     name,
		Width:    width,
		Height:   height,
		WorkHexX: width / 2,
		WorkHexY: height / 2,
		DayTimes: [4]int{300, 600, 1140, 1380},
	}
	for i := range pm.DayColors {
		pm.DayColors[i] = 128
	}
	return pm
}

// Validate checks coordinates and ids without touching any grid state
func (pm *ProtoMap) Validate() error {
	if pm.Width <= 0 || pm.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrBadMap, pm.Width, pm.Height)
	}
	in := func(x, y int) bool { return x >= 0 && y >= 0 && x < pm.Width && y < pm.Height }
	if !in(pm.WorkHexX, pm.WorkHexY) {
		return fmt.Errorf("%w: work hex %d,%d outside map", ErrBadMap, pm.WorkHexX, pm.WorkHexY)
	}
	for i := 1; i < len(pm.DayTimes); i++ {
		if pm.DayTimes[i] < pm.DayTimes[i-1] {
			return fmt.Errorf("%w: day times not ascending", ErrBadMap)
		}
	}
	for _, t := range pm.Tiles {
		if !in(t.X, t.Y) {
			return fmt.Errorf("%w: tile %q at %d,%d outside map", ErrBadMap, t.Name, t.X, t.Y)
		}
	}
	ids := make(map[uint32]bool)
	for _, it := range pm.Items {
		if !in(it.X, it.Y) {
			return fmt.Errorf("%w: item %d at %d,%d outside map", ErrBadMap, it.ID, it.X, it.Y)
		}
		if it.ID != 0 {
			if ids[it.ID] {
				return fmt.Errorf("%w: duplicate item id %d", ErrBadMap, it.ID)
			}
			ids[it.ID] = true
		}
	}
	cids := make(map[uint32]bool)
	for _, cr := range pm.Critters {
		if !in(cr.X, cr.Y) {
			return fmt.Errorf("%w: critter %d at %d,%d outside map", ErrBadMap, cr.ID, cr.X, cr.Y)
		}
		if cr.ID != 0 {
			if cids[cr.ID] {
				return fmt.Errorf("%w: duplicate critter id %d", ErrBadMap, cr.ID)
			}
			cids[cr.ID] = true
		}
	}
	return nil
}

// SaveJSON saves the map to a JSON file
func (pm *ProtoMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON loads a map from a JSON file
func LoadJSON(path string) (*ProtoMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pm ProtoMap
	if err := json.Unmarshal(data, &pm); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	return &pm, nil
}
