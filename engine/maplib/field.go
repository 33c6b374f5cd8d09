package maplib

import "github.com/1siamBot/hex-engine/engine/proto"

// FieldFlag is a cached per-hex property derived from what stands on the hex
type FieldFlag uint16

const (
	FlagScrollBlock FieldFlag = 1 << iota
	FlagIsWall
	FlagIsWallTransparent
	FlagIsScenery
	FlagNotPassed // blocks movement
	FlagNotRaked  // blocks sight and projectiles
	FlagNoLight   // stops light propagation
	FlagIsMultihex
)

// Tile is one ground or roof layer entry on a hex
type Tile struct {
	Name  string `json:"name"`
	OffsX int    `json:"offs_x,omitempty"`
	OffsY int    `json:"offs_y,omitempty"`
	Layer uint8  `json:"layer,omitempty"`
}

// ItemRef links an item instance to its prototype
type ItemRef struct {
	ID    uint32
	Proto *proto.Item
}

// LineBlock marks a hex blocked by a neighbouring item's block lines
type LineBlock struct {
	ItemID    uint32
	ShootThru bool
}

// SpriteChain is a frame-scoped link from a hex into the draw tree.
// Head is a sprite index plus one, so the zero value means empty.
type SpriteChain struct {
	Head  int32
	Frame uint32
}

// Field is the per-hex record
type Field struct {
	Tiles []Tile
	Roofs []Tile

	Items      []ItemRef
	LineBlocks []LineBlock

	Crit          uint32   // live critter standing here, 0 if none
	DeadCrits     []uint32 // corpses lying here
	MultihexCrits []uint32 // big critters whose footprint covers this hex

	Flags   FieldFlag
	RoofNum int16
	Corner  proto.CornerType

	Chain SpriteChain
}

// Has reports whether all bits of f are set
func (fl *Field) Has(f FieldFlag) bool { return fl.Flags&f == f }

func (fl *Field) IsNotPassed() bool { return fl.Flags&FlagNotPassed != 0 }
func (fl *Field) IsNotRaked() bool  { return fl.Flags&FlagNotRaked != 0 }
func (fl *Field) IsNoLight() bool   { return fl.Flags&FlagNoLight != 0 }

// OccupiedBy reports whether a critter other than self stands on or covers the hex
func (fl *Field) OccupiedBy(self uint32) bool {
	if fl.Crit != 0 && fl.Crit != self {
		return true
	}
	for _, id := range fl.MultihexCrits {
		if id != self {
			return true
		}
	}
	return false
}

// AddItem appends an item and refreshes the cached flags
func (fl *Field) AddItem(ref ItemRef) {
	fl.Items = append(fl.Items, ref)
	fl.ProcessCache()
}

// RemoveItem drops an item by id, returning false if it was not here
func (fl *Field) RemoveItem(id uint32) bool {
	for i := range fl.Items {
		if fl.Items[i].ID == id {
			fl.Items = append(fl.Items[:i], fl.Items[i+1:]...)
			fl.ProcessCache()
			return true
		}
	}
	return false
}

// FindItem returns the item reference with the given id
func (fl *Field) FindItem(id uint32) (ItemRef, bool) {
	for _, it := range fl.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemRef{}, false
}

func (fl *Field) AddLineBlock(lb LineBlock) {
	fl.LineBlocks = append(fl.LineBlocks, lb)
	fl.ProcessCache()
}

func (fl *Field) RemoveLineBlocks(itemID uint32) {
	out := fl.LineBlocks[:0]
	for _, lb := range fl.LineBlocks {
		if lb.ItemID != itemID {
			out = append(out, lb)
		}
	}
	fl.LineBlocks = out
	fl.ProcessCache()
}

func (fl *Field) AddMultihex(id uint32) {
	fl.MultihexCrits = append(fl.MultihexCrits, id)
	fl.ProcessCache()
}

func (fl *Field) RemoveMultihex(id uint32) {
	fl.MultihexCrits = removeID(fl.MultihexCrits, id)
	fl.ProcessCache()
}

func (fl *Field) AddDead(id uint32) { fl.DeadCrits = append(fl.DeadCrits, id) }

func (fl *Field) RemoveDead(id uint32) { fl.DeadCrits = removeID(fl.DeadCrits, id) }

// ProcessCache recomputes the derived flags from items and block lines
func (fl *Field) ProcessCache() {
	var f FieldFlag
	fl.Corner = proto.CornerNorthSouth
	for _, it := range fl.Items {
		p := it.Proto
		if p == nil {
			continue
		}
		if !p.NoBlock {
			f |= FlagNotPassed
		}
		if !p.ShootThru {
			f |= FlagNotRaked
		}
		if !p.LightThru && p.IsScenery() {
			f |= FlagNoLight
		}
		if p.ScrollBlock {
			f |= FlagScrollBlock
		}
		if p.IsWall() {
			f |= FlagIsWall
			if p.ShootThru {
				f |= FlagIsWallTransparent
			}
			fl.Corner = p.Corner
		} else if p.IsScenery() {
			f |= FlagIsScenery
		}
	}
	for _, lb := range fl.LineBlocks {
		f |= FlagNotPassed
		if !lb.ShootThru {
			f |= FlagNotRaked
		}
	}
	if len(fl.MultihexCrits) > 0 {
		f |= FlagIsMultihex
	}
	fl.Flags = f
}

// Clear resets the field to its zero state, keeping slice capacity
func (fl *Field) Clear() {
	*fl = Field{
		Tiles:         fl.Tiles[:0],
		Roofs:         fl.Roofs[:0],
		Items:         fl.Items[:0],
		LineBlocks:    fl.LineBlocks[:0],
		DeadCrits:     fl.DeadCrits[:0],
		MultihexCrits: fl.MultihexCrits[:0],
	}
}

func removeID(ids []uint32, id uint32) []uint32 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
