package render

import (
	"sort"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// DrawOrder ranks sprites that share a hex
type DrawOrder uint8

const (
	DrawOrderTile DrawOrder = iota
	DrawOrderFlatScenery
	DrawOrderFlatItem
	DrawOrderDeadCritter
	DrawOrderScenery
	DrawOrderItem
	DrawOrderCritter
	DrawOrderRoof
)

// Flat reports whether sprites of this order lie on the ground
func (o DrawOrder) Flat() bool { return o <= DrawOrderDeadCritter }

// EntityKind names what owns a sprite
type EntityKind uint8

const (
	KindNone EntityKind = iota
	KindTile
	KindItem
	KindCritter
	KindRoof
)

// EntityRef is a handle to the owner of a sprite
type EntityRef struct {
	Kind EntityKind
	ID   uint32
}

// OwnerState is the live drawing state of an owner
type OwnerState struct {
	SprID        SpriteID
	OffsX, OffsY int
	Alpha        uint8
}

// OwnerResolver looks up owner state when a sprite is drawn
type OwnerResolver interface {
	SpriteOwnerState(ref EntityRef) (OwnerState, bool)
}

// ContourType selects the outline drawn around a sprite
type ContourType uint8

const (
	ContourNone ContourType = iota
	ContourRed
	ContourYellow
	ContourCustom
)

// Sprite is one draw tree entry, valid for the frame that built it
type Sprite struct {
	Valid bool
	Hex   hexgeom.Hex
	// Hex center in view pixels, before scroll offset and zoom
	ScrX, ScrY   int
	OffsX, OffsY int
	SprID        SpriteID
	Alpha        uint8
	Order        DrawOrder
	// RowShift moves the sprite down the draw order by whole screen rows
	RowShift int

	Egg          EggType
	Contour      ContourType
	ContourColor uint32
	Light        [3]uint8
	Owner        EntityRef

	row, col int
	seq      uint32
	next     int32
	chain    *maplib.SpriteChain
}

func (s *Sprite) less(o *Sprite) bool {
	sf, of := s.Order.Flat(), o.Order.Flat()
	if sf != of {
		return sf
	}
	if s.row != o.row {
		return s.row < o.row
	}
	if s.col != o.col {
		return s.col < o.col
	}
	if s.Order != o.Order {
		return s.Order < o.Order
	}
	return s.seq < o.seq
}

// DrawTree is an arena of sprites plus their draw order. Arena indices stay
// stable for the whole frame so hex chains can refer to them.
type DrawTree struct {
	sprites []Sprite
	order   []int32
	frame   uint32
	seq     uint32
	sorted  bool
	// stale counts entries invalidated since the last Unvalidate or Compact
	stale int
}

// NewDrawTree creates an empty tree
func NewDrawTree() *DrawTree {
	return &DrawTree{frame: 1, sorted: true}
}

// Frame returns the current frame stamp
func (t *DrawTree) Frame() uint32 { return t.frame }

// Unvalidate drops every sprite and starts a new frame. Chains stamped with
// an older frame become stale without being touched.
func (t *DrawTree) Unvalidate() {
	t.sprites = t.sprites[:0]
	t.order = t.order[:0]
	t.frame++
	t.seq = 0
	t.sorted = true
	t.stale = 0
}

// Len returns the number of sprites in the frame, valid or not
func (t *DrawTree) Len() int { return len(t.order) }

// Stale returns the number of invalidated entries still held by the frame
func (t *DrawTree) Stale() int { return t.stale }

// Compact drops invalidated entries and starts a new frame stamp. Surviving
// sprites keep their order and are relinked into their hex chains, so chains
// that only held dropped sprites turn stale.
func (t *DrawTree) Compact() {
	if t.stale == 0 {
		return
	}
	remap := make([]int32, len(t.sprites))
	n := int32(0)
	for i := range t.sprites {
		if !t.sprites[i].Valid {
			remap[i] = -1
			continue
		}
		remap[i] = n
		t.sprites[n] = t.sprites[i]
		n++
	}
	clear(t.sprites[n:])
	t.sprites = t.sprites[:n]

	t.frame++
	for i := range t.sprites {
		s := &t.sprites[i]
		s.next = 0
		if s.chain == nil {
			continue
		}
		if s.chain.Frame == t.frame {
			s.next = s.chain.Head
		}
		s.chain.Head = int32(i) + 1
		s.chain.Frame = t.frame
	}

	order := t.order[:0]
	for _, idx := range t.order {
		if ni := remap[idx]; ni >= 0 {
			order = append(order, ni)
		}
	}
	t.order = order
	t.stale = 0
}

func (t *DrawTree) prepare(s *Sprite, chain *maplib.SpriteChain) int32 {
	s.Valid = true
	s.row, s.col = hexgeom.ScreenRowCol(s.Hex)
	s.row += s.RowShift
	s.seq = t.seq
	t.seq++
	s.next = 0
	s.chain = chain
	idx := int32(len(t.sprites))
	if chain != nil {
		if chain.Frame == t.frame {
			s.next = chain.Head
		}
		chain.Head = idx + 1
		chain.Frame = t.frame
	}
	t.sprites = append(t.sprites, *s)
	return idx
}

// Add appends a sprite. Callers scan hexes in draw order, so the tree stays
// sorted; an out of order Add is caught and fixed by the next Sort.
func (t *DrawTree) Add(s Sprite, chain *maplib.SpriteChain) int {
	idx := t.prepare(&s, chain)
	if n := len(t.order); n > 0 && t.sprites[idx].less(&t.sprites[t.order[n-1]]) {
		t.sorted = false
	}
	t.order = append(t.order, idx)
	return int(idx)
}

// Insert places a sprite at its sorted position
func (t *DrawTree) Insert(s Sprite, chain *maplib.SpriteChain) int {
	t.Sort()
	idx := t.prepare(&s, chain)
	sp := &t.sprites[idx]
	pos := sort.Search(len(t.order), func(i int) bool {
		return sp.less(&t.sprites[t.order[i]])
	})
	t.order = append(t.order, 0)
	copy(t.order[pos+1:], t.order[pos:])
	t.order[pos] = idx
	return int(idx)
}

// Sort restores draw order after unordered Adds
func (t *DrawTree) Sort() {
	if t.sorted {
		return
	}
	sort.SliceStable(t.order, func(i, j int) bool {
		return t.sprites[t.order[i]].less(&t.sprites[t.order[j]])
	})
	t.sorted = true
}

// Sorted reports whether the order is known to be correct
func (t *DrawTree) Sorted() bool { return t.sorted }

// Sprite returns the arena entry at idx
func (t *DrawTree) Sprite(idx int) *Sprite { return &t.sprites[idx] }

// Each visits valid sprites in draw order until fn returns false
func (t *DrawTree) Each(fn func(idx int, s *Sprite) bool) {
	for _, i := range t.order {
		s := &t.sprites[i]
		if !s.Valid {
			continue
		}
		if !fn(int(i), s) {
			return
		}
	}
}

// EachReverse visits valid sprites front to back, used for hit testing
func (t *DrawTree) EachReverse(fn func(idx int, s *Sprite) bool) {
	for k := len(t.order) - 1; k >= 0; k-- {
		s := &t.sprites[t.order[k]]
		if !s.Valid {
			continue
		}
		if !fn(int(t.order[k]), s) {
			return
		}
	}
}

// UnvalidateSpriteChain invalidates every sprite a hex added this frame
func (t *DrawTree) UnvalidateSpriteChain(chain *maplib.SpriteChain) {
	if chain.Frame != t.frame {
		chain.Head = 0
		return
	}
	for i := chain.Head; i != 0; {
		s := &t.sprites[i-1]
		if s.Valid {
			s.Valid = false
			t.stale++
		}
		i = s.next
	}
	chain.Head = 0
}

// ChainSprites returns the arena indices a hex added this frame, newest first
func (t *DrawTree) ChainSprites(chain *maplib.SpriteChain) []int {
	if chain.Frame != t.frame {
		return nil
	}
	var out []int
	for i := chain.Head; i != 0; i = t.sprites[i-1].next {
		if t.sprites[i-1].Valid {
			out = append(out, int(i-1))
		}
	}
	return out
}

// UnvalidateOwner invalidates every sprite of one owner
func (t *DrawTree) UnvalidateOwner(ref EntityRef) {
	for i := range t.sprites {
		if t.sprites[i].Owner == ref && t.sprites[i].Valid {
			t.sprites[i].Valid = false
			t.stale++
		}
	}
}
