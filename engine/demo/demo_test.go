package demo

import (
	"testing"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
)

func TestMapIsValid(t *testing.T) {
	for _, size := range []int{10, MinSize, 64} {
		pm := Map(size)
		if pm.Width < MinSize || pm.Width != pm.Height {
			t.Fatalf("size %d: got %dx%d", size, pm.Width, pm.Height)
		}
		if err := pm.Validate(); err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
	}
}

func TestMapResolvesPrototypes(t *testing.T) {
	reg := Registry()
	pm := Map(48)
	for _, it := range pm.Items {
		if _, ok := reg.Item(it.Pid); !ok {
			t.Errorf("item %d has unknown pid %d", it.ID, it.Pid)
		}
	}
	for _, cr := range pm.Critters {
		if _, ok := reg.Critter(cr.Pid); !ok {
			t.Errorf("critter %d has unknown pid %d", cr.ID, cr.Pid)
		}
	}
}

func TestCrittersStandOnFreeHexes(t *testing.T) {
	reg := Registry()
	pm := Map(48)
	blocked := make(map[hexgeom.Hex]bool)
	for _, it := range pm.Items {
		p, _ := reg.Item(it.Pid)
		if !p.NoBlock {
			blocked[hexgeom.Hex{X: it.X, Y: it.Y}] = true
		}
	}
	for _, cr := range pm.Critters {
		p, _ := reg.Critter(cr.Pid)
		c := hexgeom.Hex{X: cr.X, Y: cr.Y}
		hexes := []hexgeom.Hex{c}
		for r := 1; r <= p.Multihex; r++ {
			hexes = append(hexes, hexgeom.Ring(c, r)...)
		}
		for _, h := range hexes {
			if blocked[h] {
				t.Errorf("critter %d footprint hits blocked hex %v", cr.ID, h)
			}
		}
	}
}
