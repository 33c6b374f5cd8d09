// Package demo builds a small prototype set and map so the runners have
// something to show without external data files.
package demo

import (
	"math"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/proto"
)

// Prototype ids used by the demo map
const (
	PidWall uint32 = iota + 1
	PidLamp
	PidRug
	PidTree
	PidBarrel

	PidHuman   uint32 = 100
	PidBrahmin uint32 = 101
)

// Critter ids placed by Map
const (
	PlayerID  uint32 = 1
	BrahminID uint32 = 2
)

// MinSize is the smallest map Map builds
const MinSize = 40

// Registry returns the demo prototypes
func Registry() *proto.MemRegistry {
	r := proto.NewMemRegistry()
	r.AddItem(&proto.Item{Pid: PidWall, Name: "wall", Type: proto.ItemWall, Anim: "wall", Corner: proto.CornerEastWest})
	r.AddItem(&proto.Item{
		Pid: PidLamp, Name: "lamp", Type: proto.ItemScenery, Anim: "lamp", NoBlock: true, ShootThru: true, LightThru: true,
		Light: proto.LightDef{Intensity: 70, Distance: 6, Color: 0xFFCC66},
	})
	r.AddItem(&proto.Item{Pid: PidRug, Name: "rug", Type: proto.ItemMisc, Anim: "rug", Flat: true, NoBlock: true, ShootThru: true, LightThru: true})
	r.AddItem(&proto.Item{Pid: PidTree, Name: "tree", Type: proto.ItemScenery, Anim: "tree", DrawOffsHy: 2, ScrollBlock: true})
	r.AddItem(&proto.Item{Pid: PidBarrel, Name: "barrel", Type: proto.ItemContainer, Anim: "barrel", ShootThru: true, LightThru: true})
	r.AddCritter(&proto.Critter{Pid: PidHuman, Name: "wanderer", Anim: "human", Look: 10,
		Light: proto.LightDef{Intensity: 25, Distance: 2}})
	r.AddCritter(&proto.Critter{Pid: PidBrahmin, Name: "brahmin", Anim: "brahmin", Multihex: 1})
	return r
}

// Map builds a size x size map: grass, a roofed hut with a lamp, a tree line
// and two critters. Sizes below MinSize are raised to it.
func Map(size int) *maplib.ProtoMap {
	if size < MinSize {
		size = MinSize
	}
	pm := maplib.NewProtoMap("Demo Outskirts", size, size)
	pm.Pid = 1
	pm.Author = "hex-engine"
	pm.DayColors = [12]uint8{
		18, 18, 53, // night
		128, 128, 128, // morning
		103, 95, 86, // evening
		51, 40, 29, // late
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pm.Tiles = append(pm.Tiles, maplib.TileEntry{X: x, Y: y, Tile: maplib.Tile{Name: "grass"}})
		}
	}

	var nextItem uint32
	item := func(pid uint32, x, y int) {
		nextItem++
		pm.Items = append(pm.Items, maplib.ItemEntry{ID: nextItem, Pid: pid, X: x, Y: y})
	}

	cx, cy := size/2, size/2

	// hut with a door on the south wall
	x0, y0 := cx-12, cy-12
	const hut = 6
	for i := 0; i <= hut; i++ {
		item(PidWall, x0+i, y0)
		if i != hut/2 {
			item(PidWall, x0+i, y0+hut)
		}
		if i > 0 && i < hut {
			item(PidWall, x0, y0+i)
			item(PidWall, x0+hut, y0+i)
		}
	}
	for y := y0 + 1; y < y0+hut; y++ {
		for x := x0 + 1; x < x0+hut; x++ {
			pm.Tiles = append(pm.Tiles, maplib.TileEntry{X: x, Y: y, Tile: maplib.Tile{Name: "floor"}})
			pm.Tiles = append(pm.Tiles, maplib.TileEntry{X: x, Y: y, Roof: true, Tile: maplib.Tile{Name: "roof"}})
		}
	}
	item(PidLamp, x0+3, y0+3)
	item(PidRug, x0+3, y0+4)
	item(PidBarrel, x0+1, y0+1)

	// tree line along the south
	for x := 0; x < size; x += 3 {
		y := size*3/4 + int(3*math.Sin(float64(x)*0.3))
		item(PidTree, x, y)
	}

	pm.Critters = append(pm.Critters,
		maplib.CritterEntry{ID: PlayerID, Pid: PidHuman, X: cx, Y: cy, Dir: uint8(hexgeom.DirDownRight)},
		maplib.CritterEntry{ID: BrahminID, Pid: PidBrahmin, X: cx + 6, Y: cy + 4, Dir: uint8(hexgeom.DirLeft)},
	)
	pm.WorkHexX, pm.WorkHexY = cx, cy
	return pm
}
