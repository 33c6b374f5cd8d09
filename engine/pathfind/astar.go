package pathfind

import (
	"container/heap"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/sirupsen/logrus"
)

// DefaultMaxPath is the step budget used when none is configured
const DefaultMaxPath = 600

// Request describes one path query
type Request struct {
	Critter  uint32 // mover id, 0 when the path is not for a critter
	From     hexgeom.Hex
	To       hexgeom.Hex
	Multihex int
	// Cut > 0 allows the goal itself to be occupied, for approach moves
	Cut int
}

// Result is a path expressed as direction codes from Request.From
type Result struct {
	Steps []hexgeom.Dir
	End   hexgeom.Hex
}

// Finder runs bounded A* searches over a field grid
type Finder struct {
	grid    *maplib.Grid
	maxPath int
}

// NewFinder creates a path finder with a step budget
func NewFinder(grid *maplib.Grid, maxPath int) *Finder {
	if maxPath <= 0 {
		maxPath = DefaultMaxPath
	}
	return &Finder{grid: grid, maxPath: maxPath}
}

// MaxPath returns the step budget
func (f *Finder) MaxPath() int { return f.maxPath }

// FindPath returns the direction codes leading from req.From to req.To.
// Neighbors are expanded in direction order 0..5 and ties on cost are
// broken by heuristic then insertion order, so equal input yields equal output.
func (f *Finder) FindPath(req Request) ([]hexgeom.Dir, bool) {
	g := f.grid
	if !g.Contains(req.From) || !g.Contains(req.To) {
		return nil, false
	}
	if req.From == req.To {
		return []hexgeom.Dir{}, true
	}
	if hexgeom.Distance(req.From, req.To) > f.maxPath {
		return nil, false
	}

	ng := NewNavGrid(g, req.Critter, req.Multihex)
	goalOK := func(h hexgeom.Hex) bool {
		if req.Cut > 0 {
			return g.Contains(h)
		}
		return ng.Passable(h)
	}
	if !goalOK(req.To) {
		return nil, false
	}

	open := &nodeHeap{}
	heap.Init(open)
	var seq uint32
	heap.Push(open, &node{p: req.From, g: 0, h: hexgeom.Distance(req.From, req.To), seq: seq})

	came := make(map[hexgeom.Hex]cameFrom)
	gScore := map[hexgeom.Hex]int{req.From: 0}
	closed := make(map[hexgeom.Hex]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.p] {
			continue
		}
		closed[cur.p] = true
		if cur.p == req.To {
			return reconstructSteps(came, req.From, req.To), true
		}
		if cur.g >= f.maxPath {
			continue
		}

		for d := hexgeom.Dir(0); d < hexgeom.DirCount; d++ {
			np := cur.p.Step(d)
			if !g.Contains(np) || closed[np] {
				continue
			}
			if np == req.To {
				if !goalOK(np) {
					continue
				}
			} else if !ng.Passable(np) {
				continue
			}
			tentG := cur.g + 1
			if old, ok := gScore[np]; ok && tentG >= old {
				continue
			}
			gScore[np] = tentG
			came[np] = cameFrom{prev: cur.p, dir: d}
			seq++
			heap.Push(open, &node{p: np, g: tentG, h: hexgeom.Distance(np, req.To), seq: seq})
		}
	}
	logger.Log.WithFields(logrus.Fields{
		"component": "pathfind",
		"from":      req.From,
		"to":        req.To,
		"expanded":  len(closed),
	}).Debug("no path")
	return nil, false
}

// CutPath finds a path and drops the last cut steps, so the mover stops
// cut hexes short of the target. It fails when cut exceeds the path length.
func (f *Finder) CutPath(req Request, cut int) (Result, bool) {
	if cut < 0 {
		cut = 0
	}
	req.Cut = cut
	steps, ok := f.FindPath(req)
	if !ok || cut > len(steps) {
		return Result{}, false
	}
	steps = steps[:len(steps)-cut]
	return Result{Steps: steps, End: ApplySteps(req.From, steps)}, true
}

type cameFrom struct {
	prev hexgeom.Hex
	dir  hexgeom.Dir
}

func reconstructSteps(came map[hexgeom.Hex]cameFrom, start, goal hexgeom.Hex) []hexgeom.Dir {
	var steps []hexgeom.Dir
	cur := goal
	for cur != start {
		c := came[cur]
		steps = append(steps, c.dir)
		cur = c.prev
	}
	// Reverse
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// --- Priority queue ---

type node struct {
	p    hexgeom.Hex
	g, h int
	seq  uint32
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	fi, fj := h[i].g+h[i].h, h[j].g+h[j].h
	if fi != fj {
		return fi < fj
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
