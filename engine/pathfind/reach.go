package pathfind

import "github.com/1siamBot/hex-engine/engine/hexgeom"

// Unreached marks hexes the reach field never got to
const Unreached int32 = -1

// ReachField stores the step count from an origin for each hex
type ReachField struct {
	Width, Height int
	Origin        hexgeom.Hex
	Cost          []int32 // integration field, Unreached when not reachable
}

// NewReachField floods outward from origin through passable hexes up to maxSteps
func NewReachField(ng *NavGrid, origin hexgeom.Hex, maxSteps int) *ReachField {
	w, h := ng.grid.Size()
	rf := &ReachField{
		Width:  w,
		Height: h,
		Origin: origin,
		Cost:   make([]int32, w*h),
	}
	for i := range rf.Cost {
		rf.Cost[i] = Unreached
	}
	if !ng.grid.Contains(origin) {
		return rf
	}
	rf.Cost[origin.Y*w+origin.X] = 0

	// BFS integration pass
	queue := []hexgeom.Hex{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curCost := rf.Cost[cur.Y*w+cur.X]
		if int(curCost) >= maxSteps {
			continue
		}
		for d := hexgeom.Dir(0); d < hexgeom.DirCount; d++ {
			n := cur.Step(d)
			if !ng.Passable(n) {
				continue
			}
			idx := n.Y*w + n.X
			if rf.Cost[idx] == Unreached {
				rf.Cost[idx] = curCost + 1
				queue = append(queue, n)
			}
		}
	}
	return rf
}

// Steps returns the step count to (x, y), Unreached when out of reach
func (rf *ReachField) Steps(x, y int) int32 {
	if x < 0 || y < 0 || x >= rf.Width || y >= rf.Height {
		return Unreached
	}
	return rf.Cost[y*rf.Width+x]
}

// Reachable reports whether (x, y) was reached
func (rf *ReachField) Reachable(x, y int) bool { return rf.Steps(x, y) != Unreached }

// Direction returns the step from h toward the origin along the lowest-cost neighbor
func (rf *ReachField) Direction(h hexgeom.Hex) hexgeom.Dir {
	best := rf.Steps(h.X, h.Y)
	if best <= 0 {
		return hexgeom.DirNone
	}
	dir := hexgeom.DirNone
	for d := hexgeom.Dir(0); d < hexgeom.DirCount; d++ {
		n := h.Step(d)
		c := rf.Steps(n.X, n.Y)
		if c != Unreached && c < best {
			best, dir = c, d
		}
	}
	return dir
}

// Count returns how many hexes were reached
func (rf *ReachField) Count() int {
	n := 0
	for _, c := range rf.Cost {
		if c != Unreached {
			n++
		}
	}
	return n
}
