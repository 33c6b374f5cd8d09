package trace

import (
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// CritterFilter selects critters by id
type CritterFilter func(id uint32) bool

// Request describes one trace
type Request struct {
	From, To hexgeom.Hex
	Dist     int     // steps to trace, 0 means up to To
	Angle    float64 // clockwise aim deviation in degrees

	// FindCritter stops the trace on this critter id when non-zero
	FindCritter uint32
	// Safe stops on any other critter accepted by IsAlly (any critter when IsAlly is nil)
	Safe   bool
	IsAlly CritterFilter
	// FindType collects every critter it accepts along the path; nil disables collection
	FindType CritterFilter

	// CheckPassed stops at the first hex that blocks sight; otherwise geometry is ignored
	CheckPassed  bool
	CollectSteps bool
}

// Result of a trace. PreBlock is the last clear hex, Block the hex that stopped
// the trace. When nothing stopped it both are the last traced hex.
type Result struct {
	PreBlock hexgeom.Hex
	Block    hexgeom.Hex
	Steps    []hexgeom.Hex
	Critters []uint32

	Found   bool // FindCritter was hit
	Blocked bool // stopped by geometry
	Unsafe  bool // stopped on another critter in Safe mode
}

// Tracer walks hex lines over a field grid
type Tracer struct {
	grid *maplib.Grid
}

func NewTracer(grid *maplib.Grid) *Tracer {
	return &Tracer{grid: grid}
}

// TraceBullet steps from req.From toward req.To and reports where the line stopped
func (t *Tracer) TraceBullet(req Request) Result {
	res := Result{PreBlock: req.From, Block: req.From}
	if !t.grid.Contains(req.From) {
		return res
	}
	pre := req.From
	for _, h := range hexgeom.Line(req.From, req.To, req.Dist, req.Angle) {
		if !t.grid.Contains(h) {
			break
		}
		f := t.grid.FieldAt(h)
		if req.CollectSteps {
			res.Steps = append(res.Steps, h)
		}
		if req.CheckPassed && f.IsNotRaked() {
			res.PreBlock, res.Block, res.Blocked = pre, h, true
			return res
		}
		if t.scanCritters(f, &req, &res) {
			res.PreBlock, res.Block = pre, h
			return res
		}
		pre = h
	}
	res.PreBlock, res.Block = pre, pre
	return res
}

// scanCritters reports whether a critter on f ends the trace
func (t *Tracer) scanCritters(f *maplib.Field, req *Request, res *Result) bool {
	stop := false
	visit := func(id uint32) {
		if req.FindType != nil && req.FindType(id) {
			res.Critters = append(res.Critters, id)
		}
		if stop {
			return
		}
		if req.FindCritter != 0 && id == req.FindCritter {
			res.Found, stop = true, true
			return
		}
		if req.Safe && (req.IsAlly == nil || req.IsAlly(id)) {
			res.Unsafe, stop = true, true
		}
	}
	if f.Crit != 0 {
		visit(f.Crit)
	}
	for _, id := range f.MultihexCrits {
		visit(id)
	}
	return stop
}

// LineOfSight reports whether to can be seen from from. A blocking hex is
// itself visible, only what lies behind it is hidden.
func (t *Tracer) LineOfSight(from, to hexgeom.Hex) bool {
	if from == to {
		return true
	}
	return t.TraceBullet(Request{From: from, To: to, CheckPassed: true}).Block == to
}
