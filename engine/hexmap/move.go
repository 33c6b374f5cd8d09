package hexmap

import (
	"fmt"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
)

// MoveCritter queues steps for a critter; the walk is played by ProcessMoves.
// An empty list stops the critter on its current hex.
func (m *Manager) MoveCritter(id uint32, steps []hexgeom.Dir) error {
	c, ok := m.critters[id]
	if !ok || !c.onMap {
		return fmt.Errorf("%w: critter %d", ErrNotFound, id)
	}
	if c.Dead && len(steps) > 0 {
		return fmt.Errorf("hexmap: critter %d is dead", id)
	}
	for _, d := range steps {
		if !d.Valid() {
			return fmt.Errorf("hexmap: bad step %d for critter %d", d, id)
		}
	}
	c.moves = append(c.moves[:0], steps...)
	c.progress = 0
	c.OffsX, c.OffsY = 0, 0
	return nil
}

// ProcessMoves advances every walking critter by dt seconds. A critter
// whose next hex is blocked stops where it stands.
func (m *Manager) ProcessMoves(dt float64) {
	if m.grid == nil || dt <= 0 {
		return
	}
	stepMs := float64(m.cfg.MoveStepMs)
	if stepMs <= 0 {
		stepMs = 1
	}
	for _, c := range m.Critters() {
		if len(c.moves) == 0 {
			continue
		}
		c.progress += dt * 1000 / stepMs
		for c.progress >= 1 && len(c.moves) > 0 {
			next := c.Hex.Step(c.moves[0])
			if !m.TransitCritter(c.ID, next) {
				m.log.WithField("critter", c.ID).Debugf("walk blocked at %v", next)
				c.moves = nil
				break
			}
			c.moves = c.moves[1:]
			c.progress--
		}
		if len(c.moves) == 0 {
			c.progress = 0
			c.OffsX, c.OffsY = 0, 0
			continue
		}
		dx, dy := hexgeom.HexOffset(c.Hex, c.Hex.Step(c.moves[0]), m.cfg.HexWidth, m.cfg.HexLineHeight)
		c.OffsX = int(float64(dx) * c.progress)
		c.OffsY = int(float64(dy) * c.progress)
		if c.Proto != nil && c.Proto.Light.Emits() {
			m.light.RequestRender()
		}
	}
}
