package pathfind

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
)

// ErrBadStep is returned when a decoded step is not a valid direction
var ErrBadStep = errors.New("bad step direction")

// ApplySteps walks steps from start and returns the final hex
func ApplySteps(start hexgeom.Hex, steps []hexgeom.Dir) hexgeom.Hex {
	h := start
	for _, d := range steps {
		h = h.Step(d)
	}
	return h
}

// StepHexes returns every hex visited by steps, excluding start
func StepHexes(start hexgeom.Hex, steps []hexgeom.Dir) []hexgeom.Hex {
	out := make([]hexgeom.Hex, len(steps))
	h := start
	for i, d := range steps {
		h = h.Step(d)
		out[i] = h
	}
	return out
}

// EncodeSteps writes a path as start hex, count and two steps per byte
func EncodeSteps(w io.Writer, start hexgeom.Hex, steps []hexgeom.Dir) error {
	if len(steps) > 0xFFFF {
		return fmt.Errorf("path of %d steps too long to encode", len(steps))
	}
	if err := binary.Write(w, binary.LittleEndian, int16(start.X)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int16(start.Y)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(steps))); err != nil {
		return err
	}
	packed := make([]byte, (len(steps)+1)/2)
	for i, d := range steps {
		if !d.Valid() {
			return fmt.Errorf("%w: %d at %d", ErrBadStep, d, i)
		}
		packed[i/2] |= byte(d) << (4 * uint(i%2))
	}
	_, err := w.Write(packed)
	return err
}

// DecodeSteps reads a path written by EncodeSteps
func DecodeSteps(r io.Reader) (hexgeom.Hex, []hexgeom.Dir, error) {
	var x, y int16
	if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
		return hexgeom.Hex{}, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
		return hexgeom.Hex{}, nil, err
	}
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return hexgeom.Hex{}, nil, err
	}
	packed := make([]byte, (int(n)+1)/2)
	if _, err := io.ReadFull(r, packed); err != nil {
		return hexgeom.Hex{}, nil, err
	}
	steps := make([]hexgeom.Dir, n)
	for i := range steps {
		d := hexgeom.Dir(packed[i/2] >> (4 * uint(i%2)) & 0x0F)
		if !d.Valid() {
			return hexgeom.Hex{}, nil, fmt.Errorf("%w: %d at %d", ErrBadStep, d, i)
		}
		steps[i] = d
	}
	return hexgeom.Hex{X: int(x), Y: int(y)}, steps, nil
}
