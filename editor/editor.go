// Package editor is the hex mapper model: brushes, selection and undo on
// top of a hexmap.Manager running in mapper mode.
package editor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/zyedidia/generic/mapset"

	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/hexgeom"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
)

// ErrNothingToErase is returned when an erase finds an empty hex
var ErrNothingToErase = errors.New("editor: nothing to erase")

// EditorTool represents the current editor tool
type EditorTool int

const (
	ToolSelect EditorTool = iota
	ToolTile
	ToolRoof
	ToolItem
	ToolCritter
	ToolErase
)

var toolNames = [...]string{"select", "tile", "roof", "item", "critter", "erase"}

func (t EditorTool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "unknown"
}

type actionKind uint8

const (
	actTiles actionKind = iota
	actItem
	actCritter
)

// Action is one undoable change. Tile actions keep the whole tile list of
// the hex before and after; object actions keep the entry and whether it
// was added.
type Action struct {
	kind     actionKind
	Hex      hexgeom.Hex
	Roof     bool
	OldTiles []maplib.Tile
	NewTiles []maplib.Tile
	Item     maplib.ItemEntry
	Critter  maplib.CritterEntry
	Added    bool
}

// Editor holds map editor state
type Editor struct {
	Map       *hexmap.Manager
	Tool      EditorTool
	Tile      maplib.Tile // tile and roof brush
	Pid       uint32      // item or critter brush
	Dir       hexgeom.Dir
	Selection mapset.Set[hexgeom.Hex]
	UndoStack [][]Action
	RedoStack [][]Action
	FilePath  string
	Modified  bool
	// Clipboard receives hex reports, clipboard.WriteAll unless replaced
	Clipboard func(string) error
}

// NewEditor wraps a manager; the manager should be in mapper mode
func NewEditor(m *hexmap.Manager) *Editor {
	return &Editor{
		Map:       m,
		Tool:      ToolSelect,
		Dir:       hexgeom.DirDownRight,
		Selection: mapset.New[hexgeom.Hex](),
		Clipboard: clipboard.WriteAll,
	}
}

func (e *Editor) reset(path string) {
	e.FilePath = path
	e.Modified = false
	e.UndoStack = nil
	e.RedoStack = nil
	e.Selection.Clear()
}

// NewMap creates a fresh map
func (e *Editor) NewMap(name string, w, h int) error {
	if err := e.Map.SetProtoMap(maplib.NewProtoMap(name, w, h)); err != nil {
		return err
	}
	e.reset("")
	return nil
}

// LoadMap loads a map file
func (e *Editor) LoadMap(path string) error {
	pm, err := maplib.LoadJSON(path)
	if err != nil {
		return err
	}
	if err := e.Map.SetProtoMap(pm); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	e.reset(path)
	return nil
}

// SaveMap saves the current map
func (e *Editor) SaveMap(path string) error {
	if path == "" {
		path = e.FilePath
	}
	if path == "" {
		path = "untitled.hexmap"
	}
	pm, err := e.Map.GetProtoMap()
	if err != nil {
		return err
	}
	if err := pm.SaveJSON(path); err != nil {
		return err
	}
	e.FilePath = path
	e.Modified = false
	logger.Component("editor").WithField("path", path).Info("map saved")
	return nil
}

// SaveCache stores the current map in a cache under its pid
func (e *Editor) SaveCache(s cache.Storage) error {
	pm, err := e.Map.GetProtoMap()
	if err != nil {
		return err
	}
	return cache.SaveMap(s, pm)
}

// Paint applies the current tool at h. Tile and roof brushes cover the
// whole selection when h is part of it.
func (e *Editor) Paint(h hexgeom.Hex) error {
	if !e.Map.IsHexValid(h.X, h.Y) {
		return fmt.Errorf("%w: %d,%d", hexmap.ErrBadHex, h.X, h.Y)
	}
	var actions []Action
	var err error
	switch e.Tool {
	case ToolSelect:
		e.Select(h, false)
		return nil
	case ToolTile, ToolRoof:
		roof := e.Tool == ToolRoof
		for _, th := range e.targets(h) {
			a, terr := e.setTile(th, roof)
			if terr != nil {
				err = terr
				break
			}
			actions = append(actions, a)
		}
	case ToolItem:
		var a Action
		if a, err = e.addItem(maplib.ItemEntry{ID: e.nextItemID(), Pid: e.Pid, X: h.X, Y: h.Y}); err == nil {
			actions = append(actions, a)
		}
	case ToolCritter:
		var a Action
		entry := maplib.CritterEntry{ID: e.nextCritterID(), Pid: e.Pid, X: h.X, Y: h.Y, Dir: uint8(e.Dir)}
		if a, err = e.addCritter(entry); err == nil {
			actions = append(actions, a)
		}
	case ToolErase:
		var a Action
		if a, err = e.erase(h); err == nil {
			actions = append(actions, a)
		}
	}
	e.push(actions)
	return err
}

func (e *Editor) targets(h hexgeom.Hex) []hexgeom.Hex {
	if !e.Selection.Has(h) {
		return []hexgeom.Hex{h}
	}
	return e.Selected()
}

func (e *Editor) push(actions []Action) {
	if len(actions) == 0 {
		return
	}
	e.UndoStack = append(e.UndoStack, actions)
	e.RedoStack = nil
	e.Modified = true
}

func (e *Editor) tiles(h hexgeom.Hex, roof bool) []maplib.Tile {
	f := e.Map.GetField(h.X, h.Y)
	src := f.Tiles
	if roof {
		src = f.Roofs
	}
	return append([]maplib.Tile(nil), src...)
}

func (e *Editor) setTile(h hexgeom.Hex, roof bool) (Action, error) {
	old := e.tiles(h, roof)
	if err := e.Map.SetTile(h, e.Tile, roof); err != nil {
		return Action{}, err
	}
	return Action{kind: actTiles, Hex: h, Roof: roof, OldTiles: old, NewTiles: e.tiles(h, roof)}, nil
}

// restoreTiles replaces the tile list of a hex
func (e *Editor) restoreTiles(h hexgeom.Hex, roof bool, tiles []maplib.Tile) {
	for e.Map.EraseTile(h, roof, 0) {
	}
	for _, t := range tiles {
		e.Map.SetTile(h, t, roof)
	}
}

func (e *Editor) addItem(entry maplib.ItemEntry) (Action, error) {
	if _, err := e.Map.AddItem(entry); err != nil {
		return Action{}, err
	}
	return Action{kind: actItem, Hex: hexgeom.Hex{X: entry.X, Y: entry.Y}, Item: entry, Added: true}, nil
}

func (e *Editor) addCritter(entry maplib.CritterEntry) (Action, error) {
	if _, err := e.Map.AddCritter(entry); err != nil {
		return Action{}, err
	}
	return Action{kind: actCritter, Hex: hexgeom.Hex{X: entry.X, Y: entry.Y}, Critter: entry, Added: true}, nil
}

// erase removes the topmost thing on h: a live critter, then the last
// item, then the top roof tile, then the top ground tile
func (e *Editor) erase(h hexgeom.Hex) (Action, error) {
	f := e.Map.GetField(h.X, h.Y)
	if f.Crit != 0 {
		c, _ := e.Map.GetCritter(f.Crit)
		entry := critterEntry(c)
		e.Map.DeleteCritter(c.ID)
		return Action{kind: actCritter, Hex: h, Critter: entry}, nil
	}
	if n := len(f.Items); n > 0 {
		it, _ := e.Map.GetItem(f.Items[n-1].ID)
		entry := maplib.ItemEntry{ID: it.ID, Pid: it.Pid, X: h.X, Y: h.Y}
		e.Map.DeleteItem(it.ID)
		return Action{kind: actItem, Hex: h, Item: entry}, nil
	}
	for _, roof := range [2]bool{true, false} {
		old := e.tiles(h, roof)
		if len(old) == 0 {
			continue
		}
		e.Map.EraseTile(h, roof, len(old)-1)
		return Action{kind: actTiles, Hex: h, Roof: roof, OldTiles: old, NewTiles: e.tiles(h, roof)}, nil
	}
	return Action{}, ErrNothingToErase
}

func critterEntry(c *hexmap.Critter) maplib.CritterEntry {
	return maplib.CritterEntry{ID: c.ID, Pid: c.Pid, X: c.Hex.X, Y: c.Hex.Y, Dir: uint8(c.Dir), Dead: c.Dead}
}

func (e *Editor) nextItemID() uint32 {
	var n uint32
	for _, it := range e.Map.Items() {
		n = max(n, it.ID)
	}
	return n + 1
}

func (e *Editor) nextCritterID() uint32 {
	var n uint32
	for _, c := range e.Map.Critters() {
		n = max(n, c.ID)
	}
	return n + 1
}

// apply plays an action forward or backward
func (e *Editor) apply(a Action, forward bool) {
	switch a.kind {
	case actTiles:
		tiles := a.OldTiles
		if forward {
			tiles = a.NewTiles
		}
		e.restoreTiles(a.Hex, a.Roof, tiles)
	case actItem:
		if a.Added == forward {
			e.Map.AddItem(a.Item)
		} else {
			e.Map.DeleteItem(a.Item.ID)
		}
	case actCritter:
		if a.Added == forward {
			e.Map.AddCritter(a.Critter)
		} else {
			e.Map.DeleteCritter(a.Critter.ID)
		}
	}
}

// Undo reverts the last action
func (e *Editor) Undo() bool {
	if len(e.UndoStack) == 0 {
		return false
	}
	actions := e.UndoStack[len(e.UndoStack)-1]
	e.UndoStack = e.UndoStack[:len(e.UndoStack)-1]
	for i := len(actions) - 1; i >= 0; i-- {
		e.apply(actions[i], false)
	}
	e.RedoStack = append(e.RedoStack, actions)
	e.Modified = true
	return true
}

// Redo re-applies the last undone action
func (e *Editor) Redo() bool {
	if len(e.RedoStack) == 0 {
		return false
	}
	actions := e.RedoStack[len(e.RedoStack)-1]
	e.RedoStack = e.RedoStack[:len(e.RedoStack)-1]
	for _, a := range actions {
		e.apply(a, true)
	}
	e.UndoStack = append(e.UndoStack, actions)
	e.Modified = true
	return true
}

// Select adds h to the selection, replacing it unless add is set
func (e *Editor) Select(h hexgeom.Hex, add bool) {
	if !add {
		e.Selection.Clear()
	}
	if e.Map.IsHexValid(h.X, h.Y) {
		e.Selection.Put(h)
	}
}

// SelectRect selects the hexes whose centers lie in a screen rectangle
func (e *Editor) SelectRect(x1, y1, x2, y2 int, add bool) int {
	if !add {
		e.Selection.Clear()
	}
	hexes := e.Map.GetHexesRect(x1, y1, x2, y2)
	for _, h := range hexes {
		e.Selection.Put(h)
	}
	return len(hexes)
}

// ClearSelection empties the selection
func (e *Editor) ClearSelection() { e.Selection.Clear() }

// Selected lists the selection in row-major order
func (e *Editor) Selected() []hexgeom.Hex {
	out := make([]hexgeom.Hex, 0, e.Selection.Size())
	e.Selection.Each(func(h hexgeom.Hex) { out = append(out, h) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// HexReport describes everything on a hex in a few lines of text
func (e *Editor) HexReport(h hexgeom.Hex) string {
	if !e.Map.IsHexValid(h.X, h.Y) {
		return fmt.Sprintf("hex %d,%d: outside the map", h.X, h.Y)
	}
	f := e.Map.GetField(h.X, h.Y)
	var b strings.Builder
	fmt.Fprintf(&b, "hex %d,%d flags %08b roof %d", h.X, h.Y, f.Flags, f.RoofNum)
	if lt := e.Map.Light(); lt.Buffer() != nil {
		r, g, bl := lt.Light(h.X, h.Y)
		fmt.Fprintf(&b, " light %d,%d,%d", r, g, bl)
	}
	for _, t := range f.Tiles {
		fmt.Fprintf(&b, "\ntile %s layer %d", t.Name, t.Layer)
	}
	for _, t := range f.Roofs {
		fmt.Fprintf(&b, "\nroof %s layer %d", t.Name, t.Layer)
	}
	for _, ref := range f.Items {
		fmt.Fprintf(&b, "\nitem %d pid %d %s", ref.ID, ref.Proto.Pid, ref.Proto.Name)
	}
	if f.Crit != 0 {
		if c, ok := e.Map.GetCritter(f.Crit); ok {
			fmt.Fprintf(&b, "\ncritter %d pid %d dir %d", c.ID, c.Pid, c.Dir)
		}
	}
	for _, id := range f.DeadCrits {
		fmt.Fprintf(&b, "\ncorpse %d", id)
	}
	return b.String()
}

// CopyHexReport puts the report of h on the clipboard
func (e *Editor) CopyHexReport(h hexgeom.Hex) error {
	if err := e.Clipboard(e.HexReport(h)); err != nil {
		return fmt.Errorf("copy hex report: %w", err)
	}
	return nil
}
