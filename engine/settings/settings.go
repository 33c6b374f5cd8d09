package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/1siamBot/hex-engine/engine/hexgeom"
)

// HexSettings holds every tunable the hex engine reads at runtime
type HexSettings struct {
	// Hex sprite metrics
	HexWidth      int `json:"hex_width"`
	HexHeight     int `json:"hex_height"`
	HexLineHeight int `json:"hex_line_height"`

	// Allowed map dimensions (inclusive)
	MinHexX int `json:"min_hex_x"`
	MaxHexX int `json:"max_hex_x"`
	MinHexY int `json:"min_hex_y"`
	MaxHexY int `json:"max_hex_y"`

	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`

	// Zoom is a divisor: 1 is native, larger values show more hexes
	MinZoom  float64 `json:"min_zoom"`
	MaxZoom  float64 `json:"max_zoom"`
	ZoomStep float64 `json:"zoom_step"`

	ScrollStep  int     `json:"scroll_step"`  // pixels per keyboard scroll tick
	ScrollSpeed float64 `json:"scroll_speed"` // pixels per second for auto scroll
	ScrollEdge  int     `json:"scroll_edge"`  // mouse edge zone in pixels
	ScrollCheck bool    `json:"scroll_check"` // refuse scrolling onto ScrollBlock hexes
	ViewMargin  int     `json:"view_margin"`  // extra hexes built around the screen

	MaxFindPath int `json:"max_find_path"`

	LightEnabled     bool `json:"light_enabled"`
	MaxLightDistance int  `json:"max_light_distance"`

	EggAlpha  uint8 `json:"egg_alpha"`
	EggWidth  int   `json:"egg_width"`
	EggHeight int   `json:"egg_height"`

	ShowRoof     bool   `json:"show_roof"`
	ShowTrack    bool   `json:"show_track"`
	ShowFog      bool   `json:"show_fog"`
	MapperMode   bool   `json:"mapper_mode"`
	CritterLook  int    `json:"critter_look"`
	AnimTickMs   int    `json:"anim_tick_ms"`
	MoveStepMs   int    `json:"move_step_ms"`
	StubAnimName string `json:"stub_anim_name"`
}

// ErrInvalid is returned by Validate for inconsistent settings
var ErrInvalid = errors.New("invalid hex settings")

// Default returns the stock configuration
func Default() *HexSettings {
	return &HexSettings{
		HexWidth:         hexgeom.DefaultHexWidth,
		HexHeight:        hexgeom.DefaultHexHeight,
		HexLineHeight:    hexgeom.DefaultHexLineHeight,
		MinHexX:          10,
		MaxHexX:          1000,
		MinHexY:          10,
		MaxHexY:          1000,
		ScreenWidth:      1280,
		ScreenHeight:     720,
		MinZoom:          0.5,
		MaxZoom:          4.0,
		ZoomStep:         0.1,
		ScrollStep:       12,
		ScrollSpeed:      600,
		ScrollEdge:       8,
		ScrollCheck:      true,
		ViewMargin:       2,
		MaxFindPath:      600,
		LightEnabled:     true,
		MaxLightDistance: 30,
		EggAlpha:         64,
		EggWidth:         70,
		EggHeight:        95,
		ShowRoof:         true,
		ShowFog:          false,
		CritterLook:      20,
		AnimTickMs:       100,
		MoveStepMs:       200,
		StubAnimName:     "default_stub",
	}
}

// Load reads a JSON file over the defaults
func Load(path string) (*HexSettings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings as indented JSON
func (s *HexSettings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the engine cannot work with
func (s *HexSettings) Validate() error {
	switch {
	case s.HexWidth <= 0 || s.HexWidth%2 != 0:
		return fmt.Errorf("%w: hex_width %d must be positive and even", ErrInvalid, s.HexWidth)
	case s.HexHeight <= 0 || s.HexLineHeight <= 0:
		return fmt.Errorf("%w: hex height and line height must be positive", ErrInvalid)
	case s.MinHexX <= 0 || s.MinHexX > s.MaxHexX:
		return fmt.Errorf("%w: hex x bounds %d..%d", ErrInvalid, s.MinHexX, s.MaxHexX)
	case s.MinHexY <= 0 || s.MinHexY > s.MaxHexY:
		return fmt.Errorf("%w: hex y bounds %d..%d", ErrInvalid, s.MinHexY, s.MaxHexY)
	case s.MinZoom <= 0 || s.MinZoom > s.MaxZoom:
		return fmt.Errorf("%w: zoom bounds %.2f..%.2f", ErrInvalid, s.MinZoom, s.MaxZoom)
	case s.MaxFindPath <= 0:
		return fmt.Errorf("%w: max_find_path must be positive", ErrInvalid)
	case s.MaxLightDistance < 0:
		return fmt.Errorf("%w: max_light_distance must not be negative", ErrInvalid)
	}
	return nil
}

// InGridBounds reports whether a map of w*h hexes is allowed
func (s *HexSettings) InGridBounds(w, h int) bool {
	return w >= s.MinHexX && w <= s.MaxHexX && h >= s.MinHexY && h <= s.MaxHexY
}
