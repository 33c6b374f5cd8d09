package input

import (
	"github.com/1siamBot/hex-engine/engine/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY    int
	MouseDX, MouseDY  int // delta since last frame
	prevMouseX        int
	prevMouseY        int
	LeftPressed       bool
	RightPressed      bool
	MiddlePressed     bool
	LeftJustPressed   bool
	RightJustPressed  bool
	LeftJustReleased  bool
	RightJustReleased bool
	ScrollY           float64

	// Drag
	DragStartX, DragStartY int
	Dragging               bool
	DragThreshold          int

	// EdgeSize is the screen border that scrolls the view, 0 disables it
	EdgeSize int
	screenW  int
	screenH  int
}

func NewInputState(edgeSize int) *InputState {
	return &InputState{
		DragThreshold: 5,
		EdgeSize:      edgeSize,
	}
}

// Update should be called every frame with the current screen size
func (s *InputState) Update(screenW, screenH int) {
	s.screenW, s.screenH = screenW, screenH

	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	leftDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.LeftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	s.RightJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
	s.LeftPressed = leftDown
	s.RightPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	_, s.ScrollY = ebiten.Wheel()

	if s.LeftJustPressed {
		s.DragStartX = s.MouseX
		s.DragStartY = s.MouseY
		s.Dragging = false
	}
	if leftDown && !s.Dragging {
		dx := s.MouseX - s.DragStartX
		dy := s.MouseY - s.DragStartY
		if dx*dx+dy*dy > s.DragThreshold*s.DragThreshold {
			s.Dragging = true
		}
	}
	if !leftDown && !s.LeftJustReleased {
		s.Dragging = false
	}
}

// IsKeyJustPressed returns true if key was just pressed this frame
func (s *InputState) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// DragRect returns the selection rectangle if dragging
func (s *InputState) DragRect() (x1, y1, x2, y2 int, active bool) {
	if !s.Dragging {
		return 0, 0, 0, 0, false
	}
	return s.DragStartX, s.DragStartY, s.MouseX, s.MouseY, true
}

// Clicked reports a left release that did not end a drag
func (s *InputState) Clicked() bool {
	return s.LeftJustReleased && !s.Dragging
}

// ScrollKeys folds arrow keys, WASD and the screen edge into one scroll intent
func (s *InputState) ScrollKeys() render.ScrollInput {
	in := render.ScrollInput{
		Left:  ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft),
		Right: ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight),
		Up:    ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp),
		Down:  ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown),
	}
	if s.EdgeSize > 0 && s.screenW > 0 && ebiten.IsFocused() {
		in.Left = in.Left || s.MouseX < s.EdgeSize
		in.Right = in.Right || s.MouseX > s.screenW-s.EdgeSize
		in.Up = in.Up || s.MouseY < s.EdgeSize
		in.Down = in.Down || s.MouseY > s.screenH-s.EdgeSize
	}
	return in
}

// ZoomStep turns the wheel into a zoom step: wheel up zooms in
func (s *InputState) ZoomStep() int {
	switch {
	case s.ScrollY > 0:
		return -1
	case s.ScrollY < 0:
		return 1
	}
	return 0
}

// Ctrl reports whether either control key is held
func (s *InputState) Ctrl() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

// Shift reports whether either shift key is held
func (s *InputState) Shift() bool { return ebiten.IsKeyPressed(ebiten.KeyShift) }
