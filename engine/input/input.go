package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a viewer command bound to a key
type Action uint8

const (
	ActNone Action = iota
	ActTogglePause
	ActStep
	ActFaster
	ActSlower
	ActToggleGrid
	ActToggleLeaves
	ActToggleReach
	ActToggleRoute
	ActToggleMinimap
	ActNextPlayer
	ActFitMap
	ActSnapshot
	ActQuit
)

var actionNames = [...]string{
	"none", "pause", "step", "faster", "slower", "grid", "leaves",
	"reach", "route", "minimap", "next_player", "fit", "snapshot", "quit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// DefaultBindings maps keys to viewer actions
func DefaultBindings() map[ebiten.Key]Action {
	return map[ebiten.Key]Action{
		ebiten.KeySpace:      ActTogglePause,
		ebiten.KeyN:          ActStep,
		ebiten.KeyEqual:      ActFaster,
		ebiten.KeyKPAdd:      ActFaster,
		ebiten.KeyMinus:      ActSlower,
		ebiten.KeyKPSubtract: ActSlower,
		ebiten.KeyG:          ActToggleGrid,
		ebiten.KeyB:          ActToggleLeaves,
		ebiten.KeyR:          ActToggleReach,
		ebiten.KeyP:          ActToggleRoute,
		ebiten.KeyM:          ActToggleMinimap,
		ebiten.KeyTab:        ActNextPlayer,
		ebiten.KeyF:          ActFitMap,
		ebiten.KeyF2:         ActSnapshot,
		ebiten.KeyEscape:     ActQuit,
	}
}

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int
	LeftPressed      bool
	RightPressed     bool
	MiddlePressed    bool
	LeftJustPressed  bool
	RightJustPressed bool
	LeftJustReleased bool
	ScrollY          float64

	// Drag
	DragStartX, DragStartY int
	Dragging               bool
	DragThreshold          int

	// Keyboard
	Bindings map[ebiten.Key]Action // rebindable; Update collects just-pressed actions
	actions  []Action
}

func NewInputState() *InputState {
	return &InputState{
		DragThreshold: 5,
		Bindings:      DefaultBindings(),
	}
}

// Update should be called every frame
func (s *InputState) Update() {
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	leftDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.LeftPressed = leftDown
	s.RightPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.LeftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)

	_, scrollY := ebiten.Wheel()
	s.ScrollY = scrollY

	// Drag tracking
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
	if !leftDown {
		s.Dragging = false
	}

	s.actions = s.actions[:0]
	for k, a := range s.Bindings {
		if inpututil.IsKeyJustPressed(k) {
			s.actions = append(s.actions, a)
		}
	}
}

// Actions returns the actions triggered this frame
func (s *InputState) Actions() []Action { return s.actions }

// Triggered reports whether a was triggered this frame
func (s *InputState) Triggered(a Action) bool {
	for _, got := range s.actions {
		if got == a {
			return true
		}
	}
	return false
}

// IsKeyPressed reports whether key is held down
func (s *InputState) IsKeyPressed(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

// PanDirection returns the held arrow or WASD direction
func (s *InputState) PanDirection() (dx, dy float64) {
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		dy++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		dx++
	}
	return dx, dy
}

// DragDelta returns the mouse movement while the left button drags
func (s *InputState) DragDelta() (dx, dy int, active bool) {
	if !s.Dragging {
		return 0, 0, false
	}
	return s.MouseDX, s.MouseDY, true
}
