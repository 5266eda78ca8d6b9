// Package overlay models the floating stealth panel as an explicit state
// machine. Platform pointer and keyboard events are translated into intents
// so the transitions are testable without any window system.
package overlay

import "sync"

type State string

const (
	StateHidden    State = "hidden"
	StateVisible   State = "visible"
	StateMinimized State = "minimized"
)

// Point is a pixel offset in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Key is a keyboard intent. TextFieldFocused scopes shortcuts that double
// as text-editing keys.
type Key struct {
	Key              string
	Ctrl             bool
	Shift            bool
	TextFieldFocused bool
}

type Config struct {
	Width          float64 // overlay size
	Height         float64
	ViewportWidth  float64
	ViewportHeight float64
	StealthOpacity float64 // idle translucency
	Initial        Point
}

// Machine owns position and visibility of a single overlay instance. One
// machine per view; two overlays for the same session are never visible
// concurrently.
type Machine struct {
	mu sync.Mutex

	cfg      Config
	state    State
	dragging bool
	pos      Point

	// pointer offset relative to the overlay origin at drag start
	grab Point
}

func New(cfg Config) *Machine {
	if cfg.Width <= 0 {
		cfg.Width = 420
	}
	if cfg.Height <= 0 {
		cfg.Height = 200
	}
	if cfg.StealthOpacity <= 0 {
		cfg.StealthOpacity = 0.1
	}
	m := &Machine{cfg: cfg, state: StateHidden, pos: cfg.Initial}
	m.pos = m.clamp(m.pos)
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Position() Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *Machine) Dragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragging
}

// Opacity is forced opaque while dragging so the user sees the gesture.
func (m *Machine) Opacity() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dragging {
		return 1.0
	}
	return m.cfg.StealthOpacity
}

func (m *Machine) ToggleVisible() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateHidden:
		m.state = StateVisible
	default:
		m.state = StateHidden
		m.dragging = false
	}
	return m.state
}

func (m *Machine) ToggleMinimized() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateVisible:
		m.state = StateMinimized
	case StateMinimized:
		m.state = StateVisible
	}
	return m.state
}

// Restore exits the minimized state.
func (m *Machine) Restore() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateMinimized {
		m.state = StateVisible
	}
	return m.state
}

// PointerDown starts a drag when the pointer lands on the handle of a
// visible overlay. Mouse and touch feed the same intent.
func (m *Machine) PointerDown(p Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateHidden {
		return
	}
	m.dragging = true
	m.grab = Point{X: p.X - m.pos.X, Y: p.Y - m.pos.Y}
}

// PointerMove repositions the overlay while dragging. The new position is
// the pointer minus the grab offset, clamped to the viewport.
func (m *Machine) PointerMove(p Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dragging {
		return
	}
	m.pos = m.clamp(Point{X: p.X - m.grab.X, Y: p.Y - m.grab.Y})
}

// PointerUp ends the drag, leaving whichever visible state was current.
func (m *Machine) PointerUp() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dragging = false
}

// Resize updates viewport bounds and re-clamps the current position.
func (m *Machine) Resize(viewportWidth, viewportHeight float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.ViewportWidth = viewportWidth
	m.cfg.ViewportHeight = viewportHeight
	m.pos = m.clamp(m.pos)
}

// HandleKey applies the global shortcuts and reports whether the key was
// consumed. Escape only fires outside text fields; the visibility toggle
// is modifier-guarded so it never collides with typing.
func (m *Machine) HandleKey(k Key) bool {
	switch {
	case k.Key == "Escape" && !k.TextFieldFocused:
		m.Restore()
		return true
	case k.Ctrl && k.Shift && (k.Key == "S" || k.Key == "s"):
		m.ToggleVisible()
		return true
	}
	return false
}

func (m *Machine) clamp(p Point) Point {
	maxX := m.cfg.ViewportWidth - m.cfg.Width
	maxY := m.cfg.ViewportHeight - m.cfg.Height
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.X > maxX {
		p.X = maxX
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > maxY {
		p.Y = maxY
	}
	return p
}
