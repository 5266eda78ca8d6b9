package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine() *Machine {
	return New(Config{
		ViewportWidth:  1280,
		ViewportHeight: 800,
		Initial:        Point{X: 20, Y: 20},
	})
}

func TestVisibilityToggle(t *testing.T) {
	m := newTestMachine()
	require.Equal(t, StateHidden, m.State())

	assert.Equal(t, StateVisible, m.ToggleVisible())
	assert.Equal(t, StateHidden, m.ToggleVisible())

	// toggling away while minimized hides too
	m.ToggleVisible()
	m.ToggleMinimized()
	require.Equal(t, StateMinimized, m.State())
	assert.Equal(t, StateHidden, m.ToggleVisible())
}

func TestMinimizeRestore(t *testing.T) {
	m := newTestMachine()

	// minimize is a no-op while hidden
	assert.Equal(t, StateHidden, m.ToggleMinimized())

	m.ToggleVisible()
	assert.Equal(t, StateMinimized, m.ToggleMinimized())
	assert.Equal(t, StateVisible, m.ToggleMinimized())

	m.ToggleMinimized()
	assert.Equal(t, StateVisible, m.Restore())
	assert.Equal(t, StateVisible, m.Restore())
}

func TestDragMovesByPointerDelta(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()

	m.PointerDown(Point{X: 50, Y: 40})
	assert.True(t, m.Dragging())

	m.PointerMove(Point{X: 150, Y: 140})
	assert.Equal(t, Point{X: 120, Y: 120}, m.Position())

	m.PointerUp()
	assert.False(t, m.Dragging())
	assert.Equal(t, StateVisible, m.State())

	// moves after release are ignored
	m.PointerMove(Point{X: 500, Y: 500})
	assert.Equal(t, Point{X: 120, Y: 120}, m.Position())
}

func TestDragClampsToViewport(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()

	m.PointerDown(Point{X: 20, Y: 20})

	m.PointerMove(Point{X: -500, Y: -500})
	assert.Equal(t, Point{X: 0, Y: 0}, m.Position())

	m.PointerMove(Point{X: 5000, Y: 5000})
	assert.Equal(t, Point{X: 1280 - 420, Y: 800 - 200}, m.Position())
}

func TestDragWhileMinimizedKeepsState(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()
	m.ToggleMinimized()

	m.PointerDown(Point{X: 20, Y: 20})
	m.PointerMove(Point{X: 60, Y: 80})
	m.PointerUp()

	assert.Equal(t, StateMinimized, m.State())
	assert.Equal(t, Point{X: 60, Y: 80}, m.Position())
}

func TestHiddenIgnoresPointer(t *testing.T) {
	m := newTestMachine()

	m.PointerDown(Point{X: 20, Y: 20})
	assert.False(t, m.Dragging())
	m.PointerMove(Point{X: 200, Y: 200})
	assert.Equal(t, Point{X: 20, Y: 20}, m.Position())
}

func TestResizeReclamps(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()
	m.PointerDown(Point{X: 20, Y: 20})
	m.PointerMove(Point{X: 860, Y: 600})
	m.PointerUp()
	require.Equal(t, Point{X: 860, Y: 600}, m.Position())

	m.Resize(640, 480)
	assert.Equal(t, Point{X: 640 - 420, Y: 480 - 200}, m.Position())
}

func TestOpacityDuringDrag(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()
	assert.InDelta(t, 0.1, m.Opacity(), 1e-9)

	m.PointerDown(Point{X: 20, Y: 20})
	assert.InDelta(t, 1.0, m.Opacity(), 1e-9)

	m.PointerUp()
	assert.InDelta(t, 0.1, m.Opacity(), 1e-9)
}

func TestEscapeRestoresUnlessTyping(t *testing.T) {
	m := newTestMachine()
	m.ToggleVisible()
	m.ToggleMinimized()

	assert.False(t, m.HandleKey(Key{Key: "Escape", TextFieldFocused: true}))
	assert.Equal(t, StateMinimized, m.State())

	assert.True(t, m.HandleKey(Key{Key: "Escape"}))
	assert.Equal(t, StateVisible, m.State())
}

func TestStealthShortcut(t *testing.T) {
	m := newTestMachine()

	assert.True(t, m.HandleKey(Key{Key: "S", Ctrl: true, Shift: true}))
	assert.Equal(t, StateVisible, m.State())

	// lowercase variant, even inside a text field
	assert.True(t, m.HandleKey(Key{Key: "s", Ctrl: true, Shift: true, TextFieldFocused: true}))
	assert.Equal(t, StateHidden, m.State())

	assert.False(t, m.HandleKey(Key{Key: "S", Ctrl: true}))
	assert.False(t, m.HandleKey(Key{Key: "S", Shift: true}))
}
