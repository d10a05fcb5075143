package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/stretchr/testify/assert"
)

func TestWindowDefaultsAndOptions(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "oxy-paint", w.title)
	assert.Equal(t, uint32(common.KeyEsc), w.closeKey)
	assert.NoError(t, w.validate())

	w = newEngineWindow(WithTitle("paint"), WithSize(640, 480), WithCloseKey(0))
	width, height := w.Size()
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
	assert.Zero(t, w.closeKey)

	assert.Error(t, newEngineWindow(WithSize(0, 480)).validate())
	assert.Error(t, newEngineWindow(WithSizeLimits(800, 600, 400, 300)).validate())
}

func TestWindowRoutesInput(t *testing.T) {
	w := newEngineWindow()
	state := input.NewState()
	w.BindInput(state)

	w.handleCursor(10, 20)
	x, y := state.Pointer()
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(20), y)

	w.handleButton(common.MouseButtonLeft, true, 30, 40)
	assert.True(t, state.ButtonHeld(common.MouseButtonLeft))
	x, y = state.Pointer()
	assert.Equal(t, float32(30), x)
	assert.Equal(t, float32(40), y)

	assert.True(t, w.handleKey(common.KeySpace, true))
	assert.True(t, state.KeyHeld(common.KeySpace))
	assert.True(t, w.handleKey(common.KeySpace, false))
	assert.False(t, state.KeyHeld(common.KeySpace))

	assert.False(t, w.handleKey(common.KeyEsc, true), "close key ends the loop")
	assert.False(t, state.KeyHeld(common.KeyEsc))
}

func TestWindowResizeAndScroll(t *testing.T) {
	w := newEngineWindow()
	var resized [2]int
	var scrolled float32
	w.SetResizeCallback(func(width, height int) { resized = [2]int{width, height} })
	w.SetScrollCallback(func(delta float32) { scrolled += delta })

	w.handleResize(800, 600)
	assert.Equal(t, [2]int{800, 600}, resized)

	w.handleResize(0, 0)
	width, height := w.Size()
	assert.Equal(t, 800, width, "minimising keeps the last size")
	assert.Equal(t, 600, height)

	w.handleScroll(1.5)
	w.handleScroll(-0.5)
	assert.Equal(t, float32(1), scrolled)

	assert.Nil(t, w.SurfaceDescriptor())
	assert.NoError(t, w.Close())
}
