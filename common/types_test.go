package common

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextureValidatesLength(t *testing.T) {
	_, err := NewTexture("bad", 2, 2, make([]byte, 15))
	require.Error(t, err)

	_, err = NewTexture("bad", 0, 2, nil)
	require.Error(t, err)
}

func TestNewTextureCopiesStorage(t *testing.T) {
	pix := make([]byte, 4)
	tex, err := NewTexture("a", 1, 1, pix)
	require.NoError(t, err)

	pix[0] = 200
	assert.Equal(t, uint8(0), tex.At(0, 0)[0])

	out := tex.Pixels()
	out[1] = 99
	assert.Equal(t, uint8(0), tex.At(0, 0)[1])
}

func TestRenamedDoesNotShareStorage(t *testing.T) {
	tex := NewSolidTexture("a", 2, 2, [4]uint8{1, 2, 3, 4})
	renamed := tex.Renamed("b")

	assert.Equal(t, "b", renamed.Name())
	assert.Equal(t, "a", tex.Name())
	assert.Equal(t, tex.Pixels(), renamed.Pixels())
	assert.NotSame(t, &tex.pix[0], &renamed.pix[0])
}

func TestSampleOrientation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	tex := NewTextureFromImage("t", img)

	top := tex.Sample(mgl32.Vec2{0.5, 0.75})
	bottom := tex.Sample(mgl32.Vec2{0.5, 0.25})

	assert.InDelta(t, 1.0, top.X(), 1e-5)
	assert.InDelta(t, 0.0, top.Z(), 1e-5)
	assert.InDelta(t, 1.0, bottom.Z(), 1e-5)
	assert.InDelta(t, 0.0, bottom.X(), 1e-5)
}

func TestSampleBilinearMidpoint(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	tex := NewTextureFromImage("t", img)

	mid := tex.Sample(mgl32.Vec2{0.5, 0.5})
	assert.InDelta(t, 0.5, mid.X(), 1e-5)
	assert.InDelta(t, 1.0, mid.W(), 1e-5)
}

func TestPackColorClamps(t *testing.T) {
	assert.Equal(t, [4]uint8{255, 0, 128, 255}, PackColor(mgl32.Vec4{2, -1, 0.5, 1}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestRayPointAt(t *testing.T) {
	r := Ray{Origin: mgl32.Vec3{1, 0, 0}, Direction: mgl32.Vec3{0, 0, 1}}
	assert.True(t, r.PointAt(2).ApproxEqual(mgl32.Vec3{1, 0, 2}))
}
