// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Texture is an immutable RGBA8 snapshot of pixel data tagged with a name.
// Row 0 is the top of the image, which is the v = 1 edge of UV space.
// Every constructor copies the pixel data it is handed so that two textures never share storage.
type Texture struct {
	name   string
	width  int
	height int
	pix    []byte
}

// NewTexture creates a texture from raw RGBA8 pixel data (4 bytes per pixel, row-major order).
//
// Parameters:
//   - name: the identifier of the texture
//   - width: the width in pixels
//   - height: the height in pixels
//   - pix: the pixel data, copied into the texture
//
// Returns:
//   - *Texture: the new texture
//   - error: error if the pixel data does not match the dimensions
func NewTexture(name string, width, height int, pix []byte) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture dimensions %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("texture %s expects %d bytes, got %d", name, width*height*4, len(pix))
	}
	data := make([]byte, len(pix))
	copy(data, pix)
	return &Texture{name: name, width: width, height: height, pix: data}, nil
}

// NewSolidTexture creates a texture filled with a single RGBA8 color.
func NewSolidTexture(name string, width, height int, c [4]uint8) *Texture {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], c[:])
	}
	return &Texture{name: name, width: width, height: height, pix: pix}
}

// NewTextureFromImage converts any image into an RGBA8 texture.
func NewTextureFromImage(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Texture{name: name, width: bounds.Dx(), height: bounds.Dy(), pix: rgba.Pix}
}

// LoadTexture decodes an image file from disk into a texture named after the path.
// Supports PNG, JPEG, BMP and TIFF.
//
// Parameters:
//   - path: the file path of the image
//
// Returns:
//   - *Texture: the decoded texture
//   - error: error if the file cannot be opened or decoded
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return NewTextureFromImage(path, img), nil
}

// Name returns the identifier of the texture.
func (t *Texture) Name() string { return t.name }

// Width returns the width of the texture in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height of the texture in pixels.
func (t *Texture) Height() int { return t.height }

// Pixels returns a copy of the RGBA8 pixel data.
func (t *Texture) Pixels() []byte {
	out := make([]byte, len(t.pix))
	copy(out, t.pix)
	return out
}

// Renamed returns a copy of the texture carrying a different name.
func (t *Texture) Renamed(name string) *Texture {
	out, _ := NewTexture(name, t.width, t.height, t.pix)
	return out
}

// At returns the RGBA8 value of the texel at pixel coordinates x, y (row 0 at the top).
// Coordinates outside the texture are clamped to the edge.
func (t *Texture) At(x, y int) [4]uint8 {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	return [4]uint8{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Sample returns the bilinearly filtered color at the UV coordinate with components in [0, 1].
// UVs outside [0, 1] are clamped to the edge, matching a clamp-to-edge sampler.
//
// Parameters:
//   - uv: the texture coordinate, v = 0 at the bottom row
//
// Returns:
//   - mgl32.Vec4: the filtered RGBA color in [0, 1]
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	fx := uv.X()*float32(t.width) - 0.5
	fy := (1-uv.Y())*float32(t.height) - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	c00 := t.texel(int(x0), int(y0))
	c10 := t.texel(int(x0)+1, int(y0))
	c01 := t.texel(int(x0), int(y0)+1)
	c11 := t.texel(int(x0)+1, int(y0)+1)

	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

func (t *Texture) texel(x, y int) mgl32.Vec4 {
	c := t.At(x, y)
	return mgl32.Vec4{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
}

// Image returns a copy of the texture as an *image.RGBA.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	copy(img.Pix, t.pix)
	return img
}

// Ray is a half-line in world space.
type Ray struct {
	// Origin is the start point of the ray.
	Origin mgl32.Vec3
	// Direction is the unit direction of the ray.
	Direction mgl32.Vec3
}

// PointAt returns the point at distance d along the ray.
func (r Ray) PointAt(d float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(d))
}

// PackColor converts a linear [0, 1] color into RGBA8, clamping each channel.
func PackColor(c mgl32.Vec4) [4]uint8 {
	var out [4]uint8
	for i := 0; i < 4; i++ {
		out[i] = uint8(mgl32.Clamp(c[i], 0, 1)*255 + 0.5)
	}
	return out
}
