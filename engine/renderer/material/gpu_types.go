package material

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
)

// GPUDrawParams is the GPU-aligned uniform shared by the paint and uv_project shaders.
// Matches the WGSL DrawParams struct layout exactly.
// Size: 96 bytes (six vec4<f32>, std140 aligned).
type GPUDrawParams struct {
	HitUV       [4]float32 // offset  0: _HitUV
	Coordinate  [4]float32 // offset 16: _Coordinate
	ProjectorUV [4]float32 // offset 32: _ProjectorUV
	TargetUV    [4]float32 // offset 48: _TargetUV
	BrushColor  [4]float32 // offset 64: _BrushColor
	Brush       [4]float32 // offset 80: radius, hardness, decal flag, unused
}

// NewGPUDrawParams packs a material parameter snapshot, substituting the shader defaults for unset channels.
// The decal flag is raised when _DecalTex is bound and, for the paint shader, _Coordinate has been set.
//
// Parameters:
//   - key: the shader the parameters are for
//   - u: the parameter snapshot
//
// Returns:
//   - GPUDrawParams: the packed uniform
func NewGPUDrawParams(key shader.Key, u shader.Uniforms) GPUDrawParams {
	radius := u.Vector(shader.UniformBrushRadius, shader.DefaultBrushRadius)

	decal := u.Texture(shader.UniformDecalTex) != nil
	if key == shader.KeyPaint {
		decal = decal && u.HasVector(shader.UniformCoordinate)
	}
	var flag float32
	if decal {
		flag = 1
	}

	return GPUDrawParams{
		HitUV:       u.Vector(shader.UniformHitUV, shader.DefaultHitUV),
		Coordinate:  u.Vector(shader.UniformCoordinate, [4]float32{}),
		ProjectorUV: u.Vector(shader.UniformProjectorUV, shader.DefaultRect),
		TargetUV:    u.Vector(shader.UniformTargetUV, shader.DefaultRect),
		BrushColor:  u.Vector(shader.UniformBrushColor, shader.DefaultBrushColor),
		Brush:       [4]float32{radius[0], radius[1], flag, 0},
	}
}

// Size returns the size of the GPUDrawParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUDrawParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDrawParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUDrawParams) Marshal() []byte {
	buf := make([]byte, 96)
	for i, v := range [][4]float32{g.HitUV, g.Coordinate, g.ProjectorUV, g.TargetUV, g.BrushColor, g.Brush} {
		for j := 0; j < 4; j++ {
			off := i*16 + j*4
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v[j]))
		}
	}
	return buf
}

// GPUObjectData is the per-object uniform of the display shader.
// Size: 64 bytes (one mat4x4<f32>, column-major).
type GPUObjectData struct {
	MVP [16]float32 // offset 0: model-view-projection matrix
}

// Size returns the size of the GPUObjectData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUObjectData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUObjectData) Marshal() []byte {
	buf := make([]byte, 64)
	for i, v := range g.MVP {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}
