package shader

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var white = mgl32.Vec4{1, 1, 1, 1}

func sample(tex *common.Texture, uv mgl32.Vec2) mgl32.Vec4 {
	if tex == nil {
		return white
	}
	return tex.Sample(uv)
}

func mix(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func smoothstep(e0, e1, x float32) float32 {
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Paint blends the brush over the accumulated texture within the brush radius of _HitUV.
// The brush colour is read from _DecalTex at _Coordinate when both are set, otherwise from _BrushColor.
func Paint(uv mgl32.Vec2, u Uniforms) mgl32.Vec4 {
	base := sample(u.Texture(UniformMainTex), uv)

	brush := u.Vector(UniformBrushColor, DefaultBrushColor)
	if decal := u.Texture(UniformDecalTex); decal != nil && u.HasVector(UniformCoordinate) {
		c := u.Vector(UniformCoordinate, mgl32.Vec4{})
		brush = decal.Sample(mgl32.Vec2{c.X(), c.Y()})
	}

	params := u.Vector(UniformBrushRadius, DefaultBrushRadius)
	radius := params.X()
	if radius <= 0 {
		return base
	}
	inner := math32.Min(radius*params.Y(), radius*0.999)
	hit := u.Vector(UniformHitUV, DefaultHitUV)
	d := uv.Sub(mgl32.Vec2{hit.X(), hit.Y()}).Len()
	falloff := 1 - smoothstep(inner, radius, d)

	return mix(base, brush, brush.W()*falloff)
}

// UVProject maps the texel from the _TargetUV rectangle into the _ProjectorUV rectangle and blends the
// _DecalTex sample found there over the accumulated texture. Texels outside the target rectangle are unchanged.
func UVProject(uv mgl32.Vec2, u Uniforms) mgl32.Vec4 {
	base := sample(u.Texture(UniformMainTex), uv)
	decal := u.Texture(UniformDecalTex)
	if decal == nil {
		return base
	}

	target := u.Vector(UniformTargetUV, DefaultRect)
	projector := u.Vector(UniformProjectorUV, DefaultRect)

	tx := (uv.X() - target[0]) / safeExtent(target[2]-target[0])
	ty := (uv.Y() - target[1]) / safeExtent(target[3]-target[1])
	if tx < 0 || tx > 1 || ty < 0 || ty > 1 {
		return base
	}
	p := mgl32.Vec2{
		projector[0] + (projector[2]-projector[0])*tx,
		projector[1] + (projector[3]-projector[1])*ty,
	}
	d := decal.Sample(p)
	over := mgl32.Vec4{d.X(), d.Y(), d.Z(), math32.Max(base.W(), d.W())}
	return mix(base, over, d.W())
}

// Display returns the _BaseMap sample.
func Display(uv mgl32.Vec2, u Uniforms) mgl32.Vec4 {
	return sample(u.Texture(UniformBaseMap), uv)
}

func safeExtent(e float32) float32 {
	if math32.Abs(e) >= 1e-6 {
		return e
	}
	if e < 0 {
		return -1e-6
	}
	return 1e-6
}
