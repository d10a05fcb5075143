package projector

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/go-gl/mathgl/mgl32"
)

// Params is the projector geometry. Angles are in degrees.
type Params struct {
	// Radius is the distance from the projector centre to its surface, along -forward.
	Radius float32 `yaml:"radius" toml:"radius"`
	// Width is the half-extent of the rectangle along up.
	Width float32 `yaml:"width" toml:"width"`
	// Rotation turns the projector around its up axis on every projection. The turn is kept.
	Rotation float32 `yaml:"rotation" toml:"rotation"`
	// RotationDifference is the angle between the lower and the upper edge.
	RotationDifference float32 `yaml:"rotation_difference" toml:"rotation_difference"`
	// Delta is how far outside the surface the corner rays start.
	Delta float32 `yaml:"delta" toml:"delta"`
	// MaxDistance bounds every corner ray.
	MaxDistance float32 `yaml:"max_distance" toml:"max_distance"`
}

// DefaultParams returns a unit projector with the standard ray offset and range.
func DefaultParams() Params {
	return Params{
		Radius:      1,
		Width:       1,
		Delta:       0.5,
		MaxDistance: 20,
	}
}

// Corner is one boundary point of the projector surface and the point Delta further out.
type Corner struct {
	Inner mgl32.Vec3
	Outer mgl32.Vec3
}

// Ray returns the ray cast for the corner: from the outer point toward the inner point.
func (c Corner) Ray() (origin, direction mgl32.Vec3) {
	return c.Outer, c.Inner.Sub(c.Outer)
}

// Frame holds the four corners of the projector rectangle.
type Frame struct {
	LowerLeft  Corner
	LowerRight Corner
	UpperLeft  Corner
	UpperRight Corner
}

// UVRect is the pair of rectangles sampled by the corner rays, each packed as (min.u, min.v, max.u, max.v).
// The rectangles are not normalised, so min may exceed max when the surface is mirrored.
type UVRect struct {
	Projector mgl32.Vec4
	Target    mgl32.Vec4
}

// ComputeFrame turns t by p.Rotation around its up axis and derives the corner points from the result.
// The upper corners are sampled with a further -p.RotationDifference turn that is not kept.
//
// Parameters:
//   - t: the projector transform
//   - p: the projector geometry
//
// Returns:
//   - Frame: the corner points
//   - game_object.Transform: t after the kept rotation, to be written back to the projector
func ComputeFrame(t game_object.Transform, p Params) (Frame, game_object.Transform) {
	rotated := t.RotateWorld(t.Up(), p.Rotation)
	up := rotated.Up().Mul(p.Width)

	lower, lowerOuter := surfacePoints(rotated, p)
	upper, upperOuter := surfacePoints(rotated.RotateWorld(rotated.Up(), -p.RotationDifference), p)

	f := Frame{
		LowerLeft:  Corner{Inner: lower.Sub(up), Outer: lowerOuter.Sub(up)},
		LowerRight: Corner{Inner: lower.Add(up), Outer: lowerOuter.Add(up)},
		UpperLeft:  Corner{Inner: upper.Sub(up), Outer: upperOuter.Sub(up)},
		UpperRight: Corner{Inner: upper.Add(up), Outer: upperOuter.Add(up)},
	}
	return f, rotated
}

func surfacePoints(t game_object.Transform, p Params) (mgl32.Vec3, mgl32.Vec3) {
	fwd := t.Forward()
	return t.Position.Sub(fwd.Mul(p.Radius)), t.Position.Sub(fwd.Mul(p.Radius + p.Delta))
}

// BuildUVRect casts the lower-left ray for the minimum corner and the upper-right ray for the maximum
// corner. Projector hits fill UVRect.Projector and every other hit fills UVRect.Target. When a ray
// reports several hits of the same role the last one wins. A corner with no hit of a role stays zero.
//
// Parameters:
//   - q: the surface query
//   - f: the projector frame
//   - maxDistance: the ray range
//
// Returns:
//   - UVRect: the sampled rectangles
func BuildUVRect(q surface.Query, f Frame, maxDistance float32) UVRect {
	var rect UVRect

	origin, dir := f.LowerLeft.Ray()
	for _, h := range q.Raycast(origin, dir, maxDistance) {
		if h.Role == surface.RoleProjector {
			rect.Projector[0], rect.Projector[1] = h.UV.X(), h.UV.Y()
		} else {
			rect.Target[0], rect.Target[1] = h.UV.X(), h.UV.Y()
		}
	}

	origin, dir = f.UpperRight.Ray()
	for _, h := range q.Raycast(origin, dir, maxDistance) {
		if h.Role == surface.RoleProjector {
			rect.Projector[2], rect.Projector[3] = h.UV.X(), h.UV.Y()
		} else {
			rect.Target[2], rect.Target[3] = h.UV.X(), h.UV.Y()
		}
	}
	return rect
}
