package physics

// Small value types carried in properties. Real vector math belongs to the
// embedding application; these only cover what the standard behaviors need.

import "math"

// Vec2 is a 2D vector.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2    { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float64 { return o.Sub(v).Len() }

// Vec3 is a 3D vector.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// XY drops the Z component.
func (v Vec3) XY() Vec2 { return Vec2{v.X, v.Y} }

// Rect is an axis-aligned rectangle given by its min and max corners.
type Rect struct{ Min, Max Vec2 }

// NewRect normalizes the corners so Min <= Max on both axes.
func NewRect(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Clamp moves p to the closest point inside r.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Max(r.Min.X, math.Min(r.Max.X, p.X)),
		Y: math.Max(r.Min.Y, math.Min(r.Max.Y, p.Y)),
	}
}

// Wrap maps p into r toroidally. Degenerate axes collapse to Min.
func (r Rect) Wrap(p Vec2) Vec2 {
	return Vec2{
		X: wrapAxis(p.X, r.Min.X, r.Width()),
		Y: wrapAxis(p.Y, r.Min.Y, r.Height()),
	}
}

func wrapAxis(v, lo, span float64) float64 {
	if span <= 0 {
		return lo
	}
	m := math.Mod(v-lo, span)
	if m < 0 {
		m += span
	}
	return lo + m
}
