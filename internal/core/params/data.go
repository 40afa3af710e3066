package params

import (
	"cmp"
	"fmt"

	"github.com/zeusync/substrate/internal/core/systems/physics"
)

// Color is an 8-bit RGBA color.
type Color struct{ R, G, B, A uint8 }

func (c Color) pack() int64 {
	return int64(c.R)<<24 | int64(c.G)<<16 | int64(c.B)<<8 | int64(c.A)
}

func unpackColor(v int64) Color {
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// TextureHandle is an opaque handle owned by the renderer.
type TextureHandle uint32

// Data is a tagged value. The kind is fixed at construction; the zero value is None.
type Data struct {
	kind Kind
	i    int64
	f    [3]float64
	s    string
}

func None() Data { return Data{} }

func Bool(v bool) Data {
	d := Data{kind: KindBool}
	if v {
		d.i = 1
	}
	return d
}

func Int(v int64) Data     { return Data{kind: KindInt, i: v} }
func Float(v float64) Data { return Data{kind: KindFloat, f: [3]float64{v}} }

func Vec2(v physics.Vec2) Data { return Data{kind: KindVec2, f: [3]float64{v.X, v.Y}} }
func Vec3(v physics.Vec3) Data { return Data{kind: KindVec3, f: [3]float64{v.X, v.Y, v.Z}} }

func RGBA(r, g, b, a uint8) Data { return Data{kind: KindColor, i: Color{r, g, b, a}.pack()} }
func ColorOf(c Color) Data       { return Data{kind: KindColor, i: c.pack()} }

func String(v string) Data         { return Data{kind: KindString, s: v} }
func Texture(h TextureHandle) Data { return Data{kind: KindTexture, i: int64(h)} }

func (d Data) Kind() Kind   { return d.kind }
func (d Data) IsNone() bool { return d.kind == KindNone }

func (d Data) mismatch(want Kind) error { return mismatch(want, d.kind) }

func mismatch(want, have Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrTypeMismatch, want, have)
}

func (d Data) AsBool() (bool, error) {
	if d.kind != KindBool {
		return false, d.mismatch(KindBool)
	}
	return d.i != 0, nil
}

func (d Data) AsInt() (int64, error) {
	if d.kind != KindInt {
		return 0, d.mismatch(KindInt)
	}
	return d.i, nil
}

func (d Data) AsFloat() (float64, error) {
	if d.kind != KindFloat {
		return 0, d.mismatch(KindFloat)
	}
	return d.f[0], nil
}

func (d Data) AsVec2() (physics.Vec2, error) {
	if d.kind != KindVec2 {
		return physics.Vec2{}, d.mismatch(KindVec2)
	}
	return physics.Vec2{X: d.f[0], Y: d.f[1]}, nil
}

func (d Data) AsVec3() (physics.Vec3, error) {
	if d.kind != KindVec3 {
		return physics.Vec3{}, d.mismatch(KindVec3)
	}
	return physics.Vec3{X: d.f[0], Y: d.f[1], Z: d.f[2]}, nil
}

func (d Data) AsColor() (Color, error) {
	if d.kind != KindColor {
		return Color{}, d.mismatch(KindColor)
	}
	return unpackColor(d.i), nil
}

func (d Data) AsString() (string, error) {
	if d.kind != KindString {
		return "", d.mismatch(KindString)
	}
	return d.s, nil
}

func (d Data) AsTexture() (TextureHandle, error) {
	if d.kind != KindTexture {
		return 0, d.mismatch(KindTexture)
	}
	return TextureHandle(d.i), nil
}

// Equal reports whether both values have the same kind and payload.
func (d Data) Equal(other Data) bool {
	return d == other
}

// Compare orders two values of the same kind. Only bool, int, float and string are ordered.
func (d Data) Compare(other Data) (int, error) {
	if d.kind != other.kind {
		return 0, mismatch(d.kind, other.kind)
	}
	switch d.kind {
	case KindBool, KindInt:
		return cmp.Compare(d.i, other.i), nil
	case KindFloat:
		return cmp.Compare(d.f[0], other.f[0]), nil
	case KindString:
		return cmp.Compare(d.s, other.s), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotOrdered, d.kind)
	}
}

// Value returns the payload as a plain Go value: nil, bool, int64, float64,
// []float64 for vectors and colors, string or uint32 for textures.
func (d Data) Value() any {
	switch d.kind {
	case KindBool:
		return d.i != 0
	case KindInt:
		return d.i
	case KindFloat:
		return d.f[0]
	case KindVec2:
		return []float64{d.f[0], d.f[1]}
	case KindVec3:
		return []float64{d.f[0], d.f[1], d.f[2]}
	case KindColor:
		c := unpackColor(d.i)
		return []float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	case KindString:
		return d.s
	case KindTexture:
		return uint32(d.i)
	default:
		return nil
	}
}

func (d Data) String() string {
	if d.kind == KindNone {
		return "none"
	}
	return fmt.Sprintf("%s(%v)", d.kind, d.Value())
}

// Bundle is a named parameter set handed to an output sink.
type Bundle map[string]Data

func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
