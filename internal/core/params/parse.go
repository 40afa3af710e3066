package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zeusync/substrate/internal/core/systems/physics"
)

// Parse builds a value of the named kind from a decoded YAML or JSON value.
// Vectors are lists of numbers, colors are [r,g,b] / [r,g,b,a] lists or "#rrggbb[aa]".
func Parse(kind string, raw any) (Data, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Data{}, err
	}
	return ParseAs(k, raw)
}

func ParseAs(k Kind, raw any) (Data, error) {
	switch k {
	case KindNone:
		if raw != nil {
			return Data{}, badValue(k, raw)
		}
		return None(), nil
	case KindBool:
		v, ok := raw.(bool)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return Bool(v), nil
	case KindInt:
		v, ok := toInt(raw)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return Int(v), nil
	case KindFloat:
		v, ok := toFloat(raw)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return Float(v), nil
	case KindVec2:
		v, ok := toFloats(raw, 2)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return Vec2(physics.Vec2{X: v[0], Y: v[1]}), nil
	case KindVec3:
		v, ok := toFloats(raw, 3)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return Vec3(physics.Vec3{X: v[0], Y: v[1], Z: v[2]}), nil
	case KindColor:
		c, ok := toColor(raw)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return ColorOf(c), nil
	case KindString:
		v, ok := raw.(string)
		if !ok {
			return Data{}, badValue(k, raw)
		}
		return String(v), nil
	case KindTexture:
		v, ok := toInt(raw)
		if !ok || v < 0 || v > math.MaxUint32 {
			return Data{}, badValue(k, raw)
		}
		return Texture(TextureHandle(v)), nil
	default:
		return Data{}, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
}

func badValue(k Kind, raw any) error {
	return fmt.Errorf("%w: %s from %T(%v)", ErrBadValue, k, raw, raw)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return nonFinite(v)
	default:
		i, ok := toInt(raw)
		return float64(i), ok
	}
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		// JSON decodes every number as float64; accept only integral values
		// that fit in an int64.
		if v != math.Trunc(v) || v < -(1<<63) || v >= 1<<63 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		// 1e3 and 2.0 are integral too
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	default:
		return 0, false
	}
}

// nonFinite reads the spellings MarshalJSON uses for NaN and the infinities.
func nonFinite(s string) (float64, bool) {
	switch s {
	case "NaN":
		return math.NaN(), true
	case "+Inf", "Inf":
		return math.Inf(1), true
	case "-Inf":
		return math.Inf(-1), true
	}
	return 0, false
}

func toFloats(raw any, n int) ([]float64, bool) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []float64:
		if len(v) != n {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
	if len(items) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, it := range items {
		f, ok := toFloat(it)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func toColor(raw any) (Color, bool) {
	if s, ok := raw.(string); ok {
		return parseHexColor(s)
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []float64:
		for _, f := range v {
			items = append(items, f)
		}
	default:
		return Color{}, false
	}
	if len(items) != 3 && len(items) != 4 {
		return Color{}, false
	}
	ch := [4]uint8{0, 0, 0, 255}
	for i, it := range items {
		c, ok := toInt(it)
		if !ok || c < 0 || c > 255 {
			return Color{}, false
		}
		ch[i] = uint8(c)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

func parseHexColor(s string) (Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return unpackColor(int64(v)), true
}
