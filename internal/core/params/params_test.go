package params

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/substrate/internal/core/systems/physics"
)

func TestData_Accessors(t *testing.T) {
	t.Run("KindIsFixed", func(t *testing.T) {
		tests := []struct {
			data Data
			kind Kind
		}{
			{None(), KindNone},
			{Bool(true), KindBool},
			{Int(3), KindInt},
			{Float(1.5), KindFloat},
			{Vec2(physics.Vec2{X: 1, Y: 2}), KindVec2},
			{Vec3(physics.Vec3{X: 1, Y: 2, Z: 3}), KindVec3},
			{RGBA(1, 2, 3, 4), KindColor},
			{String("x"), KindString},
			{Texture(9), KindTexture},
		}
		for _, tt := range tests {
			t.Run(tt.kind.String(), func(t *testing.T) {
				require.Equal(t, tt.kind, tt.data.Kind())
			})
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		v, err := Vec2(physics.Vec2{X: 1, Y: 2}).AsVec2()
		require.NoError(t, err)
		require.Equal(t, physics.Vec2{X: 1, Y: 2}, v)

		c, err := RGBA(10, 20, 30, 40).AsColor()
		require.NoError(t, err)
		require.Equal(t, Color{10, 20, 30, 40}, c)

		tex, err := Texture(77).AsTexture()
		require.NoError(t, err)
		require.Equal(t, TextureHandle(77), tex)

		b, err := Bool(true).AsBool()
		require.NoError(t, err)
		require.True(t, b)
	})

	t.Run("NoCoercion", func(t *testing.T) {
		_, err := Int(3).AsFloat()
		require.ErrorIs(t, err, ErrTypeMismatch)
		assert.Contains(t, err.Error(), "want float, have int")

		_, err = Float(3).AsInt()
		require.ErrorIs(t, err, ErrTypeMismatch)

		_, err = None().AsString()
		require.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestData_EqualCompare(t *testing.T) {
	require.True(t, Int(2).Equal(Int(2)))
	require.False(t, Int(2).Equal(Float(2)))
	require.True(t, None().Equal(Data{}))

	c, err := Int(1).Compare(Int(2))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = String("b").Compare(String("a"))
	require.NoError(t, err)
	require.Equal(t, 1, c)

	c, err = Bool(false).Compare(Bool(true))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	_, err = Int(1).Compare(Float(1))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Vec2(physics.Vec2{}).Compare(Vec2(physics.Vec2{}))
	require.ErrorIs(t, err, ErrNotOrdered)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		kind string
		raw  any
		want Data
		err  error
	}{
		{"int from yaml", "int", 5, Int(5), nil},
		{"int from json", "int", float64(5), Int(5), nil},
		{"fractional int", "int", 5.5, Data{}, ErrBadValue},
		{"int above int64", "int", 1e19, Data{}, ErrBadValue},
		{"int below int64", "int", -1e19, Data{}, ErrBadValue},
		{"int at int64 min", "int", float64(math.MinInt64), Int(math.MinInt64), nil},
		{"int overflow number", "int", json.Number("1e19"), Data{}, ErrBadValue},
		{"int exponent number", "int", json.Number("1e3"), Int(1000), nil},
		{"int from nan", "int", math.NaN(), Data{}, ErrBadValue},
		{"float infinity", "float", "+Inf", Float(math.Inf(1)), nil},
		{"float from text", "float", "1.5", Data{}, ErrBadValue},
		{"float from int", "float", 2, Float(2), nil},
		{"vec2", "vec2", []any{1, 2.5}, Vec2(physics.Vec2{X: 1, Y: 2.5}), nil},
		{"vec3 short", "vec3", []any{1, 2}, Data{}, ErrBadValue},
		{"rgb", "color", []any{255, 0, 0}, RGBA(255, 0, 0, 255), nil},
		{"hex", "rgba", "#00ff0080", RGBA(0, 255, 0, 128), nil},
		{"color range", "color", []any{300, 0, 0}, Data{}, ErrBadValue},
		{"string", "string", "hello", String("hello"), nil},
		{"bool", "bool", true, Bool(true), nil},
		{"texture", "texture", 12, Texture(12), nil},
		{"negative texture", "texture", -1, Data{}, ErrBadValue},
		{"none", "none", nil, None(), nil},
		{"unknown", "matrix", 1, Data{}, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.kind, tt.raw)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCodec(t *testing.T) {
	values := []Data{
		None(), Bool(true), Int(-4), Float(0.25),
		Vec2(physics.Vec2{X: 1, Y: 2}), Vec3(physics.Vec3{X: 1, Y: 2, Z: 3}),
		RGBA(1, 2, 3, 4), String("s"), Texture(3),
	}

	t.Run("JSON", func(t *testing.T) {
		raw, err := json.Marshal(Vec2(physics.Vec2{X: 1, Y: 2}))
		require.NoError(t, err)
		require.JSONEq(t, `{"kind":"vec2","value":[1,2]}`, string(raw))

		for _, v := range values {
			raw, err := json.Marshal(v)
			require.NoError(t, err)
			var back Data
			require.NoError(t, json.Unmarshal(raw, &back))
			require.True(t, v.Equal(back), "%s != %s", v, back)
		}
	})

	t.Run("JSONNonFinite", func(t *testing.T) {
		raw, err := json.Marshal(Bundle{
			"nan": Float(math.NaN()),
			"vel": Vec2(physics.Vec2{X: math.Inf(1), Y: math.Inf(-1)}),
		})
		require.NoError(t, err)
		require.JSONEq(t, `{
			"nan": {"kind":"float","value":"NaN"},
			"vel": {"kind":"vec2","value":["+Inf","-Inf"]}
		}`, string(raw))

		var back Bundle
		require.NoError(t, json.Unmarshal(raw, &back))
		f, err := back["nan"].AsFloat()
		require.NoError(t, err)
		require.True(t, math.IsNaN(f))
		require.True(t, Vec2(physics.Vec2{X: math.Inf(1), Y: math.Inf(-1)}).Equal(back["vel"]))
	})

	t.Run("Gob", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, gob.NewEncoder(&buf).Encode(values))
		var back []Data
		require.NoError(t, gob.NewDecoder(&buf).Decode(&back))
		require.Len(t, back, len(values))
		for i := range values {
			require.True(t, values[i].Equal(back[i]))
		}
	})

	t.Run("BinaryRejectsTruncated", func(t *testing.T) {
		raw, err := String("hello").MarshalBinary()
		require.NoError(t, err)
		var d Data
		require.ErrorIs(t, d.UnmarshalBinary(raw[:len(raw)-2]), ErrBadValue)
		require.ErrorIs(t, d.UnmarshalBinary(nil), ErrBadValue)
		require.ErrorIs(t, d.UnmarshalBinary([]byte{200}), ErrUnknownKind)
	})
}

func TestBundle_Clone(t *testing.T) {
	b := Bundle{"a": Int(1)}
	c := b.Clone()
	c["a"] = Int(2)
	require.True(t, b["a"].Equal(Int(1)))
	require.Nil(t, Bundle(nil).Clone())
}
