package params

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

type jsonData struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON writes {"kind": ..., "value": ...}. NaN and the infinities,
// which JSON numbers cannot hold, are written as "NaN", "+Inf" and "-Inf".
func (d Data) MarshalJSON() ([]byte, error) {
	out := jsonData{Kind: d.kind.String()}
	if d.kind != KindNone {
		raw, err := json.Marshal(d.jsonValue())
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (d Data) jsonValue() any {
	switch v := d.Value().(type) {
	case float64:
		return jsonFloat(v)
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = jsonFloat(f)
		}
		return out
	default:
		return v
	}
}

func jsonFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var in jsonData
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var raw any
	if len(in.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(in.Value))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %v", ErrBadValue, err)
		}
	}
	v, err := Parse(in.Kind, raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// AppendBinary appends a compact, deterministic encoding of d. The store
// digest hashes this form, and gob snapshots use it through MarshalBinary.
func (d Data) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, byte(d.kind))
	b = binary.AppendVarint(b, d.i)
	for _, f := range d.f {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	b = binary.AppendUvarint(b, uint64(len(d.s)))
	return append(b, d.s...), nil
}

func (d Data) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(nil)
}

func (d *Data) UnmarshalBinary(b []byte) error {
	if len(b) < 1 {
		return fmt.Errorf("%w: empty encoding", ErrBadValue)
	}
	out := Data{kind: Kind(b[0])}
	if out.kind > KindTexture {
		return fmt.Errorf("%w: %d", ErrUnknownKind, b[0])
	}
	b = b[1:]
	i, n := binary.Varint(b)
	if n <= 0 {
		return fmt.Errorf("%w: bad integer payload", ErrBadValue)
	}
	out.i, b = i, b[n:]
	for k := range out.f {
		if len(b) < 8 {
			return fmt.Errorf("%w: short float payload", ErrBadValue)
		}
		out.f[k] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		b = b[8:]
	}
	l, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n) != l {
		return fmt.Errorf("%w: bad string payload", ErrBadValue)
	}
	out.s = string(b[n:])
	*d = out
	return nil
}
