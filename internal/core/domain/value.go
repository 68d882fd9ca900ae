package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Kind discriminates the variants of a canonical Value.
type Kind uint8

const (
	// KindNil is the zero Value.
	KindNil Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindInt holds a signed integer.
	KindInt
	// KindFloat holds a 64 bit float.
	KindFloat
	// KindString holds a string.
	KindString
	// KindSeq holds an ordered sequence of values.
	KindSeq
	// KindMap holds a mapping with keys in sorted order.
	KindMap
	// KindLayer holds a canonical layer descriptor.
	KindLayer
	// KindOpaque holds a registered engine value identified by a stable id.
	KindOpaque
)

// Opaque is implemented by engine-specific values that participate in
// parameter hashing and naming through a stable canonical identifier. Two
// opaque values with equal identifiers are treated as the same value.
type Opaque interface {
	OpaqueID() string
}

// Value is the canonical, order-stable representation of a parameter value.
// Mappings are stored with sorted keys so that construction order never
// influences equality, hashing or naming. Sequences keep their order.
//
// The zero Value is KindNil.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	seq   []Value
	keys  []string
	vals  []Value
	layer LayerInfo
	op    Opaque
}

// Encode converts an arbitrary parameter value into its canonical Value.
// Supported inputs are nil, booleans, integers, floats, strings, sequences
// ([]any and common typed slices), map[string]any, LayerInfo and Opaque
// implementations. Anything else fails with ErrEncoding naming the type.
func Encode(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Value{kind: KindBool, b: x}, nil
	case int:
		return Value{kind: KindInt, i: int64(x)}, nil
	case int8:
		return Value{kind: KindInt, i: int64(x)}, nil
	case int16:
		return Value{kind: KindInt, i: int64(x)}, nil
	case int32:
		return Value{kind: KindInt, i: int64(x)}, nil
	case int64:
		return Value{kind: KindInt, i: x}, nil
	case uint:
		return encodeUint(uint64(x))
	case uint8:
		return Value{kind: KindInt, i: int64(x)}, nil
	case uint16:
		return Value{kind: KindInt, i: int64(x)}, nil
	case uint32:
		return Value{kind: KindInt, i: int64(x)}, nil
	case uint64:
		return encodeUint(x)
	case float32:
		return Value{kind: KindFloat, f: float64(x)}, nil
	case float64:
		return Value{kind: KindFloat, f: x}, nil
	case string:
		return Value{kind: KindString, s: x}, nil
	case LayerInfo:
		return Value{kind: KindLayer, layer: x}, nil
	case Opaque:
		return Value{kind: KindOpaque, op: x}, nil
	case []any:
		return encodeSeq(x)
	case []string:
		seq := make([]any, len(x))
		for i, e := range x {
			seq[i] = e
		}
		return encodeSeq(seq)
	case []int:
		seq := make([]any, len(x))
		for i, e := range x {
			seq[i] = e
		}
		return encodeSeq(seq)
	case []float64:
		seq := make([]any, len(x))
		for i, e := range x {
			seq[i] = e
		}
		return encodeSeq(seq)
	case map[string]any:
		return encodeMap(x)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = e
		}
		return encodeMap(m)
	default:
		return Value{}, zerr.Wrap(ErrEncoding, fmt.Sprintf("unsupported type %T", v))
	}
}

func encodeUint(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		return Value{}, zerr.Wrap(ErrEncoding, "uint64 value overflows int64")
	}
	return Value{kind: KindInt, i: int64(x)}, nil
}

func encodeSeq(elems []any) (Value, error) {
	seq := make([]Value, len(elems))
	for i, e := range elems {
		ev, err := Encode(e)
		if err != nil {
			return Value{}, zerr.With(err, "index", i)
		}
		seq[i] = ev
	}
	return Value{kind: KindSeq, seq: seq}, nil
}

func encodeMap(m map[string]any) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make([]Value, len(keys))
	for i, k := range keys {
		ev, err := Encode(m[k])
		if err != nil {
			return Value{}, zerr.With(err, "key", k)
		}
		vals[i] = ev
	}
	return Value{kind: KindMap, keys: keys, vals: vals}, nil
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Layer returns the layer payload.
func (v Value) Layer() LayerInfo { return v.layer }

// Opaque returns the registered opaque payload.
func (v Value) Opaque() Opaque { return v.op }

// Seq returns the sequence elements.
func (v Value) Seq() []Value { return v.seq }

// MapKeys returns the mapping keys in canonical (sorted) order.
func (v Value) MapKeys() []string { return v.keys }

// MapValue returns the value stored under a key.
func (v Value) MapValue(key string) (Value, bool) {
	i := sort.SearchStrings(v.keys, key)
	if i < len(v.keys) && v.keys[i] == key {
		return v.vals[i], true
	}
	return Value{}, false
}

// Interface decodes the value back into the ordinary Go representation it
// was encoded from. Encode and Interface round-trip losslessly: mappings
// come back as map[string]any, sequences as []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindLayer:
		return v.layer
	case KindOpaque:
		return v.op
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.keys))
		for i, k := range v.keys {
			out[k] = v.vals[i].Interface()
		}
		return out
	}
	return nil
}

// Canonical returns a deterministic serialization of the value. Equal
// logical values always produce equal strings, so the serialization doubles
// as the structural equality and hashing contract.
func (v Value) Canonical() string {
	var sb strings.Builder
	v.appendCanonical(&sb)
	return sb.String()
}

func (v Value) appendCanonical(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		sb.WriteString("bool:")
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString("int:")
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString("float:")
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString("str:")
		sb.WriteString(strconv.Quote(v.s))
	case KindLayer:
		sb.WriteString("layer:")
		sb.WriteString(strconv.Itoa(v.layer.Layer))
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(v.layer.Datatype))
	case KindOpaque:
		sb.WriteString("opaque:")
		sb.WriteString(strconv.Quote(v.op.OpaqueID()))
	case KindSeq:
		sb.WriteByte('[')
		for i, e := range v.seq {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.appendCanonical(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte('=')
			v.vals[i].appendCanonical(sb)
		}
		sb.WriteByte('}')
	}
}

// Equal reports structural equality of two values.
func (v Value) Equal(o Value) bool {
	return v.Canonical() == o.Canonical()
}
