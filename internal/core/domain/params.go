package domain

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NamedValue is one canonicalized parameter.
type NamedValue struct {
	Name  string
	Value Value
}

// ParamSet is an ordered set of canonicalized parameters, sorted by name.
// Two calls with equal logical parameters always produce equal ParamSets no
// matter how their arguments were constructed.
type ParamSet []NamedValue

// NewParamSet canonicalizes a parameter map. Values must already be
// encodable (see Encode); nil entries are kept as KindNil values.
func NewParamSet(params map[string]any) (ParamSet, error) {
	ps := make(ParamSet, 0, len(params))
	for name, raw := range params {
		v, err := Encode(raw)
		if err != nil {
			return nil, err
		}
		ps = append(ps, NamedValue{Name: name, Value: v})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return ps, nil
}

// Get returns the value stored under a name.
func (ps ParamSet) Get(name string) (Value, bool) {
	i := sort.Search(len(ps), func(i int) bool { return ps[i].Name >= name })
	if i < len(ps) && ps[i].Name == name {
		return ps[i].Value, true
	}
	return Value{}, false
}

// Without returns a copy of the set with the given parameters removed.
func (ps ParamSet) Without(names ...string) ParamSet {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(ParamSet, 0, len(ps))
	for _, p := range ps {
		if !drop[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// Interface decodes the set back into a plain parameter map.
func (ps ParamSet) Interface() map[string]any {
	out := make(map[string]any, len(ps))
	for _, p := range ps {
		out[p.Name] = p.Value.Interface()
	}
	return out
}

// Canonical returns the deterministic serialization of the whole set.
func (ps ParamSet) Canonical() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range ps {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		p.Value.appendCanonical(&sb)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Digest returns a 64 bit hash of the canonical serialization.
func (ps ParamSet) Digest() uint64 {
	return xxhash.Sum64String(ps.Canonical())
}

// CacheKey identifies one (builder, parameter set) combination. Equal
// canonical parameter sets for the same builder always compare equal, so
// the key is safe to use as a map key.
type CacheKey struct {
	Func   string
	Params string
}

// NewCacheKey derives the cache key for a builder invocation.
func NewCacheKey(funcName string, ps ParamSet) CacheKey {
	return CacheKey{Func: funcName, Params: ps.Canonical()}
}

// Digest returns a 64 bit hash of the key.
func (k CacheKey) Digest() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(k.Func)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(k.Params)
	return h.Sum64()
}
