package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/core/domain"
)

func TestEncodeScalarsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   any
		out  any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"int64", int64(-7), int64(-7)},
		{"uint32", uint32(7), int64(7)},
		{"float", 2.5, 2.5},
		{"string", "wg", "wg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := domain.Encode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, v.Interface())
		})
	}
}

func TestEncodeSequencesAndMaps(t *testing.T) {
	v, err := domain.Encode([]any{1, "a", 2.5})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a", 2.5}, v.Interface())

	v, err = domain.Encode([]float64{0.5, 1.5})
	require.NoError(t, err)
	assert.Equal(t, []any{0.5, 1.5}, v.Interface())

	v, err = domain.Encode(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.MapKeys())
}

func TestEncodeMapOrderIndependence(t *testing.T) {
	a, err := domain.Encode(map[string]any{"x": 1, "y": []any{true, "s"}, "z": 0.25})
	require.NoError(t, err)
	b, err := domain.Encode(map[string]any{"z": 0.25, "y": []any{true, "s"}, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.True(t, a.Equal(b))
}

func TestEncodeLayerAndOpaque(t *testing.T) {
	v, err := domain.Encode(domain.LayerInfo{Layer: 1, Datatype: 0, Name: "WG"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindLayer, v.Kind())
	assert.Equal(t, "layer:1/0", v.Canonical())

	enc := &domain.Enclosure{Name: "WGSTD"}
	v, err = domain.Encode(enc)
	require.NoError(t, err)
	assert.Equal(t, domain.KindOpaque, v.Kind())
	assert.Equal(t, `opaque:"WGSTD"`, v.Canonical())
	assert.Same(t, enc, v.Interface())
}

func TestEncodeRejectsUnsupported(t *testing.T) {
	type weird struct{ X int }
	_, err := domain.Encode(weird{})
	require.ErrorIs(t, err, domain.ErrEncoding)
	assert.Contains(t, err.Error(), "weird")

	_, err = domain.Encode(uint64(math.MaxUint64))
	require.ErrorIs(t, err, domain.ErrEncoding)

	_, err = domain.Encode([]any{1, struct{}{}})
	require.ErrorIs(t, err, domain.ErrEncoding)
}

func TestCanonicalDistinguishesTypes(t *testing.T) {
	i, err := domain.Encode(1)
	require.NoError(t, err)
	f, err := domain.Encode(1.0)
	require.NoError(t, err)
	s, err := domain.Encode("1")
	require.NoError(t, err)
	assert.NotEqual(t, i.Canonical(), f.Canonical())
	assert.NotEqual(t, i.Canonical(), s.Canonical())
	assert.NotEqual(t, f.Canonical(), s.Canonical())
}

func TestParamSetCanonicalAndDigest(t *testing.T) {
	a, err := domain.NewParamSet(map[string]any{"width": 0.5, "length": 10.0})
	require.NoError(t, err)
	b, err := domain.NewParamSet(map[string]any{"length": 10.0, "width": 0.5})
	require.NoError(t, err)

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, a.Digest(), b.Digest())

	c, err := domain.NewParamSet(map[string]any{"length": 10.0, "width": 0.25})
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestParamSetWithout(t *testing.T) {
	ps, err := domain.NewParamSet(map[string]any{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)

	trimmed := ps.Without("b")
	_, ok := trimmed.Get("b")
	assert.False(t, ok)
	_, ok = trimmed.Get("a")
	assert.True(t, ok)
	// The original set is untouched.
	_, ok = ps.Get("b")
	assert.True(t, ok)
}

func TestCacheKeyEquality(t *testing.T) {
	a, err := domain.NewParamSet(map[string]any{"width": 0.5})
	require.NoError(t, err)
	b, err := domain.NewParamSet(map[string]any{"width": 0.5})
	require.NoError(t, err)

	k1 := domain.NewCacheKey("straight", a)
	k2 := domain.NewCacheKey("straight", b)
	assert.Equal(t, k1, k2)
	assert.Equal(t, k1.Digest(), k2.Digest())

	k3 := domain.NewCacheKey("bend", a)
	assert.NotEqual(t, k1, k3)
}
