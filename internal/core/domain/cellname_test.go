package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/core/domain"
)

func mustParamSet(t *testing.T, params map[string]any) domain.ParamSet {
	t.Helper()
	ps, err := domain.NewParamSet(params)
	require.NoError(t, err)
	return ps
}

func TestSynthesizeNameDeclaredOrder(t *testing.T) {
	ps := mustParamSet(t, map[string]any{
		"width":     1000,
		"length":    10000,
		"layer":     domain.LayerInfo{Layer: 1, Datatype: 0, Name: "WG"},
		"enclosure": &domain.Enclosure{Name: "WGSTD"},
	})
	name, err := domain.SynthesizeName("straight", ps,
		[]string{"width", "length", "layer", "enclosure"}, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "straight_W1000_L10000_LWG_EWGSTD", name)
}

func TestSynthesizeNameExtrasSortedAfterDeclared(t *testing.T) {
	ps := mustParamSet(t, map[string]any{"width": 1, "zeta": 2, "alpha": 3})
	name, err := domain.SynthesizeName("c", ps, []string{"width"}, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "c_W1_A3_Z2", name)
}

func TestSynthesizeNameFloats(t *testing.T) {
	cfg := domain.DefaultNameConfig()

	ps := mustParamSet(t, map[string]any{"width": 0.5})
	name, err := domain.SynthesizeName("c", ps, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "c_W0p5", name)

	ps = mustParamSet(t, map[string]any{"offset": -1.5})
	name, err = domain.SynthesizeName("c", ps, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "c_Om1p5", name)
}

func TestSynthesizeNameSubResolutionCollapses(t *testing.T) {
	cfg := domain.DefaultNameConfig()

	a, err := domain.SynthesizeName("c", mustParamSet(t, map[string]any{"width": 1.0}), nil, cfg)
	require.NoError(t, err)
	b, err := domain.SynthesizeName("c", mustParamSet(t, map[string]any{"width": 1.0004}), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := domain.SynthesizeName("c", mustParamSet(t, map[string]any{"width": 1.002}), nil, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSynthesizeNameNegativeZeroCollapses(t *testing.T) {
	cfg := domain.DefaultNameConfig()

	pos, err := domain.SynthesizeName("c", mustParamSet(t, map[string]any{"offset": 0.0004}), nil, cfg)
	require.NoError(t, err)
	neg, err := domain.SynthesizeName("c", mustParamSet(t, map[string]any{"offset": -0.0004}), nil, cfg)
	require.NoError(t, err)

	// Both snap to zero; the sign of the unsnapped input must not leak
	// into the token.
	assert.Equal(t, "c_O0", pos)
	assert.Equal(t, pos, neg)
}

func TestSynthesizeNameUnnamedLayer(t *testing.T) {
	ps := mustParamSet(t, map[string]any{"layer": domain.LayerInfo{Layer: 2, Datatype: 1}})
	name, err := domain.SynthesizeName("c", ps, nil, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "c_L2_1", name)
}

func TestSynthesizeNameSanitizesStrings(t *testing.T) {
	ps := mustParamSet(t, map[string]any{"tag": "a-b c"})
	name, err := domain.SynthesizeName("c", ps, nil, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "c_Ta_b_c", name)
}

func TestSynthesizeNameSequencesAndMaps(t *testing.T) {
	ps := mustParamSet(t, map[string]any{"taps": []int{1, 2}})
	name, err := domain.SynthesizeName("c", ps, nil, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "c_T[1,2]", name)

	ps = mustParamSet(t, map[string]any{"opts": map[string]any{"b": 2, "a": 1}})
	name, err = domain.SynthesizeName("c", ps, nil, domain.DefaultNameConfig())
	require.NoError(t, err)
	assert.Equal(t, "c_O{a=1,b=2}", name)
}

func TestSynthesizeNameTooLong(t *testing.T) {
	ps := mustParamSet(t, map[string]any{"width": 1})
	cfg := domain.NameConfig{MaxLength: 4, Resolution: 0.001}
	_, err := domain.SynthesizeName("straight", ps, nil, cfg)
	require.ErrorIs(t, err, domain.ErrNameSynthesis)
}
