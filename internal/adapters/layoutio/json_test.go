package layoutio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/adapters/layoutio"
	"go.trai.ch/pcell/internal/core/domain"
)

func buildSampleLayout(t *testing.T) *domain.Layout {
	t.Helper()
	l := domain.NewLayout("chip")
	wg := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0, Name: "WG"})

	child, err := l.CreateCell("bend")
	require.NoError(t, err)
	require.NoError(t, child.Insert(wg, domain.BoxShape(domain.Box{Left: 0, Bottom: 0, Right: 500, Top: 500})))
	child.Lock()

	top, err := l.CreateCell("top")
	require.NoError(t, err)
	require.NoError(t, top.Insert(wg, domain.BoxShape(domain.Box{Left: 0, Bottom: -250, Right: 1000, Top: 250})))
	_, err = top.CreatePort(domain.Port{
		Name:  "o1",
		Width: 500,
		Layer: wg,
		Trans: &domain.Trans{Rot: 2, Disp: domain.Point{X: 0, Y: 0}},
	})
	require.NoError(t, err)
	_, err = top.AddInstance(child, domain.Trans{Rot: 1, Disp: domain.Point{X: 1000, Y: 0}})
	require.NoError(t, err)
	_, err = top.CreateVInstance(child, domain.DCplxTrans{Mag: 1, Rot: 30, Disp: domain.DPoint{X: 2.5, Y: 0}})
	require.NoError(t, err)

	settings, err := domain.NewParamSet(map[string]any{"width": 0.5, "length": 1.0})
	require.NoError(t, err)
	require.NoError(t, top.SetSettings(settings, map[string]string{"width": "um"}))
	require.NoError(t, top.SetProvenance("straight", ""))
	top.Info()["route_offset"] = 42.0
	top.Lock()
	return l
}

func TestWriteReadRoundTrip(t *testing.T) {
	src := buildSampleLayout(t)
	path := filepath.Join(t.TempDir(), "out", "layout.json")
	codec := layoutio.NewCodec()

	require.NoError(t, codec.Write(src, path))

	dst := domain.NewLayout("chip")
	require.NoError(t, codec.ReadInto(dst, path))

	top := dst.Cell("top")
	require.NotNil(t, top)
	assert.True(t, top.Locked())
	assert.Equal(t, "straight", top.FunctionName())
	assert.Equal(t, 42.0, top.Info()["route_offset"])
	assert.Equal(t, map[string]string{"width": "um"}, top.SettingsUnits())

	v, ok := top.Settings().Get("width")
	require.True(t, ok)
	assert.Equal(t, 0.5, v.Interface())

	require.NotNil(t, top.Port("o1"))
	assert.Equal(t, int64(500), top.Port("o1").Width)

	require.Len(t, top.Instances(), 1)
	assert.Equal(t, "bend", top.Instances()[0].Cell().Name())
	assert.Equal(t, domain.Trans{Rot: 1, Disp: domain.Point{X: 1000, Y: 0}}, top.Instances()[0].Trans())
	require.Len(t, top.VInstances(), 1)

	assert.Equal(t, src.Cell("top").BBox(), top.BBox())
}

func TestReadIntoRemapsLayers(t *testing.T) {
	src := buildSampleLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	codec := layoutio.NewCodec()
	require.NoError(t, codec.Write(src, path))

	// The target layout already registered other layers, so WG gets a
	// different index there.
	dst := domain.NewLayout("chip")
	dst.LayerIndex(domain.LayerInfo{Layer: 99, Datatype: 0})
	dst.LayerIndex(domain.LayerInfo{Layer: 98, Datatype: 0})
	require.NoError(t, codec.ReadInto(dst, path))

	wg := dst.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0})
	top := dst.Cell("top")
	require.NotNil(t, top)
	assert.NotEmpty(t, top.ShapesOn(wg))
	assert.Equal(t, wg, top.Port("o1").Layer)
}

func TestReadIntoKeepsExistingCells(t *testing.T) {
	src := buildSampleLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	codec := layoutio.NewCodec()
	require.NoError(t, codec.Write(src, path))

	dst := domain.NewLayout("chip")
	existing, err := dst.CreateCell("bend")
	require.NoError(t, err)
	existing.Lock()

	require.NoError(t, codec.ReadInto(dst, path))

	// The pre-existing cell is untouched; the merged top references it.
	assert.Same(t, existing, dst.Cell("bend"))
	assert.Empty(t, existing.Layers())
	require.NotNil(t, dst.Cell("top"))
	assert.Same(t, existing, dst.Cell("top").Instances()[0].Cell())
}

func TestReadIntoRejectsGridMismatch(t *testing.T) {
	src := buildSampleLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	codec := layoutio.NewCodec()
	require.NoError(t, codec.Write(src, path))

	dst := domain.NewLayout("chip", domain.WithDBU(0.005))
	err := codec.ReadInto(dst, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid mismatch")
}
