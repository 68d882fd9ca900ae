package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/core/domain"
)

func TestCreateCellNames(t *testing.T) {
	l := domain.NewLayout("chip")

	c, err := l.CreateCell("top")
	require.NoError(t, err)
	assert.Equal(t, "top", c.Name())
	assert.Same(t, c, l.Cell("top"))

	_, err = l.CreateCell("top")
	require.ErrorIs(t, err, domain.ErrCellNameTaken)

	anon, err := l.CreateCell("")
	require.NoError(t, err)
	assert.Equal(t, "Unnamed_1", anon.Name())
}

func TestDeleteFreesName(t *testing.T) {
	l := domain.NewLayout("chip")
	c, err := l.CreateCell("top")
	require.NoError(t, err)

	l.Delete(c)
	assert.True(t, c.Destroyed())
	assert.Nil(t, l.Cell("top"))
	assert.Empty(t, l.EachCell())

	// The name is free again.
	again, err := l.CreateCell("top")
	require.NoError(t, err)
	assert.NotSame(t, c, again)
}

func TestUniqueName(t *testing.T) {
	l := domain.NewLayout("chip")
	_, err := l.CreateCell("top")
	require.NoError(t, err)
	assert.Equal(t, "top$1", l.UniqueName("top"))
	assert.Equal(t, "free", l.UniqueName("free"))
}

func TestLayerRegistryCanonicalizes(t *testing.T) {
	l := domain.NewLayout("chip")

	a := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0})
	b := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0, Name: "WG"})
	assert.Equal(t, a, b)

	// The first named registration fixes the canonical name.
	info := l.LayerInfoAt(a)
	assert.Equal(t, "WG", info.Name)

	c := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0, Name: "other"})
	assert.Equal(t, a, c)
	assert.Equal(t, "WG", l.CanonicalLayer(domain.LayerInfo{Layer: 1, Datatype: 0, Name: "other"}).Name)
}

func TestLockedCellRejectsMutation(t *testing.T) {
	l := domain.NewLayout("chip")
	c, err := l.CreateCell("top")
	require.NoError(t, err)
	c.Lock()

	err = c.Insert(0, domain.BoxShape(domain.Box{Right: 1, Top: 1}))
	require.ErrorIs(t, err, domain.ErrLocked)
	_, err = c.CreatePort(domain.Port{Name: "o1", Trans: &domain.Trans{}})
	require.ErrorIs(t, err, domain.ErrLocked)
	err = c.SetName("other")
	require.ErrorIs(t, err, domain.ErrLocked)

	// The info side-channel stays writable.
	c.Info()["route_offset"] = 1.5
	assert.Equal(t, 1.5, c.Info()["route_offset"])
}

func TestDupCopiesAndUnlocks(t *testing.T) {
	l := domain.NewLayout("chip")
	wg := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0})

	c, err := l.CreateCell("top")
	require.NoError(t, err)
	require.NoError(t, c.Insert(wg, domain.BoxShape(domain.Box{Right: 100, Top: 50})))
	_, err = c.CreatePort(domain.Port{Name: "o1", Width: 50, Layer: wg, Trans: &domain.Trans{}})
	require.NoError(t, err)
	c.Lock()

	dup := c.Dup("top")
	assert.Equal(t, "top$1", dup.Name())
	assert.False(t, dup.Locked())
	assert.Equal(t, c.BBox(), dup.BBox())
	require.NotNil(t, dup.Port("o1"))
	assert.NotSame(t, c.Port("o1"), dup.Port("o1"))

	// Mutating the copy leaves the original alone.
	require.NoError(t, dup.Insert(wg, domain.BoxShape(domain.Box{Right: 200, Top: 50})))
	assert.Len(t, c.ShapesOn(wg), 1)
}

func TestCrossLayoutInstanceRejected(t *testing.T) {
	a := domain.NewLayout("a")
	b := domain.NewLayout("b")

	parent, err := a.CreateCell("parent")
	require.NoError(t, err)
	foreign, err := b.CreateCell("child")
	require.NoError(t, err)

	_, err = parent.AddInstance(foreign, domain.Trans{})
	require.ErrorIs(t, err, domain.ErrCrossLayout)
}

func TestFlattenInlinesChildGeometry(t *testing.T) {
	l := domain.NewLayout("chip")
	wg := l.LayerIndex(domain.LayerInfo{Layer: 1, Datatype: 0})

	child, err := l.CreateCell("child")
	require.NoError(t, err)
	require.NoError(t, child.Insert(wg, domain.BoxShape(domain.Box{Right: 100, Top: 100})))

	parent, err := l.CreateCell("parent")
	require.NoError(t, err)
	_, err = parent.AddInstance(child, domain.Trans{Disp: domain.Point{X: 1000, Y: 0}})
	require.NoError(t, err)

	before := parent.BBox()
	require.NoError(t, parent.Flatten())
	assert.Empty(t, parent.Instances())
	assert.Equal(t, before, parent.BBox())
	require.Len(t, parent.ShapesOn(wg), 1)
	assert.Equal(t, domain.Box{Left: 1000, Bottom: 0, Right: 1100, Top: 100}, *parent.ShapesOn(wg)[0].Box)

	// The child cell itself stays in the layout.
	assert.NotNil(t, l.Cell("child"))
}

func TestTransComposeMatchesSequentialApply(t *testing.T) {
	outer := domain.Trans{Rot: 1, Disp: domain.Point{X: 10, Y: 20}}
	inner := domain.Trans{Rot: 2, Mirror: true, Disp: domain.Point{X: -5, Y: 3}}
	p := domain.Point{X: 7, Y: -2}

	composed := outer.Compose(inner)
	assert.Equal(t, outer.Apply(inner.Apply(p)), composed.Apply(p))
}

func TestSwapFutureCellName(t *testing.T) {
	l := domain.NewLayout("chip")
	assert.Equal(t, "", l.FutureCellName())

	old := l.SwapFutureCellName("straight_W1000")
	assert.Equal(t, "", old)
	assert.Equal(t, "straight_W1000", l.FutureCellName())

	old = l.SwapFutureCellName(old)
	assert.Equal(t, "straight_W1000", old)
	assert.Equal(t, "", l.FutureCellName())
}

func TestAcquireBuildIsReentrantPerContext(t *testing.T) {
	l := domain.NewLayout("chip")

	ctx, release := l.AcquireBuild(context.Background())
	// A nested acquisition through the owning context must not deadlock.
	_, nestedRelease := l.AcquireBuild(ctx)
	nestedRelease()
	release()

	// A fresh context can take the lock afterwards.
	_, release2 := l.AcquireBuild(context.Background())
	release2()
}

func TestParseCheckInstances(t *testing.T) {
	p, err := domain.ParseCheckInstances("")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckRaise, p)

	p, err = domain.ParseCheckInstances("vinstances")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckVInstances, p)

	_, err = domain.ParseCheckInstances("explode")
	require.Error(t, err)
}
