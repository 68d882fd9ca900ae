package domain

import (
	"context"
	"strconv"
	"sync"

	"go.trai.ch/zerr"
)

// CheckInstances selects what the factory does with off-grid instances in a
// freshly built cell.
type CheckInstances string

const (
	// CheckRaise fails the build, listing every offending instance.
	CheckRaise CheckInstances = "raise"
	// CheckFlatten recursively inlines the cell so no off-grid reference
	// remains.
	CheckFlatten CheckInstances = "flatten"
	// CheckVInstances converts offending references into virtual instances
	// which tolerate arbitrary placement.
	CheckVInstances CheckInstances = "vinstances"
	// CheckIgnore leaves off-grid instances alone.
	CheckIgnore CheckInstances = "ignore"
)

// ParseCheckInstances converts a configuration string into a policy.
func ParseCheckInstances(s string) (CheckInstances, error) {
	switch CheckInstances(s) {
	case CheckRaise, CheckFlatten, CheckVInstances, CheckIgnore:
		return CheckInstances(s), nil
	case "":
		return CheckRaise, nil
	}
	return "", zerr.With(zerr.New("unknown check_instances policy"), "policy", s)
}

// Layout is a namespace of cells sharing one database grid. Cell names are
// unique among live cells; deleting a cell marks it destroyed and frees its
// name. All builds into a layout are serialized by the layout-wide build
// lock (see AcquireBuild).
type Layout struct {
	name string
	dbu  float64 // micrometers per database unit

	mu      sync.Mutex // build lock
	cells   []*Cell
	byName  map[string]*Cell
	layers  []LayerInfo
	markers map[int]int // layer index -> port marker layer index

	futureCellName string
	unnamedSeq     int
}

// LayoutOption configures a new layout.
type LayoutOption func(*Layout)

// WithDBU sets the grid resolution in micrometers per database unit.
func WithDBU(dbu float64) LayoutOption {
	return func(l *Layout) { l.dbu = dbu }
}

// NewLayout creates an empty layout. The default grid is 0.001 um (1 nm).
func NewLayout(name string, opts ...LayoutOption) *Layout {
	l := &Layout{
		name:    name,
		dbu:     0.001,
		byName:  make(map[string]*Cell),
		markers: make(map[int]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// DBU returns the grid resolution in micrometers per database unit.
func (l *Layout) DBU() float64 { return l.dbu }

// ToUm converts database units to micrometers.
func (l *Layout) ToUm(v int64) float64 { return float64(v) * l.dbu }

// ToDbu converts micrometers to database units, rounding to the grid.
func (l *Layout) ToDbu(um float64) int64 { return snap(um, l.dbu) }

// ToUmPoint converts a grid point to micrometers.
func (l *Layout) ToUmPoint(p Point) DPoint {
	return DPoint{X: l.ToUm(p.X), Y: l.ToUm(p.Y)}
}

// ToDbuPoint snaps a micrometer point onto the grid.
func (l *Layout) ToDbuPoint(p DPoint) Point {
	return Point{X: l.ToDbu(p.X), Y: l.ToDbu(p.Y)}
}

func (l *Layout) newCell(name string) *Cell {
	c := &Cell{
		layout: l,
		name:   name,
		shapes: make(map[int][]Shape),
		info:   make(map[string]any),
	}
	l.cells = append(l.cells, c)
	if name != "" {
		l.byName[name] = c
	}
	return c
}

// CreateCell creates a new empty, unlocked cell. An empty name allocates an
// anonymous placeholder name; a taken name fails with ErrCellNameTaken.
func (l *Layout) CreateCell(name string) (*Cell, error) {
	if name == "" {
		l.unnamedSeq++
		name = "Unnamed_" + strconv.Itoa(l.unnamedSeq)
	}
	if _, exists := l.byName[name]; exists {
		return nil, zerr.With(zerr.Wrap(ErrCellNameTaken, "cannot create cell"), "cell", name)
	}
	return l.newCell(name), nil
}

// Cell returns the live cell with the given name, or nil.
func (l *Layout) Cell(name string) *Cell {
	return l.byName[name]
}

// Cells returns every live cell carrying the given name. The registry keeps
// names unique, so this yields at most one cell, but callers treat it as an
// iteration to stay robust against merged-in layouts.
func (l *Layout) Cells(name string) []*Cell {
	var out []*Cell
	for _, c := range l.cells {
		if !c.destroyed && c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// EachCell returns all live cells in creation order.
func (l *Layout) EachCell() []*Cell {
	out := make([]*Cell, 0, len(l.cells))
	for _, c := range l.cells {
		if !c.destroyed {
			out = append(out, c)
		}
	}
	return out
}

// Delete removes a cell from the layout. The cell is marked destroyed and
// its name becomes available again; existing handles stay valid but the
// cell is no longer a valid cache hit.
func (l *Layout) Delete(c *Cell) {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true
	if cur, ok := l.byName[c.name]; ok && cur == c {
		delete(l.byName, c.name)
	}
	for i, cur := range l.cells {
		if cur == c {
			l.cells = append(l.cells[:i], l.cells[i+1:]...)
			break
		}
	}
}

func (l *Layout) rename(c *Cell, name string) error {
	if c.name == name {
		return nil
	}
	if other, ok := l.byName[name]; ok && other != c {
		return zerr.With(zerr.Wrap(ErrCellNameTaken, "cannot rename cell"), "cell", name)
	}
	if cur, ok := l.byName[c.name]; ok && cur == c {
		delete(l.byName, c.name)
	}
	c.name = name
	l.byName[name] = c
	return nil
}

// uniqueName returns name if free, otherwise name$1, name$2, ...
func (l *Layout) uniqueName(name string) string {
	if _, taken := l.byName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "$" + strconv.Itoa(i)
		if _, taken := l.byName[candidate]; !taken {
			return candidate
		}
	}
}

// UniqueName returns a free cell name derived from the given one.
func (l *Layout) UniqueName(name string) string { return l.uniqueName(name) }

// LayerIndex registers a layer descriptor and returns its canonical index.
// Descriptors addressing the same (layer, datatype) pair share one index;
// the first named registration fixes the canonical name.
func (l *Layout) LayerIndex(info LayerInfo) int {
	for i, cur := range l.layers {
		if cur.Same(info) {
			if cur.Name == "" && info.Name != "" {
				l.layers[i].Name = info.Name
			}
			return i
		}
	}
	l.layers = append(l.layers, info)
	return len(l.layers) - 1
}

// LayerInfoAt returns the canonical descriptor for a layer index.
func (l *Layout) LayerInfoAt(idx int) LayerInfo {
	if idx < 0 || idx >= len(l.layers) {
		return LayerInfo{}
	}
	return l.layers[idx]
}

// CanonicalLayer normalizes a descriptor to its registered canonical form.
func (l *Layout) CanonicalLayer(info LayerInfo) LayerInfo {
	return l.LayerInfoAt(l.LayerIndex(info))
}

// Layers returns the registered layer descriptors in index order.
func (l *Layout) Layers() []LayerInfo {
	out := make([]LayerInfo, len(l.layers))
	copy(out, l.layers)
	return out
}

// SetPortMarkerLayer maps a layer to the marker layer that receives port
// edge and label geometry.
func (l *Layout) SetPortMarkerLayer(layer, marker LayerInfo) {
	l.markers[l.LayerIndex(layer)] = l.LayerIndex(marker)
}

// PortMarkerLayer returns the marker layer index for a layer, if mapped.
func (l *Layout) PortMarkerLayer(layer int) (int, bool) {
	m, ok := l.markers[layer]
	return m, ok
}

// FutureCellName returns the name the currently running build will assign
// to its cell. Only meaningful inside a build.
func (l *Layout) FutureCellName() string { return l.futureCellName }

// SwapFutureCellName sets the in-progress target name and returns the
// previous one, so nested builds can save and restore it on every exit
// path.
func (l *Layout) SwapFutureCellName(name string) string {
	old := l.futureCellName
	l.futureCellName = name
	return old
}

type buildLockKey struct{ l *Layout }

// AcquireBuild takes the layout-wide build lock unless the context already
// owns it. The returned context marks ownership and must be passed to
// nested builds; release is a no-op for nested acquisitions.
func (l *Layout) AcquireBuild(ctx context.Context) (context.Context, func()) {
	if ctx.Value(buildLockKey{l}) != nil {
		return ctx, func() {}
	}
	l.mu.Lock()
	return context.WithValue(ctx, buildLockKey{l}, true), l.mu.Unlock
}
