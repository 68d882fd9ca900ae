package domain

import (
	"math"
	"sort"

	"go.trai.ch/zerr"
)

// Instance is a placed reference to a child cell. It carries either a grid
// transformation or a complex (sub-grid) transformation.
type Instance struct {
	parent *Cell
	cell   *Cell
	trans  Trans
	dtrans *DCplxTrans
}

// Cell returns the referenced child cell.
func (i *Instance) Cell() *Cell { return i.cell }

// Trans returns the grid transformation of the instance.
func (i *Instance) Trans() Trans { return i.trans }

// DCplxTrans returns the complex transformation, or nil for grid placements.
func (i *Instance) DCplxTrans() *DCplxTrans { return i.dtrans }

// IsComplex reports whether the instance is placed off the layout grid:
// a non-orthogonal rotation, a magnification, or a displacement that does
// not land on a database unit.
func (i *Instance) IsComplex() bool {
	if i.dtrans == nil {
		return false
	}
	if !i.dtrans.IsOrthogonal() {
		return true
	}
	dbu := i.parent.layout.dbu
	return !onGrid(i.dtrans.Disp.X, dbu) || !onGrid(i.dtrans.Disp.Y, dbu)
}

func onGrid(um, dbu float64) bool {
	q := um / dbu
	return math.Abs(q-math.Round(q)) < 1e-9
}

// VInstance is a virtual reference: it tolerates arbitrary placement and is
// never subject to the off-grid instance policy.
type VInstance struct {
	cell  *Cell
	trans DCplxTrans
}

// Cell returns the referenced child cell.
func (v *VInstance) Cell() *Cell { return v.cell }

// Trans returns the placement of the virtual instance.
func (v *VInstance) Trans() DCplxTrans { return v.trans }

// Cell is a geometry-bearing artifact: named, carrying ports, per-layer
// shapes, child instances and provenance metadata. Cells start unlocked and
// mutable; once a factory publishes a cell it is locked and every further
// mutation fails with ErrLocked. Duplicate a locked cell to modify it.
type Cell struct {
	layout *Layout
	name   string

	functionName string
	basename     string

	ports  []*Port
	shapes map[int][]Shape
	insts  []*Instance
	vinsts []*VInstance

	info          map[string]any
	settings      ParamSet
	settingsUnits map[string]string

	locked    bool
	destroyed bool
}

// Name returns the cell name. Unnamed cells return the empty string.
func (c *Cell) Name() string { return c.name }

// Layout returns the owning layout.
func (c *Cell) Layout() *Layout { return c.layout }

// Locked reports whether the cell has been published and frozen.
func (c *Cell) Locked() bool { return c.locked }

// Destroyed reports whether the cell was deleted from its layout.
func (c *Cell) Destroyed() bool { return c.destroyed }

// Lock freezes the cell. Irreversible; the info side-channel stays
// writable, everything else does not.
func (c *Cell) Lock() { c.locked = true }

// Info returns the live metadata map. It remains mutable after locking.
func (c *Cell) Info() map[string]any { return c.info }

// FunctionName returns the builder function name stamped at publish time.
func (c *Cell) FunctionName() string { return c.functionName }

// Basename returns the base name override stamped at publish time.
func (c *Cell) Basename() string { return c.basename }

// Settings returns the canonicalized parameters the cell was built from.
func (c *Cell) Settings() ParamSet { return c.settings }

// SettingsUnits returns the per-parameter unit annotations.
func (c *Cell) SettingsUnits() map[string]string { return c.settingsUnits }

func (c *Cell) checkMutable() error {
	if c.locked {
		return zerr.With(zerr.Wrap(ErrLocked, "cell is published; duplicate it first"), "cell", c.name)
	}
	return nil
}

// SetName renames the cell. It fails with ErrCellNameTaken if a distinct
// live cell already owns the name.
func (c *Cell) SetName(name string) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	return c.layout.rename(c, name)
}

// SetProvenance stamps the builder identity onto the cell.
func (c *Cell) SetProvenance(functionName, basename string) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.functionName = functionName
	c.basename = basename
	return nil
}

// SetSettings stamps the canonicalized parameter set and unit annotations.
func (c *Cell) SetSettings(ps ParamSet, units map[string]string) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.settings = ps
	c.settingsUnits = units
	return nil
}

// Insert adds a shape on a layer.
func (c *Cell) Insert(layer int, s Shape) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.shapes[layer] = append(c.shapes[layer], s)
	return nil
}

// Layers returns the layer indexes holding shapes, sorted.
func (c *Cell) Layers() []int {
	out := make([]int, 0, len(c.shapes))
	for layer := range c.shapes {
		out = append(out, layer)
	}
	sort.Ints(out)
	return out
}

// ShapesOn returns the shapes on a layer.
func (c *Cell) ShapesOn(layer int) []Shape {
	out := make([]Shape, len(c.shapes[layer]))
	copy(out, c.shapes[layer])
	return out
}

// CreatePort adds a port to the cell. The port must carry exactly one of a
// grid or a complex placement.
func (c *Cell) CreatePort(p Port) (*Port, error) {
	if err := c.checkMutable(); err != nil {
		return nil, err
	}
	if (p.Trans == nil) == (p.DCplxTrans == nil) {
		return nil, zerr.With(zerr.New("port needs exactly one placement"), "port", p.Name)
	}
	np := p.clone()
	c.ports = append(c.ports, np)
	return np, nil
}

// Ports returns the ports of the cell.
func (c *Cell) Ports() []*Port {
	out := make([]*Port, len(c.ports))
	copy(out, c.ports)
	return out
}

// Port returns the named port, or nil.
func (c *Cell) Port(name string) *Port {
	for _, p := range c.ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddInstance places a child cell with a grid transformation.
func (c *Cell) AddInstance(child *Cell, t Trans) (*Instance, error) {
	if err := c.checkInstance(child); err != nil {
		return nil, err
	}
	inst := &Instance{parent: c, cell: child, trans: t}
	c.insts = append(c.insts, inst)
	return inst, nil
}

// AddComplexInstance places a child cell with a complex transformation.
func (c *Cell) AddComplexInstance(child *Cell, t DCplxTrans) (*Instance, error) {
	if err := c.checkInstance(child); err != nil {
		return nil, err
	}
	inst := &Instance{parent: c, cell: child, dtrans: &t}
	c.insts = append(c.insts, inst)
	return inst, nil
}

// CreateVInstance places a child cell as a virtual reference.
func (c *Cell) CreateVInstance(child *Cell, t DCplxTrans) (*VInstance, error) {
	if err := c.checkInstance(child); err != nil {
		return nil, err
	}
	v := &VInstance{cell: child, trans: t}
	c.vinsts = append(c.vinsts, v)
	return v, nil
}

func (c *Cell) checkInstance(child *Cell) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if child.layout != c.layout {
		return zerr.With(zerr.With(zerr.Wrap(ErrCrossLayout, "instance target belongs to another layout"), "cell", child.name), "layout", child.layout.name)
	}
	return nil
}

// Instances returns the placed child references.
func (c *Cell) Instances() []*Instance {
	out := make([]*Instance, len(c.insts))
	copy(out, c.insts)
	return out
}

// VInstances returns the virtual child references.
func (c *Cell) VInstances() []*VInstance {
	out := make([]*VInstance, len(c.vinsts))
	copy(out, c.vinsts)
	return out
}

// DeleteInstance removes a placed reference from the cell.
func (c *Cell) DeleteInstance(inst *Instance) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for i, cur := range c.insts {
		if cur == inst {
			c.insts = append(c.insts[:i], c.insts[i+1:]...)
			return nil
		}
	}
	return nil
}

// Flatten recursively inlines all placed references into the cell. The
// child cells stay in the layout; only the references disappear. Complex
// placements are applied in floating point and snapped back onto the grid.
func (c *Cell) Flatten() error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	insts := c.insts
	c.insts = nil
	for _, inst := range insts {
		if inst.dtrans != nil {
			c.flattenComplex(inst.cell, *inst.dtrans)
		} else {
			c.flattenGrid(inst.cell, inst.trans)
		}
	}
	return nil
}

func (c *Cell) flattenGrid(child *Cell, t Trans) {
	dbu := c.layout.dbu
	for layer, shapes := range child.shapes {
		for _, s := range shapes {
			c.shapes[layer] = append(c.shapes[layer], s.Transform(t, dbu))
		}
	}
	for _, inst := range child.insts {
		if inst.dtrans != nil {
			c.flattenComplex(inst.cell, composeDCplx(toDCplx(t, dbu), *inst.dtrans))
		} else {
			c.flattenGrid(inst.cell, t.Compose(inst.trans))
		}
	}
	for _, v := range child.vinsts {
		c.flattenComplex(v.cell, composeDCplx(toDCplx(t, dbu), v.trans))
	}
}

func (c *Cell) flattenComplex(child *Cell, t DCplxTrans) {
	dbu := c.layout.dbu
	for layer, shapes := range child.shapes {
		for _, s := range shapes {
			c.shapes[layer] = append(c.shapes[layer], s.TransformComplex(t, dbu))
		}
	}
	for _, inst := range child.insts {
		ct := inst.dtrans
		if ct == nil {
			d := toDCplx(inst.trans, dbu)
			ct = &d
		}
		c.flattenComplex(inst.cell, composeDCplx(t, *ct))
	}
	for _, v := range child.vinsts {
		c.flattenComplex(v.cell, composeDCplx(t, v.trans))
	}
}

// BBox returns the bounding box of the cell in database units, including
// all child references.
func (c *Cell) BBox() Box {
	dbu := c.layout.dbu
	box := EmptyBox()
	for _, shapes := range c.shapes {
		for _, s := range shapes {
			box = box.Union(s.BBox(dbu))
		}
	}
	for _, inst := range c.insts {
		child := inst.cell.BBox()
		if child.Empty() {
			continue
		}
		if inst.dtrans != nil {
			box = box.Union(transformBoxComplex(child, *inst.dtrans, dbu))
		} else {
			box = box.Union(inst.trans.ApplyBox(child))
		}
	}
	for _, v := range c.vinsts {
		child := v.cell.BBox()
		if child.Empty() {
			continue
		}
		box = box.Union(transformBoxComplex(child, v.trans, dbu))
	}
	if box.Empty() {
		return Box{}
	}
	return box
}

// DBBox returns the bounding box in micrometers.
func (c *Cell) DBBox() DBox {
	b := c.BBox()
	dbu := c.layout.dbu
	return DBox{
		Left:   float64(b.Left) * dbu,
		Bottom: float64(b.Bottom) * dbu,
		Right:  float64(b.Right) * dbu,
		Top:    float64(b.Top) * dbu,
	}
}

func transformBoxComplex(b Box, t DCplxTrans, dbu float64) Box {
	corners := []DPoint{
		{X: float64(b.Left) * dbu, Y: float64(b.Bottom) * dbu},
		{X: float64(b.Right) * dbu, Y: float64(b.Bottom) * dbu},
		{X: float64(b.Left) * dbu, Y: float64(b.Top) * dbu},
		{X: float64(b.Right) * dbu, Y: float64(b.Top) * dbu},
	}
	out := EmptyBox()
	for _, corner := range corners {
		p := t.Apply(corner)
		x, y := snap(p.X, dbu), snap(p.Y, dbu)
		out = out.Union(Box{Left: x, Bottom: y, Right: x, Top: y})
	}
	return out
}

// Dup copies the cell into a new unlocked cell registered under the given
// name (uniquified if taken). Geometry, ports, references, settings and
// info are copied; the original stays untouched.
func (c *Cell) Dup(newName string) *Cell {
	dup := c.layout.newCell(c.layout.uniqueName(newName))
	for layer, shapes := range c.shapes {
		dup.shapes[layer] = append([]Shape(nil), shapes...)
	}
	for _, p := range c.ports {
		dup.ports = append(dup.ports, p.clone())
	}
	for _, inst := range c.insts {
		cp := &Instance{parent: dup, cell: inst.cell, trans: inst.trans}
		if inst.dtrans != nil {
			t := *inst.dtrans
			cp.dtrans = &t
		}
		dup.insts = append(dup.insts, cp)
	}
	for _, v := range c.vinsts {
		dup.vinsts = append(dup.vinsts, &VInstance{cell: v.cell, trans: v.trans})
	}
	for k, v := range c.info {
		dup.info[k] = v
	}
	dup.settings = c.settings
	dup.settingsUnits = c.settingsUnits
	dup.functionName = c.functionName
	dup.basename = c.basename
	return dup
}
