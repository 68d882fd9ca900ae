package factory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
	"go.trai.ch/zerr"
)

// Params are the call arguments of a builder invocation.
type Params map[string]any

// BuildFunc is a user builder: it creates a fresh, unlocked cell from the
// given parameters. The context must be forwarded to any nested factory
// calls so the layout-wide build lock is not re-acquired.
type BuildFunc func(ctx context.Context, params Params) (*domain.Cell, error)

// PostProcess is a finishing callback run on the built cell before locking.
type PostProcess func(c *domain.Cell) error

// ParamDef declares one builder parameter.
type ParamDef struct {
	Name string
	// Default fills the parameter when the call omits it. A nil default
	// means the parameter is dropped entirely when not provided: it is
	// neither hashed, nor named, nor passed to the builder.
	Default any
	// Unit annotates the parameter for the settings record, e.g. "dbu" or
	// "um".
	Unit string
	Doc  string
}

// Def declares a builder function: its name, its parameters in naming
// order, and the build body.
type Def struct {
	Name   string
	Params []ParamDef
	Build  BuildFunc
}

// Factory wraps a builder definition into a memoizing, name-deriving,
// invariant-checking callable bound to one layout. It is the explicit
// higher-order counterpart of a cell decorator.
type Factory struct {
	layout *domain.Layout
	def    Def
	cache  *Cache

	setName           bool
	setSettings       bool
	checkPorts        bool
	checkInstances    domain.CheckInstances
	snapPorts         bool
	addPortLayers     bool
	basename          string
	dropParams        []string
	overwriteExisting bool
	layoutCache       bool
	info              map[string]any
	postProcess       []PostProcess
	debugNames        bool
	nameConfig        domain.NameConfig
	logger            ports.Logger
}

// Option configures a factory.
type Option func(*Factory)

// WithCache replaces the per-factory content cache, e.g. with a bounded or
// shared one.
func WithCache(c *Cache) Option { return func(f *Factory) { f.cache = c } }

// WithLogger attaches a logger for build diagnostics.
func WithLogger(l ports.Logger) Option { return func(f *Factory) { f.logger = l } }

// WithBasename overrides the derived base name.
func WithBasename(name string) Option { return func(f *Factory) { f.basename = name } }

// WithDropParams excludes parameters from naming and the settings record.
func WithDropParams(names ...string) Option {
	return func(f *Factory) { f.dropParams = append(f.dropParams, names...) }
}

// WithOverwriteExisting deletes any same-named prior cell before publishing.
func WithOverwriteExisting() Option { return func(f *Factory) { f.overwriteExisting = true } }

// WithLayoutCache adopts a same-named cell already present in the layout
// (e.g. read from disk) instead of running the builder.
func WithLayoutCache() Option { return func(f *Factory) { f.layoutCache = true } }

// WithInfo merges extra metadata into the cell after every build or hit.
func WithInfo(info map[string]any) Option { return func(f *Factory) { f.info = info } }

// WithPostProcess appends finishing callbacks, run in registration order.
func WithPostProcess(fns ...PostProcess) Option {
	return func(f *Factory) { f.postProcess = append(f.postProcess, fns...) }
}

// WithDebugNames fails the build when the target name is already owned by a
// distinct live cell instead of uniquifying silently.
func WithDebugNames() Option { return func(f *Factory) { f.debugNames = true } }

// WithoutName skips name synthesis; the builder's own cell name survives.
func WithoutName() Option { return func(f *Factory) { f.setName = false } }

// WithoutSettings skips stamping the settings record.
func WithoutSettings() Option { return func(f *Factory) { f.setSettings = false } }

// WithoutPortCheck disables the duplicate port name validation.
func WithoutPortCheck() Option { return func(f *Factory) { f.checkPorts = false } }

// WithCheckInstances selects the off-grid instance policy.
func WithCheckInstances(policy domain.CheckInstances) Option {
	return func(f *Factory) { f.checkInstances = policy }
}

// WithoutSnapPorts disables grid normalization of sub-grid port placements.
func WithoutSnapPorts() Option { return func(f *Factory) { f.snapPorts = false } }

// WithoutPortMarkers disables the port marker geometry.
func WithoutPortMarkers() Option { return func(f *Factory) { f.addPortLayers = false } }

// WithNameConfig overrides the name synthesis settings.
func WithNameConfig(cfg domain.NameConfig) Option { return func(f *Factory) { f.nameConfig = cfg } }

// New wraps a builder definition for the given layout.
func New(layout *domain.Layout, def Def, opts ...Option) (*Factory, error) {
	if def.Name == "" {
		return nil, zerr.New("factory needs a name")
	}
	if def.Build == nil {
		return nil, zerr.With(zerr.New("factory needs a build function"), "factory", def.Name)
	}
	f := &Factory{
		layout:         layout,
		def:            def,
		cache:          NewCache(0),
		setName:        true,
		setSettings:    true,
		checkPorts:     true,
		checkInstances: domain.CheckRaise,
		snapPorts:      true,
		addPortLayers:  true,
		nameConfig:     domain.DefaultNameConfig(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name returns the base name the factory derives cell names from.
func (f *Factory) Name() string {
	if f.basename != "" {
		return f.basename
	}
	return f.def.Name
}

// Layout returns the layout the factory builds into.
func (f *Factory) Layout() *domain.Layout { return f.layout }

// Cache exposes the content cache, mainly for inspection in tests.
func (f *Factory) Cache() *Cache { return f.cache }

type inflightKey struct{ key domain.CacheKey }

// Build returns the cell for the given parameters, building it at most once
// per canonical parameter set. Concurrent calls are serialized by the
// layout-wide build lock; nested calls from inside a builder reuse the held
// lock through the context.
func (f *Factory) Build(ctx context.Context, params Params) (*domain.Cell, error) {
	ps, err := f.canonicalize(params)
	if err != nil {
		return nil, zerr.With(err, "factory", f.def.Name)
	}
	key := domain.NewCacheKey(f.def.Name, ps)

	if ctx.Value(inflightKey{key}) != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrBuildCycle, "builder re-entered its own key"), "factory", f.def.Name), "params", key.Params)
	}
	ctx = context.WithValue(ctx, inflightKey{key}, true)

	ctx, release := f.layout.AcquireBuild(ctx)
	defer release()

	if hit, ok := f.cache.Get(key); ok {
		if !hit.Destroyed() {
			f.mergeInfo(hit)
			return hit, nil
		}
		// A destroyed hit poisons the table: evict every destroyed entry
		// in one sweep, then rebuild.
		f.cache.SweepDestroyed()
	}

	cell, err := f.build(ctx, ps)
	if err != nil {
		return nil, zerr.With(err, "factory", f.def.Name)
	}

	f.cache.Put(key, cell)
	f.mergeInfo(cell)
	return cell, nil
}

// canonicalize binds the call arguments against the declared parameters,
// fills defaults, drops unset parameters and normalizes layer descriptors
// to their registered canonical form.
func (f *Factory) canonicalize(params Params) (domain.ParamSet, error) {
	declared := make(map[string]bool, len(f.def.Params))
	merged := make(map[string]any, len(f.def.Params))
	for _, pd := range f.def.Params {
		declared[pd.Name] = true
		if pd.Default != nil {
			merged[pd.Name] = pd.Default
		}
	}
	for name, v := range params {
		if !declared[name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownParameter, name), "parameter", name)
		}
		merged[name] = v
	}
	for name, v := range merged {
		if li, ok := v.(domain.LayerInfo); ok {
			merged[name] = f.layout.CanonicalLayer(li)
		}
	}
	return domain.NewParamSet(merged)
}

func (f *Factory) build(ctx context.Context, ps domain.ParamSet) (*domain.Cell, error) {
	var name string
	if f.setName {
		var err error
		name, err = domain.SynthesizeName(f.Name(), ps.Without(f.dropParams...), f.paramOrder(), f.nameConfig)
		if err != nil {
			return nil, err
		}

		old := f.layout.SwapFutureCellName(name)
		defer f.layout.SwapFutureCellName(old)

		if f.layoutCache {
			if f.overwriteExisting {
				for _, c := range f.layout.Cells(name) {
					f.layout.Delete(c)
				}
			} else if existing := f.layout.Cell(name); existing != nil {
				f.logDebug("loading " + name + " from layout cache")
				existing.Lock()
				return existing, nil
			}
		}
		f.logDebug("constructing " + name)
	}

	cell, err := f.def.Build(ctx, Params(ps.Interface()))
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, zerr.New("builder returned no cell")
	}

	if cell.Locked() {
		// The builder returned a previously published cell, most likely
		// straight out of another cache. Copy before touching it.
		target := name
		if target == "" {
			target = cell.Name()
		}
		cell = cell.Dup(target)
	}

	if err := f.finish(cell, ps, name); err != nil {
		// Never publish partial artifacts: drop the fresh cell so the
		// layout keeps its prior state.
		cell.Layout().Delete(cell)
		return nil, err
	}

	cell.Lock()

	if cell.Layout() != f.layout {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrCrossLayout, "builder escaped its layout"), "factory_layout", f.layout.Name()), "cell_layout", cell.Layout().Name())
	}
	return cell, nil
}

// finish applies naming, settings, validation and normalization to a fresh
// cell, in a fixed order: overwrite, name, settings, port check, instance
// policy, snapping, markers, post-processing.
func (f *Factory) finish(cell *domain.Cell, ps domain.ParamSet, name string) error {
	if f.overwriteExisting {
		target := name
		if target == "" {
			target = cell.Name()
		}
		for _, c := range f.layout.Cells(target) {
			if c != cell {
				f.layout.Delete(c)
			}
		}
	}

	if f.setName && name != "" && cell.Name() != name {
		if other := f.layout.Cell(name); other != nil && other != cell {
			if f.debugNames {
				return zerr.With(zerr.Wrap(domain.ErrCellNameTaken, "name owned by another live cell"), "cell", name)
			}
			name = f.layout.UniqueName(name)
		}
		if err := cell.SetName(name); err != nil {
			return err
		}
	}

	if f.setSettings {
		settings := ps.Without(f.dropParams...)
		units := make(map[string]string)
		for _, pd := range f.def.Params {
			if pd.Unit == "" {
				continue
			}
			if _, ok := settings.Get(pd.Name); ok {
				units[pd.Name] = pd.Unit
			}
		}
		if err := cell.SetProvenance(f.def.Name, f.basename); err != nil {
			return err
		}
		if err := cell.SetSettings(settings, units); err != nil {
			return err
		}
	}

	if f.checkPorts {
		if err := checkPortNames(cell); err != nil {
			return err
		}
	}

	if err := f.applyInstancePolicy(cell); err != nil {
		return err
	}

	if f.snapPorts {
		snapPorts(cell)
	}

	if f.addPortLayers {
		if err := addPortMarkers(cell); err != nil {
			return err
		}
	}

	for _, pp := range f.postProcess {
		if err := pp(cell); err != nil {
			return err
		}
	}
	return nil
}

func (f *Factory) applyInstancePolicy(cell *domain.Cell) error {
	var offGrid []*domain.Instance
	for _, inst := range cell.Instances() {
		if inst.IsComplex() {
			offGrid = append(offGrid, inst)
		}
	}
	if len(offGrid) == 0 {
		return nil
	}

	switch f.checkInstances {
	case domain.CheckRaise:
		names := make([]string, len(offGrid))
		for i, inst := range offGrid {
			names[i] = inst.Cell().Name()
		}
		return zerr.With(zerr.Wrap(domain.ErrOffGridInstance, strings.Join(names, ", ")), "cell", cell.Name())
	case domain.CheckFlatten:
		return cell.Flatten()
	case domain.CheckVInstances:
		for _, inst := range offGrid {
			if _, err := cell.CreateVInstance(inst.Cell(), *inst.DCplxTrans()); err != nil {
				return err
			}
			if err := cell.DeleteInstance(inst); err != nil {
				return err
			}
		}
	case domain.CheckIgnore:
	}
	return nil
}

func (f *Factory) paramOrder() []string {
	order := make([]string, len(f.def.Params))
	for i, pd := range f.def.Params {
		order[i] = pd.Name
	}
	return order
}

func (f *Factory) mergeInfo(cell *domain.Cell) {
	for k, v := range f.info {
		cell.Info()[k] = v
	}
}

func (f *Factory) logDebug(msg string) {
	if f.logger != nil {
		f.logger.Debug(msg)
	}
}

// checkPortNames fails with the full list of duplicated port names.
func checkPortNames(cell *domain.Cell) error {
	counts := make(map[string]int)
	for _, p := range cell.Ports() {
		counts[p.Name]++
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, fmt.Sprintf("(%q, %d)", name, n))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return zerr.With(zerr.Wrap(domain.ErrPortCollision, strings.Join(dups, ", ")), "cell", cell.Name())
}

// snapPorts corrects sub-grid port placements whose displacement rounds to
// a different grid-aligned position.
func snapPorts(cell *domain.Cell) {
	l := cell.Layout()
	for _, p := range cell.Ports() {
		if p.DCplxTrans == nil {
			continue
		}
		p.DCplxTrans.Disp = l.ToUmPoint(l.ToDbuPoint(p.DCplxTrans.Disp))
	}
}

// addPortMarkers emits an edge and a text label on the registered marker
// layer for every port, in grid or sub-grid coordinates depending on how
// the port was defined.
func addPortMarkers(cell *domain.Cell) error {
	l := cell.Layout()
	for _, p := range cell.Ports() {
		marker, ok := l.PortMarkerLayer(p.Layer)
		if !ok {
			continue
		}
		if p.Trans != nil {
			edge := domain.Edge{
				P1: p.Trans.Apply(domain.Point{X: 0, Y: -p.Width / 2}),
				P2: p.Trans.Apply(domain.Point{X: 0, Y: p.Width / 2}),
			}
			if err := cell.Insert(marker, domain.Shape{Edge: &edge}); err != nil {
				return err
			}
			if p.Name != "" {
				txt := domain.Text{Str: p.Name, Trans: *p.Trans}
				if err := cell.Insert(marker, domain.Shape{Text: &txt}); err != nil {
					return err
				}
			}
			continue
		}
		dwidth := l.ToUm(p.Width)
		edge := domain.DEdge{
			P1: p.DCplxTrans.Apply(domain.DPoint{X: 0, Y: -dwidth / 2}),
			P2: p.DCplxTrans.Apply(domain.DPoint{X: 0, Y: dwidth / 2}),
		}
		if err := cell.Insert(marker, domain.Shape{DEdge: &edge}); err != nil {
			return err
		}
		if p.Name != "" {
			txt := domain.DText{Str: p.Name, Trans: *p.DCplxTrans}
			if err := cell.Insert(marker, domain.Shape{DText: &txt}); err != nil {
				return err
			}
		}
	}
	return nil
}
