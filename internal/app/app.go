// Package app implements the application layer for pcell.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
	"go.trai.ch/pcell/internal/engine/factory"
	"go.trai.ch/pcell/internal/pcells"
	"go.trai.ch/zerr"
)

// App represents the main application logic: loading a project, building
// its cells through the factories, and persisting the result.
type App struct {
	loader ports.ConfigLoader
	codec  ports.LayoutCodec
	logger ports.Logger
	tracer ports.Tracer
	store  ports.SessionStore

	// openStore opens a session store rooted at the configured directory.
	// When nil the injected default store is used for every project.
	openStore func(dir string) ports.SessionStore
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, codec ports.LayoutCodec, logger ports.Logger, tracer ports.Tracer, store ports.SessionStore) *App {
	return &App{
		loader: loader,
		codec:  codec,
		logger: logger,
		tracer: tracer,
		store:  store,
	}
}

// WithTracer replaces the tracer, e.g. with a live progress recorder.
func (a *App) WithTracer(tr ports.Tracer) *App {
	a.tracer = tr
	return a
}

// WithStoreOpener sets how per-project session stores are opened.
func (a *App) WithStoreOpener(open func(dir string) ports.SessionStore) *App {
	a.openStore = open
	return a
}

// BuildOptions control one build run.
type BuildOptions struct {
	// ConfigPath is the project file or a directory to discover it from.
	ConfigPath string
	// Jobs bounds the number of concurrent cell builds. Zero means one
	// worker per CPU.
	Jobs int
	// NoSession disables the persisted layout store for this run.
	NoSession bool
}

// Build loads the project, builds every configured cell, writes the layout
// and stashes it in the session store.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	project, err := a.loader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	layout := domain.NewLayoutFromProject(project)

	useSession := project.SessionEnabled && !opts.NoSession
	var store ports.SessionStore
	preloaded := false
	if useSession {
		store = a.storeFor(project.SessionDir)
		location, hit, err := store.Lookup(project.Output)
		if err != nil {
			return zerr.Wrap(err, "session store lookup failed")
		}
		if hit {
			if err := a.codec.ReadInto(layout, location); err != nil {
				return zerr.Wrap(err, "failed to restore stashed layout")
			}
			preloaded = true
			a.logger.Info("restored layout from session store")
		}
	}

	factoryOpts := []factory.Option{factory.WithLogger(a.logger)}
	if project.CheckInstances != "" {
		factoryOpts = append(factoryOpts, factory.WithCheckInstances(project.CheckInstances))
	}
	factoryOpts = append(factoryOpts, factory.WithNameConfig(project.Naming))
	if preloaded {
		factoryOpts = append(factoryOpts, factory.WithLayoutCache())
	}

	factories, err := pcells.New(layout, factoryOpts...)
	if err != nil {
		return err
	}

	labels := make([]string, len(project.Cells))
	for i, spec := range project.Cells {
		labels[i] = fmt.Sprintf("%s[%d]", spec.Factory, i)
	}
	a.tracer.EmitPlan(ctx, labels)

	var mu sync.Mutex
	built := make([]string, len(project.Cells))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, spec := range project.Cells {
		g.Go(func() error {
			_, span := a.tracer.Start(gctx, labels[i])
			defer span.End()

			cell, err := a.buildCell(gctx, project, factories, spec)
			if err != nil {
				span.RecordError(err)
				return zerr.With(err, "cell", labels[i])
			}
			_, _ = fmt.Fprintln(span, cell.Name())
			mu.Lock()
			built[i] = cell.Name()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, name := range built {
		a.logger.Info("built " + name)
	}

	if err := a.codec.Write(layout, project.Output); err != nil {
		return zerr.Wrap(err, "failed to write layout")
	}
	a.logger.Info("wrote " + project.Output)

	if useSession {
		location, err := store.Stash(project.Output)
		if err != nil {
			return zerr.Wrap(err, "failed to stash layout")
		}
		a.logger.Debug("stashed layout at " + location)
	}
	return nil
}

func (a *App) buildCell(ctx context.Context, project *domain.Project, factories map[string]*factory.Factory, spec domain.CellSpec) (*domain.Cell, error) {
	f, ok := factories[spec.Factory]
	if !ok {
		return nil, zerr.With(zerr.New("unknown factory"), "factory", spec.Factory)
	}
	return f.Build(ctx, resolveParams(project, spec.Params))
}

// resolveParams replaces string parameter values naming a configured layer
// with the layer descriptor itself, so project files can say "layer: WG".
func resolveParams(project *domain.Project, params map[string]any) factory.Params {
	out := make(factory.Params, len(params))
	for name, v := range params {
		if s, ok := v.(string); ok {
			if info, found := project.Layers[s]; found {
				out[name] = info
				continue
			}
		}
		out[name] = v
	}
	return out
}

// Clean removes every layout stashed for the project.
func (a *App) Clean(ctx context.Context, configPath string) error {
	project, err := a.loader.Load(configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if err := a.storeFor(project.SessionDir).Clean(); err != nil {
		return err
	}
	a.logger.Info("cleaned session store")
	return nil
}

func (a *App) storeFor(dir string) ports.SessionStore {
	if a.openStore != nil && dir != "" {
		return a.openStore(dir)
	}
	return a.store
}
