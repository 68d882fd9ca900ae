// Package pcells carries the built-in parametric cell builders.
package pcells

import (
	"context"

	"go.trai.ch/zerr"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/engine/factory"
)

// StraightDbuDef declares the straight waveguide builder in database units:
// a rectangular core with a port on each end, optionally wrapped by an
// enclosure.
func StraightDbuDef(l *domain.Layout) factory.Def {
	return factory.Def{
		Name: "straight_dbu",
		Params: []factory.ParamDef{
			{Name: "width", Default: int64(1000), Unit: "dbu"},
			{Name: "length", Default: int64(10000), Unit: "dbu"},
			{Name: "layer", Default: domain.LayerInfo{Layer: 1, Datatype: 0}},
			{Name: "enclosure"},
		},
		Build: func(ctx context.Context, params factory.Params) (*domain.Cell, error) {
			width, ok := params["width"].(int64)
			if !ok {
				return nil, zerr.With(zerr.New("width must be an integer"), "width", params["width"])
			}
			length, ok := params["length"].(int64)
			if !ok {
				return nil, zerr.With(zerr.New("length must be an integer"), "length", params["length"])
			}
			layerInfo, ok := params["layer"].(domain.LayerInfo)
			if !ok {
				return nil, zerr.With(zerr.New("layer must be a layer descriptor"), "layer", params["layer"])
			}

			cell, err := l.CreateCell("")
			if err != nil {
				return nil, err
			}
			layer := l.LayerIndex(layerInfo)
			core := domain.Box{Left: 0, Bottom: -width / 2, Right: length, Top: width / 2}
			if err := cell.Insert(layer, domain.BoxShape(core)); err != nil {
				return nil, err
			}

			if raw, ok := params["enclosure"]; ok && raw != nil {
				enc, ok := raw.(*domain.Enclosure)
				if !ok {
					return nil, zerr.With(zerr.New("enclosure must be a registered enclosure"), "enclosure", raw)
				}
				if err := enc.Apply(cell, core); err != nil {
					return nil, err
				}
			}

			if _, err := cell.CreatePort(domain.Port{
				Name:  "o1",
				Width: width,
				Layer: layer,
				Trans: &domain.Trans{Rot: 2, Disp: domain.Point{X: 0, Y: 0}},
			}); err != nil {
				return nil, err
			}
			if _, err := cell.CreatePort(domain.Port{
				Name:  "o2",
				Width: width,
				Layer: layer,
				Trans: &domain.Trans{Rot: 0, Disp: domain.Point{X: length, Y: 0}},
			}); err != nil {
				return nil, err
			}
			return cell, nil
		},
	}
}

// StraightDef declares the straight waveguide builder in micrometers. It
// delegates to the database unit factory; the returned cell is already
// published, so the orchestrator copies it under the micrometer name.
func StraightDef(l *domain.Layout, dbuFactory *factory.Factory) factory.Def {
	return factory.Def{
		Name: "straight",
		Params: []factory.ParamDef{
			{Name: "width", Default: 1.0, Unit: "um"},
			{Name: "length", Default: 10.0, Unit: "um"},
			{Name: "layer", Default: domain.LayerInfo{Layer: 1, Datatype: 0}},
			{Name: "enclosure"},
		},
		Build: func(ctx context.Context, params factory.Params) (*domain.Cell, error) {
			width, ok := params["width"].(float64)
			if !ok {
				return nil, zerr.With(zerr.New("width must be a number"), "width", params["width"])
			}
			length, ok := params["length"].(float64)
			if !ok {
				return nil, zerr.With(zerr.New("length must be a number"), "length", params["length"])
			}

			nested := factory.Params{
				"width":  l.ToDbu(width),
				"length": l.ToDbu(length),
				"layer":  params["layer"],
			}
			if enc, ok := params["enclosure"]; ok && enc != nil {
				nested["enclosure"] = enc
			}
			return dbuFactory.Build(ctx, nested)
		},
	}
}

// New wires the built-in builders into factories bound to the layout,
// keyed by factory name.
func New(l *domain.Layout, opts ...factory.Option) (map[string]*factory.Factory, error) {
	dbuFactory, err := factory.New(l, StraightDbuDef(l), opts...)
	if err != nil {
		return nil, err
	}
	umFactory, err := factory.New(l, StraightDef(l, dbuFactory), opts...)
	if err != nil {
		return nil, err
	}
	return map[string]*factory.Factory{
		dbuFactory.Name(): dbuFactory,
		umFactory.Name():  umFactory,
	}, nil
}
