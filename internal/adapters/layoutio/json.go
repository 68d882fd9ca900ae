// Package layoutio persists layouts as JSON documents and reads them back.
package layoutio

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/zerr"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
)

// Codec implements ports.LayoutCodec with a JSON document per layout.
type Codec struct{}

// NewCodec creates a JSON layout codec.
func NewCodec() *Codec { return &Codec{} }

type layoutDoc struct {
	Layout string             `json:"layout"`
	DBU    float64            `json:"dbu"`
	Layers []domain.LayerInfo `json:"layers"`
	Cells  []cellDoc          `json:"cells"`
}

type cellDoc struct {
	Name          string                    `json:"name"`
	FunctionName  string                    `json:"function_name,omitempty"`
	Basename      string                    `json:"basename,omitempty"`
	Locked        bool                      `json:"locked,omitempty"`
	Info          map[string]any            `json:"info,omitempty"`
	Settings      map[string]any            `json:"settings,omitempty"`
	SettingsUnits map[string]string         `json:"settings_units,omitempty"`
	Shapes        map[string][]domain.Shape `json:"shapes,omitempty"`
	Ports         []domain.Port             `json:"ports,omitempty"`
	Instances     []instanceDoc             `json:"instances,omitempty"`
	VInstances    []vinstanceDoc            `json:"vinstances,omitempty"`
}

type instanceDoc struct {
	Cell       string             `json:"cell"`
	Trans      *domain.Trans      `json:"trans,omitempty"`
	DCplxTrans *domain.DCplxTrans `json:"dcplx_trans,omitempty"`
}

type vinstanceDoc struct {
	Cell  string            `json:"cell"`
	Trans domain.DCplxTrans `json:"trans"`
}

// Write serializes the layout to the given path, creating parent
// directories as needed.
func (c *Codec) Write(l *domain.Layout, path string) error {
	doc := layoutDoc{
		Layout: l.Name(),
		DBU:    l.DBU(),
		Layers: l.Layers(),
	}
	for _, cell := range l.EachCell() {
		doc.Cells = append(doc.Cells, encodeCell(cell))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal layout")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return zerr.Wrap(err, "failed to create output directory")
		}
	}
	//nolint:gosec // path is provided by user
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write layout file")
	}
	return nil
}

func encodeCell(cell *domain.Cell) cellDoc {
	doc := cellDoc{
		Name:          cell.Name(),
		FunctionName:  cell.FunctionName(),
		Basename:      cell.Basename(),
		Locked:        cell.Locked(),
		Info:          cell.Info(),
		Settings:      cell.Settings().Interface(),
		SettingsUnits: cell.SettingsUnits(),
	}
	if len(doc.Settings) == 0 {
		doc.Settings = nil
	}
	if len(doc.Info) == 0 {
		doc.Info = nil
	}
	for _, layer := range cell.Layers() {
		if doc.Shapes == nil {
			doc.Shapes = make(map[string][]domain.Shape)
		}
		doc.Shapes[strconv.Itoa(layer)] = cell.ShapesOn(layer)
	}
	for _, p := range cell.Ports() {
		doc.Ports = append(doc.Ports, *p)
	}
	for _, inst := range cell.Instances() {
		id := instanceDoc{Cell: inst.Cell().Name()}
		if dt := inst.DCplxTrans(); dt != nil {
			id.DCplxTrans = dt
		} else {
			t := inst.Trans()
			id.Trans = &t
		}
		doc.Instances = append(doc.Instances, id)
	}
	for _, v := range cell.VInstances() {
		doc.VInstances = append(doc.VInstances, vinstanceDoc{Cell: v.Cell().Name(), Trans: v.Trans()})
	}
	return doc
}

// ReadInto merges the cells stored at path into the layout. Cells whose
// name is already live in the layout are kept as-is and only serve as
// instance targets; layer indexes are remapped onto the layout's registry.
func (c *Codec) ReadInto(l *domain.Layout, path string) error {
	//nolint:gosec // path is provided by user
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, "failed to read layout file")
	}
	var doc layoutDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return zerr.Wrap(err, "failed to parse layout file")
	}
	if doc.DBU > 0 && math.Abs(doc.DBU-l.DBU()) > 1e-12 {
		return zerr.With(zerr.With(zerr.New("layout grid mismatch"), "file_dbu", doc.DBU), "layout_dbu", l.DBU())
	}

	layerMap := make(map[int]int, len(doc.Layers))
	for i, info := range doc.Layers {
		layerMap[i] = l.LayerIndex(info)
	}

	// First pass: create the missing cells so instances can resolve by name.
	created := make(map[string]*domain.Cell, len(doc.Cells))
	for _, cd := range doc.Cells {
		if l.Cell(cd.Name) != nil {
			continue
		}
		cell, err := l.CreateCell(cd.Name)
		if err != nil {
			return err
		}
		created[cd.Name] = cell
	}

	// Second pass: fill in the freshly created cells.
	for _, cd := range doc.Cells {
		cell, ok := created[cd.Name]
		if !ok {
			continue
		}
		if err := decodeCell(l, cell, cd, layerMap); err != nil {
			return err
		}
	}
	return nil
}

func decodeCell(l *domain.Layout, cell *domain.Cell, doc cellDoc, layerMap map[int]int) error {
	for key, shapes := range doc.Shapes {
		layer, err := strconv.Atoi(key)
		if err != nil {
			return zerr.Wrap(err, "invalid layer key in layout file")
		}
		for _, s := range shapes {
			if err := cell.Insert(mapLayer(layerMap, layer), s); err != nil {
				return err
			}
		}
	}
	for _, p := range doc.Ports {
		p.Layer = mapLayer(layerMap, p.Layer)
		if _, err := cell.CreatePort(p); err != nil {
			return err
		}
	}
	for _, id := range doc.Instances {
		child := l.Cell(id.Cell)
		if child == nil {
			return zerr.With(zerr.Wrap(domain.ErrCellNotFound, "instance references a missing cell"), "cell", id.Cell)
		}
		var err error
		if id.DCplxTrans != nil {
			_, err = cell.AddComplexInstance(child, *id.DCplxTrans)
		} else if id.Trans != nil {
			_, err = cell.AddInstance(child, *id.Trans)
		}
		if err != nil {
			return err
		}
	}
	for _, vd := range doc.VInstances {
		child := l.Cell(vd.Cell)
		if child == nil {
			return zerr.With(zerr.Wrap(domain.ErrCellNotFound, "vinstance references a missing cell"), "cell", vd.Cell)
		}
		if _, err := cell.CreateVInstance(child, vd.Trans); err != nil {
			return err
		}
	}

	// Settings re-enter through plain JSON values, so layer and opaque
	// parameters come back as maps/strings rather than their original
	// kinds. Cache keys are never derived from restored settings; the
	// record is provenance only.
	if len(doc.Settings) > 0 {
		ps, err := domain.NewParamSet(doc.Settings)
		if err != nil {
			return err
		}
		if err := cell.SetSettings(ps, doc.SettingsUnits); err != nil {
			return err
		}
	}
	if doc.FunctionName != "" || doc.Basename != "" {
		if err := cell.SetProvenance(doc.FunctionName, doc.Basename); err != nil {
			return err
		}
	}
	for k, v := range doc.Info {
		cell.Info()[k] = v
	}
	if doc.Locked {
		cell.Lock()
	}
	return nil
}

func mapLayer(layerMap map[int]int, layer int) int {
	if mapped, ok := layerMap[layer]; ok {
		return mapped
	}
	return layer
}

var _ ports.LayoutCodec = (*Codec)(nil)
