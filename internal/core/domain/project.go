package domain

// CellSpec is one cell to build: the factory that builds it and the
// parameters to build it with.
type CellSpec struct {
	Factory string
	Params  map[string]any
}

// Project is the loaded project configuration: the layout to build into,
// the layers it knows, factory defaults, session store settings, and the
// list of cells to build.
type Project struct {
	LayoutName string
	DBU        float64

	// Layers maps symbolic layer names to their descriptors.
	Layers map[string]LayerInfo
	// PortMarkers maps a layer name to the marker layer receiving port
	// edge and label geometry.
	PortMarkers map[string]string

	Naming         NameConfig
	CheckInstances CheckInstances

	SessionDir     string
	SessionEnabled bool

	// Output is the path the built layout is written to.
	Output string

	Cells []CellSpec
}

// NewLayoutFromProject creates the layout described by the project:
// registers its layers canonically and wires the port marker mapping.
func NewLayoutFromProject(p *Project) *Layout {
	dbu := p.DBU
	if dbu <= 0 {
		dbu = 0.001
	}
	l := NewLayout(p.LayoutName, WithDBU(dbu))
	for name, info := range p.Layers {
		if info.Name == "" {
			info.Name = name
		}
		l.LayerIndex(info)
	}
	for layerName, markerName := range p.PortMarkers {
		layer, okL := p.Layers[layerName]
		marker, okM := p.Layers[markerName]
		if okL && okM {
			l.SetPortMarkerLayer(layer, marker)
		}
	}
	return l
}
