package config

// projectFile represents the structure of the pcell.yaml configuration file.
type projectFile struct {
	Layout         string              `yaml:"layout"`
	DBU            float64             `yaml:"dbu"`
	Layers         map[string]layerDTO `yaml:"layers"`
	PortMarkers    map[string]string   `yaml:"port_markers"`
	Naming         namingDTO           `yaml:"naming"`
	CheckInstances string              `yaml:"check_instances"`
	Session        sessionDTO          `yaml:"session"`
	Output         string              `yaml:"output"`
	Cells          []cellDTO           `yaml:"cells"`
}

// layerDTO describes one layer: its number, datatype and optional display
// name. The map key in the layers block is used as the name when none is
// given here.
type layerDTO struct {
	Layer    int    `yaml:"layer"`
	Datatype int    `yaml:"datatype"`
	Name     string `yaml:"name"`
}

type namingDTO struct {
	MaxLength  int     `yaml:"max_length"`
	Resolution float64 `yaml:"resolution"`
}

type sessionDTO struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// cellDTO is one cell build request.
type cellDTO struct {
	Factory string         `yaml:"factory"`
	Params  map[string]any `yaml:"params"`
}
