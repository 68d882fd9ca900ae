// Package config provides the configuration loader for pcell projects.
package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/core/ports"
)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	log ports.Logger
}

// NewLoader creates a loader that reports discovery through the logger.
func NewLoader(log ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{log: log}
}

// Load reads the project configuration at path. When path is a directory
// the loader walks up from it looking for pcell.yaml, so the tool works
// from anywhere inside a project tree.
func (l *FileConfigLoader) Load(path string) (*domain.Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to stat config path")
	}
	if info.IsDir() {
		path, err = discover(path)
		if err != nil {
			return nil, err
		}
		if l.log != nil {
			l.log.Debug("using project file " + path)
		}
	}
	return Load(path)
}

// discover walks up from dir until it finds a pcell.yaml.
func discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve config directory")
	}
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(zerr.New("no project file found"), "file", domain.ConfigFileName)
		}
		dir = parent
	}
}

// Load reads a project file from the given path and returns a domain.Project.
func Load(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file projectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	layers := make(map[string]domain.LayerInfo, len(file.Layers))
	for name, dto := range file.Layers {
		layerName := dto.Name
		if layerName == "" {
			layerName = name
		}
		layers[name] = domain.LayerInfo{
			Layer:    dto.Layer,
			Datatype: dto.Datatype,
			Name:     layerName,
		}
	}

	for layerName, markerName := range file.PortMarkers {
		if _, ok := layers[layerName]; !ok {
			return nil, zerr.With(zerr.New("port marker references unknown layer"), "layer", layerName)
		}
		if _, ok := layers[markerName]; !ok {
			return nil, zerr.With(zerr.New("port marker references unknown marker layer"), "marker", markerName)
		}
	}

	checkInstances, err := domain.ParseCheckInstances(file.CheckInstances)
	if err != nil {
		return nil, err
	}

	naming := domain.DefaultNameConfig()
	if file.Naming.MaxLength > 0 {
		naming.MaxLength = file.Naming.MaxLength
	}
	if file.Naming.Resolution > 0 {
		naming.Resolution = file.Naming.Resolution
	}

	cells := make([]domain.CellSpec, 0, len(file.Cells))
	for i, dto := range file.Cells {
		if dto.Factory == "" {
			return nil, zerr.With(zerr.New("cell entry has no factory"), "index", i)
		}
		cells = append(cells, domain.CellSpec{
			Factory: dto.Factory,
			Params:  dto.Params,
		})
	}

	sessionDir := file.Session.Dir
	if sessionDir == "" {
		sessionDir = domain.DefaultSessionPath()
	}
	output := file.Output
	if output == "" {
		output = domain.LayoutFileName
	}

	return &domain.Project{
		LayoutName:     file.Layout,
		DBU:            file.DBU,
		Layers:         layers,
		PortMarkers:    file.PortMarkers,
		Naming:         naming,
		CheckInstances: checkInstances,
		SessionDir:     sessionDir,
		SessionEnabled: file.Session.Enabled,
		Output:         output,
		Cells:          cells,
	}, nil
}
