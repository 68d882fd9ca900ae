package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/adapters/config"
	"go.trai.ch/pcell/internal/core/domain"
)

const sampleProject = `
layout: chip
dbu: 0.001
layers:
  WG: {layer: 1, datatype: 0}
  WGPORT: {layer: 1, datatype: 10}
  SLAB: {layer: 2, datatype: 0, name: slab90}
port_markers:
  WG: WGPORT
naming:
  max_length: 64
  resolution: 0.01
check_instances: flatten
session:
  enabled: true
  dir: .pcell/session
output: build/layout.json
cells:
  - factory: straight
    params: {width: 1.0, length: 10.0}
  - factory: straight
    params: {width: 0.5, length: 5.0}
`

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProject(t *testing.T) {
	path := writeProject(t, t.TempDir(), sampleProject)

	p, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chip", p.LayoutName)
	assert.InDelta(t, 0.001, p.DBU, 1e-12)
	assert.Equal(t, domain.LayerInfo{Layer: 1, Datatype: 0, Name: "WG"}, p.Layers["WG"])
	assert.Equal(t, domain.LayerInfo{Layer: 2, Datatype: 0, Name: "slab90"}, p.Layers["SLAB"])
	assert.Equal(t, "WGPORT", p.PortMarkers["WG"])
	assert.Equal(t, 64, p.Naming.MaxLength)
	assert.InDelta(t, 0.01, p.Naming.Resolution, 1e-12)
	assert.Equal(t, domain.CheckFlatten, p.CheckInstances)
	assert.True(t, p.SessionEnabled)
	assert.Equal(t, filepath.Join(".pcell", "session"), filepath.FromSlash(p.SessionDir))
	assert.Equal(t, "build/layout.json", p.Output)
	require.Len(t, p.Cells, 2)
	assert.Equal(t, "straight", p.Cells[0].Factory)
	assert.Equal(t, 10.0, p.Cells[0].Params["length"])
}

func TestLoadDefaults(t *testing.T) {
	path := writeProject(t, t.TempDir(), "layout: top\n")

	p, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.CheckRaise, p.CheckInstances)
	assert.Equal(t, domain.DefaultNameConfig(), p.Naming)
	assert.False(t, p.SessionEnabled)
	assert.Equal(t, domain.DefaultSessionPath(), p.SessionDir)
	assert.Equal(t, domain.LayoutFileName, p.Output)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := writeProject(t, t.TempDir(), "layout: top\ncheck_instances: explode\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_instances")
}

func TestLoadRejectsDanglingPortMarker(t *testing.T) {
	path := writeProject(t, t.TempDir(), `
layout: top
layers:
  WG: {layer: 1, datatype: 0}
port_markers:
  WG: WGPORT
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker")
}

func TestLoadRejectsCellWithoutFactory(t *testing.T) {
	path := writeProject(t, t.TempDir(), `
layout: top
cells:
  - params: {width: 1.0}
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory")
}

func TestLoaderDiscoversProjectFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "layout: discovered\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	loader := config.NewLoader(nil)
	p, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "discovered", p.LayoutName)
}

func TestLoaderFailsWhenNoProjectFile(t *testing.T) {
	loader := config.NewLoader(nil)
	_, err := loader.Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project file")
}
