package persistence

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/talgya/homestead/internal/grid"
)

const scenesObject = "scenes"

// GdataStore keeps one YAML-encoded snapshot per scene in the per-user
// application data directory.
type GdataStore struct {
	m *gdata.Manager
}

// OpenGdata opens the data directory for appName.
func OpenGdata(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open gdata %s: %w", appName, err)
	}
	return &GdataStore{m: m}, nil
}

type sceneFile struct {
	Tiles []grid.Tile `yaml:"tiles"`
}

// SaveScene overwrites name's snapshot.
func (g *GdataStore) SaveScene(name string, s *grid.Store) error {
	data, err := yaml.Marshal(sceneFile{Tiles: s.Tiles()})
	if err != nil {
		return fmt.Errorf("encode scene %s: %w", name, err)
	}
	return g.m.SaveObjectProp(scenesObject, name, data)
}

// LoadScene reads name's snapshot. found is false when none was saved.
func (g *GdataStore) LoadScene(name string) (*grid.Store, bool, error) {
	if !g.m.ObjectPropExists(scenesObject, name) {
		return nil, false, nil
	}
	data, err := g.m.LoadObjectProp(scenesObject, name)
	if err != nil {
		return nil, false, err
	}

	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("decode scene %s: %w", name, err)
	}
	s := grid.NewStore()
	for _, t := range f.Tiles {
		s.Set(t.Coord(), t)
	}
	return s, true, nil
}

