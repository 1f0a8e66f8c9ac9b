package plans

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source defines how the catalog is loaded into the registry.
type Source interface {
	Load(ctx context.Context) (Catalog, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Catalog, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (Catalog, error) {
	return f(ctx)
}

type staticSource struct {
	catalog Catalog
}

// NewStaticSource returns a Source serving a deep copy of catalog.
func NewStaticSource(catalog Catalog) Source {
	return &staticSource{catalog: catalog.clone()}
}

// DefaultSource serves the built-in catalog.
func DefaultSource() Source {
	return NewStaticSource(DefaultCatalog())
}

func (s *staticSource) Load(ctx context.Context) (Catalog, error) {
	return s.catalog.clone(), nil
}

type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source that reads the catalog from a YAML file on every Load.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return Catalog{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return ParseCatalogYAML(data)
}

// ParseCatalogYAML decodes a catalog document. Unknown fields are rejected.
func ParseCatalogYAML(data []byte) (Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return Catalog{}, errors.Join(ErrInvalidPlanConfiguration, err)
	}
	return catalog, nil
}
