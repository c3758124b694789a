// Package catalog resolves dataset identifiers to raster source paths.
package catalog

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/landsuit/internal/model"
)

// DefaultBasePath is where identifiers without a catalog entry are looked up.
const DefaultBasePath = "/vsis3/geoc-slm-function-data/"

// Entry describes one dataset known to the catalog.
type Entry struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Units       string `yaml:"units"`
}

// Catalog maps dataset identifiers to raster paths readable by GDAL.
type Catalog struct {
	BasePath string           `yaml:"base_path"`
	Strict   bool             `yaml:"strict"`
	Datasets map[string]Entry `yaml:"datasets"`
}

// New returns an empty catalog resolving everything under basePath.
func New(basePath string) *Catalog {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Catalog{BasePath: basePath, Datasets: map[string]Entry{}}
}

// Load reads a catalog from a YAML file. The YAML has a top-level "catalog"
// key.
func Load(file string) (*Catalog, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", file)
	}

	var wrapper struct {
		Catalog Catalog `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}

	c := &wrapper.Catalog
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Datasets == nil {
		c.Datasets = map[string]Entry{}
	}
	for id, e := range c.Datasets {
		if strings.TrimSpace(e.Path) == "" {
			return nil, eris.Errorf("catalog: dataset %s has no path", id)
		}
	}
	return c, nil
}

// Resolve returns the raster path for a dataset identifier. Unknown
// identifiers resolve under BasePath unless the catalog is strict.
func (c *Catalog) Resolve(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "..") {
		return "", eris.Wrapf(model.ErrInvalidInput, "catalog: invalid dataset identifier %q", id)
	}
	if e, ok := c.Datasets[id]; ok {
		return e.Path, nil
	}
	if c.Strict {
		return "", eris.Wrapf(model.ErrInvalidInput, "catalog: unknown dataset %s", id)
	}
	if strings.HasSuffix(c.BasePath, "/") {
		return c.BasePath + id, nil
	}
	return path.Join(c.BasePath, id), nil
}

// IDs returns the catalogued identifiers in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Datasets))
	for id := range c.Datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
