package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landsuit/internal/model"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNew_DefaultBasePath(t *testing.T) {
	c := New("")
	p, err := c.Resolve("slope.tif")
	require.NoError(t, err)
	assert.Equal(t, "/vsis3/geoc-slm-function-data/slope.tif", p)
}

func TestResolve_BasePathWithoutSlash(t *testing.T) {
	c := New("/data/rasters")
	p, err := c.Resolve("slope.tif")
	require.NoError(t, err)
	assert.Equal(t, "/data/rasters/slope.tif", p)
}

func TestResolve_Invalid(t *testing.T) {
	c := New("")
	for _, id := range []string{"", "  ", "../etc/passwd"} {
		_, err := c.Resolve(id)
		require.Error(t, err, id)
		assert.True(t, eris.Is(err, model.ErrInvalidInput))
	}
}

func TestLoad(t *testing.T) {
	p := writeCatalog(t, `
catalog:
  base_path: /vsis3/other-bucket/
  datasets:
    slope:
      path: /vsis3/terrain/slope_deg.tif
      description: Terrain slope
      type: numerical
      units: degrees
    landcover:
      path: /data/corine.tif
      type: categorical
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"landcover", "slope"}, c.IDs())
	assert.Equal(t, "degrees", c.Datasets["slope"].Units)

	got, err := c.Resolve("slope")
	require.NoError(t, err)
	assert.Equal(t, "/vsis3/terrain/slope_deg.tif", got)

	got, err = c.Resolve("rain.tif")
	require.NoError(t, err)
	assert.Equal(t, "/vsis3/other-bucket/rain.tif", got)
}

func TestLoad_Strict(t *testing.T) {
	p := writeCatalog(t, `
catalog:
  strict: true
  datasets:
    slope:
      path: /data/slope.tif
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePath, c.BasePath)

	_, err = c.Resolve("rain.tif")
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeCatalog(t, "catalog: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeCatalog(t, `
catalog:
  datasets:
    slope:
      description: no path
`))
	assert.Error(t, err)
}
