package gdalio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landsuit/internal/raster"
	"github.com/sells-group/landsuit/internal/resilience"
	"github.com/sells-group/landsuit/internal/target"
)

// Resolver maps a dataset identifier to a GDAL-readable path.
type Resolver interface {
	Resolve(id string) (string, error)
}

// Source reads datasets through GDAL and crops them to a target cutline.
type Source struct {
	resolver Resolver
	tempDir  string
	retry    resilience.RetryConfig
}

// NewSource creates a Source that writes intermediate crops under tempDir.
func NewSource(resolver Resolver, tempDir string, retry resilience.RetryConfig) *Source {
	Register()
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Source{resolver: resolver, tempDir: tempDir, retry: retry}
}

// Align warps dataset id to the cutline of area, cropping to its extent at
// the source's native resolution and projection, and reads band 1.
func (s *Source) Align(ctx context.Context, id string, area *target.Area) (raster.Grid, error) {
	src, err := s.resolver.Resolve(id)
	if err != nil {
		return raster.Grid{}, err
	}

	workDir, err := os.MkdirTemp(s.tempDir, "align-*")
	if err != nil {
		return raster.Grid{}, eris.Wrap(err, "gdalio: create scratch dir")
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	cutline, err := area.CutlineGeoJSON()
	if err != nil {
		return raster.Grid{}, err
	}
	cutlinePath := filepath.Join(workDir, "cutline.geojson")
	if err := os.WriteFile(cutlinePath, cutline, 0o600); err != nil {
		return raster.Grid{}, eris.Wrap(err, "gdalio: write cutline")
	}

	log := zap.L().With(zap.String("dataset", id), zap.String("source", src))
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("gdalio", "align")

	grid, err := resilience.DoVal(ctx, cfg, func(_ context.Context) (raster.Grid, error) {
		out := filepath.Join(workDir, "target_"+uuid.NewString()+".tif")
		return warpAndRead(src, out, cutlinePath)
	})
	if err != nil {
		return raster.Grid{}, eris.Wrapf(err, "gdalio: align %s", id)
	}

	log.Debug("aligned dataset",
		zap.Int("height", grid.Shape.Height),
		zap.Int("width", grid.Shape.Width),
		zap.Int("nodata", grid.Mask.Count()),
	)
	return grid, nil
}

// WarpSwitches are the gdalwarp switches used to crop a source to a cutline.
func WarpSwitches(cutlinePath string) []string {
	return []string{"-of", "GTiff", "-cutline", cutlinePath, "-crop_to_cutline"}
}

func warpAndRead(src, out, cutlinePath string) (raster.Grid, error) {
	in, err := godal.Open(src)
	if err != nil {
		return raster.Grid{}, eris.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	cropped, err := in.Warp(out, WarpSwitches(cutlinePath))
	if err != nil {
		return raster.Grid{}, eris.Wrapf(err, "warp %s", src)
	}
	defer func() { _ = cropped.Close() }()

	return ReadGrid(cropped)
}

// ReadGrid reads band 1 of ds as a grid with its geotransform and projection.
func ReadGrid(ds *godal.Dataset) (raster.Grid, error) {
	st := ds.Structure()
	if st.NBands < 1 {
		return raster.Grid{}, eris.New("dataset has no bands")
	}
	shape := raster.Shape{Height: st.SizeY, Width: st.SizeX}

	values := make([]float64, shape.Len())
	if err := ds.Bands()[0].Read(0, 0, values, st.SizeX, st.SizeY); err != nil {
		return raster.Grid{}, eris.Wrap(err, "read band 1")
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return raster.Grid{}, eris.Wrap(err, "read geotransform")
	}

	return raster.NewGrid(shape, values, raster.GeoRef{
		GeoTransform: gt,
		Projection:   strings.TrimSpace(ds.Projection()),
	})
}
