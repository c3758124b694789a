package gdalio

import (
	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/encode"
	"github.com/sells-group/landsuit/internal/model"
)

// Writer writes encoded rasters as Int16 GeoTIFFs.
type Writer struct{}

// NewWriter returns a GeoTIFF writer.
func NewWriter() *Writer {
	Register()
	return &Writer{}
}

// Write creates path with one Int16 band per encoded band, copies the
// geotransform and projection, and sets the no-data value on every band.
func (w *Writer) Write(path string, r *encode.Raster) error {
	if r == nil || len(r.Bands) == 0 {
		return eris.Wrap(model.ErrEncodingFailure, "gdalio: nothing to write")
	}
	width, height := r.Shape.Width, r.Shape.Height

	ds, err := godal.Create(godal.GTiff, path, len(r.Bands), godal.Int16, width, height)
	if err != nil {
		return eris.Wrapf(model.ErrEncodingFailure, "gdalio: create %s: %v", path, err)
	}

	if err := writeDataset(ds, r); err != nil {
		_ = ds.Close()
		return eris.Wrapf(model.ErrEncodingFailure, "gdalio: write %s: %v", path, err)
	}
	if err := ds.Close(); err != nil {
		return eris.Wrapf(model.ErrEncodingFailure, "gdalio: close %s: %v", path, err)
	}
	return nil
}

func writeDataset(ds *godal.Dataset, r *encode.Raster) error {
	if err := ds.SetGeoTransform(r.Ref.GeoTransform); err != nil {
		return eris.Wrap(err, "set geotransform")
	}
	if err := ds.SetProjection(r.Ref.Projection); err != nil {
		return eris.Wrap(err, "set projection")
	}
	bands := ds.Bands()
	for i, data := range r.Bands {
		if len(data) != r.Shape.Len() {
			return eris.Errorf("band %d has %d samples for %s", i+1, len(data), r.Shape)
		}
		if err := bands[i].Write(0, 0, data, r.Shape.Width, r.Shape.Height); err != nil {
			return eris.Wrapf(err, "write band %d", i+1)
		}
		if err := bands[i].SetNoData(float64(r.NoData)); err != nil {
			return eris.Wrapf(err, "set nodata band %d", i+1)
		}
	}
	return nil
}
