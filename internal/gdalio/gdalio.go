// Package gdalio adapts GDAL (through godal) to the raster pipeline: it crops
// source rasters to the target cutline and writes the encoded result as a
// GeoTIFF.
package gdalio

import (
	"sync"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

// Register registers all GDAL drivers once per process.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}
