// Package raster holds the in-memory grid types shared by the eligibility,
// combine and encode stages.
package raster

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
)

// NoDataValue is the sentinel written for masked samples, and any sample at
// or below it is treated as no-data on input.
const NoDataValue = -9999

// NoDataByte is the byte-raster fill value that is also treated as no-data.
const NoDataByte = 255

// IsNoData reports whether a raw sample is a no-data value.
func IsNoData(v float64) bool {
	return v <= NoDataValue || v == NoDataByte || math.IsNaN(v)
}

// Shape is the pixel size of a grid.
type Shape struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Len is the number of samples.
func (s Shape) Len() int { return s.Height * s.Width }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Height, s.Width) }

// GeoRef is the spatial reference of a grid.
type GeoRef struct {
	GeoTransform [6]float64 `json:"geotransform"`
	Projection   string     `json:"projection"`
}

// Validate checks that the reference can georeference an output raster.
func (g GeoRef) Validate() error {
	for i, v := range g.GeoTransform {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return eris.Errorf("raster: geotransform[%d] is not finite", i)
		}
	}
	if g.GeoTransform[1] == 0 || g.GeoTransform[5] == 0 {
		return eris.Errorf("raster: geotransform has zero pixel size (%v, %v)", g.GeoTransform[1], g.GeoTransform[5])
	}
	if g.Projection == "" {
		return eris.New("raster: projection is empty")
	}
	return nil
}

// Grid is a single-band raster of samples in row-major order.
type Grid struct {
	Shape  Shape
	Values []float64
	Mask   Mask
	Ref    GeoRef
}

// NewGrid builds a grid from row-major samples and derives the no-data mask
// from the values.
func NewGrid(shape Shape, values []float64, ref GeoRef) (Grid, error) {
	if shape.Height <= 0 || shape.Width <= 0 {
		return Grid{}, eris.Wrapf(model.ErrInvalidInput, "raster: invalid shape %s", shape)
	}
	if len(values) != shape.Len() {
		return Grid{}, eris.Wrapf(model.ErrInvalidInput, "raster: %d samples for shape %s", len(values), shape)
	}
	mask := NewMask(shape.Len())
	for i, v := range values {
		if IsNoData(v) {
			mask[i] = true
		}
	}
	return Grid{Shape: shape, Values: values, Mask: mask, Ref: ref}, nil
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows(rows [][]float64, ref GeoRef) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, eris.Wrap(model.ErrInvalidInput, "raster: no rows")
	}
	shape := Shape{Height: len(rows), Width: len(rows[0])}
	values := make([]float64, 0, shape.Len())
	for i, r := range rows {
		if len(r) != shape.Width {
			return Grid{}, eris.Wrapf(model.ErrInvalidInput, "raster: row %d has %d samples, want %d", i, len(r), shape.Width)
		}
		values = append(values, r...)
	}
	return NewGrid(shape, values, ref)
}

// At returns the sample at row, col.
func (g Grid) At(row, col int) float64 { return g.Values[row*g.Shape.Width+col] }
