// Package encode turns a suitability grid into a georeferenced single-band
// Int16 raster.
package encode

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/raster"
)

// NoData is the no-data value of the encoded band.
const NoData int16 = raster.NoDataValue

// Raster is an encoded output raster. Bands holds row-major Int16 samples;
// a 2-D grid always encodes to exactly one band.
type Raster struct {
	Shape  raster.Shape
	Bands  [][]int16
	NoData int16
	Ref    raster.GeoRef
}

// Writer persists an encoded raster to path.
type Writer interface {
	Write(path string, r *Raster) error
}

// Fill converts a binary grid to Int16 samples, writing NoData at masked
// positions.
func Fill(b raster.Binary) []int16 {
	out := make([]int16, len(b.Values))
	for i, v := range b.Values {
		if b.Mask[i] {
			out[i] = NoData
			continue
		}
		out[i] = int16(v)
	}
	return out
}

// Encode fills the suitability grid and copies the geotransform and
// projection of ref verbatim.
func Encode(b raster.Binary, ref raster.GeoRef) (*Raster, error) {
	if err := ref.Validate(); err != nil {
		return nil, eris.Wrapf(model.ErrEncodingFailure, "encode: reference: %v", err)
	}
	if b.Shape.Len() == 0 {
		return nil, eris.Wrapf(model.ErrEncodingFailure, "encode: empty grid %s", b.Shape)
	}
	if len(b.Values) != b.Shape.Len() || len(b.Mask) != b.Shape.Len() {
		return nil, eris.Wrapf(model.ErrEncodingFailure,
			"encode: grid %s has %d values and %d mask entries", b.Shape, len(b.Values), len(b.Mask))
	}
	return &Raster{
		Shape:  b.Shape,
		Bands:  [][]int16{Fill(b)},
		NoData: NoData,
		Ref:    ref,
	}, nil
}

// Rows returns band i as rows, mostly for inspection and tests.
func (r *Raster) Rows(band int) [][]int16 {
	rows := make([][]int16, r.Shape.Height)
	for y := range rows {
		rows[y] = r.Bands[band][y*r.Shape.Width : (y+1)*r.Shape.Width]
	}
	return rows
}
