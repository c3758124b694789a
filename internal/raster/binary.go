package raster

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
)

// Binary is a {0,1} grid with a no-data mask. It is the type of both
// per-dataset eligibility grids and the combined suitability grid. Masked
// samples always hold 0.
type Binary struct {
	Shape  Shape
	Values []uint8
	Mask   Mask
}

// Ones returns an all-eligible, unmasked grid.
func Ones(shape Shape) Binary {
	values := make([]uint8, shape.Len())
	for i := range values {
		values[i] = 1
	}
	return Binary{Shape: shape, Values: values, Mask: NewMask(shape.Len())}
}

// NewBinary validates and wraps values and mask. Masked samples are zeroed
// in a copy of values.
func NewBinary(shape Shape, values []uint8, mask Mask) (Binary, error) {
	if len(values) != shape.Len() || len(mask) != shape.Len() {
		return Binary{}, eris.Wrapf(model.ErrInvalidInput,
			"raster: binary grid %s with %d values and %d mask entries", shape, len(values), len(mask))
	}
	out := make([]uint8, len(values))
	for i, v := range values {
		if v > 1 {
			return Binary{}, eris.Wrapf(model.ErrInvalidInput, "raster: binary value %d at %d", v, i)
		}
		if !mask[i] {
			out[i] = v
		}
	}
	return Binary{Shape: shape, Values: out, Mask: mask.Clone()}, nil
}

// At returns the value at row, col and whether it is masked.
func (b Binary) At(row, col int) (uint8, bool) {
	i := row*b.Shape.Width + col
	return b.Values[i], b.Mask[i]
}

// Equal reports whether b and o have the same shape, values and mask.
func (b Binary) Equal(o Binary) bool {
	if b.Shape != o.Shape || len(b.Values) != len(o.Values) || len(b.Mask) != len(o.Mask) {
		return false
	}
	for i := range b.Values {
		if b.Values[i] != o.Values[i] || b.Mask[i] != o.Mask[i] {
			return false
		}
	}
	return true
}

// Summary counts samples by class.
func (b Binary) Summary() model.Summary {
	s := model.Summary{Height: b.Shape.Height, Width: b.Shape.Width}
	for i, v := range b.Values {
		switch {
		case b.Mask[i]:
			s.NoData++
		case v == 1:
			s.Suitable++
		default:
			s.Unsuitable++
		}
	}
	return s
}
