// Package combine folds per-dataset eligibility grids into one suitability
// grid. The fold is an elementwise product (logical AND) with a mask union,
// so its result does not depend on input order.
package combine

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/raster"
)

// Layer is an eligibility grid tagged with the dataset it came from.
type Layer struct {
	DatasetID string
	Grid      raster.Binary
}

// CheckAlignment verifies that every layer has the shape of the first one
// and returns that shape.
func CheckAlignment(layers []Layer) (raster.Shape, error) {
	if len(layers) == 0 {
		return raster.Shape{}, eris.Wrap(model.ErrInvalidInput, "combine: no layers")
	}
	want := layers[0].Grid.Shape
	var mismatched []string
	for _, l := range layers[1:] {
		if l.Grid.Shape != want {
			mismatched = append(mismatched, l.DatasetID+" is "+l.Grid.Shape.String())
		}
	}
	if len(mismatched) > 0 {
		return raster.Shape{}, eris.Wrapf(model.ErrAlignmentMismatch,
			"combine: %s is %s but %s", layers[0].DatasetID, want, strings.Join(mismatched, ", "))
	}
	return want, nil
}

// Combine returns a new grid holding a*b with the union of both masks.
// Neither input is modified.
func Combine(a, b raster.Binary) (raster.Binary, error) {
	if a.Shape != b.Shape {
		return raster.Binary{}, eris.Wrapf(model.ErrAlignmentMismatch, "combine: %s vs %s", a.Shape, b.Shape)
	}
	n := a.Shape.Len()
	for _, g := range []raster.Binary{a, b} {
		if len(g.Values) != n || len(g.Mask) != n {
			return raster.Binary{}, eris.Wrapf(model.ErrAlignmentMismatch,
				"combine: %s grid with %d values and %d mask entries", g.Shape, len(g.Values), len(g.Mask))
		}
	}
	values := make([]uint8, n)
	mask := a.Mask.Union(b.Mask)
	for i := 0; i < n; i++ {
		if mask[i] {
			continue
		}
		values[i] = a.Values[i] * b.Values[i]
	}
	return raster.Binary{Shape: a.Shape, Values: values, Mask: mask}, nil
}

// Fold left-folds the layers with Combine, seeded with an all-ones grid of
// the common shape.
func Fold(layers []Layer) (raster.Binary, error) {
	shape, err := CheckAlignment(layers)
	if err != nil {
		return raster.Binary{}, err
	}
	acc := raster.Ones(shape)
	for _, l := range layers {
		acc, err = Combine(acc, l.Grid)
		if err != nil {
			return raster.Binary{}, eris.Wrapf(err, "combine: fold %s", l.DatasetID)
		}
	}
	return acc, nil
}
