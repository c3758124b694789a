// Package eligibility turns an aligned raster into a per-dataset {0,1}
// eligibility grid.
package eligibility

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/raster"
)

// Evaluate applies the criterion of spec to every valid sample of g. The
// result mask is the grid mask unioned with the no-data rule; masked samples
// are 0 and never evaluated.
func Evaluate(g raster.Grid, spec model.DatasetSpec) (raster.Binary, error) {
	if spec.Criterion == nil {
		return raster.Binary{}, eris.Wrapf(model.ErrInvalidInput, "eligibility: dataset %s has no criterion", spec.ID)
	}
	n := g.Shape.Len()
	if len(g.Values) != n || (g.Mask != nil && len(g.Mask) != n) {
		return raster.Binary{}, eris.Wrapf(model.ErrInvalidInput,
			"eligibility: dataset %s grid %s has %d values and %d mask entries", spec.ID, g.Shape, len(g.Values), len(g.Mask))
	}

	values := make([]uint8, n)
	mask := raster.NewMask(n)
	for i, v := range g.Values {
		if (g.Mask != nil && g.Mask[i]) || raster.IsNoData(v) {
			mask[i] = true
			continue
		}
		if spec.Criterion.Eligible(v) {
			values[i] = 1
		}
	}
	return raster.Binary{Shape: g.Shape, Values: values, Mask: mask}, nil
}
