package eligibility

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/raster"
)

func grid(t *testing.T, rows [][]float64) raster.Grid {
	t.Helper()
	g, err := raster.FromRows(rows, raster.GeoRef{})
	require.NoError(t, err)
	return g
}

func TestEvaluate_NumericalInclusive(t *testing.T) {
	g := grid(t, [][]float64{{-1, 0, 5}, {10, 11, 10.5}})
	spec := model.DatasetSpec{ID: "slope", Criterion: model.Numerical{Low: 0, High: 10}}

	out, err := Evaluate(g, spec)
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 1, 1, 1, 0, 0}, out.Values)
	assert.Equal(t, 0, out.Mask.Count())
}

func TestEvaluate_NumericalExample(t *testing.T) {
	g := grid(t, [][]float64{{5, 20}, {-9999, 3}})
	spec := model.DatasetSpec{ID: "A", Criterion: model.Numerical{Low: 0, High: 10}}

	out, err := Evaluate(g, spec)
	require.NoError(t, err)

	assert.Equal(t, []uint8{1, 0, 0, 1}, out.Values)
	assert.Equal(t, raster.Mask{false, false, true, false}, out.Mask)
}

func TestEvaluate_CategoricalExample(t *testing.T) {
	g := grid(t, [][]float64{{1, 1}, {2, 255}})
	spec := model.DatasetSpec{ID: "B", Criterion: model.NewCategorical([]int{1, 2})}

	out, err := Evaluate(g, spec)
	require.NoError(t, err)

	assert.Equal(t, []uint8{1, 1, 1, 0}, out.Values)
	assert.Equal(t, raster.Mask{false, false, false, true}, out.Mask)
}

func TestEvaluate_CategoricalPreservesMask(t *testing.T) {
	g := grid(t, [][]float64{{1, 4, 2}})
	// Mask a sample whose value is a member; it must stay masked and 0.
	g.Mask[2] = true
	spec := model.DatasetSpec{ID: "landcover", Criterion: model.NewCategorical([]int{1, 2})}

	out, err := Evaluate(g, spec)
	require.NoError(t, err)

	assert.Equal(t, []uint8{1, 0, 0}, out.Values)
	assert.Equal(t, raster.Mask{false, false, true}, out.Mask)
	assert.Equal(t, raster.Mask{false, false, true}, g.Mask, "input mask must not be modified")
}

func TestEvaluate_NoDataNeverEligible(t *testing.T) {
	// 255 and -9999 would pass these criteria if they were not masked.
	g := grid(t, [][]float64{{255, -9999, -20000}})

	num, err := Evaluate(g, model.DatasetSpec{ID: "n", Criterion: model.Numerical{Low: -30000, High: 300}})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0}, num.Values)
	assert.Equal(t, 3, num.Mask.Count())

	cat, err := Evaluate(g, model.DatasetSpec{ID: "c", Criterion: model.NewCategorical([]int{255, -9999})})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0}, cat.Values)
	assert.Equal(t, 3, cat.Mask.Count())
}

func TestEvaluate_OutputIsBinary(t *testing.T) {
	g := grid(t, [][]float64{{100, 7, 42, 3}})
	out, err := Evaluate(g, model.DatasetSpec{ID: "x", Criterion: model.Numerical{Low: 5, High: 50}})
	require.NoError(t, err)
	for _, v := range out.Values {
		assert.LessOrEqual(t, v, uint8(1))
	}
}

func TestEvaluate_Errors(t *testing.T) {
	g := grid(t, [][]float64{{1}})

	_, err := Evaluate(g, model.DatasetSpec{ID: "none"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))

	bad := raster.Grid{Shape: raster.Shape{Height: 2, Width: 2}, Values: []float64{1}}
	_, err = Evaluate(bad, model.DatasetSpec{ID: "bad", Criterion: model.Numerical{Low: 0, High: 1}})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}
