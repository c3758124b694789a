package model

import (
	"math"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// CriterionKind names the eligibility semantics of a dataset.
type CriterionKind string

const (
	KindNumerical   CriterionKind = "numerical"
	KindCategorical CriterionKind = "categorical"
)

// Criterion decides whether a single valid sample is eligible. The set of
// implementations is closed: Numerical and Categorical.
type Criterion interface {
	Kind() CriterionKind
	Eligible(v float64) bool
	criterion()
}

// Numerical accepts samples inside the inclusive range [Low, High].
type Numerical struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (Numerical) Kind() CriterionKind { return KindNumerical }

// Eligible reports whether Low <= v <= High.
func (n Numerical) Eligible(v float64) bool { return v >= n.Low && v <= n.High }

func (Numerical) criterion() {}

// Categorical accepts samples whose value is one of Classes.
type Categorical struct {
	classes map[int]struct{}
}

// NewCategorical builds a Categorical criterion from a class list.
func NewCategorical(classes []int) Categorical {
	set := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	return Categorical{classes: set}
}

func (Categorical) Kind() CriterionKind { return KindCategorical }

// Eligible reports whether v is an integral value present in the class set.
func (c Categorical) Eligible(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int cannot hold.
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return false
	}
	_, ok := c.classes[int(v)]
	return ok
}

// Classes returns the class set in ascending order.
func (c Categorical) Classes() []int {
	out := make([]int, 0, len(c.classes))
	for k := range c.classes {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (Categorical) criterion() {}

// DatasetSpec is a validated dataset entry of a suitability request.
type DatasetSpec struct {
	ID        string
	Chosen    bool
	Criterion Criterion
}

// DatasetRequest is the wire form of a dataset entry. The original payloads
// name the dataset with "filename"; "identifier" is accepted as well.
type DatasetRequest struct {
	Identifier string    `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Filename   string    `json:"filename,omitempty" yaml:"filename,omitempty"`
	Type       string    `json:"type" yaml:"type"`
	Chosen     bool      `json:"chosen" yaml:"chosen"`
	Thresholds []float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Classes    []int     `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// ID returns the dataset identifier, preferring Identifier over Filename.
func (d DatasetRequest) ID() string {
	if id := strings.TrimSpace(d.Identifier); id != "" {
		return id
	}
	return strings.TrimSpace(d.Filename)
}

// Spec converts the wire form into a DatasetSpec. The criterion variant is
// chosen here, once: "numerical" selects Numerical and anything else selects
// Categorical.
func (d DatasetRequest) Spec() (DatasetSpec, error) {
	id := d.ID()
	if id == "" {
		return DatasetSpec{}, eris.Wrap(ErrInvalidInput, "dataset: identifier is required")
	}

	spec := DatasetSpec{ID: id, Chosen: d.Chosen}

	if strings.EqualFold(strings.TrimSpace(d.Type), string(KindNumerical)) {
		if len(d.Thresholds) != 2 {
			return DatasetSpec{}, eris.Wrapf(ErrInvalidInput,
				"dataset %s: numerical criterion needs 2 thresholds, got %d", id, len(d.Thresholds))
		}
		low, high := d.Thresholds[0], d.Thresholds[1]
		if math.IsNaN(low) || math.IsNaN(high) || low > high {
			return DatasetSpec{}, eris.Wrapf(ErrInvalidInput,
				"dataset %s: invalid threshold range [%v, %v]", id, low, high)
		}
		spec.Criterion = Numerical{Low: low, High: high}
		return spec, nil
	}

	if len(d.Classes) == 0 {
		return DatasetSpec{}, eris.Wrapf(ErrInvalidInput, "dataset %s: categorical criterion needs classes", id)
	}
	spec.Criterion = NewCategorical(d.Classes)
	return spec, nil
}
