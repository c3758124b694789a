package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Request is a suitability request: the dataset list and the target area
// as raw GeoJSON.
type Request struct {
	Datasets []DatasetRequest `json:"datasets"`
	Target   json.RawMessage  `json:"target"`
}

// DecodeRequest parses a JSON request body.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, eris.Wrapf(ErrInvalidInput, "request: decode body: %v", err)
	}
	return &req, nil
}

// ChosenSpecs validates and returns the chosen datasets in request order.
// Entries that are not chosen are skipped without validation.
func (r *Request) ChosenSpecs() ([]DatasetSpec, error) {
	var specs []DatasetSpec
	seen := make(map[string]bool, len(r.Datasets))
	for i, d := range r.Datasets {
		if !d.Chosen {
			continue
		}
		spec, err := d.Spec()
		if err != nil {
			return nil, eris.Wrapf(err, "request: dataset %d", i)
		}
		if seen[spec.ID] {
			return nil, eris.Wrapf(ErrInvalidInput, "request: dataset %s chosen more than once", spec.ID)
		}
		seen[spec.ID] = true
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, eris.Wrap(ErrInvalidInput, "request: no dataset chosen")
	}
	return specs, nil
}
