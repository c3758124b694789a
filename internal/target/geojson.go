package target

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/landsuit/internal/model"
)

// ParseGeoJSON accepts a GeoJSON geometry, Feature or FeatureCollection and
// collects all of its polygons into one Area.
func ParseGeoJSON(raw []byte) (*Area, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, eris.Wrap(model.ErrInvalidInput, "target: empty target area")
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, eris.Wrapf(model.ErrInvalidInput, "target: decode geojson: %v", err)
	}

	switch head.Type {
	case "":
		return nil, eris.Wrap(model.ErrInvalidInput, "target: geojson has no type")
	case "Feature":
		var f geojson.Feature
		if err := f.UnmarshalJSON(raw); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "target: decode feature: %v", err)
		}
		return NewArea(f.Geometry)
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := fc.UnmarshalJSON(raw); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "target: decode feature collection: %v", err)
		}
		gc := geom.NewGeometryCollection()
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if err := gc.Push(f.Geometry); err != nil {
				return nil, eris.Wrapf(model.ErrInvalidInput, "target: collect feature: %v", err)
			}
		}
		return NewArea(gc)
	default:
		var g geom.T
		if err := geojson.Unmarshal(raw, &g); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "target: decode geometry: %v", err)
		}
		return NewArea(g)
	}
}
