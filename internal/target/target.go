// Package target parses and normalises the target area used as the crop
// cutline for every dataset.
package target

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/landsuit/internal/model"
)

// Area is a non-empty 2-D multipolygon.
type Area struct {
	geom *geom.MultiPolygon
}

// NewArea wraps a polygon or multipolygon. Other geometry types and empty
// geometries are rejected with model.ErrInvalidInput.
func NewArea(g geom.T) (*Area, error) {
	mp := geom.NewMultiPolygon(geom.XY)
	if err := appendPolygons(mp, g); err != nil {
		return nil, err
	}
	if mp.NumPolygons() == 0 || mp.Empty() {
		return nil, eris.Wrap(model.ErrInvalidInput, "target: empty target area")
	}
	return &Area{geom: mp}, nil
}

// Geometry returns the area as a multipolygon.
func (a *Area) Geometry() *geom.MultiPolygon { return a.geom }

// Bounds returns the bounding box of the area.
func (a *Area) Bounds() *geom.Bounds { return a.geom.Bounds() }

// NumPolygons returns the number of polygons in the area.
func (a *Area) NumPolygons() int { return a.geom.NumPolygons() }

// CutlineGeoJSON renders the area as a single-feature FeatureCollection,
// the form GDAL accepts as a cutline datasource.
func (a *Area) CutlineGeoJSON() ([]byte, error) {
	fc := geojson.FeatureCollection{
		Features: []*geojson.Feature{{Geometry: a.geom}},
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "target: marshal cutline")
	}
	return data, nil
}

// appendPolygons pushes every polygon of g into mp, dropping Z/M so mixed
// inputs still share a layout.
func appendPolygons(mp *geom.MultiPolygon, g geom.T) error {
	switch v := g.(type) {
	case nil:
		return nil
	case *geom.Polygon:
		if v == nil || v.Empty() {
			return nil
		}
		return pushPolygon(mp, v)
	case *geom.MultiPolygon:
		if v == nil {
			return nil
		}
		for i := 0; i < v.NumPolygons(); i++ {
			p := v.Polygon(i)
			if p.Empty() {
				continue
			}
			if err := pushPolygon(mp, p); err != nil {
				return err
			}
		}
		return nil
	case *geom.GeometryCollection:
		if v == nil {
			return nil
		}
		for _, child := range v.Geoms() {
			if err := appendPolygons(mp, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return eris.Wrapf(model.ErrInvalidInput, "target: unsupported geometry %T", g)
	}
}

func pushPolygon(mp *geom.MultiPolygon, p *geom.Polygon) error {
	flat := p
	if p.Layout() != geom.XY {
		var err error
		flat, err = toXY(p)
		if err != nil {
			return err
		}
	}
	if err := mp.Push(flat); err != nil {
		return eris.Wrapf(model.ErrInvalidInput, "target: push polygon: %v", err)
	}
	return nil
}

func toXY(p *geom.Polygon) (*geom.Polygon, error) {
	out := geom.NewPolygon(geom.XY)
	for i := 0; i < p.NumLinearRings(); i++ {
		ring := p.LinearRing(i)
		coords := make([]geom.Coord, 0, ring.NumCoords())
		for j := 0; j < ring.NumCoords(); j++ {
			c := ring.Coord(j)
			coords = append(coords, geom.Coord{c.X(), c.Y()})
		}
		lr, err := geom.NewLinearRing(geom.XY).SetCoords(coords)
		if err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "target: ring %d: %v", i, err)
		}
		if err := out.Push(lr); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "target: ring %d: %v", i, err)
		}
	}
	return out, nil
}
