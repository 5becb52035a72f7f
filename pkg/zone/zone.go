// Package zone turns geographic zone boundaries into projected geometry:
// surface area and area-weighted centroid per zone.
package zone

import (
	"fmt"

	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/spec"
)

// MinVertices is the smallest boundary that encloses an area.
const MinVertices = 3

// Geometry is the projected shape of one input zone. Index is the zone's
// position in the request; degenerate zones keep their slot so results stay
// index-aligned with the input.
type Geometry struct {
	Index      int
	ID         int
	Degenerate bool

	Boundary  geo.Polygon // projected vertices, input order
	AreaM2    float64     // planar area, >= 0
	Perimeter float64

	// Centroid and Location are only meaningful when Degenerate is false.
	Centroid geo.Point2D
	Location geo.LatLng

	// SphericalAreaM2 is the same boundary measured on the sphere, for
	// comparing against the projected area.
	SphericalAreaM2 float64
}

// HasCentroid reports whether the zone produces a network node.
func (g Geometry) HasCentroid() bool {
	return !g.Degenerate
}

// Distortion is the ratio of projected area to spherical area, or 0 when
// either is zero.
func (g Geometry) Distortion() float64 {
	if g.AreaM2 == 0 || g.SphericalAreaM2 == 0 {
		return 0
	}
	return g.AreaM2 / g.SphericalAreaM2
}

// AnalyzeZone projects one zone and computes its area and centroid. Zones
// with fewer than MinVertices points short-circuit to area 0 without a
// centroid; projection failures are returned as errors.
func AnalyzeZone(p *geodesy.Projector, index int, z spec.Zone) (Geometry, error) {
	g := Geometry{Index: index, ID: z.ID}
	if len(z.Coords) < MinVertices {
		g.Degenerate = true
		return g, nil
	}

	pts, err := p.ProjectAll(z.Coords)
	if err != nil {
		return Geometry{}, fmt.Errorf("zone %d (id %d): %w", index, z.ID, err)
	}
	g.Boundary = geo.NewPolygon(pts...)
	g.AreaM2 = g.Boundary.Area()
	g.Perimeter = g.Boundary.Perimeter()
	g.Centroid = g.Boundary.Centroid()
	g.Location = p.Unproject(g.Centroid)
	g.SphericalAreaM2 = geodesy.SphericalArea(z.Coords)
	return g, nil
}

// Analyze runs AnalyzeZone over every zone, in input order.
func Analyze(p *geodesy.Projector, zones []spec.Zone) ([]Geometry, error) {
	out := make([]Geometry, len(zones))
	for i, z := range zones {
		g, err := AnalyzeZone(p, i, z)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// Areas returns the zone areas index-aligned with the input, 0 for
// degenerate zones.
func Areas(geoms []Geometry) []float64 {
	areas := make([]float64, len(geoms))
	for i, g := range geoms {
		areas[i] = g.AreaM2
	}
	return areas
}

// WithCentroid returns the zones that take part in the pipe network.
func WithCentroid(geoms []Geometry) []Geometry {
	out := make([]Geometry, 0, len(geoms))
	for _, g := range geoms {
		if g.HasCentroid() {
			out = append(out, g)
		}
	}
	return out
}

// TotalArea sums all zone areas.
func TotalArea(geoms []Geometry) float64 {
	total := 0.0
	for _, g := range geoms {
		total += g.AreaM2
	}
	return total
}
