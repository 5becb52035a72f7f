// Package geodesy converts geographic coordinates into a planar metric
// space and measures ground distances there.
package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"

	"github.com/Adps75/irrigation-editor/pkg/geo"
)

// EarthRadiusM is the sphere radius used by EPSG:3857 (the WGS 84 semi-major axis).
const EarthRadiusM = 6378137.0

// Kind identifies a supported planar projection.
type Kind string

const (
	// WebMercator is spherical Mercator, EPSG:3857.
	WebMercator Kind = "web_mercator"
	// PlateCarree is the equirectangular projection scaled to meters at the equator.
	PlateCarree Kind = "plate_carree"
)

// ParseKind maps a configuration value to a projection kind. An empty string
// selects WebMercator.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", WebMercator:
		return WebMercator, nil
	case PlateCarree:
		return PlateCarree, nil
	default:
		return "", fmt.Errorf("unknown projection %q (want %q or %q)", s, WebMercator, PlateCarree)
	}
}

// Projector maps geographic coordinates to planar meters. A Projector is
// immutable after construction and safe for concurrent use.
type Projector struct {
	kind Kind
	proj s2.Projection
}

// NewProjector builds a projector of the given kind.
func NewProjector(kind Kind) (*Projector, error) {
	halfWorld := math.Pi * EarthRadiusM
	var proj s2.Projection
	switch kind {
	case WebMercator:
		proj = s2.NewMercatorProjection(halfWorld)
	case PlateCarree:
		proj = s2.NewPlateCarreeProjection(halfWorld)
	default:
		return nil, fmt.Errorf("unknown projection %q", kind)
	}
	return &Projector{kind: kind, proj: proj}, nil
}

// MustProjector is NewProjector for package-level defaults and tests.
func MustProjector(kind Kind) *Projector {
	p, err := NewProjector(kind)
	if err != nil {
		panic(err)
	}
	return p
}

// Kind returns the projection kind.
func (p *Projector) Kind() Kind {
	return p.kind
}

// CRS returns the EPSG identifier of the planar coordinate system.
func (p *Projector) CRS() string {
	if p.kind == WebMercator {
		return "EPSG:3857"
	}
	return "EPSG:32662"
}

// Project converts a geographic coordinate into planar meters. Coordinates
// out of range, and coordinates the projection cannot represent (the
// Mercator poles), return an error.
func (p *Projector) Project(ll geo.LatLng) (geo.Point2D, error) {
	if err := ll.Validate(); err != nil {
		return geo.Point2D{}, err
	}
	r := p.proj.FromLatLng(s2.LatLngFromDegrees(ll.Lat, ll.Lng))
	pt := geo.Pt(r.X, r.Y)
	if !pt.IsFinite() {
		return geo.Point2D{}, fmt.Errorf("%s cannot represent %v", p.kind, ll)
	}
	return pt, nil
}

// ProjectAll projects a sequence of coordinates, stopping at the first failure.
func (p *Projector) ProjectAll(lls []geo.LatLng) ([]geo.Point2D, error) {
	pts := make([]geo.Point2D, len(lls))
	for i, ll := range lls {
		pt, err := p.Project(ll)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts[i] = pt
	}
	return pts, nil
}

// Unproject converts planar meters back to a geographic coordinate.
func (p *Projector) Unproject(pt geo.Point2D) geo.LatLng {
	ll := p.proj.ToLatLng(r2.Point{X: pt.X, Y: pt.Y})
	return geo.LL(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// Distance returns the ground distance in meters between two geographic
// points, measured in the projected plane.
func (p *Projector) Distance(a, b geo.LatLng) (float64, error) {
	pa, err := p.Project(a)
	if err != nil {
		return 0, err
	}
	pb, err := p.Project(b)
	if err != nil {
		return 0, err
	}
	return PlanarDistance(pa, pb), nil
}

// ScaleFactor returns the projection's linear scale at the given latitude:
// projected length divided by true length on the sphere.
func (p *Projector) ScaleFactor(lat float64) float64 {
	if p.kind == WebMercator {
		return 1 / math.Cos(lat*math.Pi/180)
	}
	return 1
}

// PlanarDistance is the Euclidean distance between two projected points.
func PlanarDistance(a, b geo.Point2D) float64 {
	return a.Distance(b)
}
