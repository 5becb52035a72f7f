package geodesy

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/Adps75/irrigation-editor/pkg/geo"
)

// MeanEarthRadiusM is the IUGG mean Earth radius.
const MeanEarthRadiusM = 6371008.8

// GreatCircleDistance returns the spherical surface distance in meters.
func GreatCircleDistance(a, b geo.LatLng) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lng)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return la.Distance(lb).Radians() * MeanEarthRadiusM
}

// SphericalArea returns the spherical surface area in square meters enclosed
// by the ring, whatever its winding. Fewer than 3 points yield 0.
func SphericalArea(ring []geo.LatLng) float64 {
	if len(ring) < 3 {
		return 0
	}
	pts := make([]s2.Point, 0, len(ring))
	for _, ll := range ring {
		pt := s2.PointFromLatLng(s2.LatLngFromDegrees(ll.Lat, ll.Lng))
		if n := len(pts); n > 0 && pts[n-1] == pt {
			continue
		}
		pts = append(pts, pt)
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return 0
	}
	loop := s2.LoopFromPoints(pts)
	// A clockwise ring describes the complement; take the smaller side.
	loop.Normalize()
	area := loop.Area()
	if area > 2*math.Pi {
		area = 4*math.Pi - area
	}
	return area * MeanEarthRadiusM * MeanEarthRadiusM
}
