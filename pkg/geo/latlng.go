package geo

import (
	"fmt"
	"math"
)

// LatLng is a geographic coordinate in decimal degrees (WGS 84).
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// LL is a shorthand constructor for LatLng.
func LL(lat, lng float64) LatLng {
	return LatLng{Lat: lat, Lng: lng}
}

// Validate returns an error when the coordinate is not a number or lies
// outside [-90,90] x [-180,180].
func (ll LatLng) Validate() error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) {
		return fmt.Errorf("coordinate (%v, %v) is not a number", ll.Lat, ll.Lng)
	}
	if ll.Lat < -90 || ll.Lat > 90 {
		return fmt.Errorf("latitude %v outside [-90, 90]", ll.Lat)
	}
	if ll.Lng < -180 || ll.Lng > 180 {
		return fmt.Errorf("longitude %v outside [-180, 180]", ll.Lng)
	}
	return nil
}

func (ll LatLng) String() string {
	return fmt.Sprintf("(%.7f, %.7f)", ll.Lat, ll.Lng)
}
