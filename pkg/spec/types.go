package spec

import "github.com/Adps75/irrigation-editor/pkg/geo"

// Request is one planning request: the zones to irrigate, the water sources
// that may feed them, and hydraulic parameters that are echoed back.
type Request struct {
	Address         string       `json:"address,omitempty" yaml:"address"`
	Zoom            int          `json:"zoom,omitempty" yaml:"zoom"`
	Zones           []Zone       `json:"zones" yaml:"zones"`
	WaterSources    []geo.LatLng `json:"water_sources" yaml:"water_sources"`
	PressureBar     float64      `json:"pressure_bar" yaml:"pressure_bar"`
	FillTimeSeconds float64      `json:"fill_time_seconds" yaml:"fill_time_seconds"`

	// Diagnostics asks for the validation report to be included in the plan
	// even when nothing went wrong.
	Diagnostics bool `json:"diagnostics,omitempty" yaml:"diagnostics"`
}

// Zone is an irrigation zone drawn on the map.
type Zone struct {
	ID     int          `json:"id" yaml:"id"`
	Coords []geo.LatLng `json:"coords" yaml:"coords"`
}

// IsDegenerate reports whether the boundary has too few points to enclose an area.
func (z Zone) IsDegenerate() bool {
	return len(z.Coords) < 3
}

// HydraulicInfo carries the hydraulic parameters through to the plan untouched.
type HydraulicInfo struct {
	PressureBar     float64 `json:"pressure_bar"`
	FillTimeSeconds float64 `json:"fill_time_seconds"`
}

// Hydraulics returns the request's pass-through hydraulic parameters.
func (r *Request) Hydraulics() HydraulicInfo {
	return HydraulicInfo{PressureBar: r.PressureBar, FillTimeSeconds: r.FillTimeSeconds}
}
