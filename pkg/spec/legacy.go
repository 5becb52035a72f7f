package spec

import (
	"encoding/json"

	"github.com/Adps75/irrigation-editor/pkg/geo"
)

// legacyFields are the field names sent by the first version of the map
// client. They are read only when the current name is absent.
type legacyFields struct {
	PointsEau []geo.LatLng `json:"points_eau"`
	Pression  *float64     `json:"pression"`
	FillTime  *float64     `json:"fill_time"`
}

// UnmarshalJSON decodes a request, accepting the legacy field names
// points_eau, pression and fill_time.
func (r *Request) UnmarshalJSON(b []byte) error {
	type plain Request
	var (
		req    plain
		legacy legacyFields
		raw    map[string]json.RawMessage
	)
	if err := json.Unmarshal(b, &req); err != nil {
		return err
	}
	if err := json.Unmarshal(b, &legacy); err != nil {
		return err
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if _, ok := raw["water_sources"]; !ok && legacy.PointsEau != nil {
		req.WaterSources = legacy.PointsEau
	}
	if _, ok := raw["pressure_bar"]; !ok && legacy.Pression != nil {
		req.PressureBar = *legacy.Pression
	}
	if _, ok := raw["fill_time_seconds"]; !ok && legacy.FillTime != nil {
		req.FillTimeSeconds = *legacy.FillTime
	}
	*r = Request(req)
	return nil
}
