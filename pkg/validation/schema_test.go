package validation

import (
	"math"
	"testing"

	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/spec"
)

func validRequest() *spec.Request {
	return &spec.Request{
		Zones: []spec.Zone{
			{ID: 1, Coords: []geo.LatLng{geo.LL(0, 0), geo.LL(0, 0.001), geo.LL(0.001, 0.001), geo.LL(0.001, 0)}},
			{ID: 2, Coords: []geo.LatLng{geo.LL(0.002, 0), geo.LL(0.002, 0.001), geo.LL(0.003, 0.0005)}},
		},
		WaterSources:    []geo.LatLng{geo.LL(0, 0)},
		PressureBar:     3.5,
		FillTimeSeconds: 120,
	}
}

func TestValidateRequestValid(t *testing.T) {
	r := ValidateRequest(validRequest())
	if !r.Valid {
		t.Errorf("expected valid report, got %d errors: %v", len(r.Errors), r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", r.Warnings)
	}
}

func TestValidateRequestNil(t *testing.T) {
	r := ValidateRequest(nil)
	if r.Valid {
		t.Error("expected invalid report for nil request")
	}
	if r.FirstErrorKind() != KindMalformedRequest {
		t.Errorf("kind = %q, want %q", r.FirstErrorKind(), KindMalformedRequest)
	}
}

func TestValidateRequestNoWaterSource(t *testing.T) {
	req := validRequest()
	req.WaterSources = nil
	r := ValidateRequest(req)
	if r.Valid {
		t.Error("expected invalid report without water sources")
	}
	assertHasError(t, r, "water_sources")
	if r.FirstErrorKind() != KindNoWaterSource {
		t.Errorf("kind = %q, want %q", r.FirstErrorKind(), KindNoWaterSource)
	}
}

func TestValidateRequestSourceOutOfRange(t *testing.T) {
	req := validRequest()
	req.WaterSources = append(req.WaterSources, geo.LL(95, 0))
	r := ValidateRequest(req)
	if r.Valid {
		t.Error("expected invalid report for latitude 95")
	}
	assertHasError(t, r, "water_sources[1]")
	if !r.HasKind(KindProjectionFailure) {
		t.Error("expected projection_failure kind")
	}
}

func TestValidateRequestZoneCoordOutOfRange(t *testing.T) {
	req := validRequest()
	req.Zones[1].Coords[2] = geo.LL(0, 181)
	r := ValidateRequest(req)
	if r.Valid {
		t.Error("expected invalid report for longitude 181")
	}
	assertHasError(t, r, "zones[1].coords[2]")
}

func TestValidateRequestDegenerateZoneIsWarning(t *testing.T) {
	req := validRequest()
	req.Zones = append(req.Zones, spec.Zone{ID: 3, Coords: []geo.LatLng{geo.LL(0, 0), geo.LL(0, 1)}})
	r := ValidateRequest(req)
	if !r.Valid {
		t.Errorf("degenerate zone must not invalidate the request: %v", r.Errors)
	}
	if !r.HasKind(KindInvalidZoneGeometry) {
		t.Fatal("expected invalid_zone_geometry warning")
	}
	w := r.Warnings[0]
	if w.ZoneIndex == nil || *w.ZoneIndex != 2 {
		t.Errorf("warning zone index = %v, want 2", w.ZoneIndex)
	}
}

func TestValidateRequestDuplicateZoneID(t *testing.T) {
	req := validRequest()
	req.Zones[1].ID = 1
	r := ValidateRequest(req)
	if !r.Valid {
		t.Error("duplicate ids are a warning, not an error")
	}
	if len(r.Warnings) != 1 || r.Warnings[0].SpecPath != "zones[1].id" {
		t.Errorf("expected one warning at zones[1].id, got %v", r.Warnings)
	}
}

func TestValidateRequestHydraulics(t *testing.T) {
	tests := []struct {
		name     string
		pressure float64
		fill     float64
		path     string
	}{
		{"negative pressure", -1, 10, "pressure_bar"},
		{"nan fill time", 2, math.NaN(), "fill_time_seconds"},
		{"infinite pressure", math.Inf(1), 10, "pressure_bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.PressureBar = tt.pressure
			req.FillTimeSeconds = tt.fill
			r := ValidateRequest(req)
			if r.Valid {
				t.Error("expected invalid report")
			}
			assertHasError(t, r, tt.path)
		})
	}
}

func TestValidateRequestNoZones(t *testing.T) {
	req := validRequest()
	req.Zones = nil
	r := ValidateRequest(req)
	if !r.Valid {
		t.Errorf("a request without zones is valid: %v", r.Errors)
	}
	if len(r.Info) != 1 {
		t.Errorf("expected one info entry, got %d", len(r.Info))
	}
}

func assertHasError(t *testing.T, r *Report, specPath string) {
	t.Helper()
	for _, e := range r.Errors {
		if e.SpecPath == specPath {
			return
		}
	}
	t.Errorf("expected error with spec_path %q, got errors: %v", specPath, r.Errors)
}
