package validation

import (
	"fmt"
	"math"

	"github.com/Adps75/irrigation-editor/pkg/spec"
)

// ValidateRequest performs request-boundary validation. Errors in the
// returned report are fatal for planning; warnings describe zones that
// degrade to a defined value.
func ValidateRequest(req *spec.Request) *Report {
	r := NewReport()
	if req == nil {
		r.AddError(Result{
			Level:   LevelSchema,
			Kind:    KindMalformedRequest,
			Message: "request is empty",
		})
		return r
	}

	validateSources(req, r)
	validateZones(req, r)
	validateHydraulics(req, r)

	return r
}

func validateSources(req *spec.Request, r *Report) {
	if len(req.WaterSources) == 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Kind:        KindNoWaterSource,
			Message:     "at least one water source is required",
			SpecPath:    "water_sources",
			Expected:    "at least 1 source",
			Suggestions: []string{"Place a water point (tap, well or manifold) on the map"},
		})
		return
	}
	for i, src := range req.WaterSources {
		if err := src.Validate(); err != nil {
			r.AddError(Result{
				Level:       LevelSchema,
				Kind:        KindProjectionFailure,
				Message:     fmt.Sprintf("water_sources[%d]: %v", i, err),
				SpecPath:    fmt.Sprintf("water_sources[%d]", i),
				ActualValue: src,
				Expected:    "lat in [-90,90], lng in [-180,180]",
			})
		}
	}
}

func validateZones(req *spec.Request, r *Report) {
	seen := make(map[int]int, len(req.Zones))
	for i, z := range req.Zones {
		if prev, ok := seen[z.ID]; ok {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("zones[%d] reuses id %d of zones[%d]", i, z.ID, prev),
				SpecPath:    fmt.Sprintf("zones[%d].id", i),
				ZoneIndex:   Zone(i),
				ActualValue: z.ID,
			})
		} else {
			seen[z.ID] = i
		}

		for j, c := range z.Coords {
			if err := c.Validate(); err != nil {
				r.AddError(Result{
					Level:       LevelSchema,
					Kind:        KindProjectionFailure,
					Message:     fmt.Sprintf("zones[%d].coords[%d]: %v", i, j, err),
					SpecPath:    fmt.Sprintf("zones[%d].coords[%d]", i, j),
					ZoneIndex:   Zone(i),
					ActualValue: c,
					Expected:    "lat in [-90,90], lng in [-180,180]",
				})
			}
		}

		if z.IsDegenerate() {
			r.AddWarning(Result{
				Level:       LevelGeometry,
				Kind:        KindInvalidZoneGeometry,
				Message:     fmt.Sprintf("zone %d has %d boundary points; its area is 0 and it gets no pipe, valve or sprinkler", z.ID, len(z.Coords)),
				SpecPath:    fmt.Sprintf("zones[%d].coords", i),
				ZoneIndex:   Zone(i),
				ActualValue: len(z.Coords),
				Expected:    ">= 3 points",
				Suggestions: []string{"Redraw the zone with at least three corners"},
			})
		}
	}

	if len(req.Zones) == 0 {
		r.AddInfo(Result{
			Level:    LevelSchema,
			Message:  "no zones to irrigate; the plan will be empty",
			SpecPath: "zones",
		})
	}
}

func validateHydraulics(req *spec.Request, r *Report) {
	checks := []struct {
		path  string
		value float64
	}{
		{"pressure_bar", req.PressureBar},
		{"fill_time_seconds", req.FillTimeSeconds},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Kind:        KindMalformedRequest,
				Message:     fmt.Sprintf("%s must be a finite non-negative number", c.path),
				SpecPath:    c.path,
				ActualValue: fmt.Sprint(c.value),
				Expected:    ">= 0",
			})
		}
	}
}
