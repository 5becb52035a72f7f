package plan

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/spec"
	"github.com/Adps75/irrigation-editor/pkg/validation"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func newPlanner(t *testing.T) *Planner {
	t.Helper()
	p, err := NewPlanner(Config{})
	if err != nil {
		t.Fatalf("NewPlanner: %v", err)
	}
	return p
}

// squareRequest is a 0.001° square at the equator fed from its corner.
func squareRequest() *spec.Request {
	return &spec.Request{
		Zones: []spec.Zone{{ID: 1, Coords: []geo.LatLng{
			geo.LL(0, 0), geo.LL(0, 0.001), geo.LL(0.001, 0.001), geo.LL(0.001, 0),
		}}},
		WaterSources:    []geo.LatLng{geo.LL(0, 0)},
		PressureBar:     3.5,
		FillTimeSeconds: 120,
	}
}

func square(id int, lat, lng, side float64) spec.Zone {
	return spec.Zone{ID: id, Coords: []geo.LatLng{
		geo.LL(lat, lng), geo.LL(lat, lng+side), geo.LL(lat+side, lng+side), geo.LL(lat+side, lng),
	}}
}

func TestGenerateSquareScenario(t *testing.T) {
	out, err := newPlanner(t).Generate(squareRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	side := 0.001 * math.Pi / 180 * 6378137
	if len(out.ZoneAreas) != 1 || !approxEqual(out.ZoneAreas[0], side*side, 1) {
		t.Errorf("zone_areas = %v, want [%f]", out.ZoneAreas, side*side)
	}
	if out.ZoneAreas[0] < 1.2e4 || out.ZoneAreas[0] > 1.3e4 {
		t.Errorf("area %f outside the expected ~1.24e4 m²", out.ZoneAreas[0])
	}
	if len(out.Pipes) != 1 || len(out.Valves) != 1 || len(out.Sprinklers) != 1 {
		t.Fatalf("pipes/valves/sprinklers = %d/%d/%d, want 1/1/1",
			len(out.Pipes), len(out.Valves), len(out.Sprinklers))
	}

	centroid := geo.LL(0.0005, 0.0005)
	for name, loc := range map[string]geo.LatLng{
		"valve":     out.Valves[0].Location,
		"sprinkler": out.Sprinklers[0].Location,
		"pipe end":  out.Pipes[0].End,
	} {
		if !approxEqual(loc.Lat, centroid.Lat, 1e-9) || !approxEqual(loc.Lng, centroid.Lng, 1e-9) {
			t.Errorf("%s at %v, want centroid %v", name, loc, centroid)
		}
	}

	pipe := out.Pipes[0]
	if pipe.ID != "pipe_000" || pipe.PipeType != PipePE25 {
		t.Errorf("pipe = %+v", pipe)
	}
	if !approxEqual(pipe.LengthM, side/2*math.Sqrt2, 1e-3) {
		t.Errorf("pipe length %f, want %f", pipe.LengthM, side/2*math.Sqrt2)
	}
	if pipe.Start != geo.LL(0, 0) {
		t.Errorf("pipe starts at %v, want the source", pipe.Start)
	}
	if !approxEqual(out.TotalPipeLengthM, pipe.LengthM, 1e-12) {
		t.Errorf("total length %f, pipe %f", out.TotalPipeLengthM, pipe.LengthM)
	}

	if out.Valves[0].Type != Valve24VAC || out.Sprinklers[0].RadiusM != DefaultSprinklerRadiusM {
		t.Errorf("equipment defaults not applied: %+v %+v", out.Valves[0], out.Sprinklers[0])
	}
	wantCoverage := math.Pi * 25 / (side * side)
	if !approxEqual(out.Sprinklers[0].Coverage, wantCoverage, 1e-4) {
		t.Errorf("coverage = %f, want ~%f", out.Sprinklers[0].Coverage, wantCoverage)
	}

	if diff := cmp.Diff(spec.HydraulicInfo{PressureBar: 3.5, FillTimeSeconds: 120}, out.HydraulicInfo); diff != "" {
		t.Errorf("hydraulic info mismatch (-want +got):\n%s", diff)
	}
	if out.CoordinateSystem != OutputCRS || out.ProjectedCRS != "EPSG:3857" {
		t.Errorf("crs = %q / %q", out.CoordinateSystem, out.ProjectedCRS)
	}
	if out.Diagnostics != nil {
		t.Error("diagnostics should be omitted unless requested")
	}
	if out.Materials == nil || out.Materials.Summary.Total <= 0 {
		t.Errorf("materials = %+v", out.Materials)
	}
}

func TestGenerateTwoZonesTwoSources(t *testing.T) {
	req := &spec.Request{
		Zones: []spec.Zone{
			square(10, 0.0001, 0.0001, 0.0002),
			square(20, 0.0001, 0.0101, 0.0002),
		},
		WaterSources: []geo.LatLng{geo.LL(0, 0), geo.LL(0, 0.01)},
	}
	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Pipes) != 2 {
		t.Fatalf("pipes = %d, want 2", len(out.Pipes))
	}

	sum := 0.0
	for _, p := range out.Pipes {
		sum += p.LengthM
		want := p.ZoneIndex
		if p.SourceIndex != want {
			t.Errorf("zone %d fed from source %d, want %d", p.ZoneIndex, p.SourceIndex, want)
		}
		if len(p.ConnectedTo) != 0 {
			t.Errorf("%s shares a node with %v; separate trees expected", p.ID, p.ConnectedTo)
		}
	}
	if !approxEqual(sum, out.TotalPipeLengthM, 1e-9) {
		t.Errorf("pipe lengths sum to %f, total %f", sum, out.TotalPipeLengthM)
	}

	for i, z := range out.Zones {
		if !z.Connected || z.SourceIndex == nil || *z.SourceIndex != i {
			t.Errorf("zone summary %d = %+v", i, z)
		}
	}
}

func TestGenerateStarSharesSourceNode(t *testing.T) {
	req := &spec.Request{
		Zones: []spec.Zone{
			square(1, 0.0001, 0.0001, 0.0001),
			square(2, -0.0002, 0.0001, 0.0001),
			square(3, 0.0001, -0.0002, 0.0001),
		},
		WaterSources: []geo.LatLng{geo.LL(0, 0)},
	}
	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Pipes) != 3 {
		t.Fatalf("pipes = %d, want 3", len(out.Pipes))
	}
	for _, p := range out.Pipes {
		if p.FromNode != 0 {
			t.Errorf("%s starts at node %d, want the source", p.ID, p.FromNode)
		}
		if len(p.ConnectedTo) != 2 {
			t.Errorf("%s connected to %v, want the other two pipes", p.ID, p.ConnectedTo)
		}
	}
	if diff := cmp.Diff([]string{"pipe_001", "pipe_002"}, out.Pipes[0].ConnectedTo); diff != "" {
		t.Errorf("connected_to mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCoincidentSourcesLabelZones(t *testing.T) {
	first := squareRequest()
	base, err := newPlanner(t).Generate(first)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c := *base.Zones[0].Centroid

	req := &spec.Request{
		Zones: []spec.Zone{
			first.Zones[0],
			square(7, 0.01, 0.01, 0.001),
		},
		WaterSources: []geo.LatLng{c, c, c},
	}
	for trial := 0; trial < 50; trial++ {
		out, err := newPlanner(t).Generate(req)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(out.Pipes) != 2 {
			t.Fatalf("pipes = %d, want 2", len(out.Pipes))
		}
		seen := map[int]bool{}
		for _, p := range out.Pipes {
			if p.ZoneIndex < 0 || p.ZoneIndex >= len(req.Zones) {
				t.Fatalf("%s zone_index %d out of range", p.ID, p.ZoneIndex)
			}
			if p.ZoneID != req.Zones[p.ZoneIndex].ID {
				t.Errorf("%s zone_id %d, zones[%d] has id %d", p.ID, p.ZoneID, p.ZoneIndex, req.Zones[p.ZoneIndex].ID)
			}
			if p.FromNode >= int64(len(req.WaterSources)) || p.SourceIndex != int(p.FromNode) {
				t.Errorf("%s from node %d source %d, want a source feeding it directly", p.ID, p.FromNode, p.SourceIndex)
			}
			seen[p.ZoneIndex] = true
		}
		if !seen[0] || !seen[1] {
			t.Errorf("pipes cover zones %v, want both", seen)
		}
	}
}

func TestGenerateDegenerateZone(t *testing.T) {
	req := squareRequest()
	req.Zones = append(req.Zones, spec.Zone{ID: 2, Coords: []geo.LatLng{geo.LL(0.002, 0.002), geo.LL(0.003, 0.003)}})

	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.ZoneAreas) != 2 || out.ZoneAreas[1] != 0 {
		t.Errorf("zone_areas = %v, want degenerate zone at 0", out.ZoneAreas)
	}
	if len(out.Pipes) != 1 || len(out.Valves) != 1 || len(out.Sprinklers) != 1 {
		t.Errorf("degenerate zone must not get equipment: %d/%d/%d",
			len(out.Pipes), len(out.Valves), len(out.Sprinklers))
	}
	if !out.Zones[1].Degenerate || out.Zones[1].Centroid != nil {
		t.Errorf("zone summary = %+v", out.Zones[1])
	}
}

func TestGenerateNoWaterSource(t *testing.T) {
	req := squareRequest()
	req.WaterSources = nil

	out, err := newPlanner(t).Generate(req)
	if out != nil {
		t.Error("expected no plan")
	}
	if !validation.IsKind(err, validation.KindNoWaterSource) {
		t.Fatalf("error = %v, want no_water_source", err)
	}
	if !errors.Is(err, validation.ErrNoWaterSource) {
		t.Error("errors.Is should match the sentinel")
	}
	var ve *validation.Error
	if !errors.As(err, &ve) || ve.Report == nil || ve.Report.Valid {
		t.Errorf("error should carry an invalid report: %+v", ve)
	}
}

func TestGenerateProjectionFailure(t *testing.T) {
	req := squareRequest()
	req.Zones[0].Coords[2] = geo.LL(90, 0.001)

	_, err := newPlanner(t).Generate(req)
	if !validation.IsKind(err, validation.KindProjectionFailure) {
		t.Fatalf("error = %v, want projection_failure", err)
	}

	req = squareRequest()
	req.WaterSources = []geo.LatLng{geo.LL(-90, 0)}
	_, err = newPlanner(t).Generate(req)
	if !validation.IsKind(err, validation.KindProjectionFailure) {
		t.Fatalf("source at the pole: error = %v, want projection_failure", err)
	}
}

func TestGenerateRejectsOutOfRange(t *testing.T) {
	req := squareRequest()
	req.WaterSources = []geo.LatLng{geo.LL(0, 200)}
	_, err := newPlanner(t).Generate(req)
	if !validation.IsKind(err, validation.KindProjectionFailure) {
		t.Fatalf("error = %v, want projection_failure", err)
	}
}

func TestGenerateNoZones(t *testing.T) {
	req := squareRequest()
	req.Zones = nil
	req.Diagnostics = true

	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Pipes) != 0 || out.TotalPipeLengthM != 0 || len(out.ZoneAreas) != 0 {
		t.Errorf("expected an empty plan, got %+v", out)
	}
	if out.Diagnostics == nil || !out.Diagnostics.Valid {
		t.Errorf("diagnostics = %+v", out.Diagnostics)
	}
}

func TestGenerateDiagnosticsOnRequest(t *testing.T) {
	req := squareRequest()
	req.Diagnostics = true
	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Diagnostics == nil || len(out.Diagnostics.Info) == 0 {
		t.Errorf("diagnostics = %+v", out.Diagnostics)
	}
}

func TestDiagnosticsFlagCentroidOutsideZone(t *testing.T) {
	u := 0.0001
	req := &spec.Request{
		Zones: []spec.Zone{{ID: 1, Coords: []geo.LatLng{
			geo.LL(0, 0), geo.LL(0, 3*u), geo.LL(3*u, 3*u), geo.LL(3*u, 2*u),
			geo.LL(u, 2*u), geo.LL(u, u), geo.LL(3*u, u), geo.LL(3*u, 0),
		}}},
		WaterSources: []geo.LatLng{geo.LL(0, 0)},
		Diagnostics:  true,
	}
	out, err := newPlanner(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var outside, network bool
	for _, r := range out.Diagnostics.Info {
		if strings.Contains(r.Message, "centroid lies outside") {
			outside = true
		}
		if strings.Contains(r.Message, "network: 1 pipes") && strings.Contains(r.Message, "on the ground") {
			network = true
		}
	}
	if !outside || !network {
		t.Errorf("info = %+v, want centroid and network lines", out.Diagnostics.Info)
	}

	sq := squareRequest()
	sq.Diagnostics = true
	out, err = newPlanner(t).Generate(sq)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, r := range out.Diagnostics.Info {
		if strings.Contains(r.Message, "centroid lies outside") {
			t.Errorf("square flagged: %s", r.Message)
		}
	}
}

func TestValidateReport(t *testing.T) {
	p := newPlanner(t)
	if r := p.Validate(squareRequest()); !r.Valid {
		t.Errorf("valid request reported invalid: %+v", r.Errors)
	}
	req := squareRequest()
	req.WaterSources = nil
	r := p.Validate(req)
	if r.Valid || r.FirstErrorKind() != validation.KindNoWaterSource {
		t.Errorf("report = %+v", r)
	}
}

func TestNewPlannerConfig(t *testing.T) {
	p, err := NewPlanner(Config{
		Projection: "plate_carree",
		Equipment:  Equipment{PipeType: PipePE32, SprinklerRadiusM: 3},
	})
	if err != nil {
		t.Fatalf("NewPlanner: %v", err)
	}
	out, err := p.Generate(squareRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Pipes[0].PipeType != PipePE32 || out.Sprinklers[0].RadiusM != 3 {
		t.Errorf("equipment override lost: %+v %+v", out.Pipes[0], out.Sprinklers[0])
	}
	if out.Valves[0].Type != DefaultValveType {
		t.Errorf("valve type = %q", out.Valves[0].Type)
	}
	if out.ProjectedCRS != "EPSG:32662" {
		t.Errorf("projected crs = %q", out.ProjectedCRS)
	}

	if _, err := NewPlanner(Config{Projection: "lambert"}); err == nil {
		t.Error("expected error for unknown projection")
	}
	if _, err := NewPlanner(Config{Equipment: Equipment{PipeType: "PE99"}}); err == nil {
		t.Error("expected error for unknown pipe type")
	}
}

func TestPlanJSONShape(t *testing.T) {
	out, err := newPlanner(t).Generate(squareRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"zone_areas", "pipes", "valves", "sprinklers", "hydraulic_info", "coordinate_system", "total_pipe_length_m"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := m["diagnostics"]; ok {
		t.Error("diagnostics should be omitted")
	}
}

func TestPlannerConcurrentUse(t *testing.T) {
	p := newPlanner(t)
	want, err := p.Generate(squareRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Generate(squareRequest())
			if err != nil {
				errs <- err.Error()
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
