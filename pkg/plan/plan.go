// Package plan assembles the irrigation plan: pipes along the network tree,
// one valve and one sprinkler per zone, zone areas and the hydraulic
// parameters echoed from the request.
package plan

import (
	"fmt"

	"github.com/Adps75/irrigation-editor/pkg/cost"
	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/routing"
	"github.com/Adps75/irrigation-editor/pkg/spec"
	"github.com/Adps75/irrigation-editor/pkg/validation"
	"github.com/Adps75/irrigation-editor/pkg/zone"
)

// OutputCRS is the coordinate system of every location in a Plan.
const OutputCRS = "EPSG:4326"

// Pipe is one straight pipe segment of the network tree. Start is the end
// nearer the water source.
type Pipe struct {
	ID          string     `json:"id"`
	Start       geo.LatLng `json:"start"`
	End         geo.LatLng `json:"end"`
	PipeType    PipeType   `json:"pipe_type"`
	LengthM     float64    `json:"length_m"`
	FromNode    int64      `json:"from_node"`
	ToNode      int64      `json:"to_node"`
	ZoneID      int        `json:"zone_id"`
	ZoneIndex   int        `json:"zone_index"`
	SourceIndex int        `json:"source_index"`
	ConnectedTo []string   `json:"connected_to"`
}

// Valve controls one zone and sits at its centroid.
type Valve struct {
	ID        string     `json:"id"`
	ZoneID    int        `json:"zone_id"`
	ZoneIndex int        `json:"zone_index"`
	Location  geo.LatLng `json:"location"`
	Type      ValveType  `json:"type"`
}

// Sprinkler waters one zone from its centroid.
type Sprinkler struct {
	ID        string     `json:"id"`
	ZoneID    int        `json:"zone_id"`
	ZoneIndex int        `json:"zone_index"`
	Location  geo.LatLng `json:"location"`
	RadiusM   float64    `json:"radius_m"`
	// Coverage is the share of the zone within RadiusM of the head.
	Coverage float64 `json:"coverage"`
}

// ZoneSummary is the per-zone detail of a plan, index-aligned with the
// request zones.
type ZoneSummary struct {
	Index           int         `json:"index"`
	ID              int         `json:"id"`
	Degenerate      bool        `json:"degenerate"`
	AreaM2          float64     `json:"area_m2"`
	PerimeterM      float64     `json:"perimeter_m"`
	SphericalAreaM2 float64     `json:"spherical_area_m2"`
	Centroid        *geo.LatLng `json:"centroid,omitempty"`
	SourceIndex     *int        `json:"source_index,omitempty"`
	Connected       bool        `json:"connected"`
}

// Plan is the complete planner output.
type Plan struct {
	Address string `json:"address,omitempty"`
	Zoom    int    `json:"zoom,omitempty"`

	ZoneAreas     []float64          `json:"zone_areas"`
	Pipes         []Pipe             `json:"pipes"`
	Valves        []Valve            `json:"valves"`
	Sprinklers    []Sprinkler        `json:"sprinklers"`
	HydraulicInfo spec.HydraulicInfo `json:"hydraulic_info"`

	CoordinateSystem string             `json:"coordinate_system"`
	ProjectedCRS     string             `json:"projected_crs"`
	TotalPipeLengthM float64            `json:"total_pipe_length_m"`
	Zones            []ZoneSummary      `json:"zones"`
	Materials        *cost.Report       `json:"materials"`
	Diagnostics      *validation.Report `json:"diagnostics,omitempty"`
}

// Input bundles what Assemble needs. Zones must be index-aligned with
// Request.Zones and Topology must have been built from them.
type Input struct {
	Request   *spec.Request
	Projector *geodesy.Projector
	Zones     []zone.Geometry
	Topology  *routing.Topology
	Equipment Equipment
	Costs     cost.UnitCosts
}

// Assemble turns an analysed request and its network into a Plan.
func Assemble(in Input) *Plan {
	req := in.Request
	eq := in.Equipment.WithDefaults()

	p := &Plan{
		Address:          req.Address,
		Zoom:             req.Zoom,
		ZoneAreas:        zone.Areas(in.Zones),
		Pipes:            []Pipe{},
		Valves:           []Valve{},
		Sprinklers:       []Sprinkler{},
		HydraulicInfo:    req.Hydraulics(),
		CoordinateSystem: OutputCRS,
		ProjectedCRS:     in.Projector.CRS(),
		TotalPipeLengthM: in.Topology.TotalLength,
	}

	p.Pipes = buildPipes(in.Topology, in.Zones, eq.PipeType)

	disconnected := make(map[int]bool, len(in.Topology.Disconnected))
	for _, zi := range in.Topology.Disconnected {
		disconnected[zi] = true
	}

	for _, g := range in.Zones {
		s := ZoneSummary{
			Index:           g.Index,
			ID:              g.ID,
			Degenerate:      g.Degenerate,
			AreaM2:          g.AreaM2,
			PerimeterM:      g.Perimeter,
			SphericalAreaM2: g.SphericalAreaM2,
		}
		if g.HasCentroid() {
			loc := g.Location
			s.Centroid = &loc
			if si, ok := in.Topology.SourceOf(g.Index); ok {
				s.SourceIndex = &si
				s.Connected = true
			}

			n := len(p.Valves)
			p.Valves = append(p.Valves, Valve{
				ID:        fmt.Sprintf("valve_%03d", n),
				ZoneID:    g.ID,
				ZoneIndex: g.Index,
				Location:  g.Location,
				Type:      eq.ValveType,
			})
			p.Sprinklers = append(p.Sprinklers, Sprinkler{
				ID:        fmt.Sprintf("sprinkler_%03d", n),
				ZoneID:    g.ID,
				ZoneIndex: g.Index,
				Location:  g.Location,
				RadiusM:   eq.SprinklerRadiusM,
				Coverage:  geo.CoverageFraction(g.Boundary, g.Centroid, eq.SprinklerRadiusM),
			})
		}
		if disconnected[g.Index] {
			s.Connected = false
		}
		p.Zones = append(p.Zones, s)
	}

	p.Materials = cost.Estimate(cost.Quantities{
		PipeLengthM:     map[string]float64{string(eq.PipeType): p.TotalPipeLengthM},
		Valves:          len(p.Valves),
		Sprinklers:      len(p.Sprinklers),
		IrrigatedAreaM2: zone.TotalArea(in.Zones),
	}, in.Costs.WithDefaults())

	return p
}

func buildPipes(t *routing.Topology, zones []zone.Geometry, pt PipeType) []Pipe {
	ids := make([]string, len(t.Edges))
	for i := range t.Edges {
		ids[i] = fmt.Sprintf("pipe_%03d", i)
	}
	conn := routing.BuildConnectivity(t.Edges)

	pipes := make([]Pipe, 0, len(t.Edges))
	for i, e := range t.Edges {
		from, _ := t.Node(e.From)
		to, _ := t.Node(e.To)

		pipe := Pipe{
			ID:          ids[i],
			Start:       from.Location,
			End:         to.Location,
			PipeType:    pt,
			LengthM:     e.Weight,
			FromNode:    e.From,
			ToNode:      e.To,
			ZoneIndex:   to.Index,
			ConnectedTo: []string{},
		}
		if to.Index >= 0 && to.Index < len(zones) {
			pipe.ZoneID = zones[to.Index].ID
		}
		if si, ok := t.SourceOf(to.Index); ok {
			pipe.SourceIndex = si
		}
		for _, j := range conn[i] {
			pipe.ConnectedTo = append(pipe.ConnectedTo, ids[j])
		}
		pipes = append(pipes, pipe)
	}
	return pipes
}
