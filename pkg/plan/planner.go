package plan

import (
	"errors"
	"fmt"

	"github.com/Adps75/irrigation-editor/pkg/cost"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/routing"
	"github.com/Adps75/irrigation-editor/pkg/spec"
	"github.com/Adps75/irrigation-editor/pkg/validation"
	"github.com/Adps75/irrigation-editor/pkg/zone"
)

// Config selects the projection, network options, equipment and prices of
// a Planner.
type Config struct {
	Projection geodesy.Kind
	Network    routing.Options
	Equipment  Equipment
	Costs      cost.UnitCosts
}

// Planner turns requests into plans. It is immutable after construction and
// safe for concurrent use.
type Planner struct {
	proj  *geodesy.Projector
	opts  routing.Options
	eq    Equipment
	costs cost.UnitCosts
}

// NewPlanner validates cfg and builds a Planner. Zero fields take defaults.
func NewPlanner(cfg Config) (*Planner, error) {
	kind, err := geodesy.ParseKind(string(cfg.Projection))
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	proj, err := geodesy.NewProjector(kind)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	eq := cfg.Equipment.WithDefaults()
	if err := eq.Validate(); err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	costs := cfg.Costs.WithDefaults()
	if err := costs.Validate(); err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	return &Planner{proj: proj, opts: cfg.Network, eq: eq, costs: costs}, nil
}

// Projector returns the planner's projector.
func (p *Planner) Projector() *geodesy.Projector {
	return p.proj
}

// Equipment returns the equipment plans are drawn with.
func (p *Planner) Equipment() Equipment {
	return p.eq
}

// Generate builds the plan for req. Fatal problems return a nil plan and a
// *validation.Error. When some zones cannot be reached, the partial plan is
// returned together with a disconnected_zone error.
func (p *Planner) Generate(req *spec.Request) (*Plan, error) {
	out, _, err := p.run(req)
	return out, err
}

// Validate runs the planning pipeline and returns its findings without
// keeping the plan.
func (p *Planner) Validate(req *spec.Request) *validation.Report {
	_, report, _ := p.run(req)
	return report
}

func (p *Planner) run(req *spec.Request) (*Plan, *validation.Report, error) {
	const op = "plan.Generate"

	report := validation.ValidateRequest(req)
	if !report.Valid {
		kind := report.FirstErrorKind()
		if kind == "" {
			kind = validation.KindMalformedRequest
		}
		return nil, report, validation.NewError(op, kind, report, nil)
	}

	zones, err := zone.Analyze(p.proj, req.Zones)
	if err != nil {
		report.AddError(validation.Result{
			Level:    validation.LevelGeometry,
			Kind:     validation.KindProjectionFailure,
			Message:  err.Error(),
			SpecPath: "zones",
		})
		return nil, report, validation.NewError(op, validation.KindProjectionFailure, report, err)
	}
	for _, g := range zones {
		if g.Degenerate {
			continue
		}
		report.AddInfo(validation.Result{
			Level: validation.LevelGeometry,
			Message: fmt.Sprintf("zones[%d]: %.1f m² projected, %.1f m² on the sphere (x%.3f)",
				g.Index, g.AreaM2, g.SphericalAreaM2, g.Distortion()),
			SpecPath:  fmt.Sprintf("zones[%d]", g.Index),
			ZoneIndex: validation.Zone(g.Index),
		})
		if g.AreaM2 > 0 && !g.Boundary.Contains(g.Centroid) {
			report.AddInfo(validation.Result{
				Level:     validation.LevelGeometry,
				Message:   fmt.Sprintf("zones[%d]: centroid lies outside the zone; valve and sprinkler sit outside it", g.Index),
				SpecPath:  fmt.Sprintf("zones[%d]", g.Index),
				ZoneIndex: validation.Zone(g.Index),
			})
		}
	}

	sources, err := routing.NewSources(p.proj, req.WaterSources)
	if err != nil {
		report.AddError(validation.Result{
			Level:    validation.LevelGeometry,
			Kind:     validation.KindProjectionFailure,
			Message:  err.Error(),
			SpecPath: "water_sources",
		})
		return nil, report, validation.NewError(op, validation.KindProjectionFailure, report, err)
	}

	topo, err := routing.Build(sources, zones, p.opts)
	if err != nil {
		kind := validation.KindOf(err)
		if kind == "" {
			kind = validation.KindMalformedRequest
		}
		var ve *validation.Error
		if errors.As(err, &ve) {
			err = ve.Err
		}
		return nil, report, validation.NewError(op, kind, report, err)
	}
	report.Merge(topo.Report())

	out := Assemble(Input{
		Request:   req,
		Projector: p.proj,
		Zones:     zones,
		Topology:  topo,
		Equipment: p.eq,
		Costs:     p.costs,
	})
	if len(out.Pipes) > 0 {
		ground := 0.0
		for _, pp := range out.Pipes {
			ground += geodesy.GreatCircleDistance(pp.Start, pp.End)
		}
		report.AddInfo(validation.Result{
			Level:    validation.LevelNetwork,
			Message:  fmt.Sprintf("network: %d pipes, %.1f m projected, %.1f m on the ground", len(out.Pipes), out.TotalPipeLengthM, ground),
			SpecPath: "pipes",
		})
	}
	if req.Diagnostics || !report.Valid {
		out.Diagnostics = report
	}
	if report.HasKind(validation.KindDisconnectedZone) {
		return out, report, validation.NewError(op, validation.KindDisconnectedZone, report,
			fmt.Errorf("%d zone(s) unreachable: %w", len(topo.Disconnected), validation.ErrDisconnectedZone))
	}
	return out, report, nil
}
