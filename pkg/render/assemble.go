// Package render draws an irrigation plan as a top-down SVG preview.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/spec"
)

const (
	DefaultWidth  = 800
	DefaultMargin = 24

	// minExtentM keeps single-point plans from collapsing to a zero-size view.
	minExtentM = 10.0
)

// Options control the layout of a Scene.
type Options struct {
	Width  int
	Margin int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Margin <= 0 || 2*o.Margin >= o.Width {
		o.Margin = DefaultMargin
	}
	return o
}

// ErrEmptyPlan is returned when there is nothing to draw.
var ErrEmptyPlan = errors.New("render: plan has no drawable features")

// viewport maps projected meters onto the canvas, keeping the aspect ratio.
type viewport struct {
	min, max geo.Point2D
	scale    float64 // units per projected meter
	margin   int
	height   int
}

func (v viewport) screen(p geo.Point2D) (int, int) {
	x := float64(v.margin) + (p.X-v.min.X)*v.scale
	y := float64(v.height-v.margin) - (p.Y-v.min.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Assemble lays out the plan built from req. Every location is projected
// with proj; sprinkler radii are converted with the projection's local scale.
func Assemble(req *spec.Request, p *plan.Plan, proj *geodesy.Projector, opts Options) (*Scene, error) {
	opts = opts.withDefaults()

	var pts []geo.Point2D
	project := func(ll geo.LatLng) (geo.Point2D, error) {
		pt, err := proj.Project(ll)
		if err != nil {
			return geo.Point2D{}, fmt.Errorf("render: %w", err)
		}
		pts = append(pts, pt)
		return pt, nil
	}

	zoneOutlines := make([][]geo.Point2D, len(req.Zones))
	for i, z := range req.Zones {
		if z.IsDegenerate() {
			continue
		}
		for _, ll := range z.Coords {
			pt, err := project(ll)
			if err != nil {
				return nil, err
			}
			zoneOutlines[i] = append(zoneOutlines[i], pt)
		}
	}
	sourcePts := make([]geo.Point2D, len(req.WaterSources))
	for i, ll := range req.WaterSources {
		pt, err := project(ll)
		if err != nil {
			return nil, err
		}
		sourcePts[i] = pt
	}
	if len(pts) == 0 {
		return nil, ErrEmptyPlan
	}

	vp := fit(pts, opts)
	lat := proj.Unproject(geo.MidPoint(vp.min, vp.max)).Lat
	s := &Scene{
		Width:         opts.Width,
		Height:        vp.height,
		Title:         title(req, p),
		Zones:         []Zone2D{},
		Pipes:         []Pipe2D{},
		Sources:       []Mark2D{},
		Valves:        []Mark2D{},
		Sprinklers:    []Sprinkler2D{},
		MetersPerUnit: 1 / (vp.scale * proj.ScaleFactor(lat)),
	}

	for i, outline := range zoneOutlines {
		if len(outline) == 0 {
			continue
		}
		z := Zone2D{ID: req.Zones[i].ID, Label: fmt.Sprintf("zone %d", req.Zones[i].ID)}
		for _, pt := range outline {
			x, y := vp.screen(pt)
			z.X = append(z.X, x)
			z.Y = append(z.Y, y)
		}
		z.LabelX, z.LabelY = vp.screen(geo.NewPolygon(outline...).Centroid())
		s.Zones = append(s.Zones, z)
	}

	for i, pt := range sourcePts {
		x, y := vp.screen(pt)
		s.Sources = append(s.Sources, Mark2D{ID: fmt.Sprintf("source_%03d", i), X: x, Y: y})
	}

	for _, pipe := range p.Pipes {
		a, err := proj.Project(pipe.Start)
		if err != nil {
			return nil, fmt.Errorf("render: pipe %s: %w", pipe.ID, err)
		}
		b, err := proj.Project(pipe.End)
		if err != nil {
			return nil, fmt.Errorf("render: pipe %s: %w", pipe.ID, err)
		}
		x1, y1 := vp.screen(a)
		x2, y2 := vp.screen(b)
		s.Pipes = append(s.Pipes, Pipe2D{ID: pipe.ID, X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	for _, v := range p.Valves {
		pt, err := proj.Project(v.Location)
		if err != nil {
			return nil, fmt.Errorf("render: valve %s: %w", v.ID, err)
		}
		x, y := vp.screen(pt)
		s.Valves = append(s.Valves, Mark2D{ID: v.ID, X: x, Y: y})
	}

	for _, sp := range p.Sprinklers {
		pt, err := proj.Project(sp.Location)
		if err != nil {
			return nil, fmt.Errorf("render: sprinkler %s: %w", sp.ID, err)
		}
		x, y := vp.screen(pt)
		r := sp.RadiusM * proj.ScaleFactor(sp.Location.Lat) * vp.scale
		s.Sprinklers = append(s.Sprinklers, Sprinkler2D{
			ID: sp.ID, X: x, Y: y, Radius: max(1, int(math.Round(r))),
		})
	}

	return s, nil
}

func fit(pts []geo.Point2D, opts Options) viewport {
	minPt, maxPt := geo.NewPolygon(pts...).BoundingBox()

	w := maxPt.X - minPt.X
	h := maxPt.Y - minPt.Y
	// Pad degenerate extents around their center.
	if w < minExtentM {
		c := (minPt.X + maxPt.X) / 2
		minPt.X, maxPt.X = c-minExtentM/2, c+minExtentM/2
		w = minExtentM
	}
	if h < minExtentM {
		c := (minPt.Y + maxPt.Y) / 2
		minPt.Y, maxPt.Y = c-minExtentM/2, c+minExtentM/2
		h = minExtentM
	}

	inner := float64(opts.Width - 2*opts.Margin)
	scale := inner / w
	height := int(math.Round(h*scale)) + 2*opts.Margin
	return viewport{min: minPt, max: maxPt, scale: scale, margin: opts.Margin, height: height}
}

func title(req *spec.Request, p *plan.Plan) string {
	name := req.Address
	if name == "" {
		name = "Irrigation plan"
	}
	return fmt.Sprintf("%s: %d zones, %.1f m of pipe", name, len(p.ZoneAreas), p.TotalPipeLengthM)
}
