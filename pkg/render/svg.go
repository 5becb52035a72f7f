package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/spec"
)

const (
	backgroundStyle = "fill:rgb(250,250,245)"
	zoneStyle       = "fill:rgb(198,230,180);fill-opacity:0.7;stroke:rgb(70,120,60);stroke-width:1.5"
	labelStyle      = "font-family:sans-serif;font-size:11px;text-anchor:middle;fill:rgb(40,60,40)"
	coverageStyle   = "fill:rgb(80,150,230);fill-opacity:0.15;stroke:rgb(80,150,230);stroke-opacity:0.5"
	headStyle       = "fill:rgb(30,90,200)"
	pipeStyle       = "stroke:rgb(30,90,200);stroke-width:2;stroke-linecap:round"
	valveStyle      = "fill:rgb(240,160,40);stroke:rgb(120,70,0);stroke-width:1"
	sourceStyle     = "fill:rgb(0,60,160);stroke:white;stroke-width:1.5"
	titleStyle      = "font-family:sans-serif;font-size:13px;fill:rgb(40,40,40)"

	valveSize    = 8
	sourceRadius = 6
	headRadius   = 2
)

// errWriter records the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// WriteSVG draws the scene. Layers from bottom to top: zones, sprinkler
// coverage, pipes, valves, sources, labels.
func (s *Scene) WriteSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(s.Width, s.Height)
	canvas.Title(s.Title)
	canvas.Rect(0, 0, s.Width, s.Height, backgroundStyle)

	canvas.Gid("zones")
	for _, z := range s.Zones {
		canvas.Polygon(z.X, z.Y, zoneStyle)
	}
	canvas.Gend()

	canvas.Gid("coverage")
	for _, sp := range s.Sprinklers {
		canvas.Circle(sp.X, sp.Y, sp.Radius, coverageStyle)
	}
	canvas.Gend()

	canvas.Gid("pipes")
	for _, p := range s.Pipes {
		canvas.Line(p.X1, p.Y1, p.X2, p.Y2, pipeStyle)
	}
	canvas.Gend()

	canvas.Gid("valves")
	for _, v := range s.Valves {
		canvas.Rect(v.X-valveSize/2, v.Y-valveSize/2, valveSize, valveSize, valveStyle)
	}
	for _, sp := range s.Sprinklers {
		canvas.Circle(sp.X, sp.Y, headRadius, headStyle)
	}
	canvas.Gend()

	canvas.Gid("sources")
	for _, src := range s.Sources {
		canvas.Circle(src.X, src.Y, sourceRadius, sourceStyle)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, z := range s.Zones {
		canvas.Text(z.LabelX, z.LabelY-valveSize, z.Label, labelStyle)
	}
	canvas.Text(8, 16, s.Title, titleStyle)
	canvas.Gend()

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("render: write svg: %w", ew.err)
	}
	return nil
}

// Render lays out the plan and writes it as SVG.
func Render(w io.Writer, req *spec.Request, p *plan.Plan, proj *geodesy.Projector, opts Options) error {
	s, err := Assemble(req, p, proj, opts)
	if err != nil {
		return err
	}
	return s.WriteSVG(w)
}
