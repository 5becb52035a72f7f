package geodesy

import (
	"math"
	"sync"
	"testing"

	"github.com/Adps75/irrigation-editor/pkg/geo"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", WebMercator, false},
		{"web_mercator", WebMercator, false},
		{"plate_carree", PlateCarree, false},
		{"utm", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWebMercatorKnownValues(t *testing.T) {
	p := MustProjector(WebMercator)

	// Reference values for EPSG:3857.
	tests := []struct {
		name string
		ll   geo.LatLng
		x, y float64
	}{
		{"origin", geo.LL(0, 0), 0, 0},
		{"antimeridian", geo.LL(0, 180), 20037508.342789244, 0},
		{"paris", geo.LL(48.8566, 2.3522), 261845.7, 6250566.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := p.Project(tt.ll)
			if err != nil {
				t.Fatalf("Project(%v): %v", tt.ll, err)
			}
			if !approxEqual(pt.X, tt.x, 1) || !approxEqual(pt.Y, tt.y, 1) {
				t.Errorf("Project(%v) = (%.1f, %.1f), want (%.1f, %.1f)", tt.ll, pt.X, pt.Y, tt.x, tt.y)
			}
		})
	}
}

func TestProjectRejectsOutOfRange(t *testing.T) {
	p := MustProjector(WebMercator)
	for _, ll := range []geo.LatLng{geo.LL(91, 0), geo.LL(0, -181), geo.LL(math.NaN(), 1)} {
		if _, err := p.Project(ll); err == nil {
			t.Errorf("Project(%v): expected error", ll)
		}
	}
}

func TestMercatorRejectsPoles(t *testing.T) {
	p := MustProjector(WebMercator)
	for _, lat := range []float64{90, -90} {
		if _, err := p.Project(geo.LL(lat, 0)); err == nil {
			t.Errorf("Project(lat=%v): expected error for unrepresentable pole", lat)
		}
	}
	// Plate carrée has no singularity at the poles.
	if _, err := MustProjector(PlateCarree).Project(geo.LL(90, 0)); err != nil {
		t.Errorf("plate carrée pole: unexpected error %v", err)
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	for _, kind := range []Kind{WebMercator, PlateCarree} {
		p := MustProjector(kind)
		for _, ll := range []geo.LatLng{geo.LL(0, 0), geo.LL(48.8566, 2.3522), geo.LL(-33.9, 151.2), geo.LL(64.1, -21.9)} {
			pt, err := p.Project(ll)
			if err != nil {
				t.Fatalf("%s Project(%v): %v", kind, ll, err)
			}
			back := p.Unproject(pt)
			if !approxEqual(back.Lat, ll.Lat, 1e-9) || !approxEqual(back.Lng, ll.Lng, 1e-9) {
				t.Errorf("%s round trip %v -> %v", kind, ll, back)
			}
		}
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	p := MustProjector(WebMercator)
	pts := []geo.LatLng{geo.LL(0, 0), geo.LL(0.001, 0.001), geo.LL(45.76, 4.83), geo.LL(-12.5, 130.8)}
	for _, a := range pts {
		d, err := p.Distance(a, a)
		if err != nil {
			t.Fatalf("Distance: %v", err)
		}
		if d != 0 {
			t.Errorf("Distance(%v,%v) = %v, want 0", a, a, d)
		}
		for _, b := range pts {
			ab, _ := p.Distance(a, b)
			ba, _ := p.Distance(b, a)
			if ab != ba {
				t.Errorf("Distance(%v,%v)=%v != Distance(%v,%v)=%v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestDistanceMatchesGreatCircleNearEquator(t *testing.T) {
	p := MustProjector(WebMercator)
	a := geo.LL(0, 0)
	b := geo.LL(0.001, 0.001)
	planar, err := p.Distance(a, b)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	sphere := GreatCircleDistance(a, b)
	if !approxEqual(planar, sphere, sphere*0.005) {
		t.Errorf("planar %f vs great circle %f differ by more than 0.5%%", planar, sphere)
	}
}

func TestScaleFactorExplainsMercatorDistortion(t *testing.T) {
	p := MustProjector(WebMercator)
	a := geo.LL(48.85, 2.35)
	b := geo.LL(48.85, 2.36)
	planar, _ := p.Distance(a, b)
	sphere := GreatCircleDistance(a, b)
	corrected := planar / p.ScaleFactor(a.Lat)
	if !approxEqual(corrected, sphere, sphere*0.005) {
		t.Errorf("scale-corrected %f vs great circle %f", corrected, sphere)
	}
}

func TestSphericalAreaSmallSquare(t *testing.T) {
	ring := []geo.LatLng{geo.LL(0, 0), geo.LL(0, 0.001), geo.LL(0.001, 0.001), geo.LL(0.001, 0)}
	side := MeanEarthRadiusM * 0.001 * math.Pi / 180
	want := side * side
	got := SphericalArea(ring)
	if !approxEqual(got, want, want*0.001) {
		t.Errorf("SphericalArea = %f, want ~%f", got, want)
	}

	// Reversed winding describes the same plot.
	rev := []geo.LatLng{ring[3], ring[2], ring[1], ring[0]}
	if gotRev := SphericalArea(rev); !approxEqual(gotRev, got, got*1e-6) {
		t.Errorf("reversed SphericalArea = %f, want %f", gotRev, got)
	}
}

func TestSphericalAreaDegenerate(t *testing.T) {
	if a := SphericalArea([]geo.LatLng{geo.LL(0, 0), geo.LL(1, 1)}); a != 0 {
		t.Errorf("expected 0 for two points, got %f", a)
	}
	if a := SphericalArea([]geo.LatLng{geo.LL(0, 0), geo.LL(0, 0), geo.LL(1, 1)}); a != 0 {
		t.Errorf("expected 0 for repeated points, got %f", a)
	}
}

func TestProjectorConcurrentUse(t *testing.T) {
	p := MustProjector(WebMercator)
	want, _ := p.Project(geo.LL(45, 5))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := p.Project(geo.LL(45, 5))
				if err != nil || got != want {
					t.Errorf("concurrent Project = %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
