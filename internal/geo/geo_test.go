package geo

import (
	"errors"
	"math"
	"testing"
)

const earthRadius = 6378137.0

func TestChart_LonLatCorners(t *testing.T) {
	c := NewChart(5760, 5760)

	lon, lat, err := c.LonLat(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lon != -85 || lat != 24 {
		t.Errorf("expected (-85,24) at origin, got (%f,%f)", lon, lat)
	}

	lon, lat, err = c.LonLat(5760, 5760)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lon-(-75)) > 1e-9 || math.Abs(lat-14) > 1e-9 {
		t.Errorf("expected (-75,14) at far corner, got (%f,%f)", lon, lat)
	}
}

func TestChart_OutsideChart(t *testing.T) {
	c := NewChart(100, 100)
	for _, p := range [][2]float64{{-1, 0}, {0, -1}, {101, 0}, {0, 101}} {
		_, _, err := c.LonLat(p[0], p[1])
		if !errors.Is(err, ErrOutsideChart) {
			t.Errorf("(%v): expected ErrOutsideChart, got %v", p, err)
		}
		pt, err := c.Point(p[0], p[1])
		if err == nil {
			t.Errorf("(%v): expected error from Point", p)
		}
		if !pt.IsEmpty() {
			t.Errorf("(%v): expected empty point", p)
		}
	}
}

func TestCoords3857From4326_Longitude(t *testing.T) {
	p := Coords3857From4326(-80, 0)
	xy, ok := p.XY()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	want := earthRadius * (-80 * math.Pi / 180)
	if math.Abs(xy.X-want) > 1 {
		t.Errorf("expected X≈%f, got %f", want, xy.X)
	}
	if math.Abs(xy.Y) > 1e-6 {
		t.Errorf("expected Y=0 on the equator, got %f", xy.Y)
	}
}

func TestCoords3857From4326_NorthIsPositive(t *testing.T) {
	p := Coords3857From4326(-80, 20)
	xy, _ := p.XY()
	if xy.Y <= 0 {
		t.Errorf("expected positive Y north of the equator, got %f", xy.Y)
	}
}

func TestChart_Track(t *testing.T) {
	c := NewChart(1000, 1000)

	ls := c.Track([]float64{0, 500, 2000, 1000}, []float64{0, 500, 0, 1000})
	if got := ls.Coordinates().Length(); got != 3 {
		t.Fatalf("expected 3 points (one off-chart dropped), got %d", got)
	}

	empty := c.Track([]float64{10}, []float64{10})
	if !empty.IsEmpty() {
		t.Errorf("expected empty line for a single point")
	}
}
