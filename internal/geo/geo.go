// Package geo places the sea on a real chart so stored positions can be
// read by GIS tools.
package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// All stored points are EPSG:3857, the same as the web map tiles.

// ErrOutsideChart is returned for world positions beyond the sea.
var ErrOutsideChart = errors.New("position outside chart")

// Chart maps world pixels onto longitude and latitude with a flat
// (equirectangular) approximation anchored at the north-west corner.
type Chart struct {
	Width, Height float64 // world size in px
	West, North   float64 // degrees at world (0,0)
	DegPerPx      float64
}

// NewChart returns a chart of a w×h sea laid over the Caribbean, ten
// degrees of longitude wide.
func NewChart(w, h int) Chart {
	return Chart{
		Width:    float64(w),
		Height:   float64(h),
		West:     -85,
		North:    24,
		DegPerPx: 10 / float64(max(1, w)),
	}
}

// LonLat converts a world position to EPSG:4326 degrees.
func (c Chart) LonLat(x, y float64) (lon, lat float64, err error) {
	if x < 0 || y < 0 || x > c.Width || y > c.Height {
		return 0, 0, fmt.Errorf("(%.0f,%.0f): %w", x, y, ErrOutsideChart)
	}
	return c.West + x*c.DegPerPx, c.North - y*c.DegPerPx, nil
}

// Point converts a world position to an EPSG:3857 point.
func (c Chart) Point(x, y float64) (geom.Point, error) {
	lon, lat, err := c.LonLat(x, y)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), err
	}
	return Coords3857From4326(lon, lat), nil
}

// Coords3857From4326 creates a web-mercator point from a longitude and
// latitude.
func Coords3857From4326(longitude, latitude float64) geom.Point {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
}

// Track joins world positions into an EPSG:3857 line string, skipping any
// that fall off the chart. Fewer than two usable points give an empty line.
func (c Chart) Track(xs, ys []float64) geom.LineString {
	var seq []float64
	for i := range xs {
		if i >= len(ys) {
			break
		}
		p, err := c.Point(xs[i], ys[i])
		if err != nil {
			continue
		}
		xy, _ := p.XY()
		seq = append(seq, xy.X, xy.Y)
	}
	if len(seq) < 4 {
		return geom.LineString{}
	}
	return geom.NewLineString(geom.NewSequence(seq, geom.DimXY))
}
