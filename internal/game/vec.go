package game

import "math"

// Vec2 is a world-space position or direction in pixels.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// HeadingDeg returns the direction of v in degrees, in [0, 360).
func (v Vec2) HeadingDeg() float64 {
	return normDeg(math.Atan2(v.Y, v.X) * 180 / math.Pi)
}

// FromHeadingDeg builds a unit vector pointing at deg.
func FromHeadingDeg(deg float64) Vec2 {
	r := deg * math.Pi / 180
	return Vec2{math.Cos(r), math.Sin(r)}
}

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// angleDiff returns the absolute angular distance between two headings, in [0, 180].
func angleDiff(a, b float64) float64 {
	d := math.Abs(normDeg(a) - normDeg(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
