package game

// Pathfinder produces waypoint paths. NavGrid is the stock implementation;
// tests substitute straight-line paths.
type Pathfinder interface {
	FindPath(from, to Vec2, avoid bool) *Path
}

// Path is an ordered, restartable sequence of waypoints.
type Path struct {
	points []Vec2
	idx    int
}

// NewPath wraps pts. A nil or empty slice yields an already finished path.
func NewPath(pts []Vec2) *Path {
	return &Path{points: pts}
}

// Finished reports whether every waypoint has been reached.
func (p *Path) Finished() bool {
	return p == nil || p.idx >= len(p.points)
}

// Next returns the waypoint currently being steered to.
func (p *Path) Next() (Vec2, bool) {
	if p.Finished() {
		return Vec2{}, false
	}
	return p.points[p.idx], true
}

// LookAhead returns the waypoint after Next, if any.
func (p *Path) LookAhead() (Vec2, bool) {
	if p == nil || p.idx+1 >= len(p.points) {
		return Vec2{}, false
	}
	return p.points[p.idx+1], true
}

// Advance moves to the following waypoint.
func (p *Path) Advance() {
	if !p.Finished() {
		p.idx++
	}
}

// Restart rewinds to the first waypoint.
func (p *Path) Restart() {
	if p != nil {
		p.idx = 0
	}
}

// Clone returns an independent copy sharing the (read-only) waypoints.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	return &Path{points: p.points, idx: p.idx}
}

// Destination is the last waypoint.
func (p *Path) Destination() (Vec2, bool) {
	if p == nil || len(p.points) == 0 {
		return Vec2{}, false
	}
	return p.points[len(p.points)-1], true
}

// Remaining is the number of waypoints not yet reached.
func (p *Path) Remaining() int {
	if p.Finished() {
		return 0
	}
	return len(p.points) - p.idx
}

// Waypoints returns the remaining waypoints; callers must not modify them.
func (p *Path) Waypoints() []Vec2 {
	if p.Finished() {
		return nil
	}
	return p.points[p.idx:]
}

// straightLine is a Pathfinder with no obstacles.
type straightLine struct{}

func (straightLine) FindPath(from, to Vec2, _ bool) *Path {
	return NewPath([]Vec2{to})
}
