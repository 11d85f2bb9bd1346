package game

const (
	quadMaxObjects = 10
	quadMaxLevels  = 5
)

// AABB is an axis-aligned box anchored at its top-left corner.
type AABB struct {
	X, Y, W, H float64
}

// BoxAround returns the box of the given size centred on p.
func BoxAround(p Vec2, size Vec2) AABB {
	return AABB{X: p.X - size.X/2, Y: p.Y - size.Y/2, W: size.X, H: size.Y}
}

// Contains reports whether p lies inside the box (right and bottom edges excluded).
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.X && p.X < a.X+a.W && p.Y >= a.Y && p.Y < a.Y+a.H
}

// Intersects reports whether the two boxes overlap.
func (a AABB) Intersects(b AABB) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func (a AABB) Center() Vec2 {
	return Vec2{a.X + a.W/2, a.Y + a.H/2}
}

// QuadEntry is what the index stores: an id and the box derived from the ship's size.
type QuadEntry struct {
	ID  ShipID
	Box AABB
}

// QuadTree is a region quadtree rebuilt from scratch every tick.
// Entries that straddle a split line stay at the node where they straddle.
type QuadTree struct {
	level   int
	bounds  AABB
	objects []QuadEntry
	nodes   [4]*QuadTree
}

// NewQuadTree creates a node at the given depth covering bounds.
func NewQuadTree(level int, bounds AABB) *QuadTree {
	return &QuadTree{level: level, bounds: bounds}
}

func (q *QuadTree) Bounds() AABB { return q.bounds }

// Clear drops every entry and every child node.
func (q *QuadTree) Clear() {
	q.objects = q.objects[:0]
	for i := range q.nodes {
		if q.nodes[i] != nil {
			q.nodes[i].Clear()
			q.nodes[i] = nil
		}
	}
}

func (q *QuadTree) split() {
	subW := q.bounds.W / 2
	subH := q.bounds.H / 2
	x, y := q.bounds.X, q.bounds.Y
	lvl := q.level + 1
	q.nodes[0] = NewQuadTree(lvl, AABB{x + subW, y, subW, subH})
	q.nodes[1] = NewQuadTree(lvl, AABB{x, y, subW, subH})
	q.nodes[2] = NewQuadTree(lvl, AABB{x, y + subH, subW, subH})
	q.nodes[3] = NewQuadTree(lvl, AABB{x + subW, y + subH, subW, subH})
}

// quadrant returns 0=top-right, 1=top-left, 2=bottom-left, 3=bottom-right,
// or -1 when the box does not fit in a single child.
func (q *QuadTree) quadrant(b AABB) int {
	vMid := q.bounds.X + q.bounds.W/2
	hMid := q.bounds.Y + q.bounds.H/2

	top := b.Y < hMid && b.Y+b.H < hMid
	bottom := b.Y > hMid

	switch {
	case b.X < vMid && b.X+b.W < vMid:
		if top {
			return 1
		}
		if bottom {
			return 2
		}
	case b.X > vMid:
		if top {
			return 0
		}
		if bottom {
			return 3
		}
	}
	return -1
}

// pointQuadrant is quadrant for a zero-size box.
func (q *QuadTree) pointQuadrant(p Vec2) int {
	return q.quadrant(AABB{X: p.X, Y: p.Y})
}

// Insert adds e, pushing entries down once the node is over capacity.
func (q *QuadTree) Insert(e QuadEntry) {
	if q.nodes[0] != nil {
		if idx := q.quadrant(e.Box); idx != -1 {
			q.nodes[idx].Insert(e)
			return
		}
	}

	q.objects = append(q.objects, e)
	if len(q.objects) <= quadMaxObjects || q.level >= quadMaxLevels {
		return
	}
	if q.nodes[0] == nil {
		q.split()
	}
	kept := q.objects[:0]
	for _, o := range q.objects {
		if idx := q.quadrant(o.Box); idx != -1 {
			q.nodes[idx].Insert(o)
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(q.objects); i++ {
		q.objects[i] = QuadEntry{}
	}
	q.objects = kept
}

// Retrieve returns every entry stored on the path from this node down to the
// leaf containing p, plus whatever overlaps a leaf-sized square around p in
// neighbouring leaves. Nothing within the leaf's extent of p is missed;
// callers filter by distance.
func (q *QuadTree) Retrieve(p Vec2) []QuadEntry {
	path, leaf := q.pathTo(p, nil)
	reach := max(leaf.bounds.W, leaf.bounds.H)
	seen := make(map[ShipID]struct{}, len(path))
	for _, e := range path {
		seen[e.ID] = struct{}{}
	}
	for _, e := range q.QueryRange(p, reach) {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		path = append(path, e)
	}
	return path
}

func (q *QuadTree) pathTo(p Vec2, out []QuadEntry) ([]QuadEntry, *QuadTree) {
	out = append(out, q.objects...)
	if q.nodes[0] == nil {
		return out, q
	}
	idx := q.pointQuadrant(p)
	if idx == -1 {
		// p sits on a split line; the neighbourhood query covers both sides.
		return out, q
	}
	return q.nodes[idx].pathTo(p, out)
}

// QueryRange returns every entry whose box overlaps the square enclosing the
// circle (center, radius). Like Retrieve, the result is a superset.
func (q *QuadTree) QueryRange(center Vec2, radius float64) []QuadEntry {
	area := AABB{X: center.X - radius, Y: center.Y - radius, W: radius * 2, H: radius * 2}
	return q.queryRange(area, nil)
}

func (q *QuadTree) queryRange(area AABB, out []QuadEntry) []QuadEntry {
	if !q.bounds.Intersects(area) && q.level > 0 {
		return out
	}
	for _, o := range q.objects {
		if o.Box.Intersects(area) {
			out = append(out, o)
		}
	}
	if q.nodes[0] != nil {
		for _, n := range q.nodes {
			out = n.queryRange(area, out)
		}
	}
	return out
}

// Len counts entries in the whole subtree.
func (q *QuadTree) Len() int {
	n := len(q.objects)
	if q.nodes[0] != nil {
		for _, c := range q.nodes {
			n += c.Len()
		}
	}
	return n
}

// Depth returns the deepest level in use under this node.
func (q *QuadTree) Depth() int {
	d := q.level
	if q.nodes[0] != nil {
		for _, c := range q.nodes {
			if cd := c.Depth(); cd > d {
				d = cd
			}
		}
	}
	return d
}
