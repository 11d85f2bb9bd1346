package game

import (
	"container/heap"
	"math"
)

const cellSize = 32

// Cell is a grid coordinate on the sea chart.
type Cell struct {
	X, Y int
}

// NavGrid is the sea chart: walkability (false over islands) and a per-cell
// occupancy count maintained by ships as they move.
type NavGrid struct {
	cols     int
	rows     int
	blocked  []bool
	occupied []int
}

// NewNavGrid builds a grid for a mapW x mapH world. Cells overlapping an
// island, expanded by pad pixels, are blocked.
func NewNavGrid(mapW, mapH int, islands []rect, pad int) *NavGrid {
	cols := mapW / cellSize
	rows := mapH / cellSize
	ng := &NavGrid{
		cols:     cols,
		rows:     rows,
		blocked:  make([]bool, cols*rows),
		occupied: make([]int, cols*rows),
	}
	for _, b := range islands {
		ng.blockRect(b, pad)
	}
	return ng
}

func (ng *NavGrid) blockRect(b rect, pad int) {
	bx0 := b.x - pad
	by0 := b.y - pad
	bx1 := b.x + b.w + pad
	by1 := b.y + b.h + pad

	cMinX := max(0, bx0/cellSize)
	cMinY := max(0, by0/cellSize)
	cMaxX := min(ng.cols-1, (bx1-1)/cellSize)
	cMaxY := min(ng.rows-1, (by1-1)/cellSize)

	for cy := cMinY; cy <= cMaxY; cy++ {
		for cx := cMinX; cx <= cMaxX; cx++ {
			ng.blocked[cy*ng.cols+cx] = true
		}
	}
}

func (ng *NavGrid) Cols() int { return ng.cols }
func (ng *NavGrid) Rows() int { return ng.rows }

func (ng *NavGrid) inBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < ng.cols && c.Y < ng.rows
}

// IsBlocked reports whether c is land or off the chart.
func (ng *NavGrid) IsBlocked(c Cell) bool {
	if !ng.inBounds(c) {
		return true
	}
	return ng.blocked[c.Y*ng.cols+c.X]
}

// Walkable reports whether the world position p is open water.
func (ng *NavGrid) Walkable(p Vec2) bool {
	return !ng.IsBlocked(WorldToCell(p))
}

// Occupied reports whether any ship currently marks c.
func (ng *NavGrid) Occupied(c Cell) bool {
	if !ng.inBounds(c) {
		return false
	}
	return ng.occupied[c.Y*ng.cols+c.X] > 0
}

// SetOccupied marks or releases one ship's claim on c.
func (ng *NavGrid) SetOccupied(c Cell, on bool) {
	if !ng.inBounds(c) {
		return
	}
	i := c.Y*ng.cols + c.X
	if on {
		ng.occupied[i]++
		return
	}
	if ng.occupied[i] > 0 {
		ng.occupied[i]--
	}
}

// WorldToCell converts world pixel coordinates to a grid cell.
func WorldToCell(p Vec2) Cell {
	return Cell{int(math.Floor(p.X / cellSize)), int(math.Floor(p.Y / cellSize))}
}

// CellCenter converts a grid cell to its world pixel center.
func CellCenter(c Cell) Vec2 {
	return Vec2{float64(c.X*cellSize) + cellSize/2, float64(c.Y*cellSize) + cellSize/2}
}

// CellsInDirection returns the cone of cells ahead of from along dir:
// length steps forward, each widened by width cells to either side.
// The origin cell is never included.
func (ng *NavGrid) CellsInDirection(from Cell, dir Vec2, length, width int) []Cell {
	dir = dir.Normalize()
	if dir.IsZero() {
		return nil
	}
	side := dir.Perp()
	origin := CellCenter(from)
	seen := map[Cell]bool{from: true}
	var out []Cell
	for step := 1; step <= length; step++ {
		ahead := origin.Add(dir.Scale(float64(step * cellSize)))
		for lat := -width; lat <= width; lat++ {
			c := WorldToCell(ahead.Add(side.Scale(float64(lat * cellSize))))
			if seen[c] || !ng.inBounds(c) {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// NearestWalkable searches outward in rings from p for open water within
// maxRing cells. ok is false when none is found.
func (ng *NavGrid) NearestWalkable(p Vec2, maxRing int) (Vec2, bool) {
	c := WorldToCell(p)
	if !ng.IsBlocked(c) {
		return p, true
	}
	for r := 1; r <= maxRing; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				n := Cell{c.X + dx, c.Y + dy}
				if !ng.IsBlocked(n) {
					return CellCenter(n), true
				}
			}
		}
	}
	return Vec2{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// --- A* pathfinding ---

type pathNode struct {
	cell   Cell
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int           { return len(ol) }
func (ol openList) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int)      { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x any)        { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns a path of cell centers from `from` to `to`, or nil when the
// goal is unreachable. With avoid set, cells occupied by other ships are
// treated as blocked (start and goal excepted).
func (ng *NavGrid) FindPath(from, to Vec2, avoid bool) *Path {
	start := WorldToCell(from)
	goal := WorldToCell(to)

	if ng.IsBlocked(goal) {
		return nil
	}
	if ng.IsBlocked(start) {
		// Ships pushed onto a shore cell path out from the nearest open cell.
		p, ok := ng.NearestWalkable(from, 2)
		if !ok {
			return nil
		}
		start = WorldToCell(p)
	}
	if start == goal {
		return NewPath([]Vec2{to})
	}

	key := func(c Cell) int { return c.Y*ng.cols + c.X }
	heuristic := func(a, b Cell) float64 {
		dx := math.Abs(float64(a.X - b.X))
		dy := math.Abs(float64(a.Y - b.Y))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}
	passable := func(c Cell) bool {
		if ng.IsBlocked(c) {
			return false
		}
		if avoid && c != goal && ng.Occupied(c) {
			return false
		}
		return true
	}

	root := &pathNode{cell: start, h: heuristic(start, goal)}
	ol := &openList{root}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := map[int]*pathNode{key(start): root}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cell == goal {
			return NewPath(buildPath(cur, to))
		}
		k := key(cur.cell)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			n := Cell{cur.cell.X + d[0], cur.cell.Y + d[1]}
			if !passable(n) {
				continue
			}
			// No diagonal corner-cutting past land.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(Cell{cur.cell.X + d[0], cur.cell.Y}) || ng.IsBlocked(Cell{cur.cell.X, cur.cell.Y + d[1]}) {
					continue
				}
			}
			nk := key(n)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cell: n, g: g, h: heuristic(n, goal), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

// buildPath walks parents back to the start. The start cell is dropped (the
// ship is already there) and the final waypoint is the exact goal point.
func buildPath(end *pathNode, goal Vec2) []Vec2 {
	var cells []Cell
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	if len(cells) > 1 {
		cells = cells[1:]
	}
	pts := make([]Vec2, len(cells))
	for i, c := range cells {
		pts[i] = CellCenter(c)
	}
	pts[len(pts)-1] = goal
	return pts
}
