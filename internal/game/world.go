package game

import "math/rand"

// DefaultWorldSize is the side length of the square sea in pixels.
const DefaultWorldSize = 5760

// islandPad is the keep-out margin, in pixels, added around islands on the
// navigation grid.
const islandPad = 8

type rect struct {
	x int
	y int
	w int
	h int
}

func (r rect) contains(p Vec2) bool {
	return p.X >= float64(r.x) && p.X < float64(r.x+r.w) &&
		p.Y >= float64(r.y) && p.Y < float64(r.y+r.h)
}

func (r rect) overlaps(o rect, pad int) bool {
	return r.x-pad < o.x+o.w && o.x < r.x+r.w+pad &&
		r.y-pad < o.y+o.h && o.y < r.y+r.h+pad
}

func (r rect) center() Vec2 {
	return V(float64(r.x)+float64(r.w)/2, float64(r.y)+float64(r.h)/2)
}

// fleetSpawnFractions are the fleet spawn points as fractions of the sea.
var fleetSpawnFractions = [5][2]float64{
	{300.0 / 5760, 2050.0 / 5760},
	{930.0 / 5760, 3000.0 / 5760},
	{2500.0 / 5760, 3900.0 / 5760},
	{3700.0 / 5760, 2100.0 / 5760},
	{4800.0 / 5760, 1300.0 / 5760},
}

// Sea is the static map: bounds, islands and the fixed points of interest.
type Sea struct {
	W, H        int
	Islands     []rect
	SpawnPoints []Vec2
	Treasure    Vec2 // anchorage of the ghost ship
	Lair        Vec2 // home water of the octopus
}

// NewSea lays out islands at random, keeping clear of spawn points and of
// each other.
func NewSea(w, h, islandCount int, rng *rand.Rand) *Sea {
	s := &Sea{W: w, H: h}
	for _, f := range fleetSpawnFractions {
		s.SpawnPoints = append(s.SpawnPoints, V(f[0]*float64(w), f[1]*float64(h)))
	}
	s.Treasure = V(float64(w)*0.8, float64(h)*0.8)
	s.Lair = V(float64(w)*0.2, float64(h)*0.75)

	sizeSets := [][2]int{{3, 3}, {3, 4}, {4, 3}, {4, 4}, {5, 4}, {4, 5}, {6, 5}}
	unit := cellSize * 2
	for attempt := 0; attempt < islandCount*20 && len(s.Islands) < islandCount; attempt++ {
		sz := sizeSets[rng.Intn(len(sizeSets))]
		iw, ih := sz[0]*unit, sz[1]*unit
		if iw >= w || ih >= h {
			continue
		}
		cand := rect{x: rng.Intn(w - iw), y: rng.Intn(h - ih), w: iw, h: ih}
		if s.blocksPoint(cand) || s.overlapsIsland(cand) {
			continue
		}
		s.Islands = append(s.Islands, cand)
	}
	return s
}

// OpenSea returns a sea with no islands, used by tests and scenarios.
func OpenSea(w, h int) *Sea {
	return NewSea(w, h, 0, rand.New(rand.NewSource(1))) // #nosec G404 -- no randomness consumed
}

func (s *Sea) blocksPoint(r rect) bool {
	keep := cellSize * 6
	pts := append([]Vec2{s.Treasure, s.Lair}, s.SpawnPoints...)
	for _, p := range pts {
		area := rect{x: int(p.X) - keep, y: int(p.Y) - keep, w: 2 * keep, h: 2 * keep}
		if r.overlaps(area, 0) {
			return true
		}
	}
	return false
}

func (s *Sea) overlapsIsland(r rect) bool {
	for _, o := range s.Islands {
		if r.overlaps(o, cellSize*4) {
			return true
		}
	}
	return false
}

// Bounds is the sea as an AABB.
func (s *Sea) Bounds() AABB {
	return AABB{X: 0, Y: 0, W: float64(s.W), H: float64(s.H)}
}

// IslandBoxes returns every island as an AABB.
func (s *Sea) IslandBoxes() []AABB {
	out := make([]AABB, len(s.Islands))
	for i, r := range s.Islands {
		out[i] = AABB{X: float64(r.x), Y: float64(r.y), W: float64(r.w), H: float64(r.h)}
	}
	return out
}

// NavGrid builds the navigation grid for this sea.
func (s *Sea) NavGrid() *NavGrid {
	return NewNavGrid(s.W, s.H, s.Islands, islandPad)
}

// IslandNear returns the island closest to p, or false if there are none.
func (s *Sea) IslandNear(p Vec2) (rect, bool) {
	best, bestD, ok := rect{}, 0.0, false
	for _, r := range s.Islands {
		if d := r.center().Dist(p); !ok || d < bestD {
			best, bestD, ok = r, d, true
		}
	}
	return best, ok
}
