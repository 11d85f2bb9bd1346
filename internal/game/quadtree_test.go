package game

import (
	"math"
	"math/rand"
	"testing"
)

func entryAt(id ShipID, x, y float64) QuadEntry {
	return QuadEntry{ID: id, Box: BoxAround(V(x, y), V(8, 8))}
}

func ids(entries []QuadEntry) map[ShipID]bool {
	out := make(map[ShipID]bool, len(entries))
	for _, e := range entries {
		out[e.ID] = true
	}
	return out
}

// --- AABB ---

func TestAABB_ContainsExcludesFarEdges(t *testing.T) {
	a := AABB{X: 0, Y: 0, W: 10, H: 10}
	if !a.Contains(V(0, 0)) {
		t.Fatal("top-left corner should be inside")
	}
	if a.Contains(V(10, 5)) || a.Contains(V(5, 10)) {
		t.Fatal("right and bottom edges should be outside")
	}
}

func TestAABB_Intersects(t *testing.T) {
	a := AABB{X: 0, Y: 0, W: 10, H: 10}
	if !a.Intersects(AABB{X: 5, Y: 5, W: 10, H: 10}) {
		t.Fatal("overlapping boxes should intersect")
	}
	if a.Intersects(AABB{X: 10, Y: 0, W: 5, H: 5}) {
		t.Fatal("touching boxes should not intersect")
	}
}

func TestBoxAround_Centred(t *testing.T) {
	b := BoxAround(V(50, 40), V(20, 10))
	if b.X != 40 || b.Y != 35 || b.Center() != V(50, 40) {
		t.Fatalf("box = %+v", b)
	}
}

// --- QuadTree ---

func TestQuadTree_SplitsPastCapacity(t *testing.T) {
	q := NewQuadTree(0, AABB{W: 1000, H: 1000})
	for i := 0; i < quadMaxObjects; i++ {
		q.Insert(entryAt(ShipID(i+1), 100+float64(i)*10, 100))
	}
	if q.Depth() != 0 {
		t.Fatalf("depth = %d before overflow, want 0", q.Depth())
	}
	q.Insert(entryAt(99, 900, 900))
	if q.Depth() == 0 {
		t.Fatal("inserting past capacity should split the root")
	}
	if q.Len() != quadMaxObjects+1 {
		t.Fatalf("len = %d, want %d", q.Len(), quadMaxObjects+1)
	}
}

func TestQuadTree_StraddlersStayAtParent(t *testing.T) {
	q := NewQuadTree(0, AABB{W: 1000, H: 1000})
	for i := 0; i < quadMaxObjects; i++ {
		q.Insert(entryAt(ShipID(i+1), 100+float64(i)*10, 100))
	}
	q.Insert(entryAt(50, 500, 500))
	found := false
	for _, e := range q.objects {
		if e.ID == 50 {
			found = true
		}
	}
	if !found {
		t.Fatal("box on the split lines should stay at the root")
	}
}

func TestQuadTree_DepthCapped(t *testing.T) {
	q := NewQuadTree(0, AABB{W: 1024, H: 1024})
	for i := 0; i < 200; i++ {
		q.Insert(entryAt(ShipID(i+1), 3+float64(i%10)*0.1, 3+float64(i/10)*0.1))
	}
	if q.Depth() > quadMaxLevels {
		t.Fatalf("depth = %d, want <= %d", q.Depth(), quadMaxLevels)
	}
	if q.Len() != 200 {
		t.Fatalf("len = %d, want 200", q.Len())
	}
}

func TestQuadTree_ClearEmpties(t *testing.T) {
	q := NewQuadTree(0, AABB{W: 1000, H: 1000})
	for i := 0; i < 40; i++ {
		q.Insert(entryAt(ShipID(i+1), float64(i*20), float64(i*20)))
	}
	q.Clear()
	if q.Len() != 0 || q.Depth() != 0 {
		t.Fatalf("after clear len=%d depth=%d", q.Len(), q.Depth())
	}
}

// Retrieve and QueryRange may over-report but must never miss a nearby entry.
func TestQuadTree_NoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewQuadTree(0, AABB{W: 2000, H: 2000})
	pts := make(map[ShipID]Vec2)
	for i := 0; i < 300; i++ {
		id := ShipID(i + 1)
		p := V(rng.Float64()*2000, rng.Float64()*2000)
		pts[id] = p
		q.Insert(QuadEntry{ID: id, Box: BoxAround(p, V(8, 8))})
	}

	for trial := 0; trial < 50; trial++ {
		c := V(rng.Float64()*2000, rng.Float64()*2000)
		r := 20 + rng.Float64()*200
		got := ids(q.QueryRange(c, r))
		for id, p := range pts {
			if p.Dist(c) <= r && !got[id] {
				t.Fatalf("QueryRange(%v, %.0f) missed %d at %v", c, r, id, p)
			}
		}
	}

	leafReach := 2000 / math.Pow(2, quadMaxLevels)
	for trial := 0; trial < 50; trial++ {
		c := V(rng.Float64()*2000, rng.Float64()*2000)
		got := ids(q.Retrieve(c))
		for id, p := range pts {
			if p.Dist(c) <= leafReach && !got[id] {
				t.Fatalf("Retrieve(%v) missed %d at distance %.1f", c, id, p.Dist(c))
			}
		}
	}
}

func TestQuadTree_RetrieveNoDuplicates(t *testing.T) {
	q := NewQuadTree(0, AABB{W: 1000, H: 1000})
	for i := 0; i < 60; i++ {
		q.Insert(entryAt(ShipID(i+1), float64(i%8)*120+10, float64(i/8)*120+10))
	}
	seen := map[ShipID]int{}
	for _, e := range q.Retrieve(V(500, 500)) {
		seen[e.ID]++
		if seen[e.ID] > 1 {
			t.Fatalf("entry %d returned twice", e.ID)
		}
	}
}

// --- Vec2 ---

func TestVec2_HeadingRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 270, 359} {
		got := FromHeadingDeg(deg).HeadingDeg()
		if angleDiff(got, deg) > 1e-9 {
			t.Fatalf("heading %v round-tripped to %v", deg, got)
		}
	}
}

func TestAngleDiff_Wraps(t *testing.T) {
	if d := angleDiff(350, 10); math.Abs(d-20) > 1e-9 {
		t.Fatalf("angleDiff(350,10) = %v, want 20", d)
	}
	if d := angleDiff(-90, 270); d > 1e-9 {
		t.Fatalf("angleDiff(-90,270) = %v, want 0", d)
	}
}

func TestVec2_NormalizeZero(t *testing.T) {
	if !(Vec2{}).Normalize().IsZero() {
		t.Fatal("zero vector should normalize to zero")
	}
	if l := V(3, 4).Normalize().Len(); math.Abs(l-1) > 1e-9 {
		t.Fatalf("unit length = %v", l)
	}
}
