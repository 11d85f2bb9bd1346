package game

import (
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
)

// SimulationContext owns all mutable simulation state. Every subsystem
// receives it explicitly; there is no package-level state.
type SimulationContext struct {
	Sea       *Sea
	Grid      *NavGrid
	Index     *QuadTree
	Paths     Pathfinder
	Ships     []*Ship
	Fleets    []*Fleet
	Resources *ResourcePool
	Wind      Wind
	Stats     *StatCounters
	Events    EventSink
	Log       zerolog.Logger
	Rng       *rand.Rand
	Tick      int
	Clock     float64 // simulated seconds since start

	byID      map[ShipID]*Ship
	attacking *RoleList
	defending *RoleList
	entering  *RoleList
	repairing []*Ship
	nextID    ShipID
	nextFleet int
}

// NewSimulationContext builds an empty context over sea. The grid doubles
// as the pathfinder.
func NewSimulationContext(sea *Sea, rng *rand.Rand) *SimulationContext {
	grid := sea.NavGrid()
	return &SimulationContext{
		Sea:       sea,
		Grid:      grid,
		Index:     NewQuadTree(0, sea.Bounds()),
		Paths:     grid,
		Resources: NewResourcePool(0, 0, 0),
		Stats:     NewStatCounters(),
		Log:       zerolog.Nop(),
		Rng:       rng,
		byID:      make(map[ShipID]*Ship),
		attacking: newRoleList(RoleAttacking),
		defending: newRoleList(RoleDefending),
		entering:  newRoleList(RoleEntering),
	}
}

// Spawn creates a ship of arch at pos for side and registers it.
func (c *SimulationContext) Spawn(arch Archetype, pos Vec2, side Side) *Ship {
	c.nextID++
	s := newShip(c.nextID, arch, c.clampToWorld(pos), side)
	c.Ships = append(c.Ships, s)
	c.byID[s.ID] = s
	updateCell(c, s)
	c.emit(Event{Kind: EventSpawn, Ship: s.ID, Side: side, Archetype: arch, Pos: s.Pos})
	c.Log.Info().Str("ship", s.Label).Str("side", side.String()).
		Float64("x", s.Pos.X).Float64("y", s.Pos.Y).Msg("spawned")
	return s
}

// Ship looks a live ship up by id.
func (c *SimulationContext) Ship(id ShipID) *Ship {
	return c.byID[id]
}

// ShipsOf returns the live ships of side.
func (c *SimulationContext) ShipsOf(side Side) []*Ship {
	var out []*Ship
	for _, s := range c.Ships {
		if s.Side == side && s.Alive() {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of live ships of arch on side.
func (c *SimulationContext) Count(arch Archetype, side Side) int {
	n := 0
	for _, s := range c.Ships {
		if s.Archetype == arch && s.Side == side && s.Alive() {
			n++
		}
	}
	return n
}

// Selected returns every selected ship.
func (c *SimulationContext) Selected() []*Ship {
	var out []*Ship
	for _, s := range c.Ships {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// SelectRegion selects the player ships inside box and deselects the rest.
func (c *SimulationContext) SelectRegion(box AABB) []*Ship {
	var out []*Ship
	for _, s := range c.Ships {
		s.Selected = s.IsPlayer() && s.Alive() && box.Contains(s.Pos)
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// Retrieve returns the quadtree candidates for s: a superset of its
// neighbours that callers filter by range.
func (c *SimulationContext) Retrieve(s *Ship) []*Ship {
	return c.resolve(c.Index.Retrieve(s.Pos), s)
}

// Nearby returns live ships whose position lies within r of p.
func (c *SimulationContext) Nearby(p Vec2, r float64) []*Ship {
	var out []*Ship
	if c.Index == nil || c.Index.Len() == 0 {
		for _, s := range c.Ships {
			if s.Alive() && s.Pos.Dist(p) <= r {
				out = append(out, s)
			}
		}
		return out
	}
	for _, s := range c.resolve(c.Index.QueryRange(p, r), nil) {
		if s.Alive() && s.Pos.Dist(p) <= r {
			out = append(out, s)
		}
	}
	return out
}

// Hostiles returns live ships of the other side within r of s, nearest first.
func (c *SimulationContext) Hostiles(s *Ship, r float64) []*Ship {
	var out []*Ship
	for _, o := range c.Nearby(s.Pos, r) {
		if s.Hostile(o) {
			out = append(out, o)
		}
	}
	sortByDistance(out, s.Pos)
	return out
}

func (c *SimulationContext) resolve(entries []QuadEntry, skip *Ship) []*Ship {
	out := make([]*Ship, 0, len(entries))
	for _, e := range entries {
		if s, ok := c.byID[e.ID]; ok && s != skip {
			out = append(out, s)
		}
	}
	return out
}

// rebuildIndex clears the quadtree and inserts every live ship.
func (c *SimulationContext) rebuildIndex() {
	c.Index.Clear()
	for _, s := range c.Ships {
		if s.Alive() {
			c.Index.Insert(QuadEntry{ID: s.ID, Box: s.Bounds()})
		}
	}
}

func (c *SimulationContext) clampToWorld(p Vec2) Vec2 {
	if c.Sea == nil {
		return p
	}
	return V(min(max(p.X, 0), float64(c.Sea.W-1)), min(max(p.Y, 0), float64(c.Sea.H-1)))
}

func (c *SimulationContext) emit(e Event) {
	e.Tick = c.Tick
	if c.Events != nil {
		c.Events.OnEvent(e)
	}
}

// path asks the pathfinder for a route; nil means no route.
func (c *SimulationContext) path(from, to Vec2, avoid bool) *Path {
	if c.Paths == nil {
		return nil
	}
	return c.Paths.FindPath(from, to, avoid)
}

// changeSide hands s to side. Prizes taken by the player count as hijacked
// and may carry a chart fragment; a ship that must not be taken sinks.
func (c *SimulationContext) changeSide(s *Ship, side Side) {
	if s.Side == side {
		return
	}
	from := s.Side
	s.Side = side
	if side != SidePlayer {
		s.Selected = false
	}
	c.emit(Event{Kind: EventCaptured, Ship: s.ID, Side: side, Archetype: s.Archetype, Pos: s.Pos, Detail: from.String() + " → " + side.String()})
	c.Log.Info().Str("ship", s.Label).Str("from", from.String()).Str("to", side.String()).Msg("ship taken")

	if s.behavior.SelfDestructIfTaken {
		s.HP = 0
		return
	}
	if side == SidePlayer {
		c.Stats.Inc(StatShipsHijacked)
		if odds := captureMapPartOdds(s.Archetype); odds > 0 && c.Rng.Intn(odds) == 1 {
			c.Resources.Add(MapParts, 1)
		}
	}
}

// enlist files s into the role list matching its state.
func (c *SimulationContext) enlist(s *Ship) {
	switch RoleFor(s.State) {
	case RoleAttacking:
		c.attacking.Add(s)
	case RoleDefending:
		c.defending.Add(s)
	case RoleEntering:
		c.entering.Add(s)
	default:
		s.Role = RoleNone
	}
}

// RoleList returns the list driving role, or nil for RoleNone.
func (c *SimulationContext) RoleList(role CombatRole) *RoleList {
	switch role {
	case RoleAttacking:
		return c.attacking
	case RoleDefending:
		return c.defending
	case RoleEntering:
		return c.entering
	default:
		return nil
	}
}

// Repairing returns the repair queue.
func (c *SimulationContext) Repairing() []*Ship { return c.repairing }

// remove drops s from the ship list and the id map.
func (c *SimulationContext) remove(s *Ship) {
	delete(c.byID, s.ID)
	kept := c.Ships[:0]
	for _, o := range c.Ships {
		if o != s {
			kept = append(kept, o)
		}
	}
	clearTail(c.Ships, len(kept))
	c.Ships = kept
}

func sortByDistance(ships []*Ship, p Vec2) {
	sort.SliceStable(ships, func(i, j int) bool {
		return ships[i].Pos.Dist(p) < ships[j].Pos.Dist(p)
	})
}
