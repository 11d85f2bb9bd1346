package game

import "fmt"

// ShipID is a stable handle; ids are never reused within a context.
type ShipID int

// Side is the ownership of a ship.
type Side int

const (
	SidePlayer Side = iota
	SideAI
)

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "ai"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideAI
	}
	return SidePlayer
}

// Stat is a combat value split into its base, a permanent upgrade and a
// pending amount that drains into the base over time.
type Stat struct {
	Value   float64
	Upgrade float64
	Pending float64
}

// Total is base plus upgrade.
func (s Stat) Total() float64 { return s.Value + s.Upgrade }

// Ship is the single record used for every archetype.
type Ship struct {
	ID        ShipID
	Label     string
	Archetype Archetype
	Side      Side
	behavior  CombatBehavior

	Pos   Vec2
	Dir   Vec2
	Speed float64 // current speed, ramps toward MaxSpeed

	HP    int
	MaxHP int
	Crew  float64

	Attack   Stat
	Enter    Stat
	Repair   Stat
	MaxSpeed Stat

	State   CombatState
	Role    CombatRole
	Target  *Ship
	Targets []*Ship // multi-target gunnery; Target is the nearest of these

	Path      *Path
	guardPath *Path // route resumed after a defensive engagement
	Dest      Vec2  // last requested destination
	Moving    bool
	Chasing   bool
	Docking   bool // docked alongside Target in a boarding action
	IsEntered bool // a boarder is docked alongside
	Repairing bool
	Selected  bool

	Fleet *Fleet
	Home  Vec2 // lair or home island; hunters return here

	arriveOffset   float64
	cell           Cell
	hasCell        bool
	windMod        float64
	windWith       bool
	windAgainst    bool
	shotCooldown   float64
	refreshTimer   float64
	regenTimer     float64
	enterRegen     float64
	pendingTimer   float64
	repairProgress float64
	rum            rumState
	boarders       int    // boarders docked alongside
	sinkCause      string // set when the ship goes down other than by gunfire
}

func newShip(id ShipID, arch Archetype, pos Vec2, side Side) *Ship {
	b := arch.Behavior()
	s := &Ship{
		ID:        id,
		Label:     fmt.Sprintf("%s-%d", arch, id),
		Archetype: arch,
		Side:      side,
		behavior:  b,
		Pos:       pos,
		Dir:       V(1, 0),
		HP:        b.MaxHP,
		MaxHP:     b.MaxHP,
		Crew:      b.Crew,
		Attack:    Stat{Value: b.Attack},
		Enter:     Stat{Value: b.Enter},
		Repair:    Stat{Value: b.Repair},
		MaxSpeed:  Stat{Value: b.Speed},
		Home:      pos,
	}
	s.regenTimer = b.RegenDelay
	s.enterRegen = b.EnterRegenInterval
	return s
}

// Behavior returns the ship's archetype row.
func (s *Ship) Behavior() CombatBehavior { return s.behavior }

// Alive reports hp > 0.
func (s *Ship) Alive() bool { return s.HP > 0 }

// IsPlayer reports player ownership.
func (s *Ship) IsPlayer() bool { return s.Side == SidePlayer }

// Bounds is the footprint box used by the spatial index.
func (s *Ship) Bounds() AABB { return BoxAround(s.Pos, s.behavior.Size) }

// Cell returns the grid cell the ship currently marks as occupied.
func (s *Ship) Cell() (Cell, bool) { return s.cell, s.hasCell }

// Hostile reports whether o is alive and on the other side.
func (s *Ship) Hostile(o *Ship) bool {
	return o != nil && o != s && o.Alive() && o.Side != s.Side
}

// Damage is the hit points one shot from s removes.
func (s *Ship) Damage() int {
	return max(0, int(s.Attack.Total()*shotDamageScale))
}

// SetPath installs p and starts moving along it. A ship that was at rest
// starts again from a slow crawl.
func (s *Ship) SetPath(p *Path) {
	if !s.Moving {
		s.Speed = 0.1
	}
	s.Path = p
	s.arriveOffset = 0
	if d, ok := p.Destination(); ok {
		s.Dest = d
	}
	s.Moving = !p.Finished() && !s.IsEntered
}

// Stop halts the ship in place without touching its path.
func (s *Ship) Stop() {
	s.Moving = false
}

// resumePath restarts movement along the stored guard route, if unfinished.
func (s *Ship) resumePath() bool {
	if s.guardPath == nil || s.guardPath.Finished() {
		return false
	}
	s.Path = s.guardPath
	s.Moving = !s.IsEntered
	return s.Moving
}

func (s *Ship) String() string {
	return fmt.Sprintf("%s[%s hp=%d %s]", s.Label, s.Side, s.HP, s.State)
}
