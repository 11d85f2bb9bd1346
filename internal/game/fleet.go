package game

import "fmt"

const (
	fleetScanRadius    = 600.0 // flagship's detection range, also the battle leash
	fleetRoamInterval  = 3.0
	fleetFlagshipSpeed = 0.25
)

// Fleet is a group of ships led by a flagship. Marked holds the enemy ships
// the fleet is currently fighting.
type Fleet struct {
	ID        int
	Name      string
	Side      Side
	Flagship  *Ship
	Members   []*Ship
	Marked    []*Ship
	InBattle  bool
	Defending bool // holds station instead of roaming

	roamTimer float64
	retired   bool
}

// SpawnFleet creates a fleet at anchor. With at least one battle ship the
// flagship is a FlagShip and takes one battle slot; otherwise a trading ship
// leads. The remaining ships are laid out in two rows, battle ships first.
func SpawnFleet(ctx *SimulationContext, anchor Vec2, battle, trading int, side Side) *Fleet {
	if battle+trading <= 0 {
		return nil
	}
	ctx.nextFleet++
	f := &Fleet{ID: ctx.nextFleet, Name: fmt.Sprintf("fleet-%d", ctx.nextFleet), Side: side}

	if battle > 0 {
		f.Flagship = ctx.Spawn(ArchetypeFlagShip, anchor, side)
		battle--
	} else {
		f.Flagship = ctx.Spawn(ArchetypeTrading, anchor, side)
		f.Flagship.MaxSpeed.Value = fleetFlagshipSpeed
		trading--
	}
	f.add(f.Flagship)

	offsets := fleetRowOffsets(battle + trading)
	for i, off := range offsets {
		arch := ArchetypeBattle
		if i >= battle {
			arch = ArchetypeTrading
		}
		f.add(ctx.Spawn(arch, anchor.Add(off), side))
	}

	ctx.Fleets = append(ctx.Fleets, f)
	ctx.Log.Info().Str("fleet", f.Name).Int("ships", len(f.Members)).
		Float64("x", anchor.X).Float64("y", anchor.Y).Msg("fleet spawned")
	return f
}

func (f *Fleet) add(s *Ship) {
	s.Fleet = f
	f.Members = append(f.Members, s)
}

// Retired reports whether the fleet has lost every member.
func (f *Fleet) Retired() bool { return f.retired }

// Position is the flagship's position.
func (f *Fleet) Position() Vec2 {
	if f.Flagship == nil {
		return Vec2{}
	}
	return f.Flagship.Pos
}

// Move sends the fleet to dest. The member closest to dest sails to the
// point itself; every other member stops trailOffset short of it, back along
// its line to that leader.
func (f *Fleet) Move(ctx *SimulationContext, dest Vec2) {
	leader := closestTo(dest, f.Members)
	if leader == nil {
		return
	}
	for _, m := range f.Members {
		target := dest
		if m != leader {
			target = trailingDest(dest, leader.Pos, m.Pos)
		}
		ctx.moveShip(m, target)
		m.Dest = target
	}
}

// Attack engages targets: nearest to the flagship first, members assigned
// round-robin. Each warship boards or bombards per ChooseBoarding, and no
// target is boarded by more than one member from a single order.
func (f *Fleet) Attack(ctx *SimulationContext, targets []*Ship) {
	if len(targets) == 0 || len(f.Members) == 0 {
		return
	}
	targets = append([]*Ship(nil), targets...)
	sortByDistance(targets, f.Position())
	f.InBattle = true

	boarded := make([]bool, len(targets))
	next := 0
	for _, m := range f.Members {
		if next >= len(targets) {
			next = 0
		}
		t := targets[next]
		if m.Archetype.CanBoard() && t.behavior.Boardable && !boarded[next] &&
			ChooseBoarding(m.Enter.Total(), t.Enter.Total(), ctx.Rng.Intn(2)) {
			ctx.board(m, t)
			boarded[next] = true
		} else {
			ctx.attack(m, t)
		}
		ctx.moveShip(m, t.Pos)
		next++
	}

	if len(targets) > len(f.Members) {
		targets = targets[:len(f.Members)]
	}
	for _, t := range targets {
		f.mark(t)
	}
	ctx.emit(Event{Kind: EventFleetBattle, Ship: f.Flagship.ID, Side: f.Side, Pos: f.Position(), Value: float64(len(f.Marked)), Detail: f.Name + " engages"})
	ctx.Log.Info().Str("fleet", f.Name).Int("targets", len(f.Marked)).Msg("fleet engaging")
}

// UpdateBattle sends idle members after the first marked ship.
func (f *Fleet) UpdateBattle(ctx *SimulationContext) {
	if len(f.Marked) == 0 {
		return
	}
	t := f.Marked[0]
	for _, m := range f.Members {
		if m.State != StateIdle || m.IsEntered {
			continue
		}
		if m.Archetype.CanBoard() && t.behavior.Boardable &&
			ChooseBoarding(m.Enter.Total(), t.Enter.Total(), ctx.Rng.Intn(2)) {
			ctx.board(m, t)
		} else {
			ctx.attack(m, t)
		}
		ctx.moveShip(m, t.Pos)
	}
}

// StopBattle leaves battle and idles every member.
func (f *Fleet) StopBattle(ctx *SimulationContext) {
	f.InBattle = false
	for _, m := range f.Members {
		m.goIdle(ctx)
	}
	ctx.emit(Event{Kind: EventFleetBattle, Side: f.Side, Pos: f.Position(), Detail: f.Name + " stands down"})
	ctx.Log.Info().Str("fleet", f.Name).Msg("fleet stands down")
}

// Update runs the fleet's own decisions for one tick.
func (f *Fleet) Update(ctx *SimulationContext, dt float64) {
	if f.retired {
		return
	}
	f.pruneMembers()
	if len(f.Members) == 0 {
		f.retire(ctx)
		return
	}
	if f.Flagship == nil || f.Flagship.Fleet != f {
		f.Flagship = f.Members[0]
	}

	if !f.InBattle {
		if targets := ctx.Hostiles(f.Flagship, fleetScanRadius); len(targets) > 0 {
			f.Attack(ctx, targets)
			return
		}
		if f.Flagship.Moving || f.Defending {
			return
		}
		f.roamTimer -= dt
		if f.roamTimer <= 0 {
			f.roamTimer = fleetRoamInterval
			f.Move(ctx, V(float64(ctx.Rng.Intn(ctx.Sea.W)), float64(ctx.Rng.Intn(ctx.Sea.H))))
		}
		return
	}

	f.pruneMarked()
	f.UpdateBattle(ctx)
	for _, t := range ctx.Hostiles(f.Flagship, fleetScanRadius) {
		f.mark(t)
	}
	if len(f.Marked) == 0 {
		f.StopBattle(ctx)
	}
}

// pruneMembers drops sunk members and those now flying another flag. In
// battle, a lost member becomes a marked enemy.
func (f *Fleet) pruneMembers() {
	kept := f.Members[:0]
	for _, m := range f.Members {
		switch {
		case !m.Alive():
			m.Fleet = nil
		case m.Side != f.Side:
			m.Fleet = nil
			if f.InBattle {
				f.mark(m)
			}
		default:
			kept = append(kept, m)
		}
	}
	clearTail(f.Members, len(kept))
	f.Members = kept
}

// pruneMarked forgets marked ships that sank, changed sides or slipped
// beyond the leash.
func (f *Fleet) pruneMarked() {
	kept := f.Marked[:0]
	for _, t := range f.Marked {
		if !t.Alive() || t.Side == f.Side || t.Pos.Dist(f.Position()) > fleetScanRadius {
			continue
		}
		kept = append(kept, t)
	}
	clearTail(f.Marked, len(kept))
	f.Marked = kept
}

func (f *Fleet) mark(t *Ship) {
	if !containsShip(f.Marked, t) {
		f.Marked = append(f.Marked, t)
	}
}

func (f *Fleet) retire(ctx *SimulationContext) {
	f.retired = true
	f.InBattle = false
	f.Marked = nil
	f.Flagship = nil
	ctx.emit(Event{Kind: EventFleetRetired, Side: f.Side, Detail: f.Name})
	ctx.Log.Info().Str("fleet", f.Name).Msg("fleet retired")
}
