package game

const (
	fisherRoamInterval  = 8.0
	tradingRoamInterval = 5.0
	battleRoamInterval  = 3.0
	tradingRoamMin      = 100.0 // trading ships ignore destinations closer than this
	battleScanRadius    = 500.0
	battleMaxEngage     = 3 // more enemies than this and a lone warship holds station

	ghostScanRadius     = 600.0
	ghostLeash          = 200.0
	ghostCloseRange     = 120.0
	ghostWeave          = 100.0
	ghostWeaveInterval  = 1.5
	ghostCloseIn        = 20.0
	ghostCloseInterval  = 1.0
	octopusScanRadius   = 400.0
	octopusLeash        = 200.0
	octopusChaseRange   = 70.0
	octopusChaseRefresh = 2.0
	dragonScanRadius    = 200.0
	dragonChaseRange    = 70.0

	fisherQuota     = 12
	tradingQuota    = 7
	battleQuotaBase = 2
	battleQuotaPer  = 3 // extra lone warships per map part
	fleetQuotaMax   = 3
	respawnMargin   = 200
	respawnHidden   = 400.0 // spawns stay this far from player ships

	// DefaultGhostMapParts is the chart-fragment count that raises the ghost ship.
	DefaultGhostMapParts = 6
)

// AIDirector makes every decision for the AI side: roaming, target
// acquisition, fleets, the sea's hunters and respawning.
type AIDirector struct {
	GhostMapParts int
	Respawn       bool

	fisherRoam  float64
	tradingRoam float64
	battleRoam  float64

	ghost        *Ship
	octopus      *Ship
	dragon       *Ship
	admiral      *Fleet
	ghostRaised  bool
	ghostMove    float64
	ghostRight   bool
	octopusChase float64
}

// NewAIDirector returns a director with respawning on.
func NewAIDirector() *AIDirector {
	return &AIDirector{GhostMapParts: DefaultGhostMapParts, Respawn: true}
}

// Ghost returns the ghost ship, or nil.
func (d *AIDirector) Ghost() *Ship { return d.ghost }

// Populate seeds the sea with the opening AI traffic: trading ships, fishers
// and the octopus in its lair.
func (d *AIDirector) Populate(ctx *SimulationContext) {
	w, h := float64(ctx.Sea.W), float64(ctx.Sea.H)
	at := func(x, y float64) Vec2 { return V(x/DefaultWorldSize*w, y/DefaultWorldSize*h) }
	for _, p := range []Vec2{at(500, 50), at(350, 1000), at(1500, 1480), at(3100, 1600), at(900, 2800)} {
		d.spawnOnWater(ctx, ArchetypeTrading, p)
	}
	for _, p := range []Vec2{
		at(300, 100), at(350, 900), at(1760, 2100), at(950, 3000), at(3500, 3000), at(5000, 1200),
		at(4000, 3500), at(4700, 4700), at(3300, 5500), at(1770, 5500), at(100, 5500),
	} {
		d.spawnOnWater(ctx, ArchetypeFisher, p)
	}
	d.SpawnOctopus(ctx, ctx.Sea.Lair)
}

func (d *AIDirector) spawnOnWater(ctx *SimulationContext, arch Archetype, p Vec2) *Ship {
	if ctx.Grid != nil && !ctx.Grid.Walkable(p) {
		if q, ok := ctx.Grid.NearestWalkable(p, 8); ok {
			p = q
		}
	}
	return ctx.Spawn(arch, p, SideAI)
}

// SpawnOctopus places the octopus; it guards pos.
func (d *AIDirector) SpawnOctopus(ctx *SimulationContext, pos Vec2) *Ship {
	d.octopus = d.spawnOnWater(ctx, ArchetypeOctopus, pos)
	d.octopus.Home = d.octopus.Pos
	return d.octopus
}

// SpawnDragon releases the dragon at pos.
func (d *AIDirector) SpawnDragon(ctx *SimulationContext, pos Vec2) *Ship {
	d.dragon = ctx.Spawn(ArchetypeDragon, pos, SideAI)
	return d.dragon
}

// SpawnGhost raises the ghost ship at the treasure anchorage and clears the
// AI's regular warships and traders off the sea, except the admiral's fleet.
func (d *AIDirector) SpawnGhost(ctx *SimulationContext) *Ship {
	d.ghostRaised = true
	for _, f := range ctx.Fleets {
		if f == d.admiral || f.Side != SideAI {
			continue
		}
		for _, m := range f.Members {
			m.HP = 0
		}
	}
	for _, s := range ctx.Ships {
		if s.Side == SideAI && s.Fleet == nil &&
			(s.Archetype == ArchetypeBattle || s.Archetype == ArchetypeTrading) {
			s.HP = 0
		}
	}
	d.ghost = d.spawnOnWater(ctx, ArchetypeGhost, ctx.Sea.Treasure)
	d.ghost.Home = ctx.Sea.Treasure
	ctx.emit(Event{Kind: EventGhost, Ship: d.ghost.ID, Side: SideAI, Archetype: ArchetypeGhost, Pos: d.ghost.Pos})
	ctx.Log.Warn().Float64("x", d.ghost.Pos.X).Float64("y", d.ghost.Pos.Y).Msg("the ghost ship has risen")
	return d.ghost
}

// SpawnAdmiral places the admiral's fleet, which holds station.
func (d *AIDirector) SpawnAdmiral(ctx *SimulationContext, pos Vec2) *Fleet {
	d.admiral = SpawnFleet(ctx, pos, 3, 2, SideAI)
	d.admiral.Defending = true
	return d.admiral
}

// Update makes this tick's AI decisions.
func (d *AIDirector) Update(ctx *SimulationContext, dt float64) {
	d.updateFishers(ctx, dt)
	d.updateTraders(ctx, dt)
	d.updateWarships(ctx, dt)
	d.updateFleets(ctx, dt)
	d.updateGhost(ctx, dt)
	d.updateOctopus(ctx, dt)
	d.updateDragon(ctx)

	if !d.ghostRaised && d.GhostMapParts > 0 && ctx.Resources.Int(MapParts) >= d.GhostMapParts {
		d.SpawnGhost(ctx)
	}
	if d.ghost == nil && d.Respawn {
		d.respawn(ctx)
	}
}

// loners returns live AI ships of arch that do not sail in a fleet.
func loners(ctx *SimulationContext, arch Archetype) []*Ship {
	var out []*Ship
	for _, s := range ctx.Ships {
		if s.Archetype == arch && s.Side == SideAI && s.Fleet == nil && s.Alive() {
			out = append(out, s)
		}
	}
	return out
}

func randomPoint(ctx *SimulationContext) Vec2 {
	return V(float64(ctx.Rng.Intn(ctx.Sea.W)), float64(ctx.Rng.Intn(ctx.Sea.H)))
}

func (d *AIDirector) updateFishers(ctx *SimulationContext, dt float64) {
	d.fisherRoam -= dt
	for _, s := range loners(ctx, ArchetypeFisher) {
		if s.Moving || d.fisherRoam > 0 {
			continue
		}
		ctx.moveShip(s, randomPoint(ctx))
		d.fisherRoam = fisherRoamInterval
	}
}

func (d *AIDirector) updateTraders(ctx *SimulationContext, dt float64) {
	d.tradingRoam -= dt
	for _, s := range loners(ctx, ArchetypeTrading) {
		if !s.Moving && d.tradingRoam <= 0 && len(ctx.Sea.Islands) > 0 {
			isl := ctx.Sea.Islands[ctx.Rng.Intn(len(ctx.Sea.Islands))]
			dest := V(float64(isl.x+20+ctx.Rng.Intn(30)), float64(isl.y+20+ctx.Rng.Intn(30)))
			if dest.Dist(s.Pos) > tradingRoamMin && ctx.Grid.Walkable(dest) && !ctx.Grid.Occupied(WorldToCell(dest)) {
				ctx.moveShip(s, dest)
				d.tradingRoam = tradingRoamInterval
			}
		}
		// shoot back once hit, unless already running
		if s.HP < s.MaxHP && s.HP > s.behavior.FleeHP && s.State == StateIdle {
			ctx.defend(s, s.Path)
		}
	}
}

func (d *AIDirector) updateWarships(ctx *SimulationContext, dt float64) {
	d.battleRoam -= dt
	for _, s := range loners(ctx, ArchetypeBattle) {
		if s.State != StateIdle || s.IsEntered {
			continue
		}
		if !s.Moving && d.battleRoam <= 0 {
			ctx.moveShip(s, randomPoint(ctx))
			d.battleRoam = battleRoamInterval
		}
		hostiles := ctx.Hostiles(s, battleScanRadius)
		switch {
		case len(hostiles) == 0:
		case len(hostiles) <= battleMaxEngage:
			t := hostiles[0]
			if !(t.behavior.Boardable && ChooseBoarding(s.Enter.Total(), t.Enter.Total(), ctx.Rng.Intn(2)) && ctx.board(s, t)) {
				ctx.attack(s, t)
			}
			ctx.moveShip(s, t.Pos)
		default:
			s.Stop()
			ctx.defend(s, nil)
		}
	}
}

func (d *AIDirector) updateFleets(ctx *SimulationContext, dt float64) {
	for _, f := range ctx.Fleets {
		if f.Side == SideAI {
			f.Update(ctx, dt)
		}
	}
	kept := ctx.Fleets[:0]
	for _, f := range ctx.Fleets {
		if !f.Retired() {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(ctx.Fleets); i++ {
		ctx.Fleets[i] = nil
	}
	ctx.Fleets = kept
	if d.admiral != nil && d.admiral.Retired() {
		d.admiral = nil
	}
}

func (d *AIDirector) updateGhost(ctx *SimulationContext, dt float64) {
	g := d.ghost
	if g == nil {
		return
	}
	if !g.Alive() || g.Side != SideAI {
		d.ghost = nil
		return
	}
	for _, t := range ctx.Hostiles(g, ghostScanRadius) {
		if g.State != StateAttacking {
			ctx.attack(g, t)
		} else if !containsShip(g.Targets, t) {
			g.Targets = append(g.Targets, t)
		}
	}

	if g.State == StateIdle {
		if !g.Moving && g.Pos.Dist(g.Home) >= ghostLeash {
			if p := ctx.path(g.Pos, g.Home, true); p != nil {
				g.SetPath(p)
			}
		}
		return
	}

	d.ghostMove -= dt
	if d.ghostMove > 0 || g.Target == nil {
		return
	}
	t := g.Target
	away := g.Pos.Sub(t.Pos).Normalize()
	var dest Vec2
	if g.Pos.Dist(t.Pos) <= ghostCloseRange {
		side := away.Perp()
		if !d.ghostRight {
			side = side.Scale(-1)
		}
		d.ghostRight = !d.ghostRight
		dest = g.Pos.Add(side.Scale(ghostWeave))
		d.ghostMove = ghostWeaveInterval
	} else {
		dest = t.Pos.Add(away.Scale(ghostCloseIn))
		d.ghostMove = ghostCloseInterval
	}
	if p := ctx.path(g.Pos, dest, true); p != nil {
		g.SetPath(p)
	}
}

func (d *AIDirector) updateOctopus(ctx *SimulationContext, dt float64) {
	o := d.octopus
	if o == nil {
		return
	}
	if !o.Alive() {
		d.octopus = nil
		return
	}
	switch o.State {
	case StateIdle:
		if hostiles := ctx.Hostiles(o, octopusScanRadius); len(hostiles) > 0 {
			ctx.board(o, hostiles[0])
		}
		if !o.Moving && o.Pos.Dist(o.Home) >= octopusLeash {
			if p := ctx.path(o.Pos, o.Home, true); p != nil {
				o.SetPath(p)
			}
		}
	case StateEntering:
		d.octopusChase -= dt
		if o.Target != nil && !o.Docking && o.Pos.Dist(o.Target.Pos) >= octopusChaseRange && d.octopusChase <= 0 {
			d.octopusChase = octopusChaseRefresh
			if p := ctx.path(o.Pos, o.Target.Pos, true); p != nil {
				o.SetPath(p)
			}
		}
	}
}

func (d *AIDirector) updateDragon(ctx *SimulationContext) {
	dr := d.dragon
	if dr == nil {
		return
	}
	if !dr.Alive() {
		d.dragon = nil
		return
	}
	switch dr.State {
	case StateIdle:
		if !dr.Moving {
			dr.MoveDirect(randomPoint(ctx))
		}
		if hostiles := ctx.Hostiles(dr, dragonScanRadius); len(hostiles) > 0 {
			ctx.attack(dr, hostiles[0])
		}
	case StateAttacking:
		if dr.Target != nil && dr.Pos.Dist(dr.Target.Pos) >= dragonChaseRange {
			dr.MoveDirect(dr.Target.Pos)
		} else {
			dr.Stop()
		}
	}
}

// respawn tops the AI population back up to its quotas, one ship of each
// kind per tick at most.
func (d *AIDirector) respawn(ctx *SimulationContext) {
	parts := ctx.Resources.Int(MapParts)
	if len(loners(ctx, ArchetypeFisher)) < fisherQuota {
		d.trySpawn(ctx, ArchetypeFisher)
	}
	if len(loners(ctx, ArchetypeTrading)) < tradingQuota {
		d.trySpawn(ctx, ArchetypeTrading)
	}
	if len(loners(ctx, ArchetypeBattle)) < battleQuotaBase+battleQuotaPer*parts {
		d.trySpawn(ctx, ArchetypeBattle)
	}
	if aiFleets(ctx) < min(parts-2, fleetQuotaMax) && len(ctx.Sea.SpawnPoints) > 0 {
		at := ctx.Sea.SpawnPoints[ctx.Rng.Intn(len(ctx.Sea.SpawnPoints))]
		if parts < 3 {
			SpawnFleet(ctx, at, 2, 1, SideAI)
		} else {
			SpawnFleet(ctx, at, 3, 2, SideAI)
		}
	}
}

func aiFleets(ctx *SimulationContext) int {
	n := 0
	for _, f := range ctx.Fleets {
		if f.Side == SideAI && !f.Retired() {
			n++
		}
	}
	return n
}

// trySpawn picks one random point and spawns there if it is open water out
// of sight of the player.
func (d *AIDirector) trySpawn(ctx *SimulationContext, arch Archetype) {
	span := func(n int) float64 {
		if n <= 2*respawnMargin {
			return float64(ctx.Rng.Intn(max(1, n)))
		}
		return float64(respawnMargin + ctx.Rng.Intn(n-2*respawnMargin))
	}
	p := V(span(ctx.Sea.W), span(ctx.Sea.H))
	if ctx.Grid != nil && (!ctx.Grid.Walkable(p) || ctx.Grid.Occupied(WorldToCell(p))) {
		return
	}
	for _, s := range ctx.Nearby(p, respawnHidden) {
		if s.IsPlayer() {
			return
		}
	}
	ctx.Spawn(arch, p, SideAI)
}
