package game

// TicksPerSecond is the fixed simulation rate; TickDT is one tick in seconds.
const (
	TicksPerSecond = 60
	TickDT         = 1.0 / TicksPerSecond
)

const (
	attackRefresh     = 1.0 // seconds between chase re-paths while attacking
	enterRefreshNear  = 0.5
	enterRefreshMid   = 1.0
	enterRefreshFar   = 2.0
	enterNearRange    = 100.0
	enterMidRange     = 150.0
	repairCostPerUnit = 0.01  // wood per point of repair value per tick
	repairGainPerUnit = 0.005 // hp per point of repair value per tick
)

// Director makes the non-player decisions each tick.
type Director interface {
	Update(ctx *SimulationContext, dt float64)
}

// Scheduler runs the simulation one tick at a time.
type Scheduler struct {
	ctx      *SimulationContext
	director Director
	env      *Environment
}

// NewScheduler wires a scheduler over ctx. director and env may be nil.
func NewScheduler(ctx *SimulationContext, director Director, env *Environment) *Scheduler {
	return &Scheduler{ctx: ctx, director: director, env: env}
}

// Context returns the state the scheduler drives.
func (sc *Scheduler) Context() *SimulationContext { return sc.ctx }

// Environment returns the weather, or nil.
func (sc *Scheduler) Environment() *Environment { return sc.env }

// Update advances the simulation by dt seconds.
func (sc *Scheduler) Update(dt float64) {
	ctx := sc.ctx
	ctx.Tick++
	ctx.Clock += dt

	// 1. Spatial index.
	ctx.rebuildIndex()

	// 2. Decisions: AI, fleets, weather.
	if sc.director != nil {
		sc.director.Update(ctx, dt)
	}
	if sc.env != nil {
		sc.env.Update(ctx, dt)
	}

	// 3. Movement and per-ship timers.
	for _, s := range ctx.Ships {
		if !s.Alive() {
			continue
		}
		UpdateMovement(ctx, s, dt)
		s.drainPending(dt)
		s.updateRum(dt)
	}

	// 4. Combat, one role list at a time.
	sc.updateAttacking(dt)
	sc.updateDefending(dt)
	sc.updateEntering(dt)

	// 5. Sinkings.
	sc.sweepDead()

	// 6. Repairs.
	sc.updateRepairs()
}

func (sc *Scheduler) updateAttacking(dt float64) {
	ctx := sc.ctx
	l := ctx.attacking
	for i, s := range l.Ships() {
		if !l.belongs(s) {
			continue
		}
		UpdateCombat(ctx, s, dt)
		if s.State != StateAttacking || !s.Chasing || s.Target == nil || s.Archetype.IsMonster() {
			continue
		}
		s.refreshTimer -= dt
		if s.refreshTimer > 0 {
			continue
		}
		s.refreshTimer = attackRefresh
		ctx.moveShip(s, attackSlot(s.Target.Pos, s.Pos, i))
	}
	l.Compact(l.belongs)
}

func (sc *Scheduler) updateDefending(dt float64) {
	ctx := sc.ctx
	l := ctx.defending
	for _, s := range l.Ships() {
		if !l.belongs(s) {
			continue
		}
		UpdateCombat(ctx, s, dt)
		if s.State != StateDefending || s.Target != nil {
			continue
		}
		if hostiles := ctx.Hostiles(s, s.behavior.EngageRadius); len(hostiles) > 0 {
			s.Target = hostiles[0]
			s.Stop()
		}
	}
	l.Compact(l.belongs)
}

func (sc *Scheduler) updateEntering(dt float64) {
	ctx := sc.ctx
	l := ctx.entering
	for _, s := range l.Ships() {
		if !l.belongs(s) {
			continue
		}
		UpdateCombat(ctx, s, dt)
		if s.State != StateEntering || s.Target == nil || s.Docking || !s.Chasing || s.Archetype.IsMonster() {
			continue
		}
		s.refreshTimer -= dt
		if s.refreshTimer > 0 {
			continue
		}
		d := s.Pos.Dist(s.Target.Pos)
		switch {
		case d <= enterNearRange:
			s.refreshTimer = enterRefreshNear
		case d <= enterMidRange:
			s.refreshTimer = enterRefreshMid
		default:
			s.refreshTimer = enterRefreshFar
		}
		ctx.moveShip(s, s.Target.Pos)
	}
	l.Compact(l.belongs)
}

// sweepDead removes every sunk ship, paying out loot for enemy wrecks.
func (sc *Scheduler) sweepDead() {
	ctx := sc.ctx
	var dead []*Ship
	for _, s := range ctx.Ships {
		if !s.Alive() {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		endBoarding(s)
		releaseCell(ctx, s)
		if !s.IsPlayer() {
			dropLoot(ctx, s)
		}
		if name := destroyedStat(s.Archetype); name != "" {
			ctx.Stats.Inc(name)
		}
		s.Selected = false
		s.Repairing = false
		sc.dropRepair(s)
		ctx.emit(Event{Kind: EventSunk, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Detail: s.sinkCause})
		ctx.Log.Info().Str("ship", s.Label).Str("side", s.Side.String()).Msg("sunk")
		ctx.remove(s)
	}
}

// updateRepairs spends wood on hull repairs. A ship leaves the queue when it
// is whole or the wood runs out.
func (sc *Scheduler) updateRepairs() {
	ctx := sc.ctx
	kept := ctx.repairing[:0]
	for _, s := range ctx.repairing {
		rate := s.Repair.Total()
		if s.Alive() && s.Repairing && s.HP < s.MaxHP && rate > 0 &&
			ctx.Resources.TrySpend(Wood, rate*repairCostPerUnit) {
			s.repairProgress += rate * repairGainPerUnit
			whole := int(s.repairProgress)
			s.HP += whole
			s.repairProgress -= float64(whole)
			kept = append(kept, s)
			continue
		}
		if s.HP > s.MaxHP {
			s.HP = s.MaxHP
		}
		s.Repairing = false
		s.repairProgress = 0
	}
	clearTail(ctx.repairing, len(kept))
	ctx.repairing = kept
}

func (sc *Scheduler) dropRepair(s *Ship) {
	ctx := sc.ctx
	kept := ctx.repairing[:0]
	for _, o := range ctx.repairing {
		if o != s {
			kept = append(kept, o)
		}
	}
	clearTail(ctx.repairing, len(kept))
	ctx.repairing = kept
}
