package game

const rumCost = 1.0

// --- Per-ship primitives shared by orders, fleets and the AI ---

// moveShip paths s to dest. It reports false when no route exists, in which
// case s keeps its current path.
func (c *SimulationContext) moveShip(s *Ship, dest Vec2) bool {
	if s.behavior.DirectFlight {
		s.MoveDirect(c.clampToWorld(dest))
		return true
	}
	p := c.path(s.Pos, dest, false)
	if p == nil {
		return false
	}
	s.SetPath(p)
	return true
}

// attack puts s into Attacking against t.
func (c *SimulationContext) attack(s, t *Ship) bool {
	if !s.behavior.States.Has(StateAttacking) || !s.Hostile(t) {
		return false
	}
	s.engage(c, StateAttacking, t)
	if s.behavior.MaxTargets > 1 && !containsShip(s.Targets, t) {
		s.Targets = append(s.Targets, t)
	}
	c.enlist(s)
	return true
}

// board puts s into Entering against t.
func (c *SimulationContext) board(s, t *Ship) bool {
	if !s.Archetype.CanBoard() || !t.behavior.Boardable || !s.Hostile(t) {
		return false
	}
	s.engage(c, StateEntering, t)
	s.Chasing = t.Moving
	c.enlist(s)
	return true
}

// defend sends s along p and guards that route.
func (c *SimulationContext) defend(s *Ship, p *Path) bool {
	if !s.behavior.States.Has(StateDefending) {
		return false
	}
	if p != nil {
		s.SetPath(p)
	}
	s.guardPath = p
	s.Target = nil
	s.setState(c, StateDefending)
	c.enlist(s)
	return true
}

// --- Player orders ---

// orderable filters ships down to live player ships that are not being
// boarded.
func orderable(ships []*Ship) []*Ship {
	var out []*Ship
	for _, s := range ships {
		if s.IsPlayer() && s.Alive() && !s.IsEntered {
			out = append(out, s)
		}
	}
	return out
}

// Move orders ships to dest. The ship nearest dest goes to the point; the
// rest trail behind it. Every ship drops its combat state.
func (sc *Scheduler) Move(ships []*Ship, dest Vec2) {
	ships = orderable(ships)
	leader := closestTo(dest, ships)
	if leader == nil {
		return
	}
	for _, s := range ships {
		endBoarding(s)
		s.goIdle(sc.ctx)
		target := dest
		if s != leader {
			target = trailingDest(dest, leader.Pos, s.Pos)
		}
		sc.ctx.moveShip(s, target)
		s.Dest = target
	}
}

// Attack orders ships to engage target, each taking its own attack slot.
func (sc *Scheduler) Attack(ships []*Ship, target *Ship) int {
	n := 0
	for i, s := range orderable(ships) {
		if !sc.ctx.attack(s, target) {
			continue
		}
		sc.ctx.moveShip(s, attackSlot(target.Pos, s.Pos, i))
		n++
	}
	return n
}

// Defend orders ships to guard dest. Ships after the first hold station
// trailOffset back toward it.
func (sc *Scheduler) Defend(ships []*Ship, dest Vec2) int {
	ships = orderable(ships)
	n := 0
	for i, s := range ships {
		target := dest
		if i > 0 {
			target = dest.Sub(ships[0].Pos.Sub(s.Pos).Normalize().Scale(trailOffset))
		}
		if sc.ctx.defend(s, sc.ctx.path(s.Pos, target, false)) {
			n++
		}
	}
	return n
}

// Board orders every ship that can board to enter target.
func (sc *Scheduler) Board(ships []*Ship, target *Ship) int {
	n := 0
	for _, s := range orderable(ships) {
		if !sc.ctx.board(s, target) {
			continue
		}
		sc.ctx.moveShip(s, target.Pos)
		n++
	}
	return n
}

// ToggleRepair flips the repairing flag of a player ship and keeps the
// repair queue in step.
func (sc *Scheduler) ToggleRepair(s *Ship) bool {
	if !s.IsPlayer() || !s.Alive() {
		return false
	}
	s.Repairing = !s.Repairing
	if s.Repairing {
		if !containsShip(sc.ctx.repairing, s) {
			sc.ctx.repairing = append(sc.ctx.repairing, s)
		}
	} else {
		sc.dropRepair(s)
	}
	sc.ctx.emit(Event{Kind: EventRepair, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Detail: onOff(s.Repairing)})
	return true
}

// DrinkRum gives a player ship one tot from the shared stores.
func (sc *Scheduler) DrinkRum(s *Ship) bool {
	if !s.IsPlayer() || !s.Alive() || !sc.ctx.Resources.TrySpend(Rum, rumCost) {
		return false
	}
	s.drinkRum()
	sc.ctx.Stats.Inc(StatRumDrunk)
	sc.ctx.emit(Event{Kind: EventRum, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Value: float64(s.rum.drinks)})
	return true
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
