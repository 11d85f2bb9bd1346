package game

import "math"

// CombatState is a ship's current combat behaviour.
type CombatState int

const (
	StateIdle CombatState = iota
	StateAttacking
	StateDefending
	StateEntering
)

func (s CombatState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttacking:
		return "attacking"
	case StateDefending:
		return "defending"
	case StateEntering:
		return "entering"
	default:
		return "unknown"
	}
}

// CombatRole names the scheduler list a ship is registered in. A ship is in
// at most one role list at a time.
type CombatRole int

const (
	RoleNone CombatRole = iota
	RoleAttacking
	RoleDefending
	RoleEntering
)

func (r CombatRole) String() string {
	switch r {
	case RoleAttacking:
		return "attacking"
	case RoleDefending:
		return "defending"
	case RoleEntering:
		return "entering"
	default:
		return "none"
	}
}

// RoleFor maps a combat state to the list that drives it.
func RoleFor(st CombatState) CombatRole {
	switch st {
	case StateAttacking:
		return RoleAttacking
	case StateDefending:
		return RoleDefending
	case StateEntering:
		return RoleEntering
	default:
		return RoleNone
	}
}

const (
	attackHoldRange = 100.0 // chasing attackers keep moving until this close
	shotDamageScale = 0.25
)

// setState switches state, refusing states the archetype lacks.
func (s *Ship) setState(ctx *SimulationContext, st CombatState) {
	if !s.behavior.States.Has(st) {
		st = StateIdle
	}
	if s.State == st {
		return
	}
	prev := s.State
	s.State = st
	if prev == StateEntering {
		endBoarding(s)
	}
	if st == StateIdle {
		s.Target = nil
		s.Targets = nil
		s.Chasing = false
	}
	ctx.emit(Event{Kind: EventStateChange, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos,
		Detail: prev.String() + " → " + st.String()})
	ctx.Log.Debug().Str("ship", s.Label).Str("from", prev.String()).Str("to", st.String()).Msg("state change")
}

// goIdle drops the target and returns to Idle.
func (s *Ship) goIdle(ctx *SimulationContext) {
	s.setState(ctx, StateIdle)
	s.Target = nil
	s.Targets = nil
}

// engage points s at t in state st and primes the first shot.
func (s *Ship) engage(ctx *SimulationContext, st CombatState, t *Ship) {
	if s.Target != t {
		endBoarding(s)
		s.shotCooldown = s.behavior.FirstVolleyIn
	}
	s.Target = t
	s.setState(ctx, st)
	if s.State == st {
		s.Target = t
	}
}

// UpdateCombat advances the state machine of one ship for one tick.
func UpdateCombat(ctx *SimulationContext, s *Ship, dt float64) {
	b := &s.behavior

	if s.State == StateEntering && s.Target != nil && s.Target.Side == s.Side {
		s.goIdle(ctx)
	}
	if s.State != StateEntering && s.Docking {
		endBoarding(s)
	}
	if !s.Alive() {
		s.goIdle(ctx)
		return
	}
	if s.State == StateIdle {
		s.Target = nil
		s.Targets = nil
		return
	}
	if b.FleeHP > 0 && s.HP <= b.FleeHP {
		flee(ctx, s)
		return
	}
	if s.Target != nil && s.Target.Side == s.Side {
		s.goIdle(ctx)
		return
	}
	if s.Target != nil && !s.Target.Alive() && b.MaxTargets <= 1 {
		targetLost(ctx, s)
		return
	}

	switch s.State {
	case StateAttacking:
		if b.MaxTargets > 1 {
			updateVolley(ctx, s, dt)
		} else {
			updateAttacking(ctx, s, dt)
		}
	case StateDefending:
		updateDefending(ctx, s, dt)
	case StateEntering:
		updateEntering(ctx, s, dt)
	}
}

// targetLost handles a target that sank outside our own guns.
func targetLost(ctx *SimulationContext, s *Ship) {
	if s.State == StateDefending {
		s.Target = nil
		s.resumePath()
		return
	}
	s.goIdle(ctx)
}

func flee(ctx *SimulationContext, s *Ship) {
	s.Target = nil
	s.setState(ctx, StateIdle)
	resumed := s.resumePath()
	ctx.emit(Event{Kind: EventFled, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Value: float64(s.HP)})
	ctx.Log.Info().Str("ship", s.Label).Int("hp", s.HP).Bool("resumed", resumed).Msg("disengaging")
}

func updateAttacking(ctx *SimulationContext, s *Ship, dt float64) {
	t := s.Target
	if t == nil {
		s.goIdle(ctx)
		return
	}
	b := &s.behavior
	dist := s.Pos.Dist(t.Pos)
	s.Chasing = t.Moving

	if dist <= b.EngageRadius {
		if !s.Chasing || dist <= attackHoldRange {
			s.Stop()
		}
	}

	s.shotCooldown = math.Max(0, s.shotCooldown-dt)
	if s.shotCooldown > 0 || dist > b.EngageRadius || !t.Alive() {
		return
	}
	fire(ctx, s, t)
	s.shotCooldown = b.AttackCooldown
	if !t.Alive() {
		s.goIdle(ctx)
	}
}

func updateDefending(ctx *SimulationContext, s *Ship, dt float64) {
	b := &s.behavior
	s.shotCooldown = math.Max(0, s.shotCooldown-dt)

	t := s.Target
	if t == nil {
		if !s.Moving {
			s.resumePath()
		}
		return
	}
	dist := s.Pos.Dist(t.Pos)
	if dist <= b.EngageRadius {
		s.Stop()
		if s.shotCooldown > 0 || !t.Alive() {
			return
		}
		fire(ctx, s, t)
		s.shotCooldown = b.DefendCooldown
		if !t.Alive() {
			s.Target = nil
			s.resumePath()
		}
		return
	}
	if !s.Moving {
		s.resumePath()
		s.Target = nil
	}
}

// updateVolley drives multi-target gunnery: up to MaxTargets shots per volley.
func updateVolley(ctx *SimulationContext, s *Ship, dt float64) {
	b := &s.behavior

	kept := s.Targets[:0]
	for _, t := range s.Targets {
		if !s.Hostile(t) {
			continue
		}
		if b.DropRadius > 0 && s.Pos.Dist(t.Pos) >= b.DropRadius {
			continue
		}
		kept = append(kept, t)
	}
	clearTail(s.Targets, len(kept))
	s.Targets = kept
	if s.Target != nil && s.Hostile(s.Target) && !containsShip(s.Targets, s.Target) {
		s.Targets = append(s.Targets, s.Target)
	}
	if len(s.Targets) == 0 {
		s.goIdle(ctx)
		return
	}
	s.Target = nearest(s.Pos, s.Targets)

	if b.RegenDelay > 0 {
		s.regenTimer -= dt
		if s.regenTimer <= 0 {
			s.HP = s.MaxHP
			s.regenTimer = b.RegenDelay
		}
	}

	s.shotCooldown -= dt
	if s.shotCooldown > 0 {
		return
	}
	fired := 0
	for _, t := range s.Targets {
		if fired >= b.MaxTargets {
			break
		}
		if s.Pos.Dist(t.Pos) > b.EngageRadius || !t.Alive() {
			continue
		}
		fire(ctx, s, t)
		fired++
	}
	s.shotCooldown = b.AttackCooldown
}

// fire applies one shot from s to t, plus splash damage where the archetype
// has it.
func fire(ctx *SimulationContext, s, t *Ship) {
	dmg := s.Damage()
	t.HP -= dmg
	ctx.Stats.Inc(StatShotsFired)
	ctx.emit(Event{Kind: EventShot, Ship: s.ID, Other: t.ID, Side: s.Side, Archetype: s.Archetype,
		Pos: s.Pos, To: t.Pos, Value: float64(dmg)})
	ctx.Log.Trace().Str("ship", s.Label).Str("target", t.Label).Int("dmg", dmg).Int("hp", t.HP).Msg("shot")

	if r := s.behavior.SplashRadius; r > 0 {
		for _, o := range ctx.Nearby(t.Pos, r) {
			if o == t || o == s || o.Side != t.Side || !o.Alive() {
				continue
			}
			o.HP -= dmg
			ctx.emit(Event{Kind: EventSplash, Ship: s.ID, Other: o.ID, Side: s.Side, Archetype: s.Archetype,
				Pos: t.Pos, To: o.Pos, Value: float64(dmg)})
		}
	}
}

func nearest(p Vec2, ships []*Ship) *Ship {
	var best *Ship
	bestD := math.Inf(1)
	for _, o := range ships {
		if d := p.Dist(o.Pos); d < bestD {
			best, bestD = o, d
		}
	}
	return best
}

func containsShip(ships []*Ship, s *Ship) bool {
	for _, o := range ships {
		if o == s {
			return true
		}
	}
	return false
}

func clearTail(ships []*Ship, from int) {
	for i := from; i < len(ships); i++ {
		ships[i] = nil
	}
}
