package game

import "math"

const (
	boardingDecayBase  = 0.001
	boardingDecayScale = 0.0003
	crewFloor          = 5.0
	boardingMargin     = 8.0 // max enter-value deficit a boarder accepts
)

// ChooseBoarding decides between boarding and bombarding a target. draw is a
// fair coin (0 or 1); boarding needs draw == 1 and a target whose enter value
// does not exceed ours by more than boardingMargin.
func ChooseBoarding(attackerEnter, defenderEnter float64, draw int) bool {
	return defenderEnter-boardingMargin < attackerEnter && draw == 1
}

// captureMapPartOdds is the one-in-n chance of a map part when the player
// takes a prize by boarding.
func captureMapPartOdds(a Archetype) int {
	switch a {
	case ArchetypeTrading:
		return 4
	case ArchetypeBattle, ArchetypeFlagShip:
		return 3
	default:
		return 0
	}
}

func updateEntering(ctx *SimulationContext, s *Ship, dt float64) {
	t := s.Target
	if t == nil || !t.behavior.Boardable {
		s.goIdle(ctx)
		return
	}
	b := &s.behavior

	if b.EnterRegenInterval > 0 {
		s.enterRegen -= dt
		if s.enterRegen <= 0 && s.Enter.Value < b.Enter {
			s.enterRegen = b.EnterRegenInterval
			s.Enter.Value = b.Enter
			s.Crew = b.Crew
		}
	}

	if t.Moving {
		s.Chasing = true
	}
	dist := s.Pos.Dist(t.Pos)
	if dist <= b.DockRadius || (s.Chasing && dist <= b.ChaseDockRadius) {
		if !s.Docking {
			t.boarders++
			ctx.emit(Event{Kind: EventDocked, Ship: s.ID, Other: t.ID, Side: s.Side, Archetype: s.Archetype, Pos: t.Pos})
		}
		s.Chasing = false
		s.Docking = true
		t.IsEntered = true
		s.Moving = false
		t.Moving = false
		s.Dir = t.Dir
	}

	if s.Docking && t.IsEntered {
		stepBoarding(ctx, s, t)
	}
}

// stepBoarding applies one tick of crew attrition between a docked boarder
// and its target and resolves the action when a side runs out.
func stepBoarding(ctx *SimulationContext, s, t *Ship) {
	defenderEnter := t.Enter.Value
	hit := boardingDecayBase + s.Enter.Total()*boardingDecayScale
	back := boardingDecayBase + defenderEnter*boardingDecayScale

	t.Enter.Value -= hit
	t.Crew = math.Max(0, t.Crew-hit)
	s.Enter.Value -= back
	s.Crew = math.Max(0, s.Crew-back)

	switch {
	case !s.Alive() || !t.Alive():
		abortBoarding(ctx, s)
	case s.Enter.Value <= 0:
		if s.behavior.KillOnBoard {
			s.Enter.Value = 0
			return
		}
		repelled(ctx, s, t)
	case t.Enter.Value <= 0:
		if s.behavior.KillOnBoard {
			t.HP = 0
			t.sinkCause = "dragged"
			endBoarding(s)
			s.goIdle(ctx)
			ctx.emit(Event{Kind: EventDragged, Ship: s.ID, Other: t.ID, Side: s.Side, Archetype: s.Archetype, Pos: t.Pos})
			return
		}
		captured(ctx, s, t)
	}
}

func abortBoarding(ctx *SimulationContext, s *Ship) {
	endBoarding(s)
	s.goIdle(ctx)
	ctx.emit(Event{Kind: EventBoardingEnd, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Detail: "aborted"})
}

// repelled: the boarder ran out of men and is taken by the defender's side.
func repelled(ctx *SimulationContext, s, t *Ship) {
	endBoarding(s)
	s.IsEntered = false
	resetCrew(s, t)
	s.goIdle(ctx)
	ctx.changeSide(s, t.Side)
	ctx.emit(Event{Kind: EventBoardingEnd, Ship: s.ID, Other: t.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Detail: "repelled"})
}

// captured: the target's crew is overrun and it joins the boarder's side.
// Anyone else boarding the prize, and the prize's own boarding action, are
// reset.
func captured(ctx *SimulationContext, s, t *Ship) {
	t.IsEntered = false
	if t.State == StateEntering {
		endBoarding(t)
	}
	t.goIdle(ctx)
	for _, o := range ctx.Ships {
		if o == s || o.Target != t || o.State != StateEntering {
			continue
		}
		endBoarding(o)
		o.goIdle(ctx)
	}
	endBoarding(s)
	s.IsEntered = false
	resetCrew(t, s)
	s.goIdle(ctx)
	ctx.changeSide(t, s.Side)
	ctx.emit(Event{Kind: EventBoardingEnd, Ship: s.ID, Other: t.ID, Side: s.Side, Archetype: s.Archetype, Pos: t.Pos, Detail: "captured"})
}

// resetCrew puts the loser back on its feet at the crew floor and credits the
// winner with the fractional part of its remaining enter value.
func resetCrew(loser, winner *Ship) {
	if loser.Enter.Value < 0 {
		loser.Crew += -loser.Enter.Value
	}
	loser.Enter.Value = crewFloor
	loser.Crew = math.Max(loser.Crew+crewFloor, crewFloor)
	winner.Crew += winner.Enter.Value - math.Trunc(winner.Enter.Value)
}

// endBoarding undocks s from its target. The target stays entered while
// another boarder is still alongside.
func endBoarding(s *Ship) {
	if !s.Docking {
		return
	}
	s.Docking = false
	if t := s.Target; t != nil {
		t.boarders = max(0, t.boarders-1)
		t.IsEntered = t.boarders > 0
	}
}
