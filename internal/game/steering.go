package game

const (
	waypointArrival  = 20.0  // base arrival threshold (px)
	moveFactor       = 150.0 // px per second at speed 1
	lookAheadWeight  = 0.8
	lookAheadFalloff = 16.0
	windBand         = 5.0 // degrees either side of the wind heading
	windSpeedMod     = 0.2
	speedRampDivisor = 100.0
	avoidConeLength  = 4
	avoidConeWidth   = 2
	avoidMinForce    = 0.1
	directArrival    = 20.0
)

// avoidanceForce falls off with distance; one cell away is worth 0.5.
func avoidanceForce(dist float64) float64 {
	return 1 / (1 + dist/cellSize)
}

// lookAheadBlend is the weight of the following leg's heading. It shrinks to
// zero as the ship closes on its waypoint.
func lookAheadBlend(dist float64) float64 {
	if dist <= 0 {
		return 0
	}
	return lookAheadWeight * clamp01(1-lookAheadFalloff/dist)
}

// UpdateMovement advances one ship for one tick.
func UpdateMovement(ctx *SimulationContext, s *Ship, dt float64) {
	if s.behavior.DirectFlight {
		flyDirect(ctx, s, dt)
		return
	}
	if s.IsEntered {
		s.Moving = false
	}
	if !s.Moving || s.Path.Finished() {
		s.Moving = false
		updateCell(ctx, s)
		return
	}

	next, _ := s.Path.Next()
	toNext := next.Sub(s.Pos)
	dist := toNext.Len()

	if dist > waypointArrival+s.arriveOffset {
		heading := toNext.Normalize()
		if after, ok := s.Path.LookAhead(); ok {
			heading = heading.Lerp(after.Sub(next).Normalize(), lookAheadBlend(dist))
		}
		s.Dir = heading
		avoidCollisions(ctx, s, dt)
		applyWind(s, ctx.Wind)
		rampSpeed(s)
		s.Pos = s.Pos.Add(s.Dir.Scale(moveFactor * dt * s.Speed))
	} else {
		s.Path.Advance()
		s.arriveOffset = 0
		if s.Path.Finished() {
			s.Moving = false
		}
	}
	updateCell(ctx, s)
}

// avoidCollisions bends s.Dir away from occupied cells in the cone ahead and
// enlarges the arrival threshold by the total push.
func avoidCollisions(ctx *SimulationContext, s *Ship, dt float64) {
	dir := s.Dir.Normalize()
	if ctx.Grid == nil || !s.hasCell {
		s.Dir = dir
		return
	}
	var (
		sum   float64
		avoid Vec2
		n     int
	)
	for _, c := range ctx.Grid.CellsInDirection(s.cell, dir, avoidConeLength, avoidConeWidth) {
		if !ctx.Grid.Occupied(c) {
			continue
		}
		center := CellCenter(c)
		f := avoidanceForce(s.Pos.Dist(center))
		sum += f
		avoid = avoid.Add(s.Pos.Sub(center).Scale(f))
		n++
	}
	if n > 0 && sum > avoidMinForce {
		dir = dir.Add(avoid.Normalize().Scale(sum / float64(n)))
		s.arriveOffset += moveFactor * sum * dt * s.Speed
	}
	if nd := dir.Normalize(); !nd.IsZero() {
		s.Dir = nd
	}
}

// applyWind adds or removes the wind modifier exactly once per band crossing.
func applyWind(s *Ship, w Wind) {
	heading := s.Dir.HeadingDeg()
	with := angleDiff(heading, w.Heading) <= windBand
	against := angleDiff(heading, w.Heading+180) <= windBand

	if with != s.windWith {
		if with {
			s.windMod += windSpeedMod
		} else {
			s.windMod -= windSpeedMod
		}
		s.windWith = with
	}
	if against != s.windAgainst {
		if against {
			s.windMod -= windSpeedMod
		} else {
			s.windMod += windSpeedMod
		}
		s.windAgainst = against
	}
}

// EffectiveMaxSpeed is the configured max plus upgrades and wind, never
// below zero.
func (s *Ship) EffectiveMaxSpeed() float64 {
	return max(0, s.MaxSpeed.Total()+s.windMod)
}

// rampSpeed closes 1/100 of the gap to the effective max each tick.
func rampSpeed(s *Ship) {
	s.Speed += (s.EffectiveMaxSpeed() - s.Speed) / speedRampDivisor
}

// flyDirect moves hunters that ignore the sea chart straight at Dest.
func flyDirect(ctx *SimulationContext, s *Ship, dt float64) {
	if !s.Moving {
		return
	}
	to := s.Dest.Sub(s.Pos)
	if to.Len() <= directArrival {
		s.Moving = false
		return
	}
	s.Dir = to.Normalize()
	rampSpeed(s)
	s.Pos = s.Pos.Add(s.Dir.Scale(moveFactor * dt * s.Speed))
	s.Pos = ctx.clampToWorld(s.Pos)
}

// updateCell moves the ship's occupancy mark only when its cell changes.
func updateCell(ctx *SimulationContext, s *Ship) {
	if ctx.Grid == nil {
		return
	}
	c := WorldToCell(s.Pos)
	if s.hasCell && c == s.cell {
		return
	}
	if s.hasCell {
		ctx.Grid.SetOccupied(s.cell, false)
	}
	ctx.Grid.SetOccupied(c, true)
	s.cell = c
	s.hasCell = true
}

// releaseCell clears the ship's occupancy mark.
func releaseCell(ctx *SimulationContext, s *Ship) {
	if ctx.Grid != nil && s.hasCell {
		ctx.Grid.SetOccupied(s.cell, false)
	}
	s.hasCell = false
}

// MoveDirect sends a direct-flight ship toward dest.
func (s *Ship) MoveDirect(dest Vec2) {
	if !s.Moving {
		s.Speed = 0.1
	}
	s.Dest = dest
	s.Moving = true
}
