package game

const (
	rumStatBoost      = 5.0
	rumSpeedBoost     = 0.1
	rumBuffPerDrink   = 5.0 // seconds
	hangoverStatLoss  = 10.0
	hangoverSpeedLoss = 0.2
	hangoverPerDrink  = 7.0 // seconds
	pendingInterval   = 0.5
)

// rumState tracks one ship's drinking. The owed fields hold what the
// current buff and hangovers took from each stat, so recovery gives back
// exactly that.
type rumState struct {
	drinks   int
	buff     float64
	hangover float64

	owedAttack, owedEnter, owedRepair, owedSpeed float64
}

// Drunk reports whether the rum buff is active.
func (s *Ship) Drunk() bool { return s.rum.buff > 0 }

// HungOver reports whether the hangover penalty is active.
func (s *Ship) HungOver() bool { return s.rum.hangover > 0 }

// shiftStat moves st by delta, never pushing it below zero, and books the
// change actually made against owed.
func shiftStat(st *Stat, owed *float64, delta float64) {
	v := st.Value + delta
	if delta < 0 && v < 0 {
		v = min(st.Value, 0)
	}
	*owed -= v - st.Value
	st.Value = v
}

func (s *Ship) shiftCombatStats(delta, speed float64) {
	r := &s.rum
	shiftStat(&s.Attack, &r.owedAttack, delta)
	shiftStat(&s.Enter, &r.owedEnter, delta)
	shiftStat(&s.Repair, &r.owedRepair, delta)
	shiftStat(&s.MaxSpeed, &r.owedSpeed, speed)
}

// soberUp returns whatever the rum still owes.
func (s *Ship) soberUp() {
	r := &s.rum
	s.Attack.Value += r.owedAttack
	s.Enter.Value += r.owedEnter
	s.Repair.Value += r.owedRepair
	s.MaxSpeed.Value += r.owedSpeed
	r.owedAttack, r.owedEnter, r.owedRepair, r.owedSpeed = 0, 0, 0, 0
}

// drinkRum applies one drink. The caller has already paid for it.
func (s *Ship) drinkRum() {
	if s.rum.buff <= 0 {
		s.shiftCombatStats(rumStatBoost, rumSpeedBoost)
	}
	s.rum.drinks++
	s.rum.buff += rumBuffPerDrink
}

// updateRum advances buff and hangover timers. Each buff that runs out
// starts a hangover of hangoverPerDrink per drink of that buff.
func (s *Ship) updateRum(dt float64) {
	if s.rum.buff > 0 {
		s.rum.buff -= dt
		if s.rum.buff <= 0 {
			s.rum.buff = 0
			s.shiftCombatStats(-hangoverStatLoss, -hangoverSpeedLoss)
			s.rum.hangover = float64(s.rum.drinks) * hangoverPerDrink
			s.rum.drinks = 0
		}
	}
	if s.rum.hangover > 0 {
		s.rum.hangover -= dt
		if s.rum.hangover <= 0 {
			s.rum.hangover = 0
			s.soberUp()
		}
	}
}

// drainPending moves one unit of each pending stat into its base every
// pendingInterval seconds.
func (s *Ship) drainPending(dt float64) {
	s.pendingTimer += dt
	for s.pendingTimer >= pendingInterval {
		s.pendingTimer -= pendingInterval
		drainStat(&s.Attack, 1)
		drainStat(&s.Enter, 1)
		drainStat(&s.Repair, 1)
		drainStat(&s.MaxSpeed, 0.01)
	}
}

func drainStat(st *Stat, unit float64) {
	if st.Pending <= 0 {
		return
	}
	step := min(unit, st.Pending)
	st.Value += step
	st.Pending -= step
}
