package game

import "math/rand"

// Wind is the global wind. Heading is in degrees, measured like
// Vec2.HeadingDeg.
type Wind struct {
	Heading float64
}

const (
	windShiftInterval = 60.0

	stormExposure    = 500.0 / 60 // seconds in a storm per lightning hit
	stormMinW        = 300
	stormMaxW        = 1000
	stormMinH        = 200
	stormMaxH        = 700
	stormMaxStrikes  = 200
	stormLimit       = 2
	stormSpawnMinGap = 90.0
	stormSpawnMaxGap = 180.0

	vortexW          = 175
	vortexH          = 100
	vortexCooldown   = 5.0
	vortexMinTTL     = 3000.0 / 60
	vortexMaxTTL     = 10000.0 / 60
	vortexSpawnMin   = 120.0
	vortexSpawnMax   = 240.0
	vortexPlaceTries = 50
	vortexExitGap    = 8.0 // ships surface just below the far whirlpool
)

// Storm is a rectangle of foul weather. Player ships inside it build up
// exposure; each full measure of exposure calls down one lightning hit.
type Storm struct {
	Region    AABB
	exposure  float64
	nextFlash float64
	strikes   int // decorative flashes left before the storm blows out
	done      bool
}

func newStorm(sea *Sea, rng *rand.Rand) *Storm {
	w := float64(stormMinW + rng.Intn(stormMaxW-stormMinW))
	h := float64(stormMinH + rng.Intn(stormMaxH-stormMinH))
	return &Storm{
		Region:    AABB{X: float64(rng.Intn(max(1, sea.W))), Y: float64(rng.Intn(max(1, sea.H))), W: w, H: h},
		nextFlash: flashDelay(rng),
		strikes:   rng.Intn(stormMaxStrikes),
	}
}

func flashDelay(rng *rand.Rand) float64 {
	return float64(10+rng.Intn(90)) / 60
}

// Done reports whether the storm has blown out.
func (st *Storm) Done() bool { return st.done }

func (st *Storm) update(ctx *SimulationContext, dt float64) {
	center := st.Region.Center()
	reach := max(st.Region.W, st.Region.H)
	for _, s := range ctx.Nearby(center, reach) {
		if !s.IsPlayer() || !st.Region.Contains(s.Pos) {
			continue
		}
		if st.exposure < stormExposure {
			st.exposure += dt
			continue
		}
		st.exposure = 0
		s.HP--
		ctx.emit(Event{Kind: EventLightning, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos, Value: 1})
	}

	st.nextFlash -= dt
	if st.nextFlash > 0 {
		return
	}
	st.nextFlash = flashDelay(ctx.Rng)
	st.strikes--
	if st.strikes < 0 {
		st.done = true
	}
}

// Vortex links two whirlpools. A player ship sailing into one comes out of
// the other, dead in the water.
type Vortex struct {
	A, B     AABB
	cooldown float64
	ttl      float64
}

func newVortex(ctx *SimulationContext) *Vortex {
	rng := ctx.Rng
	place := func() AABB {
		var box AABB
		for i := 0; i < vortexPlaceTries; i++ {
			box = AABB{X: float64(rng.Intn(max(1, ctx.Sea.W-vortexW))), Y: float64(rng.Intn(max(1, ctx.Sea.H-vortexH))), W: vortexW, H: vortexH}
			if ctx.Grid == nil || ctx.Grid.Walkable(V(box.X, box.Y)) {
				break
			}
		}
		return box
	}
	return &Vortex{A: place(), B: place(), ttl: vortexMinTTL + rng.Float64()*(vortexMaxTTL-vortexMinTTL)}
}

// Done reports whether the vortex has closed.
func (v *Vortex) Done() bool { return v.ttl <= 0 }

func (v *Vortex) update(ctx *SimulationContext, dt float64) {
	v.ttl -= dt
	if v.cooldown > 0 {
		v.cooldown -= dt
		return
	}
	for _, pair := range [2][2]AABB{{v.A, v.B}, {v.B, v.A}} {
		from, to := pair[0], pair[1]
		for _, s := range ctx.Nearby(from.Center(), from.W) {
			if !s.IsPlayer() || !from.Contains(s.Pos) {
				continue
			}
			origin := s.Pos
			s.Pos = ctx.clampToWorld(V(to.X+to.W/2, to.Y+to.H+vortexExitGap))
			s.Moving = false
			updateCell(ctx, s)
			v.cooldown = vortexCooldown
			ctx.emit(Event{Kind: EventTeleport, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: origin, To: s.Pos})
			return
		}
	}
}

// Environment drives wind, storms and vortices.
type Environment struct {
	Storms   []*Storm
	Vortices []*Vortex

	windTimer   float64
	stormTimer  float64
	vortexTimer float64
	disabled    bool
}

// NewEnvironment returns an environment whose first storm and vortex arrive
// after the usual spawn gaps.
func NewEnvironment(rng *rand.Rand) *Environment {
	return &Environment{
		windTimer:   windShiftInterval,
		stormTimer:  stormSpawnMinGap + rng.Float64()*(stormSpawnMaxGap-stormSpawnMinGap),
		vortexTimer: vortexSpawnMin + rng.Float64()*(vortexSpawnMax-vortexSpawnMin),
	}
}

// Calm turns off storm and vortex spawning; wind still shifts.
func (e *Environment) Calm() { e.disabled = true }

// Update advances the weather for one tick.
func (e *Environment) Update(ctx *SimulationContext, dt float64) {
	e.windTimer -= dt
	if e.windTimer <= 0 {
		e.windTimer = windShiftInterval
		ctx.Wind.Heading = float64(ctx.Rng.Intn(360))
		ctx.emit(Event{Kind: EventWind, Value: ctx.Wind.Heading})
		ctx.Log.Debug().Float64("heading", ctx.Wind.Heading).Msg("wind shift")
	}

	if !e.disabled {
		e.stormTimer -= dt
		if e.stormTimer <= 0 {
			e.stormTimer = stormSpawnMinGap + ctx.Rng.Float64()*(stormSpawnMaxGap-stormSpawnMinGap)
			if len(e.Storms) < stormLimit {
				e.Storms = append(e.Storms, newStorm(ctx.Sea, ctx.Rng))
			}
		}
		e.vortexTimer -= dt
		if e.vortexTimer <= 0 {
			e.vortexTimer = vortexSpawnMin + ctx.Rng.Float64()*(vortexSpawnMax-vortexSpawnMin)
			if len(e.Vortices) == 0 {
				e.Vortices = append(e.Vortices, newVortex(ctx))
			}
		}
	}

	storms := e.Storms[:0]
	for _, st := range e.Storms {
		st.update(ctx, dt)
		if !st.Done() {
			storms = append(storms, st)
		}
	}
	e.Storms = storms

	vortices := e.Vortices[:0]
	for _, v := range e.Vortices {
		v.update(ctx, dt)
		if !v.Done() {
			vortices = append(vortices, v)
		}
	}
	e.Vortices = vortices
}
