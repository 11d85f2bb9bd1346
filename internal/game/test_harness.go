package game

import (
	"fmt"
	"math/rand"
)

// TestSim is a headless simulation harness used by tests and the headless
// report. It drives the same Scheduler the viewer does, with deterministic
// seeding and structured logging.
type TestSim struct {
	Width   int
	Height  int
	islands []rect
	Sea     *Sea
	Ctx     *SimulationContext
	Sched   *Scheduler
	AI      *AIDirector
	Env     *Environment
	SimLog  *SimLog
	Added   []*Ship // ships placed by options, in order
	Fleets  []*Fleet

	rng      *rand.Rand
	straight bool
	withAI   bool
	weather  bool
	stores   [3]float64
	sinks    []EventSink
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map size, islands, seed, verbose: applied first
	simOptShip                       // ships and fleets: applied once the context exists
	simOptOrder                      // orders: applied after every ship is placed
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the sea dimensions.
func WithMapSize(w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Width = w
		ts.Height = h
	}}
}

// WithIsland adds an obstacle.
func WithIsland(x, y, w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.islands = append(ts.islands, rect{x: x, y: y, w: w, h: h})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithStraightPaths replaces grid pathfinding with straight lines.
func WithStraightPaths() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.straight = true
	}}
}

// WithAI runs the AI director. Respawning stays off so tests keep control
// of the ship count.
func WithAI() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.withAI = true
	}}
}

// WithWeather turns on wind, storms and vortices.
func WithWeather() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.weather = true
	}}
}

// WithStores sets the opening wood, gold and rum.
func WithStores(wood, gold, rum float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.stores = [3]float64{wood, gold, rum}
	}}
}

// WithSink adds an extra event sink.
func WithSink(sink EventSink) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.sinks = append(ts.sinks, sink)
	}}
}

// WithShip places a ship of arch for side at (x,y).
func WithShip(arch Archetype, side Side, x, y float64) SimOption {
	return SimOption{simOptShip, func(ts *TestSim) {
		ts.Added = append(ts.Added, ts.Ctx.Spawn(arch, V(x, y), side))
	}}
}

// WithFleet spawns a fleet anchored at (x,y).
func WithFleet(side Side, x, y float64, battle, trading int) SimOption {
	return SimOption{simOptShip, func(ts *TestSim) {
		if f := SpawnFleet(ts.Ctx, V(x, y), battle, trading, side); f != nil {
			ts.Fleets = append(ts.Fleets, f)
		}
	}}
}

// WithAttackOrder orders the Added ships at the given indices to attack
// Added[target].
func WithAttackOrder(target int, attackers ...int) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		ts.Sched.Attack(ts.pick(attackers), ts.Added[target])
	}}
}

// WithBoardOrder orders the Added ships at the given indices to board
// Added[target].
func WithBoardOrder(target int, boarders ...int) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		ts.Sched.Board(ts.pick(boarders), ts.Added[target])
	}}
}

func (ts *TestSim) pick(idx []int) []*Ship {
	out := make([]*Ship, 0, len(idx))
	for _, i := range idx {
		out = append(out, ts.Added[i])
	}
	return out
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map size, islands, seed, verbose)
//  2. Sea, context and scheduler
//  3. Ships and fleets
//  4. Orders
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Width:  1280,
		Height: 720,
		SimLog: NewSimLog(false),
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.build()
	for _, o := range opts {
		if o.kind == simOptShip {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptOrder {
			o.fn(ts)
		}
	}
	return ts
}

func (ts *TestSim) build() {
	ts.Sea = OpenSea(ts.Width, ts.Height)
	ts.Sea.Islands = append(ts.Sea.Islands, ts.islands...)
	ts.Ctx = NewSimulationContext(ts.Sea, ts.rng)
	if ts.straight {
		ts.Ctx.Paths = straightLine{}
	}
	ts.Ctx.Resources = NewResourcePool(ts.stores[0], ts.stores[1], ts.stores[2])
	ts.SimLog.Attach(ts.Ctx)
	ts.Ctx.Events = append(MultiSink{ts.SimLog}, ts.sinks...)

	var director Director
	if ts.withAI {
		ts.AI = NewAIDirector()
		ts.AI.Respawn = false
		director = ts.AI
	}
	if ts.weather {
		ts.Env = NewEnvironment(ts.rng)
	}
	ts.Sched = NewScheduler(ts.Ctx, director, ts.Env)
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.Ctx.Tick
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	ts.Sched.Update(TickDT)
	if !ts.SimLog.Verbose() {
		return
	}
	tick := ts.Ctx.Tick
	for _, s := range ts.Ctx.Ships {
		side := s.Side.String()
		ts.SimLog.AddVerbose(tick, s.Label, side, "move", "position",
			fmt.Sprintf("(%.1f,%.1f) v=%.2f", s.Pos.X, s.Pos.Y, s.Speed), s.Speed)
		ts.SimLog.AddVerbose(tick, s.Label, side, "state", "current",
			fmt.Sprintf("%s hp=%d crew=%.2f", s.State, s.HP, s.Crew), float64(s.HP))
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Ctx.Tick
}

// SimSnapshot is a lightweight state summary.
type SimSnapshot struct {
	Tick  int
	Ships []ShipSnapshot
}

// ShipSnapshot is a lightweight copy of a ship's state at a tick.
type ShipSnapshot struct {
	ID    ShipID
	Label string
	Side  Side
	X, Y  float64
	State CombatState
	HP    int
	Crew  float64
}

// Snapshot returns the current state of every ship still afloat.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.Ctx.Tick}
	for _, s := range ts.Ctx.Ships {
		snap.Ships = append(snap.Ships, ShipSnapshot{
			ID:    s.ID,
			Label: s.Label,
			Side:  s.Side,
			X:     s.Pos.X,
			Y:     s.Pos.Y,
			State: s.State,
			HP:    s.HP,
			Crew:  s.Crew,
		})
	}
	return snap
}
