package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// SideReport captures one side's ships at one point in time.
type SideReport struct {
	States   map[CombatState]int
	Alive    int
	Damaged  int // hp below max
	Docked   int // boarding or being boarded
	Chasing  int
	Moving   int
	AvgHull  float64 // hp / maxHP over live ships
	AvgCrew  float64
	Fleets   int
	InBattle int // fleets fighting
}

// ShipReport captures a single ship's state.
type ShipReport struct {
	ID        ShipID
	Label     string
	Side      Side
	Archetype Archetype
	State     CombatState
	HP, MaxHP int
	Crew      float64
	Enter     float64
	Target    string
	Docking   bool
	IsEntered bool
}

// SimReport is a full snapshot of the simulation at one tick.
type SimReport struct {
	Tick   int
	Player SideReport
	AI     SideReport

	// Role list lengths at collection time.
	Attacking, Defending, Entering, Repairing int

	Stats map[string]int

	// Ships detail (verbose mode only).
	Ships []ShipReport
}

// Side returns the report for side.
func (r *SimReport) Side(side Side) *SideReport {
	if side == SidePlayer {
		return &r.Player
	}
	return &r.AI
}

// --- Reporter ---

// SimReporter collects periodic reports from the simulation and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	verbose     bool
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int, verbose bool) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{
		windowTicks: windowTicks,
		verbose:     verbose,
	}
}

// Collect gathers a snapshot from the current simulation state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(ctx *SimulationContext) {
	report := SimReport{
		Tick:      ctx.Tick,
		Player:    SideReport{States: make(map[CombatState]int)},
		AI:        SideReport{States: make(map[CombatState]int)},
		Attacking: ctx.attacking.Len(),
		Defending: ctx.defending.Len(),
		Entering:  ctx.entering.Len(),
		Repairing: len(ctx.repairing),
		Stats:     ctx.Stats.Snapshot(),
	}

	for _, s := range ctx.Ships {
		if !s.Alive() {
			continue
		}
		r.tallyShip(s, report.Side(s.Side))
		if r.verbose {
			report.Ships = append(report.Ships, shipReport(s))
		}
	}
	for _, side := range []Side{SidePlayer, SideAI} {
		sr := report.Side(side)
		if sr.Alive > 0 {
			sr.AvgHull /= float64(sr.Alive)
			sr.AvgCrew /= float64(sr.Alive)
		}
	}
	for _, f := range ctx.Fleets {
		if f.Retired() {
			continue
		}
		sr := report.Side(f.Side)
		sr.Fleets++
		if f.InBattle {
			sr.InBattle++
		}
	}

	r.history = append(r.history, report)
}

func (r *SimReporter) tallyShip(s *Ship, sr *SideReport) {
	sr.Alive++
	sr.States[s.State]++
	if s.HP < s.MaxHP {
		sr.Damaged++
	}
	if s.Docking || s.IsEntered {
		sr.Docked++
	}
	if s.Chasing {
		sr.Chasing++
	}
	if s.Moving {
		sr.Moving++
	}
	if s.MaxHP > 0 {
		sr.AvgHull += float64(s.HP) / float64(s.MaxHP)
	}
	sr.AvgCrew += s.Crew
}

func shipReport(s *Ship) ShipReport {
	sr := ShipReport{
		ID:        s.ID,
		Label:     s.Label,
		Side:      s.Side,
		Archetype: s.Archetype,
		State:     s.State,
		HP:        s.HP,
		MaxHP:     s.MaxHP,
		Crew:      s.Crew,
		Enter:     s.Enter.Total(),
		Docking:   s.Docking,
		IsEntered: s.IsEntered,
	}
	if s.Target != nil {
		sr.Target = s.Target.Label
	}
	return sr
}

// Latest returns the most recent report, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowSummary returns an aggregated summary over the recent time window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		Player:      WindowSide{StatePct: make(map[CombatState]float64)},
		AI:          WindowSide{StatePct: make(map[CombatState]float64)},
	}
	for _, rpt := range window {
		wr.Player.accumulate(rpt.Player)
		wr.AI.accumulate(rpt.AI)
	}
	wr.Player.finish(len(window))
	wr.AI.finish(len(window))

	// Losses are the drop in alive count across the window.
	oldest, newest := window[len(window)-1], window[0]
	wr.Player.Lost = max(0, oldest.Player.Alive-newest.Player.Alive)
	wr.AI.Lost = max(0, oldest.AI.Alive-newest.AI.Alive)
	wr.Stats = newest.Stats
	return wr
}

// WindowSide is one side's averages over a window.
type WindowSide struct {
	StatePct   map[CombatState]float64 // 0-100
	AvgAlive   float64
	AvgDamaged float64
	AvgDocked  float64
	AvgChasing float64
	AvgHull    float64
	AvgCrew    float64
	Lost       int

	stateTotal float64
}

func (ws *WindowSide) accumulate(sr SideReport) {
	for st, c := range sr.States {
		ws.StatePct[st] += float64(c)
		ws.stateTotal += float64(c)
	}
	ws.AvgAlive += float64(sr.Alive)
	ws.AvgDamaged += float64(sr.Damaged)
	ws.AvgDocked += float64(sr.Docked)
	ws.AvgChasing += float64(sr.Chasing)
	ws.AvgHull += sr.AvgHull
	ws.AvgCrew += sr.AvgCrew
}

func (ws *WindowSide) finish(samples int) {
	n := float64(samples)
	if ws.stateTotal > 0 {
		for st, c := range ws.StatePct {
			ws.StatePct[st] = c / ws.stateTotal * 100
		}
	}
	ws.AvgAlive /= n
	ws.AvgDamaged /= n
	ws.AvgDocked /= n
	ws.AvgChasing /= n
	ws.AvgHull /= n
	ws.AvgCrew /= n
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int
	Player, AI       WindowSide
	Stats            map[string]int
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Engagement Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	for _, side := range []struct {
		name string
		ws   WindowSide
	}{{"PLAYER", wr.Player}, {"AI", wr.AI}} {
		fmt.Fprintf(&sb, "\n--- %s State Distribution ---\n", side.name)
		for _, st := range []CombatState{StateIdle, StateAttacking, StateDefending, StateEntering} {
			if pct := side.ws.StatePct[st]; pct > 0.5 {
				fmt.Fprintf(&sb, "  %-10s %5.1f%%\n", st, pct)
			}
		}
	}

	sb.WriteString("\n--- Losses & Hulls ---\n")
	fmt.Fprintf(&sb, "  Player: alive=%.1f  damaged=%.1f  hull=%.0f%%  crew=%.1f  lost=%d\n",
		wr.Player.AvgAlive, wr.Player.AvgDamaged, wr.Player.AvgHull*100, wr.Player.AvgCrew, wr.Player.Lost)
	fmt.Fprintf(&sb, "  AI:     alive=%.1f  damaged=%.1f  hull=%.0f%%  crew=%.1f  lost=%d\n",
		wr.AI.AvgAlive, wr.AI.AvgDamaged, wr.AI.AvgHull*100, wr.AI.AvgCrew, wr.AI.Lost)

	sb.WriteString("\n--- Boarding & Pursuit ---\n")
	fmt.Fprintf(&sb, "  Player: docked=%.1f  chasing=%.1f\n", wr.Player.AvgDocked, wr.Player.AvgChasing)
	fmt.Fprintf(&sb, "  AI:     docked=%.1f  chasing=%.1f\n", wr.AI.AvgDocked, wr.AI.AvgChasing)

	if len(wr.Stats) > 0 {
		sb.WriteString("\n--- Counters ---\n")
		c := &StatCounters{totals: wr.Stats}
		for _, name := range c.Names() {
			fmt.Fprintf(&sb, "  %-22s %d\n", name, wr.Stats[name])
		}
	}
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", rpt.Tick)
	for _, side := range []Side{SidePlayer, SideAI} {
		sr := rpt.Side(side)
		fmt.Fprintf(&sb, "%-6s alive=%d damaged=%d docked=%d hull=%.0f%% fleets=%d/%d\n",
			side.String()+":", sr.Alive, sr.Damaged, sr.Docked, sr.AvgHull*100, sr.InBattle, sr.Fleets)
	}
	fmt.Fprintf(&sb, "Roles: attacking=%d defending=%d entering=%d repairing=%d\n",
		rpt.Attacking, rpt.Defending, rpt.Entering, rpt.Repairing)
	for _, s := range rpt.Ships {
		fmt.Fprintf(&sb, "  %-12s %-9s hp=%d/%d crew=%.1f target=%s\n",
			s.Label, s.State, s.HP, s.MaxHP, s.Crew, s.Target)
	}
	return sb.String()
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// StateProportions computes the fraction of live ships of side in each
// combat state.
func StateProportions(ctx *SimulationContext, side Side) map[CombatState]float64 {
	ships := ctx.ShipsOf(side)
	out := make(map[CombatState]float64)
	if len(ships) == 0 {
		return out
	}
	for _, s := range ships {
		out[s.State]++
	}
	for st := range out {
		out[st] /= float64(len(ships))
	}
	return out
}
