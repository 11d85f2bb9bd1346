package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/geo"
	"github.com/Garsondee/Broadside/internal/logging"
	"github.com/Garsondee/Broadside/internal/minimap"
	"github.com/Garsondee/Broadside/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	mapW = 1600
	mapH = 900
)

type runStats struct {
	runIndex int
	seed     int64
	scenario string

	firstShotTick    int
	firstDockTick    int
	firstSunkTick    int
	firstCaptureTick int

	shots        int
	splashes     int
	sunk         int
	captured     int
	dragged      int
	fled         int
	stateChanges int
	fleetEvents  int

	outcome       game.EngagementOutcomeReason
	windowSummary *game.WindowReport
	chart         string
}

// scenario builds a TestSim and advances it one tick at a time.
type scenario struct {
	name  string
	build func(seed int64, sinks []game.EventSink) *game.TestSim
	step  func(ts *game.TestSim)
}

var scenarios = map[string]scenario{
	"skirmish":    {name: "skirmish", build: buildSkirmish, step: stepTick},
	"fleet-clash": {name: "fleet-clash", build: buildFleetClash, step: stepFleets},
	"boarding":    {name: "boarding", build: buildBoarding, step: stepTick},
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func baseOptions(seed int64, sinks []game.EventSink) []game.SimOption {
	opts := []game.SimOption{game.WithMapSize(mapW, mapH), game.WithSeed(seed)}
	for _, s := range sinks {
		opts = append(opts, game.WithSink(s))
	}
	return opts
}

// Three player battle ships against three AI battle ships, the player line
// ordered onto the AI centre.
func buildSkirmish(seed int64, sinks []game.EventSink) *game.TestSim {
	opts := append(baseOptions(seed, sinks),
		game.WithAI(),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 300, 350),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 300, 450),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 300, 550),
		game.WithShip(game.ArchetypeBattle, game.SideAI, 1300, 350),
		game.WithShip(game.ArchetypeBattle, game.SideAI, 1300, 450),
		game.WithShip(game.ArchetypeBattle, game.SideAI, 1300, 550),
		game.WithAttackOrder(4, 0, 1, 2),
	)
	return game.NewTestSim(opts...)
}

// Two fleets inside each other's scan range. The AI director drives its own
// fleet; the player fleet is stepped by hand.
func buildFleetClash(seed int64, sinks []game.EventSink) *game.TestSim {
	opts := append(baseOptions(seed, sinks),
		game.WithAI(),
		game.WithFleet(game.SidePlayer, 550, 450, 3, 1),
		game.WithFleet(game.SideAI, 1050, 450, 3, 1),
	)
	return game.NewTestSim(opts...)
}

// Each player battle ship boards its own AI trader.
func buildBoarding(seed int64, sinks []game.EventSink) *game.TestSim {
	opts := append(baseOptions(seed, sinks),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 400, 300),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 400, 450),
		game.WithShip(game.ArchetypeBattle, game.SidePlayer, 400, 600),
		game.WithShip(game.ArchetypeTrading, game.SideAI, 800, 300),
		game.WithShip(game.ArchetypeTrading, game.SideAI, 800, 450),
		game.WithShip(game.ArchetypeTrading, game.SideAI, 800, 600),
		game.WithBoardOrder(3, 0),
		game.WithBoardOrder(4, 1),
		game.WithBoardOrder(5, 2),
	)
	return game.NewTestSim(opts...)
}

func stepTick(ts *game.TestSim) { ts.RunTicks(1) }

func stepFleets(ts *game.TestSim) {
	for _, f := range ts.Fleets {
		if f.Side == game.SidePlayer {
			f.Update(ts.Ctx, game.TickDT)
		}
	}
	ts.RunTicks(1)
}

type runner struct {
	sc     scenario
	ticks  int
	store  *storage.Store
	chart  bool
	cols   int
	rows   int
	logger zerolog.Logger
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenarioName string
	var dbPath string
	var showMap bool
	var logLevel string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioName, "scenario", "skirmish", "scenario name ("+scenarioNames()+")")
	flag.StringVar(&dbPath, "db", "", "record every run to this sqlite file")
	flag.BoolVar(&showMap, "map", false, "print the final chart of each run")
	flag.StringVar(&logLevel, "log-level", "WARN", "log level for diagnostics on stderr")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	sc, ok := scenarios[scenarioName]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenarioName, scenarioNames())
		return
	}

	logs, err := logging.Setup(logging.Options{Level: logLevel, Console: os.Stderr})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	r := runner{sc: sc, ticks: ticks, chart: showMap, logger: logs.Logger}
	if showMap {
		r.cols, r.rows = minimap.FitSize(minimap.TerminalSize)
	}
	if dbPath != "" {
		viper.Set("storage.sqlitePath", dbPath)
		st := storage.NewStore(logs.Logger.With().Str("component", "storage").Logger(), geo.NewChart(mapW, mapH))
		if err := st.Connect(); err != nil {
			logs.Logger.Fatal().Err(err).Msg("storage unavailable")
		}
		if err := st.Setup(); err != nil {
			logs.Logger.Fatal().Err(err).Msg("storage setup failed")
		}
		defer st.Close()
		r.store = st
	}

	fmt.Printf("=== Headless Engagement Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenarioName, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := r.run(i+1, seed)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func (r runner) run(runIndex int, seed int64) runStats {
	var sinks []game.EventSink
	if r.store != nil {
		sinks = append(sinks, r.store)
	}
	ts := r.sc.build(seed, sinks)
	if r.store != nil {
		if _, err := r.store.BeginBattle(ts.Ctx, r.sc.name, seed); err != nil {
			r.logger.Error().Err(err).Int("run", runIndex).Msg("battle record not started")
		}
	}

	player := append([]*game.Ship(nil), ts.Ctx.ShipsOf(game.SidePlayer)...)
	ai := append([]*game.Ship(nil), ts.Ctx.ShipsOf(game.SideAI)...)
	reporter := game.NewSimReporter(10*game.TicksPerSecond, false)
	for i := 0; i < r.ticks; i++ {
		r.sc.step(ts)
		if ts.Ctx.Tick%game.TicksPerSecond == 0 {
			reporter.Collect(ts.Ctx)
		}
	}

	rs := collectStats(ts.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.scenario = r.sc.name
	rs.outcome = game.DetermineEngagementOutcome(player, ai)
	rs.windowSummary = reporter.WindowSummary()
	if r.chart {
		rs.chart = minimap.Render(ts.Ctx, ts.Env, r.cols, r.rows).String()
	}
	if r.store != nil {
		if err := r.store.EndBattle(rs.outcome); err != nil {
			r.logger.Error().Err(err).Int("run", runIndex).Msg("battle record not saved")
		}
	}
	r.logger.Debug().Int("run", runIndex).Int64("seed", seed).
		Str("outcome", rs.outcome.Outcome.String()).Msg("run finished")
	return rs
}

func collectStats(entries []game.SimLogEntry) runStats {
	count := func(category, key string) int {
		n := 0
		for _, e := range entries {
			if e.Category == category && e.Key == key {
				n++
			}
		}
		return n
	}
	return runStats{
		firstShotTick:    firstTick(entries, "combat", "shot", ""),
		firstDockTick:    firstTick(entries, "boarding", "docked", ""),
		firstSunkTick:    firstTick(entries, "combat", "sunk", ""),
		firstCaptureTick: firstTick(entries, "boarding", "captured", ""),
		shots:            count("combat", "shot"),
		splashes:         count("combat", "splash"),
		sunk:             count("combat", "sunk"),
		captured:         count("boarding", "captured"),
		dragged:          count("boarding", "dragged"),
		fled:             count("combat", "fled"),
		stateChanges:     count("state", "state"),
		fleetEvents:      count("fleet", "fleet"),
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_shot=%d first_dock=%d first_sunk=%d first_capture=%d\n",
		rs.firstShotTick, rs.firstDockTick, rs.firstSunkTick, rs.firstCaptureTick)
	fmt.Printf("event_totals: shot=%d splash=%d sunk=%d captured=%d dragged=%d fled=%d state_change=%d fleet=%d\n",
		rs.shots, rs.splashes, rs.sunk, rs.captured, rs.dragged, rs.fled, rs.stateChanges, rs.fleetEvents)
	o := rs.outcome
	fmt.Printf("outcome: %s (%s) player=%d/%d afloat ai=%d/%d afloat ai_captured=%d\n",
		o.Outcome, o.Description, o.Player.Survivors, o.Player.Total, o.AI.Survivors, o.AI.Total, o.AI.Captured)
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	if rs.chart != "" {
		fmt.Print(rs.chart)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	var shots, sunk, captured, dragged, fled int
	var shotTicks, dockTicks, sunkTicks, captureTicks []int
	for _, rs := range all {
		shots += rs.shots
		sunk += rs.sunk
		captured += rs.captured
		dragged += rs.dragged
		fled += rs.fled
		shotTicks = appendMarker(shotTicks, rs.firstShotTick)
		dockTicks = appendMarker(dockTicks, rs.firstDockTick)
		sunkTicks = appendMarker(sunkTicks, rs.firstSunkTick)
		captureTicks = appendMarker(captureTicks, rs.firstCaptureTick)
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_events_per_run: shot=%.1f sunk=%.1f captured=%.1f dragged=%.1f fled=%.1f\n",
		avg(shots, len(all)), avg(sunk, len(all)), avg(captured, len(all)), avg(dragged, len(all)), avg(fled, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_shot=%s first_dock=%s first_sunk=%s first_capture=%s\n",
		avgTickString(shotTicks), avgTickString(dockTicks), avgTickString(sunkTicks), avgTickString(captureTicks))

	fmt.Println("outcomes:")
	for _, row := range outcomeCounts(all) {
		fmt.Printf("  %-16s %d (%.0f%%)\n", row.outcome, row.n, avg(row.n*100, len(all)))
	}
}

func appendMarker(ticks []int, t int) []int {
	if t < 0 {
		return ticks
	}
	return append(ticks, t)
}

type outcomeRow struct {
	outcome game.EngagementOutcome
	n       int
}

// outcomeCounts tallies outcomes, most frequent first.
func outcomeCounts(all []runStats) []outcomeRow {
	counts := map[game.EngagementOutcome]int{}
	for _, rs := range all {
		counts[rs.outcome.Outcome]++
	}
	rows := make([]outcomeRow, 0, len(counts))
	for o, n := range counts {
		rows = append(rows, outcomeRow{o, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].outcome < rows[j].outcome
	})
	return rows
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
