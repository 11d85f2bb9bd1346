package main

import (
	"path/filepath"
	"testing"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/geo"
	"github.com/Garsondee/Broadside/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestFirstTick_MatchesCategoryKeyAndValue(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "combat", Key: "shot", Value: "hit battle-4 for 3"},
		{Tick: 7, Category: "combat", Key: "sunk", Value: "battle at (10,10)"},
		{Tick: 9, Category: "combat", Key: "shot", Value: "hit trading-2 for 3"},
	}
	if got := firstTick(entries, "combat", "shot", ""); got != 3 {
		t.Errorf("first shot = %d, want 3", got)
	}
	if got := firstTick(entries, "combat", "shot", "trading"); got != 9 {
		t.Errorf("first shot at a trader = %d, want 9", got)
	}
	if got := firstTick(entries, "boarding", "captured", ""); got != -1 {
		t.Errorf("missing marker = %d, want -1", got)
	}
}

func TestCollectStats_CountsByCategory(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 1, Category: "combat", Key: "shot"},
		{Tick: 2, Category: "combat", Key: "shot"},
		{Tick: 4, Category: "boarding", Key: "docked"},
		{Tick: 8, Category: "boarding", Key: "captured"},
		{Tick: 9, Category: "combat", Key: "sunk"},
		{Tick: 9, Category: "state", Key: "state"},
	}
	rs := collectStats(entries)
	if rs.shots != 2 || rs.captured != 1 || rs.sunk != 1 || rs.stateChanges != 1 {
		t.Errorf("counts = shots %d captured %d sunk %d state %d", rs.shots, rs.captured, rs.sunk, rs.stateChanges)
	}
	if rs.firstDockTick != 4 || rs.firstCaptureTick != 8 || rs.firstSunkTick != 9 {
		t.Errorf("markers = dock %d capture %d sunk %d", rs.firstDockTick, rs.firstCaptureTick, rs.firstSunkTick)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Errorf("empty = %q, want n/a", got)
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Errorf("avg = %q, want 15.0", got)
	}
	if got := avg(3, 0); got != 0 {
		t.Errorf("avg over zero runs = %v", got)
	}
}

func TestOutcomeCounts_MostFrequentFirst(t *testing.T) {
	all := []runStats{
		{outcome: game.EngagementOutcomeReason{Outcome: game.OutcomeDraw}},
		{outcome: game.EngagementOutcomeReason{Outcome: game.OutcomePlayerVictory}},
		{outcome: game.EngagementOutcomeReason{Outcome: game.OutcomePlayerVictory}},
	}
	rows := outcomeCounts(all)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].outcome != game.OutcomePlayerVictory || rows[0].n != 2 {
		t.Errorf("first row = %+v", rows[0])
	}
}

func TestScenarios_BuildBothSides(t *testing.T) {
	for name, sc := range scenarios {
		ts := sc.build(1, nil)
		if len(ts.Ctx.ShipsOf(game.SidePlayer)) == 0 || len(ts.Ctx.ShipsOf(game.SideAI)) == 0 {
			t.Errorf("%s: both sides need ships", name)
		}
		sc.step(ts)
		if ts.Ctx.Tick != 1 {
			t.Errorf("%s: step advanced to tick %d, want 1", name, ts.Ctx.Tick)
		}
	}
}

func TestRunner_SkirmishRecordsToStore(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.sqlitePath", filepath.Join(t.TempDir(), "report.db"))
	st := storage.NewStore(zerolog.Nop(), geo.NewChart(mapW, mapH))
	if err := st.Connect(); err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.Setup(); err != nil {
		t.Fatal(err)
	}

	r := runner{sc: scenarios["skirmish"], ticks: 2 * game.TicksPerSecond, store: st, chart: true, cols: 40, rows: 10, logger: zerolog.Nop()}
	rs := r.run(1, 42)
	if rs.scenario != "skirmish" || rs.seed != 42 {
		t.Errorf("run identity = %s/%d", rs.scenario, rs.seed)
	}
	if rs.outcome.Player.Total != 3 || rs.outcome.AI.Total != 3 {
		t.Errorf("tallies = %d vs %d, want 3 vs 3", rs.outcome.Player.Total, rs.outcome.AI.Total)
	}
	if rs.windowSummary == nil || rs.windowSummary.SampleCount != 2 {
		t.Errorf("window = %+v, want 2 samples", rs.windowSummary)
	}
	if rs.chart == "" {
		t.Error("chart requested but empty")
	}

	battles, err := st.Battles()
	if err != nil {
		t.Fatal(err)
	}
	if len(battles) != 1 || battles[0].Scenario != "skirmish" || battles[0].Ticks != 2*game.TicksPerSecond {
		t.Errorf("battles = %+v", battles)
	}
}
