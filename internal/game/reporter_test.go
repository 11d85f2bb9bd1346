package game

import (
	"math"
	"strings"
	"testing"
)

// --- SimReporter ---

func TestSimReporter_CollectTalliesSides(t *testing.T) {
	ctx := newOpenContext(t, 1000, 1000)
	a := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	e := ctx.Spawn(ArchetypeTrading, V(200, 100), SideAI)
	ctx.Spawn(ArchetypeFisher, V(300, 100), SideAI)
	ctx.attack(a, e)
	e.HP = 40

	r := NewSimReporter(0, true)
	r.Collect(ctx)
	rpt := r.Latest()
	if rpt.Player.Alive != 1 || rpt.AI.Alive != 2 {
		t.Fatalf("alive player=%d ai=%d", rpt.Player.Alive, rpt.AI.Alive)
	}
	if rpt.Player.States[StateAttacking] != 1 || rpt.Attacking != 1 {
		t.Fatal("attacker should be tallied")
	}
	if rpt.AI.Damaged != 1 || math.Abs(rpt.AI.AvgHull-0.75) > 1e-9 {
		t.Fatalf("ai damaged=%d hull=%.2f", rpt.AI.Damaged, rpt.AI.AvgHull)
	}
	if len(rpt.Ships) != 3 || rpt.Ships[0].Target != e.Label {
		t.Fatal("verbose report should list ships with targets")
	}
	if !strings.Contains(r.FormatLatest(), "attacking=1") {
		t.Fatalf("unexpected snapshot:\n%s", r.FormatLatest())
	}
}

func TestSimReporter_WindowSummary(t *testing.T) {
	ctx := newOpenContext(t, 1000, 1000)
	p := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	ctx.Spawn(ArchetypeBattle, V(200, 100), SidePlayer)
	r := NewSimReporter(120, false)
	if r.WindowSummary() != nil {
		t.Fatal("no samples, no summary")
	}

	for tick := 0; tick <= 300; tick += 60 {
		ctx.Tick = tick
		if tick == 240 {
			p.HP = 0
		}
		r.Collect(ctx)
	}
	ws := r.WindowSummary()
	if ws.SampleCount != 3 || ws.FromTick != 180 || ws.ToTick != 300 {
		t.Fatalf("window %d..%d samples=%d", ws.FromTick, ws.ToTick, ws.SampleCount)
	}
	if ws.Player.Lost != 1 {
		t.Fatalf("lost = %d, want 1", ws.Player.Lost)
	}
	if math.Abs(ws.Player.AvgAlive-4.0/3) > 1e-9 {
		t.Fatalf("avg alive = %.3f", ws.Player.AvgAlive)
	}
	if math.Abs(ws.Player.StatePct[StateIdle]-100) > 1e-9 {
		t.Fatal("every sample was idle")
	}
	if !strings.Contains(ws.Format(), "Engagement Report (T=180..300, 3 samples)") {
		t.Fatalf("unexpected format:\n%s", ws.Format())
	}
	if (*WindowReport)(nil).Format() != "No data collected yet.\n" {
		t.Fatal("nil report format")
	}
}

func TestStateProportions(t *testing.T) {
	ctx := newOpenContext(t, 1000, 1000)
	a := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	ctx.Spawn(ArchetypeBattle, V(200, 100), SidePlayer)
	e := ctx.Spawn(ArchetypeBattle, V(300, 100), SideAI)
	ctx.attack(a, e)
	p := StateProportions(ctx, SidePlayer)
	if p[StateAttacking] != 0.5 || p[StateIdle] != 0.5 {
		t.Fatalf("proportions = %v", p)
	}
	if len(StateProportions(newOpenContext(t, 100, 100), SideAI)) != 0 {
		t.Fatal("empty side gives an empty map")
	}
}

// --- Outcome ---

func shipsOf(side Side, hp ...int) []*Ship {
	out := make([]*Ship, len(hp))
	for i, h := range hp {
		out[i] = &Ship{ID: ShipID(i + 1), Side: side, HP: h, MaxHP: 100}
	}
	return out
}

func TestDetermineEngagementOutcome(t *testing.T) {
	cases := []struct {
		name   string
		player []*Ship
		ai     []*Ship
		want   EngagementOutcome
		desc   string
	}{
		{"both gone", shipsOf(SidePlayer, 0), shipsOf(SideAI, 0), OutcomeDraw, "mutual_annihilation"},
		{"ai sunk", shipsOf(SidePlayer, 50), shipsOf(SideAI, 0, 0), OutcomePlayerVictory, "decisive_player_victory_ai_sunk"},
		{"player sunk", shipsOf(SidePlayer, 0), shipsOf(SideAI, 10), OutcomeAIVictory, "decisive_ai_victory_player_sunk"},
		{"loss edge", shipsOf(SidePlayer, 80, 80, 80), shipsOf(SideAI, 0, 0, 50), OutcomePlayerVictory, "marginal_player_victory_loss_advantage"},
		{"even losses", shipsOf(SidePlayer, 0, 90), shipsOf(SideAI, 0, 90), OutcomeDraw, "draw_similar_losses"},
		{"untouched", shipsOf(SidePlayer, 100), shipsOf(SideAI, 100), OutcomeInconclusive, "inconclusive_insufficient_resolution"},
	}
	for _, c := range cases {
		r := DetermineEngagementOutcome(c.player, c.ai)
		if r.Outcome != c.want || r.Description != c.desc {
			t.Fatalf("%s: got %s/%s, want %s/%s", c.name, r.Outcome, r.Description, c.want, c.desc)
		}
	}
}

func TestDetermineEngagementOutcome_PrizesCountAsLosses(t *testing.T) {
	ai := shipsOf(SideAI, 60, 0)
	ai[0].Side = SidePlayer
	r := DetermineEngagementOutcome(shipsOf(SidePlayer, 100), ai)
	if r.AI.Captured != 1 || r.AI.Survivors != 0 {
		t.Fatalf("tally = %+v", r.AI)
	}
	if r.Description != "decisive_player_victory_prizes_taken" {
		t.Fatalf("description = %s", r.Description)
	}
}
