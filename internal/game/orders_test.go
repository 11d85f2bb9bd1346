package game

import (
	"math"
	"testing"
)

func newOrderScheduler(t *testing.T) (*SimulationContext, *Scheduler) {
	t.Helper()
	ctx := newOpenContext(t, 2000, 2000)
	return ctx, NewScheduler(ctx, nil, nil)
}

func TestOrderable_SkipsEnemiesWrecksAndBoardedShips(t *testing.T) {
	ctx, _ := newOrderScheduler(t)
	ok := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	enemy := ctx.Spawn(ArchetypeBattle, V(200, 100), SideAI)
	wreck := ctx.Spawn(ArchetypeBattle, V(300, 100), SidePlayer)
	wreck.HP = 0
	boarded := ctx.Spawn(ArchetypeBattle, V(400, 100), SidePlayer)
	boarded.IsEntered = true

	got := orderable([]*Ship{ok, enemy, wreck, boarded})
	if len(got) != 1 || got[0] != ok {
		t.Fatalf("only the free player ship should take orders, got %v", got)
	}
}

func TestMove_LeaderTakesThePointOthersTrail(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	lead := ctx.Spawn(ArchetypeBattle, V(800, 500), SidePlayer)
	back := ctx.Spawn(ArchetypeBattle, V(700, 500), SidePlayer)
	e := ctx.Spawn(ArchetypeBattle, V(900, 900), SideAI)
	ctx.attack(back, e)

	dest := V(1200, 500)
	sc.Move([]*Ship{back, lead}, dest)
	if lead.Dest != dest {
		t.Fatalf("leader dest = %v, want %v", lead.Dest, dest)
	}
	if want := V(1100, 500); back.Dest.Dist(want) > 1e-9 {
		t.Fatalf("trailing dest = %v, want %v", back.Dest, want)
	}
	if back.State != StateIdle || back.Target != nil {
		t.Fatal("a move order should drop combat")
	}
	if !lead.Moving || !back.Moving {
		t.Fatal("both ships should be under way")
	}
}

func TestMove_EmptySelectionIsNoop(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	e := ctx.Spawn(ArchetypeBattle, V(100, 100), SideAI)
	sc.Move([]*Ship{e}, V(500, 500))
	if e.Moving {
		t.Fatal("enemy ships do not take player orders")
	}
}

func TestAttack_FansOutIntoSlots(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	target := ctx.Spawn(ArchetypeBattle, V(1000, 1000), SideAI)
	a := ctx.Spawn(ArchetypeBattle, V(500, 1000), SidePlayer)
	b := ctx.Spawn(ArchetypeBattle, V(500, 1100), SidePlayer)
	f := ctx.Spawn(ArchetypeFisher, V(500, 900), SidePlayer)

	if n := sc.Attack([]*Ship{a, b, f}, target); n != 2 {
		t.Fatalf("engaged = %d, want 2", n)
	}
	if a.Dest == b.Dest {
		t.Fatal("attackers should take different slots")
	}
	for _, s := range []*Ship{a, b} {
		if s.State != StateAttacking || !ctx.RoleList(RoleAttacking).Contains(s) {
			t.Fatalf("%s should be attacking", s.Label)
		}
		if d := s.Dest.Dist(target.Pos); d > attackSlotLimit {
			t.Fatalf("slot %.0fpx out, want within %.0f", d, attackSlotLimit)
		}
	}
	if f.State != StateIdle {
		t.Fatal("fisher should ignore the order")
	}
}

func TestDefend_TrailsFirstShip(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	a := ctx.Spawn(ArchetypeBattle, V(500, 500), SidePlayer)
	b := ctx.Spawn(ArchetypeTrading, V(400, 500), SidePlayer)
	f := ctx.Spawn(ArchetypeFisher, V(300, 500), SidePlayer)

	if n := sc.Defend([]*Ship{a, b, f}, V(1000, 500)); n != 2 {
		t.Fatalf("defending = %d, want 2", n)
	}
	if a.Dest != V(1000, 500) {
		t.Fatalf("first ship dest = %v", a.Dest)
	}
	if b.Dest.Dist(V(900, 500)) > 1e-9 {
		t.Fatalf("second ship dest = %v, want (900,500)", b.Dest)
	}
	if b.State != StateDefending || !ctx.RoleList(RoleDefending).Contains(b) {
		t.Fatal("trader should be defending")
	}
	if f.State != StateIdle {
		t.Fatal("fisher cannot defend")
	}
}

func TestBoard_OnlyBoardersAnswer(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	target := ctx.Spawn(ArchetypeTrading, V(1000, 1000), SideAI)
	a := ctx.Spawn(ArchetypeBattle, V(600, 1000), SidePlayer)
	tr := ctx.Spawn(ArchetypeTrading, V(600, 900), SidePlayer)

	if n := sc.Board([]*Ship{a, tr}, target); n != 1 {
		t.Fatalf("boarders = %d, want 1", n)
	}
	if a.State != StateEntering || a.Dest != target.Pos {
		t.Fatalf("boarder should head for the target, state=%s dest=%v", a.State, a.Dest)
	}
	if !ctx.RoleList(RoleEntering).Contains(a) {
		t.Fatal("boarder should be enlisted")
	}
}

func TestRoleLists_StayExclusive(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	target := ctx.Spawn(ArchetypeTrading, V(1500, 1000), SideAI)
	a := ctx.Spawn(ArchetypeBattle, V(500, 1000), SidePlayer)

	sc.Attack([]*Ship{a}, target)
	sc.Board([]*Ship{a}, target)
	if a.Role != RoleEntering {
		t.Fatalf("role = %s, want entering", a.Role)
	}
	sc.Update(TickDT)
	if ctx.RoleList(RoleAttacking).Contains(a) {
		t.Fatal("ship should be compacted out of the attacking list")
	}
	if !ctx.RoleList(RoleEntering).Contains(a) {
		t.Fatal("ship should stay in the entering list")
	}
}

func TestToggleRepair(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	log := &eventLog{}
	ctx.Events = log
	s := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	e := ctx.Spawn(ArchetypeBattle, V(300, 100), SideAI)

	if !sc.ToggleRepair(s) || !s.Repairing || len(ctx.Repairing()) != 1 {
		t.Fatal("repair should switch on and queue the ship")
	}
	if !sc.ToggleRepair(s) || s.Repairing || len(ctx.Repairing()) != 0 {
		t.Fatal("second toggle should switch repair off")
	}
	if sc.ToggleRepair(e) {
		t.Fatal("enemy ships cannot be repaired")
	}
	if ev, ok := log.first(EventRepair); !ok || ev.Detail != "on" {
		t.Fatalf("first repair event = %+v", ev)
	}
}

func TestDrinkRum(t *testing.T) {
	ctx, sc := newOrderScheduler(t)
	s := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	if sc.DrinkRum(s) {
		t.Fatal("empty stores should refuse")
	}
	ctx.Resources.Add(Rum, 2)
	if !sc.DrinkRum(s) {
		t.Fatal("should drink with rum in the hold")
	}
	if ctx.Resources.Get(Rum) != 1 || !s.Drunk() {
		t.Fatal("one tot should be spent and the buff applied")
	}
	if math.Abs(s.Attack.Value-20) > 1e-9 {
		t.Fatalf("attack = %.1f, want 20", s.Attack.Value)
	}
	if ctx.Stats.Get(StatRumDrunk) != 1 {
		t.Fatal("drink should be counted")
	}
}
