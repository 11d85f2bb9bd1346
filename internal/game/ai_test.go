package game

import (
	"testing"
)

func newQuietDirector(t *testing.T) (*SimulationContext, *AIDirector) {
	t.Helper()
	ctx := newOpenContext(t, 2000, 2000)
	d := NewAIDirector()
	d.Respawn = false
	return ctx, d
}

// --- Population ---

func TestPopulate_OpeningTraffic(t *testing.T) {
	ctx, d := newQuietDirector(t)
	d.Populate(ctx)
	if n := ctx.Count(ArchetypeTrading, SideAI); n != 5 {
		t.Fatalf("traders = %d, want 5", n)
	}
	if n := ctx.Count(ArchetypeFisher, SideAI); n != 11 {
		t.Fatalf("fishers = %d, want 11", n)
	}
	if ctx.Count(ArchetypeOctopus, SideAI) != 1 {
		t.Fatal("the octopus should be in its lair")
	}
	for _, s := range ctx.Ships {
		if s.Pos.X < 0 || s.Pos.X >= 2000 || s.Pos.Y < 0 || s.Pos.Y >= 2000 {
			t.Fatalf("%s placed off the chart at %v", s.Label, s.Pos)
		}
	}
}

func TestRespawn_TopsUpQuotas(t *testing.T) {
	ctx := newOpenContext(t, 2000, 2000)
	d := NewAIDirector()
	d.Update(ctx, TickDT)
	for _, a := range []Archetype{ArchetypeFisher, ArchetypeTrading, ArchetypeBattle} {
		if n := ctx.Count(a, SideAI); n != 1 {
			t.Fatalf("%s spawned = %d, want one per tick", a, n)
		}
	}
	if len(ctx.Fleets) != 0 {
		t.Fatal("no fleets before the charts come in")
	}
}

func TestTrySpawn_StaysOutOfSight(t *testing.T) {
	ctx := newOpenContext(t, 300, 300)
	d := NewAIDirector()
	ctx.Spawn(ArchetypeBattle, V(150, 150), SidePlayer)
	for i := 0; i < 50; i++ {
		d.trySpawn(ctx, ArchetypeFisher)
	}
	if ctx.Count(ArchetypeFisher, SideAI) != 0 {
		t.Fatal("nothing should spawn within sight of the player")
	}
}

// --- Lone ships ---

func TestWarship_EngagesNearbyEnemy(t *testing.T) {
	ctx, d := newQuietDirector(t)
	s := ctx.Spawn(ArchetypeBattle, V(500, 500), SideAI)
	p := ctx.Spawn(ArchetypeBattle, V(700, 500), SidePlayer)
	d.Update(ctx, TickDT)
	if s.State == StateIdle || s.Target != p {
		t.Fatalf("warship should engage, state=%s", s.State)
	}
}

func TestWarship_OutnumberedHoldsStation(t *testing.T) {
	ctx, d := newQuietDirector(t)
	s := ctx.Spawn(ArchetypeBattle, V(500, 500), SideAI)
	for i := 0; i < 4; i++ {
		ctx.Spawn(ArchetypeBattle, V(700, 400+float64(i)*60), SidePlayer)
	}
	d.Update(ctx, TickDT)
	if s.State != StateDefending || s.Moving {
		t.Fatalf("outnumbered warship should defend in place, state=%s moving=%v", s.State, s.Moving)
	}
}

func TestTrader_ShootsBackOnceHit(t *testing.T) {
	ctx, d := newQuietDirector(t)
	tr := ctx.Spawn(ArchetypeTrading, V(500, 500), SideAI)
	d.Update(ctx, TickDT)
	if tr.State != StateIdle {
		t.Fatal("unharmed trader should stay idle")
	}
	tr.HP = 70
	d.Update(ctx, TickDT)
	if tr.State != StateDefending {
		t.Fatalf("damaged trader should defend, state=%s", tr.State)
	}
}

func TestFisher_Roams(t *testing.T) {
	ctx, d := newQuietDirector(t)
	f := ctx.Spawn(ArchetypeFisher, V(500, 500), SideAI)
	d.Update(ctx, TickDT)
	if !f.Moving {
		t.Fatal("idle fisher should set off")
	}
}

// --- Hunters ---

func TestOctopus_BoardsShipsNearTheLair(t *testing.T) {
	ctx, d := newQuietDirector(t)
	o := d.SpawnOctopus(ctx, V(500, 500))
	p := ctx.Spawn(ArchetypeBattle, V(800, 500), SidePlayer)
	d.Update(ctx, TickDT)
	if o.State != StateEntering || o.Target != p {
		t.Fatalf("octopus should go for the ship, state=%s", o.State)
	}
}

func TestDragon_AttacksWithinReach(t *testing.T) {
	ctx, d := newQuietDirector(t)
	dr := d.SpawnDragon(ctx, V(500, 500))
	p := ctx.Spawn(ArchetypeBattle, V(650, 500), SidePlayer)
	d.Update(ctx, TickDT)
	if dr.State != StateAttacking || dr.Target != p {
		t.Fatalf("dragon should attack, state=%s", dr.State)
	}
}

func TestGhost_RisesAtMapParts(t *testing.T) {
	ctx, d := newQuietDirector(t)
	log := &eventLog{}
	ctx.Events = log
	ctx.Resources.Add(MapParts, DefaultGhostMapParts-1)
	d.Update(ctx, TickDT)
	if d.Ghost() != nil {
		t.Fatal("ghost should wait for the full chart")
	}
	ctx.Resources.Add(MapParts, 1)
	d.Update(ctx, TickDT)
	g := d.Ghost()
	if g == nil || g.Pos.Dist(ctx.Sea.Treasure) > cellSize {
		t.Fatalf("ghost should rise at the treasure, got %v", g)
	}
	if log.count(EventGhost) != 1 {
		t.Fatal("the rising should be reported")
	}
}

func TestSpawnGhost_ClearsRegularShipsButNotTheAdmiral(t *testing.T) {
	ctx, d := newQuietDirector(t)
	adm := d.SpawnAdmiral(ctx, V(400, 400))
	other := SpawnFleet(ctx, V(1200, 400), 2, 0, SideAI)
	lb := ctx.Spawn(ArchetypeBattle, V(300, 1200), SideAI)
	lt := ctx.Spawn(ArchetypeTrading, V(500, 1200), SideAI)
	lf := ctx.Spawn(ArchetypeFisher, V(700, 1200), SideAI)

	d.SpawnGhost(ctx)
	if lb.Alive() || lt.Alive() {
		t.Fatal("lone warships and traders should be cleared")
	}
	if !lf.Alive() {
		t.Fatal("fishers stay")
	}
	for _, m := range other.Members {
		if m.Alive() {
			t.Fatal("other AI fleets should be cleared")
		}
	}
	for _, m := range adm.Members {
		if !m.Alive() {
			t.Fatal("the admiral's fleet stays")
		}
	}
}

func TestGhost_GathersEveryTargetInRange(t *testing.T) {
	ctx, d := newQuietDirector(t)
	g := d.SpawnGhost(ctx)
	ctx.Spawn(ArchetypeBattle, g.Pos.Add(V(100, 0)), SidePlayer)
	ctx.Spawn(ArchetypeBattle, g.Pos.Add(V(0, -150)), SidePlayer)
	ctx.Spawn(ArchetypeBattle, g.Pos.Add(V(-700, 0)), SidePlayer)

	d.Update(ctx, TickDT)
	if g.State != StateAttacking {
		t.Fatalf("ghost should attack, state=%s", g.State)
	}
	if len(g.Targets) != 2 {
		t.Fatalf("ghost targets = %d, want the two within range", len(g.Targets))
	}
}
