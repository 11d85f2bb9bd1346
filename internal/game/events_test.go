package game

import (
	"strings"
	"testing"
)

// --- Events ---

func TestEventKind_Names(t *testing.T) {
	if EventBoardingEnd.String() != "boarding" || EventFleetRetired.String() != "fleet-retired" {
		t.Fatal("unexpected event names")
	}
	if EventKind(99).String() != "event(99)" {
		t.Fatalf("unknown kind = %q", EventKind(99).String())
	}
}

func TestMultiSink_FansOutAndSkipsNil(t *testing.T) {
	a, b := &eventLog{}, &eventLog{}
	n := 0
	m := MultiSink{a, nil, b, EventSinkFunc(func(Event) { n++ })}
	m.OnEvent(Event{Kind: EventShot})
	if a.count(EventShot) != 1 || b.count(EventShot) != 1 || n != 1 {
		t.Fatal("every sink should see the event once")
	}
}

func TestEmit_StampsTick(t *testing.T) {
	ctx := newOpenContext(t, 500, 500)
	log := &eventLog{}
	ctx.Events = log
	ctx.Tick = 42
	ctx.emit(Event{Kind: EventWind})
	if log.events[0].Tick != 42 {
		t.Fatalf("tick = %d, want 42", log.events[0].Tick)
	}
}

// --- SimLog ---

func TestSimLog_CategorisesEvents(t *testing.T) {
	ctx := newOpenContext(t, 500, 500)
	sl := NewSimLog(false)
	sl.Attach(ctx)
	a := ctx.Spawn(ArchetypeBattle, V(100, 100), SidePlayer)
	e := ctx.Spawn(ArchetypeTrading, V(200, 100), SideAI)

	sl.OnEvent(Event{Tick: 3, Kind: EventShot, Ship: a.ID, Other: e.ID, Side: SidePlayer, Value: 3})
	sl.OnEvent(Event{Tick: 5, Kind: EventCaptured, Ship: e.ID, Side: SidePlayer})
	sl.OnEvent(Event{Tick: 7, Kind: EventLoot, Ship: e.ID, Side: SideAI, Detail: "wood=1"})
	sl.OnEvent(Event{Tick: 9, Kind: EventWind, Value: 90})

	if sl.CountCategory("combat", "shot") != 1 || sl.CountCategory("boarding", "captured") != 1 ||
		sl.CountCategory("economy", "loot") != 1 || sl.CountCategory("world", "wind") != 1 {
		t.Fatalf("unexpected categories:\n%s", sl.Format())
	}
	if !sl.HasEntry("combat", "shot", "hit "+e.Label+" for 3") {
		t.Fatalf("shot should name the target:\n%s", sl.Format())
	}
	if last, ok := sl.LastOf("world", "wind"); !ok || last.Ship != "--" {
		t.Fatal("global events carry no ship")
	}
	if got := sl.FilterTickRange(4, 8); len(got) != 2 {
		t.Fatalf("range entries = %d, want 2", len(got))
	}
	if len(sl.FilterShip(e.Label)) != 2 {
		t.Fatal("expected two entries for the trader")
	}
}

func TestSimLog_Summary(t *testing.T) {
	ts := NewTestSim(
		WithStraightPaths(),
		WithShip(ArchetypeBattle, SidePlayer, 100, 100),
		WithShip(ArchetypeTrading, SideAI, 140, 100),
		WithBoardOrder(1, 0),
	)
	ts.RunTicks(2)
	s := ts.SimLog.Summary(ts.Ctx)
	if !strings.Contains(s, "player: alive=1") || !strings.Contains(s, "Boarding: battle-1") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestSimLog_VerboseRecordsEveryTick(t *testing.T) {
	ts := NewTestSim(WithVerbose(true), WithShip(ArchetypeFisher, SideAI, 100, 100))
	ts.RunTicks(3)
	if n := ts.SimLog.CountCategory("move", "position"); n != 3 {
		t.Fatalf("position entries = %d, want 3", n)
	}
	quiet := NewTestSim(WithShip(ArchetypeFisher, SideAI, 100, 100))
	quiet.RunTicks(3)
	if quiet.SimLog.CountCategory("move", "position") != 0 {
		t.Fatal("quiet log should skip per-tick entries")
	}
}

// --- BattleFeed ---

func TestBattleFeed_KeepsNotableEvents(t *testing.T) {
	bf := NewBattleFeed(nil)
	bf.OnEvent(Event{Kind: EventShot, Ship: 1})
	bf.OnEvent(Event{Kind: EventStateChange, Ship: 1})
	bf.OnEvent(Event{Tick: 10, Kind: EventSunk, Ship: 2, Side: SideAI})
	got := bf.Recent()
	if len(got) != 1 || got[0].Message != "#2 sunk" || got[0].Tick != 10 {
		t.Fatalf("feed = %+v", got)
	}
}

func TestBattleFeed_RingBufferWraps(t *testing.T) {
	bf := NewBattleFeed(func(id ShipID) string { return "ship" })
	for i := 0; i < feedMaxEntries+5; i++ {
		bf.Add(i, SidePlayer, EventLoot, "loot")
	}
	got := bf.Recent()
	if len(got) != feedMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), feedMaxEntries)
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != feedMaxEntries+4 {
		t.Fatalf("oldest=%d newest=%d", got[0].Tick, got[len(got)-1].Tick)
	}
	if !strings.Contains(bf.Text(), "loot") {
		t.Fatal("text should list entries")
	}
}
