package game

import (
	"strings"
	"testing"
)

// --- StatCounters ---

func TestStatCounters_IncAndAdd(t *testing.T) {
	c := NewStatCounters()
	c.Inc(StatShotsFired)
	c.Add(StatShotsFired, 4)
	if got := c.Get(StatShotsFired); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if c.Get(StatRumDrunk) != 0 {
		t.Fatal("untouched counter should read zero")
	}
}

func TestStatCounters_NilIsSafe(t *testing.T) {
	var c *StatCounters
	c.Inc(StatShotsFired)
	if c.Get(StatShotsFired) != 0 {
		t.Fatal("nil counters should read zero")
	}
}

func TestStatCounters_NamesSorted(t *testing.T) {
	c := NewStatCounters()
	c.Inc(StatWarShipsDestroyed)
	c.Inc(StatFisherDestroyed)
	c.Inc(StatRumDrunk)
	names := c.Names()
	if len(names) != 3 || names[0] != StatFisherDestroyed || names[2] != StatWarShipsDestroyed {
		t.Fatalf("names = %v", names)
	}
}

func TestStatCounters_SnapshotIsACopy(t *testing.T) {
	c := NewStatCounters()
	c.Inc(StatShipsHijacked)
	snap := c.Snapshot()
	c.Inc(StatShipsHijacked)
	if snap[StatShipsHijacked] != 1 {
		t.Fatal("snapshot should not follow later changes")
	}
}

func TestStatCounters_String(t *testing.T) {
	c := NewStatCounters()
	c.Add(StatShotsFired, 12)
	if s := c.String(); !strings.Contains(s, "Shots Fired") || !strings.Contains(s, "12") {
		t.Fatalf("unexpected summary %q", s)
	}
}

// --- Sinkings ---

func TestDestroyedStat(t *testing.T) {
	cases := map[Archetype]string{
		ArchetypeTrading:  StatTradingDestroyed,
		ArchetypeFisher:   StatFisherDestroyed,
		ArchetypeBattle:   StatWarShipsDestroyed,
		ArchetypeFlagShip: StatWarShipsDestroyed,
		ArchetypeGhost:    "",
		ArchetypeDragon:   "",
	}
	for a, want := range cases {
		if got := destroyedStat(a); got != want {
			t.Fatalf("destroyedStat(%s) = %q, want %q", a, got, want)
		}
	}
}
