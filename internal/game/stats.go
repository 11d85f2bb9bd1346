package game

import (
	"fmt"
	"sort"
	"strings"
)

// --- Named statistics ---

// Stat names shown in the end-of-game summary.
const (
	StatShipsHijacked     = "Ships Hijacked"
	StatTradingDestroyed  = "Trading Ships Destroyed"
	StatFisherDestroyed   = "Fisher Ships Destroyed"
	StatWarShipsDestroyed = "War Ships Destroyed"
	StatShotsFired        = "Shots Fired"
	StatRumDrunk          = "Rum Drunk"
)

// StatCounters is a set of named running totals.
type StatCounters struct {
	totals map[string]int
}

// NewStatCounters returns an empty set.
func NewStatCounters() *StatCounters {
	return &StatCounters{totals: make(map[string]int)}
}

// Inc adds one to name.
func (c *StatCounters) Inc(name string) { c.Add(name, 1) }

// Add adds n to name.
func (c *StatCounters) Add(name string, n int) {
	if c == nil {
		return
	}
	c.totals[name] += n
}

// Get returns the total for name (zero if never touched).
func (c *StatCounters) Get(name string) int {
	if c == nil {
		return 0
	}
	return c.totals[name]
}

// Names returns every touched counter, sorted.
func (c *StatCounters) Names() []string {
	names := make([]string, 0, len(c.totals))
	for k := range c.totals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the totals.
func (c *StatCounters) Snapshot() map[string]int {
	out := make(map[string]int, len(c.totals))
	for k, v := range c.totals {
		out[k] = v
	}
	return out
}

func (c *StatCounters) String() string {
	var sb strings.Builder
	for _, n := range c.Names() {
		fmt.Fprintf(&sb, "%-24s %d\n", n, c.totals[n])
	}
	return sb.String()
}

// --- Sink statistics ---

// destroyedStat maps a sunk archetype to its counter, or "" for none.
func destroyedStat(a Archetype) string {
	switch a {
	case ArchetypeTrading:
		return StatTradingDestroyed
	case ArchetypeFisher:
		return StatFisherDestroyed
	case ArchetypeBattle, ArchetypeFlagShip:
		return StatWarShipsDestroyed
	default:
		return ""
	}
}
