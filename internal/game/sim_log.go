package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless simulation.
type SimLogEntry struct {
	Tick     int
	Ship     string  // label e.g. "battle-3", or "--" for global events
	Side     string  // "player", "ai", or "--"
	Category string  // combat, boarding, move, fleet, world, economy, state
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0042] battle-3     combat    shot             hit trading-7 for 3
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d] %-12s %-9s %-16s %s",
		e.Tick, e.Ship, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless simulation. Unlike
// BattleFeed (UI ring buffer), SimLog is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
	labels  func(ShipID) string
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// state entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Attach resolves ship ids to labels through ctx when formatting events.
func (sl *SimLog) Attach(ctx *SimulationContext) {
	sl.labels = func(id ShipID) string {
		if s := ctx.Ship(id); s != nil {
			return s.Label
		}
		return fmt.Sprintf("#%d", id)
	}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, ship, side, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Ship:     ship,
		Side:     side,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, ship, side, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, ship, side, category, key, value, numVal)
}

// OnEvent records e under the category its kind belongs to.
func (sl *SimLog) OnEvent(e Event) {
	ship := "--"
	if e.Ship != 0 {
		ship = sl.label(e.Ship)
	}
	side := e.Side.String()
	value := e.Detail
	switch e.Kind {
	case EventShot:
		value = fmt.Sprintf("hit %s for %.0f", sl.label(e.Other), e.Value)
	case EventSplash:
		value = fmt.Sprintf("splash %s for %.0f", sl.label(e.Other), e.Value)
	case EventDocked:
		value = "alongside " + sl.label(e.Other)
	case EventTeleport:
		value = fmt.Sprintf("(%.0f,%.0f) → (%.0f,%.0f)", e.Pos.X, e.Pos.Y, e.To.X, e.To.Y)
	case EventSunk:
		value = fmt.Sprintf("%s at (%.0f,%.0f)", e.Archetype, e.Pos.X, e.Pos.Y)
	}
	sl.Add(e.Tick, ship, side, eventCategory(e.Kind), e.Kind.String(), value, e.Value)
}

func (sl *SimLog) label(id ShipID) string {
	if sl.labels == nil {
		return fmt.Sprintf("#%d", id)
	}
	return sl.labels(id)
}

func eventCategory(k EventKind) string {
	switch k {
	case EventShot, EventSplash, EventSunk, EventFled:
		return "combat"
	case EventDocked, EventBoardingEnd, EventCaptured, EventDragged:
		return "boarding"
	case EventStateChange:
		return "state"
	case EventFleetBattle, EventFleetRetired:
		return "fleet"
	case EventLoot, EventRepair, EventRum:
		return "economy"
	case EventTeleport:
		return "move"
	default:
		return "world"
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

func (sl *SimLog) where(keep func(SimLogEntry) bool) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e SimLogEntry, category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

// Filter returns entries of category and key; an empty argument matches
// anything.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return matches(e, category, key) })
}

// FilterShip returns the entries logged against one ship label.
func (sl *SimLog) FilterShip(label string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Ship == label })
}

// FilterTickRange returns entries with from <= tick <= to.
func (sl *SimLog) FilterTickRange(from, to int) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Tick >= from && e.Tick <= to })
}

// CountCategory counts entries of category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the newest entry of category and key.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if matches(sl.entries[i], category, key) {
			return sl.entries[i], true
		}
	}
	return SimLogEntry{}, false
}

// HasEntry reports whether an entry of category and key mentions substr.
func (sl *SimLog) HasEntry(category, key, substr string) bool {
	for _, e := range sl.entries {
		if matches(e, category, key) && strings.Contains(e.Value, substr) {
			return true
		}
	}
	return false
}

func writeEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Format renders the whole log, one entry per line.
func (sl *SimLog) Format() string { return writeEntries(sl.entries) }

// FormatRange renders the entries between two ticks.
func (sl *SimLog) FormatRange(from, to int) string {
	return writeEntries(sl.FilterTickRange(from, to))
}

// Summary returns a short human-readable summary of the simulation state.
func (sl *SimLog) Summary(ctx *SimulationContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%04d ---\n", ctx.Tick)

	// State distribution per side.
	for _, side := range []Side{SidePlayer, SideAI} {
		counts := map[CombatState]int{}
		alive := 0
		for _, s := range ctx.ShipsOf(side) {
			counts[s.State]++
			alive++
		}
		fmt.Fprintf(&sb, "%s: alive=%d  ", side, alive)
		for _, st := range []CombatState{StateIdle, StateAttacking, StateDefending, StateEntering} {
			if n := counts[st]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", st, n)
			}
		}
		sb.WriteByte('\n')
	}

	for _, f := range ctx.Fleets {
		if f.Retired() {
			continue
		}
		fmt.Fprintf(&sb, "%s (%s): members=%d marked=%d battle=%t\n",
			f.Name, f.Side, len(f.Members), len(f.Marked), f.InBattle)
	}

	boardings := 0
	for _, s := range ctx.Ships {
		if s.Docking && s.Target != nil {
			fmt.Fprintf(&sb, "Boarding: %s → %s\n", s.Label, s.Target.Label)
			boardings++
		}
	}
	if boardings == 0 {
		sb.WriteString("Boarding: none\n")
	}
	fmt.Fprintf(&sb, "Stores: %s\n", ctx.Resources)
	return sb.String()
}
