package game

import "fmt"

// EventKind classifies a simulation event.
type EventKind int

const (
	EventSpawn EventKind = iota
	EventStateChange
	EventShot
	EventSplash
	EventDocked
	EventBoardingEnd
	EventCaptured
	EventDragged // taken under by a sea monster
	EventSunk
	EventLoot
	EventFled
	EventRepair
	EventRum
	EventLightning
	EventTeleport
	EventFleetBattle
	EventFleetRetired
	EventGhost
	EventWind
)

var eventKindNames = map[EventKind]string{
	EventSpawn:        "spawn",
	EventStateChange:  "state",
	EventShot:         "shot",
	EventSplash:       "splash",
	EventDocked:       "docked",
	EventBoardingEnd:  "boarding",
	EventCaptured:     "captured",
	EventDragged:      "dragged",
	EventSunk:         "sunk",
	EventLoot:         "loot",
	EventFled:         "fled",
	EventRepair:       "repair",
	EventRum:          "rum",
	EventLightning:    "lightning",
	EventTeleport:     "teleport",
	EventFleetBattle:  "fleet",
	EventFleetRetired: "fleet-retired",
	EventGhost:        "ghost",
	EventWind:         "wind",
}

func (k EventKind) String() string {
	if n, ok := eventKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a fire-and-forget notification. Ship is the actor, Other the
// ship acted upon (zero when none).
type Event struct {
	Tick      int
	Kind      EventKind
	Ship      ShipID
	Other     ShipID
	Side      Side
	Archetype Archetype
	Pos       Vec2
	To        Vec2
	Value     float64
	Detail    string
}

func (e Event) String() string {
	s := fmt.Sprintf("[%05d] %-10s ship=%d", e.Tick, e.Kind, e.Ship)
	if e.Other != 0 {
		s += fmt.Sprintf(" other=%d", e.Other)
	}
	if e.Value != 0 {
		s += fmt.Sprintf(" value=%.2f", e.Value)
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

// EventSink receives events. Sinks must not mutate simulation state.
type EventSink interface {
	OnEvent(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// OnEvent calls f.
func (f EventSinkFunc) OnEvent(e Event) { f(e) }

// MultiSink fans events out to every sink in order.
type MultiSink []EventSink

// OnEvent forwards e.
func (m MultiSink) OnEvent(e Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(e)
		}
	}
}
