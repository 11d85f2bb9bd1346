package game

import (
	"math/rand"
	"testing"
)

// newOpenContext returns a context over an island-free sea with
// straight-line paths.
func newOpenContext(t *testing.T, w, h int) *SimulationContext {
	t.Helper()
	ctx := NewSimulationContext(OpenSea(w, h), rand.New(rand.NewSource(1))) // #nosec G404 -- test
	ctx.Paths = straightLine{}
	return ctx
}

// eventLog records every event it receives.
type eventLog struct {
	events []Event
}

func (l *eventLog) OnEvent(e Event) { l.events = append(l.events, e) }

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) first(kind EventKind) (Event, bool) {
	for _, e := range l.events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

func runScheduler(sc *Scheduler, ticks int) {
	for i := 0; i < ticks; i++ {
		sc.Update(TickDT)
	}
}
