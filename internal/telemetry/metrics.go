// Package telemetry exports simulation counters through OpenTelemetry and
// per-second fleet state to InfluxDB.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Garsondee/Broadside/internal/game"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Broadside/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics counts events by kind and reports live ships per side and
// archetype. It is an EventSink; Sample must be called from the
// simulation goroutine.
type Metrics struct {
	events  metric.Int64Counter
	shots   metric.Float64Counter
	ships   metric.Int64ObservableGauge
	stores  metric.Float64ObservableGauge
	mu      sync.RWMutex
	live    map[liveKey]int64
	balance map[game.Resource]float64
}

type liveKey struct {
	side game.Side
	arch game.Archetype
}

// NewMetrics creates the instruments on the global meter provider, which
// is a no-op unless one is configured.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWith(meter())
}

// NewMetricsWith creates the instruments on m.
func NewMetricsWith(m metric.Meter) (*Metrics, error) {
	mt := &Metrics{
		live:    make(map[liveKey]int64),
		balance: make(map[game.Resource]float64),
	}
	var err error

	mt.events, err = m.Int64Counter(
		"broadside.events",
		metric.WithDescription("Simulation events by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	mt.shots, err = m.Float64Counter(
		"broadside.damage",
		metric.WithDescription("Hull damage dealt by gunfire"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}

	mt.ships, err = m.Int64ObservableGauge(
		"broadside.ships.live",
		metric.WithDescription("Ships afloat by side and archetype"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ships gauge: %w", err)
	}

	mt.stores, err = m.Float64ObservableGauge(
		"broadside.stores",
		metric.WithDescription("Player stores by resource"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stores gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			mt.mu.RLock()
			defer mt.mu.RUnlock()
			for k, n := range mt.live {
				o.ObserveInt64(mt.ships, n, metric.WithAttributes(
					attribute.String("side", k.side.String()),
					attribute.String("archetype", k.arch.String())))
			}
			for r, v := range mt.balance {
				o.ObserveFloat64(mt.stores, v, metric.WithAttributes(attribute.String("resource", r.String())))
			}
			return nil
		},
		mt.ships, mt.stores,
	)
	if err != nil {
		return nil, fmt.Errorf("registering ships callback: %w", err)
	}
	return mt, nil
}

// OnEvent counts e.
func (mt *Metrics) OnEvent(e game.Event) {
	attrs := metric.WithAttributes(
		attribute.String("kind", e.Kind.String()),
		attribute.String("side", e.Side.String()))
	mt.events.Add(context.Background(), 1, attrs)
	if (e.Kind == game.EventShot || e.Kind == game.EventSplash) && e.Value > 0 {
		mt.shots.Add(context.Background(), e.Value, metric.WithAttributes(attribute.String("side", e.Side.String())))
	}
}

// Sample copies the live ship counts and stores out of ctx for the next
// collection.
func (mt *Metrics) Sample(ctx *game.SimulationContext) {
	live := make(map[liveKey]int64)
	for _, s := range ctx.Ships {
		if s.Alive() {
			live[liveKey{s.Side, s.Archetype}]++
		}
	}
	balance := map[game.Resource]float64{}
	for _, r := range game.Resources {
		balance[r] = ctx.Resources.Get(r)
	}

	mt.mu.Lock()
	mt.live = live
	mt.balance = balance
	mt.mu.Unlock()
}

// Live returns the sampled count for side and arch.
func (mt *Metrics) Live(side game.Side, arch game.Archetype) int64 {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.live[liveKey{side, arch}]
}
