package telemetry

import (
	"github.com/Garsondee/Broadside/internal/game"
	"github.com/rs/zerolog"
)

// Recorder samples the simulation once every Every ticks into the
// configured exporters. Either exporter may be nil.
type Recorder struct {
	Metrics *Metrics
	Influx  *Influx
	Every   int
	Log     zerolog.Logger

	failed bool
}

// NewRecorder samples once per simulated second.
func NewRecorder(m *Metrics, in *Influx, log zerolog.Logger) *Recorder {
	return &Recorder{Metrics: m, Influx: in, Every: game.TicksPerSecond, Log: log}
}

// OnEvent forwards to Metrics.
func (r *Recorder) OnEvent(e game.Event) {
	if r.Metrics != nil {
		r.Metrics.OnEvent(e)
	}
}

// Observe samples ctx when the tick falls on the sampling period. The
// first write failure is logged; later ones are dropped silently.
func (r *Recorder) Observe(ctx *game.SimulationContext) {
	if r.Every <= 0 || ctx.Tick%r.Every != 0 {
		return
	}
	if r.Metrics != nil {
		r.Metrics.Sample(ctx)
	}
	if r.Influx == nil {
		return
	}
	if err := r.Influx.Write(ctx); err != nil && !r.failed {
		r.failed = true
		r.Log.Warn().Err(err).Int("tick", ctx.Tick).Msg("fleet state write failed")
	}
}

// Close releases the Influx writer.
func (r *Recorder) Close() error {
	if r.Influx == nil {
		return nil
	}
	return r.Influx.Close()
}
