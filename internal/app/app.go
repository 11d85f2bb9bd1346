// Package app wires configuration, logging and the optional exporters
// around a campaign. Every front-end starts through Bootstrap.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Garsondee/Broadside/internal/audio"
	"github.com/Garsondee/Broadside/internal/config"
	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/geo"
	"github.com/Garsondee/Broadside/internal/logging"
	"github.com/Garsondee/Broadside/internal/storage"
	"github.com/Garsondee/Broadside/internal/telemetry"
	"github.com/spf13/viper"
)

// Options controls Bootstrap.
type Options struct {
	ConfigDir string
	Console   io.Writer // nil means stdout
	Audio     bool      // open the speaker when audio.enabled is set
	Name      string    // scenario name stored with the battle
}

// Runtime holds everything a front-end needs beyond the campaign itself.
type Runtime struct {
	Log      logging.Loggers
	Sim      config.SimConfig
	Store    *storage.Store
	Recorder *telemetry.Recorder
	Cues     *audio.Cues

	name    string
	logFile *os.File
}

// Bootstrap loads the config from opts.ConfigDir, falling back to defaults
// when the file is missing, then sets up logging and every enabled exporter.
// Exporters that fail to start are logged and skipped.
func Bootstrap(opts Options) (*Runtime, error) {
	cfgErr := config.Load(opts.ConfigDir)

	rt := &Runtime{name: opts.Name}
	var err error
	rt.logFile, err = logging.OpenFile(viper.GetString("logsDir"))
	if err != nil {
		return nil, err
	}
	graylog := ""
	if viper.GetBool("graylog.enabled") {
		graylog = viper.GetString("graylog.address")
	}
	rt.Log, err = logging.Setup(logging.Options{
		Level:          viper.GetString("logLevel"),
		Console:        opts.Console,
		File:           rt.logFile,
		GraylogAddress: graylog,
	})
	if err != nil {
		rt.logFile.Close()
		return nil, err
	}
	log := rt.Log.Logger
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Failed to load config, using defaults!")
	}

	rt.Sim, err = config.Sim()
	if err != nil {
		rt.logFile.Close()
		return nil, err
	}

	if viper.GetBool("storage.enabled") {
		st := storage.NewStore(log.With().Str("component", "storage").Logger(), geo.NewChart(rt.Sim.WorldSize, rt.Sim.WorldSize))
		if err := st.Connect(); err != nil {
			log.Error().Err(err).Msg("storage unavailable")
		} else if err := st.Setup(); err != nil {
			log.Error().Err(err).Msg("storage setup failed")
		} else {
			rt.Store = st
		}
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("metrics unavailable")
	}
	var influx *telemetry.Influx
	in := telemetry.NewInflux(log.With().Str("component", "influx").Logger(), time.Now().UTC().Format("20060102_150405"))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	switch err := in.Connect(ctx); {
	case errors.Is(err, telemetry.ErrInfluxDisabled):
	case err != nil:
		log.Error().Err(err).Msg("influx unavailable")
	default:
		influx = in
	}
	cancel()
	rt.Recorder = telemetry.NewRecorder(metrics, influx, rt.Log.TraceSample)

	if opts.Audio && viper.GetBool("audio.enabled") {
		cues := audio.NewCues()
		if err := cues.Initialize(); err != nil {
			log.Warn().Err(err).Msg("audio unavailable, running silent")
		} else {
			rt.Cues = cues
		}
	}
	return rt, nil
}

// CampaignOptions builds campaign options from the loaded config with every
// exporter attached.
func (rt *Runtime) CampaignOptions() game.CampaignOptions {
	o := game.DefaultCampaignOptions()
	o.Seed = rt.Sim.Seed
	o.WorldSize = rt.Sim.WorldSize
	o.Islands = rt.Sim.Islands
	o.PlayerShips = rt.Sim.PlayerShips
	o.Wood = rt.Sim.Wood
	o.Gold = rt.Sim.Gold
	o.Rum = rt.Sim.Rum
	o.Weather = rt.Sim.Weather
	o.Respawn = rt.Sim.Respawn
	o.Log = rt.Log.Logger
	o.Sinks = rt.Sinks()
	o.OnTick = rt.Observe
	return o
}

// Sinks returns the event sinks of every running exporter.
func (rt *Runtime) Sinks() []game.EventSink {
	var out []game.EventSink
	if rt.Store != nil {
		out = append(out, rt.Store)
	}
	if rt.Recorder != nil {
		out = append(out, rt.Recorder)
	}
	if rt.Cues != nil {
		out = append(out, rt.Cues)
	}
	return out
}

// Observe samples telemetry after a tick.
func (rt *Runtime) Observe(ctx *game.SimulationContext) {
	if rt.Recorder != nil {
		rt.Recorder.Observe(ctx)
	}
}

// Start opens the battle record for c.
func (rt *Runtime) Start(c *game.Campaign) {
	if rt.Store == nil {
		return
	}
	if _, err := rt.Store.BeginBattle(c.Ctx, rt.name, c.Seed()); err != nil {
		rt.Log.Logger.Error().Err(err).Msg("battle record not started")
	}
}

// Finish records the outcome of c, when given, and releases every exporter.
func (rt *Runtime) Finish(c *game.Campaign) error {
	var errs []error
	if rt.Store != nil {
		if c != nil {
			if err := rt.Store.EndBattle(c.Outcome()); err != nil && !errors.Is(err, storage.ErrNoActiveBattle) {
				errs = append(errs, fmt.Errorf("record battle: %w", err))
			}
		}
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.Recorder != nil {
		if err := rt.Recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.Cues != nil {
		rt.Cues.Cleanup()
	}
	if rt.Log.Graylog != nil {
		if err := rt.Log.Graylog.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.logFile != nil {
		if err := rt.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
