package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Garsondee/Broadside/internal/game"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Measurement is the name of every point Influx writes.
const Measurement = "fleet_state"

// ErrInfluxDisabled is returned by Connect when influx.enabled is false.
var ErrInfluxDisabled = errors.New("influx disabled")

// Influx writes one fleet_state point per side per sample, or gzipped
// line protocol to a backup file when the server is unreachable.
type Influx struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Bucket       string
	BackupPath   string
	Logger       zerolog.Logger

	// Epoch is the wall time of simulation second zero.
	Epoch  time.Time
	run    string
	backup io.Closer
}

// NewInflux creates a writer tagging every point with run.
func NewInflux(log zerolog.Logger, run string) *Influx {
	return &Influx{
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
		Logger:     log,
		Epoch:      time.Now().UTC(),
		run:        run,
	}
}

// Connect pings the configured server. When it does not answer, points go
// to the gzip backup file instead.
func (i *Influx) Connect(ctx context.Context) error {
	if !viper.GetBool("influx.enabled") {
		return ErrInfluxDisabled
	}

	i.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := i.Client.Ping(ctx)
	if err != nil || !running {
		i.IsValid = false
		i.Logger.Info().Str("backupPath", i.BackupPath).
			Msg("Failed to reach InfluxDB, writing to backup file")
		file, err := os.OpenFile(i.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("error creating backup file: %w", err)
		}
		i.UseBackup(file)
		return nil
	}

	if err := i.ensureBucket(ctx); err != nil {
		return err
	}
	i.Writer = i.Client.WriteAPI(viper.GetString("influx.org"), i.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			i.Logger.Error().Err(writeErr).Str("bucket", i.Bucket).Msg("Error sending data to InfluxDB")
		}
	}(i.Writer.Errors())
	i.IsValid = true
	i.Logger.Info().Str("bucket", i.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (i *Influx) ensureBucket(ctx context.Context) error {
	orgName := viper.GetString("influx.org")
	org, err := i.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		i.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		org, err = i.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			return fmt.Errorf("create organization %q: %w", orgName, err)
		}
	}
	if _, err := i.Client.BucketsAPI().FindBucketByName(ctx, i.Bucket); err == nil {
		return nil
	}
	i.Logger.Info().Str("bucket", i.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = i.Client.BucketsAPI().CreateBucketWithName(ctx, org, i.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: 60 * 60 * 24 * 30,
	})
	if err != nil {
		return fmt.Errorf("create bucket %q: %w", i.Bucket, err)
	}
	return nil
}

// UseBackup sends every point to w as gzipped line protocol.
func (i *Influx) UseBackup(w io.WriteCloser) {
	i.IsValid = false
	i.BackupWriter = gzip.NewWriter(w)
	i.backup = w
}

// Points builds the fleet_state points for ctx, one per side.
func (i *Influx) Points(ctx *game.SimulationContext) []*influxdb2_write.Point {
	ts := i.Epoch.Add(time.Duration(ctx.Clock * float64(time.Second)))
	var out []*influxdb2_write.Point
	for _, side := range []game.Side{game.SidePlayer, game.SideAI} {
		alive, damaged, docked := 0, 0, 0
		hull, crew := 0.0, 0.0
		for _, s := range ctx.ShipsOf(side) {
			alive++
			if s.HP < s.MaxHP {
				damaged++
			}
			if s.Docking || s.IsEntered {
				docked++
			}
			if s.MaxHP > 0 {
				hull += float64(s.HP) / float64(s.MaxHP)
			}
			crew += s.Crew
		}
		if alive > 0 {
			hull /= float64(alive)
		}
		fleets := 0
		for _, f := range ctx.Fleets {
			if f.Side == side && !f.Retired() {
				fleets++
			}
		}
		fields := map[string]interface{}{
			"alive":   alive,
			"damaged": damaged,
			"docked":  docked,
			"hull":    hull,
			"crew":    crew,
			"fleets":  fleets,
			"tick":    ctx.Tick,
		}
		if side == game.SidePlayer {
			for _, r := range game.Resources {
				fields[r.String()] = ctx.Resources.Get(r)
			}
		}
		out = append(out, influxdb2_write.NewPoint(Measurement,
			map[string]string{"side": side.String(), "run": i.run}, fields, ts))
	}
	return out
}

// Write sends the points of ctx.
func (i *Influx) Write(ctx *game.SimulationContext) error {
	for _, p := range i.Points(ctx) {
		if err := i.WritePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// WritePoint writes p to the server or the backup file.
func (i *Influx) WritePoint(p *influxdb2_write.Point) error {
	if i.IsValid {
		i.Writer.WritePoint(p)
		return nil
	}
	if i.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := i.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending points and releases the client or backup file.
func (i *Influx) Close() error {
	if i.Writer != nil {
		i.Writer.Flush()
	}
	if i.Client != nil {
		i.Client.Close()
	}
	if i.BackupWriter != nil {
		if err := i.BackupWriter.Close(); err != nil {
			return err
		}
		if i.backup != nil {
			return i.backup.Close()
		}
	}
	return nil
}
