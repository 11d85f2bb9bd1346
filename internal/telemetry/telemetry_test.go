package telemetry

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newTestContext() *game.SimulationContext {
	rng := rand.New(rand.NewSource(5)) // #nosec G404 -- test harness
	ctx := game.NewSimulationContext(game.OpenSea(800, 800), rng)
	ctx.Resources = game.NewResourcePool(12, 3, 1)
	return ctx
}

func TestMetrics_SampleCountsLiveShips(t *testing.T) {
	m, err := NewMetricsWith(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(100, 100), game.SidePlayer)
	ctx.Spawn(game.ArchetypeBattle, game.V(150, 100), game.SidePlayer)
	ctx.Spawn(game.ArchetypeTrading, game.V(400, 400), game.SideAI)
	dead := ctx.Spawn(game.ArchetypeFisher, game.V(500, 500), game.SideAI)
	dead.HP = 0

	m.Sample(ctx)
	assert.Equal(t, int64(2), m.Live(game.SidePlayer, game.ArchetypeBattle))
	assert.Equal(t, int64(1), m.Live(game.SideAI, game.ArchetypeTrading))
	assert.Zero(t, m.Live(game.SideAI, game.ArchetypeFisher))

	// Counting events must not panic on the no-op provider.
	m.OnEvent(game.Event{Kind: game.EventShot, Side: game.SidePlayer, Value: 3})
	m.OnEvent(game.Event{Kind: game.EventSunk, Side: game.SideAI})
}

func TestNewMetrics_GlobalProvider(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestInflux_ConnectDisabled(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", false)
	in := NewInflux(zerolog.Nop(), "test")
	assert.ErrorIs(t, in.Connect(context.Background()), ErrInfluxDisabled)
}

func TestInflux_PointsPerSide(t *testing.T) {
	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(100, 100), game.SidePlayer)
	ctx.Spawn(game.ArchetypeTrading, game.V(400, 400), game.SideAI)

	in := NewInflux(zerolog.Nop(), "r1")
	pts := in.Points(ctx)
	require.Len(t, pts, 2)
	assert.Equal(t, Measurement, pts[0].Name())

	var sides []string
	for _, p := range pts {
		for _, tag := range p.TagList() {
			if tag.Key == "side" {
				sides = append(sides, tag.Value)
			}
		}
	}
	assert.ElementsMatch(t, []string{"player", "ai"}, sides)
}

func TestInflux_BackupWritesLineProtocol(t *testing.T) {
	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(100, 100), game.SidePlayer)

	var buf bytes.Buffer
	in := NewInflux(zerolog.Nop(), "r2")
	in.UseBackup(nopCloser{&buf})
	require.NoError(t, in.Write(ctx))
	require.NoError(t, in.Close())

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "fleet_state,"))
	assert.Contains(t, string(raw), "side=player")
	assert.Contains(t, string(raw), "wood=12")
}

func TestInflux_WriteWithoutBackend(t *testing.T) {
	in := NewInflux(zerolog.Nop(), "r3")
	assert.Error(t, in.Write(newTestContext()))
}

func TestRecorder_SamplesOncePerSecond(t *testing.T) {
	m, err := NewMetricsWith(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	var buf bytes.Buffer
	in := NewInflux(zerolog.Nop(), "r4")
	in.UseBackup(nopCloser{&buf})
	r := NewRecorder(m, in, zerolog.Nop())

	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(100, 100), game.SidePlayer)
	for tick := 1; tick <= 2*game.TicksPerSecond; tick++ {
		ctx.Tick = tick
		r.Observe(ctx)
	}
	require.NoError(t, r.Close())

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 4)
	assert.Equal(t, int64(1), m.Live(game.SidePlayer, game.ArchetypeBattle))
}
