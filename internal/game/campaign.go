package game

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"
)

// CampaignOptions describes a full game: the sea, the player's opening
// squadron and stores, and which world systems run.
type CampaignOptions struct {
	Seed        int64
	WorldSize   int
	Islands     int
	PlayerShips int
	Wood        float64
	Gold        float64
	Rum         float64
	Weather     bool
	Respawn     bool
	Record      bool // keep an unbounded SimLog
	Log         zerolog.Logger
	Sinks       []EventSink
	// OnTick runs after every tick, on the simulation goroutine.
	OnTick func(*SimulationContext)
}

// DefaultCampaignOptions matches the stock game.
func DefaultCampaignOptions() CampaignOptions {
	return CampaignOptions{
		Seed:        1,
		WorldSize:   DefaultWorldSize,
		Islands:     40,
		PlayerShips: 3,
		Wood:        50,
		Rum:         5,
		Weather:     true,
		Respawn:     true,
		Log:         zerolog.Nop(),
	}
}

// Campaign is a running game shared by every front-end.
type Campaign struct {
	Ctx      *SimulationContext
	Sched    *Scheduler
	AI       *AIDirector
	Env      *Environment
	Feed     *BattleFeed
	SimLog   *SimLog
	Reporter *SimReporter
	Player   []*Ship // opening squadron

	opts CampaignOptions
}

// NewCampaign builds the sea, populates it and places the player squadron
// in the middle of the map.
func NewCampaign(o CampaignOptions) *Campaign {
	if o.WorldSize <= 0 {
		o.WorldSize = DefaultWorldSize
	}
	rng := rand.New(rand.NewSource(o.Seed)) // #nosec G404 -- deterministic game seed
	sea := NewSea(o.WorldSize, o.WorldSize, o.Islands, rng)
	ctx := NewSimulationContext(sea, rng)
	ctx.Log = o.Log
	ctx.Resources = NewResourcePool(o.Wood, o.Gold, o.Rum)

	c := &Campaign{
		Ctx:      ctx,
		AI:       NewAIDirector(),
		Reporter: NewSimReporter(reportWindowTicks, false),
		opts:     o,
	}
	c.AI.Respawn = o.Respawn
	c.Feed = NewBattleFeed(c.label)
	sinks := MultiSink{c.Feed}
	if o.Record {
		c.SimLog = NewSimLog(false)
		c.SimLog.Attach(ctx)
		sinks = append(sinks, c.SimLog)
	}
	ctx.Events = append(sinks, o.Sinks...)

	c.Env = NewEnvironment(rng)
	if !o.Weather {
		c.Env.Calm()
	}
	c.Sched = NewScheduler(ctx, c.AI, c.Env)

	anchor := V(float64(sea.W)/2, float64(sea.H)/2)
	if q, ok := ctx.Grid.NearestWalkable(anchor, 16); ok {
		anchor = q
	}
	offsets := append([]Vec2{{}}, fleetRowOffsets(max(0, o.PlayerShips-1))...)
	for _, off := range offsets[:max(0, o.PlayerShips)] {
		c.Player = append(c.Player, ctx.Spawn(ArchetypeBattle, anchor.Add(off), SidePlayer))
	}
	c.AI.Populate(ctx)
	ctx.Log.Info().Int64("seed", o.Seed).Int("size", o.WorldSize).Int("islands", len(sea.Islands)).
		Int("ships", len(ctx.Ships)).Msg("campaign ready")
	return c
}

func (c *Campaign) label(id ShipID) string {
	if s := c.Ctx.Ship(id); s != nil {
		return s.Label
	}
	return fmt.Sprintf("#%d", id)
}

// Seed is the seed the campaign was built from.
func (c *Campaign) Seed() int64 { return c.opts.Seed }

// Step advances one tick and samples the reporter once a second.
func (c *Campaign) Step() {
	c.Sched.Update(TickDT)
	if c.Ctx.Tick%TicksPerSecond == 0 {
		c.Reporter.Collect(c.Ctx)
	}
	if c.opts.OnTick != nil {
		c.opts.OnTick(c.Ctx)
	}
}

// Outcome judges the opening squadron against every AI ship afloat.
func (c *Campaign) Outcome() EngagementOutcomeReason {
	return DetermineEngagementOutcome(c.Player, c.Ctx.ShipsOf(SideAI))
}

// Over reports whether the player has lost every ship.
func (c *Campaign) Over() bool {
	return len(c.Ctx.ShipsOf(SidePlayer)) == 0
}

// Report is the plain-text battle report: stores, counters, the window
// summary and the recent feed.
func (c *Campaign) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Broadside report at T=%d (%.0fs)\n", c.Ctx.Tick, c.Ctx.Clock)
	fmt.Fprintf(&sb, "Stores: %s\n", c.Ctx.Resources)
	sb.WriteString(c.Ctx.Stats.String())
	sb.WriteByte('\n')
	sb.WriteString(c.Reporter.WindowSummary().Format())
	sb.WriteString("\n--- Ship's log ---\n")
	sb.WriteString(c.Feed.Text())
	return sb.String()
}
