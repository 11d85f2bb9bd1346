package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 11
)

// FeedEntry is a single line in the battle feed.
type FeedEntry struct {
	Tick    int
	Side    Side
	Kind    EventKind
	Message string
}

// BattleFeed is a ring buffer of notable events rendered on-screen.
type BattleFeed struct {
	entries []FeedEntry
	head    int
	count   int
	labels  func(ShipID) string
}

// NewBattleFeed creates a feed with a fixed capacity. labels resolves ship
// ids for display and may be nil.
func NewBattleFeed(labels func(ShipID) string) *BattleFeed {
	return &BattleFeed{
		entries: make([]FeedEntry, feedMaxEntries),
		labels:  labels,
	}
}

// Add appends an entry to the feed.
func (bf *BattleFeed) Add(tick int, side Side, kind EventKind, msg string) {
	bf.entries[bf.head] = FeedEntry{Tick: tick, Side: side, Kind: kind, Message: msg}
	bf.head = (bf.head + 1) % feedMaxEntries
	if bf.count < feedMaxEntries {
		bf.count++
	}
}

// OnEvent keeps the events a player cares about; shots and state churn are
// left to the SimLog.
func (bf *BattleFeed) OnEvent(e Event) {
	var msg string
	switch e.Kind {
	case EventSunk:
		msg = fmt.Sprintf("%s sunk", bf.name(e.Ship))
	case EventDocked:
		msg = fmt.Sprintf("%s boards %s", bf.name(e.Ship), bf.name(e.Other))
	case EventBoardingEnd:
		msg = fmt.Sprintf("%s boarding %s", bf.name(e.Ship), e.Detail)
	case EventCaptured:
		msg = fmt.Sprintf("%s taken (%s)", bf.name(e.Ship), e.Detail)
	case EventDragged:
		msg = fmt.Sprintf("%s dragged under", bf.name(e.Other))
	case EventLoot:
		msg = "loot: " + e.Detail
	case EventFled:
		msg = fmt.Sprintf("%s flees", bf.name(e.Ship))
	case EventLightning:
		msg = fmt.Sprintf("lightning strikes %s", bf.name(e.Ship))
	case EventTeleport:
		msg = fmt.Sprintf("%s swallowed by a vortex", bf.name(e.Ship))
	case EventFleetBattle, EventFleetRetired, EventGhost:
		msg = e.Detail
	default:
		return
	}
	bf.Add(e.Tick, e.Side, e.Kind, msg)
}

func (bf *BattleFeed) name(id ShipID) string {
	if bf.labels != nil {
		return bf.labels(id)
	}
	return fmt.Sprintf("#%d", id)
}

// Recent returns entries in chronological order (oldest first).
func (bf *BattleFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, bf.count)
	for i := 0; i < bf.count; i++ {
		idx := (bf.head - bf.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = bf.entries[idx]
	}
	return result
}

// Text returns the feed as plain lines, oldest first.
func (bf *BattleFeed) Text() string {
	var sb strings.Builder
	for _, e := range bf.Recent() {
		fmt.Fprintf(&sb, "%5d %-6s %s\n", e.Tick, e.Side, e.Message)
	}
	return sb.String()
}

// Draw renders the feed panel on the right side of the screen.
func (bf *BattleFeed) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), float32(panelH), color.RGBA{R: 8, G: 12, B: 20, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 90, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), 16, color.RGBA{R: 18, G: 26, B: 44, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "SHIP'S LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+feedPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 70, B: 110, A: 200}, false)

	entries := bf.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	recent := 3

	y := 20
	for i, e := range entries {
		if i >= len(entries)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(feedPanelWidth-4), float32(feedLineHeight), color.RGBA{R: 26, G: 36, B: 56, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, sideColor(e.Side), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), panelX+12, y)
		y += feedLineHeight
	}
}

func sideColor(s Side) color.RGBA {
	if s == SidePlayer {
		return color.RGBA{R: 220, G: 180, B: 60, A: 255}
	}
	return color.RGBA{R: 200, G: 70, B: 70, A: 255}
}
