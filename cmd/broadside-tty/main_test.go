package main

import (
	"testing"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/minimap"
	"github.com/gdamore/tcell/v2"
)

func newView(t *testing.T) (*view, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(60, 20)

	o := game.DefaultCampaignOptions()
	o.WorldSize = 1200
	o.Islands = 2
	o.Weather = false
	return &view{screen: s, c: game.NewCampaign(o), speed: 1}, s
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleKey_SpeedAndPause(t *testing.T) {
	v, _ := newView(t)
	for i := 0; i < 5; i++ {
		v.handleKey(key('+'))
	}
	if v.speed != maxSpeed {
		t.Errorf("speed = %d, want clamp at %d", v.speed, maxSpeed)
	}
	for i := 0; i < 5; i++ {
		v.handleKey(key('-'))
	}
	if v.speed != 1 {
		t.Errorf("speed = %d, want floor at 1", v.speed)
	}
	v.handleKey(key('p'))
	if !v.paused {
		t.Error("p should pause")
	}
	v.handleKey(key('m'))
	if v.status != "no sound" {
		t.Errorf("mute without audio: status = %q", v.status)
	}
}

func TestHandleKey_Quit(t *testing.T) {
	v, _ := newView(t)
	if v.handleKey(key('q')) {
		t.Error("q should stop the loop")
	}
	if v.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should stop the loop")
	}
}

func TestAdvance_PausedHoldsTick(t *testing.T) {
	v, _ := newView(t)
	v.speed = 4
	v.advance()
	if v.c.Ctx.Tick != 4 {
		t.Fatalf("tick = %d, want 4", v.c.Ctx.Tick)
	}
	v.paused = true
	v.advance()
	if v.c.Ctx.Tick != 4 {
		t.Errorf("paused advance moved to tick %d", v.c.Ctx.Tick)
	}
}

func TestDraw_TitleAndPlayerShips(t *testing.T) {
	v, s := newView(t)
	v.draw()
	cells, w, _ := s.GetContents()
	if w != 60 {
		t.Fatalf("width = %d", w)
	}
	if r := cells[0].Runes; len(r) == 0 || r[0] != 'T' {
		t.Errorf("title should start the first row, got %q", r)
	}
	found := false
	for _, c := range cells[w:] {
		if len(c.Runes) > 0 && c.Runes[0] == 'B' {
			found = true
			break
		}
	}
	if !found {
		t.Error("player battle ships should be drawn")
	}
}

func TestCellStyle_SidesDiffer(t *testing.T) {
	p := cellStyle(minimap.Cell{Kind: minimap.KindShip, Side: game.SidePlayer})
	a := cellStyle(minimap.Cell{Kind: minimap.KindShip, Side: game.SideAI})
	if p == a {
		t.Error("player and ai ships should be styled differently")
	}
}
