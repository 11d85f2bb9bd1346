// Command broadside-tty plays a campaign on the terminal chart.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Garsondee/Broadside/internal/app"
	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/minimap"
	"github.com/gdamore/tcell/v2"
)

const maxSpeed = 8

type view struct {
	screen tcell.Screen
	c      *game.Campaign
	rt     *app.Runtime
	paused bool
	speed  int
	status string
}

var kindStyles = map[minimap.Kind]tcell.Style{
	minimap.KindWater:    tcell.StyleDefault.Foreground(tcell.ColorNavy),
	minimap.KindIsland:   tcell.StyleDefault.Foreground(tcell.ColorOlive),
	minimap.KindStorm:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	minimap.KindVortex:   tcell.StyleDefault.Foreground(tcell.ColorPurple),
	minimap.KindLandmark: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
}

func cellStyle(c minimap.Cell) tcell.Style {
	if c.Kind == minimap.KindShip {
		if c.Side == game.SidePlayer {
			return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
		}
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	return kindStyles[c.Kind]
}

func (v *view) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w < 10 || h < 4 {
		v.screen.Show()
		return
	}
	f := minimap.Render(v.c.Ctx, v.c.Env, w, h-2)
	putString(v.screen, 0, 0, f.Title, tcell.StyleDefault.Bold(true))
	for y, row := range f.Cells {
		for x, cell := range row {
			v.screen.SetContent(x, y+1, cell.Rune, nil, cellStyle(cell))
		}
	}
	putString(v.screen, 0, h-1, v.statusLine(), tcell.StyleDefault.Reverse(true))
	v.screen.Show()
}

func (v *view) statusLine() string {
	state := fmt.Sprintf("x%d", v.speed)
	if v.paused {
		state = "paused"
	}
	msg := v.status
	if msg == "" {
		if recent := v.c.Feed.Recent(); len(recent) > 0 {
			msg = recent[len(recent)-1].Message
		}
	}
	return fmt.Sprintf(" %s | p pause  +/- speed  m mute  q quit | %s", state, msg)
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// handleKey applies a key press and reports whether the loop should go on.
func (v *view) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}
	v.status = ""
	switch ev.Rune() {
	case 'q':
		return false
	case 'p', ' ':
		v.paused = !v.paused
	case '+', '=':
		v.speed = min(maxSpeed, v.speed*2)
	case '-':
		v.speed = max(1, v.speed/2)
	case 'm':
		if v.rt == nil || v.rt.Cues == nil {
			v.status = "no sound"
		} else if v.rt.Cues.ToggleMute() {
			v.status = "sound off"
		} else {
			v.status = "sound on"
		}
	}
	return true
}

// advance runs one frame of the simulation.
func (v *view) advance() {
	if v.paused {
		return
	}
	for i := 0; i < v.speed; i++ {
		v.c.Step()
	}
	if v.c.Over() {
		v.paused = true
		v.status = "the squadron is lost"
	}
}

func (v *view) run() {
	ticker := time.NewTicker(time.Second / game.TicksPerSecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
		case <-ticker.C:
			v.advance()
			v.draw()
		}
	}
}

func main() {
	configDir := flag.String("config", ".", "directory holding broadside.cfg.json")
	seed := flag.Int64("seed", 0, "override the campaign seed (0 keeps the config value)")
	flag.Parse()

	// The screen owns stdout, so logs only go to the file.
	rt, err := app.Bootstrap(app.Options{ConfigDir: *configDir, Console: io.Discard, Audio: true, Name: "tty"})
	if err != nil {
		log.Fatal(err)
	}
	opts := rt.CampaignOptions()
	if *seed != 0 {
		opts.Seed = *seed
	}
	c := game.NewCampaign(opts)
	rt.Start(c)

	screen, err := tcell.NewScreen()
	if err == nil {
		err = screen.Init()
	}
	if err != nil {
		_ = rt.Finish(c)
		log.Fatal(err)
	}

	v := &view{screen: screen, c: c, rt: rt, speed: 1}
	v.run()
	screen.Fini()

	if err := rt.Finish(c); err != nil {
		rt.Log.Logger.Error().Err(err).Msg("shutdown")
	}
	fmt.Print(c.Report())
}
