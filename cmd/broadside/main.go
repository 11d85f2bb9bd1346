package main

import (
	"flag"
	"log"

	"github.com/Garsondee/Broadside/internal/app"
	"github.com/Garsondee/Broadside/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configDir := flag.String("config", ".", "directory holding broadside.cfg.json")
	seed := flag.Int64("seed", 0, "override the campaign seed (0 keeps the config value)")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{ConfigDir: *configDir, Audio: true, Name: "campaign"})
	if err != nil {
		log.Fatal(err)
	}
	opts := rt.CampaignOptions()
	if *seed != 0 {
		opts.Seed = *seed
	}

	g := game.New(opts)
	if rt.Cues != nil {
		g.Bind(ebiten.KeyM, func() string {
			if rt.Cues.ToggleMute() {
				return "sound off"
			}
			return "sound on"
		})
	}
	rt.Start(g.Campaign())

	w, h := g.Size()
	ebiten.SetWindowTitle("Broadside")
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(game.TicksPerSecond)
	runErr := ebiten.RunGame(g)
	if err := rt.Finish(g.Campaign()); err != nil {
		rt.Log.Logger.Error().Err(err).Msg("shutdown")
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
