package game

type EngagementOutcome int

const (
	OutcomeInconclusive EngagementOutcome = iota
	OutcomePlayerVictory
	OutcomeAIVictory
	OutcomeDraw
)

func (o EngagementOutcome) String() string {
	switch o {
	case OutcomePlayerVictory:
		return "player_victory"
	case OutcomeAIVictory:
		return "ai_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// SideTally is one side's count at the end of an engagement.
type SideTally struct {
	Total     int // ships the side started with
	Survivors int // still afloat under the same flag
	Captured  int // now flying the other flag
	HullLeft  float64
}

type EngagementOutcomeReason struct {
	Outcome     EngagementOutcome
	Player      SideTally
	AI          SideTally
	Description string
}

// DetermineEngagementOutcome judges an engagement from the ships each side
// started with. A ship counts as lost when it sank or was taken.
func DetermineEngagementOutcome(player, ai []*Ship) EngagementOutcomeReason {
	r := EngagementOutcomeReason{
		Player: tallySide(player, SidePlayer),
		AI:     tallySide(ai, SideAI),
	}
	done := func(o EngagementOutcome, desc string) EngagementOutcomeReason {
		r.Outcome = o
		r.Description = desc
		return r
	}

	switch {
	case r.Player.Survivors == 0 && r.AI.Survivors == 0:
		return done(OutcomeDraw, "mutual_annihilation")
	case r.AI.Survivors == 0 && r.AI.Captured > 0:
		return done(OutcomePlayerVictory, "decisive_player_victory_prizes_taken")
	case r.AI.Survivors == 0:
		return done(OutcomePlayerVictory, "decisive_player_victory_ai_sunk")
	case r.Player.Survivors == 0:
		return done(OutcomeAIVictory, "decisive_ai_victory_player_sunk")
	}

	playerLoss := lossRate(r.Player)
	aiLoss := lossRate(r.AI)
	diff := aiLoss - playerLoss
	switch {
	case diff > 0.30 && playerLoss < 0.50:
		return done(OutcomePlayerVictory, "marginal_player_victory_loss_advantage")
	case diff < -0.30 && aiLoss < 0.50:
		return done(OutcomeAIVictory, "marginal_ai_victory_loss_advantage")
	case diff >= -0.20 && diff <= 0.20 && (playerLoss > 0.30 || aiLoss > 0.30):
		return done(OutcomeDraw, "draw_similar_losses")
	}
	return done(OutcomeInconclusive, "inconclusive_insufficient_resolution")
}

func tallySide(ships []*Ship, side Side) SideTally {
	t := SideTally{Total: len(ships)}
	for _, s := range ships {
		if !s.Alive() {
			continue
		}
		if s.Side != side {
			t.Captured++
			continue
		}
		t.Survivors++
		if s.MaxHP > 0 {
			t.HullLeft += float64(s.HP) / float64(s.MaxHP)
		}
	}
	if t.Survivors > 0 {
		t.HullLeft /= float64(t.Survivors)
	}
	return t
}

func lossRate(t SideTally) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Total-t.Survivors) / float64(t.Total)
}
