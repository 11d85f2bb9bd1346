package game

import "fmt"

// rollRange draws from [lo, hi); an empty range yields lo.
func rollRange(ctx *SimulationContext, r [2]int) int {
	if r[1] <= r[0] {
		return r[0]
	}
	return r[0] + ctx.Rng.Intn(r[1]-r[0])
}

// dropLoot credits the wreck's loot table to the shared pool.
func dropLoot(ctx *SimulationContext, s *Ship) {
	lt := s.behavior.Loot
	wood := rollRange(ctx, lt.Wood)
	gold := rollRange(ctx, lt.Gold)
	rum := rollRange(ctx, lt.Rum)
	ctx.Resources.Add(Wood, float64(wood))
	ctx.Resources.Add(Gold, float64(gold))
	ctx.Resources.Add(Rum, float64(rum))

	parts := 0
	switch {
	case lt.MapPartOdds == 1:
		parts = 1
	case lt.MapPartOdds > 1 && ctx.Rng.Intn(lt.MapPartOdds) == 1:
		parts = 1
	}
	ctx.Resources.Add(MapParts, float64(parts))

	ctx.emit(Event{Kind: EventLoot, Ship: s.ID, Side: s.Side, Archetype: s.Archetype, Pos: s.Pos,
		Value: float64(gold), Detail: lootDetail(wood, gold, rum, parts)})
	ctx.Log.Debug().Str("ship", s.Label).Int("wood", wood).Int("gold", gold).Int("rum", rum).Int("mapParts", parts).Msg("loot")
}

func lootDetail(wood, gold, rum, parts int) string {
	d := fmt.Sprintf("wood=%d gold=%d rum=%d", wood, gold, rum)
	if parts > 0 {
		d += " mapPart"
	}
	return d
}
