package game

import (
	"math"
	"testing"
)

func tickRum(s *Ship, seconds int) {
	for i := 0; i < seconds; i++ {
		s.updateRum(1)
	}
}

func TestRum_BuffThenHangoverThenRecovery(t *testing.T) {
	s := newShip(1, ArchetypeBattle, V(0, 0), SidePlayer)
	s.drinkRum()
	if s.Attack.Value != 20 || !s.Drunk() {
		t.Fatalf("drunk attack = %.1f, want 20", s.Attack.Value)
	}

	tickRum(s, 5)
	if s.Drunk() || !s.HungOver() {
		t.Fatal("buff should give way to a hangover")
	}
	if s.Attack.Value != 10 || math.Abs(s.MaxSpeed.Value-0.13) > 1e-9 {
		t.Fatalf("hung over attack=%.1f speed=%.2f", s.Attack.Value, s.MaxSpeed.Value)
	}

	tickRum(s, 7)
	if s.HungOver() {
		t.Fatal("hangover should clear after seven seconds")
	}
	if s.Attack.Value != 15 || s.Enter.Value != 15 || math.Abs(s.MaxSpeed.Value-0.23) > 1e-9 {
		t.Fatalf("stats should be restored, attack=%.1f speed=%.2f", s.Attack.Value, s.MaxSpeed.Value)
	}
}

func TestRum_DrinksStackDuration(t *testing.T) {
	s := newShip(1, ArchetypeBattle, V(0, 0), SidePlayer)
	s.drinkRum()
	s.drinkRum()
	if s.Attack.Value != 20 {
		t.Fatal("a second drink should not boost twice")
	}
	tickRum(s, 9)
	if !s.Drunk() {
		t.Fatal("two drinks should last ten seconds")
	}
	tickRum(s, 1)
	tickRum(s, 12)
	if !s.HungOver() {
		t.Fatal("two drinks should give a fourteen second hangover")
	}
	tickRum(s, 1)
	if s.HungOver() || s.Attack.Value != 15 {
		t.Fatalf("should be sober, attack=%.1f", s.Attack.Value)
	}
}

func TestDrainPending(t *testing.T) {
	s := newShip(1, ArchetypeBattle, V(0, 0), SidePlayer)
	s.Attack.Pending = 3
	s.MaxSpeed.Pending = 0.015
	for i := 0; i < 4; i++ {
		s.drainPending(0.25)
	}
	if s.Attack.Value != 17 || s.Attack.Pending != 1 {
		t.Fatalf("after a second: value=%.0f pending=%.0f", s.Attack.Value, s.Attack.Pending)
	}
	for i := 0; i < 4; i++ {
		s.drainPending(0.25)
	}
	if s.Attack.Value != 18 || s.Attack.Pending != 0 {
		t.Fatalf("pending should be fully drained, value=%.0f", s.Attack.Value)
	}
	if math.Abs(s.MaxSpeed.Value-0.245) > 1e-9 || s.MaxSpeed.Pending > 1e-12 {
		t.Fatalf("speed = %.3f pending=%.3f", s.MaxSpeed.Value, s.MaxSpeed.Pending)
	}
}

// soberTicks runs the rum clock at tick rate until pred holds.
func soberTicks(s *Ship, pred func() bool) {
	for i := 0; i < 60*TicksPerSecond && !pred(); i++ {
		s.updateRum(TickDT)
	}
}

func TestRum_RepeatedHangoversNeverGoNegative(t *testing.T) {
	ctx := newOpenContext(t, 1000, 1000)
	tr := ctx.Spawn(ArchetypeTrading, V(100, 100), SideAI)
	victim := ctx.Spawn(ArchetypeBattle, V(150, 100), SidePlayer)
	base := *tr

	for i := 0; i < 3; i++ {
		tr.drinkRum()
		soberTicks(tr, func() bool { return !tr.Drunk() })
		if !tr.HungOver() {
			t.Fatalf("drink %d: buff should end in a hangover", i+1)
		}
	}
	// Each buff's hangover covers only the drinks of that buff.
	if tr.rum.hangover > hangoverPerDrink {
		t.Fatalf("hangover = %.2fs, want at most %.0fs", tr.rum.hangover, hangoverPerDrink)
	}
	for name, v := range map[string]float64{
		"attack": tr.Attack.Value, "enter": tr.Enter.Value, "repair": tr.Repair.Value,
		"speed": tr.MaxSpeed.Value, "effective speed": tr.EffectiveMaxSpeed(),
	} {
		if v < 0 {
			t.Fatalf("%s = %.2f after three hangovers", name, v)
		}
	}
	if tr.Damage() < 0 {
		t.Fatalf("damage = %d", tr.Damage())
	}

	victim.HP = 50
	fire(ctx, tr, victim)
	if victim.HP > 50 {
		t.Fatalf("a shot healed its target to %d", victim.HP)
	}

	soberTicks(tr, func() bool { return !tr.HungOver() })
	if math.Abs(tr.Attack.Value-base.Attack.Value) > 1e-9 || math.Abs(tr.Enter.Value-base.Enter.Value) > 1e-9 ||
		math.Abs(tr.Repair.Value-base.Repair.Value) > 1e-9 || math.Abs(tr.MaxSpeed.Value-base.MaxSpeed.Value) > 1e-9 {
		t.Fatalf("recovery should restore exactly what was taken: attack=%.2f enter=%.2f repair=%.2f speed=%.3f",
			tr.Attack.Value, tr.Enter.Value, tr.Repair.Value, tr.MaxSpeed.Value)
	}
}

func TestRum_DrinkDuringHangoverStartsFreshCount(t *testing.T) {
	s := newShip(1, ArchetypeBattle, V(0, 0), SidePlayer)
	s.drinkRum()
	s.drinkRum()
	tickRum(s, 10)
	if !s.HungOver() {
		t.Fatal("two drinks should end in a hangover")
	}
	s.drinkRum()
	tickRum(s, 5)
	// The new buff had one drink, so its hangover is seven seconds.
	if s.rum.hangover > hangoverPerDrink {
		t.Fatalf("hangover = %.0fs, want %.0f", s.rum.hangover, hangoverPerDrink)
	}
	tickRum(s, 7)
	if s.HungOver() || s.Attack.Value != 15 {
		t.Fatalf("should be sober, attack=%.1f", s.Attack.Value)
	}
}
