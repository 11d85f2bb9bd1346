package minimap

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/Broadside/internal/game"
)

func newTestContext() *game.SimulationContext {
	rng := rand.New(rand.NewSource(9)) // #nosec G404 -- test harness
	return game.NewSimulationContext(game.OpenSea(1000, 500), rng)
}

func TestRender_ShipsLandOnScaledCells(t *testing.T) {
	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(5, 5), game.SidePlayer)
	ctx.Spawn(game.ArchetypeTrading, game.V(995, 495), game.SideAI)

	f := Render(ctx, nil, 100, 50)
	if c := f.At(0, 0); c.Rune != 'B' || c.Kind != KindShip || c.Side != game.SidePlayer {
		t.Errorf("top-left = %+v, want player battle ship", c)
	}
	if c := f.At(99, 49); c.Rune != 't' || c.Side != game.SideAI {
		t.Errorf("bottom-right = %+v, want ai trading ship", c)
	}
}

func TestRender_PlayerWinsSharedCell(t *testing.T) {
	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeFisher, game.V(500, 250), game.SideAI)
	ctx.Spawn(game.ArchetypeBattle, game.V(502, 251), game.SidePlayer)

	f := Render(ctx, nil, 10, 5)
	if c := f.At(5, 2); c.Side != game.SidePlayer {
		t.Errorf("shared cell = %+v, want player ship drawn on top", c)
	}
}

func TestRender_IslandsAndLandmarks(t *testing.T) {
	ctx := newTestContext()
	f := Render(ctx, nil, 100, 50)
	if c := f.At(80, 40); c.Rune != 'X' {
		t.Errorf("treasure cell = %q, want X", c.Rune)
	}
	if c := f.At(20, 37); c.Rune != '%' {
		t.Errorf("lair cell = %q, want %%", c.Rune)
	}

	ts := game.NewTestSim(game.WithMapSize(1000, 500), game.WithIsland(400, 200, 128, 64))
	f = Render(ts.Ctx, ts.Env, 100, 50)
	if c := f.At(45, 22); c.Kind != KindIsland {
		t.Errorf("island cell = %+v, want island", c)
	}
}

func TestGlyph_CaseBySide(t *testing.T) {
	ctx := newTestContext()
	p := ctx.Spawn(game.ArchetypeTrading, game.V(10, 10), game.SidePlayer)
	a := ctx.Spawn(game.ArchetypeTrading, game.V(20, 10), game.SideAI)
	g := ctx.Spawn(game.ArchetypeGhost, game.V(30, 10), game.SideAI)
	if Glyph(p) != 'T' || Glyph(a) != 't' || Glyph(g) != 'G' {
		t.Errorf("glyphs = %q %q %q", Glyph(p), Glyph(a), Glyph(g))
	}
}

func TestFrame_StringShape(t *testing.T) {
	f := Render(newTestContext(), nil, 12, 4)
	lines := strings.Split(strings.TrimSuffix(f.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want title + 4 rows", len(lines))
	}
	for _, l := range lines[1:] {
		if n := len([]rune(l)); n != 12 {
			t.Errorf("row width = %d, want 12", n)
		}
	}
	if !strings.HasPrefix(lines[0], "T=0") {
		t.Errorf("title = %q", lines[0])
	}
}

func TestFrame_WriteANSI(t *testing.T) {
	ctx := newTestContext()
	ctx.Spawn(game.ArchetypeBattle, game.V(5, 5), game.SidePlayer)
	var buf bytes.Buffer
	if err := Render(ctx, nil, 20, 5).WriteANSI(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, hideCursor+ansiHome) {
		t.Error("frame should start by homing the cursor")
	}
	if !strings.Contains(out, "\033[92mB") {
		t.Error("player ship should be drawn in green")
	}
}

func TestFitSize(t *testing.T) {
	cols, rows := FitSize(func() (int, int, error) { return 120, 40, nil })
	if cols != 120 || rows != 38 {
		t.Errorf("FitSize = %dx%d, want 120x38", cols, rows)
	}
	cols, rows = FitSize(func() (int, int, error) { return 0, 0, errors.New("not a terminal") })
	if cols != 80 || rows != 22 {
		t.Errorf("fallback = %dx%d, want 80x22", cols, rows)
	}
}
