package game

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the sea viewport.
const borderWidth = 24

// hudScale is the integer upscale factor applied to the HUD legend.
const hudScale = 2

const (
	tracerTicks  = 12
	dragMin      = 6 // px of mouse travel before a click becomes a box select
	statusTicks  = 180
	hpBarWidth   = 24
	zoomMin      = 0.1
	zoomMax      = 3.0
	panPerSecond = 900.0
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

type tracer struct {
	from, to Vec2
	ttl      int
	splash   bool
}

// Game is the ebiten front-end over a Campaign.
type Game struct {
	width      int
	height     int
	viewWidth  int // sea viewport width (log panel takes the rest)
	viewHeight int
	offX       int
	offY       int

	camp    *Campaign
	tracers []tracer

	showHUD  bool
	prevKeys map[ebiten.Key]bool
	hudBuf   *ebiten.Image

	// Camera pan + zoom.
	camX    float64
	camY    float64
	camZoom float64

	// Mouse selection.
	prevMouseLeft  bool
	prevMouseRight bool
	dragging       bool
	dragFrom       Vec2 // screen coords

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	status      string
	statusTimer int

	bindings map[ebiten.Key]func() string
}

// New builds the viewer for a fresh campaign.
func New(o CampaignOptions) *Game {
	viewW, viewH := 1280, 800
	g := &Game{
		width:      borderWidth + viewW + borderWidth + feedPanelWidth,
		height:     borderWidth + viewH + borderWidth,
		viewWidth:  viewW,
		viewHeight: viewH,
		offX:       borderWidth,
		offY:       borderWidth,
		showHUD:    true,
		prevKeys:   make(map[ebiten.Key]bool),
		camZoom:    0.5,
		simSpeed:   1,
		bindings:   make(map[ebiten.Key]func() string),
	}
	o.Sinks = append(o.Sinks, EventSinkFunc(g.onEvent))
	g.camp = NewCampaign(o)
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	if len(g.camp.Player) > 0 {
		g.camX, g.camY = g.camp.Player[0].Pos.X, g.camp.Player[0].Pos.Y
	}
	return g
}

// Bind runs fn when k is pressed and shows the message it returns.
func (g *Game) Bind(k ebiten.Key, fn func() string) {
	g.bindings[k] = fn
}

// Campaign returns the game being shown.
func (g *Game) Campaign() *Campaign { return g.camp }

func (g *Game) onEvent(e Event) {
	switch e.Kind {
	case EventShot:
		g.tracers = append(g.tracers, tracer{from: e.Pos, to: e.To, ttl: tracerTicks})
	case EventSplash:
		g.tracers = append(g.tracers, tracer{from: e.Pos, to: e.To, ttl: tracerTicks, splash: true})
	}
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()
	g.fadeTracers()
	if g.statusTimer > 0 {
		g.statusTimer--
	}

	if g.simSpeed <= 0 || g.camp.Over() {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.camp.Step()
	}
	return nil
}

func (g *Game) fadeTracers() {
	kept := g.tracers[:0]
	for _, t := range g.tracers {
		t.ttl--
		if t.ttl > 0 {
			kept = append(kept, t)
		}
	}
	g.tracers = kept
}

func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) say(msg string) {
	g.status = msg
	g.statusTimer = statusTicks
}

// handleInput processes camera, speed, selection and orders.
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}
	ctx := g.camp.Ctx
	sched := g.camp.Sched

	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// Camera pan: WASD or arrow keys.
	pan := panPerSecond / TicksPerSecond / g.camZoom
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camY -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camY += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camX -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camX += pan
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.camZoom *= math.Pow(1.12, wy)
	}
	g.camZoom = min(max(g.camZoom, zoomMin), zoomMax)
	g.camX = min(max(g.camX, 0), float64(ctx.Sea.W))
	g.camY = min(max(g.camY, 0), float64(ctx.Sea.H))

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if g.pressed(cur, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(cur, ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		for i := 0; i < len(speeds)-1; i++ {
			if speeds[i] <= g.simSpeed && speeds[i+1] > g.simSpeed {
				g.simSpeed = speeds[i+1]
				break
			}
		}
	}

	// Orders on the selection.
	selected := ctx.Selected()
	if g.pressed(cur, ebiten.KeyR) {
		for _, s := range selected {
			sched.ToggleRepair(s)
		}
	}
	if g.pressed(cur, ebiten.KeyU) {
		drunk := 0
		for _, s := range selected {
			if sched.DrinkRum(s) {
				drunk++
			}
		}
		if drunk == 0 && len(selected) > 0 {
			g.say("no rum in the hold")
		}
	}
	if g.pressed(cur, ebiten.KeyC) {
		if err := clipboard.WriteAll(g.camp.Report()); err != nil {
			ctx.Log.Warn().Err(err).Msg("copy report")
			g.say("clipboard unavailable")
		} else {
			g.say("report copied")
		}
	}

	for k, fn := range g.bindings {
		if g.pressed(cur, k) {
			if msg := fn(); msg != "" {
				g.say(msg)
			}
		}
	}

	mx, my := ebiten.CursorPosition()
	mouse := V(float64(mx), float64(my))

	// Left button: click selects one ship, drag selects a box.
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case left && !g.prevMouseLeft:
		g.dragFrom = mouse
		g.dragging = true
	case !left && g.prevMouseLeft && g.dragging:
		g.dragging = false
		g.selectFrom(g.dragFrom, mouse)
	}
	g.prevMouseLeft = left

	// Right button: order the selection. Shift boards, Ctrl defends.
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevMouseRight && len(selected) > 0 {
		g.order(selected, g.toWorld(mouse))
	}
	g.prevMouseRight = right

	g.prevKeys = cur
}

func (g *Game) selectFrom(a, b Vec2) {
	ctx := g.camp.Ctx
	if a.Dist(b) < dragMin {
		p := g.toWorld(b)
		for _, s := range ctx.Ships {
			s.Selected = false
		}
		if s := g.shipAt(p); s != nil && s.IsPlayer() {
			s.Selected = true
		}
		return
	}
	wa, wb := g.toWorld(a), g.toWorld(b)
	box := AABB{X: min(wa.X, wb.X), Y: min(wa.Y, wb.Y), W: math.Abs(wa.X - wb.X), H: math.Abs(wa.Y - wb.Y)}
	ctx.SelectRegion(box)
}

func (g *Game) order(selected []*Ship, p Vec2) {
	sched := g.camp.Sched
	target := g.shipAt(p)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	switch {
	case target != nil && !target.IsPlayer() && shift:
		if n := sched.Board(selected, target); n == 0 {
			g.say(target.Label + " cannot be boarded")
		}
	case target != nil && !target.IsPlayer():
		sched.Attack(selected, target)
	case ctrl:
		sched.Defend(selected, p)
	default:
		sched.Move(selected, p)
	}
}

// shipAt returns the live ship whose footprint contains p, if any.
func (g *Game) shipAt(p Vec2) *Ship {
	for _, s := range g.camp.Ctx.Nearby(p, 60) {
		if s.Bounds().Contains(p) {
			return s
		}
	}
	return nil
}

func (g *Game) toWorld(screen Vec2) Vec2 {
	return V(
		(screen.X-float64(g.offX)-float64(g.viewWidth)/2)/g.camZoom+g.camX,
		(screen.Y-float64(g.offY)-float64(g.viewHeight)/2)/g.camZoom+g.camY,
	)
}

func (g *Game) toScreen(p Vec2) (float32, float32) {
	return float32((p.X-g.camX)*g.camZoom + float64(g.viewWidth)/2 + float64(g.offX)),
		float32((p.Y-g.camY)*g.camZoom + float64(g.viewHeight)/2 + float64(g.offY))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 8, G: 10, B: 16, A: 255})

	view := screen.SubImage(image.Rect(g.offX, g.offY, g.offX+g.viewWidth, g.offY+g.viewHeight)).(*ebiten.Image)
	g.drawSea(view)
	g.drawWeather(view)
	g.drawTracers(view)
	g.drawShips(view)
	g.drawSelectionBox(view)

	ox, oy := float32(g.offX), float32(g.offY)
	vector.StrokeRect(screen, ox-1, oy-1, float32(g.viewWidth)+2, float32(g.viewHeight)+2, 2.0, color.RGBA{R: 60, G: 80, B: 120, A: 255}, false)

	g.camp.Feed.Draw(screen, g.offX+g.viewWidth+g.offX, g.height)
	g.drawTitle(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawSea(screen *ebiten.Image) {
	ctx := g.camp.Ctx
	x0, y0 := g.toScreen(V(0, 0))
	x1, y1 := g.toScreen(V(float64(ctx.Sea.W), float64(ctx.Sea.H)))
	vector.FillRect(screen, x0, y0, x1-x0, y1-y0, color.RGBA{R: 18, G: 44, B: 78, A: 255}, false)

	z := float32(g.camZoom)
	sand := color.RGBA{R: 186, G: 168, B: 112, A: 255}
	grass := color.RGBA{R: 58, G: 104, B: 54, A: 255}
	for _, is := range ctx.Sea.Islands {
		x, y := g.toScreen(V(float64(is.x), float64(is.y)))
		w, h := float32(is.w)*z, float32(is.h)*z
		vector.FillRect(screen, x, y, w, h, sand, false)
		vector.FillRect(screen, x+w*0.15, y+h*0.15, w*0.7, h*0.7, grass, false)
	}

	for _, p := range []Vec2{ctx.Sea.Treasure, ctx.Sea.Lair} {
		x, y := g.toScreen(p)
		vector.StrokeCircle(screen, x, y, 40*z, 1, color.RGBA{R: 220, G: 200, B: 90, A: 120}, false)
	}
}

func (g *Game) drawWeather(screen *ebiten.Image) {
	env := g.camp.Env
	if env == nil {
		return
	}
	z := float32(g.camZoom)
	for _, st := range env.Storms {
		x, y := g.toScreen(V(st.Region.X, st.Region.Y))
		vector.FillRect(screen, x, y, float32(st.Region.W)*z, float32(st.Region.H)*z, color.RGBA{R: 20, G: 20, B: 30, A: 120}, false)
	}
	for _, v := range env.Vortices {
		for _, b := range []AABB{v.A, v.B} {
			c := b.Center()
			x, y := g.toScreen(c)
			vector.StrokeCircle(screen, x, y, float32(b.W/2)*z, 2, color.RGBA{R: 120, G: 200, B: 220, A: 180}, false)
		}
	}
}

func (g *Game) drawTracers(screen *ebiten.Image) {
	for _, t := range g.tracers {
		x0, y0 := g.toScreen(t.from)
		x1, y1 := g.toScreen(t.to)
		a := uint8(255 * t.ttl / tracerTicks)
		col := color.RGBA{R: 255, G: 220, B: 120, A: a}
		if t.splash {
			col = color.RGBA{R: 255, G: 120, B: 40, A: a}
		}
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, col, false)
	}
}

func (g *Game) drawShips(screen *ebiten.Image) {
	z := float32(g.camZoom)
	for _, s := range g.camp.Ctx.Ships {
		if !s.Alive() {
			continue
		}
		x, y := g.toScreen(s.Pos)
		r := float32(s.behavior.Size.X/2) * z
		col := sideColor(s.Side)
		if s.Archetype.IsMonster() {
			col = color.RGBA{R: 150, G: 80, B: 200, A: 255}
		}
		vector.FillCircle(screen, x, y, max(r, 2), col, false)
		hx, hy := g.toScreen(s.Pos.Add(s.Dir.Normalize().Scale(s.behavior.Size.X)))
		vector.StrokeLine(screen, x, y, hx, hy, 1, color.White, false)

		if s.Selected {
			vector.StrokeCircle(screen, x, y, max(r, 2)+4, 1.5, color.RGBA{R: 120, G: 255, B: 120, A: 255}, false)
			if s.Moving {
				dx, dy := g.toScreen(s.Dest)
				vector.StrokeLine(screen, x, y, dx, dy, 1, color.RGBA{R: 120, G: 255, B: 120, A: 80}, false)
			}
		}
		if s.Docking && s.Target != nil {
			tx, ty := g.toScreen(s.Target.Pos)
			vector.StrokeLine(screen, x, y, tx, ty, 3, color.RGBA{R: 240, G: 240, B: 240, A: 200}, false)
		}

		frac := float32(s.HP) / float32(max(1, s.MaxHP))
		bx, by := x-hpBarWidth/2, y-max(r, 2)-8
		vector.FillRect(screen, bx, by, hpBarWidth, 3, color.RGBA{R: 60, G: 0, B: 0, A: 200}, false)
		vector.FillRect(screen, bx, by, hpBarWidth*frac, 3, color.RGBA{R: 80, G: 220, B: 80, A: 230}, false)
		if s.Repairing {
			ebitenutil.DebugPrintAt(screen, "+", int(bx)+hpBarWidth+2, int(by)-6)
		}
	}
}

func (g *Game) drawSelectionBox(screen *ebiten.Image) {
	if !g.dragging {
		return
	}
	mx, my := ebiten.CursorPosition()
	x0, y0 := float32(g.dragFrom.X), float32(g.dragFrom.Y)
	x1, y1 := float32(mx), float32(my)
	vector.StrokeRect(screen, min(x0, x1), min(y0, y1), float32(math.Abs(float64(x1-x0))), float32(math.Abs(float64(y1-y0))), 1, color.RGBA{R: 120, G: 255, B: 120, A: 200}, false)
}

// drawTitle writes the top bar: stores, wind and speed.
func (g *Game) drawTitle(screen *ebiten.Image) {
	ctx := g.camp.Ctx
	speedStr := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	line := fmt.Sprintf("%s   wind %03.0fdeg   %s   T=%d", ctx.Resources, ctx.Wind.Heading, speedStr, ctx.Tick)
	if g.camp.Over() {
		line = "ALL SHIPS LOST   " + line
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.offX), 4)
	op.ColorScale.ScaleWithColor(color.RGBA{R: 230, G: 220, B: 180, A: 255})
	text.Draw(screen, line, hudFace, op)

	if g.statusTimer > 0 {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(g.offX+8), float64(g.offY+g.viewHeight-20))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 255, G: 200, B: 120, A: 255})
		text.Draw(screen, g.status, hudFace, op)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		"click/drag=select  right=move/attack",
		"shift+right=board  ctrl+right=defend",
		"R=repair  U=rum  C=copy report",
		"P=pause  ,/. speed  H=hide",
		fmt.Sprintf("WASD=pan  scroll=zoom (%.2fx)", g.camZoom),
	}
	if sel := g.camp.Ctx.Selected(); len(sel) == 1 {
		s := sel[0]
		lines = append(lines, fmt.Sprintf("%s %s hp=%d/%d crew=%.1f", s.Label, s.State, s.HP, s.MaxHP, s.Crew))
	}

	const lineH = 16
	const charW = 6
	const padX, padY = 5, 4

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bufH := float32(g.height / hudScale)
	bx := float32(g.offX/hudScale + 4)
	by := bufH - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 20, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 90, B: 140, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size the game lays itself out at.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}
