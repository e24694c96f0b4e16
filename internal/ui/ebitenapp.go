package ui

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/escrichov/gbemulator/internal/emu"
)

// App is the windowed host: it owns the frame surface, feeds keyboard state
// to the joypad, and presents each completed frame.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	paused bool
	fast   bool
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(windowTitle(cfg, m))
	ebiten.SetWindowSize(emu.FrameWidth*cfg.Scale, emu.FrameHeight*cfg.Scale)
	return &App{cfg: cfg, m: m}
}

func windowTitle(cfg Config, m *emu.Machine) string {
	if t := m.ROMTitle(); t != "" {
		return cfg.Title + " - [" + t + "]"
	}
	return cfg.Title
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	var btn emu.Buttons
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		btn.Right = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		btn.Left = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		btn.Up = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		btn.Down = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		btn.A = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		btn.B = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		btn.Start = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		btn.Select = true
	}
	a.m.SetButtons(btn)

	// Pause toggle (P), frame-step when paused (N)
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.m.ResetPostBoot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		a.m.ResetWithBoot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	if a.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			if err := a.m.StepFrame(); err != nil {
				return err
			}
		}
		return nil
	}

	frames := 1
	if a.fast {
		frames = 4
	}
	for i := 0; i < frames; i++ {
		if err := a.m.StepFrame(); err != nil {
			// Fatal decode errors end the session with a post-mortem line.
			log.Printf("emulation stopped: %v (last PC=%04X op=%02X)",
				err, a.m.CPU().LastPC(), a.m.CPU().LastOp())
			return err
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(emu.FrameWidth, emu.FrameHeight)
	}
	a.tex.WritePixels(a.m.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(emu.FrameWidth), float64(sh)/float64(emu.FrameHeight))
	screen.DrawImage(a.tex, op)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return emu.FrameWidth * a.cfg.Scale, emu.FrameHeight * a.cfg.Scale
}
