// Command nesgo is a playable NES front end: it loads a ROM, drives the
// emulation core on its own ticker goroutine, and presents frames and
// polls the keyboard through ebiten.
package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/hallowell/nesgo/console"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")

// keys maps button index (A, B, Select, Start, Up, Down, Left, Right) to
// the host key that drives it. Which key maps to which button is a host
// decision; the core only ever sees the resulting [8]bool.
var keys = [8]ebiten.Key{
	ebiten.KeyA,
	ebiten.KeyB,
	ebiten.KeySpace,
	ebiten.KeyEnter,
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

// game adapts a *console.Console to the ebiten.Game interface. The
// emulation itself runs on its own ticker goroutine (game.run) so ebiten's
// frame cadence never throttles CPU/PPU progress; Draw only copies
// whatever frame is currently in the front buffer.
type game struct {
	console *console.Console
	width   int
	height  int
	rgba    []uint8
	img     *ebiten.Image

	frames int
	fps    string
	tick   time.Time
}

func newGame(c *console.Console) *game {
	w, h := c.Resolution()
	return &game{
		console: c,
		width:   w,
		height:  h,
		rgba:    make([]uint8, w*h*4),
		img:     ebiten.NewImage(w, h),
		tick:    time.Now(),
	}
}

func (g *game) pollButtons() [8]bool {
	var b [8]bool
	for i, k := range keys {
		b[i] = ebiten.IsKeyPressed(k)
	}
	return b
}

// run drives the emulation core on its own goroutine at the NES's native
// cadence, independent of ebiten's Update/Draw calls.
func (g *game) run() {
	const frameMillis = 1000 / 60
	t := time.NewTicker(frameMillis * time.Millisecond)
	defer t.Stop()
	for range t.C {
		g.console.SetControllerButtons(0, g.pollButtons())
		g.console.StepSeconds(frameMillis)
	}
}

// Layout returns the NES's fixed native resolution; ebiten scales the
// window to it.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Update does no emulation work: emulation advances on the ticker
// goroutine in run(), not on ebiten's update cadence. It only counts
// Update calls per second for the FPS overlay.
func (g *game) Update() error {
	g.frames++
	if time.Since(g.tick) >= time.Second {
		g.fps = strconv.Itoa(g.frames)
		g.frames = 0
		g.tick = time.Now()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	px := g.console.GetPixels()
	for i := 0; i < g.width*g.height; i++ {
		g.rgba[i*4+0] = px[i*3+0]
		g.rgba[i*4+1] = px[i*3+1]
		g.rgba[i*4+2] = px[i*3+2]
		g.rgba[i*4+3] = 0xFF
	}
	g.img.WritePixels(g.rgba)
	screen.DrawImage(g.img, nil)
	ebitenutil.DebugPrint(screen, "fps: "+g.fps)
}

func main() {
	flag.Parse()

	f, err := os.Open(*romFile)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}
	defer f.Close()

	c, err := console.New(f)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}
	c.Reset()

	g := newGame(c)
	go g.run()

	w, h := c.Resolution()
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle("nesgo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
