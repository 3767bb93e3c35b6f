// Command scorepreview is a minimal windowed viewer over a paginated score:
// it opens one SDL2 window, draws each page's systems as a stack of stave
// lines sized by spec §6's page geometry, and lets the arrow keys step
// between pages. Grounded on internal/ui/ui.go's Init/CreateWindow/
// CreateRenderer/event-loop shape, adapted from the emulator's per-frame
// pixel-texture streaming to a per-page vector redraw (a paginated score
// has no per-frame raster buffer to stream — it has a handful of line
// segments per page, so SDL2's line-drawing primitives replace the
// texture upload entirely).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/veandco/go-sdl2/sdl"

	"scorecraft/internal/config"
	"scorecraft/internal/engine"
	"scorecraft/internal/paginate"
)

// millipointsPerPixel is this preview's own scale (72000 millipoints per
// inch shown at 96 pixels per inch); internal/backend/fyne.go uses 1000.
const millipointsPerPixel = 750.0

func main() {
	inputPath := flag.String("in", "", "Path to a source score (.pmw native notation or .musicxml)")
	scale := flag.Float64("scale", 1.0, "Preview scale factor")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: scorepreview -in <score> [-scale 1.0]")
		os.Exit(1)
	}

	source, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	eng := engine.New(cfg)
	if _, err := eng.LoadNative(string(source)); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading score: %v\n", err)
		os.Exit(1)
	}
	eng.Engrave()
	pages := eng.Paginate()
	if len(pages) == 0 {
		fmt.Fprintln(os.Stderr, "Error: score produced no pages")
		os.Exit(1)
	}

	v, err := newViewer(cfg, pages, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing preview: %v\n", err)
		os.Exit(1)
	}
	defer v.Cleanup()

	if err := v.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running preview: %v\n", err)
		os.Exit(1)
	}
}

// viewer is the SDL2 window + renderer pair driving the preview loop.
type viewer struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	cfg     config.Config
	pages   []*paginate.Page
	page    int
	scale   float64
	running bool
}

func newViewer(cfg config.Config, pages []*paginate.Page, scale float64) (*viewer, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %w", err)
	}

	width := int32(toPixels(cfg.LineWidth, scale)) + 80
	height := int32(toPixels(cfg.PageHeight, scale)) + 80

	window, err := sdl.CreateWindow(
		"scorecraft preview",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		width,
		height,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &viewer{
		window:   window,
		renderer: renderer,
		cfg:      cfg,
		pages:    pages,
		scale:    scale,
		running:  true,
	}, nil
}

// Run drives the event loop: redraw the current page, handle navigation
// and quit events, repeat until the window is closed.
func (v *viewer) Run() error {
	for v.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			v.handleEvent(event)
		}
		if err := v.render(); err != nil {
			return err
		}
		sdl.Delay(16)
	}
	return nil
}

func (v *viewer) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		v.running = false
	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return
		}
		switch e.Keysym.Sym {
		case sdl.K_ESCAPE, sdl.K_q:
			v.running = false
		case sdl.K_RIGHT, sdl.K_SPACE:
			if v.page < len(v.pages)-1 {
				v.page++
			}
		case sdl.K_LEFT:
			if v.page > 0 {
				v.page--
			}
		}
	}
}

// render draws the current page's systems as a stack of five-line staves,
// one line group per system, positioned by its accumulated depth the way
// paginate.Assembler.commitSystem would lay it out on the physical page.
func (v *viewer) render() error {
	r := v.renderer
	r.SetDrawColor(255, 255, 255, 255)
	r.Clear()

	r.SetDrawColor(0, 0, 0, 255)
	page := v.pages[v.page]

	const staveLineGap = 2000 // millipoints between stave lines
	y := 40.0
	x0 := 40.0
	for _, sys := range page.Systems {
		width := toPixels(sys.Width, v.scale)
		if width <= 0 {
			width = toPixels(v.cfg.LineWidth, v.scale)
		}
		for line := 0; line < 5; line++ {
			ly := int32(y + float64(line)*toPixels(staveLineGap, v.scale))
			r.DrawLine(int32(x0), ly, int32(x0+width), ly)
		}
		y += toPixels(v.cfg.StaveSpacing, v.scale)
	}

	r.Present()
	return nil
}

func (v *viewer) Cleanup() {
	if v.renderer != nil {
		v.renderer.Destroy()
	}
	if v.window != nil {
		v.window.Destroy()
	}
	sdl.Quit()
}

func toPixels(millipoints int, scale float64) float64 {
	return float64(millipoints) / millipointsPerPixel * scale
}
