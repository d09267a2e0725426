package window

import (
	"context"
	"errors"
	"figview/internal/adapters/clock"
	"figview/internal/adapters/file"
	"figview/internal/adapters/input"
	"figview/internal/core/domain"
	"figview/internal/core/domain/viewer"
	"figview/internal/core/port"
	"fmt"
	"image"
	"image/color"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	backgroundColor = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xff}
	toolbarColor    = color.RGBA{R: 0x24, G: 0x24, B: 0x2c, A: 0xff}
	buttonColor     = color.RGBA{R: 0x3a, G: 0x3a, B: 0x48, A: 0xff}
)

type Config struct {
	Context  context.Context
	Source   string
	Title    string
	Width    int
	Height   int
	FitDelay time.Duration
	Saver    port.ImageSaver
	// Reloads, when set, signals that Source changed on disk.
	Reloads <-chan struct{}
	Now     func() time.Time
}

type loadResult struct {
	generation int
	img        *ebiten.Image
	info       file.Info
	err        error
}

type imageLoader func(path string) (*ebiten.Image, file.Info, error)

func loadFromFile(path string) (*ebiten.Image, file.Info, error) {
	info, err := file.ImageInfo(path)
	if err != nil {
		return nil, file.Info{}, err
	}

	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, file.Info{}, fmt.Errorf("error decoding %s: %w", path, err)
	}

	return img, info, nil
}

// Game hosts one viewer in an ebiten window. Everything except image decoding runs on
// ebiten's update thread.
type Game struct {
	cfg       Config
	hub       *input.Hub
	scheduler *clock.FrameScheduler
	shell     *viewer.Shell
	logger    zerolog.Logger

	generation int
	loads      chan loadResult
	loadImage  imageLoader

	img          *ebiten.Image
	info         file.Info
	loadErr      error
	toDeallocate *ebiten.Image

	width, height int
	buttons       []button
	lastMouse     domain.Point
	hasMouse      bool
	chars         []rune
	status        string

	toggleFullscreen func()
	closed           bool
}

func newGame(cfg Config, loader imageLoader) *Game {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	g := &Game{
		cfg:       cfg,
		hub:       input.NewHub(),
		scheduler: clock.NewFrameScheduler(cfg.Now),
		loads:     make(chan loadResult, 4),
		loadImage: loader,
		logger:    log.With().Str("component", "window").Str("source", cfg.Source).Logger(),
		toggleFullscreen: func() {
			ebiten.SetFullscreen(!ebiten.IsFullscreen())
		},
	}

	g.openShell()

	return g
}

// openShell mounts a fresh viewer on the source and starts loading it in the background.
func (g *Game) openShell() {
	g.generation++

	g.shell = viewer.NewShell(viewer.ShellConfig{
		Source:    g.cfg.Source,
		Title:     g.cfg.Title,
		OnClose:   g.onClose,
		Input:     g.hub,
		Scheduler: g.scheduler,
		Saver:     g.cfg.Saver,
		FitDelay:  g.cfg.FitDelay,
		Now:       g.cfg.Now,
	})

	if g.width > 0 && g.height > 0 {
		g.shell.SetContainer(containerRect(g.width, g.height))
	}
	g.buttons = layoutButtons(g.shell.Toolbar(), float64(g.width))

	if err := g.shell.Mount(); err != nil {
		g.logger.Error().Err(err).Msg("failed to mount viewer")
	}

	generation := g.generation
	go func() {
		img, info, err := g.loadImage(g.cfg.Source)
		g.loads <- loadResult{generation: generation, img: img, info: info, err: err}
	}()
}

func (g *Game) onClose() {
	g.closed = true
}

// shutdown closes the viewer once the loop has ended. It is a no-op when the viewer already
// closed itself; otherwise the window was closed from outside.
func (g *Game) shutdown() {
	if !g.shell.Closed() {
		g.logger.Debug().Msg("window closed, closing viewer")
	}
	g.shell.Close()
}

// reload replaces the current viewer with a new one on the changed file. The old image
// stays on screen until the new one has been decoded.
func (g *Game) reload() {
	g.logger.Info().Msg("source changed, reloading viewer")

	g.shell.Unmount()
	g.openShell()
}

func (g *Game) applyLoad(res loadResult) {
	if res.generation != g.generation {
		if res.img != nil {
			res.img.Deallocate()
		}
		return
	}

	if res.err != nil {
		g.logger.Error().Err(res.err).Msg("failed to load image")
		g.loadErr = res.err
		return
	}

	if g.img != nil {
		g.toDeallocate = g.img
	}
	g.img = res.img
	g.info = res.info
	g.loadErr = nil

	size := res.info.Size
	if size.Empty() && res.img != nil {
		b := res.img.Bounds()
		size = domain.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}

	g.shell.ImageReady(size)
}

func (g *Game) Update() error {
	if g.toDeallocate != nil {
		g.toDeallocate.Deallocate()
		g.toDeallocate = nil
	}

	g.drain()

	if g.cfg.Reloads != nil {
		select {
		case <-g.cfg.Reloads:
			g.reload()
		default:
		}
	}

	g.scheduler.RunDue(g.cfg.Now())

	in := pollInput(g.chars)
	g.chars = in.chars
	g.handleInput(in)

	if g.closed {
		return ebiten.Termination
	}

	return nil
}

func (g *Game) drain() {
	for {
		select {
		case res := <-g.loads:
			g.applyLoad(res)
		default:
			return
		}
	}
}

func (g *Game) handleInput(in frameInput) {
	for _, ev := range in.events(g.lastMouse, g.hasMouse) {
		if g.closed {
			break
		}

		if ev.Kind == port.PointerDown && ev.Position.Y < toolbarHeight {
			if name, ok := hitButton(g.buttons, ev.Position); ok {
				g.invoke(name)
				continue
			}
		}

		prevented := g.hub.Dispatch(ev)
		if ev.Kind == port.KeyDown && !prevented {
			g.keyDefault(ev.Key)
		}
	}

	g.lastMouse = in.mouse
	g.hasMouse = true
}

// keyDefault is the host's own handling of keys no viewer claimed.
func (g *Game) keyDefault(key string) {
	if key == keyF11 {
		g.toggleFullscreen()
	}
}

func (g *Game) invoke(name string) {
	if name == viewer.ActionDownload {
		path, err := g.shell.Download(g.cfg.Context)
		if err != nil {
			g.status = err.Error()
			return
		}
		g.status = "saved " + path
		return
	}

	if err := g.shell.Invoke(g.cfg.Context, name); err != nil && !errors.Is(err, domain.ErrViewerClosed) {
		g.logger.Warn().Err(err).Str("action", name).Msg("toolbar action failed")
		g.status = err.Error()
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight

		bounds := containerRect(outsideWidth, outsideHeight)
		g.hub.SetContainer(bounds)
		g.shell.SetContainer(bounds)
		g.buttons = layoutButtons(g.shell.Toolbar(), float64(outsideWidth))
	}

	return outsideWidth, outsideHeight
}

// imageGeoM places the image so that its centre sits at the container centre plus the
// translation, scaled about that centre.
func imageGeoM(view viewer.Viewport, imageSize domain.Size, container domain.Rect) ebiten.GeoM {
	origin := container.Min.Add(view.ImageToScreen(domain.Point{}, container.Size.Center()))

	var m ebiten.GeoM
	m.Translate(-imageSize.W/2, -imageSize.H/2)
	m.Scale(view.Scale, view.Scale)
	m.Translate(origin.X, origin.Y)

	return m
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	bounds := containerRect(g.width, g.height)
	area := screen.SubImage(image.Rect(int(bounds.Min.X), int(bounds.Min.Y),
		int(bounds.Min.X+bounds.Size.W), int(bounds.Min.Y+bounds.Size.H))).(*ebiten.Image)

	switch {
	case g.img != nil:
		b := g.img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM = imageGeoM(g.shell.Viewport(), domain.Size{W: float64(b.Dx()), H: float64(b.Dy())}, bounds)
		op.Filter = ebiten.FilterLinear
		area.DrawImage(g.img, op)
	case g.loadErr != nil:
		ebitenutil.DebugPrintAt(screen, "Failed to load image: "+g.loadErr.Error(), 8, toolbarHeight+8)
	default:
		ebitenutil.DebugPrintAt(screen, "Loading...", 8, toolbarHeight+8)
	}

	g.drawToolbar(screen)
	g.drawFooter(screen)
}

func (g *Game) drawToolbar(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(g.width), toolbarHeight, toolbarColor, false)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  %d%%", g.shell.Title(), g.shell.Percentage()),
		8, (toolbarHeight-glyphHeight)/2)

	for _, b := range g.buttons {
		r := b.bounds
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Size.W), float32(r.Size.H),
			buttonColor, false)

		x := int(r.Min.X + (r.Size.W-float64(len(b.label)*glyphWidth))/2)
		y := int(r.Min.Y + (r.Size.H-glyphHeight)/2)
		ebitenutil.DebugPrintAt(screen, b.label, x, y)
	}
}

func (g *Game) drawFooter(screen *ebiten.Image) {
	lines := make([]string, 0, len(g.info.EXIF)+1)

	keys := make([]string, 0, len(g.info.EXIF))
	for k := range g.info.EXIF {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+": "+g.info.EXIF[k])
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	y := g.height - 8 - len(lines)*glyphHeight
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 8, y)
		y += glyphHeight
	}
}

// Run opens the window and blocks until the viewer is closed.
func Run(cfg Config) error {
	if cfg.Width <= 0 {
		cfg.Width = 1024
	}
	if cfg.Height <= 0 {
		cfg.Height = 768
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newGame(cfg, loadFromFile)

	log.Info().Str("source", cfg.Source).Int("width", cfg.Width).Int("height", cfg.Height).Msg("opening viewer")

	err := ebiten.RunGame(g)
	g.shutdown()

	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("error running viewer: %w", err)
	}

	return nil
}
