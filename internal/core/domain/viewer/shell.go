package viewer

import (
	"context"
	"errors"
	"figview/internal/core/domain"
	"figview/internal/core/port"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultFitDelay is how long Mount waits before trying the initial fit.
const DefaultFitDelay = 100 * time.Millisecond

type ShellConfig struct {
	Source    string
	Title     string
	OnClose   func()
	Input     port.InputSource
	Scheduler port.Scheduler
	Saver     port.ImageSaver
	FitDelay  time.Duration
	Now       func() time.Time
}

// Shell is one open viewer. It owns the viewport and the input controller for its lifetime
// and never releases the image it shows; that belongs to whoever handed over the source.
type Shell struct {
	source    string
	title     string
	onClose   func()
	scheduler port.Scheduler
	saver     port.ImageSaver
	fitDelay  time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	controller *InputController
	toolbar    Toolbar

	container    domain.Rect
	hasContainer bool
	imageSize    domain.Size
	hasImage     bool

	initialFitDone bool
	cancelFit      func()
	mounted        bool
	closed         bool
}

func NewShell(cfg ShellConfig) *Shell {
	s := &Shell{
		source:    cfg.Source,
		title:     cfg.Title,
		onClose:   cfg.OnClose,
		scheduler: cfg.Scheduler,
		saver:     cfg.Saver,
		fitDelay:  cfg.FitDelay,
		now:       cfg.Now,
		logger: log.With().
			Str("source", cfg.Source).
			Str("title", cfg.Title).
			Logger(),
	}

	if s.fitDelay <= 0 {
		s.fitDelay = DefaultFitDelay
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.controller = NewInputController(cfg.Input, s, s.Close)
	s.registerActions()

	return s
}

func (s *Shell) registerActions() {
	s.toolbar.Register(Action{Name: ActionZoomOut, Label: "-", Shortcut: "-", Run: func(context.Context) error {
		s.controller.ZoomOut()
		return nil
	}})
	s.toolbar.Register(Action{Name: ActionZoomIn, Label: "+", Shortcut: "+", Run: func(context.Context) error {
		s.controller.ZoomIn()
		return nil
	}})
	s.toolbar.Register(Action{Name: ActionFit, Label: "Fit", Shortcut: "F", Run: func(context.Context) error {
		if err := s.controller.Fit(); err != nil {
			s.logger.Debug().Err(err).Msg("fit skipped")
		}
		return nil
	}})
	s.toolbar.Register(Action{Name: ActionReset, Label: "1:1", Shortcut: "0", Run: func(context.Context) error {
		s.controller.Reset()
		return nil
	}})
	s.toolbar.Register(Action{Name: ActionDownload, Label: "Save", Run: func(ctx context.Context) error {
		_, err := s.Download(ctx)
		return err
	}})
	s.toolbar.Register(Action{Name: ActionClose, Label: "X", Shortcut: "Esc", Run: func(context.Context) error {
		s.Close()
		return nil
	}})
}

// Mount subscribes the controller and schedules the deferred initial fit.
func (s *Shell) Mount() error {
	if s.closed {
		return domain.ErrViewerClosed
	}

	if err := s.controller.Attach(); err != nil {
		return fmt.Errorf("error attaching input controller: %w", err)
	}
	s.mounted = true

	s.cancelFit = s.scheduler.AfterFunc(s.fitDelay, s.deferredFit)

	s.logger.Info().Dur("fitDelay", s.fitDelay).Msg("viewer mounted")

	return nil
}

func (s *Shell) deferredFit() {
	s.cancelFit = nil
	if s.initialFitDone || !s.hasImage {
		s.logger.Debug().Bool("imageReady", s.hasImage).Msg("deferred fit skipped")
		return
	}

	s.initialFit()
}

// ImageReady reports the natural size of the image once it has been decoded.
func (s *Shell) ImageReady(size domain.Size) {
	if s.closed {
		return
	}

	s.imageSize = size
	s.hasImage = !size.Empty()

	s.logger.Debug().Float64("width", size.W).Float64("height", size.H).Msg("image ready")

	if !s.initialFitDone && s.hasImage {
		s.initialFit()
	}
}

func (s *Shell) initialFit() {
	if err := s.controller.Fit(); err != nil {
		s.logger.Debug().Err(err).Msg("initial fit deferred")
		return
	}
	s.initialFitDone = true
}

// SetContainer records the container rectangle from the latest layout.
func (s *Shell) SetContainer(bounds domain.Rect) {
	s.container = bounds
	s.hasContainer = !bounds.Size.Empty()

	if s.hasContainer && s.hasImage && !s.initialFitDone && s.mounted {
		s.initialFit()
	}
}

func (s *Shell) ContainerBounds() (domain.Rect, bool) {
	return s.container, s.hasContainer
}

func (s *Shell) ImageSize() (domain.Size, bool) {
	return s.imageSize, s.hasImage
}

func (s *Shell) Source() string {
	return s.source
}

func (s *Shell) Title() string {
	return s.title
}

func (s *Shell) Viewport() Viewport {
	return s.controller.Viewport()
}

func (s *Shell) Percentage() int {
	return s.controller.Viewport().Percentage()
}

func (s *Shell) Dragging() bool {
	return s.controller.Dragging()
}

func (s *Shell) Closed() bool {
	return s.closed
}

func (s *Shell) Toolbar() []Action {
	return s.toolbar.List()
}

// Invoke runs the named toolbar action. ctx bounds actions that do I/O.
func (s *Shell) Invoke(ctx context.Context, name string) error {
	if s.closed {
		return domain.ErrViewerClosed
	}

	action, err := s.toolbar.Get(name)
	if err != nil {
		return fmt.Errorf("error invoking %q: %w", name, err)
	}

	return action.Run(ctx)
}

// Download saves the image under a timestamped name and returns where it went.
func (s *Shell) Download(ctx context.Context) (string, error) {
	if s.saver == nil {
		return "", errors.New("no image saver configured")
	}

	filename := DownloadFilename(s.title, s.source, s.now())

	path, err := s.saver.SaveAs(ctx, s.source, filename)
	if err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("image downloaded")

	return path, nil
}

// Unmount ends any drag, removes every subscription and cancels the pending fit without
// signalling the host. It is used when another image replaces this viewer.
func (s *Shell) Unmount() {
	s.controller.Detach()

	if s.cancelFit != nil {
		s.cancelFit()
		s.cancelFit = nil
	}

	if s.mounted {
		s.logger.Debug().Msg("viewer unmounted")
	}
	s.mounted = false
}

// Close tears the viewer down and calls onClose exactly once.
func (s *Shell) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.Unmount()

	s.logger.Info().Msg("viewer closed")

	if s.onClose != nil {
		s.onClose()
	}
}
