package viewer

import (
	"figview/internal/core/domain"
	"figview/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Geometry supplies the layout the controller needs when an event arrives.
type Geometry interface {
	// ContainerBounds is the viewer container in window coordinates; false until laid out.
	ContainerBounds() (domain.Rect, bool)
	// ImageSize is the natural pixel size of the image; false until it has been decoded.
	ImageSize() (domain.Size, bool)
}

// DragSession exists only between a pointer-down that started a pan and the matching pointer-up.
// Anchor is the pointer position at drag start minus the translation at drag start.
type DragSession struct {
	Anchor domain.Point
}

type InputController struct {
	source   port.InputSource
	geometry Geometry
	onClose  func()
	margin   float64

	viewport Viewport
	drag     *DragSession
	subs     []port.Subscription
}

func NewInputController(source port.InputSource, geometry Geometry, onClose func()) *InputController {
	return &InputController{
		source:   source,
		geometry: geometry,
		onClose:  onClose,
		margin:   DefaultFitMargin,
		viewport: NewViewport(),
	}
}

func (c *InputController) Viewport() Viewport {
	return c.viewport
}

func (c *InputController) Dragging() bool {
	return c.drag != nil
}

// Attached reports whether the controller currently holds subscriptions.
func (c *InputController) Attached() bool {
	return len(c.subs) > 0
}

// Attach subscribes the controller to its input source. Move, up and key events are taken
// at window scope so a drag survives the pointer leaving the image; wheel and down are
// taken on the container only. The wheel handler is never passive because it must
// suppress page scrolling.
func (c *InputController) Attach() error {
	if c.Attached() {
		return domain.ErrAlreadyAttached
	}

	wanted := []struct {
		scope   port.Scope
		kind    port.EventKind
		handler port.EventHandler
	}{
		{port.ScopeWindow, port.PointerMove, c.handlePointerMove},
		{port.ScopeWindow, port.PointerUp, c.handlePointerUp},
		{port.ScopeWindow, port.KeyDown, c.handleKey},
		{port.ScopeContainer, port.Wheel, c.handleWheel},
		{port.ScopeContainer, port.PointerDown, c.handlePointerDown},
	}

	for _, w := range wanted {
		sub, err := c.source.Subscribe(w.scope, w.kind, w.handler, port.SubscribeOptions{Passive: false})
		if err != nil {
			c.Detach()
			return err
		}
		c.subs = append(c.subs, sub)
	}

	log.Debug().Int("subscriptions", len(c.subs)).Msg("input controller attached")

	return nil
}

// Detach ends any drag and removes every subscription. It is safe to call repeatedly.
func (c *InputController) Detach() {
	c.drag = nil

	for _, sub := range c.subs {
		c.source.Unsubscribe(sub)
	}

	if len(c.subs) > 0 {
		log.Debug().Int("subscriptions", len(c.subs)).Msg("input controller detached")
	}
	c.subs = nil
}

func (c *InputController) ZoomIn() {
	c.zoomAtCenter(ZoomStep)
}

func (c *InputController) ZoomOut() {
	c.zoomAtCenter(1 / ZoomStep)
}

func (c *InputController) Reset() {
	c.viewport = c.viewport.Reset()
}

// Fit applies the fit-to-container scale. It is a silent no-op while the container or the
// image size is unknown; the returned error says which.
func (c *InputController) Fit() error {
	bounds, ok := c.geometry.ContainerBounds()
	if !ok {
		return domain.ErrContainerUnavailable
	}
	size, ok := c.geometry.ImageSize()
	if !ok {
		return domain.ErrImageNotReady
	}

	fit, err := ComputeFit(bounds.Size, size, c.margin)
	if err != nil {
		return err
	}

	c.viewport = c.viewport.ApplyFit(fit)
	return nil
}

func (c *InputController) zoomAtCenter(factor float64) {
	bounds, ok := c.geometry.ContainerBounds()
	if !ok {
		// Only the pointer-centre offset matters, so any centre gives the same result.
		c.viewport = c.viewport.ZoomAt(domain.Point{}, factor, domain.Point{})
		return
	}

	center := bounds.Size.Center()
	c.viewport = c.viewport.ZoomAt(center, factor, center)
}

func (c *InputController) handlePointerDown(ev *port.Event) {
	if c.viewport.Scale <= 1 {
		return
	}

	c.drag = &DragSession{Anchor: ev.Position.Sub(c.viewport.Translation)}
}

func (c *InputController) handlePointerMove(ev *port.Event) {
	if c.drag == nil {
		return
	}

	target := ev.Position.Sub(c.drag.Anchor)
	c.viewport = c.viewport.PanBy(target.Sub(c.viewport.Translation))
}

func (c *InputController) handlePointerUp(_ *port.Event) {
	c.drag = nil
}

func (c *InputController) handleWheel(ev *port.Event) {
	ev.PreventDefault()

	if ev.DeltaY == 0 {
		return
	}

	bounds, ok := c.geometry.ContainerBounds()
	if !ok {
		return
	}

	factor := WheelEnlargeFactor
	if ev.DeltaY > 0 {
		factor = WheelShrinkFactor
	}

	c.viewport = c.viewport.ZoomAt(bounds.Local(ev.Position), factor, bounds.Size.Center())
}

func (c *InputController) handleKey(ev *port.Event) {
	switch ev.Key {
	case "Escape":
		c.drag = nil
		if c.onClose != nil {
			c.onClose()
		}
	case "+", "=":
		ev.PreventDefault()
		c.ZoomIn()
	case "-":
		ev.PreventDefault()
		c.ZoomOut()
	case "0":
		ev.PreventDefault()
		c.Reset()
	case "f", "F":
		ev.PreventDefault()
		if err := c.Fit(); err != nil {
			log.Debug().Err(err).Msg("fit skipped")
		}
	}
}
