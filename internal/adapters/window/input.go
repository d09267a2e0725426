package window

import (
	"figview/internal/core/domain"
	"figview/internal/core/port"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	keyEscape = "Escape"
	keyF11    = "F11"
)

// frameInput is the raw input polled once per frame.
type frameInput struct {
	mouse        domain.Point
	pressed      bool
	released     bool
	wheelY       float64
	chars        []rune
	escape       bool
	toggleScreen bool
}

func pollInput(chars []rune) frameInput {
	mx, my := ebiten.CursorPosition()
	_, wheelY := ebiten.Wheel()

	return frameInput{
		mouse:        domain.Point{X: float64(mx), Y: float64(my)},
		pressed:      inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		released:     inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		wheelY:       wheelY,
		chars:        ebiten.AppendInputChars(chars[:0]),
		escape:       inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		toggleScreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
	}
}

// events turns one frame of input into the events the hub dispatches, in the order a
// browser would raise them. last is the cursor position of the previous frame.
func (in frameInput) events(last domain.Point, hasLast bool) []*port.Event {
	var events []*port.Event

	if !hasLast || in.mouse != last {
		events = append(events, &port.Event{Kind: port.PointerMove, Position: in.mouse})
	}
	if in.pressed {
		events = append(events, &port.Event{Kind: port.PointerDown, Position: in.mouse})
	}
	if in.released {
		events = append(events, &port.Event{Kind: port.PointerUp, Position: in.mouse})
	}
	// ebiten reports scrolling up as positive.
	if in.wheelY != 0 {
		events = append(events, &port.Event{Kind: port.Wheel, Position: in.mouse, DeltaY: -in.wheelY})
	}

	for _, r := range in.chars {
		events = append(events, &port.Event{Kind: port.KeyDown, Position: in.mouse, Key: string(r)})
	}
	if in.escape {
		events = append(events, &port.Event{Kind: port.KeyDown, Position: in.mouse, Key: keyEscape})
	}
	if in.toggleScreen {
		events = append(events, &port.Event{Kind: port.KeyDown, Position: in.mouse, Key: keyF11})
	}

	return events
}
