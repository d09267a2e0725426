package window

import (
	"figview/internal/core/domain"
	"figview/internal/core/domain/viewer"
)

const (
	toolbarHeight = 32
	buttonWidth   = 44
	buttonGap     = 4
	buttonPad     = 4
	// ebitenutil.DebugPrint glyph size.
	glyphWidth  = 6
	glyphHeight = 16
)

type button struct {
	action string
	label  string
	bounds domain.Rect
}

// layoutButtons right-aligns the toolbar actions in the strip at the top of the window.
func layoutButtons(actions []viewer.Action, width float64) []button {
	buttons := make([]button, 0, len(actions))

	x := width - buttonPad - float64(len(actions))*(buttonWidth+buttonGap) + buttonGap
	for _, a := range actions {
		buttons = append(buttons, button{
			action: a.Name,
			label:  a.Label,
			bounds: domain.Rect{
				Min:  domain.Point{X: x, Y: buttonPad},
				Size: domain.Size{W: buttonWidth, H: toolbarHeight - 2*buttonPad},
			},
		})
		x += buttonWidth + buttonGap
	}

	return buttons
}

func hitButton(buttons []button, p domain.Point) (string, bool) {
	for _, b := range buttons {
		if b.bounds.Contains(p) {
			return b.action, true
		}
	}

	return "", false
}

// containerRect is everything below the toolbar strip.
func containerRect(width, height int) domain.Rect {
	h := float64(height) - toolbarHeight
	if h < 0 {
		h = 0
	}

	return domain.Rect{
		Min:  domain.Point{Y: toolbarHeight},
		Size: domain.Size{W: float64(width), H: h},
	}
}
