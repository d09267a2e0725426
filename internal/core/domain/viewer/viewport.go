// Package viewer holds the zoom/pan engine of the image viewer: the viewport value,
// the fit calculation, the input state machine and the shell that ties them to a host.
package viewer

import (
	"figview/internal/core/domain"
	"math"
)

const (
	MinScale = 0.1
	MaxScale = 5.0

	// ZoomStep is the factor applied by the zoom in/out shortcuts and toolbar buttons.
	ZoomStep = 1.2

	WheelShrinkFactor  = 0.9
	WheelEnlargeFactor = 1.1
)

// Viewport maps image pixels to container pixels. The image centre is drawn at
// containerCenter + Translation, and an image-local offset q (from the image centre)
// lands at containerCenter + Translation + Scale*q.
type Viewport struct {
	Scale       float64
	Translation domain.Point
}

// NewViewport returns the identity viewport.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// Percentage is the scale as a rounded percentage for the toolbar readout.
func (v Viewport) Percentage() int {
	return int(math.Round(v.Scale * 100))
}

// ZoomAt multiplies the scale by factor, clamped to [MinScale, MaxScale], keeping the
// image point under pointer fixed on screen.
func (v Viewport) ZoomAt(pointer domain.Point, factor float64, containerCenter domain.Point) Viewport {
	newScale := ClampScale(v.Scale * factor)
	if newScale == v.Scale {
		return v
	}

	// q = (pointer - center - t) / s must satisfy center + t' + s'*q = pointer.
	ratio := newScale / v.Scale
	offset := pointer.Sub(containerCenter)

	return Viewport{
		Scale:       newScale,
		Translation: offset.Sub(offset.Sub(v.Translation).Scale(ratio)),
	}
}

// PanBy moves the image by delta pixels. Panning is not bounded by the image edges.
func (v Viewport) PanBy(delta domain.Point) Viewport {
	return Viewport{Scale: v.Scale, Translation: v.Translation.Add(delta)}
}

// Reset returns to native size, centred.
func (v Viewport) Reset() Viewport {
	return NewViewport()
}

// ApplyFit centres the image at the fitted scale.
func (v Viewport) ApplyFit(fit FitResult) Viewport {
	return Viewport{Scale: ClampScale(fit.Scale)}
}

// ImageToScreen returns the container position of the image-local offset q.
func (v Viewport) ImageToScreen(q domain.Point, containerCenter domain.Point) domain.Point {
	return containerCenter.Add(v.Translation).Add(q.Scale(v.Scale))
}

// ScreenToImage is the inverse of ImageToScreen.
func (v Viewport) ScreenToImage(p domain.Point, containerCenter domain.Point) domain.Point {
	return p.Sub(containerCenter).Sub(v.Translation).Scale(1 / v.Scale)
}

// ClampScale restricts a scale to the viewport bounds.
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) || scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}
