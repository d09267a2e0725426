package viewer

import (
	"figview/internal/core/domain"
	"math"
)

// DefaultFitMargin is subtracted once from each container dimension.
const DefaultFitMargin = 40.0

// FitResult is the scale at which the whole image fits the container. It is never above 1.
type FitResult struct {
	Scale float64
}

// ComputeFit returns min((cw-margin)/iw, (ch-margin)/ih, 1). A zero image dimension means
// the image metadata has not arrived and the caller should try again once it has.
func ComputeFit(container, image domain.Size, margin float64) (FitResult, error) {
	if image.Empty() {
		return FitResult{}, domain.ErrImageNotReady
	}
	if container.Empty() {
		return FitResult{}, domain.ErrContainerUnavailable
	}

	scaleX := (container.W - margin) / image.W
	scaleY := (container.H - margin) / image.H

	return FitResult{Scale: math.Min(math.Min(scaleX, scaleY), 1)}, nil
}
