package port

import (
	"context"
	"figview/internal/core/domain"
)

type ImageSubmitter interface {
	// Submit sends the image and prompt to the generation endpoint and returns its result.
	Submit(ctx context.Context, submission domain.Submission) (domain.GeneratedImage, error)
}

type EndpointInspector interface {
	Health(ctx context.Context) error
	Models(ctx context.Context) (domain.ModelInfo, error)
}
