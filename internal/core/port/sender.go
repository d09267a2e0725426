package port

import (
	"context"
	"figview/internal/core/domain"
)

type ImageSharer interface {
	// Share publishes a generated image with a caption to wherever the sharer is configured to post.
	Share(ctx context.Context, image domain.GeneratedImage, caption string) error
}

type ImageSaver interface {
	// SaveAs copies the image at source to the download location under filename and returns the final path.
	SaveAs(ctx context.Context, source string, filename string) (string, error)
}
