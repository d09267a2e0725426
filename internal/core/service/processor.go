package service

import (
	"context"
	"errors"
	"figview/internal/core/domain"
	"figview/internal/core/port"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Result struct {
	Image domain.GeneratedImage
	Quota domain.QuotaStatus
}

type Processor struct {
	submitter port.ImageSubmitter
	quota     Quota
	sharer    port.ImageSharer
	timeout   time.Duration
}

// NewProcessor wires the upload flow. sharer may be nil when sharing is not configured.
func NewProcessor(submitter port.ImageSubmitter, quota Quota, sharer port.ImageSharer,
	timeout time.Duration) *Processor {
	return &Processor{
		submitter: submitter,
		quota:     quota,
		sharer:    sharer,
		timeout:   timeout,
	}
}

// Validate checks a submission without touching any state.
func Validate(submission domain.Submission) error {
	if !strings.HasPrefix(submission.ContentType, "image/") || len(submission.Image) == 0 {
		return domain.ErrInvalidImage
	}
	if strings.TrimSpace(submission.Prompt) == "" {
		return domain.ErrEmptyPrompt
	}

	return nil
}

// Process validates, checks the quota, submits and records the usage. The usage is only
// counted when the endpoint succeeded.
func (p *Processor) Process(ctx context.Context, submission domain.Submission) (Result, error) {
	l := log.With().
		Str("filename", submission.Filename).
		Str("contentType", submission.ContentType).
		Str("user", submission.UserID).
		Logger()

	if err := Validate(submission); err != nil {
		l.Warn().Err(err).Msg("rejecting submission")
		return Result{}, err
	}

	allowed, err := p.quota.Allow(ctx, submission.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("error checking quota: %w", err)
	}
	if !allowed {
		return Result{}, domain.ErrQuotaExceeded
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	l.Info().Int("bytes", len(submission.Image)).Msg("submitting image")

	image, err := p.submitter.Submit(ctx, submission)
	if err != nil {
		l.Error().Err(err).Msg("submission failed")
		return Result{}, fmt.Errorf("error processing image: %w", err)
	}

	// The result stands even when the count could not be stored.
	status, err := p.quota.Increment(ctx, submission.UserID)
	switch {
	case errors.Is(err, domain.ErrLimitUnavailable):
		l.Warn().Err(err).Msg("failed to refresh quota")
	case err != nil:
		l.Error().Err(err).Msg("failed to record usage")
	}

	if p.sharer != nil && image.IsImage() {
		caption := submission.Filename
		if err := p.sharer.Share(ctx, image, caption); err != nil {
			l.Warn().Err(err).Msg("failed to share result")
		}
	}

	l.Info().Bool("image", image.IsImage()).Int("used", status.Used).Msg("submission processed")

	return Result{Image: image, Quota: status}, nil
}
