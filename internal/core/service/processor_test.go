package service

import (
	"context"
	"errors"
	"figview/internal/core/domain"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct {
	result domain.GeneratedImage
	err    error
	calls  int
	last   domain.Submission
}

func (m *mockSubmitter) Submit(_ context.Context, submission domain.Submission) (domain.GeneratedImage, error) {
	m.calls++
	m.last = submission
	return m.result, m.err
}

type mockQuota struct {
	allowed      bool
	allowErr     error
	incrementErr error
	increments   int
}

func (m *mockQuota) Status(_ context.Context, userID string) (domain.QuotaStatus, error) {
	return domain.QuotaStatus{UserID: userID, Used: m.increments, Limit: 5}, nil
}

func (m *mockQuota) Allow(_ context.Context, _ string) (bool, error) {
	return m.allowed, m.allowErr
}

func (m *mockQuota) Increment(ctx context.Context, userID string) (domain.QuotaStatus, error) {
	if m.incrementErr != nil {
		return domain.QuotaStatus{}, m.incrementErr
	}
	m.increments++
	return m.Status(ctx, userID)
}

type mockSharer struct {
	err     error
	calls   int
	caption string
}

func (m *mockSharer) Share(_ context.Context, _ domain.GeneratedImage, caption string) error {
	m.calls++
	m.caption = caption
	return m.err
}

func validSubmission() domain.Submission {
	return domain.Submission{
		Filename:    "cat.jpg",
		ContentType: "image/jpeg",
		Image:       []byte{0xff, 0xd8, 0xff},
		Prompt:      domain.DefaultPrompt,
		UserID:      "abc",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *domain.Submission)
		wantErr error
	}{
		{name: "valid", modify: func(*domain.Submission) {}},
		{name: "pdf", modify: func(s *domain.Submission) { s.ContentType = "application/pdf" },
			wantErr: domain.ErrInvalidImage},
		{name: "no bytes", modify: func(s *domain.Submission) { s.Image = nil }, wantErr: domain.ErrInvalidImage},
		{name: "blank prompt", modify: func(s *domain.Submission) { s.Prompt = "  \n" },
			wantErr: domain.ErrEmptyPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.modify(&s)

			err := Validate(s)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProcess(t *testing.T) {
	image := domain.GeneratedImage{Data: []byte("png"), ContentType: "image/png"}

	tests := []struct {
		name           string
		submission     domain.Submission
		quota          *mockQuota
		submitter      *mockSubmitter
		sharer         *mockSharer
		wantErr        error
		wantAnyErr     bool
		wantSubmits    int
		wantIncrements int
		wantShares     int
	}{
		{
			name:           "success shares and counts",
			submission:     validSubmission(),
			quota:          &mockQuota{allowed: true},
			submitter:      &mockSubmitter{result: image},
			sharer:         &mockSharer{},
			wantSubmits:    1,
			wantIncrements: 1,
			wantShares:     1,
		},
		{
			name:           "share failure is not fatal",
			submission:     validSubmission(),
			quota:          &mockQuota{allowed: true},
			submitter:      &mockSubmitter{result: image},
			sharer:         &mockSharer{err: errors.New("chat not found")},
			wantSubmits:    1,
			wantIncrements: 1,
			wantShares:     1,
		},
		{
			name:           "text result is not shared",
			submission:     validSubmission(),
			quota:          &mockQuota{allowed: true},
			submitter:      &mockSubmitter{result: domain.GeneratedImage{Text: `{"ok":true}`}},
			sharer:         &mockSharer{},
			wantSubmits:    1,
			wantIncrements: 1,
		},
		{
			name:       "invalid image never reaches quota",
			submission: domain.Submission{ContentType: "text/plain", Image: []byte("x"), Prompt: "p"},
			quota:      &mockQuota{allowed: true},
			submitter:  &mockSubmitter{},
			sharer:     &mockSharer{},
			wantErr:    domain.ErrInvalidImage,
		},
		{
			name:       "quota exceeded",
			submission: validSubmission(),
			quota:      &mockQuota{allowed: false},
			submitter:  &mockSubmitter{},
			sharer:     &mockSharer{},
			wantErr:    domain.ErrQuotaExceeded,
		},
		{
			name:       "quota lookup error",
			submission: validSubmission(),
			quota:      &mockQuota{allowErr: errors.New("timeout")},
			submitter:  &mockSubmitter{},
			sharer:     &mockSharer{},
			wantAnyErr: true,
		},
		{
			name:        "endpoint error is not counted",
			submission:  validSubmission(),
			quota:       &mockQuota{allowed: true},
			submitter:   &mockSubmitter{err: errors.New("processing failed")},
			sharer:      &mockSharer{},
			wantAnyErr:  true,
			wantSubmits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(tt.submitter, tt.quota, tt.sharer, time.Second)

			result, err := p.Process(context.Background(), tt.submission)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.submitter.result, result.Image)
				assert.Equal(t, tt.wantIncrements, result.Quota.Used)
			}

			assert.Equal(t, tt.wantSubmits, tt.submitter.calls)
			assert.Equal(t, tt.wantIncrements, tt.quota.increments)
			assert.Equal(t, tt.wantShares, tt.sharer.calls)
		})
	}
}

func TestProcessWithoutSharer(t *testing.T) {
	submitter := &mockSubmitter{result: domain.GeneratedImage{Data: []byte("png")}}
	p := NewProcessor(submitter, &mockQuota{allowed: true}, nil, 0)

	_, err := p.Process(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, "cat.jpg", submitter.last.Filename)
}

func TestProcessIncrementFailureKeepsResult(t *testing.T) {
	submitter := &mockSubmitter{result: domain.GeneratedImage{Data: []byte("png")}}
	p := NewProcessor(submitter, &mockQuota{allowed: true, incrementErr: errors.New("disk")}, nil, 0)

	result, err := p.Process(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.True(t, result.Image.IsImage())
}

func TestProcessKeepsQuotaWhenLimitLookupFailsLater(t *testing.T) {
	store := newMockStore()
	lookup := &mockLookup{info: domain.RecordInfo{Limit: 5}, err: errors.New("connection reset"), failAfter: 1}
	quota := newTestQuota(store, lookup)
	submitter := &mockSubmitter{result: domain.GeneratedImage{Data: []byte("png"), ContentType: "image/png"}}

	result, err := NewProcessor(submitter, quota, nil, time.Second).Process(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, "abc", result.Quota.UserID)
	assert.Equal(t, 1, result.Quota.Used)
	assert.Equal(t, 5, result.Quota.Limit)
	assert.Equal(t, 4, result.Quota.Remaining())
	assert.JSONEq(t, `{"count":1,"date":"2025-09-03"}`, store.values["daily_usage_abc"])
}

type limitFailingQuota struct {
	mockQuota
}

func (m *limitFailingQuota) Increment(_ context.Context, userID string) (domain.QuotaStatus, error) {
	m.increments++
	return domain.QuotaStatus{UserID: userID, Used: m.increments},
		fmt.Errorf("%w: connection reset", domain.ErrLimitUnavailable)
}

func TestProcessReturnsRecordedUsageWhenRefreshFails(t *testing.T) {
	quota := &limitFailingQuota{mockQuota{allowed: true}}
	submitter := &mockSubmitter{result: domain.GeneratedImage{Data: []byte("png"), ContentType: "image/png"}}

	result, err := NewProcessor(submitter, quota, nil, time.Second).Process(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Quota.Used)
	assert.Equal(t, 1, quota.increments)
}
