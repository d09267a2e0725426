package sender

import (
	"bytes"
	"context"
	"errors"
	"figview/internal/core/domain"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func TestTelegramSharer_Share(t *testing.T) {
	jpeg := domain.GeneratedImage{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}

	tests := []struct {
		name      string
		image     domain.GeneratedImage
		caption   string
		setupMock func(mb *MockBot)
		wantErr   bool
		wantCalls int
	}{
		{
			name:    "uploads photo",
			image:   jpeg,
			caption: "cat.jpg",
			setupMock: func(mb *MockBot) {
				mb.On("SendPhoto", mock.Anything, mock.MatchedBy(func(params *bot.SendPhotoParams) bool {
					upload, ok := params.Photo.(*models.InputFileUpload)
					if !ok {
						return false
					}
					data, ok := upload.Data.(*bytes.Reader)
					return ok && data.Size() == int64(len("jpeg-bytes")) &&
						params.ChatID == int64(42) &&
						params.Caption == "cat.jpg" &&
						upload.Filename == "figure.jpg"
				})).
					Return(&models.Message{ID: 7}, nil).
					Once()
			},
			wantCalls: 1,
		},
		{
			name:    "long caption is cut",
			image:   jpeg,
			caption: strings.Repeat("x", TelegramCaptionLimit+50),
			setupMock: func(mb *MockBot) {
				mb.On("SendPhoto", mock.Anything, mock.MatchedBy(func(params *bot.SendPhotoParams) bool {
					return len(params.Caption) == TelegramCaptionLimit
				})).
					Return(&models.Message{ID: 8}, nil).
					Once()
			},
			wantCalls: 1,
		},
		{
			name:    "send fails",
			image:   jpeg,
			caption: "x",
			setupMock: func(mb *MockBot) {
				mb.On("SendPhoto", mock.Anything, mock.Anything).Return(nil, errors.New("chat not found")).Once()
			},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "text result is refused",
			image:     domain.GeneratedImage{Text: "{}"},
			setupMock: func(*MockBot) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := new(MockBot)
			tt.setupMock(mb)

			err := NewTelegramSharer(mb, 42).Share(t.Context(), tt.image, tt.caption)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			mb.AssertNumberOfCalls(t, "SendPhoto", tt.wantCalls)
			mb.AssertExpectations(t)
		})
	}
}

func TestTelegramSharer_ShareCutsCaptionOnRunes(t *testing.T) {
	mb := new(MockBot)

	var sent string
	mb.On("SendPhoto", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*bot.SendPhotoParams).Caption
		}).
		Return(&models.Message{ID: 9}, nil).
		Once()

	caption := strings.Repeat("ü", TelegramCaptionLimit+1)
	err := NewTelegramSharer(mb, 42).Share(t.Context(), domain.GeneratedImage{Data: []byte("png")}, caption)

	require.NoError(t, err)
	assert.Equal(t, TelegramCaptionLimit, len([]rune(sent)))
	assert.True(t, strings.HasPrefix(caption, sent))
}
