package sender

import (
	"bytes"
	"context"
	"errors"
	"figview/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TelegramCaptionLimit is the caption limit Telegram enforces on photos.
const TelegramCaptionLimit = 1024

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// TelegramSharer posts generated images to a single configured chat.
type TelegramSharer struct {
	bot    TelegramBot
	chatID int64
}

func NewTelegramSharer(bot TelegramBot, chatID int64) *TelegramSharer {
	return &TelegramSharer{bot: bot, chatID: chatID}
}

func (s *TelegramSharer) Share(ctx context.Context, image domain.GeneratedImage, caption string) error {
	if !image.IsImage() {
		return errors.New("nothing to share: result has no image data")
	}

	if runes := []rune(caption); len(runes) > TelegramCaptionLimit {
		caption = string(runes[:TelegramCaptionLimit])
	}

	params := &bot.SendPhotoParams{
		ChatID:  s.chatID,
		Caption: caption,
		Photo: &models.InputFileUpload{
			Filename: "figure" + image.Extension(),
			Data:     bytes.NewReader(image.Data),
		},
	}

	msg, err := s.bot.SendPhoto(ctx, params)
	if err != nil {
		log.Error().Err(err).Int64("chatID", s.chatID).Msg("failed to share photo")
		return err
	}

	if msg != nil {
		log.Debug().Int64("chatID", s.chatID).Int("messageID", msg.ID).Msg("shared photo")
	}

	return nil
}
