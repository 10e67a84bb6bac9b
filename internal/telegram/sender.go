package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lepinkainen/shamash/internal/ratelimit"
	"github.com/lepinkainen/shamash/internal/render"
)

// sendRate keeps well inside Telegram's global limit of 30 messages per second.
const sendRate = 20

// Sender delivers rendered messages to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, msg render.Message) error
}

// APISender sends through the Bot API with a global send rate limit.
type APISender struct {
	api     *tgbotapi.BotAPI
	limiter *ratelimit.Limiter
}

// NewAPISender creates a sender over api.
func NewAPISender(api *tgbotapi.BotAPI) *APISender {
	return &APISender{api: api, limiter: ratelimit.NewPerSecond("telegram", sendRate)}
}

// Send sends msg, in HTML mode when the message was rendered as HTML.
func (s *APISender) Send(ctx context.Context, chatID int64, msg render.Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}
	out.DisableWebPagePreview = true
	if _, err := s.api.Send(out); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}
