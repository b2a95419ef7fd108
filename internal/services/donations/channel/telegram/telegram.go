// Package telegram delivers donation notifications as Telegram bot messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	"github.com/louisbranch/foodshare/internal/services/donations/notify"
)

// ErrDisabled is returned by New when no bot token is configured.
var ErrDisabled = errors.New("telegram channel disabled")

// Config configures the bot client.
type Config struct {
	BotToken string `env:"FOODSHARE_TELEGRAM_BOT_TOKEN"`
	// APIEndpoint is a format string taking the token and method.
	APIEndpoint string `env:"FOODSHARE_TELEGRAM_API_ENDPOINT"`
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Channel sends notifications to recipients with a linked Telegram chat.
type Channel struct {
	bot sender
}

// New connects to the Bot API and verifies the token.
func New(cfg Config) (*Channel, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, ErrDisabled
	}
	endpoint := strings.TrimSpace(cfg.APIEndpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeouts.ExternalDelivery})
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &Channel{bot: bot}, nil
}

// Name identifies the channel in logs.
func (c *Channel) Name() string {
	return "telegram"
}

// Deliver sends one message. Recipients without a chat id are skipped.
// Client errors other than rate limiting are permanent.
func (c *Channel) Deliver(ctx context.Context, delivery notify.Delivery) error {
	chatID := delivery.Recipient.TelegramChatID
	if chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, formatText(delivery))
	msg.DisableWebPagePreview = true
	if _, err := c.bot.Send(msg); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
			return backoff.Permanent(fmt.Errorf("telegram send to chat %d: %w", chatID, err))
		}
		return fmt.Errorf("telegram send to chat %d: %w", chatID, err)
	}
	return nil
}

func formatText(delivery notify.Delivery) string {
	title := strings.TrimSpace(delivery.Title)
	body := strings.TrimSpace(delivery.Body)
	if title == "" {
		return body
	}
	if body == "" {
		return title
	}
	return title + "\n\n" + body
}

var _ notify.Channel = (*Channel)(nil)
