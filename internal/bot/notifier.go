package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers an HTML-formatted message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Telegram posts messages to a single chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", t.chatID, err)
	}
	return nil
}

var tagPattern = regexp.MustCompile(`</?[a-z]+>`)

// LogNotifier writes messages to a logger with markup stripped. It is used
// when no Telegram token is configured.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plain := tagPattern.ReplaceAllString(text, "")
	if n.Logger != nil {
		n.Logger.Printf("[info] digest:\n%s", plain)
		return nil
	}
	log.Printf("[info] digest:\n%s", plain)
	return nil
}
