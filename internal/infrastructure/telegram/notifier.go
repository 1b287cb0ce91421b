package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

// Notifier pushes a short digest of the notification to a Telegram chat.
// The full rendering lives in the email channel; this one only carries the
// urgency, counts and summaries.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier connects the bot; the token is validated against the API.
func NewNotifier(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{api: api, chatID: chatID, logger: logger}, nil
}

// Send posts the digest as one Markdown message.
func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	msg := tgbotapi.NewMessage(n.chatID, buildDigest(notification))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram digest: %w", err)
	}

	n.logger.Info("telegram digest sent", "urgency", notification.Urgency().String())
	return nil
}

func buildDigest(notification domain.Notification) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*[%s]* New Librus notifications\n\n", notification.Urgency().String()))

	for _, section := range notification.Sections {
		if !section.Result.Present() {
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s* (%d new)\n%s\n\n",
			section.Stream.Label(), len(section.Records), section.Result.Summary))
	}

	return strings.TrimSpace(sb.String())
}
