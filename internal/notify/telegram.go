package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Notifier шлёт дайджест "к возврату сегодня" в админский чат.
// Вызывается только по запросу администратора, фонового таймера нет.
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Notifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

// SendDueDigest отправляет список книг к возврату на указанную дату
func (n *Notifier) SendDueDigest(ctx context.Context, day time.Time, due []*model.DueSummary) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Возвраты на %s\n\n", day.Format("2006-01-02"))

	if len(due) == 0 {
		sb.WriteString("Сегодня возвратов нет.")
	}
	for _, item := range due {
		fmt.Fprintf(&sb, "• %s — %s (ISBN %s), заявка #%d\n",
			item.BookTitle, item.MemberName, item.ISBN, item.RequestID)
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   sb.String(),
	})
	if err != nil {
		return fmt.Errorf("send due digest: %w", err)
	}

	n.logger.Info("Due digest sent",
		zap.Int64("chat_id", n.chatID),
		zap.Int("items", len(due)),
	)

	return nil
}
