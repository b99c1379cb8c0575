package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"
)

// Critical-alert events pushed to the operations Telegram channel and the
// email digest; the rest of the event stream stays on Kafka and WebSocket.
var criticalEvents = map[string]bool{
	EventCriticalAlerts:    true,
	EventHighRiskEquipment: true,
}

// TelegramSink pushes critical events to a fixed operations chat.
type TelegramSink struct {
	bot     *bot.Bot
	chatID  int64
	limiter *rate.Limiter
}

func NewTelegramSink(token string, chatID int64, ratePerSecond int) (*TelegramSink, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramSink{
		bot:     b,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
	}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, event string, payload []byte) error {
	if !criticalEvents[event] {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   fmt.Sprintf("[%s] %s", event, payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
