package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"spotted-backend/internal/config"
	"spotted-backend/internal/models"
)

// TelegramNotifier pings the moderation chat whenever a spotted lands in
// the pending queue, so moderators don't have to poll the dashboard.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier creates the notifier, or (nil, nil) when it is
// disabled in config.
func NewTelegramNotifier(cfg *config.Config, logger *zap.Logger) (*TelegramNotifier, error) {
	if !cfg.Notifier.Enabled || cfg.Notifier.TelegramBotToken == "" {
		logger.Info("Telegram notifier is disabled (notifier.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Notifier.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram notifier authorized", zap.String("username", botAPI.Self.UserName))

	return &TelegramNotifier{
		api:    botAPI,
		chatID: cfg.Notifier.TelegramChatID,
		logger: logger,
	}, nil
}

// NotifyPending sends a moderation-queue message. Failures are logged and
// swallowed: notification is best-effort and must never fail the triage
// request that triggered it.
func (n *TelegramNotifier) NotifyPending(ctx context.Context, s *models.Spotted) {
	if n == nil {
		return
	}

	text := fmt.Sprintf("Novo spotted aguardando moderação (#%d)\n\n%s\n\nSugestão: %s (%.0f%%)",
		s.ID, s.Message, s.Suggestion, s.Confidence*100)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send moderation notification",
			zap.Int64("spotted_id", s.ID),
			zap.Error(err))
	}
}
