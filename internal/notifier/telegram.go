package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/avradar/internal/model"
)

// MessageSender delivers one formatted message to one chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// SubscriberLister yields the chats that receive digests.
type SubscriberLister interface {
	List() ([]int64, error)
}

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier broadcasts digests to every subscribed chat.
type TelegramNotifier struct {
	sender      MessageSender
	subscribers SubscriberLister
	opts        FormatOptions
	logger      *slog.Logger
}

// NewTelegramNotifier returns a notifier that formats each digest once and
// sends it to every subscriber.
func NewTelegramNotifier(sender MessageSender, subscribers SubscriberLister, opts FormatOptions, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:      sender,
		subscribers: subscribers,
		opts:        opts,
		logger:      logger,
	}
}

// Notify sends the digest to all subscribers. A failing chat is logged and
// skipped; an error is returned only if every chat failed.
func (n *TelegramNotifier) Notify(ctx context.Context, d model.Digest) error {
	chats, err := n.subscribers.List()
	if err != nil {
		return fmt.Errorf("listing subscribers: %w", err)
	}
	if len(chats) == 0 {
		n.logger.Info("no subscribers, nothing to send")
		return nil
	}

	messages := FormatDigest(d, n.opts)

	failures := 0
	var lastErr error
	for _, chatID := range chats {
		if err := n.SendTo(ctx, chatID, messages); err != nil {
			n.logger.Warn("telegram delivery failed", "chat_id", chatID, "error", err)
			failures++
			lastErr = err
		}
	}

	if failures == len(chats) {
		return fmt.Errorf("all %d telegram deliveries failed: %w", failures, lastErr)
	}
	n.logger.Info("telegram digest delivered",
		"label", d.Label,
		"jobs", len(d.Jobs),
		"messages", len(messages),
		"sent", len(chats)-failures,
		"failed", failures,
	)
	return nil
}

// SendTo delivers pre-formatted messages to one chat in order, stopping at
// the first failure so the chat never receives a gap.
func (n *TelegramNotifier) SendTo(ctx context.Context, chatID int64, messages []string) error {
	for i, msg := range messages {
		if err := n.sender.SendMessage(ctx, chatID, msg); err != nil {
			return fmt.Errorf("message %d/%d: %w", i+1, len(messages), err)
		}
	}
	return nil
}
