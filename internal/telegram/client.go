package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/retry"
)

// DefaultAPIBaseURL is the public Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// Update is one incoming event from getUpdates. Only messages are consumed.
type Update struct {
	UpdateID int64
	Message  *Message
}

type Message struct {
	MessageID int64
	Chat      Chat
	From      *User
	Text      string
}

type Chat struct {
	ID   int64
	Type string
}

type User struct {
	ID       int64
	Username string
}

// Client wraps the Bot API library with context-aware calls, retried
// delivery and errors mapped to *model.HTTPError. The bot token is redacted
// from returned errors.
type Client struct {
	api    *tgbotapi.BotAPI
	token  string
	policy retry.Policy
	logger *slog.Logger
}

// NewClient creates a Bot API client. An empty baseURL means DefaultAPIBaseURL.
// No request is made until the first call.
func NewClient(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	api :=&tgbotapi.BotAPI{Token: token, Client: httpClient, Buffer: 100}
	api.SetAPIEndpoint(endpoint(baseURL))
	return &Client{
		api:    api,
		token:  token,
		policy: retry.DefaultPolicy(),
		logger: logger,
	}
}

func endpoint(baseURL string) string {
	if baseURL == "" {
		return tgbotapi.APIEndpoint
	}
	return strings.TrimRight(baseURL, "/") + "/bot%s/%s"
}

// SetRetryPolicy replaces the delivery retry policy used by SendMessage.
func (c *Client) SetRetryPolicy(p retry.Policy) {
	c.policy = p
}

// SendMessage delivers a MarkdownV2 message with link previews disabled.
// Rate limits and transient failures are retried.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := retry.Do(ctx, c.policy, c.logger, func(ctx context.Context) (tgbotapi.Message, error) {
		sent, err := await(ctx, func() (tgbotapi.Message, error) { return c.api.Send(msg) })
		return sent, c.mapError("sendMessage", err)
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// GetUpdates long-polls for updates after offset, waiting up to timeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = int(timeout / time.Second)
	cfg.AllowedUpdates = []string{"message"}

	raw, err := await(ctx, func() ([]tgbotapi.Update, error) { return c.api.GetUpdates(cfg) })
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", c.mapError("getUpdates", err))
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, fromAPI(u))
	}
	return updates, nil
}

// await runs a library call that takes no context and returns as soon as ctx
// is done. An abandoned call finishes within the HTTP client timeout.
func await[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := call()
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// mapError turns API rejections into *model.HTTPError so retry can classify
// them, and strips the token from transport errors.
func (c *Client) mapError(method string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		httpErr := &model.HTTPError{StatusCode: apiErr.Code, Err: fmt.Errorf("%s: %s", method, apiErr.Message)}
		if apiErr.RetryAfter > 0 {
			httpErr.RetryAfter = time.Duration(apiErr.RetryAfter) * time.Second
		}
		return httpErr
	}

	var urlErr *url.Error
	if c.token != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, c.token, "<redacted>")
	}
	return fmt.Errorf("%s: %w", method, err)
}

func fromAPI(u tgbotapi.Update) Update {
	out := Update{UpdateID: int64(u.UpdateID)}
	m := u.Message
	if m == nil {
		return out
	}

	msg := &Message{MessageID: int64(m.MessageID), Text: m.Text}
	if m.Chat != nil {
		msg.Chat = Chat{ID: m.Chat.ID, Type: m.Chat.Type}
	}
	if m.From != nil {
		msg.From = &User{ID: m.From.ID, Username: m.From.UserName}
	}
	out.Message = msg
	return out
}
