package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/notifier"
	"github.com/amishk599/avradar/internal/telegram"
)

const defaultErrorPause = 3 * time.Second

// API is the subset of the Bot API the router needs.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// JobFetcher runs one fetch cycle for /latest.
type JobFetcher interface {
	FetchAllJobs(ctx context.Context) []model.Job
}

// Bot long-polls for commands and answers them. Each /latest request runs
// in its own goroutine so a slow fetch never blocks other chats.
type Bot struct {
	api         API
	store       model.SubscriberStore
	fetcher     JobFetcher
	opts        notifier.FormatOptions
	pollTimeout time.Duration
	errorPause  time.Duration
	now         func() time.Time
	logger      *slog.Logger

	wg sync.WaitGroup
}

// New creates a command router.
func New(api API, store model.SubscriberStore, fetcher JobFetcher, opts notifier.FormatOptions, pollTimeout time.Duration, logger *slog.Logger) *Bot {
	return &Bot{
		api:         api,
		store:       store,
		fetcher:     fetcher,
		opts:        opts,
		pollTimeout: pollTimeout,
		errorPause:  defaultErrorPause,
		now:         time.Now,
		logger:      logger,
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// /latest requests. It returns nil on graceful shutdown.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot polling for commands", "poll_timeout", b.pollTimeout)
	defer b.wg.Wait()

	var offset int64
	for {
		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if ctx.Err() != nil {
			b.logger.Info("shutting down bot")
			return nil
		}
		if err != nil {
			b.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				b.logger.Info("shutting down bot")
				return nil
			case <-time.After(b.errorPause):
			}
			continue
		}

		for _, u := range updates {
			offset = max(offset, u.UpdateID+1)
			b.handle(ctx, u)
		}
	}
}

func (b *Bot) handle(ctx context.Context, u telegram.Update) {
	if u.Message == nil {
		return
	}
	cmd, ok := parseCommand(u.Message.Text)
	if !ok {
		return
	}
	chatID := u.Message.Chat.ID
	b.logger.Debug("command received", "command", cmd, "chat_id", chatID)

	switch cmd {
	case "start", "help":
		b.start(ctx, chatID)
	case "subscribe":
		b.subscribe(ctx, chatID)
	case "unsubscribe":
		b.unsubscribe(ctx, chatID)
	case "status":
		b.status(ctx, chatID)
	case "latest":
		b.latest(ctx, chatID)
	}
}

// parseCommand extracts "latest" from "/latest@AvRadarBot now".
func parseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if cmd == "" {
		return "", false
	}
	return strings.ToLower(cmd), true
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.api.SendMessage(ctx, chatID, text); err != nil {
		b.logger.Warn("reply failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) start(ctx context.Context, chatID int64) {
	subscribed, err := b.store.Has(chatID)
	if err != nil {
		b.logger.Error("checking subscription", "chat_id", chatID, "error", err)
	}
	b.reply(ctx, chatID, welcomeText(b.opts, subscribed))
}

func (b *Bot) subscribe(ctx context.Context, chatID int64) {
	added, err := b.store.Add(chatID)
	if err != nil {
		b.logger.Error("adding subscriber", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, notifier.EscapeMarkdown(storeErrorText))
		return
	}
	if !added {
		b.reply(ctx, chatID, notifier.EscapeMarkdown("You are already subscribed! You will receive updates at "+b.scheduleText()+" daily."))
		return
	}
	b.logTotal("new subscriber", chatID)
	b.reply(ctx, chatID, "*Subscribed\\!*\n\n"+notifier.EscapeMarkdown(
		"You will now receive job listings every day at "+b.scheduleText()+".\n"+
			"Use /latest to fetch jobs right now, or /unsubscribe to stop anytime."))
}

func (b *Bot) unsubscribe(ctx context.Context, chatID int64) {
	removed, err := b.store.Remove(chatID)
	if err != nil {
		b.logger.Error("removing subscriber", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, notifier.EscapeMarkdown(storeErrorText))
		return
	}
	if !removed {
		b.reply(ctx, chatID, notifier.EscapeMarkdown("You are not currently subscribed."))
		return
	}
	b.logTotal("unsubscribed", chatID)
	b.reply(ctx, chatID, notifier.EscapeMarkdown(
		"Unsubscribed. You will not receive daily updates anymore.\n"+
			"Use /subscribe anytime to start again."))
}

func (b *Bot) status(ctx context.Context, chatID int64) {
	subscribed, err := b.store.Has(chatID)
	if err != nil {
		b.logger.Error("checking subscription", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, notifier.EscapeMarkdown(storeErrorText))
		return
	}
	if subscribed {
		b.reply(ctx, chatID, notifier.EscapeMarkdown("You are subscribed and will receive updates at "+b.scheduleText()+" daily."))
		return
	}
	b.reply(ctx, chatID, notifier.EscapeMarkdown("You are not subscribed. Use /subscribe to sign up."))
}

func (b *Bot) latest(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, notifier.EscapeMarkdown("Fetching latest jobs... this may take a moment."))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		jobs := b.fetcher.FetchAllJobs(ctx)
		if ctx.Err() != nil {
			return
		}
		d := model.Digest{Jobs: jobs, GeneratedAt: b.now()}
		for _, msg := range notifier.FormatDigest(d, b.opts) {
			if err := b.api.SendMessage(ctx, chatID, msg); err != nil {
				b.logger.Error("sending latest jobs", "chat_id", chatID, "error", err)
				b.reply(ctx, chatID, notifier.EscapeMarkdown("Error fetching jobs. Please try again later."))
				return
			}
		}
		b.logger.Info("served /latest", "chat_id", chatID, "jobs", len(jobs))
	}()
}

func (b *Bot) logTotal(msg string, chatID int64) {
	total, err := b.store.Count()
	if err != nil {
		b.logger.Info(msg, "chat_id", chatID)
		return
	}
	b.logger.Info(msg, "chat_id", chatID, "total", total)
}

func (b *Bot) scheduleText() string {
	if s := notifier.ScheduleText(b.opts); s != "" {
		return s
	}
	return "the scheduled times"
}
