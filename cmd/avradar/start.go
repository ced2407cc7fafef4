package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/avradar/internal/bot"
	"github.com/amishk599/avradar/internal/config"
	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/poller"
	"github.com/amishk599/avradar/internal/scheduler"
	"github.com/amishk599/avradar/internal/store"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot and the push scheduler",
	Long:  "Runs the Telegram bot and the daily digest scheduler; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().Bool("dry-run", false, "keep subscriptions in memory only")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireTelegram(); err != nil {
		logger.Error("cannot start bot", "error", err)
		os.Exit(1)
	}

	sched := formatOptions(cfg).Schedule
	logger.Info("config loaded",
		"timezone", cfg.Timezone.String(),
		"slots", sched,
		"notification", cfg.Notification.Type,
		"max_results", cfg.Pipeline.MaxResults,
	)

	var subs model.SubscriberStore
	if dryRun {
		logger.Info("dry-run mode enabled, subscriptions are kept in memory")
		subs = store.NewMemoryStore()
	} else {
		lock, err := store.AcquireLock(store.LockPath(cfg.Store.Path))
		if err != nil {
			if errors.Is(err, store.ErrLocked) {
				logger.Error("another avradar instance is already running", "store", cfg.Store.Path)
			} else {
				logger.Error("failed to acquire instance lock", "error", err)
			}
			os.Exit(1)
		}
		defer lock.Release()

		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer sqlStore.Close()
		subs = sqlStore
	}

	if owner := cfg.Telegram.OwnerChatID; owner != 0 {
		added, err := subs.Add(owner)
		if err != nil {
			return fmt.Errorf("seed owner chat: %w", err)
		}
		if added {
			logger.Info("owner chat subscribed", "chat_id", owner)
		}
	}

	p, _, sourceCount := buildPipeline(cfg, logger)
	if sourceCount == 0 {
		return errors.New("no sources to fetch from")
	}

	n, err := setupNotifier(cfg, subs, logger)
	if err != nil {
		return err
	}
	// Only Telegram has a subscriber-dependent audience.
	var counter poller.SubscriberCounter
	if cfg.Notification.Type == config.NotifyTelegram {
		counter = subs
	}
	dp := poller.NewDigestPoller(p, counter, n, logger)

	s := scheduler.NewScheduler(dp, cfg.Schedule.Hours, cfg.Timezone, cfg.Schedule.RunOnStart, logger)
	b := bot.New(newTelegramClient(cfg, logger), subs, p, formatOptions(cfg), cfg.Telegram.PollTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error { return s.Run(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("daemon stopped: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
