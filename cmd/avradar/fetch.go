package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amishk599/avradar/internal/config"
	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/notifier"
	"github.com/amishk599/avradar/internal/pipeline"
	"github.com/amishk599/avradar/internal/store"
	"github.com/spf13/cobra"
)

var (
	fetchSend   bool
	fetchFormat string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch cycle and print the digest",
	Long:  "One-shot cycle: fetches every enabled source, ranks the results and prints them. With --send the digest is also pushed through the configured notifier.",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchSend, "send", false, "push the digest to subscribers")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "table", "output format: table or markdown")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchFormat != "table" && fetchFormat != "markdown" {
		return fmt.Errorf("unknown format %q (want table or markdown)", fetchFormat)
	}

	// stdout carries the digest, so logs go to stderr.
	logger := newLogger(os.Stderr, debug)

	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _, _ := buildPipeline(cfg, logger)
	res := p.Run(ctx)
	d := model.Digest{Jobs: res.Jobs, GeneratedAt: time.Now()}

	out := cmd.OutOrStdout()
	switch fetchFormat {
	case "markdown":
		for _, msg := range notifier.FormatDigest(d, formatOptions(cfg)) {
			fmt.Fprintln(out, msg)
			fmt.Fprintln(out)
		}
	default:
		printJobTable(out, res)
	}

	if !fetchSend {
		return nil
	}

	var subs notifier.SubscriberLister
	if cfg.Notification.Type == config.NotifyTelegram {
		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer sqlStore.Close()
		subs = sqlStore
	}
	n, err := setupNotifier(cfg, subs, logger)
	if err != nil {
		return err
	}
	if err := n.Notify(ctx, d); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	logger.Info("digest sent", "jobs", len(d.Jobs), "notification", cfg.Notification.Type)
	return nil
}

func printJobTable(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "%-3s %-5s %-16s %-45s %s\n", "#", "Score", "Source", "Title", "Company")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for i, j := range res.Jobs {
		fmt.Fprintf(w, "%-3d %-5d %-16s %-45s %s\n", i+1, j.Score, clip(j.Source, 16), clip(j.Title, 45), clip(j.Company, 30))
	}
	fmt.Fprintln(w)

	for _, s := range res.Sources {
		switch {
		case !s.OK():
			fmt.Fprintf(w, "  %-16s failed: %v\n", s.Source, s.Err)
		case len(s.Failures) > 0:
			fmt.Fprintf(w, "  %-16s %d jobs, %d failed term(s)\n", s.Source, len(s.Jobs), len(s.Failures))
		default:
			fmt.Fprintf(w, "  %-16s %d jobs\n", s.Source, len(s.Jobs))
		}
	}
	fmt.Fprintf(w, "\nFetched %d, unique %d, ranked %d in %s\n",
		res.Fetched, res.Unique, len(res.Jobs), res.Duration.Round(10*time.Millisecond))
}

// clip shortens s to at most n runes, marking the cut with "…".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
