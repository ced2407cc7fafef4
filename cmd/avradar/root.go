package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/amishk599/avradar/internal/adapter"
	"github.com/amishk599/avradar/internal/config"
	"github.com/amishk599/avradar/internal/filter"
	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/notifier"
	"github.com/amishk599/avradar/internal/pipeline"
	"github.com/amishk599/avradar/internal/rank"
	"github.com/amishk599/avradar/internal/ratelimit"
	"github.com/amishk599/avradar/internal/scheduler"
	"github.com/amishk599/avradar/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "avradar",
	Short: "Aviation job radar for Singapore",
	Long: "avradar gathers entry-level aviation and project roles in Singapore from job boards " +
		"and career portals, ranks them, and pushes digests to Telegram subscribers.",
	// Default to `start` so that `avradar` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().Bool("dry-run", false, "keep subscriptions in memory only")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > AVRADAR_CONFIG env var > "./config.yaml".
// A missing ./config.yaml falls back to the built-in defaults.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	path, explicit := config.ResolvePath(path)
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Info("no config file found, using built-in defaults", "path", path)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

// newLogger is used directly by commands whose stdout carries output.
func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// formatOptions derives the digest rendering options from config.
func formatOptions(cfg *config.Config) notifier.FormatOptions {
	labels := make([]string, 0, len(cfg.Schedule.Hours))
	for _, h := range cfg.Schedule.Hours {
		labels = append(labels, scheduler.SlotLabel(h))
	}
	return notifier.FormatOptions{
		Location:  cfg.Timezone,
		ZoneLabel: cfg.ZoneLabel,
		Schedule:  labels,
	}
}

// buildSources creates one adapter per enabled source, sharing a single
// HTTP client and a per-source pacer.
// linkedInPreFilter drops senior titles before scoring, using the same
// keywords as the seniority penalty. It is nil when the option is off.
func linkedInPreFilter(cfg *config.Config) model.JobFilter {
	if !cfg.Sources.LinkedIn.ExcludeSenior {
		return nil
	}
	return filter.NewSeniorityFilter(cfg.Scoring.Seniority.Keywords)
}

func buildSources(cfg *config.Config, logger *slog.Logger) []model.Source {
	httpClient := adapter.NewHTTPClient(cfg.HTTP.Timeout)
	deps := adapter.Deps{
		Transport: adapter.NewTransport(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.AcceptLanguage),
		Pacer: ratelimit.NewSourcePacer(time.Second, map[string]time.Duration{
			adapter.MCFSourceName:      cfg.Sources.MCF.Pause,
			adapter.IndeedSourceName:   cfg.Sources.Indeed.Pause,
			adapter.LinkedInSourceName: cfg.Sources.LinkedIn.Pause,
			adapter.PortalsSourceName:  cfg.Sources.Portals.Pause,
		}),
		Logger: logger,
	}

	var sources []model.Source
	src := cfg.Sources

	if src.MCF.Enabled {
		sources = append(sources, adapter.NewMCFAdapter(adapter.MCFConfig{
			BaseURL:  src.MCF.BaseURL,
			Terms:    src.MCF.ActiveTerms(),
			PageSize: src.MCF.PageSize,
		}, deps))
		logger.Debug("registered source", "source", adapter.MCFSourceName, "terms", len(src.MCF.ActiveTerms()))
	}

	if src.Indeed.Enabled {
		sources = append(sources, adapter.NewIndeedAdapter(adapter.IndeedConfig{
			BaseURL:    src.Indeed.BaseURL,
			Terms:      src.Indeed.Terms,
			Location:   src.Indeed.Location,
			MaxPerTerm: src.Indeed.MaxPerTerm,
		}, deps))
		logger.Debug("registered source", "source", adapter.IndeedSourceName, "terms", len(src.Indeed.Terms))
	}

	if src.LinkedIn.Enabled {
		sources = append(sources, adapter.NewLinkedInAdapter(adapter.LinkedInConfig{
			BaseURL:    src.LinkedIn.BaseURL,
			Terms:      src.LinkedIn.Terms,
			Location:   src.LinkedIn.Location,
			MaxPerTerm: src.LinkedIn.MaxPerTerm,
			PreFilter:  linkedInPreFilter(cfg),
		}, deps))
		logger.Debug("registered source", "source", adapter.LinkedInSourceName, "terms", len(src.LinkedIn.Terms))
	}

	if src.Portals.Enabled && len(src.Portals.List) > 0 {
		portals := make([]adapter.Portal, 0, len(src.Portals.List))
		for _, p := range src.Portals.List {
			portals = append(portals, adapter.Portal{Name: p.Name, Company: p.Company, URL: p.URL})
		}
		sources = append(sources, adapter.NewPortalAdapter(adapter.PortalConfig{
			Portals:        portals,
			MaxPerPortal:   src.Portals.MaxPerPortal,
			RelevanceMatch: filter.NewTitleFilter(cfg.RelevanceKeywords, nil),
		}, deps))
		logger.Debug("registered source", "source", adapter.PortalsSourceName, "portals", len(portals))
	}

	return sources
}

// buildPipeline wires the sources into a fetch cycle. The scorer is returned
// as well so the browser can explain scores.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, *rank.Scorer, int) {
	sources := buildSources(cfg, logger)
	scorer := rank.NewScorer(cfg.Scoring)
	p := pipeline.New(
		pipeline.NewAggregator(sources, logger),
		scorer,
		pipeline.Options{
			MaxResults:      cfg.Pipeline.MaxResults,
			DropNonPositive: cfg.Pipeline.DropNonPositive,
		},
		logger,
	)
	return p, scorer, len(sources)
}

// newTelegramClient builds a Bot API client whose HTTP timeout outlasts the
// long-poll wait.
func newTelegramClient(cfg *config.Config, logger *slog.Logger) *telegram.Client {
	httpClient := &http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second}
	return telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.Token, httpClient, logger)
}

// setupNotifier returns the notifier for scheduled pushes. subscribers is only
// consulted for the telegram type.
func setupNotifier(cfg *config.Config, subscribers notifier.SubscriberLister, logger *slog.Logger) (model.Notifier, error) {
	opts := formatOptions(cfg)
	switch cfg.Notification.Type {
	case config.NotifyTelegram:
		if err := cfg.RequireTelegram(); err != nil {
			return nil, err
		}
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(newTelegramClient(cfg, logger), subscribers, opts, logger), nil
	case config.NotifySlack:
		logger.Info("using slack notifier")
		httpClient := &http.Client{Timeout: 30 * time.Second}
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, opts, logger), nil
	case config.NotifyLog:
		return notifier.NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unsupported notification type %q", cfg.Notification.Type)
	}
}
