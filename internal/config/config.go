package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/avradar/internal/filter"
	"github.com/amishk599/avradar/internal/rank"
)

const (
	// EnvPath names the environment variable that points at the config file.
	EnvPath = "AVRADAR_CONFIG"
	// DefaultPath is used when neither --config nor EnvPath is set.
	DefaultPath = "config.yaml"

	defaultTimezone    = "Asia/Singapore"
	defaultZoneLabel   = "SGT"
	defaultHTTPTimeout = 15 * time.Second
	defaultMaxResults  = 40
	defaultPollTimeout = 30 * time.Second
	defaultStorePath   = "avradar.db"

	// Telegram caps long-poll waits at 50 seconds.
	maxPollTimeout = 50 * time.Second
)

// Notification types.
const (
	NotifyTelegram = "telegram"
	NotifySlack    = "slack"
	NotifyLog      = "log"
)

// Config is the root configuration for the avradar bot.
type Config struct {
	Timezone          *time.Location
	ZoneLabel         string // short name shown after times, e.g. "SGT"
	Schedule          ScheduleConfig
	HTTP              HTTPConfig
	Pipeline          PipelineConfig
	Sources           SourcesConfig
	RelevanceKeywords []string // portal link heuristic
	Scoring           rank.Rules
	Notification      NotificationConfig
	Telegram          TelegramConfig
	Store             StoreConfig
}

// ScheduleConfig sets the daily push slots.
type ScheduleConfig struct {
	Hours      []int // hours of the day in Timezone
	RunOnStart bool
}

// HTTPConfig configures the shared outbound client.
type HTTPConfig struct {
	Timeout        time.Duration
	UserAgent      string // empty means the adapter default
	AcceptLanguage string
}

// PipelineConfig controls ranking and truncation.
type PipelineConfig struct {
	MaxResults      int
	DropNonPositive bool
}

// SourcesConfig holds one block per Source Adapter.
type SourcesConfig struct {
	MCF      MCFConfig
	Indeed   SearchConfig
	LinkedIn LinkedInConfig
	Portals  PortalsConfig
}

// MCFConfig configures the MyCareersFuture search API.
type MCFConfig struct {
	Enabled  bool
	BaseURL  string
	Terms    []string
	MaxTerms int // only the first MaxTerms terms are searched
	PageSize int
	Pause    time.Duration
}

// ActiveTerms returns the terms that will actually be searched.
func (c MCFConfig) ActiveTerms() []string {
	if c.MaxTerms > 0 && len(c.Terms) > c.MaxTerms {
		return c.Terms[:c.MaxTerms]
	}
	return c.Terms
}

// SearchConfig configures an HTML search page adapter.
type SearchConfig struct {
	Enabled    bool
	BaseURL    string
	Terms      []string
	Location   string
	MaxPerTerm int
	Pause      time.Duration
}

// LinkedInConfig adds the seniority pre-filter switch to SearchConfig.
type LinkedInConfig struct {
	SearchConfig
	ExcludeSenior bool
}

// PortalsConfig configures the company career portal adapter.
type PortalsConfig struct {
	Enabled      bool
	Pause        time.Duration
	MaxPerPortal int
	List         []PortalConfig
}

// PortalConfig describes a single careers page.
type PortalConfig struct {
	Name    string `yaml:"name"`
	Company string `yaml:"company"`
	URL     string `yaml:"url"`
}

// NotificationConfig controls which notifier scheduled pushes use.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "telegram", "slack" or "log"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// TelegramConfig configures the bot.
type TelegramConfig struct {
	Token       string // expanded from env var by Load
	OwnerChatID int64  // seeded as a subscriber at startup; 0 disables
	APIBaseURL  string
	PollTimeout time.Duration
}

// StoreConfig locates the subscriber database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Timezone          string             `yaml:"timezone"`
	ZoneLabel         string             `yaml:"zone_label"`
	Schedule          rawSchedule        `yaml:"schedule"`
	HTTP              rawHTTP            `yaml:"http"`
	Pipeline          rawPipeline        `yaml:"pipeline"`
	Sources           rawSources         `yaml:"sources"`
	RelevanceKeywords []string           `yaml:"relevance_keywords"`
	Scoring           rawScoring         `yaml:"scoring"`
	Notification      NotificationConfig `yaml:"notification"`
	Telegram          rawTelegram        `yaml:"telegram"`
	Store             StoreConfig        `yaml:"store"`
}

type rawSchedule struct {
	Hours      []int `yaml:"hours"`
	RunOnStart bool  `yaml:"run_on_start"`
}

type rawHTTP struct {
	Timeout        string `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
	AcceptLanguage string `yaml:"accept_language"`
}

type rawPipeline struct {
	MaxResults      int  `yaml:"max_results"`
	DropNonPositive bool `yaml:"drop_non_positive"`
}

type rawSources struct {
	MCF      rawSource  `yaml:"mycareersfuture"`
	Indeed   rawSource  `yaml:"indeed"`
	LinkedIn rawSource  `yaml:"linkedin"`
	Portals  rawPortals `yaml:"portals"`
}

type rawSource struct {
	Enabled       *bool    `yaml:"enabled"`
	BaseURL       string   `yaml:"base_url"`
	Terms         []string `yaml:"terms"`
	MaxTerms      int      `yaml:"max_terms"`
	PageSize      int      `yaml:"page_size"`
	Location      string   `yaml:"location"`
	MaxPerTerm    int      `yaml:"max_per_term"`
	Pause         string   `yaml:"pause"`
	ExcludeSenior *bool    `yaml:"exclude_senior"`
}

type rawPortals struct {
	Enabled      *bool          `yaml:"enabled"`
	Pause        string         `yaml:"pause"`
	MaxPerPortal int            `yaml:"max_per_portal"`
	List         []PortalConfig `yaml:"list"`
}

type rawScoring struct {
	HighValue    *rawKeywordSet `yaml:"high_value"`
	MediumValue  *rawKeywordSet `yaml:"medium_value"`
	EntryLevel   *rawKeywordSet `yaml:"entry_level"`
	FreshMarkers *rawKeywordSet `yaml:"fresh_markers"`
	Seniority    *rawKeywordSet `yaml:"seniority"`
}

// rawKeywordSet accepts "penalty" as a synonym for "weight" so the seniority
// block reads naturally.
type rawKeywordSet struct {
	Weight   *int     `yaml:"weight"`
	Penalty  *int     `yaml:"penalty"`
	Keywords []string `yaml:"keywords"`
}

type rawTelegram struct {
	Token       string `yaml:"token"`
	OwnerChatID string `yaml:"owner_chat_id"`
	APIBaseURL  string `yaml:"api_base_url"`
	PollTimeout string `yaml:"poll_timeout"`
}

// ResolvePath picks the config file: the flag value, then EnvPath, then
// DefaultPath. explicit is false only for the DefaultPath fallback, where a
// missing file means "use built-in defaults".
func ResolvePath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("built-in config is invalid: %v", err))
	}
	return cfg
}

// Parse builds a Config from YAML bytes. Environment variables are expanded
// before parsing and every omitted key takes its default.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	tzName := orDefault(raw.Timezone, defaultTimezone)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("parse timezone %q: %w", tzName, err)
	}

	httpTimeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	pollTimeout, err := parseDuration("telegram.poll_timeout", raw.Telegram.PollTimeout, defaultPollTimeout)
	if err != nil {
		return nil, err
	}

	var ownerChatID int64
	if s := strings.TrimSpace(raw.Telegram.OwnerChatID); s != "" {
		ownerChatID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse telegram.owner_chat_id %q: %w", s, err)
		}
	}

	sources, err := buildSources(raw.Sources)
	if err != nil {
		return nil, err
	}

	hours := raw.Schedule.Hours
	if len(hours) == 0 {
		hours = []int{9, 12, 15}
	}

	maxResults := raw.Pipeline.MaxResults
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}

	relevance := raw.RelevanceKeywords
	if len(relevance) == 0 {
		relevance = slices.Clone(filter.RelevanceKeywords)
	}

	notifyType := strings.ToLower(orDefault(raw.Notification.Type, NotifyTelegram))

	cfg := &Config{
		Timezone:  loc,
		ZoneLabel: orDefault(raw.ZoneLabel, defaultZoneLabel),
		Schedule: ScheduleConfig{
			Hours:      hours,
			RunOnStart: raw.Schedule.RunOnStart,
		},
		HTTP: HTTPConfig{
			Timeout:        httpTimeout,
			UserAgent:      raw.HTTP.UserAgent,
			AcceptLanguage: raw.HTTP.AcceptLanguage,
		},
		Pipeline: PipelineConfig{
			MaxResults:      maxResults,
			DropNonPositive: raw.Pipeline.DropNonPositive,
		},
		Sources:           sources,
		RelevanceKeywords: relevance,
		Scoring:           buildScoring(raw.Scoring),
		Notification: NotificationConfig{
			Type:       notifyType,
			WebhookURL: raw.Notification.WebhookURL,
		},
		Telegram: TelegramConfig{
			Token:       raw.Telegram.Token,
			OwnerChatID: ownerChatID,
			APIBaseURL:  raw.Telegram.APIBaseURL,
			PollTimeout: pollTimeout,
		},
		Store: StoreConfig{Path: orDefault(raw.Store.Path, defaultStorePath)},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildSources(raw rawSources) (SourcesConfig, error) {
	mcfPause, err := parseDuration("sources.mycareersfuture.pause", raw.MCF.Pause, time.Second)
	if err != nil {
		return SourcesConfig{}, err
	}
	indeedPause, err := parseDuration("sources.indeed.pause", raw.Indeed.Pause, 1500*time.Millisecond)
	if err != nil {
		return SourcesConfig{}, err
	}
	linkedInPause, err := parseDuration("sources.linkedin.pause", raw.LinkedIn.Pause, 1500*time.Millisecond)
	if err != nil {
		return SourcesConfig{}, err
	}
	portalPause, err := parseDuration("sources.portals.pause", raw.Portals.Pause, time.Second)
	if err != nil {
		return SourcesConfig{}, err
	}

	portals := raw.Portals.List
	if len(portals) == 0 {
		portals = defaultPortals()
	}
	for i := range portals {
		if portals[i].Company == "" {
			portals[i].Company = portals[i].Name
		}
	}

	maxTerms := raw.MCF.MaxTerms
	if maxTerms == 0 {
		maxTerms = 4
	}

	return SourcesConfig{
		MCF: MCFConfig{
			Enabled:  boolOr(raw.MCF.Enabled, true),
			BaseURL:  raw.MCF.BaseURL,
			Terms:    termsOr(raw.MCF.Terms, defaultMCFTerms),
			MaxTerms: maxTerms,
			PageSize: raw.MCF.PageSize,
			Pause:    mcfPause,
		},
		Indeed: SearchConfig{
			Enabled:    boolOr(raw.Indeed.Enabled, true),
			BaseURL:    raw.Indeed.BaseURL,
			Terms:      termsOr(raw.Indeed.Terms, defaultIndeedTerms),
			Location:   raw.Indeed.Location,
			MaxPerTerm: raw.Indeed.MaxPerTerm,
			Pause:      indeedPause,
		},
		LinkedIn: LinkedInConfig{
			SearchConfig: SearchConfig{
				Enabled:    boolOr(raw.LinkedIn.Enabled, true),
				BaseURL:    raw.LinkedIn.BaseURL,
				Terms:      termsOr(raw.LinkedIn.Terms, defaultLinkedInTerms),
				Location:   raw.LinkedIn.Location,
				MaxPerTerm: raw.LinkedIn.MaxPerTerm,
				Pause:      linkedInPause,
			},
			ExcludeSenior: boolOr(raw.LinkedIn.ExcludeSenior, true),
		},
		Portals: PortalsConfig{
			Enabled:      boolOr(raw.Portals.Enabled, true),
			Pause:        portalPause,
			MaxPerPortal: raw.Portals.MaxPerPortal,
			List:         portals,
		},
	}, nil
}

// buildScoring overlays configured keyword sets on the built-in rules. A set
// that is present replaces the default keywords only when it lists some.
func buildScoring(raw rawScoring) rank.Rules {
	rules := rank.DefaultRules()
	overlay(&rules.HighValue, raw.HighValue)
	overlay(&rules.MediumValue, raw.MediumValue)
	overlay(&rules.EntryLevel, raw.EntryLevel)
	overlay(&rules.FreshMarkers, raw.FreshMarkers)
	overlay(&rules.Seniority, raw.Seniority)
	return rules
}

func overlay(set *rank.KeywordSet, raw *rawKeywordSet) {
	if raw == nil {
		return
	}
	switch {
	case raw.Weight != nil:
		set.Weight = *raw.Weight
	case raw.Penalty != nil:
		set.Weight = *raw.Penalty
	}
	if len(raw.Keywords) > 0 {
		set.Keywords = raw.Keywords
	}
}

func validate(cfg *Config) error {
	if len(cfg.Schedule.Hours) == 0 {
		return fmt.Errorf("schedule.hours must list at least one hour")
	}
	for _, h := range cfg.Schedule.Hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("schedule.hours must be between 0 and 23, got %d", h)
		}
	}

	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Pipeline.MaxResults < 1 {
		return fmt.Errorf("pipeline.max_results must be at least 1, got %d", cfg.Pipeline.MaxResults)
	}

	s := cfg.Sources
	if !s.MCF.Enabled && !s.Indeed.Enabled && !s.LinkedIn.Enabled && !s.Portals.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	for _, p := range s.Portals.List {
		if p.Name == "" {
			return fmt.Errorf("sources.portals.list: every portal needs a name")
		}
		if !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
			return fmt.Errorf("sources.portals.list[%s]: url must be http(s), got %q", p.Name, p.URL)
		}
	}

	for name, set := range map[string]rank.KeywordSet{
		"high_value":    cfg.Scoring.HighValue,
		"medium_value":  cfg.Scoring.MediumValue,
		"entry_level":   cfg.Scoring.EntryLevel,
		"fresh_markers": cfg.Scoring.FreshMarkers,
		"seniority":     cfg.Scoring.Seniority,
	} {
		if set.Weight < 0 {
			return fmt.Errorf("scoring.%s weight must not be negative, got %d", name, set.Weight)
		}
	}

	switch cfg.Notification.Type {
	case NotifyTelegram, NotifyLog:
	case NotifySlack:
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be telegram, slack or log, got %q", cfg.Notification.Type)
	}

	if cfg.Telegram.PollTimeout <= 0 || cfg.Telegram.PollTimeout > maxPollTimeout {
		return fmt.Errorf("telegram.poll_timeout must be between 1s and %v, got %v", maxPollTimeout, cfg.Telegram.PollTimeout)
	}

	return nil
}

// RequireTelegram reports whether the bot can run: it needs a token.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (set TELEGRAM_BOT_TOKEN)")
	}
	return nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func termsOr(terms, def []string) []string {
	if len(terms) == 0 {
		return slices.Clone(def)
	}
	return terms
}
