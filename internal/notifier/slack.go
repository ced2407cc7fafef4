package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/retry"
)

// slackJobsPerMessage keeps each payload well below Block Kit's 50-block cap.
const slackJobsPerMessage = 10

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts digests to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	policy     retry.Policy
	opts       FormatOptions
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts digests to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, opts FormatOptions, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		policy:     retry.DefaultPolicy(),
		opts:       opts,
		logger:     logger,
	}
}

// SetRetryPolicy replaces the delivery retry policy.
func (s *SlackNotifier) SetRetryPolicy(p retry.Policy) {
	s.policy = p
}

// Notify sends the digest as one or more Block Kit messages.
func (s *SlackNotifier) Notify(ctx context.Context, d model.Digest) error {
	payloads := buildPayloads(d, s.opts)
	for i, p := range payloads {
		if err := s.post(ctx, p); err != nil {
			return fmt.Errorf("slack message %d/%d: %w", i+1, len(payloads), err)
		}
	}
	s.logger.Info("slack digest delivered", "label", d.Label, "jobs", len(d.Jobs), "messages", len(payloads))
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	_, err = retry.Do(ctx, s.policy, s.logger, func(ctx context.Context) (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("post to slack: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return struct{}{}, &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        fmt.Errorf("slack returned %d", resp.StatusCode),
			}
		}
		return struct{}{}, nil
	})
	return err
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text,omitempty"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

// SendTestMessage sends a one-job digest to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, model.Digest{
		Label:       "Test",
		GeneratedAt: time.Now(),
		Jobs: []model.Job{{
			Source:   "avradar",
			Title:    "Test Notification - Integration Verified",
			Company:  "avradar",
			Location: model.DefaultLocation,
			URL:      "https://www.mycareersfuture.gov.sg",
			Snippet:  "Fresh graduates welcome",
			Score:    10,
			Scored:   true,
		}},
	})
}

func buildPayloads(d model.Digest, opts FormatOptions) []slackPayload {
	title := "✈️ Aviation & PM Job Listings"
	if d.Label != "" {
		title += " · " + d.Label
		if opts.ZoneLabel != "" {
			title += " " + opts.ZoneLabel
		}
	}

	header := slackBlock{Type: "header", Text: &slackText{Type: "plain_text", Text: title}}

	if len(d.Jobs) == 0 {
		return []slackPayload{{
			Text:   EmptyDigestText,
			Blocks: []slackBlock{header, {Type: "section", Text: &slackText{Type: "mrkdwn", Text: EmptyDigestText}}},
		}}
	}

	var payloads []slackPayload
	for start := 0; start < len(d.Jobs); start += slackJobsPerMessage {
		end := min(start+slackJobsPerMessage, len(d.Jobs))

		var blocks []slackBlock
		if start == 0 {
			blocks = append(blocks, header, slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("📊 %d jobs found", len(d.Jobs))},
			})
		}
		for _, j := range d.Jobs[start:end] {
			blocks = append(blocks, jobBlocks(j)...)
		}
		payloads = append(payloads, slackPayload{
			Text:   fmt.Sprintf("%s (%d–%d of %d)", title, start+1, end, len(d.Jobs)),
			Blocks: blocks,
		})
	}
	return payloads
}

func jobBlocks(j model.Job) []slackBlock {
	var details []string
	if badge := plainBadge(j.Snippet); badge != "" {
		details = append(details, badge)
	}
	if j.Company != "" {
		details = append(details, "🏢 "+slackEscape(j.Company))
	}
	if j.Location != "" {
		details = append(details, "📍 "+slackEscape(j.Location))
	}
	if j.Salary != "" {
		details = append(details, "💰 "+slackEscape(j.Salary))
	}

	text := fmt.Sprintf("%s *%s*  `%+d`", SourceIcon(j.Source), slackEscape(j.Title), j.Score)
	if len(details) > 0 {
		text += "\n" + strings.Join(details, "   ")
	}

	blocks := []slackBlock{{Type: "section", Text: &slackText{Type: "mrkdwn", Text: text}}}
	if j.URL != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "View Job"},
				URL:   j.URL,
				Style: "primary",
			}},
		})
	}
	return append(blocks, slackBlock{Type: "divider"})
}

// plainBadge is ExperienceBadge without MarkdownV2 escaping.
func plainBadge(snippet string) string {
	badge := ExperienceBadge(snippet)
	if strings.HasPrefix(badge, genericIcon+" ") {
		return genericIcon + " " + slackEscape(snippet)
	}
	return badge
}

var slackSpecial = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func slackEscape(s string) string {
	return slackSpecial.Replace(s)
}
