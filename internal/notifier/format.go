package notifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amishk599/avradar/internal/model"
)

const (
	// MaxMessageRunes keeps every message under the Telegram limit of 4096.
	MaxMessageRunes = 4000

	// EmptyDigestText is sent when a cycle produced no jobs.
	EmptyDigestText = "No relevant jobs found at this time. Please check back later."

	genericIcon = "📋"

	// Per-field display caps. They keep any single entry far below
	// MaxMessageRunes even when every character needs escaping.
	maxTitleRunes = 120
	maxFieldRunes = 80
	maxLinkRunes  = 500
)

var separator = strings.Repeat("─", 30)

// sourceIcons maps well-known source names to an icon. Any other source
// renders with the generic icon.
var sourceIcons = map[string]string{
	"MyCareersFuture":                       "🇸🇬",
	"Indeed":                                "🔍",
	"LinkedIn":                              "💼",
	"Singapore Airlines":                    "✈️",
	"Changi Airport Group":                  "🛬",
	"SATS Ltd":                              "🛠",
	"ST Engineering":                        "⚙️",
	"Civil Aviation Authority of Singapore": "🏛",
}

// SourceIcon returns the icon for a source name.
func SourceIcon(source string) string {
	if icon, ok := sourceIcons[source]; ok {
		return icon
	}
	return genericIcon
}

// FormatOptions control the parts of a digest that depend on deployment.
type FormatOptions struct {
	Location  *time.Location // zone for the "Updated" line; nil means UTC
	ZoneLabel string         // short zone name shown after times, e.g. "SGT"
	Schedule  []string       // slot labels listed in the footer, e.g. "9:00 AM"
}

// FormatDigest renders a digest as Telegram MarkdownV2 messages, each at most
// MaxMessageRunes long. The header opens the first message and the footer
// closes the last. An empty digest yields a single notice.
func FormatDigest(d model.Digest, opts FormatOptions) []string {
	if len(d.Jobs) == 0 {
		return []string{EscapeMarkdown(EmptyDigestText)}
	}

	var messages []string
	current := formatHeader(d, opts) + "\n\n"

	for _, j := range d.Jobs {
		entry := FormatJob(j) + "\n\n" + separator + "\n\n"
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(entry) > MaxMessageRunes {
			messages = append(messages, strings.TrimSpace(current))
			current = entry
			continue
		}
		current += entry
	}
	if s := strings.TrimSpace(current); s != "" {
		messages = append(messages, s)
	}

	footer := formatFooter(opts)
	last := len(messages) - 1
	if utf8.RuneCountInString(messages[last])+utf8.RuneCountInString(footer) > MaxMessageRunes {
		messages = append(messages, strings.TrimSpace(footer))
	} else {
		messages[last] += footer
	}
	return messages
}

func formatHeader(d model.Digest, opts FormatOptions) string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	zone := opts.ZoneLabel
	if zone == "" {
		zone = loc.String()
	}
	generated := d.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("✈️ *Aviation & PM Job Listings*\n")
	if d.Label != "" {
		fmt.Fprintf(&b, "🔔 *%s Update*\n", EscapeMarkdown(d.Label+" "+zone))
	}
	b.WriteString("🎯 Fresh Grad & 1–2 Years Exp\n")
	fmt.Fprintf(&b, "🕐 Updated: %s\n", EscapeMarkdown(generated.In(loc).Format("02 Jan 2006, 03:04 PM")+" "+zone))
	fmt.Fprintf(&b, "📊 %d jobs found\n", len(d.Jobs))
	b.WriteString(separator)
	return b.String()
}

func formatFooter(opts FormatOptions) string {
	footer := "\n\n💡 *Tip:* Use /latest to refresh at any time\\."
	if slots := ScheduleText(opts); slots != "" {
		footer += "\nJobs auto\\-refresh daily at *" + EscapeMarkdown(slots) + "*\\."
	}
	return footer
}

// ScheduleText renders the push slots as plain text, e.g.
// "9:00 AM, 12:00 PM and 3:00 PM SGT". It is empty without a schedule.
func ScheduleText(opts FormatOptions) string {
	if len(opts.Schedule) == 0 {
		return ""
	}
	slots := joinList(opts.Schedule)
	if opts.ZoneLabel != "" {
		slots += " " + opts.ZoneLabel
	}
	return slots
}

// FormatJob renders a single job entry.
func FormatJob(j model.Job) string {
	lines := []string{fmt.Sprintf("%s *%s*", SourceIcon(j.Source), EscapeMarkdown(clip(j.Title, maxTitleRunes)))}
	if badge := ExperienceBadge(j.Snippet); badge != "" {
		lines = append(lines, badge)
	}
	if j.Company != "" {
		lines = append(lines, "🏢 "+EscapeMarkdown(clip(j.Company, maxFieldRunes)))
	}
	if j.Location != "" {
		lines = append(lines, "📍 "+EscapeMarkdown(clip(j.Location, maxFieldRunes)))
	}
	if j.Salary != "" {
		lines = append(lines, "💰 "+EscapeMarkdown(clip(j.Salary, maxFieldRunes)))
	}
	if skills := SkillsFor(j.Title); len(skills) > 0 {
		lines = append(lines, "🎓 *ATM Skills:* "+EscapeMarkdown(strings.Join(skills, ", ")))
	}
	// A link cannot be shortened, so an absurd one is left out.
	if j.URL != "" && utf8.RuneCountInString(j.URL) <= maxLinkRunes {
		lines = append(lines, fmt.Sprintf("🔗 [View Job](%s)", escapeLinkURL(j.URL)))
	}
	return strings.Join(lines, "\n")
}

var yearsPattern = regexp.MustCompile(`(\d+)\s*\+?\s*years?`)

// ExperienceBadge classifies a snippet into a short experience badge.
// Unrecognised snippets are shown as-is.
func ExperienceBadge(snippet string) string {
	if snippet == "" {
		return ""
	}
	s := strings.ToLower(snippet)
	switch {
	case strings.Contains(s, "fresh"):
		return "🟢 Fresh Grad Welcome"
	case strings.Contains(s, "entry"):
		return "🟢 Entry Level"
	}
	if m := yearsPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch {
		case n == 0:
			return "🟢 Fresh Grad Welcome"
		case n <= 2:
			return "🔵 1–2 Years Exp"
		}
	}
	return genericIcon + " " + EscapeMarkdown(clip(snippet, maxTitleRunes))
}

// clip cuts s to at most n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

var markdownSpecial = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
	"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// EscapeMarkdown escapes text for Telegram MarkdownV2.
func EscapeMarkdown(text string) string {
	return markdownSpecial.Replace(text)
}

var linkSpecial = strings.NewReplacer(`\`, `\\`, ")", `\)`)

// escapeLinkURL escapes the characters MarkdownV2 reserves inside (...).
func escapeLinkURL(u string) string {
	return linkSpecial.Replace(u)
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
