package bot

import (
	"strings"

	"github.com/amishk599/avradar/internal/notifier"
)

const storeErrorText = "Something went wrong. Please try again later."

var commandList = []string{
	"/subscribe - Start receiving daily updates",
	"/unsubscribe - Stop receiving daily updates",
	"/latest - Fetch the latest job listings now",
	"/status - Check if you are subscribed",
	"/help - Show this message",
}

// welcomeText is the /start and /help reply, already MarkdownV2-escaped.
func welcomeText(opts notifier.FormatOptions, subscribed bool) string {
	intro := "Sends daily job listings"
	if s := notifier.ScheduleText(opts); s != "" {
		intro += " at " + s
	}
	intro += " for aviation, project management, and data analysis roles, " +
		"tailored for Air Transport Management graduates."

	status := "Use /subscribe to sign up for daily alerts."
	if subscribed {
		status = "You are already subscribed!"
	}

	var b strings.Builder
	b.WriteString("*Aviation and PM Job Bot*\n\n")
	b.WriteString(notifier.EscapeMarkdown(intro))
	b.WriteString("\n\n*Commands:*\n")
	b.WriteString(notifier.EscapeMarkdown(strings.Join(commandList, "\n")))
	b.WriteString("\n\n")
	b.WriteString(notifier.EscapeMarkdown(status))
	return b.String()
}
