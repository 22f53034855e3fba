package PublishSummary

import (
	"fmt"
	"strings"
)

// Format renders a summary result into Slack mrkdwn: a bold topic line,
// the summary paragraph, and a 1-indexed action-item list only when
// there are items.
func Format(topic, summary string, actionItems []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*Topic:* %s\n", escapeMrkdwn(topic)))
	b.WriteString("\n*Summary:*\n")
	b.WriteString(escapeMrkdwn(summary))
	b.WriteString("\n")

	if len(actionItems) > 0 {
		b.WriteString("\n*Action Items:*\n")
		for i, item := range actionItems {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, escapeMrkdwn(item)))
		}
	}

	return b.String()
}

// escapeMrkdwn escapes the three characters Slack requires as entities.
// Literal asterisks are left alone; Slack has no reliable escape for
// them and doubling corrupts more output than it protects.
func escapeMrkdwn(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}
