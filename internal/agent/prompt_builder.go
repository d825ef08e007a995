package agent

import (
	"fmt"
	"strings"
	"time"

	"concierge/internal/personality"
	"concierge/internal/tools"
)

// buildSystemPrompt composes the per-turn system prompt from the personality
// summary, the tool catalog and the retrieved memory snippets
func buildSystemPrompt(summary personality.Summary, catalog []tools.Descriptor, memories []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s - Guest Concierge\n\n", summary.Name)
	fmt.Fprintf(&b, "You are %s, a %s for this property. Your communication style is %s; your current mood is %s.\n\n",
		summary.Name, summary.Role, summary.CommunicationStyle, summary.Mood)

	fmt.Fprintf(&b, "## Current Date\nToday is %s.\n\n", time.Now().Format("Monday, January 2, 2006"))

	b.WriteString("## Your Capabilities\n\nYou can call the following tools on the guest's behalf:\n\n")
	for _, d := range catalog {
		fmt.Fprintf(&b, "- **%s**: %s (%s)\n", d.Name, d.Description, d.HospitalityUse)
	}
	b.WriteString("\n")

	if len(memories) > 0 {
		b.WriteString("## What You Remember About This Guest\n\n")
		for _, m := range memories {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\n")
	}

	b.WriteString(`## Important Instructions

1. Act first: when a request maps to a tool, call the tool rather than asking clarifying questions.
2. Use remembered preferences to personalize suggestions, but never invent preferences you were not given.
3. After using tools, summarize the outcome for the guest in plain language.
4. If a tool fails, acknowledge it honestly and offer an alternative.
5. Keep replies concise and hospitable.
`)

	return b.String()
}
