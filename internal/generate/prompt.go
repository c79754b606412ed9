package generate

import (
	"fmt"
	"strings"
)

const maxPromptTrends = 3

type promptInput struct {
	Niche    string
	Tone     string
	Samples  []string
	Trends   []string
	Headline string
}

// buildPrompt assembles the user message. A selected headline replaces the
// resolved trends as the only topic.
func buildPrompt(in promptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Niche: %s\n", in.Niche)
	fmt.Fprintf(&b, "Tone: %s\n", in.Tone)
	b.WriteString("Writing style samples:\n")
	b.WriteString(strings.Join(in.Samples, "\n"))
	b.WriteString("\n\n")

	switch {
	case in.Headline != "":
		b.WriteString("Selected trending topic:\n")
		fmt.Fprintf(&b, "• %s\n\n", in.Headline)
		b.WriteString("Write ONE short social post (≤280 chars) that combines the user's tone with the selected trending topic. Respond with only the post text.")
	case len(in.Trends) > 0:
		trends := in.Trends
		if len(trends) > maxPromptTrends {
			trends = trends[:maxPromptTrends]
		}
		b.WriteString("Fresh trending topics:\n")
		for _, t := range trends {
			fmt.Fprintf(&b, "• %s\n", t)
		}
		b.WriteString("\nWrite ONE short social post (≤280 chars) that combines the user's tone with ONE of the trending topics. Respond with only the post text.")
	default:
		b.WriteString("Write ONE short social post (≤280 chars) about the niche in the user's tone. Respond with only the post text.")
	}

	return b.String()
}
