// internal/prompt/prompt.go
// Package prompt renders the instructions sent to the language model for a
// single scenario.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mwiater/chatgen/internal/scenario"
)

// SystemMessage is sent as the system role on every request.
const SystemMessage = "You are an AI assistant who can generate service desk log."

const (
	// FollowInstruction asks the simulated agent to satisfy every rule.
	FollowInstruction = "strictly FOLLOW all rules"
	// ViolateInstruction asks the simulated agent to break a few rules. Which
	// ones is left to the model.
	ViolateInstruction = "VIOLATE 2-4 rules (e.g., no greeting, vague resolution, overuse of slang)"
)

const (
	SentimentLegend = "(Positive: enthusiastic; Neutral: factual; Negative: frustrated)"
	ToneLegend      = "(Polite: courteous; Neutral: straightforward; Rude: curt/dismissive)"
)

const template = `You are simulating a service desk scenario with 2 roles:
1. customer: raising complaint with %s tone %s.
2. agent: helping to resolve the issue with %s tone %s.

Generate a SINGLE full chat transcript (10-20 total messages, alternating customer/agent turns, starting with customer) for the issue: '%s'.
End until %s.
%s: %s

Format as: customer: message
agent: message
... (ONLY the chat text—no extra labels or explanations).
Keep concise: 150-250 words max (<400 tokens).`

// RuleInstruction returns the instruction fragment for the given mode.
func RuleInstruction(followRules bool) string {
	if followRules {
		return FollowInstruction
	}
	return ViolateInstruction
}

// Checklist renders rules as a single-quoted, comma-separated list.
func Checklist(rules []string) string {
	if len(rules) == 0 {
		return ""
	}
	return "'" + strings.Join(rules, "', '") + "'"
}

// Render builds the user prompt for p with the given rule checklist.
func Render(p scenario.Params, rules []string) string {
	return fmt.Sprintf(template,
		p.Sentiment, SentimentLegend,
		p.Tone, ToneLegend,
		p.Issue,
		p.Resolution,
		RuleInstruction(p.FollowRules), Checklist(rules),
	)
}
