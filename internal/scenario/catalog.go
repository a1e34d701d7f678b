// internal/scenario/catalog.go
// Package scenario holds the fixed enumerations that describe a service desk
// scenario and the sampler that draws parameters from them.
package scenario

import (
	"errors"
	"slices"
)

// Resolution is the outcome the generated conversation should end with.
type Resolution string

const (
	ResolutionResolved   Resolution = "Resolved"
	ResolutionEscalated  Resolution = "Escalated"
	ResolutionUnresolved Resolution = "Unresolved"
)

// Sentiment is the customer's attitude throughout the conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Tone is the manner in which the agent speaks.
type Tone string

const (
	TonePolite  Tone = "Polite"
	ToneNeutral Tone = "Neutral"
	ToneRude    Tone = "Rude"
)

var defaultIssues = [...]string{
	"Unable to login to application",
	"Device not active",
	"Email not updating",
	"Upgrade link not working",
	"Unable to login to PC",
	"Multifactor authentication not working",
	"Account locked out and Session hanging",
}

var defaultRules = [...]string{
	"Call Greeting",
	"Did the agent actively listen to the customer and helped ?",
	"Did the agent paraphrase the issue ?",
	"Did the agent Provide an assurance statement ?",
	"Did the agent conduct himself / herself in a courteous manner during the call?",
	"Did the agent provide complete and accurate information to the user ?",
	"Did the agent personalize the call?",
	"Did the agent avoid interrupting the caller ?",
	"Did the agent respond to the user accordingly ?",
	"Did the agent avoid dead air ?",
	"Hold Procedure Followed?",
	"Did the agent take control of the call?",
	"Empathy/Sympathy(if applicable)",
	"Was the agent professional throughout the call and took ownership of the issue ?",
	"Closing Script",
	"User Verification - First & Last Name, Phone ,email",
	"Did the agent probe effectively by using appropriate questions?",
	"Did the agent check previous case history to understand the case better?",
	"Did agent provide accurate/appropriate solution(information)?",
	"Did the agent create a ticket?",
	"Did the agent document all steps documented from diagnostic to troubleshooting?",
	"Did the agent seek user permission to connect and disconnect from remote session?",
	"Did the agent take user concurrence for ticket closure?",
	"Did the agent select appropriate case status (Closed,Open,Pending)?",
	"Did the agent offer ticket number to user?",
	"Did the agent inform about feedback link ?",
	"Volume/Rate of Speech",
	"Speech/Pronunciation",
	"Grammar & Vocabulary",
	"Sentence formation/Question Structure",
	"Speech Modulation/Intonation",
}

// Catalog bundles every enumeration a scenario is drawn from together with
// the rule checklist that is interpolated into each prompt. A Catalog is
// built once at startup and never mutated afterwards; accessors hand out
// copies.
type Catalog struct {
	issues      []string
	resolutions []Resolution
	sentiments  []Sentiment
	tones       []Tone
	rules       []string
}

// DefaultCatalog returns the built-in issue set and rule checklist.
func DefaultCatalog() Catalog {
	return Catalog{
		issues:      defaultIssues[:],
		resolutions: []Resolution{ResolutionResolved, ResolutionEscalated, ResolutionUnresolved},
		sentiments:  []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative},
		tones:       []Tone{TonePolite, ToneNeutral, ToneRude},
		rules:       defaultRules[:],
	}
}

// WithIssues returns a copy of c whose issue set is replaced by issues.
// An empty slice keeps the current set.
func (c Catalog) WithIssues(issues []string) (Catalog, error) {
	if len(issues) == 0 {
		return c, nil
	}
	for _, issue := range issues {
		if issue == "" {
			return c, errors.New("issue descriptions must not be empty")
		}
	}
	c.issues = slices.Clone(issues)
	return c, nil
}

// WithRules returns a copy of c whose rule checklist is replaced by rules.
// An empty slice keeps the current checklist.
func (c Catalog) WithRules(rules []string) (Catalog, error) {
	if len(rules) == 0 {
		return c, nil
	}
	for _, rule := range rules {
		if rule == "" {
			return c, errors.New("rules must not be empty")
		}
	}
	c.rules = slices.Clone(rules)
	return c, nil
}

// Issues returns a copy of the issue descriptions.
func (c Catalog) Issues() []string { return slices.Clone(c.issues) }

// Resolutions returns a copy of the resolution outcomes.
func (c Catalog) Resolutions() []Resolution { return slices.Clone(c.resolutions) }

// Sentiments returns a copy of the customer sentiments.
func (c Catalog) Sentiments() []Sentiment { return slices.Clone(c.sentiments) }

// Tones returns a copy of the agent tones.
func (c Catalog) Tones() []Tone { return slices.Clone(c.tones) }

// Rules returns a copy of the agent rules, in prompt order.
func (c Catalog) Rules() []string { return slices.Clone(c.rules) }
