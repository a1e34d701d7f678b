package scenario

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Contents(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c.Issues(), 7)
	assert.Len(t, c.Rules(), 31)
	assert.Equal(t, "Call Greeting", c.Rules()[0])
	assert.Equal(t, "Speech Modulation/Intonation", c.Rules()[30])
	assert.Equal(t, []Resolution{ResolutionResolved, ResolutionEscalated, ResolutionUnresolved}, c.Resolutions())
	assert.Equal(t, []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}, c.Sentiments())
	assert.Equal(t, []Tone{TonePolite, ToneNeutral, ToneRude}, c.Tones())
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	c := DefaultCatalog()
	issues := c.Issues()
	issues[0] = "tampered"
	rules := c.Rules()
	rules[0] = "tampered"
	c.Resolutions()[0] = Resolution("tampered")
	c.Sentiments()[0] = Sentiment("tampered")
	c.Tones()[0] = Tone("tampered")

	assert.NotEqual(t, Resolution("tampered"), c.Resolutions()[0])
	assert.NotEqual(t, Sentiment("tampered"), c.Sentiments()[0])
	assert.NotEqual(t, Tone("tampered"), c.Tones()[0])
	assert.Equal(t, "Unable to login to application", c.Issues()[0])
	assert.Equal(t, "Call Greeting", c.Rules()[0])
	assert.Equal(t, "Unable to login to application", DefaultCatalog().Issues()[0])
}

func TestCatalog_Overrides(t *testing.T) {
	c, err := DefaultCatalog().WithIssues([]string{"Printer on fire"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Printer on fire"}, c.Issues())

	c, err = c.WithRules(nil)
	require.NoError(t, err)
	assert.Len(t, c.Rules(), 31, "empty override keeps the checklist")

	_, err = c.WithIssues([]string{"ok", ""})
	assert.Error(t, err)
	_, err = c.WithRules([]string{""})
	assert.Error(t, err)
}

func TestSampler_FollowRulesByParity(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 50} {
		s := NewSeededSampler(DefaultCatalog(), 42)
		follow := 0
		for i := 0; i < n; i++ {
			p := s.Sample(i)
			assert.Equal(t, i%2 == 0, p.FollowRules, "iteration %d", i)
			if p.FollowRules {
				follow++
			}
		}
		assert.Equal(t, (n+1)/2, follow, "n=%d", n)
	}
}

func TestSampler_SameSeedSameSequence(t *testing.T) {
	a := NewSeededSampler(DefaultCatalog(), 7)
	b := NewSeededSampler(DefaultCatalog(), 7)
	for i := 0; i < 25; i++ {
		require.Equal(t, a.Sample(i), b.Sample(i))
	}
}

func TestSampler_ValuesComeFromCatalog(t *testing.T) {
	c := DefaultCatalog()
	s := NewSampler(c, rand.New(rand.NewPCG(1, 2)))
	seenIssues := map[string]bool{}
	for i := 0; i < 500; i++ {
		p := s.Sample(i)
		require.Contains(t, c.Issues(), p.Issue)
		require.Contains(t, c.Resolutions(), p.Resolution)
		require.Contains(t, c.Sentiments(), p.Sentiment)
		require.Contains(t, c.Tones(), p.Tone)
		seenIssues[p.Issue] = true
	}
	assert.Len(t, seenIssues, len(c.Issues()), "500 uniform draws should cover all 7 issues")
}

func TestFileName(t *testing.T) {
	p := Params{
		Issue:       "Unable to login to PC",
		Resolution:  ResolutionEscalated,
		Sentiment:   SentimentNegative,
		Tone:        ToneRude,
		FollowRules: false,
	}
	assert.Equal(t, "chat_002_Unable_to_login_to_PC_Escalated_Negative_Rude_violate.txt", p.FileName(2))

	p.FollowRules = true
	assert.Equal(t, "chat_123_Unable_to_login_to_PC_Escalated_Negative_Rude_follow.txt", p.FileName(123))
	assert.Equal(t, "chat_1000_Unable_to_login_to_PC_Escalated_Negative_Rude_follow.txt", p.FileName(1000))
}

func TestFileName_NeverContainsUnsafeCharacters(t *testing.T) {
	issues := append(DefaultCatalog().Issues(), "Can't reach /home share", `VPN\proxy isn't up`)
	for _, issue := range issues {
		p := Params{Issue: issue, Resolution: ResolutionResolved, Sentiment: SentimentNeutral, Tone: TonePolite}
		name := p.FileName(1)
		assert.False(t, strings.ContainsAny(name, ` /\'`), "unsafe character in %q", name)
		assert.True(t, strings.HasSuffix(name, ".txt"))
	}
}

func TestSanitizeIssue(t *testing.T) {
	cases := map[string]string{
		"Device not active": "Device_not_active",
		"Can't print":       "Cant_print",
		"a/b":               "a_b",
		`c\d`:               "c_d",
		"already_safe":      "already_safe",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeIssue(in), in)
	}
}
