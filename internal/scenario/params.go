// internal/scenario/params.go
package scenario

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Params is one sampled scenario. It drives exactly one generation call and
// is persisted only through the transcript's file name.
type Params struct {
	Issue       string
	Resolution  Resolution
	Sentiment   Sentiment
	Tone        Tone
	FollowRules bool
}

// RulesTag is the file name tag for the rule-following mode.
func (p Params) RulesTag() string {
	if p.FollowRules {
		return "follow"
	}
	return "violate"
}

var issueReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_", "'", "")

// SanitizeIssue makes an issue description safe to embed in a file name.
func SanitizeIssue(issue string) string {
	return issueReplacer.Replace(issue)
}

// FileName returns the transcript file name for the 1-based index n.
func (p Params) FileName(n int) string {
	return fmt.Sprintf("chat_%03d_%s_%s_%s_%s_%s.txt",
		n,
		SanitizeIssue(p.Issue),
		p.Resolution,
		p.Sentiment,
		p.Tone,
		p.RulesTag(),
	)
}

// Sampler draws scenario parameters from a catalog using an explicit random
// source. Two samplers built from the same catalog and seed yield the same
// sequence.
type Sampler struct {
	catalog Catalog
	rng     *rand.Rand
}

// NewSampler returns a Sampler over catalog driven by rng.
func NewSampler(catalog Catalog, rng *rand.Rand) *Sampler {
	return &Sampler{catalog: catalog, rng: rng}
}

// NewSeededSampler is a convenience for NewSampler with a PCG source seeded
// from seed.
func NewSeededSampler(catalog Catalog, seed uint64) *Sampler {
	return NewSampler(catalog, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Sample returns the parameters for the 0-based iteration i. Categorical
// values are drawn uniformly and independently; FollowRules is set by
// parity so even iterations follow the checklist and odd ones violate it.
func (s *Sampler) Sample(i int) Params {
	return Params{
		Issue:       pick(s.rng, s.catalog.issues),
		Resolution:  pick(s.rng, s.catalog.resolutions),
		Sentiment:   pick(s.rng, s.catalog.sentiments),
		Tone:        pick(s.rng, s.catalog.tones),
		FollowRules: i%2 == 0,
	}
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}
