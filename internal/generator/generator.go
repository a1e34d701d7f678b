// internal/generator/generator.go
// Package generator turns one set of scenario parameters into one chat
// transcript by way of a single chat-completion call.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mwiater/chatgen/internal/llm"
	"github.com/mwiater/chatgen/internal/prompt"
	"github.com/mwiater/chatgen/internal/scenario"
)

// Sentinel replaces the transcript whenever generation fails.
const Sentinel = "Error generating chat transcript."

// Completer is the subset of llm.Client the generator depends on.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Options tune the completion request.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Result is the outcome of one generation call. Exactly one of Text and Err
// is meaningful.
type Result struct {
	Params   scenario.Params
	Text     string
	Err      error
	Duration time.Duration
}

// OK reports whether the call produced a transcript.
func (r Result) OK() bool { return r.Err == nil }

// Transcript is the text to persist: the model output, or Sentinel when the
// call failed.
func (r Result) Transcript() string {
	if r.Err != nil {
		return Sentinel
	}
	return r.Text
}

// Generator renders prompts and submits them to a Completer.
type Generator struct {
	client  Completer
	rules   []string
	opts    Options
	logger  *zap.Logger
	nowFunc func() time.Time
}

// New returns a Generator that interpolates catalog's rule checklist into
// every prompt.
func New(client Completer, catalog scenario.Catalog, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:  client,
		rules:   catalog.Rules(),
		opts:    opts,
		logger:  logger.Named("generator"),
		nowFunc: time.Now,
	}
}

// Request builds the chat-completion request for p without sending it.
func (g *Generator) Request(p scenario.Params) llm.Request {
	return llm.Request{
		Model: g.opts.Model,
		N:     1,
		Messages: []llm.Message{
			{Role: "system", Content: prompt.SystemMessage},
			{Role: "user", Content: prompt.Render(p, g.rules)},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	}
}

// Generate performs one completion for p. Failures are logged with their
// full diagnostic and carried in Result.Err; Generate itself never fails.
func (g *Generator) Generate(ctx context.Context, p scenario.Params) Result {
	start := g.nowFunc()
	resp, err := g.client.Complete(ctx, g.Request(p))
	res := Result{Params: p, Duration: g.nowFunc().Sub(start)}
	if err != nil {
		res.Err = err
		g.logFailure(p, err)
		return res
	}
	res.Text = strings.TrimSpace(resp.Text())
	return res
}

func (g *Generator) logFailure(p scenario.Params, err error) {
	fields := []zap.Field{
		zap.String("issue", p.Issue),
		zap.String("resolution", string(p.Resolution)),
		zap.String("sentiment", string(p.Sentiment)),
		zap.String("tone", string(p.Tone)),
		zap.Bool("followRules", p.FollowRules),
		zap.String("kind", string(llm.KindOf(err))),
		zap.Error(err),
	}
	var le *llm.Error
	if errors.As(err, &le) {
		fields = append(fields, zap.Int("status", le.StatusCode), zap.String("body", le.Body))
	}
	g.logger.Error("error generating chat", fields...)
}
