// internal/batch/driver.go
// Package batch drives a run of transcript generations, one after another,
// and persists each result to the output directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mwiater/chatgen/internal/generator"
	"github.com/mwiater/chatgen/internal/llm"
	"github.com/mwiater/chatgen/internal/metrics"
	"github.com/mwiater/chatgen/internal/scenario"
	"github.com/mwiater/chatgen/internal/store"
)

// Generator produces one result per scenario. *generator.Generator
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, p scenario.Params) generator.Result
}

// Reporter is told about every file as soon as it is written.
type Reporter interface {
	Saved(rec Record)
}

// Driver runs batches. Generator, Sampler and Fs are required; the rest are
// optional.
type Driver struct {
	Generator Generator
	Sampler   *scenario.Sampler
	Fs        afero.Fs

	// Seed is only recorded in the summary; the Sampler already carries it.
	Seed     uint64
	Reporter Reporter
	Metrics  *metrics.Recorder
	Logger   *zap.Logger

	nowFunc func() time.Time
}

func (d *Driver) now() time.Time {
	if d.nowFunc != nil {
		return d.nowFunc()
	}
	return time.Now()
}

func (d *Driver) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Prepare ensures outputDir exists and returns the store the iterations
// write into.
func (d *Driver) Prepare(outputDir string) (*store.TranscriptStore, error) {
	if d.Generator == nil || d.Sampler == nil || d.Fs == nil {
		return nil, errors.New("batch driver requires a generator, a sampler and a filesystem")
	}
	st := store.New(d.Fs, outputDir)
	if err := st.EnsureDir(); err != nil {
		return nil, err
	}
	return st, nil
}

// Step runs the 0-based iteration i: sample, generate, write, report.
func (d *Driver) Step(ctx context.Context, st *store.TranscriptStore, i int) (Record, error) {
	return d.Execute(ctx, st, i, d.Sampler.Sample(i))
}

// Execute generates and writes iteration i for already sampled parameters.
// A generation failure is written as the sentinel transcript and is not an
// error; a write failure is. When ctx is done by the time generation
// returns, nothing is written and ctx's error is returned.
func (d *Driver) Execute(ctx context.Context, st *store.TranscriptStore, i int, p scenario.Params) (Record, error) {
	res := d.Generator.Generate(ctx, p)
	if err := ctx.Err(); err != nil {
		d.log().Info("iteration aborted", zap.Int("index", i+1), zap.Error(err))
		return Record{}, err
	}

	path, err := st.Put(p.FileName(i+1), res.Transcript())
	if err != nil {
		return Record{}, fmt.Errorf("write transcript %d: %w", i+1, err)
	}

	rec := Record{Index: i, Params: p, Path: path, Result: res}
	if d.Metrics != nil {
		d.Metrics.Observe(p.RulesTag(), res.OK(), string(llm.KindOf(res.Err)), res.Duration)
	}
	d.log().Debug("transcript saved",
		zap.Int("index", i+1),
		zap.String("path", path),
		zap.Bool("ok", res.OK()),
		zap.Duration("duration", res.Duration),
	)
	if d.Reporter != nil {
		d.Reporter.Saved(rec)
	}
	return rec, nil
}

// Begin prepares outputDir and opens a summary for a run of count
// iterations.
func (d *Driver) Begin(count int, outputDir string) (*store.TranscriptStore, *Summary, error) {
	if count < 0 {
		return nil, nil, fmt.Errorf("count must not be negative, got %d", count)
	}
	st, err := d.Prepare(outputDir)
	if err != nil {
		return nil, nil, err
	}
	sum := NewSummary(uuid.NewString(), d.Seed, count, outputDir, d.now())
	d.log().Info("batch started",
		zap.String("runID", sum.RunID),
		zap.Uint64("seed", d.Seed),
		zap.Int("count", count),
		zap.String("outputDir", outputDir),
	)
	return st, sum, nil
}

// End closes the summary and stamps metrics.
func (d *Driver) End(sum *Summary) {
	end := d.now()
	sum.Finish(end)
	if d.Metrics != nil {
		d.Metrics.Finish(end)
	}
	d.log().Info("batch finished",
		zap.String("runID", sum.RunID),
		zap.Int("written", sum.Written),
		zap.Int("failed", sum.Failed),
		zap.Float64("latencyP50Ms", sum.LatencyP50Millis),
		zap.Float64("latencyP95Ms", sum.LatencyP95Millis),
	)
}

// Run generates count transcripts into outputDir, strictly in sequence. It
// returns early only when the context is done or a file cannot be written;
// the summary then covers the iterations that completed.
func (d *Driver) Run(ctx context.Context, count int, outputDir string) (*Summary, error) {
	st, sum, err := d.Begin(count, outputDir)
	if err != nil {
		return nil, err
	}
	defer d.End(sum)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rec, err := d.Step(ctx, st, i)
		if err != nil {
			return sum, err
		}
		sum.Add(rec)
	}
	return sum, nil
}
