// internal/batch/summary.go
// Package: batch
package batch

import (
	"math"
	"slices"
	"time"

	"github.com/mwiater/chatgen/internal/generator"
	"github.com/mwiater/chatgen/internal/llm"
	"github.com/mwiater/chatgen/internal/scenario"
)

// Record is one completed batch iteration.
type Record struct {
	Index  int // 0-based; the file name carries Index+1
	Params scenario.Params
	Path   string
	Result generator.Result
}

// Summary describes a whole run. Latencies cover successful calls only.
type Summary struct {
	RunID     string
	Seed      uint64
	Count     int
	OutputDir string

	Written        int
	Follow         int
	Violate        int
	Failed         int
	FailuresByKind map[llm.Kind]int
	Paths          []string

	LatencyP50Millis  float64
	LatencyP95Millis  float64
	LatencyMeanMillis float64
	LatencyStdMillis  float64

	StartedAt  time.Time
	FinishedAt time.Time

	latencies []float64
}

// NewSummary starts an empty summary for a run.
func NewSummary(runID string, seed uint64, count int, outputDir string, started time.Time) *Summary {
	return &Summary{
		RunID:          runID,
		Seed:           seed,
		Count:          count,
		OutputDir:      outputDir,
		FailuresByKind: map[llm.Kind]int{},
		StartedAt:      started,
	}
}

// Add folds one record into the summary.
func (s *Summary) Add(rec Record) {
	s.Written++
	s.Paths = append(s.Paths, rec.Path)
	if rec.Params.FollowRules {
		s.Follow++
	} else {
		s.Violate++
	}
	if !rec.Result.OK() {
		s.Failed++
		s.FailuresByKind[llm.KindOf(rec.Result.Err)]++
		return
	}
	s.latencies = append(s.latencies, float64(rec.Result.Duration.Milliseconds()))
}

// Finish computes the latency figures and stamps the end time.
func (s *Summary) Finish(finished time.Time) {
	s.FinishedAt = finished
	lat := newLatencyStats(s.latencies)
	s.LatencyP50Millis = lat.quantile(0.50)
	s.LatencyP95Millis = lat.quantile(0.95)
	s.LatencyMeanMillis, s.LatencyStdMillis = lat.mean, lat.std
}

// latencyStats holds a sorted copy of the latency samples and their
// population mean and standard deviation.
type latencyStats struct {
	sorted    []float64
	mean, std float64
}

func newLatencyStats(ms []float64) latencyStats {
	if len(ms) == 0 {
		return latencyStats{}
	}
	sorted := slices.Clone(ms)
	slices.Sort(sorted)

	var sum, sumSq float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))
	for _, v := range sorted {
		sumSq += (v - mean) * (v - mean)
	}
	return latencyStats{sorted: sorted, mean: mean, std: math.Sqrt(sumSq / float64(len(sorted)))}
}

// quantile interpolates linearly between the two nearest ranks.
// An empty sample set yields 0.
func (l latencyStats) quantile(q float64) float64 {
	n := len(l.sorted)
	switch {
	case n == 0:
		return 0
	case q <= 0:
		return l.sorted[0]
	case q >= 1:
		return l.sorted[n-1]
	}
	rank := q * float64(n-1)
	lo := int(rank)
	if lo+1 >= n {
		return l.sorted[lo]
	}
	return l.sorted[lo] + (l.sorted[lo+1]-l.sorted[lo])*(rank-float64(lo))
}
