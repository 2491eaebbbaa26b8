package metrics

import (
	"github.com/montanaflynn/stats"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// Status tells consumers which branch a metric family result came from.
type Status string

const (
	// StatusOK means the metric was computed from data in scope.
	StatusOK Status = "ok"
	// StatusNoData means the scope held nothing to measure. It is distinct
	// from a computed zero.
	StatusNoData Status = "no_data"
	// StatusUnavailable means upstream data could not be obtained.
	StatusUnavailable Status = "unavailable"
)

// Details carries the explanation attached to every result record.
type Details struct {
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	// Kind classifies Error as auth, rate limit, not found and so on.
	Kind github.ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func errorDetails(reason string, err error) Details {
	d := Details{Reason: reason}
	if err != nil {
		d.Error = err.Error()
		d.Kind = github.Classify(err)
	}
	return d
}

// sampleSummary is the mean/min/max triple over a non-empty sample set.
type sampleSummary struct {
	Mean float64
	Min  float64
	Max  float64
	N    int
}

func summarize(samples []float64) (sampleSummary, bool) {
	if len(samples) == 0 {
		return sampleSummary{}, false
	}
	data := stats.Float64Data(samples)
	mean, err := stats.Mean(data)
	if err != nil {
		return sampleSummary{}, false
	}
	minimum, _ := stats.Min(data)
	maximum, _ := stats.Max(data)
	return sampleSummary{
		Mean: round2(mean),
		Min:  round2(minimum),
		Max:  round2(maximum),
		N:    len(samples),
	}, true
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}

func ptr[T any](v T) *T {
	return &v
}
