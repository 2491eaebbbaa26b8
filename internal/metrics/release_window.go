package metrics

import (
	"github.com/johnqtcg/shipmetrics/internal/github"
)

// ReleaseRange is one in-window release with the commits it shipped. For
// the first release of a repository Commits holds every ancestor.
type ReleaseRange struct {
	Release github.ReleaseRef
	Commits []github.Commit
}

// CycleTimeStats summarizes commit age at release time, in hours.
type CycleTimeStats struct {
	AverageHours *float64 `json:"average_hours" yaml:"average_hours"`
	MinHours     *float64 `json:"min_hours" yaml:"min_hours"`
	MaxHours     *float64 `json:"max_hours" yaml:"max_hours"`
	Commits      int      `json:"commits" yaml:"commits"`
	Rating       Rating   `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// ReleaseWindowResult is the release half of the team record.
type ReleaseWindowResult struct {
	Status          Status         `json:"status" yaml:"status"`
	Releases        int            `json:"releases" yaml:"releases"`
	DeployFrequency RatedValue     `json:"deploy_frequency_per_week" yaml:"deploy_frequency_per_week"`
	CycleTime       CycleTimeStats `json:"cycle_time" yaml:"cycle_time"`
	Details         Details        `json:"details" yaml:"details"`
}

// ReasonNoReleasesInWindow explains an empty release window.
const ReasonNoReleasesInWindow = "no releases in window"

// AggregateReleaseWindow computes cycle time and deploy frequency over the
// releases created in the window. The tip commit of each release is not
// counted and negative ages are discarded.
func AggregateReleaseWindow(ranges []ReleaseRange, listErr error, window Window, bands RatingBands) ReleaseWindowResult {
	if listErr != nil {
		return ReleaseWindowResult{
			Status:  StatusUnavailable,
			Details: errorDetails("releases in window could not be listed", listErr),
		}
	}
	if len(ranges) == 0 {
		return ReleaseWindowResult{
			Status:  StatusNoData,
			Details: Details{Reason: ReasonNoReleasesInWindow},
		}
	}

	var ages []float64
	for _, r := range ranges {
		for _, commit := range r.Commits {
			if commit.SHA == r.Release.CommitSHA {
				continue
			}
			ts := commit.Timestamp()
			if ts.IsZero() {
				continue
			}
			age := r.Release.CreatedAt.Sub(ts).Hours()
			if age < 0 {
				continue
			}
			ages = append(ages, age)
		}
	}

	out := ReleaseWindowResult{
		Status:   StatusOK,
		Releases: len(ranges),
	}
	if weeks := window.Weeks(); weeks > 0 {
		perWeek := round2(float64(len(ranges)) / weeks)
		out.DeployFrequency = RatedValue{
			Value:   ptr(perWeek),
			Samples: len(ranges),
			Rating:  bands.DeployFrequency.Rate(perWeek),
		}
	}
	if s, ok := summarize(ages); ok {
		out.CycleTime = CycleTimeStats{
			AverageHours: ptr(s.Mean),
			MinHours:     ptr(s.Min),
			MaxHours:     ptr(s.Max),
			Commits:      s.N,
			Rating:       bands.CycleTime.Rate(s.Mean),
		}
	}
	return out
}
