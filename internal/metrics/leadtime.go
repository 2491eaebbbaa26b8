package metrics

import (
	"slices"
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// SelectReleases picks the release candidates for cadence and lead time.
// Non-draft releases win; tags are used only when no usable release exists.
// The result is newest first and holds at most limit entries.
func SelectReleases(releases, tags []github.ReleaseRef, limit int) []github.ReleaseRef {
	candidates := usable(releases)
	if len(candidates) == 0 {
		candidates = usable(tags)
	}
	slices.SortStableFunc(candidates, func(a, b github.ReleaseRef) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func usable(refs []github.ReleaseRef) []github.ReleaseRef {
	out := make([]github.ReleaseRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Draft {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// DeploymentFrequencyDays is the gap in days between the two newest refs.
// refs must be ordered newest first.
func DeploymentFrequencyDays(refs []github.ReleaseRef) *float64 {
	if len(refs) < 2 {
		return nil
	}
	gap := refs[0].CreatedAt.Sub(refs[1].CreatedAt)
	return ptr(round2(gap.Hours() / 24))
}

// LeadTimeStats summarizes commit-to-release lead times in hours.
type LeadTimeStats struct {
	AverageHours float64 `json:"average_hours" yaml:"average_hours"`
	OldestHours  float64 `json:"oldest_hours" yaml:"oldest_hours"`
	OldestSHA    string  `json:"oldest_sha" yaml:"oldest_sha"`
	NewestHours  float64 `json:"newest_hours" yaml:"newest_hours"`
	NewestSHA    string  `json:"newest_sha" yaml:"newest_sha"`
	// Commits is the size of the release range, Samples the commits with a
	// usable lead time, Discarded those dropped for a negative lead time.
	Commits      int `json:"commits" yaml:"commits"`
	Samples      int `json:"samples" yaml:"samples"`
	Discarded    int `json:"discarded" yaml:"discarded"`
	MergeCommits int `json:"merge_commits" yaml:"merge_commits"`
}

type leadTimeSample struct {
	sha   string
	hours float64
	merge bool
}

// ComputeLeadTime measures every commit against the release time. Negative
// lead times are discarded. Merge commits take part in the average and the
// oldest value, but are skipped for the newest value unless includeMerges is
// set or nothing but merge commits remain.
func ComputeLeadTime(releasedAt time.Time, commits []github.Commit, includeMerges bool) *LeadTimeStats {
	out := LeadTimeStats{Commits: len(commits)}

	samples := make([]leadTimeSample, 0, len(commits))
	for _, commit := range commits {
		ts := commit.Timestamp()
		if ts.IsZero() {
			out.Discarded++
			continue
		}
		hours := releasedAt.Sub(ts).Hours()
		if hours < 0 {
			out.Discarded++
			continue
		}
		if commit.IsMerge() {
			out.MergeCommits++
		}
		samples = append(samples, leadTimeSample{sha: commit.SHA, hours: hours, merge: commit.IsMerge()})
	}
	if len(samples) == 0 {
		return nil
	}

	hours := make([]float64, 0, len(samples))
	oldest := samples[0]
	for _, s := range samples {
		hours = append(hours, s.hours)
		if s.hours > oldest.hours {
			oldest = s
		}
	}
	summary, _ := summarize(hours)

	newest, ok := newestSample(samples, !includeMerges)
	if !ok {
		newest, _ = newestSample(samples, false)
	}

	out.AverageHours = summary.Mean
	out.OldestHours = round2(oldest.hours)
	out.OldestSHA = oldest.sha
	out.NewestHours = round2(newest.hours)
	out.NewestSHA = newest.sha
	out.Samples = len(samples)
	return &out
}

func newestSample(samples []leadTimeSample, skipMerges bool) (leadTimeSample, bool) {
	var (
		best  leadTimeSample
		found bool
	)
	for _, s := range samples {
		if skipMerges && s.merge {
			continue
		}
		if !found || s.hours < best.hours {
			best = s
			found = true
		}
	}
	return best, found
}

// ReleaseResult is the record of the release family.
type ReleaseResult struct {
	Status                  Status             `json:"status" yaml:"status"`
	Source                  github.RefKind     `json:"source,omitempty" yaml:"source,omitempty"`
	Candidates              int                `json:"candidates" yaml:"candidates"`
	Latest                  *github.ReleaseRef `json:"latest,omitempty" yaml:"latest,omitempty"`
	Previous                *github.ReleaseRef `json:"previous,omitempty" yaml:"previous,omitempty"`
	DeploymentFrequencyDays *float64           `json:"deployment_frequency_days" yaml:"deployment_frequency_days"`
	LeadTime                *LeadTimeStats     `json:"lead_time" yaml:"lead_time"`
	Details                 Details            `json:"details" yaml:"details"`
}

// Lead time reasons.
const (
	ReasonNoReleases        = "no releases or tags"
	ReasonNoPrevious        = "no previous release to compare against"
	ReasonNoLeadTime        = "no commit with a non-negative lead time"
	ReasonCommitsUnresolved = "commits between releases could not be resolved"
)

// ReleaseCadence builds the cadence half of the release record from the
// selected candidates. Lead time is attached by WithLeadTime.
func ReleaseCadence(selected []github.ReleaseRef) ReleaseResult {
	if len(selected) == 0 {
		return ReleaseResult{Status: StatusNoData, Details: Details{Reason: ReasonNoReleases}}
	}

	out := ReleaseResult{
		Status:                  StatusOK,
		Source:                  selected[0].Kind,
		Candidates:              len(selected),
		Latest:                  ptr(selected[0]),
		DeploymentFrequencyDays: DeploymentFrequencyDays(selected),
	}
	if len(selected) > 1 {
		out.Previous = ptr(selected[1])
	} else {
		out.Details.Reason = ReasonNoPrevious
	}
	return out
}

// WithLeadTime returns r with lead time computed from the commits released
// by r.Latest. A nil commitsErr with no usable commit leaves lead time nil
// and records why.
func (r ReleaseResult) WithLeadTime(commits []github.Commit, commitsErr error, includeMerges bool) ReleaseResult {
	if r.Latest == nil || r.Previous == nil {
		return r
	}
	if commitsErr != nil {
		r.Details = errorDetails(ReasonCommitsUnresolved, commitsErr)
		return r
	}
	r.LeadTime = ComputeLeadTime(r.Latest.CreatedAt, commits, includeMerges)
	if r.LeadTime == nil {
		r.Details.Reason = ReasonNoLeadTime
	}
	return r
}

// ReleaseUnavailable is the release record for a failed lookup.
func ReleaseUnavailable(reason string, err error) ReleaseResult {
	return ReleaseResult{
		Status:  StatusUnavailable,
		Details: errorDetails(reason, err),
	}
}
