package metrics

import (
	"slices"
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// PullRequestTimings are the review-cycle durations of one pull request.
// Each duration is nil when an event it depends on is missing or the
// events are out of order.
type PullRequestTimings struct {
	Number       int        `json:"number" yaml:"number" csv:"number"`
	Author       string     `json:"author" yaml:"author" csv:"author"`
	Merged       bool       `json:"merged" yaml:"merged" csv:"merged"`
	ReadyAt      *time.Time `json:"ready_at" yaml:"ready_at" csv:"-"`
	PickupHours  *float64   `json:"pickup_hours" yaml:"pickup_hours" csv:"pickup_hours"`
	ApproveHours *float64   `json:"approve_hours" yaml:"approve_hours" csv:"approve_hours"`
	MergeHours   *float64   `json:"merge_hours" yaml:"merge_hours" csv:"merge_hours"`
	SizeCategory string     `json:"size_category,omitempty" yaml:"size_category,omitempty" csv:"size_category"`
}

var reviewActivityKinds = []string{
	github.EventReviewed,
	github.EventCommented,
	github.EventLineCommented,
}

// MeasurePullRequest computes pickup, approve and merge durations.
func MeasurePullRequest(pr github.PullRequest, scale SizeScale) PullRequestTimings {
	out := PullRequestTimings{
		Number: pr.Number,
		Author: pr.Author,
		Merged: pr.MergedAt != nil,
	}

	for _, label := range pr.Labels {
		if category, ok := scale.ParseSizeLabel(label.Name); ok {
			out.SizeCategory = category
			break
		}
	}

	ready := readyForReviewAt(pr)
	out.ReadyAt = ready
	activity := reviewActivity(pr)
	approval := firstApproval(pr.Reviews)

	if ready != nil && len(activity) > 0 {
		out.PickupHours = hoursBetween(*ready, activity[0])
	}

	if approval != nil {
		start := ready
		for _, at := range activity {
			if !at.Before(*approval) {
				break
			}
			start = ptr(at)
		}
		if start != nil {
			out.ApproveHours = hoursBetween(*start, *approval)
		}
		if pr.MergedAt != nil {
			out.MergeHours = hoursBetween(*approval, *pr.MergedAt)
		}
	}
	return out
}

func readyForReviewAt(pr github.PullRequest) *time.Time {
	var first *time.Time
	for _, event := range pr.Timeline {
		if event.Kind != github.EventReadyForReview || event.At.IsZero() {
			continue
		}
		if first == nil || event.At.Before(*first) {
			first = ptr(event.At)
		}
	}
	if first != nil {
		return first
	}
	if !pr.Draft && !pr.CreatedAt.IsZero() {
		return ptr(pr.CreatedAt)
	}
	return nil
}

// reviewActivity returns the sorted timestamps of human review activity.
func reviewActivity(pr github.PullRequest) []time.Time {
	var out []time.Time
	for _, event := range pr.Timeline {
		if event.Automated || event.At.IsZero() || !slices.Contains(reviewActivityKinds, event.Kind) {
			continue
		}
		out = append(out, event.At)
	}
	for _, review := range pr.Reviews {
		if review.Automated || review.SubmittedAt.IsZero() {
			continue
		}
		out = append(out, review.SubmittedAt)
	}
	slices.SortFunc(out, time.Time.Compare)
	return out
}

func firstApproval(reviews []github.Review) *time.Time {
	var first *time.Time
	for _, review := range reviews {
		if review.State != github.ReviewApproved || review.Automated || review.SubmittedAt.IsZero() {
			continue
		}
		if first == nil || review.SubmittedAt.Before(*first) {
			first = ptr(review.SubmittedAt)
		}
	}
	return first
}

func hoursBetween(from, to time.Time) *float64 {
	d := to.Sub(from)
	if d < 0 {
		return nil
	}
	return ptr(round2(d.Hours()))
}

// SizeShare is the share of labelled pull requests in one size tier.
type SizeShare struct {
	Category string  `json:"category" yaml:"category"`
	Count    int     `json:"count" yaml:"count"`
	Percent  float64 `json:"percent" yaml:"percent"`
}

// TeamMetrics is the aggregate over a non-empty pull request window.
type TeamMetrics struct {
	PullRequests     int                  `json:"pull_requests" yaml:"pull_requests"`
	Merged           int                  `json:"merged" yaml:"merged"`
	Authors          int                  `json:"authors" yaml:"authors"`
	Pickup           RatedValue           `json:"pickup_hours" yaml:"pickup_hours"`
	Approve          RatedValue           `json:"approve_hours" yaml:"approve_hours"`
	Merge            RatedValue           `json:"merge_hours" yaml:"merge_hours"`
	MergeFrequency   RatedValue           `json:"merge_frequency" yaml:"merge_frequency"`
	SizeDistribution []SizeShare          `json:"size_distribution" yaml:"size_distribution"`
	PredominantSize  string               `json:"predominant_size,omitempty" yaml:"predominant_size,omitempty"`
	PRSizeRating     Rating               `json:"pr_size_rating,omitempty" yaml:"pr_size_rating,omitempty"`
	Maturity         *RatedValue          `json:"maturity_percentage,omitempty" yaml:"maturity_percentage,omitempty"`
	Samples          []PullRequestTimings `json:"samples,omitempty" yaml:"-"`
}

// TeamInput is everything the aggregator needs for one window.
type TeamInput struct {
	Start        time.Time
	End          time.Time
	PullRequests []github.PullRequest
	// Maturity holds optional per-PR maturity results sampled in the window.
	Maturity []MaturityResult
	// Releases holds the released commit ranges of in-window releases.
	Releases []ReleaseRange
	// ReleasesErr is set when the in-window releases could not be listed.
	ReleasesErr error
}

// TeamResult is the record of the team family. Metrics is nil exactly when
// Status is StatusNoData.
type TeamResult struct {
	Status  Status              `json:"status" yaml:"status"`
	Window  Window              `json:"window" yaml:"window"`
	Start   time.Time           `json:"start" yaml:"start"`
	End     time.Time           `json:"end" yaml:"end"`
	Metrics *TeamMetrics        `json:"metrics" yaml:"metrics"`
	Release ReleaseWindowResult `json:"release" yaml:"release"`
	Details Details             `json:"details" yaml:"details"`
}

// ReasonNoPullRequests explains an empty team window.
const ReasonNoPullRequests = "no pull requests in window"

// AggregateTeam rolls per-PR timings and in-window releases up into team
// metrics. The pull request half and the release half are independent.
func AggregateTeam(in TeamInput, cfg Config) TeamResult {
	out := TeamResult{
		Status:  StatusOK,
		Window:  cfg.Window,
		Start:   in.Start,
		End:     in.End,
		Release: AggregateReleaseWindow(in.Releases, in.ReleasesErr, cfg.Window, cfg.Bands),
	}
	if len(in.PullRequests) == 0 {
		out.Status = StatusNoData
		out.Details.Reason = ReasonNoPullRequests
		return out
	}

	metrics := &TeamMetrics{PullRequests: len(in.PullRequests)}
	var pickup, approve, merge []float64
	authors := make(map[string]bool)
	for _, pr := range in.PullRequests {
		t := MeasurePullRequest(pr, cfg.Size)
		metrics.Samples = append(metrics.Samples, t)
		if t.Author != "" {
			authors[t.Author] = true
		}
		if t.Merged {
			metrics.Merged++
		}
		if t.PickupHours != nil {
			pickup = append(pickup, *t.PickupHours)
		}
		if t.ApproveHours != nil {
			approve = append(approve, *t.ApproveHours)
		}
		if t.MergeHours != nil {
			merge = append(merge, *t.MergeHours)
		}
	}
	metrics.Authors = len(authors)
	metrics.Pickup = rateSamples(pickup, cfg.Bands.Pickup)
	metrics.Approve = rateSamples(approve, cfg.Bands.Approve)
	metrics.Merge = rateSamples(merge, cfg.Bands.Merge)
	metrics.MergeFrequency = mergeFrequency(metrics.Merged, metrics.Authors, cfg.Window, cfg.Bands.MergeFrequency)

	metrics.SizeDistribution, metrics.PredominantSize = sizeDistribution(metrics.Samples, cfg.Size)
	if metrics.PredominantSize != "" {
		metrics.PRSizeRating = cfg.Bands.PRSize.Rate(float64(cfg.Size.Index(metrics.PredominantSize)))
	}

	if len(in.Maturity) > 0 {
		var percentages []float64
		for _, m := range in.Maturity {
			if m.Percentage != nil {
				percentages = append(percentages, float64(*m.Percentage))
			}
		}
		metrics.Maturity = ptr(rateSamples(percentages, cfg.Bands.PRMaturity))
	}

	out.Metrics = metrics
	return out
}

// TeamUnavailable is the team record when the pull requests of the window
// could not be listed. The release half is still aggregated from in.
func TeamUnavailable(in TeamInput, cfg Config, err error) TeamResult {
	return TeamResult{
		Status:  StatusUnavailable,
		Window:  cfg.Window,
		Start:   in.Start,
		End:     in.End,
		Release: AggregateReleaseWindow(in.Releases, in.ReleasesErr, cfg.Window, cfg.Bands),
		Details: errorDetails("pull requests in window could not be listed", err),
	}
}

func mergeFrequency(merged, authors int, window Window, band RatingBand) RatedValue {
	weeks := window.Weeks()
	if authors == 0 || weeks <= 0 {
		return RatedValue{}
	}
	v := round2(float64(merged) / (float64(authors) * weeks))
	return RatedValue{Value: ptr(v), Samples: merged, Rating: band.Rate(v)}
}

func sizeDistribution(samples []PullRequestTimings, scale SizeScale) ([]SizeShare, string) {
	counts := make([]int, len(scale.Labels))
	labelled := 0
	for _, s := range samples {
		idx := scale.Index(s.SizeCategory)
		if idx < 0 {
			continue
		}
		counts[idx]++
		labelled++
	}
	if labelled == 0 {
		return nil, ""
	}

	shares := make([]SizeShare, 0, len(scale.Labels))
	predominant := 0
	for i, label := range scale.Labels {
		shares = append(shares, SizeShare{
			Category: label,
			Count:    counts[i],
			Percent:  round2(float64(counts[i]) * 100 / float64(labelled)),
		})
		if counts[i] > counts[predominant] {
			predominant = i
		}
	}
	return shares, scale.Labels[predominant]
}
