package metrics

import (
	"errors"
	"math"
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// MaturityReason names the rule that produced a maturity result.
type MaturityReason string

const (
	// ReasonSingleCommit is a pull request made of exactly one commit.
	ReasonSingleCommit MaturityReason = "single_commit"
	// ReasonWithinGraceWindow means every commit is dated inside the grace window.
	ReasonWithinGraceWindow MaturityReason = "within_grace_window"
	// ReasonNoCommitsBeyondGrace means no dated commit falls after the grace window.
	ReasonNoCommitsBeyondGrace MaturityReason = "no_commits_beyond_grace"
	// ReasonPostPublication scores the changes made after the grace window.
	ReasonPostPublication MaturityReason = "post_publication_changes"
	// ReasonMaturityUnavailable is used when no rule could be evaluated.
	ReasonMaturityUnavailable MaturityReason = "unavailable"
)

// ErrNoCommits is returned when a pull request has no commits to plan from.
var ErrNoCommits = errors.New("pull request has no commits")

// MaturityInput is what the planner needs from a pull request.
type MaturityInput struct {
	CreatedAt time.Time
	Commits   []github.Commit
}

// MaturityPlan is the outcome of the rule list. When NeedsComparison is set
// the caller must diff BaselineSHA against HeadSHA and pass the result to
// ScoreMaturity.
type MaturityPlan struct {
	Reason          MaturityReason
	NeedsComparison bool
	BaselineSHA     string
	BoundarySHA     string
	HeadSHA         string
	Commits         int
}

type maturityRule struct {
	reason MaturityReason
	match  func(in MaturityInput, deadline time.Time) (MaturityPlan, bool)
}

// maturityRules are evaluated in order; the first match wins. The last rule
// matches any input with at least one commit.
var maturityRules = []maturityRule{
	{reason: ReasonSingleCommit, match: matchSingleCommit},
	{reason: ReasonWithinGraceWindow, match: matchWithinGrace},
	{reason: ReasonNoCommitsBeyondGrace, match: matchNoneBeyondGrace},
	{reason: ReasonPostPublication, match: matchPostPublication},
}

func matchSingleCommit(in MaturityInput, _ time.Time) (MaturityPlan, bool) {
	return MaturityPlan{}, len(in.Commits) == 1
}

func matchWithinGrace(in MaturityInput, deadline time.Time) (MaturityPlan, bool) {
	for _, commit := range in.Commits {
		ts := commit.Timestamp()
		if ts.IsZero() || ts.After(deadline) {
			return MaturityPlan{}, false
		}
	}
	return MaturityPlan{}, true
}

func matchNoneBeyondGrace(in MaturityInput, deadline time.Time) (MaturityPlan, bool) {
	return MaturityPlan{}, firstBeyond(in.Commits, deadline) < 0
}

func matchPostPublication(in MaturityInput, deadline time.Time) (MaturityPlan, bool) {
	boundary := firstBeyond(in.Commits, deadline)
	if boundary < 0 {
		return MaturityPlan{}, false
	}
	baseline := 0
	if boundary > 0 {
		baseline = boundary - 1
	}
	return MaturityPlan{
		NeedsComparison: true,
		BaselineSHA:     in.Commits[baseline].SHA,
		BoundarySHA:     in.Commits[boundary].SHA,
		HeadSHA:         in.Commits[len(in.Commits)-1].SHA,
	}, true
}

func firstBeyond(commits []github.Commit, deadline time.Time) int {
	for i, commit := range commits {
		ts := commit.Timestamp()
		if !ts.IsZero() && ts.After(deadline) {
			return i
		}
	}
	return -1
}

// PlanMaturity runs the rule list over the commits of a pull request.
func PlanMaturity(in MaturityInput, grace time.Duration) (MaturityPlan, error) {
	if len(in.Commits) == 0 {
		return MaturityPlan{}, ErrNoCommits
	}

	deadline := in.CreatedAt.Add(grace)
	for _, rule := range maturityRules {
		plan, ok := rule.match(in, deadline)
		if !ok {
			continue
		}
		plan.Reason = rule.reason
		plan.Commits = len(in.Commits)
		if plan.HeadSHA == "" {
			plan.HeadSHA = in.Commits[len(in.Commits)-1].SHA
		}
		return plan, nil
	}
	// Unreachable while the last rule is total over non-empty input.
	return MaturityPlan{}, ErrNoCommits
}

// MaturityResult is the record of the PR maturity family.
type MaturityResult struct {
	Status                  Status         `json:"status" yaml:"status"`
	Reason                  MaturityReason `json:"reason" yaml:"reason"`
	Ratio                   *float64       `json:"ratio" yaml:"ratio"`
	Percentage              *int           `json:"percentage" yaml:"percentage"`
	TotalChanges            int            `json:"total_changes" yaml:"total_changes"`
	ChangesAfterPublication int            `json:"changes_after_publication" yaml:"changes_after_publication"`
	StableChanges           int            `json:"stable_changes" yaml:"stable_changes"`
	Commits                 int            `json:"commits" yaml:"commits"`
	BaselineSHA             string         `json:"baseline_sha,omitempty" yaml:"baseline_sha,omitempty"`
	BoundarySHA             string         `json:"boundary_sha,omitempty" yaml:"boundary_sha,omitempty"`
	HeadSHA                 string         `json:"head_sha,omitempty" yaml:"head_sha,omitempty"`
	Details                 Details        `json:"details" yaml:"details"`
}

// ScoreMaturity turns a plan and the filtered change totals into a result.
// after is ignored for plans that need no comparison.
func ScoreMaturity(plan MaturityPlan, total, after ChangeAggregate) MaturityResult {
	afterChanges := 0
	if plan.NeedsComparison {
		afterChanges = max(after.Changes, 0)
	}
	totalChanges := max(total.Changes, 0)
	stable := max(totalChanges-afterChanges, 0)

	ratio := 1.0
	if totalChanges > 0 {
		ratio = float64(stable) / float64(totalChanges)
	}
	percentage := int(math.Round(ratio * 100))

	return MaturityResult{
		Status:                  StatusOK,
		Reason:                  plan.Reason,
		Ratio:                   ptr(round2(ratio)),
		Percentage:              ptr(percentage),
		TotalChanges:            totalChanges,
		ChangesAfterPublication: afterChanges,
		StableChanges:           stable,
		Commits:                 plan.Commits,
		BaselineSHA:             plan.BaselineSHA,
		BoundarySHA:             plan.BoundarySHA,
		HeadSHA:                 plan.HeadSHA,
	}
}

// MaturityUnavailable is the maturity record when a lookup failed. The plan
// is kept so the SHAs that were chosen remain visible.
func MaturityUnavailable(plan MaturityPlan, err error) MaturityResult {
	reason := plan.Reason
	if reason == "" {
		reason = ReasonMaturityUnavailable
	}
	return MaturityResult{
		Status:      StatusUnavailable,
		Reason:      reason,
		Commits:     plan.Commits,
		BaselineSHA: plan.BaselineSHA,
		BoundarySHA: plan.BoundarySHA,
		HeadSHA:     plan.HeadSHA,
		Details:     errorDetails(string(reason), err),
	}
}
