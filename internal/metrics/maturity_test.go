package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

const grace = 5 * time.Minute

func changes(n int) metrics.ChangeAggregate {
	return metrics.ChangeAggregate{Additions: n, Changes: n, Files: 1}
}

func TestPlanMaturityRules(t *testing.T) {
	t.Parallel()

	created := base

	tcs := []struct {
		name         string
		commits      []github.Commit
		wantReason   metrics.MaturityReason
		wantCompare  bool
		wantBaseline string
		wantBoundary string
		wantHead     string
	}{
		{
			name:       "single commit",
			commits:    []github.Commit{commitAt("a", created.Add(3*time.Hour))},
			wantReason: metrics.ReasonSingleCommit,
			wantHead:   "a",
		},
		{
			name: "follow-up inside grace window",
			commits: []github.Commit{
				commitAt("a", created.Add(-time.Hour)),
				commitAt("b", created.Add(2*time.Minute)),
			},
			wantReason: metrics.ReasonWithinGraceWindow,
			wantHead:   "b",
		},
		{
			name: "commit exactly at grace boundary",
			commits: []github.Commit{
				commitAt("a", created),
				commitAt("b", created.Add(grace)),
			},
			wantReason: metrics.ReasonWithinGraceWindow,
			wantHead:   "b",
		},
		{
			name: "missing timestamp falls to safety net",
			commits: []github.Commit{
				commitAt("a", created.Add(-time.Hour)),
				{SHA: "b"},
			},
			wantReason: metrics.ReasonNoCommitsBeyondGrace,
			wantHead:   "b",
		},
		{
			name: "baseline is commit before first significant",
			commits: []github.Commit{
				commitAt("a", created.Add(-time.Hour)),
				commitAt("b", created.Add(time.Hour)),
				commitAt("c", created.Add(3*time.Hour)),
			},
			wantReason:   metrics.ReasonPostPublication,
			wantCompare:  true,
			wantBaseline: "a",
			wantBoundary: "b",
			wantHead:     "c",
		},
		{
			name: "first commit already significant",
			commits: []github.Commit{
				commitAt("a", created.Add(time.Hour)),
				commitAt("b", created.Add(2*time.Hour)),
			},
			wantReason:   metrics.ReasonPostPublication,
			wantCompare:  true,
			wantBaseline: "a",
			wantBoundary: "a",
			wantHead:     "b",
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan, err := metrics.PlanMaturity(metrics.MaturityInput{CreatedAt: created, Commits: tc.commits}, grace)
			gt.NoError(t, err)
			gt.Equal(t, plan.Reason, tc.wantReason)
			gt.Equal(t, plan.NeedsComparison, tc.wantCompare)
			gt.Equal(t, plan.BaselineSHA, tc.wantBaseline)
			gt.Equal(t, plan.BoundarySHA, tc.wantBoundary)
			gt.Equal(t, plan.HeadSHA, tc.wantHead)
			gt.Equal(t, plan.Commits, len(tc.commits))
		})
	}
}

func TestPlanMaturityWithoutCommits(t *testing.T) {
	t.Parallel()

	_, err := metrics.PlanMaturity(metrics.MaturityInput{CreatedAt: base}, grace)
	gt.True(t, errors.Is(err, metrics.ErrNoCommits))
}

func TestScoreMaturityScenarios(t *testing.T) {
	t.Parallel()

	t.Run("single commit is fully mature", func(t *testing.T) {
		t.Parallel()
		plan, err := metrics.PlanMaturity(metrics.MaturityInput{
			CreatedAt: base,
			Commits:   []github.Commit{commitAt("a", base)},
		}, grace)
		gt.NoError(t, err)

		got := metrics.ScoreMaturity(plan, metrics.ChangeAggregate{Additions: 50, Deletions: 10, Changes: 60}, metrics.ChangeAggregate{})
		gt.Equal(t, *got.Percentage, 100)
		gt.Equal(t, *got.Ratio, 1.0)
		gt.Equal(t, got.StableChanges, 60)
	})

	t.Run("grace window follow-up is fully mature", func(t *testing.T) {
		t.Parallel()
		plan, err := metrics.PlanMaturity(metrics.MaturityInput{
			CreatedAt: base,
			Commits: []github.Commit{
				commitAt("a", base.Add(-time.Minute)),
				commitAt("b", base.Add(2*time.Minute)),
			},
		}, grace)
		gt.NoError(t, err)

		got := metrics.ScoreMaturity(plan, changes(80), changes(999))
		gt.Equal(t, got.Reason, metrics.ReasonWithinGraceWindow)
		gt.Equal(t, *got.Percentage, 100)
		gt.Equal(t, got.StableChanges, 80)
	})

	t.Run("post publication changes are penalized", func(t *testing.T) {
		t.Parallel()
		plan, err := metrics.PlanMaturity(metrics.MaturityInput{
			CreatedAt: base,
			Commits: []github.Commit{
				commitAt("A", base.Add(-time.Hour)),
				commitAt("B", base.Add(time.Hour)),
				commitAt("C", base.Add(3*time.Hour)),
			},
		}, grace)
		gt.NoError(t, err)

		got := metrics.ScoreMaturity(plan, changes(100), changes(40))
		gt.Equal(t, got.Status, metrics.StatusOK)
		gt.Equal(t, got.StableChanges, 60)
		gt.Equal(t, *got.Percentage, 60)
		gt.Equal(t, *got.Ratio, 0.6)
		gt.Equal(t, got.BaselineSHA, "A")
		gt.Equal(t, got.BoundarySHA, "B")
		gt.Equal(t, got.HeadSHA, "C")
	})
}

func TestScoreMaturityRatioBounds(t *testing.T) {
	t.Parallel()

	plan := metrics.MaturityPlan{Reason: metrics.ReasonPostPublication, NeedsComparison: true}
	for total := 0; total <= 50; total += 5 {
		for after := 0; after <= 80; after += 10 {
			got := metrics.ScoreMaturity(plan, changes(total), changes(after))
			gt.True(t, *got.Ratio >= 0 && *got.Ratio <= 1)
			gt.True(t, got.StableChanges >= 0)
			if total == 0 {
				gt.Equal(t, *got.Ratio, 1.0)
			}
		}
	}
}

func TestMaturityUnavailable(t *testing.T) {
	t.Parallel()

	plan := metrics.MaturityPlan{Reason: metrics.ReasonPostPublication, BaselineSHA: "a", HeadSHA: "c"}
	got := metrics.MaturityUnavailable(plan, errors.New("compare a...c: not found"))
	gt.Equal(t, got.Status, metrics.StatusUnavailable)
	gt.V(t, got.Ratio).Nil()
	gt.V(t, got.Percentage).Nil()
	gt.Equal(t, got.BaselineSHA, "a")
	gt.Equal(t, got.Details.Error, "compare a...c: not found")

	empty := metrics.MaturityUnavailable(metrics.MaturityPlan{}, metrics.ErrNoCommits)
	gt.Equal(t, empty.Reason, metrics.ReasonMaturityUnavailable)
}
