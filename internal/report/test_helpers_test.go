package report

import (
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

func f64(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func samplePRReport() metrics.Report {
	latest := github.ReleaseRef{Name: "v1.4.0", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Kind: github.RefRelease}
	previous := github.ReleaseRef{Name: "v1.3.0", CreatedAt: time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC), Kind: github.RefRelease}

	return metrics.Report{
		Target: github.ResourceRef{
			Owner:  "octo",
			Repo:   "repo",
			Number: 42,
			Type:   github.ResourcePullRequest,
			URL:    "https://github.com/octo/repo/pull/42",
		},
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Release: &metrics.ReleaseResult{
			Status:                  metrics.StatusOK,
			Source:                  github.RefRelease,
			Candidates:              2,
			Latest:                  &latest,
			Previous:                &previous,
			DeploymentFrequencyDays: f64(9),
			LeadTime: &metrics.LeadTimeStats{
				AverageHours: 1234.5,
				OldestHours:  2000,
				OldestSHA:    "0123456789abcdef",
				NewestHours:  3,
				NewestSHA:    "fedcba9876543210",
				Commits:      12,
				Samples:      12,
			},
		},
		Size: &metrics.SizeResult{
			Status:            metrics.StatusOK,
			Category:          "m",
			Label:             "size/m",
			Aggregate:         metrics.ChangeAggregate{Additions: 100, Deletions: 20, Changes: 120, Files: 4},
			FilesBeforeFilter: 6,
		},
		Maturity: &metrics.MaturityResult{
			Status:       metrics.StatusUnavailable,
			Reason:       metrics.ReasonPostPublication,
			BaselineSHA:  "aaaaaaaaaa",
			HeadSHA:      "cccccccccc",
			Details:      metrics.Details{Reason: "post_publication_changes", Error: "compare aaaaaaa...ccccccc: not found"},
			TotalChanges: 0,
		},
	}
}

func sampleRepoReport() metrics.Report {
	return metrics.Report{
		Target: github.ResourceRef{
			Owner: "octo",
			Repo:  "repo",
			Type:  github.ResourceRepository,
			URL:   "https://github.com/octo/repo",
		},
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Team: &metrics.TeamResult{
			Status: metrics.StatusOK,
			Window: metrics.WindowWeekly,
			Start:  time.Date(2026, 2, 23, 9, 0, 0, 0, time.UTC),
			End:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			Metrics: &metrics.TeamMetrics{
				PullRequests:   3,
				Merged:         2,
				Authors:        2,
				Pickup:         metrics.RatedValue{Value: f64(2.5), Samples: 2, Rating: metrics.RatingGood},
				Approve:        metrics.RatedValue{},
				Merge:          metrics.RatedValue{Value: f64(1), Samples: 1, Rating: metrics.RatingElite},
				MergeFrequency: metrics.RatedValue{Value: f64(1), Samples: 2, Rating: metrics.RatingFair},
				SizeDistribution: []metrics.SizeShare{
					{Category: "s", Count: 2, Percent: 66.67},
					{Category: "m", Count: 1, Percent: 33.33},
				},
				PredominantSize: "s",
				PRSizeRating:    metrics.RatingElite,
				Maturity:        &metrics.RatedValue{Value: f64(92), Samples: 3, Rating: metrics.RatingElite},
				Samples: []metrics.PullRequestTimings{
					{Number: 5, Author: "alice", PickupHours: f64(2), SizeCategory: "s"},
				},
			},
			Release: metrics.ReleaseWindowResult{
				Status:  metrics.StatusNoData,
				Details: metrics.Details{Reason: metrics.ReasonNoReleasesInWindow},
			},
		},
	}
}
