package collect

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// pullRequestSnapshot holds the independently fetched parts of one pull
// request. Each part keeps its own error so one failure only degrades the
// families that need that part.
type pullRequestSnapshot struct {
	pr         github.PullRequest
	prErr      error
	files      []github.FileChange
	filesErr   error
	commits    []github.Commit
	commitsErr error
}

func (c *Collector) fetchPullRequest(ctx context.Context, ref github.ResourceRef, withCommits bool) *pullRequestSnapshot {
	snap := &pullRequestSnapshot{}

	var g errgroup.Group
	g.Go(func() error {
		snap.files, snap.filesErr = c.client.ListPullRequestFiles(ctx, ref, ref.Number)
		return nil
	})
	if withCommits {
		g.Go(func() error {
			snap.pr, snap.prErr = c.client.GetPullRequest(ctx, ref, ref.Number)
			return nil
		})
		g.Go(func() error {
			snap.commits, snap.commitsErr = c.client.ListPullRequestCommits(ctx, ref, ref.Number)
			return nil
		})
	}
	_ = g.Wait()

	return snap
}

// PullRequestSize classifies the pull request referenced by ref.
func (c *Collector) PullRequestSize(ctx context.Context, ref github.ResourceRef) metrics.SizeResult {
	res, _ := c.sizeFrom(c.fetchPullRequest(ctx, ref, false))
	return res
}

func (c *Collector) sizeFrom(snap *pullRequestSnapshot) (metrics.SizeResult, error) {
	if snap.filesErr != nil {
		err := goerr.Wrap(snap.filesErr, "pull request files unavailable")
		return metrics.SizeUnavailable("pull request files could not be listed", snap.filesErr), err
	}
	return metrics.ClassifyPullRequest(snap.files, c.cfg), nil
}

// PullRequestMaturity measures how much of the pull request survived
// unchanged past the grace window after it was opened.
func (c *Collector) PullRequestMaturity(ctx context.Context, ref github.ResourceRef) metrics.MaturityResult {
	res, _ := c.maturityFrom(ctx, ref, c.fetchPullRequest(ctx, ref, true))
	return res
}

func (c *Collector) maturityFrom(ctx context.Context, ref github.ResourceRef, snap *pullRequestSnapshot) (metrics.MaturityResult, error) {
	if snap.prErr != nil {
		err := goerr.Wrap(snap.prErr, "pull request unavailable", goerr.V("number", ref.Number))
		return metrics.MaturityUnavailable(metrics.MaturityPlan{}, snap.prErr), err
	}
	if snap.commitsErr != nil {
		err := goerr.Wrap(snap.commitsErr, "pull request commits unavailable", goerr.V("number", ref.Number))
		return metrics.MaturityUnavailable(metrics.MaturityPlan{}, snap.commitsErr), err
	}
	return c.maturity(ctx, ref, snap.pr.CreatedAt, snap.commits, snap.files, snap.filesErr)
}

// maturity plans and scores one pull request whose commits and files are
// already known. It is shared by the single pull request path and the team
// window sampling.
func (c *Collector) maturity(ctx context.Context, ref github.ResourceRef, createdAt time.Time, commits []github.Commit, files []github.FileChange, filesErr error) (metrics.MaturityResult, error) {
	plan, err := metrics.PlanMaturity(metrics.MaturityInput{CreatedAt: createdAt, Commits: commits}, c.cfg.GraceWindow)
	if err != nil {
		return metrics.MaturityUnavailable(plan, err), goerr.Wrap(err, "plan maturity", goerr.V("number", ref.Number))
	}
	if filesErr != nil {
		return metrics.MaturityUnavailable(plan, filesErr), goerr.Wrap(filesErr, "pull request files unavailable", goerr.V("number", ref.Number))
	}
	total := c.filter.Summarize(files)

	var after metrics.ChangeAggregate
	if plan.NeedsComparison {
		cmp, err := c.client.Compare(ctx, ref, plan.BaselineSHA, plan.HeadSHA)
		if err != nil {
			return metrics.MaturityUnavailable(plan, err), goerr.Wrap(err, "compare post publication changes",
				goerr.V("number", ref.Number), goerr.V("base", plan.BaselineSHA), goerr.V("head", plan.HeadSHA))
		}
		after = c.filter.Summarize(cmp.Files)
	}

	return metrics.ScoreMaturity(plan, total, after), nil
}
