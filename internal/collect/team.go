package collect

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// ancestorLimit caps the history walked for a release without predecessor.
const ancestorLimit = 1000

// Team computes the team family for the configured window ending now.
func (c *Collector) Team(ctx context.Context, ref github.ResourceRef, withMaturity bool) metrics.TeamResult {
	res, _ := c.team(ctx, ref, withMaturity)
	return res
}

func (c *Collector) team(ctx context.Context, ref github.ResourceRef, withMaturity bool) (metrics.TeamResult, error) {
	start, end := c.cfg.Window.Range(c.now())
	logger := c.logger.With("window", c.cfg.Window.Name, "start", start, "end", end)

	var (
		prs       []github.PullRequest
		prsErr    error
		ranges    []metrics.ReleaseRange
		rangesErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		prs, prsErr = c.client.ListPullRequestsCreated(ctx, ref, start, end)
		return nil
	})
	g.Go(func() error {
		ranges, rangesErr = c.releaseRanges(ctx, ref, start, end)
		return nil
	})
	_ = g.Wait()

	in := metrics.TeamInput{Start: start, End: end, Releases: ranges, ReleasesErr: rangesErr}
	if rangesErr != nil {
		logger.Warn("releases in window unavailable", "error", rangesErr)
	}
	if prsErr != nil {
		return metrics.TeamUnavailable(in, c.cfg, prsErr),
			goerr.Wrap(prsErr, "list pull requests in window", goerr.V("repo", ref.Owner+"/"+ref.Repo))
	}

	logger.Debug("pull requests in window", "count", len(prs))
	in.PullRequests, in.Maturity = c.enrichPullRequests(ctx, ref, prs, withMaturity)
	return metrics.AggregateTeam(in, c.cfg), nil
}

// enrichPullRequests attaches timeline and reviews to every pull request,
// and samples maturity when asked. Lookups fail per pull request: the pull
// request is kept with whatever could be fetched.
func (c *Collector) enrichPullRequests(ctx context.Context, ref github.ResourceRef, prs []github.PullRequest, withMaturity bool) ([]github.PullRequest, []metrics.MaturityResult) {
	out := slices.Clone(prs)
	sampled := make([]*metrics.MaturityResult, len(prs))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i := range out {
		g.Go(func() error {
			sampled[i] = c.enrichPullRequest(ctx, pullRequestRef(ref, out[i]), &out[i], withMaturity)
			return nil
		})
	}
	_ = g.Wait()

	var maturity []metrics.MaturityResult
	for _, m := range sampled {
		if m != nil {
			maturity = append(maturity, *m)
		}
	}
	return out, maturity
}

func (c *Collector) enrichPullRequest(ctx context.Context, ref github.ResourceRef, pr *github.PullRequest, withMaturity bool) *metrics.MaturityResult {
	var (
		timelineErr, reviewsErr, commitsErr, filesErr error
		files                                         []github.FileChange
	)

	var g errgroup.Group
	g.Go(func() error {
		pr.Timeline, timelineErr = c.client.ListTimeline(ctx, ref, pr.Number)
		return nil
	})
	g.Go(func() error {
		pr.Reviews, reviewsErr = c.client.ListReviews(ctx, ref, pr.Number)
		return nil
	})
	if withMaturity {
		g.Go(func() error {
			pr.Commits, commitsErr = c.client.ListPullRequestCommits(ctx, ref, pr.Number)
			return nil
		})
		g.Go(func() error {
			files, filesErr = c.client.ListPullRequestFiles(ctx, ref, pr.Number)
			return nil
		})
	}
	_ = g.Wait()

	logger := c.logger.With("number", pr.Number)
	if timelineErr != nil {
		logger.Warn("timeline unavailable", "error", timelineErr)
	}
	if reviewsErr != nil {
		logger.Warn("reviews unavailable", "error", reviewsErr)
	}
	if !withMaturity {
		return nil
	}
	if commitsErr != nil {
		logger.Warn("commits unavailable, maturity not sampled", "error", commitsErr)
		return nil
	}

	res, err := c.maturity(ctx, ref, pr.CreatedAt, pr.Commits, files, filesErr)
	if err != nil {
		logger.Warn("maturity unavailable", "error", err)
	}
	return &res
}

// releaseRanges lists the releases created in [start, end) and the commits
// each one shipped: the diff from its predecessor, or its whole ancestry
// when it is the first release.
func (c *Collector) releaseRanges(ctx context.Context, ref github.ResourceRef, start, end time.Time) ([]metrics.ReleaseRange, error) {
	created, err := c.client.ListReleasesCreated(ctx, ref, start, end)
	if err != nil {
		return nil, err
	}
	inWindow := metrics.SelectReleases(created, nil, 0)
	if len(inWindow) == 0 {
		return nil, nil
	}

	// One extra release so the oldest in-window release finds its predecessor.
	listed, err := c.client.ListReleases(ctx, ref, len(inWindow)+1)
	if err != nil {
		return nil, err
	}
	ordered := metrics.SelectReleases(listed, nil, 0)

	ranges := make([]metrics.ReleaseRange, len(inWindow))
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, release := range inWindow {
		g.Go(func() error {
			ranges[i] = c.releaseRange(ctx, ref, release, predecessor(ordered, release))
			return nil
		})
	}
	_ = g.Wait()

	return ranges, nil
}

func (c *Collector) releaseRange(ctx context.Context, ref github.ResourceRef, release github.ReleaseRef, previous *github.ReleaseRef) metrics.ReleaseRange {
	out := metrics.ReleaseRange{Release: release}

	if previous != nil {
		cmp, err := c.client.Compare(ctx, ref, refName(*previous), refName(release))
		if err != nil {
			c.logger.Warn("release range unavailable", "release", release.Name, "previous", previous.Name, "error", err)
			return out
		}
		out.Commits = cmp.Commits
		if out.Release.CommitSHA == "" && len(cmp.Commits) > 0 {
			out.Release.CommitSHA = cmp.Commits[len(cmp.Commits)-1].SHA
		}
		return out
	}

	commits, err := c.client.ListCommits(ctx, ref, refName(release), ancestorLimit)
	if err != nil {
		c.logger.Warn("release ancestry unavailable", "release", release.Name, "error", err)
		return out
	}
	out.Commits = commits
	if out.Release.CommitSHA == "" && len(commits) > 0 {
		out.Release.CommitSHA = commits[0].SHA
	}
	return out
}

// predecessor finds the release listed right after release in newest first
// order.
func predecessor(ordered []github.ReleaseRef, release github.ReleaseRef) *github.ReleaseRef {
	for i, candidate := range ordered {
		if candidate.Name == release.Name && i+1 < len(ordered) {
			prev := ordered[i+1]
			return &prev
		}
	}
	return nil
}

func pullRequestRef(repo github.ResourceRef, pr github.PullRequest) github.ResourceRef {
	return github.ResourceRef{
		Owner:  repo.Owner,
		Repo:   repo.Repo,
		Number: pr.Number,
		Type:   github.ResourcePullRequest,
		URL:    pr.URL,
	}
}
