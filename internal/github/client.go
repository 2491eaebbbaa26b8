package github

import (
	"context"
	"fmt"
	"time"

	goGithub "github.com/google/go-github/v72/github"
)

const (
	gitObjectCommit = "commit"
	gitObjectTag    = "tag"
)

type client struct {
	cfg     Config
	rest    *restClient
	sleeper sleepFunc
}

func (c *client) ListReleases(ctx context.Context, repo ResourceRef, limit int) ([]ReleaseRef, error) {
	releases, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.RepositoryRelease, error) {
		return c.rest.listReleases(ctx, repo.Owner, repo.Repo, pageScan[*goGithub.RepositoryRelease]{
			limit: limit,
			keep: func(r *goGithub.RepositoryRelease) bool {
				return !r.GetDraft()
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list releases of %s/%s: %w", repo.Owner, repo.Repo, err)
	}

	out := make([]ReleaseRef, 0, len(releases))
	for _, release := range releases {
		out = append(out, mapRelease(release))
	}
	return out, nil
}

func (c *client) ListReleasesCreated(ctx context.Context, repo ResourceRef, since, until time.Time) ([]ReleaseRef, error) {
	releases, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.RepositoryRelease, error) {
		return c.rest.listReleases(ctx, repo.Owner, repo.Repo, pageScan[*goGithub.RepositoryRelease]{
			keep: func(r *goGithub.RepositoryRelease) bool {
				return !r.GetDraft() && inRange(r.GetCreatedAt().Time, since, until)
			},
			// Drafts are listed first regardless of age and must not end the walk.
			stop: func(r *goGithub.RepositoryRelease) bool {
				return !r.GetDraft() && r.GetCreatedAt().Time.Before(since)
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list releases of %s/%s created in range: %w", repo.Owner, repo.Repo, err)
	}

	out := make([]ReleaseRef, 0, len(releases))
	for _, release := range releases {
		out = append(out, mapRelease(release))
	}
	return out, nil
}

func (c *client) ListTags(ctx context.Context, repo ResourceRef, limit int) ([]string, error) {
	tags, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.RepositoryTag, error) {
		return c.rest.listTags(ctx, repo.Owner, repo.Repo, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("list tags of %s/%s: %w", repo.Owner, repo.Repo, err)
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.GetName())
	}
	return names, nil
}

// ResolveTag dereferences a tag name to its commit. Annotated tags are
// followed through their tag object, and through at most one more tag object
// when a tag points at another tag. Lightweight tags point at the commit
// directly and take the commit time as their creation time.
func (c *client) ResolveTag(ctx context.Context, repo ResourceRef, name string) (ReleaseRef, error) {
	out := ReleaseRef{Name: name, Kind: RefTag}

	ref, err := retryCall(ctx, c.cfg, c.sleeper, func() (*goGithub.Reference, error) {
		return c.rest.getTagRef(ctx, repo.Owner, repo.Repo, name)
	})
	if err != nil {
		return ReleaseRef{}, fmt.Errorf("resolve tag %q: %w", name, err)
	}

	object := ref.GetObject()
	switch object.GetType() {
	case gitObjectCommit:
		out.CommitSHA = object.GetSHA()
	case gitObjectTag:
		tag, err := c.getTagObject(ctx, repo, object.GetSHA())
		if err != nil {
			return ReleaseRef{}, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		out.CreatedAt = tag.GetTagger().GetDate().Time

		target := tag.GetObject()
		if target.GetType() == gitObjectTag {
			nested, err := c.getTagObject(ctx, repo, target.GetSHA())
			if err != nil {
				return ReleaseRef{}, fmt.Errorf("resolve nested tag of %q: %w", name, err)
			}
			target = nested.GetObject()
		}
		if target.GetType() != gitObjectCommit {
			return ReleaseRef{}, fmt.Errorf("resolve tag %q to %s object: %w", name, target.GetType(), ErrUnresolvableTag)
		}
		out.CommitSHA = target.GetSHA()
	default:
		return ReleaseRef{}, fmt.Errorf("resolve tag %q to %s object: %w", name, object.GetType(), ErrUnresolvableTag)
	}

	if out.CreatedAt.IsZero() {
		commit, err := c.GetCommit(ctx, repo, out.CommitSHA)
		if err != nil {
			return ReleaseRef{}, fmt.Errorf("resolve tag %q creation time: %w", name, err)
		}
		out.CreatedAt = commit.CommittedAt
		if out.CreatedAt.IsZero() {
			out.CreatedAt = commit.AuthoredAt
		}
	}
	return out, nil
}

func (c *client) getTagObject(ctx context.Context, repo ResourceRef, sha string) (*goGithub.Tag, error) {
	return retryCall(ctx, c.cfg, c.sleeper, func() (*goGithub.Tag, error) {
		return c.rest.getTagObject(ctx, repo.Owner, repo.Repo, sha)
	})
}

func (c *client) Compare(ctx context.Context, repo ResourceRef, base, head string) (Comparison, error) {
	type compared struct {
		files   []*goGithub.CommitFile
		commits []*goGithub.RepositoryCommit
	}
	got, err := retryCall(ctx, c.cfg, c.sleeper, func() (compared, error) {
		files, commits, err := c.rest.compare(ctx, repo.Owner, repo.Repo, base, head)
		return compared{files: files, commits: commits}, err
	})
	if err != nil {
		return Comparison{}, fmt.Errorf("compare %s...%s: %w", base, head, err)
	}

	return Comparison{
		Commits: mapCommits(got.commits),
		Files:   mapFiles(got.files),
	}, nil
}

func (c *client) GetCommit(ctx context.Context, repo ResourceRef, ref string) (Commit, error) {
	commit, err := retryCall(ctx, c.cfg, c.sleeper, func() (*goGithub.RepositoryCommit, error) {
		return c.rest.getCommit(ctx, repo.Owner, repo.Repo, ref)
	})
	if err != nil {
		return Commit{}, fmt.Errorf("get commit %s: %w", ref, err)
	}
	return mapRepositoryCommit(commit), nil
}

func (c *client) ListCommits(ctx context.Context, repo ResourceRef, ref string, limit int) ([]Commit, error) {
	commits, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.RepositoryCommit, error) {
		return c.rest.listCommits(ctx, repo.Owner, repo.Repo, ref, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("list commits reachable from %s: %w", ref, err)
	}
	return mapCommits(commits), nil
}

func (c *client) GetPullRequest(ctx context.Context, repo ResourceRef, number int) (PullRequest, error) {
	pr, err := retryCall(ctx, c.cfg, c.sleeper, func() (*goGithub.PullRequest, error) {
		return c.rest.getPullRequest(ctx, repo.Owner, repo.Repo, number)
	})
	if err != nil {
		return PullRequest{}, fmt.Errorf("fetch pull request #%d: %w", number, err)
	}
	return mapPullRequest(pr), nil
}

func (c *client) ListPullRequestFiles(ctx context.Context, repo ResourceRef, number int) ([]FileChange, error) {
	files, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.CommitFile, error) {
		return c.rest.listPullRequestFiles(ctx, repo.Owner, repo.Repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pull request #%d files: %w", number, err)
	}
	return mapFiles(files), nil
}

func (c *client) ListPullRequestCommits(ctx context.Context, repo ResourceRef, number int) ([]Commit, error) {
	commits, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.RepositoryCommit, error) {
		return c.rest.listPullRequestCommits(ctx, repo.Owner, repo.Repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pull request #%d commits: %w", number, err)
	}
	return mapCommits(commits), nil
}

func (c *client) ListReviews(ctx context.Context, repo ResourceRef, number int) ([]Review, error) {
	reviews, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.PullRequestReview, error) {
		return c.rest.listPullRequestReviews(ctx, repo.Owner, repo.Repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pull request #%d reviews: %w", number, err)
	}
	return mapReviews(reviews), nil
}

func (c *client) ListTimeline(ctx context.Context, repo ResourceRef, number int) ([]TimelineEvent, error) {
	events, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.Timeline, error) {
		return c.rest.listTimeline(ctx, repo.Owner, repo.Repo, number)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pull request #%d timeline: %w", number, err)
	}
	return mapTimeline(events), nil
}

func (c *client) ListPullRequestsCreated(ctx context.Context, repo ResourceRef, since, until time.Time) ([]PullRequest, error) {
	prs, err := retryCall(ctx, c.cfg, c.sleeper, func() ([]*goGithub.PullRequest, error) {
		return c.rest.listPullRequests(ctx, repo.Owner, repo.Repo, pageScan[*goGithub.PullRequest]{
			keep: func(pr *goGithub.PullRequest) bool {
				return inRange(pr.GetCreatedAt().Time, since, until)
			},
			stop: func(pr *goGithub.PullRequest) bool {
				return pr.GetCreatedAt().Time.Before(since)
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests of %s/%s created in range: %w", repo.Owner, repo.Repo, err)
	}

	out := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, mapPullRequest(pr))
	}
	return out, nil
}

func (c *client) CreateComment(ctx context.Context, repo ResourceRef, number int, body string) error {
	err := doWithRetry(ctx, c.cfg.MaxRetries, c.cfg.InitialBackoff, c.sleeper, func() error {
		return c.rest.createComment(ctx, repo.Owner, repo.Repo, number, body)
	})
	if err != nil {
		return fmt.Errorf("comment on pull request #%d: %w", number, err)
	}
	return nil
}

func (c *client) AddLabels(ctx context.Context, repo ResourceRef, number int, labels ...string) error {
	if len(labels) == 0 {
		return nil
	}
	err := doWithRetry(ctx, c.cfg.MaxRetries, c.cfg.InitialBackoff, c.sleeper, func() error {
		return c.rest.addLabels(ctx, repo.Owner, repo.Repo, number, labels)
	})
	if err != nil {
		return fmt.Errorf("label pull request #%d: %w", number, err)
	}
	return nil
}
