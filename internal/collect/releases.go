package collect

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/hashicorp/go-version"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// tagScanLimit bounds how many tag names are listed before ordering.
const tagScanLimit = 100

// Releases computes release cadence and the lead time of the newest release.
func (c *Collector) Releases(ctx context.Context, ref github.ResourceRef) metrics.ReleaseResult {
	res, _ := c.releases(ctx, ref)
	return res
}

func (c *Collector) releases(ctx context.Context, ref github.ResourceRef) (metrics.ReleaseResult, error) {
	releases, err := c.client.ListReleases(ctx, ref, c.cfg.MaxReleases)
	if err != nil {
		return metrics.ReleaseUnavailable("releases could not be listed", err),
			goerr.Wrap(err, "list releases", goerr.V("repo", ref.Owner+"/"+ref.Repo))
	}

	var tags []github.ReleaseRef
	if len(metrics.SelectReleases(releases, nil, 0)) == 0 {
		tags, err = c.resolveTags(ctx, ref)
		if err != nil {
			return metrics.ReleaseUnavailable("tags could not be resolved", err),
				goerr.Wrap(err, "resolve tags", goerr.V("repo", ref.Owner+"/"+ref.Repo))
		}
	}

	res := metrics.ReleaseCadence(metrics.SelectReleases(releases, tags, c.cfg.MaxReleases))
	if res.Latest == nil || res.Previous == nil {
		return res, nil
	}

	cmp, err := c.client.Compare(ctx, ref, refName(*res.Previous), refName(*res.Latest))
	if err != nil {
		c.logger.Warn("commits between releases unavailable",
			"previous", res.Previous.Name, "latest", res.Latest.Name, "error", err)
		return res.WithLeadTime(nil, err, c.cfg.IncludeMergeCommits), nil
	}
	return res.WithLeadTime(cmp.Commits, nil, c.cfg.IncludeMergeCommits), nil
}

// resolveTags lists tag names, keeps the newest MaxReleases by version order
// and dereferences them concurrently. Tags that do not resolve to a commit
// are skipped; any other failure is returned once nothing resolved.
func (c *Collector) resolveTags(ctx context.Context, ref github.ResourceRef) ([]github.ReleaseRef, error) {
	names, err := c.client.ListTags(ctx, ref, tagScanLimit)
	if err != nil {
		return nil, err
	}
	names = orderTagNames(names)
	if len(names) > c.cfg.MaxReleases {
		names = names[:c.cfg.MaxReleases]
	}

	var (
		mu       sync.Mutex
		resolved []github.ReleaseRef
		firstErr error
	)
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, name := range names {
		g.Go(func() error {
			tag, err := c.client.ResolveTag(ctx, ref, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warn("skipping tag", "tag", name, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			resolved = append(resolved, tag)
			return nil
		})
	}
	_ = g.Wait()

	if len(resolved) == 0 && firstErr != nil && !errors.Is(firstErr, github.ErrUnresolvableTag) {
		return nil, firstErr
	}
	return resolved, nil
}

// orderTagNames puts names that parse as versions first, newest version
// first, and keeps the listed order for the rest.
func orderTagNames(names []string) []string {
	type parsed struct {
		name    string
		version *version.Version
	}
	items := make([]parsed, 0, len(names))
	for _, name := range names {
		v, _ := version.NewVersion(name)
		items = append(items, parsed{name: name, version: v})
	}

	slices.SortStableFunc(items, func(a, b parsed) int {
		switch {
		case a.version != nil && b.version != nil:
			return b.version.Compare(a.version)
		case a.version != nil:
			return -1
		case b.version != nil:
			return 1
		}
		return 0
	})

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.name)
	}
	return out
}

// refName prefers the resolved commit so that compare does not depend on
// tags that may have moved.
func refName(r github.ReleaseRef) string {
	if r.CommitSHA != "" {
		return r.CommitSHA
	}
	return r.Name
}
