package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	goGithub "github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"
)

const defaultRESTBaseURL = "https://api.github.com/"

type restClient struct {
	client   *goGithub.Client
	pageSize int
}

func newRESTClient(cfg Config) (*restClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		baseTransport := httpClient.Transport
		if baseTransport == nil {
			baseTransport = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   baseTransport,
			},
			Timeout: httpClient.Timeout,
		}
	}

	client := goGithub.NewClient(httpClient)

	baseURL := cfg.RESTBaseURL
	if baseURL == "" {
		baseURL = defaultRESTBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse REST base URL %q: %w", baseURL, err)
	}
	client.BaseURL = parsed

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return &restClient{client: client, pageSize: pageSize}, nil
}

// pageFunc fetches one page of a list endpoint.
type pageFunc[T any] func(opts goGithub.ListOptions) ([]T, *goGithub.Response, error)

// pageScan bounds a paginated walk. Limit counts kept items only; the item
// for which stop reports true ends the walk and is not kept.
type pageScan[T any] struct {
	limit int
	keep  func(T) bool
	stop  func(T) bool
}

func collectPages[T any](pageSize int, scan pageScan[T], fetch pageFunc[T]) ([]T, error) {
	var all []T
	opts := goGithub.ListOptions{PerPage: pageSize}
	for {
		items, resp, err := fetch(opts)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if scan.stop != nil && scan.stop(item) {
				return all, nil
			}
			if scan.keep != nil && !scan.keep(item) {
				continue
			}
			all = append(all, item)
			if scan.limit > 0 && len(all) >= scan.limit {
				return all, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (c *restClient) listReleases(ctx context.Context, owner, repo string, scan pageScan[*goGithub.RepositoryRelease]) ([]*goGithub.RepositoryRelease, error) {
	releases, err := collectPages(c.pageSize, scan, func(opts goGithub.ListOptions) ([]*goGithub.RepositoryRelease, *goGithub.Response, error) {
		return c.client.Repositories.ListReleases(ctx, owner, repo, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list releases", err)
	}
	return releases, nil
}

func (c *restClient) listTags(ctx context.Context, owner, repo string, limit int) ([]*goGithub.RepositoryTag, error) {
	tags, err := collectPages(c.pageSize, pageScan[*goGithub.RepositoryTag]{limit: limit}, func(opts goGithub.ListOptions) ([]*goGithub.RepositoryTag, *goGithub.Response, error) {
		return c.client.Repositories.ListTags(ctx, owner, repo, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list tags", err)
	}
	return tags, nil
}

func (c *restClient) getTagRef(ctx context.Context, owner, repo, name string) (*goGithub.Reference, error) {
	ref, _, err := c.client.Git.GetRef(ctx, owner, repo, "tags/"+name)
	if err != nil {
		return nil, wrapRESTError("get tag ref", err)
	}
	return ref, nil
}

func (c *restClient) getTagObject(ctx context.Context, owner, repo, sha string) (*goGithub.Tag, error) {
	tag, _, err := c.client.Git.GetTag(ctx, owner, repo, sha)
	if err != nil {
		return nil, wrapRESTError("get tag object", err)
	}
	return tag, nil
}

func (c *restClient) getCommit(ctx context.Context, owner, repo, ref string) (*goGithub.RepositoryCommit, error) {
	commit, _, err := c.client.Repositories.GetCommit(ctx, owner, repo, ref, nil)
	if err != nil {
		return nil, wrapRESTError("get commit", err)
	}
	return commit, nil
}

func (c *restClient) listCommits(ctx context.Context, owner, repo, ref string, limit int) ([]*goGithub.RepositoryCommit, error) {
	commits, err := collectPages(c.pageSize, pageScan[*goGithub.RepositoryCommit]{limit: limit}, func(opts goGithub.ListOptions) ([]*goGithub.RepositoryCommit, *goGithub.Response, error) {
		return c.client.Repositories.ListCommits(ctx, owner, repo, &goGithub.CommitsListOptions{
			SHA:         ref,
			ListOptions: opts,
		})
	})
	if err != nil {
		return nil, wrapRESTError("list commits", err)
	}
	return commits, nil
}

// compare pages through the commit list; files are taken from the first page
// because GitHub repeats the file list on every page.
func (c *restClient) compare(ctx context.Context, owner, repo, base, head string) ([]*goGithub.CommitFile, []*goGithub.RepositoryCommit, error) {
	var (
		files     []*goGithub.CommitFile
		firstPage = true
	)
	commits, err := collectPages(c.pageSize, pageScan[*goGithub.RepositoryCommit]{}, func(opts goGithub.ListOptions) ([]*goGithub.RepositoryCommit, *goGithub.Response, error) {
		cmp, resp, err := c.client.Repositories.CompareCommits(ctx, owner, repo, base, head, &opts)
		if err != nil {
			return nil, resp, err
		}
		if firstPage {
			files = cmp.Files
			firstPage = false
		}
		return cmp.Commits, resp, nil
	})
	if err != nil {
		return nil, nil, wrapRESTError("compare commits", err)
	}
	return files, commits, nil
}

func (c *restClient) getPullRequest(ctx context.Context, owner, repo string, number int) (*goGithub.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, wrapRESTError("get pull request", err)
	}
	return pr, nil
}

func (c *restClient) listPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*goGithub.CommitFile, error) {
	files, err := collectPages(c.pageSize, pageScan[*goGithub.CommitFile]{}, func(opts goGithub.ListOptions) ([]*goGithub.CommitFile, *goGithub.Response, error) {
		return c.client.PullRequests.ListFiles(ctx, owner, repo, number, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request files", err)
	}
	return files, nil
}

func (c *restClient) listPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*goGithub.RepositoryCommit, error) {
	commits, err := collectPages(c.pageSize, pageScan[*goGithub.RepositoryCommit]{}, func(opts goGithub.ListOptions) ([]*goGithub.RepositoryCommit, *goGithub.Response, error) {
		return c.client.PullRequests.ListCommits(ctx, owner, repo, number, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request commits", err)
	}
	return commits, nil
}

func (c *restClient) listPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*goGithub.PullRequestReview, error) {
	reviews, err := collectPages(c.pageSize, pageScan[*goGithub.PullRequestReview]{}, func(opts goGithub.ListOptions) ([]*goGithub.PullRequestReview, *goGithub.Response, error) {
		return c.client.PullRequests.ListReviews(ctx, owner, repo, number, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list pull request reviews", err)
	}
	return reviews, nil
}

func (c *restClient) listTimeline(ctx context.Context, owner, repo string, number int) ([]*goGithub.Timeline, error) {
	events, err := collectPages(c.pageSize, pageScan[*goGithub.Timeline]{}, func(opts goGithub.ListOptions) ([]*goGithub.Timeline, *goGithub.Response, error) {
		return c.client.Issues.ListIssueTimeline(ctx, owner, repo, number, &opts)
	})
	if err != nil {
		return nil, wrapRESTError("list issue timeline", err)
	}
	return events, nil
}

func (c *restClient) listPullRequests(ctx context.Context, owner, repo string, scan pageScan[*goGithub.PullRequest]) ([]*goGithub.PullRequest, error) {
	prs, err := collectPages(c.pageSize, scan, func(opts goGithub.ListOptions) ([]*goGithub.PullRequest, *goGithub.Response, error) {
		return c.client.PullRequests.List(ctx, owner, repo, &goGithub.PullRequestListOptions{
			State:       "all",
			Sort:        "created",
			Direction:   "desc",
			ListOptions: opts,
		})
	})
	if err != nil {
		return nil, wrapRESTError("list pull requests", err)
	}
	return prs, nil
}

func (c *restClient) createComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, &goGithub.IssueComment{
		Body: goGithub.Ptr(body),
	})
	if err != nil {
		return wrapRESTError("create comment", err)
	}
	return nil
}

func (c *restClient) addLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return wrapRESTError("add labels", err)
	}
	return nil
}

func wrapRESTError(op string, err error) error {
	if err == nil {
		return nil
	}

	if resp := errorResponse(err); resp != nil {
		statusErr := &statusError{
			StatusCode: resp.StatusCode,
			Err:        err,
		}
		if statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w: %w", op, ErrResourceNotFound, statusErr)
		}
		return fmt.Errorf("%s: %w", op, statusErr)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func errorResponse(err error) *http.Response {
	var respErr *goGithub.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response
	}
	var rateErr *goGithub.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Response
	}
	var abuseErr *goGithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Response
	}
	return nil
}
