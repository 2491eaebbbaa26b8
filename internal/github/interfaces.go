package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultMaxRetries is the default retry count for GitHub API requests.
	DefaultMaxRetries = 3
	// DefaultInitialBackoff is the first retry delay.
	DefaultInitialBackoff = 2 * time.Second
	// DefaultPageSize is the per-page size used for list endpoints.
	DefaultPageSize = 100
)

// ErrResourceNotFound indicates the requested GitHub resource does not exist.
var ErrResourceNotFound = errors.New("github resource not found")

// ErrUnresolvableTag indicates a tag could not be dereferenced to a commit.
var ErrUnresolvableTag = errors.New("tag does not resolve to a commit")

// Client is the set of provider capabilities the metrics collector consumes.
type Client interface {
	ListReleases(ctx context.Context, repo ResourceRef, limit int) ([]ReleaseRef, error)
	ListReleasesCreated(ctx context.Context, repo ResourceRef, since, until time.Time) ([]ReleaseRef, error)
	ListTags(ctx context.Context, repo ResourceRef, limit int) ([]string, error)
	ResolveTag(ctx context.Context, repo ResourceRef, name string) (ReleaseRef, error)
	Compare(ctx context.Context, repo ResourceRef, base, head string) (Comparison, error)
	GetCommit(ctx context.Context, repo ResourceRef, ref string) (Commit, error)
	ListCommits(ctx context.Context, repo ResourceRef, ref string, limit int) ([]Commit, error)

	GetPullRequest(ctx context.Context, repo ResourceRef, number int) (PullRequest, error)
	ListPullRequestFiles(ctx context.Context, repo ResourceRef, number int) ([]FileChange, error)
	ListPullRequestCommits(ctx context.Context, repo ResourceRef, number int) ([]Commit, error)
	ListReviews(ctx context.Context, repo ResourceRef, number int) ([]Review, error)
	ListTimeline(ctx context.Context, repo ResourceRef, number int) ([]TimelineEvent, error)
	ListPullRequestsCreated(ctx context.Context, repo ResourceRef, since, until time.Time) ([]PullRequest, error)

	CreateComment(ctx context.Context, repo ResourceRef, number int, body string) error
	AddLabels(ctx context.Context, repo ResourceRef, number int, labels ...string) error
}

// Config configures the GitHub client.
type Config struct {
	Token          string
	HTTPClient     *http.Client
	MaxRetries     int
	InitialBackoff time.Duration
	RESTBaseURL    string
	PageSize       int
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// NewClient constructs a retrying REST-backed client.
func NewClient(cfg Config) (Client, error) {
	cfg = cfg.WithDefaults()
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid MaxRetries %d", cfg.MaxRetries)
	}
	if cfg.InitialBackoff < 0 {
		return nil, fmt.Errorf("invalid InitialBackoff %s", cfg.InitialBackoff)
	}
	if cfg.PageSize < 0 || cfg.PageSize > DefaultPageSize {
		return nil, fmt.Errorf("invalid PageSize %d", cfg.PageSize)
	}

	restClient, err := newRESTClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create REST client: %w", err)
	}

	return &client{
		cfg:  cfg,
		rest: restClient,
	}, nil
}
