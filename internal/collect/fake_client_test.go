package collect_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

var errNotConfigured = errors.New("mock not configured")

// fakeClient is a github.Client whose behavior is set per method. Methods
// without a configured func fail with errNotConfigured.
type fakeClient struct {
	listReleasesFunc            func(limit int) ([]github.ReleaseRef, error)
	listReleasesCreatedFunc     func(since, until time.Time) ([]github.ReleaseRef, error)
	listTagsFunc                func(limit int) ([]string, error)
	resolveTagFunc              func(name string) (github.ReleaseRef, error)
	compareFunc                 func(base, head string) (github.Comparison, error)
	listCommitsFunc             func(ref string, limit int) ([]github.Commit, error)
	getPullRequestFunc          func(number int) (github.PullRequest, error)
	listPullRequestFilesFunc    func(number int) ([]github.FileChange, error)
	listPullRequestCommitsFunc  func(number int) ([]github.Commit, error)
	listReviewsFunc             func(number int) ([]github.Review, error)
	listTimelineFunc            func(number int) ([]github.TimelineEvent, error)
	listPullRequestsCreatedFunc func(since, until time.Time) ([]github.PullRequest, error)
	createCommentFunc           func(number int, body string) error
	addLabelsFunc               func(number int, labels []string) error

	mu       sync.Mutex
	compares [][2]string
	comments []string
	labels   [][]string
}

func (f *fakeClient) ListReleases(_ context.Context, _ github.ResourceRef, limit int) ([]github.ReleaseRef, error) {
	if f.listReleasesFunc == nil {
		return nil, errNotConfigured
	}
	return f.listReleasesFunc(limit)
}

func (f *fakeClient) ListReleasesCreated(_ context.Context, _ github.ResourceRef, since, until time.Time) ([]github.ReleaseRef, error) {
	if f.listReleasesCreatedFunc == nil {
		return nil, errNotConfigured
	}
	return f.listReleasesCreatedFunc(since, until)
}

func (f *fakeClient) ListTags(_ context.Context, _ github.ResourceRef, limit int) ([]string, error) {
	if f.listTagsFunc == nil {
		return nil, errNotConfigured
	}
	return f.listTagsFunc(limit)
}

func (f *fakeClient) ResolveTag(_ context.Context, _ github.ResourceRef, name string) (github.ReleaseRef, error) {
	if f.resolveTagFunc == nil {
		return github.ReleaseRef{}, errNotConfigured
	}
	return f.resolveTagFunc(name)
}

func (f *fakeClient) Compare(_ context.Context, _ github.ResourceRef, base, head string) (github.Comparison, error) {
	f.mu.Lock()
	f.compares = append(f.compares, [2]string{base, head})
	f.mu.Unlock()
	if f.compareFunc == nil {
		return github.Comparison{}, errNotConfigured
	}
	return f.compareFunc(base, head)
}

func (f *fakeClient) GetCommit(context.Context, github.ResourceRef, string) (github.Commit, error) {
	return github.Commit{}, errNotConfigured
}

func (f *fakeClient) ListCommits(_ context.Context, _ github.ResourceRef, ref string, limit int) ([]github.Commit, error) {
	if f.listCommitsFunc == nil {
		return nil, errNotConfigured
	}
	return f.listCommitsFunc(ref, limit)
}

func (f *fakeClient) GetPullRequest(_ context.Context, _ github.ResourceRef, number int) (github.PullRequest, error) {
	if f.getPullRequestFunc == nil {
		return github.PullRequest{}, errNotConfigured
	}
	return f.getPullRequestFunc(number)
}

func (f *fakeClient) ListPullRequestFiles(_ context.Context, _ github.ResourceRef, number int) ([]github.FileChange, error) {
	if f.listPullRequestFilesFunc == nil {
		return nil, errNotConfigured
	}
	return f.listPullRequestFilesFunc(number)
}

func (f *fakeClient) ListPullRequestCommits(_ context.Context, _ github.ResourceRef, number int) ([]github.Commit, error) {
	if f.listPullRequestCommitsFunc == nil {
		return nil, errNotConfigured
	}
	return f.listPullRequestCommitsFunc(number)
}

func (f *fakeClient) ListReviews(_ context.Context, _ github.ResourceRef, number int) ([]github.Review, error) {
	if f.listReviewsFunc == nil {
		return nil, errNotConfigured
	}
	return f.listReviewsFunc(number)
}

func (f *fakeClient) ListTimeline(_ context.Context, _ github.ResourceRef, number int) ([]github.TimelineEvent, error) {
	if f.listTimelineFunc == nil {
		return nil, errNotConfigured
	}
	return f.listTimelineFunc(number)
}

func (f *fakeClient) ListPullRequestsCreated(_ context.Context, _ github.ResourceRef, since, until time.Time) ([]github.PullRequest, error) {
	if f.listPullRequestsCreatedFunc == nil {
		return nil, errNotConfigured
	}
	return f.listPullRequestsCreatedFunc(since, until)
}

func (f *fakeClient) CreateComment(_ context.Context, _ github.ResourceRef, number int, body string) error {
	f.mu.Lock()
	f.comments = append(f.comments, body)
	f.mu.Unlock()
	if f.createCommentFunc == nil {
		return nil
	}
	return f.createCommentFunc(number, body)
}

func (f *fakeClient) AddLabels(_ context.Context, _ github.ResourceRef, number int, labels ...string) error {
	f.mu.Lock()
	f.labels = append(f.labels, labels)
	f.mu.Unlock()
	if f.addLabelsFunc == nil {
		return nil
	}
	return f.addLabelsFunc(number, labels)
}
