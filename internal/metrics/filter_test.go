package metrics_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

func sampleFiles() []github.FileChange {
	return []github.FileChange{
		{Path: "cmd/main.go", Additions: 30, Deletions: 5, Status: github.FileModified},
		{Path: "internal/store/store.go", Additions: 20, Deletions: 10, Status: github.FileAdded},
		{Path: "go.sum", Additions: 200, Deletions: 180, Status: github.FileModified},
		{Path: "docs/old.md", Additions: 0, Deletions: 40, Status: github.FileRemoved},
		{Path: "vendor/a/b.go", Additions: 7, Deletions: 0, Status: github.FileAdded},
	}
}

func TestFileFilterGlobs(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{name: "exact match", patterns: []string{"go.sum"}, path: "go.sum", want: true},
		{name: "anchored at start", patterns: []string{"go.sum"}, path: "x/go.sum", want: false},
		{name: "star crosses slashes", patterns: []string{"vendor/*"}, path: "vendor/a/b.go", want: true},
		{name: "star suffix", patterns: []string{"*.md"}, path: "docs/old.md", want: true},
		{name: "question mark is one char", patterns: []string{"v?.go"}, path: "v1.go", want: true},
		{name: "question mark needs a char", patterns: []string{"v?.go"}, path: "v.go", want: false},
		{name: "dot is literal", patterns: []string{"a.go"}, path: "axgo", want: false},
		{name: "blank pattern ignored", patterns: []string{"  "}, path: "anything", want: false},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := metrics.NewFileFilter(metrics.FilterConfig{IgnorePatterns: tc.patterns})
			gt.Equal(t, f.Ignored(tc.path), tc.want)
		})
	}
}

func TestFileFilterAggregate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		cfg  metrics.FilterConfig
		want metrics.ChangeAggregate
	}{
		{
			name: "no filtering",
			cfg:  metrics.FilterConfig{},
			want: metrics.ChangeAggregate{Additions: 257, Deletions: 235, Changes: 492, Files: 5},
		},
		{
			name: "ignore globs",
			cfg:  metrics.FilterConfig{IgnorePatterns: []string{"go.sum", "vendor/*"}},
			want: metrics.ChangeAggregate{Additions: 50, Deletions: 55, Changes: 105, Files: 3},
		},
		{
			name: "ignore deletions",
			cfg:  metrics.FilterConfig{IgnorePatterns: []string{"go.sum"}, IgnoreDeletions: true},
			want: metrics.ChangeAggregate{Additions: 57, Deletions: 0, Changes: 57, Files: 4},
		},
		{
			name: "ignore removed files",
			cfg:  metrics.FilterConfig{IgnorePatterns: []string{"go.sum"}, IgnoreRemovedFiles: true},
			want: metrics.ChangeAggregate{Additions: 57, Deletions: 15, Changes: 72, Files: 3},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := metrics.NewFileFilter(tc.cfg).Summarize(sampleFiles())
			gt.Equal(t, got, tc.want)
			gt.True(t, got.Changes >= max(got.Additions, got.Deletions))
		})
	}
}

func TestFileFilterEmptyInputYieldsZero(t *testing.T) {
	t.Parallel()

	got := metrics.NewFileFilter(metrics.FilterConfig{}).Summarize(nil)
	gt.Equal(t, got, metrics.ChangeAggregate{})
}

func TestFileFilterClampsNegativeCounts(t *testing.T) {
	t.Parallel()

	got := metrics.NewFileFilter(metrics.FilterConfig{}).Aggregate([]github.FileChange{
		{Path: "a", Additions: -3, Deletions: 4},
	})
	gt.Equal(t, got, metrics.ChangeAggregate{Additions: 0, Deletions: 4, Changes: 4, Files: 1})
}

func TestFileFilterIsIdempotent(t *testing.T) {
	t.Parallel()

	f := metrics.NewFileFilter(metrics.FilterConfig{
		IgnorePatterns:     []string{"*.sum", "docs/*"},
		IgnoreRemovedFiles: true,
	})
	once := f.Filter(sampleFiles())
	twice := f.Filter(once)
	gt.Equal(t, twice, once)
}

func TestAggregateTotalsProperty(t *testing.T) {
	t.Parallel()

	for adds := 0; adds < 40; adds += 7 {
		for dels := 0; dels < 40; dels += 5 {
			files := []github.FileChange{
				{Path: "a.go", Additions: adds, Deletions: dels},
				{Path: "b.go", Additions: dels, Deletions: adds},
			}

			all := metrics.NewFileFilter(metrics.FilterConfig{}).Summarize(files)
			gt.Equal(t, all.Changes, all.Additions+all.Deletions)

			additive := metrics.NewFileFilter(metrics.FilterConfig{IgnoreDeletions: true}).Summarize(files)
			gt.Equal(t, additive.Changes, additive.Additions)
		}
	}
}
