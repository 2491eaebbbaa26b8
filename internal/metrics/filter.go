package metrics

import (
	"regexp"
	"strings"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// FilterConfig selects which file changes count towards size totals.
type FilterConfig struct {
	// IgnorePatterns are full-path globs. '*' matches any run of characters
	// including '/', '?' matches exactly one character.
	IgnorePatterns     []string `json:"ignore_patterns" yaml:"ignore_patterns" toml:"ignore_patterns"`
	IgnoreDeletions    bool     `json:"ignore_deletions" yaml:"ignore_deletions" toml:"ignore_deletions"`
	IgnoreRemovedFiles bool     `json:"ignore_removed_files" yaml:"ignore_removed_files" toml:"ignore_removed_files"`
}

// ChangeAggregate is the derived size of a set of file changes.
type ChangeAggregate struct {
	Additions int `json:"additions" yaml:"additions" csv:"additions"`
	Deletions int `json:"deletions" yaml:"deletions" csv:"deletions"`
	Changes   int `json:"changes" yaml:"changes" csv:"changes"`
	Files     int `json:"files" yaml:"files" csv:"files"`
}

// FileFilter applies one FilterConfig to file lists. Every aggregation path
// in the engine goes through a FileFilter so the same rules hold everywhere.
type FileFilter struct {
	cfg      FilterConfig
	patterns []*regexp.Regexp
}

// NewFileFilter compiles the ignore globs of cfg.
func NewFileFilter(cfg FilterConfig) *FileFilter {
	f := &FileFilter{cfg: cfg}
	for _, pattern := range cfg.IgnorePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		f.patterns = append(f.patterns, globToRegexp(pattern))
	}
	return f
}

func globToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	// Every rune outside '*' and '?' is quoted, so the expression always compiles.
	return regexp.MustCompile(b.String())
}

// Ignored reports whether path matches one of the ignore globs.
func (f *FileFilter) Ignored(path string) bool {
	for _, re := range f.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Filter drops ignored paths and, when configured, removed files.
func (f *FileFilter) Filter(files []github.FileChange) []github.FileChange {
	out := make([]github.FileChange, 0, len(files))
	for _, file := range files {
		if f.cfg.IgnoreRemovedFiles && file.Status == github.FileRemoved {
			continue
		}
		if f.Ignored(file.Path) {
			continue
		}
		out = append(out, file)
	}
	return out
}

// Aggregate sums the files as given. Deletions are left out of the totals
// when IgnoreDeletions is set; negative counts are treated as zero.
func (f *FileFilter) Aggregate(files []github.FileChange) ChangeAggregate {
	var agg ChangeAggregate
	for _, file := range files {
		agg.Additions += max(file.Additions, 0)
		if !f.cfg.IgnoreDeletions {
			agg.Deletions += max(file.Deletions, 0)
		}
	}
	agg.Changes = agg.Additions + agg.Deletions
	agg.Files = len(files)
	return agg
}

// Summarize filters then aggregates.
func (f *FileFilter) Summarize(files []github.FileChange) ChangeAggregate {
	return f.Aggregate(f.Filter(files))
}
