package github

import "time"

// ResourceType identifies what a reference points at.
type ResourceType string

const (
	// ResourceRepository is the type for whole-repository targets.
	ResourceRepository ResourceType = "repository"
	// ResourcePullRequest is the type for single pull request targets.
	ResourcePullRequest ResourceType = "pull_request"
)

// ResourceRef is the normalized identity extracted from user input.
type ResourceRef struct {
	Owner  string       `json:"owner" yaml:"owner"`
	Repo   string       `json:"repo" yaml:"repo"`
	Number int          `json:"number,omitempty" yaml:"number,omitempty"`
	Type   ResourceType `json:"type" yaml:"type"`
	URL    string       `json:"url" yaml:"url"`
}

// RefKind tells whether a release reference came from a release or a bare tag.
type RefKind string

const (
	// RefRelease marks references built from published releases.
	RefRelease RefKind = "release"
	// RefTag marks references built from git tags.
	RefTag RefKind = "tag"
)

// ReleaseRef is a release or tag resolved to its underlying commit.
type ReleaseRef struct {
	Name      string    `json:"name" yaml:"name"`
	CommitSHA string    `json:"commit_sha,omitempty" yaml:"commit_sha,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Draft     bool      `json:"draft" yaml:"draft"`
	Kind      RefKind   `json:"kind" yaml:"kind"`
}

// Commit stores the commit fields the metrics engine reads.
type Commit struct {
	SHA         string
	AuthoredAt  time.Time
	CommittedAt time.Time
	Parents     []string
	Message     string
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Timestamp returns the author time, falling back to the committer time.
func (c Commit) Timestamp() time.Time {
	if !c.AuthoredAt.IsZero() {
		return c.AuthoredAt
	}
	return c.CommittedAt
}

// FileStatus is the change status GitHub reports for one file.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
	FileRenamed  FileStatus = "renamed"
)

// FileChange is one file entry of a pull request or comparison diff.
type FileChange struct {
	Path      string
	Additions int
	Deletions int
	Status    FileStatus
}

// Comparison is the result of comparing two refs.
type Comparison struct {
	Commits []Commit
	Files   []FileChange
}

// Label stores minimal label data.
type Label struct {
	Name string
}

// Timeline event kinds the metrics engine cares about.
const (
	EventReviewed       = "reviewed"
	EventCommented      = "commented"
	EventLineCommented  = "line-commented"
	EventReadyForReview = "ready_for_review"
	EventConvertToDraft = "convert_to_draft"
)

// TimelineEvent represents one normalized pull request timeline event.
type TimelineEvent struct {
	Kind      string
	At        time.Time
	Actor     string
	Automated bool
}

// Review states reported by GitHub.
const (
	ReviewApproved         = "APPROVED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
	ReviewCommented        = "COMMENTED"
	ReviewDismissed        = "DISMISSED"
)

// Review is one formal pull request review.
type Review struct {
	State       string
	SubmittedAt time.Time
	Actor       string
	Automated   bool
}

// PullRequest is the normalized pull request payload consumed by the engine.
// Commits, Timeline and Reviews are only populated when fetched explicitly.
type PullRequest struct {
	Number    int
	Title     string
	URL       string
	CreatedAt time.Time
	Draft     bool
	MergedAt  *time.Time
	Author    string
	Labels    []Label
	HeadSHA   string
	BaseSHA   string

	Commits  []Commit
	Timeline []TimelineEvent
	Reviews  []Review
}

// HasLabel reports whether the pull request carries a label with the given name.
func (p PullRequest) HasLabel(name string) bool {
	for _, label := range p.Labels {
		if label.Name == name {
			return true
		}
	}
	return false
}
