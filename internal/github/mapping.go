package github

import (
	"strings"
	"time"

	goGithub "github.com/google/go-github/v72/github"
)

func mapRelease(release *goGithub.RepositoryRelease) ReleaseRef {
	return ReleaseRef{
		Name:      release.GetTagName(),
		CreatedAt: release.GetCreatedAt().Time,
		Draft:     release.GetDraft(),
		Kind:      RefRelease,
	}
}

func mapRepositoryCommit(commit *goGithub.RepositoryCommit) Commit {
	parents := make([]string, 0, len(commit.Parents))
	for _, parent := range commit.Parents {
		parents = append(parents, parent.GetSHA())
	}

	return Commit{
		SHA:         commit.GetSHA(),
		AuthoredAt:  commit.GetCommit().GetAuthor().GetDate().Time,
		CommittedAt: commit.GetCommit().GetCommitter().GetDate().Time,
		Parents:     parents,
		Message:     commit.GetCommit().GetMessage(),
	}
}

func mapCommits(commits []*goGithub.RepositoryCommit) []Commit {
	out := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		out = append(out, mapRepositoryCommit(commit))
	}
	return out
}

func mapFiles(files []*goGithub.CommitFile) []FileChange {
	out := make([]FileChange, 0, len(files))
	for _, file := range files {
		out = append(out, FileChange{
			Path:      file.GetFilename(),
			Additions: file.GetAdditions(),
			Deletions: file.GetDeletions(),
			Status:    FileStatus(file.GetStatus()),
		})
	}
	return out
}

func mapLabels(labels []*goGithub.Label) []Label {
	out := make([]Label, 0, len(labels))
	for _, label := range labels {
		out = append(out, Label{Name: label.GetName()})
	}
	return out
}

func mapPullRequest(pr *goGithub.PullRequest) PullRequest {
	out := PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		URL:       pr.GetHTMLURL(),
		CreatedAt: pr.GetCreatedAt().Time,
		Draft:     pr.GetDraft(),
		Author:    pr.GetUser().GetLogin(),
		Labels:    mapLabels(pr.Labels),
		HeadSHA:   pr.GetHead().GetSHA(),
		BaseSHA:   pr.GetBase().GetSHA(),
	}
	if pr.MergedAt != nil && !pr.MergedAt.IsZero() {
		mergedAt := pr.MergedAt.Time
		out.MergedAt = &mergedAt
	}
	return out
}

func mapReviews(reviews []*goGithub.PullRequestReview) []Review {
	out := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, Review{
			State:       strings.ToUpper(review.GetState()),
			SubmittedAt: review.GetSubmittedAt().Time,
			Actor:       review.GetUser().GetLogin(),
			Automated:   isAutomation(review.GetUser()),
		})
	}
	return out
}

// mapTimeline normalizes timeline entries. Review entries carry submitted_at
// and user instead of created_at and actor.
func mapTimeline(events []*goGithub.Timeline) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(events))
	for _, event := range events {
		at := event.GetCreatedAt().Time
		if at.IsZero() {
			at = event.GetSubmittedAt().Time
		}

		actor := event.Actor
		if actor == nil {
			actor = event.User
		}

		out = append(out, TimelineEvent{
			Kind:      event.GetEvent(),
			At:        at,
			Actor:     actor.GetLogin(),
			Automated: isAutomation(actor),
		})
	}
	return out
}

func isAutomation(user *goGithub.User) bool {
	if user == nil {
		return false
	}
	return strings.EqualFold(user.GetType(), "Bot") || strings.HasSuffix(user.GetLogin(), "[bot]")
}

func inRange(t, since, until time.Time) bool {
	return !t.Before(since) && t.Before(until)
}
