package parser

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	gh "github.com/johnqtcg/shipmetrics/internal/github"
)

// ErrInvalidReference indicates an input is not a supported repository or
// pull request reference.
var ErrInvalidReference = errors.New("invalid GitHub reference")

// namePattern matches the characters GitHub allows in owner and repo names.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// RefParser parses a raw reference into a normalized resource reference.
type RefParser interface {
	Parse(raw string) (gh.ResourceRef, error)
}

// New creates the default reference parser implementation.
func New() RefParser {
	return &defaultParser{}
}

type defaultParser struct{}

// Parse accepts a repository URL, a pull request URL, or the shorthands
// owner/repo and owner/repo#number.
func (p *defaultParser) Parse(raw string) (gh.ResourceRef, error) {
	_ = p

	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		return parseShorthand(raw)
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return gh.ResourceRef{}, fmt.Errorf("parse URL %q: %w", raw, invalid(err.Error()))
	}

	host := strings.ToLower(parsedURL.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return gh.ResourceRef{}, fmt.Errorf("validate URL host %q: %w", host, invalid("unsupported host"))
	}

	segments := splitPathSegments(parsedURL.Path)
	switch len(segments) {
	case 2:
		return repositoryRef(segments[0], strings.TrimSuffix(segments[1], ".git"))
	case 4:
		if segments[2] != "pull" {
			return gh.ResourceRef{}, fmt.Errorf("resolve resource kind %q: %w", segments[2], invalid("only pull request URLs are supported"))
		}
		return pullRequestRef(segments[0], segments[1], segments[3])
	default:
		return gh.ResourceRef{}, fmt.Errorf("parse URL path %q: %w", parsedURL.Path,
			invalid("path must be /{owner}/{repo} or /{owner}/{repo}/pull/{number}"))
	}
}

func parseShorthand(raw string) (gh.ResourceRef, error) {
	repoPart, numberText, hasNumber := strings.Cut(raw, "#")

	segments := strings.Split(repoPart, "/")
	if len(segments) != 2 {
		return gh.ResourceRef{}, fmt.Errorf("parse reference %q: %w", raw, invalid("expected owner/repo or owner/repo#number"))
	}
	if hasNumber {
		return pullRequestRef(segments[0], segments[1], numberText)
	}
	return repositoryRef(segments[0], segments[1])
}

func repositoryRef(owner, repo string) (gh.ResourceRef, error) {
	if err := validateNames(owner, repo); err != nil {
		return gh.ResourceRef{}, err
	}
	return gh.ResourceRef{
		Owner: owner,
		Repo:  repo,
		Type:  gh.ResourceRepository,
		URL:   fmt.Sprintf("https://github.com/%s/%s", owner, repo),
	}, nil
}

func pullRequestRef(owner, repo, numberText string) (gh.ResourceRef, error) {
	if err := validateNames(owner, repo); err != nil {
		return gh.ResourceRef{}, err
	}

	number, parseErr := strconv.Atoi(numberText)
	if parseErr != nil || number <= 0 {
		return gh.ResourceRef{}, fmt.Errorf("validate pull request number %q: %w", numberText, invalid("pull request number must be a positive integer"))
	}

	return gh.ResourceRef{
		Owner:  owner,
		Repo:   repo,
		Number: number,
		Type:   gh.ResourcePullRequest,
		URL:    fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number),
	}, nil
}

func validateNames(owner, repo string) error {
	if owner == "" || repo == "" {
		return fmt.Errorf("validate owner/repo: %w", invalid("owner/repo must not be empty"))
	}
	if !namePattern.MatchString(owner) || !namePattern.MatchString(repo) {
		return fmt.Errorf("validate owner/repo %q: %w", owner+"/"+repo, invalid("owner/repo contains unsupported characters"))
	}
	return nil
}

func splitPathSegments(rawPath string) []string {
	trimmed := strings.Trim(rawPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, reason)
}
