package github

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goGithub "github.com/google/go-github/v72/github"
)

// ErrorKind is a coarse class of provider failure. It is attached to
// unavailable metric results so readers can tell a missing token from a
// missing ref.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindNotFound  ErrorKind = "not_found"
	KindCanceled  ErrorKind = "canceled"
	KindOther     ErrorKind = "other"
)

// Classify maps a provider error to its kind. It returns "" for nil.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case IsRateLimitError(err):
		return KindRateLimit
	case IsNotFound(err):
		return KindNotFound
	case IsAuthError(err):
		return KindAuth
	default:
		return KindOther
	}
}

// StatusCode extracts the wrapped HTTP status code when available.
func StatusCode(err error) (int, bool) {
	var stErr *statusError
	if errors.As(err, &stErr) {
		return stErr.StatusCode, true
	}
	return 0, false
}

// IsRateLimitError reports whether an error is a primary or secondary
// GitHub rate limit failure.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var primary *goGithub.RateLimitError
	var secondary *goGithub.AbuseRateLimitError
	if errors.As(err, &primary) || errors.As(err, &secondary) {
		return true
	}

	if status, ok := StatusCode(err); ok {
		if status == http.StatusTooManyRequests {
			return true
		}
		if status != http.StatusForbidden {
			return false
		}
	}
	return looksLikeRateLimitError(err)
}

// IsAuthError reports whether an error is an authentication or authorization failure.
func IsAuthError(err error) bool {
	if err == nil || IsRateLimitError(err) {
		return false
	}

	if status, ok := StatusCode(err); ok {
		return status == http.StatusUnauthorized || status == http.StatusForbidden
	}

	text := strings.ToLower(err.Error())
	for _, marker := range []string{"status 401", "status 403", "unauthorized", "forbidden", "bad credentials"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether an error came from a missing GitHub resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}
