package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	gh "github.com/johnqtcg/shipmetrics/internal/github"
)

// ItemStatus indicates per-item run outcome.
type ItemStatus string

const (
	// StatusOK indicates a single item succeeded.
	StatusOK ItemStatus = "OK"
	// StatusFailed indicates a single item failed.
	StatusFailed ItemStatus = "FAILED"
)

var (
	okLabel     = color.New(color.FgGreen, color.Bold).SprintFunc()
	failedLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

// ItemResult stores one target processing result.
type ItemResult struct {
	Target       string
	ResourceType gh.ResourceType
	Status       ItemStatus
	Reason       string
	OutputPath   string
	// Unavailable lists the families that degraded for this target.
	Unavailable []string
}

// RunSummary stores overall run stats and per-item outcomes.
type RunSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Degraded  int
	Items     []ItemResult
}

// BuildSummary computes aggregate counters from item results.
func BuildSummary(items []ItemResult) RunSummary {
	out := RunSummary{
		Total: len(items),
		Items: append([]ItemResult(nil), items...),
	}

	for _, item := range items {
		if item.Status != StatusOK {
			out.Failed++
			continue
		}
		out.Succeeded++
		if len(item.Unavailable) > 0 {
			out.Degraded++
		}
	}
	return out
}

// FormatSummary renders a human-readable summary with failure details.
func FormatSummary(summary RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s total=%d succeeded=%d degraded=%d failed=%d\n",
		okLabel(StatusOK), summary.Total, summary.Succeeded, summary.Degraded, summary.Failed)
	for _, item := range summary.Items {
		if item.Status != StatusFailed {
			continue
		}
		b.WriteString(formatStatusLine(item))
		b.WriteByte('\n')
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func formatStatusLine(item ItemResult) string {
	if item.Status == StatusOK {
		line := fmt.Sprintf("%s target=%s type=%s output=%s", okLabel(StatusOK), item.Target, item.ResourceType, item.OutputPath)
		if len(item.Unavailable) > 0 {
			line += " unavailable=" + strings.Join(item.Unavailable, ",")
		}
		return line
	}
	line := fmt.Sprintf("%s target=%s type=%s", failedLabel(StatusFailed), item.Target, item.ResourceType)
	if item.OutputPath != "" {
		line += " output=" + item.OutputPath
	}
	return line + " reason=" + item.Reason
}
