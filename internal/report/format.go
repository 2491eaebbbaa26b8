package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

const unavailableText = "unavailable"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func formatNumber(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func formatHours(v *float64) string {
	if v == nil {
		return unavailableText
	}
	return formatNumber(*v) + "h"
}

func formatDays(v *float64) string {
	if v == nil {
		return unavailableText
	}
	return formatNumber(*v) + " days"
}

func formatRated(v metrics.RatedValue, unit string) string {
	if v.Value == nil {
		return unavailableText
	}
	text := formatNumber(*v.Value) + unit
	if v.Rating != "" {
		text += fmt.Sprintf(" (%s)", v.Rating)
	}
	return text
}

// withReason renders an unavailable marker with its explanation.
func withReason(details metrics.Details) string {
	parts := make([]string, 0, 2)
	if details.Reason != "" {
		parts = append(parts, details.Reason)
	}
	if details.Error != "" {
		parts = append(parts, details.Error)
	}
	if len(parts) == 0 {
		return unavailableText
	}
	return fmt.Sprintf("%s (%s)", unavailableText, strings.Join(parts, ": "))
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
