package report

import (
	"fmt"
	"strings"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// CommentMarker tags comments posted by this tool so they can be recognized.
const CommentMarker = "<!-- shipmetrics -->"

// Comment renders the pull request comment body for a report.
func Comment(rep metrics.Report) string {
	var b strings.Builder

	b.WriteString(CommentMarker + "\n")
	b.WriteString("### Delivery metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---|\n")

	if s := rep.Size; s != nil {
		if s.Status == metrics.StatusOK {
			fmt.Fprintf(&b, "| Size | **%s** (%s changes in %s files) |\n",
				strings.ToUpper(s.Category), formatCount(s.Aggregate.Changes), formatCount(s.Aggregate.Files))
		} else {
			fmt.Fprintf(&b, "| Size | %s |\n", withReason(s.Details))
		}
	}
	if m := rep.Maturity; m != nil {
		if m.Percentage != nil {
			fmt.Fprintf(&b, "| Maturity | %d%% (%s of %s changes stable) |\n",
				*m.Percentage, formatCount(m.StableChanges), formatCount(m.TotalChanges))
		} else {
			fmt.Fprintf(&b, "| Maturity | %s |\n", withReason(m.Details))
		}
	}
	if r := rep.Release; r != nil && r.Status == metrics.StatusOK {
		fmt.Fprintf(&b, "| Deployment frequency | %s |\n", formatDays(r.DeploymentFrequencyDays))
		if r.LeadTime != nil {
			fmt.Fprintf(&b, "| Lead time (avg) | %s |\n", formatHours(&r.LeadTime.AverageHours))
		}
	}
	if t := rep.Team; t != nil && t.Metrics != nil {
		fmt.Fprintf(&b, "| Team pickup (%s) | %s |\n", t.Window.Name, formatRated(t.Metrics.Pickup, "h"))
		fmt.Fprintf(&b, "| Team merge frequency (%s) | %s |\n", t.Window.Name, formatRated(t.Metrics.MergeFrequency, ""))
	}

	return b.String()
}
